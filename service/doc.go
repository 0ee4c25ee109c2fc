// Package service is the ambient orchestration layer around a uc.UC
// instance: the only write entry point into the system, coordinating the
// construct itself with the audit log, the outbox, and periodic snapshots
// (reclamation of truncated log segments is ticked by the caller, through
// walaudit.Compactor). OrderService is the direct analogue of the
// teacher's OrderService around domain/orderbook; SetService is the same
// shape generalized to a plain uc.UCSet.
package service
