// Package orderbook is a sequential limit order book, matched against
// price-time priority. It carries no concurrency of its own — every
// exported mutation is a plain, single-threaded operation on a value type.
// Concurrent access comes from wrapping an OrderBook with uc.UC, the same
// way containers/intset and containers/vecset get wrapped: OrderBook.Clone
// gives the universal construction the independent replica it needs to
// keep readers wait-free while a writer mutates.
package orderbook

type Side int

const (
	Bid Side = iota
	Ask
)

type OrderType int

const (
	Limit OrderType = iota
	Market
	IOC
	FOK
	PostOnly
)

type Status int

const (
	Active Status = iota
	Inactive
)

// Order is a pure value type: no internal pointers, so copying an Order
// copies it completely. PriceLevel relies on this to make queue.Clone a
// full deep copy for free.
type Order struct {
	ID     uint64
	Price  int64
	Qty    int64
	Filled int64
	SeqID  uint64

	Side   Side
	Type   OrderType
	Status Status
}

// Remaining is the unfilled quantity left on the order.
func (o Order) Remaining() int64 {
	return o.Qty - o.Filled
}
