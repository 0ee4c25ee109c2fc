package uc

// Ops is the key-oriented surface a wrapped set type must expose, through
// pointer methods (PS), for UCSet to drive it as the CX construct's wrapped
// state. Mirrors the convenience facade the original UCSet template
// provides over a bare CXMutation instance.
type Ops[K any] interface {
	Add(key K) bool
	Remove(key K) bool
	Contains(key K) bool
}

// UCSet wraps a cloneable sequential set implementation S (mutated through
// pointer methods PS) in the CX construct. S must still satisfy
// Cloneable[S] by value, since that is what NewUC requires of the wrapped
// state; PS is the pointer type through which Add/Remove/Contains are
// actually called against the replica ApplyUpdate/ApplyRead hand it.
type UCSet[S Cloneable[S], PS interface {
	*S
	Ops[K]
}, K any] struct {
	u *UC[S, bool]
}

// NewUCSet seeds a set construct from inst.
func NewUCSet[S Cloneable[S], PS interface {
	*S
	Ops[K]
}, K any](inst S, maxThreads int) *UCSet[S, PS, K] {
	return &UCSet[S, PS, K]{u: NewUC[S, bool](inst, maxThreads)}
}

// Add inserts key, returning true if it was not already present.
func (s *UCSet[S, PS, K]) Add(key K, tid int) bool {
	return s.u.ApplyUpdate(func(obj *S) bool { return PS(obj).Add(key) }, tid)
}

// Remove deletes key, returning true if it was present.
func (s *UCSet[S, PS, K]) Remove(key K, tid int) bool {
	return s.u.ApplyUpdate(func(obj *S) bool { return PS(obj).Remove(key) }, tid)
}

// Contains reports whether key is present, via a read-only replica access.
func (s *UCSet[S, PS, K]) Contains(key K, tid int) bool {
	return s.u.ApplyRead(func(obj *S) bool { return PS(obj).Contains(key) }, tid)
}

// Close releases the set's underlying construct resources.
func (s *UCSet[S, PS, K]) Close() { s.u.Close() }
