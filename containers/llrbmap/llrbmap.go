// Package llrbmap is a left-leaning red-black tree ordered map, the same
// balancing algorithm as containers/intset generalized to carry a value
// alongside each key. It backs domain/orderbook's price ladders, where the
// key is a price and the value is the FIFO queue resting at that price.
package llrbmap

// Cloneable values know how to deep-copy themselves; Map.Clone uses this
// to produce a fully independent copy down to the leaves, the property a
// uc.UC replica needs from every field it carries.
type Cloneable[V any] interface {
	Clone() V
}

const (
	red   = true
	black = false
)

type node[V Cloneable[V]] struct {
	key         int64
	val         V
	left, right *node[V]
	color       bool
}

// Map is an ordered key/value map over int64 keys.
type Map[V Cloneable[V]] struct {
	root *node[V]
	size int
}

// New returns an empty Map.
func New[V Cloneable[V]]() Map[V] {
	return Map[V]{}
}

// Len reports the number of entries.
func (m *Map[V]) Len() int { return m.size }

func isRed[V Cloneable[V]](n *node[V]) bool {
	if n == nil {
		return false
	}
	return n.color == red
}

// Get returns a pointer to the value at key and whether it was present.
// The pointer aliases the tree's own storage, so mutating through it
// mutates the map directly — the access pattern a price ladder needs when
// matching walks into a level and drains it in place.
func (m *Map[V]) Get(key int64) (*V, bool) {
	n := m.root
	for n != nil {
		switch {
		case key < n.key:
			n = n.left
		case key > n.key:
			n = n.right
		default:
			return &n.val, true
		}
	}
	return nil, false
}

// GetOrInsert returns a pointer to the existing value at key, or inserts
// zero() and returns a pointer to it if key was absent, mirroring the
// "get-or-create a price level" access pattern an order book needs on
// every Place.
func (m *Map[V]) GetOrInsert(key int64, zero func() V) *V {
	if v, ok := m.Get(key); ok {
		return v
	}
	m.Put(key, zero())
	v, _ := m.Get(key)
	return v
}

// Put inserts or overwrites the value at key.
func (m *Map[V]) Put(key int64, val V) {
	before := m.size
	m.root = insert(m.root, key, val, &m.size, before)
	m.root.color = black
}

func insert[V Cloneable[V]](h *node[V], key int64, val V, size *int, before int) *node[V] {
	if h == nil {
		*size = before + 1
		return &node[V]{key: key, val: val, color: red}
	}

	if key < h.key {
		h.left = insert(h.left, key, val, size, before)
	} else if key > h.key {
		h.right = insert(h.right, key, val, size, before)
	} else {
		h.val = val
	}

	if isRed(h.right) && !isRed(h.left) {
		h = rotateLeft(h)
	}
	if isRed(h.left) && isRed(h.left.left) {
		h = rotateRight(h)
	}
	if isRed(h.left) && isRed(h.right) {
		flipColors(h)
	}
	return h
}

// Delete removes key if present.
func (m *Map[V]) Delete(key int64) bool {
	if _, ok := m.Get(key); !ok {
		return false
	}
	if !isRed(m.root.left) && !isRed(m.root.right) {
		m.root.color = red
	}
	m.root = deleteKey(m.root, key)
	if m.root != nil {
		m.root.color = black
	}
	m.size--
	return true
}

func deleteKey[V Cloneable[V]](h *node[V], key int64) *node[V] {
	if key < h.key {
		if !isRed(h.left) && !isRed(h.left.left) {
			h = moveRedLeft(h)
		}
		h.left = deleteKey(h.left, key)
	} else {
		if isRed(h.left) {
			h = rotateRight(h)
		}
		if key == h.key && h.right == nil {
			return nil
		}
		if !isRed(h.right) && !isRed(h.right.left) {
			h = moveRedRight(h)
		}
		if key == h.key {
			minNode := min(h.right)
			h.key = minNode.key
			h.val = minNode.val
			h.right = deleteMin(h.right)
		} else {
			h.right = deleteKey(h.right, key)
		}
	}
	return fixUp(h)
}

func deleteMin[V Cloneable[V]](h *node[V]) *node[V] {
	if h.left == nil {
		return nil
	}
	if !isRed(h.left) && !isRed(h.left.left) {
		h = moveRedLeft(h)
	}
	h.left = deleteMin(h.left)
	return fixUp(h)
}

func min[V Cloneable[V]](h *node[V]) *node[V] {
	for h.left != nil {
		h = h.left
	}
	return h
}

// Min returns the smallest key and a pointer to its value.
func (m *Map[V]) Min() (int64, *V, bool) {
	if m.root == nil {
		return 0, nil, false
	}
	n := min(m.root)
	return n.key, &n.val, true
}

// Max returns the largest key and a pointer to its value.
func (m *Map[V]) Max() (int64, *V, bool) {
	if m.root == nil {
		return 0, nil, false
	}
	n := m.root
	for n.right != nil {
		n = n.right
	}
	return n.key, &n.val, true
}

// AscendFromMin walks every entry from smallest to largest key, stopping
// early if fn returns false.
func (m *Map[V]) AscendFromMin(fn func(key int64, val *V) bool) {
	ascend(m.root, fn)
}

func ascend[V Cloneable[V]](h *node[V], fn func(int64, *V) bool) bool {
	if h == nil {
		return true
	}
	if !ascend(h.left, fn) {
		return false
	}
	if !fn(h.key, &h.val) {
		return false
	}
	return ascend(h.right, fn)
}

// DescendFromMax walks every entry from largest to smallest key, stopping
// early if fn returns false.
func (m *Map[V]) DescendFromMax(fn func(key int64, val *V) bool) {
	descend(m.root, fn)
}

func descend[V Cloneable[V]](h *node[V], fn func(int64, *V) bool) bool {
	if h == nil {
		return true
	}
	if !descend(h.right, fn) {
		return false
	}
	if !fn(h.key, &h.val) {
		return false
	}
	return descend(h.left, fn)
}

func rotateLeft[V Cloneable[V]](h *node[V]) *node[V] {
	x := h.right
	h.right = x.left
	x.left = h
	x.color = h.color
	h.color = red
	return x
}

func rotateRight[V Cloneable[V]](h *node[V]) *node[V] {
	x := h.left
	h.left = x.right
	x.right = h
	x.color = h.color
	h.color = red
	return x
}

func flipColors[V Cloneable[V]](h *node[V]) {
	h.color = !h.color
	h.left.color = !h.left.color
	h.right.color = !h.right.color
}

func moveRedLeft[V Cloneable[V]](h *node[V]) *node[V] {
	flipColors(h)
	if isRed(h.right.left) {
		h.right = rotateRight(h.right)
		h = rotateLeft(h)
		flipColors(h)
	}
	return h
}

func moveRedRight[V Cloneable[V]](h *node[V]) *node[V] {
	flipColors(h)
	if isRed(h.left.left) {
		h = rotateRight(h)
		flipColors(h)
	}
	return h
}

func fixUp[V Cloneable[V]](h *node[V]) *node[V] {
	if isRed(h.right) {
		h = rotateLeft(h)
	}
	if isRed(h.left) && isRed(h.left.left) {
		h = rotateRight(h)
	}
	if isRed(h.left) && isRed(h.right) {
		flipColors(h)
	}
	return h
}

// Clone deep-copies the map, cloning every value via its own Clone method.
func (m Map[V]) Clone() Map[V] {
	return Map[V]{root: cloneNode(m.root), size: m.size}
}

func cloneNode[V Cloneable[V]](n *node[V]) *node[V] {
	if n == nil {
		return nil
	}
	return &node[V]{
		key:   n.key,
		val:   n.val.Clone(),
		left:  cloneNode(n.left),
		right: cloneNode(n.right),
		color: n.color,
	}
}
