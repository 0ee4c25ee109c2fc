package orderbook

import "cx/containers/llqueue"

// PriceLevel is the FIFO queue of resting orders at a single price.
type PriceLevel struct {
	Price  int64
	orders llqueue.Queue[Order]

	TotalQty   int64
	OrderCount int
}

func newPriceLevel(price int64) PriceLevel {
	return PriceLevel{Price: price, orders: llqueue.New[Order]()}
}

// Enqueue appends o to the back of the level.
func (p *PriceLevel) Enqueue(o Order) {
	p.orders.Enqueue(o)
	p.TotalQty += o.Remaining()
	p.OrderCount++
}

// Head returns the resting order at the front of the level.
func (p *PriceLevel) Head() (Order, bool) {
	return p.orders.Peek()
}

// FillHead adds trade to the filled quantity of the head order in place,
// returning the updated order.
func (p *PriceLevel) FillHead(trade int64) (Order, bool) {
	var filled Order
	ok := p.orders.UpdateHead(func(o *Order) {
		o.Filled += trade
		if o.Remaining() == 0 {
			o.Status = Inactive
		}
		filled = *o
	})
	if ok {
		p.TotalQty -= trade
	}
	return filled, ok
}

// PopHead removes and returns the head order once fully filled.
func (p *PriceLevel) PopHead() (Order, bool) {
	o, ok := p.orders.Dequeue()
	if ok {
		p.OrderCount--
	}
	return o, ok
}

// Orders walks every resting order at this level from oldest to newest,
// stopping early if fn returns false.
func (p *PriceLevel) Orders(fn func(Order) bool) {
	p.orders.Ascend(fn)
}

// Empty reports whether the level has no resting orders.
func (p *PriceLevel) Empty() bool {
	return p.orders.Len() == 0
}

// Clone deep-copies the level, satisfying llrbmap.Cloneable.
func (p PriceLevel) Clone() PriceLevel {
	return PriceLevel{
		Price:      p.Price,
		orders:     p.orders.Clone(),
		TotalQty:   p.TotalQty,
		OrderCount: p.OrderCount,
	}
}
