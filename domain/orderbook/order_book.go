package orderbook

import "cx/containers/llrbmap"

// Trade records one match produced while placing an order.
type Trade struct {
	TakerID  uint64
	MakerID  uint64
	Price    int64
	Qty      int64
}

// PlaceResult summarizes the outcome of placing an order.
type PlaceResult struct {
	Trades    []Trade
	Remaining int64
	Resting   bool
}

// OrderBook is a deterministic, single-threaded limit order book over two
// price ladders. Every exported method mutates in place; wrap an OrderBook
// with uc.NewUC to make it safe for concurrent callers.
type OrderBook struct {
	Bids llrbmap.Map[PriceLevel]
	Asks llrbmap.Map[PriceLevel]

	LastSeq uint64
}

// New returns an empty order book.
func New() OrderBook {
	return OrderBook{Bids: llrbmap.New[PriceLevel](), Asks: llrbmap.New[PriceLevel]()}
}

// Clone deep-copies the book, satisfying uc.Cloneable[OrderBook].
func (b OrderBook) Clone() OrderBook {
	return OrderBook{Bids: b.Bids.Clone(), Asks: b.Asks.Clone(), LastSeq: b.LastSeq}
}

// Place matches o against the resting side of the book and, if any
// quantity remains and o is a resting order type, adds it to its own
// side's ladder.
func (b *OrderBook) Place(o Order) PlaceResult {
	b.LastSeq = o.SeqID

	var trades []Trade
	if o.Side == Bid {
		o, trades = b.matchBid(o)
	} else {
		o, trades = b.matchAsk(o)
	}

	resting := false
	if o.Remaining() > 0 && o.Type == Limit {
		b.restOrder(o)
		resting = true
	}

	return PlaceResult{Trades: trades, Remaining: o.Remaining(), Resting: resting}
}

// RestOrder adds o directly to its side's ladder without matching it
// against the book, for restoring resting orders from a snapshot.
func (b *OrderBook) RestOrder(o Order) {
	b.restOrder(o)
}

func (b *OrderBook) restOrder(o Order) {
	ladder := &b.Bids
	if o.Side == Ask {
		ladder = &b.Asks
	}
	lvl := ladder.GetOrInsert(o.Price, func() PriceLevel { return newPriceLevel(o.Price) })
	lvl.Enqueue(o)
}

func (b *OrderBook) matchBid(o Order) (Order, []Trade) {
	var trades []Trade
	for o.Remaining() > 0 {
		price, lvl, ok := b.Asks.Min()
		if !ok {
			return o, trades
		}
		if o.Type != Market && price > o.Price {
			return o, trades
		}

		head, ok := lvl.Head()
		if !ok {
			return o, trades
		}
		trade := min64(o.Remaining(), head.Remaining())

		o.Filled += trade
		maker, _ := lvl.FillHead(trade)
		trades = append(trades, Trade{TakerID: o.ID, MakerID: maker.ID, Price: price, Qty: trade})

		if maker.Remaining() == 0 {
			lvl.PopHead()
			if lvl.Empty() {
				b.Asks.Delete(price)
			}
		}
	}
	return o, trades
}

func (b *OrderBook) matchAsk(o Order) (Order, []Trade) {
	var trades []Trade
	for o.Remaining() > 0 {
		price, lvl, ok := b.Bids.Max()
		if !ok {
			return o, trades
		}
		if o.Type != Market && price < o.Price {
			return o, trades
		}

		head, ok := lvl.Head()
		if !ok {
			return o, trades
		}
		trade := min64(o.Remaining(), head.Remaining())

		o.Filled += trade
		maker, _ := lvl.FillHead(trade)
		trades = append(trades, Trade{TakerID: o.ID, MakerID: maker.ID, Price: price, Qty: trade})

		if maker.Remaining() == 0 {
			lvl.PopHead()
			if lvl.Empty() {
				b.Bids.Delete(price)
			}
		}
	}
	return o, trades
}

// BidsWalk visits bid levels from best (highest) to worst price.
func (b *OrderBook) BidsWalk(fn func(PriceLevel) bool) {
	b.Bids.DescendFromMax(func(_ int64, lvl *PriceLevel) bool { return fn(*lvl) })
}

// AsksWalk visits ask levels from best (lowest) to worst price.
func (b *OrderBook) AsksWalk(fn func(PriceLevel) bool) {
	b.Asks.AscendFromMin(func(_ int64, lvl *PriceLevel) bool { return fn(*lvl) })
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
