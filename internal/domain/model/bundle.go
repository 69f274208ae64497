package model

// Bundle is a candidate assignment: the orders under consideration, the
// full stop sequence for the courier carrying them (including stops for any
// orders already on board), and the total route distance measured from the
// courier's current location.
type Bundle struct {
	Orders        []*Order
	Route         []Stop
	TotalDistance float64
}

// Size returns the number of orders the bundle carries.
func (b Bundle) Size() int {
	return len(b.Orders)
}

// IDSignature returns a deterministic, order-independent key for the
// bundle's order set, used by the generator's seen-set to deduplicate
// candidates in O(1) regardless of insertion order.
func (b Bundle) IDSignature() string {
	ids := make([]string, len(b.Orders))
	for i, o := range b.Orders {
		ids[i] = o.ID
	}

	return sortedJoin(ids)
}
