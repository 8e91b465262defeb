package valueobjects

// PairKey identifies an unordered node pair. Edges between the same two
// nodes collapse onto the same key regardless of direction, which is what
// the visual-edge aggregation groups by.
type PairKey struct {
	lo string
	hi string
}

// NewPairKey builds the key for two node ids. The endpoints are sorted so
// that (a,b) and (b,a) produce the same key.
func NewPairKey(a, b NodeID) PairKey {
	x, y := a.String(), b.String()
	if x > y {
		x, y = y, x
	}
	return PairKey{lo: x, hi: y}
}

// Endpoints returns the two node ids in canonical order
func (k PairKey) Endpoints() (NodeID, NodeID) {
	return NodeID{value: k.lo}, NodeID{value: k.hi}
}

// String returns a stable textual form of the key
func (k PairKey) String() string {
	return k.lo + "~" + k.hi
}

// Contains reports whether the given node is one of the pair's endpoints
func (k PairKey) Contains(id NodeID) bool {
	return k.lo == id.String() || k.hi == id.String()
}
