package treemap

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/goccy/go-json"

	"github.com/matzehuels/treemap/pkg/tree"
)

// SortKey is what a custom comparator sees of a child node.
type SortKey struct {
	Depth  int
	Height int
	Index  int // raw index
	Value  float64
}

// Comparator orders two sort keys like [cmp.Compare].
type Comparator func(a, b SortKey) int

type orderKind int

const (
	orderNone orderKind = iota
	orderAsc
	orderDesc
	orderCustom
)

// Order is the child ordering strategy: none, ascending, descending or a
// custom comparator. The zero value is "no ordering", which also disables
// visibleMin thresholding.
type Order struct {
	kind orderKind
	cmp  Comparator
}

var (
	// Unordered keeps children in model order.
	Unordered = Order{}
	// Ascending sorts children by increasing value; ties by increasing raw index.
	Ascending = Order{kind: orderAsc}
	// Descending sorts children by decreasing value; ties by decreasing raw index.
	Descending = Order{kind: orderDesc}
)

// Custom sorts children with c. Ties left by c are broken by raw index.
// A nil comparator yields [Unordered].
func Custom(c Comparator) Order {
	if c == nil {
		return Unordered
	}
	return Order{kind: orderCustom, cmp: c}
}

// ParseOrder parses "asc", "desc", "true" (desc), and "", "none" or "false"
// (unordered).
func ParseOrder(s string) (Order, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "false":
		return Unordered, nil
	case "asc":
		return Ascending, nil
	case "desc", "true":
		return Descending, nil
	}
	return Unordered, fmt.Errorf("invalid sort order: %q (must be asc, desc or none)", s)
}

// Active reports whether the order sorts at all.
func (o Order) Active() bool { return o.kind != orderNone }

// IsAscending reports whether small values come first.
func (o Order) IsAscending() bool { return o.kind == orderAsc }

// String returns the textual form accepted by [ParseOrder], or "custom".
func (o Order) String() string {
	switch o.kind {
	case orderAsc:
		return "asc"
	case orderDesc:
		return "desc"
	case orderCustom:
		return "custom"
	}
	return "none"
}

// MarshalText implements encoding.TextMarshaler. Custom orders encode as
// "custom", which [ParseOrder] rejects.
func (o Order) MarshalText() ([]byte, error) { return []byte(o.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (o *Order) UnmarshalText(b []byte) error {
	parsed, err := ParseOrder(string(b))
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}

// UnmarshalJSON accepts the strings of [ParseOrder] as well as the booleans
// true (desc) and false (none).
func (o *Order) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch s := v.(type) {
	case nil:
		*o = Unordered
	case bool:
		*o = Unordered
		if s {
			*o = Descending
		}
	case string:
		return o.UnmarshalText([]byte(s))
	default:
		return fmt.Errorf("invalid sort order: %s", b)
	}
	return nil
}

func (o Order) compare(a, b *tree.Node) int {
	switch o.kind {
	case orderAsc:
		if c := cmp.Compare(a.Value, b.Value); c != 0 {
			return c
		}
		return cmp.Compare(a.Index, b.Index)
	case orderDesc:
		if c := cmp.Compare(b.Value, a.Value); c != 0 {
			return c
		}
		return cmp.Compare(b.Index, a.Index)
	case orderCustom:
		if c := o.cmp(keyOf(a), keyOf(b)); c != 0 {
			return c
		}
		return cmp.Compare(a.Index, b.Index)
	}
	return 0
}

func (o Order) sort(nodes []*tree.Node) {
	if !o.Active() {
		return
	}
	slices.SortFunc(nodes, o.compare)
}

func keyOf(n *tree.Node) SortKey {
	return SortKey{Depth: n.Depth, Height: n.Height, Index: n.Index, Value: n.Value}
}
