package khata

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// ItemType identifies the kind of goods a line refers to.
type ItemType string

// The goods the shop deals in. OTHER items carry a custom name.
const (
	BN    ItemType = "BN"
	SN    ItemType = "SN"
	C     ItemType = "C"
	BNS   ItemType = "BNS"
	SNS   ItemType = "SNS"
	CS    ItemType = "CS"
	ABN   ItemType = "ABN"
	ASN   ItemType = "ASN"
	Other ItemType = "OTHER"
)

// StandardItems lists the predefined item types in display order.
var StandardItems = []ItemType{BN, SN, C, BNS, SNS, CS, ABN, ASN}

// ParseItemType parses an item type, case-insensitively.
func ParseItemType(s string) (ItemType, error) {
	t := ItemType(strings.ToUpper(strings.TrimSpace(s)))
	if t == Other || slices.Contains(StandardItems, t) {
		return t, nil
	}
	return "", fmt.Errorf("%w: unknown item type %q", ErrInvalidInput, s)
}

// Item is an item type, qualified by a name for OTHER items.
type Item struct {
	Type ItemType
	Name string
}

// NewItem returns the item for a type and custom name. The name is only kept for OTHER items.
func NewItem(t ItemType, name string) Item {
	if t != Other {
		return Item{Type: t}
	}
	return Item{Type: t, Name: strings.TrimSpace(name)}
}

// Key identifies the item across purchases and sales: the type, or OTHER_<name>.
func (i Item) Key() string {
	if i.Type == Other {
		return "OTHER_" + i.Name
	}
	return string(i.Type)
}

// String returns the display name.
func (i Item) String() string {
	if i.Type == Other {
		return i.Name
	}
	return string(i.Type)
}

// rank orders BN, SN and C before anything else.
func (i Item) rank() int {
	switch i.Type {
	case BN:
		return 0
	case SN:
		return 1
	case C:
		return 2
	default:
		return 3
	}
}

// compareItems sorts BN, SN, C first then the rest alphabetically by display name.
func compareItems(a, b Item) int {
	if c := cmp.Compare(a.rank(), b.rank()); c != 0 {
		return c
	}
	return cmp.Compare(a.String(), b.String())
}

// DerivedPrices returns the BN and C unit prices implied by an SN price.
func (s Settings) DerivedPrices(sn Money) (bn, c Money) {
	base := sn.Decimal().Div(newDecimal(s.Ratios.SN))
	bn = M(base.Mul(newDecimal(s.Ratios.BN))).Ceil()
	c = M(base.Mul(newDecimal(s.Ratios.C))).Ceil()
	return bn, c
}

// unitCost returns the cost of a single sellable unit of a batch priced per pack.
func (s Settings) unitCost(t ItemType, price Money) Money {
	if d, ok := s.UnitDivisors[t]; ok && d > 0 {
		return price.Div(Q(d))
	}
	return price
}
