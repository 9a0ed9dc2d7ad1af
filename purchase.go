package khata

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/etnz/khata/date"
	"go.uber.org/zap"
)

// PurchaseItem is a FIFO batch: a quantity of one item bought at one price.
// RemainingQuantity is what sales have not consumed yet.
type PurchaseItem struct {
	ID                string    `json:"id"`
	Date              date.Date `json:"date"`
	ItemType          ItemType  `json:"itemType"`
	CustomItemName    string    `json:"customItemName,omitempty"`
	Quantity          Quantity  `json:"quantity"`
	PricePerUnit      Money     `json:"pricePerUnit"`
	TotalCost         Money     `json:"totalCost"`
	Supplier          string    `json:"supplier,omitempty"`
	BatchNumber       string    `json:"batchNumber"`
	RemainingQuantity Quantity  `json:"remainingQuantity"`
}

// Item returns the item of the batch.
func (p PurchaseItem) Item() Item { return NewItem(p.ItemType, p.CustomItemName) }

// Consumed returns the quantity taken from the batch by sales.
func (p PurchaseItem) Consumed() Quantity { return p.Quantity.Sub(p.RemainingQuantity) }

// PurchaseLine is one item of a purchase.
type PurchaseLine struct {
	Type     ItemType `validate:"required"`
	Name     string   `validate:"required_if=Type OTHER"`
	Quantity Quantity
	Price    Money
}

// PurchaseInput describes goods received from a supplier on a date.
type PurchaseInput struct {
	Date     date.Date
	Supplier string
	// DerivePrices replaces the BN and C prices by the ones derived from the SN line.
	DerivePrices bool
	Lines        []PurchaseLine `validate:"min=1,dive"`
}

// nextBatchNumber returns the highest numeric batch number plus one, on three digits.
func (c *collections) nextBatchNumber() string {
	highest := 0
	for _, p := range c.purchases {
		if n, err := strconv.Atoi(p.BatchNumber); err == nil && n > highest {
			highest = n
		}
	}
	return fmt.Sprintf("%03d", highest+1)
}

// registerCustomItem adds name to the custom item registry if it is new.
func (c *collections) registerCustomItem(name string) {
	if name != "" && !slices.Contains(c.customItems, name) {
		c.customItems = append(c.customItems, name)
	}
}

// RecordPurchase records one batch per line, all sharing a new batch number.
// Lines with a zero quantity are skipped.
func (b *Book) RecordPurchase(in PurchaseInput) ([]PurchaseItem, error) {
	if err := check(in); err != nil {
		return nil, err
	}
	if in.Date.IsZero() {
		in.Date = date.Today()
	}
	lines := slices.Clone(in.Lines)
	if in.DerivePrices {
		b.derivePrices(lines)
	}

	var batches []PurchaseItem
	err := b.apply("purchase", func(s *Book) error {
		batch := s.nextBatchNumber()
		for i, line := range lines {
			if line.Quantity.IsZero() {
				continue
			}
			if line.Quantity.IsNegative() {
				return fmt.Errorf("%w: line %d quantity must be positive, got %s", ErrInvalidInput, i+1, line.Quantity)
			}
			if err := positive(fmt.Sprintf("line %d price", i+1), line.Price); err != nil {
				return err
			}
			item := NewItem(line.Type, line.Name)
			p := PurchaseItem{
				ID:                s.newID(),
				Date:              in.Date,
				ItemType:          item.Type,
				CustomItemName:    item.Name,
				Quantity:          line.Quantity,
				PricePerUnit:      line.Price,
				TotalCost:         line.Price.Mul(line.Quantity),
				Supplier:          in.Supplier,
				BatchNumber:       batch,
				RemainingQuantity: line.Quantity,
			}
			if item.Type == Other {
				s.registerCustomItem(item.Name)
			}
			s.purchases = append(s.purchases, p)
			batches = append(batches, p)
		}
		if len(batches) == 0 {
			return ErrNoLines
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	b.logger.Info("purchase recorded",
		zap.String("batch", batches[0].BatchNumber),
		zap.Int("lines", len(batches)),
		zap.Stringer("total", Sum(totalCosts(batches)...)),
	)
	return batches, nil
}

// derivePrices overwrites BN and C prices from the first priced SN line.
func (b *Book) derivePrices(lines []PurchaseLine) {
	i := slices.IndexFunc(lines, func(l PurchaseLine) bool { return l.Type == SN && l.Price.IsPositive() })
	if i < 0 {
		return
	}
	bn, c := b.settings.DerivedPrices(lines[i].Price)
	for j := range lines {
		switch lines[j].Type {
		case BN:
			lines[j].Price = bn
		case C:
			lines[j].Price = c
		}
	}
}

func totalCosts(batches []PurchaseItem) []Money {
	costs := make([]Money, len(batches))
	for i, p := range batches {
		costs[i] = p.TotalCost
	}
	return costs
}

// DeletePurchase removes a batch. A batch already consumed by sales cannot be removed.
func (b *Book) DeletePurchase(id string) error {
	var removed PurchaseItem
	err := b.apply("purchase-rm", func(s *Book) error {
		i := s.purchaseIndex(id)
		if i < 0 {
			return fmt.Errorf("purchase %q: %w", id, ErrNotFound)
		}
		removed = s.purchases[i]
		if !removed.Consumed().IsZero() {
			return fmt.Errorf("purchase %q (batch %s, %s sold): %w", id, removed.BatchNumber, removed.Consumed(), ErrBatchInUse)
		}
		s.purchases = slices.Delete(s.purchases, i, i+1)
		return nil
	})
	if err != nil {
		return err
	}
	b.logger.Info("purchase deleted", zap.String("purchase_id", id), zap.String("batch", removed.BatchNumber))
	return nil
}

// PurchasesInRange returns the batches bought within r, oldest first.
func (b *Book) PurchasesInRange(r date.Range) []PurchaseItem {
	var in []PurchaseItem
	for _, p := range b.purchases {
		if r.Contains(p.Date) {
			in = append(in, p)
		}
	}
	slices.SortStableFunc(in, func(x, y PurchaseItem) int { return x.Date.Compare(y.Date) })
	return in
}
