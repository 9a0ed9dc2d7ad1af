package khata

import (
	"fmt"
	"slices"
)

// BatchUse records the quantity a sale took from one purchase batch.
// Records written before PurchaseID existed only carry the batch number, which
// all the lines of a purchase share.
type BatchUse struct {
	BatchID    string   `json:"batchId"` // batch number of the purchase
	PurchaseID string   `json:"purchaseId,omitempty"`
	Quantity   Quantity `json:"quantity"`
}

// lots returns the indexes of the batches of item, oldest first.
// Batches of the same day keep their insertion order.
func (c *collections) lots(item Item) []int {
	key := item.Key()
	var idx []int
	for i, p := range c.purchases {
		if p.Item().Key() == key {
			idx = append(idx, i)
		}
	}
	slices.SortStableFunc(idx, func(i, j int) int { return c.purchases[i].Date.Compare(c.purchases[j].Date) })
	return idx
}

// available returns the unsold quantity of item.
func (c *collections) available(item Item) Quantity {
	var total Quantity
	for _, i := range c.lots(item) {
		total = total.Add(c.purchases[i].RemainingQuantity)
	}
	return total
}

// consume takes quantity of item from the batches using FIFO and returns the batches used.
// Nothing is consumed when the stock is short.
func (c *collections) consume(item Item, quantity Quantity) ([]BatchUse, error) {
	if have := c.available(item); have.LessThan(quantity) {
		return nil, fmt.Errorf("%w for %s: need %s, have %s", ErrInsufficientInventory, item, quantity, have)
	}
	var used []BatchUse
	left := quantity
	for _, i := range c.lots(item) {
		if left.IsZero() {
			break
		}
		p := &c.purchases[i]
		if !p.RemainingQuantity.IsPositive() {
			continue
		}
		take := p.RemainingQuantity.Min(left)
		p.RemainingQuantity = p.RemainingQuantity.Sub(take)
		left = left.Sub(take)
		used = append(used, BatchUse{BatchID: p.BatchNumber, PurchaseID: p.ID, Quantity: take})
	}
	return used, nil
}

// restore gives back what a sale consumed. Without a record of the batches used,
// the quantity goes back to the most recent batches first.
func (c *collections) restore(item Item, used []BatchUse, quantity Quantity) error {
	idx := c.lots(item)
	if len(used) == 0 {
		left := quantity
		for j := len(idx) - 1; j >= 0 && left.IsPositive(); j-- {
			p := &c.purchases[idx[j]]
			give := p.Consumed().Min(left)
			p.RemainingQuantity = p.RemainingQuantity.Add(give)
			left = left.Sub(give)
		}
		if left.IsPositive() {
			return fmt.Errorf("cannot restore %s %s: %w", left, item, ErrNotFound)
		}
		return nil
	}
	for _, u := range used {
		if u.PurchaseID == "" {
			if err := c.restoreBatch(idx, item, u); err != nil {
				return err
			}
			continue
		}
		i := slices.IndexFunc(idx, func(i int) bool { return c.purchases[i].ID == u.PurchaseID })
		if i < 0 {
			return fmt.Errorf("cannot restore %s to purchase %s of %s: %w", u.Quantity, u.PurchaseID, item, ErrNotFound)
		}
		p := &c.purchases[idx[i]]
		remaining := p.RemainingQuantity.Add(u.Quantity)
		if remaining.GreaterThan(p.Quantity) {
			return fmt.Errorf("%w: restoring %s to batch %s of %s exceeds its quantity %s", ErrInvalidInput, u.Quantity, u.BatchID, item, p.Quantity)
		}
		p.RemainingQuantity = remaining
	}
	return nil
}

// restoreBatch gives back a use known by batch number only. The lines of that
// batch are refilled in order, each up to what it lost.
func (c *collections) restoreBatch(idx []int, item Item, u BatchUse) error {
	left := u.Quantity
	for _, i := range idx {
		p := &c.purchases[i]
		if p.BatchNumber != u.BatchID || !left.IsPositive() {
			continue
		}
		give := p.Consumed().Min(left)
		p.RemainingQuantity = p.RemainingQuantity.Add(give)
		left = left.Sub(give)
	}
	if left.IsPositive() {
		return fmt.Errorf("%w: restoring %s to batch %s of %s exceeds its quantity", ErrInvalidInput, u.Quantity, u.BatchID, item)
	}
	return nil
}
