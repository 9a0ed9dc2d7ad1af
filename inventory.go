package khata

import (
	"slices"

	"github.com/etnz/khata/date"
)

// StockItem is the unsold stock of one item.
type StockItem struct {
	Item        Item
	Quantity    Quantity
	AverageCost Money          // average purchase price of the remaining stock
	Value       Money          // remaining stock at unit cost
	Batches     []PurchaseItem // batches with remaining stock, oldest first
}

// Stock returns the items in stock, BN, SN and C first then by name.
func (b *Book) Stock() []StockItem {
	byKey := make(map[string]*StockItem)
	var keys []string
	for _, i := range b.allLots() {
		p := b.purchases[i]
		if !p.RemainingQuantity.IsPositive() {
			continue
		}
		key := p.Item().Key()
		st, ok := byKey[key]
		if !ok {
			st = &StockItem{Item: p.Item()}
			byKey[key] = st
			keys = append(keys, key)
		}
		st.Quantity = st.Quantity.Add(p.RemainingQuantity)
		st.AverageCost = st.AverageCost.Add(p.PricePerUnit.Mul(p.RemainingQuantity)) // total for now
		st.Value = st.Value.Add(b.settings.unitCost(p.ItemType, p.PricePerUnit).Mul(p.RemainingQuantity))
		st.Batches = append(st.Batches, p)
	}
	stock := make([]StockItem, 0, len(keys))
	for _, key := range keys {
		st := byKey[key]
		st.AverageCost = st.AverageCost.Div(st.Quantity)
		stock = append(stock, *st)
	}
	slices.SortStableFunc(stock, func(x, y StockItem) int { return compareItems(x.Item, y.Item) })
	return stock
}

// allLots returns the indexes of every batch, oldest first.
func (c *collections) allLots() []int {
	idx := make([]int, len(c.purchases))
	for i := range idx {
		idx[i] = i
	}
	slices.SortStableFunc(idx, func(i, j int) int { return c.purchases[i].Date.Compare(c.purchases[j].Date) })
	return idx
}

// InventoryValue returns the value of the unsold stock at unit cost.
func (b *Book) InventoryValue() Money {
	var total Money
	for _, p := range b.purchases {
		total = total.Add(b.settings.unitCost(p.ItemType, p.PricePerUnit).Mul(p.RemainingQuantity))
	}
	return total
}

// CostOfGoodsSold returns the cost of everything sold so far at unit cost.
func (b *Book) CostOfGoodsSold() Money {
	var total Money
	for _, p := range b.purchases {
		total = total.Add(b.settings.unitCost(p.ItemType, p.PricePerUnit).Mul(p.Consumed()))
	}
	return total
}

// StockMovement is the stock flow of one item over a period.
type StockMovement struct {
	Item      Item
	Opening   Quantity
	Purchased Quantity
	Sold      Quantity
	Closing   Quantity
}

// StockReport returns the opening, purchased, sold and closing stock of every
// item within r, largest closing stock first.
func (b *Book) StockReport(r date.Range) []StockMovement {
	byKey := make(map[string]*StockMovement)
	var keys []string
	get := func(item Item) *StockMovement {
		m, ok := byKey[item.Key()]
		if !ok {
			m = &StockMovement{Item: item}
			byKey[item.Key()] = m
			keys = append(keys, item.Key())
		}
		return m
	}
	for _, p := range b.purchases {
		m := get(p.Item())
		switch {
		case p.Date.Before(r.From):
			m.Opening = m.Opening.Add(p.Quantity)
		case r.Contains(p.Date):
			m.Purchased = m.Purchased.Add(p.Quantity)
		}
	}
	for _, s := range b.sales {
		m := get(s.Item())
		switch {
		case s.Date.Before(r.From):
			m.Opening = m.Opening.Sub(s.Quantity)
		case r.Contains(s.Date):
			m.Sold = m.Sold.Add(s.Quantity)
		}
	}

	var report []StockMovement
	for _, key := range keys {
		m := byKey[key]
		m.Closing = m.Opening.Add(m.Purchased).Sub(m.Sold)
		if m.Opening.IsZero() && m.Purchased.IsZero() && m.Sold.IsZero() && m.Closing.IsZero() {
			continue
		}
		report = append(report, *m)
	}
	slices.SortStableFunc(report, func(x, y StockMovement) int {
		if c := y.Closing.Decimal().Cmp(x.Closing.Decimal()); c != 0 {
			return c
		}
		return compareItems(x.Item, y.Item)
	})
	return report
}

// AvailableItems lists what can be sold or bought: the standard items, the
// custom items in stock, then the registered custom items.
func (b *Book) AvailableItems() []Item {
	items := make([]Item, 0, len(StandardItems)+len(b.customItems))
	seen := make(map[string]bool)
	add := func(it Item) {
		if !seen[it.Key()] {
			seen[it.Key()] = true
			items = append(items, it)
		}
	}
	for _, t := range StandardItems {
		add(Item{Type: t})
	}
	for _, st := range b.Stock() {
		if st.Item.Type == Other {
			add(st.Item)
		}
	}
	for _, name := range b.customItems {
		add(NewItem(Other, name))
	}
	return items
}
