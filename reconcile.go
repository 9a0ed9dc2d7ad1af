package khata

import (
	"fmt"
)

// Issue is an inconsistency between the ledgers of a book.
type Issue struct {
	Kind   string // short identifier of the broken rule
	Ref    string // id of the offending record
	Detail string
}

func (i Issue) String() string { return fmt.Sprintf("%s %s: %s", i.Kind, i.Ref, i.Detail) }

// Check verifies that customers, credits, sales, batches and accounts agree
// with one another and returns every violation found.
func (b *Book) Check() []Issue {
	var issues []Issue
	report := func(kind, ref, format string, args ...any) {
		issues = append(issues, Issue{Kind: kind, Ref: ref, Detail: fmt.Sprintf(format, args...)})
	}

	customers := make(map[string]bool, len(b.customers))
	for _, c := range b.customers {
		customers[c.ID] = true
		if pending := b.pending(c.ID); !c.TotalCredit.Equal(pending) {
			report("customer-balance", c.ID, "outstanding %s, unpaid credits %s", c.TotalCredit.Plain(), pending.Plain())
		}
	}

	sales := make(map[string]SaleItem, len(b.sales))
	for _, s := range b.sales {
		sales[s.ID] = s
	}
	creditsBySale := make(map[string][]CreditTransaction)
	for _, cr := range b.credits {
		if !customers[cr.CustomerID] {
			report("credit-customer", cr.ID, "unknown customer %q", cr.CustomerID)
		}
		if cr.SaleID != "" {
			if _, ok := sales[cr.SaleID]; !ok {
				report("credit-sale", cr.ID, "unknown sale %q", cr.SaleID)
			}
			creditsBySale[cr.SaleID] = append(creditsBySale[cr.SaleID], cr)
		}
		if cr.Status == CreditPaid && cr.PaymentDate.IsZero() {
			report("credit-payment-date", cr.ID, "paid without a payment date")
		}
		if !cr.Amount.IsPositive() {
			report("credit-amount", cr.ID, "amount %s is not positive", cr.Amount.Plain())
		}
	}

	consumed := make(map[string]Quantity) // purchase id -> quantity sold
	byBatch := make(map[string]Quantity)  // item key + batch -> quantity sold, for uses without purchase id
	for _, s := range b.sales {
		for _, u := range s.BatchesUsed {
			if u.PurchaseID != "" {
				consumed[u.PurchaseID] = consumed[u.PurchaseID].Add(u.Quantity)
				continue
			}
			k := s.Item().Key() + "#" + u.BatchID
			byBatch[k] = byBatch[k].Add(u.Quantity)
		}
		if !s.IsCredit {
			continue
		}
		crs := creditsBySale[s.ID]
		if len(crs) == 0 {
			// a deleted customer takes its settled credits along
			if customers[s.CustomerID] {
				report("sale-credit", s.ID, "credit sale without credits")
			}
			continue
		}
		var total Money
		status := StatusPaid
		for _, cr := range crs {
			total = total.Add(cr.Amount)
			if cr.Unpaid() {
				status = StatusPending
			}
		}
		if !total.Equal(s.TotalAmount) {
			report("sale-credit", s.ID, "credits sum to %s, sale total is %s", total.Plain(), s.TotalAmount.Plain())
		}
		if s.PaymentStatus != status {
			report("sale-status", s.ID, "status %s, credits say %s", s.PaymentStatus, status)
		}
	}

	// Uses known by batch number only are checked against all the lines of that batch.
	type batchTotal struct {
		first      PurchaseItem
		sold, used Quantity
	}
	batches := make(map[string]*batchTotal)
	var order []string
	for _, p := range b.purchases {
		if p.RemainingQuantity.IsNegative() || p.RemainingQuantity.GreaterThan(p.Quantity) {
			report("batch-remaining", p.ID, "remaining %s outside [0, %s]", p.RemainingQuantity, p.Quantity)
		}
		k := p.Item().Key() + "#" + p.BatchNumber
		if byBatch[k].IsZero() {
			if sold := consumed[p.ID]; !sold.Equal(p.Consumed()) {
				report("batch-consumption", p.ID, "batch %s of %s: sales used %s, batch shows %s consumed", p.BatchNumber, p.Item(), sold, p.Consumed())
			}
			continue
		}
		bt, ok := batches[k]
		if !ok {
			bt = &batchTotal{first: p, sold: byBatch[k]}
			batches[k] = bt
			order = append(order, k)
		}
		bt.sold = bt.sold.Add(consumed[p.ID])
		bt.used = bt.used.Add(p.Consumed())
	}
	for _, k := range order {
		bt := batches[k]
		if !bt.sold.Equal(bt.used) {
			report("batch-consumption", bt.first.ID, "batch %s of %s: sales used %s, batch shows %s consumed", bt.first.BatchNumber, bt.first.Item(), bt.sold, bt.used)
		}
	}

	for _, a := range b.accounts {
		if a.Balance.IsNegative() {
			report("account-balance", a.ID, "%s balance is negative: %s", a.Name, a.Balance.Plain())
		}
	}
	return issues
}
