package khata

import (
	"fmt"
	"slices"

	"github.com/etnz/khata/date"
)

// EntryKind distinguishes the lines of a customer statement.
type EntryKind string

const (
	EntryCredit  EntryKind = "credit"
	EntryPayment EntryKind = "payment"
)

// StatementEntry is one line of a customer statement.
// Debit increases what the customer owes, Credit decreases it.
type StatementEntry struct {
	Date        date.Date
	Kind        EntryKind
	CreditID    string
	SaleID      string
	Description string
	Debit       Money
	Credit      Money
	Balance     Money // running balance after this entry
}

// Statement is the credit history of one customer.
type Statement struct {
	Customer Customer
	Entries  []StatementEntry
	Pending  Money
}

// History returns the statement of a customer: one debit per credit sale, at the sale
// date, and one credit per payment, at the payment date. Entries are in time order,
// debits first within a day, and the final balance is the pending amount.
func (b *Book) History(customerID string) (Statement, error) {
	i := b.customerIndex(customerID)
	if i < 0 {
		return Statement{}, fmt.Errorf("customer %q: %w", customerID, ErrNotFound)
	}
	st := Statement{Customer: b.customers[i]}

	// Split pieces are folded into the debit of the credit they were split from.
	parent := make(map[string]string)
	for _, cr := range b.credits {
		if cr.ParentID != "" {
			parent[cr.ID] = cr.ParentID
		}
	}
	root := func(id string) string {
		for n := 0; n < len(parent); n++ {
			p, ok := parent[id]
			if !ok {
				break
			}
			id = p
		}
		return id
	}

	debits := make(map[string]int) // root credit id -> entry index
	for _, cr := range b.credits {
		if cr.CustomerID != customerID {
			continue
		}
		r := root(cr.ID)
		if j, ok := debits[r]; ok {
			st.Entries[j].Debit = st.Entries[j].Debit.Add(cr.Amount)
		} else {
			debits[r] = len(st.Entries)
			st.Entries = append(st.Entries, StatementEntry{
				Date:        cr.Date,
				Kind:        EntryCredit,
				CreditID:    r,
				SaleID:      cr.SaleID,
				Description: b.describeSale(cr.SaleID),
				Debit:       cr.Amount,
			})
		}
		if cr.Status == CreditPaid {
			st.Entries = append(st.Entries, StatementEntry{
				Date:        cr.PaymentDate,
				Kind:        EntryPayment,
				CreditID:    cr.ID,
				SaleID:      cr.SaleID,
				Description: "payment received",
				Credit:      cr.Amount,
			})
		}
	}

	slices.SortStableFunc(st.Entries, func(x, y StatementEntry) int {
		if c := x.Date.Compare(y.Date); c != 0 {
			return c
		}
		if x.Kind != y.Kind {
			if x.Kind == EntryCredit {
				return -1
			}
			return 1
		}
		return 0
	})

	var balance Money
	for j := range st.Entries {
		balance = balance.Add(st.Entries[j].Debit).Sub(st.Entries[j].Credit)
		st.Entries[j].Balance = balance
	}
	st.Pending = balance
	return st, nil
}

func (b *Book) describeSale(saleID string) string {
	i := b.saleIndex(saleID)
	if i < 0 {
		return "credit"
	}
	s := b.sales[i]
	return fmt.Sprintf("%s × %s @ %s", s.Quantity, s.Item(), s.PricePerUnit)
}
