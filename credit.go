package khata

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/etnz/khata/date"
	"github.com/ttacon/libphonenumber"
	"go.uber.org/zap"
)

// CreditStatus is the state of a credit transaction.
type CreditStatus string

const (
	CreditPending CreditStatus = "pending"
	CreditPaid    CreditStatus = "paid"
	CreditOverdue CreditStatus = "overdue"
)

// CreditTransaction is an amount a customer owes for a sale (Udhaar).
//
// A partial payment splits a credit: the original keeps the unpaid amount and
// a paid piece, whose ParentID is the original id, records the payment.
type CreditTransaction struct {
	ID           string       `json:"id"`
	CustomerID   string       `json:"customerId"`
	CustomerName string       `json:"customerName"`
	SaleID       string       `json:"saleId,omitempty"`
	ParentID     string       `json:"parentId,omitempty"`
	Amount       Money        `json:"amount"`
	Date         date.Date    `json:"date"`
	DueDate      date.Date    `json:"dueDate"`
	PaymentDate  date.Date    `json:"paymentDate"`
	Status       CreditStatus `json:"status"`
}

// Unpaid reports whether the credit is still owed, overdue or not.
func (c CreditTransaction) Unpaid() bool { return c.Status != CreditPaid }

// Customer is someone buying on credit. TotalCredit is the outstanding balance.
type Customer struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Phone            string    `json:"phone"`
	Address          string    `json:"address,omitempty"`
	TotalCredit      Money     `json:"totalCredit"`
	LastPurchaseDate date.Date `json:"lastPurchaseDate"`
}

// pending returns the sum of the unpaid credits of a customer.
func (c *collections) pending(customerID string) Money {
	var total Money
	for _, cr := range c.credits {
		if cr.CustomerID == customerID && cr.Unpaid() {
			total = total.Add(cr.Amount)
		}
	}
	return total
}

// syncCustomer recomputes the outstanding balance and last purchase date of a customer.
func (c *collections) syncCustomer(id string) {
	i := c.customerIndex(id)
	if i < 0 {
		return
	}
	cu := &c.customers[i]
	cu.TotalCredit = c.pending(id)
	var last date.Date
	for _, s := range c.sales {
		if s.CustomerID == id && s.Date.After(last) {
			last = s.Date
		}
	}
	if !last.IsZero() {
		cu.LastPurchaseDate = last
	}
}

// RefreshOverdue marks as overdue the pending credits older than the overdue days.
// It returns the number of credits that changed.
func (b *Book) RefreshOverdue(today date.Date) int {
	n := 0
	for i := range b.credits {
		cr := &b.credits[i]
		if cr.Status == CreditPending && today.DaysSince(cr.Date) > b.settings.OverdueDays {
			cr.Status = CreditOverdue
			n++
		}
	}
	if n > 0 {
		b.logger.Info("credits overdue", zap.Int("count", n), zap.Stringer("on", today))
	}
	return n
}

// ReceivePayment applies a payment to the unpaid credits of a customer, oldest first,
// and adds it to the Shop account. It returns the paid credits.
func (b *Book) ReceivePayment(customerID string, amount Money, on date.Date) ([]CreditTransaction, error) {
	if err := positive("payment", amount); err != nil {
		return nil, err
	}
	if on.IsZero() {
		on = date.Today()
	}
	var paid []CreditTransaction
	err := b.apply("pay", func(s *Book) error {
		if s.customerIndex(customerID) < 0 {
			return fmt.Errorf("customer %q: %w", customerID, ErrNotFound)
		}
		if pending := s.pending(customerID); amount.GreaterThan(pending) {
			return fmt.Errorf("%w: %s received, %s pending", ErrOverpayment, amount, pending)
		}

		var unpaid []int
		for i, cr := range s.credits {
			if cr.CustomerID == customerID && cr.Unpaid() {
				unpaid = append(unpaid, i)
			}
		}
		slices.SortStableFunc(unpaid, func(i, j int) int { return s.credits[i].Date.Compare(s.credits[j].Date) })

		left := amount
		var pieces []CreditTransaction
		for _, i := range unpaid {
			if left.IsZero() {
				break
			}
			cr := &s.credits[i]
			if !cr.Amount.GreaterThan(left) {
				left = left.Sub(cr.Amount)
				cr.Status = CreditPaid
				cr.PaymentDate = on
				paid = append(paid, *cr)
				continue
			}
			piece := *cr
			piece.ID = s.newID()
			piece.ParentID = cr.ID
			piece.Amount = left
			piece.Status = CreditPaid
			piece.PaymentDate = on
			cr.Amount = cr.Amount.Sub(left)
			left = Money{}
			pieces = append(pieces, piece)
			paid = append(paid, piece)
		}
		s.credits = append(s.credits, pieces...)

		if err := s.deposit(AccountShop, amount); err != nil {
			return err
		}
		for _, cr := range paid {
			s.syncSaleStatus(cr.SaleID)
		}
		s.syncCustomer(customerID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	b.logger.Info("payment received",
		zap.String("customer_id", customerID),
		zap.Stringer("amount", amount),
		zap.Int("credits", len(paid)),
	)
	return paid, nil
}

// ReversePayment cancels the payment of a credit and takes the amount back from the Shop account.
// A split piece merges back into its parent when the parent is still unpaid.
func (b *Book) ReversePayment(creditID string) (CreditTransaction, error) {
	var restored CreditTransaction
	err := b.apply("unpay", func(s *Book) error {
		i := s.creditIndex(creditID)
		if i < 0 {
			return fmt.Errorf("credit %q: %w", creditID, ErrNotFound)
		}
		cr := s.credits[i]
		if cr.Status != CreditPaid {
			return fmt.Errorf("credit %q: %w", creditID, ErrNotPaid)
		}
		if err := s.withdraw(AccountShop, cr.Amount); err != nil {
			return fmt.Errorf("reversing credit %q: %w", creditID, err)
		}

		if p := s.creditIndex(cr.ParentID); cr.ParentID != "" && p >= 0 && s.credits[p].Unpaid() {
			s.credits[p].Amount = s.credits[p].Amount.Add(cr.Amount)
			restored = s.credits[p]
			s.credits = slices.Delete(s.credits, i, i+1)
		} else {
			s.credits[i].Status = CreditPending
			s.credits[i].PaymentDate = date.Date{}
			restored = s.credits[i]
		}
		s.syncSaleStatus(cr.SaleID)
		s.syncCustomer(cr.CustomerID)
		return nil
	})
	if err != nil {
		return CreditTransaction{}, err
	}
	b.logger.Info("payment reversed",
		zap.String("credit_id", creditID),
		zap.String("customer_id", restored.CustomerID),
		zap.Stringer("amount", restored.Amount),
	)
	return restored, nil
}

// CustomerFilter selects customers in CustomerSummaries.
type CustomerFilter struct {
	Search      string // case-insensitive match on the name, or match on the phone
	OverdueOnly bool
}

func (f CustomerFilter) match(c Customer) bool {
	q := strings.TrimSpace(f.Search)
	if q == "" {
		return true
	}
	if strings.Contains(strings.ToLower(c.Name), strings.ToLower(q)) || strings.Contains(c.Phone, q) {
		return true
	}
	d := digits(q)
	return d != "" && strings.Contains(digits(c.Phone), d)
}

func digits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}

// formatPhone writes a valid phone number in the national format of the shop region.
// Numbers that cannot be parsed are kept as typed.
func (s Settings) formatPhone(raw string) string {
	raw = strings.TrimSpace(raw)
	num, err := libphonenumber.Parse(raw, s.PhoneRegion)
	if err != nil || !libphonenumber.IsValidNumber(num) {
		return raw
	}
	if libphonenumber.GetRegionCodeForNumber(num) != s.PhoneRegion {
		return libphonenumber.Format(num, libphonenumber.INTERNATIONAL)
	}
	return libphonenumber.Format(num, libphonenumber.NATIONAL)
}

// CustomerSummary is the credit position of one customer.
type CustomerSummary struct {
	Customer     Customer
	Pending      Money // unpaid, overdue included
	Overdue      Money
	Transactions int
	OldestUnpaid date.Date // zero when nothing is owed
}

// CustomerSummaries returns the credit position of the customers with a credit history,
// largest pending amount first.
func (b *Book) CustomerSummaries(f CustomerFilter) []CustomerSummary {
	var list []CustomerSummary
	for _, c := range b.customers {
		if !f.match(c) {
			continue
		}
		sum := CustomerSummary{Customer: c}
		for _, cr := range b.credits {
			if cr.CustomerID != c.ID {
				continue
			}
			sum.Transactions++
			if !cr.Unpaid() {
				continue
			}
			sum.Pending = sum.Pending.Add(cr.Amount)
			if cr.Status == CreditOverdue {
				sum.Overdue = sum.Overdue.Add(cr.Amount)
			}
			if sum.OldestUnpaid.IsZero() || cr.Date.Before(sum.OldestUnpaid) {
				sum.OldestUnpaid = cr.Date
			}
		}
		if sum.Transactions == 0 || (f.OverdueOnly && sum.Overdue.IsZero()) {
			continue
		}
		list = append(list, sum)
	}
	slices.SortStableFunc(list, func(x, y CustomerSummary) int {
		if c := y.Pending.Decimal().Cmp(x.Pending.Decimal()); c != 0 {
			return c
		}
		return cmp.Compare(strings.ToLower(x.Customer.Name), strings.ToLower(y.Customer.Name))
	})
	return list
}

// CustomerInput holds the editable fields of a customer.
type CustomerInput struct {
	Name    string `validate:"required"`
	Phone   string `validate:"required"`
	Address string
}

func (in CustomerInput) trimmed() CustomerInput {
	return CustomerInput{
		Name:    strings.TrimSpace(in.Name),
		Phone:   strings.TrimSpace(in.Phone),
		Address: strings.TrimSpace(in.Address),
	}
}

// AddCustomer registers a customer without any credit yet.
func (b *Book) AddCustomer(in CustomerInput) (Customer, error) {
	in = in.trimmed()
	if err := check(in); err != nil {
		return Customer{}, err
	}
	c := Customer{ID: b.newID(), Name: in.Name, Phone: b.settings.formatPhone(in.Phone), Address: in.Address}
	b.customers = append(b.customers, c)
	b.logger.Info("customer added", zap.String("customer_id", c.ID), zap.String("name", c.Name))
	return c, nil
}

// EditCustomer updates a customer. A new name is copied to its credits and sales.
func (b *Book) EditCustomer(id string, in CustomerInput) (Customer, error) {
	in = in.trimmed()
	if err := check(in); err != nil {
		return Customer{}, err
	}
	var edited Customer
	err := b.apply("customer-edit", func(s *Book) error {
		i := s.customerIndex(id)
		if i < 0 {
			return fmt.Errorf("customer %q: %w", id, ErrNotFound)
		}
		c := &s.customers[i]
		c.Name, c.Phone, c.Address = in.Name, s.settings.formatPhone(in.Phone), in.Address
		for j := range s.credits {
			if s.credits[j].CustomerID == id {
				s.credits[j].CustomerName = in.Name
			}
		}
		for j := range s.sales {
			if s.sales[j].CustomerID == id {
				s.sales[j].CustomerName = in.Name
			}
		}
		edited = *c
		return nil
	})
	if err != nil {
		return Customer{}, err
	}
	b.logger.Info("customer edited", zap.String("customer_id", id), zap.String("name", edited.Name))
	return edited, nil
}

// DeleteCustomer removes a customer and its settled credits.
// A customer who still owes money cannot be removed.
func (b *Book) DeleteCustomer(id string) error {
	err := b.apply("customer-rm", func(s *Book) error {
		i := s.customerIndex(id)
		if i < 0 {
			return fmt.Errorf("customer %q: %w", id, ErrNotFound)
		}
		if pending := s.pending(id); !pending.IsZero() {
			return fmt.Errorf("customer %q owes %s: %w", s.customers[i].Name, pending, ErrOutstandingBalance)
		}
		s.customers = slices.Delete(s.customers, i, i+1)
		s.credits = slices.DeleteFunc(s.credits, func(cr CreditTransaction) bool { return cr.CustomerID == id })
		return nil
	})
	if err != nil {
		return err
	}
	b.logger.Info("customer deleted", zap.String("customer_id", id))
	return nil
}
