package khata

import (
	"fmt"
	"slices"
	"strings"

	"github.com/etnz/khata/date"
	"go.uber.org/zap"
)

// PaymentStatus tells whether a sale has been paid for.
type PaymentStatus string

const (
	StatusPaid    PaymentStatus = "paid"
	StatusPending PaymentStatus = "pending"
)

// SaleItem is one item sold on a date. Credit sales are linked to a customer
// and to the credit transactions they created.
type SaleItem struct {
	ID             string        `json:"id"`
	Date           date.Date     `json:"date"`
	ItemType       ItemType      `json:"itemType"`
	CustomItemName string        `json:"customItemName,omitempty"`
	Quantity       Quantity      `json:"quantity"`
	PricePerUnit   Money         `json:"pricePerUnit"`
	TotalAmount    Money         `json:"totalAmount"`
	CustomerID     string        `json:"customerId,omitempty"`
	CustomerName   string        `json:"customerName,omitempty"`
	IsCredit       bool          `json:"isCredit"`
	PaymentStatus  PaymentStatus `json:"paymentStatus"`
	BatchesUsed    []BatchUse    `json:"batchesUsed,omitempty"`
}

// Item returns the item sold.
func (s SaleItem) Item() Item { return NewItem(s.ItemType, s.CustomItemName) }

// SaleLine is one item of a sale.
type SaleLine struct {
	Type     ItemType `validate:"required"`
	Name     string   `validate:"required_if=Type OTHER"`
	Quantity Quantity
	Price    Money
}

// SaleInput describes a sale. A credit sale is made to an existing customer,
// identified by CustomerID, or to a new customer named CustomerName.
type SaleInput struct {
	Date          date.Date
	Credit        bool
	CustomerID    string
	CustomerName  string
	CustomerPhone string
	Lines         []SaleLine `validate:"min=1,dive"`
}

// RecordSale records one sale per line, consuming the stock FIFO.
//
// A cash sale adds its total to the Shop account. A credit sale books one
// pending credit per line, due after the configured credit days.
// If any line cannot be served nothing is recorded.
func (b *Book) RecordSale(in SaleInput) ([]SaleItem, error) {
	if err := check(in); err != nil {
		return nil, err
	}
	if in.Date.IsZero() {
		in.Date = date.Today()
	}

	var sales []SaleItem
	err := b.apply("sale", func(s *Book) error {
		var customer Customer
		if in.Credit {
			var err error
			if customer, err = s.saleCustomer(in); err != nil {
				return err
			}
		}
		for i, line := range in.Lines {
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
			sale := SaleItem{
				ID:             s.newID(),
				Date:           in.Date,
				ItemType:       item.Type,
				CustomItemName: item.Name,
				Quantity:       line.Quantity,
				PricePerUnit:   line.Price,
				TotalAmount:    line.Price.Mul(line.Quantity),
				CustomerName:   strings.TrimSpace(in.CustomerName),
				PaymentStatus:  StatusPaid,
			}
			if in.Credit {
				sale.IsCredit = true
				sale.PaymentStatus = StatusPending
				sale.CustomerID = customer.ID
				sale.CustomerName = customer.Name
			}
			if err := s.post(&sale); err != nil {
				return fmt.Errorf("line %d: %w", i+1, err)
			}
			s.sales = append(s.sales, sale)
			sales = append(sales, sale)
		}
		if len(sales) == 0 {
			return ErrNoLines
		}
		if in.Credit {
			s.syncCustomer(customer.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	var total Money
	for _, sale := range sales {
		total = total.Add(sale.TotalAmount)
	}
	b.logger.Info("sale recorded",
		zap.Int("lines", len(sales)),
		zap.Bool("credit", in.Credit),
		zap.String("customer_id", sales[0].CustomerID),
		zap.Stringer("total", total),
	)
	return sales, nil
}

// saleCustomer resolves the customer of a credit sale, creating it when only a name is given.
func (b *Book) saleCustomer(in SaleInput) (Customer, error) {
	if in.CustomerID != "" {
		i := b.customerIndex(in.CustomerID)
		if i < 0 {
			return Customer{}, fmt.Errorf("customer %q: %w", in.CustomerID, ErrNotFound)
		}
		return b.customers[i], nil
	}
	name := strings.TrimSpace(in.CustomerName)
	if name == "" {
		return Customer{}, ErrCustomerRequired
	}
	c := Customer{
		ID:               b.newID(),
		Name:             name,
		Phone:            b.settings.formatPhone(in.CustomerPhone),
		LastPurchaseDate: in.Date,
	}
	b.customers = append(b.customers, c)
	return c, nil
}

// post consumes the stock of a sale and books its money side: a credit or the Shop account.
func (b *Book) post(sale *SaleItem) error {
	used, err := b.consume(sale.Item(), sale.Quantity)
	if err != nil {
		return err
	}
	sale.BatchesUsed = used
	if !sale.IsCredit {
		return b.deposit(AccountShop, sale.TotalAmount)
	}
	b.credits = append(b.credits, CreditTransaction{
		ID:           b.newID(),
		CustomerID:   sale.CustomerID,
		CustomerName: sale.CustomerName,
		SaleID:       sale.ID,
		Amount:       sale.TotalAmount,
		Date:         sale.Date,
		DueDate:      sale.Date.Add(b.settings.CreditDays),
		Status:       CreditPending,
	})
	return nil
}

// unpost reverses post: it removes the credits of a credit sale, or takes the
// total back from the Shop account, and returns the stock to its batches.
func (b *Book) unpost(sale SaleItem) error {
	if !sale.IsCredit {
		if err := b.withdraw(AccountShop, sale.TotalAmount); err != nil {
			return fmt.Errorf("sale %q: %w", sale.ID, err)
		}
	}
	return b.release(sale)
}

// release removes the credits of a sale and returns its stock, leaving the accounts alone.
func (b *Book) release(sale SaleItem) error {
	if sale.IsCredit {
		for _, cr := range b.credits {
			if cr.SaleID == sale.ID && cr.Status == CreditPaid {
				return fmt.Errorf("sale %q: %w (reverse the payment of credit %q first)", sale.ID, ErrSalePaid, cr.ID)
			}
		}
		b.credits = slices.DeleteFunc(b.credits, func(cr CreditTransaction) bool { return cr.SaleID == sale.ID })
	}
	return b.restore(sale.Item(), sale.BatchesUsed, sale.Quantity)
}

// DeleteSale removes a sale and compensates everything it changed.
// A credit sale that already received payments cannot be deleted.
func (b *Book) DeleteSale(id string) error {
	var removed SaleItem
	err := b.apply("sale-rm", func(s *Book) error {
		i := s.saleIndex(id)
		if i < 0 {
			return fmt.Errorf("sale %q: %w", id, ErrNotFound)
		}
		removed = s.sales[i]
		if err := s.unpost(removed); err != nil {
			return err
		}
		s.sales = slices.Delete(s.sales, i, i+1)
		if removed.IsCredit {
			s.syncCustomer(removed.CustomerID)
		}
		return nil
	})
	if err != nil {
		return err
	}
	b.logger.Info("sale deleted",
		zap.String("sale_id", id),
		zap.Bool("credit", removed.IsCredit),
		zap.Stringer("total", removed.TotalAmount),
	)
	return nil
}

// SaleEdit lists the changes to a sale. Nil fields are left unchanged.
type SaleEdit struct {
	Date     *date.Date
	Quantity *Quantity
	Price    *Money
}

// EditSale changes the date, quantity or price of a sale. The sale is reversed
// and posted again with the changes, keeping its id and customer.
// A cash sale takes its old total back from the Shop account after the new
// total is paid in, so only the final balance has to be covered.
func (b *Book) EditSale(id string, edit SaleEdit) (SaleItem, error) {
	var edited SaleItem
	err := b.apply("sale-edit", func(s *Book) error {
		i := s.saleIndex(id)
		if i < 0 {
			return fmt.Errorf("sale %q: %w", id, ErrNotFound)
		}
		old := s.sales[i]
		if old.IsCredit && s.customerIndex(old.CustomerID) < 0 {
			return fmt.Errorf("sale %q: customer %q: %w", id, old.CustomerID, ErrNotFound)
		}
		if err := s.release(old); err != nil {
			return err
		}
		edited = old
		edited.BatchesUsed = nil
		if edit.Date != nil && !edit.Date.IsZero() {
			edited.Date = *edit.Date
		}
		if edit.Quantity != nil {
			if !edit.Quantity.IsPositive() {
				return fmt.Errorf("%w: quantity must be positive, got %s", ErrInvalidInput, edit.Quantity)
			}
			edited.Quantity = *edit.Quantity
		}
		if edit.Price != nil {
			if err := positive("price", *edit.Price); err != nil {
				return err
			}
			edited.PricePerUnit = *edit.Price
		}
		edited.TotalAmount = edited.PricePerUnit.Mul(edited.Quantity)
		if err := s.post(&edited); err != nil {
			return err
		}
		if !old.IsCredit {
			if err := s.withdraw(AccountShop, old.TotalAmount); err != nil {
				return fmt.Errorf("sale %q: %w", id, err)
			}
		}
		s.sales[i] = edited
		if edited.IsCredit {
			today := date.Today()
			for j := range s.credits {
				cr := &s.credits[j]
				if cr.SaleID == id && cr.Status == CreditPending && today.DaysSince(cr.Date) > s.settings.OverdueDays {
					cr.Status = CreditOverdue
				}
			}
			s.syncSaleStatus(edited.ID)
			s.syncCustomer(edited.CustomerID)
		}
		return nil
	})
	if err != nil {
		return SaleItem{}, err
	}
	b.logger.Info("sale edited",
		zap.String("sale_id", id),
		zap.Stringer("quantity", edited.Quantity),
		zap.Stringer("total", edited.TotalAmount),
	)
	return edited, nil
}

// syncSaleStatus marks a credit sale paid once all its credits are paid.
func (c *collections) syncSaleStatus(saleID string) {
	i := c.saleIndex(saleID)
	if i < 0 || !c.sales[i].IsCredit {
		return
	}
	status := StatusPaid
	for _, cr := range c.credits {
		if cr.SaleID == saleID && cr.Unpaid() {
			status = StatusPending
			break
		}
	}
	c.sales[i].PaymentStatus = status
}

// SalesSummary lists sales with their totals.
type SalesSummary struct {
	Range  date.Range
	Sales  []SaleItem
	Total  Money
	Cash   Money
	Credit Money
}

// SalesInRange returns the sales made within r, oldest first.
func (b *Book) SalesInRange(r date.Range) SalesSummary {
	sum := SalesSummary{Range: r}
	for _, s := range b.sales {
		if !r.Contains(s.Date) {
			continue
		}
		sum.Sales = append(sum.Sales, s)
		sum.Total = sum.Total.Add(s.TotalAmount)
		if s.IsCredit {
			sum.Credit = sum.Credit.Add(s.TotalAmount)
		} else {
			sum.Cash = sum.Cash.Add(s.TotalAmount)
		}
	}
	slices.SortStableFunc(sum.Sales, func(x, y SaleItem) int { return x.Date.Compare(y.Date) })
	return sum
}
