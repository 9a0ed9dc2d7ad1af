package khata

import (
	"errors"
	"fmt"

	"github.com/etnz/khata/store"
	"go.uber.org/zap"
)

// Store keys of the book collections.
const (
	KeyPurchases    = "lpg_purchases"
	KeySales        = "lpg_sales"
	KeyCustomers    = "lpg_customers"
	KeyCredits      = "lpg_credits"
	KeyAccounts     = "lpg_accounts"
	KeyTransactions = "lpg_transactions"
	KeyCustomItems  = "lpg_custom_items"
)

// Keys lists every key the book reads and writes.
var Keys = []string{KeyPurchases, KeySales, KeyCustomers, KeyCredits, KeyAccounts, KeyTransactions, KeyCustomItems}

// documents maps each store key to the collection it holds.
func (c *collections) documents() map[string]any {
	return map[string]any{
		KeyPurchases:    &c.purchases,
		KeySales:        &c.sales,
		KeyCustomers:    &c.customers,
		KeyCredits:      &c.credits,
		KeyAccounts:     &c.accounts,
		KeyTransactions: &c.transactions,
		KeyCustomItems:  &c.customItems,
	}
}

// LoadBook reads every collection from s. Missing keys are empty collections,
// and the default accounts are created when none is stored.
func LoadBook(s store.Store, opts ...Option) (*Book, error) {
	b := newBook(opts...)
	docs := b.documents()
	for _, key := range Keys {
		if _, err := s.Get(key, docs[key]); err != nil {
			return nil, fmt.Errorf("could not load book: %w", err)
		}
	}
	b.InitializeAccounts()
	b.logger.Debug("book loaded",
		zap.Int("purchases", len(b.purchases)),
		zap.Int("sales", len(b.sales)),
		zap.Int("customers", len(b.customers)),
		zap.Int("credits", len(b.credits)),
		zap.Int("transactions", len(b.transactions)),
	)
	return b, nil
}

// Save writes every collection to s. Empty collections are stored as empty arrays.
func (b *Book) Save(s store.Store) error {
	var errs []error
	docs := map[string]any{
		KeyPurchases:    orEmpty(b.purchases),
		KeySales:        orEmpty(b.sales),
		KeyCustomers:    orEmpty(b.customers),
		KeyCredits:      orEmpty(b.credits),
		KeyAccounts:     orEmpty(b.accounts),
		KeyTransactions: orEmpty(b.transactions),
		KeyCustomItems:  orEmpty(b.customItems),
	}
	for _, key := range Keys {
		if err := s.Set(key, docs[key]); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("could not save book: %w", err)
	}
	b.logger.Debug("book saved")
	return nil
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
