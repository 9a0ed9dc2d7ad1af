package khata

import (
	"slices"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// collections holds every record of the shop, in insertion order.
type collections struct {
	purchases    []PurchaseItem
	sales        []SaleItem
	customers    []Customer
	credits      []CreditTransaction
	accounts     []Account
	transactions []Transaction
	customItems  []string
}

// clone returns a deep copy, so that a scratch book never aliases the committed one.
func (c collections) clone() collections {
	sales := slices.Clone(c.sales)
	for i := range sales {
		sales[i].BatchesUsed = slices.Clone(sales[i].BatchesUsed)
	}
	return collections{
		purchases:    slices.Clone(c.purchases),
		sales:        sales,
		customers:    slices.Clone(c.customers),
		credits:      slices.Clone(c.credits),
		accounts:     slices.Clone(c.accounts),
		transactions: slices.Clone(c.transactions),
		customItems:  slices.Clone(c.customItems),
	}
}

// Book is the complete set of shop records: purchase batches, sales, customers
// and their credits, cash accounts and finance transactions.
//
// Every mutating method either applies completely or leaves the Book unchanged.
// A Book is not safe for concurrent use.
type Book struct {
	collections
	settings Settings
	logger   *zap.Logger
	newID    func() string
}

// Option configures a Book.
type Option func(*Book)

// WithLogger sets the logger receiving one line per mutation.
func WithLogger(l *zap.Logger) Option { return func(b *Book) { b.logger = l } }

// WithSettings sets the shop rules.
func WithSettings(s Settings) Option { return func(b *Book) { b.settings = s } }

// WithIDs replaces the record identifier generator.
func WithIDs(next func() string) Option { return func(b *Book) { b.newID = next } }

func newBook(opts ...Option) *Book {
	b := &Book{
		settings: DefaultSettings(),
		logger:   zap.NewNop(),
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// NewBook returns an empty book with its default accounts.
func NewBook(opts ...Option) *Book {
	b := newBook(opts...)
	b.InitializeAccounts()
	return b
}

// Settings returns the shop rules the book applies.
func (b *Book) Settings() Settings { return b.settings }

// apply runs fn against a scratch copy of the records and commits the copy only if fn succeeds.
func (b *Book) apply(op string, fn func(scratch *Book) error) error {
	scratch := &Book{
		collections: b.collections.clone(),
		settings:    b.settings,
		logger:      b.logger,
		newID:       b.newID,
	}
	if err := fn(scratch); err != nil {
		b.logger.Warn("operation refused", zap.String("op", op), zap.Error(err))
		return err
	}
	b.collections = scratch.collections
	return nil
}

// Purchases returns all purchase batches.
func (b *Book) Purchases() []PurchaseItem { return slices.Clone(b.purchases) }

// Sales returns all sales.
func (b *Book) Sales() []SaleItem { return b.clone().sales }

// Customers returns all customers.
func (b *Book) Customers() []Customer { return slices.Clone(b.customers) }

// Credits returns all credit transactions.
func (b *Book) Credits() []CreditTransaction { return slices.Clone(b.credits) }

// Accounts returns all cash accounts.
func (b *Book) Accounts() []Account { return slices.Clone(b.accounts) }

// Transactions returns all finance transactions.
func (b *Book) Transactions() []Transaction { return slices.Clone(b.transactions) }

// CustomItems returns the registered custom item names.
func (b *Book) CustomItems() []string { return slices.Clone(b.customItems) }

// Customer returns the customer with this id.
func (b *Book) Customer(id string) (Customer, bool) {
	i := b.customerIndex(id)
	if i < 0 {
		return Customer{}, false
	}
	return b.customers[i], true
}

// Sale returns the sale with this id.
func (b *Book) Sale(id string) (SaleItem, bool) {
	i := b.saleIndex(id)
	if i < 0 {
		return SaleItem{}, false
	}
	s := b.sales[i]
	s.BatchesUsed = slices.Clone(s.BatchesUsed)
	return s, true
}

// Account returns the account of this type.
func (b *Book) Account(t AccountType) (Account, bool) {
	a := b.account(t)
	if a == nil {
		return Account{}, false
	}
	return *a, true
}

func (c *collections) purchaseIndex(id string) int {
	return slices.IndexFunc(c.purchases, func(p PurchaseItem) bool { return p.ID == id })
}

func (c *collections) saleIndex(id string) int {
	return slices.IndexFunc(c.sales, func(s SaleItem) bool { return s.ID == id })
}

func (c *collections) customerIndex(id string) int {
	return slices.IndexFunc(c.customers, func(cu Customer) bool { return cu.ID == id })
}

func (c *collections) creditIndex(id string) int {
	return slices.IndexFunc(c.credits, func(cr CreditTransaction) bool { return cr.ID == id })
}

func (c *collections) transactionIndex(id string) int {
	return slices.IndexFunc(c.transactions, func(t Transaction) bool { return t.ID == id })
}

// account returns a pointer to the account of type t, or nil.
func (c *collections) account(t AccountType) *Account {
	i := slices.IndexFunc(c.accounts, func(a Account) bool { return a.Type == t })
	if i < 0 {
		return nil
	}
	return &c.accounts[i]
}
