package khata

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/etnz/khata/date"
	"go.uber.org/zap"
)

// AccountType identifies one of the shop's cash buckets.
type AccountType string

const (
	AccountShop   AccountType = "shop"
	AccountBank   AccountType = "bank"
	AccountHome   AccountType = "home"
	AccountEquity AccountType = "equity"
)

// ParseAccountType parses an account type, case-insensitively.
func ParseAccountType(s string) (AccountType, error) {
	t := AccountType(strings.ToLower(strings.TrimSpace(s)))
	switch t {
	case AccountShop, AccountBank, AccountHome, AccountEquity:
		return t, nil
	}
	return "", fmt.Errorf("%w: unknown account %q", ErrInvalidInput, s)
}

// Account is a cash bucket with its current balance.
type Account struct {
	ID      string      `json:"id"`
	Name    string      `json:"name"`
	Type    AccountType `json:"type"`
	Balance Money       `json:"balance"`
}

// TransactionType is the kind of a finance transaction.
type TransactionType string

const (
	TxExpense  TransactionType = "expense"
	TxTransfer TransactionType = "transfer"
	TxDeposit  TransactionType = "deposit"
	TxSale     TransactionType = "sale"
)

// Transaction moves money into, out of, or between accounts.
type Transaction struct {
	ID          string          `json:"id"`
	Date        date.Date       `json:"date"`
	Type        TransactionType `json:"type"`
	Amount      Money           `json:"amount"`
	FromAccount AccountType     `json:"fromAccount,omitempty"`
	ToAccount   AccountType     `json:"toAccount,omitempty"`
	Category    string          `json:"category,omitempty"`
	Description string          `json:"description,omitempty"`
}

// InitializeAccounts creates the configured accounts when the book has none.
// It reports whether accounts were created.
func (b *Book) InitializeAccounts() bool {
	if len(b.accounts) > 0 {
		return false
	}
	for i, spec := range b.settings.Accounts {
		b.accounts = append(b.accounts, Account{ID: strconv.Itoa(i + 1), Name: spec.Name, Type: spec.Type})
	}
	b.logger.Info("accounts initialized", zap.Int("count", len(b.accounts)))
	return true
}

// deposit adds amount to an account.
func (c *collections) deposit(t AccountType, amount Money) error {
	a := c.account(t)
	if a == nil {
		return fmt.Errorf("account %q: %w", t, ErrNotFound)
	}
	a.Balance = a.Balance.Add(amount)
	return nil
}

// withdraw takes amount from an account. The balance cannot go negative.
func (c *collections) withdraw(t AccountType, amount Money) error {
	a := c.account(t)
	if a == nil {
		return fmt.Errorf("account %q: %w", t, ErrNotFound)
	}
	if a.Balance.LessThan(amount) {
		return fmt.Errorf("%w in %s: %s available, %s needed", ErrInsufficientBalance, a.Name, a.Balance, amount)
	}
	a.Balance = a.Balance.Sub(amount)
	return nil
}

// ExpenseInput describes money spent from an account.
type ExpenseInput struct {
	Date        date.Date
	Amount      Money
	Category    string      `validate:"required"`
	From        AccountType `validate:"required"`
	Description string
}

// TransferInput describes money moved between two accounts.
type TransferInput struct {
	Date        date.Date
	Amount      Money
	From        AccountType `validate:"required"`
	To          AccountType `validate:"required"`
	Description string
}

// DepositInput describes money put into an account.
type DepositInput struct {
	Date        date.Date
	Amount      Money
	To          AccountType `validate:"required"`
	Description string
}

// Expense records money spent from an account with a sufficient balance.
func (b *Book) Expense(in ExpenseInput) (Transaction, error) {
	if err := check(in); err != nil {
		return Transaction{}, err
	}
	if err := positive("amount", in.Amount); err != nil {
		return Transaction{}, err
	}
	return b.record("expense", Transaction{
		Date:        in.Date,
		Type:        TxExpense,
		Amount:      in.Amount,
		FromAccount: in.From,
		Category:    strings.TrimSpace(in.Category),
		Description: in.Description,
	})
}

// Transfer moves money between two distinct accounts.
func (b *Book) Transfer(in TransferInput) (Transaction, error) {
	if err := check(in); err != nil {
		return Transaction{}, err
	}
	if err := positive("amount", in.Amount); err != nil {
		return Transaction{}, err
	}
	if in.From == in.To {
		return Transaction{}, fmt.Errorf("%w: %s", ErrSameAccount, in.From)
	}
	return b.record("transfer", Transaction{
		Date:        in.Date,
		Type:        TxTransfer,
		Amount:      in.Amount,
		FromAccount: in.From,
		ToAccount:   in.To,
		Description: in.Description,
	})
}

// Deposit adds money to an account.
func (b *Book) Deposit(in DepositInput) (Transaction, error) {
	if err := check(in); err != nil {
		return Transaction{}, err
	}
	if err := positive("amount", in.Amount); err != nil {
		return Transaction{}, err
	}
	return b.record("deposit", Transaction{
		Date:        in.Date,
		Type:        TxDeposit,
		Amount:      in.Amount,
		ToAccount:   in.To,
		Description: in.Description,
	})
}

// record applies the account impact of tx and stores it.
func (b *Book) record(op string, tx Transaction) (Transaction, error) {
	if tx.Date.IsZero() {
		tx.Date = date.Today()
	}
	err := b.apply(op, func(s *Book) error {
		tx.ID = s.newID()
		if tx.FromAccount != "" {
			if err := s.withdraw(tx.FromAccount, tx.Amount); err != nil {
				return err
			}
		}
		if tx.ToAccount != "" {
			if err := s.deposit(tx.ToAccount, tx.Amount); err != nil {
				return err
			}
		}
		s.transactions = append(s.transactions, tx)
		return nil
	})
	if err != nil {
		return Transaction{}, err
	}
	b.logger.Info("transaction recorded",
		zap.String("tx_id", tx.ID),
		zap.String("type", string(tx.Type)),
		zap.Stringer("amount", tx.Amount),
	)
	return tx, nil
}

// DeleteTransaction reverses the account impact of a transaction and removes it.
func (b *Book) DeleteTransaction(id string) error {
	var removed Transaction
	err := b.apply("tx-rm", func(s *Book) error {
		i := s.transactionIndex(id)
		if i < 0 {
			return fmt.Errorf("transaction %q: %w", id, ErrNotFound)
		}
		removed = s.transactions[i]
		if removed.ToAccount != "" {
			if err := s.withdraw(removed.ToAccount, removed.Amount); err != nil {
				return fmt.Errorf("reversing transaction %q: %w", id, err)
			}
		}
		if removed.FromAccount != "" {
			if err := s.deposit(removed.FromAccount, removed.Amount); err != nil {
				return err
			}
		}
		s.transactions = slices.Delete(s.transactions, i, i+1)
		return nil
	})
	if err != nil {
		return err
	}
	b.logger.Info("transaction deleted", zap.String("tx_id", id), zap.String("type", string(removed.Type)))
	return nil
}

// TransactionsInRange returns the transactions within r, oldest first.
func (b *Book) TransactionsInRange(r date.Range) []Transaction {
	var in []Transaction
	for _, tx := range b.transactions {
		if r.Contains(tx.Date) {
			in = append(in, tx)
		}
	}
	slices.SortStableFunc(in, func(x, y Transaction) int { return x.Date.Compare(y.Date) })
	return in
}
