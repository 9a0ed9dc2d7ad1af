package khata

import (
	"testing"

	"github.com/etnz/khata/date"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeAccounts(t *testing.T) {
	b := newTestBook(t)
	accounts := b.Accounts()
	require.Len(t, accounts, 4)
	var names []string
	for _, a := range accounts {
		names = append(names, a.Name)
		assert.True(t, a.Balance.IsZero())
	}
	assert.Equal(t, []string{"Shop", "Bank", "Home", "Equity"}, names)
	assert.False(t, b.InitializeAccounts(), "existing accounts are kept")
}

func TestFinance(t *testing.T) {
	b := newTestBook(t)

	dep, err := b.Deposit(DepositInput{Date: day("2025-01-01"), Amount: M(1000), To: AccountShop, Description: "opening cash"})
	require.NoError(t, err)
	assert.Equal(t, TxDeposit, dep.Type)

	exp, err := b.Expense(ExpenseInput{Date: day("2025-01-02"), Amount: M(200), Category: "rent", From: AccountShop})
	require.NoError(t, err)
	tr, err := b.Transfer(TransferInput{Date: day("2025-01-03"), Amount: M(500), From: AccountShop, To: AccountBank})
	require.NoError(t, err)

	assertMoney(t, 300, balance(t, b, AccountShop))
	assertMoney(t, 500, balance(t, b, AccountBank))

	require.NoError(t, b.DeleteTransaction(exp.ID))
	assertMoney(t, 500, balance(t, b, AccountShop))
	require.NoError(t, b.DeleteTransaction(tr.ID))
	assertMoney(t, 1000, balance(t, b, AccountShop))
	assertMoney(t, 0, balance(t, b, AccountBank))

	txs := b.TransactionsInRange(date.Between(day("2025-01-01"), day("2025-01-31")))
	require.Len(t, txs, 1)
	assert.Equal(t, dep.ID, txs[0].ID)
}

func TestFinance_Refused(t *testing.T) {
	b := newTestBook(t)
	_, err := b.Deposit(DepositInput{Amount: M(100), To: AccountShop})
	require.NoError(t, err)

	testCases := []struct {
		name string
		run  func() error
		want error
	}{
		{"expense over balance", func() error {
			_, err := b.Expense(ExpenseInput{Amount: M(101), Category: "rent", From: AccountShop})
			return err
		}, ErrInsufficientBalance},
		{"expense without category", func() error {
			_, err := b.Expense(ExpenseInput{Amount: M(1), From: AccountShop})
			return err
		}, ErrInvalidInput},
		{"negative amount", func() error {
			_, err := b.Deposit(DepositInput{Amount: M(-1), To: AccountShop})
			return err
		}, ErrInvalidInput},
		{"transfer to itself", func() error {
			_, err := b.Transfer(TransferInput{Amount: M(1), From: AccountShop, To: AccountShop})
			return err
		}, ErrSameAccount},
		{"transfer over balance", func() error {
			_, err := b.Transfer(TransferInput{Amount: M(500), From: AccountShop, To: AccountHome})
			return err
		}, ErrInsufficientBalance},
		{"unknown account", func() error {
			_, err := b.Deposit(DepositInput{Amount: M(1), To: "savings"})
			return err
		}, ErrNotFound},
		{"unknown transaction", func() error { return b.DeleteTransaction("nope") }, ErrNotFound},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, tc.run(), tc.want)
			assertMoney(t, 100, balance(t, b, AccountShop))
			assert.Len(t, b.Transactions(), 1)
		})
	}
}

func TestDeleteTransaction_DepositAlreadySpent(t *testing.T) {
	b := newTestBook(t)
	dep, err := b.Deposit(DepositInput{Amount: M(100), To: AccountHome})
	require.NoError(t, err)
	_, err = b.Expense(ExpenseInput{Amount: M(60), Category: "owner", From: AccountHome})
	require.NoError(t, err)

	assert.ErrorIs(t, b.DeleteTransaction(dep.ID), ErrInsufficientBalance)
	assertMoney(t, 40, balance(t, b, AccountHome))
}

func TestParseAccountType(t *testing.T) {
	got, err := ParseAccountType(" Bank ")
	require.NoError(t, err)
	assert.Equal(t, AccountBank, got)
	_, err = ParseAccountType("wallet")
	assert.ErrorIs(t, err, ErrInvalidInput)
}
