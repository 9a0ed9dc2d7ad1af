package khata

import (
	"encoding/json"
	"testing"

	"github.com/etnz/khata/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestBook_SaveLoad(t *testing.T) {
	b, ali, _ := creditSetup(t)
	sell(t, b, "2025-01-06", sline(BN, 1, 150))
	_, err := b.ReceivePayment(ali.ID, M(320), day("2025-02-01"))
	require.NoError(t, err)
	_, err = b.Expense(ExpenseInput{Date: day("2025-02-02"), Amount: M(100), Category: "rent", From: AccountShop})
	require.NoError(t, err)

	s := store.NewMemory()
	require.NoError(t, b.Save(s))
	keys, err := s.Keys()
	require.NoError(t, err)
	assert.ElementsMatch(t, Keys, keys)

	loaded, err := LoadBook(s, WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)
	for _, pair := range [][2]any{
		{b.Purchases(), loaded.Purchases()},
		{b.Sales(), loaded.Sales()},
		{b.Customers(), loaded.Customers()},
		{b.Credits(), loaded.Credits()},
		{b.Accounts(), loaded.Accounts()},
		{b.Transactions(), loaded.Transactions()},
	} {
		want, err := json.Marshal(pair[0])
		require.NoError(t, err)
		got, err := json.Marshal(pair[1])
		require.NoError(t, err)
		assert.JSONEq(t, string(want), string(got))
	}
	assert.Empty(t, loaded.Check())
}

func TestBook_SaveEmpty(t *testing.T) {
	s := store.NewMemory()
	require.NoError(t, newTestBook(t).Save(s))
	raw, ok := s.Raw(KeySales)
	require.True(t, ok)
	assert.Equal(t, "[]", string(raw))
}

func TestLoadBook_Empty(t *testing.T) {
	b, err := LoadBook(store.NewMemory())
	require.NoError(t, err)
	assert.Len(t, b.Accounts(), 4, "default accounts are created")
	assert.Empty(t, b.Sales())
}

func TestLoadBook_Corrupt(t *testing.T) {
	s := store.NewMemory()
	s.SetRaw(KeyCredits, []byte(`{"not": "a list"}`))
	_, err := LoadBook(s)
	assert.ErrorContains(t, err, KeyCredits)
}

// Records written by the browser version carry timestamps and floating point numbers.
func TestLoadBook_BrowserRecords(t *testing.T) {
	s := store.NewMemory()
	s.SetRaw(KeyPurchases, []byte(`[{"id":"1705312200000","date":"2024-01-15T10:30:00.000Z","itemType":"BN","quantity":10,
		"pricePerUnit":2500.5,"totalCost":25005,"supplier":"Depot","batchNumber":"001","remainingQuantity":8}]`))
	s.SetRaw(KeySales, []byte(`[{"id":"s1","date":"2024-01-16T08:00:00.000Z","itemType":"BN","quantity":2,"pricePerUnit":2800,
		"totalAmount":5600,"isCredit":true,"customerId":"CUST-1","customerName":"Ali","paymentStatus":"pending",
		"batchesUsed":[{"batchId":"001","quantity":2}]}]`))
	s.SetRaw(KeyCustomers, []byte(`[{"id":"CUST-1","name":"Ali","phone":"0300","address":"","totalCredit":5600,
		"lastPurchaseDate":"2024-01-16T08:00:00.000Z"}]`))
	s.SetRaw(KeyCredits, []byte(`[{"id":"c1","customerId":"CUST-1","customerName":"Ali","saleId":"s1","amount":5600,
		"date":"2024-01-16T08:00:00.000Z","dueDate":"2024-03-01T08:00:00.000Z","status":"pending"}]`))
	s.SetRaw(KeyAccounts, []byte(`[{"id":"1","name":"Shop","type":"shop","balance":1500.25},
		{"id":"2","name":"Bank","type":"bank","balance":0},{"id":"3","name":"Home","type":"home","balance":0}]`))

	b, err := LoadBook(s, WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)
	assert.Len(t, b.Accounts(), 3, "stored accounts are kept as they are")
	assert.Equal(t, day("2024-01-15"), b.Purchases()[0].Date)
	assert.Equal(t, "2500.5", b.Purchases()[0].PricePerUnit.Decimal().String())
	assert.Empty(t, b.Check())

	paid, err := b.ReceivePayment("CUST-1", M(600), day("2024-02-01"))
	require.NoError(t, err)
	require.Len(t, paid, 1)
	assertMoney(t, 5000, b.Credits()[0].Amount)
}

func TestApply_FailureLeavesBookUnchanged(t *testing.T) {
	b := newTestBook(t)
	buy(t, b, "2025-01-01", pline(BN, 1, 100))
	before := b.clone()

	err := b.apply("test", func(s *Book) error {
		s.purchases[0].RemainingQuantity = Q(0)
		s.accounts[0].Balance = M(99)
		return ErrInvalidInput
	})
	require.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, before, b.collections)
}
