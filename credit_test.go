package khata

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// creditSetup sells BN on credit to Ali on 2025-01-05 in two lines: 300 and 150.
func creditSetup(t *testing.T) (*Book, Customer, []SaleItem) {
	t.Helper()
	b := newTestBook(t)
	buy(t, b, "2025-01-01", pline(BN, 10, 100))
	sales, err := b.RecordSale(SaleInput{
		Date:          day("2025-01-05"),
		Credit:        true,
		CustomerName:  "Ali",
		CustomerPhone: "0300-1234567",
		Lines:         []SaleLine{sline(BN, 2, 150), sline(BN, 1, 150)},
	})
	require.NoError(t, err)
	ali, ok := b.Customer(sales[0].CustomerID)
	require.True(t, ok)
	return b, ali, sales
}

func TestRefreshOverdue(t *testing.T) {
	b, _, _ := creditSetup(t)

	assert.Equal(t, 0, b.RefreshOverdue(day("2025-02-19")), "45 days old is not overdue yet")
	assert.Equal(t, 2, b.RefreshOverdue(day("2025-02-20")))
	assert.Equal(t, 0, b.RefreshOverdue(day("2025-02-21")), "already overdue")
	for _, cr := range b.Credits() {
		assert.Equal(t, CreditOverdue, cr.Status)
	}
}

func TestReceivePayment_Split(t *testing.T) {
	b, ali, sales := creditSetup(t)

	paid, err := b.ReceivePayment(ali.ID, M(350), day("2025-02-01"))
	require.NoError(t, err)
	require.Len(t, paid, 2)
	assertMoney(t, 300, paid[0].Amount)
	assert.Equal(t, day("2025-02-01"), paid[0].PaymentDate)
	assertMoney(t, 50, paid[1].Amount)

	credits := b.Credits()
	require.Len(t, credits, 3)
	assert.Equal(t, CreditPaid, credits[0].Status)
	assert.Equal(t, CreditPending, credits[1].Status)
	assertMoney(t, 100, credits[1].Amount, "reduced by the partial payment")
	piece := credits[2]
	assert.Equal(t, credits[1].ID, piece.ParentID)
	assert.Equal(t, sales[1].ID, piece.SaleID)
	assert.Equal(t, CreditPaid, piece.Status)

	ali, _ = b.Customer(ali.ID)
	assertMoney(t, 100, ali.TotalCredit)
	assertMoney(t, 350, balance(t, b, AccountShop))

	s0, _ := b.Sale(sales[0].ID)
	s1, _ := b.Sale(sales[1].ID)
	assert.Equal(t, StatusPaid, s0.PaymentStatus)
	assert.Equal(t, StatusPending, s1.PaymentStatus)
	assert.Empty(t, b.Check())
}

func TestReceivePayment_Invalid(t *testing.T) {
	b, ali, _ := creditSetup(t)

	_, err := b.ReceivePayment(ali.ID, M(451), day("2025-02-01"))
	assert.ErrorIs(t, err, ErrOverpayment)
	_, err = b.ReceivePayment(ali.ID, M(0), day("2025-02-01"))
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = b.ReceivePayment("ghost", M(10), day("2025-02-01"))
	assert.ErrorIs(t, err, ErrNotFound)

	assertMoney(t, 0, balance(t, b, AccountShop))
	for _, cr := range b.Credits() {
		assert.Equal(t, CreditPending, cr.Status)
	}
}

func TestReceivePayment_Exact(t *testing.T) {
	b, ali, sales := creditSetup(t)
	b.RefreshOverdue(day("2025-03-01"))

	paid, err := b.ReceivePayment(ali.ID, M(450), day("2025-03-01"))
	require.NoError(t, err)
	assert.Len(t, paid, 2, "overdue credits are paid too")
	ali, _ = b.Customer(ali.ID)
	assertMoney(t, 0, ali.TotalCredit)
	for _, s := range sales {
		got, _ := b.Sale(s.ID)
		assert.Equal(t, StatusPaid, got.PaymentStatus)
	}
}

func TestReversePayment(t *testing.T) {
	b, ali, sales := creditSetup(t)
	paid, err := b.ReceivePayment(ali.ID, M(350), day("2025-02-01"))
	require.NoError(t, err)

	// the split piece merges back into its parent
	restored, err := b.ReversePayment(paid[1].ID)
	require.NoError(t, err)
	assert.Equal(t, paid[1].ParentID, restored.ID)
	assertMoney(t, 150, restored.Amount)
	assert.Len(t, b.Credits(), 2)

	// a fully paid credit becomes pending again
	restored, err = b.ReversePayment(paid[0].ID)
	require.NoError(t, err)
	assert.Equal(t, CreditPending, restored.Status)
	assert.True(t, restored.PaymentDate.IsZero())

	ali, _ = b.Customer(ali.ID)
	assertMoney(t, 450, ali.TotalCredit)
	assertMoney(t, 0, balance(t, b, AccountShop))
	s0, _ := b.Sale(sales[0].ID)
	assert.Equal(t, StatusPending, s0.PaymentStatus)

	_, err = b.ReversePayment(paid[0].ID)
	assert.ErrorIs(t, err, ErrNotPaid)
	assert.Empty(t, b.Check())

	require.NoError(t, b.DeleteSale(sales[0].ID), "a reversed sale can be deleted")
}

func TestReversePayment_NeedsCash(t *testing.T) {
	b, ali, _ := creditSetup(t)
	paid, err := b.ReceivePayment(ali.ID, M(300), day("2025-02-01"))
	require.NoError(t, err)
	_, err = b.Transfer(TransferInput{Amount: M(300), From: AccountShop, To: AccountBank})
	require.NoError(t, err)

	_, err = b.ReversePayment(paid[0].ID)
	assert.ErrorIs(t, err, ErrInsufficientBalance)
	assert.Equal(t, CreditPaid, b.Credits()[0].Status)
}

func TestHistory(t *testing.T) {
	b, ali, _ := creditSetup(t)
	_, err := b.ReceivePayment(ali.ID, M(350), day("2025-02-01"))
	require.NoError(t, err)

	st, err := b.History(ali.ID)
	require.NoError(t, err)
	require.Len(t, st.Entries, 4)

	wantKinds := []EntryKind{EntryCredit, EntryCredit, EntryPayment, EntryPayment}
	wantBalances := []int{300, 450, 150, 100}
	for i, e := range st.Entries {
		assert.Equal(t, wantKinds[i], e.Kind, "entry %d", i)
		assertMoney(t, wantBalances[i], e.Balance, "entry", i)
	}
	assertMoney(t, 150, st.Entries[1].Debit, "the split piece is folded into its parent")
	assertMoney(t, 100, st.Pending)
	ali, _ = b.Customer(ali.ID)
	assert.True(t, st.Pending.Equal(ali.TotalCredit))

	_, err = b.History("ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCustomerSummaries(t *testing.T) {
	b, ali, _ := creditSetup(t)
	sara, err := b.AddCustomer(CustomerInput{Name: "Sara", Phone: "0321-000"})
	require.NoError(t, err)
	_, err = b.RecordSale(SaleInput{Date: day("2025-02-10"), Credit: true, CustomerID: sara.ID, Lines: []SaleLine{sline(BN, 1, 500)}})
	require.NoError(t, err)
	_, err = b.AddCustomer(CustomerInput{Name: "Bilal", Phone: "0333"})
	require.NoError(t, err)
	b.RefreshOverdue(day("2025-03-01"))

	all := b.CustomerSummaries(CustomerFilter{})
	require.Len(t, all, 2, "customers without credit history are left out")
	assert.Equal(t, "Sara", all[0].Customer.Name, "largest pending first")
	assertMoney(t, 500, all[0].Pending)
	assertMoney(t, 0, all[0].Overdue)
	assert.Equal(t, ali.ID, all[1].Customer.ID)
	assertMoney(t, 450, all[1].Overdue)
	assert.Equal(t, 2, all[1].Transactions)
	assert.Equal(t, day("2025-01-05"), all[1].OldestUnpaid)

	testCases := []struct {
		name   string
		filter CustomerFilter
		want   []string
	}{
		{"name case insensitive", CustomerFilter{Search: "ali"}, []string{"Ali"}},
		{"phone", CustomerFilter{Search: "0321"}, []string{"Sara"}},
		{"overdue only", CustomerFilter{OverdueOnly: true}, []string{"Ali"}},
		{"no match", CustomerFilter{Search: "zz"}, nil},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var got []string
			for _, s := range b.CustomerSummaries(tc.filter) {
				got = append(got, s.Customer.Name)
			}
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestEditCustomer(t *testing.T) {
	b, ali, sales := creditSetup(t)

	edited, err := b.EditCustomer(ali.ID, CustomerInput{Name: "Ali Khan", Phone: "0300-7654321"})
	require.NoError(t, err)
	assert.Equal(t, "Ali Khan", edited.Name)
	assertMoney(t, 450, edited.TotalCredit)
	for _, cr := range b.Credits() {
		assert.Equal(t, "Ali Khan", cr.CustomerName)
	}
	s, _ := b.Sale(sales[0].ID)
	assert.Equal(t, "Ali Khan", s.CustomerName)

	_, err = b.EditCustomer(ali.ID, CustomerInput{Name: "  ", Phone: "1"})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = b.EditCustomer("ghost", CustomerInput{Name: "x", Phone: "1"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteCustomer(t *testing.T) {
	b, ali, _ := creditSetup(t)

	err := b.DeleteCustomer(ali.ID)
	assert.ErrorIs(t, err, ErrOutstandingBalance)
	assert.Len(t, b.Customers(), 1)

	_, err = b.ReceivePayment(ali.ID, M(450), day("2025-02-01"))
	require.NoError(t, err)
	require.NoError(t, b.DeleteCustomer(ali.ID))
	assert.Empty(t, b.Customers())
	assert.Empty(t, b.Credits())
	assert.Empty(t, b.Check(), "settled sales of a deleted customer are consistent")
}

func TestAddCustomer_Invalid(t *testing.T) {
	b := newTestBook(t)
	_, err := b.AddCustomer(CustomerInput{Name: "Ali"})
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.ErrorContains(t, err, "Phone")
	assert.Empty(t, b.Customers())
}

func TestCustomerPhone(t *testing.T) {
	b := newTestBook(t)
	intl, err := b.AddCustomer(CustomerInput{Name: "Ali", Phone: "+92 300 1234567"})
	require.NoError(t, err)
	local, err := b.AddCustomer(CustomerInput{Name: "Sara", Phone: "0300-1234567"})
	require.NoError(t, err)
	assert.Equal(t, intl.Phone, local.Phone, "both spellings of a number are stored alike")
	assert.Contains(t, digits(local.Phone), "1234567")

	odd, err := b.AddCustomer(CustomerInput{Name: "Bilal", Phone: " 12-ab "})
	require.NoError(t, err)
	assert.Equal(t, "12-ab", odd.Phone, "unparsable numbers are kept as typed")

	b.settings.PhoneRegion = "US"
	_, err = b.AddCustomer(CustomerInput{Name: "John", Phone: "+1 650-253-0000"})
	require.NoError(t, err)
	_, err = b.EditCustomer(local.ID, CustomerInput{Name: "Sara", Phone: "+92 300 1234567"})
	require.NoError(t, err)
	sara, _ := b.Customer(local.ID)
	assert.True(t, strings.HasPrefix(sara.Phone, "+92"), "foreign numbers keep their country code, got %q", sara.Phone)
}

func TestCustomerFilter_Phone(t *testing.T) {
	c := Customer{Name: "Ali", Phone: "0300 1234567"}
	for q, want := range map[string]bool{
		"":             true,
		"ali":          true,
		"0300":         true,
		"0300-123":     true,
		"0300 1234567": true,
		"0321":         false,
		"Sara":         false,
	} {
		assert.Equal(t, want, CustomerFilter{Search: q}.match(c), "search %q", q)
	}
}
