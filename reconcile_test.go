package khata

import (
	"testing"

	"github.com/etnz/khata/date"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheck(t *testing.T) {
	b, ali, sales := creditSetup(t)
	sell(t, b, "2025-01-06", sline(BN, 1, 150))
	_, err := b.ReceivePayment(ali.ID, M(320), day("2025-02-01"))
	require.NoError(t, err)
	require.Empty(t, b.Check())

	testCases := []struct {
		name    string
		corrupt func(b *Book)
		want    string
	}{
		{"customer balance", func(b *Book) { b.customers[0].TotalCredit = M(1) }, "customer-balance"},
		{"unknown customer", func(b *Book) { b.credits[0].CustomerID = "ghost" }, "credit-customer"},
		{"unknown sale", func(b *Book) { b.credits[0].SaleID = "ghost" }, "credit-sale"},
		{"missing payment date", func(b *Book) { b.credits[0].PaymentDate = date.Date{} }, "credit-payment-date"},
		{"remaining above quantity", func(b *Book) { b.purchases[0].RemainingQuantity = Q(11) }, "batch-remaining"},
		{"batch consumption", func(b *Book) { b.purchases[0].RemainingQuantity = Q(9) }, "batch-consumption"},
		{"sale status", func(b *Book) { b.sales[0].PaymentStatus = StatusPending }, "sale-status"},
		{"negative account", func(b *Book) { b.accounts[1].Balance = M(-5) }, "account-balance"},
		{"credit sale without credit", func(b *Book) { b.credits = b.credits[:0] }, "sale-credit"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			broken := &Book{collections: b.clone(), settings: b.settings, logger: b.logger}
			tc.corrupt(broken)
			var kinds []string
			for _, issue := range broken.Check() {
				kinds = append(kinds, issue.Kind)
			}
			assert.Contains(t, kinds, tc.want)
		})
	}
	assert.Empty(t, b.Check(), "the original book is untouched")
	assert.Equal(t, sales[0].ID, b.Sales()[0].ID)
}
