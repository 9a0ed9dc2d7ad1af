package khata

import (
	"fmt"
	"testing"

	"github.com/etnz/khata/date"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// newTestBook returns an empty book with predictable ids: id-1, id-2, ...
func newTestBook(t *testing.T) *Book {
	t.Helper()
	n := 0
	return NewBook(
		WithLogger(zaptest.NewLogger(t)),
		WithIDs(func() string { n++; return fmt.Sprintf("id-%d", n) }),
	)
}

func day(s string) date.Date { return date.MustParse(s) }

func pline(t ItemType, qty, price int) PurchaseLine {
	return PurchaseLine{Type: t, Quantity: Q(qty), Price: M(price)}
}

func sline(t ItemType, qty, price int) SaleLine {
	return SaleLine{Type: t, Quantity: Q(qty), Price: M(price)}
}

// buy records a purchase that must succeed.
func buy(t *testing.T, b *Book, on string, lines ...PurchaseLine) []PurchaseItem {
	t.Helper()
	batches, err := b.RecordPurchase(PurchaseInput{Date: day(on), Supplier: "Depot", Lines: lines})
	require.NoError(t, err)
	return batches
}

// sell records a cash sale that must succeed.
func sell(t *testing.T, b *Book, on string, lines ...SaleLine) []SaleItem {
	t.Helper()
	sales, err := b.RecordSale(SaleInput{Date: day(on), Lines: lines})
	require.NoError(t, err)
	return sales
}

func assertMoney(t *testing.T, want int, got Money, msgAndArgs ...any) {
	t.Helper()
	assert.Truef(t, M(want).Equal(got), "want %d, got %s %v", want, got.Plain(), fmt.Sprint(msgAndArgs...))
}

func assertQuantity(t *testing.T, want int, got Quantity, msgAndArgs ...any) {
	t.Helper()
	assert.Truef(t, Q(want).Equal(got), "want %d, got %s %v", want, got, fmt.Sprint(msgAndArgs...))
}

func balance(t *testing.T, b *Book, a AccountType) Money {
	t.Helper()
	acc, ok := b.Account(a)
	require.True(t, ok, "account %s", a)
	return acc.Balance
}
