package khata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboard(t *testing.T) {
	b := newTestBook(t)
	buy(t, b, "2025-01-01", pline(BN, 10, 100), pline(C, 43, 430))
	sell(t, b, "2025-03-01", sline(BN, 2, 150), sline(C, 4, 15))
	_, err := b.Expense(ExpenseInput{Date: day("2025-03-01"), Amount: M(50), Category: "rent", From: AccountShop})
	require.NoError(t, err)
	_, err = b.Expense(ExpenseInput{Date: day("2025-03-01"), Amount: M(20), Category: "Owner", From: AccountShop})
	require.NoError(t, err)
	_, err = b.RecordSale(SaleInput{Date: day("2025-01-02"), Credit: true, CustomerName: "Ali", Lines: []SaleLine{sline(BN, 1, 150)}})
	require.NoError(t, err)
	_, err = b.RecordSale(SaleInput{Date: day("2025-01-10"), Credit: true, CustomerName: "Sara", Lines: []SaleLine{sline(BN, 1, 200)}})
	require.NoError(t, err)
	b.RefreshOverdue(day("2025-03-01"))

	d := b.Dashboard(day("2025-03-01"))

	assertMoney(t, 300+60+150+200, d.NetSales)
	assertMoney(t, 4*100+4*10, d.CostOfGoodsSold, "C costs 430 per 43 units")
	assertMoney(t, 710-440, d.GrossProfit)
	assertMoney(t, 50, d.ShopExpense)
	assertMoney(t, 20, d.OwnerExpense)
	assertMoney(t, 70, d.TotalExpense)
	assertMoney(t, 200, d.NetProfit)
	assert.Equal(t, "38", d.GrossMargin.String())
	assertMoney(t, 12, d.AverageDailySales, "360 over the last 30 days")
	assertMoney(t, 6*100+39*10, d.InventoryValue)

	assertMoney(t, 350, d.PendingCredits)
	assertMoney(t, 350, d.OverdueCredits)
	assert.Equal(t, 2, d.OverdueCount)
	require.Len(t, d.TopOverdue, 2)
	assert.Equal(t, "Ali", d.TopOverdue[0].CustomerName, "most days overdue first")
	assert.Equal(t, 13, d.TopOverdue[0].DaysOverdue)
	assert.Equal(t, 5, d.TopOverdue[1].DaysOverdue)
	assert.Len(t, d.Accounts, 4)
}

func TestDashboard_Empty(t *testing.T) {
	d := newTestBook(t).Dashboard(day("2025-03-01"))
	assert.True(t, d.NetSales.IsZero())
	assert.True(t, d.GrossMargin.IsZero())
	assert.Empty(t, d.TopOverdue)
}
