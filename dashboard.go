package khata

import (
	"cmp"
	"slices"
	"strings"

	"github.com/etnz/khata/date"
	"github.com/shopspring/decimal"
)

// topOverdue is the number of overdue credits listed on the dashboard.
const topOverdue = 5

// OverdueCredit is an overdue credit with its delay past the due date.
type OverdueCredit struct {
	CreditID     string
	CustomerID   string
	CustomerName string
	Amount       Money
	DueDate      date.Date
	DaysOverdue  int
}

// Dashboard is the business overview on a day.
type Dashboard struct {
	On                date.Date
	NetSales          Money
	CostOfGoodsSold   Money
	GrossProfit       Money
	GrossMargin       decimal.Decimal // percent of net sales
	ShopExpense       Money
	OwnerExpense      Money
	TotalExpense      Money
	NetProfit         Money
	NetMargin         decimal.Decimal // percent of net sales
	AverageDays       int
	AverageDailySales Money
	InventoryValue    Money
	PendingCredits    Money // every unpaid credit, overdue included
	OverdueCredits    Money
	OverdueCount      int
	TopOverdue        []OverdueCredit
	Accounts          []Account
}

// Dashboard computes the business overview as of today.
func (b *Book) Dashboard(today date.Date) Dashboard {
	d := Dashboard{
		On:              today,
		CostOfGoodsSold: b.CostOfGoodsSold(),
		InventoryValue:  b.InventoryValue(),
		AverageDays:     b.settings.AverageDays,
		Accounts:        b.Accounts(),
	}

	window := date.LastDays(today, b.settings.AverageDays)
	var recent Money
	for _, s := range b.sales {
		d.NetSales = d.NetSales.Add(s.TotalAmount)
		if window.Contains(s.Date) {
			recent = recent.Add(s.TotalAmount)
		}
	}
	d.AverageDailySales = recent.Div(Q(b.settings.AverageDays))
	d.GrossProfit = d.NetSales.Sub(d.CostOfGoodsSold)

	for _, tx := range b.transactions {
		if tx.Type != TxExpense {
			continue
		}
		if strings.EqualFold(tx.Category, b.settings.OwnerCategory) {
			d.OwnerExpense = d.OwnerExpense.Add(tx.Amount)
		} else {
			d.ShopExpense = d.ShopExpense.Add(tx.Amount)
		}
	}
	d.TotalExpense = d.ShopExpense.Add(d.OwnerExpense)
	d.NetProfit = d.GrossProfit.Sub(d.TotalExpense)
	d.GrossMargin = d.GrossProfit.Percent(d.NetSales)
	d.NetMargin = d.NetProfit.Percent(d.NetSales)

	var overdue []OverdueCredit
	for _, cr := range b.credits {
		if !cr.Unpaid() {
			continue
		}
		d.PendingCredits = d.PendingCredits.Add(cr.Amount)
		if cr.Status != CreditOverdue {
			continue
		}
		d.OverdueCredits = d.OverdueCredits.Add(cr.Amount)
		overdue = append(overdue, OverdueCredit{
			CreditID:     cr.ID,
			CustomerID:   cr.CustomerID,
			CustomerName: cr.CustomerName,
			Amount:       cr.Amount,
			DueDate:      cr.DueDate,
			DaysOverdue:  today.DaysSince(cr.DueDate),
		})
	}
	d.OverdueCount = len(overdue)
	slices.SortStableFunc(overdue, func(x, y OverdueCredit) int { return cmp.Compare(y.DaysOverdue, x.DaysOverdue) })
	d.TopOverdue = overdue[:min(len(overdue), topOverdue)]
	return d
}
