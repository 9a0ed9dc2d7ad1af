// Package renderer turns book reports into markdown, HTML and spreadsheets.
package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"

	"github.com/etnz/khata"
	"github.com/etnz/khata/date"
	"github.com/shopspring/decimal"
)

//go:embed templates/*.md
var templates embed.FS

var funcs = template.FuncMap{
	"pct": func(d decimal.Decimal) string { return d.String() + "%" },
	// day prints nothing for the zero date.
	"day": func(d date.Date) string {
		if d.IsZero() {
			return ""
		}
		return d.String()
	},
	// amount prints nothing for a zero amount.
	"amount": func(m khata.Money) string {
		if m.IsZero() {
			return ""
		}
		return m.String()
	},
	"batches": func(batches []khata.PurchaseItem) string {
		parts := make([]string, len(batches))
		for i, p := range batches {
			parts[i] = fmt.Sprintf("%s (%s)", p.BatchNumber, p.RemainingQuantity)
		}
		return strings.Join(parts, ", ")
	},
}

// Movements is the stock flow of a period.
type Movements struct {
	Range date.Range
	Rows  []khata.StockMovement
}

// Purchases is the list of batches bought in a period.
type Purchases struct {
	Range date.Range
	Rows  []khata.PurchaseItem
}

// Accounts is the state of the cash accounts with the transactions of a period.
type Accounts struct {
	Range        date.Range
	Accounts     []khata.Account
	Transactions []khata.Transaction
}

// RenderDashboard renders the business overview.
func RenderDashboard(d khata.Dashboard) string {
	return renderTemplate("dashboard", "dashboard.md", nil, d)
}

// RenderStock renders the items in stock.
func RenderStock(stock []khata.StockItem) string {
	return renderTemplate("stock", "stock.md", nil, stock)
}

// RenderMovements renders the stock report of a period.
func RenderMovements(m Movements) string {
	return renderTemplate("stock_report", "stock_report.md", nil, m)
}

// RenderPurchases renders purchase batches.
func RenderPurchases(p Purchases) string {
	return renderTemplate("purchases", "purchases.md", nil, p)
}

// RenderSales renders a list of sales with totals.
func RenderSales(s khata.SalesSummary) string {
	return renderTemplate("sales", "sales.md", nil, s)
}

// RenderCustomers renders the credit position of customers.
func RenderCustomers(list []khata.CustomerSummary) string {
	return renderTemplate("customers", "customers.md", nil, list)
}

// RenderStatement renders the credit history of a customer.
func RenderStatement(st khata.Statement) string {
	return renderTemplate("statement", "statement.md", nil, st)
}

// RenderAccounts renders balances and transactions.
func RenderAccounts(a Accounts) string {
	return renderTemplate("accounts", "accounts.md", nil, a)
}

// RenderIssues renders the result of a consistency check.
func RenderIssues(issues []khata.Issue) string {
	return renderTemplate("issues", "issues.md", nil, issues)
}

// renderTemplate is a generic utility to render a main template that depends on several partials.
func renderTemplate(templateName, mainFile string, partials map[string]string, data any) string {
	mainContent, err := fs.ReadFile(templates, "templates/"+mainFile)
	if err != nil {
		return fmt.Sprintf("error reading main template %q: %v", mainFile, err)
	}

	tmpl, err := template.New(templateName).Funcs(funcs).Parse(string(mainContent))
	if err != nil {
		return fmt.Sprintf("error parsing main template %q: %v", mainFile, err)
	}

	for name, file := range partials {
		content, err := fs.ReadFile(templates, "templates/"+file)
		if err != nil {
			return fmt.Sprintf("error reading partial template %q: %v", file, err)
		}
		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return fmt.Sprintf("error parsing partial template %q for %q: %v", file, name, err)
		}
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, templateName, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", templateName, err)
	}
	return b.String()
}
