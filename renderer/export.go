package renderer

import (
	"bytes"
	"fmt"
	"html"
	"io"

	"github.com/etnz/khata"
	"github.com/etnz/khata/date"
	"github.com/xuri/excelize/v2"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Report gathers everything the shop report shows.
type Report struct {
	Title     string
	On        date.Date
	Dashboard khata.Dashboard
	Stock     []khata.StockItem
	Movements Movements
	Sales     khata.SalesSummary
	Customers []khata.CustomerSummary
}

// NewReport computes the shop report on a day, with the movements and sales of r.
func NewReport(b *khata.Book, on date.Date, r date.Range) *Report {
	return &Report{
		Title:     "Shop report",
		On:        on,
		Dashboard: b.Dashboard(on),
		Stock:     b.Stock(),
		Movements: Movements{Range: r, Rows: b.StockReport(r)},
		Sales:     b.SalesInRange(r),
		Customers: b.CustomerSummaries(khata.CustomerFilter{}),
	}
}

// Markdown renders the whole report.
func Markdown(r *Report) string {
	partials := map[string]string{
		"dashboard":    "dashboard.md",
		"stock":        "stock.md",
		"stock_report": "stock_report.md",
		"sales":        "sales.md",
		"customers":    "customers.md",
	}
	return renderTemplate("report", "report.md", partials, r)
}

const htmlPage = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { font-family: sans-serif; max-width: 60em; margin: auto; }
table { border-collapse: collapse; }
th, td { border: 1px solid #ccc; padding: 0.2em 0.6em; }
</style>
</head>
<body>
%s</body>
</html>
`

// HTML renders the report as a standalone web page.
func HTML(w io.Writer, r *Report) error {
	var body bytes.Buffer
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	if err := md.Convert([]byte(Markdown(r)), &body); err != nil {
		return fmt.Errorf("could not convert report to html: %w", err)
	}
	_, err := fmt.Fprintf(w, htmlPage, html.EscapeString(r.Title), body.String())
	return err
}

// sheet is a named table of cell values.
type sheet struct {
	name string
	rows [][]any
}

func num(m khata.Money) float64 { return m.Decimal().InexactFloat64() }

func qty(q khata.Quantity) float64 { return q.Decimal().InexactFloat64() }

func (r *Report) sheets() []sheet {
	d := r.Dashboard
	dashboard := sheet{name: "Dashboard", rows: [][]any{
		{"Metric", "Value"},
		{"Date", d.On.String()},
		{"Net sales", num(d.NetSales)},
		{"Cost of goods sold", num(d.CostOfGoodsSold)},
		{"Gross profit", num(d.GrossProfit)},
		{"Gross margin %", d.GrossMargin.InexactFloat64()},
		{"Shop expenses", num(d.ShopExpense)},
		{"Owner expenses", num(d.OwnerExpense)},
		{"Net profit", num(d.NetProfit)},
		{"Net margin %", d.NetMargin.InexactFloat64()},
		{"Average daily sales", num(d.AverageDailySales)},
		{"Inventory value", num(d.InventoryValue)},
		{"Pending credits", num(d.PendingCredits)},
		{"Overdue credits", num(d.OverdueCredits)},
	}}
	for _, a := range d.Accounts {
		dashboard.rows = append(dashboard.rows, []any{a.Name + " balance", num(a.Balance)})
	}

	stock := sheet{name: "Stock", rows: [][]any{{"Item", "Quantity", "Average cost", "Value"}}}
	for _, st := range r.Stock {
		stock.rows = append(stock.rows, []any{st.Item.String(), qty(st.Quantity), num(st.AverageCost), num(st.Value)})
	}

	movements := sheet{name: "Movements", rows: [][]any{{"Item", "Opening", "Purchased", "Sold", "Closing"}}}
	for _, m := range r.Movements.Rows {
		movements.rows = append(movements.rows, []any{m.Item.String(), qty(m.Opening), qty(m.Purchased), qty(m.Sold), qty(m.Closing)})
	}

	sales := sheet{name: "Sales", rows: [][]any{{"Date", "Item", "Quantity", "Price", "Total", "Customer", "Credit", "Status"}}}
	for _, s := range r.Sales.Sales {
		sales.rows = append(sales.rows, []any{s.Date.String(), s.Item().String(), qty(s.Quantity), num(s.PricePerUnit), num(s.TotalAmount), s.CustomerName, s.IsCredit, string(s.PaymentStatus)})
	}

	customers := sheet{name: "Customers", rows: [][]any{{"Customer", "Phone", "Pending", "Overdue", "Credits"}}}
	for _, c := range r.Customers {
		customers.rows = append(customers.rows, []any{c.Customer.Name, c.Customer.Phone, num(c.Pending), num(c.Overdue), c.Transactions})
	}
	return []sheet{dashboard, stock, movements, sales, customers}
}

// WriteXLSX writes the report as a workbook with one sheet per section.
func WriteXLSX(w io.Writer, r *Report) error {
	f := excelize.NewFile()
	defer f.Close()

	for i, s := range r.sheets() {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", s.name); err != nil {
				return err
			}
		} else if _, err := f.NewSheet(s.name); err != nil {
			return err
		}
		for j, row := range s.rows {
			cell, err := excelize.CoordinatesToCellName(1, j+1)
			if err != nil {
				return err
			}
			if err := f.SetSheetRow(s.name, cell, &row); err != nil {
				return fmt.Errorf("could not write %s row %d: %w", s.name, j+1, err)
			}
		}
	}
	return f.Write(w)
}
