package renderer

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"

	"github.com/etnz/khata"
	"github.com/etnz/khata/date"
	"github.com/xuri/excelize/v2"
)

// sampleBook returns a book with a few purchases, a cash sale and a credit sale.
func sampleBook(t *testing.T) *khata.Book {
	t.Helper()
	b := khata.NewBook()
	_, err := b.RecordPurchase(khata.PurchaseInput{
		Date:     date.MustParse("2025-01-01"),
		Supplier: "Depot",
		Lines: []khata.PurchaseLine{
			{Type: khata.BN, Quantity: khata.Q(10), Price: khata.M(100)},
			{Type: khata.Other, Name: "Regulator", Quantity: khata.Q(2), Price: khata.M(900)},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := b.RecordSale(khata.SaleInput{
		Date:  date.MustParse("2025-01-02"),
		Lines: []khata.SaleLine{{Type: khata.BN, Quantity: khata.Q(2), Price: khata.M(150)}},
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := b.RecordSale(khata.SaleInput{
		Date:         date.MustParse("2025-01-03"),
		Credit:       true,
		CustomerName: "Ali",
		Lines:        []khata.SaleLine{{Type: khata.BN, Quantity: khata.Q(1), Price: khata.M(150)}},
	}); err != nil {
		t.Fatal(err)
	}
	return b
}

func TestRenderers(t *testing.T) {
	b := sampleBook(t)
	month := date.NewRange(date.MustParse("2025-01-15"), date.Monthly)
	ali := b.Customers()[0]
	st, err := b.History(ali.ID)
	if err != nil {
		t.Fatal(err)
	}

	testCases := []struct {
		name string
		got  string
		want []string
	}{
		{"dashboard", RenderDashboard(b.Dashboard(date.MustParse("2025-01-03"))), []string{
			"## Dashboard on 2025-01-03",
			"| Net sales |",
			"| Shop |",
		}},
		{"stock", RenderStock(b.Stock()), []string{
			"| BN | 7 |",
			"| Regulator | 2 |",
			"001 (7)",
		}},
		{"movements", RenderMovements(Movements{Range: month, Rows: b.StockReport(month)}), []string{
			"## Stock movements 2025-01-01..2025-01-31",
			"| BN | 0 | 10 | 3 | 7 |",
		}},
		{"purchases", RenderPurchases(Purchases{Range: month, Rows: b.PurchasesInRange(month)}), []string{
			"| 2025-01-01 | 001 | Regulator | 2 | 2 |",
		}},
		{"sales", RenderSales(b.SalesInRange(month)), []string{
			"| 2025-01-03 | BN | 1 |",
			"credit, pending",
			"**Total**",
		}},
		{"no sales", RenderSales(khata.SalesSummary{Range: month}), []string{"_No sale._"}},
		{"customers", RenderCustomers(b.CustomerSummaries(khata.CustomerFilter{})), []string{
			"| Ali |",
			"| 1 | 2025-01-03 |",
		}},
		{"statement", RenderStatement(st), []string{
			"## Ali",
			"1 × BN",
			"**Pending**",
		}},
		{"accounts", RenderAccounts(Accounts{Range: month, Accounts: b.Accounts()}), []string{
			"| Shop | shop |",
			"_No transaction._",
		}},
		{"issues", RenderIssues([]khata.Issue{{Kind: "customer-balance", Ref: "c1", Detail: "off"}}), []string{
			"- **customer-balance** `c1`: off",
		}},
		{"no issues", RenderIssues(nil), []string{"No inconsistency found."}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if strings.Contains(tc.got, "error ") {
				t.Fatalf("rendering failed:\n%s", tc.got)
			}
			for _, want := range tc.want {
				if !strings.Contains(tc.got, want) {
					t.Errorf("output does not contain %q:\n%s", want, tc.got)
				}
			}
		})
	}
}

func TestExport(t *testing.T) {
	b := sampleBook(t)
	r := NewReport(b, date.MustParse("2025-01-31"), date.NewRange(date.MustParse("2025-01-15"), date.Monthly))

	md := Markdown(r)
	for _, want := range []string{"# Shop report", "## Dashboard on 2025-01-31", "## Stock", "## Sales", "## Customers"} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown report does not contain %q:\n%s", want, md)
		}
	}

	var page bytes.Buffer
	if err := HTML(&page, r); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"<title>Shop report</title>", "<table>", "<h2>Stock</h2>"} {
		if !strings.Contains(page.String(), want) {
			t.Errorf("html report does not contain %q", want)
		}
	}

	var book bytes.Buffer
	if err := WriteXLSX(&book, r); err != nil {
		t.Fatal(err)
	}
	if _, err := zip.NewReader(bytes.NewReader(book.Bytes()), int64(book.Len())); err != nil {
		t.Fatalf("workbook is not a zip archive: %v", err)
	}
	f, err := excelize.OpenReader(&book)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if got, want := f.GetSheetList(), []string{"Dashboard", "Stock", "Movements", "Sales", "Customers"}; strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("sheets = %v, want %v", got, want)
	}
	if v, err := f.GetCellValue("Stock", "A2"); err != nil || v != "BN" {
		t.Errorf("Stock!A2 = %q, %v, want BN", v, err)
	}
}
