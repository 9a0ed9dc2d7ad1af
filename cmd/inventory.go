package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/khata"
	"github.com/etnz/khata/date"
	"github.com/etnz/khata/renderer"
	"github.com/google/subcommands"
)

type purchaseCmd struct {
	date     string
	supplier string
	derive   bool
}

func (*purchaseCmd) Name() string     { return "purchase" }
func (*purchaseCmd) Synopsis() string { return "record goods received in a new batch" }
func (*purchaseCmd) Usage() string {
	return `khata purchase [-d <date>] [-supplier <name>] [-derive] ITEM:QTY@PRICE...

  Records one batch line per ITEM:QTY@PRICE argument, all under the same batch number.
  ITEM is one of BN, SN, C, BNS, SNS, CS, ABN, ASN, or other:NAME for a custom item.

  With -derive, the BN and C prices are computed from the SN price using the price ratios.

  Example: khata purchase -supplier Gasco SN:20@1180 BN:10@1500
`
}

func (c *purchaseCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", "", "Purchase date. Defaults to today.")
	f.StringVar(&c.supplier, "supplier", "", "Supplier name.")
	f.BoolVar(&c.derive, "derive", false, "Derive the BN and C prices from the SN price.")
}

func (c *purchaseCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	on, err := parseDay(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}
	lines, err := parseLines(f.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	in := khata.PurchaseInput{Date: on, Supplier: c.supplier, DerivePrices: c.derive}
	for _, l := range lines {
		in.Lines = append(in.Lines, khata.PurchaseLine{Type: l.Type, Name: l.Name, Quantity: l.Quantity, Price: l.Price})
	}

	var batches []khata.PurchaseItem
	status := mutate(func(b *khata.Book) (err error) {
		batches, err = b.RecordPurchase(in)
		return err
	})
	if status == subcommands.ExitSuccess {
		printMarkdown(renderer.RenderPurchases(renderer.Purchases{Range: date.Between(on, on), Rows: batches}))
	}
	return status
}

type purchaseRmCmd struct{}

func (*purchaseRmCmd) Name() string     { return "purchase-rm" }
func (*purchaseRmCmd) Synopsis() string { return "delete a purchased batch line" }
func (*purchaseRmCmd) Usage() string {
	return `khata purchase-rm <id>

  Deletes a batch line that has not been sold from yet.
`
}
func (*purchaseRmCmd) SetFlags(f *flag.FlagSet) {}

func (*purchaseRmCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: purchase-rm takes exactly one purchase id.")
		return subcommands.ExitUsageError
	}
	return mutate(func(b *khata.Book) error { return b.DeletePurchase(f.Arg(0)) })
}

type purchasesCmd struct{ rangeFlags }

func (*purchasesCmd) Name() string     { return "purchases" }
func (*purchasesCmd) Synopsis() string { return "list the batches bought in a period" }
func (*purchasesCmd) Usage() string {
	return `khata purchases [-p <period> | -s <start_date>] [-d <end_date>]

  Lists the purchased batch lines of the period, with their remaining quantity.
`
}

func (c *purchasesCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	r, err := c.Range()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	b, status := readBook()
	if b == nil {
		return status
	}
	printMarkdown(renderer.RenderPurchases(renderer.Purchases{Range: r, Rows: b.PurchasesInRange(r)}))
	return subcommands.ExitSuccess
}

type stockCmd struct{}

func (*stockCmd) Name() string     { return "stock" }
func (*stockCmd) Synopsis() string { return "show the stock on hand per item" }
func (*stockCmd) Usage() string {
	return `khata stock

  Shows the remaining quantity, average cost and value of every item, with its open batches.
`
}
func (*stockCmd) SetFlags(f *flag.FlagSet) {}

func (*stockCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	b, status := readBook()
	if b == nil {
		return status
	}
	printMarkdown(renderer.RenderStock(b.Stock()))
	return subcommands.ExitSuccess
}

type stockReportCmd struct{ rangeFlags }

func (*stockReportCmd) Name() string     { return "stock-report" }
func (*stockReportCmd) Synopsis() string { return "show opening, purchased, sold and closing stock" }
func (*stockReportCmd) Usage() string {
	return `khata stock-report [-p <period> | -s <start_date>] [-d <end_date>]

  Shows the stock movements of every item over the period.
`
}

func (c *stockReportCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	r, err := c.Range()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	b, status := readBook()
	if b == nil {
		return status
	}
	printMarkdown(renderer.RenderMovements(renderer.Movements{Range: r, Rows: b.StockReport(r)}))
	return subcommands.ExitSuccess
}
