package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/khata"
	"github.com/etnz/khata/date"
	"github.com/etnz/khata/renderer"
	"github.com/google/subcommands"
)

// findCustomer resolves a customer by id, or by name when exactly one customer has it.
// It reports false when nobody matches.
func findCustomer(b *khata.Book, ref string) (khata.Customer, bool, error) {
	if c, ok := b.Customer(ref); ok {
		return c, true, nil
	}
	var found []khata.Customer
	for _, c := range b.Customers() {
		if strings.EqualFold(c.Name, strings.TrimSpace(ref)) {
			found = append(found, c)
		}
	}
	switch len(found) {
	case 0:
		return khata.Customer{}, false, nil
	case 1:
		return found[0], true, nil
	default:
		return khata.Customer{}, false, fmt.Errorf("%d customers are named %q, use the customer id", len(found), ref)
	}
}

// mustFindCustomer is findCustomer for commands that need an existing customer.
func mustFindCustomer(b *khata.Book, ref string) (khata.Customer, error) {
	c, ok, err := findCustomer(b, ref)
	if err != nil {
		return khata.Customer{}, err
	}
	if !ok {
		return khata.Customer{}, fmt.Errorf("%w: customer %q", khata.ErrNotFound, ref)
	}
	return c, nil
}

func summarize(r date.Range, sales []khata.SaleItem) khata.SalesSummary {
	sum := khata.SalesSummary{Range: r, Sales: sales}
	for _, s := range sales {
		sum.Total = sum.Total.Add(s.TotalAmount)
		if s.IsCredit {
			sum.Credit = sum.Credit.Add(s.TotalAmount)
		} else {
			sum.Cash = sum.Cash.Add(s.TotalAmount)
		}
	}
	return sum
}

type saleCmd struct {
	date     string
	credit   bool
	customer string
	phone    string
}

func (*saleCmd) Name() string     { return "sale" }
func (*saleCmd) Synopsis() string { return "record a cash or credit sale" }
func (*saleCmd) Usage() string {
	return `khata sale [-d <date>] [-credit -customer <id|name> [-phone <phone>]] ITEM:QTY@PRICE...

  Records one sale per ITEM:QTY@PRICE argument. Stock is taken from the oldest batches first.
  Nothing is recorded if any line lacks stock.

  A cash sale is paid into the shop account. A credit sale books a pending credit
  for the customer. An unknown customer name creates the customer, with -phone.
`
}

func (c *saleCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", "", "Sale date. Defaults to today.")
	f.BoolVar(&c.credit, "credit", false, "Sell on credit.")
	f.StringVar(&c.customer, "customer", "", "Customer id or name, for a credit sale.")
	f.StringVar(&c.phone, "phone", "", "Phone number of a new customer.")
}

func (c *saleCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	on, err := parseDay(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}
	if c.customer != "" && !c.credit {
		fmt.Fprintln(os.Stderr, "Error: -customer is only used with -credit.")
		return subcommands.ExitUsageError
	}
	lines, err := parseLines(f.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	in := khata.SaleInput{Date: on, Credit: c.credit, CustomerPhone: c.phone}
	for _, l := range lines {
		in.Lines = append(in.Lines, khata.SaleLine{Type: l.Type, Name: l.Name, Quantity: l.Quantity, Price: l.Price})
	}

	var sales []khata.SaleItem
	status := mutate(func(b *khata.Book) error {
		if c.credit && c.customer != "" {
			customer, ok, err := findCustomer(b, c.customer)
			if err != nil {
				return err
			}
			if ok {
				in.CustomerID = customer.ID
			} else {
				in.CustomerName = c.customer
			}
		}
		sales, err = b.RecordSale(in)
		return err
	})
	if status == subcommands.ExitSuccess {
		printMarkdown(renderer.RenderSales(summarize(date.Between(on, on), sales)))
	}
	return status
}

type saleRmCmd struct{}

func (*saleRmCmd) Name() string     { return "sale-rm" }
func (*saleRmCmd) Synopsis() string { return "delete a sale and restore its stock" }
func (*saleRmCmd) Usage() string {
	return `khata sale-rm <id>

  Deletes a sale. The stock goes back to its batches and the money side is reversed:
  a cash sale is taken out of the shop account, an unpaid credit is removed.
  A credit sale with payments cannot be deleted; reverse the payments first.
`
}
func (*saleRmCmd) SetFlags(f *flag.FlagSet) {}

func (*saleRmCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: sale-rm takes exactly one sale id.")
		return subcommands.ExitUsageError
	}
	return mutate(func(b *khata.Book) error { return b.DeleteSale(f.Arg(0)) })
}

type saleEditCmd struct {
	date     string
	quantity string
	price    string
}

func (*saleEditCmd) Name() string     { return "sale-edit" }
func (*saleEditCmd) Synopsis() string { return "change the date, quantity or price of a sale" }
func (*saleEditCmd) Usage() string {
	return `khata sale-edit [-d <date>] [-q <quantity>] [-price <price>] <id>

  Edits a sale. The sale is reversed, then recorded again with the changes.
`
}

func (c *saleEditCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", "", "New sale date.")
	f.StringVar(&c.quantity, "q", "", "New quantity.")
	f.StringVar(&c.price, "price", "", "New price per unit.")
}

func (c *saleEditCmd) edit() (khata.SaleEdit, error) {
	var edit khata.SaleEdit
	if c.date != "" {
		on, err := date.Parse(c.date)
		if err != nil {
			return edit, fmt.Errorf("invalid date: %w", err)
		}
		edit.Date = &on
	}
	if c.quantity != "" {
		q, err := khata.ParseQuantity(c.quantity)
		if err != nil {
			return edit, fmt.Errorf("invalid quantity: %w", err)
		}
		edit.Quantity = &q
	}
	if c.price != "" {
		p, err := khata.ParseMoney(c.price)
		if err != nil {
			return edit, fmt.Errorf("invalid price: %w", err)
		}
		edit.Price = &p
	}
	return edit, nil
}

func (c *saleEditCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: sale-edit takes exactly one sale id.")
		return subcommands.ExitUsageError
	}
	edit, err := c.edit()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	var sale khata.SaleItem
	status := mutate(func(b *khata.Book) (err error) {
		sale, err = b.EditSale(f.Arg(0), edit)
		return err
	})
	if status == subcommands.ExitSuccess {
		printMarkdown(renderer.RenderSales(summarize(date.Between(sale.Date, sale.Date), []khata.SaleItem{sale})))
	}
	return status
}

type salesCmd struct{ rangeFlags }

func (*salesCmd) Name() string     { return "sales" }
func (*salesCmd) Synopsis() string { return "list the sales of a period" }
func (*salesCmd) Usage() string {
	return `khata sales [-p <period> | -s <start_date>] [-d <end_date>]

  Lists the sales of the period with their cash and credit totals.
`
}

func (c *salesCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	r, err := c.Range()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	b, status := readBook()
	if b == nil {
		return status
	}
	printMarkdown(renderer.RenderSales(b.SalesInRange(r)))
	return subcommands.ExitSuccess
}
