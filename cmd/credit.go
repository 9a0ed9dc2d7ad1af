package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/khata"
	"github.com/etnz/khata/renderer"
	"github.com/google/subcommands"
)

type customersCmd struct {
	search  string
	overdue bool
}

func (*customersCmd) Name() string     { return "customers" }
func (*customersCmd) Synopsis() string { return "list customers with their outstanding credit" }
func (*customersCmd) Usage() string {
	return `khata customers [-search <text>] [-overdue]

  Lists the customers that have credit history, largest pending amount first.
`
}

func (c *customersCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.search, "search", "", "Only customers whose name or phone matches.")
	f.BoolVar(&c.overdue, "overdue", false, "Only customers with overdue credits.")
}

func (c *customersCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	b, status := readBook()
	if b == nil {
		return status
	}
	printMarkdown(renderer.RenderCustomers(b.CustomerSummaries(khata.CustomerFilter{Search: c.search, OverdueOnly: c.overdue})))
	return subcommands.ExitSuccess
}

type customerFlags struct {
	name    string
	phone   string
	address string
}

func (c *customerFlags) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.name, "name", "", "Customer name.")
	f.StringVar(&c.phone, "phone", "", "Phone number.")
	f.StringVar(&c.address, "address", "", "Postal address.")
}

type customerAddCmd struct{ customerFlags }

func (*customerAddCmd) Name() string     { return "customer-add" }
func (*customerAddCmd) Synopsis() string { return "add a customer" }
func (*customerAddCmd) Usage() string {
	return `khata customer-add -name <name> -phone <phone> [-address <address>]
`
}

func (c *customerAddCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var customer khata.Customer
	status := mutate(func(b *khata.Book) (err error) {
		customer, err = b.AddCustomer(khata.CustomerInput{Name: c.name, Phone: c.phone, Address: c.address})
		return err
	})
	if status == subcommands.ExitSuccess {
		fmt.Printf("Customer %s added with id %s\n", customer.Name, customer.ID)
	}
	return status
}

type customerEditCmd struct{ customerFlags }

func (*customerEditCmd) Name() string     { return "customer-edit" }
func (*customerEditCmd) Synopsis() string { return "change the name, phone or address of a customer" }
func (*customerEditCmd) Usage() string {
	return `khata customer-edit [-name <name>] [-phone <phone>] [-address <address>] <id|name>

  Only the given fields change. A new name is also written on the customer's sales and credits.
`
}

func (c *customerEditCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: customer-edit takes exactly one customer.")
		return subcommands.ExitUsageError
	}
	return mutate(func(b *khata.Book) error {
		customer, err := mustFindCustomer(b, f.Arg(0))
		if err != nil {
			return err
		}
		in := khata.CustomerInput{Name: customer.Name, Phone: customer.Phone, Address: customer.Address}
		if c.name != "" {
			in.Name = c.name
		}
		if c.phone != "" {
			in.Phone = c.phone
		}
		if c.address != "" {
			in.Address = c.address
		}
		_, err = b.EditCustomer(customer.ID, in)
		return err
	})
}

type customerRmCmd struct{}

func (*customerRmCmd) Name() string     { return "customer-rm" }
func (*customerRmCmd) Synopsis() string { return "delete a customer that owes nothing" }
func (*customerRmCmd) Usage() string {
	return `khata customer-rm <id|name>
`
}
func (*customerRmCmd) SetFlags(f *flag.FlagSet) {}

func (*customerRmCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: customer-rm takes exactly one customer.")
		return subcommands.ExitUsageError
	}
	return mutate(func(b *khata.Book) error {
		customer, err := mustFindCustomer(b, f.Arg(0))
		if err != nil {
			return err
		}
		return b.DeleteCustomer(customer.ID)
	})
}

type historyCmd struct{}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "show the credit statement of a customer" }
func (*historyCmd) Usage() string {
	return `khata history <id|name>

  Shows every credit and payment of the customer with the running balance.
`
}
func (*historyCmd) SetFlags(f *flag.FlagSet) {}

func (*historyCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: history takes exactly one customer.")
		return subcommands.ExitUsageError
	}
	b, status := readBook()
	if b == nil {
		return status
	}
	customer, err := mustFindCustomer(b, f.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	st, err := b.History(customer.ID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.RenderStatement(st))
	return subcommands.ExitSuccess
}

type payCmd struct {
	date   string
	amount string
}

func (*payCmd) Name() string     { return "pay" }
func (*payCmd) Synopsis() string { return "receive a payment from a customer" }
func (*payCmd) Usage() string {
	return `khata pay [-d <date>] -a <amount> <id|name>

  Pays the customer's oldest credits first. A credit only partly covered is split
  into a paid part and a remaining pending part. The payment goes into the shop account.
`
}

func (c *payCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", "", "Payment date. Defaults to today.")
	f.StringVar(&c.amount, "a", "", "Amount received.")
}

func (c *payCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: pay takes exactly one customer.")
		return subcommands.ExitUsageError
	}
	on, err := parseDay(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}
	amount, err := khata.ParseMoney(c.amount)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing amount %q: %v\n", c.amount, err)
		return subcommands.ExitUsageError
	}
	var st khata.Statement
	status := mutate(func(b *khata.Book) error {
		customer, err := mustFindCustomer(b, f.Arg(0))
		if err != nil {
			return err
		}
		if _, err := b.ReceivePayment(customer.ID, amount, on); err != nil {
			return err
		}
		st, err = b.History(customer.ID)
		return err
	})
	if status == subcommands.ExitSuccess {
		printMarkdown(renderer.RenderStatement(st))
	}
	return status
}

type unpayCmd struct{}

func (*unpayCmd) Name() string     { return "unpay" }
func (*unpayCmd) Synopsis() string { return "reverse the payment of a credit" }
func (*unpayCmd) Usage() string {
	return `khata unpay <credit id>

  Sets a paid credit back to pending and takes the amount out of the shop account.
  A paid part of a split credit goes back into its pending remainder.
`
}
func (*unpayCmd) SetFlags(f *flag.FlagSet) {}

func (*unpayCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: unpay takes exactly one credit id.")
		return subcommands.ExitUsageError
	}
	return mutate(func(b *khata.Book) error {
		_, err := b.ReversePayment(f.Arg(0))
		return err
	})
}
