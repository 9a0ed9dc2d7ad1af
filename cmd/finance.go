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

// moneyFlags are the flags shared by the commands recording a transaction.
type moneyFlags struct {
	date        string
	amount      string
	description string
}

func (m *moneyFlags) SetFlags(f *flag.FlagSet) {
	f.StringVar(&m.date, "d", "", "Transaction date. Defaults to today.")
	f.StringVar(&m.amount, "a", "", "Amount.")
	f.StringVar(&m.description, "m", "", "Description.")
}

func (m *moneyFlags) parse() (khata.Transaction, error) {
	on, err := parseDay(m.date)
	if err != nil {
		return khata.Transaction{}, fmt.Errorf("invalid date: %w", err)
	}
	amount, err := khata.ParseMoney(m.amount)
	if err != nil {
		return khata.Transaction{}, fmt.Errorf("invalid amount %q: %w", m.amount, err)
	}
	return khata.Transaction{Date: on, Amount: amount, Description: m.description}, nil
}

func parseAccount(s string) (khata.AccountType, error) {
	if s == "" {
		return "", nil
	}
	return khata.ParseAccountType(s)
}

// record runs a transaction command and prints the resulting accounts.
func record(m *moneyFlags, do func(b *khata.Book, tx khata.Transaction) error) subcommands.ExitStatus {
	tx, err := m.parse()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	report := renderer.Accounts{Range: date.Between(tx.Date, tx.Date)}
	status := mutate(func(b *khata.Book) error {
		if err := do(b, tx); err != nil {
			return err
		}
		report.Accounts = b.Accounts()
		report.Transactions = b.TransactionsInRange(report.Range)
		return nil
	})
	if status == subcommands.ExitSuccess {
		printMarkdown(renderer.RenderAccounts(report))
	}
	return status
}

type expenseCmd struct {
	moneyFlags
	category string
	from     string
}

func (*expenseCmd) Name() string     { return "expense" }
func (*expenseCmd) Synopsis() string { return "record money spent from an account" }
func (*expenseCmd) Usage() string {
	return `khata expense [-d <date>] -a <amount> -category <category> [-from <account>] [-m <description>]

  Records an expense paid from an account, the shop account by default.
  Expenses in the owner category are the owner's drawings.
`
}

func (c *expenseCmd) SetFlags(f *flag.FlagSet) {
	c.moneyFlags.SetFlags(f)
	f.StringVar(&c.category, "category", "", "Expense category.")
	f.StringVar(&c.from, "from", "shop", "Account paying the expense.")
}

func (c *expenseCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	from, err := parseAccount(c.from)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	return record(&c.moneyFlags, func(b *khata.Book, tx khata.Transaction) error {
		_, err := b.Expense(khata.ExpenseInput{Date: tx.Date, Amount: tx.Amount, Category: c.category, From: from, Description: tx.Description})
		return err
	})
}

type transferCmd struct {
	moneyFlags
	from string
	to   string
}

func (*transferCmd) Name() string     { return "transfer" }
func (*transferCmd) Synopsis() string { return "move money between two accounts" }
func (*transferCmd) Usage() string {
	return `khata transfer [-d <date>] -a <amount> -from <account> -to <account> [-m <description>]
`
}

func (c *transferCmd) SetFlags(f *flag.FlagSet) {
	c.moneyFlags.SetFlags(f)
	f.StringVar(&c.from, "from", "", "Source account.")
	f.StringVar(&c.to, "to", "", "Destination account.")
}

func (c *transferCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	from, err := parseAccount(c.from)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	to, err := parseAccount(c.to)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	return record(&c.moneyFlags, func(b *khata.Book, tx khata.Transaction) error {
		_, err := b.Transfer(khata.TransferInput{Date: tx.Date, Amount: tx.Amount, From: from, To: to, Description: tx.Description})
		return err
	})
}

type depositCmd struct {
	moneyFlags
	to string
}

func (*depositCmd) Name() string     { return "deposit" }
func (*depositCmd) Synopsis() string { return "put money into an account" }
func (*depositCmd) Usage() string {
	return `khata deposit [-d <date>] -a <amount> -to <account> [-m <description>]

  Records money brought into the business, such as the owner's capital.
`
}

func (c *depositCmd) SetFlags(f *flag.FlagSet) {
	c.moneyFlags.SetFlags(f)
	f.StringVar(&c.to, "to", "", "Destination account.")
}

func (c *depositCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	to, err := parseAccount(c.to)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	return record(&c.moneyFlags, func(b *khata.Book, tx khata.Transaction) error {
		_, err := b.Deposit(khata.DepositInput{Date: tx.Date, Amount: tx.Amount, To: to, Description: tx.Description})
		return err
	})
}

type txRmCmd struct{}

func (*txRmCmd) Name() string     { return "tx-rm" }
func (*txRmCmd) Synopsis() string { return "delete a transaction and reverse its balances" }
func (*txRmCmd) Usage() string {
	return `khata tx-rm <id>
`
}
func (*txRmCmd) SetFlags(f *flag.FlagSet) {}

func (*txRmCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: tx-rm takes exactly one transaction id.")
		return subcommands.ExitUsageError
	}
	return mutate(func(b *khata.Book) error { return b.DeleteTransaction(f.Arg(0)) })
}

type accountsCmd struct{ rangeFlags }

func (*accountsCmd) Name() string     { return "accounts" }
func (*accountsCmd) Synopsis() string { return "show account balances and the transactions of a period" }
func (*accountsCmd) Usage() string {
	return `khata accounts [-p <period> | -s <start_date>] [-d <end_date>]
`
}

func (c *accountsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	r, err := c.Range()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	b, status := readBook()
	if b == nil {
		return status
	}
	printMarkdown(renderer.RenderAccounts(renderer.Accounts{Range: r, Accounts: b.Accounts(), Transactions: b.TransactionsInRange(r)}))
	return subcommands.ExitSuccess
}
