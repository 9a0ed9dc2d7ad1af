package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/khata"
	"github.com/etnz/khata/renderer"
	"github.com/etnz/khata/store"
	"github.com/google/subcommands"
)

type dashboardCmd struct {
	date string
}

func (*dashboardCmd) Name() string     { return "dashboard" }
func (*dashboardCmd) Synopsis() string { return "show the business overview" }
func (*dashboardCmd) Usage() string {
	return `khata dashboard [-d <date>]

  Shows profit, margins, average daily sales, stock value, credits and account balances.
`
}

func (c *dashboardCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", "", "Day of the overview. Defaults to today.")
}

func (c *dashboardCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	on, err := parseDay(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}
	b, status := readBook()
	if b == nil {
		return status
	}
	printMarkdown(renderer.RenderDashboard(b.Dashboard(on)))
	return subcommands.ExitSuccess
}

type checkCmd struct{}

func (*checkCmd) Name() string     { return "check" }
func (*checkCmd) Synopsis() string { return "check the book for inconsistencies" }
func (*checkCmd) Usage() string {
	return `khata check

  Verifies customer balances, credit links, batch quantities and account balances.
  It exits with a failure status when an issue is found.
`
}
func (*checkCmd) SetFlags(f *flag.FlagSet) {}

func (*checkCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	b, status := readBook()
	if b == nil {
		return status
	}
	issues := b.Check()
	printMarkdown(renderer.RenderIssues(issues))
	if len(issues) > 0 {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

type exportCmd struct {
	rangeFlags
	format string
	output string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "export the shop report as markdown, html or xlsx" }
func (*exportCmd) Usage() string {
	return `khata export [-format md|html|xlsx] [-o <file>] [-p <period> | -s <start_date>] [-d <end_date>]

  Writes the full shop report: dashboard, stock, stock movements, sales and customers.
  The report is written to stdout unless -o is set.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	c.rangeFlags.SetFlags(f)
	f.StringVar(&c.format, "format", "md", "Output format: md, html or xlsx.")
	f.StringVar(&c.output, "o", "", "Output file. Defaults to stdout.")
}

func (c *exportCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	r, err := c.Range()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	var write func(io.Writer, *renderer.Report) error
	switch c.format {
	case "md", "markdown":
		write = func(w io.Writer, r *renderer.Report) error {
			_, err := io.WriteString(w, renderer.Markdown(r))
			return err
		}
	case "html":
		write = renderer.HTML
	case "xlsx":
		write = renderer.WriteXLSX
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown format %q\n", c.format)
		return subcommands.ExitUsageError
	}

	b, status := readBook()
	if b == nil {
		return status
	}
	report := renderer.NewReport(b, r.To, r)

	var w io.Writer = os.Stdout
	if c.output != "" {
		file, err := os.Create(c.output)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating %q: %v\n", c.output, err)
			return subcommands.ExitFailure
		}
		defer file.Close()
		w = file
	}
	if err := write(w, report); err != nil {
		fmt.Fprintf(os.Stderr, "Error exporting report: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

type queryCmd struct{}

func (*queryCmd) Name() string     { return "query" }
func (*queryCmd) Synopsis() string { return "query the stored documents with a JSONPath expression" }
func (*queryCmd) Usage() string {
	return `khata query <jsonpath>

  Evaluates the expression against the stored collections, keyed by their store key.

  Example: khata query '$.lpg_customers[?(@.totalCredit > 0)].name'
`
}
func (*queryCmd) SetFlags(f *flag.FlagSet) {}

func (*queryCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: query takes exactly one expression.")
		return subcommands.ExitUsageError
	}
	st, err := store.OpenDir(dataPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	docs, err := documents(st)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	val, err := jsonpath.Get(f.Arg(0), docs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error evaluating %q: %v\n", f.Arg(0), err)
		return subcommands.ExitFailure
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(val); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// documents decodes every book collection of s as generic JSON.
func documents(s store.Store) (map[string]any, error) {
	docs := make(map[string]any, len(khata.Keys))
	for _, key := range khata.Keys {
		var v any
		if _, err := s.Get(key, &v); err != nil {
			return nil, err
		}
		if v == nil {
			v = []any{}
		}
		docs[key] = v
	}
	return docs, nil
}
