package cmd

import (
	"flag"
	"os"
	"path"

	"github.com/etnz/khata/docs"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

type group struct {
	name     string
	commands []subcommands.Command
}

func groups() []group {
	return []group{
		{"help", []subcommands.Command{&topicCmd{}}},
		{"inventory", []subcommands.Command{&purchaseCmd{}, &purchaseRmCmd{}, &purchasesCmd{}, &stockCmd{}, &stockReportCmd{}}},
		{"sales", []subcommands.Command{&saleCmd{}, &saleRmCmd{}, &saleEditCmd{}, &salesCmd{}}},
		{"credit", []subcommands.Command{&customersCmd{}, &customerAddCmd{}, &customerEditCmd{}, &customerRmCmd{}, &historyCmd{}, &payCmd{}, &unpayCmd{}}},
		{"finance", []subcommands.Command{&expenseCmd{}, &transferCmd{}, &depositCmd{}, &txRmCmd{}, &accountsCmd{}}},
		{"reports", []subcommands.Command{&dashboardCmd{}, &checkCmd{}, &exportCmd{}, &queryCmd{}}},
	}
}

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	for _, g := range groups() {
		for _, cmd := range g.commands {
			c.Register(cmd, g.name)
		}
	}
}

var accountNames = predict.Set{"shop", "bank", "home", "equity"}

// flagPredictors suggests values for the flags that have a closed set of values.
var flagPredictors = map[string]complete.Predictor{
	"p":        predict.Set{"day", "week", "month", "quarter", "year"},
	"format":   predict.Set{"md", "html", "xlsx"},
	"from":     accountNames,
	"to":       accountNames,
	"o":        predict.Files("*"),
	"data":     predict.Dirs("*"),
	"config":   predict.Files("*.yaml"),
	"category": predict.Set{"owner", "rent", "salary", "utilities", "transport"},
}

// Complete handles shell completion requests and exits when there is one.
// Install the completion with COMP_INSTALL=1.
func Complete() {
	root := &complete.Command{
		Sub:   make(map[string]*complete.Command),
		Flags: make(map[string]complete.Predictor),
	}
	flag.VisitAll(func(f *flag.Flag) { root.Flags[f.Name] = predictor(f.Name) })
	for _, g := range groups() {
		for _, cmd := range g.commands {
			fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
			cmd.SetFlags(fs)
			sub := &complete.Command{Flags: make(map[string]complete.Predictor)}
			fs.VisitAll(func(f *flag.Flag) { sub.Flags[f.Name] = predictor(f.Name) })
			if cmd.Name() == "topic" {
				topics, _ := docs.Topics()
				sub.Args = predict.Set(topics)
			}
			root.Sub[cmd.Name()] = sub
		}
	}
	root.Complete(path.Base(os.Args[0]))
}

func predictor(name string) complete.Predictor {
	if p, ok := flagPredictors[name]; ok {
		return p
	}
	return predict.Something
}
