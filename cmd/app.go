// Package cmd implements the khata command line application.
package cmd

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/khata"
	"github.com/etnz/khata/date"
	"github.com/etnz/khata/store"
	"github.com/google/subcommands"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var (
	dataDir    = flag.String("data", "", "Data directory of the shop book. Defaults to $KHATA_DATA_DIR, then .khata")
	configFile = flag.String("config", "", "Settings file (YAML). Defaults to $KHATA_CONFIG, then khata.yaml in the data directory")
	verbose    = flag.Bool("v", false, "Log every change to the book on stderr")
)

// LoadEnv reads the .env file of the working directory, if there is one.
// Variables already set in the environment are kept.
func LoadEnv() error {
	err := godotenv.Load()
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func dataPath() string {
	if *dataDir != "" {
		return *dataDir
	}
	if dir := os.Getenv("KHATA_DATA_DIR"); dir != "" {
		return dir
	}
	return ".khata"
}

func settingsPath() string {
	if *configFile != "" {
		return *configFile
	}
	if path := os.Getenv("KHATA_CONFIG"); path != "" {
		return path
	}
	return filepath.Join(dataPath(), "khata.yaml")
}

func loadSettings() (khata.Settings, error) {
	s, err := khata.LoadSettings(settingsPath())
	if err != nil {
		return khata.Settings{}, err
	}
	if cur := os.Getenv("KHATA_CURRENCY"); cur != "" {
		s.Currency = strings.ToUpper(cur)
	}
	khata.DisplayCurrency = s.Currency
	return s, nil
}

// newLogger logs warnings only, unless -v is set.
func newLogger() *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	if !*verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		cfg.DisableStacktrace = true
	}
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// openBook loads the book from the data directory and refreshes overdue credits.
func openBook() (*khata.Book, *store.Dir, error) {
	settings, err := loadSettings()
	if err != nil {
		return nil, nil, err
	}
	st, err := store.OpenDir(dataPath())
	if err != nil {
		return nil, nil, err
	}
	b, err := khata.LoadBook(st, khata.WithSettings(settings), khata.WithLogger(newLogger()))
	if err != nil {
		return nil, nil, err
	}
	b.RefreshOverdue(date.Today())
	return b, st, nil
}

// readBook opens the book for a read only command.
func readBook() (*khata.Book, subcommands.ExitStatus) {
	b, _, err := openBook()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading book: %v\n", err)
		return nil, subcommands.ExitFailure
	}
	return b, subcommands.ExitSuccess
}

// mutate opens the book, applies change and saves the book if change succeeded.
func mutate(change func(b *khata.Book) error) subcommands.ExitStatus {
	b, st, err := openBook()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading book: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := change(b); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := b.Save(st); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving book: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// printMarkdown prints md styled for the terminal, or as is when it cannot be styled.
func printMarkdown(md string) {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
	if err != nil {
		fmt.Print(md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}

// parseRange builds the reporting range from the -p, -s and -d flags.
// By default it is the current month.
func parseRange(period, start, end string) (date.Range, error) {
	on := date.Today()
	if end != "" {
		var err error
		if on, err = date.Parse(end); err != nil {
			return date.Range{}, fmt.Errorf("invalid end date: %w", err)
		}
	}
	if start != "" {
		from, err := date.Parse(start)
		if err != nil {
			return date.Range{}, fmt.Errorf("invalid start date: %w", err)
		}
		return date.Between(from, on), nil
	}
	if period == "" {
		period = "month"
	}
	p, err := date.ParsePeriod(period)
	if err != nil {
		return date.Range{}, err
	}
	return date.NewRange(on, p), nil
}

// parseDay parses an optional date flag. The empty string is today.
func parseDay(s string) (date.Date, error) {
	if s == "" {
		return date.Today(), nil
	}
	return date.Parse(s)
}

// rangeFlags are the flags shared by the reporting commands.
type rangeFlags struct {
	period string
	start  string
	end    string
}

func (r *rangeFlags) SetFlags(f *flag.FlagSet) {
	f.StringVar(&r.period, "p", "", "Predefined period (day, week, month, quarter, year). Defaults to month.")
	f.StringVar(&r.start, "s", "", "The start date for a custom range. Overrides -p.")
	f.StringVar(&r.end, "d", "", "The end date of the range, or a date within the period. Defaults to today.")
}

func (r *rangeFlags) Range() (date.Range, error) { return parseRange(r.period, r.start, r.end) }
