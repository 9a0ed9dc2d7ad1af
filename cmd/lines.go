package cmd

import (
	"fmt"
	"strings"

	"github.com/etnz/khata"
)

// line is one ITEM:QTY@PRICE argument.
type line struct {
	Type     khata.ItemType
	Name     string
	Quantity khata.Quantity
	Price    khata.Money
}

// parseLine parses "BN:10@150", or "other:Name:2@300" for a custom item.
func parseLine(arg string) (line, error) {
	item, rest, ok := strings.Cut(arg, "@")
	if !ok {
		return line{}, fmt.Errorf("line %q: missing @PRICE", arg)
	}
	price, err := khata.ParseMoney(strings.TrimSpace(rest))
	if err != nil {
		return line{}, fmt.Errorf("line %q: invalid price: %w", arg, err)
	}
	i := strings.LastIndex(item, ":")
	if i < 0 {
		return line{}, fmt.Errorf("line %q: missing :QTY", arg)
	}
	qty, err := khata.ParseQuantity(strings.TrimSpace(item[i+1:]))
	if err != nil {
		return line{}, fmt.Errorf("line %q: invalid quantity: %w", arg, err)
	}
	kind, name, _ := strings.Cut(item[:i], ":")
	t, err := khata.ParseItemType(strings.TrimSpace(kind))
	if err != nil {
		return line{}, fmt.Errorf("line %q: %w", arg, err)
	}
	if t == khata.Other && strings.TrimSpace(name) == "" {
		return line{}, fmt.Errorf("line %q: custom items are written other:NAME:QTY@PRICE", arg)
	}
	return line{Type: t, Name: strings.TrimSpace(name), Quantity: qty, Price: price}, nil
}

func parseLines(args []string) ([]line, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("at least one ITEM:QTY@PRICE line is required")
	}
	lines := make([]line, 0, len(args))
	for _, arg := range args {
		l, err := parseLine(arg)
		if err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, nil
}
