package khata

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// PriceRatios drive the derivation of BN and C prices from an SN price:
// price = ceil(SN / ratios.SN * ratios.X).
type PriceRatios struct {
	SN float64 `yaml:"sn"`
	BN float64 `yaml:"bn"`
	C  float64 `yaml:"c"`
}

// AccountSpec declares an account created when the book has none.
type AccountSpec struct {
	Type AccountType `yaml:"type"`
	Name string      `yaml:"name"`
}

// Settings holds the shop rules that are not data.
type Settings struct {
	Currency      string               `yaml:"currency"`
	CreditDays    int                  `yaml:"credit_days"`    // due date offset of a credit
	OverdueDays   int                  `yaml:"overdue_days"`   // age after which a pending credit is overdue
	AverageDays   int                  `yaml:"average_days"`   // window of the average daily sales
	UnitDivisors  map[ItemType]float64 `yaml:"unit_divisors"`  // sellable units per priced pack
	Ratios        PriceRatios          `yaml:"price_ratios"`
	OwnerCategory string               `yaml:"owner_category"` // expense category of the owner's drawings
	PhoneRegion   string               `yaml:"phone_region"`   // region of phone numbers written without country code
	Accounts      []AccountSpec        `yaml:"accounts"`
}

// DefaultSettings returns the settings used when no configuration file exists.
func DefaultSettings() Settings {
	return Settings{
		Currency:      "PKR",
		CreditDays:    45,
		OverdueDays:   45,
		AverageDays:   30,
		UnitDivisors:  map[ItemType]float64{C: 43},
		Ratios:        PriceRatios{SN: 11.8, BN: 15, C: 45.4},
		OwnerCategory: "owner",
		PhoneRegion:   "PK",
		Accounts: []AccountSpec{
			{Type: AccountShop, Name: "Shop"},
			{Type: AccountBank, Name: "Bank"},
			{Type: AccountHome, Name: "Home"},
			{Type: AccountEquity, Name: "Equity"},
		},
	}
}

// ParseSettings decodes a YAML document on top of the default settings.
func ParseSettings(data []byte) (Settings, error) {
	s := DefaultSettings()
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("invalid settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// LoadSettings reads a YAML settings file. A missing file yields the defaults.
func LoadSettings(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultSettings(), nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("could not read settings: %w", err)
	}
	s, err := ParseSettings(data)
	if err != nil {
		return Settings{}, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Validate checks that the settings can drive the book.
func (s Settings) Validate() error {
	var errs []error
	if s.Currency == "" {
		errs = append(errs, errors.New("currency is required"))
	}
	if s.CreditDays < 0 || s.OverdueDays < 0 {
		errs = append(errs, errors.New("credit and overdue days cannot be negative"))
	}
	if s.AverageDays <= 0 {
		errs = append(errs, errors.New("average days must be positive"))
	}
	if s.Ratios.SN <= 0 {
		errs = append(errs, errors.New("sn price ratio must be positive"))
	}
	for t, d := range s.UnitDivisors {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("unit divisor of %s must be positive", t))
		}
	}
	seen := make(map[AccountType]bool)
	for _, a := range s.Accounts {
		if seen[a.Type] {
			errs = append(errs, fmt.Errorf("account %s declared twice", a.Type))
		}
		seen[a.Type] = true
	}
	if !seen[AccountShop] {
		errs = append(errs, errors.New("a shop account is required"))
	}
	return errors.Join(errs...)
}
