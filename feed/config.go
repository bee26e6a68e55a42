// Package feed reads broker transaction exports into taxlots transactions.
//
// A configuration file maps the export's columns to the transaction fields
// and selects the tracked ticker. Configurations are JSON, or YAML when the
// file extension is .yaml or .yml.
package feed

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/etnz/taxlots"
	"github.com/etnz/taxlots/date"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// ErrConfig is wrapped by every configuration validation error.
var ErrConfig = errors.New("invalid feed configuration")

// Config describes how to read a transaction export.
type Config struct {
	DateColumn     string   `json:"date_column" yaml:"date_column"`
	DateFormat     string   `json:"date_format" yaml:"date_format"` // strftime ("%m/%d/%Y") or Go layout
	TickerColumn   string   `json:"ticker_column" yaml:"ticker_column"`
	Ticker         string   `json:"ticker_to_track" yaml:"ticker_to_track"`
	QuantityColumn string   `json:"quantity_column" yaml:"quantity_column"`
	PriceColumn    string   `json:"security_price_column" yaml:"security_price_column"`
	TypeColumn     string   `json:"transaction_type_column" yaml:"transaction_type_column"`
	BuyValues      []string `json:"transaction_buy_values" yaml:"transaction_buy_values"`
	SellValues     []string `json:"transaction_sell_values" yaml:"transaction_sell_values"`

	// LegacyQuantityColumn is the historical spelling of quantity_column.
	LegacyQuantityColumn string `json:"quanitity_column,omitempty" yaml:"quanitity_column,omitempty"`

	LastKnownPrice      *decimal.Decimal `json:"last_known_price,omitempty" yaml:"last_known_price,omitempty"`
	LastKnownDate       date.Date        `json:"last_known_date,omitzero" yaml:"last_known_date,omitempty"`
	CapitalGainsTaxRate *int             `json:"capital_gains_tax_rate,omitempty" yaml:"capital_gains_tax_rate,omitempty"` // percent
	IncomeTaxRate       *int             `json:"income_tax_rate,omitempty" yaml:"income_tax_rate,omitempty"`               // percent

	Currency    string              `json:"currency,omitempty" yaml:"currency,omitempty"`         // defaults to USD
	Methods     []taxlots.TaxMethod `json:"methods,omitempty" yaml:"methods,omitempty"`           // defaults to all
	RecordsPath string              `json:"records_path,omitempty" yaml:"records_path,omitempty"` // jsonpath for JSON exports, defaults to "$[*]"
}

// LoadConfig reads and validates a configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read configuration: %w", err)
	}
	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		err = json.Unmarshal(data, &cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("could not parse configuration %q: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that every required key is set, and reports all the
// failures at once.
func (c *Config) Validate() error {
	var errs []error
	required := func(key, value string) {
		if value == "" {
			errs = append(errs, fmt.Errorf("%w: missing %q", ErrConfig, key))
		}
	}
	required("date_column", c.DateColumn)
	required("date_format", c.DateFormat)
	required("ticker_column", c.TickerColumn)
	required("ticker_to_track", c.Ticker)
	required("quantity_column", c.quantityColumn())
	required("security_price_column", c.PriceColumn)
	required("transaction_type_column", c.TypeColumn)
	if len(c.BuyValues) == 0 && len(c.SellValues) == 0 {
		errs = append(errs, fmt.Errorf("%w: missing both %q and %q", ErrConfig, "transaction_buy_values", "transaction_sell_values"))
	}
	if c.DateFormat != "" {
		if _, err := date.Layout(c.DateFormat); err != nil {
			errs = append(errs, fmt.Errorf("%w: %w", ErrConfig, err))
		}
	}
	if err := taxlots.ValidateCurrency(c.currency()); err != nil {
		errs = append(errs, fmt.Errorf("%w: %w", ErrConfig, err))
	}
	for _, rate := range []*int{c.CapitalGainsTaxRate, c.IncomeTaxRate} {
		if rate != nil && (*rate < 0 || *rate > 100) {
			errs = append(errs, fmt.Errorf("%w: tax rate %d%% out of range", ErrConfig, *rate))
		}
	}
	return errors.Join(errs...)
}

func (c *Config) quantityColumn() string {
	if c.QuantityColumn != "" {
		return c.QuantityColumn
	}
	return c.LegacyQuantityColumn
}

func (c *Config) currency() string {
	if c.Currency == "" {
		return "USD"
	}
	return c.Currency
}

// Mark returns the last known price and date, or nil if either is missing.
func (c *Config) Mark() *taxlots.Sale {
	if c.LastKnownPrice == nil || c.LastKnownDate.IsZero() {
		return nil
	}
	mark := c.MarkAt(*c.LastKnownPrice, c.LastKnownDate)
	return &mark
}

// MarkAt returns a mark in the configured currency.
func (c *Config) MarkAt(price decimal.Decimal, on date.Date) taxlots.Sale {
	return taxlots.Sale{Price: taxlots.M(price, c.currency()), On: on.Time()}
}

// Rates returns the configured tax rates, or nil if either is missing.
func (c *Config) Rates() *taxlots.TaxRates {
	if c.CapitalGainsTaxRate == nil || c.IncomeTaxRate == nil {
		return nil
	}
	rates := taxlots.RatesFromPercent(*c.CapitalGainsTaxRate, *c.IncomeTaxRate)
	return &rates
}
