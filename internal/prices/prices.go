// Package prices provides a static USD price table for portfolio valuation.
// Live price feeds are deliberately out of scope; the table can be overridden
// from a YAML file for ad-hoc adjustments.
package prices

import (
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Table maps asset tickers to USD prices. Lookups for unknown tickers
// resolve to zero so unpriced assets simply carry no market value.
type Table struct {
	prices map[string]decimal.Decimal
}

// defaultPrices mirrors the snapshot the tool ships with.
var defaultPrices = map[string]string{
	"BTC":  "45000",
	"ETH":  "3200",
	"USDC": "1",
	"USDT": "1",
	"SOL":  "98.50",
	"ADA":  "0.45",
	"JUP":  "0.85",
	"USD":  "1",
}

// NewTable returns the built-in price table.
func NewTable() *Table {
	prices := make(map[string]decimal.Decimal, len(defaultPrices))
	for ticker, value := range defaultPrices {
		prices[ticker] = decimal.RequireFromString(value)
	}
	return &Table{prices: prices}
}

// priceFile is the YAML shape for overrides: a flat ticker -> price map.
type priceFile struct {
	Prices map[string]string `yaml:"prices"`
}

// LoadTable reads a YAML price file and merges it over the defaults.
// Unknown tickers are added, known tickers replaced.
func LoadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read price file: %w", err)
	}

	var file priceFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse price file %s: %w", path, err)
	}

	table := NewTable()
	for ticker, value := range file.Prices {
		price, err := decimal.NewFromString(value)
		if err != nil {
			return nil, fmt.Errorf("invalid price for %s: %w", ticker, err)
		}
		table.prices[strings.ToUpper(ticker)] = price
	}
	return table, nil
}

// Price returns the USD price for ticker, or zero when the ticker is not in
// the table.
func (t *Table) Price(ticker string) decimal.Decimal {
	price, ok := t.prices[strings.ToUpper(ticker)]
	if !ok {
		return decimal.Zero
	}
	return price
}

// Has reports whether a ticker is priced.
func (t *Table) Has(ticker string) bool {
	_, ok := t.prices[strings.ToUpper(ticker)]
	return ok
}
