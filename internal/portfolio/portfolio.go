// Package portfolio derives holdings, market value and income summaries from
// classified transactions. Everything is recomputed per call; nothing is
// persisted.
package portfolio

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/cryptofolio/cryptofolio/internal/models"
	"github.com/cryptofolio/cryptofolio/internal/prices"
)

// Aggregator computes portfolio analytics against a price table.
type Aggregator struct {
	prices *prices.Table
}

// NewAggregator creates an aggregator over the given price table.
func NewAggregator(table *prices.Table) *Aggregator {
	if table == nil {
		table = prices.NewTable()
	}
	return &Aggregator{prices: table}
}

// Holdings sums the signed amounts per currency across all transactions
// (outflows subtract), keeps only currencies with a strictly positive sum,
// prices them, and sorts by market value descending. Currencies without a
// price carry a zero market value.
func (a *Aggregator) Holdings(txs []models.ClassifiedTransaction) []models.AssetHolding {
	sums := make(map[string]decimal.Decimal)
	order := make([]string, 0)
	for _, tx := range txs {
		if _, seen := sums[tx.Currency]; !seen {
			order = append(order, tx.Currency)
		}
		sums[tx.Currency] = sums[tx.Currency].Add(tx.Amount)
	}

	holdings := make([]models.AssetHolding, 0, len(order))
	for _, currency := range order {
		amount := sums[currency]
		if !amount.IsPositive() {
			continue
		}
		holdings = append(holdings, models.AssetHolding{
			Currency:    currency,
			Amount:      amount,
			MarketValue: amount.Mul(a.prices.Price(currency)),
		})
	}

	sort.SliceStable(holdings, func(i, j int) bool {
		return holdings[i].MarketValue.GreaterThan(holdings[j].MarketValue)
	})
	return holdings
}

// TotalValue is the sum of all holdings' market values.
func (a *Aggregator) TotalValue(txs []models.ClassifiedTransaction) decimal.Decimal {
	total := decimal.Zero
	for _, holding := range a.Holdings(txs) {
		total = total.Add(holding.MarketValue)
	}
	return total
}

// Summary computes total inflow, total outflow and net cash flow. It is
// independent of the market-value-based total: inflow sums amounts of
// inflow-typed transactions, outflow sums absolute amounts of outflow-typed
// ones.
func (a *Aggregator) Summary(txs []models.ClassifiedTransaction) models.IncomeSummary {
	inflow := decimal.Zero
	outflow := decimal.Zero
	for _, tx := range txs {
		switch tx.Type {
		case models.FlowInflow:
			inflow = inflow.Add(tx.Amount)
		case models.FlowOutflow:
			outflow = outflow.Add(tx.Amount.Abs())
		}
	}
	return models.IncomeSummary{
		TotalInflow:  inflow,
		TotalOutflow: outflow,
		Net:          inflow.Sub(outflow),
	}
}

// CategoryTotals sums absolute amounts per category, for the insights view.
func (a *Aggregator) CategoryTotals(txs []models.ClassifiedTransaction) map[models.Category]decimal.Decimal {
	totals := make(map[models.Category]decimal.Decimal)
	for _, tx := range txs {
		totals[tx.Category] = totals[tx.Category].Add(tx.Amount.Abs())
	}
	return totals
}

// SortByDateDesc orders classified transactions newest first for display.
func SortByDateDesc(txs []models.ClassifiedTransaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].Date > txs[j].Date
	})
}
