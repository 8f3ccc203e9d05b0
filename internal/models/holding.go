package models

import "github.com/shopspring/decimal"

// Balance is a current on-chain balance for a wallet address.
type Balance struct {
	Amount   decimal.Decimal `json:"balance"`
	Currency string          `json:"currency"`
}

// AssetHolding is a derived per-currency position: the signed running sum of
// all classified transactions for that currency, priced against the static
// price table. Recomputed on every aggregation call, never persisted.
type AssetHolding struct {
	Currency    string          `json:"currency" csv:"currency"`
	Amount      decimal.Decimal `json:"amount" csv:"amount"`
	MarketValue decimal.Decimal `json:"marketValue" csv:"market_value"`
}

// IncomeSummary aggregates cash flow across classified transactions.
// Inflow and Outflow are both non-negative; Net = Inflow - Outflow.
type IncomeSummary struct {
	TotalInflow  decimal.Decimal `json:"totalInflow"`
	TotalOutflow decimal.Decimal `json:"totalOutflow"`
	Net          decimal.Decimal `json:"net"`
}

// Statement is the outcome of parsing one exchange statement text.
type Statement struct {
	SourceName   string
	DateRange    DateRange
	TotalVolume  decimal.Decimal
	Transactions []Transaction
}

// DateRange bounds a statement's reporting period, ISO dates.
type DateRange struct {
	Start string
	End   string
}
