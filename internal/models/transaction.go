// Package models provides the data structures shared by every pipeline stage.
package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Transaction is the normalized transaction shape produced by the chain
// fetchers and the statement parser and consumed by the classifier.
// Amount is signed: positive means net inflow to the queried wallet,
// negative means net outflow. A Transaction with a zero amount must never
// leave a fetcher or parser.
type Transaction struct {
	Date        string          `json:"date" csv:"date"`
	Description string          `json:"description" csv:"description"`
	Amount      decimal.Decimal `json:"amount" csv:"amount"`
	Currency    string          `json:"currency" csv:"currency"`
	Fee         decimal.Decimal `json:"fee,omitempty" csv:"fee"`
	FeeCurrency string          `json:"feeCurrency,omitempty" csv:"fee_currency"`
}

// IsZero reports whether the transaction moves no money.
func (t Transaction) IsZero() bool {
	return t.Amount.IsZero()
}

// FlowType is the cash-flow direction of a classified transaction.
type FlowType string

const (
	FlowInflow  FlowType = "inflow"
	FlowOutflow FlowType = "outflow"
)

// Category is the semantic label assigned by the classifier.
type Category string

const (
	CategoryStakingRewards Category = "staking rewards"
	CategoryAirdrop        Category = "airdrop"
	CategorySalary         Category = "salary"
	CategoryTradingProfit  Category = "trading profit"
	CategoryWithdrawal     Category = "withdrawal"
	CategoryTransfer       Category = "transfer"
	CategoryPayment        Category = "payment"
	CategoryTradingLoss    Category = "trading loss"
)

// AllCategories lists every valid category, inflow categories first.
var AllCategories = []Category{
	CategoryStakingRewards,
	CategoryAirdrop,
	CategorySalary,
	CategoryTradingProfit,
	CategoryWithdrawal,
	CategoryTransfer,
	CategoryPayment,
	CategoryTradingLoss,
}

// flowByCategory is the fixed category-to-direction table. Every path that
// assigns or changes a category must derive the flow type from this table.
var flowByCategory = map[Category]FlowType{
	CategoryStakingRewards: FlowInflow,
	CategoryAirdrop:        FlowInflow,
	CategorySalary:         FlowInflow,
	CategoryTradingProfit:  FlowInflow,
	CategoryWithdrawal:     FlowOutflow,
	CategoryTransfer:       FlowOutflow,
	CategoryPayment:        FlowOutflow,
	CategoryTradingLoss:    FlowOutflow,
}

// FlowFor returns the cash-flow direction for a category and whether the
// category is part of the fixed taxonomy.
func FlowFor(category Category) (FlowType, bool) {
	flow, ok := flowByCategory[category]
	return flow, ok
}

// IsValidCategory reports whether the category belongs to the taxonomy.
func IsValidCategory(category Category) bool {
	_, ok := flowByCategory[category]
	return ok
}

// ClassifiedTransaction is a normalized transaction with its assigned
// category and derived cash-flow direction.
type ClassifiedTransaction struct {
	Transaction
	Category Category `json:"category" csv:"category"`
	Type     FlowType `json:"type" csv:"type"`
}

// NewClassifiedTransaction builds a ClassifiedTransaction with the flow type
// derived from the category table. Unknown categories are rejected.
func NewClassifiedTransaction(tx Transaction, category Category) (ClassifiedTransaction, error) {
	flow, ok := FlowFor(category)
	if !ok {
		return ClassifiedTransaction{}, fmt.Errorf("unknown category %q", category)
	}
	return ClassifiedTransaction{
		Transaction: tx,
		Category:    category,
		Type:        flow,
	}, nil
}

// Recategorize returns a copy of the transaction with the new category and
// the flow type recomputed from the category table. This is the only
// supported way to change a category after classification.
func Recategorize(tx ClassifiedTransaction, newCategory Category) (ClassifiedTransaction, error) {
	flow, ok := FlowFor(newCategory)
	if !ok {
		return ClassifiedTransaction{}, fmt.Errorf("unknown category %q", newCategory)
	}
	tx.Category = newCategory
	tx.Type = flow
	return tx, nil
}
