package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlowFor(t *testing.T) {
	tests := []struct {
		category     Category
		expectedFlow FlowType
	}{
		{CategoryStakingRewards, FlowInflow},
		{CategoryAirdrop, FlowInflow},
		{CategorySalary, FlowInflow},
		{CategoryTradingProfit, FlowInflow},
		{CategoryWithdrawal, FlowOutflow},
		{CategoryTransfer, FlowOutflow},
		{CategoryPayment, FlowOutflow},
		{CategoryTradingLoss, FlowOutflow},
	}

	for _, test := range tests {
		t.Run(string(test.category), func(t *testing.T) {
			flow, ok := FlowFor(test.category)
			require.True(t, ok)
			assert.Equal(t, test.expectedFlow, flow)
		})
	}
}

func TestFlowForUnknownCategory(t *testing.T) {
	_, ok := FlowFor(Category("gambling"))
	assert.False(t, ok)
	assert.False(t, IsValidCategory(Category("gambling")))
}

func TestAllCategoriesAreInTaxonomy(t *testing.T) {
	assert.Len(t, AllCategories, len(flowByCategory))
	for _, category := range AllCategories {
		assert.True(t, IsValidCategory(category), string(category))
	}
}

func TestNewClassifiedTransaction(t *testing.T) {
	tx := Transaction{
		Date:        "2024-01-15",
		Description: "Staking Rewards",
		Amount:      decimal.RequireFromString("0.02"),
		Currency:    "ETH",
	}

	classified, err := NewClassifiedTransaction(tx, CategoryStakingRewards)
	require.NoError(t, err)
	assert.Equal(t, CategoryStakingRewards, classified.Category)
	assert.Equal(t, FlowInflow, classified.Type)
	assert.Equal(t, tx, classified.Transaction)
}

func TestNewClassifiedTransactionRejectsUnknownCategory(t *testing.T) {
	_, err := NewClassifiedTransaction(Transaction{}, Category("nonsense"))
	assert.Error(t, err)
}

func TestRecategorize(t *testing.T) {
	tx := Transaction{
		Date:        "2024-01-15",
		Description: "Sent to 0x...abc2",
		Amount:      decimal.RequireFromString("-100"),
		Currency:    "USDC",
	}
	classified, err := NewClassifiedTransaction(tx, CategoryTransfer)
	require.NoError(t, err)
	require.Equal(t, FlowOutflow, classified.Type)

	reclassified, err := Recategorize(classified, CategorySalary)
	require.NoError(t, err)
	assert.Equal(t, CategorySalary, reclassified.Category)
	assert.Equal(t, FlowInflow, reclassified.Type)
	assert.Equal(t, tx, reclassified.Transaction)

	// The original value is untouched.
	assert.Equal(t, CategoryTransfer, classified.Category)
}

func TestRecategorizeRejectsUnknownCategory(t *testing.T) {
	classified, err := NewClassifiedTransaction(Transaction{Amount: decimal.NewFromInt(1)}, CategoryAirdrop)
	require.NoError(t, err)

	_, err = Recategorize(classified, Category("unknown"))
	assert.Error(t, err)
}

func TestTransactionIsZero(t *testing.T) {
	assert.True(t, Transaction{}.IsZero())
	assert.True(t, Transaction{Amount: decimal.Zero}.IsZero())
	assert.False(t, Transaction{Amount: decimal.RequireFromString("0.00000001")}.IsZero())
	assert.False(t, Transaction{Amount: decimal.RequireFromString("-0.5")}.IsZero())
}
