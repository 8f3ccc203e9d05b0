package statementparser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cryptofolio/cryptofolio/internal/logging"
	"github.com/cryptofolio/cryptofolio/internal/models"
)

const sampleStatement = `Coinbase Pro Statement
Date Range: 2024-01-01 to 2024-03-31

Transaction History:

Page 1 - Summary:
Total Transactions: 6
Total Volume: $1,234.56 USD
Total Fees: $12.00 USD

Page 2 - Transactions:
2024-01-15 14:30:00 UTC
BTC-USD Buy
Amount: 0.00123456 BTC
Price: $45,000.00 USD
Fee: $2.50 USD

2024-01-18 11:20:00 UTC
ETH Withdrawal
Amount: 0.1 ETH
Fee: 0.001 ETH

2024-01-19 13:10:00 UTC
Staking Reward
Amount: 0.0005 ETH
Type: Reward

2024-01-23 14:15:00 UTC
BTC-USD Sell
Amount: 0.0005 BTC
Price: $44,800.00 USD
Fee: $2.25 USD

2024-01-26 16:20:00 UTC
USDC Transfer Out
Amount: -500 USDC
Fee: $1.00 USD

2024-01-27 09:00:00 UTC
Broken entry without amount
Price: $1.00 USD
`

func parseSample(t *testing.T) *models.Statement {
	t.Helper()
	stmt, err := New(logging.NewMockLogger()).Parse(strings.NewReader(sampleStatement))
	require.NoError(t, err)
	return stmt
}

func TestParseHeader(t *testing.T) {
	stmt := parseSample(t)

	assert.Equal(t, "Coinbase Pro", stmt.SourceName)
	assert.Equal(t, "2024-01-01", stmt.DateRange.Start)
	assert.Equal(t, "2024-03-31", stmt.DateRange.End)
}

func TestParseTransactions(t *testing.T) {
	stmt := parseSample(t)

	// The entry without an amount is dropped.
	require.Len(t, stmt.Transactions, 5)

	first := stmt.Transactions[0]
	assert.Equal(t, "2024-01-15", first.Date)
	assert.Equal(t, "BTC-USD Buy", first.Description)
	assert.Equal(t, "0.00123456", first.Amount.String())
	assert.Equal(t, "BTC", first.Currency)
	assert.Equal(t, "2.5", first.Fee.String())
	assert.Equal(t, "USD", first.FeeCurrency)
}

func TestParseNegatesOutgoingKinds(t *testing.T) {
	stmt := parseSample(t)

	byDescription := make(map[string]models.Transaction)
	for _, tx := range stmt.Transactions {
		byDescription[tx.Description] = tx
	}

	withdrawal, ok := byDescription["ETH Withdrawal"]
	require.True(t, ok)
	assert.Equal(t, "-0.1", withdrawal.Amount.String())

	sell, ok := byDescription["BTC-USD Sell"]
	require.True(t, ok)
	assert.Equal(t, "-0.0005", sell.Amount.String())

	// Transfers keep the sign the statement already encodes.
	transfer, ok := byDescription["USDC Transfer Out"]
	require.True(t, ok)
	assert.Equal(t, "-500", transfer.Amount.String())

	reward, ok := byDescription["Staking Reward"]
	require.True(t, ok)
	assert.True(t, reward.Amount.IsPositive())
}

func TestParseTotalVolume(t *testing.T) {
	stmt := parseSample(t)

	// Sum of absolute amounts: 0.00123456 + 0.1 + 0.0005 + 0.0005 + 500.
	assert.Equal(t, "500.10223456", stmt.TotalVolume.String())
}

func TestClassifyKind(t *testing.T) {
	tests := []struct {
		description string
		expected    RecordKind
	}{
		{"BTC-USD Buy", KindBuy},
		{"ETH-USD Sell", KindSell},
		{"BTC Deposit", KindDeposit},
		{"ETH Withdrawal", KindWithdrawal},
		{"Staking Reward", KindReward},
		{"BTC Mining Reward", KindReward},
		{"JUP Airdrop", KindReward},
		{"USDC Salary Deposit", KindDeposit},
		{"USDC Transfer Out", KindTransfer},
		{"Something else entirely", KindTransfer},
	}

	for _, test := range tests {
		t.Run(test.description, func(t *testing.T) {
			assert.Equal(t, test.expected, classifyKind(test.description))
		})
	}
}

func TestParseEmptyInput(t *testing.T) {
	stmt, err := New(logging.NewMockLogger()).Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, "Unknown Exchange", stmt.SourceName)
	assert.Empty(t, stmt.Transactions)
	assert.True(t, stmt.TotalVolume.IsZero())
}

func TestParseAmountWithThousandsSeparator(t *testing.T) {
	input := `2024-02-01 10:00:00 UTC
USDC Salary Deposit
Amount: 2,500 USDC
Fee: $0.00 USD
`
	stmt, err := New(logging.NewMockLogger()).Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, stmt.Transactions, 1)
	assert.Equal(t, "2500", stmt.Transactions[0].Amount.String())
	assert.True(t, stmt.Transactions[0].Fee.IsZero())
}
