package demo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatement(t *testing.T) {
	stmt, err := ParseStatement()
	require.NoError(t, err)

	assert.Equal(t, "Coinbase Pro", stmt.SourceName)
	assert.Equal(t, "2024-01-01", stmt.DateRange.Start)
	assert.Equal(t, "2024-03-31", stmt.DateRange.End)
	require.NotEmpty(t, stmt.Transactions)

	first := stmt.Transactions[0]
	assert.Equal(t, "2024-01-15", first.Date)
	assert.Equal(t, "BTC-USD Buy", first.Description)
	assert.Equal(t, "0.00123456", first.Amount.String())
	assert.Equal(t, "BTC", first.Currency)
}

func TestParseStatementVolume(t *testing.T) {
	stmt, err := ParseStatement()
	require.NoError(t, err)
	assert.True(t, stmt.TotalVolume.IsPositive())
}

func TestWalletTransactions(t *testing.T) {
	txs := WalletTransactions()
	require.Len(t, txs, 13)

	for _, tx := range txs {
		assert.NotEmpty(t, tx.Date)
		assert.NotEmpty(t, tx.Description)
		assert.NotEmpty(t, tx.Currency)
		assert.False(t, tx.IsZero())
	}

	assert.Equal(t, "2023-10-26", txs[0].Date)
	assert.Equal(t, "0.5", txs[0].Amount.String())
	assert.Equal(t, "ETH", txs[0].Currency)
}
