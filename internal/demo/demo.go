// Package demo bundles sample data so the tool can be exercised without
// network access or credentials.
package demo

import (
	_ "embed"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cryptofolio/cryptofolio/internal/models"
	"github.com/cryptofolio/cryptofolio/internal/statementparser"
)

//go:embed statement.txt
var statementText string

// StatementText returns the embedded sample exchange statement.
func StatementText() string {
	return statementText
}

// ParseStatement parses the embedded sample statement.
func ParseStatement() (*models.Statement, error) {
	return statementparser.New(nil).Parse(strings.NewReader(statementText))
}

// WalletTransactions returns a small set of sample wallet transactions for
// demonstrating classification and portfolio analytics offline.
func WalletTransactions() []models.Transaction {
	mk := func(date, description, amount, currency string) models.Transaction {
		return models.Transaction{
			Date:        date,
			Description: description,
			Amount:      decimal.RequireFromString(amount),
			Currency:    currency,
		}
	}
	return []models.Transaction{
		mk("2023-10-26", "Received from 0x...def1", "0.5", "ETH"),
		mk("2023-11-05", "Staking Rewards", "0.02", "ETH"),
		mk("2023-11-15", "Coinbase Pro withdrawal", "-0.2", "ETH"),
		mk("2023-11-20", "USDC Salary Deposit", "2500", "USDC"),
		mk("2023-12-01", "Sent to 0x...abc2", "-100", "USDC"),
		mk("2023-12-05", "Staking Rewards", "0.021", "ETH"),
		mk("2024-01-05", "Staking Rewards", "0.022", "ETH"),
		mk("2024-01-18", "Airdrop: JUP", "500", "JUP"),
		mk("2024-01-20", "USDC Salary Deposit", "2500", "USDC"),
		mk("2024-02-01", "Bought BTC", "0.05", "BTC"),
		mk("2024-02-05", "Staking Rewards", "0.023", "ETH"),
		mk("2024-02-15", "Sold ETH for profit", "300", "USD"),
		mk("2024-02-20", "USDC Salary Deposit", "2500", "USDC"),
	}
}
