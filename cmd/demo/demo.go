// Package demo runs the pipeline against bundled sample data
package demo

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/cryptofolio/cryptofolio/cmd/common"
	"github.com/cryptofolio/cryptofolio/cmd/root"
	"github.com/cryptofolio/cryptofolio/internal/demo"
	"github.com/cryptofolio/cryptofolio/internal/logging"
	"github.com/cryptofolio/cryptofolio/internal/models"
)

var useWallet bool

// Cmd represents the demo command
var Cmd = &cobra.Command{
	Use:   "demo",
	Short: "Run the pipeline on bundled sample data",
	Long: `Parse the bundled sample exchange statement, categorize its
transactions and report holdings and income. Works offline, without any
API credentials. With --wallet, sample wallet transactions are used
instead of the statement.`,
	Run: demoFunc,
}

func init() {
	Cmd.Flags().BoolVar(&useWallet, "wallet", false, "Use sample wallet transactions instead of the statement")
}

func demoFunc(cmd *cobra.Command, args []string) {
	log := root.Log
	log.Info("Demo command called")

	var txs []models.Transaction
	if useWallet {
		txs = demo.WalletTransactions()
		log.WithField(logging.FieldCount, len(txs)).Info("Using sample wallet transactions")
	} else {
		stmt, err := demo.ParseStatement()
		if err != nil {
			log.WithError(err).Fatal("Failed to parse sample statement")
		}
		txs = stmt.Transactions
		log.WithFields(
			logging.Field{Key: "source", Value: stmt.SourceName},
			logging.Field{Key: logging.FieldCount, Value: len(txs)},
		).Info("Parsed sample statement")
	}

	err := common.RunReport(context.Background(), txs, common.ReportOptions{
		Config:         root.Cfg,
		Log:            log,
		Output:         root.SharedFlags.Output,
		HoldingsOutput: root.SharedFlags.HoldingsOutput,
	})
	if err != nil {
		log.WithError(err).Fatal("Failed to build report")
	}
	log.Info("Demo completed successfully!")
}
