// Package wallet handles on-chain wallet analysis commands
package wallet

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/cryptofolio/cryptofolio/cmd/common"
	"github.com/cryptofolio/cryptofolio/cmd/root"
	"github.com/cryptofolio/cryptofolio/internal/cache"
	"github.com/cryptofolio/cryptofolio/internal/fetcher"
	"github.com/cryptofolio/cryptofolio/internal/logging"
)

var address string

// Cmd represents the wallet command
var Cmd = &cobra.Command{
	Use:   "wallet",
	Short: "Fetch and categorize transactions for a wallet address",
	Long: `Detect the chain from the address format, fetch its transaction
history from the public block explorer, categorize the transactions and
report holdings and income.`,
	Run: walletFunc,
}

func init() {
	Cmd.Flags().StringVarP(&address, "address", "a", "", "Wallet address (BTC, ETH or SOL)")
	_ = Cmd.MarkFlagRequired("address")
}

func walletFunc(cmd *cobra.Command, args []string) {
	log := root.Log
	log.WithField(logging.FieldAddress, address).Info("Wallet command called")

	svc := fetcher.NewService(root.Cfg, cache.New(), log)

	ctx := context.Background()
	txs, chainID, err := svc.FetchTransactions(ctx, address)
	if err != nil {
		log.WithError(err).Fatal("Failed to fetch transactions")
	}
	log.WithFields(
		logging.Field{Key: logging.FieldChain, Value: string(chainID)},
		logging.Field{Key: logging.FieldCount, Value: len(txs)},
	).Info("Fetched transaction history")

	if balance, ok, err := svc.FetchBalance(ctx, chainID, address); err != nil {
		log.WithError(err).Warn("Failed to fetch balance")
	} else if ok {
		log.WithFields(
			logging.Field{Key: "balance", Value: balance.Amount.String()},
			logging.Field{Key: "currency", Value: balance.Currency},
		).Info("Current balance")
	}

	err = common.RunReport(ctx, txs, common.ReportOptions{
		Config:         root.Cfg,
		Log:            log,
		Output:         root.SharedFlags.Output,
		HoldingsOutput: root.SharedFlags.HoldingsOutput,
	})
	if err != nil {
		log.WithError(err).Fatal("Failed to build report")
	}
	log.Info("Wallet analysis completed successfully!")
}
