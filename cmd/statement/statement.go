// Package statement handles exchange statement conversion commands
package statement

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/cryptofolio/cryptofolio/cmd/common"
	"github.com/cryptofolio/cryptofolio/cmd/root"
	"github.com/cryptofolio/cryptofolio/internal/logging"
	"github.com/cryptofolio/cryptofolio/internal/pipelineerror"
	"github.com/cryptofolio/cryptofolio/internal/statementparser"
)

var input string

// Cmd represents the statement command
var Cmd = &cobra.Command{
	Use:   "statement",
	Short: "Parse and categorize an exchange statement export",
	Long: `Parse a text export of an exchange account statement, categorize
the transactions and report holdings and income.`,
	Run: statementFunc,
}

func init() {
	Cmd.Flags().StringVarP(&input, "input", "i", "", "Statement text file")
	_ = Cmd.MarkFlagRequired("input")
}

func statementFunc(cmd *cobra.Command, args []string) {
	log := root.Log
	log.WithField("file", input).Info("Statement command called")

	file, err := os.Open(input)
	if err != nil {
		log.WithError(err).Fatal("Failed to open statement file")
	}
	defer func() {
		if err := file.Close(); err != nil {
			log.WithError(err).Warn("Failed to close file")
		}
	}()

	stmt, err := statementparser.New(log).Parse(file)
	if err != nil {
		log.WithError(err).Fatal("Failed to parse statement")
	}
	if len(stmt.Transactions) == 0 {
		err := &pipelineerror.NoTransactionsError{Source: stmt.SourceName}
		log.WithError(err).Fatal("Statement contained no transactions")
	}

	log.WithFields(
		logging.Field{Key: "source", Value: stmt.SourceName},
		logging.Field{Key: logging.FieldCount, Value: len(stmt.Transactions)},
		logging.Field{Key: "dateRange", Value: stmt.DateRange.Start + " to " + stmt.DateRange.End},
	).Info("Parsed statement")

	err = common.RunReport(context.Background(), stmt.Transactions, common.ReportOptions{
		Config:         root.Cfg,
		Log:            log,
		Output:         root.SharedFlags.Output,
		HoldingsOutput: root.SharedFlags.HoldingsOutput,
	})
	if err != nil {
		log.WithError(err).Fatal("Failed to build report")
	}
	log.Info("Statement analysis completed successfully!")
}
