// Package common contains shared functionality for command handlers
package common

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/cryptofolio/cryptofolio/internal/classifier"
	"github.com/cryptofolio/cryptofolio/internal/config"
	"github.com/cryptofolio/cryptofolio/internal/export"
	"github.com/cryptofolio/cryptofolio/internal/logging"
	"github.com/cryptofolio/cryptofolio/internal/models"
	"github.com/cryptofolio/cryptofolio/internal/portfolio"
	"github.com/cryptofolio/cryptofolio/internal/prices"
)

// ReportOptions carries everything a command needs to turn raw transactions
// into a categorized portfolio report.
type ReportOptions struct {
	Config         *config.Config
	Log            logging.Logger
	Output         string
	HoldingsOutput string
}

// NewClassifier builds the transaction classifier from configuration. When no
// AI credential is configured the classifier runs with its deterministic
// fallback.
func NewClassifier(cfg *config.Config, log logging.Logger) *classifier.Classifier {
	var service classifier.Service
	if cfg.AIEnabled() {
		service = classifier.NewGeminiService(cfg.AI.APIKey, cfg.AI.Model, log)
	} else {
		log.Info("GEMINI_API_KEY not set, using default categorization")
	}
	return classifier.New(service, cfg.AITimeout(), log)
}

// NewPriceTable loads the price table, applying the configured YAML override
// file when one is set.
func NewPriceTable(cfg *config.Config, log logging.Logger) *prices.Table {
	if cfg.Prices.File == "" {
		return prices.NewTable()
	}
	table, err := prices.LoadTable(cfg.Prices.File)
	if err != nil {
		log.WithError(err).Warn("Failed to load price overrides, using defaults")
		return prices.NewTable()
	}
	return table
}

// RunReport classifies the transactions, prints the portfolio report and
// writes the optional CSV exports.
func RunReport(ctx context.Context, txs []models.Transaction, opts ReportOptions) error {
	clf := NewClassifier(opts.Config, opts.Log)
	classified, err := clf.Classify(ctx, txs)
	if err != nil {
		return fmt.Errorf("categorization failed: %w", err)
	}

	agg := portfolio.NewAggregator(NewPriceTable(opts.Config, opts.Log))
	portfolio.SortByDateDesc(classified)

	PrintReport(os.Stdout, classified, agg)

	if opts.Output != "" {
		if err := export.WriteTransactionsToCSV(classified, opts.Output); err != nil {
			return err
		}
	}
	if opts.HoldingsOutput != "" {
		if err := export.WriteHoldingsToCSV(agg.Holdings(classified), opts.HoldingsOutput); err != nil {
			return err
		}
	}
	return nil
}

// PrintReport writes the human-readable transaction list, holdings and income
// summary to w.
func PrintReport(w io.Writer, classified []models.ClassifiedTransaction, agg *portfolio.Aggregator) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintln(tw, "DATE\tDESCRIPTION\tAMOUNT\tCURRENCY\tCATEGORY\tTYPE")
	for _, tx := range classified {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			tx.Date, tx.Description, tx.Amount.String(), tx.Currency, tx.Category, tx.Type)
	}
	fmt.Fprintln(tw)

	holdings := agg.Holdings(classified)
	fmt.Fprintln(tw, "HOLDINGS")
	fmt.Fprintln(tw, "CURRENCY\tAMOUNT\tMARKET VALUE")
	for _, h := range holdings {
		fmt.Fprintf(tw, "%s\t%s\t$%s\n", h.Currency, h.Amount.String(), h.MarketValue.StringFixed(2))
	}
	fmt.Fprintf(tw, "TOTAL\t\t$%s\n", agg.TotalValue(classified).StringFixed(2))
	fmt.Fprintln(tw)

	summary := agg.Summary(classified)
	fmt.Fprintln(tw, "INCOME SUMMARY")
	fmt.Fprintf(tw, "Inflow\t%s\n", summary.TotalInflow.String())
	fmt.Fprintf(tw, "Outflow\t%s\n", summary.TotalOutflow.String())
	fmt.Fprintf(tw, "Net\t%s\n", summary.Net.String())

	_ = tw.Flush()
}
