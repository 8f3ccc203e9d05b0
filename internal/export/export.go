// Package export writes classified transactions and holdings to CSV files.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/cryptofolio/cryptofolio/internal/logging"
	"github.com/cryptofolio/cryptofolio/internal/models"
)

var log = logging.GetLogger()

// Delimiter is the CSV output delimiter. Configurable via environment for
// locales that expect semicolons.
var Delimiter rune = ','

func init() {
	if val := os.Getenv("CSV_DELIMITER"); val != "" {
		SetDelimiter([]rune(val)[0])
	}
}

// SetDelimiter changes the delimiter used for CSV output.
func SetDelimiter(delim rune) {
	Delimiter = delim
	gocsv.TagSeparator = fmt.Sprintf("%c", delim)
}

// SetLogger allows setting a configured logger.
func SetLogger(logger logging.Logger) {
	if logger == nil {
		return
	}
	log = logger
}

// transactionRow is the CSV projection of a classified transaction.
type transactionRow struct {
	Date        string `csv:"Date"`
	Description string `csv:"Description"`
	Amount      string `csv:"Amount"`
	Currency    string `csv:"Currency"`
	Fee         string `csv:"Fee"`
	FeeCurrency string `csv:"FeeCurrency"`
	Category    string `csv:"Category"`
	Type        string `csv:"Type"`
}

// holdingRow is the CSV projection of an asset holding.
type holdingRow struct {
	Currency    string `csv:"Currency"`
	Amount      string `csv:"Amount"`
	MarketValue string `csv:"MarketValue"`
}

// WriteTransactionsToCSV writes classified transactions to a CSV file.
func WriteTransactionsToCSV(transactions []models.ClassifiedTransaction, csvFile string) error {
	if transactions == nil {
		return fmt.Errorf("cannot write nil transactions to CSV")
	}

	log.WithFields(
		logging.Field{Key: "file", Value: csvFile},
		logging.Field{Key: logging.FieldCount, Value: len(transactions)},
	).Info("Writing transactions to CSV file")

	rows := make([]transactionRow, 0, len(transactions))
	for _, tx := range transactions {
		row := transactionRow{
			Date:        tx.Date,
			Description: tx.Description,
			Amount:      tx.Amount.String(),
			Currency:    tx.Currency,
			Category:    string(tx.Category),
			Type:        string(tx.Type),
		}
		if !tx.Fee.IsZero() {
			row.Fee = tx.Fee.String()
			row.FeeCurrency = tx.FeeCurrency
		}
		rows = append(rows, row)
	}

	return writeCSV(rows, csvFile)
}

// WriteHoldingsToCSV writes asset holdings to a CSV file, in the order given.
func WriteHoldingsToCSV(holdings []models.AssetHolding, csvFile string) error {
	if holdings == nil {
		return fmt.Errorf("cannot write nil holdings to CSV")
	}

	log.WithFields(
		logging.Field{Key: "file", Value: csvFile},
		logging.Field{Key: logging.FieldCount, Value: len(holdings)},
	).Info("Writing holdings to CSV file")

	rows := make([]holdingRow, 0, len(holdings))
	for _, h := range holdings {
		rows = append(rows, holdingRow{
			Currency:    h.Currency,
			Amount:      h.Amount.String(),
			MarketValue: h.MarketValue.StringFixed(2),
		})
	}

	return writeCSV(rows, csvFile)
}

func writeCSV[TRow any](rows []TRow, csvFile string) error {
	dir := filepath.Dir(csvFile)
	if err := os.MkdirAll(dir, 0750); err != nil {
		log.WithError(err).Error("Failed to create directory")
		return fmt.Errorf("error creating directory: %w", err)
	}

	file, err := os.Create(csvFile)
	if err != nil {
		log.WithError(err).Error("Failed to create CSV file")
		return fmt.Errorf("error creating CSV file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			log.WithError(err).Warn("Failed to close file")
		}
	}()

	csvWriter := csv.NewWriter(file)
	csvWriter.Comma = Delimiter

	if err := gocsv.MarshalCSV(rows, gocsv.NewSafeCSVWriter(csvWriter)); err != nil {
		log.WithError(err).Error("Failed to marshal rows to CSV")
		return fmt.Errorf("error writing CSV data: %w", err)
	}

	log.WithField("file", csvFile).Info("Successfully wrote CSV file")
	return nil
}
