// Package statementparser converts exchange statement text into normalized
// transactions using line-oriented pattern matching. The parser targets one
// illustrative statement layout and is intentionally tolerant: anything it
// does not recognize is skipped.
package statementparser

import (
	"bufio"
	"io"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cryptofolio/cryptofolio/internal/logging"
	"github.com/cryptofolio/cryptofolio/internal/models"
	"github.com/cryptofolio/cryptofolio/internal/parser"
)

var (
	timestampRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}`)
	dateRe      = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
	dateRangeRe = regexp.MustCompile(`(\d{4}-\d{2}-\d{2}) to (\d{4}-\d{2}-\d{2})`)
	amountRe    = regexp.MustCompile(`Amount:\s*\$?(-?[0-9][0-9,.]*)\s+([A-Za-z]+)`)
	feeRe       = regexp.MustCompile(`Fee:\s*\$?(-?[0-9][0-9,.]*)\s+([A-Za-z]+)`)
)

// lookAheadLines bounds how far past a timestamp line the parser searches
// for the record's description, amount and fee.
const lookAheadLines = 10

// RecordKind is the transaction kind inferred from the description.
type RecordKind string

const (
	KindBuy        RecordKind = "buy"
	KindSell       RecordKind = "sell"
	KindDeposit    RecordKind = "deposit"
	KindWithdrawal RecordKind = "withdrawal"
	KindReward     RecordKind = "reward"
	KindTransfer   RecordKind = "transfer"
)

// kindRule is one row of the ordered keyword decision table. forceNegative
// marks kinds whose amounts always represent money leaving the account.
type kindRule struct {
	keywords      []string
	kind          RecordKind
	forceNegative bool
}

// kindRules is checked top to bottom, first match wins. Transfer amounts
// keep their parsed sign because the statement already encodes direction
// with a leading minus.
var kindRules = []kindRule{
	{keywords: []string{"Buy"}, kind: KindBuy},
	{keywords: []string{"Sell"}, kind: KindSell, forceNegative: true},
	{keywords: []string{"Deposit"}, kind: KindDeposit},
	{keywords: []string{"Withdrawal"}, kind: KindWithdrawal, forceNegative: true},
	{keywords: []string{"Reward", "Staking", "Mining"}, kind: KindReward},
	{keywords: []string{"Airdrop"}, kind: KindReward},
	{keywords: []string{"Salary"}, kind: KindDeposit},
	{keywords: []string{"Transfer"}, kind: KindTransfer},
}

// classifyKind applies the decision table to a record description.
func classifyKind(description string) RecordKind {
	for _, rule := range kindRules {
		for _, kw := range rule.keywords {
			if strings.Contains(description, kw) {
				return rule.kind
			}
		}
	}
	return KindTransfer
}

// forceNegative reports whether the rule matching description negates the
// parsed amount.
func forceNegative(description string) bool {
	for _, rule := range kindRules {
		for _, kw := range rule.keywords {
			if strings.Contains(description, kw) {
				return rule.forceNegative
			}
		}
	}
	return false
}

// StatementParser implements parser.Parser for the supported exchange
// statement text layout.
type StatementParser struct {
	log logging.Logger
}

// New creates a statement parser.
func New(logger logging.Logger) *StatementParser {
	if logger == nil {
		logger = logging.GetLogger()
	}
	return &StatementParser{log: logger}
}

var _ parser.Parser = (*StatementParser)(nil)

// Parse scans the statement text line by line. A timestamp line starts a new
// record; the following lines contribute description, amount and fee. The
// header gives the source name and date range. Records without a description
// or with a zero amount are discarded.
func (p *StatementParser) Parse(r io.Reader) (*models.Statement, error) {
	lines, err := readTrimmedLines(r)
	if err != nil {
		return nil, err
	}

	stmt := &models.Statement{SourceName: "Unknown Exchange"}

	for i, line := range lines {
		if strings.Contains(line, "Statement") && !strings.Contains(line, "Date Range") {
			stmt.SourceName = strings.TrimSpace(strings.TrimSuffix(line, "Statement"))
			continue
		}
		if strings.Contains(line, "Date Range:") {
			if m := dateRangeRe.FindStringSubmatch(line); m != nil {
				stmt.DateRange = models.DateRange{Start: m[1], End: m[2]}
			}
			continue
		}
		if timestampRe.MatchString(line) {
			if tx, ok := p.parseRecord(lines, i); ok {
				stmt.Transactions = append(stmt.Transactions, tx)
			}
		}
	}

	total := decimal.Zero
	for _, tx := range stmt.Transactions {
		total = total.Add(tx.Amount.Abs())
	}
	stmt.TotalVolume = total

	p.log.Info("Parsed statement text",
		logging.Field{Key: "source", Value: stmt.SourceName},
		logging.Field{Key: logging.FieldCount, Value: len(stmt.Transactions)})

	return stmt, nil
}

// parseRecord assembles one transaction starting at the timestamp line at
// index. It scans forward up to lookAheadLines or until the next timestamp.
func (p *StatementParser) parseRecord(lines []string, index int) (models.Transaction, bool) {
	date := dateRe.FindString(lines[index])
	if date == "" {
		return models.Transaction{}, false
	}

	var (
		description string
		amount      decimal.Decimal
		currency    string
		fee         decimal.Decimal
		feeCurrency string
	)

	end := index + 1 + lookAheadLines
	if end > len(lines) {
		end = len(lines)
	}
	for i := index + 1; i < end; i++ {
		line := lines[i]
		if line == "" || strings.Contains(line, "Page") || strings.Contains(line, "Transactions:") {
			continue
		}
		if timestampRe.MatchString(line) {
			break
		}

		switch {
		case strings.Contains(line, "Amount:"):
			if m := amountRe.FindStringSubmatch(line); m != nil {
				if v, err := parseNumber(m[1]); err == nil {
					amount = v
					currency = m[2]
				}
			}
		case strings.Contains(line, "Fee:"):
			if m := feeRe.FindStringSubmatch(line); m != nil {
				if v, err := parseNumber(m[1]); err == nil {
					fee = v
					feeCurrency = m[2]
				}
			}
		case strings.Contains(line, "Price:"):
			// Price context is informational only.
		case description == "":
			description = line
		}
	}

	if description == "" || amount.IsZero() {
		return models.Transaction{}, false
	}

	if forceNegative(description) {
		amount = amount.Abs().Neg()
	}

	tx := models.Transaction{
		Date:        date,
		Description: description,
		Amount:      amount,
		Currency:    currency,
	}
	if fee.IsPositive() {
		tx.Fee = fee
		tx.FeeCurrency = feeCurrency
	}
	return tx, true
}

// Kind exposes the decision-table classification for a parsed transaction,
// used by callers that want the statement-level transaction kind.
func Kind(tx models.Transaction) RecordKind {
	return classifyKind(tx.Description)
}

func readTrimmedLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

func parseNumber(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.ReplaceAll(s, ",", ""))
}
