package classifier

import (
	"context"
	"errors"
	"time"

	"github.com/cryptofolio/cryptofolio/internal/logging"
	"github.com/cryptofolio/cryptofolio/internal/models"
	"github.com/cryptofolio/cryptofolio/internal/pipelineerror"
)

// MaxTransactions is the hard practical upper bound enforced before the
// single classification round trip. Larger inputs must be truncated by the
// caller.
const MaxTransactions = 7000

// DefaultCategory is assigned to every transaction when no classification
// service is configured, keeping the pipeline exercisable offline.
const DefaultCategory = models.CategoryStakingRewards

// Classifier applies the classification policy: delegate to the service when
// one is configured, and fall back deterministically when it is absent or
// returns an unusable answer.
type Classifier struct {
	service Service
	timeout time.Duration
	log     logging.Logger
}

// New creates a classifier. A nil service means no credential is configured;
// classification then uses the documented default fallback.
func New(service Service, timeout time.Duration, logger logging.Logger) *Classifier {
	if logger == nil {
		logger = logging.GetLogger()
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Classifier{
		service: service,
		timeout: timeout,
		log:     logger,
	}
}

// Classify assigns a category and flow direction to every transaction.
// Output length always equals input length; output ordering is not
// guaranteed to match input ordering, so callers needing stable order must
// re-sort afterwards.
func (c *Classifier) Classify(ctx context.Context, txs []models.Transaction) ([]models.ClassifiedTransaction, error) {
	if len(txs) == 0 {
		return nil, nil
	}
	if len(txs) > MaxTransactions {
		return nil, &pipelineerror.TooManyTransactionsError{Count: len(txs), Limit: MaxTransactions}
	}

	if c.service == nil {
		c.log.Info("No classification service configured, using default fallback",
			logging.Field{Key: logging.FieldCategory, Value: string(DefaultCategory)},
			logging.Field{Key: logging.FieldCount, Value: len(txs)})
		return c.defaultFallback(txs), nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.service.Categorize(ctx, Request{Transactions: txs})
	if err != nil {
		if errors.Is(err, ErrInputTooLarge) {
			return nil, &pipelineerror.TooManyTransactionsError{Count: len(txs), Limit: MaxTransactions}
		}
		if errors.Is(err, ErrInvalidResponse) {
			c.log.WithError(err).Warn("Classification response not decodable, using heuristic fallback",
				logging.Field{Key: logging.FieldCount, Value: len(txs)})
			return c.heuristicFallback(txs), nil
		}
		return nil, &pipelineerror.ClassificationError{Err: err}
	}

	if !c.validate(txs, resp) {
		c.log.Warn("Classification response failed shape validation, using heuristic fallback",
			logging.Field{Key: logging.FieldCount, Value: len(txs)})
		return c.heuristicFallback(txs), nil
	}
	return resp.CategorizedTransactions, nil
}

// validate checks the service answer against the contract: one entry per
// input, every category in the taxonomy, and every flow type matching its
// category table row.
func (c *Classifier) validate(input []models.Transaction, resp Response) bool {
	if len(resp.CategorizedTransactions) != len(input) {
		return false
	}
	for _, tx := range resp.CategorizedTransactions {
		flow, ok := models.FlowFor(tx.Category)
		if !ok || tx.Type != flow {
			return false
		}
	}
	return true
}

// defaultFallback categorizes everything as the fixed default.
func (c *Classifier) defaultFallback(txs []models.Transaction) []models.ClassifiedTransaction {
	out := make([]models.ClassifiedTransaction, 0, len(txs))
	for _, tx := range txs {
		classified, _ := models.NewClassifiedTransaction(tx, DefaultCategory)
		out = append(out, classified)
	}
	return out
}

// heuristicRules is the ordered decision table of the schema fallback:
// a positive amount is treated as trading profit, anything else as a
// transfer out.
var heuristicRules = []struct {
	matches  func(models.Transaction) bool
	category models.Category
}{
	{matches: func(tx models.Transaction) bool { return tx.Amount.IsPositive() }, category: models.CategoryTradingProfit},
	{matches: func(models.Transaction) bool { return true }, category: models.CategoryTransfer},
}

// heuristicFallback applies the decision table when the service answer fails
// validation, keeping the pipeline output schema-valid.
func (c *Classifier) heuristicFallback(txs []models.Transaction) []models.ClassifiedTransaction {
	out := make([]models.ClassifiedTransaction, 0, len(txs))
	for _, tx := range txs {
		for _, rule := range heuristicRules {
			if rule.matches(tx) {
				classified, _ := models.NewClassifiedTransaction(tx, rule.category)
				out = append(out, classified)
				break
			}
		}
	}
	return out
}
