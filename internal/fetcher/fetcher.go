// Package fetcher retrieves transaction history and balances from public
// blockchain explorer APIs and reconciles the raw ledger entries into signed
// net-amount transactions relative to the queried address. Provider response
// shapes stay fully internal to each fetcher; the rest of the pipeline only
// ever sees normalized transactions.
package fetcher

import (
	"context"
	"sort"

	"golang.org/x/time/rate"

	"github.com/cryptofolio/cryptofolio/internal/cache"
	"github.com/cryptofolio/cryptofolio/internal/chain"
	"github.com/cryptofolio/cryptofolio/internal/config"
	"github.com/cryptofolio/cryptofolio/internal/logging"
	"github.com/cryptofolio/cryptofolio/internal/models"
	"github.com/cryptofolio/cryptofolio/internal/pipelineerror"
)

// TransactionFetcher fetches and normalizes the transaction history of one
// wallet address on one chain. Implementations perform exactly one upstream
// attempt per call; retries are the caller's decision.
type TransactionFetcher interface {
	Chain() chain.ID
	Fetch(ctx context.Context, address string) ([]models.Transaction, error)
}

// BalanceFetcher looks up the current balance of an address, independent of
// transaction history.
type BalanceFetcher interface {
	FetchBalance(ctx context.Context, address string) (models.Balance, error)
}

// Service routes wallet addresses to the fetcher for their chain.
type Service struct {
	fetchers map[chain.ID]TransactionFetcher
	balances map[chain.ID]BalanceFetcher
	maxTxs   int
	log      logging.Logger
}

// NewService wires the per-chain fetchers from configuration. All fetchers
// share one response cache and one token-bucket rate limiter so the free
// explorer tiers are respected across chains.
func NewService(cfg *config.Config, store *cache.Cache, logger logging.Logger) *Service {
	if logger == nil {
		logger = logging.GetLogger()
	}

	limiter := rate.NewLimiter(rate.Limit(cfg.Explorer.RequestsPerSecond), 1)

	btc := NewBitcoinFetcher(cfg, store, limiter, logger)
	eth := NewEthereumFetcher(cfg, store, limiter, logger)
	sol := NewSolanaFetcher(cfg, store, limiter, logger)

	return &Service{
		fetchers: map[chain.ID]TransactionFetcher{
			chain.Bitcoin:  btc,
			chain.Ethereum: eth,
			chain.Solana:   sol,
		},
		balances: map[chain.ID]BalanceFetcher{
			chain.Bitcoin:  btc,
			chain.Ethereum: eth,
		},
		maxTxs: cfg.Explorer.MaxTransactions,
		log:    logger,
	}
}

// FetchTransactions detects the chain for the address and fetches its
// normalized transaction history, capped at the configured maximum.
func (s *Service) FetchTransactions(ctx context.Context, address string) ([]models.Transaction, chain.ID, error) {
	id, ok := chain.Detect(address)
	if !ok {
		return nil, "", &pipelineerror.UnsupportedChainError{Address: address}
	}

	f, ok := s.fetchers[id]
	if !ok {
		return nil, id, &pipelineerror.UnsupportedChainError{Address: address, Chain: string(id)}
	}

	s.log.Info("Fetching wallet transactions",
		logging.Field{Key: logging.FieldChain, Value: string(id)},
		logging.Field{Key: logging.FieldAddress, Value: address})

	txs, err := f.Fetch(ctx, address)
	if err != nil {
		return nil, id, err
	}

	if len(txs) > s.maxTxs {
		s.log.Warn("Limiting transactions to most recent",
			logging.Field{Key: logging.FieldCount, Value: len(txs)},
			logging.Field{Key: "limit", Value: s.maxTxs})
		txs = txs[:s.maxTxs]
	}
	return txs, id, nil
}

// FetchBalance looks up the current balance for supported chains. The second
// return value reports whether the chain has a balance fetcher at all;
// unsupported chains are not an error.
func (s *Service) FetchBalance(ctx context.Context, id chain.ID, address string) (models.Balance, bool, error) {
	b, ok := s.balances[id]
	if !ok {
		return models.Balance{}, false, nil
	}
	balance, err := b.FetchBalance(ctx, address)
	if err != nil {
		return models.Balance{}, true, err
	}
	return balance, true, nil
}

// sortByDateDesc orders transactions newest first. Equal dates keep their
// relative order.
func sortByDateDesc(txs []models.Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].Date > txs[j].Date
	})
}

// dropZeroAmounts removes entries that move no money, such as self-pays and
// failed transactions.
func dropZeroAmounts(txs []models.Transaction) []models.Transaction {
	kept := txs[:0]
	for _, tx := range txs {
		if !tx.IsZero() {
			kept = append(kept, tx)
		}
	}
	return kept
}
