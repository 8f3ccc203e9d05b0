package fetcher

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"github.com/cryptofolio/cryptofolio/internal/cache"
	"github.com/cryptofolio/cryptofolio/internal/chain"
	"github.com/cryptofolio/cryptofolio/internal/config"
	"github.com/cryptofolio/cryptofolio/internal/logging"
	"github.com/cryptofolio/cryptofolio/internal/models"
	"github.com/cryptofolio/cryptofolio/internal/pipelineerror"
)

const solscanBaseURL = "https://public-api.solscan.io"

// SolanaFetcher fetches SOL transaction history from the public Solscan API.
// The free tier needs no credential. There is no Solana balance fetcher.
type SolanaFetcher struct {
	baseURL  string
	client   *explorerClient
	cache    *cache.Cache
	cacheTTL time.Duration
	limit    int
	log      logging.Logger
}

// NewSolanaFetcher creates a Solscan-backed fetcher.
func NewSolanaFetcher(cfg *config.Config, store *cache.Cache, limiter *rate.Limiter, logger logging.Logger) *SolanaFetcher {
	return &SolanaFetcher{
		baseURL:  solscanBaseURL,
		client:   newExplorerClient("Solscan", cfg.FetchTimeout(), limiter),
		cache:    store,
		cacheTTL: cfg.CacheTTL(),
		limit:    cfg.Explorer.MaxTransactions,
		log:      logger,
	}
}

// Chain returns the chain this fetcher serves.
func (f *SolanaFetcher) Chain() chain.ID {
	return chain.Solana
}

// solscanTxPage is the account/transactions envelope.
type solscanTxPage struct {
	Data []solscanTx `json:"data"`
}

type solscanTx struct {
	TxHash      string         `json:"txHash"`
	BlockTime   int64          `json:"blockTime"`
	Status      string         `json:"status"`
	Meta        solscanMeta    `json:"meta"`
	Transaction solscanWrapper `json:"transaction"`
}

type solscanMeta struct {
	Fee          int64   `json:"fee"`
	PreBalances  []int64 `json:"preBalances"`
	PostBalances []int64 `json:"postBalances"`
}

type solscanWrapper struct {
	Message solscanMessage `json:"message"`
}

type solscanMessage struct {
	AccountKeys []string `json:"accountKeys"`
}

// Fetch returns the normalized SOL transactions for address. The net amount
// is the post-minus-pre balance delta of the queried account key; failed
// transactions and entries without a block time are skipped.
func (f *SolanaFetcher) Fetch(ctx context.Context, address string) ([]models.Transaction, error) {
	key := cache.Key(string(chain.Solana), address)
	if cached, ok := f.cache.Get(key); ok {
		if txs, ok := cached.([]models.Transaction); ok {
			f.log.Debug("Serving cached Solana transactions",
				logging.Field{Key: logging.FieldAddress, Value: address})
			return txs, nil
		}
	}

	endpoint := fmt.Sprintf("%s/account/transactions?account=%s&limit=%d",
		f.baseURL, url.QueryEscape(address), f.limit)

	var resp solscanTxPage
	if err := f.client.getJSON(ctx, endpoint, &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		return nil, &pipelineerror.MalformedResponseError{
			Provider: "Solscan",
			Detail:   "expected 'data' array",
		}
	}

	txs := make([]models.Transaction, 0, len(resp.Data))
	for _, entry := range resp.Data {
		if entry.Status != "Success" || entry.BlockTime == 0 {
			continue
		}

		accountIndex := -1
		for i, acct := range entry.Transaction.Message.AccountKeys {
			if acct == address {
				accountIndex = i
				break
			}
		}
		if accountIndex < 0 ||
			accountIndex >= len(entry.Meta.PreBalances) ||
			accountIndex >= len(entry.Meta.PostBalances) {
			continue
		}

		netLamports := entry.Meta.PostBalances[accountIndex] - entry.Meta.PreBalances[accountIndex]
		description := "Sent SOL"
		if netLamports > 0 {
			description = "Received SOL"
		}

		tx := models.Transaction{
			Date:        time.Unix(entry.BlockTime, 0).UTC().Format("2006-01-02"),
			Description: description,
			Amount:      lamportsToSOL(netLamports),
			Currency:    chain.Solana.NativeCurrency(),
		}
		if entry.Meta.Fee > 0 {
			tx.Fee = lamportsToSOL(entry.Meta.Fee)
			tx.FeeCurrency = chain.Solana.NativeCurrency()
		}
		txs = append(txs, tx)
	}

	txs = dropZeroAmounts(txs)
	f.log.Info("Fetched Solana transactions",
		logging.Field{Key: logging.FieldAddress, Value: address},
		logging.Field{Key: logging.FieldCount, Value: len(txs)})

	f.cache.Set(key, txs, f.cacheTTL)
	return txs, nil
}

func lamportsToSOL(lamports int64) decimal.Decimal {
	return decimal.New(lamports, -chain.Solana.Decimals())
}
