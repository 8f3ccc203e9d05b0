package fetcher

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
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

const etherscanBaseURL = "https://api.etherscan.io/api"

// internalTxLimit bounds the contract-triggered transfer list separately
// from the external one.
const internalTxLimit = 3000

// EthereumFetcher fetches ETH transaction history and balances from the
// Etherscan API. External (direct) and internal (contract-triggered)
// transfers are fetched as two independent collections and merged.
type EthereumFetcher struct {
	apiKey   string
	baseURL  string
	client   *explorerClient
	cache    *cache.Cache
	cacheTTL time.Duration
	limit    int
	log      logging.Logger
}

// NewEthereumFetcher creates an Etherscan-backed fetcher. Etherscan requires
// an API key; fetches without one fail with a configuration error instead of
// borrowing a shared credential.
func NewEthereumFetcher(cfg *config.Config, store *cache.Cache, limiter *rate.Limiter, logger logging.Logger) *EthereumFetcher {
	return &EthereumFetcher{
		apiKey:   cfg.Explorer.EtherscanAPIKey,
		baseURL:  etherscanBaseURL,
		client:   newExplorerClient("Etherscan", cfg.FetchTimeout(), limiter),
		cache:    store,
		cacheTTL: cfg.CacheTTL(),
		limit:    cfg.Explorer.MaxTransactions,
		log:      logger,
	}
}

// Chain returns the chain this fetcher serves.
func (f *EthereumFetcher) Chain() chain.ID {
	return chain.Ethereum
}

// etherscanTxList is the account/txlist and account/txlistinternal envelope.
// All numeric fields arrive as strings.
type etherscanTxList struct {
	Status  string        `json:"status"`
	Message string        `json:"message"`
	Result  []etherscanTx `json:"result"`
}

type etherscanTx struct {
	Hash      string `json:"hash"`
	TimeStamp string `json:"timeStamp"`
	From      string `json:"from"`
	To        string `json:"to"`
	Value     string `json:"value"`
	GasPrice  string `json:"gasPrice"`
	GasUsed   string `json:"gasUsed"`
}

// Fetch returns the normalized ETH transactions for address. The external
// and internal transfer lists are requested concurrently; a failure of the
// internal call is tolerated and treated as an empty list, while a failure
// of the external call fails the whole fetch.
func (f *EthereumFetcher) Fetch(ctx context.Context, address string) ([]models.Transaction, error) {
	key := cache.Key(string(chain.Ethereum), address)
	if cached, ok := f.cache.Get(key); ok {
		if txs, ok := cached.([]models.Transaction); ok {
			f.log.Debug("Serving cached Ethereum transactions",
				logging.Field{Key: logging.FieldAddress, Value: address})
			return txs, nil
		}
	}

	if f.apiKey == "" {
		return nil, &pipelineerror.FetchError{
			Provider: "Etherscan",
			Reason:   "ETHERSCAN_API_KEY not configured",
		}
	}

	type listResult struct {
		txs []etherscanTx
		err error
	}
	internalCh := make(chan listResult, 1)
	go func() {
		txs, err := f.fetchList(ctx, address, "txlistinternal", internalTxLimit)
		internalCh <- listResult{txs: txs, err: err}
	}()

	external, err := f.fetchList(ctx, address, "txlist", f.limit)
	if err != nil {
		<-internalCh
		return nil, err
	}

	internal := <-internalCh
	if internal.err != nil {
		f.log.Warn("Internal transfer fetch failed, continuing without",
			logging.Field{Key: logging.FieldAddress, Value: address},
			logging.Field{Key: logging.FieldError, Value: internal.err.Error()})
		internal.txs = nil
	}

	txs := make([]models.Transaction, 0, len(external)+len(internal.txs))
	txs = append(txs, f.normalize(address, external, false)...)
	txs = append(txs, f.normalize(address, internal.txs, true)...)

	sortByDateDesc(txs)
	txs = dropZeroAmounts(txs)

	f.log.Info("Fetched Ethereum transactions",
		logging.Field{Key: logging.FieldAddress, Value: address},
		logging.Field{Key: logging.FieldCount, Value: len(txs)})

	f.cache.Set(key, txs, f.cacheTTL)
	return txs, nil
}

func (f *EthereumFetcher) fetchList(ctx context.Context, address, action string, limit int) ([]etherscanTx, error) {
	params := url.Values{}
	params.Set("module", "account")
	params.Set("action", action)
	params.Set("address", address)
	params.Set("startblock", "0")
	params.Set("endblock", "99999999")
	params.Set("sort", "desc")
	params.Set("offset", strconv.Itoa(limit))
	params.Set("apikey", f.apiKey)

	var resp etherscanTxList
	if err := f.client.getJSON(ctx, f.baseURL+"?"+params.Encode(), &resp); err != nil {
		return nil, err
	}
	if resp.Status != "1" {
		// Etherscan reports an empty history as status 0.
		if strings.EqualFold(resp.Message, "No transactions found") {
			return nil, nil
		}
		reason := resp.Message
		if reason == "" {
			reason = "invalid response format"
		}
		return nil, &pipelineerror.FetchError{Provider: "Etherscan", Reason: reason}
	}
	if resp.Result == nil {
		return nil, &pipelineerror.MalformedResponseError{
			Provider: "Etherscan",
			Detail:   "expected 'result' array",
		}
	}
	return resp.Result, nil
}

// normalize converts raw Etherscan entries to signed transactions relative
// to address. Internal transfers carry no separate fee.
func (f *EthereumFetcher) normalize(address string, raw []etherscanTx, internal bool) []models.Transaction {
	txs := make([]models.Transaction, 0, len(raw))
	for _, entry := range raw {
		amount, err := weiToETH(entry.Value)
		if err != nil {
			f.log.Warn("Skipping Ethereum entry with unparseable value",
				logging.Field{Key: "hash", Value: entry.Hash})
			continue
		}

		// An entry with from == to == address counts as incoming; Ethereum
		// self-transfers are recorded as-is, not netted like Bitcoin ones.
		incoming := strings.EqualFold(entry.To, address)
		description := describeEthTransfer(entry, incoming, internal)
		if !incoming {
			amount = amount.Neg()
		}

		tx := models.Transaction{
			Date:        formatUnixDate(entry.TimeStamp),
			Description: description,
			Amount:      amount,
			Currency:    chain.Ethereum.NativeCurrency(),
		}
		if !internal {
			if fee, err := gasFee(entry.GasPrice, entry.GasUsed); err == nil && !fee.IsZero() {
				tx.Fee = fee
				tx.FeeCurrency = chain.Ethereum.NativeCurrency()
			}
		}
		txs = append(txs, tx)
	}
	return txs
}

func describeEthTransfer(entry etherscanTx, incoming, internal bool) string {
	switch {
	case internal && incoming:
		return "Internal transfer received from " + entry.From
	case internal:
		return "Internal transfer sent to " + entry.To
	case incoming:
		return "Received from " + entry.From
	default:
		return "Sent to " + entry.To
	}
}

// etherscanBalance is the account/balance envelope; result is the balance in
// wei as a decimal string.
type etherscanBalance struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Result  string `json:"result"`
}

// FetchBalance looks up the current balance for address.
func (f *EthereumFetcher) FetchBalance(ctx context.Context, address string) (models.Balance, error) {
	if f.apiKey == "" {
		return models.Balance{}, &pipelineerror.FetchError{
			Provider: "Etherscan",
			Reason:   "ETHERSCAN_API_KEY not configured",
		}
	}

	params := url.Values{}
	params.Set("module", "account")
	params.Set("action", "balance")
	params.Set("address", address)
	params.Set("tag", "latest")
	params.Set("apikey", f.apiKey)

	var resp etherscanBalance
	if err := f.client.getJSON(ctx, f.baseURL+"?"+params.Encode(), &resp); err != nil {
		return models.Balance{}, err
	}
	if resp.Status != "1" || resp.Result == "" {
		reason := resp.Message
		if reason == "" {
			reason = "invalid response format"
		}
		return models.Balance{}, &pipelineerror.FetchError{Provider: "Etherscan", Reason: reason}
	}

	amount, err := weiToETH(resp.Result)
	if err != nil {
		return models.Balance{}, &pipelineerror.MalformedResponseError{
			Provider: "Etherscan",
			Detail:   fmt.Sprintf("unparseable balance %q", resp.Result),
		}
	}
	return models.Balance{Amount: amount, Currency: chain.Ethereum.NativeCurrency()}, nil
}

func weiToETH(value string) (decimal.Decimal, error) {
	wei, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return wei.Shift(-chain.Ethereum.Decimals()), nil
}

func gasFee(gasPrice, gasUsed string) (decimal.Decimal, error) {
	price, err := decimal.NewFromString(gasPrice)
	if err != nil {
		return decimal.Decimal{}, err
	}
	used, err := decimal.NewFromString(gasUsed)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return price.Mul(used).Shift(-chain.Ethereum.Decimals()), nil
}

func formatUnixDate(timestamp string) string {
	secs, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return ""
	}
	return time.Unix(secs, 0).UTC().Format("2006-01-02")
}
