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

const blockCypherBaseURL = "https://api.blockcypher.com/v1/btc/main"

// BitcoinFetcher fetches BTC transaction history and balances from the
// BlockCypher API.
type BitcoinFetcher struct {
	apiKey   string
	baseURL  string
	client   *explorerClient
	cache    *cache.Cache
	cacheTTL time.Duration
	limit    int
	log      logging.Logger
}

// NewBitcoinFetcher creates a BlockCypher-backed fetcher. An empty API key
// is allowed; BlockCypher serves unauthenticated requests at a lower quota.
func NewBitcoinFetcher(cfg *config.Config, store *cache.Cache, limiter *rate.Limiter, logger logging.Logger) *BitcoinFetcher {
	return &BitcoinFetcher{
		apiKey:   cfg.Explorer.BlockCypherAPIKey,
		baseURL:  blockCypherBaseURL,
		client:   newExplorerClient("BlockCypher", cfg.FetchTimeout(), limiter),
		cache:    store,
		cacheTTL: cfg.CacheTTL(),
		limit:    cfg.Explorer.MaxTransactions,
		log:      logger,
	}
}

// Chain returns the chain this fetcher serves.
func (f *BitcoinFetcher) Chain() chain.ID {
	return chain.Bitcoin
}

// blockCypherAddressFull is the response of the /addrs/{addr}/full endpoint.
// Txs may be absent on basic responses, which instead carry TxRefs.
type blockCypherAddressFull struct {
	Error  string           `json:"error"`
	Txs    []blockCypherTx  `json:"txs"`
	TxRefs []blockCypherRef `json:"txrefs"`
}

type blockCypherTx struct {
	Hash          string             `json:"hash"`
	Received      time.Time          `json:"received"`
	Fees          int64              `json:"fees"`
	Confirmations int64              `json:"confirmations"`
	Inputs        []blockCypherSlot  `json:"inputs"`
	Outputs       []blockCypherSlot  `json:"outputs"`
}

// blockCypherSlot is one input or output of a raw ledger entry. Inputs carry
// the spent value in output_value, outputs in value.
type blockCypherSlot struct {
	Addresses   []string `json:"addresses"`
	Value       int64    `json:"value"`
	OutputValue int64    `json:"output_value"`
}

func (s blockCypherSlot) amount() int64 {
	if s.Value != 0 {
		return s.Value
	}
	return s.OutputValue
}

func (s blockCypherSlot) controlledBy(address string) bool {
	for _, a := range s.Addresses {
		if a == address {
			return true
		}
	}
	return false
}

// blockCypherRef is a summary reference entry from a basic response, used as
// the degraded fallback when full entries are unavailable.
type blockCypherRef struct {
	TxHash        string    `json:"tx_hash"`
	Confirmed     time.Time `json:"confirmed"`
	Value         int64     `json:"value"`
	TxInputN      int       `json:"tx_input_n"`
	Confirmations int64     `json:"confirmations"`
}

// Fetch returns the normalized BTC transactions for address, serving from
// the response cache when a fresh entry exists.
func (f *BitcoinFetcher) Fetch(ctx context.Context, address string) ([]models.Transaction, error) {
	key := cache.Key(string(chain.Bitcoin), address)
	if cached, ok := f.cache.Get(key); ok {
		if txs, ok := cached.([]models.Transaction); ok {
			f.log.Debug("Serving cached Bitcoin transactions",
				logging.Field{Key: logging.FieldAddress, Value: address})
			return txs, nil
		}
	}

	endpoint := fmt.Sprintf("%s/addrs/%s/full?limit=%d", f.baseURL, url.PathEscape(address), f.limit)
	if f.apiKey != "" {
		endpoint += "&token=" + url.QueryEscape(f.apiKey)
	}

	var resp blockCypherAddressFull
	if err := f.client.getJSON(ctx, endpoint, &resp); err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, &pipelineerror.FetchError{Provider: "BlockCypher", Reason: resp.Error}
	}

	var txs []models.Transaction
	switch {
	case resp.Txs != nil:
		txs = f.reconcile(address, resp.Txs)
	case resp.TxRefs != nil:
		// Basic response instead of full entries; degrade to the summary list.
		f.log.Warn("BlockCypher returned a basic response, using txrefs",
			logging.Field{Key: logging.FieldAddress, Value: address})
		txs = f.fromRefs(address, resp.TxRefs)
	default:
		return nil, &pipelineerror.MalformedResponseError{
			Provider: "BlockCypher",
			Detail:   "expected 'txs' array",
		}
	}

	txs = dropZeroAmounts(txs)
	f.log.Info("Fetched Bitcoin transactions",
		logging.Field{Key: logging.FieldAddress, Value: address},
		logging.Field{Key: logging.FieldCount, Value: len(txs)})

	f.cache.Set(key, txs, f.cacheTTL)
	return txs, nil
}

// reconcile computes the net signed amount of each raw entry relative to the
// queried address and converts satoshis to BTC.
func (f *BitcoinFetcher) reconcile(address string, raw []blockCypherTx) []models.Transaction {
	txs := make([]models.Transaction, 0, len(raw))
	for _, entry := range raw {
		isSender := false
		for _, in := range entry.Inputs {
			if in.controlledBy(address) {
				isSender = true
				break
			}
		}
		isReceiver := false
		for _, out := range entry.Outputs {
			if out.controlledBy(address) {
				isReceiver = true
				break
			}
		}

		var netSats int64
		var description string
		switch {
		case isSender && isReceiver:
			// Self-transfer or change: received minus sent can be zero and is
			// then dropped by the caller.
			var sent, received int64
			for _, in := range entry.Inputs {
				if in.controlledBy(address) {
					sent += in.amount()
				}
			}
			for _, out := range entry.Outputs {
				if out.controlledBy(address) {
					received += out.amount()
				}
			}
			netSats = received - sent
			description = "Self-transfer"
		case isSender:
			for _, out := range entry.Outputs {
				if !out.controlledBy(address) {
					netSats -= out.amount()
				}
			}
			description = "Sent to " + firstCounterparty(entry.Outputs, address)
		case isReceiver:
			for _, out := range entry.Outputs {
				if out.controlledBy(address) {
					netSats += out.amount()
				}
			}
			description = "Received from " + firstCounterparty(entry.Inputs, address)
		default:
			continue
		}

		tx := models.Transaction{
			Date:        entry.Received.UTC().Format("2006-01-02"),
			Description: description,
			Amount:      satoshisToBTC(netSats),
			Currency:    chain.Bitcoin.NativeCurrency(),
		}
		if entry.Fees > 0 {
			tx.Fee = satoshisToBTC(entry.Fees)
			tx.FeeCurrency = chain.Bitcoin.NativeCurrency()
		}
		txs = append(txs, tx)
	}
	return txs
}

// fromRefs normalizes summary references. Each ref carries a single value
// and reports whether the address was on the input side.
func (f *BitcoinFetcher) fromRefs(address string, refs []blockCypherRef) []models.Transaction {
	txs := make([]models.Transaction, 0, len(refs))
	for _, ref := range refs {
		amount := satoshisToBTC(ref.Value)
		description := "Received"
		if ref.TxInputN >= 0 {
			amount = amount.Neg()
			description = "Sent"
		}
		txs = append(txs, models.Transaction{
			Date:        ref.Confirmed.UTC().Format("2006-01-02"),
			Description: description,
			Amount:      amount,
			Currency:    chain.Bitcoin.NativeCurrency(),
		})
	}
	return txs
}

// blockCypherBalance is the response of the /addrs/{addr}/balance endpoint.
// FinalBalance is a pointer so a present zero is distinguishable from a
// missing field.
type blockCypherBalance struct {
	FinalBalance *int64 `json:"final_balance"`
}

// FetchBalance looks up the current confirmed balance for address.
func (f *BitcoinFetcher) FetchBalance(ctx context.Context, address string) (models.Balance, error) {
	endpoint := fmt.Sprintf("%s/addrs/%s/balance", f.baseURL, url.PathEscape(address))
	if f.apiKey != "" {
		endpoint += "?token=" + url.QueryEscape(f.apiKey)
	}

	var resp blockCypherBalance
	if err := f.client.getJSON(ctx, endpoint, &resp); err != nil {
		return models.Balance{}, err
	}
	if resp.FinalBalance == nil {
		return models.Balance{}, &pipelineerror.MalformedResponseError{
			Provider: "BlockCypher",
			Detail:   "missing 'final_balance'",
		}
	}

	return models.Balance{
		Amount:   satoshisToBTC(*resp.FinalBalance),
		Currency: chain.Bitcoin.NativeCurrency(),
	}, nil
}

func firstCounterparty(slots []blockCypherSlot, address string) string {
	for _, s := range slots {
		for _, a := range s.Addresses {
			if a != address {
				return a
			}
		}
	}
	return "unknown"
}

func satoshisToBTC(sats int64) decimal.Decimal {
	return decimal.New(sats, -chain.Bitcoin.Decimals())
}
