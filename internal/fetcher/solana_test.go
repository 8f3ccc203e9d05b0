package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cryptofolio/cryptofolio/internal/cache"
	"github.com/cryptofolio/cryptofolio/internal/logging"
	"github.com/cryptofolio/cryptofolio/internal/pipelineerror"
)

const solAddress = "DYw8jCTfwHNRJhhmFcbXvVDTqWMEVFBX6ZKUmG5CNSKK"

func newSolanaTestFetcher(t *testing.T, handler http.HandlerFunc) *SolanaFetcher {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	f := NewSolanaFetcher(testConfig(), cache.New(), nil, logging.NewMockLogger())
	f.baseURL = server.URL
	return f
}

func TestSolanaFetchBalanceDelta(t *testing.T) {
	f := newSolanaTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, solAddress, r.URL.Query().Get("account"))
		_, _ = w.Write([]byte(`{"data": [
			{
				"txHash": "sig1",
				"blockTime": 1709251200,
				"status": "Success",
				"meta": {"fee": 5000, "preBalances": [1000000000, 0], "postBalances": [2500000000, 0]},
				"transaction": {"message": {"accountKeys": ["` + solAddress + `", "OtherAccount"]}}
			},
			{
				"txHash": "sig2",
				"blockTime": 1709337600,
				"status": "Success",
				"meta": {"fee": 5000, "preBalances": [0, 2000000000], "postBalances": [0, 1500000000]},
				"transaction": {"message": {"accountKeys": ["OtherAccount", "` + solAddress + `"]}}
			}
		]}`))
	})

	txs, err := f.Fetch(context.Background(), solAddress)
	require.NoError(t, err)
	require.Len(t, txs, 2)

	assert.Equal(t, "2024-03-01", txs[0].Date)
	assert.Equal(t, "1.5", txs[0].Amount.String())
	assert.Equal(t, "Received SOL", txs[0].Description)
	assert.Equal(t, "SOL", txs[0].Currency)
	assert.Equal(t, "0.000005", txs[0].Fee.String())

	assert.Equal(t, "2024-03-02", txs[1].Date)
	assert.Equal(t, "-0.5", txs[1].Amount.String())
	assert.Equal(t, "Sent SOL", txs[1].Description)
}

func TestSolanaFetchSkipsFailedAndUnconfirmed(t *testing.T) {
	f := newSolanaTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data": [
			{
				"txHash": "failed",
				"blockTime": 1709251200,
				"status": "Fail",
				"meta": {"fee": 5000, "preBalances": [1000], "postBalances": [0]},
				"transaction": {"message": {"accountKeys": ["` + solAddress + `"]}}
			},
			{
				"txHash": "pending",
				"blockTime": 0,
				"status": "Success",
				"meta": {"fee": 5000, "preBalances": [1000], "postBalances": [0]},
				"transaction": {"message": {"accountKeys": ["` + solAddress + `"]}}
			}
		]}`))
	})

	txs, err := f.Fetch(context.Background(), solAddress)
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestSolanaFetchSkipsEntriesWithoutAccountKey(t *testing.T) {
	f := newSolanaTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data": [
			{
				"txHash": "other",
				"blockTime": 1709251200,
				"status": "Success",
				"meta": {"fee": 5000, "preBalances": [1000], "postBalances": [0]},
				"transaction": {"message": {"accountKeys": ["SomebodyElse"]}}
			}
		]}`))
	})

	txs, err := f.Fetch(context.Background(), solAddress)
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestSolanaFetchDropsZeroDelta(t *testing.T) {
	f := newSolanaTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data": [
			{
				"txHash": "noop",
				"blockTime": 1709251200,
				"status": "Success",
				"meta": {"fee": 0, "preBalances": [5000], "postBalances": [5000]},
				"transaction": {"message": {"accountKeys": ["` + solAddress + `"]}}
			}
		]}`))
	})

	txs, err := f.Fetch(context.Background(), solAddress)
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestSolanaFetchMalformedResponse(t *testing.T) {
	f := newSolanaTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"message": "unexpected"}`))
	})

	_, err := f.Fetch(context.Background(), solAddress)
	var malformed *pipelineerror.MalformedResponseError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, "Solscan", malformed.Provider)
}

func TestSolanaFetchServesFromCache(t *testing.T) {
	calls := 0
	f := newSolanaTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		_, _ = w.Write([]byte(`{"data": [
			{
				"txHash": "sig1",
				"blockTime": 1709251200,
				"status": "Success",
				"meta": {"fee": 5000, "preBalances": [0], "postBalances": [1000000000]},
				"transaction": {"message": {"accountKeys": ["` + solAddress + `"]}}
			}
		]}`))
	})

	first, err := f.Fetch(context.Background(), solAddress)
	require.NoError(t, err)
	second, err := f.Fetch(context.Background(), solAddress)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)
}
