// Package pipelineerror defines the typed errors surfaced by the ingestion
// and classification pipeline. Fetch-stage errors are fatal to that fetch and
// returned as structured failures; classify-stage errors are absorbed into
// deterministic fallbacks wherever one exists.
package pipelineerror

import "fmt"

// UnsupportedChainError indicates a wallet address whose chain could not be
// recognized, or a chain with no fetcher.
type UnsupportedChainError struct {
	Address string
	Chain   string
}

func (e *UnsupportedChainError) Error() string {
	if e.Chain != "" {
		return fmt.Sprintf("unsupported chain %q for address %q", e.Chain, e.Address)
	}
	return fmt.Sprintf("unable to detect cryptocurrency type from wallet address %q", e.Address)
}

// FetchError represents a failed upstream explorer call. Timeout reports
// whether the request was aborted by the request deadline.
type FetchError struct {
	Provider string
	Reason   string
	Timeout  bool
	Err      error
}

func (e *FetchError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("%s: request timed out: %s", e.Provider, e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Reason)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// MalformedResponseError indicates a provider response that failed shape
// validation and could not be recovered through a degraded parse.
type MalformedResponseError struct {
	Provider string
	Detail   string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("invalid response format from %s: %s", e.Provider, e.Detail)
}

// TooManyTransactionsError is surfaced when the classification service
// rejects the input for size or quota reasons. The caller must reduce the
// transaction count and re-invoke.
type TooManyTransactionsError struct {
	Count int
	Limit int
}

func (e *TooManyTransactionsError) Error() string {
	return fmt.Sprintf("too many transactions to classify (%d, limit %d): reduce the input size and retry", e.Count, e.Limit)
}

// ClassificationError represents a classification failure with no safe
// fallback. The underlying service message is preserved verbatim.
type ClassificationError struct {
	Err error
}

func (e *ClassificationError) Error() string {
	return fmt.Sprintf("failed to classify transactions: %v", e.Err)
}

func (e *ClassificationError) Unwrap() error {
	return e.Err
}

// NoTransactionsError is a warning-level outcome: a statement parsed cleanly
// but produced no usable transactions.
type NoTransactionsError struct {
	Source string
}

func (e *NoTransactionsError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("no transactions found in %s", e.Source)
	}
	return "no transactions found"
}
