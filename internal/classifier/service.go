// Package classifier assigns each normalized transaction a semantic category
// and a cash-flow direction. Classification is backed by a pluggable service
// (a remote model call in production) with deterministic fallbacks so the
// pipeline always produces a complete, schema-valid output.
package classifier

import (
	"context"
	"errors"

	"github.com/cryptofolio/cryptofolio/internal/models"
)

// Request is the classification service input: the full transaction list in
// one round trip. It is not chunked or streamed.
type Request struct {
	Transactions []models.Transaction `json:"transactions"`
}

// Response is the classification service output. The service must return one
// categorized transaction per input, same count; ordering is not guaranteed.
type Response struct {
	CategorizedTransactions []models.ClassifiedTransaction `json:"categorizedTransactions"`
}

// ErrInputTooLarge is returned by a Service when the request exceeds its
// size or quota limits. The classifier maps it to a typed failure telling
// the caller to shrink the input.
var ErrInputTooLarge = errors.New("classification input too large")

// ErrInvalidResponse is returned by a Service when the model answer cannot
// be decoded into a Response (empty output, non-JSON text). The classifier
// maps it to the heuristic fallback instead of failing.
var ErrInvalidResponse = errors.New("classification response not decodable")

// Service is the external classification collaborator. Only its input/output
// contract matters here; prompting and model behavior are out of scope.
type Service interface {
	Categorize(ctx context.Context, req Request) (Response, error)
}
