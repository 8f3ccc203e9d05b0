// Package parser defines the contract shared by statement parsers.
package parser

import (
	"io"

	"github.com/cryptofolio/cryptofolio/internal/models"
)

// Parser reads raw statement content and returns the parsed statement with
// its normalized transactions. Implementations are responsible for
// understanding the specific input layout; malformed or unrecognized lines
// are skipped rather than failing the parse. Deciding whether an empty
// result is an error is left to the caller.
type Parser interface {
	Parse(r io.Reader) (*models.Statement, error)
}
