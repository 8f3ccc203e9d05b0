package logging

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockLoggerCapturesEntries(t *testing.T) {
	mock := NewMockLogger()

	mock.Info("fetch complete", Field{Key: FieldCount, Value: 3})
	mock.Warn("degraded response")

	require.Len(t, mock.Entries, 2)
	assert.Equal(t, "INFO", mock.Entries[0].Level)
	assert.Equal(t, "fetch complete", mock.Entries[0].Message)
	require.Len(t, mock.Entries[0].Fields, 1)
	assert.Equal(t, FieldCount, mock.Entries[0].Fields[0].Key)

	assert.True(t, mock.HasMessage("degraded response"))
	assert.False(t, mock.HasMessage("never logged"))
}

func TestMockLoggerWithError(t *testing.T) {
	mock := NewMockLogger()
	cause := errors.New("boom")

	mock.WithError(cause).Error("fetch failed")

	require.Len(t, mock.Entries, 1)
	assert.Equal(t, cause, mock.Entries[0].Error)
}

func TestMockLoggerWithFieldsAccumulate(t *testing.T) {
	mock := NewMockLogger()

	mock.WithField(FieldChain, "BTC").Info("routing", Field{Key: FieldAddress, Value: "1abc"})

	require.Len(t, mock.Entries, 1)
	keys := make([]string, 0, len(mock.Entries[0].Fields))
	for _, f := range mock.Entries[0].Fields {
		keys = append(keys, f.Key)
	}
	assert.Contains(t, keys, FieldChain)
	assert.Contains(t, keys, FieldAddress)
}

func TestNewLogrusAdapter(t *testing.T) {
	assert.NotNil(t, NewLogrusAdapter("debug", "json"))
	// Unknown values fall back instead of failing.
	assert.NotNil(t, NewLogrusAdapter("bogus", "bogus"))
}

func TestSetDefaultLoggerIgnoresNil(t *testing.T) {
	original := GetLogger()
	SetDefaultLogger(nil)
	assert.Equal(t, original, GetLogger())
}
