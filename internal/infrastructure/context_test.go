package infrastructure

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTraceID(t *testing.T) {
	id := NewTraceID()
	_, err := uuid.Parse(id)
	require.NoError(t, err)

	assert.NotEqual(t, id, NewTraceID())
}

func TestTraceIDRoundTrip(t *testing.T) {
	ctx := WithTraceID(context.Background(), "trace-42")
	assert.Equal(t, "trace-42", GetTraceID(ctx))

	assert.Empty(t, GetTraceID(context.Background()))
}

func TestEnsureTraceID(t *testing.T) {
	t.Run("generates when missing", func(t *testing.T) {
		ctx := EnsureTraceID(context.Background())
		assert.NotEmpty(t, GetTraceID(ctx))
	})

	t.Run("keeps existing", func(t *testing.T) {
		ctx := WithTraceID(context.Background(), "trace-42")
		assert.Equal(t, "trace-42", GetTraceID(EnsureTraceID(ctx)))
	})
}
