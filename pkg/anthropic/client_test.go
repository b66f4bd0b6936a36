package anthropic

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimateCost_KnownModel(t *testing.T) {
	usage := TokenUsage{
		InputTokens:              1_000_000,
		OutputTokens:             500_000,
		CacheCreationInputTokens: 100_000,
		CacheReadInputTokens:     1_000_000,
	}

	cost := usage.EstimateCost("claude-haiku-4-5-20251001")

	// 0.80 input + 2.00 output + 0.10 cache write (1.25x) + 0.08 cache read (0.1x)
	assert.InDelta(t, 2.98, cost, 0.001)
}

func TestEstimateCost_UnknownModel(t *testing.T) {
	usage := TokenUsage{InputTokens: 1_000_000}
	assert.Equal(t, 0.0, usage.EstimateCost("some-other-model"))
}

func TestBuildCachedSystemBlocks(t *testing.T) {
	blocks := BuildCachedSystemBlocks("you are a legal assistant")

	require.Len(t, blocks, 1)
	assert.Equal(t, "you are a legal assistant", blocks[0].Text)
	require.NotNil(t, blocks[0].CacheControl)
	assert.Equal(t, "1h", blocks[0].CacheControl.TTL)
}

type countingClient struct {
	calls int
}

func (c *countingClient) CreateMessage(_ context.Context, _ MessageRequest) (*MessageResponse, error) {
	c.calls++
	return &MessageResponse{}, nil
}

func TestNewRateLimited_NonPositiveRateIsPassthrough(t *testing.T) {
	inner := &countingClient{}
	assert.Same(t, Client(inner), NewRateLimited(inner, 0))
	assert.Same(t, Client(inner), NewRateLimited(inner, -1))
}

func TestNewRateLimited_DelegatesToInner(t *testing.T) {
	inner := &countingClient{}
	limited := NewRateLimited(inner, 100)

	for i := 0; i < 3; i++ {
		_, err := limited.CreateMessage(context.Background(), MessageRequest{})
		require.NoError(t, err)
	}
	assert.Equal(t, 3, inner.calls)
}

func TestNewRateLimited_CancelledContext(t *testing.T) {
	inner := &countingClient{}
	// Tiny rate so the second call has to wait on the limiter.
	limited := NewRateLimited(inner, 0.001)

	_, err := limited.CreateMessage(context.Background(), MessageRequest{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = limited.CreateMessage(ctx, MessageRequest{})
	assert.Error(t, err)
	assert.Equal(t, 1, inner.calls)
}
