package pipeline

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/lexintake/intake-cli/internal/config"
)

// --- Gateway mocks ---

type mockImageProducer struct {
	mock.Mock
}

func (m *mockImageProducer) ProduceText(ctx context.Context, imageURLs []string) string {
	args := m.Called(ctx, imageURLs)
	return args.String(0)
}

type mockAudioProducer struct {
	mock.Mock
}

func (m *mockAudioProducer) ProduceText(ctx context.Context, audioURLs, vocabulary []string) string {
	args := m.Called(ctx, audioURLs, vocabulary)
	return args.String(0)
}

// testConfig returns a config suitable for unit tests: minimal retry
// budget so failure-path tests stay fast.
func testConfig() *config.Config {
	return &config.Config{
		Anthropic: config.AnthropicConfig{
			Model:     "claude-haiku-4-5-20251001",
			MaxTokens: 2048,
		},
		Pipeline: config.PipelineConfig{
			MaxInferenceAttempts: 2,
			FuzzyMatchThreshold:  0.6,
		},
	}
}
