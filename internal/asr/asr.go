// Package asr wraps batch audio transcription behind the same
// produce-text contract the OCR gateway provides for images.
package asr

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lexintake/intake-cli/internal/model"
	"github.com/lexintake/intake-cli/internal/resilience"
)

// Transcriber transcribes a single audio locator, optionally biased by a
// custom vocabulary.
type Transcriber interface {
	Transcribe(ctx context.Context, audioURL string, vocabulary []string) (string, error)
}

// Gateway runs per-file transcription over a batch of audio URLs.
type Gateway struct {
	transcriber    Transcriber
	maxConcurrency int
}

// NewGateway wraps a Transcriber with batch semantics.
func NewGateway(transcriber Transcriber, maxConcurrency int) *Gateway {
	if maxConcurrency <= 0 {
		maxConcurrency = 2
	}
	return &Gateway{transcriber: transcriber, maxConcurrency: maxConcurrency}
}

// ProduceText transcribes every audio file and concatenates successes in
// input order. A failed file is logged and skipped. Returns "" on total
// failure.
func (g *Gateway) ProduceText(ctx context.Context, audioURLs, vocabulary []string) string {
	if len(audioURLs) == 0 {
		return ""
	}

	texts := make([]string, len(audioURLs))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(g.maxConcurrency)

	for i, audioURL := range audioURLs {
		eg.Go(func() error {
			retryCfg := resilience.DefaultRetryConfig()
			retryCfg.OnRetry = resilience.RetryLogger("asr", "transcribe")

			text, err := resilience.DoVal(egCtx, retryCfg, func(ctx context.Context) (string, error) {
				return g.transcriber.Transcribe(ctx, audioURL, vocabulary)
			})
			if err != nil {
				zap.L().Warn("asr: transcription failed, skipping",
					zap.String("url", audioURL),
					zap.Error(err),
				)
				return nil
			}
			texts[i] = text
			return nil
		})
	}
	_ = eg.Wait()

	var parts []string
	for _, t := range texts {
		if strings.TrimSpace(t) != "" {
			parts = append(parts, t)
		}
	}

	return strings.Join(parts, "\n\n")
}

// BuildVocabulary assembles transcription hint terms from the request's
// client roster plus configured domain terms, deduplicated in order.
func BuildVocabulary(clients []model.KnownClient, domainTerms []string) []string {
	seen := make(map[string]bool)
	var vocab []string

	add := func(term string) {
		term = strings.TrimSpace(term)
		if term == "" || seen[term] {
			return
		}
		seen[term] = true
		vocab = append(vocab, term)
	}

	for _, c := range clients {
		add(c.Name)
	}
	for _, t := range domainTerms {
		add(t)
	}

	return vocab
}
