package ocr

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lexintake/intake-cli/internal/config"
	"github.com/lexintake/intake-cli/internal/resilience"
)

// DocumentSeparator is inserted between per-image extractions so the
// downstream classifier sees explicit document boundaries.
const DocumentSeparator = "\n\n--- DOCUMENT BREAK ---\n\n"

// Extractor extracts text from a single image locator.
type Extractor interface {
	ExtractImage(ctx context.Context, imageURL string) (string, error)
}

// NewExtractor creates an Extractor based on config.
func NewExtractor(cfg config.OCRConfig) (Extractor, error) {
	switch cfg.Provider {
	case "mistral", "":
		if cfg.Key == "" {
			return nil, eris.New("ocr: mistral provider requires key")
		}
		return NewMistralOCR(cfg.Key, cfg.Model), nil
	default:
		return nil, eris.Errorf("ocr: unknown provider %q", cfg.Provider)
	}
}

// Gateway runs per-image extraction over a batch of image URLs.
type Gateway struct {
	extractor      Extractor
	maxConcurrency int
}

// NewGateway wraps an Extractor with batch semantics.
func NewGateway(extractor Extractor, maxConcurrency int) *Gateway {
	if maxConcurrency <= 0 {
		maxConcurrency = 4
	}
	return &Gateway{extractor: extractor, maxConcurrency: maxConcurrency}
}

// ProduceText extracts text from every image and concatenates the
// successes in input order, separated by DocumentSeparator. A failed
// image is logged and skipped; it never aborts the batch. Returns ""
// when zero images succeed.
func (g *Gateway) ProduceText(ctx context.Context, imageURLs []string) string {
	if len(imageURLs) == 0 {
		return ""
	}

	texts := make([]string, len(imageURLs))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(g.maxConcurrency)

	for i, imageURL := range imageURLs {
		eg.Go(func() error {
			retryCfg := resilience.DefaultRetryConfig()
			retryCfg.OnRetry = resilience.RetryLogger("ocr", "extract_image")

			text, err := resilience.DoVal(egCtx, retryCfg, func(ctx context.Context) (string, error) {
				return g.extractor.ExtractImage(ctx, imageURL)
			})
			if err != nil {
				zap.L().Warn("ocr: image extraction failed, skipping",
					zap.String("url", imageURL),
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

	if len(parts) < len(imageURLs) {
		zap.L().Info("ocr: batch completed with partial failures",
			zap.Int("requested", len(imageURLs)),
			zap.Int("succeeded", len(parts)),
		)
	}

	return strings.Join(parts, DocumentSeparator)
}
