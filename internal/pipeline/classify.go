package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/lexintake/intake-cli/internal/model"
	"github.com/lexintake/intake-cli/internal/resilience"
	"github.com/lexintake/intake-cli/pkg/anthropic"
)

const classifySystemPrompt = `Classify OCR text of a legal document into exactly one of these categories: court_hearing (summons, hearing notices), contract (agreements with parties and a validity term), asset_preservation (seizure, freeze, or attachment rulings), court_transcript (dialogue-turn hearing records), other (anything else). Respond with a valid JSON object: {"document_type": "<category>", "confidence": <0.0-1.0>}`

const classifyUserPrompt = `Document text (may contain multiple documents separated by DOCUMENT BREAK markers; classify by the dominant one):

%s`

// classifyDocument assigns one category from the closed set. Blank input
// skips the inference call; any failure degrades to DocOther so routing
// falls through to the general extractor instead of erroring.
func (p *Pipeline) classifyDocument(ctx context.Context, state *model.WorkflowState) model.DocumentType {
	if strings.TrimSpace(state.RawText) == "" {
		zap.L().Debug("classify: blank input, skipping inference",
			zap.String("run_id", state.RunID),
		)
		return model.DocOther
	}

	retryCfg := resilience.InferenceRetryConfig(p.cfg.Pipeline.MaxInferenceAttempts)
	retryCfg.OnRetry = resilience.RetryLogger("anthropic", "classify")

	dt, err := resilience.DoVal(ctx, retryCfg, func(ctx context.Context) (model.DocumentType, error) {
		resp, err := p.ai.CreateMessage(ctx, anthropic.MessageRequest{
			Model:     p.cfg.Anthropic.Model,
			MaxTokens: 128,
			System:    anthropic.BuildCachedSystemBlocks(classifySystemPrompt),
			Messages: []anthropic.Message{
				{Role: "user", Content: fmt.Sprintf(classifyUserPrompt, state.RawText)},
			},
		})
		if err != nil {
			return model.DocOther, err
		}
		state.Usage.Add(usageOf(resp.Usage))
		return parseClassification(extractText(resp))
	})
	if err != nil {
		zap.L().Warn("classify: attempts exhausted, degrading to other",
			zap.String("run_id", state.RunID),
			zap.Error(err),
		)
		return model.DocOther
	}

	zap.L().Info("classify: document classified",
		zap.String("run_id", state.RunID),
		zap.String("document_type", string(dt)),
	)
	return dt
}

func parseClassification(text string) (model.DocumentType, error) {
	var result struct {
		DocumentType string  `json:"document_type"`
		Confidence   float64 `json:"confidence"`
	}
	if err := json.Unmarshal([]byte(cleanJSON(text)), &result); err != nil {
		return model.DocOther, eris.Wrap(err, "classify: parse classification")
	}

	dt := model.DocumentType(strings.ToLower(strings.TrimSpace(result.DocumentType)))
	for _, t := range model.AllDocumentTypes() {
		if t == dt {
			return dt, nil
		}
	}
	// Unknown categories are not an error: the router degrades them to
	// the general extractor.
	return model.DocOther, nil
}
