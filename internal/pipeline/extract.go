package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/lexintake/intake-cli/internal/model"
	"github.com/lexintake/intake-cli/internal/resilience"
	"github.com/lexintake/intake-cli/pkg/anthropic"
)

// extractionPayload is the JSON shape every extractor prompt requests.
type extractionPayload struct {
	ValidationPassed bool           `json:"validation_passed"`
	Events           []eventPayload `json:"events"`
}

type eventPayload struct {
	EventType    string         `json:"event_type,omitempty"`
	Title        string         `json:"title"`
	DateTime     string         `json:"date_time,omitempty"`
	Location     string         `json:"location,omitempty"`
	RelatedParty string         `json:"related_party,omitempty"`
	Note         string         `json:"note,omitempty"`
	Confidence   float64        `json:"confidence"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// runExtractor executes one extractor stage against the inference
// boundary: blank-input short-circuit, bounded retries on any error
// (including malformed output), and conversion of exhaustion into the
// stage's failure shape. No error escapes this function.
//
// Invariant: a result with ValidationPassed == false always carries an
// empty event list, regardless of what the model returned.
func (p *Pipeline) runExtractor(ctx context.Context, state *model.WorkflowState, name string, defaultType model.EventType, system, user string) model.ExtractionResult {
	if strings.TrimSpace(state.RawText) == "" {
		zap.L().Debug("extract: blank input, skipping inference",
			zap.String("run_id", state.RunID),
			zap.String("extractor", name),
		)
		return model.ExtractionResult{}
	}

	retryCfg := resilience.InferenceRetryConfig(p.cfg.Pipeline.MaxInferenceAttempts)
	retryCfg.OnRetry = resilience.RetryLogger("anthropic", name)

	payload, err := resilience.DoVal(ctx, retryCfg, func(ctx context.Context) (extractionPayload, error) {
		return p.inferPayload(ctx, state, name, system, user)
	})
	if err != nil {
		zap.L().Warn("extract: attempts exhausted, degrading to validation failure",
			zap.String("run_id", state.RunID),
			zap.String("extractor", name),
			zap.Error(err),
		)
		return model.ExtractionResult{}
	}

	if !payload.ValidationPassed {
		zap.L().Info("extract: input did not match document shape",
			zap.String("run_id", state.RunID),
			zap.String("extractor", name),
		)
		return model.ExtractionResult{}
	}

	return model.ExtractionResult{
		ValidationPassed: true,
		Events:           toEvents(payload.Events, defaultType),
	}
}

// inferPayload performs one inference attempt and parses the structured
// result. Token usage is accumulated even for attempts whose output
// fails to parse.
func (p *Pipeline) inferPayload(ctx context.Context, state *model.WorkflowState, name, system, user string) (extractionPayload, error) {
	var payload extractionPayload

	resp, err := p.ai.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     p.cfg.Anthropic.Model,
		MaxTokens: p.cfg.Anthropic.MaxTokens,
		System:    anthropic.BuildCachedSystemBlocks(system),
		Messages: []anthropic.Message{
			{Role: "user", Content: user},
		},
	})
	if err != nil {
		return payload, err
	}
	state.Usage.Add(usageOf(resp.Usage))

	if err := json.Unmarshal([]byte(cleanJSON(extractText(resp))), &payload); err != nil {
		return payload, eris.Wrapf(err, "%s: parse extraction payload", name)
	}
	return payload, nil
}

// toEvents converts the payload events, tagging each with the
// extractor's event type unless the model supplied a valid one (the
// voice extractor returns mixed types).
func toEvents(payloads []eventPayload, defaultType model.EventType) []model.Event {
	events := make([]model.Event, 0, len(payloads))
	for _, ep := range payloads {
		et := defaultType
		if valid, ok := parseEventType(ep.EventType); ok {
			et = valid
		}
		events = append(events, model.Event{
			Type:             et,
			RawTitle:         strings.TrimSpace(ep.Title),
			RawDateTime:      strings.TrimSpace(ep.DateTime),
			RawLocation:      strings.TrimSpace(ep.Location),
			RelatedPartyName: strings.TrimSpace(ep.RelatedParty),
			Note:             strings.TrimSpace(ep.Note),
			Confidence:       clampConfidence(ep.Confidence),
			Metadata:         ep.Metadata,
		})
	}
	return events
}

func parseEventType(s string) (model.EventType, bool) {
	switch model.EventType(strings.ToLower(strings.TrimSpace(s))) {
	case model.EventCourtHearing:
		return model.EventCourtHearing, true
	case model.EventContractRenewal:
		return model.EventContractRenewal, true
	case model.EventAssetPreservation:
		return model.EventAssetPreservation, true
	case model.EventPostHearingTask:
		return model.EventPostHearingTask, true
	case model.EventGeneralTask:
		return model.EventGeneralTask, true
	default:
		return "", false
	}
}

func clampConfidence(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

// formatPartiesContext renders resolved parties into a context block for
// injection into specialist prompts. Returns "" when no parties exist.
func formatPartiesContext(parties []model.Party) string {
	if len(parties) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("--- Identified Parties ---\n")
	for _, pt := range parties {
		fmt.Fprintf(&b, "- %s", pt.Name)
		if pt.Role != "" {
			fmt.Fprintf(&b, " (%s)", pt.Role)
		}
		fmt.Fprintf(&b, " [%s]", pt.Resolution.Status)
		b.WriteString("\n")
	}
	return b.String()
}

// formatTimeContext renders the reference clock used to resolve relative
// date expressions into absolute UTC+8 timestamps.
func formatTimeContext(now time.Time) string {
	return "Current time: " + now.Format(time.RFC3339)
}

// extractText concatenates all text content blocks from a message response.
func extractText(resp *anthropic.MessageResponse) string {
	if resp == nil {
		return ""
	}
	var parts []string
	for _, block := range resp.Content {
		if block.Text != "" {
			parts = append(parts, block.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// cleanJSON attempts to extract a JSON object from text that may contain
// markdown code fences or other wrapping.
func cleanJSON(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		text = text[start : end+1]
	}

	return strings.TrimSpace(text)
}

func usageOf(u anthropic.TokenUsage) model.TokenUsage {
	return model.TokenUsage{
		InputTokens:         int(u.InputTokens),
		OutputTokens:        int(u.OutputTokens),
		CacheCreationTokens: int(u.CacheCreationInputTokens),
		CacheReadTokens:     int(u.CacheReadInputTokens),
	}
}
