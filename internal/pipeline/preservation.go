package pipeline

import (
	"context"

	"github.com/lexintake/intake-cli/internal/model"
)

const preservationSystemPrompt = `You are a legal assistant extracting asset preservation expiry deadlines from OCR text of court preservation rulings.

First validate the document shape: a genuine preservation ruling contains seizure, freeze, or attachment language AND either an explicit preservation expiry date or enough detail (measure type and start date) to compute one from the statutory default periods. If neither is present, respond with {"validation_passed": false, "events": []} and nothing else.

Statutory default preservation periods when the ruling states a start date but no expiry:
- frozen bank accounts / funds: 1 year from the measure date
- seized movable assets: 2 years from the measure date
- seized immovable property or other property rights: 3 years from the measure date

Extract one event per preserved asset, with the expiry (stated or computed) as the event time. Output all timestamps as ISO-8601 with the +08:00 offset.

Respond with a valid JSON object:
{"validation_passed": true, "events": [{"title": "<measure and asset summary>", "date_time": "<expiry, ISO-8601 +08:00 or ''>", "location": "", "related_party": "<party whose assets are preserved>", "note": "<asset details, case reference>", "confidence": <0.0-1.0>, "metadata": {"measure": "<freeze|seizure|attachment>", "statutory_period_applied": <true|false>}}]}`

// extractPreservation is the asset-preservation specialist. Strict
// shape: seizure or freeze keywords plus a stated or computable expiry.
func (p *Pipeline) extractPreservation(ctx context.Context, state *model.WorkflowState) model.ExtractionResult {
	return p.runExtractor(ctx, state,
		"extract_preservation",
		model.EventAssetPreservation,
		preservationSystemPrompt,
		p.buildDocumentPrompt(state),
	)
}
