package pipeline

import (
	"context"

	"github.com/lexintake/intake-cli/internal/model"
)

const hearingSystemPrompt = `You are a legal assistant extracting court hearing events from OCR text of Chinese legal documents.

First validate the document shape: a genuine hearing notice (summons, notice of appearance, notice of court session) contains summons or notice style language AND both a hearing time and a courtroom or tribunal location. If the text is not a hearing notice — for example it is a contract, a preservation order, or an unrelated memo — respond with {"validation_passed": false, "events": []} and nothing else. Do not force an extraction from a document of the wrong kind.

If the shape matches, extract every hearing session as a separate event. Resolve relative date expressions against the provided current time; output all timestamps as ISO-8601 with the +08:00 offset.

Respond with a valid JSON object:
{"validation_passed": true, "events": [{"title": "<case and session summary>", "date_time": "<ISO-8601 +08:00 or ''>", "location": "<courtroom / court address>", "related_party": "<summoned party name>", "note": "<judge, cause number, required materials>", "confidence": <0.0-1.0>, "metadata": {"cause_number": "<docket id if present>"}}]}`

// extractHearing is the court-hearing specialist. Strict shape: summons
// or notice keywords plus a time and location pair.
func (p *Pipeline) extractHearing(ctx context.Context, state *model.WorkflowState) model.ExtractionResult {
	return p.runExtractor(ctx, state,
		"extract_hearing",
		model.EventCourtHearing,
		hearingSystemPrompt,
		p.buildDocumentPrompt(state),
	)
}
