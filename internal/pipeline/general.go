package pipeline

import (
	"context"

	"github.com/lexintake/intake-cli/internal/model"
)

const generalSystemPrompt = `You are a legal assistant extracting actionable tasks from arbitrary legal text: memos, informal notes, letters, or documents that did not match a specific template.

Be permissive. There is no wrong document type here — extract whatever deadlines, appointments, or to-dos the text implies, even loosely. Only respond with {"validation_passed": false, "events": []} when the text is empty of any actionable content (pure information with no task implied).

Resolve relative date expressions against the provided current time; output all timestamps as ISO-8601 with the +08:00 offset. Leave date_time empty when nothing is stated rather than inventing one.

Respond with a valid JSON object:
{"validation_passed": true, "events": [{"title": "<task summary>", "date_time": "<ISO-8601 +08:00 or ''>", "location": "<if stated>", "related_party": "<mentioned party if any>", "note": "<supporting context>", "confidence": <0.0-1.0>}]}`

// extractGeneral is the permissive catch-all fallback. It runs for
// unrecognized document categories and after any specialist fails
// validation, and it never feeds back into the gate.
func (p *Pipeline) extractGeneral(ctx context.Context, state *model.WorkflowState) model.ExtractionResult {
	return p.runExtractor(ctx, state,
		"extract_general",
		model.EventGeneralTask,
		generalSystemPrompt,
		p.buildDocumentPrompt(state),
	)
}
