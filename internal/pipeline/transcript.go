package pipeline

import (
	"context"

	"github.com/lexintake/intake-cli/internal/model"
)

const transcriptSystemPrompt = `You are a legal assistant extracting post-hearing follow-up tasks from OCR text of court hearing transcripts.

First validate the document shape: a genuine transcript has dialogue-turn structure with identifiable speaker roles (judge, plaintiff counsel, defendant counsel, clerk). Free-running prose, notices, or contracts are not transcripts — respond with {"validation_passed": false, "events": []} and nothing else.

If the shape matches, extract every follow-up obligation imposed or agreed during the hearing: evidence submission deadlines, supplementary brief due dates, mediation appointments, next session dates. Resolve relative expressions ("within three days", "before the next session") against the provided current time; output all timestamps as ISO-8601 with the +08:00 offset.

Respond with a valid JSON object:
{"validation_passed": true, "events": [{"title": "<obligation summary>", "date_time": "<deadline, ISO-8601 +08:00 or ''>", "location": "<if tied to a venue>", "related_party": "<obligated party name>", "note": "<who imposed it, exact wording>", "confidence": <0.0-1.0>, "metadata": {"speaker": "<role who raised it>"}}]}`

// extractTranscript is the hearing-transcript specialist. Strict shape:
// dialogue turns with identifiable speaker roles.
func (p *Pipeline) extractTranscript(ctx context.Context, state *model.WorkflowState) model.ExtractionResult {
	return p.runExtractor(ctx, state,
		"extract_transcript",
		model.EventPostHearingTask,
		transcriptSystemPrompt,
		p.buildDocumentPrompt(state),
	)
}
