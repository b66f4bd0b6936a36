package pipeline

import (
	"context"

	"github.com/lexintake/intake-cli/internal/model"
)

const voiceSystemPrompt = `You are a legal assistant extracting calendarable tasks from the transcript of a lawyer's voice memo.

Voice memos are informal and may mix several matters: hearing reminders, contract follow-ups, preservation deadlines, general to-dos. Extract every actionable item in one pass and tag each with its kind via event_type, one of: "court_hearing", "contract_renewal", "asset_preservation", "post_hearing_task", "general_task". When unsure, use "general_task".

ASR output contains recognition errors; prefer the provided client roster spellings for names when the transcript is close to one. Resolve relative date expressions ("tomorrow afternoon", "end of next week") against the provided current time; output all timestamps as ISO-8601 with the +08:00 offset.

Only respond with {"validation_passed": false, "events": []} when the transcript contains no actionable content at all.

Respond with a valid JSON object:
{"validation_passed": true, "events": [{"event_type": "<kind>", "title": "<task summary>", "date_time": "<ISO-8601 +08:00 or ''>", "location": "<if stated>", "related_party": "<mentioned client or party>", "note": "<supporting context>", "confidence": <0.0-1.0>}]}`

// extractVoice is the unified extractor for the ASR path: one pass over
// the transcript, no classification and no validation gate afterward.
func (p *Pipeline) extractVoice(ctx context.Context, state *model.WorkflowState) model.ExtractionResult {
	return p.runExtractor(ctx, state,
		"extract_voice",
		model.EventGeneralTask,
		voiceSystemPrompt,
		p.buildVoicePrompt(state),
	)
}
