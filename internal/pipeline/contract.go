package pipeline

import (
	"context"

	"github.com/lexintake/intake-cli/internal/model"
)

const contractSystemPrompt = `You are a legal assistant extracting contract renewal deadlines from OCR text of contracts.

First validate the document shape: a genuine contract designates its parties (Party A / Party B or named counterparts) AND contains an explicit validity-period clause (term of the agreement, effective and expiry dates, or renewal window). If either element is missing — the text is a court notice, a memo, or a fragment without a term clause — respond with {"validation_passed": false, "events": []} and nothing else.

If the shape matches, extract one event per renewal or expiry obligation: the contract expiry date, any notice-before-renewal deadline, and any option-exercise window. Resolve relative expressions against the provided current time; output all timestamps as ISO-8601 with the +08:00 offset.

Respond with a valid JSON object:
{"validation_passed": true, "events": [{"title": "<contract name and obligation>", "date_time": "<ISO-8601 +08:00 or ''>", "location": "", "related_party": "<counterparty name>", "note": "<term details, renewal conditions>", "confidence": <0.0-1.0>, "metadata": {"term": "<validity period as written>"}}]}`

// extractContract is the contract-renewal specialist. Strict shape:
// party designations plus an explicit validity-period clause.
func (p *Pipeline) extractContract(ctx context.Context, state *model.WorkflowState) model.ExtractionResult {
	return p.runExtractor(ctx, state,
		"extract_contract",
		model.EventContractRenewal,
		contractSystemPrompt,
		p.buildDocumentPrompt(state),
	)
}
