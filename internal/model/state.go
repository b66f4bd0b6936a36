package model

import (
	"time"

	"github.com/google/uuid"
)

// WorkflowState is the single mutable record threaded through every
// stage of one intake request. Created once per request, never shared
// across requests, discarded after ProposedTasks is read.
type WorkflowState struct {
	// RunID correlates log lines across stages.
	RunID string

	// Immutable after construction.
	SourceType   SourceType
	SourceItems  []string
	KnownClients []KnownClient

	// Now anchors relative date expressions ("tomorrow", "within three
	// days") during extraction and aggregation.
	Now time.Time

	// RawText is written exactly once, by the OCR gateway stage or the
	// transcription stage.
	RawText string

	// IdentifiedParties is nil until the party resolver runs (OCR path
	// only); read-only afterward.
	IdentifiedParties []Party

	// DocumentType is empty until the classifier runs (OCR path only).
	DocumentType DocumentType

	// ValidationPassed is nil until a specialist extractor runs. Each
	// extractor overwrites it; there is no accumulation.
	ValidationPassed *bool

	// ExtractedEvents is replaced wholesale by each extractor stage,
	// including the fallback.
	ExtractedEvents []Event

	// ProposedTasks is the terminal value, written exactly once by the
	// aggregator.
	ProposedTasks []ProposedTask

	// Usage accumulates inference token counts across stages.
	Usage TokenUsage

	// Trace records per-stage outcomes for the run result.
	Trace []StageTrace
}

// NewWorkflowState builds the state for a validated request. Callers must
// run IntakeRequest.Validate first; this constructor does not re-check.
func NewWorkflowState(req IntakeRequest, now time.Time) *WorkflowState {
	return &WorkflowState{
		RunID:        uuid.NewString(),
		SourceType:   SourceType(req.SourceType),
		SourceItems:  req.SourceFileURLs,
		KnownClients: req.ClientList,
		Now:          now,
	}
}

// StageTrace records one stage execution for observability.
type StageTrace struct {
	Stage      string `json:"stage"`
	DurationMS int64  `json:"duration_ms"`
	Outcome    string `json:"outcome"`
}

// TokenUsage tracks token consumption across inference calls.
type TokenUsage struct {
	InputTokens         int `json:"input_tokens"`
	OutputTokens        int `json:"output_tokens"`
	CacheCreationTokens int `json:"cache_creation_tokens"`
	CacheReadTokens     int `json:"cache_read_tokens"`
}

// Add accumulates usage from another counter.
func (u *TokenUsage) Add(other TokenUsage) {
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
	u.CacheCreationTokens += other.CacheCreationTokens
	u.CacheReadTokens += other.CacheReadTokens
}

// IntakeResult is what the orchestrator returns to its caller. The
// request's identifying fields are echoed back unchanged so callers can
// correlate results in batch output.
type IntakeResult struct {
	RunID          string         `json:"run_id"`
	SourceType     string         `json:"source_type"`
	SourceFileURLs []string       `json:"source_file_urls"`
	ClientList     []KnownClient  `json:"client_list,omitempty"`
	ProposedTasks  []ProposedTask `json:"proposed_tasks"`
	Stages         []StageTrace   `json:"stages,omitempty"`
	TokenUsage     TokenUsage     `json:"token_usage"`
}
