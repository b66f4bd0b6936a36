package pipeline

import (
	"github.com/lexintake/intake-cli/internal/model"
)

// Stage identifies one node of the intake graph. Dispatch is an
// exhaustive switch over this closed set, so an unknown stage is a
// compile-time problem rather than a runtime string mismatch.
type Stage int

const (
	// StageExtractText runs the OCR gateway over the image batch.
	StageExtractText Stage = iota
	// StageTranscribe runs the ASR gateway over the audio batch.
	StageTranscribe
	// StageResolveParties identifies named parties and resolves them
	// against the client roster (OCR path only).
	StageResolveParties
	// StageClassify assigns one document category (OCR path only).
	StageClassify
	// Specialist extractors, one per document category.
	StageExtractHearing
	StageExtractContract
	StageExtractPreservation
	StageExtractTranscript
	// StageExtractVoice is the unified all-in-one extractor for
	// transcribed voice memos.
	StageExtractVoice
	// StageExtractGeneral is the permissive catch-all fallback.
	StageExtractGeneral
	// StageAggregate converges every path into ProposedTasks.
	StageAggregate
	// StageDone terminates the run.
	StageDone
)

// String returns the stage name used in logs and traces.
func (s Stage) String() string {
	switch s {
	case StageExtractText:
		return "extract_text"
	case StageTranscribe:
		return "transcribe"
	case StageResolveParties:
		return "resolve_parties"
	case StageClassify:
		return "classify"
	case StageExtractHearing:
		return "extract_hearing"
	case StageExtractContract:
		return "extract_contract"
	case StageExtractPreservation:
		return "extract_preservation"
	case StageExtractTranscript:
		return "extract_transcript"
	case StageExtractVoice:
		return "extract_voice"
	case StageExtractGeneral:
		return "extract_general"
	case StageAggregate:
		return "aggregate"
	case StageDone:
		return "done"
	default:
		return "unknown"
	}
}

// RouteBySourceType selects the first stage of a run. Audio batches go
// to transcription; anything else, including unset or unrecognized
// values, falls back to the image path. Request validation happens
// earlier, at state init — this default is deliberately permissive.
func RouteBySourceType(st model.SourceType) Stage {
	if st == model.SourceAudioBatch {
		return StageTranscribe
	}
	return StageExtractText
}

// RouteByDocumentType maps a classification to its specialist stage.
// Total over all inputs: unknown, empty, and unrecognized values route
// to the general extractor so classification ambiguity degrades to a
// best-effort generic task instead of aborting the run.
func RouteByDocumentType(dt model.DocumentType) Stage {
	switch dt {
	case model.DocCourtHearing:
		return StageExtractHearing
	case model.DocContract:
		return StageExtractContract
	case model.DocAssetPreservation:
		return StageExtractPreservation
	case model.DocCourtTranscript:
		return StageExtractTranscript
	default:
		return StageExtractGeneral
	}
}
