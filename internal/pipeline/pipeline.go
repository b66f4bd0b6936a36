package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/lexintake/intake-cli/internal/asr"
	"github.com/lexintake/intake-cli/internal/config"
	"github.com/lexintake/intake-cli/internal/model"
	"github.com/lexintake/intake-cli/pkg/anthropic"
)

// ImageTextProducer is the OCR gateway boundary.
type ImageTextProducer interface {
	ProduceText(ctx context.Context, imageURLs []string) string
}

// AudioTextProducer is the ASR gateway boundary.
type AudioTextProducer interface {
	ProduceText(ctx context.Context, audioURLs, vocabulary []string) string
}

// Pipeline orchestrates the intake graph: a fixed DAG with two branch
// points (source type, document type) and a single back-edge from the
// validation gate to the general extractor.
type Pipeline struct {
	cfg *config.Config
	ai  anthropic.Client
	ocr ImageTextProducer
	asr AudioTextProducer
	now func() time.Time
}

// New creates a Pipeline with all dependencies.
func New(cfg *config.Config, aiClient anthropic.Client, ocrGateway ImageTextProducer, asrGateway AudioTextProducer) *Pipeline {
	return &Pipeline{
		cfg: cfg,
		ai:  aiClient,
		ocr: ocrGateway,
		asr: asrGateway,
		now: func() time.Time { return time.Now().In(tzUTC8) },
	}
}

// Run executes the graph for one request: single-threaded, sequential
// stages, exactly one terminal write of proposed tasks. Only pre-flight
// validation errors are returned; every downstream failure degrades
// inside its stage and the run still reaches aggregation.
func (p *Pipeline) Run(ctx context.Context, req model.IntakeRequest) (*model.IntakeResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	state := model.NewWorkflowState(req, p.now())
	log := zap.L().With(
		zap.String("run_id", state.RunID),
		zap.String("source_type", string(state.SourceType)),
	)
	log.Info("pipeline: starting intake run",
		zap.Int("files", len(state.SourceItems)),
		zap.Int("known_clients", len(state.KnownClients)),
	)

	for stage := RouteBySourceType(state.SourceType); stage != StageDone; {
		stage = p.execStage(ctx, log, state, stage)
	}

	usage := anthropic.TokenUsage{
		InputTokens:              int64(state.Usage.InputTokens),
		OutputTokens:             int64(state.Usage.OutputTokens),
		CacheCreationInputTokens: int64(state.Usage.CacheCreationTokens),
		CacheReadInputTokens:     int64(state.Usage.CacheReadTokens),
	}
	usage.LogCost(p.cfg.Anthropic.Model, "intake_run")

	log.Info("pipeline: intake run complete",
		zap.Int("proposed_tasks", len(state.ProposedTasks)),
		zap.Int("stages", len(state.Trace)),
	)

	return &model.IntakeResult{
		RunID:          state.RunID,
		SourceType:     req.SourceType,
		SourceFileURLs: req.SourceFileURLs,
		ClientList:     req.ClientList,
		ProposedTasks:  state.ProposedTasks,
		Stages:         state.Trace,
		TokenUsage:     state.Usage,
	}, nil
}

// execStage runs one stage and returns the next. A panic inside a stage
// is recovered into that stage's failure shape so a single stage bug
// cannot crash the request.
func (p *Pipeline) execStage(ctx context.Context, log *zap.Logger, state *model.WorkflowState, stage Stage) (next Stage) {
	start := time.Now()
	outcome := "ok"

	defer func() {
		if r := recover(); r != nil {
			log.Error("pipeline: stage recovered from panic",
				zap.String("stage", stage.String()),
				zap.Any("panic", r),
			)
			outcome = "recovered"
			next = p.absorbFailure(state, stage)
		}
		state.Trace = append(state.Trace, model.StageTrace{
			Stage:      stage.String(),
			DurationMS: time.Since(start).Milliseconds(),
			Outcome:    outcome,
		})
		log.Debug("pipeline: stage complete",
			zap.String("stage", stage.String()),
			zap.String("next", next.String()),
			zap.String("outcome", outcome),
		)
	}()

	switch stage {
	case StageExtractText:
		state.RawText = p.ocr.ProduceText(ctx, state.SourceItems)
		return StageResolveParties

	case StageTranscribe:
		vocab := asr.BuildVocabulary(state.KnownClients, p.cfg.ASR.VocabularyTerms)
		state.RawText = p.asr.ProduceText(ctx, state.SourceItems, vocab)
		return StageExtractVoice

	case StageResolveParties:
		state.IdentifiedParties = p.resolveParties(ctx, state)
		return StageClassify

	case StageClassify:
		state.DocumentType = p.classifyDocument(ctx, state)
		return RouteByDocumentType(state.DocumentType)

	case StageExtractHearing:
		applyExtraction(state, p.extractHearing(ctx, state))
		return CheckExtractionSuccess(state.ValidationPassed)

	case StageExtractContract:
		applyExtraction(state, p.extractContract(ctx, state))
		return CheckExtractionSuccess(state.ValidationPassed)

	case StageExtractPreservation:
		applyExtraction(state, p.extractPreservation(ctx, state))
		return CheckExtractionSuccess(state.ValidationPassed)

	case StageExtractTranscript:
		applyExtraction(state, p.extractTranscript(ctx, state))
		return CheckExtractionSuccess(state.ValidationPassed)

	case StageExtractVoice:
		// The unified voice extractor converges straight to aggregation;
		// its failures already degrade to an empty event list.
		applyExtraction(state, p.extractVoice(ctx, state))
		return StageAggregate

	case StageExtractGeneral:
		// The fallback is exempt from the gate — no second hop.
		applyExtraction(state, p.extractGeneral(ctx, state))
		return StageAggregate

	case StageAggregate:
		state.ProposedTasks = Aggregate(
			state.ExtractedEvents,
			state.IdentifiedParties,
			state.KnownClients,
			state.Now,
			p.cfg.Pipeline.FuzzyMatchThreshold,
		)
		return StageDone

	default:
		log.Error("pipeline: unreachable stage", zap.Int("stage", int(stage)))
		return StageDone
	}
}

// absorbFailure converts a recovered stage into its failure output shape
// and picks the next stage so every path still reaches aggregation
// exactly once.
func (p *Pipeline) absorbFailure(state *model.WorkflowState, stage Stage) Stage {
	switch stage {
	case StageExtractText:
		state.RawText = ""
		return StageResolveParties
	case StageTranscribe:
		state.RawText = ""
		return StageExtractVoice
	case StageResolveParties:
		state.IdentifiedParties = []model.Party{}
		return StageClassify
	case StageClassify:
		state.DocumentType = model.DocOther
		return StageExtractGeneral
	case StageExtractHearing, StageExtractContract, StageExtractPreservation, StageExtractTranscript:
		applyExtraction(state, model.ExtractionResult{})
		return StageExtractGeneral
	case StageExtractVoice, StageExtractGeneral:
		applyExtraction(state, model.ExtractionResult{})
		return StageAggregate
	case StageAggregate:
		if state.ProposedTasks == nil {
			state.ProposedTasks = []model.ProposedTask{}
		}
		return StageDone
	default:
		return StageDone
	}
}

// applyExtraction writes an extractor's result into state: the
// validation flag is overwritten (no accumulation) and the event list is
// replaced wholesale.
func applyExtraction(state *model.WorkflowState, res model.ExtractionResult) {
	vp := res.ValidationPassed
	state.ValidationPassed = &vp
	state.ExtractedEvents = res.Events
}

// buildDocumentPrompt assembles the user prompt shared by the classifier
// specialists: reference clock, resolved parties, then the raw text.
func (p *Pipeline) buildDocumentPrompt(state *model.WorkflowState) string {
	var b strings.Builder
	b.WriteString(formatTimeContext(state.Now))
	b.WriteString("\n\n")
	if parties := formatPartiesContext(state.IdentifiedParties); parties != "" {
		b.WriteString(parties)
		b.WriteString("\n")
	}
	b.WriteString("Document text:\n\n")
	b.WriteString(state.RawText)
	return b.String()
}

// buildVoicePrompt assembles the user prompt for the voice extractor,
// which sees the roster instead of resolved parties.
func (p *Pipeline) buildVoicePrompt(state *model.WorkflowState) string {
	var b strings.Builder
	b.WriteString(formatTimeContext(state.Now))
	b.WriteString("\n\n")
	if len(state.KnownClients) > 0 {
		b.WriteString("--- Client Roster ---\n")
		for _, kc := range state.KnownClients {
			fmt.Fprintf(&b, "- %s\n", kc.Name)
		}
		b.WriteString("\n")
	}
	b.WriteString("Voice memo transcript:\n\n")
	b.WriteString(state.RawText)
	return b.String()
}
