package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lexintake/intake-cli/internal/model"
	"github.com/lexintake/intake-cli/pkg/anthropic"
	"github.com/lexintake/intake-cli/pkg/anthropic/mocks"
)

// withSystem matches an inference request by its cached system prompt,
// which is how end-to-end tests tell the stages apart.
func withSystem(prompt string) interface{} {
	return mock.MatchedBy(func(req anthropic.MessageRequest) bool {
		return len(req.System) > 0 && req.System[0].Text == prompt
	})
}

func stagesOf(result *model.IntakeResult) []string {
	stages := make([]string, len(result.Stages))
	for i, st := range result.Stages {
		stages[i] = st.Stage
	}
	return stages
}

func newTestPipeline(ai anthropic.Client, ocr ImageTextProducer, asr AudioTextProducer) *Pipeline {
	p := New(testConfig(), ai, ocr, asr)
	p.now = func() time.Time { return time.Date(2026, 3, 1, 10, 0, 0, 0, tzUTC8) }
	return p
}

func TestRun_ImageBatchHappyPath(t *testing.T) {
	ctx := context.Background()

	ocrGateway := &mockImageProducer{}
	ocrGateway.On("ProduceText", mock.Anything, []string{"https://files.example/summons.png"}).
		Return("SUMMONS. Acme Co., Ltd. v. Zenith Partners. Hearing 2026-09-15 09:30, Courtroom 3.").Once()

	aiClient := mocks.NewMockClient(t)
	aiClient.On("CreateMessage", mock.Anything, withSystem(partiesSystemPrompt)).
		Return(textResponse(`{"parties": [
			{"name": "Acme Co., Ltd.", "role": "defendant", "client_signal": false},
			{"name": "Zenith Partners", "role": "plaintiff", "client_signal": false}
		]}`), nil).Once()
	aiClient.On("CreateMessage", mock.Anything, withSystem(classifySystemPrompt)).
		Return(textResponse(`{"document_type": "court_hearing", "confidence": 0.95}`), nil).Once()
	aiClient.On("CreateMessage", mock.Anything, withSystem(hearingSystemPrompt)).
		Return(textResponse(`{"validation_passed": true, "events": [{
			"title": "Hearing: Acme v. Zenith",
			"date_time": "2026-09-15T09:30:00+08:00",
			"location": "Courtroom 3",
			"related_party": "Acme Co., Ltd.",
			"confidence": 0.92
		}]}`), nil).Once()

	clientID := int64(102)
	p := newTestPipeline(aiClient, ocrGateway, nil)

	result, err := p.Run(ctx, model.IntakeRequest{
		SourceType:     "ocr",
		SourceFileURLs: []string{"https://files.example/summons.png"},
		ClientList:     []model.KnownClient{{ID: &clientID, Name: "Acme Co., Ltd."}},
	})

	require.NoError(t, err)
	require.Len(t, result.ProposedTasks, 1)

	task := result.ProposedTasks[0]
	assert.Equal(t, "Hearing: Acme v. Zenith", task.Title)
	assert.Equal(t, "2026-09-15T09:30:00+08:00", task.EventTime)
	assert.Equal(t, "Courtroom 3", task.Location)
	assert.Equal(t, model.ResolutionMatchFound, task.ClientResolution.Status)
	assert.Equal(t, &clientID, task.ClientResolution.ClientID)

	stages := stagesOf(result)
	assert.Equal(t, []string{"extract_text", "resolve_parties", "classify", "extract_hearing", "aggregate"}, stages)
	assert.NotEmpty(t, result.RunID)
	assert.Greater(t, result.TokenUsage.InputTokens, 0)

	// The request's identifying fields come back unchanged.
	assert.Equal(t, "ocr", result.SourceType)
	assert.Equal(t, []string{"https://files.example/summons.png"}, result.SourceFileURLs)
	require.Len(t, result.ClientList, 1)
	assert.Equal(t, "Acme Co., Ltd.", result.ClientList[0].Name)

	ocrGateway.AssertExpectations(t)
}

func TestRun_GateReroutesToGeneralFallback(t *testing.T) {
	ctx := context.Background()

	ocrGateway := &mockImageProducer{}
	ocrGateway.On("ProduceText", mock.Anything, mock.Anything).
		Return("An informal letter mentioning a lease, nothing like a contract template.").Once()

	aiClient := mocks.NewMockClient(t)
	aiClient.On("CreateMessage", mock.Anything, withSystem(partiesSystemPrompt)).
		Return(textResponse(`{"parties": []}`), nil).Once()
	aiClient.On("CreateMessage", mock.Anything, withSystem(classifySystemPrompt)).
		Return(textResponse(`{"document_type": "contract", "confidence": 0.6}`), nil).Once()
	aiClient.On("CreateMessage", mock.Anything, withSystem(contractSystemPrompt)).
		Return(textResponse(`{"validation_passed": false, "events": []}`), nil).Once()
	aiClient.On("CreateMessage", mock.Anything, withSystem(generalSystemPrompt)).
		Return(textResponse(`{"validation_passed": true, "events": [{
			"title": "Review lease terms",
			"confidence": 0.4
		}]}`), nil).Once()

	p := newTestPipeline(aiClient, ocrGateway, nil)

	result, err := p.Run(ctx, model.IntakeRequest{
		SourceType:     "ocr",
		SourceFileURLs: []string{"https://files.example/letter.png"},
	})

	require.NoError(t, err)
	require.Len(t, result.ProposedTasks, 1)
	assert.Equal(t, "Review lease terms", result.ProposedTasks[0].Title)
	assert.Equal(t, model.UnscheduledTime, result.ProposedTasks[0].EventTime)
	assert.Equal(t, model.ResolutionOtherParty, result.ProposedTasks[0].ClientResolution.Status)

	stages := stagesOf(result)
	assert.Contains(t, stages, "extract_general")
	// The fallback converges straight to aggregation; one pass only.
	assert.Equal(t, "aggregate", stages[len(stages)-1])
	assert.Equal(t, 1, countStage(stages, "aggregate"))
	assert.Equal(t, 1, countStage(stages, "extract_general"))
}

func TestRun_PreflightValidationFailsFast(t *testing.T) {
	aiClient := mocks.NewMockClient(t)
	p := newTestPipeline(aiClient, &mockImageProducer{}, &mockAudioProducer{})

	tests := []struct {
		name string
		req  model.IntakeRequest
	}{
		{"bad source type", model.IntakeRequest{SourceType: "fax", SourceFileURLs: []string{"u"}}},
		{"no files", model.IntakeRequest{SourceType: "ocr"}},
		{"blank url", model.IntakeRequest{SourceType: "ocr", SourceFileURLs: []string{" "}}},
		{"nameless client", model.IntakeRequest{
			SourceType:     "asr",
			SourceFileURLs: []string{"https://files.example/memo.mp3"},
			ClientList:     []model.KnownClient{{Name: ""}},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := p.Run(context.Background(), tt.req)
			assert.Error(t, err)
			assert.Nil(t, result)
		})
	}
	aiClient.AssertNotCalled(t, "CreateMessage", mock.Anything, mock.Anything)
}

func TestRun_AudioBatchWithRosterMatch(t *testing.T) {
	ctx := context.Background()

	asrGateway := &mockAudioProducer{}
	asrGateway.On("ProduceText", mock.Anything, []string{"https://files.example/memo.mp3"}, mock.Anything).
		Return("Remind me to file the response for Acme by next Friday, and call the Zenith folks back.").Once()

	aiClient := mocks.NewMockClient(t)
	aiClient.On("CreateMessage", mock.Anything, withSystem(voiceSystemPrompt)).
		Return(textResponse(`{"validation_passed": true, "events": [
			{"event_type": "general_task", "title": "File response", "date_time": "2026-03-06", "related_party": "Acme Co., Ltd.", "confidence": 0.8},
			{"event_type": "general_task", "title": "Call Zenith back", "related_party": "Zenith Partners", "confidence": 0.7}
		]}`), nil).Once()

	clientID := int64(7)
	p := newTestPipeline(aiClient, nil, asrGateway)

	result, err := p.Run(ctx, model.IntakeRequest{
		SourceType:     "asr",
		SourceFileURLs: []string{"https://files.example/memo.mp3"},
		ClientList:     []model.KnownClient{{ID: &clientID, Name: "Acme Co., Ltd."}},
	})

	require.NoError(t, err)
	require.Len(t, result.ProposedTasks, 2)

	// The voice path has no party resolver; the aggregator matches the
	// roster directly.
	assert.Equal(t, model.ResolutionMatchFound, result.ProposedTasks[0].ClientResolution.Status)
	assert.Equal(t, &clientID, result.ProposedTasks[0].ClientResolution.ClientID)
	assert.Equal(t, "2026-03-06T00:00:00+08:00", result.ProposedTasks[0].EventTime)

	assert.Equal(t, model.ResolutionOtherParty, result.ProposedTasks[1].ClientResolution.Status)
	assert.Equal(t, model.UnscheduledTime, result.ProposedTasks[1].EventTime)

	assert.Equal(t, []string{"transcribe", "extract_voice", "aggregate"}, stagesOf(result))
	asrGateway.AssertExpectations(t)
}

func TestRun_EmptyRosterNeverMatches(t *testing.T) {
	ctx := context.Background()

	asrGateway := &mockAudioProducer{}
	asrGateway.On("ProduceText", mock.Anything, mock.Anything, mock.Anything).
		Return("Call the new prospect back tomorrow.").Once()

	aiClient := mocks.NewMockClient(t)
	aiClient.On("CreateMessage", mock.Anything, withSystem(voiceSystemPrompt)).
		Return(textResponse(`{"validation_passed": true, "events": [
			{"title": "Call prospect back", "related_party": "Brand New Client LLC", "confidence": 0.8}
		]}`), nil).Once()

	p := newTestPipeline(aiClient, nil, asrGateway)

	result, err := p.Run(ctx, model.IntakeRequest{
		SourceType:     "asr",
		SourceFileURLs: []string{"https://files.example/memo.mp3"},
	})

	require.NoError(t, err)
	require.Len(t, result.ProposedTasks, 1)
	assert.Equal(t, model.ResolutionOtherParty, result.ProposedTasks[0].ClientResolution.Status)
	assert.Nil(t, result.ProposedTasks[0].ClientResolution.ClientID)
}

// panicImageProducer simulates a gateway bug.
type panicImageProducer struct{}

func (panicImageProducer) ProduceText(context.Context, []string) string {
	panic("gateway bug")
}

func TestRun_StagePanicIsAbsorbed(t *testing.T) {
	// A panicking OCR gateway degrades to blank text; every downstream
	// stage short-circuits without inference and the run still completes
	// with an empty task list.
	aiClient := mocks.NewMockClient(t)
	p := newTestPipeline(aiClient, panicImageProducer{}, nil)

	result, err := p.Run(context.Background(), model.IntakeRequest{
		SourceType:     "ocr",
		SourceFileURLs: []string{"https://files.example/broken.png"},
	})

	require.NoError(t, err)
	assert.Empty(t, result.ProposedTasks)

	stages := stagesOf(result)
	assert.Equal(t, 1, countStage(stages, "aggregate"))
	assert.Equal(t, "recovered", result.Stages[0].Outcome)
	aiClient.AssertNotCalled(t, "CreateMessage", mock.Anything, mock.Anything)
}

func countStage(stages []string, name string) int {
	n := 0
	for _, s := range stages {
		if s == name {
			n++
		}
	}
	return n
}
