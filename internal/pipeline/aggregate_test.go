package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/lexintake/intake-cli/internal/model"
)

var aggNow = time.Date(2026, 3, 1, 10, 0, 0, 0, tzUTC8)

func TestAggregate_OneToOneAndOrderPreserving(t *testing.T) {
	events := []model.Event{
		{Type: model.EventCourtHearing, RawTitle: "First hearing", RawDateTime: "2026-09-15T09:30:00+08:00"},
		{Type: model.EventGeneralTask, RawTitle: "Second task"},
		{Type: model.EventContractRenewal, RawTitle: "Third renewal", RawDateTime: "2026-12-01"},
	}

	tasks := Aggregate(events, nil, nil, aggNow, 0.6)

	assert.Len(t, tasks, 3)
	assert.Equal(t, "First hearing", tasks[0].Title)
	assert.Equal(t, "Second task", tasks[1].Title)
	assert.Equal(t, "Third renewal", tasks[2].Title)
}

func TestAggregate_Defaults(t *testing.T) {
	events := []model.Event{
		{Type: model.EventGeneralTask, Note: "call the clerk back"},
	}

	tasks := Aggregate(events, nil, nil, aggNow, 0.6)

	assert.Len(t, tasks, 1)
	assert.Equal(t, model.DefaultTaskTitle, tasks[0].Title)
	assert.Equal(t, model.UnscheduledTime, tasks[0].EventTime)
	assert.Equal(t, "", tasks[0].Location)
	assert.Equal(t, "call the clerk back", tasks[0].Note)
	assert.Equal(t, model.ResolutionOtherParty, tasks[0].ClientResolution.Status)
}

func TestAggregate_SkipsMalformedEvent(t *testing.T) {
	events := []model.Event{
		{Type: model.EventGeneralTask}, // nothing usable at all
		{Type: model.EventGeneralTask, RawTitle: "Keep me"},
	}

	tasks := Aggregate(events, nil, nil, aggNow, 0.6)

	assert.Len(t, tasks, 1)
	assert.Equal(t, "Keep me", tasks[0].Title)
}

func TestAggregate_PassesThroughPartyResolution(t *testing.T) {
	id := int64(102)
	parties := []model.Party{
		{Name: "Acme Co., Ltd.", Role: "defendant", Resolution: model.ClientResolution{
			Status: model.ResolutionMatchFound, ClientID: &id, ClientName: "Acme Co., Ltd.", Confidence: 1.0,
		}},
		{Name: "Beta Ltd", Role: "plaintiff", Resolution: model.ClientResolution{
			Status: model.ResolutionOtherParty, Confidence: 0.5,
		}},
	}
	events := []model.Event{
		{Type: model.EventCourtHearing, RawTitle: "Hearing", RelatedPartyName: "Acme"},
		{Type: model.EventCourtHearing, RawTitle: "Response brief", RelatedPartyName: "Beta Ltd"},
	}

	tasks := Aggregate(events, parties, nil, aggNow, 0.6)

	assert.Len(t, tasks, 2)
	assert.Equal(t, model.ResolutionMatchFound, tasks[0].ClientResolution.Status)
	assert.Equal(t, &id, tasks[0].ClientResolution.ClientID)
	assert.Equal(t, model.ResolutionOtherParty, tasks[1].ClientResolution.Status)
}

func TestAggregate_DirectRosterMatchWithoutParties(t *testing.T) {
	// The voice path never runs the party resolver, so the aggregator
	// matches the roster directly.
	id := int64(7)
	roster := []model.KnownClient{{ID: &id, Name: "Acme Co., Ltd."}}
	events := []model.Event{
		{Type: model.EventGeneralTask, RawTitle: "File response", RelatedPartyName: "Acme"},
	}

	tasks := Aggregate(events, nil, roster, aggNow, 0.6)

	assert.Len(t, tasks, 1)
	assert.Equal(t, model.ResolutionMatchFound, tasks[0].ClientResolution.Status)
	assert.Equal(t, &id, tasks[0].ClientResolution.ClientID)
	assert.Equal(t, "Acme Co., Ltd.", tasks[0].ClientResolution.ClientName)
}

func TestAggregate_NeverInventsNewClient(t *testing.T) {
	events := []model.Event{
		{Type: model.EventGeneralTask, RawTitle: "Call back", RelatedPartyName: "Someone Unknown"},
		{Type: model.EventGeneralTask, RawTitle: "No party at all"},
	}

	tasks := Aggregate(events, nil, nil, aggNow, 0.6)

	assert.Len(t, tasks, 2)
	for _, task := range tasks {
		assert.Equal(t, model.ResolutionOtherParty, task.ClientResolution.Status)
		assert.Nil(t, task.ClientResolution.ClientID)
	}
}

func TestAggregate_ResolvesTimes(t *testing.T) {
	events := []model.Event{
		{Type: model.EventCourtHearing, RawTitle: "Hearing", RawDateTime: "2026-09-15T01:30:00Z"},
		{Type: model.EventGeneralTask, RawTitle: "Soon", RawDateTime: "tomorrow at 3pm"},
		{Type: model.EventGeneralTask, RawTitle: "Sometime", RawDateTime: "when convenient maybe"},
	}

	tasks := Aggregate(events, nil, nil, aggNow, 0.6)

	assert.Len(t, tasks, 3)
	assert.Equal(t, "2026-09-15T09:30:00+08:00", tasks[0].EventTime)
	assert.Equal(t, "2026-03-02T15:00:00+08:00", tasks[1].EventTime)
	assert.Equal(t, model.UnscheduledTime, tasks[2].EventTime)
}

func TestAggregate_EmptyInput(t *testing.T) {
	tasks := Aggregate(nil, nil, nil, aggNow, 0.6)
	assert.NotNil(t, tasks)
	assert.Empty(t, tasks)
}
