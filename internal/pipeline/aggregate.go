package pipeline

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/lexintake/intake-cli/internal/model"
)

// Aggregate is the single convergence point of every path: it normalizes
// heterogeneous extracted events into ProposedTasks, one-to-one and
// order-preserving. Pure — no inference calls.
//
// Party resolution here is pass-through: an event's related_party_name is
// matched against the already-resolved parties (name equality or
// containment either direction), and failing that directly against the
// roster. Unlike the party resolver, the aggregator never invents a
// NEW_CLIENT_PROPOSED — no match means OTHER_PARTY with nil id.
//
// A malformed event (no title, time, location, or note at all) is logged
// and skipped; it never aborts the batch.
func Aggregate(events []model.Event, parties []model.Party, roster []model.KnownClient, now time.Time, threshold float64) []model.ProposedTask {
	tasks := make([]model.ProposedTask, 0, len(events))

	for i, ev := range events {
		if isMalformed(ev) {
			zap.L().Warn("aggregate: skipping malformed event",
				zap.Int("index", i),
				zap.String("event_type", string(ev.Type)),
			)
			continue
		}

		title := strings.TrimSpace(ev.RawTitle)
		if title == "" {
			title = model.DefaultTaskTitle
		}

		eventTime := model.UnscheduledTime
		if resolved, ok := resolveEventTime(ev.RawDateTime, now); ok {
			eventTime = resolved
		}

		tasks = append(tasks, model.ProposedTask{
			Title:            title,
			EventTime:        eventTime,
			Location:         strings.TrimSpace(ev.RawLocation),
			Note:             strings.TrimSpace(ev.Note),
			ClientResolution: resolveTaskClient(ev.RelatedPartyName, parties, roster, threshold),
		})
	}

	return tasks
}

// isMalformed reports an event with no usable content at all. A missing
// title alone is not malformed — it gets the sentinel default.
func isMalformed(ev model.Event) bool {
	return strings.TrimSpace(ev.RawTitle) == "" &&
		strings.TrimSpace(ev.RawDateTime) == "" &&
		strings.TrimSpace(ev.RawLocation) == "" &&
		strings.TrimSpace(ev.Note) == ""
}

// resolveTaskClient attaches a client resolution to one task.
func resolveTaskClient(partyName string, parties []model.Party, roster []model.KnownClient, threshold float64) model.ClientResolution {
	otherParty := model.ClientResolution{Status: model.ResolutionOtherParty}

	partyName = strings.TrimSpace(partyName)
	if partyName == "" {
		return otherParty
	}

	// Pass through the resolution of a matching identified party.
	normalized := normalizeName(partyName)
	for _, pt := range parties {
		pn := normalizeName(pt.Name)
		if pn == "" {
			continue
		}
		if pn == normalized || strings.Contains(pn, normalized) || strings.Contains(normalized, pn) {
			return pt.Resolution
		}
	}

	// No identified parties (the ASR path never runs the resolver):
	// match the roster directly.
	if kc, score, ok := matchRoster(partyName, roster, threshold); ok {
		return model.ClientResolution{
			Status:     model.ResolutionMatchFound,
			ClientID:   kc.ID,
			ClientName: kc.Name,
			Confidence: score,
		}
	}

	return otherParty
}
