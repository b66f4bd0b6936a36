package pipeline

import (
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// tzUTC8 is the output zone for every event timestamp. Extractors are
// prompted to emit +08:00; this anchors local parsing the same way.
var tzUTC8 = time.FixedZone("UTC+8", 8*60*60)

// absoluteLayouts are tried in order before natural-language parsing.
var absoluteLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006/01/02 15:04",
	"2006-01-02",
	"2006/01/02",
}

// nlParser resolves relative expressions the extractors let through
// ("tomorrow 3pm", "next friday"). Built once; Parse only reads rules.
var nlParser = newNLParser()

func newNLParser() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}

// resolveEventTime normalizes a raw extractor timestamp to RFC3339 in
// UTC+8. Absolute layouts are tried first, then natural-language parsing
// anchored at now. Returns ok=false when nothing parses; the aggregator
// then falls back to the unscheduled sentinel rather than guessing.
func resolveEventTime(raw string, now time.Time) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}

	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.In(tzUTC8).Format(time.RFC3339), true
	}
	for _, layout := range absoluteLayouts[1:] {
		if t, err := time.ParseInLocation(layout, raw, tzUTC8); err == nil {
			return t.Format(time.RFC3339), true
		}
	}

	if r, err := nlParser.Parse(raw, now); err == nil && r != nil {
		return r.Time.In(tzUTC8).Format(time.RFC3339), true
	}

	return "", false
}
