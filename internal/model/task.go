package model

// ResolutionStatus is the three-way classification of a named party
// against the known-client roster.
type ResolutionStatus string

const (
	ResolutionMatchFound        ResolutionStatus = "MATCH_FOUND"
	ResolutionNewClientProposed ResolutionStatus = "NEW_CLIENT_PROPOSED"
	ResolutionOtherParty        ResolutionStatus = "OTHER_PARTY"
)

// ClientResolution links a party name to the roster. ClientID is non-nil
// only when Status is MATCH_FOUND.
type ClientResolution struct {
	Status     ResolutionStatus `json:"status"`
	ClientID   *int64           `json:"client_id,omitempty"`
	ClientName string           `json:"client_name,omitempty"`
	Confidence float64          `json:"confidence"`

	// Assumed marks a default-rule resolution (single unmatched party
	// presumed to be the client) so the UI can flag it for review.
	Assumed bool `json:"assumed,omitempty"`
}

// Party is one entity identified in document text, with its roster
// resolution attached. Structured end-to-end; never re-serialized
// between stages.
type Party struct {
	Name       string           `json:"name"`
	Role       string           `json:"role"`
	Resolution ClientResolution `json:"client_resolution"`
}

// ProposedTask is the terminal output unit. Location and Note are always
// present as strings (empty when absent), unlike the internal Event
// record where absence is allowed.
type ProposedTask struct {
	Title            string           `json:"title"`
	EventTime        string           `json:"event_time"`
	Location         string           `json:"location"`
	Note             string           `json:"note"`
	ClientResolution ClientResolution `json:"client_resolution"`
}

// Sentinel defaults applied by the aggregator for missing event fields.
const (
	// DefaultTaskTitle replaces a missing raw_title.
	DefaultTaskTitle = "Untitled task"
	// UnscheduledTime marks a task whose time could not be resolved.
	// An explicit marker, never a fabricated date.
	UnscheduledTime = "unscheduled"
)
