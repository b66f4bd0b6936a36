package model

// DocumentType is the closed classification set for scanned documents.
// Unrecognized values route to the general extractor rather than erroring.
type DocumentType string

const (
	DocCourtHearing      DocumentType = "court_hearing"
	DocContract          DocumentType = "contract"
	DocAssetPreservation DocumentType = "asset_preservation"
	DocCourtTranscript   DocumentType = "court_transcript"
	DocOther             DocumentType = "other"
)

// AllDocumentTypes returns every valid classification category.
func AllDocumentTypes() []DocumentType {
	return []DocumentType{
		DocCourtHearing,
		DocContract,
		DocAssetPreservation,
		DocCourtTranscript,
		DocOther,
	}
}

// EventType tags the variant of an extracted event.
type EventType string

const (
	EventCourtHearing      EventType = "court_hearing"
	EventContractRenewal   EventType = "contract_renewal"
	EventAssetPreservation EventType = "asset_preservation"
	EventPostHearingTask   EventType = "post_hearing_task"
	EventGeneralTask       EventType = "general_task"
)

// Event is one normalized record produced by an extractor stage. String
// fields use "" for absent values; the aggregator applies output defaults.
type Event struct {
	Type EventType `json:"event_type"`

	// RawTitle may be empty; the aggregator substitutes the default
	// title sentinel.
	RawTitle string `json:"raw_title"`

	// RawDateTime is an ISO-8601 timestamp with an explicit UTC+8
	// offset, a natural-language expression the aggregator can still
	// resolve, or empty.
	RawDateTime string `json:"raw_date_time,omitempty"`

	RawLocation string `json:"raw_location,omitempty"`

	// RelatedPartyName is a free-text name, not yet resolved to a
	// client id.
	RelatedPartyName string `json:"related_party_name,omitempty"`

	Note       string  `json:"note,omitempty"`
	Confidence float64 `json:"confidence"`

	// Metadata carries type-specific extras (statutory period applied,
	// hearing cause number, contract term). Not required downstream.
	Metadata map[string]any `json:"metadata,omitempty"`
}

// ExtractionResult is the uniform output contract of every extractor
// stage. Invariant: ValidationPassed == false implies Events is empty.
type ExtractionResult struct {
	ValidationPassed bool    `json:"validation_passed"`
	Events           []Event `json:"events"`
}
