package model

import (
	"strings"

	"github.com/rotisserie/eris"
)

// SourceType selects the extraction branch for a request.
type SourceType string

const (
	// SourceImageBatch routes through OCR, party resolution, and
	// document classification.
	SourceImageBatch SourceType = "ocr"
	// SourceAudioBatch routes through transcription and the unified
	// voice extractor.
	SourceAudioBatch SourceType = "asr"
)

// KnownClient is one entry of the caller-supplied client roster.
type KnownClient struct {
	ID   *int64 `json:"id,omitempty" yaml:"id,omitempty"`
	Name string `json:"client_name" yaml:"client_name"`
}

// IntakeRequest is the request-level input contract. ClientList is
// optional; everything else is validated before the graph runs.
type IntakeRequest struct {
	SourceType     string        `json:"source_type" yaml:"source_type"`
	SourceFileURLs []string      `json:"source_file_urls" yaml:"source_file_urls"`
	ClientList     []KnownClient `json:"client_list,omitempty" yaml:"client_list,omitempty"`
}

// Validate performs pre-flight validation. Errors returned here are the
// only ones surfaced to the caller as failures; everything downstream
// degrades instead of raising.
func (r IntakeRequest) Validate() error {
	switch SourceType(r.SourceType) {
	case SourceImageBatch, SourceAudioBatch:
	default:
		return eris.Errorf("model: source_type must be %q or %q, got %q",
			SourceImageBatch, SourceAudioBatch, r.SourceType)
	}

	if len(r.SourceFileURLs) == 0 {
		return eris.New("model: source_file_urls must be a non-empty list")
	}
	for i, u := range r.SourceFileURLs {
		if strings.TrimSpace(u) == "" {
			return eris.Errorf("model: source_file_urls[%d] is empty", i)
		}
	}

	for i, c := range r.ClientList {
		if strings.TrimSpace(c.Name) == "" {
			return eris.Errorf("model: client_list[%d] is missing client_name", i)
		}
	}

	return nil
}
