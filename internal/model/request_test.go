package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIntakeRequestValidate(t *testing.T) {
	valid := IntakeRequest{
		SourceType:     "ocr",
		SourceFileURLs: []string{"https://files.example/a.png"},
		ClientList:     []KnownClient{{Name: "Acme Co., Ltd."}},
	}
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(r *IntakeRequest)
	}{
		{"unknown source type", func(r *IntakeRequest) { r.SourceType = "pdf" }},
		{"empty source type", func(r *IntakeRequest) { r.SourceType = "" }},
		{"no file urls", func(r *IntakeRequest) { r.SourceFileURLs = nil }},
		{"blank file url", func(r *IntakeRequest) { r.SourceFileURLs = []string{"a.png", "  "} }},
		{"client missing name", func(r *IntakeRequest) { r.ClientList = []KnownClient{{Name: " "}} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)
			assert.Error(t, req.Validate())
		})
	}

	// The roster is optional.
	noRoster := valid
	noRoster.ClientList = nil
	assert.NoError(t, noRoster.Validate())

	audio := valid
	audio.SourceType = "asr"
	assert.NoError(t, audio.Validate())
}
