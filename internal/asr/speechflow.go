package asr

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"

	"github.com/lexintake/intake-cli/internal/config"
	"github.com/lexintake/intake-cli/internal/resilience"
)

const (
	defaultSpeechModel   = "legal-general"
	defaultSpeechBaseURL = "https://api.speechflow.io/asr/v1"
)

// SpeechClient transcribes audio via a hosted speech-to-text HTTP API.
type SpeechClient struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// NewSpeechClient creates a SpeechClient from config.
func NewSpeechClient(cfg config.ASRConfig) (*SpeechClient, error) {
	if cfg.Key == "" {
		return nil, eris.New("asr: transcription provider requires key")
	}
	model := cfg.Model
	if model == "" {
		model = defaultSpeechModel
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultSpeechBaseURL
	}
	return &SpeechClient{
		apiKey:  cfg.Key,
		model:   model,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 300 * time.Second},
	}, nil
}

type transcribeRequest struct {
	Model      string   `json:"model"`
	AudioURL   string   `json:"audio_url"`
	Vocabulary []string `json:"vocabulary,omitempty"`
}

type transcribeResponse struct {
	Text     string `json:"text"`
	Duration float64 `json:"duration_secs"`
}

// Transcribe sends one audio URL for transcription, biasing recognition
// with the supplied vocabulary terms.
func (s *SpeechClient) Transcribe(ctx context.Context, audioURL string, vocabulary []string) (string, error) {
	reqBody := transcribeRequest{
		Model:      s.model,
		AudioURL:   audioURL,
		Vocabulary: vocabulary,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", eris.Wrap(err, "asr: marshal transcribe request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/transcriptions", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", eris.Wrap(err, "asr: create transcribe request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", eris.Wrap(err, "asr: transcription API call")
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", eris.Wrap(err, "asr: read transcription response")
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := eris.Errorf("asr: transcription API returned %d: %s", resp.StatusCode, string(respBody))
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return "", resilience.NewTransientError(apiErr, resp.StatusCode)
		}
		return "", apiErr
	}

	var tr transcribeResponse
	if err := json.Unmarshal(respBody, &tr); err != nil {
		return "", eris.Wrap(err, "asr: unmarshal transcription response")
	}

	return tr.Text, nil
}
