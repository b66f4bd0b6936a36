package asr

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexintake/intake-cli/internal/config"
	"github.com/lexintake/intake-cli/internal/model"
)

type fakeTranscriber struct {
	texts     map[string]string
	lastVocab []string
}

func (f *fakeTranscriber) Transcribe(_ context.Context, audioURL string, vocabulary []string) (string, error) {
	f.lastVocab = vocabulary
	text, ok := f.texts[audioURL]
	if !ok {
		return "", errors.New("audio format unsupported")
	}
	return text, nil
}

func TestGateway_ProduceText_SkipsFailedFiles(t *testing.T) {
	fake := &fakeTranscriber{texts: map[string]string{
		"a.mp3": "memo one",
		"c.mp3": "memo three",
	}}
	g := NewGateway(fake, 2)

	got := g.ProduceText(context.Background(), []string{"a.mp3", "b.mp3", "c.mp3"}, nil)
	assert.Equal(t, "memo one\n\nmemo three", got)
}

func TestGateway_ProduceText_PassesVocabulary(t *testing.T) {
	fake := &fakeTranscriber{texts: map[string]string{"a.mp3": "memo"}}
	g := NewGateway(fake, 1)

	vocab := []string{"Acme Co., Ltd.", "asset preservation"}
	got := g.ProduceText(context.Background(), []string{"a.mp3"}, vocab)

	assert.Equal(t, "memo", got)
	assert.Equal(t, vocab, fake.lastVocab)
}

func TestGateway_ProduceText_EmptyBatch(t *testing.T) {
	g := NewGateway(&fakeTranscriber{}, 2)
	assert.Equal(t, "", g.ProduceText(context.Background(), nil, nil))
}

func TestBuildVocabulary(t *testing.T) {
	id := int64(1)
	clients := []model.KnownClient{
		{ID: &id, Name: "Acme Co., Ltd."},
		{Name: "  "},
		{Name: "Acme Co., Ltd."}, // duplicate
		{Name: "Beta Ltd"},
	}
	terms := []string{"asset preservation", "Beta Ltd", "litigation hold"}

	vocab := BuildVocabulary(clients, terms)

	assert.Equal(t, []string{
		"Acme Co., Ltd.",
		"Beta Ltd",
		"asset preservation",
		"litigation hold",
	}, vocab)
}

func TestNewSpeechClient_RequiresKey(t *testing.T) {
	_, err := NewSpeechClient(config.ASRConfig{})
	assert.Error(t, err)

	c, err := NewSpeechClient(config.ASRConfig{Key: "k", BaseURL: "https://api.speechflow.io/asr/v1"})
	require.NoError(t, err)
	assert.NotNil(t, c)
}
