package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lexintake/intake-cli/internal/model"
)

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Acme Co., Ltd.", "acme"},
		{"ACME LLC", "acme"},
		{"  Acme   Corporation ", "acme"},
		{"北京星辰科技有限公司", "北京星辰科技"},
		{"华泰律师事务所", "华泰律师"},
		// Fullwidth forms fold to their ASCII counterparts.
		{"Ａｃｍｅ　Ｃｏ", "acme"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeName(tt.in), "input %q", tt.in)
	}
}

func TestNameSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, nameSimilarity("Acme Co., Ltd.", "ACME"))
	assert.Equal(t, 0.9, nameSimilarity("Acme Holdings", "Acme Holdings International"))
	assert.Equal(t, 0.0, nameSimilarity("", "Acme"))

	// Word overlap scores partial matches.
	s := nameSimilarity("Beta Industrial Group", "Beta Industrial Partners")
	assert.Greater(t, s, 0.4)
	assert.Less(t, s, 0.9)

	// Unspaced CJK names fall back to bigram overlap.
	s = nameSimilarity("星辰科技", "北京星辰科技发展")
	assert.Greater(t, s, 0.5)
}

func TestMatchRoster(t *testing.T) {
	id1, id2 := int64(1), int64(2)
	roster := []model.KnownClient{
		{ID: &id1, Name: "Acme Co., Ltd."},
		{ID: &id2, Name: "北京星辰科技有限公司"},
	}

	kc, score, ok := matchRoster("ACME", roster, 0.6)
	assert.True(t, ok)
	assert.Equal(t, &id1, kc.ID)
	assert.Equal(t, 1.0, score)

	kc, _, ok = matchRoster("星辰科技", roster, 0.6)
	assert.True(t, ok)
	assert.Equal(t, &id2, kc.ID)

	_, _, ok = matchRoster("Zenith Partners", roster, 0.6)
	assert.False(t, ok)

	_, _, ok = matchRoster("Acme", nil, 0.6)
	assert.False(t, ok)
}
