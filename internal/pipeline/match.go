package pipeline

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/width"

	"github.com/lexintake/intake-cli/internal/model"
)

// entitySuffixes strips legal-entity designators so "Acme Co., Ltd." and
// "Acme" compare equal. Covers common English forms and their Chinese
// counterparts, which appear in OCR output of bilingual contracts.
var entitySuffixes = regexp.MustCompile(
	`(?i)\s*,?\s*(LLC|L\.?L\.?C\.?|INC\.?|INCORPORATED|CORP\.?|CORPORATION|` +
		`CO\.?|COMPANY|LTD\.?|LIMITED|L\.?P\.?|LLP|L\.?L\.?P\.?|` +
		`有限责任公司|股份有限公司|有限公司|事务所|公司)\s*\.?\s*$`)

var multiSpace = regexp.MustCompile(`\s{2,}`)

var nameFolder = cases.Fold()

// normalizeName prepares a party or client name for comparison:
// full-width characters folded to half-width, case folded, entity
// suffixes stripped, whitespace collapsed.
func normalizeName(name string) string {
	n := width.Fold.String(strings.TrimSpace(name))
	n = nameFolder.String(n)
	// Stacked designators ("Co., Ltd.") strip one per pass.
	for {
		stripped := entitySuffixes.ReplaceAllString(n, "")
		if stripped == n {
			break
		}
		n = stripped
	}
	n = multiSpace.ReplaceAllString(n, " ")
	return strings.TrimSpace(n)
}

// nameSimilarity scores two names in [0,1]. Exact normalized equality is
// 1.0 and substring containment either direction 0.9; otherwise the best
// of Jaccard word overlap (spaced names) and rune-bigram Dice overlap
// (CJK names carry no spaces).
func nameSimilarity(a, b string) float64 {
	na, nb := normalizeName(a), normalizeName(b)
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 1.0
	}
	if strings.Contains(na, nb) || strings.Contains(nb, na) {
		return 0.9
	}

	score := jaccardWords(na, nb)
	if d := diceBigrams(na, nb); d > score {
		score = d
	}
	return score
}

// matchRoster finds the best-scoring roster entry for a name. The second
// return is the similarity score; ok is false when nothing clears the
// threshold.
func matchRoster(name string, roster []model.KnownClient, threshold float64) (model.KnownClient, float64, bool) {
	var best model.KnownClient
	bestScore := 0.0
	for _, kc := range roster {
		if s := nameSimilarity(name, kc.Name); s > bestScore {
			bestScore = s
			best = kc
		}
	}
	if bestScore < threshold {
		return model.KnownClient{}, 0, false
	}
	return best, bestScore, true
}

// jaccardWords computes Jaccard similarity on word sets.
func jaccardWords(a, b string) float64 {
	wordsA := wordSet(a)
	wordsB := wordSet(b)
	if len(wordsA) == 0 || len(wordsB) == 0 {
		return 0
	}

	intersection := 0
	for w := range wordsA {
		if wordsB[w] {
			intersection++
		}
	}

	union := len(wordsA)
	for w := range wordsB {
		if !wordsA[w] {
			union++
		}
	}
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func wordSet(s string) map[string]bool {
	words := strings.Fields(s)
	set := make(map[string]bool, len(words))
	for _, w := range words {
		w = strings.Trim(w, ".,;:!?()[]{}\"'")
		if w != "" {
			set[w] = true
		}
	}
	return set
}

// diceBigrams computes the Dice coefficient over rune bigrams, which
// handles unspaced CJK names.
func diceBigrams(a, b string) float64 {
	bigramsA := bigramSet(a)
	bigramsB := bigramSet(b)
	if len(bigramsA) == 0 || len(bigramsB) == 0 {
		return 0
	}

	intersection := 0
	for g := range bigramsA {
		if bigramsB[g] {
			intersection++
		}
	}
	return 2 * float64(intersection) / float64(len(bigramsA)+len(bigramsB))
}

func bigramSet(s string) map[string]bool {
	runes := []rune(strings.ReplaceAll(s, " ", ""))
	set := make(map[string]bool)
	for i := 0; i+1 < len(runes); i++ {
		set[string(runes[i:i+2])] = true
	}
	return set
}
