package retriever

import "strings"

// minFuzzyWordLen gates the loosest tier: substring matches between short
// words are noise.
const minFuzzyWordLen = 3

// TitleMatchScore rates how well a free-form query matches a page title,
// robust to acronym punctuation and machine-name styling ("stfr" matches
// "S.T.F.R."). It is used as the boost added to vector similarity, never
// for index lookups.
//
// Tiers: 1.0 exact normalized match, 0.8 full containment either way,
// 0.5 to 0.8 word overlap scaled by coverage, 0.4 fuzzy word-substring
// match, 0.0 otherwise.
func TitleMatchScore(query, title string) float64 {
	queryNorm := normalizeScore(query)
	titleNorm := normalizeScore(title)

	if queryNorm == "" || titleNorm == "" {
		return 0.0
	}
	if queryNorm == titleNorm {
		return 1.0
	}
	if strings.Contains(titleNorm, queryNorm) || strings.Contains(queryNorm, titleNorm) {
		return 0.8
	}

	queryWords := wordSet(query, 2)
	titleWords := wordSet(title, 1)

	matches := 0
	for w := range queryWords {
		if titleWords[w] {
			matches++
		}
	}
	if matches > 0 {
		denom := len(queryWords)
		if denom < 1 {
			denom = 1
		}
		return 0.5 + 0.3*float64(matches)/float64(denom)
	}

	for qw := range queryWords {
		if len(qw) < minFuzzyWordLen {
			continue
		}
		for tw := range titleWords {
			if strings.Contains(tw, qw) || strings.Contains(qw, tw) {
				return 0.4
			}
		}
	}

	return 0.0
}

// normalizeScore lowercases and strips whitespace, hyphens, underscores and
// common punctuation. Stricter than the title-index key normalizer: quotes
// and clause punctuation are removed too.
func normalizeScore(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		switch r {
		case '.', ' ', '\t', '\n', '\r', '-', '_', '\'', '"', ':', ';', ',', '!', '?', '(', ')':
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// wordSet splits s on whitespace and returns the normalized forms of words
// whose raw length exceeds minRawLen.
func wordSet(s string, minRawLen int) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(s) {
		if len(w) <= minRawLen {
			continue
		}
		if n := normalizeScore(w); n != "" {
			set[n] = true
		}
	}
	return set
}
