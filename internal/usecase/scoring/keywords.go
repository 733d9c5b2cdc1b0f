package scoring

import (
	"strings"
	"unicode"
)

// stemSuffixes are stripped longest-first; one suffix per word.
var stemSuffixes = []string{
	"ations", "ation", "ments", "ment", "ings", "ing", "ers", "ies", "er", "es", "ed", "s",
}

// stem reduces an English word to a crude root so that "testing", "tests"
// and "tested" compare equal. Words shorter than four letters are kept.
func stem(w string) string {
	for _, suf := range stemSuffixes {
		if strings.HasSuffix(w, suf) && len(w)-len(suf) >= 3 {
			if suf == "ies" {
				return w[:len(w)-3] + "y"
			}
			w = w[:len(w)-len(suf)]
			break
		}
	}
	if len(w) > 3 && strings.HasSuffix(w, "e") {
		w = w[:len(w)-1]
	}
	return w
}

// tokens splits lowercased text into words, keeping + # . so that
// "c++", "c#" and "node.js" survive.
func tokens(text string) []string {
	var out []string
	var word strings.Builder
	flush := func() {
		w := strings.TrimRight(word.String(), ".")
		word.Reset()
		if w != "" {
			out = append(out, w)
		}
	}
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '+' || r == '#' || r == '.' {
			word.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()
	return out
}

// keywordCoverage returns the percentage of keywords found in haystack and the
// keywords that matched. A keyword matches when it is a case-insensitive
// substring of a haystack entry, or when every word of it shares a stem with
// some haystack word. No keywords yields 0.
func keywordCoverage(keywords, haystack []string) (float64, []string) {
	if len(keywords) == 0 {
		return 0, nil
	}

	lowered := make([]string, 0, len(haystack))
	stems := make(map[string]bool)
	for _, h := range haystack {
		h = strings.ToLower(strings.TrimSpace(h))
		if h == "" {
			continue
		}
		lowered = append(lowered, h)
		for _, tok := range tokens(h) {
			stems[stem(tok)] = true
		}
	}

	var matched []string
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		if containsAny(lowered, kw) || allStemsPresent(kw, stems) {
			matched = append(matched, kw)
		}
	}
	return 100 * float64(len(matched)) / float64(len(keywords)), matched
}

func containsAny(haystack []string, needle string) bool {
	for _, h := range haystack {
		if strings.Contains(h, needle) {
			return true
		}
	}
	return false
}

func allStemsPresent(kw string, stems map[string]bool) bool {
	words := tokens(kw)
	if len(words) == 0 {
		return false
	}
	for _, w := range words {
		if !stems[stem(w)] {
			return false
		}
	}
	return true
}
