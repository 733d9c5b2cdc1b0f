package scoring

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	yearsRe  = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*\+?\s*(?:years?|yrs?)\b`)
	monthsRe = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:months?|mos?)\b`)
)

// rangeSeps are tried in order; each occurrence is tried as the split point
// so that "2019-01 - 2021-06" and "2019-2021" both parse.
var rangeSeps = []string{" to ", " until ", "–", "—", "-"}

var dateLayouts = []string{
	"Jan 2006",
	"January 2006",
	"Jan. 2006",
	"01/2006",
	"1/2006",
	"2006-01",
	"2006/01",
	"2006",
}

var openEnded = map[string]bool{
	"present": true, "current": true, "now": true, "today": true, "ongoing": true, "date": true,
}

// parseYears converts a free-text duration into years.
// Accepted: "3 years", "18 months", "1 year 6 months", and date ranges such as
// "Jan 2019 - Present" or "2018 to 2021". Anything else yields 0.
func parseYears(s string, now time.Time) float64 {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 0
	}

	if from, to, ok := parseRange(s, now); ok {
		months := (to.Year()-from.Year())*12 + int(to.Month()-from.Month())
		if months <= 0 {
			return 0
		}
		return float64(months) / 12
	}

	var years float64
	for _, m := range yearsRe.FindAllStringSubmatch(s, -1) {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			years += v
		}
	}
	for _, m := range monthsRe.FindAllStringSubmatch(s, -1) {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			years += v / 12
		}
	}
	return years
}

func parseRange(s string, now time.Time) (time.Time, time.Time, bool) {
	for _, sep := range rangeSeps {
		for off := 0; off < len(s); {
			i := strings.Index(s[off:], sep)
			if i < 0 {
				break
			}
			i += off
			from, okFrom := parseDate(s[:i], now)
			to, okTo := parseDate(s[i+len(sep):], now)
			if okFrom && okTo {
				return from, to, true
			}
			off = i + len(sep)
		}
	}
	return time.Time{}, time.Time{}, false
}

func parseDate(s string, now time.Time) (time.Time, bool) {
	s = strings.Trim(strings.TrimSpace(s), ".,;()")
	if s == "" {
		return time.Time{}, false
	}
	if openEnded[s] {
		return now, true
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
