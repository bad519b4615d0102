package extract

import (
	"regexp"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// DateFilter is one recognized date expression: the raw span from the
// query plus its resolved timestamp.
type DateFilter struct {
	Raw    string `json:"raw"`
	Parsed string `json:"parsed"`
}

// Filters are the suggested report filters pulled out of a query.
type Filters struct {
	Dates     []DateFilter `json:"dates"`
	Locations []string     `json:"locations"`
}

// Spans this short are noise words misread as dates ("to", "me").
const minDateSpan = 3

var periodPattern = regexp.MustCompile(`(?i)\b(last|past|this|next)\s+(day|week|month|quarter|year)\b`)

// FilterExtractor recognizes date expressions and known location tokens.
// Stateless beyond its vocabulary; a pure function of (query, now).
type FilterExtractor struct {
	parser    *when.Parser
	locations []string
}

func NewFilterExtractor(locations []string) *FilterExtractor {
	parser := when.New(nil)
	parser.Add(en.All...)
	parser.Add(common.All...)

	return &FilterExtractor{parser: parser, locations: locations}
}

func (e *FilterExtractor) Extract(query string, now time.Time) Filters {
	filters := Filters{Dates: []DateFilter{}, Locations: []string{}}
	seen := map[string]bool{}

	rest := query
	for range [8]struct{}{} {
		result, err := e.parser.Parse(rest, now)
		if err != nil || result == nil {
			break
		}

		raw := strings.TrimSpace(result.Text)
		if len(raw) > minDateSpan && !seen[strings.ToLower(raw)] {
			seen[strings.ToLower(raw)] = true
			filters.Dates = append(filters.Dates, DateFilter{
				Raw:    raw,
				Parsed: result.Time.Format(time.RFC3339),
			})
		}

		next := result.Index + len(result.Text)
		if next >= len(rest) {
			break
		}
		rest = rest[next:]
	}

	// Relative periods like "last week" that the rule set does not cover.
	for _, m := range periodPattern.FindAllStringSubmatch(query, -1) {
		raw := strings.TrimSpace(m[0])
		if len(raw) <= minDateSpan || seen[strings.ToLower(raw)] {
			continue
		}
		seen[strings.ToLower(raw)] = true
		filters.Dates = append(filters.Dates, DateFilter{
			Raw:    raw,
			Parsed: resolvePeriod(strings.ToLower(m[1]), strings.ToLower(m[2]), now).Format(time.RFC3339),
		})
	}

	lowerQuery := strings.ToLower(query)
	for _, keyword := range e.locations {
		if strings.Contains(lowerQuery, strings.ToLower(keyword)) {
			filters.Locations = append(filters.Locations, keyword)
		}
	}

	return filters
}

func resolvePeriod(direction, unit string, now time.Time) time.Time {
	sign := 0
	switch direction {
	case "last", "past":
		sign = -1
	case "next":
		sign = 1
	}

	switch unit {
	case "day":
		return now.AddDate(0, 0, sign)
	case "week":
		return now.AddDate(0, 0, 7*sign)
	case "month":
		return now.AddDate(0, sign, 0)
	case "quarter":
		return now.AddDate(0, 3*sign, 0)
	case "year":
		return now.AddDate(sign, 0, 0)
	}
	return now
}
