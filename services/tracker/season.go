package tracker

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"waterpolo-tracker/lib/timezone"
)

// seasons straddle new year, the label is e.g. "2024-25"
func seasonLabel(startYear int) string {
	return fmt.Sprintf("%d-%02d", startYear, (startYear+1)%100)
}

var yearRangeRe = regexp.MustCompile(`(\d{4})[/-](\d{2,4})`)

// InferSeasonInfo derives the season label and start year from the
// collected match dates. The earliest match decides: July or later
// means the season started that year, before July means it started
// the year before. Falls back to a year range in a tournament name,
// then to the current year.
func InferSeasonInfo(categories []CategoryData) (label string, startYear int) {
	var earliest string
	for _, cat := range categories {
		for _, m := range cat.Matches {
			if m.Date == "" {
				continue
			}
			if _, err := timezone.ParseMatchTime(m.Date); err != nil {
				continue
			}
			if earliest == "" || m.Date < earliest {
				earliest = m.Date
			}
		}
	}
	if earliest != "" {
		t, _ := timezone.ParseMatchTime(earliest)
		startYear = t.Year()
		if int(t.Month()) < 7 {
			startYear--
		}
		return seasonLabel(startYear), startYear
	}

	for _, cat := range categories {
		if m := yearRangeRe.FindStringSubmatch(cat.TournamentName); m != nil {
			year, _ := strconv.Atoi(m[1])
			return seasonLabel(year), year
		}
	}

	year := timezone.Now().Year()
	return seasonLabel(year), year
}

// StartYearFromLabel recovers the start year from a cached season
// label like "2023-24".
func StartYearFromLabel(label string) int {
	if len(label) >= 4 {
		if year, err := strconv.Atoi(label[:4]); err == nil {
			return year
		}
	}
	return timezone.Now().Year()
}

type AgeCategory struct {
	Order int
	Label string
}

// BuildCategoryAges maps Catalan water polo age-category names to
// their sort order and the birth-year span that plays in them for the
// given season. Categories go by birth year, so the labels shift
// every season.
func BuildCategoryAges(startYear int) map[string]AgeCategory {
	y := startYear
	span := func(from int) string {
		return fmt.Sprintf("%d-%02d", from, (from+1)%100)
	}
	return map[string]AgeCategory{
		"BENJAMI":  {1, fmt.Sprintf("9-10 anys (%s)", span(y-10))},
		"ALEVI":    {2, fmt.Sprintf("11-12 anys (%s)", span(y-12))},
		"INFANTIL": {3, fmt.Sprintf("13-14 anys (%s)", span(y-14))},
		"CADET":    {4, fmt.Sprintf("15-16 anys (%s)", span(y-16))},
		"JUVENIL":  {5, fmt.Sprintf("17-18 anys (%s)", span(y-18))},
		"ABSOLUTA": {6, "+18 anys"},
		"MASTER":   {7, "+30 anys"},
	}
}

// categoryNames fixes the lookup order: when a tournament name matches
// more than one category, the youngest wins.
var categoryNames = []string{
	"BENJAMI", "ALEVI", "INFANTIL", "CADET", "JUVENIL", "ABSOLUTA", "MASTER",
}

// CategoryAgeInfo matches a tournament name against the age-category
// table. Unknown categories sort last with no age label.
func CategoryAgeInfo(tournamentName string, ages map[string]AgeCategory) (order int, ageLabel string) {
	upper := strings.ToUpper(tournamentName)
	for _, key := range categoryNames {
		cat, ok := ages[key]
		if !ok {
			continue
		}
		if strings.Contains(upper, key) {
			return cat.Order, cat.Label
		}
	}
	return 99, ""
}
