package textutil

import (
	"regexp"
	"strings"
)

var slugRegex = regexp.MustCompile(`[^a-z0-9]+`)

// Slug collapses text into a lowercase dash-separated identifier
// usable as a URL fragment.
func Slug(text string) string {
	return strings.Trim(slugRegex.ReplaceAllString(strings.ToLower(text), "-"), "-")
}

// federation tournament names are long and repetitive, these rewrites
// shorten them for card labels. order matters: longer patterns first.
var categoryRewrites = []struct{ old, new string }{
	{"MASCULINA DE PROMOCIO", "Promo Masc."},
	{"MASCULINA DE PROMOCIÓ", "Promo Masc."},
	{"MASCULINA", "Masc."},
	{"MASCULI", "Masc."},
	{"MASCULÍ", "Masc."},
	{"FEMENINA", "Fem."},
	{"FEMENI", "Fem."},
	{"FEMENÍ", "Fem."},
	{"MIXTE", "Mixt"},
	{"MIXTA", "Mixt"},
	{"BENJAMINA", "Benjamí"},
	{"MASTER", "Màster"},
}

func ShortCategory(name string) string {
	name = strings.ReplaceAll(name, "LLIGA CATALANA ", "")
	name = strings.ReplaceAll(name, "COMPETICIO CATALANA ", "")
	name = strings.ReplaceAll(name, "COMPETICIÓ CATALANA ", "")
	for _, r := range categoryRewrites {
		name = strings.ReplaceAll(name, r.old, r.new)
	}
	return strings.TrimSpace(name)
}
