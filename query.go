package areacodes

import (
	"context"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/cases"
)

// DefaultSuggestionLimit is used by Suggestions when limit is not positive.
const DefaultSuggestionLimit = 10

// maxFuzzyDistance caps SearchOptions.FuzzyDistance to keep fuzzy scans cheap.
const maxFuzzyDistance = 3

// maxQueryLen is the longest query, in runes, Search will match. Longer
// queries match nothing.
const maxQueryLen = 256

// SearchOptions configures Search behavior.
type SearchOptions struct {
	FuzzyDistance int // Max edit distance for typo tolerance on city/region words (0 = disabled)
}

// Lookup returns every record whose area code equals code exactly.
// Area codes are not unique, so several countries may match.
func (c *Catalog) Lookup(ctx context.Context, code string) ([]AreaCode, error) {
	all, err := c.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return filterByCode(all, code), nil
}

// LookupE164 returns the record whose E.164 prefix equals e164 exactly.
// The prefix is stored without "+", so "+1212" does not match.
// The boolean is false when no record matches.
func (c *Catalog) LookupE164(ctx context.Context, e164 string) (AreaCode, bool, error) {
	all, err := c.snapshot(ctx)
	if err != nil {
		return AreaCode{}, false, err
	}
	ac, ok := findByE164(all, e164)
	return ac, ok, nil
}

// Search returns records whose city, region or notes contain query,
// ignoring case. query is matched as given, surrounding spaces included.
// A blank query returns no records.
func (c *Catalog) Search(ctx context.Context, query string, opts ...SearchOptions) ([]AreaCode, error) {
	all, err := c.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	var o SearchOptions
	if len(opts) > 0 {
		o = opts[0]
	}
	return searchCodes(all, query, o), nil
}

// Suggestions returns up to limit records whose code starts with prefix or
// whose city starts with prefix (ignoring case), in dataset order.
func (c *Catalog) Suggestions(ctx context.Context, prefix string, limit int) ([]AreaCode, error) {
	all, err := c.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return suggest(all, prefix, limit), nil
}

// AvailableCountries returns the distinct country ids in the dataset, sorted.
func (c *Catalog) AvailableCountries(ctx context.Context) ([]string, error) {
	all, err := c.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return distinctCountries(all), nil
}

func filterByCode(codes []AreaCode, code string) []AreaCode {
	out := []AreaCode{}
	for _, ac := range codes {
		if ac.Code == code {
			out = append(out, ac)
		}
	}
	return out
}

func findByE164(codes []AreaCode, e164 string) (AreaCode, bool) {
	if e164 == "" {
		return AreaCode{}, false
	}
	for _, ac := range codes {
		if ac.E164 == e164 {
			return ac, true
		}
	}
	return AreaCode{}, false
}

func searchCodes(codes []AreaCode, query string, opts SearchOptions) []AreaCode {
	if strings.TrimSpace(query) == "" || utf8.RuneCountInString(query) > maxQueryLen {
		return []AreaCode{}
	}
	dist := min(max(opts.FuzzyDistance, 0), maxFuzzyDistance)

	fold := cases.Fold()
	q := fold.String(query)
	var tokens []string
	if dist > 0 {
		for _, t := range strings.Fields(q) {
			if len([]rune(t)) > 2 {
				tokens = append(tokens, t)
			}
		}
	}

	out := []AreaCode{}
	for _, ac := range codes {
		city := fold.String(ac.City)
		region := fold.String(ac.Region)
		if strings.Contains(city, q) || strings.Contains(region, q) || strings.Contains(fold.String(ac.Notes), q) {
			out = append(out, ac)
			continue
		}
		if len(tokens) > 0 && (fuzzyWordMatch(tokens, city, dist) || fuzzyWordMatch(tokens, region, dist)) {
			out = append(out, ac)
		}
	}
	return out
}

// fuzzyWordMatch reports whether any token is within maxDist edits of any
// word of field. Inputs must already be case folded.
func fuzzyWordMatch(tokens []string, field string, maxDist int) bool {
	for _, w := range strings.Fields(field) {
		for _, t := range tokens {
			if levenshtein.ComputeDistance(t, w) <= maxDist {
				return true
			}
		}
	}
	return false
}

func suggest(codes []AreaCode, prefix string, limit int) []AreaCode {
	if prefix == "" {
		return []AreaCode{}
	}
	if limit <= 0 {
		limit = DefaultSuggestionLimit
	}
	fold := cases.Fold()
	p := fold.String(prefix)

	out := []AreaCode{}
	for _, ac := range codes {
		if len(out) == limit {
			break
		}
		if strings.HasPrefix(ac.Code, prefix) || (ac.City != "" && strings.HasPrefix(fold.String(ac.City), p)) {
			out = append(out, ac)
		}
	}
	return out
}

func distinctCountries(codes []AreaCode) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, ac := range codes {
		if !seen[ac.Country] {
			seen[ac.Country] = true
			out = append(out, ac.Country)
		}
	}
	sort.Strings(out)
	return out
}

// filterByCountry matches key (canonical, upper case) as a substring of the
// country id, either as stored or with legacy aliases resolved. Keys longer
// than an ISO code are also matched against the country name, so "GERMANY"
// finds "DE" records.
func filterByCountry(codes []AreaCode, key string) []AreaCode {
	fold := cases.Fold()
	byName := len([]rune(key)) > 3
	k := fold.String(key)

	out := []AreaCode{}
	for _, ac := range codes {
		if strings.Contains(normalizeCountry(ac.Country), key) ||
			strings.Contains(canonicalCountry(ac.Country), key) ||
			(byName && strings.Contains(fold.String(ac.CountryName()), k)) {
			out = append(out, ac)
		}
	}
	return out
}
