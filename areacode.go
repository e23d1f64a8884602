package areacodes

import "strings"

// AreaCode is a single telephone area code record.
// Values are immutable; all presentation helpers are derived from the raw fields.
type AreaCode struct {
	Code    string `json:"code"`    // Local area/city code, not globally unique
	Country string `json:"country"` // ISO 3166-1 alpha-2 id (or a legacy alias such as "UK")
	Region  string `json:"region"`  // State, province or other subdivision
	City    string `json:"city"`    // City name, may be empty
	E164    string `json:"e164"`    // Country calling code + Code, unique across the dataset
	Notes   string `json:"notes"`   // Free-text annotation, may be empty
}

// globeGlyph is returned by Flag when the country id cannot be rendered as a flag.
const globeGlyph = "🌐"

// regionalIndicatorA is the Unicode code point for REGIONAL INDICATOR SYMBOL LETTER A.
const regionalIndicatorA = 0x1F1E6

// ID returns the record identity, which is its E.164 prefix.
func (a AreaCode) ID() string {
	return a.E164
}

// Flag returns the emoji flag for the record's country, or a globe glyph when
// the country id is not a two-letter code.
func (a AreaCode) Flag() string {
	return flagEmoji(a.Country)
}

// CountryName returns the English short name of the record's country, falling
// back to the raw country id when it is unmapped.
func (a AreaCode) CountryName() string {
	return countryName(a.Country)
}

// DisplayName returns the city, or the region when the city is empty.
func (a AreaCode) DisplayName() string {
	if a.City != "" {
		return a.City
	}
	return a.Region
}

// Subtitle returns "Region, Country" for city records and just the country
// name for region-only records.
func (a AreaCode) Subtitle() string {
	if a.City == "" {
		return a.CountryName()
	}
	return a.Region + ", " + a.CountryName()
}

// FormatPhoneNumber builds a full international number by prefixing local
// with "+" and the record's E.164 prefix. local is used verbatim.
//
//	ac.FormatPhoneNumber("5551234") // "+12125551234" for e164 "1212"
func (a AreaCode) FormatPhoneNumber(local string) string {
	return "+" + a.E164 + local
}

// flagEmoji converts a country id into a pair of Regional Indicator symbols.
func flagEmoji(country string) string {
	id := canonicalCountry(country)
	if len(id) != 2 {
		return globeGlyph
	}
	var b strings.Builder
	for i := 0; i < 2; i++ {
		ch := id[i]
		if ch < 'A' || ch > 'Z' {
			return globeGlyph
		}
		b.WriteRune(rune(regionalIndicatorA + int(ch-'A')))
	}
	return b.String()
}
