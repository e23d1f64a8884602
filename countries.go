package areacodes

import "strings"

// CountryNames maps ISO 3166-1 alpha-2 country ids to English short names.
var CountryNames = map[string]string{
	"AD": "Andorra", "AE": "United Arab Emirates", "AF": "Afghanistan", "AG": "Antigua and Barbuda",
	"AI": "Anguilla", "AL": "Albania", "AM": "Armenia", "AO": "Angola",
	"AR": "Argentina", "AS": "American Samoa", "AT": "Austria", "AU": "Australia",
	"AW": "Aruba", "AZ": "Azerbaijan", "BA": "Bosnia and Herzegovina", "BB": "Barbados",
	"BD": "Bangladesh", "BE": "Belgium", "BF": "Burkina Faso", "BG": "Bulgaria",
	"BH": "Bahrain", "BI": "Burundi", "BJ": "Benin", "BM": "Bermuda",
	"BN": "Brunei", "BO": "Bolivia", "BR": "Brazil", "BS": "Bahamas",
	"BT": "Bhutan", "BW": "Botswana", "BY": "Belarus", "BZ": "Belize",
	"CA": "Canada", "CD": "DR Congo", "CF": "Central African Republic", "CG": "Congo",
	"CH": "Switzerland", "CI": "Côte d'Ivoire", "CL": "Chile", "CM": "Cameroon",
	"CN": "China", "CO": "Colombia", "CR": "Costa Rica", "CU": "Cuba",
	"CV": "Cape Verde", "CY": "Cyprus", "CZ": "Czechia", "DE": "Germany",
	"DJ": "Djibouti", "DK": "Denmark", "DM": "Dominica", "DO": "Dominican Republic",
	"DZ": "Algeria", "EC": "Ecuador", "EE": "Estonia", "EG": "Egypt",
	"ER": "Eritrea", "ES": "Spain", "ET": "Ethiopia", "FI": "Finland",
	"FJ": "Fiji", "FM": "Micronesia", "FR": "France", "GA": "Gabon",
	"GB": "United Kingdom", "GD": "Grenada", "GE": "Georgia", "GH": "Ghana",
	"GI": "Gibraltar", "GL": "Greenland", "GM": "Gambia", "GN": "Guinea",
	"GQ": "Equatorial Guinea", "GR": "Greece", "GT": "Guatemala", "GU": "Guam",
	"GW": "Guinea-Bissau", "GY": "Guyana", "HK": "Hong Kong", "HN": "Honduras",
	"HR": "Croatia", "HT": "Haiti", "HU": "Hungary", "ID": "Indonesia",
	"IE": "Ireland", "IL": "Israel", "IN": "India", "IQ": "Iraq",
	"IR": "Iran", "IS": "Iceland", "IT": "Italy", "JM": "Jamaica",
	"JO": "Jordan", "JP": "Japan", "KE": "Kenya", "KG": "Kyrgyzstan",
	"KH": "Cambodia", "KN": "Saint Kitts and Nevis", "KP": "North Korea", "KR": "South Korea",
	"KW": "Kuwait", "KY": "Cayman Islands", "KZ": "Kazakhstan", "LA": "Laos",
	"LB": "Lebanon", "LC": "Saint Lucia", "LI": "Liechtenstein", "LK": "Sri Lanka",
	"LR": "Liberia", "LS": "Lesotho", "LT": "Lithuania", "LU": "Luxembourg",
	"LV": "Latvia", "LY": "Libya", "MA": "Morocco", "MC": "Monaco",
	"MD": "Moldova", "ME": "Montenegro", "MG": "Madagascar", "MK": "North Macedonia",
	"ML": "Mali", "MM": "Myanmar", "MN": "Mongolia", "MO": "Macao",
	"MP": "Northern Mariana Islands", "MR": "Mauritania", "MT": "Malta", "MU": "Mauritius",
	"MV": "Maldives", "MW": "Malawi", "MX": "Mexico", "MY": "Malaysia",
	"MZ": "Mozambique", "NA": "Namibia", "NE": "Niger", "NG": "Nigeria",
	"NI": "Nicaragua", "NL": "Netherlands", "NO": "Norway", "NP": "Nepal",
	"NZ": "New Zealand", "OM": "Oman", "PA": "Panama", "PE": "Peru",
	"PG": "Papua New Guinea", "PH": "Philippines", "PK": "Pakistan", "PL": "Poland",
	"PR": "Puerto Rico", "PS": "Palestine", "PT": "Portugal", "PY": "Paraguay",
	"QA": "Qatar", "RO": "Romania", "RS": "Serbia", "RU": "Russia",
	"RW": "Rwanda", "SA": "Saudi Arabia", "SC": "Seychelles", "SD": "Sudan",
	"SE": "Sweden", "SG": "Singapore", "SI": "Slovenia", "SK": "Slovakia",
	"SL": "Sierra Leone", "SM": "San Marino", "SN": "Senegal", "SO": "Somalia",
	"SR": "Suriname", "SV": "El Salvador", "SY": "Syria", "TD": "Chad",
	"TG": "Togo", "TH": "Thailand", "TJ": "Tajikistan", "TM": "Turkmenistan",
	"TN": "Tunisia", "TR": "Turkey", "TT": "Trinidad and Tobago", "TW": "Taiwan",
	"TZ": "Tanzania", "UA": "Ukraine", "UG": "Uganda", "US": "United States",
	"UY": "Uruguay", "UZ": "Uzbekistan", "VA": "Vatican City", "VC": "Saint Vincent and the Grenadines",
	"VE": "Venezuela", "VG": "British Virgin Islands", "VI": "U.S. Virgin Islands", "VN": "Vietnam",
	"YE": "Yemen", "ZA": "South Africa", "ZM": "Zambia", "ZW": "Zimbabwe",
}

// countryAliases maps legacy or colloquial ids still found in telephony data
// to their ISO 3166-1 alpha-2 replacement.
var countryAliases = map[string]string{
	"UK": "GB",
	"EL": "GR",
	"FX": "FR",
}

// normalizeCountry trims and uppercases a country identifier.
func normalizeCountry(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}

// canonicalCountry normalizes id and resolves legacy aliases.
func canonicalCountry(id string) string {
	id = normalizeCountry(id)
	if iso, ok := countryAliases[id]; ok {
		return iso
	}
	return id
}

func countryName(id string) string {
	if name, ok := CountryNames[canonicalCountry(id)]; ok {
		return name
	}
	return id
}

// IsKnownCountry reports whether id (or its legacy alias) has an entry in CountryNames.
func IsKnownCountry(id string) bool {
	_, ok := CountryNames[canonicalCountry(id)]
	return ok
}
