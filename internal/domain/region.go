package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// Region is a US state, territory or military postal designation.
type Region struct {
	Name         string `json:"name" yaml:"name"`
	Abbreviation string `json:"abbreviation" yaml:"abbreviation"`
}

var regions = []Region{
	{"Alabama", "AL"},
	{"Alaska", "AK"},
	{"American Samoa", "AS"},
	{"Arizona", "AZ"},
	{"Arkansas", "AR"},
	{"Armed Forces Americas", "AA"},
	{"Armed Forces Europe", "AE"},
	{"Armed Forces Pacific", "AP"},
	{"California", "CA"},
	{"Colorado", "CO"},
	{"Connecticut", "CT"},
	{"Delaware", "DE"},
	{"District Of Columbia", "DC"},
	{"Florida", "FL"},
	{"Georgia", "GA"},
	{"Guam", "GU"},
	{"Hawaii", "HI"},
	{"Idaho", "ID"},
	{"Illinois", "IL"},
	{"Indiana", "IN"},
	{"Iowa", "IA"},
	{"Kansas", "KS"},
	{"Kentucky", "KY"},
	{"Louisiana", "LA"},
	{"Maine", "ME"},
	{"Marshall Islands", "MH"},
	{"Maryland", "MD"},
	{"Massachusetts", "MA"},
	{"Michigan", "MI"},
	{"Minnesota", "MN"},
	{"Mississippi", "MS"},
	{"Missouri", "MO"},
	{"Montana", "MT"},
	{"Nebraska", "NE"},
	{"Nevada", "NV"},
	{"New Hampshire", "NH"},
	{"New Jersey", "NJ"},
	{"New Mexico", "NM"},
	{"New York", "NY"},
	{"North Carolina", "NC"},
	{"North Dakota", "ND"},
	{"Northern Mariana Islands", "NP"},
	{"Ohio", "OH"},
	{"Oklahoma", "OK"},
	{"Oregon", "OR"},
	{"Pennsylvania", "PA"},
	{"Puerto Rico", "PR"},
	{"Rhode Island", "RI"},
	{"South Carolina", "SC"},
	{"South Dakota", "SD"},
	{"Tennessee", "TN"},
	{"Texas", "TX"},
	{"US Virgin Islands", "VI"},
	{"Utah", "UT"},
	{"Vermont", "VT"},
	{"Virginia", "VA"},
	{"Washington", "WA"},
	{"West Virginia", "WV"},
	{"Wisconsin", "WI"},
	{"Wyoming", "WY"},
}

// wordRe matches a word as the title-case normalization sees it: a word
// character followed by any run of non-space characters.
var wordRe = regexp.MustCompile(`\w\S*`)

// Lookup tables, built once. Names are keyed by their title-cased form so
// that entries like "US Virgin Islands" survive the input normalization.
var (
	nameByAbbreviation = make(map[string]string, len(regions))
	abbreviationByName = make(map[string]string, len(regions))
)

func init() {
	for _, r := range regions {
		nameByAbbreviation[r.Abbreviation] = r.Name
		abbreviationByName[titleCase(r.Name)] = r.Abbreviation
	}
}

// Regions returns a copy of the lookup table in alphabetical order.
func Regions() []Region {
	return append([]Region(nil), regions...)
}

// RegionName returns the full name for a postal abbreviation. The input is
// uppercased before lookup.
func RegionName(abbreviation string) (string, bool) {
	name, ok := nameByAbbreviation[strings.ToUpper(strings.TrimSpace(abbreviation))]
	return name, ok
}

// RegionAbbreviation returns the postal abbreviation for a full name. The
// input is title-cased before lookup.
func RegionAbbreviation(name string) (string, bool) {
	abbr, ok := abbreviationByName[titleCase(strings.TrimSpace(name))]
	return abbr, ok
}

// LookupRegionName is RegionName with an ErrUnresolvedLookup error on miss.
func LookupRegionName(abbreviation string) (string, error) {
	name, ok := RegionName(abbreviation)
	if !ok {
		return "", fmt.Errorf("region abbreviation %q: %w", abbreviation, ErrUnresolvedLookup)
	}
	return name, nil
}

// LookupRegionAbbreviation is RegionAbbreviation with an ErrUnresolvedLookup
// error on miss.
func LookupRegionAbbreviation(name string) (string, error) {
	abbr, ok := RegionAbbreviation(name)
	if !ok {
		return "", fmt.Errorf("region name %q: %w", name, ErrUnresolvedLookup)
	}
	return abbr, nil
}

// titleCase uppercases the first character of each word and lowercases the rest.
func titleCase(s string) string {
	return wordRe.ReplaceAllStringFunc(s, func(w string) string {
		return strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	})
}
