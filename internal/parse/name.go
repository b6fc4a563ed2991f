// Package parse turns raw CAL-ACCESS strings (person names, office names,
// election names) into structured fields, and encodes the California
// election-day date rules.
package parse

import (
	"regexp"
	"strconv"
	"strings"
)

// suffixRe matches a trailing generational suffix, with or without a
// preceding comma and trailing period.
var suffixRe = regexp.MustCompile(`(?i)[,\s]+(JR|SR|II|III|IV)\.?\s*$`)

// PersonName holds the parsed components of a candidate name string.
type PersonName struct {
	SortName   string `json:"sort_name"`
	Name       string `json:"name"`
	FamilyName string `json:"family_name"`
	GivenName  string `json:"given_name"`
}

// PersonNameParts splits a scraped "LAST, FIRST" candidate name. A trailing
// generational suffix (JR, SR, II, III, IV) is stripped before the comma
// split and re-appended to both the display name and the given name. Strings
// without a comma yield an empty given name with the whole string as family
// name.
func PersonNameParts(raw string) PersonName {
	sortName := strings.TrimSpace(raw)

	var suffix string
	if m := suffixRe.FindStringSubmatch(sortName); m != nil {
		suffix = strings.ToUpper(m[1])
		sortName = strings.TrimSpace(suffixRe.ReplaceAllString(sortName, ""))
	}

	p := PersonName{SortName: sortName}

	family, given, found := strings.Cut(sortName, ",")
	if !found {
		p.FamilyName = sortName
		p.Name = sortName
		if suffix != "" {
			p.Name += " " + suffix
		}
		return p
	}

	p.FamilyName = strings.TrimSpace(family)
	p.GivenName = strings.TrimSpace(given)
	if suffix != "" {
		p.GivenName += " " + suffix
	}
	p.Name = strings.TrimSpace(p.GivenName + " " + p.FamilyName)
	return p
}

// officeRe matches an uppercased office name with an optional two-digit
// district, e.g. "ASSEMBLY 75" or "GOVERNOR".
var officeRe = regexp.MustCompile(`^([A-Z ]+?)\s*(\d{2})?$`)

// Office holds the parsed components of an office-name string. A nil
// District means the office is not districted (or the district was absent).
type Office struct {
	Type     string `json:"type"`
	District *int   `json:"district,omitempty"`
}

// OfficeParts parses an office-name string. Malformed input degrades to the
// zero value (empty type, nil district) rather than failing: an unparseable
// office is flagged for manual correction downstream, never a batch abort.
func OfficeParts(raw string) Office {
	m := officeRe.FindStringSubmatch(strings.ToUpper(strings.TrimSpace(raw)))
	if m == nil {
		return Office{}
	}

	o := Office{Type: strings.TrimSpace(m[1])}
	if m[2] != "" {
		d, err := strconv.Atoi(m[2])
		if err == nil {
			o.District = &d
		}
	}
	return o
}
