package model

import "strings"

// Sentinel party names. UnknownPartyName is returned when every resolution
// strategy misses; NoPartyPreferenceName covers non-partisan offices and
// candidates registered without a preference.
const (
	UnknownPartyName      = "UNKNOWN"
	NoPartyPreferenceName = "NO PARTY PREFERENCE"
)

// Party is a political affiliation.
type Party struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Abbreviation string `json:"abbreviation"`
	IsWriteIn    bool   `json:"is_write_in,omitempty"`
}

// IsUnknown reports whether this is the UNKNOWN sentinel party.
func (p *Party) IsUnknown() bool {
	return p != nil && p.Name == UnknownPartyName
}

// PartyAbbreviation derives a short abbreviation from a party name: single
// words keep their first three letters, multi-word names collapse to word
// initials with AND dropped ("PEACE AND FREEDOM" → "PF").
func PartyAbbreviation(name string) string {
	words := strings.Fields(strings.ToUpper(name))
	var kept []string
	for _, w := range words {
		if w == "AND" {
			continue
		}
		kept = append(kept, w)
	}
	if len(kept) == 0 {
		return ""
	}
	if len(kept) == 1 {
		w := kept[0]
		if len(w) > 3 {
			w = w[:3]
		}
		return w
	}
	var b strings.Builder
	for _, w := range kept {
		b.WriteByte(w[0])
		if b.Len() == 3 {
			break
		}
	}
	return b.String()
}
