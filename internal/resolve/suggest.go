package resolve

import (
	"context"
	"sort"
	"strings"

	"github.com/antzucaro/matchr"
)

// PersonSuggestion is one probable duplicate-person pair. Suggestions are
// report-only: a human confirms by adding a correction or linking a filer
// id, never by automatic merge.
type PersonSuggestion struct {
	PersonID      string  `json:"person_id"`
	PersonName    string  `json:"person_name"`
	CandidateID   string  `json:"candidate_id"`
	CandidateName string  `json:"candidate_name"`
	Similarity    float64 `json:"similarity"`
}

// SuggestMerges reports person pairs whose sort names score above the
// configured Jaro-Winkler threshold. Pairs already distinguished by
// different filer ids are known distinct people and are skipped.
func (r *Resolver) SuggestMerges(ctx context.Context) ([]PersonSuggestion, error) {
	persons, err := r.st.ListPersons(ctx)
	if err != nil {
		return nil, err
	}

	threshold := r.cfg.SuggestThreshold
	if threshold <= 0 {
		threshold = 0.9
	}

	var suggestions []PersonSuggestion
	for i := range persons {
		for j := i + 1; j < len(persons); j++ {
			a, b := &persons[i], &persons[j]

			aID, bID := a.FilerID(), b.FilerID()
			if aID != "" && bID != "" && aID != bID {
				continue
			}

			similarity := matchr.JaroWinkler(
				strings.ToUpper(a.SortName),
				strings.ToUpper(b.SortName),
				false,
			)
			if similarity < threshold {
				continue
			}
			suggestions = append(suggestions, PersonSuggestion{
				PersonID:      a.ID,
				PersonName:    a.SortName,
				CandidateID:   b.ID,
				CandidateName: b.SortName,
				Similarity:    similarity,
			})
		}
	}

	sort.Slice(suggestions, func(i, j int) bool {
		return suggestions[i].Similarity > suggestions[j].Similarity
	})
	return suggestions, nil
}
