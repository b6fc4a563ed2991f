package resolve

import (
	"context"
	"strings"

	"github.com/california-civic-data/calaccess-processed/internal/model"
	"github.com/california-civic-data/calaccess-processed/internal/parse"
	"github.com/california-civic-data/calaccess-processed/internal/store"
)

// candidateElectionKey extracts the election year and type a candidate is
// running in, falling back to the scraped date when the election name does
// not parse.
func candidateElectionKey(cand model.ScrapedCandidate) (int, string) {
	parts, err := parse.ElectionNameParts(cand.ElectionName)
	if err == nil {
		return parts.Year, parts.Type
	}
	if cand.ElectionDate != nil {
		return cand.ElectionDate.Year(), ""
	}
	return 0, ""
}

// normalizeMatchName canonicalizes a sort name for Form 501 matching:
// uppercase, periods stripped, whitespace collapsed.
func normalizeMatchName(name string) string {
	name = strings.ToUpper(strings.ReplaceAll(name, ".", ""))
	return strings.Join(strings.Fields(name), " ")
}

// FindForm501 locates the candidate-intention statement backing a scraped
// candidate, by filer ID when one was scraped and by name otherwise. Filings
// from earlier election years remain eligible because candidates pre-file.
// Absence of a Form 501 is common and expected, so a miss is not an error.
func (r *Resolver) FindForm501(ctx context.Context, cand model.ScrapedCandidate) (*model.Form501Filing, bool, error) {
	office := parse.OfficeParts(cand.OfficeName)
	if office.Type == "" {
		return nil, false, nil
	}
	year, electionType := candidateElectionKey(cand)

	filter := store.Form501Filter{
		Office:   office.Type,
		District: office.District,
		MaxYear:  year,
	}

	if cand.ScrapedID != "" {
		filter.FilerID = cand.ScrapedID
		filings, err := r.st.ListForm501Filings(ctx, filter)
		if err != nil {
			return nil, false, err
		}
		return pickFiling(filings, electionType)
	}

	filings, err := r.st.ListForm501Filings(ctx, filter)
	if err != nil {
		return nil, false, err
	}

	parsed := parse.PersonNameParts(cand.Name)
	target := normalizeMatchName(parsed.SortName)

	matched := filterFilings(filings, func(f model.Form501Filing) bool {
		return normalizeMatchName(f.SortName(false)) == target
	})
	if len(matched) == 0 {
		matched = filterFilings(filings, func(f model.Form501Filing) bool {
			return normalizeMatchName(f.SortName(true)) == target
		})
	}
	return pickFiling(matched, electionType)
}

// pickFiling narrows candidate filings by election type when possible and
// breaks remaining ties by latest filing date.
func pickFiling(filings []model.Form501Filing, electionType string) (*model.Form501Filing, bool, error) {
	if len(filings) == 0 {
		return nil, false, nil
	}
	if electionType != "" {
		byType := filterFilings(filings, func(f model.Form501Filing) bool {
			return f.ElectionType == electionType
		})
		if len(byType) > 0 {
			filings = byType
		}
	}

	latest := filings[0]
	for _, f := range filings[1:] {
		if laterFiled(f, latest) {
			latest = f
		}
	}
	return &latest, true, nil
}

func filterFilings(filings []model.Form501Filing, keep func(model.Form501Filing) bool) []model.Form501Filing {
	var out []model.Form501Filing
	for _, f := range filings {
		if keep(f) {
			out = append(out, f)
		}
	}
	return out
}

// laterFiled reports whether a was filed after b; an undated filing never
// beats a dated one.
func laterFiled(a, b model.Form501Filing) bool {
	if a.DateFiled == nil {
		return false
	}
	if b.DateFiled == nil {
		return true
	}
	return a.DateFiled.After(*b.DateFiled)
}
