package resolve

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/california-civic-data/calaccess-processed/internal/model"
	"github.com/california-civic-data/calaccess-processed/internal/parse"
)

// Party resolution strategies, in priority order. Recorded in the audit
// trail so every assignment is explainable.
const (
	StrategyNonpartisanOffice  = "nonpartisan_office"
	StrategyManualCorrection   = "manual_correction"
	StrategyForm501Party       = "form501_declared_party"
	StrategyForm501FilerParty  = "form501_filer_history"
	StrategyScrapedFilerParty  = "scraped_filer_history"
	StrategyUnknownFallthrough = "unknown_fallthrough"
)

// ResolveParty infers a scraped candidate's party via the priority chain:
// non-partisan office override, manual correction, Form 501 declared party,
// Form 501 filer history, scraped filer history, then the UNKNOWN sentinel.
// The returned resolution carries every attempt for auditability.
func (r *Resolver) ResolveParty(ctx context.Context, cand model.ScrapedCandidate) (*model.PartyResolution, error) {
	office := parse.OfficeParts(cand.OfficeName)
	officeLabel := strings.ToUpper(strings.TrimSpace(cand.OfficeName))
	year, electionType := candidateElectionKey(cand)

	res := &model.PartyResolution{}

	// Non-partisan office override.
	if office.Type == superintendentOffice {
		return r.concludeParty(ctx, cand, res, StrategyNonpartisanOffice,
			model.NoPartyPreferenceName, "office is non-partisan under California law")
	}
	r.missParty(res, StrategyNonpartisanOffice, "office is partisan")

	// Manual correction table.
	corrected, found, err := r.tables.PartyCorrection(cand.Name, year, electionType, officeLabel)
	if err != nil {
		return nil, err
	}
	if found {
		return r.concludeParty(ctx, cand, res, StrategyManualCorrection, corrected,
			fmt.Sprintf("correction row for (%s, %d, %s, %s)", cand.Name, year, electionType, officeLabel))
	}
	r.missParty(res, StrategyManualCorrection, "no correction row")

	// Form 501 declared party.
	filing, filingFound, err := r.FindForm501(ctx, cand)
	if err != nil {
		return nil, err
	}
	if filingFound {
		declared := strings.ToUpper(strings.TrimSpace(filing.Party))
		if declared != "" && declared != model.UnknownPartyName {
			return r.concludeParty(ctx, cand, res, StrategyForm501Party, declared,
				fmt.Sprintf("declared on Form 501 filing %s", filing.FilingID))
		}
		r.missParty(res, StrategyForm501Party, "Form 501 found but party undeclared")
	} else {
		r.missParty(res, StrategyForm501Party, "no Form 501 on file")
	}

	// Filer-to-party history, as of the election date.
	if filingFound && filing.FilerID != "" {
		party, ok, err := r.filerPartyAsOf(ctx, filing.FilerID, cand)
		if err != nil {
			return nil, err
		}
		if ok {
			return r.concludeParty(ctx, cand, res, StrategyForm501FilerParty, party,
				fmt.Sprintf("filer %s party history as of election date", filing.FilerID))
		}
	}
	r.missParty(res, StrategyForm501FilerParty, "no Form 501 filer history")

	if cand.ScrapedID != "" {
		party, ok, err := r.filerPartyAsOf(ctx, cand.ScrapedID, cand)
		if err != nil {
			return nil, err
		}
		if ok {
			return r.concludeParty(ctx, cand, res, StrategyScrapedFilerParty, party,
				fmt.Sprintf("filer %s party history as of election date", cand.ScrapedID))
		}
	}
	r.missParty(res, StrategyScrapedFilerParty, "no scraped filer history")

	return r.concludeParty(ctx, cand, res, StrategyUnknownFallthrough,
		model.UnknownPartyName, "every strategy missed")
}

// filerPartyAsOf consults the filer-to-party history table. History lookups
// need a reference date; a candidate with no scraped election date cannot be
// queried and falls through.
func (r *Resolver) filerPartyAsOf(ctx context.Context, filerID string, cand model.ScrapedCandidate) (string, bool, error) {
	if cand.ElectionDate == nil {
		return "", false, nil
	}
	party, ok, err := r.st.FilerPartyAsOf(ctx, filerID, *cand.ElectionDate)
	if err != nil {
		return "", false, err
	}
	party = strings.ToUpper(strings.TrimSpace(party))
	if !ok || party == "" || party == model.UnknownPartyName {
		return "", false, nil
	}
	return party, true, nil
}

func (r *Resolver) missParty(res *model.PartyResolution, strategy, justification string) {
	res.Attempts = append(res.Attempts, model.PartyAttempt{
		Strategy:      strategy,
		Justification: justification,
	})
}

func (r *Resolver) concludeParty(ctx context.Context, cand model.ScrapedCandidate, res *model.PartyResolution, strategy, partyName, justification string) (*model.PartyResolution, error) {
	party, _, err := r.st.GetOrCreateParty(ctx, partyName)
	if err != nil {
		return nil, err
	}

	res.Party = party
	res.Strategy = strategy
	res.Justification = justification
	res.Attempts = append(res.Attempts, model.PartyAttempt{
		Strategy:      strategy,
		Party:         party.Name,
		Matched:       true,
		Justification: justification,
	})

	r.log.Debug("party resolved",
		zap.String("candidate", cand.Name),
		zap.String("party", party.Name),
		zap.String("strategy", strategy),
		zap.String("justification", justification))
	return res, nil
}
