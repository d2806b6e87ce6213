package screening

import (
	"fmt"
	"sort"
	"strings"

	"tenet/internal/registry/models"
)

// evaluateCompany applies every enabled category rule to one company
// snapshot and aggregates the result. Pure domain logic - no I/O.
func evaluateCompany(snap snapshot, filters Filters, ceilings ratioCeilings) ([]CategoryResult, Verdict, []string, Confidence) {
	var categories []CategoryResult

	if filters.BDS != nil {
		categories = append(categories, evaluateBDS(snap.evidence, filters.BDS))
	}
	if filters.Defense != nil {
		categories = append(categories, evaluateTagged(models.TagDefense, snap.evidence))
	}
	if filters.Surveillance != nil {
		categories = append(categories, evaluateTagged(models.TagSurveillance, snap.evidence))
	}
	if filters.Religious != nil {
		categories = append(categories, evaluateReligious(snap, applyOverrides(ceilings, filters.Religious)))
	}

	verdict, reasons, confidence := aggregate(categories)
	return categories, verdict, reasons, confidence
}

// evaluateBDS excludes on any evidence under the bds tag, optionally
// narrowed to requested sub-categories. Records without a sub-category fall
// back to "other".
func evaluateBDS(evidence []models.Evidence, opts *BDSOptions) CategoryResult {
	result := CategoryResult{Category: models.TagBDS, Status: StatusPass}

	wanted := make(map[string]bool, len(opts.SubCategories))
	for _, sub := range opts.SubCategories {
		wanted[strings.ToLower(sub)] = true
	}

	subSet := make(map[string]bool)
	for _, ev := range evidence {
		if ev.Tag != models.TagBDS {
			continue
		}
		sub := ev.SubCategory
		if sub == "" {
			sub = "other"
		}
		if len(wanted) > 0 && !wanted[strings.ToLower(sub)] {
			continue
		}
		subSet[sub] = true
		if ev.Notes != "" {
			result.Evidence = append(result.Evidence, ev.Notes)
		}
	}
	if len(subSet) == 0 {
		return result
	}

	result.Status = StatusExcluded
	for sub := range subSet {
		result.SubCategories = append(result.SubCategories, sub)
	}
	sort.Strings(result.SubCategories)
	result.Reasons = append(result.Reasons,
		fmt.Sprintf("bds evidence in sub-categories: %s", strings.Join(result.SubCategories, ", ")))
	return result
}

// evaluateTagged is the shared rule for the plain evidence-tag categories:
// excluded iff at least one record carries the tag.
func evaluateTagged(tag models.Tag, evidence []models.Evidence) CategoryResult {
	result := CategoryResult{Category: tag, Status: StatusPass}
	for _, ev := range evidence {
		if ev.Tag != tag {
			continue
		}
		result.Status = StatusExcluded
		if ev.Notes != "" {
			result.Evidence = append(result.Evidence, ev.Notes)
		}
	}
	if result.Status == StatusExcluded {
		result.Reasons = append(result.Reasons, fmt.Sprintf("%s evidence on record", tag))
	}
	return result
}

// evaluateReligious combines the business keyword screen with the three
// financial ratio checks. Pass requires zero unsuppressed keyword hits and
// all ratios within their ceilings.
func evaluateReligious(snap snapshot, ceilings ratioCeilings) CategoryResult {
	result := CategoryResult{Category: models.TagReligious, Status: StatusPass}

	text := strings.ToLower(strings.Join([]string{
		snap.company.Sector, snap.company.Industry, snap.company.Description,
	}, " "))
	for _, hit := range screenKeywords(text) {
		result.Status = StatusExcluded
		reason := fmt.Sprintf("%s: keyword %q", hit.category, hit.keyword)
		result.Reasons = append(result.Reasons, reason)
		result.Evidence = append(result.Evidence, reason)
	}

	for _, check := range screenRatios(snap.financials, ceilings) {
		if check.Passed {
			continue
		}
		result.Status = StatusExcluded
		result.Reasons = append(result.Reasons, check.reason())
		if !check.MissingData {
			result.Evidence = append(result.Evidence, check.reason())
		}
	}
	return result
}

func applyOverrides(base ratioCeilings, opts *ReligiousOptions) ratioCeilings {
	if opts.DebtToAssetsMax != nil {
		base.debtToAssets = *opts.DebtToAssetsMax
	}
	if opts.CashToAssetsMax != nil {
		base.cashToAssets = *opts.CashToAssetsMax
	}
	if opts.ReceivablesToMarketMax != nil {
		base.receivablesToMarket = *opts.ReceivablesToMarketMax
	}
	return base
}

// aggregate folds per-category results into the final verdict, the combined
// reason list, and a confidence grade driven by the volume of specific
// supporting evidence.
func aggregate(categories []CategoryResult) (Verdict, []string, Confidence) {
	verdict := VerdictPass
	var reasons []string
	evidenceItems := 0

	for _, cat := range categories {
		reasons = append(reasons, cat.Reasons...)
		evidenceItems += len(cat.Evidence)
		switch cat.Status {
		case StatusExcluded:
			verdict = VerdictExcluded
		case StatusReview:
			if verdict != VerdictExcluded {
				verdict = VerdictReview
			}
		}
	}
	return verdict, reasons, confidenceFor(evidenceItems)
}

func confidenceFor(items int) Confidence {
	switch {
	case items >= 3:
		return ConfidenceHigh
	case items >= 1:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}
