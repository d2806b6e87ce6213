// Package ticker validates and suggests market identifier assignments.
// Every operation is a pure read over the registry; the import guard owns the
// write path.
package ticker

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"tenet/internal/registry/models"
	dErrors "tenet/pkg/domain-errors"
	"tenet/pkg/platform/sentinel"
	platformstrings "tenet/pkg/platform/strings"
)

// Registry is the read surface the validator needs. Defined here, consumer
// side, so tests can stub it without touching the full store.
type Registry interface {
	FindActiveByTicker(ctx context.Context, ticker string) (*models.Company, error)
	SearchActiveByWord(ctx context.Context, word string, limit int) ([]models.Company, error)
	ListActiveCompanies(ctx context.Context) ([]models.Company, error)
}

// tickerFormat is the exchange-symbol shape we accept: 1-10 chars of
// uppercase alphanumerics, dots and dashes (BRK.B, BF-B).
var tickerFormat = regexp.MustCompile(`^[A-Z0-9.\-]{1,10}$`)

// minWordLen is the shortest name word considered significant for similarity.
const minWordLen = 2

// similarLimit bounds similar-company queries per word.
const similarLimit = 5

// Assignment is the verdict for one proposed (name, ticker) pair.
type Assignment struct {
	Valid           bool    `json:"valid"`
	SuggestedTicker string  `json:"suggested_ticker,omitempty"`
	Confidence      float64 `json:"confidence"`
	Reason          string  `json:"reason"`
}

// IssueSeverity grades report findings.
type IssueSeverity string

const (
	SeverityHigh   IssueSeverity = "high"
	SeverityMedium IssueSeverity = "medium"
)

// Issue is one finding in a validation report.
type Issue struct {
	Company  string        `json:"company"`
	Ticker   string        `json:"ticker"`
	Severity IssueSeverity `json:"severity"`
	Detail   string        `json:"detail"`
}

// Report summarizes identifier health across the active registry.
type Report struct {
	TotalCompanies      int     `json:"total_companies"`
	CompaniesWithTicker int     `json:"companies_with_ticker"`
	Issues              []Issue `json:"issues"`
}

// Validator decides whether a proposed (name, ticker) pair is acceptable and
// suggests corrections from the injected reference table.
type Validator struct {
	registry Registry
	table    *ReferenceTable
}

// New constructs a validator.
func New(registry Registry, table *ReferenceTable) *Validator {
	return &Validator{registry: registry, table: table}
}

// ValidateAssignment runs the assignment checks in order, short-circuiting on
// the first failure:
//
//  1. ticker not already bound to a different active company
//  2. name does not map to a different canonical ticker in the reference table
//  3. ticker matches the exchange-symbol format
//  4. no other active company shares a significant name word
//
// A storage failure is returned as a distinct unavailable error, never as an
// invalid assignment.
func (v *Validator) ValidateAssignment(ctx context.Context, name, proposed string) (*Assignment, error) {
	proposed = strings.ToUpper(strings.TrimSpace(proposed))
	nameKey := platformstrings.NormalizeKey(name)

	holder, err := v.registry.FindActiveByTicker(ctx, proposed)
	switch {
	case err == nil:
		if platformstrings.NormalizeKey(holder.Name) != nameKey {
			return &Assignment{
				Valid:      false,
				Confidence: 0.9,
				Reason:     fmt.Sprintf("ticker %s is already assigned to %s", proposed, holder.Name),
			}, nil
		}
	case !errors.Is(err, sentinel.ErrNotFound):
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "ticker lookup failed")
	}

	if canonical, ok := v.table.Lookup(name); ok && canonical != proposed {
		return &Assignment{
			Valid:           false,
			SuggestedTicker: canonical,
			Confidence:      0.8,
			Reason:          fmt.Sprintf("reference table maps %q to %s", name, canonical),
		}, nil
	}

	if !tickerFormat.MatchString(proposed) {
		return &Assignment{
			Valid:      false,
			Confidence: 0.7,
			Reason:     fmt.Sprintf("ticker %q does not match the expected format (1-10 chars, A-Z 0-9 . -)", proposed),
		}, nil
	}

	similar, err := v.similarCompanies(ctx, name)
	if err != nil {
		return nil, err
	}
	if len(similar) > 0 {
		return &Assignment{
			Valid:      false,
			Confidence: 0.6,
			Reason:     fmt.Sprintf("similarly named companies already registered: %s", strings.Join(similar, ", ")),
		}, nil
	}

	return &Assignment{Valid: true, Confidence: 0.9, Reason: "all checks passed"}, nil
}

// AutoAssign returns the canonical ticker for a name from the reference
// table, or ok=false when the name is not curated.
func (v *Validator) AutoAssign(name string) (string, bool) {
	return v.table.Lookup(name)
}

// BuildReport scans all active companies and flags malformed tickers (high
// severity) and tickers that disagree with the reference table's suggestion
// for the name (medium severity). Companies without a ticker are counted but
// never flagged.
func (v *Validator) BuildReport(ctx context.Context) (*Report, error) {
	companies, err := v.registry.ListActiveCompanies(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "list companies failed")
	}

	report := &Report{TotalCompanies: len(companies)}
	for _, company := range companies {
		if company.Ticker == "" {
			continue
		}
		report.CompaniesWithTicker++

		assigned := strings.ToUpper(company.Ticker)
		if !tickerFormat.MatchString(assigned) {
			report.Issues = append(report.Issues, Issue{
				Company:  company.Name,
				Ticker:   company.Ticker,
				Severity: SeverityHigh,
				Detail:   "ticker does not match the expected format",
			})
			continue
		}
		if suggested, ok := v.table.Lookup(company.Name); ok && suggested != assigned {
			report.Issues = append(report.Issues, Issue{
				Company:  company.Name,
				Ticker:   company.Ticker,
				Severity: SeverityMedium,
				Detail:   fmt.Sprintf("reference table suggests %s", suggested),
			})
		}
	}
	return report, nil
}

// similarCompanies returns names of other active companies sharing a
// significant word with name.
func (v *Validator) similarCompanies(ctx context.Context, name string) ([]string, error) {
	nameKey := platformstrings.NormalizeKey(name)
	seen := make(map[string]struct{})
	var out []string
	for _, word := range platformstrings.SignificantWords(name, minWordLen) {
		matches, err := v.registry.SearchActiveByWord(ctx, word, similarLimit)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "similar-name lookup failed")
		}
		for _, match := range matches {
			key := platformstrings.NormalizeKey(match.Name)
			if key == nameKey {
				continue // same company, not a conflict
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, match.Name)
		}
	}
	return out, nil
}
