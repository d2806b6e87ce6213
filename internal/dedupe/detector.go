// Package dedupe surfaces candidate duplicate companies and evidence records.
// The detector only reports; it never merges companies on its own. Evidence
// cleanup is the one resolution it performs, and that follows a fixed
// keep-earliest policy.
package dedupe

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"tenet/internal/registry/models"
	dErrors "tenet/pkg/domain-errors"
	platformstrings "tenet/pkg/platform/strings"
)

// maxSimilar bounds similar-company results.
const maxSimilar = 5

// minWordLen is the shortest name word used for similarity queries.
const minWordLen = 2

// Registry is the store surface the detector consumes.
type Registry interface {
	SearchActiveByWord(ctx context.Context, word string, limit int) ([]models.Company, error)
	ListEvidence(ctx context.Context, companyID uuid.UUID) ([]models.Evidence, error)
	ListAliases(ctx context.Context, companyID uuid.UUID) ([]models.Alias, error)
	DeleteEvidence(ctx context.Context, id uuid.UUID) error
	CountDuplicateNames(ctx context.Context) (int, error)
	CountDuplicateTickers(ctx context.Context) (int, error)
}

// Detector finds near-duplicate companies and evidence records.
type Detector struct {
	registry Registry
}

// New constructs a detector.
func New(registry Registry) *Detector {
	return &Detector{registry: registry}
}

// FindSimilarCompanies returns up to maxSimilar active companies whose name
// contains any significant word of name, case-insensitive.
func (d *Detector) FindSimilarCompanies(ctx context.Context, name string) ([]models.Company, error) {
	seen := make(map[uuid.UUID]struct{})
	var out []models.Company
	for _, word := range platformstrings.SignificantWords(name, minWordLen) {
		matches, err := d.registry.SearchActiveByWord(ctx, word, maxSimilar)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "similar-company search failed")
		}
		for _, match := range matches {
			if _, dup := seen[match.ID]; dup {
				continue
			}
			seen[match.ID] = struct{}{}
			out = append(out, match)
			if len(out) == maxSimilar {
				return out, nil
			}
		}
	}
	return out, nil
}

// IsPotentialDuplicate reports whether two names plausibly refer to the same
// company. Conservative and explainable: equality, containment, or equality
// after corporate-suffix stripping. No similarity score, no threshold.
func IsPotentialDuplicate(nameA, nameB string) bool {
	a := platformstrings.NormalizeKey(nameA)
	b := platformstrings.NormalizeKey(nameB)
	if a == "" || b == "" {
		return a == b
	}
	if a == b {
		return true
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return true
	}
	strippedA := platformstrings.StripCorporateSuffixes(a)
	strippedB := platformstrings.StripCorporateSuffixes(b)
	return strippedA == strippedB && len(strippedA) > 3
}

// DuplicateGroup is a set of evidence records sharing one (tag, normalized
// notes) key. Records keep insertion order; everything after the first is
// removable.
type DuplicateGroup struct {
	Key     models.GroupKey
	Records []models.Evidence
}

// Removable returns the ids of every record after the earliest-created one.
func (g DuplicateGroup) Removable() []uuid.UUID {
	if len(g.Records) < 2 {
		return nil
	}
	out := make([]uuid.UUID, 0, len(g.Records)-1)
	for _, record := range g.Records[1:] {
		out = append(out, record.ID)
	}
	return out
}

// FindDuplicateEvidence groups a company's evidence by (tag, normalized
// notes) and returns the groups with more than one member, in first-seen
// order.
func (d *Detector) FindDuplicateEvidence(ctx context.Context, companyID uuid.UUID) ([]DuplicateGroup, error) {
	records, err := d.registry.ListEvidence(ctx, companyID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "list evidence failed")
	}

	groups := make(map[models.GroupKey]*DuplicateGroup)
	var order []models.GroupKey
	for _, record := range records {
		key := record.Key()
		group, ok := groups[key]
		if !ok {
			group = &DuplicateGroup{Key: key}
			groups[key] = group
			order = append(order, key)
		}
		group.Records = append(group.Records, record)
	}

	var out []DuplicateGroup
	for _, key := range order {
		if group := groups[key]; len(group.Records) > 1 {
			out = append(out, *group)
		}
	}
	return out, nil
}

// CleanupDuplicateEvidence deletes every removable record in every duplicate
// group, keeping the earliest-created record of each. Idempotent: a second
// run over clean data deletes nothing.
func (d *Detector) CleanupDuplicateEvidence(ctx context.Context, companyID uuid.UUID) (int, error) {
	groups, err := d.FindDuplicateEvidence(ctx, companyID)
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, group := range groups {
		for _, id := range group.Removable() {
			if err := d.registry.DeleteEvidence(ctx, id); err != nil {
				return removed, dErrors.Wrap(err, dErrors.CodeUnavailable, "delete duplicate evidence failed")
			}
			removed++
		}
	}
	return removed, nil
}

// Candidate pairs a possible duplicate company with the record counts an
// operator needs to pick a survivor.
type Candidate struct {
	Company       models.Company `json:"company"`
	EvidenceCount int            `json:"evidence_count"`
	AliasCount    int            `json:"alias_count"`
}

// CompanyCandidates returns similar companies annotated with their evidence
// and alias counts. Resolution stays with the operator; the detector never
// merges.
func (d *Detector) CompanyCandidates(ctx context.Context, name string) ([]Candidate, error) {
	similar, err := d.FindSimilarCompanies(ctx, name)
	if err != nil {
		return nil, err
	}
	out := make([]Candidate, 0, len(similar))
	for _, company := range similar {
		evidence, err := d.registry.ListEvidence(ctx, company.ID)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "list evidence failed")
		}
		aliases, err := d.registry.ListAliases(ctx, company.ID)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "list aliases failed")
		}
		out = append(out, Candidate{
			Company:       company,
			EvidenceCount: len(evidence),
			AliasCount:    len(aliases),
		})
	}
	return out, nil
}

// CountDuplicateNamePairs reports how many normalized-name groups are shared
// by more than one active company.
func (d *Detector) CountDuplicateNamePairs(ctx context.Context) (int, error) {
	count, err := d.registry.CountDuplicateNames(ctx)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeUnavailable, "count duplicate names failed")
	}
	return count, nil
}

// CountDuplicateTickerAssignments reports how many tickers are bound to more
// than one active company. Any non-zero value is an invariant violation.
func (d *Detector) CountDuplicateTickerAssignments(ctx context.Context) (int, error) {
	count, err := d.registry.CountDuplicateTickers(ctx)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeUnavailable, "count duplicate tickers failed")
	}
	return count, nil
}
