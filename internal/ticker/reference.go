package ticker

import (
	"strings"

	platformstrings "tenet/pkg/platform/strings"
)

// ReferenceEntry maps a curated normalized company-name key to its canonical
// ticker. Exclusions veto a substring match: a name containing the key AND an
// exclusion word belongs to a different company that happens to share a common
// English word (e.g. "Target Hospitality" is not Target Corporation).
type ReferenceEntry struct {
	Key        string
	Ticker     string
	Exclusions []string
}

// ReferenceTable is the curated name-to-ticker mapping injected into the
// validator. Keeping it injected rather than a package global lets tests use
// fixture tables.
type ReferenceTable struct {
	entries []ReferenceEntry
}

// NewReferenceTable normalizes keys and exclusions once at construction.
func NewReferenceTable(entries []ReferenceEntry) *ReferenceTable {
	normalized := make([]ReferenceEntry, 0, len(entries))
	for _, e := range entries {
		entry := ReferenceEntry{
			Key:    platformstrings.NormalizeKey(e.Key),
			Ticker: strings.ToUpper(e.Ticker),
		}
		for _, x := range e.Exclusions {
			entry.Exclusions = append(entry.Exclusions, platformstrings.NormalizeKey(x))
		}
		normalized = append(normalized, entry)
	}
	return &ReferenceTable{entries: normalized}
}

// Lookup returns the canonical ticker for a company name. Matching is
// substring-symmetric on normalized strings: the name may contain the key or
// the key may contain the name. An exclusion word anywhere in the name vetoes
// the entry.
func (t *ReferenceTable) Lookup(name string) (string, bool) {
	normalized := platformstrings.NormalizeKey(name)
	if normalized == "" {
		return "", false
	}
	for _, entry := range t.entries {
		if !strings.Contains(normalized, entry.Key) && !strings.Contains(entry.Key, normalized) {
			continue
		}
		if entry.excluded(normalized) {
			continue
		}
		return entry.Ticker, true
	}
	return "", false
}

func (e ReferenceEntry) excluded(normalizedName string) bool {
	for _, x := range e.Exclusions {
		if strings.Contains(normalizedName, x) {
			return true
		}
	}
	return false
}

// DefaultReferenceTable covers the large-cap names seen most often in
// uncoordinated imports. Curate here; the validator never mutates it.
func DefaultReferenceTable() *ReferenceTable {
	return NewReferenceTable([]ReferenceEntry{
		{Key: "apple", Ticker: "AAPL"},
		{Key: "alphabet", Ticker: "GOOGL"},
		{Key: "google", Ticker: "GOOGL"},
		{Key: "microsoft", Ticker: "MSFT"},
		{Key: "amazon", Ticker: "AMZN"},
		{Key: "meta platforms", Ticker: "META"},
		{Key: "nvidia", Ticker: "NVDA"},
		{Key: "tesla", Ticker: "TSLA"},
		{Key: "walmart", Ticker: "WMT"},
		// "Target Hospitality" shares a word with the retailer but is a
		// different listed company; the exclusion keeps the generic key from
		// swallowing it.
		{Key: "target", Ticker: "TGT", Exclusions: []string{"hospitality"}},
		{Key: "boeing", Ticker: "BA"},
		{Key: "lockheed", Ticker: "LMT"},
		{Key: "raytheon", Ticker: "RTX"},
		{Key: "caterpillar", Ticker: "CAT"},
		{Key: "intel", Ticker: "INTC"},
		{Key: "coca cola", Ticker: "KO"},
		{Key: "pepsico", Ticker: "PEP"},
		{Key: "mcdonalds", Ticker: "MCD"},
		{Key: "starbucks", Ticker: "SBUX"},
	})
}
