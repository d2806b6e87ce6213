package screening

import "strings"

// forbiddenCategory is one keyword list of the religious-compliance business
// screen. A hit fires when any keyword substring appears in the company's
// combined sector/industry/description text. An exclusion phrase suppresses
// hits from its own category only: a compliant phrase about beverages must
// not mask, say, a gambling hit elsewhere in the text.
type forbiddenCategory struct {
	name       string
	keywords   []string
	exclusions []string
}

var forbiddenCategories = []forbiddenCategory{
	{
		name: "interest_based_banking",
		keywords: []string{
			"commercial bank", "investment bank", "consumer lending",
			"mortgage finance", "credit services", "savings institution",
		},
		exclusions: []string{"islamic bank", "shariah compliant"},
	},
	{
		name: "conventional_insurance",
		keywords: []string{
			"insurance", "reinsurance", "annuity",
		},
		exclusions: []string{"takaful"},
	},
	{
		name: "alcohol",
		keywords: []string{
			"alcoholic beverage", "brewer", "brewery", "distiller", "winery",
			"wines and spirits",
		},
		exclusions: []string{"non-alcoholic beverage", "soft drink"},
	},
	{
		name: "tobacco",
		keywords: []string{
			"tobacco", "cigarette", "cigar", "vaping",
		},
	},
	{
		name: "gambling",
		keywords: []string{
			"casino", "gambling", "betting", "lottery", "sportsbook",
		},
	},
	{
		name: "adult_content",
		keywords: []string{
			"adult entertainment", "adult content", "pornograph",
		},
	},
	{
		name: "defense",
		keywords: []string{
			"aerospace and defense", "weapons", "munitions", "firearms",
			"defense contractor",
		},
		exclusions: []string{"defensive driving"},
	},
	{
		name: "pork",
		keywords: []string{
			"pork", "swine", "ham and bacon",
		},
	},
}

// keywordHit records one unsuppressed forbidden-category match.
type keywordHit struct {
	category string
	keyword  string
}

// screenKeywords runs every forbidden-category list against the lowercased
// combined business text and returns the unsuppressed hits.
func screenKeywords(text string) []keywordHit {
	var hits []keywordHit
	for _, category := range forbiddenCategories {
		hit, keyword := category.match(text)
		if hit {
			hits = append(hits, keywordHit{category: category.name, keyword: keyword})
		}
	}
	return hits
}

func (c forbiddenCategory) match(text string) (bool, string) {
	for _, exclusion := range c.exclusions {
		if strings.Contains(text, exclusion) {
			return false, ""
		}
	}
	for _, keyword := range c.keywords {
		if strings.Contains(text, keyword) {
			return true, keyword
		}
	}
	return false, ""
}
