package screening

import (
	"fmt"

	"tenet/internal/registry/models"
)

// ratioCeilings are the configured maxima for the religious-compliance
// financial screen.
type ratioCeilings struct {
	debtToAssets        float64
	cashToAssets        float64
	receivablesToMarket float64
}

// ratioCheck is the outcome of one financial ratio against its ceiling.
// MissingData means a figure or denominator was unknown; that counts as a
// failure — unknown financial health never passes.
type ratioCheck struct {
	Name        string
	Value       float64
	Max         float64
	Passed      bool
	MissingData bool
}

func (r ratioCheck) reason() string {
	if r.MissingData {
		return fmt.Sprintf("%s: missing_data", r.Name)
	}
	return fmt.Sprintf("%s %.3f exceeds ceiling %.2f", r.Name, r.Value, r.Max)
}

// screenRatios evaluates the three ratios against the latest financials
// snapshot. A nil snapshot fails all three as missing data.
func screenRatios(f *models.Financials, ceilings ratioCeilings) []ratioCheck {
	if f == nil {
		return []ratioCheck{
			{Name: "debt_to_assets", Max: ceilings.debtToAssets, MissingData: true},
			{Name: "cash_to_assets", Max: ceilings.cashToAssets, MissingData: true},
			{Name: "receivables_to_market_cap", Max: ceilings.receivablesToMarket, MissingData: true},
		}
	}
	return []ratioCheck{
		ratioOf("debt_to_assets", f.TotalDebt, f.TotalAssets, ceilings.debtToAssets),
		ratioOf("cash_to_assets", f.CashSecurities, f.TotalAssets, ceilings.cashToAssets),
		ratioOf("receivables_to_market_cap", f.Receivables, f.MarketCap, ceilings.receivablesToMarket),
	}
}

func ratioOf(name string, numerator, denominator *float64, max float64) ratioCheck {
	check := ratioCheck{Name: name, Max: max}
	if numerator == nil || denominator == nil || *denominator == 0 {
		check.MissingData = true
		return check
	}
	check.Value = *numerator / *denominator
	check.Passed = check.Value <= max
	return check
}
