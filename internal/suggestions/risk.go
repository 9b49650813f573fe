package suggestions

import "github.com/apostai/engine/internal/models"

// Odd buckets for risk classification. The gaps in the product's
// original table (1.35-1.40, 1.50-1.55) resolve to the lower tier.
const (
	oddLowMax    = 1.35
	oddMediumMax = 1.55
	oddHighMax   = 1.70
)

// riskFromOdd buckets a real bookmaker odd into a risk tier.
func riskFromOdd(odd float64) string {
	switch {
	case odd < oddLowMax:
		return models.RiskLow
	case odd < oddMediumMax:
		return models.RiskMedium
	case odd <= oddHighMax:
		return models.RiskHigh
	default:
		return models.RiskExtreme
	}
}

// riskFromConfidence is the fallback tiering when no market odd was
// found: a composite of the suggestion's confidence and the analysis
// strength gap, so a big favorite lowers the tier of its own markets.
func riskFromConfidence(confidence, strengthGap float64) string {
	composite := confidence + strengthGap/2
	switch {
	case composite >= 80:
		return models.RiskLow
	case composite >= 65:
		return models.RiskMedium
	case composite >= 55:
		return models.RiskHigh
	default:
		return models.RiskExtreme
	}
}
