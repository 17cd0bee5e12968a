package enums

import "fmt"

// PricingAnomalyType labels a non-fatal inconsistency found while pricing a cart.
type PricingAnomalyType string

const (
	PricingAnomalyNegativeTotal PricingAnomalyType = "negative_total"
)

var validPricingAnomalyTypes = []PricingAnomalyType{
	PricingAnomalyNegativeTotal,
}

// String implements fmt.Stringer.
func (p PricingAnomalyType) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PricingAnomalyType.
func (p PricingAnomalyType) IsValid() bool {
	for _, candidate := range validPricingAnomalyTypes {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePricingAnomalyType converts raw input into a PricingAnomalyType.
func ParsePricingAnomalyType(value string) (PricingAnomalyType, error) {
	for _, candidate := range validPricingAnomalyTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid pricing anomaly type %q", value)
}
