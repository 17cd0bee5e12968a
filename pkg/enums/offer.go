package enums

import "fmt"

// OfferType discriminates how an offer decides eligibility.
type OfferType string

const (
	OfferTypeCombo     OfferType = "combo"
	OfferTypeThreshold OfferType = "threshold"
)

var validOfferTypes = []OfferType{
	OfferTypeCombo,
	OfferTypeThreshold,
}

// String implements fmt.Stringer.
func (o OfferType) String() string {
	return string(o)
}

// IsValid reports whether the value is a known OfferType.
func (o OfferType) IsValid() bool {
	for _, candidate := range validOfferTypes {
		if candidate == o {
			return true
		}
	}
	return false
}

// ParseOfferType converts raw input into an OfferType.
func ParseOfferType(value string) (OfferType, error) {
	for _, candidate := range validOfferTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid offer type %q", value)
}

// OfferState is the outcome of evaluating the applied offer during one pricing run.
type OfferState string

const (
	OfferStateNone          OfferState = "no_offer_applied"
	OfferStateApplicable    OfferState = "applicable"
	OfferStateNotApplicable OfferState = "not_applicable"
)

var validOfferStates = []OfferState{
	OfferStateNone,
	OfferStateApplicable,
	OfferStateNotApplicable,
}

// String implements fmt.Stringer.
func (o OfferState) String() string {
	return string(o)
}

// IsValid reports whether the value is a known OfferState.
func (o OfferState) IsValid() bool {
	for _, candidate := range validOfferStates {
		if candidate == o {
			return true
		}
	}
	return false
}

// ParseOfferState converts raw input into an OfferState.
func ParseOfferState(value string) (OfferState, error) {
	for _, candidate := range validOfferStates {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid offer state %q", value)
}
