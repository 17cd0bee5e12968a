package pricing

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/bazaar-backend/pkg/enums"
)

// Offer is either a ComboOffer or a ThresholdOffer.
type Offer interface {
	OfferID() uuid.UUID
	OfferTerms() Terms
	isOffer()
}

// Terms are the discount fields shared by every offer type.
type Terms struct {
	DiscountPercent decimal.Decimal
	MinValue        decimal.NullDecimal
	MaxDiscount     decimal.NullDecimal
}

// ComboOffer applies only when every listed id is present in the cart.
type ComboOffer struct {
	ID uuid.UUID
	Terms
	Listings map[enums.ListingType][]uuid.UUID
}

func (o ComboOffer) OfferID() uuid.UUID { return o.ID }
func (o ComboOffer) OfferTerms() Terms  { return o.Terms }
func (ComboOffer) isOffer()             {}

// ListingCount returns the number of required listings across categories.
func (o ComboOffer) ListingCount() int {
	n := 0
	for _, ids := range o.Listings {
		n += len(ids)
	}
	return n
}

// ThresholdOffer applies once the cart's pre-discount subtotal reaches MinValue.
type ThresholdOffer struct {
	ID uuid.UUID
	Terms
}

func (o ThresholdOffer) OfferID() uuid.UUID { return o.ID }
func (o ThresholdOffer) OfferTerms() Terms  { return o.Terms }
func (ThresholdOffer) isOffer()             {}
