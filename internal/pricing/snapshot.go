package pricing

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/bazaar-backend/pkg/enums"
	"github.com/angelmondragon/bazaar-backend/pkg/types"
)

// MoneyPlaces is the fixed precision of every amount in a snapshot.
const MoneyPlaces = 2

// Snapshot is the full pricing breakdown of a cart at one point in time.
// It carries no timestamps, so pricing the same input twice yields equal snapshots.
type Snapshot struct {
	ProductSubtotal decimal.Decimal        `json:"product_subtotal"`
	ServiceSubtotal decimal.Decimal        `json:"service_subtotal"`
	EventSubtotal   decimal.Decimal        `json:"event_subtotal"`
	Discount        decimal.Decimal        `json:"discount"`
	PlatformFee     decimal.Decimal        `json:"platform_fee"`
	ShippingFee     decimal.Decimal        `json:"shipping_fee"`
	Total           decimal.Decimal        `json:"total"`
	OfferID         *uuid.UUID             `json:"offer_id,omitempty"`
	OfferState      enums.OfferState       `json:"offer_state"`
	Anomalies       types.PricingAnomalies `json:"anomalies,omitempty"`
}

// Subtotal is the pre-discount, pre-fee value of all lines.
func (s Snapshot) Subtotal() decimal.Decimal {
	return s.ProductSubtotal.Add(s.ServiceSubtotal).Add(s.EventSubtotal)
}

// HasAnomalies reports whether the snapshot carries any pricing anomaly.
func (s Snapshot) HasAnomalies() bool {
	return len(s.Anomalies) > 0
}

// Equal compares two snapshots numerically.
func (s Snapshot) Equal(other Snapshot) bool {
	if !s.ProductSubtotal.Equal(other.ProductSubtotal) ||
		!s.ServiceSubtotal.Equal(other.ServiceSubtotal) ||
		!s.EventSubtotal.Equal(other.EventSubtotal) ||
		!s.Discount.Equal(other.Discount) ||
		!s.PlatformFee.Equal(other.PlatformFee) ||
		!s.ShippingFee.Equal(other.ShippingFee) ||
		!s.Total.Equal(other.Total) {
		return false
	}
	if s.OfferState != other.OfferState {
		return false
	}
	if (s.OfferID == nil) != (other.OfferID == nil) {
		return false
	}
	if s.OfferID != nil && *s.OfferID != *other.OfferID {
		return false
	}
	if len(s.Anomalies) != len(other.Anomalies) {
		return false
	}
	for i := range s.Anomalies {
		a, b := s.Anomalies[i], other.Anomalies[i]
		if a.Type != b.Type || a.Message != b.Message || !a.Amount.Equal(b.Amount) {
			return false
		}
	}
	return true
}

func round(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}
