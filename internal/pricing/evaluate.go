package pricing

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/bazaar-backend/pkg/enums"
)

// evaluate decides whether offer applies to the priced lines and returns the discount.
func evaluate(offer Offer, lines Lines, val valuation, subtotal decimal.Decimal) (enums.OfferState, decimal.Decimal) {
	switch o := offer.(type) {
	case ComboOffer:
		return evaluateCombo(o, lines, val)
	case ThresholdOffer:
		return evaluateThreshold(o, subtotal)
	default:
		return enums.OfferStateNotApplicable, decimal.Zero
	}
}

func evaluateCombo(offer ComboOffer, lines Lines, val valuation) (enums.OfferState, decimal.Decimal) {
	if offer.ListingCount() == 0 {
		return enums.OfferStateNotApplicable, decimal.Zero
	}

	bundle := decimal.Zero
	for _, kind := range enums.ListingTypes() {
		required := offer.Listings[kind]
		if len(required) == 0 {
			continue
		}
		present := lineValues(kind, lines, val)
		for _, id := range required {
			if _, ok := present[id]; !ok {
				return enums.OfferStateNotApplicable, decimal.Zero
			}
		}
		for _, id := range uniqueIDs(required) {
			bundle = bundle.Add(present[id])
		}
	}

	if offer.MinValue.Valid && bundle.LessThan(offer.MinValue.Decimal) {
		return enums.OfferStateNotApplicable, decimal.Zero
	}
	return enums.OfferStateApplicable, discountOf(offer.Terms, bundle)
}

func evaluateThreshold(offer ThresholdOffer, subtotal decimal.Decimal) (enums.OfferState, decimal.Decimal) {
	minValue := decimal.Zero
	if offer.MinValue.Valid {
		minValue = offer.MinValue.Decimal
	}
	if subtotal.LessThan(minValue) {
		return enums.OfferStateNotApplicable, decimal.Zero
	}
	return enums.OfferStateApplicable, discountOf(offer.Terms, subtotal)
}

// discountOf applies the percentage to base, rounds, then caps at MaxDiscount.
func discountOf(terms Terms, base decimal.Decimal) decimal.Decimal {
	discount := round(base.Mul(terms.DiscountPercent).Div(hundred))
	if terms.MaxDiscount.Valid && discount.GreaterThan(terms.MaxDiscount.Decimal) {
		discount = round(terms.MaxDiscount.Decimal)
	}
	if discount.IsNegative() {
		return decimal.Zero
	}
	return discount
}

// lineValues maps each line's reference id to its value. Services match on the base id.
func lineValues(kind enums.ListingType, lines Lines, val valuation) map[uuid.UUID]decimal.Decimal {
	out := make(map[uuid.UUID]decimal.Decimal)
	switch kind {
	case enums.ListingTypeProduct:
		for i, l := range lines.Products {
			out[l.VariantID] = out[l.VariantID].Add(val.products[i])
		}
	case enums.ListingTypeService:
		for i, l := range lines.Services {
			out[l.ServiceID] = out[l.ServiceID].Add(val.services[i])
		}
	case enums.ListingTypeEvent:
		for i, l := range lines.Events {
			out[l.TicketID] = out[l.TicketID].Add(val.events[i])
		}
	}
	return out
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
