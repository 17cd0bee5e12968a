package offers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/bazaar-backend/api/responses"
	"github.com/angelmondragon/bazaar-backend/api/validators"
	offersvc "github.com/angelmondragon/bazaar-backend/internal/offers"
	"github.com/angelmondragon/bazaar-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/bazaar-backend/pkg/errors"
	"github.com/angelmondragon/bazaar-backend/pkg/logger"
)

type createOfferRequest struct {
	StoreID         *uuid.UUID       `json:"store_id,omitempty"`
	Name            string           `json:"name" validate:"required,max=200"`
	Type            string           `json:"type" validate:"required,offer_type"`
	DiscountPercent string           `json:"discount_percent" validate:"required,decimal"`
	MinValue        *string          `json:"min_value,omitempty" validate:"omitempty,decimal"`
	MaxDiscount     *string          `json:"max_discount,omitempty" validate:"omitempty,decimal"`
	Listings        []listingPayload `json:"listings" validate:"dive"`
}

type listingPayload struct {
	Type string    `json:"type" validate:"required,listing_kind"`
	ID   uuid.UUID `json:"id" validate:"required"`
}

func (r createOfferRequest) toInput() offersvc.CreateOfferInput {
	input := offersvc.CreateOfferInput{
		StoreID:         r.StoreID,
		Name:            strings.TrimSpace(r.Name),
		Type:            enums.OfferType(r.Type),
		DiscountPercent: decimal.RequireFromString(r.DiscountPercent),
		MinValue:        nullDecimal(r.MinValue),
		MaxDiscount:     nullDecimal(r.MaxDiscount),
	}
	for _, l := range r.Listings {
		input.Listings = append(input.Listings, offersvc.ListingInput{Type: enums.ListingType(l.Type), ID: l.ID})
	}
	return input
}

// nullDecimal expects a value already checked by the decimal validation tag.
func nullDecimal(raw *string) decimal.NullDecimal {
	if raw == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(decimal.RequireFromString(*raw))
}

// OfferFetch returns an offer's terms and combo listings.
func OfferFetch(svc offersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "offer service unavailable"))
			return
		}

		offerID, err := validators.PathUUID(r, "offerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		offer, err := svc.GetOffer(r.Context(), offerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, offer)
	}
}

// AdminOfferCreate validates and stores a new combo or threshold offer.
func AdminOfferCreate(svc offersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "offer service unavailable"))
			return
		}

		var payload createOfferRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		offer, err := svc.CreateOffer(r.Context(), payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, offer)
	}
}
