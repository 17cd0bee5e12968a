package offers

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/bazaar-backend/pkg/db/models"
)

// OfferDTO is the offer payload returned to clients.
type OfferDTO struct {
	ID              uuid.UUID    `json:"id"`
	StoreID         *uuid.UUID   `json:"store_id,omitempty"`
	Name            string       `json:"name"`
	Type            string       `json:"type"`
	DiscountPercent string       `json:"discount_percent"`
	MinValue        *string      `json:"min_value,omitempty"`
	MaxDiscount     *string      `json:"max_discount,omitempty"`
	Listings        []ListingDTO `json:"listings"`
	CreatedAt       time.Time    `json:"created_at"`
}

// ListingDTO is one combo requirement.
type ListingDTO struct {
	Type string    `json:"type"`
	ID   uuid.UUID `json:"id"`
}

func mapOfferDTO(offer *models.Offer) *OfferDTO {
	dto := &OfferDTO{
		ID:              offer.ID,
		StoreID:         offer.StoreID,
		Name:            offer.Name,
		Type:            offer.Type.String(),
		DiscountPercent: offer.DiscountPercent.StringFixed(2),
		Listings:        make([]ListingDTO, 0, len(offer.Listings)),
		CreatedAt:       offer.CreatedAt,
	}
	if offer.MinValue.Valid {
		v := offer.MinValue.Decimal.StringFixed(2)
		dto.MinValue = &v
	}
	if offer.MaxDiscount.Valid {
		v := offer.MaxDiscount.Decimal.StringFixed(2)
		dto.MaxDiscount = &v
	}
	for _, l := range offer.Listings {
		dto.Listings = append(dto.Listings, ListingDTO{Type: l.ListingType.String(), ID: l.ListingID})
	}
	return dto
}
