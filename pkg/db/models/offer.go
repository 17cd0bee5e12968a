package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/bazaar-backend/pkg/enums"
)

// Offer is an immutable promotion a buyer can attach to a cart.
type Offer struct {
	ID              uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	StoreID         *uuid.UUID          `gorm:"column:store_id;type:uuid"`
	Name            string              `gorm:"column:name;not null"`
	Type            enums.OfferType     `gorm:"column:offer_type;not null"`
	DiscountPercent decimal.Decimal     `gorm:"column:discount_percent;type:numeric(5,2);not null"`
	MinValue        decimal.NullDecimal `gorm:"column:min_value;type:numeric(12,2)"`
	MaxDiscount     decimal.NullDecimal `gorm:"column:max_discount;type:numeric(12,2)"`
	Listings        []OfferListing      `gorm:"foreignKey:OfferID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time           `gorm:"column:created_at;autoCreateTime"`
}

func (Offer) TableName() string { return "offers" }

// OfferListing is one required listing of a combo offer.
type OfferListing struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	OfferID     uuid.UUID         `gorm:"column:offer_id;type:uuid;not null"`
	ListingType enums.ListingType `gorm:"column:listing_type;not null"`
	ListingID   uuid.UUID         `gorm:"column:listing_id;type:uuid;not null"`
}

func (OfferListing) TableName() string { return "offer_listings" }
