package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/bazaar-backend/pkg/enums"
	"github.com/angelmondragon/bazaar-backend/pkg/types"
)

// Cart is the single reusable cart owned by a user, together with the last
// persisted pricing snapshot. Snapshot columns are written only by the cart service.
type Cart struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	UserID      uuid.UUID       `gorm:"column:user_id;type:uuid;not null;uniqueIndex:ux_carts_user_id"`
	OfferID     *uuid.UUID      `gorm:"column:offer_id;type:uuid"`
	PlatformFee decimal.Decimal `gorm:"column:platform_fee;type:numeric(12,2);not null"`
	ShippingFee decimal.Decimal `gorm:"column:shipping_fee;type:numeric(12,2);not null"`
	Version     int64           `gorm:"column:version;not null;default:1"`

	ProductSubtotal decimal.Decimal        `gorm:"column:product_subtotal;type:numeric(12,2);not null"`
	ServiceSubtotal decimal.Decimal        `gorm:"column:service_subtotal;type:numeric(12,2);not null"`
	EventSubtotal   decimal.Decimal        `gorm:"column:event_subtotal;type:numeric(12,2);not null"`
	Discount        decimal.Decimal        `gorm:"column:discount;type:numeric(12,2);not null"`
	Total           decimal.Decimal        `gorm:"column:total;type:numeric(12,2);not null"`
	OfferState      enums.OfferState       `gorm:"column:offer_state;not null;default:'no_offer_applied'"`
	Anomalies       types.PricingAnomalies `gorm:"column:anomalies;type:jsonb;not null;default:'[]'"`
	PricedAt        *time.Time             `gorm:"column:priced_at"`

	ProductLines []CartProductLine `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	ServiceLines []CartServiceLine `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	EventLines   []CartEventLine   `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Cart) TableName() string { return "carts" }

// IsEmpty reports whether the cart holds no lines of any kind.
func (c *Cart) IsEmpty() bool {
	return len(c.ProductLines) == 0 && len(c.ServiceLines) == 0 && len(c.EventLines) == 0
}

// CartProductLine references a product variant.
type CartProductLine struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	CartID    uuid.UUID `gorm:"column:cart_id;type:uuid;not null;uniqueIndex:ux_cart_product_lines_ref,priority:1"`
	VariantID uuid.UUID `gorm:"column:variant_id;type:uuid;not null;uniqueIndex:ux_cart_product_lines_ref,priority:2"`
	Quantity  int       `gorm:"column:quantity;not null"`
	Note      *string   `gorm:"column:note"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (CartProductLine) TableName() string { return "cart_product_lines" }

// CartServiceLine books one service plus optional add-on services. It has no quantity.
type CartServiceLine struct {
	ID                   uuid.UUID   `gorm:"column:id;type:uuid;primaryKey"`
	CartID               uuid.UUID   `gorm:"column:cart_id;type:uuid;not null;uniqueIndex:ux_cart_service_lines_ref,priority:1"`
	ServiceID            uuid.UUID   `gorm:"column:service_id;type:uuid;not null;uniqueIndex:ux_cart_service_lines_ref,priority:2"`
	AdditionalServiceIDs []uuid.UUID `gorm:"column:additional_service_ids;type:jsonb;serializer:json;not null"`
	Note                 *string     `gorm:"column:note"`
	CreatedAt            time.Time   `gorm:"column:created_at;autoCreateTime"`
}

func (CartServiceLine) TableName() string { return "cart_service_lines" }

// CartEventLine references an event ticket tier.
type CartEventLine struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	CartID    uuid.UUID `gorm:"column:cart_id;type:uuid;not null;uniqueIndex:ux_cart_event_lines_ref,priority:1"`
	TicketID  uuid.UUID `gorm:"column:ticket_id;type:uuid;not null;uniqueIndex:ux_cart_event_lines_ref,priority:2"`
	Quantity  int       `gorm:"column:quantity;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (CartEventLine) TableName() string { return "cart_event_lines" }
