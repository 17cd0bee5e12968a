package payloads

import (
	"github.com/google/uuid"

	"github.com/angelmondragon/bazaar-backend/pkg/enums"
	"github.com/angelmondragon/bazaar-backend/pkg/types"
)

// CartRepricedEvent is emitted after every successful cart mutation or recompute.
// Amounts are fixed two-decimal strings.
type CartRepricedEvent struct {
	CartID          uuid.UUID              `json:"cart_id"`
	UserID          uuid.UUID              `json:"user_id"`
	Version         int64                  `json:"version"`
	Operation       enums.CartOperation    `json:"operation"`
	OfferID         *uuid.UUID             `json:"offer_id,omitempty"`
	OfferState      enums.OfferState       `json:"offer_state"`
	ProductSubtotal string                 `json:"product_subtotal"`
	ServiceSubtotal string                 `json:"service_subtotal"`
	EventSubtotal   string                 `json:"event_subtotal"`
	Discount        string                 `json:"discount"`
	PlatformFee     string                 `json:"platform_fee"`
	ShippingFee     string                 `json:"shipping_fee"`
	Total           string                 `json:"total"`
	LineCount       int                    `json:"line_count"`
	Anomalies       types.PricingAnomalies `json:"anomalies,omitempty"`
}

// CartClearedEvent is emitted when checkout empties a cart after order creation.
type CartClearedEvent struct {
	CartID         uuid.UUID `json:"cart_id"`
	UserID         uuid.UUID `json:"user_id"`
	Version        int64     `json:"version"`
	OrderReference string    `json:"order_reference,omitempty"`
	ClearedTotal   string    `json:"cleared_total"`
}

// CartDeletedEvent is emitted when an admin deletes a cart outright.
type CartDeletedEvent struct {
	CartID uuid.UUID `json:"cart_id"`
	UserID uuid.UUID `json:"user_id"`
}
