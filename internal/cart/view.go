package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/bazaar-backend/internal/pricing"
	"github.com/angelmondragon/bazaar-backend/pkg/db/models"
	"github.com/angelmondragon/bazaar-backend/pkg/types"
)

// CartView is the cart payload returned to clients.
type CartView struct {
	ID        uuid.UUID    `json:"id"`
	UserID    uuid.UUID    `json:"user_id"`
	Version   int64        `json:"version"`
	Lines     LinesView    `json:"lines"`
	Snapshot  SnapshotView `json:"snapshot"`
	PricedAt  *time.Time   `json:"priced_at,omitempty"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// LinesView groups lines by kind.
type LinesView struct {
	Products []ProductLineView `json:"products"`
	Services []ServiceLineView `json:"services"`
	Events   []EventLineView   `json:"events"`
}

type ProductLineView struct {
	VariantID uuid.UUID `json:"variant_id"`
	Quantity  int       `json:"quantity"`
	Note      *string   `json:"note,omitempty"`
}

type ServiceLineView struct {
	ServiceID            uuid.UUID   `json:"service_id"`
	AdditionalServiceIDs []uuid.UUID `json:"additional_service_ids"`
	Note                 *string     `json:"note,omitempty"`
}

type EventLineView struct {
	TicketID uuid.UUID `json:"ticket_id"`
	Quantity int       `json:"quantity"`
}

// SnapshotView renders amounts as fixed two-decimal strings.
type SnapshotView struct {
	CartID          uuid.UUID     `json:"cart_id"`
	ProductSubtotal string        `json:"product_subtotal"`
	ServiceSubtotal string        `json:"service_subtotal"`
	EventSubtotal   string        `json:"event_subtotal"`
	Discount        string        `json:"discount"`
	PlatformFee     string        `json:"platform_fee"`
	ShippingFee     string        `json:"shipping_fee"`
	Total           string        `json:"total"`
	OfferID         *uuid.UUID    `json:"offer_id,omitempty"`
	OfferState      string        `json:"offer_state"`
	Anomalies       []AnomalyView `json:"anomalies"`
}

type AnomalyView struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Amount  string `json:"amount"`
}

func money(d decimal.Decimal) string {
	return d.StringFixed(pricing.MoneyPlaces)
}

// snapshotFromCart reads the persisted snapshot columns.
func snapshotFromCart(c *models.Cart) pricing.Snapshot {
	snap := pricing.Snapshot{
		ProductSubtotal: c.ProductSubtotal,
		ServiceSubtotal: c.ServiceSubtotal,
		EventSubtotal:   c.EventSubtotal,
		Discount:        c.Discount,
		PlatformFee:     c.PlatformFee,
		ShippingFee:     c.ShippingFee,
		Total:           c.Total,
		OfferState:      c.OfferState,
		Anomalies:       c.Anomalies,
	}
	if c.OfferID != nil {
		id := *c.OfferID
		snap.OfferID = &id
	}
	return snap
}

// applySnapshot copies a fresh snapshot and the draft into the cart model.
func applySnapshot(c *models.Cart, d *draft, snap pricing.Snapshot, pricedAt time.Time) {
	c.ProductLines = d.products
	c.ServiceLines = d.services
	c.EventLines = d.events
	c.OfferID = d.offerID
	c.ProductSubtotal = snap.ProductSubtotal
	c.ServiceSubtotal = snap.ServiceSubtotal
	c.EventSubtotal = snap.EventSubtotal
	c.Discount = snap.Discount
	c.Total = snap.Total
	c.OfferState = snap.OfferState
	c.Anomalies = snap.Anomalies
	c.PricedAt = &pricedAt
}

func newSnapshotView(cartID uuid.UUID, snap pricing.Snapshot) SnapshotView {
	view := SnapshotView{
		CartID:          cartID,
		ProductSubtotal: money(snap.ProductSubtotal),
		ServiceSubtotal: money(snap.ServiceSubtotal),
		EventSubtotal:   money(snap.EventSubtotal),
		Discount:        money(snap.Discount),
		PlatformFee:     money(snap.PlatformFee),
		ShippingFee:     money(snap.ShippingFee),
		Total:           money(snap.Total),
		OfferID:         snap.OfferID,
		OfferState:      snap.OfferState.String(),
		Anomalies:       anomalyViews(snap.Anomalies),
	}
	return view
}

func anomalyViews(anomalies types.PricingAnomalies) []AnomalyView {
	out := make([]AnomalyView, 0, len(anomalies))
	for _, a := range anomalies {
		out = append(out, AnomalyView{Type: a.Type.String(), Message: a.Message, Amount: money(a.Amount)})
	}
	return out
}

func newCartView(c *models.Cart) *CartView {
	view := &CartView{
		ID:        c.ID,
		UserID:    c.UserID,
		Version:   c.Version,
		Snapshot:  newSnapshotView(c.ID, snapshotFromCart(c)),
		PricedAt:  c.PricedAt,
		UpdatedAt: c.UpdatedAt,
		Lines: LinesView{
			Products: make([]ProductLineView, 0, len(c.ProductLines)),
			Services: make([]ServiceLineView, 0, len(c.ServiceLines)),
			Events:   make([]EventLineView, 0, len(c.EventLines)),
		},
	}
	for _, p := range c.ProductLines {
		view.Lines.Products = append(view.Lines.Products, ProductLineView{VariantID: p.VariantID, Quantity: p.Quantity, Note: p.Note})
	}
	for _, s := range c.ServiceLines {
		addOns := s.AdditionalServiceIDs
		if addOns == nil {
			addOns = []uuid.UUID{}
		}
		view.Lines.Services = append(view.Lines.Services, ServiceLineView{ServiceID: s.ServiceID, AdditionalServiceIDs: addOns, Note: s.Note})
	}
	for _, e := range c.EventLines {
		view.Lines.Events = append(view.Lines.Events, EventLineView{TicketID: e.TicketID, Quantity: e.Quantity})
	}
	return view
}
