package pricing

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/bazaar-backend/pkg/enums"
)

var (
	// ErrReferenceNotFound is returned when a line or offer points at a missing catalog entity.
	ErrReferenceNotFound = errors.New("reference not found")
	// ErrInvalidLine is returned for lines that can never be priced (non-positive quantity).
	ErrInvalidLine = errors.New("invalid line")
)

// ReferenceError names the unresolved reference. It unwraps to ErrReferenceNotFound.
type ReferenceError struct {
	Kind string
	ID   uuid.UUID
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

func (e *ReferenceError) Unwrap() error {
	return ErrReferenceNotFound
}

// NewReferenceError builds a ReferenceError for a listing kind.
func NewReferenceError(kind enums.ListingType, id uuid.UUID) error {
	return &ReferenceError{Kind: kind.String(), ID: id}
}

// ProductVariantInfo is the priced view of a product variant. Price already has
// any catalog discount applied.
type ProductVariantInfo struct {
	Price             decimal.Decimal
	QuantityAvailable int
}

// ServiceInfo is the priced view of a service.
type ServiceInfo struct {
	Price decimal.Decimal
}

// EventTicketInfo is the priced view of an event ticket tier.
type EventTicketInfo struct {
	Price             decimal.Decimal
	QuantityAvailable int
}

// Catalog resolves listing references to current prices. Implementations
// return an error wrapping ErrReferenceNotFound for unknown ids.
type Catalog interface {
	ResolveProductVariant(ctx context.Context, id uuid.UUID) (ProductVariantInfo, error)
	ResolveService(ctx context.Context, id uuid.UUID) (ServiceInfo, error)
	ResolveEventTicket(ctx context.Context, id uuid.UUID) (EventTicketInfo, error)
}

// OfferResolver loads an offer by id. Unknown ids wrap ErrReferenceNotFound.
type OfferResolver interface {
	ResolveOffer(ctx context.Context, id uuid.UUID) (Offer, error)
}
