package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/bazaar-backend/internal/pricing"
	"github.com/angelmondragon/bazaar-backend/internal/repo"
	"github.com/angelmondragon/bazaar-backend/pkg/db/models"
	"github.com/angelmondragon/bazaar-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/bazaar-backend/pkg/errors"
)

var hundred = decimal.NewFromInt(100)

// Repository reads listing prices and stock. It satisfies pricing.Catalog.
type Repository struct {
	base repo.Base
}

var _ pricing.Catalog = (*Repository)(nil)

// NewRepository builds a catalog repository tied to db.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{base: repo.NewBase(db)}
}

// WithTx returns a repository bound to tx.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{base: r.base.WithTx(tx)}
}

// ResolveProductVariant returns the variant's discounted unit price and stock.
func (r *Repository) ResolveProductVariant(ctx context.Context, id uuid.UUID) (pricing.ProductVariantInfo, error) {
	var variant models.ProductVariant
	if err := r.base.DB(ctx).First(&variant, "id = ?", id).Error; err != nil {
		return pricing.ProductVariantInfo{}, lookupError(err, enums.ListingTypeProduct, id)
	}
	return pricing.ProductVariantInfo{
		Price:             EffectivePrice(variant.Price, variant.DiscountPercent),
		QuantityAvailable: variant.QuantityAvailable,
	}, nil
}

// ResolveService returns the service's discounted price.
func (r *Repository) ResolveService(ctx context.Context, id uuid.UUID) (pricing.ServiceInfo, error) {
	var service models.Service
	if err := r.base.DB(ctx).First(&service, "id = ?", id).Error; err != nil {
		return pricing.ServiceInfo{}, lookupError(err, enums.ListingTypeService, id)
	}
	return pricing.ServiceInfo{Price: EffectivePrice(service.Price, service.DiscountPercent)}, nil
}

// ResolveEventTicket returns the ticket tier price and remaining capacity.
func (r *Repository) ResolveEventTicket(ctx context.Context, id uuid.UUID) (pricing.EventTicketInfo, error) {
	var ticket models.EventTicket
	if err := r.base.DB(ctx).First(&ticket, "id = ?", id).Error; err != nil {
		return pricing.EventTicketInfo{}, lookupError(err, enums.ListingTypeEvent, id)
	}
	return pricing.EventTicketInfo{
		Price:             ticket.Price.Round(pricing.MoneyPlaces),
		QuantityAvailable: ticket.QuantityAvailable,
	}, nil
}

// EffectivePrice applies a catalog percentage discount and rounds to cents.
// Percentages outside [0, 100] are clamped.
func EffectivePrice(price, discountPercent decimal.Decimal) decimal.Decimal {
	pct := discountPercent
	if pct.IsNegative() {
		pct = decimal.Zero
	}
	if pct.GreaterThan(hundred) {
		pct = hundred
	}
	factor := hundred.Sub(pct).Div(hundred)
	return price.Mul(factor).Round(pricing.MoneyPlaces)
}

func lookupError(err error, kind enums.ListingType, id uuid.UUID) error {
	if repo.IsNotFound(err) {
		return pricing.NewReferenceError(kind, id)
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load "+kind.String()+" listing")
}
