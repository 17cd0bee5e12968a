package cart

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/bazaar-backend/internal/repo"
	"github.com/angelmondragon/bazaar-backend/pkg/db/models"
)

// ErrVersionConflict is returned by SaveVersioned when the row moved on since it was read.
var ErrVersionConflict = errors.New("cart version conflict")

// Repository persists carts, their lines and the pricing snapshot columns.
type Repository struct {
	base repo.Base
}

// NewRepository builds a cart repository tied to db.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{base: repo.NewBase(db)}
}

var _ CartRepository = (*Repository)(nil)

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) CartRepository {
	return &Repository{base: r.base.WithTx(tx)}
}

func withLines(db *gorm.DB) *gorm.DB {
	ordered := func(q *gorm.DB) *gorm.DB { return q.Order("created_at ASC, id ASC") }
	return db.
		Preload("ProductLines", ordered).
		Preload("ServiceLines", ordered).
		Preload("EventLines", ordered)
}

// FindByUser loads the user's cart with all lines.
func (r *Repository) FindByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	if err := withLines(r.base.DB(ctx)).First(&cart, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

// FindByID loads the cart with all lines.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	if err := withLines(r.base.DB(ctx)).First(&cart, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

// FindOwner returns the user id owning the cart.
func (r *Repository) FindOwner(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	var cart models.Cart
	if err := r.base.DB(ctx).Select("id", "user_id").First(&cart, "id = ?", id).Error; err != nil {
		return uuid.Nil, err
	}
	return cart.UserID, nil
}

// Create inserts the cart row only; lines are written by ReplaceLines.
func (r *Repository) Create(ctx context.Context, cart *models.Cart) error {
	return r.base.DB(ctx).Omit(clause.Associations).Create(cart).Error
}

// SaveVersioned writes the offer and snapshot columns if the stored version still
// equals cart.Version, then bumps cart.Version.
func (r *Repository) SaveVersioned(ctx context.Context, cart *models.Cart) error {
	var offerID any
	if cart.OfferID != nil {
		offerID = *cart.OfferID
	}
	now := time.Now().UTC()
	res := r.base.DB(ctx).
		Model(&models.Cart{}).
		Where("id = ? AND version = ?", cart.ID, cart.Version).
		Updates(map[string]any{
			"offer_id":         offerID,
			"product_subtotal": cart.ProductSubtotal,
			"service_subtotal": cart.ServiceSubtotal,
			"event_subtotal":   cart.EventSubtotal,
			"discount":         cart.Discount,
			"total":            cart.Total,
			"offer_state":      cart.OfferState,
			"anomalies":        cart.Anomalies,
			"priced_at":        cart.PricedAt,
			"version":          gorm.Expr("version + 1"),
			"updated_at":       now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrVersionConflict
	}
	cart.Version++
	cart.UpdatedAt = now
	return nil
}

// ReplaceLines rewrites every line of the cart. Line ids and created_at survive the rewrite.
func (r *Repository) ReplaceLines(ctx context.Context, cart *models.Cart) error {
	db := r.base.DB(ctx)
	if err := db.Where("cart_id = ?", cart.ID).Delete(&models.CartProductLine{}).Error; err != nil {
		return err
	}
	if err := db.Where("cart_id = ?", cart.ID).Delete(&models.CartServiceLine{}).Error; err != nil {
		return err
	}
	if err := db.Where("cart_id = ?", cart.ID).Delete(&models.CartEventLine{}).Error; err != nil {
		return err
	}
	for i := range cart.ProductLines {
		cart.ProductLines[i].CartID = cart.ID
	}
	for i := range cart.ServiceLines {
		cart.ServiceLines[i].CartID = cart.ID
		if cart.ServiceLines[i].AdditionalServiceIDs == nil {
			cart.ServiceLines[i].AdditionalServiceIDs = []uuid.UUID{}
		}
	}
	for i := range cart.EventLines {
		cart.EventLines[i].CartID = cart.ID
	}
	if len(cart.ProductLines) > 0 {
		if err := db.Create(&cart.ProductLines).Error; err != nil {
			return err
		}
	}
	if len(cart.ServiceLines) > 0 {
		if err := db.Create(&cart.ServiceLines).Error; err != nil {
			return err
		}
	}
	if len(cart.EventLines) > 0 {
		if err := db.Create(&cart.EventLines).Error; err != nil {
			return err
		}
	}
	return nil
}

// Delete removes the cart and its lines.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	db := r.base.DB(ctx)
	for _, model := range []any{&models.CartProductLine{}, &models.CartServiceLine{}, &models.CartEventLine{}} {
		if err := db.Where("cart_id = ?", id).Delete(model).Error; err != nil {
			return err
		}
	}
	return db.Where("id = ?", id).Delete(&models.Cart{}).Error
}

// ListStale returns ids of carts whose snapshot predates pricedBefore, oldest first.
func (r *Repository) ListStale(ctx context.Context, pricedBefore time.Time, limit int) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.base.DB(ctx).
		Model(&models.Cart{}).
		Where("priced_at IS NULL OR priced_at < ?", pricedBefore).
		Order("priced_at ASC").
		Order("id ASC").
		Limit(limit).
		Pluck("id", &ids).Error
	return ids, err
}
