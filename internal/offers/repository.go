package offers

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/bazaar-backend/internal/repo"
	"github.com/angelmondragon/bazaar-backend/pkg/db/models"
)

// Repository persists offers and their combo listings.
type Repository struct {
	base repo.Base
}

// NewRepository builds an offer repository tied to db.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{base: repo.NewBase(db)}
}

// WithTx returns a repository bound to tx.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{base: r.base.WithTx(tx)}
}

// FindByID loads the offer with its listings.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Offer, error) {
	var offer models.Offer
	if err := r.base.DB(ctx).
		Preload("Listings", func(db *gorm.DB) *gorm.DB {
			return db.Order("listing_type ASC, listing_id ASC")
		}).
		First(&offer, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &offer, nil
}

// Create inserts the offer and its listings.
func (r *Repository) Create(ctx context.Context, offer *models.Offer) error {
	return r.base.DB(ctx).Create(offer).Error
}
