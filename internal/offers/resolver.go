package offers

import (
	"context"

	"github.com/google/uuid"

	"github.com/angelmondragon/bazaar-backend/internal/pricing"
	"github.com/angelmondragon/bazaar-backend/internal/repo"
	"github.com/angelmondragon/bazaar-backend/pkg/db/models"
	"github.com/angelmondragon/bazaar-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/bazaar-backend/pkg/errors"
	"github.com/angelmondragon/bazaar-backend/pkg/logger"
)

type offerFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Offer, error)
}

// Resolver turns stored offers into pricing variants.
type Resolver struct {
	repo offerFinder
	logg *logger.Logger
}

var _ pricing.OfferResolver = (*Resolver)(nil)

// NewResolver builds a resolver. logg may be nil.
func NewResolver(repo offerFinder, logg *logger.Logger) *Resolver {
	return &Resolver{repo: repo, logg: logg}
}

// ResolveOffer loads the offer and converts it. Missing offers wrap pricing.ErrReferenceNotFound.
func (r *Resolver) ResolveOffer(ctx context.Context, id uuid.UUID) (pricing.Offer, error) {
	record, err := r.repo.FindByID(ctx, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, &pricing.ReferenceError{Kind: "offer", ID: id}
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load offer")
	}

	if record.Type == enums.OfferTypeThreshold && len(record.Listings) > 0 && r.logg != nil {
		ctx = r.logg.WithFields(ctx, map[string]any{
			"offer_id":      record.ID.String(),
			"listing_count": len(record.Listings),
		})
		r.logg.Warn(ctx, "threshold offer carries listings, evaluating as combo")
	}
	return ToPricing(record)
}

// ToPricing converts a stored offer. A threshold offer with listings is evaluated as a combo.
func ToPricing(record *models.Offer) (pricing.Offer, error) {
	terms := pricing.Terms{
		DiscountPercent: record.DiscountPercent,
		MinValue:        record.MinValue,
		MaxDiscount:     record.MaxDiscount,
	}

	switch record.Type {
	case enums.OfferTypeCombo:
		return comboFrom(record, terms), nil
	case enums.OfferTypeThreshold:
		if len(record.Listings) > 0 {
			return comboFrom(record, terms), nil
		}
		return pricing.ThresholdOffer{ID: record.ID, Terms: terms}, nil
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unsupported offer type").
			WithDetails(map[string]any{"offer_id": record.ID, "type": record.Type})
	}
}

func comboFrom(record *models.Offer, terms pricing.Terms) pricing.ComboOffer {
	listings := make(map[enums.ListingType][]uuid.UUID)
	for _, l := range record.Listings {
		listings[l.ListingType] = append(listings[l.ListingType], l.ListingID)
	}
	return pricing.ComboOffer{ID: record.ID, Terms: terms, Listings: listings}
}
