package offers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/bazaar-backend/internal/pricing"
	"github.com/angelmondragon/bazaar-backend/internal/repo"
	"github.com/angelmondragon/bazaar-backend/pkg/db/models"
	"github.com/angelmondragon/bazaar-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/bazaar-backend/pkg/errors"
)

var maxPercent = decimal.NewFromInt(100)

// Service exposes offer lookups and administrative creation.
type Service interface {
	GetOffer(ctx context.Context, id uuid.UUID) (*OfferDTO, error)
	CreateOffer(ctx context.Context, input CreateOfferInput) (*OfferDTO, error)
}

// CreateOfferInput holds the payload to create an offer.
type CreateOfferInput struct {
	StoreID         *uuid.UUID
	Name            string
	Type            enums.OfferType
	DiscountPercent decimal.Decimal
	MinValue        decimal.NullDecimal
	MaxDiscount     decimal.NullDecimal
	Listings        []ListingInput
}

// ListingInput is a combo requirement as supplied by the caller.
type ListingInput struct {
	Type enums.ListingType
	ID   uuid.UUID
}

type offerStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Offer, error)
	Create(ctx context.Context, offer *models.Offer) error
}

type service struct {
	repo    offerStore
	catalog pricing.Catalog
}

// NewService constructs an offer service.
func NewService(repo offerStore, catalog pricing.Catalog) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("offer repository required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("catalog required")
	}
	return &service{repo: repo, catalog: catalog}, nil
}

func (s *service) GetOffer(ctx context.Context, id uuid.UUID) (*OfferDTO, error) {
	offer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "offer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load offer")
	}
	return mapOfferDTO(offer), nil
}

// CreateOffer validates terms and checks every combo listing exists before inserting.
func (s *service) CreateOffer(ctx context.Context, input CreateOfferInput) (*OfferDTO, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	for _, l := range input.Listings {
		if err := s.checkListing(ctx, l); err != nil {
			return nil, err
		}
	}

	offer := &models.Offer{
		ID:              uuid.New(),
		StoreID:         input.StoreID,
		Name:            strings.TrimSpace(input.Name),
		Type:            input.Type,
		DiscountPercent: input.DiscountPercent,
		MinValue:        input.MinValue,
		MaxDiscount:     input.MaxDiscount,
	}
	seen := make(map[ListingInput]struct{}, len(input.Listings))
	for _, l := range input.Listings {
		if _, dup := seen[l]; dup {
			continue
		}
		seen[l] = struct{}{}
		offer.Listings = append(offer.Listings, models.OfferListing{
			ID:          uuid.New(),
			OfferID:     offer.ID,
			ListingType: l.Type,
			ListingID:   l.ID,
		})
	}

	if err := s.repo.Create(ctx, offer); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create offer")
	}
	return mapOfferDTO(offer), nil
}

func (s *service) checkListing(ctx context.Context, l ListingInput) error {
	var err error
	switch l.Type {
	case enums.ListingTypeProduct:
		_, err = s.catalog.ResolveProductVariant(ctx, l.ID)
	case enums.ListingTypeService:
		_, err = s.catalog.ResolveService(ctx, l.ID)
	case enums.ListingTypeEvent:
		_, err = s.catalog.ResolveEventTicket(ctx, l.ID)
	}
	if err == nil {
		return nil
	}
	if errors.Is(err, pricing.ErrReferenceNotFound) {
		return pkgerrors.Wrap(pkgerrors.CodeReferenceNotFound, err, "offer listing not found").
			WithDetails(map[string]any{"type": l.Type, "id": l.ID})
	}
	return err
}

func (in CreateOfferInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if !in.Type.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "type must be combo or threshold")
	}
	if !in.DiscountPercent.IsPositive() || in.DiscountPercent.GreaterThan(maxPercent) {
		return pkgerrors.New(pkgerrors.CodeValidation, "discount_percent must be in (0, 100]")
	}
	if in.MinValue.Valid && in.MinValue.Decimal.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "min_value cannot be negative")
	}
	if in.MaxDiscount.Valid && !in.MaxDiscount.Decimal.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "max_discount must be positive")
	}
	switch in.Type {
	case enums.OfferTypeCombo:
		if len(in.Listings) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "combo offers require at least one listing")
		}
	case enums.OfferTypeThreshold:
		if len(in.Listings) > 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "threshold offers cannot carry listings")
		}
	}
	for _, l := range in.Listings {
		if !l.Type.IsValid() {
			return pkgerrors.New(pkgerrors.CodeValidation, "listing type must be product, service or event")
		}
		if l.ID == uuid.Nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "listing id is required")
		}
	}
	return nil
}

