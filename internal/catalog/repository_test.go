package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/bazaar-backend/internal/pricing"
	"github.com/angelmondragon/bazaar-backend/pkg/db/dbtest"
	"github.com/angelmondragon/bazaar-backend/pkg/db/models"
)

func TestEffectivePrice(t *testing.T) {
	cases := []struct {
		name, price, pct, want string
	}{
		{"no discount", "40.00", "0", "40.00"},
		{"ten percent", "19.99", "10", "17.99"},
		{"rounds half up", "0.05", "50", "0.03"},
		{"negative percent ignored", "10.00", "-5", "10.00"},
		{"over one hundred clamps to free", "10.00", "150", "0.00"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := EffectivePrice(decimal.RequireFromString(tc.price), decimal.RequireFromString(tc.pct))
			assert.Equal(t, tc.want, got.StringFixed(2))
		})
	}
}

func TestRepositoryResolvesListings(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewRepository(db)
	ctx := context.Background()

	variant := models.ProductVariant{
		ID:                uuid.New(),
		ProductID:         uuid.New(),
		StoreID:           uuid.New(),
		Name:              "Large",
		Price:             decimal.RequireFromString("50.00"),
		DiscountPercent:   decimal.RequireFromString("20"),
		QuantityAvailable: 4,
	}
	service := models.Service{
		ID:              uuid.New(),
		StoreID:         uuid.New(),
		Name:            "Setup",
		Price:           decimal.RequireFromString("30.00"),
		DiscountPercent: decimal.Zero,
	}
	ticket := models.EventTicket{
		ID:                uuid.New(),
		EventID:           uuid.New(),
		Name:              "VIP",
		Price:             decimal.RequireFromString("12.50"),
		QuantityAvailable: 100,
	}
	require.NoError(t, db.Create(&variant).Error)
	require.NoError(t, db.Create(&service).Error)
	require.NoError(t, db.Create(&ticket).Error)

	v, err := repo.ResolveProductVariant(ctx, variant.ID)
	require.NoError(t, err)
	assert.Equal(t, "40.00", v.Price.StringFixed(2))
	assert.Equal(t, 4, v.QuantityAvailable)

	s, err := repo.ResolveService(ctx, service.ID)
	require.NoError(t, err)
	assert.Equal(t, "30.00", s.Price.StringFixed(2))

	e, err := repo.ResolveEventTicket(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, "12.50", e.Price.StringFixed(2))
	assert.Equal(t, 100, e.QuantityAvailable)
}

func TestRepositoryMissingListing(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewRepository(db)
	missing := uuid.New()

	_, err := repo.ResolveProductVariant(context.Background(), missing)
	require.ErrorIs(t, err, pricing.ErrReferenceNotFound)

	var refErr *pricing.ReferenceError
	require.ErrorAs(t, err, &refErr)
	assert.Equal(t, "product", refErr.Kind)
	assert.Equal(t, missing, refErr.ID)

	_, err = repo.ResolveService(context.Background(), missing)
	require.ErrorIs(t, err, pricing.ErrReferenceNotFound)
	_, err = repo.ResolveEventTicket(context.Background(), missing)
	require.ErrorIs(t, err, pricing.ErrReferenceNotFound)
}
