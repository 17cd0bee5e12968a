package cart

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/bazaar-backend/internal/repo"
	"github.com/angelmondragon/bazaar-backend/pkg/db/dbtest"
	"github.com/angelmondragon/bazaar-backend/pkg/db/models"
	"github.com/angelmondragon/bazaar-backend/pkg/enums"
)

func newStoredCart(t *testing.T, r *Repository) *models.Cart {
	t.Helper()
	cart := &models.Cart{
		ID:          uuid.New(),
		UserID:      uuid.New(),
		PlatformFee: decimal.RequireFromString("0.99"),
		ShippingFee: decimal.RequireFromString("2.99"),
		Version:     1,
		Total:       decimal.RequireFromString("3.98"),
		OfferState:  enums.OfferStateNone,
	}
	require.NoError(t, r.Create(context.Background(), cart))
	return cart
}

func TestRepositorySaveVersioned(t *testing.T) {
	r := NewRepository(dbtest.Open(t))
	ctx := context.Background()
	cart := newStoredCart(t, r)

	offerID := uuid.New()
	cart.OfferID = &offerID
	cart.Total = decimal.RequireFromString("12.34")
	require.NoError(t, r.SaveVersioned(ctx, cart))
	assert.Equal(t, int64(2), cart.Version)

	stale := *cart
	stale.Version = 1
	assert.ErrorIs(t, r.SaveVersioned(ctx, &stale), ErrVersionConflict)

	loaded, err := r.FindByID(ctx, cart.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), loaded.Version)
	require.NotNil(t, loaded.OfferID)
	assert.Equal(t, offerID, *loaded.OfferID)
	assert.Equal(t, "12.34", loaded.Total.StringFixed(2))

	cart.OfferID = nil
	require.NoError(t, r.SaveVersioned(ctx, cart))
	loaded, err = r.FindByUser(ctx, cart.UserID)
	require.NoError(t, err)
	assert.Nil(t, loaded.OfferID)
}

func TestRepositoryReplaceLinesKeepsIdentity(t *testing.T) {
	r := NewRepository(dbtest.Open(t))
	ctx := context.Background()
	cart := newStoredCart(t, r)

	first := models.CartProductLine{ID: uuid.New(), VariantID: uuid.New(), Quantity: 1}
	cart.ProductLines = []models.CartProductLine{first}
	cart.ServiceLines = []models.CartServiceLine{{ID: uuid.New(), ServiceID: uuid.New()}}
	require.NoError(t, r.ReplaceLines(ctx, cart))

	loaded, err := r.FindByID(ctx, cart.ID)
	require.NoError(t, err)
	require.Len(t, loaded.ProductLines, 1)
	createdAt := loaded.ProductLines[0].CreatedAt

	second := models.CartProductLine{ID: uuid.New(), VariantID: uuid.New(), Quantity: 2}
	loaded.ProductLines = append(loaded.ProductLines, second)
	loaded.ProductLines[0].Quantity = 5
	loaded.EventLines = []models.CartEventLine{{ID: uuid.New(), TicketID: uuid.New(), Quantity: 3}}
	require.NoError(t, r.ReplaceLines(ctx, loaded))

	reloaded, err := r.FindByID(ctx, cart.ID)
	require.NoError(t, err)
	require.Len(t, reloaded.ProductLines, 2)
	assert.Equal(t, first.ID, reloaded.ProductLines[0].ID)
	assert.Equal(t, 5, reloaded.ProductLines[0].Quantity)
	assert.True(t, createdAt.Equal(reloaded.ProductLines[0].CreatedAt))
	assert.Equal(t, second.ID, reloaded.ProductLines[1].ID)
	require.Len(t, reloaded.ServiceLines, 1)
	assert.Empty(t, reloaded.ServiceLines[0].AdditionalServiceIDs)
	require.Len(t, reloaded.EventLines, 1)
}

func TestRepositoryDeleteAndOwner(t *testing.T) {
	r := NewRepository(dbtest.Open(t))
	ctx := context.Background()
	cart := newStoredCart(t, r)
	cart.EventLines = []models.CartEventLine{{ID: uuid.New(), TicketID: uuid.New(), Quantity: 1}}
	require.NoError(t, r.ReplaceLines(ctx, cart))

	owner, err := r.FindOwner(ctx, cart.ID)
	require.NoError(t, err)
	assert.Equal(t, cart.UserID, owner)

	require.NoError(t, r.Delete(ctx, cart.ID))
	_, err = r.FindByID(ctx, cart.ID)
	assert.True(t, repo.IsNotFound(err))
	_, err = r.FindOwner(ctx, cart.ID)
	assert.True(t, repo.IsNotFound(err))
}

func TestRepositoryListStale(t *testing.T) {
	db := dbtest.Open(t)
	r := NewRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	fresh := newStoredCart(t, r)
	old := newStoredCart(t, r)
	never := newStoredCart(t, r)
	require.NoError(t, db.Model(&models.Cart{}).Where("id = ?", fresh.ID).Update("priced_at", now.Add(-time.Minute)).Error)
	require.NoError(t, db.Model(&models.Cart{}).Where("id = ?", old.ID).Update("priced_at", now.Add(-48*time.Hour)).Error)

	ids, err := r.ListStale(ctx, now.Add(-24*time.Hour), 10)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{old.ID, never.ID}, ids)

	ids, err = r.ListStale(ctx, now.Add(-24*time.Hour), 1)
	require.NoError(t, err)
	assert.Len(t, ids, 1)
}
