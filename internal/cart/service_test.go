package cart

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/bazaar-backend/internal/catalog"
	"github.com/angelmondragon/bazaar-backend/internal/offers"
	"github.com/angelmondragon/bazaar-backend/internal/pricing"
	dbpkg "github.com/angelmondragon/bazaar-backend/pkg/db"
	"github.com/angelmondragon/bazaar-backend/pkg/db/dbtest"
	"github.com/angelmondragon/bazaar-backend/pkg/db/models"
	"github.com/angelmondragon/bazaar-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/bazaar-backend/pkg/errors"
	"github.com/angelmondragon/bazaar-backend/pkg/logger"
	"github.com/angelmondragon/bazaar-backend/pkg/outbox"
	"github.com/angelmondragon/bazaar-backend/pkg/outbox/payloads"
)

type testEnv struct {
	db     *gorm.DB
	svc    Service
	repo   *Repository
	outbox *outbox.Repository
}

type envOption func(*ServiceParams)

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()
	db := dbtest.Open(t)
	logg := logger.New(logger.Options{ServiceName: "cart-test", Level: zerolog.Disabled, Output: io.Discard})

	catalogRepo := catalog.NewRepository(db)
	engine, err := pricing.NewEngine(catalogRepo, offers.NewResolver(offers.NewRepository(db), logg), 2)
	require.NoError(t, err)

	repo := NewRepository(db)
	outboxRepo := outbox.NewRepository(db)
	params := ServiceParams{
		Repository: repo,
		Tx:         dbpkg.NewFromGorm(db),
		Engine:     engine,
		Catalog:    catalogRepo,
		Outbox:     outbox.NewService(outboxRepo, logg),
		Logger:     logg,
		Fees: pricing.Fees{
			Platform: decimal.RequireFromString("0.99"),
			Shipping: decimal.RequireFromString("2.99"),
		},
	}
	for _, opt := range opts {
		opt(&params)
	}
	svc, err := NewService(params)
	require.NoError(t, err)
	return &testEnv{db: db, svc: svc, repo: repo, outbox: outboxRepo}
}

func (e *testEnv) seedVariant(t *testing.T, price string, stock int) uuid.UUID {
	t.Helper()
	row := models.ProductVariant{
		ID:                uuid.New(),
		ProductID:         uuid.New(),
		StoreID:           uuid.New(),
		Name:              "variant",
		Price:             decimal.RequireFromString(price),
		DiscountPercent:   decimal.Zero,
		QuantityAvailable: stock,
	}
	require.NoError(t, e.db.Create(&row).Error)
	return row.ID
}

func (e *testEnv) seedService(t *testing.T, price string) uuid.UUID {
	t.Helper()
	row := models.Service{
		ID:              uuid.New(),
		StoreID:         uuid.New(),
		Name:            "service",
		Price:           decimal.RequireFromString(price),
		DiscountPercent: decimal.Zero,
	}
	require.NoError(t, e.db.Create(&row).Error)
	return row.ID
}

func (e *testEnv) seedTicket(t *testing.T, price string, stock int) uuid.UUID {
	t.Helper()
	row := models.EventTicket{
		ID:                uuid.New(),
		EventID:           uuid.New(),
		Name:              "ticket",
		Price:             decimal.RequireFromString(price),
		QuantityAvailable: stock,
	}
	require.NoError(t, e.db.Create(&row).Error)
	return row.ID
}

func (e *testEnv) seedOffer(t *testing.T, offerType enums.OfferType, pct string, minValue string, listings ...models.OfferListing) uuid.UUID {
	t.Helper()
	row := models.Offer{
		ID:              uuid.New(),
		Name:            "offer",
		Type:            offerType,
		DiscountPercent: decimal.RequireFromString(pct),
	}
	if minValue != "" {
		row.MinValue = decimal.NewNullDecimal(decimal.RequireFromString(minValue))
	}
	for _, l := range listings {
		l.ID = uuid.New()
		l.OfferID = row.ID
		row.Listings = append(row.Listings, l)
	}
	require.NoError(t, e.db.Create(&row).Error)
	return row.ID
}

func (e *testEnv) events(t *testing.T, cartID uuid.UUID) []enums.OutboxEventType {
	t.Helper()
	rows, err := e.outbox.FindByAggregate(nil, cartID)
	require.NoError(t, err)
	out := make([]enums.OutboxEventType, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.EventType)
	}
	return out
}

func addProduct(variantID uuid.UUID, qty int) AddLine {
	return AddLine{Line: pricing.ProductLine{VariantID: variantID, Quantity: qty}}
}

func requireCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed, "expected typed error, got %v", err)
	assert.Equal(t, code, typed.Code(), "error: %v", err)
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := NewService(ServiceParams{})
	require.Error(t, err)
}

func TestAddLineCreatesCartAndPrices(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := uuid.New()
	variant := env.seedVariant(t, "40.00", 10)

	view, err := env.svc.Mutate(ctx, userID, addProduct(variant, 2))
	require.NoError(t, err)

	assert.Equal(t, userID, view.UserID)
	assert.Equal(t, int64(1), view.Version)
	require.Len(t, view.Lines.Products, 1)
	assert.Equal(t, "80.00", view.Snapshot.ProductSubtotal)
	assert.Equal(t, "0.00", view.Snapshot.Discount)
	assert.Equal(t, "83.98", view.Snapshot.Total)
	assert.Equal(t, "no_offer_applied", view.Snapshot.OfferState)
	assert.Equal(t, []enums.OutboxEventType{enums.EventCartRepriced}, env.events(t, view.ID))

	stored, err := env.svc.GetCart(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, view.ID, stored.ID)
	assert.Equal(t, "83.98", stored.Snapshot.Total)
	assert.NotNil(t, stored.PricedAt)
}

func TestThresholdOfferApplied(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := uuid.New()
	variant := env.seedVariant(t, "40.00", 10)
	offerID := env.seedOffer(t, enums.OfferTypeThreshold, "10", "50")

	_, err := env.svc.Mutate(ctx, userID, addProduct(variant, 2))
	require.NoError(t, err)
	view, err := env.svc.Mutate(ctx, userID, ApplyOffer{OfferID: offerID})
	require.NoError(t, err)

	assert.Equal(t, "applicable", view.Snapshot.OfferState)
	assert.Equal(t, "8.00", view.Snapshot.Discount)
	assert.Equal(t, "75.98", view.Snapshot.Total)
	assert.Equal(t, int64(2), view.Version)

	view, err = env.svc.Mutate(ctx, userID, RemoveOffer{})
	require.NoError(t, err)
	assert.Nil(t, view.Snapshot.OfferID)
	assert.Equal(t, "83.98", view.Snapshot.Total)
}

func TestComboOfferFollowsCartContents(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := uuid.New()
	productA := env.seedVariant(t, "30.00", 10)
	serviceB := env.seedService(t, "50.00")
	offerID := env.seedOffer(t, enums.OfferTypeCombo, "10", "",
		models.OfferListing{ListingType: enums.ListingTypeProduct, ListingID: productA},
		models.OfferListing{ListingType: enums.ListingTypeService, ListingID: serviceB},
	)

	_, err := env.svc.Mutate(ctx, userID, addProduct(productA, 1))
	require.NoError(t, err)
	view, err := env.svc.Mutate(ctx, userID, ApplyOffer{OfferID: offerID})
	require.NoError(t, err)
	assert.Equal(t, "not_applicable", view.Snapshot.OfferState)
	assert.Equal(t, "0.00", view.Snapshot.Discount)
	require.NotNil(t, view.Snapshot.OfferID)
	assert.Equal(t, offerID, *view.Snapshot.OfferID)

	view, err = env.svc.Mutate(ctx, userID, AddLine{Line: pricing.ServiceLine{ServiceID: serviceB, Note: "mornings"}})
	require.NoError(t, err)
	assert.Equal(t, "applicable", view.Snapshot.OfferState)
	assert.Equal(t, "8.00", view.Snapshot.Discount)
	assert.Equal(t, "75.98", view.Snapshot.Total)
	require.Len(t, view.Lines.Services, 1)
	require.NotNil(t, view.Lines.Services[0].Note)
	assert.Equal(t, "mornings", *view.Lines.Services[0].Note)

	view, err = env.svc.Mutate(ctx, userID, RemoveLine{Kind: enums.ListingTypeService, RefID: serviceB})
	require.NoError(t, err)
	assert.Equal(t, "not_applicable", view.Snapshot.OfferState)
	assert.Equal(t, "0.00", view.Snapshot.Discount)
}

func TestRemovingLastLineKeepsFeesAndOffer(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := uuid.New()
	variant := env.seedVariant(t, "40.00", 10)
	offerID := env.seedOffer(t, enums.OfferTypeThreshold, "10", "50")

	_, err := env.svc.Mutate(ctx, userID, addProduct(variant, 2))
	require.NoError(t, err)
	_, err = env.svc.Mutate(ctx, userID, ApplyOffer{OfferID: offerID})
	require.NoError(t, err)

	view, err := env.svc.Mutate(ctx, userID, RemoveLine{Kind: enums.ListingTypeProduct, RefID: variant})
	require.NoError(t, err)
	assert.Empty(t, view.Lines.Products)
	assert.Equal(t, "0.00", view.Snapshot.ProductSubtotal)
	assert.Equal(t, "0.00", view.Snapshot.Discount)
	assert.Equal(t, "3.98", view.Snapshot.Total)
	require.NotNil(t, view.Snapshot.OfferID)
}

func TestAddLineMergesAndRejectsDuplicateService(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := uuid.New()
	variant := env.seedVariant(t, "5.00", 10)
	ticket := env.seedTicket(t, "12.50", 10)
	service := env.seedService(t, "20.00")

	_, err := env.svc.Mutate(ctx, userID, addProduct(variant, 1))
	require.NoError(t, err)
	_, err = env.svc.Mutate(ctx, userID, addProduct(variant, 2))
	require.NoError(t, err)
	_, err = env.svc.Mutate(ctx, userID, AddLine{Line: pricing.EventLine{TicketID: ticket, Quantity: 1}})
	require.NoError(t, err)
	view, err := env.svc.Mutate(ctx, userID, AddLine{Line: pricing.EventLine{TicketID: ticket, Quantity: 1}})
	require.NoError(t, err)

	require.Len(t, view.Lines.Products, 1)
	assert.Equal(t, 3, view.Lines.Products[0].Quantity)
	require.Len(t, view.Lines.Events, 1)
	assert.Equal(t, 2, view.Lines.Events[0].Quantity)
	assert.Equal(t, "15.00", view.Snapshot.ProductSubtotal)
	assert.Equal(t, "25.00", view.Snapshot.EventSubtotal)

	_, err = env.svc.Mutate(ctx, userID, AddLine{Line: pricing.ServiceLine{ServiceID: service}})
	require.NoError(t, err)
	_, err = env.svc.Mutate(ctx, userID, AddLine{Line: pricing.ServiceLine{ServiceID: service}})
	requireCode(t, err, pkgerrors.CodeValidation)
}

func TestUpdateLineChangesQuantityNoteAndAddOns(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := uuid.New()
	variant := env.seedVariant(t, "10.00", 5)
	base := env.seedService(t, "30.00")
	addOn := env.seedService(t, "7.50")

	_, err := env.svc.Mutate(ctx, userID, addProduct(variant, 1))
	require.NoError(t, err)
	_, err = env.svc.Mutate(ctx, userID, AddLine{Line: pricing.ServiceLine{ServiceID: base}})
	require.NoError(t, err)

	qty := 4
	note := "gift wrap"
	view, err := env.svc.Mutate(ctx, userID, UpdateLine{Kind: enums.ListingTypeProduct, RefID: variant, Quantity: &qty, Note: &note})
	require.NoError(t, err)
	assert.Equal(t, 4, view.Lines.Products[0].Quantity)
	require.NotNil(t, view.Lines.Products[0].Note)
	assert.Equal(t, "gift wrap", *view.Lines.Products[0].Note)
	assert.Equal(t, "40.00", view.Snapshot.ProductSubtotal)

	addOns := []uuid.UUID{addOn, addOn}
	view, err = env.svc.Mutate(ctx, userID, UpdateLine{Kind: enums.ListingTypeService, RefID: base, AdditionalServiceIDs: &addOns})
	require.NoError(t, err)
	require.Len(t, view.Lines.Services, 1)
	assert.Equal(t, []uuid.UUID{addOn}, view.Lines.Services[0].AdditionalServiceIDs)
	assert.Equal(t, "37.50", view.Snapshot.ServiceSubtotal)

	tooMany := 6
	_, err = env.svc.Mutate(ctx, userID, UpdateLine{Kind: enums.ListingTypeProduct, RefID: variant, Quantity: &tooMany})
	requireCode(t, err, pkgerrors.CodeValidation)

	_, err = env.svc.Mutate(ctx, userID, UpdateLine{Kind: enums.ListingTypeEvent, RefID: uuid.New(), Quantity: &qty})
	requireCode(t, err, pkgerrors.CodeNotFound)
}

func TestAvailabilityIsChecked(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := uuid.New()
	variant := env.seedVariant(t, "10.00", 2)

	_, err := env.svc.Mutate(ctx, userID, addProduct(variant, 3))
	requireCode(t, err, pkgerrors.CodeValidation)

	_, err = env.svc.GetCart(ctx, userID)
	requireCode(t, err, pkgerrors.CodeNotFound)
}

func TestUnknownReferencesLeaveCartUntouched(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := uuid.New()

	_, err := env.svc.Mutate(ctx, userID, AddLine{Line: pricing.ServiceLine{ServiceID: uuid.New()}})
	requireCode(t, err, pkgerrors.CodeReferenceNotFound)
	_, err = env.svc.GetCart(ctx, userID)
	requireCode(t, err, pkgerrors.CodeNotFound)

	variant := env.seedVariant(t, "10.00", 5)
	view, err := env.svc.Mutate(ctx, userID, addProduct(variant, 1))
	require.NoError(t, err)

	_, err = env.svc.Mutate(ctx, userID, ApplyOffer{OfferID: uuid.New()})
	requireCode(t, err, pkgerrors.CodeReferenceNotFound)

	after, err := env.svc.GetCart(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, view.Version, after.Version)
	assert.Nil(t, after.Snapshot.OfferID)
	assert.Len(t, env.events(t, view.ID), 1)
}

func TestMutateWithoutCartIsNotFound(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.svc.Mutate(context.Background(), uuid.New(), RemoveOffer{})
	requireCode(t, err, pkgerrors.CodeNotFound)
}

func TestInvalidOperationRejectedBeforeLoad(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.svc.Mutate(context.Background(), uuid.New(), addProduct(uuid.New(), 0))
	requireCode(t, err, pkgerrors.CodeValidation)
}

func TestNegativeTotalIsClampedAndPersisted(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := uuid.New()
	variant := env.seedVariant(t, "10.00", 5)
	offerID := env.seedOffer(t, enums.OfferTypeThreshold, "150", "")

	_, err := env.svc.Mutate(ctx, userID, addProduct(variant, 1))
	require.NoError(t, err)
	view, err := env.svc.Mutate(ctx, userID, ApplyOffer{OfferID: offerID})
	require.NoError(t, err)
	assert.Equal(t, "0.00", view.Snapshot.Total)

	stored, err := env.svc.GetSnapshot(ctx, view.ID)
	require.NoError(t, err)
	require.Len(t, stored.Snapshot.Anomalies, 1)
	assert.Equal(t, "negative_total", stored.Snapshot.Anomalies[0].Type)
	assert.Equal(t, "-1.02", stored.Snapshot.Anomalies[0].Amount)
	assert.Equal(t, "0.00", stored.Snapshot.Total)
}

func TestRecomputeIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := uuid.New()
	variant := env.seedVariant(t, "19.99", 10)
	ticket := env.seedTicket(t, "12.50", 10)

	_, err := env.svc.Mutate(ctx, userID, addProduct(variant, 3))
	require.NoError(t, err)
	view, err := env.svc.Mutate(ctx, userID, AddLine{Line: pricing.EventLine{TicketID: ticket, Quantity: 2}})
	require.NoError(t, err)

	first, err := env.svc.Recompute(ctx, view.ID)
	require.NoError(t, err)
	second, err := env.svc.Recompute(ctx, view.ID)
	require.NoError(t, err)

	assert.Equal(t, view.Snapshot, first.Snapshot)
	assert.Equal(t, first.Snapshot, second.Snapshot)
	assert.Equal(t, first.Version+1, second.Version)

	snap, err := env.svc.MutateCart(ctx, view.ID, RemoveLine{Kind: enums.ListingTypeEvent, RefID: ticket})
	require.NoError(t, err)
	assert.Equal(t, "59.97", snap.ProductSubtotal.StringFixed(2))
	assert.True(t, snap.EventSubtotal.IsZero())
}

func TestClearForOrderEmptiesButKeepsCart(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := uuid.New()
	variant := env.seedVariant(t, "40.00", 10)
	offerID := env.seedOffer(t, enums.OfferTypeThreshold, "10", "")

	view, err := env.svc.Mutate(ctx, userID, addProduct(variant, 2))
	require.NoError(t, err)
	_, err = env.svc.Mutate(ctx, userID, ApplyOffer{OfferID: offerID})
	require.NoError(t, err)

	consumed, err := env.svc.ClearForOrder(ctx, view.ID, "order-123")
	require.NoError(t, err)
	assert.Equal(t, view.ID, consumed.ID)
	require.Len(t, consumed.Lines.Products, 1)
	assert.Equal(t, variant, consumed.Lines.Products[0].VariantID)
	require.NotNil(t, consumed.Snapshot.OfferID)
	assert.Equal(t, offerID, *consumed.Snapshot.OfferID)
	assert.Equal(t, "8.00", consumed.Snapshot.Discount)
	assert.Equal(t, "75.98", consumed.Snapshot.Total)

	emptied, err := env.svc.GetCart(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, emptied.Lines.Products)
	assert.Nil(t, emptied.Snapshot.OfferID)
	assert.Equal(t, "3.98", emptied.Snapshot.Total)
	assert.Equal(t, "no_offer_applied", emptied.Snapshot.OfferState)

	assert.Equal(t, []enums.OutboxEventType{
		enums.EventCartRepriced,
		enums.EventCartRepriced,
		enums.EventCartCleared,
	}, env.events(t, view.ID))

	rows, err := env.outbox.FindByAggregate(nil, view.ID)
	require.NoError(t, err)
	envelope, err := outbox.DecodeEnvelope(rows[len(rows)-1].Payload)
	require.NoError(t, err)
	var event payloads.CartClearedEvent
	require.NoError(t, json.Unmarshal(envelope.Data, &event))
	assert.Equal(t, "order-123", event.OrderReference)
	assert.Equal(t, "75.98", event.ClearedTotal)
	assert.Equal(t, emptied.Version, event.Version)

	again, err := env.svc.Mutate(ctx, userID, addProduct(variant, 1))
	require.NoError(t, err)
	assert.Equal(t, view.ID, again.ID)
}

func TestDeleteCart(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := uuid.New()
	variant := env.seedVariant(t, "1.00", 10)

	view, err := env.svc.Mutate(ctx, userID, addProduct(variant, 1))
	require.NoError(t, err)
	require.NoError(t, env.svc.DeleteCart(ctx, view.ID))

	_, err = env.svc.GetSnapshot(ctx, view.ID)
	requireCode(t, err, pkgerrors.CodeNotFound)
	err = env.svc.DeleteCart(ctx, view.ID)
	requireCode(t, err, pkgerrors.CodeNotFound)

	var lines int64
	require.NoError(t, env.db.Model(&models.CartProductLine{}).Where("cart_id = ?", view.ID).Count(&lines).Error)
	assert.Zero(t, lines)
	events := env.events(t, view.ID)
	assert.Equal(t, enums.EventCartDeleted, events[len(events)-1])
}

// racingRepository bumps the stored version after every load, simulating a
// concurrent writer landing between read and save.
type racingRepository struct {
	CartRepository
	db *gorm.DB
}

func (r racingRepository) WithTx(tx *gorm.DB) CartRepository {
	return racingRepository{CartRepository: r.CartRepository.WithTx(tx), db: r.db}
}

func (r racingRepository) FindByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	cart, err := r.CartRepository.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := r.db.Model(&models.Cart{}).Where("id = ?", cart.ID).Update("version", gorm.Expr("version + 1")).Error; err != nil {
		return nil, err
	}
	return cart, nil
}

func TestConcurrentWriteIsConflict(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := uuid.New()
	variant := env.seedVariant(t, "10.00", 10)

	view, err := env.svc.Mutate(ctx, userID, addProduct(variant, 1))
	require.NoError(t, err)

	svc, err := NewService(ServiceParams{
		Repository: racingRepository{CartRepository: env.repo, db: env.db},
		Tx:         dbpkg.NewFromGorm(env.db),
		Engine:     mustEngine(t, env.db),
		Catalog:    catalog.NewRepository(env.db),
		Outbox:     outbox.NewService(env.outbox, nil),
		Logger:     logger.New(logger.Options{Level: zerolog.Disabled, Output: io.Discard}),
	})
	require.NoError(t, err)

	_, err = svc.Mutate(ctx, userID, addProduct(variant, 1))
	requireCode(t, err, pkgerrors.CodeConflict)
	assert.True(t, pkgerrors.MetadataFor(pkgerrors.CodeConflict).Retryable)

	stored, err := env.svc.GetCart(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Lines.Products[0].Quantity)
	assert.Len(t, env.events(t, view.ID), 1)
}

type heldLocker struct{}

func (heldLocker) Lock(context.Context, uuid.UUID) (func(context.Context) error, error) {
	return nil, ErrLockHeld
}

type brokenLocker struct{}

func (brokenLocker) Lock(context.Context, uuid.UUID) (func(context.Context) error, error) {
	return nil, errors.New("redis down")
}

func TestLockFailures(t *testing.T) {
	env := newTestEnv(t, func(p *ServiceParams) { p.Locker = heldLocker{} })
	variant := env.seedVariant(t, "10.00", 10)
	_, err := env.svc.Mutate(context.Background(), uuid.New(), addProduct(variant, 1))
	requireCode(t, err, pkgerrors.CodeConflict)

	env = newTestEnv(t, func(p *ServiceParams) { p.Locker = brokenLocker{} })
	variant = env.seedVariant(t, "10.00", 10)
	_, err = env.svc.Mutate(context.Background(), uuid.New(), addProduct(variant, 1))
	requireCode(t, err, pkgerrors.CodeDependency)
}

func mustEngine(t *testing.T, db *gorm.DB) *pricing.Engine {
	t.Helper()
	engine, err := pricing.NewEngine(catalog.NewRepository(db), offers.NewResolver(offers.NewRepository(db), nil), 1)
	require.NoError(t, err)
	return engine
}
