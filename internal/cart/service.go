package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/bazaar-backend/internal/pricing"
	"github.com/angelmondragon/bazaar-backend/internal/repo"
	dbpkg "github.com/angelmondragon/bazaar-backend/pkg/db"
	"github.com/angelmondragon/bazaar-backend/pkg/db/models"
	"github.com/angelmondragon/bazaar-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/bazaar-backend/pkg/errors"
	"github.com/angelmondragon/bazaar-backend/pkg/logger"
	"github.com/angelmondragon/bazaar-backend/pkg/metrics"
	"github.com/angelmondragon/bazaar-backend/pkg/outbox"
	"github.com/angelmondragon/bazaar-backend/pkg/outbox/payloads"
)

const (
	outcomeOK                = "ok"
	outcomeInvalid           = "invalid"
	outcomeNotFound          = "not_found"
	outcomeReferenceNotFound = "reference_not_found"
	outcomeConflict          = "conflict"
	outcomeError             = "error"
)

// Service exposes cart mutation and pricing reads. Every mutation reprices the
// whole cart before it is persisted.
type Service interface {
	Mutate(ctx context.Context, userID uuid.UUID, op Operation) (*CartView, error)
	MutateCart(ctx context.Context, cartID uuid.UUID, op Operation) (pricing.Snapshot, error)
	GetCart(ctx context.Context, userID uuid.UUID) (*CartView, error)
	GetSnapshot(ctx context.Context, cartID uuid.UUID) (*CartView, error)
	Recompute(ctx context.Context, cartID uuid.UUID) (*CartView, error)
	ClearForOrder(ctx context.Context, cartID uuid.UUID, orderReference string) (*CartView, error)
	DeleteCart(ctx context.Context, cartID uuid.UUID) error
}

// ServiceParams wires the cart service.
type ServiceParams struct {
	Repository CartRepository
	Tx         txRunner
	Engine     pricer
	Catalog    pricing.Catalog
	Outbox     eventEmitter
	Locker     Locker
	Metrics    *metrics.PricingMetrics
	Logger     *logger.Logger
	Fees       pricing.Fees
	Now        func() time.Time
}

type service struct {
	repo    CartRepository
	tx      txRunner
	engine  pricer
	catalog pricing.Catalog
	outbox  eventEmitter
	locker  Locker
	metrics *metrics.PricingMetrics
	logg    *logger.Logger
	fees    pricing.Fees
	now     func() time.Time
}

// NewService builds a cart service. Locker, Metrics and Now are optional.
func NewService(params ServiceParams) (Service, error) {
	if params.Repository == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Engine == nil {
		return nil, fmt.Errorf("pricing engine required")
	}
	if params.Catalog == nil {
		return nil, fmt.Errorf("catalog required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Fees.Platform.IsNegative() || params.Fees.Shipping.IsNegative() {
		return nil, fmt.Errorf("fees cannot be negative")
	}
	locker := params.Locker
	if locker == nil {
		locker = NoopLocker{}
	}
	now := params.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &service{
		repo:    params.Repository,
		tx:      params.Tx,
		engine:  params.Engine,
		catalog: params.Catalog,
		outbox:  params.Outbox,
		locker:  locker,
		metrics: params.Metrics,
		logg:    params.Logger,
		fees:    params.Fees,
		now:     now,
	}, nil
}

// Mutate applies op to the user's cart, creating the cart on the first AddLine.
func (s *service) Mutate(ctx context.Context, userID uuid.UUID, op Operation) (*CartView, error) {
	ctx = s.logg.WithUserID(ctx, userID.String())
	cart, err := s.run(ctx, userID, op, func(ctx context.Context) (*models.Cart, error) {
		cart, err := s.repo.FindByUser(ctx, userID)
		if err == nil {
			return cart, nil
		}
		if repo.IsNotFound(err) && op.Name() == enums.CartOperationAddLine {
			return s.newCart(userID), nil
		}
		return nil, err
	})
	if err != nil {
		return nil, err
	}
	return newCartView(cart), nil
}

// MutateCart applies op to an existing cart addressed by id.
func (s *service) MutateCart(ctx context.Context, cartID uuid.UUID, op Operation) (pricing.Snapshot, error) {
	ctx = s.logg.WithCartID(ctx, cartID.String())
	userID, err := s.owner(ctx, cartID)
	if err != nil {
		s.metrics.IncMutation(op.Name().String(), outcomeFor(err))
		return pricing.Snapshot{}, err
	}
	cart, err := s.run(ctx, userID, op, func(ctx context.Context) (*models.Cart, error) {
		return s.repo.FindByID(ctx, cartID)
	})
	if err != nil {
		return pricing.Snapshot{}, err
	}
	return snapshotFromCart(cart), nil
}

func (s *service) GetCart(ctx context.Context, userID uuid.UUID) (*CartView, error) {
	cart, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		return nil, s.loadError(err)
	}
	return newCartView(cart), nil
}

// GetSnapshot returns the persisted snapshot. It is fresh because every mutation reprices.
func (s *service) GetSnapshot(ctx context.Context, cartID uuid.UUID) (*CartView, error) {
	cart, err := s.repo.FindByID(ctx, cartID)
	if err != nil {
		return nil, s.loadError(err)
	}
	return newCartView(cart), nil
}

// Recompute reprices the cart without changing lines or offer.
func (s *service) Recompute(ctx context.Context, cartID uuid.UUID) (*CartView, error) {
	ctx = s.logg.WithCartID(ctx, cartID.String())
	userID, err := s.owner(ctx, cartID)
	if err != nil {
		s.metrics.IncMutation(enums.CartOperationRecompute.String(), outcomeFor(err))
		return nil, err
	}
	cart, err := s.run(ctx, userID, recompute{}, func(ctx context.Context) (*models.Cart, error) {
		return s.repo.FindByID(ctx, cartID)
	})
	if err != nil {
		return nil, err
	}
	return newCartView(cart), nil
}

// ClearForOrder empties the cart after checkout consumed it and returns the cart as
// it was consumed: its lines and last snapshot. The cart row survives.
func (s *service) ClearForOrder(ctx context.Context, cartID uuid.UUID, orderReference string) (*CartView, error) {
	ctx = s.logg.WithCartID(ctx, cartID.String())
	userID, err := s.owner(ctx, cartID)
	if err != nil {
		s.metrics.IncMutation(enums.CartOperationClear.String(), outcomeFor(err))
		return nil, err
	}
	op := clearCart{orderReference: orderReference, consumed: &CartView{}}
	_, err = s.run(ctx, userID, op, func(ctx context.Context) (*models.Cart, error) {
		cart, err := s.repo.FindByID(ctx, cartID)
		if err != nil {
			return nil, err
		}
		*op.consumed = *newCartView(cart)
		return cart, nil
	})
	if err != nil {
		return nil, err
	}
	return op.consumed, nil
}

// DeleteCart hard-deletes the cart and its lines.
func (s *service) DeleteCart(ctx context.Context, cartID uuid.UUID) error {
	ctx = s.logg.WithCartID(ctx, cartID.String())
	userID, err := s.owner(ctx, cartID)
	if err != nil {
		return err
	}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Delete(ctx, cartID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete cart")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventCartDeleted,
			AggregateType: enums.AggregateCart,
			AggregateID:   cartID,
			Data:          payloads.CartDeletedEvent{CartID: cartID, UserID: userID},
		})
	})
	if err != nil {
		return err
	}
	s.logg.Info(ctx, "cart deleted")
	return nil
}

// run is the load, apply, price, save pipeline shared by every mutation.
func (s *service) run(ctx context.Context, userID uuid.UUID, op Operation, load func(context.Context) (*models.Cart, error)) (cart *models.Cart, err error) {
	opName := op.Name().String()
	ctx = s.logg.WithField(ctx, "operation", opName)
	defer func() {
		s.metrics.IncMutation(opName, outcomeFor(err))
		if err != nil && !pkgerrors.HasCode(err, pkgerrors.CodeValidation) && !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "cart mutation failed")
		}
	}()

	if err := op.Validate(); err != nil {
		return nil, err
	}

	release, err := s.locker.Lock(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrLockHeld) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "cart is being modified, retry")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acquire cart lock")
	}
	defer func() {
		if relErr := release(context.WithoutCancel(ctx)); relErr != nil {
			s.logg.Error(ctx, "release cart lock", relErr)
		}
	}()

	cart, err = load(ctx)
	if err != nil {
		return nil, s.loadError(err)
	}
	isNew := cart.Version == 0
	d := draftFromCart(cart)

	touched, err := op.apply(d)
	if err != nil {
		return nil, err
	}
	if touched != nil {
		if err := s.checkAvailability(ctx, touched); err != nil {
			return nil, err
		}
	}

	started := time.Now()
	snap, err := s.engine.Price(ctx, pricing.Input{
		Lines:   d.pricingLines(),
		OfferID: d.offerID,
		Fees:    pricing.Fees{Platform: cart.PlatformFee, Shipping: cart.ShippingFee},
	})
	s.metrics.ObserveRecompute(opName, time.Since(started))
	if err != nil {
		return nil, mapPricingError(err)
	}

	applySnapshot(cart, d, snap, s.now())
	if err := s.persist(ctx, cart, isNew, op, userID); err != nil {
		return nil, err
	}

	s.observe(ctx, cart, snap, d.lineCount())
	return cart, nil
}

func (s *service) persist(ctx context.Context, cart *models.Cart, isNew bool, op Operation, userID uuid.UUID) error {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if isNew {
			cart.Version = 1
			if err := repo.Create(ctx, cart); err != nil {
				if dbpkg.IsUniqueViolation(err, "") {
					return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "cart was created concurrently, retry")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cart")
			}
		} else {
			if err := repo.SaveVersioned(ctx, cart); err != nil {
				if errors.Is(err, ErrVersionConflict) {
					return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "cart changed concurrently, retry")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart")
			}
		}
		if err := repo.ReplaceLines(ctx, cart); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart lines")
		}
		return s.outbox.Emit(ctx, tx, s.eventFor(cart, op, userID))
	})
	if dbpkg.IsSerializationFailure(err) {
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "cart transaction aborted, retry")
	}
	return err
}

func (s *service) eventFor(cart *models.Cart, op Operation, userID uuid.UUID) outbox.DomainEvent {
	event := outbox.DomainEvent{
		AggregateType: enums.AggregateCart,
		AggregateID:   cart.ID,
	}
	if clr, ok := op.(clearCart); ok {
		event.EventType = enums.EventCartCleared
		event.Data = payloads.CartClearedEvent{
			CartID:         cart.ID,
			UserID:         userID,
			Version:        cart.Version,
			OrderReference: clr.orderReference,
			ClearedTotal:   clr.consumedTotal(),
		}
		return event
	}
	if op.Name() != enums.CartOperationRecompute {
		event.Actor = &outbox.ActorRef{UserID: userID, Role: enums.ActorRoleBuyer.String()}
	}
	event.EventType = enums.EventCartRepriced
	event.Data = payloads.CartRepricedEvent{
		CartID:          cart.ID,
		UserID:          userID,
		Version:         cart.Version,
		Operation:       op.Name(),
		OfferID:         cart.OfferID,
		OfferState:      cart.OfferState,
		ProductSubtotal: money(cart.ProductSubtotal),
		ServiceSubtotal: money(cart.ServiceSubtotal),
		EventSubtotal:   money(cart.EventSubtotal),
		Discount:        money(cart.Discount),
		PlatformFee:     money(cart.PlatformFee),
		ShippingFee:     money(cart.ShippingFee),
		Total:           money(cart.Total),
		LineCount:       len(cart.ProductLines) + len(cart.ServiceLines) + len(cart.EventLines),
		Anomalies:       cart.Anomalies,
	}
	return event
}

func (s *service) observe(ctx context.Context, cart *models.Cart, snap pricing.Snapshot, lines int) {
	s.metrics.IncOfferState(snap.OfferState.String())
	for _, anomaly := range snap.Anomalies {
		s.metrics.IncAnomaly(anomaly.Type.String())
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
			"anomaly_type":   anomaly.Type,
			"anomaly_amount": anomaly.Amount.StringFixed(pricing.MoneyPlaces),
			"offer_id":       offerIDString(cart.OfferID),
		}), anomaly.Message)
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"cart_id":     cart.ID.String(),
		"version":     cart.Version,
		"line_count":  lines,
		"offer_state": snap.OfferState,
		"total":       money(snap.Total),
	}), "cart repriced")
}

func (s *service) checkAvailability(ctx context.Context, line *touchedLine) error {
	var available int
	switch line.kind {
	case enums.ListingTypeProduct:
		info, err := s.catalog.ResolveProductVariant(ctx, line.refID)
		if err != nil {
			return mapPricingError(err)
		}
		available = info.QuantityAvailable
	case enums.ListingTypeEvent:
		info, err := s.catalog.ResolveEventTicket(ctx, line.refID)
		if err != nil {
			return mapPricingError(err)
		}
		available = info.QuantityAvailable
	default:
		return nil
	}
	if line.quantity > available {
		return pkgerrors.New(pkgerrors.CodeValidation, "insufficient availability").WithDetails(map[string]any{
			"kind":      line.kind,
			"ref_id":    line.refID,
			"requested": line.quantity,
			"available": available,
		})
	}
	return nil
}

func (s *service) newCart(userID uuid.UUID) *models.Cart {
	return &models.Cart{
		ID:              uuid.New(),
		UserID:          userID,
		PlatformFee:     s.fees.Platform,
		ShippingFee:     s.fees.Shipping,
		ProductSubtotal: decimal.Zero,
		ServiceSubtotal: decimal.Zero,
		EventSubtotal:   decimal.Zero,
		Discount:        decimal.Zero,
		Total:           decimal.Zero,
		OfferState:      enums.OfferStateNone,
	}
}

func (s *service) owner(ctx context.Context, cartID uuid.UUID) (uuid.UUID, error) {
	userID, err := s.repo.FindOwner(ctx, cartID)
	if err != nil {
		return uuid.Nil, s.loadError(err)
	}
	return userID, nil
}

func (s *service) loadError(err error) error {
	if repo.IsNotFound(err) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
	}
	if pkgerrors.As(err) != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
}

// mapPricingError converts engine and catalog failures into typed API errors.
func mapPricingError(err error) error {
	var refErr *pricing.ReferenceError
	switch {
	case errors.As(err, &refErr):
		return pkgerrors.Wrap(pkgerrors.CodeReferenceNotFound, err, refErr.Error()).
			WithDetails(map[string]any{"kind": refErr.Kind, "id": refErr.ID})
	case errors.Is(err, pricing.ErrReferenceNotFound):
		return pkgerrors.Wrap(pkgerrors.CodeReferenceNotFound, err, "reference not found")
	case errors.Is(err, pricing.ErrInvalidLine):
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cart line")
	case pkgerrors.As(err) != nil:
		return err
	default:
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "price cart")
	}
}

func outcomeFor(err error) string {
	if err == nil {
		return outcomeOK
	}
	typed := pkgerrors.As(err)
	if typed == nil {
		return outcomeError
	}
	switch typed.Code() {
	case pkgerrors.CodeValidation:
		return outcomeInvalid
	case pkgerrors.CodeNotFound:
		return outcomeNotFound
	case pkgerrors.CodeReferenceNotFound:
		return outcomeReferenceNotFound
	case pkgerrors.CodeConflict:
		return outcomeConflict
	default:
		return outcomeError
	}
}

func offerIDString(id *uuid.UUID) string {
	if id == nil {
		return ""
	}
	return id.String()
}

// recompute reprices without touching lines.
type recompute struct{}

func (recompute) Name() enums.CartOperation { return enums.CartOperationRecompute }

func (recompute) Validate() error { return nil }

func (recompute) apply(*draft) (*touchedLine, error) { return nil, nil }

// clearCart drops every line and the offer. consumed is filled with the cart as
// loaded, before the clear is applied.
type clearCart struct {
	orderReference string
	consumed       *CartView
}

func (c clearCart) consumedTotal() string {
	if c.consumed == nil {
		return ""
	}
	return c.consumed.Snapshot.Total
}

func (clearCart) Name() enums.CartOperation { return enums.CartOperationClear }

func (clearCart) Validate() error { return nil }

func (clearCart) apply(d *draft) (*touchedLine, error) {
	d.products = nil
	d.services = nil
	d.events = nil
	d.offerID = nil
	return nil, nil
}
