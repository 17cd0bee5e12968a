package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/bazaar-backend/internal/cart"
	pkgerrors "github.com/angelmondragon/bazaar-backend/pkg/errors"
	"github.com/angelmondragon/bazaar-backend/pkg/logger"
)

const (
	staleCartJobName      = "stale-cart-reprice"
	defaultStaleCartAfter = 24 * time.Hour
	defaultStaleCartBatch = 200
)

type staleCartLister interface {
	ListStale(ctx context.Context, pricedBefore time.Time, limit int) ([]uuid.UUID, error)
}

type cartRecomputer interface {
	Recompute(ctx context.Context, cartID uuid.UUID) (*cart.CartView, error)
}

type StaleCartJobParams struct {
	Logger  *logger.Logger
	Carts   staleCartLister
	Service cartRecomputer
	// After is how old a snapshot must be before the cart is repriced.
	After time.Duration
	Batch int
}

// NewStaleCartJob reprices carts whose snapshot is older than After so catalog
// and offer changes reach idle carts.
func NewStaleCartJob(params StaleCartJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Carts == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if params.Service == nil {
		return nil, fmt.Errorf("cart service required")
	}
	after := params.After
	if after <= 0 {
		after = defaultStaleCartAfter
	}
	batch := params.Batch
	if batch <= 0 {
		batch = defaultStaleCartBatch
	}
	return &staleCartJob{
		logg:    params.Logger,
		carts:   params.Carts,
		service: params.Service,
		after:   after,
		batch:   batch,
		now:     time.Now,
	}, nil
}

type staleCartJob struct {
	logg    *logger.Logger
	carts   staleCartLister
	service cartRecomputer
	after   time.Duration
	batch   int
	now     func() time.Time
}

func (j *staleCartJob) Name() string { return staleCartJobName }

// Run reprices one batch. Carts that changed concurrently, vanished or now
// reference missing catalog entries are skipped; any other error aborts.
func (j *staleCartJob) Run(ctx context.Context) (int64, error) {
	cutoff := j.now().UTC().Add(-j.after)
	ids, err := j.carts.ListStale(ctx, cutoff, j.batch)
	if err != nil {
		return 0, fmt.Errorf("list stale carts: %w", err)
	}

	var repriced, skipped int64
	for _, id := range ids {
		if ctx.Err() != nil {
			return repriced, ctx.Err()
		}
		_, err := j.service.Recompute(ctx, id)
		switch {
		case err == nil:
			repriced++
		case pkgerrors.HasCode(err, pkgerrors.CodeConflict),
			pkgerrors.HasCode(err, pkgerrors.CodeNotFound),
			pkgerrors.HasCode(err, pkgerrors.CodeReferenceNotFound):
			skipped++
			skipCtx := j.logg.WithField(j.logg.WithCartID(ctx, id.String()), "reason", err.Error())
			j.logg.Warn(skipCtx, "stale cart skipped")
		default:
			return repriced, fmt.Errorf("reprice cart %s: %w", id, err)
		}
	}

	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"cutoff":   cutoff,
		"found":    len(ids),
		"repriced": repriced,
		"skipped":  skipped,
	}), "stale cart reprice complete")
	return repriced, nil
}
