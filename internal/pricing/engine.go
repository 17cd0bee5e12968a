package pricing

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/angelmondragon/bazaar-backend/pkg/enums"
	"github.com/angelmondragon/bazaar-backend/pkg/types"
)

const defaultLookupConcurrency = 8

var hundred = decimal.NewFromInt(100)

// Fees are the flat charges added to every cart total.
type Fees struct {
	Platform decimal.Decimal
	Shipping decimal.Decimal
}

// Input is everything a pricing run depends on.
type Input struct {
	Lines   Lines
	OfferID *uuid.UUID
	Fees    Fees
}

// Engine prices carts against a catalog and an offer store. It holds no
// per-cart state and is safe for concurrent use.
type Engine struct {
	catalog     Catalog
	offers      OfferResolver
	concurrency int
}

// NewEngine builds an Engine. concurrency bounds in-flight catalog lookups; values
// below one fall back to the default.
func NewEngine(catalog Catalog, offers OfferResolver, concurrency int) (*Engine, error) {
	if catalog == nil {
		return nil, fmt.Errorf("catalog required")
	}
	if offers == nil {
		return nil, fmt.Errorf("offer resolver required")
	}
	if concurrency < 1 {
		concurrency = defaultLookupConcurrency
	}
	return &Engine{catalog: catalog, offers: offers, concurrency: concurrency}, nil
}

// valuation holds the value of each line, indexed like the input slices.
type valuation struct {
	products []decimal.Decimal
	services []decimal.Decimal
	events   []decimal.Decimal
}

func sum(values []decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}

// Price runs a full recompute over in. Catalog and offer lookups run concurrently;
// the first failure cancels the rest and is returned unchanged.
func (e *Engine) Price(ctx context.Context, in Input) (Snapshot, error) {
	if err := validateLines(in.Lines); err != nil {
		return Snapshot{}, err
	}

	val := valuation{
		products: make([]decimal.Decimal, len(in.Lines.Products)),
		services: make([]decimal.Decimal, len(in.Lines.Services)),
		events:   make([]decimal.Decimal, len(in.Lines.Events)),
	}
	var offer Offer

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)

	if in.OfferID != nil {
		offerID := *in.OfferID
		g.Go(func() error {
			resolved, err := e.offers.ResolveOffer(gctx, offerID)
			if err != nil {
				return err
			}
			offer = resolved
			return nil
		})
	}
	for i, line := range in.Lines.Products {
		g.Go(func() error {
			info, err := e.catalog.ResolveProductVariant(gctx, line.VariantID)
			if err != nil {
				return err
			}
			val.products[i] = round(info.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
			return nil
		})
	}
	for i, line := range in.Lines.Services {
		g.Go(func() error {
			base, err := e.catalog.ResolveService(gctx, line.ServiceID)
			if err != nil {
				return err
			}
			value := base.Price
			for _, addOnID := range line.AdditionalServiceIDs {
				addOn, err := e.catalog.ResolveService(gctx, addOnID)
				if err != nil {
					return err
				}
				value = value.Add(addOn.Price)
			}
			val.services[i] = round(value)
			return nil
		})
	}
	for i, line := range in.Lines.Events {
		g.Go(func() error {
			info, err := e.catalog.ResolveEventTicket(gctx, line.TicketID)
			if err != nil {
				return err
			}
			val.events[i] = round(info.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}

	return assemble(in, val, offer), nil
}

func validateLines(lines Lines) error {
	for _, p := range lines.Products {
		if p.Quantity < 1 {
			return fmt.Errorf("%w: product %s quantity %d", ErrInvalidLine, p.VariantID, p.Quantity)
		}
	}
	for _, ev := range lines.Events {
		if ev.Quantity < 1 {
			return fmt.Errorf("%w: event %s quantity %d", ErrInvalidLine, ev.TicketID, ev.Quantity)
		}
	}
	return nil
}

func assemble(in Input, val valuation, offer Offer) Snapshot {
	snap := Snapshot{
		ProductSubtotal: round(sum(val.products)),
		ServiceSubtotal: round(sum(val.services)),
		EventSubtotal:   round(sum(val.events)),
		PlatformFee:     round(in.Fees.Platform),
		ShippingFee:     round(in.Fees.Shipping),
		Discount:        decimal.Zero,
		OfferState:      enums.OfferStateNone,
	}

	if offer != nil {
		id := offer.OfferID()
		snap.OfferID = &id
		snap.OfferState, snap.Discount = evaluate(offer, in.Lines, val, snap.Subtotal())
	}

	total := snap.Subtotal().Sub(snap.Discount).Add(snap.PlatformFee).Add(snap.ShippingFee)
	if total.IsNegative() {
		snap.Anomalies = append(snap.Anomalies, types.PricingAnomaly{
			Type:    enums.PricingAnomalyNegativeTotal,
			Message: "computed total below zero, clamped to 0.00",
			Amount:  round(total),
		})
		total = decimal.Zero
	}
	snap.Total = round(total)
	return snap
}
