package cart

import (
	"strings"

	"github.com/google/uuid"

	"github.com/angelmondragon/bazaar-backend/internal/pricing"
	"github.com/angelmondragon/bazaar-backend/pkg/db/models"
	"github.com/angelmondragon/bazaar-backend/pkg/enums"
)

// draft is the in-memory working copy an operation mutates before pricing and save.
type draft struct {
	products []models.CartProductLine
	services []models.CartServiceLine
	events   []models.CartEventLine
	offerID  *uuid.UUID
}

func draftFromCart(c *models.Cart) *draft {
	d := &draft{
		products: append([]models.CartProductLine(nil), c.ProductLines...),
		services: make([]models.CartServiceLine, 0, len(c.ServiceLines)),
		events:   append([]models.CartEventLine(nil), c.EventLines...),
	}
	for _, s := range c.ServiceLines {
		s.AdditionalServiceIDs = append([]uuid.UUID(nil), s.AdditionalServiceIDs...)
		d.services = append(d.services, s)
	}
	if c.OfferID != nil {
		id := *c.OfferID
		d.offerID = &id
	}
	return d
}

func (d *draft) pricingLines() pricing.Lines {
	lines := pricing.Lines{
		Products: make([]pricing.ProductLine, 0, len(d.products)),
		Services: make([]pricing.ServiceLine, 0, len(d.services)),
		Events:   make([]pricing.EventLine, 0, len(d.events)),
	}
	for _, p := range d.products {
		lines.Products = append(lines.Products, pricing.ProductLine{
			VariantID: p.VariantID,
			Quantity:  p.Quantity,
			Note:      deref(p.Note),
		})
	}
	for _, s := range d.services {
		lines.Services = append(lines.Services, pricing.ServiceLine{
			ServiceID:            s.ServiceID,
			AdditionalServiceIDs: s.AdditionalServiceIDs,
			Note:                 deref(s.Note),
		})
	}
	for _, e := range d.events {
		lines.Events = append(lines.Events, pricing.EventLine{TicketID: e.TicketID, Quantity: e.Quantity})
	}
	return lines
}

func (d *draft) lineCount() int {
	return len(d.products) + len(d.services) + len(d.events)
}

func (d *draft) findProduct(id uuid.UUID) int {
	for i := range d.products {
		if d.products[i].VariantID == id {
			return i
		}
	}
	return -1
}

func (d *draft) findService(id uuid.UUID) int {
	for i := range d.services {
		if d.services[i].ServiceID == id {
			return i
		}
	}
	return -1
}

func (d *draft) findEvent(id uuid.UUID) int {
	for i := range d.events {
		if d.events[i].TicketID == id {
			return i
		}
	}
	return -1
}

// touchedLine identifies the line an operation changed, for availability checks.
type touchedLine struct {
	kind     enums.ListingType
	refID    uuid.UUID
	quantity int
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// optionalNote trims note and maps a blank one to nil.
func optionalNote(note string) *string {
	note = strings.TrimSpace(note)
	if note == "" {
		return nil
	}
	return &note
}

// uniqueServiceIDs drops duplicates while keeping first-seen order.
func uniqueServiceIDs(ids []uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(ids))
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
