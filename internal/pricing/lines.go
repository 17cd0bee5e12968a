package pricing

import (
	"github.com/google/uuid"

	"github.com/angelmondragon/bazaar-backend/pkg/enums"
)

// Line is one cart entry. The concrete types are ProductLine, ServiceLine and EventLine.
type Line interface {
	Kind() enums.ListingType
	RefID() uuid.UUID
	isLine()
}

// ProductLine references a product variant.
type ProductLine struct {
	VariantID uuid.UUID
	Quantity  int
	Note      string
}

func (ProductLine) Kind() enums.ListingType { return enums.ListingTypeProduct }
func (l ProductLine) RefID() uuid.UUID      { return l.VariantID }
func (ProductLine) isLine()                 {}

// ServiceLine books one base service plus zero or more add-on services.
type ServiceLine struct {
	ServiceID            uuid.UUID
	AdditionalServiceIDs []uuid.UUID
	Note                 string
}

func (ServiceLine) Kind() enums.ListingType { return enums.ListingTypeService }
func (l ServiceLine) RefID() uuid.UUID      { return l.ServiceID }
func (ServiceLine) isLine()                 {}

// EventLine references an event ticket tier.
type EventLine struct {
	TicketID uuid.UUID
	Quantity int
}

func (EventLine) Kind() enums.ListingType { return enums.ListingTypeEvent }
func (l EventLine) RefID() uuid.UUID      { return l.TicketID }
func (EventLine) isLine()                 {}

// Lines groups a cart's lines by kind. Order within a slice does not affect totals.
type Lines struct {
	Products []ProductLine
	Services []ServiceLine
	Events   []EventLine
}

// Len returns the number of lines across all kinds.
func (l Lines) Len() int {
	return len(l.Products) + len(l.Services) + len(l.Events)
}

// Has reports whether a line of kind with reference id is present.
func (l Lines) Has(kind enums.ListingType, id uuid.UUID) bool {
	switch kind {
	case enums.ListingTypeProduct:
		for _, p := range l.Products {
			if p.VariantID == id {
				return true
			}
		}
	case enums.ListingTypeService:
		for _, s := range l.Services {
			if s.ServiceID == id {
				return true
			}
		}
	case enums.ListingTypeEvent:
		for _, e := range l.Events {
			if e.TicketID == id {
				return true
			}
		}
	}
	return false
}
