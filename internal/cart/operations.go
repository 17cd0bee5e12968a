package cart

import (
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/angelmondragon/bazaar-backend/internal/pricing"
	"github.com/angelmondragon/bazaar-backend/pkg/db/models"
	"github.com/angelmondragon/bazaar-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/bazaar-backend/pkg/errors"
)

const maxNoteLength = 500

// Operation is one cart mutation: AddLine, UpdateLine, RemoveLine, ApplyOffer or RemoveOffer.
type Operation interface {
	Name() enums.CartOperation
	// Validate rejects malformed input before any state is loaded.
	Validate() error
	apply(d *draft) (*touchedLine, error)
}

// AddLine inserts a line, or merges quantity into an existing product or event line.
type AddLine struct {
	Line pricing.Line
}

func (AddLine) Name() enums.CartOperation { return enums.CartOperationAddLine }

func (op AddLine) Validate() error {
	switch line := op.Line.(type) {
	case pricing.ProductLine:
		if line.VariantID == uuid.Nil {
			return invalid("variant id is required")
		}
		if line.Quantity < 1 {
			return invalid("quantity must be at least 1")
		}
		return validateNote(line.Note)
	case pricing.ServiceLine:
		if line.ServiceID == uuid.Nil {
			return invalid("service id is required")
		}
		if err := validateAddOns(line.ServiceID, line.AdditionalServiceIDs); err != nil {
			return err
		}
		return validateNote(line.Note)
	case pricing.EventLine:
		if line.TicketID == uuid.Nil {
			return invalid("ticket id is required")
		}
		if line.Quantity < 1 {
			return invalid("quantity must be at least 1")
		}
		return nil
	default:
		return invalid("unknown line kind")
	}
}

func (op AddLine) apply(d *draft) (*touchedLine, error) {
	switch line := op.Line.(type) {
	case pricing.ProductLine:
		if i := d.findProduct(line.VariantID); i >= 0 {
			d.products[i].Quantity += line.Quantity
			if note := optionalNote(line.Note); note != nil {
				d.products[i].Note = note
			}
			return &touchedLine{kind: enums.ListingTypeProduct, refID: line.VariantID, quantity: d.products[i].Quantity}, nil
		}
		d.products = append(d.products, models.CartProductLine{
			ID:        uuid.New(),
			VariantID: line.VariantID,
			Quantity:  line.Quantity,
			Note:      optionalNote(line.Note),
		})
		return &touchedLine{kind: enums.ListingTypeProduct, refID: line.VariantID, quantity: line.Quantity}, nil
	case pricing.ServiceLine:
		if d.findService(line.ServiceID) >= 0 {
			return nil, invalid("service is already in the cart")
		}
		d.services = append(d.services, models.CartServiceLine{
			ID:                   uuid.New(),
			ServiceID:            line.ServiceID,
			AdditionalServiceIDs: uniqueServiceIDs(line.AdditionalServiceIDs),
			Note:                 optionalNote(line.Note),
		})
		return nil, nil
	case pricing.EventLine:
		if i := d.findEvent(line.TicketID); i >= 0 {
			d.events[i].Quantity += line.Quantity
			return &touchedLine{kind: enums.ListingTypeEvent, refID: line.TicketID, quantity: d.events[i].Quantity}, nil
		}
		d.events = append(d.events, models.CartEventLine{
			ID:       uuid.New(),
			TicketID: line.TicketID,
			Quantity: line.Quantity,
		})
		return &touchedLine{kind: enums.ListingTypeEvent, refID: line.TicketID, quantity: line.Quantity}, nil
	default:
		return nil, invalid("unknown line kind")
	}
}

// UpdateLine changes fields of an existing line. Nil fields are left untouched.
type UpdateLine struct {
	Kind                 enums.ListingType
	RefID                uuid.UUID
	Quantity             *int
	Note                 *string
	AdditionalServiceIDs *[]uuid.UUID
}

func (UpdateLine) Name() enums.CartOperation { return enums.CartOperationUpdateLine }

func (op UpdateLine) Validate() error {
	if !op.Kind.IsValid() {
		return invalid("unknown line kind")
	}
	if op.RefID == uuid.Nil {
		return invalid("reference id is required")
	}
	if op.Quantity == nil && op.Note == nil && op.AdditionalServiceIDs == nil {
		return invalid("nothing to update")
	}
	if op.Quantity != nil {
		if op.Kind == enums.ListingTypeService {
			return invalid("service lines have no quantity")
		}
		if *op.Quantity < 1 {
			return invalid("quantity must be at least 1")
		}
	}
	if op.Note != nil {
		if op.Kind == enums.ListingTypeEvent {
			return invalid("event lines have no note")
		}
		if err := validateNote(*op.Note); err != nil {
			return err
		}
	}
	if op.AdditionalServiceIDs != nil {
		if op.Kind != enums.ListingTypeService {
			return invalid("additional services apply to service lines only")
		}
		if err := validateAddOns(op.RefID, *op.AdditionalServiceIDs); err != nil {
			return err
		}
	}
	return nil
}

func (op UpdateLine) apply(d *draft) (*touchedLine, error) {
	switch op.Kind {
	case enums.ListingTypeProduct:
		i := d.findProduct(op.RefID)
		if i < 0 {
			return nil, lineNotFound()
		}
		if op.Quantity != nil {
			d.products[i].Quantity = *op.Quantity
		}
		if op.Note != nil {
			d.products[i].Note = optionalNote(*op.Note)
		}
		if op.Quantity == nil {
			return nil, nil
		}
		return &touchedLine{kind: op.Kind, refID: op.RefID, quantity: d.products[i].Quantity}, nil
	case enums.ListingTypeService:
		i := d.findService(op.RefID)
		if i < 0 {
			return nil, lineNotFound()
		}
		if op.Note != nil {
			d.services[i].Note = optionalNote(*op.Note)
		}
		if op.AdditionalServiceIDs != nil {
			d.services[i].AdditionalServiceIDs = uniqueServiceIDs(*op.AdditionalServiceIDs)
		}
		return nil, nil
	case enums.ListingTypeEvent:
		i := d.findEvent(op.RefID)
		if i < 0 {
			return nil, lineNotFound()
		}
		d.events[i].Quantity = *op.Quantity
		return &touchedLine{kind: op.Kind, refID: op.RefID, quantity: d.events[i].Quantity}, nil
	default:
		return nil, invalid("unknown line kind")
	}
}

// RemoveLine drops a line. Any applied offer stays attached and is re-evaluated.
type RemoveLine struct {
	Kind  enums.ListingType
	RefID uuid.UUID
}

func (RemoveLine) Name() enums.CartOperation { return enums.CartOperationRemoveLine }

func (op RemoveLine) Validate() error {
	if !op.Kind.IsValid() {
		return invalid("unknown line kind")
	}
	if op.RefID == uuid.Nil {
		return invalid("reference id is required")
	}
	return nil
}

func (op RemoveLine) apply(d *draft) (*touchedLine, error) {
	switch op.Kind {
	case enums.ListingTypeProduct:
		i := d.findProduct(op.RefID)
		if i < 0 {
			return nil, lineNotFound()
		}
		d.products = append(d.products[:i], d.products[i+1:]...)
	case enums.ListingTypeService:
		i := d.findService(op.RefID)
		if i < 0 {
			return nil, lineNotFound()
		}
		d.services = append(d.services[:i], d.services[i+1:]...)
	case enums.ListingTypeEvent:
		i := d.findEvent(op.RefID)
		if i < 0 {
			return nil, lineNotFound()
		}
		d.events = append(d.events[:i], d.events[i+1:]...)
	default:
		return nil, invalid("unknown line kind")
	}
	return nil, nil
}

// ApplyOffer attaches an offer, replacing any previous one.
type ApplyOffer struct {
	OfferID uuid.UUID
}

func (ApplyOffer) Name() enums.CartOperation { return enums.CartOperationApplyOffer }

func (op ApplyOffer) Validate() error {
	if op.OfferID == uuid.Nil {
		return invalid("offer id is required")
	}
	return nil
}

func (op ApplyOffer) apply(d *draft) (*touchedLine, error) {
	id := op.OfferID
	d.offerID = &id
	return nil, nil
}

// RemoveOffer detaches the current offer. It is a no-op on a cart without one.
type RemoveOffer struct{}

func (RemoveOffer) Name() enums.CartOperation { return enums.CartOperationRemoveOffer }

func (RemoveOffer) Validate() error { return nil }

func (RemoveOffer) apply(d *draft) (*touchedLine, error) {
	d.offerID = nil
	return nil, nil
}

func validateNote(note string) error {
	if utf8.RuneCountInString(note) > maxNoteLength {
		return invalid("note is too long")
	}
	return nil
}

func validateAddOns(base uuid.UUID, addOns []uuid.UUID) error {
	for _, id := range addOns {
		if id == uuid.Nil {
			return invalid("additional service id is required")
		}
		if id == base {
			return invalid("a service cannot be its own add-on")
		}
	}
	return nil
}

func invalid(msg string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, msg)
}

func lineNotFound() error {
	return pkgerrors.New(pkgerrors.CodeNotFound, "cart line not found")
}
