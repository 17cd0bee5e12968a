package cart

import (
	"strings"

	"github.com/google/uuid"

	cartdto "github.com/angelmondragon/bazaar-backend/api/controllers/cart/dto"
	cartsvc "github.com/angelmondragon/bazaar-backend/internal/cart"
	"github.com/angelmondragon/bazaar-backend/internal/pricing"
	"github.com/angelmondragon/bazaar-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/bazaar-backend/pkg/errors"
)

func toAddLine(payload cartdto.AddItemRequest) (cartsvc.AddLine, error) {
	note := strings.TrimSpace(payload.Note)
	switch enums.ListingType(payload.Kind) {
	case enums.ListingTypeProduct:
		if len(payload.AdditionalServiceIDs) > 0 {
			return cartsvc.AddLine{}, pkgerrors.New(pkgerrors.CodeValidation, "additional services apply to service lines only")
		}
		return cartsvc.AddLine{Line: pricing.ProductLine{VariantID: payload.RefID, Quantity: payload.Quantity, Note: note}}, nil
	case enums.ListingTypeService:
		if payload.Quantity != 0 {
			return cartsvc.AddLine{}, pkgerrors.New(pkgerrors.CodeValidation, "service lines have no quantity")
		}
		return cartsvc.AddLine{Line: pricing.ServiceLine{
			ServiceID:            payload.RefID,
			AdditionalServiceIDs: payload.AdditionalServiceIDs,
			Note:                 note,
		}}, nil
	case enums.ListingTypeEvent:
		if note != "" || len(payload.AdditionalServiceIDs) > 0 {
			return cartsvc.AddLine{}, pkgerrors.New(pkgerrors.CodeValidation, "event lines take a quantity only")
		}
		return cartsvc.AddLine{Line: pricing.EventLine{TicketID: payload.RefID, Quantity: payload.Quantity}}, nil
	default:
		return cartsvc.AddLine{}, pkgerrors.New(pkgerrors.CodeValidation, "unknown line kind")
	}
}

func toUpdateLine(kind enums.ListingType, refID uuid.UUID, payload cartdto.UpdateItemRequest) cartsvc.UpdateLine {
	return cartsvc.UpdateLine{
		Kind:                 kind,
		RefID:                refID,
		Quantity:             payload.Quantity,
		Note:                 payload.Note,
		AdditionalServiceIDs: payload.AdditionalServiceIDs,
	}
}
