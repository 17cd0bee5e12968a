package cartdto

import "github.com/google/uuid"

// AddItemRequest adds one line. RefID names a variant, service or ticket depending on Kind.
type AddItemRequest struct {
	Kind                 string      `json:"kind" validate:"required,listing_kind"`
	RefID                uuid.UUID   `json:"ref_id" validate:"required"`
	Quantity             int         `json:"quantity" validate:"min=0"`
	Note                 string      `json:"note,omitempty" validate:"max=500"`
	AdditionalServiceIDs []uuid.UUID `json:"additional_service_ids,omitempty"`
}

// UpdateItemRequest patches an existing line; absent fields are left untouched.
type UpdateItemRequest struct {
	Quantity             *int         `json:"quantity,omitempty"`
	Note                 *string      `json:"note,omitempty"`
	AdditionalServiceIDs *[]uuid.UUID `json:"additional_service_ids,omitempty"`
}

type ApplyOfferRequest struct {
	OfferID uuid.UUID `json:"offer_id" validate:"required"`
}

// ClearCartRequest names the order that consumed the cart snapshot.
type ClearCartRequest struct {
	OrderReference string `json:"order_reference" validate:"required,max=128"`
}
