package enums

import "fmt"

// ListingType tags a cart line (and a combo offer listing) by catalog category.
type ListingType string

const (
	ListingTypeProduct ListingType = "product"
	ListingTypeService ListingType = "service"
	ListingTypeEvent   ListingType = "event"
)

var validListingTypes = []ListingType{
	ListingTypeProduct,
	ListingTypeService,
	ListingTypeEvent,
}

// ListingTypes returns the categories in their canonical pricing order.
func ListingTypes() []ListingType {
	out := make([]ListingType, len(validListingTypes))
	copy(out, validListingTypes)
	return out
}

// String implements fmt.Stringer.
func (l ListingType) String() string {
	return string(l)
}

// IsValid reports whether the value is a known ListingType.
func (l ListingType) IsValid() bool {
	for _, candidate := range validListingTypes {
		if candidate == l {
			return true
		}
	}
	return false
}

// ParseListingType converts raw input into a ListingType.
func ParseListingType(value string) (ListingType, error) {
	for _, candidate := range validListingTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid listing type %q", value)
}
