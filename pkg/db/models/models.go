package models

// All lists every table the service owns, in dependency order.
func All() []any {
	return []any{
		&ProductVariant{},
		&Service{},
		&EventTicket{},
		&Offer{},
		&OfferListing{},
		&Cart{},
		&CartProductLine{},
		&CartServiceLine{},
		&CartEventLine{},
		&OutboxEvent{},
		&OutboxDLQ{},
	}
}
