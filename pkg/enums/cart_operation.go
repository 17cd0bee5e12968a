package enums

// CartOperation names a cart mutation for logs, metrics and events.
type CartOperation string

const (
	CartOperationAddLine     CartOperation = "add_line"
	CartOperationUpdateLine  CartOperation = "update_line"
	CartOperationRemoveLine  CartOperation = "remove_line"
	CartOperationApplyOffer  CartOperation = "apply_offer"
	CartOperationRemoveOffer CartOperation = "remove_offer"
	CartOperationRecompute   CartOperation = "recompute"
	CartOperationClear       CartOperation = "clear"
)

// String implements fmt.Stringer.
func (c CartOperation) String() string {
	return string(c)
}
