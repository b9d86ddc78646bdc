package validation

// OrderPayload is the shape expected inside a webhook event's payload.
// Pointer fields let the validator tell a missing field from a zero value.
type OrderPayload struct {
	OrderID *uint32  `json:"pedido_id" validate:"required"`     // order id at the sender
	Amount  *float64 `json:"monto" validate:"required"`         // order total
	Status  *string  `json:"estado_actual" validate:"required"` // e.g. PENDING, PAID
}
