package orders

import (
	"encoding/json"

	"github.com/google/uuid"
)

// Common order statuses seen in webhook deliveries. Status is an open string:
// any value sent by the upstream system is stored as-is.
const (
	StatusPending = "PENDING"
	StatusPaid    = "PAID"
)

// WebhookEvent is the envelope received on POST /webhook.
type WebhookEvent struct {
	ID        uuid.UUID       `json:"id" validate:"required"`
	EventType string          `json:"event_type" validate:"required"`
	Payload   json.RawMessage `json:"payload" validate:"required"`
}

// Order is the record kept per order id. The last successful upsert wins.
type Order struct {
	ID     uint32  `json:"id"`
	Status string  `json:"status"`
	Amount float64 `json:"amount"`
}
