package orders

import (
	"context"
	"encoding/json"

	validatorv10 "github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/imrishuroy/go-webhook-orderflow/internal/validation"
)

// WebhookService turns webhook events into order upserts.
type WebhookService struct {
	repo     Repository
	validate *validatorv10.Validate
	logger   *zap.Logger
}

// NewWebhookService wires the service to a storage port.
func NewWebhookService(repo Repository, logger *zap.Logger) *WebhookService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookService{
		repo:     repo,
		validate: validation.New(),
		logger:   logger,
	}
}

// Execute decodes the event payload into an Order and upserts it.
// A payload that does not match the expected shape yields *PayloadFormatError;
// otherwise the repository's result is returned unchanged.
func (s *WebhookService) Execute(ctx context.Context, event WebhookEvent) error {
	order, err := s.decodeOrder(event.Payload)
	if err != nil {
		return err
	}

	s.logger.Debug("webhook decoded",
		zap.Stringer("event_id", event.ID),
		zap.String("event_type", event.EventType),
		zap.Uint32("order_id", order.ID),
		zap.String("status", order.Status),
	)

	return s.repo.RegisterOrUpdate(ctx, order)
}

func (s *WebhookService) decodeOrder(raw json.RawMessage) (Order, error) {
	var p validation.OrderPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return Order{}, payloadError(err)
	}
	if err := s.validate.Struct(p); err != nil {
		return Order{}, payloadError(err)
	}

	return Order{
		ID:     *p.OrderID,
		Status: *p.Status,
		Amount: *p.Amount,
	}, nil
}

func payloadError(err error) *PayloadFormatError {
	return &PayloadFormatError{Message: "invalid webhook payload: " + validation.Describe(err)}
}
