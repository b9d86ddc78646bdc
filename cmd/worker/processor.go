package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-lambda-go/events"
	validatorv10 "github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/imrishuroy/go-webhook-orderflow/internal/orders"
	"github.com/imrishuroy/go-webhook-orderflow/internal/validation"
)

type webhookExecutor interface {
	Execute(ctx context.Context, event orders.WebhookEvent) error
}

// errPoison marks a message that can never succeed; it is dropped instead of retried.
var errPoison = errors.New("poison message")

// Processor handles SQS batches whose bodies are webhook events.
type Processor struct {
	service  webhookExecutor
	validate *validatorv10.Validate
	logger   *zap.Logger
}

// NewProcessor creates a new worker processor.
func NewProcessor(service webhookExecutor, logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{
		service:  service,
		validate: validation.New(),
		logger:   logger,
	}
}

// Handle processes every record and reports the ones that should be
// redelivered. Malformed events are logged and dropped.
func (p *Processor) Handle(ctx context.Context, ev events.SQSEvent) (events.SQSEventResponse, error) {
	var resp events.SQSEventResponse
	for _, rec := range ev.Records {
		err := p.processMessage(ctx, rec)
		switch {
		case err == nil:
		case errors.Is(err, errPoison):
			p.logger.Warn("dropping webhook message", zap.String("message_id", rec.MessageId), zap.Error(err))
		default:
			p.logger.Error("webhook message failed", zap.String("message_id", rec.MessageId), zap.Error(err))
			resp.BatchItemFailures = append(resp.BatchItemFailures, events.SQSBatchItemFailure{
				ItemIdentifier: rec.MessageId,
			})
		}
	}
	return resp, nil
}

func (p *Processor) processMessage(ctx context.Context, rec events.SQSMessage) error {
	var event orders.WebhookEvent
	if err := json.Unmarshal([]byte(rec.Body), &event); err != nil {
		return fmt.Errorf("%w: invalid message body: %v", errPoison, err)
	}
	if err := p.validate.Struct(event); err != nil {
		return fmt.Errorf("%w: invalid webhook envelope: %s", errPoison, validation.Describe(err))
	}

	err := p.service.Execute(ctx, event)
	var pfe *orders.PayloadFormatError
	if errors.As(err, &pfe) {
		return fmt.Errorf("%w: %s", errPoison, pfe.Message)
	}
	if err != nil {
		var ie *orders.InternalError
		if errors.As(err, &ie) {
			return fmt.Errorf("%s: %w", ie.Op, ie.Err)
		}
		return err
	}

	p.logger.Info("webhook processed",
		zap.String("message_id", rec.MessageId),
		zap.Stringer("event_id", event.ID),
		zap.String("event_type", event.EventType),
	)
	return nil
}
