package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/imrishuroy/go-webhook-orderflow/internal/metrics"
	"github.com/imrishuroy/go-webhook-orderflow/internal/orders"
	"github.com/imrishuroy/go-webhook-orderflow/internal/validation"
)

// MaxBodyBytes caps the size of a webhook request body (16 KiB).
const MaxBodyBytes int64 = 16 << 10

// WebhookProcessor is implemented by orders.WebhookService.
type WebhookProcessor interface {
	Execute(ctx context.Context, event orders.WebhookEvent) error
}

// HandlerConfig groups dependencies for the webhook and order routes.
type HandlerConfig struct {
	Service      WebhookProcessor
	Finder       orders.Finder
	Metrics      metrics.Recorder
	Logger       *zap.Logger
	MaxBodyBytes int64
}

func (cfg HandlerConfig) withDefaults() HandlerConfig {
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.Nop{}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = MaxBodyBytes
	}
	return cfg
}

// RegisterWebhookRoutes registers POST /webhook.
func RegisterWebhookRoutes(r gin.IRouter, cfg HandlerConfig) {
	cfg = cfg.withDefaults()
	v := validation.New()
	logger := cfg.Logger

	r.POST("/webhook", func(c *gin.Context) {
		ctx := c.Request.Context()
		start := time.Now()
		outcome := metrics.OutcomeRejected
		defer func() {
			cfg.Metrics.ObserveWebhook(ctx, outcome, time.Since(start))
		}()

		// Declared oversize bodies are refused before anything is read.
		if c.Request.ContentLength > cfg.MaxBodyBytes {
			logger.Warn("webhook body too large",
				zap.Int64("content_length", c.Request.ContentLength),
				zap.Int64("limit", cfg.MaxBodyBytes),
			)
			c.String(http.StatusRequestEntityTooLarge, http.StatusText(http.StatusRequestEntityTooLarge))
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, cfg.MaxBodyBytes)
		}

		var event orders.WebhookEvent
		if err := validation.BindAndValidate(c, &event, v); err != nil {
			// BindAndValidate already wrote the rejection
			logger.Warn("webhook envelope rejected", zap.Int("status", c.Writer.Status()), zap.Error(err))
			return
		}

		err := cfg.Service.Execute(ctx, event)
		if err == nil {
			outcome = metrics.OutcomeOK
			c.String(http.StatusOK, "OK")
			return
		}

		fields := []zap.Field{
			zap.Stringer("event_id", event.ID),
			zap.String("event_type", event.EventType),
			zap.Error(err),
		}

		var pfe *orders.PayloadFormatError
		if errors.As(err, &pfe) {
			outcome = metrics.OutcomeBadRequest
			logger.Warn("webhook payload format error", fields...)
			c.String(http.StatusBadRequest, "Bad Request: "+pfe.Message)
			return
		}

		outcome = metrics.OutcomeInternal
		var ie *orders.InternalError
		if errors.As(err, &ie) {
			fields = append(fields, zap.String("op", ie.Op), zap.NamedError("cause", ie.Err))
		}
		logger.Error("webhook processing failed", fields...)
		c.String(http.StatusInternalServerError, "Internal Error: "+err.Error())
	})
}
