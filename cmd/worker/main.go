package main

import (
	"context"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"github.com/imrishuroy/go-webhook-orderflow/internal/aws"
	"github.com/imrishuroy/go-webhook-orderflow/internal/config"
	"github.com/imrishuroy/go-webhook-orderflow/internal/logging"
	"github.com/imrishuroy/go-webhook-orderflow/internal/orders"
	"github.com/imrishuroy/go-webhook-orderflow/internal/storage"
)

const localSampleBody = `{"id":"8b0f3c52-61a4-4f7e-9d2c-5e1a7b3c9d40","event_type":"order.updated","payload":{"pedido_id":101,"monto":75.5,"estado_actual":"PAID"}}`

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("failed to load configuration", zap.Error(err))
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	ctx := context.Background()
	backend, err := storage.Open(ctx, cfg.Storage, logger, func(ctx context.Context) (aws.DynamoDBAPI, error) {
		clients, err := aws.NewAWSClients(ctx)
		if err != nil {
			return nil, err
		}
		return clients.DynamoDB, nil
	})
	if err != nil {
		logger.Fatal("failed to open order store", zap.Error(err))
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = backend.Close(closeCtx)
	}()

	p := NewProcessor(orders.NewWebhookService(backend, logger), logger)

	// If RUN_LOCAL=true, process a single simulated SQS message and exit.
	if os.Getenv("RUN_LOCAL") == "true" {
		body := os.Getenv("LOCAL_SQS_BODY")
		if body == "" {
			body = localSampleBody
		}
		resp, err := p.Handle(ctx, events.SQSEvent{
			Records: []events.SQSMessage{{MessageId: "local-1", Body: body}},
		})
		if err != nil || len(resp.BatchItemFailures) > 0 {
			logger.Fatal("local handler error", zap.Error(err), zap.Int("failures", len(resp.BatchItemFailures)))
		}
		return
	}

	lambda.Start(p.Handle)
}
