package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/imrishuroy/go-webhook-orderflow/internal/aws"
	"github.com/imrishuroy/go-webhook-orderflow/internal/config"
	"github.com/imrishuroy/go-webhook-orderflow/internal/handlers"
	"github.com/imrishuroy/go-webhook-orderflow/internal/logging"
	"github.com/imrishuroy/go-webhook-orderflow/internal/metrics"
	"github.com/imrishuroy/go-webhook-orderflow/internal/orders"
	"github.com/imrishuroy/go-webhook-orderflow/internal/storage"
)

const listenAddr = "127.0.0.1:8080"

func setupRouter(cfg handlers.HandlerConfig, prom *metrics.Prometheus) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logging.GinMiddleware(cfg.Logger))

	// health
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if prom != nil {
		r.GET("/metrics", gin.WrapH(prom.Handler()))
	}

	handlers.RegisterWebhookRoutes(r, cfg)
	handlers.RegisterOrdersRoutes(r, cfg)

	return r
}

// recorders is the metrics sink selected by configuration. prom and cw are set
// only for their backend, so main can expose /metrics or run the flusher.
type recorders struct {
	metrics.Recorder
	prom *metrics.Prometheus
	cw   *metrics.CloudWatch
}

func newRecorders(ctx context.Context, cfg config.MetricsConfig, logger *zap.Logger) (recorders, error) {
	switch cfg.Backend {
	case config.MetricsPrometheus:
		p := metrics.NewPrometheus()
		return recorders{Recorder: p, prom: p}, nil
	case config.MetricsCloudWatch:
		clients, err := aws.NewAWSClients(ctx)
		if err != nil {
			return recorders{}, err
		}
		cw := metrics.NewCloudWatch(clients.CloudWatch, cfg.Namespace, logger)
		return recorders{Recorder: cw, cw: cw}, nil
	default:
		return recorders{Recorder: metrics.Nop{}}, nil
	}
}

func dynamoClient(ctx context.Context) (aws.DynamoDBAPI, error) {
	clients, err := aws.NewAWSClients(ctx)
	if err != nil {
		return nil, err
	}
	return clients.DynamoDB, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		// logger settings come from config; fall back to a default one
		zap.NewExample().Fatal("failed to load configuration", zap.Error(err))
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	ctx := context.Background()

	backend, err := storage.Open(ctx, cfg.Storage, logger, dynamoClient)
	if err != nil {
		logger.Fatal("failed to open order store", zap.String("backend", cfg.Storage.Backend), zap.Error(err))
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := backend.Close(closeCtx); err != nil {
			logger.Warn("failed to close order store", zap.Error(err))
		}
	}()

	rec, err := newRecorders(ctx, cfg.Metrics, logger)
	if err != nil {
		logger.Fatal("failed to init metrics", zap.Error(err))
	}

	hcfg := handlers.HandlerConfig{
		Service: orders.NewWebhookService(backend, logger),
		Finder:  backend,
		Metrics: rec.Recorder,
		Logger:  logger,
	}

	gin.SetMode(gin.ReleaseMode)
	r := setupRouter(hcfg, rec.prom)

	// the Lambda runtime always sets AWS_LAMBDA_FUNCTION_NAME
	if os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != "" {
		adapter := ginadapter.New(r)
		lambda.Start(func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
			resp, err := adapter.ProxyWithContext(ctx, req)
			// the execution environment may freeze once the handler returns
			if rec.cw != nil {
				rec.cw.Flush(ctx)
			}
			return resp, err
		})
		return
	}

	flushCtx, stopFlush := context.WithCancel(ctx)
	flushDone := make(chan struct{})
	go func() {
		defer close(flushDone)
		if rec.cw != nil {
			rec.cw.Run(flushCtx, metrics.DefaultFlushInterval)
		}
	}()

	srv := &http.Server{
		Addr:    listenAddr,
		Handler: r,
	}

	go func() {
		logger.Info("webhook server listening",
			zap.String("url", "http://"+listenAddr+"/webhook"),
			zap.String("storage", backend.Name),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
	stopFlush()
	<-flushDone
}
