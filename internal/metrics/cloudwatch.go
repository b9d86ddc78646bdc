package metrics

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"go.uber.org/zap"

	"github.com/imrishuroy/go-webhook-orderflow/internal/aws"
)

const (
	// datums per PutMetricData call
	cloudWatchBatchSize = 500
	// observations kept between flushes; older ones win, new ones are dropped
	cloudWatchMaxPending = 10000
	// DefaultFlushInterval is how often Run pushes buffered datapoints.
	DefaultFlushInterval = 10 * time.Second
)

// CloudWatch buffers one datapoint pair per webhook and pushes them in
// batches, off the request path. Used when running on AWS, where nothing
// scrapes a /metrics endpoint.
type CloudWatch struct {
	client    aws.CloudWatchAPI
	namespace string
	logger    *zap.Logger
	nowFunc   func() time.Time

	mu      sync.Mutex
	pending []cwtypes.MetricDatum
	dropped atomic.Int64
}

func NewCloudWatch(client aws.CloudWatchAPI, namespace string, logger *zap.Logger) *CloudWatch {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CloudWatch{
		client:    client,
		namespace: namespace,
		logger:    logger,
		nowFunc:   time.Now,
	}
}

// ObserveWebhook only buffers; it never makes a network call.
func (c *CloudWatch) ObserveWebhook(_ context.Context, outcome string, elapsed time.Duration) {
	now := c.nowFunc()
	dims := []cwtypes.Dimension{{Name: strPtr("Outcome"), Value: strPtr(outcome)}}

	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.pending)+2 > cloudWatchMaxPending {
		c.dropped.Add(1)
		return
	}
	c.pending = append(c.pending,
		cwtypes.MetricDatum{
			MetricName: strPtr("WebhookCount"),
			Dimensions: dims,
			Timestamp:  &now,
			Unit:       cwtypes.StandardUnitCount,
			Value:      float64Ptr(1),
		},
		cwtypes.MetricDatum{
			MetricName: strPtr("WebhookLatency"),
			Dimensions: dims,
			Timestamp:  &now,
			Unit:       cwtypes.StandardUnitMilliseconds,
			Value:      float64Ptr(float64(elapsed) / float64(time.Millisecond)),
		},
	)
}

// Flush pushes everything buffered so far. Push errors are logged and the
// failed batch is discarded.
func (c *CloudWatch) Flush(ctx context.Context) {
	c.mu.Lock()
	batch := c.pending
	c.pending = nil
	c.mu.Unlock()

	if n := c.dropped.Swap(0); n > 0 {
		c.logger.Warn("cloudwatch buffer full, observations dropped", zap.Int64("dropped", n))
	}

	for start := 0; start < len(batch); start += cloudWatchBatchSize {
		end := start + cloudWatchBatchSize
		if end > len(batch) {
			end = len(batch)
		}
		_, err := c.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
			Namespace:  &c.namespace,
			MetricData: batch[start:end],
		})
		if err != nil {
			c.logger.Warn("put metric data failed", zap.Int("datums", end-start), zap.Error(err))
		}
	}
}

// Run flushes every interval until ctx is done, then flushes once more.
func (c *CloudWatch) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultFlushInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.Flush(ctx)
		case <-ctx.Done():
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			c.Flush(flushCtx)
			cancel()
			return
		}
	}
}

func strPtr(s string) *string { return &s }

func float64Ptr(f float64) *float64 { return &f }
