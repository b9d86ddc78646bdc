package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheus_ObserveWebhook(t *testing.T) {
	p := NewPrometheus()

	p.ObserveWebhook(context.Background(), OutcomeOK, 10*time.Millisecond)
	p.ObserveWebhook(context.Background(), OutcomeOK, 20*time.Millisecond)
	p.ObserveWebhook(context.Background(), OutcomeBadRequest, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(p.WebhooksTotal.WithLabelValues(OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.WebhooksTotal.WithLabelValues(OutcomeBadRequest)))

	rec := httptest.NewRecorder()
	p.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `webhook_orderflow_webhook_requests_total{outcome="ok"} 2`))
}

type mockCloudWatch struct {
	inputs []*cloudwatch.PutMetricDataInput
	err    error
}

func (m *mockCloudWatch) PutMetricData(ctx context.Context, in *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error) {
	m.inputs = append(m.inputs, in)
	return &cloudwatch.PutMetricDataOutput{}, m.err
}

func TestCloudWatch_ObserveWebhookBuffersUntilFlush(t *testing.T) {
	mock := &mockCloudWatch{}
	cw := NewCloudWatch(mock, "WebhookOrderflow", nil)

	cw.ObserveWebhook(context.Background(), OutcomeInternal, 250*time.Millisecond)
	assert.Empty(t, mock.inputs)

	cw.Flush(context.Background())
	require.Len(t, mock.inputs, 1)
	in := mock.inputs[0]
	assert.Equal(t, "WebhookOrderflow", *in.Namespace)
	require.Len(t, in.MetricData, 2)
	assert.Equal(t, "WebhookCount", *in.MetricData[0].MetricName)
	assert.Equal(t, 1.0, *in.MetricData[0].Value)
	assert.Equal(t, cwtypes.StandardUnitMilliseconds, in.MetricData[1].Unit)
	assert.Equal(t, 250.0, *in.MetricData[1].Value)
	assert.Equal(t, OutcomeInternal, *in.MetricData[0].Dimensions[0].Value)

	// nothing left to send
	cw.Flush(context.Background())
	assert.Len(t, mock.inputs, 1)
}

func TestCloudWatch_FlushSplitsBatches(t *testing.T) {
	mock := &mockCloudWatch{}
	cw := NewCloudWatch(mock, "ns", nil)

	for i := 0; i < cloudWatchBatchSize; i++ {
		cw.ObserveWebhook(context.Background(), OutcomeOK, time.Millisecond)
	}
	cw.Flush(context.Background())

	require.Len(t, mock.inputs, 2)
	assert.Len(t, mock.inputs[0].MetricData, cloudWatchBatchSize)
	assert.Len(t, mock.inputs[1].MetricData, cloudWatchBatchSize)
}

func TestCloudWatch_DropsWhenBufferFull(t *testing.T) {
	mock := &mockCloudWatch{}
	cw := NewCloudWatch(mock, "ns", nil)

	for i := 0; i < cloudWatchMaxPending/2+10; i++ {
		cw.ObserveWebhook(context.Background(), OutcomeOK, time.Millisecond)
	}
	assert.Equal(t, int64(10), cw.dropped.Load())

	cw.Flush(context.Background())
	sent := 0
	for _, in := range mock.inputs {
		sent += len(in.MetricData)
	}
	assert.Equal(t, cloudWatchMaxPending, sent)
	assert.Zero(t, cw.dropped.Load())
}

func TestCloudWatch_RunFlushesOnCancel(t *testing.T) {
	mock := &mockCloudWatch{}
	cw := NewCloudWatch(mock, "ns", nil)
	cw.ObserveWebhook(context.Background(), OutcomeOK, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		cw.Run(ctx, time.Hour)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	require.Len(t, mock.inputs, 1)
	assert.Len(t, mock.inputs[0].MetricData, 2)
}

func TestCloudWatch_ErrorIsSwallowed(t *testing.T) {
	mock := &mockCloudWatch{err: errors.New("throttled")}
	cw := NewCloudWatch(mock, "ns", nil)

	cw.ObserveWebhook(context.Background(), OutcomeOK, time.Millisecond)
	assert.NotPanics(t, func() {
		cw.Flush(context.Background())
	})
	assert.Len(t, mock.inputs, 1)
}
