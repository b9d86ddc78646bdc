// Package metrics counts webhook outcomes and their latency.
package metrics

import (
	"context"
	"time"
)

// Webhook outcomes.
const (
	OutcomeOK         = "ok"
	OutcomeBadRequest = "bad_request"
	OutcomeInternal   = "internal"
	OutcomeRejected   = "rejected" // refused before reaching the service
)

// Recorder receives one observation per processed webhook.
type Recorder interface {
	ObserveWebhook(ctx context.Context, outcome string, elapsed time.Duration)
}

// Nop discards observations.
type Nop struct{}

func (Nop) ObserveWebhook(context.Context, string, time.Duration) {}
