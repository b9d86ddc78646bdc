// Command enqueue publishes a webhook event to the orders queue so the worker
// processes it, e.g. to replay a delivery the sender will not retry.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/imrishuroy/go-webhook-orderflow/internal/aws"
	"github.com/imrishuroy/go-webhook-orderflow/internal/config"
	"github.com/imrishuroy/go-webhook-orderflow/internal/orders"
	"github.com/imrishuroy/go-webhook-orderflow/internal/validation"
)

func main() {
	cfg, err := config.LoadForTool()
	if err != nil {
		exitErr(err.Error())
	}

	file := flag.String("file", "-", "Webhook event JSON file, - for stdin")
	queueURL := flag.String("queue-url", cfg.Queue.URL, "SQS queue URL (or ORDERS_QUEUE_URL)")
	eventType := flag.String("type", "order.updated", "Event type used when the event has none")
	timeout := flag.Duration("timeout", 10*time.Second, "Request timeout")
	flag.Parse()

	if strings.TrimSpace(*queueURL) == "" {
		exitErr("queue-url is required (or set ORDERS_QUEUE_URL)")
	}

	raw, err := readInput(*file)
	if err != nil {
		exitErr(err.Error())
	}
	event, err := prepareEvent(raw, *eventType)
	if err != nil {
		exitErr(err.Error())
	}
	body, err := json.Marshal(event)
	if err != nil {
		exitErr(err.Error())
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	clients, err := aws.NewAWSClients(ctx)
	if err != nil {
		exitErr(err.Error())
	}
	publisher := aws.NewPublisher(clients.SQS, strings.TrimSpace(*queueURL))
	msgID, err := publisher.SendWebhookEvent(ctx, string(body), map[string]string{
		"event_id":   event.ID.String(),
		"event_type": event.EventType,
	})
	if err != nil {
		exitErr(err.Error())
	}

	fmt.Printf("Enqueued event %s (%s) as message %s\n", event.ID, event.EventType, msgID)
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

// prepareEvent fills a missing id and event type, then checks the envelope
// and the order payload so nothing undeliverable reaches the queue.
func prepareEvent(raw []byte, defaultType string) (orders.WebhookEvent, error) {
	var event orders.WebhookEvent
	if err := json.Unmarshal(raw, &event); err != nil {
		return event, fmt.Errorf("invalid event: %s", validation.Describe(err))
	}
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if strings.TrimSpace(event.EventType) == "" {
		event.EventType = defaultType
	}

	v := validation.New()
	if err := v.Struct(event); err != nil {
		return event, fmt.Errorf("invalid event: %s", validation.Describe(err))
	}
	var payload validation.OrderPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return event, fmt.Errorf("invalid payload: %s", validation.Describe(err))
	}
	if err := v.Struct(payload); err != nil {
		return event, fmt.Errorf("invalid payload: %s", validation.Describe(err))
	}
	return event, nil
}

func exitErr(message string) {
	fmt.Fprintln(os.Stderr, message)
	os.Exit(1)
}
