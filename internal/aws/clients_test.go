package aws

import (
	"context"
	"testing"
)

func TestNewAWSClients_BuildsEveryClient(t *testing.T) {
	t.Setenv("AWS_REGION", "eu-west-1")
	t.Setenv("AWS_ENDPOINT_OVERRIDE", "http://localhost:4566")

	clients, err := NewAWSClients(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if clients.DynamoDB == nil {
		t.Fatal("expected a DynamoDB client for the dynamodb storage backend")
	}
	if clients.SQS == nil {
		t.Fatal("expected an SQS client for the webhook event publisher")
	}
	if clients.CloudWatch == nil {
		t.Fatal("expected a CloudWatch client for the metrics recorder")
	}
}
