// Package storage opens the order store selected by configuration.
package storage

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/imrishuroy/go-webhook-orderflow/internal/aws"
	"github.com/imrishuroy/go-webhook-orderflow/internal/config"
	"github.com/imrishuroy/go-webhook-orderflow/internal/orders"
	"github.com/imrishuroy/go-webhook-orderflow/internal/storage/dynamo"
	"github.com/imrishuroy/go-webhook-orderflow/internal/storage/memory"
	"github.com/imrishuroy/go-webhook-orderflow/internal/storage/mongostore"
)

// Store is what every adapter provides.
type Store interface {
	orders.Repository
	orders.Finder
}

// DynamoClientFunc lazily builds the DynamoDB client, so AWS config is only
// loaded when that backend is selected.
type DynamoClientFunc func(ctx context.Context) (aws.DynamoDBAPI, error)

// Backend is an opened store plus its release hook.
type Backend struct {
	Store
	Name  string
	close func(context.Context) error
}

// Close releases connections held by the store.
func (b *Backend) Close(ctx context.Context) error {
	if b.close == nil {
		return nil
	}
	return b.close(ctx)
}

// Open builds the configured backend. It fails if the backend cannot be
// reached; a half-open store is never returned.
func Open(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger, dynamoClient DynamoClientFunc) (*Backend, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch cfg.Backend {
	case config.BackendMemory:
		return &Backend{Store: memory.NewStore(logger), Name: cfg.Backend}, nil

	case config.BackendMongo:
		s, err := mongostore.NewStore(ctx, mongostore.Options{
			URI:        cfg.MongoURI,
			Database:   cfg.MongoDBName,
			Collection: cfg.Collection,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("open mongo store: %w", err)
		}
		if err := s.EnsureIndexes(ctx); err != nil {
			logger.Warn("could not ensure order indexes", zap.Error(err))
		}
		return &Backend{Store: s, Name: cfg.Backend, close: s.Close}, nil

	case config.BackendDynamoDB:
		if dynamoClient == nil {
			return nil, fmt.Errorf("open dynamodb store: no client factory")
		}
		client, err := dynamoClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("open dynamodb store: %w", err)
		}
		return &Backend{Store: dynamo.NewStore(client, cfg.OrdersTable, logger), Name: cfg.Backend}, nil

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
