// Package mongostore persists orders in a MongoDB collection, one document
// per order id.
package mongostore

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/imrishuroy/go-webhook-orderflow/internal/orders"
)

const defaultConnectTimeout = 10 * time.Second

// Options locate the collection orders are written to.
type Options struct {
	URI            string
	Database       string
	Collection     string
	ConnectTimeout time.Duration
}

type orderDocument struct {
	ID     uint32  `bson:"id"`
	Status string  `bson:"status"`
	Amount float64 `bson:"amount"`
}

// Store is a MongoDB backed orders.Repository.
type Store struct {
	client     *mongo.Client
	collection *mongo.Collection
	logger     *zap.Logger
}

// NewStore connects, pings the database and returns a ready store.
// No store is returned unless the server answered the ping.
func NewStore(ctx context.Context, opts Options, logger *zap.Logger) (*Store, error) {
	timeout := opts.ConnectTimeout
	if timeout <= 0 {
		timeout = defaultConnectTimeout
	}
	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(opts.URI))
	if err != nil {
		return nil, orders.NewInternalError("mongo.connect", err)
	}

	db := client.Database(opts.Database)
	if err := db.RunCommand(connectCtx, bson.D{{Key: "ping", Value: 1}}).Err(); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, orders.NewInternalError("mongo.ping", err)
	}

	s := newStore(db.Collection(opts.Collection), logger)
	s.client = client
	s.logger.Info("connected to MongoDB",
		zap.String("database", opts.Database),
		zap.String("collection", opts.Collection),
	)
	return s, nil
}

func newStore(coll *mongo.Collection, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{collection: coll, logger: logger}
}

// RegisterOrUpdate upserts the order document matched by id.
func (s *Store) RegisterOrUpdate(ctx context.Context, order orders.Order) error {
	doc := orderDocument{
		ID:     order.ID,
		Status: order.Status,
		Amount: order.Amount,
	}
	filter := bson.D{{Key: "id", Value: doc.ID}}
	update := bson.D{{Key: "$set", Value: doc}}

	res, err := s.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return orders.NewInternalError("mongo.register", err)
	}

	s.logger.Debug("order registered",
		zap.String("store", "mongo"),
		zap.Uint32("order_id", doc.ID),
		zap.Bool("inserted", res.UpsertedCount > 0),
	)
	return nil
}

// Get loads the order document with the given id.
func (s *Store) Get(ctx context.Context, id uint32) (orders.Order, error) {
	var doc orderDocument
	err := s.collection.FindOne(ctx, bson.D{{Key: "id", Value: id}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return orders.Order{}, orders.ErrNotFound
	}
	if err != nil {
		return orders.Order{}, orders.NewInternalError("mongo.get", err)
	}
	return orders.Order{ID: doc.ID, Status: doc.Status, Amount: doc.Amount}, nil
}

// EnsureIndexes creates the unique index on id.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "id", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("order_id_unique"),
	})
	if err != nil {
		return orders.NewInternalError("mongo.ensure_indexes", err)
	}
	return nil
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}
