// Package dynamo persists orders in a DynamoDB table keyed by order_id.
package dynamo

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"

	"github.com/imrishuroy/go-webhook-orderflow/internal/aws"
	"github.com/imrishuroy/go-webhook-orderflow/internal/orders"
)

// orderItem is the shape stored in the orders table.
type orderItem struct {
	OrderID   uint32    `dynamodbav:"order_id"` // PK
	Status    string    `dynamodbav:"status"`
	Amount    float64   `dynamodbav:"amount"`
	UpdatedAt time.Time `dynamodbav:"updated_at"`
}

// Store encapsulates operations on the orders table.
type Store struct {
	client    aws.DynamoDBAPI
	tableName string
	nowFunc   func() time.Time
	logger    *zap.Logger
}

// NewStore creates a new orders Store.
func NewStore(client aws.DynamoDBAPI, tableName string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		client:    client,
		tableName: tableName,
		nowFunc:   time.Now,
		logger:    logger,
	}
}

// RegisterOrUpdate writes the whole item. PutItem replaces any item with the
// same key, which gives insert-or-overwrite semantics in a single request.
func (s *Store) RegisterOrUpdate(ctx context.Context, order orders.Order) error {
	item, err := attributevalue.MarshalMap(orderItem{
		OrderID:   order.ID,
		Status:    order.Status,
		Amount:    order.Amount,
		UpdatedAt: s.nowFunc().UTC(),
	})
	if err != nil {
		return orders.NewInternalError("dynamo.marshal", err)
	}

	_, err = s.client.PutItem(ctx, &dyn.PutItemInput{
		TableName: &s.tableName,
		Item:      item,
	})
	if err != nil {
		s.logAPIError("put item", order.ID, err)
		return orders.NewInternalError("dynamo.register", err)
	}

	s.logger.Debug("order registered",
		zap.String("store", "dynamodb"),
		zap.Uint32("order_id", order.ID),
	)
	return nil
}

// Get fetches an order by order_id.
func (s *Store) Get(ctx context.Context, id uint32) (orders.Order, error) {
	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName: &s.tableName,
		Key:       orderKey(id),
	})
	if err != nil {
		s.logAPIError("get item", id, err)
		return orders.Order{}, orders.NewInternalError("dynamo.get", err)
	}
	if len(out.Item) == 0 {
		return orders.Order{}, orders.ErrNotFound
	}

	var it orderItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return orders.Order{}, orders.NewInternalError("dynamo.unmarshal", err)
	}
	return orders.Order{ID: it.OrderID, Status: it.Status, Amount: it.Amount}, nil
}

func (s *Store) logAPIError(op string, id uint32, err error) {
	fields := []zap.Field{
		zap.String("table", s.tableName),
		zap.Uint32("order_id", id),
		zap.Error(err),
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		fields = append(fields, zap.String("code", apiErr.ErrorCode()))
	}
	s.logger.Warn("dynamodb "+op+" failed", fields...)
}

func orderKey(id uint32) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"order_id": &types.AttributeValueMemberN{Value: strconv.FormatUint(uint64(id), 10)},
	}
}
