package dynamo

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/imrishuroy/go-webhook-orderflow/internal/orders"
)

// mockDynamo stores items per table in a nested map: table -> pkValue -> item map.
type mockDynamo struct {
	mu       sync.Mutex
	tables   map[string]map[string]map[string]types.AttributeValue
	putErr   error
	putCalls int
}

func newMockDynamo() *mockDynamo {
	return &mockDynamo{
		tables: map[string]map[string]map[string]types.AttributeValue{},
	}
}

func (m *mockDynamo) ensureTable(tbl string) {
	if _, ok := m.tables[tbl]; !ok {
		m.tables[tbl] = map[string]map[string]types.AttributeValue{}
	}
}

func pkOf(item map[string]types.AttributeValue) (string, error) {
	v, ok := item["order_id"].(*types.AttributeValueMemberN)
	if !ok {
		return "", errors.New("no numeric order_id in item")
	}
	return v.Value, nil
}

func (m *mockDynamo) PutItem(ctx context.Context, params *dyn.PutItemInput, optFns ...func(*dyn.Options)) (*dyn.PutItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.putCalls++
	if m.putErr != nil {
		return nil, m.putErr
	}
	table := *params.TableName
	m.ensureTable(table)
	pk, err := pkOf(params.Item)
	if err != nil {
		return nil, err
	}
	m.tables[table][pk] = params.Item
	return &dyn.PutItemOutput{}, nil
}

func (m *mockDynamo) GetItem(ctx context.Context, params *dyn.GetItemInput, optFns ...func(*dyn.Options)) (*dyn.GetItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	table := *params.TableName
	m.ensureTable(table)
	pk, err := pkOf(params.Key)
	if err != nil {
		return nil, err
	}
	item, ok := m.tables[table][pk]
	if !ok {
		return &dyn.GetItemOutput{}, nil
	}
	return &dyn.GetItemOutput{Item: item}, nil
}

func TestRegisterOrUpdate_Success(t *testing.T) {
	mock := newMockDynamo()
	store := NewStore(mock, "orders", nil)
	fixed := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	store.nowFunc = func() time.Time { return fixed }

	err := store.RegisterOrUpdate(context.Background(), orders.Order{ID: 101, Status: "PAID", Amount: 75.5})
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}

	item, ok := mock.tables["orders"]["101"]
	if !ok {
		t.Fatalf("order item not stored")
	}
	var got orderItem
	if err := attributevalue.UnmarshalMap(item, &got); err != nil {
		t.Fatalf("unmarshal order: %v", err)
	}
	if got.OrderID != 101 || got.Status != "PAID" || got.Amount != 75.5 {
		t.Fatalf("stored item mismatch: %+v", got)
	}
	if !got.UpdatedAt.Equal(fixed) {
		t.Fatalf("updated_at mismatch: %v", got.UpdatedAt)
	}
}

func TestRegisterOrUpdate_OverwritesSameID(t *testing.T) {
	mock := newMockDynamo()
	store := NewStore(mock, "orders", nil)
	ctx := context.Background()

	if err := store.RegisterOrUpdate(ctx, orders.Order{ID: 5, Status: "PENDING", Amount: 10}); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if err := store.RegisterOrUpdate(ctx, orders.Order{ID: 5, Status: "PAID", Amount: 11}); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	if n := len(mock.tables["orders"]); n != 1 {
		t.Fatalf("expected 1 item, got %d", n)
	}
	got, err := store.Get(ctx, 5)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != "PAID" || got.Amount != 11 {
		t.Fatalf("expected latest values, got %+v", got)
	}
}

func TestRegisterOrUpdate_PutError(t *testing.T) {
	mock := newMockDynamo()
	mock.putErr = &types.ProvisionedThroughputExceededException{}
	store := NewStore(mock, "orders", nil)

	err := store.RegisterOrUpdate(context.Background(), orders.Order{ID: 1, Status: "PAID", Amount: 1})
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
	if !errors.Is(err, orders.ErrInternal) {
		t.Fatalf("expected ErrInternal, got %v", err)
	}
	var throttled *types.ProvisionedThroughputExceededException
	if !errors.As(err, &throttled) {
		t.Fatalf("expected driver cause to be kept, got %v", err)
	}
}

func TestGet_NotFound(t *testing.T) {
	store := NewStore(newMockDynamo(), "orders", nil)

	_, err := store.Get(context.Background(), 42)
	if !errors.Is(err, orders.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
