package validation

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderPayload_Valid(t *testing.T) {
	v := New()

	var p OrderPayload
	require.NoError(t, json.Unmarshal([]byte(`{"pedido_id":101,"monto":75.5,"estado_actual":"PAID"}`), &p))

	assert.NoError(t, v.Struct(p))
	assert.Equal(t, uint32(101), *p.OrderID)
	assert.Equal(t, 75.5, *p.Amount)
	assert.Equal(t, "PAID", *p.Status)
}

func TestOrderPayload_ZeroValuesArePresent(t *testing.T) {
	v := New()

	var p OrderPayload
	require.NoError(t, json.Unmarshal([]byte(`{"pedido_id":0,"monto":0,"estado_actual":""}`), &p))

	assert.NoError(t, v.Struct(p))
}

func TestOrderPayload_MissingFields(t *testing.T) {
	v := New()

	var p OrderPayload
	require.NoError(t, json.Unmarshal([]byte(`{"monto":10}`), &p))

	err := v.Struct(p)
	require.Error(t, err)

	msg := Describe(err)
	assert.Contains(t, msg, "missing field pedido_id")
	assert.Contains(t, msg, "missing field estado_actual")
	assert.NotContains(t, msg, "monto")
}

func TestDescribe_TypeMismatch(t *testing.T) {
	var p OrderPayload
	err := json.Unmarshal([]byte(`{"pedido_id":1,"monto":"abc","estado_actual":"PAID"}`), &p)
	require.Error(t, err)

	assert.Equal(t, "field monto: expected number, got string", Describe(err))
}

func TestDescribe_NegativeID(t *testing.T) {
	var p OrderPayload
	err := json.Unmarshal([]byte(`{"pedido_id":-1,"monto":1,"estado_actual":"PAID"}`), &p)
	require.Error(t, err)

	assert.Contains(t, Describe(err), "field pedido_id: expected non-negative integer")
}

func TestDescribe_NotAnObject(t *testing.T) {
	var p OrderPayload
	err := json.Unmarshal([]byte(`[1,2,3]`), &p)
	require.Error(t, err)

	assert.Equal(t, "expected object, got array", Describe(err))
}
