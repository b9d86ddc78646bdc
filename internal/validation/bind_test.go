package validation

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Name string `json:"name" validate:"required"`
}

func bindRequest(t *testing.T, body string, limit int64) (*httptest.ResponseRecorder, envelope, error) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.ContentLength = -1
	if limit > 0 {
		req.Body = http.MaxBytesReader(w, req.Body, limit)
	}
	c.Request = req

	var out envelope
	err := BindAndValidate(c, &out, New())
	return w, out, err
}

func TestBindAndValidate_OK(t *testing.T) {
	w, out, err := bindRequest(t, "{\"name\":\"a\"}\n", 64)
	require.NoError(t, err)
	assert.Equal(t, "a", out.Name)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestBindAndValidate_Rejects(t *testing.T) {
	tests := map[string]string{
		"trailing data":    `{"name":"a"}{"name":"b"}`,
		"trailing garbage": `{"name":"a"}x`,
		"missing field":    `{}`,
		"not json":         `name=a`,
	}

	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			w, _, err := bindRequest(t, body, 0)
			require.Error(t, err)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "Bad Request", w.Body.String())
		})
	}
}

func TestBindAndValidate_BodyOverLimit(t *testing.T) {
	w, _, err := bindRequest(t, `{"name":"a"}`+strings.Repeat(" ", 100), 32)
	require.Error(t, err)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}
