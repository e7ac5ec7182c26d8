package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteErrorEnvelope(t *testing.T) {
	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-1")
	rr := httptest.NewRecorder()

	err := NewError("order_rejected", "billing_address:\naddress 3 is not a billing address", http.StatusUnprocessableEntity).
		WithDetails(map[string]any{"rule": "billing_address", "status": 999})
	WriteError(ctx, rr, err)

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "order_rejected", body["error"])
	assert.Equal(t, "billing_address: address 3 is not a billing address", body["message"])
	assert.Equal(t, float64(422), body["status"])
	assert.Equal(t, "req-1", body["request_id"])
	assert.Equal(t, "billing_address", body["rule"])
}

func TestNewErrorDefaultsAndTruncates(t *testing.T) {
	err := NewError("x", strings.Repeat("m", 600), 0)
	assert.Equal(t, http.StatusInternalServerError, err.Status)
	assert.Len(t, err.Message, 512)

	rr := httptest.NewRecorder()
	WriteError(context.Background(), rr, err)
	assert.NotContains(t, rr.Body.String(), "request_id")
}
