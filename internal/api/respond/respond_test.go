package respond

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestDataEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	Data(rec, http.StatusCreated, map[string]string{"id": "01JDWX5A3V9T2K4M6P8R0S1T2V"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.NotNil(t, body["data"])
	assert.Nil(t, body["error"])
}

func TestMessageEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	Message(rec, http.StatusOK, "unsubscribed")

	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "unsubscribed", body["message"])
}

func TestErrorEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/contact", nil)
	Error(rec, req, http.StatusBadRequest, CodeValidation, "message is required", nil, "test",
		WithDetails([]string{"message"}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, false, body["success"])

	errBody, ok := body["error"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, CodeValidation, errBody["code"])
	assert.Equal(t, "message is required", errBody["message"])
	assert.Equal(t, []any{"message"}, errBody["details"])
}

func TestErrorRedactsInternalsInProduction(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/blogs", nil)

	rec := httptest.NewRecorder()
	Error(rec, req, http.StatusInternalServerError, CodeInternal, "pg: connection refused", errors.New("boom"), "production")
	body := decode(t, rec)
	errBody := body["error"].(map[string]any)
	assert.Equal(t, "Internal Server Error", errBody["message"])

	rec = httptest.NewRecorder()
	Error(rec, req, http.StatusInternalServerError, CodeInternal, "pg: connection refused", errors.New("boom"), "development")
	body = decode(t, rec)
	errBody = body["error"].(map[string]any)
	assert.Equal(t, "pg: connection refused", errBody["message"])
}

func TestErrorDefaultsMessageToStatusText(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
	Error(rec, req, http.StatusNotFound, CodeNotFound, "", nil, "test")

	body := decode(t, rec)
	errBody := body["error"].(map[string]any)
	assert.Equal(t, "Not Found", errBody["message"])
}
