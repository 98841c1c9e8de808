package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildercircle/server/internal/api/pagination"
	"github.com/buildercircle/server/internal/domain/events"
)

// stubEventRepo lets a test pick the storage outcome for Create; reads are
// not exercised here.
type stubEventRepo struct {
	createErr error
}

func (s *stubEventRepo) List(ctx context.Context, filters events.Filters, params pagination.Params) ([]events.Event, int64, error) {
	return nil, 0, nil
}

func (s *stubEventRepo) GetByID(ctx context.Context, id string) (*events.Event, error) {
	return nil, events.ErrNotFound
}

func (s *stubEventRepo) GetBySlug(ctx context.Context, slug string) (*events.Event, error) {
	return nil, events.ErrNotFound
}

func (s *stubEventRepo) Create(ctx context.Context, event *events.Event) error {
	return s.createErr
}

func (s *stubEventRepo) Update(ctx context.Context, id string, params events.UpdateParams, newSlug string) (*events.Event, error) {
	return nil, events.ErrNotFound
}

func (s *stubEventRepo) Delete(ctx context.Context, id string) error {
	return events.ErrNotFound
}

func (s *stubEventRepo) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	return false, nil
}

func eventsHandler(repo *stubEventRepo) *EventsHandler {
	return NewEventsHandler(events.NewService(repo, zerolog.Nop()), "test")
}

func createEvent(t *testing.T, handler *EventsHandler, body map[string]any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/events", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.Create(rec, req)
	return rec
}

func validEventBody() map[string]any {
	return map[string]any{
		"title":       "Solidity Workshop",
		"description": "Hands-on smart contract session.",
		"category":    "workshop",
		"location":    "Berlin",
		"startDate":   time.Now().Add(24 * time.Hour).Format(time.RFC3339),
	}
}

func responseErrorCode(t *testing.T, body []byte) (string, string) {
	t.Helper()
	var envelope struct {
		Success bool `json:"success"`
		Error   struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(body, &envelope))
	assert.False(t, envelope.Success)
	return envelope.Error.Code, envelope.Error.Message
}

func TestCreateValidationFailureIs400(t *testing.T) {
	body := validEventBody()
	body["title"] = ""

	rec := createEvent(t, eventsHandler(&stubEventRepo{}), body)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	code, _ := responseErrorCode(t, rec.Body.Bytes())
	assert.Equal(t, "VALIDATION_ERROR", code)
}

func TestCreateUnknownCategoryIs400(t *testing.T) {
	body := validEventBody()
	body["category"] = "rave"

	rec := createEvent(t, eventsHandler(&stubEventRepo{}), body)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	code, _ := responseErrorCode(t, rec.Body.Bytes())
	assert.Equal(t, "VALIDATION_ERROR", code)
}

func TestCreateSlugRaceIs409(t *testing.T) {
	repo := &stubEventRepo{createErr: events.ErrSlugTaken}

	rec := createEvent(t, eventsHandler(repo), validEventBody())

	assert.Equal(t, http.StatusConflict, rec.Code)
	code, _ := responseErrorCode(t, rec.Body.Bytes())
	assert.Equal(t, "DUPLICATE_ENTRY", code)
}

func TestCreateStorageFailureIs500(t *testing.T) {
	repo := &stubEventRepo{createErr: errors.New("connection refused")}

	rec := createEvent(t, eventsHandler(repo), validEventBody())

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	code, message := responseErrorCode(t, rec.Body.Bytes())
	assert.Equal(t, "INTERNAL_ERROR", code)
	// The storage error never reaches the client.
	assert.NotContains(t, message, "connection refused")
}
