package confirmation

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc := newTestService(t, true)
	seedEvent(t, svc)
	h := NewHandler(svc)

	r := gin.New()
	r.GET("/public/invitation/:ref", h.Lookup)
	r.POST("/public/confirm/:ref", h.Confirm)
	r.POST("/public/decline/:ref", h.Decline)
	r.GET("/public/rsvp/:eventID", h.EventCard)
	r.POST("/public/rsvp/:eventID", h.Register)
	return r
}

func TestLookupEndpoint(t *testing.T) {
	r := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/public/invitation/tok-zed", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var view GuestView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, "Zed", view.GuestName)
	assert.Equal(t, "Launch Party", view.EventName)
}

func TestLookupEndpointUnknownRef(t *testing.T) {
	r := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/public/invitation/tok-nope", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestConfirmEndpointIdempotent(t *testing.T) {
	r := newTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/public/confirm/tok-zed", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var result ConfirmResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, "confirmed", result.Status)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/public/confirm/tok-zed", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, "already_confirmed", result.Status)
}

func TestRegisterEndpointValidatesBody(t *testing.T) {
	r := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/public/rsvp/ev-1", strings.NewReader(`{"name":"Walk In"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	// Phone is required.
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegisterEndpoint(t *testing.T) {
	r := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/public/rsvp/ev-1", strings.NewReader(`{"name":"Walk In","phone":"555-0001"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	var result RegisterResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.NotEmpty(t, result.GuestID)
	assert.NotEmpty(t, result.Code)
}
