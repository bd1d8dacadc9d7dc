package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/commune-app/backend/internal/models"
	"github.com/commune-app/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

func TestGetPreferencesDefaults(t *testing.T) {
	e := newEchoWithValidator()
	db := newTestDB(t)
	h := NewPreferenceHandler(repositories.NewPostgresPreferenceRepository(db))

	req := httptest.NewRequest(http.MethodGet, "/notifications/preferences", nil)
	rec := httptest.NewRecorder()

	if err := h.GetPreferences(newAuthedContext(e, req, rec, 1)); err != nil {
		t.Fatalf("handler failed: %v", err)
	}

	var settings models.PreferenceSettings
	if err := json.Unmarshal(rec.Body.Bytes(), &settings); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if !settings.Mentions.InApp || settings.Mentions.Email || settings.Mentions.Push {
		t.Fatalf("expected in-app-only defaults, got %+v", settings.Mentions)
	}
	if settings.QuietHours.Start != "22:00" || settings.QuietHours.End != "08:00" {
		t.Fatalf("unexpected default quiet hours: %+v", settings.QuietHours)
	}
	if settings.Digest.Frequency != "daily" {
		t.Fatalf("expected daily digest default, got %q", settings.Digest.Frequency)
	}
}

func TestUpdatePreferencesRoundTrip(t *testing.T) {
	e := newEchoWithValidator()
	db := newTestDB(t)
	repo := repositories.NewPostgresPreferenceRepository(db)
	h := NewPreferenceHandler(repo)

	settings := models.DefaultPreferenceSettings()
	settings.Mentions.Email = true
	settings.QuietHours.Enabled = true
	body, _ := json.Marshal(settings)

	req := httptest.NewRequest(http.MethodPut, "/notifications/preferences", strings.NewReader(string(body)))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	if err := h.UpdatePreferences(newAuthedContext(e, req, rec, 1)); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	// Read back through the handler, not the defaults path.
	req = httptest.NewRequest(http.MethodGet, "/notifications/preferences", nil)
	rec = httptest.NewRecorder()
	if err := h.GetPreferences(newAuthedContext(e, req, rec, 1)); err != nil {
		t.Fatalf("get failed: %v", err)
	}

	var got models.PreferenceSettings
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if !got.Mentions.Email || !got.QuietHours.Enabled {
		t.Fatalf("expected the saved settings back, got %+v", got)
	}
}

func TestUpdatePreferencesRejectsBadQuietHours(t *testing.T) {
	e := newEchoWithValidator()
	db := newTestDB(t)
	h := NewPreferenceHandler(repositories.NewPostgresPreferenceRepository(db))

	req := httptest.NewRequest(http.MethodPut, "/notifications/preferences",
		strings.NewReader(`{"quietHours":{"enabled":true,"start":"25:99","end":"08:00"}}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	err := h.UpdatePreferences(newAuthedContext(e, req, rec, 1))
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusBadRequest {
		t.Fatalf("expected a 400 for a malformed quiet-hours window, got %v", err)
	}
}

func TestUpdatePreferencesReplacesWholesale(t *testing.T) {
	e := newEchoWithValidator()
	db := newTestDB(t)
	repo := repositories.NewPostgresPreferenceRepository(db)
	h := NewPreferenceHandler(repo)

	put := func(body string) error {
		req := httptest.NewRequest(http.MethodPut, "/notifications/preferences", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		return h.UpdatePreferences(newAuthedContext(e, req, rec, 1))
	}

	if err := put(`{"mentions":{"inApp":true,"email":true}}`); err != nil {
		t.Fatalf("first update failed: %v", err)
	}
	if err := put(`{"replies":{"inApp":true}}`); err != nil {
		t.Fatalf("second update failed: %v", err)
	}

	stored, err := repo.GetByUserID(1)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	var got models.PreferenceSettings
	if err := json.Unmarshal([]byte(stored.Settings), &got); err != nil {
		t.Fatalf("stored settings corrupt: %v", err)
	}
	// The first record's email flag must be gone; replacement is not a merge.
	if got.Mentions.Email {
		t.Fatal("expected the second update to replace the record wholesale")
	}
	if !got.Replies.InApp {
		t.Fatalf("expected the second record's flags, got %+v", got.Replies)
	}
}
