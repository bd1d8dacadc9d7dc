package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/commune-app/backend/internal/models"
	"github.com/commune-app/backend/internal/repositories"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	err = db.AutoMigrate(
		&models.User{},
		&models.Group{},
		&models.GroupMember{},
		&models.Comment{},
		&models.Reaction{},
		&models.Notification{},
		&models.Subscription{},
		&models.NotificationPreference{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

// newAuthedContext builds an echo context carrying the claims the JWT
// middleware would have set for userID.
func newAuthedContext(e *echo.Echo, req *http.Request, rec *httptest.ResponseRecorder, userID uint) echo.Context {
	c := e.NewContext(req, rec)
	if userID != 0 {
		c.Set("user", &models.JwtCustomClaims{UserID: userID})
	}
	return c
}

func seedInboxNotification(t *testing.T, db *gorm.DB, recipientID uint, read bool) *models.Notification {
	t.Helper()
	n := &models.Notification{
		RecipientID:  recipientID,
		Type:         models.NotificationReply,
		Title:        "New reply",
		Message:      "someone replied",
		Status:       models.NotificationScheduled,
		ScheduledFor: time.Now(),
	}
	if read {
		now := time.Now()
		n.ReadAt = &now
		n.Status = models.NotificationDelivered
	}
	if err := db.Create(n).Error; err != nil {
		t.Fatalf("failed to seed notification: %v", err)
	}
	return n
}

func TestGetNotificationsEnvelope(t *testing.T) {
	e := echo.New()
	db := newTestDB(t)
	h := NewNotificationHandler(repositories.NewPostgresNotificationRepository(db))

	for i := 0; i < 3; i++ {
		seedInboxNotification(t, db, 1, false)
	}
	seedInboxNotification(t, db, 1, true)

	req := httptest.NewRequest(http.MethodGet, "/notifications", nil)
	rec := httptest.NewRecorder()
	c := newAuthedContext(e, req, rec, 1)

	if err := h.GetNotifications(c); err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body struct {
		Success bool `json:"success"`
		Data    struct {
			Notifications []models.Notification `json:"notifications"`
			UnreadCount   int64                 `json:"unread_count"`
		} `json:"data"`
		Meta struct {
			TotalItems int64 `json:"totalItems"`
		} `json:"meta"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if !body.Success {
		t.Fatal("expected a success envelope")
	}
	if len(body.Data.Notifications) != 4 || body.Meta.TotalItems != 4 {
		t.Fatalf("expected 4 notifications, got %d (total %d)", len(body.Data.Notifications), body.Meta.TotalItems)
	}
	if body.Data.UnreadCount != 3 {
		t.Fatalf("expected unread count 3, got %d", body.Data.UnreadCount)
	}
}

func TestGetNotificationsUnreadOnly(t *testing.T) {
	e := echo.New()
	db := newTestDB(t)
	h := NewNotificationHandler(repositories.NewPostgresNotificationRepository(db))

	seedInboxNotification(t, db, 1, false)
	seedInboxNotification(t, db, 1, true)
	seedInboxNotification(t, db, 1, true)

	req := httptest.NewRequest(http.MethodGet, "/notifications?unread_only=true", nil)
	rec := httptest.NewRecorder()
	c := newAuthedContext(e, req, rec, 1)

	if err := h.GetNotifications(c); err != nil {
		t.Fatalf("handler failed: %v", err)
	}

	var body struct {
		Data struct {
			Notifications []models.Notification `json:"notifications"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if len(body.Data.Notifications) != 1 {
		t.Fatalf("expected only the unread notification, got %d", len(body.Data.Notifications))
	}
}

func TestGetNotificationsUnauthenticated(t *testing.T) {
	e := echo.New()
	db := newTestDB(t)
	h := NewNotificationHandler(repositories.NewPostgresNotificationRepository(db))

	req := httptest.NewRequest(http.MethodGet, "/notifications", nil)
	rec := httptest.NewRecorder()
	c := newAuthedContext(e, req, rec, 0)

	err := h.GetNotifications(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected a 401, got %v", err)
	}
}

func TestMarkAsReadOwnership(t *testing.T) {
	e := echo.New()
	db := newTestDB(t)
	repo := repositories.NewPostgresNotificationRepository(db)
	h := NewNotificationHandler(repo)

	mine := seedInboxNotification(t, db, 1, false)
	theirs := seedInboxNotification(t, db, 2, false)

	markAsRead := func(userID uint, notificationID uint) error {
		req := httptest.NewRequest(http.MethodPut, "/", nil)
		rec := httptest.NewRecorder()
		c := newAuthedContext(e, req, rec, userID)
		c.SetParamNames("id")
		c.SetParamValues(fmt.Sprint(notificationID))
		return h.MarkAsRead(c)
	}

	if err := markAsRead(1, mine.ID); err != nil {
		t.Fatalf("marking own notification failed: %v", err)
	}
	got, err := repo.GetByID(mine.ID)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if got.ReadAt == nil || got.Status != models.NotificationDelivered {
		t.Fatalf("expected a delivered, read notification, got %+v", got)
	}

	err = markAsRead(1, theirs.ID)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusForbidden {
		t.Fatalf("expected a 403 for someone else's notification, got %v", err)
	}

	err = markAsRead(1, 9999)
	httpErr, ok = err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusNotFound {
		t.Fatalf("expected a 404 for a missing notification, got %v", err)
	}
}

func TestMarkAllAsReadIdempotent(t *testing.T) {
	e := echo.New()
	db := newTestDB(t)
	repo := repositories.NewPostgresNotificationRepository(db)
	h := NewNotificationHandler(repo)

	seedInboxNotification(t, db, 1, false)
	seedInboxNotification(t, db, 1, false)

	markAll := func() error {
		req := httptest.NewRequest(http.MethodPut, "/notifications/read-all", nil)
		rec := httptest.NewRecorder()
		return h.MarkAllAsRead(newAuthedContext(e, req, rec, 1))
	}

	if err := markAll(); err != nil {
		t.Fatalf("mark all failed: %v", err)
	}
	if err := markAll(); err != nil {
		t.Fatalf("mark all on an all-read inbox failed: %v", err)
	}

	count, err := repo.GetUnreadCount(1)
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0 unread, got %d", count)
	}
}

func TestDeleteNotificationOwnership(t *testing.T) {
	e := echo.New()
	db := newTestDB(t)
	repo := repositories.NewPostgresNotificationRepository(db)
	h := NewNotificationHandler(repo)

	theirs := seedInboxNotification(t, db, 2, false)

	req := httptest.NewRequest(http.MethodDelete, "/", nil)
	rec := httptest.NewRecorder()
	c := newAuthedContext(e, req, rec, 1)
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprint(theirs.ID))

	err := h.DeleteNotification(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusForbidden {
		t.Fatalf("expected a 403, got %v", err)
	}
	if _, err := repo.GetByID(theirs.ID); err != nil {
		t.Fatal("the notification must survive a rejected delete")
	}
}
