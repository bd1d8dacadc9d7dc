package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/commune-app/backend/internal/models"
	"github.com/commune-app/backend/internal/repositories"
	"github.com/commune-app/backend/internal/services"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestGetGroupPostsReturnsGroupPage(t *testing.T) {
	e := newEchoWithValidator()
	db := newTestDB(t)

	groupRepo := repositories.NewPostgresGroupRepository(db)
	posts := newStubPostRepo()
	dispatcher := services.NewDispatcher(
		repositories.NewPostgresNotificationRepository(db),
		repositories.NewPostgresUserRepository(db),
		nil,
		zerolog.Nop(),
	)
	handler := NewGroupHandler(groupRepo, posts, dispatcher)

	group := &models.Group{Name: "go-readers", OwnerID: 1}
	if err := groupRepo.CreateGroup(group); err != nil {
		t.Fatalf("failed to seed group: %v", err)
	}
	inGroup := primitive.NewObjectID()
	elsewhere := primitive.NewObjectID()
	posts.posts[inGroup.Hex()] = &models.Post{ID: inGroup, GroupID: group.ID, Content: "welcome"}
	posts.posts[elsewhere.Hex()] = &models.Post{ID: elsewhere, GroupID: group.ID + 1, Content: "elsewhere"}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := newAuthedContext(e, req, rec, 1)
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprint(group.ID))

	if err := handler.GetGroupPosts(c); err != nil {
		t.Fatalf("get group posts failed: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body struct {
		Data struct {
			Posts []models.Post `json:"posts"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(body.Data.Posts) != 1 {
		t.Fatalf("expected 1 post for the group, got %d", len(body.Data.Posts))
	}
	if body.Data.Posts[0].GroupID != group.ID {
		t.Fatalf("expected group %d posts only, got post for group %d", group.ID, body.Data.Posts[0].GroupID)
	}
}

func TestGetGroupPostsMissingGroup(t *testing.T) {
	e := newEchoWithValidator()
	db := newTestDB(t)
	handler := NewGroupHandler(
		repositories.NewPostgresGroupRepository(db),
		newStubPostRepo(),
		services.NewDispatcher(
			repositories.NewPostgresNotificationRepository(db),
			repositories.NewPostgresUserRepository(db),
			nil,
			zerolog.Nop(),
		),
	)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := newAuthedContext(e, req, rec, 1)
	c.SetParamNames("id")
	c.SetParamValues("999")

	err := handler.GetGroupPosts(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for a missing group, got %v", err)
	}
}
