package handlers

import (
	"errors"
	"net/http"

	"github.com/commune-app/backend/internal/models"
	"github.com/commune-app/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// SubscriptionHandler handles HTTP requests related to subscriptions
type SubscriptionHandler struct {
	subscriptionRepository repositories.SubscriptionRepository
}

// NewSubscriptionHandler creates a new SubscriptionHandler
func NewSubscriptionHandler(subscriptionRepo repositories.SubscriptionRepository) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptionRepository: subscriptionRepo}
}

// RegisterSubscriptionRoutes registers subscription-related routes
func (h *SubscriptionHandler) RegisterSubscriptionRoutes(g *echo.Group) {
	g.POST("/subscriptions", h.Subscribe)
	g.DELETE("/subscriptions/:target_type/:target_id", h.Unsubscribe)
	g.GET("/subscriptions", h.ListSubscriptions)
}

// Subscribe creates or replaces the caller's subscription to a target.
// Resubscribing overwrites the channel flags wholesale.
func (h *SubscriptionHandler) Subscribe(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.SubscribeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	subscription := &models.Subscription{
		UserID:     currentUserID,
		TargetType: models.TargetType(req.TargetType),
		TargetID:   req.TargetID,
		InApp:      req.InApp,
		Email:      req.Email,
		Push:       req.Push,
	}

	if err := h.subscriptionRepository.Upsert(subscription); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, subscription)
}

// Unsubscribe removes the caller's subscription to a target
func (h *SubscriptionHandler) Unsubscribe(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	targetType, err := models.ParseTargetType(c.Param("target_type"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid target type")
	}
	target := models.Target{Type: targetType, ID: c.Param("target_id")}

	if err := h.subscriptionRepository.Delete(currentUserID, target); err != nil {
		if errors.Is(err, repositories.ErrSubscriptionNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Subscription not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// ListSubscriptions returns all of the caller's subscriptions, newest first
func (h *SubscriptionHandler) ListSubscriptions(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	subscriptions, err := h.subscriptionRepository.GetByUserID(currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"subscriptions": subscriptions}})
}
