package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/commune-app/backend/internal/models"
	"github.com/commune-app/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// PreferenceHandler handles the per-user notification preference record. The
// record is stored and returned as-is; the dispatcher does not consult it
// before creating notifications.
type PreferenceHandler struct {
	preferenceRepository repositories.PreferenceRepository
}

// NewPreferenceHandler creates a new PreferenceHandler
func NewPreferenceHandler(preferenceRepo repositories.PreferenceRepository) *PreferenceHandler {
	return &PreferenceHandler{preferenceRepository: preferenceRepo}
}

// RegisterPreferenceRoutes registers preference-related routes
func (h *PreferenceHandler) RegisterPreferenceRoutes(g *echo.Group) {
	g.GET("/notifications/preferences", h.GetPreferences)
	g.PUT("/notifications/preferences", h.UpdatePreferences)
}

// GetPreferences returns the caller's preference record, or the defaults
// when none was ever saved
func (h *PreferenceHandler) GetPreferences(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	preference, err := h.preferenceRepository.GetByUserID(currentUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusOK, models.DefaultPreferenceSettings())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	var settings models.PreferenceSettings
	if err := json.Unmarshal([]byte(preference.Settings), &settings); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Stored preferences are corrupt")
	}

	return c.JSON(http.StatusOK, settings)
}

// UpdatePreferences replaces the caller's preference record wholesale
func (h *PreferenceHandler) UpdatePreferences(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var settings models.PreferenceSettings
	if err := c.Bind(&settings); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&settings); err != nil {
		return err
	}

	raw, err := json.Marshal(settings)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	preference := &models.NotificationPreference{
		UserID:   currentUserID,
		Settings: string(raw),
	}
	if err := h.preferenceRepository.Replace(preference); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, settings)
}
