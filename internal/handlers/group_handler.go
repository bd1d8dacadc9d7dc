package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/commune-app/backend/internal/models"
	"github.com/commune-app/backend/internal/repositories"
	"github.com/commune-app/backend/internal/services"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// GroupHandler handles HTTP requests related to groups
type GroupHandler struct {
	groupRepository repositories.GroupRepository
	postRepository  repositories.PostRepository
	dispatcher      *services.Dispatcher
}

// NewGroupHandler creates a new GroupHandler
func NewGroupHandler(groupRepo repositories.GroupRepository, postRepo repositories.PostRepository, dispatcher *services.Dispatcher) *GroupHandler {
	return &GroupHandler{
		groupRepository: groupRepo,
		postRepository:  postRepo,
		dispatcher:      dispatcher,
	}
}

// RegisterGroupRoutes registers group-related routes
func (h *GroupHandler) RegisterGroupRoutes(g *echo.Group) {
	g.POST("/groups", h.CreateGroup)
	g.GET("/groups", h.GetGroups)
	g.GET("/groups/:id/posts", h.GetGroupPosts)
	g.POST("/groups/:id/join", h.JoinGroup)
}

// CreateGroup creates a new group. The creator becomes its owner and
// first member in the same transaction.
func (h *GroupHandler) CreateGroup(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.CreateGroupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	group := &models.Group{
		Name:        req.Name,
		Description: req.Description,
		OwnerID:     currentUserID,
		Moderated:   req.Moderated,
	}

	if err := h.groupRepository.CreateGroup(group); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, group)
}

// GetGroups retrieves all groups
func (h *GroupHandler) GetGroups(c echo.Context) error {
	groups, err := h.groupRepository.GetGroups()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, groups)
}

// GetGroupPosts retrieves a group's posts, newest first
func (h *GroupHandler) GetGroupPosts(c echo.Context) error {
	groupID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid group ID")
	}

	if _, err := h.groupRepository.GetGroupByID(uint(groupID)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Group not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", 10)
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 10
	}

	posts, err := h.postRepository.GetPostsByGroupID(c.Request().Context(), uint(groupID), int64((page-1)*limit), int64(limit))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    echo.Map{"posts": posts},
		"meta":    echo.Map{"page": page, "limit": limit},
	})
}

// JoinGroup adds the current user to a group and notifies the owner.
func (h *GroupHandler) JoinGroup(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	groupID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid group ID")
	}

	group, err := h.groupRepository.GetGroupByID(uint(groupID))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Group not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	isMember, err := h.groupRepository.IsMember(group.ID, currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if isMember {
		return echo.NewHTTPError(http.StatusConflict, "You are already a member of this group")
	}

	member := &models.GroupMember{
		GroupID: group.ID,
		UserID:  currentUserID,
		Role:    "member",
	}
	if err := h.groupRepository.AddMember(member); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.dispatcher.GroupJoined(c.Request().Context(), currentUserID, group)

	return c.JSON(http.StatusOK, member)
}
