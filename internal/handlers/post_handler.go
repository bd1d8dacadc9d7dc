package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/commune-app/backend/internal/models"
	"github.com/commune-app/backend/internal/repositories"
	"github.com/commune-app/backend/internal/services"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// PostHandler handles HTTP requests related to posts, including group
// moderation of pending posts.
type PostHandler struct {
	postRepository  repositories.PostRepository
	userRepository  repositories.UserRepository
	groupRepository repositories.GroupRepository
	dispatcher      *services.Dispatcher
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(
	postRepo repositories.PostRepository,
	userRepo repositories.UserRepository,
	groupRepo repositories.GroupRepository,
	dispatcher *services.Dispatcher,
) *PostHandler {
	return &PostHandler{
		postRepository:  postRepo,
		userRepository:  userRepo,
		groupRepository: groupRepo,
		dispatcher:      dispatcher,
	}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.POST("/posts", h.CreatePost)
	g.GET("/posts/:id", h.GetPost)
	g.DELETE("/posts/:id", h.DeletePost)
	g.PUT("/groups/:id/posts/:post_id/approve", h.ApprovePost)
	g.PUT("/groups/:id/posts/:post_id/reject", h.RejectPost)
}

// CreatePost creates a new post. Posting into a group requires membership;
// moderated groups hold the post as pending until the owner approves it.
func (h *PostHandler) CreatePost(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.CreatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	author, err := h.userRepository.GetUserByID(currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Authenticated user not found in database")
	}

	status := models.PostApproved
	var group *models.Group
	if req.GroupID != 0 {
		group, err = h.groupRepository.GetGroupByID(req.GroupID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return echo.NewHTTPError(http.StatusNotFound, "Group not found")
			}
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}

		isMember, err := h.groupRepository.IsMember(req.GroupID, currentUserID)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		if !isMember {
			return echo.NewHTTPError(http.StatusForbidden, "You are not a member of this group")
		}

		if group.Moderated {
			status = models.PostPending
		}
	}

	post := &models.Post{
		UserID:     currentUserID,
		AuthorName: author.Name(),
		GroupID:    req.GroupID,
		Title:      req.Title,
		Content:    req.Content,
		Status:     status,
	}

	if err := h.postRepository.CreatePost(c.Request().Context(), post); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	postID := post.ID.Hex()
	if group != nil {
		if status == models.PostApproved {
			memberIDs, err := h.groupRepository.GetMemberIDs(group.ID)
			if err == nil {
				h.dispatcher.PostCreated(c.Request().Context(), currentUserID, memberIDs, group.ID, postID, post.Title)
			}
		} else {
			h.dispatcher.Notify(c.Request().Context(), group.OwnerID, services.Event{
				Type:      models.NotificationModerationAction,
				ActorID:   currentUserID,
				Title:     "Post awaiting approval",
				Message:   author.Name() + " posted in " + group.Name + " and needs approval",
				Data:      map[string]interface{}{"group_id": group.ID, "post_id": postID},
				ActionURL: "/posts/" + postID,
			})
		}
	}
	h.dispatcher.Mention(c.Request().Context(), currentUserID, models.Target{Type: models.TargetPost, ID: postID}, post.Content)

	return c.JSON(http.StatusCreated, post)
}

// GetPost retrieves a post by ID and bumps its view count
func (h *PostHandler) GetPost(c echo.Context) error {
	postID := c.Param("id")

	post, err := h.postRepository.GetPostByID(c.Request().Context(), postID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	}

	logger := c.Logger()
	go func() {
		if err := h.postRepository.IncrementViewCount(context.Background(), postID); err != nil {
			logger.Errorf("view counter update failed for post %s: %v", postID, err)
		}
	}()

	return c.JSON(http.StatusOK, post)
}

// DeletePost deletes a post. Only the author may delete it.
func (h *PostHandler) DeletePost(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	postID := c.Param("id")
	post, err := h.postRepository.GetPostByID(c.Request().Context(), postID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	}

	if post.UserID != currentUserID {
		return echo.NewHTTPError(http.StatusForbidden, "You are not authorized to delete this post")
	}

	if err := h.postRepository.DeletePost(c.Request().Context(), postID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// ApprovePost approves a pending group post and notifies its author
func (h *PostHandler) ApprovePost(c echo.Context) error {
	return h.moderatePost(c, true)
}

// RejectPost rejects a pending group post and notifies its author
func (h *PostHandler) RejectPost(c echo.Context) error {
	return h.moderatePost(c, false)
}

func (h *PostHandler) moderatePost(c echo.Context, approve bool) error {
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

	if group.OwnerID != currentUserID {
		return echo.NewHTTPError(http.StatusForbidden, "Only the group owner can moderate posts")
	}

	postID := c.Param("post_id")
	post, err := h.postRepository.GetPostByID(c.Request().Context(), postID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	}
	if post.GroupID != group.ID {
		return echo.NewHTTPError(http.StatusNotFound, "Post not found in this group")
	}

	status := models.PostApproved
	if !approve {
		status = models.PostRejected
	}
	if err := h.postRepository.UpdateStatus(c.Request().Context(), postID, status); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.dispatcher.PostApproval(c.Request().Context(), currentUserID, postID, post.UserID, approve)

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"status": status}})
}
