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

// ReactionHandler handles HTTP requests related to reactions
type ReactionHandler struct {
	reactionService    *services.ReactionService
	reactionRepository repositories.ReactionRepository
	postRepository     repositories.PostRepository
	commentRepository  repositories.CommentRepository
	dispatcher         *services.Dispatcher
}

// NewReactionHandler creates a new ReactionHandler
func NewReactionHandler(
	reactionService *services.ReactionService,
	reactionRepo repositories.ReactionRepository,
	postRepo repositories.PostRepository,
	commentRepo repositories.CommentRepository,
	dispatcher *services.Dispatcher,
) *ReactionHandler {
	return &ReactionHandler{
		reactionService:    reactionService,
		reactionRepository: reactionRepo,
		postRepository:     postRepo,
		commentRepository:  commentRepo,
		dispatcher:         dispatcher,
	}
}

// RegisterReactionRoutes registers reaction-related routes
func (h *ReactionHandler) RegisterReactionRoutes(g *echo.Group) {
	g.POST("/targets/:target_type/:target_id/reactions", h.ToggleReaction)
	g.DELETE("/targets/:target_type/:target_id/reactions", h.RemoveReaction)
	g.POST("/targets/:target_type/:target_id/reactions/recount", h.RecountReactions)
	g.GET("/targets/:target_type/:target_id/reactions/count", h.GetReactionCount)
	g.GET("/targets/:target_type/:target_id/reactions/status", h.GetReactionStatus)
}

// ToggleReaction adds the user's reaction to a target, or removes the one
// they already have
func (h *ReactionHandler) ToggleReaction(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	target, err := h.parseTarget(c)
	if err != nil {
		return err
	}

	var req models.ToggleReactionRequest
	if c.Request().ContentLength > 0 {
		if err := c.Bind(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
		}
		if err := c.Validate(&req); err != nil {
			return err
		}
	}

	// Resolve the target's author up front: posts are verified here (the
	// generic comment path is verified inside the service alongside its
	// counter), and the author is who a resulting notification goes to.
	authorID, err := h.targetAuthor(c, target)
	if err != nil {
		return err
	}

	result, err := h.reactionService.Toggle(c.Request().Context(), target, currentUserID, req.Kind)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTargetNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "Target not found")
		case errors.Is(err, services.ErrDuplicateReaction):
			return echo.NewHTTPError(http.StatusConflict, "Reaction already exists")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	// Notify only when a reaction was added; dispatch failures never unwind
	// the reaction itself.
	if result.Action == services.ReactionAdded && authorID != currentUserID {
		h.dispatcher.Reaction(c.Request().Context(), currentUserID, target, authorID, result.Reaction.Kind)
	}

	return c.JSON(http.StatusOK, result)
}

// RemoveReaction removes the user's reaction from a target
func (h *ReactionHandler) RemoveReaction(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	target, err := h.parseTarget(c)
	if err != nil {
		return err
	}

	if err := h.reactionService.Remove(c.Request().Context(), target, currentUserID); err != nil {
		switch {
		case errors.Is(err, services.ErrReactionNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "Reaction not found")
		case errors.Is(err, services.ErrTargetNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "Target not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// RecountReactions recomputes a target's counter from the reaction ledger
func (h *ReactionHandler) RecountReactions(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	target, err := h.parseTarget(c)
	if err != nil {
		return err
	}

	count, err := h.reactionService.Recount(c.Request().Context(), target)
	if err != nil {
		if errors.Is(err, services.ErrTargetNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Target not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"target_type": target.Type, "target_id": target.ID, "reaction_count": count})
}

// GetReactionCount retrieves the number of live reactions on a target
func (h *ReactionHandler) GetReactionCount(c echo.Context) error {
	target, err := h.parseTarget(c)
	if err != nil {
		return err
	}

	count, err := h.reactionRepository.CountByTarget(target)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"target_type": target.Type, "target_id": target.ID, "reaction_count": count})
}

// GetReactionStatus returns the authenticated user's live reaction on a
// target, if any
func (h *ReactionHandler) GetReactionStatus(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	target, err := h.parseTarget(c)
	if err != nil {
		return err
	}

	reaction, err := h.reactionRepository.GetReaction(target, currentUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusOK, echo.Map{"target_type": target.Type, "target_id": target.ID, "has_reacted": false})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"target_type": target.Type,
		"target_id":   target.ID,
		"has_reacted": true,
		"reaction":    reaction,
	})
}

func (h *ReactionHandler) parseTarget(c echo.Context) (models.Target, error) {
	targetType, err := models.ParseTargetType(c.Param("target_type"))
	if err != nil {
		return models.Target{}, echo.NewHTTPError(http.StatusBadRequest, "Invalid target type")
	}
	return models.Target{Type: targetType, ID: c.Param("target_id")}, nil
}

// targetAuthor resolves who owns the target, verifying post existence on the
// way (posts live in MongoDB, outside the reaction transaction).
func (h *ReactionHandler) targetAuthor(c echo.Context, target models.Target) (uint, error) {
	switch target.Type {
	case models.TargetPost:
		post, err := h.postRepository.GetPostByID(c.Request().Context(), target.ID)
		if err != nil {
			return 0, echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return post.UserID, nil
	case models.TargetComment:
		commentID, err := strconv.ParseUint(target.ID, 10, 32)
		if err != nil {
			return 0, echo.NewHTTPError(http.StatusNotFound, "Comment not found")
		}
		comment, err := h.commentRepository.GetCommentByID(uint(commentID))
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, echo.NewHTTPError(http.StatusNotFound, "Comment not found")
			}
			return 0, echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		return comment.UserID, nil
	}
	return 0, echo.NewHTTPError(http.StatusBadRequest, "Invalid target type")
}
