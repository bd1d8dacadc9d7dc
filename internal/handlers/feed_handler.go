package handlers

import (
	"math"
	"net/http"

	"github.com/commune-app/backend/internal/models"
	"github.com/commune-app/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// FeedHandler handles feed-related HTTP requests
type FeedHandler struct {
	postRepository     repositories.PostRepository
	userRepository     repositories.UserRepository
	reactionRepository repositories.ReactionRepository
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(
	postRepo repositories.PostRepository,
	userRepo repositories.UserRepository,
	reactionRepo repositories.ReactionRepository,
) *FeedHandler {
	return &FeedHandler{
		postRepository:     postRepo,
		userRepository:     userRepo,
		reactionRepository: reactionRepo,
	}
}

// RegisterFeedRoutes registers feed-related routes
func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group) {
	g.GET("/feed", h.GetFeed)
}

// EnrichedPost is a post with author info and viewer-specific flags
type EnrichedPost struct {
	models.Post
	Author    models.UserCompact `json:"author"`
	IsReacted bool               `json:"is_reacted"`
}

// GetFeed returns one page of the feed. Sort is new, top or trending; pages
// advance by page/limit, or by keyset when a cursor is supplied (the cursor
// wins and page is ignored).
func (h *FeedHandler) GetFeed(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)

	sort := c.QueryParam("sort")
	if sort == "" {
		sort = repositories.FeedSortNew
	}
	switch sort {
	case repositories.FeedSortNew, repositories.FeedSortTop, repositories.FeedSortTrending:
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid sort: must be new, top or trending")
	}

	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", 10)
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 10
	}

	query := repositories.FeedQuery{
		Sort:    sort,
		Page:    page,
		Limit:   limit,
		Cursor:  c.QueryParam("cursor"),
		Search:  c.QueryParam("search"),
		GroupID: uint(queryInt(c, "group_id", 0)),
	}

	posts, total, err := h.postRepository.ListFeed(c.Request().Context(), query)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	// Collect author IDs and post IDs from the page
	authorIDs := make(map[uint]bool)
	postIDs := make([]string, len(posts))
	for i, p := range posts {
		authorIDs[p.UserID] = true
		postIDs[i] = p.ID.Hex()
	}

	userMap := make(map[uint]models.UserCompact)
	for id := range authorIDs {
		if user, err := h.userRepository.GetUserByID(id); err == nil {
			userMap[id] = user.ToCompact()
		}
	}

	// Viewer's reactions for this page, one query
	reactedMap := make(map[string]bool)
	if currentUserID > 0 {
		reactedMap, _ = h.reactionRepository.GetReactedPostIDs(currentUserID, postIDs)
	}

	enrichedPosts := make([]EnrichedPost, len(posts))
	for i, p := range posts {
		enrichedPosts[i] = EnrichedPost{
			Post:      p,
			Author:    userMap[p.UserID],
			IsReacted: reactedMap[p.ID.Hex()],
		}
	}

	offset := (page - 1) * limit
	if query.Cursor != "" {
		offset = 0
	}
	totalPages := int(math.Ceil(float64(total) / float64(limit)))

	meta := echo.Map{
		"page":    page,
		"limit":   limit,
		"total":   total,
		"pages":   totalPages,
		"hasMore": int64(offset+limit) < total,
	}
	if len(posts) > 0 {
		meta["nextCursor"] = posts[len(posts)-1].ID.Hex()
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    echo.Map{"posts": enrichedPosts},
		"meta":    meta,
	})
}
