package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"mingle/internal/graph"
	"mingle/internal/relationship"
	apperrors "mingle/pkg/errors"
)

// UserStore is the slice of the graph repository the HTTP layer needs
// for account management.
type UserStore interface {
	UpsertUser(ctx context.Context, user graph.UserNode) (*graph.UserNode, error)
	FindNode(ctx context.Context, userID string) (*graph.UserNode, error)
	AddInterest(ctx context.Context, userID, interest string) error
}

// Handler holds the services behind the HTTP API.
type Handler struct {
	users       UserStore
	follows     *relationship.FollowService
	blocks      *relationship.BlockService
	suggestions *relationship.SuggestionService
	mutuals     *relationship.MutualService
	logger      *zap.Logger
}

func NewHandler(
	users UserStore,
	follows *relationship.FollowService,
	blocks *relationship.BlockService,
	suggestions *relationship.SuggestionService,
	mutuals *relationship.MutualService,
	log *zap.Logger,
) *Handler {
	return &Handler{
		users:       users,
		follows:     follows,
		blocks:      blocks,
		suggestions: suggestions,
		mutuals:     mutuals,
		logger:      log,
	}
}

type createUserRequest struct {
	Username        string `json:"username" binding:"required"`
	DisplayName     string `json:"display_name"`
	Role            string `json:"role"`
	AvatarReference string `json:"avatar_reference"`
}

func (h *Handler) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := graph.UserNode{
		UserID:          uuid.NewString(),
		Username:        req.Username,
		DisplayName:     req.DisplayName,
		Role:            req.Role,
		AvatarReference: req.AvatarReference,
	}
	created, err := h.users.UpsertUser(c.Request.Context(), user)
	if err != nil {
		h.logger.Error("Failed to create user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (h *Handler) GetUser(c *gin.Context) {
	user, err := h.users.FindNode(c.Request.Context(), c.Param("id"))
	if err != nil {
		var notFound *apperrors.ErrUserNotFound
		if errors.As(err, &notFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		h.logger.Error("Failed to fetch user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch user"})
		return
	}

	c.JSON(http.StatusOK, user)
}

type addInterestRequest struct {
	Interest string `json:"interest" binding:"required"`
}

func (h *Handler) AddInterest(c *gin.Context) {
	var req addInterestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.users.AddInterest(c.Request.Context(), c.Param("id"), req.Interest); err != nil {
		h.logger.Error("Failed to add interest", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add interest"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "added"})
}

func (h *Handler) Follow(c *gin.Context) {
	res := h.follows.Follow(c.Request.Context(), c.Param("id"), c.Param("target"))
	c.JSON(res.StatusCode, res)
}

func (h *Handler) Unfollow(c *gin.Context) {
	res := h.follows.Unfollow(c.Request.Context(), c.Param("id"), c.Param("target"))
	c.JSON(res.StatusCode, res)
}

func (h *Handler) RemoveFollower(c *gin.Context) {
	res := h.follows.RemoveFollower(c.Request.Context(), c.Param("id"), c.Param("target"))
	c.JSON(res.StatusCode, res)
}

func (h *Handler) GetFollowers(c *gin.Context) {
	page, limit := pagingParams(c)
	res := h.follows.GetFollowers(c.Request.Context(), c.Param("id"), page, limit)
	c.JSON(res.StatusCode, res)
}

func (h *Handler) GetFollowing(c *gin.Context) {
	page, limit := pagingParams(c)
	res := h.follows.GetFollowing(c.Request.Context(), c.Param("id"), page, limit)
	c.JSON(res.StatusCode, res)
}

func (h *Handler) SearchFollowers(c *gin.Context) {
	page, limit := pagingParams(c)
	res := h.follows.SearchFollowers(c.Request.Context(), c.Param("id"), c.Query("q"), page, limit)
	c.JSON(res.StatusCode, res)
}

func (h *Handler) SearchFollowing(c *gin.Context) {
	page, limit := pagingParams(c)
	res := h.follows.SearchFollowing(c.Request.Context(), c.Param("id"), c.Query("q"), page, limit)
	c.JSON(res.StatusCode, res)
}

func (h *Handler) Block(c *gin.Context) {
	res := h.blocks.Block(c.Request.Context(), c.Param("id"), c.Param("target"))
	c.JSON(res.StatusCode, res)
}

func (h *Handler) Unblock(c *gin.Context) {
	res := h.blocks.Unblock(c.Request.Context(), c.Param("id"), c.Param("target"))
	c.JSON(res.StatusCode, res)
}

func (h *Handler) GetBlocked(c *gin.Context) {
	page, limit := pagingParams(c)
	res := h.blocks.GetBlocked(c.Request.Context(), c.Param("id"), page, limit)
	c.JSON(res.StatusCode, res)
}

func (h *Handler) GetSuggestions(c *gin.Context) {
	page, limit := pagingParams(c)
	res := h.suggestions.GetSuggestions(c.Request.Context(), c.Param("id"), page, limit)
	c.JSON(res.StatusCode, res)
}

func (h *Handler) GetInterestSuggestions(c *gin.Context) {
	page, limit := pagingParams(c)
	res := h.suggestions.GetInterestSuggestions(c.Request.Context(), c.Param("id"), page, limit)
	c.JSON(res.StatusCode, res)
}

func (h *Handler) GetMutualFollowers(c *gin.Context) {
	res := h.mutuals.MutualFollowers(c.Request.Context(), c.Param("id"), c.Param("target"))
	c.JSON(res.StatusCode, res)
}

// pagingParams reads page/limit query params, leaving normalization of
// out-of-range values to the services.
func pagingParams(c *gin.Context) (int, int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "0"))
	if err != nil {
		page = 0
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil {
		limit = 0
	}
	return page, limit
}
