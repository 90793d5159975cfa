package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hatimchharchhoda/Tweet/internal/apperrors"
	"github.com/hatimchharchhoda/Tweet/internal/models"
	"github.com/hatimchharchhoda/Tweet/internal/repositories"
)

// LikeHandler handles the like toggle and status endpoints. Toggling is
// idempotent in effect: two toggles in sequence restore the original liked
// state and counter.
type LikeHandler struct {
	likeRepository repositories.LikeRepository
	postRepository repositories.PostRepository
	userRepository repositories.UserRepository
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(likeRepo repositories.LikeRepository, postRepo repositories.PostRepository, userRepo repositories.UserRepository) *LikeHandler {
	return &LikeHandler{
		likeRepository: likeRepo,
		postRepository: postRepo,
		userRepository: userRepo,
	}
}

// RegisterLikeRoutes registers reaction-related routes
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group) {
	g.POST("/reactions/toggle", h.ToggleLike)
	g.GET("/reactions/status", h.GetLikeStatus)
}

// ToggleLike flips the authenticated user's like state for a post and returns
// the authoritative post-toggle state for the caller to reconcile against
func (h *LikeHandler) ToggleLike(c echo.Context) error {
	claims, err := currentUserClaims(c)
	if err != nil {
		return err
	}

	var req models.ToggleLikeRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.Validation("Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if _, err := h.userRepository.GetUserByID(claims.UserID); err != nil {
		return err
	}

	status, err := h.likeRepository.ToggleLike(c.Request().Context(), claims.UserID, req.PostID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"liked":      status.IsLiked,
		"like_count": status.LikeCount,
	})
}

// GetLikeStatus reports whether the authenticated user has liked a post and
// the post's current like count. The count is read from the post's counter,
// never recomputed by scanning the ledger.
func (h *LikeHandler) GetLikeStatus(c echo.Context) error {
	claims, err := currentUserClaims(c)
	if err != nil {
		return err
	}

	postID := c.QueryParam("post_id")
	if postID == "" {
		return apperrors.Validation("post_id is required")
	}

	post, err := h.postRepository.GetPostByID(c.Request().Context(), postID)
	if err != nil {
		return err
	}

	like, err := h.likeRepository.GetLike(c.Request().Context(), claims.UserID, postID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, models.LikeStatus{
		IsLiked:   like != nil && like.Liked,
		LikeCount: int64(post.LikesCount),
	})
}
