package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hatimchharchhoda/Tweet/internal/models"
	"github.com/hatimchharchhoda/Tweet/internal/repositories"
)

// FeedHandler serves chronological pages of the global feed with offset
// pagination. Pages are independently fetchable; callers deduplicate against
// previously seen IDs because concurrent writes can shift the offset window.
type FeedHandler struct {
	postRepository repositories.PostRepository
	userRepository repositories.UserRepository
	likeRepository repositories.LikeRepository
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(postRepo repositories.PostRepository, userRepo repositories.UserRepository, likeRepo repositories.LikeRepository) *FeedHandler {
	return &FeedHandler{
		postRepository: postRepo,
		userRepository: userRepo,
		likeRepository: likeRepo,
	}
}

// RegisterFeedRoutes registers feed-related routes
func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group) {
	g.GET("/posts", h.GetFeed)
}

// GetFeed returns one feed page, newest first, enriched with author info and
// the requesting user's like state. hasMore is true iff the page came back
// full; a short page tells the caller to stop.
func (h *FeedHandler) GetFeed(c echo.Context) error {
	claims, err := currentUserClaims(c)
	if err != nil {
		return err
	}

	page, limit := pageParams(c, 15, 50)
	skip := int64((page - 1) * limit)

	posts, err := h.postRepository.GetAllPosts(c.Request().Context(), skip, int64(limit))
	if err != nil {
		return err
	}

	totalItems, err := h.postRepository.CountPosts(c.Request().Context())
	if err != nil {
		return err
	}

	authors, err := resolveAuthors(h.userRepository, posts)
	if err != nil {
		return err
	}

	enriched := make([]models.PostWithAuthor, len(posts))
	for i, p := range posts {
		like, err := h.likeRepository.GetLike(c.Request().Context(), claims.UserID, p.ID.Hex())
		if err != nil {
			return err
		}
		enriched[i] = models.PostWithAuthor{
			Post:    p,
			Author:  authors[p.UserID],
			IsLiked: like != nil && like.Liked,
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"posts": enriched,
		"meta": echo.Map{
			"currentPage":  page,
			"totalItems":   totalItems,
			"itemsPerPage": limit,
			"hasMore":      len(posts) == limit,
		},
	})
}
