package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hatimchharchhoda/Tweet/internal/apperrors"
	"github.com/hatimchharchhoda/Tweet/internal/models"
	"github.com/hatimchharchhoda/Tweet/internal/repositories"
)

// PostHandler handles HTTP requests related to posts, including the cascading
// delete of a post with its comments and likes
type PostHandler struct {
	postRepository repositories.PostRepository
	userRepository repositories.UserRepository
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(postRepo repositories.PostRepository, userRepo repositories.UserRepository) *PostHandler {
	return &PostHandler{
		postRepository: postRepo,
		userRepository: userRepo,
	}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.POST("/posts", h.CreatePost)
	g.GET("/posts/me", h.GetMyPosts)
	g.GET("/posts/:id", h.GetPost)
	g.DELETE("/posts/:id", h.DeletePost)
}

// CreatePost creates a new post authored by the authenticated user
func (h *PostHandler) CreatePost(c echo.Context) error {
	claims, err := currentUserClaims(c)
	if err != nil {
		return err
	}

	var req models.CreatePostRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.Validation("Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	// author must still resolve to a known user
	if _, err := h.userRepository.GetUserByID(claims.UserID); err != nil {
		return err
	}

	post := &models.Post{
		UserID:  claims.UserID,
		Content: req.Content,
	}

	if err := h.postRepository.CreatePost(c.Request().Context(), post); err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, post)
}

// GetPost retrieves a single post by ID
func (h *PostHandler) GetPost(c echo.Context) error {
	post, err := h.postRepository.GetPostByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, post)
}

// GetMyPosts retrieves the authenticated user's own posts, newest first
func (h *PostHandler) GetMyPosts(c echo.Context) error {
	claims, err := currentUserClaims(c)
	if err != nil {
		return err
	}

	page, limit := pageParams(c, 15, 50)
	skip := int64((page - 1) * limit)

	posts, err := h.postRepository.GetPostsByUserID(c.Request().Context(), claims.UserID, skip, int64(limit))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"posts": posts,
		"meta": echo.Map{
			"currentPage":  page,
			"itemsPerPage": limit,
			"hasMore":      len(posts) == limit,
		},
	})
}

// DeletePost removes a post together with all its comments and like records.
// Only the author may delete; the removal is all-or-nothing.
func (h *PostHandler) DeletePost(c echo.Context) error {
	claims, err := currentUserClaims(c)
	if err != nil {
		return err
	}
	postID := c.Param("id")

	post, err := h.postRepository.GetPostByID(c.Request().Context(), postID)
	if err != nil {
		return err
	}

	if post.UserID != claims.UserID {
		return apperrors.Forbidden("You are not authorized to delete this post")
	}

	if err := h.postRepository.DeletePostCascade(c.Request().Context(), postID); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Post and associated data deleted successfully",
	})
}
