package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/hatimchharchhoda/Tweet/internal/apperrors"
	"github.com/hatimchharchhoda/Tweet/internal/models"
	"github.com/hatimchharchhoda/Tweet/internal/repositories"
)

// CommentHandler handles HTTP requests related to comments
type CommentHandler struct {
	commentRepository repositories.CommentRepository
	postRepository    repositories.PostRepository
	userRepository    repositories.UserRepository
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(commentRepo repositories.CommentRepository, postRepo repositories.PostRepository, userRepo repositories.UserRepository) *CommentHandler {
	return &CommentHandler{
		commentRepository: commentRepo,
		postRepository:    postRepo,
		userRepository:    userRepo,
	}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.POST("/comments", h.CreateComment)
	g.GET("/comments", h.GetCommentsByPostID)
}

// CreateComment creates a new comment on a post. The comment insert and the
// post's counter increment commit together in the repository.
func (h *CommentHandler) CreateComment(c echo.Context) error {
	claims, err := currentUserClaims(c)
	if err != nil {
		return err
	}

	var req models.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.Validation("Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	postObjID, err := primitive.ObjectIDFromHex(req.PostID)
	if err != nil {
		return apperrors.Validation("invalid post ID format")
	}

	user, err := h.userRepository.GetUserByID(claims.UserID)
	if err != nil {
		return err
	}

	comment := &models.Comment{
		PostID:  postObjID,
		UserID:  user.ID,
		Content: req.Content,
	}

	if err := h.commentRepository.CreateComment(c.Request().Context(), comment); err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, models.CommentWithAuthor{
		Comment: *comment,
		Author:  user.ToCompact(),
	})
}

// GetCommentsByPostID retrieves all comments for a post, newest first, with
// resolved author names
func (h *CommentHandler) GetCommentsByPostID(c echo.Context) error {
	postID := c.QueryParam("post_id")
	if postID == "" {
		return apperrors.Validation("post_id is required")
	}

	if _, err := h.postRepository.GetPostByID(c.Request().Context(), postID); err != nil {
		return err
	}

	comments, err := h.commentRepository.GetCommentsByPostID(c.Request().Context(), postID)
	if err != nil {
		return err
	}

	ids := make([]uint, 0, len(comments))
	for _, cm := range comments {
		ids = append(ids, cm.UserID)
	}
	users, err := h.userRepository.GetUsersByIDs(ids)
	if err != nil {
		return err
	}

	enriched := make([]models.CommentWithAuthor, len(comments))
	for i, cm := range comments {
		u := users[cm.UserID]
		enriched[i] = models.CommentWithAuthor{Comment: cm, Author: u.ToCompact()}
	}

	return c.JSON(http.StatusOK, echo.Map{"comments": enriched})
}
