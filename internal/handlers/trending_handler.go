package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hatimchharchhoda/Tweet/internal/models"
	"github.com/hatimchharchhoda/Tweet/internal/repositories"
)

const trendingLimit = 10

// TrendingHandler serves the three ranked views over the post store. All
// three are read-only.
type TrendingHandler struct {
	postRepository repositories.PostRepository
	userRepository repositories.UserRepository
	now            func() time.Time
}

// NewTrendingHandler creates a new TrendingHandler
func NewTrendingHandler(postRepo repositories.PostRepository, userRepo repositories.UserRepository) *TrendingHandler {
	return &TrendingHandler{
		postRepository: postRepo,
		userRepository: userRepo,
		now:            time.Now,
	}
}

// RegisterTrendingRoutes registers trending-related routes
func (h *TrendingHandler) RegisterTrendingRoutes(g *echo.Group) {
	g.GET("/trending/likes", h.GetTrendingByLikes)
	g.GET("/trending/comments", h.GetTrendingByComments)
	g.GET("/trending/engagement", h.GetTrendingByEngagement)
}

// GetTrendingByLikes returns the top posts by like count
func (h *TrendingHandler) GetTrendingByLikes(c echo.Context) error {
	posts, err := h.postRepository.GetTopByLikes(c.Request().Context(), trendingLimit)
	if err != nil {
		return err
	}
	return h.respond(c, posts, nil)
}

// GetTrendingByComments returns the top posts by comment count
func (h *TrendingHandler) GetTrendingByComments(c echo.Context) error {
	posts, err := h.postRepository.GetTopByComments(c.Request().Context(), trendingLimit)
	if err != nil {
		return err
	}
	return h.respond(c, posts, nil)
}

// GetTrendingByEngagement returns the top posts by time-decayed engagement
// score, computed at query time over every post in the store
func (h *TrendingHandler) GetTrendingByEngagement(c echo.Context) error {
	scored, err := h.postRepository.GetTopByEngagement(c.Request().Context(), h.now(), trendingLimit)
	if err != nil {
		return err
	}

	ranked := make([]models.Post, len(scored))
	scores := make(map[string]float64, len(scored))
	for i, s := range scored {
		ranked[i] = s.Post
		scores[s.Post.ID.Hex()] = s.Score
	}
	return h.respond(c, ranked, scores)
}

func (h *TrendingHandler) respond(c echo.Context, posts []models.Post, scores map[string]float64) error {
	authors, err := resolveAuthors(h.userRepository, posts)
	if err != nil {
		return err
	}

	trending := make([]models.TrendingPost, len(posts))
	for i, p := range posts {
		trending[i] = models.TrendingPost{
			Post:   p,
			Author: authors[p.UserID],
		}
		if scores != nil {
			trending[i].EngagementScore = scores[p.ID.Hex()]
		}
	}

	return c.JSON(http.StatusOK, echo.Map{"posts": trending})
}
