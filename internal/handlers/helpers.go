package handlers

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/hatimchharchhoda/Tweet/internal/apperrors"
	"github.com/hatimchharchhoda/Tweet/internal/models"
	"github.com/hatimchharchhoda/Tweet/internal/repositories"
)

// currentUserClaims extracts the authenticated user's JWT claims from context
func currentUserClaims(c echo.Context) (*models.JwtCustomClaims, error) {
	claims, ok := c.Get("user").(*models.JwtCustomClaims)
	if !ok || claims == nil {
		return nil, apperrors.AuthRequired("Authentication required")
	}
	return claims, nil
}

// maxPage caps client-supplied page numbers so the computed skip can never
// overflow. Anything past it is out of range and reads as an empty page.
const maxPage = 1_000_000

// pageParams parses page/limit query params with sane bounds
func pageParams(c echo.Context, defaultLimit, maxLimit int) (page, limit int) {
	page, _ = strconv.Atoi(c.QueryParam("page"))
	limit, _ = strconv.Atoi(c.QueryParam("limit"))
	if page < 1 {
		page = 1
	}
	if page > maxPage {
		page = maxPage
	}
	if limit < 1 || limit > maxLimit {
		limit = defaultLimit
	}
	return page, limit
}

// resolveAuthors maps the authoring user IDs of the posts to their compact
// views. Unknown authors resolve to a zero UserCompact rather than failing
// the read.
func resolveAuthors(userRepo repositories.UserRepository, posts []models.Post) (map[uint]models.UserCompact, error) {
	idSet := make(map[uint]struct{}, len(posts))
	ids := make([]uint, 0, len(posts))
	for _, p := range posts {
		if _, ok := idSet[p.UserID]; !ok {
			idSet[p.UserID] = struct{}{}
			ids = append(ids, p.UserID)
		}
	}

	users, err := userRepo.GetUsersByIDs(ids)
	if err != nil {
		return nil, err
	}

	authors := make(map[uint]models.UserCompact, len(users))
	for id, u := range users {
		authors[id] = u.ToCompact()
	}
	return authors, nil
}
