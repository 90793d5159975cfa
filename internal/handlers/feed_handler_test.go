package handlers

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedFeed(store *fakeStore, userID uint, n int) {
	base := time.Now().Add(-time.Duration(n) * time.Minute)
	for i := 0; i < n; i++ {
		store.seedPost(userID, fmt.Sprintf("post %d", i), base.Add(time.Duration(i)*time.Minute))
	}
}

func fetchFeedPage(t *testing.T, h *FeedHandler, userID uint, page, limit int) map[string]interface{} {
	t.Helper()
	e := newTestEcho()
	target := fmt.Sprintf("/api/v1/posts?page=%d&limit=%d", page, limit)
	rec := doRequest(t, e, http.MethodGet, target, nil, userID, nil, h.GetFeed)
	require.Equal(t, http.StatusOK, rec.Code)
	return decodeBody(t, rec)
}

func TestFeedPagination(t *testing.T) {
	store := newFakeStore()
	users := newFakeUserRepo()
	user := users.seedUser("alice")
	seedFeed(store, user.ID, 23)

	h := NewFeedHandler(store, users, store)

	// 23 posts, page size 15: full first page, short second page
	body := fetchFeedPage(t, h, user.ID, 1, 15)
	posts := body["posts"].([]interface{})
	meta := body["meta"].(map[string]interface{})
	assert.Len(t, posts, 15)
	assert.Equal(t, true, meta["hasMore"])
	assert.Equal(t, float64(23), meta["totalItems"])

	body = fetchFeedPage(t, h, user.ID, 2, 15)
	posts = body["posts"].([]interface{})
	meta = body["meta"].(map[string]interface{})
	assert.Len(t, posts, 8)
	assert.Equal(t, false, meta["hasMore"])
}

func TestFeedPaginationCompleteness(t *testing.T) {
	store := newFakeStore()
	users := newFakeUserRepo()
	user := users.seedUser("alice")
	seedFeed(store, user.ID, 23)

	h := NewFeedHandler(store, users, store)

	// concatenating all pages yields every post exactly once, newest first
	seen := make(map[string]struct{})
	var lastCreated string
	total := 0
	for page := 1; ; page++ {
		body := fetchFeedPage(t, h, user.ID, page, 10)
		posts := body["posts"].([]interface{})
		for _, raw := range posts {
			p := raw.(map[string]interface{})
			id := p["id"].(string)
			_, dup := seen[id]
			require.False(t, dup, "post %s returned twice", id)
			seen[id] = struct{}{}

			created := p["created_at"].(string)
			if lastCreated != "" {
				assert.LessOrEqual(t, created, lastCreated, "feed must be newest-first")
			}
			lastCreated = created
		}
		total += len(posts)
		if !body["meta"].(map[string]interface{})["hasMore"].(bool) {
			break
		}
	}
	assert.Equal(t, 23, total)
}

func TestFeedOutOfRangePage(t *testing.T) {
	store := newFakeStore()
	users := newFakeUserRepo()
	user := users.seedUser("alice")
	seedFeed(store, user.ID, 3)

	h := NewFeedHandler(store, users, store)
	body := fetchFeedPage(t, h, user.ID, 5, 15)
	assert.Empty(t, body["posts"])
	assert.Equal(t, false, body["meta"].(map[string]interface{})["hasMore"])
}

func TestFeedHugePageReadsAsEmpty(t *testing.T) {
	store := newFakeStore()
	users := newFakeUserRepo()
	user := users.seedUser("alice")
	seedFeed(store, user.ID, 3)

	// a page number large enough to overflow (page-1)*limit must clamp to an
	// out-of-range read, not a negative skip
	h := NewFeedHandler(store, users, store)
	body := fetchFeedPage(t, h, user.ID, 1<<62, 15)
	assert.Empty(t, body["posts"])
	assert.Equal(t, false, body["meta"].(map[string]interface{})["hasMore"])
}

func TestFeedEnrichment(t *testing.T) {
	store := newFakeStore()
	users := newFakeUserRepo()
	alice := users.seedUser("alice")
	bob := users.seedUser("bob")
	post := store.seedPost(bob.ID, "hello", time.Now())

	_, err := store.ToggleLike(context.Background(), alice.ID, post.ID.Hex())
	require.NoError(t, err)

	h := NewFeedHandler(store, users, store)
	body := fetchFeedPage(t, h, alice.ID, 1, 15)
	posts := body["posts"].([]interface{})
	require.Len(t, posts, 1)

	p := posts[0].(map[string]interface{})
	assert.Equal(t, true, p["is_liked"])
	assert.Equal(t, float64(1), p["likes_count"])
	assert.Equal(t, "bob", p["author"].(map[string]interface{})["name"])
}
