package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/hatimchharchhoda/Tweet/internal/apperrors"
	"github.com/hatimchharchhoda/Tweet/internal/models"
	"github.com/hatimchharchhoda/Tweet/internal/ranking"
	"github.com/hatimchharchhoda/Tweet/validators"
)

// fakeStore is an in-memory stand-in for the Mongo repositories. It mirrors
// their transactional behavior: counters move together with the ledger write,
// and an injected fault leaves nothing mutated.
type fakeStore struct {
	mu       sync.Mutex
	posts    map[string]*models.Post
	likes    map[string]*models.Like // keyed by "<userID>:<postHex>"
	comments []*models.Comment

	failCascade bool
	failToggle  bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		posts: make(map[string]*models.Post),
		likes: make(map[string]*models.Like),
	}
}

func likeKey(userID uint, postHex string) string {
	return fmt.Sprintf("%d:%s", userID, postHex)
}

func (s *fakeStore) seedPost(userID uint, content string, createdAt time.Time) *models.Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	post := &models.Post{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		Content:   content,
		CreatedAt: createdAt,
	}
	s.posts[post.ID.Hex()] = post
	return post
}

// --- PostRepository ---

func (s *fakeStore) CreatePost(_ context.Context, post *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	post.ID = primitive.NewObjectID()
	post.LikesCount = 0
	post.CommentsCount = 0
	post.CreatedAt = time.Now()
	s.posts[post.ID.Hex()] = post
	return nil
}

func (s *fakeStore) GetPostByID(_ context.Context, id string) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return nil, apperrors.Validation("invalid post ID format")
	}
	post, ok := s.posts[id]
	if !ok {
		return nil, apperrors.NotFound("post not found")
	}
	cp := *post
	return &cp, nil
}

func (s *fakeStore) allPostsSorted(less func(a, b *models.Post) bool) []models.Post {
	posts := make([]*models.Post, 0, len(s.posts))
	for _, p := range s.posts {
		posts = append(posts, p)
	}
	sort.Slice(posts, func(i, j int) bool { return less(posts[i], posts[j]) })
	out := make([]models.Post, len(posts))
	for i, p := range posts {
		out[i] = *p
	}
	return out
}

func newestFirst(a, b *models.Post) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID.Hex() > b.ID.Hex()
}

func page(posts []models.Post, skip, limit int64) []models.Post {
	if skip >= int64(len(posts)) {
		return []models.Post{}
	}
	posts = posts[skip:]
	if limit < int64(len(posts)) {
		posts = posts[:limit]
	}
	return posts
}

func (s *fakeStore) GetAllPosts(_ context.Context, skip, limit int64) ([]models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return page(s.allPostsSorted(newestFirst), skip, limit), nil
}

func (s *fakeStore) GetPostsByUserID(_ context.Context, userID uint, skip, limit int64) ([]models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := s.allPostsSorted(newestFirst)
	mine := []models.Post{}
	for _, p := range all {
		if p.UserID == userID {
			mine = append(mine, p)
		}
	}
	return page(mine, skip, limit), nil
}

func (s *fakeStore) CountPosts(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.posts)), nil
}

func (s *fakeStore) GetTopByLikes(_ context.Context, limit int64) ([]models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sorted := s.allPostsSorted(func(a, b *models.Post) bool {
		if a.LikesCount != b.LikesCount {
			return a.LikesCount > b.LikesCount
		}
		return newestFirst(a, b)
	})
	return page(sorted, 0, limit), nil
}

func (s *fakeStore) GetTopByComments(_ context.Context, limit int64) ([]models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sorted := s.allPostsSorted(func(a, b *models.Post) bool {
		if a.CommentsCount != b.CommentsCount {
			return a.CommentsCount > b.CommentsCount
		}
		return newestFirst(a, b)
	})
	return page(sorted, 0, limit), nil
}

func (s *fakeStore) GetTopByEngagement(_ context.Context, now time.Time, limit int64) ([]ranking.ScoredPost, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ranking.RankByEngagement(s.allPostsSorted(newestFirst), now, int(limit)), nil
}

func (s *fakeStore) DeletePostCascade(_ context.Context, postID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failCascade {
		// simulated storage fault: nothing may be observably applied
		return apperrors.Storage("failed to delete post", fmt.Errorf("simulated fault"))
	}
	if _, ok := s.posts[postID]; !ok {
		return apperrors.NotFound("post not found")
	}
	remaining := s.comments[:0]
	for _, cm := range s.comments {
		if cm.PostID.Hex() != postID {
			remaining = append(remaining, cm)
		}
	}
	s.comments = remaining
	for key, like := range s.likes {
		if like.PostID.Hex() == postID {
			delete(s.likes, key)
		}
	}
	delete(s.posts, postID)
	return nil
}

// --- LikeRepository ---

func (s *fakeStore) EnsureIndexes(context.Context) error { return nil }

func (s *fakeStore) ToggleLike(_ context.Context, userID uint, postID string) (*models.LikeStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failToggle {
		return nil, apperrors.Storage("failed to toggle like", fmt.Errorf("simulated fault"))
	}
	post, ok := s.posts[postID]
	if !ok {
		return nil, apperrors.NotFound("post not found")
	}

	key := likeKey(userID, postID)
	like, ok := s.likes[key]
	if ok {
		like.Liked = !like.Liked
		like.UpdatedAt = time.Now()
	} else {
		like = &models.Like{
			ID:        primitive.NewObjectID(),
			UserID:    userID,
			PostID:    post.ID,
			Liked:     true,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}
		s.likes[key] = like
	}

	if like.Liked {
		post.LikesCount++
	} else {
		post.LikesCount--
	}
	return &models.LikeStatus{IsLiked: like.Liked, LikeCount: int64(post.LikesCount)}, nil
}

func (s *fakeStore) GetLike(_ context.Context, userID uint, postID string) (*models.Like, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	like, ok := s.likes[likeKey(userID, postID)]
	if !ok {
		return nil, nil
	}
	cp := *like
	return &cp, nil
}

// --- CommentRepository ---

func (s *fakeStore) CreateComment(_ context.Context, comment *models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	post, ok := s.posts[comment.PostID.Hex()]
	if !ok {
		return apperrors.NotFound("post not found")
	}
	comment.ID = primitive.NewObjectID()
	comment.CreatedAt = time.Now()
	s.comments = append(s.comments, comment)
	post.CommentsCount++
	return nil
}

func (s *fakeStore) GetCommentsByPostID(_ context.Context, postID string) ([]models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Comment{}
	for _, cm := range s.comments {
		if cm.PostID.Hex() == postID {
			out = append(out, *cm)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.Hex() > out[j].ID.Hex()
	})
	return out, nil
}

func (s *fakeStore) countActiveLikes(postID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, like := range s.likes {
		if like.PostID.Hex() == postID && like.Liked {
			n++
		}
	}
	return n
}

func (s *fakeStore) countComments(postID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, cm := range s.comments {
		if cm.PostID.Hex() == postID {
			n++
		}
	}
	return n
}

// --- UserRepository ---

type fakeUserRepo struct {
	mu     sync.Mutex
	nextID uint
	users  map[uint]models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{nextID: 1, users: make(map[uint]models.User)}
}

func (r *fakeUserRepo) seedUser(name string) models.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	user := models.User{ID: r.nextID, Name: name, Email: fmt.Sprintf("%s@example.com", name)}
	r.users[user.ID] = user
	r.nextID++
	return user
}

func (r *fakeUserRepo) CreateUser(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user.ID = r.nextID
	r.users[user.ID] = *user
	r.nextID++
	return nil
}

func (r *fakeUserRepo) GetUserByID(id uint) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, apperrors.NotFound("user not found")
	}
	return &user, nil
}

func (r *fakeUserRepo) GetUserByEmail(email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			user := u
			return &user, nil
		}
	}
	return nil, apperrors.NotFound("user not found")
}

func (r *fakeUserRepo) GetUserByFirebaseUID(uid string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.FirebaseUID == uid {
			user := u
			return &user, nil
		}
	}
	return nil, apperrors.NotFound("user not found")
}

func (r *fakeUserRepo) GetUsersByIDs(ids []uint) (map[uint]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	byID := make(map[uint]models.User)
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			byID[id] = u
		}
	}
	return byID, nil
}

func (r *fakeUserRepo) UpdateUser(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = *user
	return nil
}

// --- Echo test plumbing ---

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = validators.NewValidator()
	e.HTTPErrorHandler = apperrors.ErrorHandler
	return e
}

// doRequest runs a handler directly, rendering any returned error through the
// application's error handler so status codes match production behavior
func doRequest(t *testing.T, e *echo.Echo, method, target string, body interface{}, userID uint, configure func(echo.Context), handler echo.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()

	var reqBody *bytes.Buffer
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reqBody = bytes.NewBuffer(encoded)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, target, reqBody)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if userID != 0 {
		c.Set("user", &models.JwtCustomClaims{UserID: userID})
	}
	if configure != nil {
		configure(c)
	}

	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response body %q: %v", rec.Body.String(), err)
	}
	return body
}
