// Package ranking computes the time-decayed engagement score used by the
// trending view. Likes weigh 0.6 and comments 0.4; the sum is divided by
// (hoursSincePosted + 1) so a fresh post gets a strong boost that decays
// hyperbolically. The +1 keeps the denominator finite for posts created in
// the same instant as the query.
package ranking

import (
	"sort"
	"time"

	"github.com/hatimchharchhoda/Tweet/internal/models"
)

// Scoring weights. Exported so the storage layer can push the same formula
// into an aggregation pipeline.
const (
	LikeWeight    = 0.6
	CommentWeight = 0.4
)

// EngagementScore computes the trending score for a post of the given age
func EngagementScore(likes, comments int, age time.Duration) float64 {
	hoursSincePosted := age.Hours()
	return (LikeWeight*float64(likes) + CommentWeight*float64(comments)) / (hoursSincePosted + 1)
}

// ScoredPost pairs a post with its engagement score
type ScoredPost struct {
	Post  models.Post
	Score float64
}

// RankByEngagement scores the posts at time now and returns up to limit of
// them, highest score first. Ties break newest-first, then by ID so the order
// stays deterministic.
func RankByEngagement(posts []models.Post, now time.Time, limit int) []ScoredPost {
	scored := make([]ScoredPost, len(posts))
	for i, p := range posts {
		scored[i] = ScoredPost{
			Post:  p,
			Score: EngagementScore(p.LikesCount, p.CommentsCount, now.Sub(p.CreatedAt)),
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		if !scored[i].Post.CreatedAt.Equal(scored[j].Post.CreatedAt) {
			return scored[i].Post.CreatedAt.After(scored[j].Post.CreatedAt)
		}
		return scored[i].Post.ID.Hex() > scored[j].Post.ID.Hex()
	})

	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored
}
