// Package feed holds the client-side page accumulator for infinite scroll.
// Offset pagination under concurrent writes can hand back boundary duplicates
// (a post created between fetches shifts the window), so consumers merge each
// page by identifier set-difference instead of appending blindly.
package feed

import "github.com/hatimchharchhoda/Tweet/internal/models"

// Accumulator collects feed pages, deduplicating by post ID. Not safe for
// concurrent use; each feed consumer owns its own accumulator.
type Accumulator struct {
	seen  map[string]struct{}
	posts []models.Post
}

// NewAccumulator creates an empty feed accumulator
func NewAccumulator() *Accumulator {
	return &Accumulator{seen: make(map[string]struct{})}
}

// Merge appends the posts from a page that have not been seen yet, preserving
// page order, and reports how many were added
func (a *Accumulator) Merge(page []models.Post) int {
	added := 0
	for _, p := range page {
		id := p.ID.Hex()
		if _, ok := a.seen[id]; ok {
			continue
		}
		a.seen[id] = struct{}{}
		a.posts = append(a.posts, p)
		added++
	}
	return added
}

// Posts returns the accumulated posts in arrival order
func (a *Accumulator) Posts() []models.Post {
	return a.posts
}

// Len returns the number of distinct posts accumulated
func (a *Accumulator) Len() int {
	return len(a.posts)
}

// HasMore reports whether another page should be requested after a fetch that
// returned `returned` items for a request of `requested`
func HasMore(returned, requested int) bool {
	return returned == requested
}
