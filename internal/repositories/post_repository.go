package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hatimchharchhoda/Tweet/internal/apperrors"
	"github.com/hatimchharchhoda/Tweet/internal/models"
	"github.com/hatimchharchhoda/Tweet/internal/ranking"
)

// PostRepository defines the interface for post data operations. The
// denormalized counters are intentionally not mutable through this interface;
// only the like and comment repositories write them, atomically with their
// own state change.
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id string) (*models.Post, error)
	GetAllPosts(ctx context.Context, skip, limit int64) ([]models.Post, error)
	GetPostsByUserID(ctx context.Context, userID uint, skip, limit int64) ([]models.Post, error)
	CountPosts(ctx context.Context) (int64, error)
	GetTopByLikes(ctx context.Context, limit int64) ([]models.Post, error)
	GetTopByComments(ctx context.Context, limit int64) ([]models.Post, error)
	GetTopByEngagement(ctx context.Context, now time.Time, limit int64) ([]ranking.ScoredPost, error)
	DeletePostCascade(ctx context.Context, postID string) error
}

// feedSort orders newest-first with _id as a stable tie-break for posts
// created in the same instant
var feedSort = bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}

// MongoPostRepository implements PostRepository for MongoDB
type MongoPostRepository struct {
	client   *mongo.Client
	posts    *mongo.Collection
	likes    *mongo.Collection
	comments *mongo.Collection
}

// NewMongoPostRepository creates a new MongoPostRepository
func NewMongoPostRepository(db *mongo.Database) *MongoPostRepository {
	return &MongoPostRepository{
		client:   db.Client(),
		posts:    db.Collection("posts"),
		likes:    db.Collection("likes"),
		comments: db.Collection("comments"),
	}
}

// CreatePost creates a new post with zeroed counters
func (r *MongoPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	post.ID = primitive.NewObjectID()
	post.LikesCount = 0
	post.CommentsCount = 0
	post.CreatedAt = time.Now()
	if _, err := r.posts.InsertOne(ctx, post); err != nil {
		return apperrors.Storage("failed to create post", err)
	}
	return nil
}

// GetPostByID retrieves a post by ID
func (r *MongoPostRepository) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperrors.Validation("invalid post ID format")
	}

	var post models.Post
	err = r.posts.FindOne(ctx, bson.M{"_id": objID}).Decode(&post)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.NotFound("post not found")
		}
		return nil, apperrors.Storage("failed to fetch post", err)
	}
	return &post, nil
}

// GetAllPosts retrieves a page of posts, newest first. An out-of-range skip
// yields an empty slice, not an error.
func (r *MongoPostRepository) GetAllPosts(ctx context.Context, skip, limit int64) ([]models.Post, error) {
	findOptions := options.Find().SetSkip(skip).SetLimit(limit).SetSort(feedSort)
	return r.findPosts(ctx, bson.D{}, findOptions)
}

// GetPostsByUserID retrieves a page of posts authored by a specific user
func (r *MongoPostRepository) GetPostsByUserID(ctx context.Context, userID uint, skip, limit int64) ([]models.Post, error) {
	findOptions := options.Find().SetSkip(skip).SetLimit(limit).SetSort(feedSort)
	return r.findPosts(ctx, bson.M{"user_id": userID}, findOptions)
}

// CountPosts returns the total number of posts
func (r *MongoPostRepository) CountPosts(ctx context.Context) (int64, error) {
	count, err := r.posts.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, apperrors.Storage("failed to count posts", err)
	}
	return count, nil
}

// GetTopByLikes retrieves the most-liked posts, newest first among ties
func (r *MongoPostRepository) GetTopByLikes(ctx context.Context, limit int64) ([]models.Post, error) {
	sort := bson.D{{Key: "likes_count", Value: -1}, {Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}
	return r.findPosts(ctx, bson.D{}, options.Find().SetSort(sort).SetLimit(limit))
}

// GetTopByComments retrieves the most-discussed posts, newest first among ties
func (r *MongoPostRepository) GetTopByComments(ctx context.Context, limit int64) ([]models.Post, error) {
	sort := bson.D{{Key: "comments_count", Value: -1}, {Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}
	return r.findPosts(ctx, bson.D{}, options.Find().SetSort(sort).SetLimit(limit))
}

// GetTopByEngagement scores every post in the collection with the
// time-decayed engagement formula and returns up to limit of them, highest
// score first. The computation runs inside MongoDB as an aggregation;
// ranking.EngagementScore is the same formula in Go.
func (r *MongoPostRepository) GetTopByEngagement(ctx context.Context, now time.Time, limit int64) ([]ranking.ScoredPost, error) {
	// $subtract on two dates yields milliseconds
	const msPerHour = 3_600_000
	hoursSincePosted := bson.D{{Key: "$divide", Value: bson.A{
		bson.D{{Key: "$subtract", Value: bson.A{primitive.NewDateTimeFromTime(now), "$created_at"}}},
		msPerHour,
	}}}
	score := bson.D{{Key: "$divide", Value: bson.A{
		bson.D{{Key: "$add", Value: bson.A{
			bson.D{{Key: "$multiply", Value: bson.A{"$likes_count", ranking.LikeWeight}}},
			bson.D{{Key: "$multiply", Value: bson.A{"$comments_count", ranking.CommentWeight}}},
		}}},
		bson.D{{Key: "$add", Value: bson.A{hoursSincePosted, 1}}},
	}}}

	pipeline := mongo.Pipeline{
		{{Key: "$addFields", Value: bson.D{{Key: "engagement_score", Value: score}}}},
		{{Key: "$sort", Value: bson.D{
			{Key: "engagement_score", Value: -1},
			{Key: "created_at", Value: -1},
			{Key: "_id", Value: -1},
		}}},
		{{Key: "$limit", Value: limit}},
	}

	cursor, err := r.posts.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, apperrors.Storage("failed to rank posts", err)
	}
	defer cursor.Close(ctx)

	var docs []struct {
		models.Post `bson:",inline"`
		Score       float64 `bson:"engagement_score"`
	}
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, apperrors.Storage("failed to decode ranked posts", err)
	}

	scored := make([]ranking.ScoredPost, len(docs))
	for i, d := range docs {
		scored[i] = ranking.ScoredPost{Post: d.Post, Score: d.Score}
	}
	return scored, nil
}

// DeletePostCascade removes a post together with all its comments and like
// records inside a single transaction. Either all three removals commit or
// none of them are observable.
func (r *MongoPostRepository) DeletePostCascade(ctx context.Context, postID string) error {
	objID, err := primitive.ObjectIDFromHex(postID)
	if err != nil {
		return apperrors.Validation("invalid post ID format")
	}

	session, err := r.client.StartSession()
	if err != nil {
		return apperrors.Storage("failed to start session", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		if _, err := r.comments.DeleteMany(sc, bson.M{"post_id": objID}); err != nil {
			return nil, err
		}
		if _, err := r.likes.DeleteMany(sc, bson.M{"post_id": objID}); err != nil {
			return nil, err
		}
		res, err := r.posts.DeleteOne(sc, bson.M{"_id": objID})
		if err != nil {
			return nil, err
		}
		if res.DeletedCount == 0 {
			return nil, apperrors.NotFound("post not found")
		}
		return nil, nil
	})
	if err != nil {
		if apperrors.KindOf(err) == apperrors.KindNotFound {
			return err
		}
		return apperrors.Storage("failed to delete post", err)
	}
	return nil
}

func (r *MongoPostRepository) findPosts(ctx context.Context, filter interface{}, opts *options.FindOptions) ([]models.Post, error) {
	cursor, err := r.posts.Find(ctx, filter, opts)
	if err != nil {
		return nil, apperrors.Storage("failed to fetch posts", err)
	}
	defer cursor.Close(ctx)

	posts := []models.Post{}
	if err = cursor.All(ctx, &posts); err != nil {
		return nil, apperrors.Storage("failed to decode posts", err)
	}
	return posts, nil
}
