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
)

// LikeRepository defines the interface for like data operations. Toggling is
// the only path that mutates a post's likes_count.
type LikeRepository interface {
	ToggleLike(ctx context.Context, userID uint, postID string) (*models.LikeStatus, error)
	GetLike(ctx context.Context, userID uint, postID string) (*models.Like, error)
	EnsureIndexes(ctx context.Context) error
}

// MongoLikeRepository implements LikeRepository for MongoDB. It holds the
// posts collection as well because the counter update must commit in the same
// transaction as the like write.
type MongoLikeRepository struct {
	client *mongo.Client
	likes  *mongo.Collection
	posts  *mongo.Collection
}

// NewMongoLikeRepository creates a new MongoLikeRepository
func NewMongoLikeRepository(db *mongo.Database) *MongoLikeRepository {
	return &MongoLikeRepository{
		client: db.Client(),
		likes:  db.Collection("likes"),
		posts:  db.Collection("posts"),
	}
}

// EnsureIndexes creates the unique (user_id, post_id) index that serializes
// concurrent first-likes from the same user
func (r *MongoLikeRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.likes.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "post_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return apperrors.Storage("failed to create like index", err)
	}
	return nil
}

// ToggleLike flips the like state for (userID, postID) and adjusts the post's
// counter by exactly one, both inside a single transaction. The first toggle
// creates the record with liked=true; later toggles negate the flag in place.
// Returns the new liked state together with the post-commit counter value.
func (r *MongoLikeRepository) ToggleLike(ctx context.Context, userID uint, postID string) (*models.LikeStatus, error) {
	objID, err := primitive.ObjectIDFromHex(postID)
	if err != nil {
		return nil, apperrors.Validation("invalid post ID format")
	}

	session, err := r.client.StartSession()
	if err != nil {
		return nil, apperrors.Storage("failed to start session", err)
	}
	defer session.EndSession(ctx)

	result, err := session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		liked, err := r.flipLike(sc, userID, objID)
		if err != nil {
			return nil, err
		}

		delta := 1
		if !liked {
			delta = -1
		}
		count, err := r.adjustLikesCount(sc, objID, delta)
		if err != nil {
			return nil, err
		}
		return &models.LikeStatus{IsLiked: liked, LikeCount: count}, nil
	})
	if err != nil {
		switch apperrors.KindOf(err) {
		case apperrors.KindNotFound, apperrors.KindConflict:
			return nil, err
		}
		return nil, apperrors.Storage("failed to toggle like", err)
	}
	return result.(*models.LikeStatus), nil
}

// flipLike negates an existing like record or inserts the first one
func (r *MongoLikeRepository) flipLike(sc mongo.SessionContext, userID uint, postID primitive.ObjectID) (bool, error) {
	filter := bson.M{"user_id": userID, "post_id": postID}
	// pipeline update so the negation happens server-side, never read-modify-write
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"liked":      bson.M{"$not": "$liked"},
			"updated_at": time.Now(),
		}}},
	}

	var like models.Like
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := r.likes.FindOneAndUpdate(sc, filter, update, opts).Decode(&like)
	if err == nil {
		return like.Liked, nil
	}
	if err != mongo.ErrNoDocuments {
		return false, err
	}

	now := time.Now()
	_, err = r.likes.InsertOne(sc, &models.Like{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		PostID:    postID,
		Liked:     true,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			// concurrent first-like from the same user won the insert
			return false, apperrors.Conflict("concurrent like toggle, retry")
		}
		return false, err
	}
	return true, nil
}

// adjustLikesCount applies the counter delta atomically and returns the new
// authoritative count
func (r *MongoLikeRepository) adjustLikesCount(sc mongo.SessionContext, postID primitive.ObjectID, delta int) (int64, error) {
	var post models.Post
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := r.posts.FindOneAndUpdate(sc,
		bson.M{"_id": postID},
		bson.M{"$inc": bson.M{"likes_count": delta}},
		opts,
	).Decode(&post)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return 0, apperrors.NotFound("post not found")
		}
		return 0, err
	}
	return int64(post.LikesCount), nil
}

// GetLike retrieves the like record for (userID, postID), nil if none exists
func (r *MongoLikeRepository) GetLike(ctx context.Context, userID uint, postID string) (*models.Like, error) {
	objID, err := primitive.ObjectIDFromHex(postID)
	if err != nil {
		return nil, apperrors.Validation("invalid post ID format")
	}

	var like models.Like
	err = r.likes.FindOne(ctx, bson.M{"user_id": userID, "post_id": objID}).Decode(&like)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, apperrors.Storage("failed to fetch like", err)
	}
	return &like, nil
}
