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

// CommentRepository defines the interface for comment data operations.
// Creation is the only path that mutates a post's comments_count.
type CommentRepository interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
	GetCommentsByPostID(ctx context.Context, postID string) ([]models.Comment, error)
}

// MongoCommentRepository implements CommentRepository for MongoDB. It holds
// the posts collection as well because the counter update must commit in the
// same transaction as the comment insert.
type MongoCommentRepository struct {
	client   *mongo.Client
	comments *mongo.Collection
	posts    *mongo.Collection
}

// NewMongoCommentRepository creates a new MongoCommentRepository
func NewMongoCommentRepository(db *mongo.Database) *MongoCommentRepository {
	return &MongoCommentRepository{
		client:   db.Client(),
		comments: db.Collection("comments"),
		posts:    db.Collection("posts"),
	}
}

// CreateComment inserts the comment and increments the post's comments_count
// inside a single transaction. A comment is never observable without the
// counter reflecting it.
func (r *MongoCommentRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	comment.ID = primitive.NewObjectID()
	comment.CreatedAt = time.Now()

	session, err := r.client.StartSession()
	if err != nil {
		return apperrors.Storage("failed to start session", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		if _, err := r.comments.InsertOne(sc, comment); err != nil {
			return nil, err
		}
		res, err := r.posts.UpdateOne(sc,
			bson.M{"_id": comment.PostID},
			bson.M{"$inc": bson.M{"comments_count": 1}},
		)
		if err != nil {
			return nil, err
		}
		if res.MatchedCount == 0 {
			return nil, apperrors.NotFound("post not found")
		}
		return nil, nil
	})
	if err != nil {
		if apperrors.KindOf(err) == apperrors.KindNotFound {
			return err
		}
		return apperrors.Storage("failed to create comment", err)
	}
	return nil
}

// GetCommentsByPostID retrieves all comments for a post, newest first
func (r *MongoCommentRepository) GetCommentsByPostID(ctx context.Context, postID string) ([]models.Comment, error) {
	objID, err := primitive.ObjectIDFromHex(postID)
	if err != nil {
		return nil, apperrors.Validation("invalid post ID format")
	}

	sort := bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}
	cursor, err := r.comments.Find(ctx, bson.M{"post_id": objID}, options.Find().SetSort(sort))
	if err != nil {
		return nil, apperrors.Storage("failed to fetch comments", err)
	}
	defer cursor.Close(ctx)

	comments := []models.Comment{}
	if err = cursor.All(ctx, &comments); err != nil {
		return nil, apperrors.Storage("failed to decode comments", err)
	}
	return comments, nil
}
