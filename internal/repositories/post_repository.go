package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/campushub/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id string) (*models.Post, error)
	GetAllPosts(ctx context.Context, skip, limit int64) ([]models.Post, error)
	GetPostsByGroupID(ctx context.Context, groupID primitive.ObjectID, skip, limit int64) ([]models.Post, error)
	DeletePost(ctx context.Context, id string) error
	DeletePostsByGroupID(ctx context.Context, groupID primitive.ObjectID) error
	AddCommentRef(ctx context.Context, postID, commentID primitive.ObjectID) error
	RemoveCommentRef(ctx context.Context, postID, commentID primitive.ObjectID) error
	IncrementCommentsCount(ctx context.Context, postID primitive.ObjectID, delta int) error
	IncrementReaction(ctx context.Context, postID primitive.ObjectID, kind models.ReactionKind) error
}

// MongoPostRepository implements PostRepository for MongoDB
type MongoPostRepository struct {
	collection *mongo.Collection
}

// NewMongoPostRepository creates a new MongoPostRepository
func NewMongoPostRepository(db *mongo.Database) *MongoPostRepository {
	return &MongoPostRepository{collection: db.Collection("posts")}
}

// CreatePost creates a new post in MongoDB
func (r *MongoPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	post.ID = primitive.NewObjectID()
	if post.CommentIDs == nil {
		post.CommentIDs = []primitive.ObjectID{}
	}
	post.CreatedAt = time.Now()
	post.UpdatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, post)
	return err
}

// GetPostByID retrieves a post by ID from MongoDB
func (r *MongoPostRepository) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid post ID format: %w", err)
	}

	var post models.Post
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&post)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &post, nil
}

// GetAllPosts retrieves public-feed posts from MongoDB with pagination
func (r *MongoPostRepository) GetAllPosts(ctx context.Context, skip, limit int64) ([]models.Post, error) {
	var posts []models.Post
	findOptions := options.Find().SetSkip(skip).SetLimit(limit).SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"group_id": nil}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// GetPostsByGroupID retrieves a group's posts from MongoDB with pagination
func (r *MongoPostRepository) GetPostsByGroupID(ctx context.Context, groupID primitive.ObjectID, skip, limit int64) ([]models.Post, error) {
	var posts []models.Post
	findOptions := options.Find().SetSkip(skip).SetLimit(limit).SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"group_id": groupID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// DeletePost deletes a post by ID from MongoDB
func (r *MongoPostRepository) DeletePost(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid post ID format: %w", err)
	}

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeletePostsByGroupID removes every post belonging to a group. Used when a
// group is deleted by its creator.
func (r *MongoPostRepository) DeletePostsByGroupID(ctx context.Context, groupID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"group_id": groupID})
	return err
}

// AddCommentRef appends a comment id to the post's comment list and bumps the
// denormalized counter in a single atomic update.
func (r *MongoPostRepository) AddCommentRef(ctx context.Context, postID, commentID primitive.ObjectID) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": postID}, bson.M{
		"$push": bson.M{"comment_ids": commentID},
		"$inc":  bson.M{"comments_count": 1},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// RemoveCommentRef removes a comment id from the post's comment list and
// decrements the counter in a single atomic update.
func (r *MongoPostRepository) RemoveCommentRef(ctx context.Context, postID, commentID primitive.ObjectID) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": postID}, bson.M{
		"$pull": bson.M{"comment_ids": commentID},
		"$inc":  bson.M{"comments_count": -1},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// IncrementCommentsCount adjusts the post's comment counter by delta. Replies
// count toward the same denormalized total as top-level comments.
func (r *MongoPostRepository) IncrementCommentsCount(ctx context.Context, postID primitive.ObjectID, delta int) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": postID}, bson.M{"$inc": bson.M{"comments_count": delta}})
	return err
}

// IncrementReaction bumps the counter for a known reaction kind
func (r *MongoPostRepository) IncrementReaction(ctx context.Context, postID primitive.ObjectID, kind models.ReactionKind) error {
	var field string
	switch kind {
	case models.ReactionHeart:
		field = "hearts_count"
	case models.ReactionStar:
		field = "stars_count"
	default:
		return fmt.Errorf("unknown reaction kind %q", kind)
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": postID}, bson.M{"$inc": bson.M{field: 1}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
