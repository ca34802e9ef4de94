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

// GroupRepository defines the interface for group data operations.
// Membership mutations are single-document updates with guard predicates so
// the members/pending invariants hold under concurrent writers.
type GroupRepository interface {
	CreateGroup(ctx context.Context, group *models.Group) error
	GetGroupByID(ctx context.Context, id string) (*models.Group, error)
	GetGroups(ctx context.Context, skip, limit int64) ([]models.Group, error)
	DeleteGroup(ctx context.Context, id primitive.ObjectID) error
	AddJoinRequest(ctx context.Context, groupID primitive.ObjectID, userID uint) error
	RemoveJoinRequest(ctx context.Context, groupID primitive.ObjectID, userID uint) error
	AddMember(ctx context.Context, groupID primitive.ObjectID, userID uint) (bool, error)
	RemoveMember(ctx context.Context, groupID primitive.ObjectID, userID uint) error
	IncrementPostCount(ctx context.Context, groupID primitive.ObjectID, delta int) error
	IncrementVideoCount(ctx context.Context, groupID primitive.ObjectID, delta int) error
}

// MongoGroupRepository implements GroupRepository for MongoDB
type MongoGroupRepository struct {
	collection *mongo.Collection
}

// NewMongoGroupRepository creates a new MongoGroupRepository
func NewMongoGroupRepository(db *mongo.Database) *MongoGroupRepository {
	return &MongoGroupRepository{collection: db.Collection("groups")}
}

// CreateGroup creates a new group. The creator becomes the sole initial
// member and moderator with a member count of 1.
func (r *MongoGroupRepository) CreateGroup(ctx context.Context, group *models.Group) error {
	group.ID = primitive.NewObjectID()
	group.Members = []uint{group.CreatorID}
	group.Moderators = []uint{group.CreatorID}
	group.JoinRequests = []models.JoinRequest{}
	group.Stats = models.GroupStats{MemberCount: 1}
	group.CreatedAt = time.Now()
	group.UpdatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, group)
	return err
}

// GetGroupByID retrieves a group by ID from MongoDB
func (r *MongoGroupRepository) GetGroupByID(ctx context.Context, id string) (*models.Group, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid group ID format: %w", err)
	}

	var group models.Group
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&group)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &group, nil
}

// GetGroups retrieves groups from MongoDB with pagination
func (r *MongoGroupRepository) GetGroups(ctx context.Context, skip, limit int64) ([]models.Group, error) {
	var groups []models.Group
	findOptions := options.Find().SetSkip(skip).SetLimit(limit).SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.D{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// DeleteGroup deletes a group by ID from MongoDB
func (r *MongoGroupRepository) DeleteGroup(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// AddJoinRequest appends a pending request unless the user is already a
// member or already pending. The guard predicate makes the check-and-append
// a single atomic update.
func (r *MongoGroupRepository) AddJoinRequest(ctx context.Context, groupID primitive.ObjectID, userID uint) error {
	filter := bson.M{
		"_id":                   groupID,
		"members":               bson.M{"$ne": userID},
		"join_requests.user_id": bson.M{"$ne": userID},
	}
	update := bson.M{
		"$push": bson.M{"join_requests": models.JoinRequest{UserID: userID, RequestedAt: time.Now()}},
	}
	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		// Distinguish a missing group from a duplicate request/membership.
		if err := r.collection.FindOne(ctx, bson.M{"_id": groupID}).Err(); err == mongo.ErrNoDocuments {
			return ErrNotFound
		}
		return ErrConflict
	}
	return nil
}

// RemoveJoinRequest removes the pending entry for a user. Idempotent: a
// second removal is a no-op, not an error.
func (r *MongoGroupRepository) RemoveJoinRequest(ctx context.Context, groupID primitive.ObjectID, userID uint) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": groupID}, bson.M{
		"$pull": bson.M{"join_requests": bson.M{"user_id": userID}},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// AddMember adds the user to the member list and bumps the member count
// exactly once. Returns false when the user was already a member.
func (r *MongoGroupRepository) AddMember(ctx context.Context, groupID primitive.ObjectID, userID uint) (bool, error) {
	filter := bson.M{"_id": groupID, "members": bson.M{"$ne": userID}}
	update := bson.M{
		"$addToSet": bson.M{"members": userID},
		"$inc":      bson.M{"stats.member_count": 1},
	}
	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

// RemoveMember removes the user from the member list and decrements the
// member count by exactly one when the user was a member.
func (r *MongoGroupRepository) RemoveMember(ctx context.Context, groupID primitive.ObjectID, userID uint) error {
	filter := bson.M{"_id": groupID, "members": userID}
	update := bson.M{
		"$pull": bson.M{"members": userID, "moderators": userID},
		"$inc":  bson.M{"stats.member_count": -1},
	}
	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// IncrementPostCount adjusts the group's post counter by delta
func (r *MongoGroupRepository) IncrementPostCount(ctx context.Context, groupID primitive.ObjectID, delta int) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": groupID}, bson.M{"$inc": bson.M{"stats.post_count": delta}})
	return err
}

// IncrementVideoCount adjusts the group's video counter by delta
func (r *MongoGroupRepository) IncrementVideoCount(ctx context.Context, groupID primitive.ObjectID, delta int) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": groupID}, bson.M{"$inc": bson.M{"stats.video_count": delta}})
	return err
}
