package repositories

import (
	"context"
	"time"

	"github.com/campushub/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// NotificationRepository defines the interface for notification operations
type NotificationRepository interface {
	CreateNotification(ctx context.Context, notification *models.Notification) error
	GetByReceiverID(ctx context.Context, receiverID uint) ([]models.Notification, error)
	GetUnreadCount(ctx context.Context, receiverID uint) (int64, error)
	MarkAsRead(ctx context.Context, receiverID uint, notificationID primitive.ObjectID) error
	DeleteOne(ctx context.Context, receiverID uint, notificationID primitive.ObjectID) error
	DeleteAllForReceiver(ctx context.Context, receiverID uint) error
}

// MongoNotificationRepository implements NotificationRepository for MongoDB
type MongoNotificationRepository struct {
	collection *mongo.Collection
}

// NewMongoNotificationRepository creates a new MongoNotificationRepository
func NewMongoNotificationRepository(db *mongo.Database) *MongoNotificationRepository {
	return &MongoNotificationRepository{collection: db.Collection("notifications")}
}

// CreateNotification persists a new notification
func (r *MongoNotificationRepository) CreateNotification(ctx context.Context, notification *models.Notification) error {
	notification.ID = primitive.NewObjectID()
	notification.CreatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, notification)
	return err
}

// GetByReceiverID returns all of the receiver's notifications, newest first
func (r *MongoNotificationRepository) GetByReceiverID(ctx context.Context, receiverID uint) ([]models.Notification, error) {
	var notifications []models.Notification
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"receiver_id": receiverID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

// GetUnreadCount returns the receiver's unread notification count
func (r *MongoNotificationRepository) GetUnreadCount(ctx context.Context, receiverID uint) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"receiver_id": receiverID, "is_read": false})
}

// MarkAsRead flags a notification as read. Ownership is part of the filter.
func (r *MongoNotificationRepository) MarkAsRead(ctx context.Context, receiverID uint, notificationID primitive.ObjectID) error {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": notificationID, "receiver_id": receiverID},
		bson.M{"$set": bson.M{"is_read": true}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteOne removes a single notification. Ownership is enforced by the
// query predicate, not a post-hoc check.
func (r *MongoNotificationRepository) DeleteOne(ctx context.Context, receiverID uint, notificationID primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": notificationID, "receiver_id": receiverID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteAllForReceiver removes every notification owned by the receiver.
// Idempotent: deleting zero records is a success.
func (r *MongoNotificationRepository) DeleteAllForReceiver(ctx context.Context, receiverID uint) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"receiver_id": receiverID})
	return err
}
