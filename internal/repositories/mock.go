package repositories

import (
	"context"

	"github.com/campushub/backend/internal/models"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CreateUser(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}
func (m *MockUserRepository) GetUserByID(id uint) (*models.User, error) {
	args := m.Called(id)
	if user, ok := args.Get(0).(*models.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *MockUserRepository) GetUserByEmail(email string) (*models.User, error) {
	args := m.Called(email)
	if user, ok := args.Get(0).(*models.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *MockUserRepository) GetUserByFirebaseUID(firebaseUID string) (*models.User, error) {
	args := m.Called(firebaseUID)
	if user, ok := args.Get(0).(*models.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *MockUserRepository) UpdateUser(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}
func (m *MockUserRepository) SearchUsers(query string) ([]models.User, error) {
	args := m.Called(query)
	if users, ok := args.Get(0).([]models.User); ok {
		return users, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockPostRepository struct {
	mock.Mock
}

func (m *MockPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}
func (m *MockPostRepository) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	args := m.Called(ctx, id)
	if post, ok := args.Get(0).(*models.Post); ok {
		return post, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *MockPostRepository) GetAllPosts(ctx context.Context, skip, limit int64) ([]models.Post, error) {
	args := m.Called(ctx, skip, limit)
	if posts, ok := args.Get(0).([]models.Post); ok {
		return posts, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *MockPostRepository) GetPostsByGroupID(ctx context.Context, groupID primitive.ObjectID, skip, limit int64) ([]models.Post, error) {
	args := m.Called(ctx, groupID, skip, limit)
	if posts, ok := args.Get(0).([]models.Post); ok {
		return posts, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *MockPostRepository) DeletePost(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockPostRepository) DeletePostsByGroupID(ctx context.Context, groupID primitive.ObjectID) error {
	args := m.Called(ctx, groupID)
	return args.Error(0)
}
func (m *MockPostRepository) AddCommentRef(ctx context.Context, postID, commentID primitive.ObjectID) error {
	args := m.Called(ctx, postID, commentID)
	return args.Error(0)
}
func (m *MockPostRepository) RemoveCommentRef(ctx context.Context, postID, commentID primitive.ObjectID) error {
	args := m.Called(ctx, postID, commentID)
	return args.Error(0)
}
func (m *MockPostRepository) IncrementCommentsCount(ctx context.Context, postID primitive.ObjectID, delta int) error {
	args := m.Called(ctx, postID, delta)
	return args.Error(0)
}
func (m *MockPostRepository) IncrementReaction(ctx context.Context, postID primitive.ObjectID, kind models.ReactionKind) error {
	args := m.Called(ctx, postID, kind)
	return args.Error(0)
}

type MockCommentRepository struct {
	mock.Mock
}

func (m *MockCommentRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	args := m.Called(ctx, comment)
	return args.Error(0)
}
func (m *MockCommentRepository) GetCommentByID(ctx context.Context, id string) (*models.Comment, error) {
	args := m.Called(ctx, id)
	if comment, ok := args.Get(0).(*models.Comment); ok {
		return comment, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *MockCommentRepository) GetCommentsByPostID(ctx context.Context, postID primitive.ObjectID, skip, limit int64) ([]models.Comment, error) {
	args := m.Called(ctx, postID, skip, limit)
	if comments, ok := args.Get(0).([]models.Comment); ok {
		return comments, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *MockCommentRepository) DeleteComment(ctx context.Context, id primitive.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockCommentRepository) AddReply(ctx context.Context, commentID primitive.ObjectID, reply *models.Reply) error {
	args := m.Called(ctx, commentID, reply)
	return args.Error(0)
}
func (m *MockCommentRepository) RemoveReply(ctx context.Context, commentID, replyID primitive.ObjectID) error {
	args := m.Called(ctx, commentID, replyID)
	return args.Error(0)
}

type MockGroupRepository struct {
	mock.Mock
}

func (m *MockGroupRepository) CreateGroup(ctx context.Context, group *models.Group) error {
	args := m.Called(ctx, group)
	return args.Error(0)
}
func (m *MockGroupRepository) GetGroupByID(ctx context.Context, id string) (*models.Group, error) {
	args := m.Called(ctx, id)
	if group, ok := args.Get(0).(*models.Group); ok {
		return group, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *MockGroupRepository) GetGroups(ctx context.Context, skip, limit int64) ([]models.Group, error) {
	args := m.Called(ctx, skip, limit)
	if groups, ok := args.Get(0).([]models.Group); ok {
		return groups, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *MockGroupRepository) DeleteGroup(ctx context.Context, id primitive.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockGroupRepository) AddJoinRequest(ctx context.Context, groupID primitive.ObjectID, userID uint) error {
	args := m.Called(ctx, groupID, userID)
	return args.Error(0)
}
func (m *MockGroupRepository) RemoveJoinRequest(ctx context.Context, groupID primitive.ObjectID, userID uint) error {
	args := m.Called(ctx, groupID, userID)
	return args.Error(0)
}
func (m *MockGroupRepository) AddMember(ctx context.Context, groupID primitive.ObjectID, userID uint) (bool, error) {
	args := m.Called(ctx, groupID, userID)
	return args.Bool(0), args.Error(1)
}
func (m *MockGroupRepository) RemoveMember(ctx context.Context, groupID primitive.ObjectID, userID uint) error {
	args := m.Called(ctx, groupID, userID)
	return args.Error(0)
}
func (m *MockGroupRepository) IncrementPostCount(ctx context.Context, groupID primitive.ObjectID, delta int) error {
	args := m.Called(ctx, groupID, delta)
	return args.Error(0)
}
func (m *MockGroupRepository) IncrementVideoCount(ctx context.Context, groupID primitive.ObjectID, delta int) error {
	args := m.Called(ctx, groupID, delta)
	return args.Error(0)
}

type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) CreateNotification(ctx context.Context, notification *models.Notification) error {
	args := m.Called(ctx, notification)
	return args.Error(0)
}
func (m *MockNotificationRepository) GetByReceiverID(ctx context.Context, receiverID uint) ([]models.Notification, error) {
	args := m.Called(ctx, receiverID)
	if notifications, ok := args.Get(0).([]models.Notification); ok {
		return notifications, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *MockNotificationRepository) GetUnreadCount(ctx context.Context, receiverID uint) (int64, error) {
	args := m.Called(ctx, receiverID)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockNotificationRepository) MarkAsRead(ctx context.Context, receiverID uint, notificationID primitive.ObjectID) error {
	args := m.Called(ctx, receiverID, notificationID)
	return args.Error(0)
}
func (m *MockNotificationRepository) DeleteOne(ctx context.Context, receiverID uint, notificationID primitive.ObjectID) error {
	args := m.Called(ctx, receiverID, notificationID)
	return args.Error(0)
}
func (m *MockNotificationRepository) DeleteAllForReceiver(ctx context.Context, receiverID uint) error {
	args := m.Called(ctx, receiverID)
	return args.Error(0)
}
