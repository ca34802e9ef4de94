package notify

import (
	"context"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/campushub/backend/internal/models"
	"github.com/campushub/backend/internal/realtime"
	"github.com/campushub/backend/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakePusher struct {
	mu    sync.Mutex
	sends []pushedEvent
}

type pushedEvent struct {
	userID  uint
	event   string
	payload interface{}
}

func (p *fakePusher) SendToUser(userID uint, event string, payload interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sends = append(p.sends, pushedEvent{userID: userID, event: event, payload: payload})
}

func (p *fakePusher) all() []pushedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]pushedEvent, len(p.sends))
	copy(out, p.sends)
	return out
}

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func newTestService(t *testing.T) (*Service, *repositories.MockNotificationRepository, *repositories.MockUserRepository, *repositories.MockGroupRepository, *fakePusher) {
	t.Helper()
	notifRepo := &repositories.MockNotificationRepository{}
	userRepo := &repositories.MockUserRepository{}
	groupRepo := &repositories.MockGroupRepository{}
	pusher := &fakePusher{}
	svc := NewService(testLogger(), notifRepo, userRepo, groupRepo, pusher)
	return svc, notifRepo, userRepo, groupRepo, pusher
}

func TestCreateSuppressesSelfNotification(t *testing.T) {
	svc, notifRepo, _, _, pusher := newTestService(t)
	defer notifRepo.AssertExpectations(t)

	populated, err := svc.Create(context.Background(), Event{
		SenderID:   1,
		ReceiverID: 1,
		Type:       models.NotificationComment,
		Message:    "self",
	})

	assert.NoError(t, err, "self-notification is a silent no-op")
	assert.Nil(t, populated)
	assert.Empty(t, pusher.all())
	notifRepo.AssertNotCalled(t, "CreateNotification", mock.Anything, mock.Anything)
}

func TestCreateRejectsUnknownType(t *testing.T) {
	svc, notifRepo, _, _, _ := newTestService(t)

	_, err := svc.Create(context.Background(), Event{
		SenderID:   1,
		ReceiverID: 2,
		Type:       models.NotificationType("poke"),
	})

	assert.Error(t, err)
	notifRepo.AssertNotCalled(t, "CreateNotification", mock.Anything, mock.Anything)
}

func TestCreatePersistsPopulatesAndPushes(t *testing.T) {
	svc, notifRepo, userRepo, _, pusher := newTestService(t)
	defer notifRepo.AssertExpectations(t)
	defer userRepo.AssertExpectations(t)

	notifRepo.On("CreateNotification", mock.Anything, mock.AnythingOfType("*models.Notification")).
		Run(func(args mock.Arguments) {
			n := args.Get(1).(*models.Notification)
			n.ID = primitive.NewObjectID()
			n.CreatedAt = time.Now()
		}).Return(nil).Once()
	userRepo.On("GetUserByID", uint(1)).
		Return(&models.User{ID: 1, Username: "alice"}, nil).Once()

	populated, err := svc.Create(context.Background(), Event{
		SenderID:   1,
		ReceiverID: 2,
		Type:       models.NotificationWave,
		Message:    "alice waved at you",
	})

	assert.NoError(t, err)
	assert.NotNil(t, populated)
	assert.Equal(t, uint(2), populated.ReceiverID)
	assert.Equal(t, "alice", populated.Sender.Username)
	assert.False(t, populated.ID.IsZero(), "record is persisted before delivery")

	sends := pusher.all()
	assert.Len(t, sends, 1, "exactly one push per created notification")
	assert.Equal(t, uint(2), sends[0].userID)
	assert.Equal(t, realtime.EventNewNotification, sends[0].event)
	assert.Equal(t, populated, sends[0].payload, "push carries the full populated record")
}

func TestCreateResolvesGroupName(t *testing.T) {
	svc, notifRepo, userRepo, groupRepo, _ := newTestService(t)
	defer groupRepo.AssertExpectations(t)

	groupID := primitive.NewObjectID()
	notifRepo.On("CreateNotification", mock.Anything, mock.Anything).Return(nil).Once()
	userRepo.On("GetUserByID", uint(3)).Return(&models.User{ID: 3, Username: "bob"}, nil).Once()
	groupRepo.On("GetGroupByID", mock.Anything, groupID.Hex()).
		Return(&models.Group{ID: groupID, Name: "chess club"}, nil).Once()

	populated, err := svc.Create(context.Background(), Event{
		SenderID:   3,
		ReceiverID: 4,
		Type:       models.NotificationJoinRequest,
		Message:    "bob requested to join chess club",
		GroupID:    &groupID,
	})

	assert.NoError(t, err)
	assert.Equal(t, "chess club", populated.GroupName)
}

func TestListForUserPopulatesSendersWithCache(t *testing.T) {
	svc, notifRepo, userRepo, _, _ := newTestService(t)
	defer notifRepo.AssertExpectations(t)
	defer userRepo.AssertExpectations(t)

	records := []models.Notification{
		{ID: primitive.NewObjectID(), ReceiverID: 9, SenderID: 1, Type: models.NotificationWave},
		{ID: primitive.NewObjectID(), ReceiverID: 9, SenderID: 1, Type: models.NotificationComment},
		{ID: primitive.NewObjectID(), ReceiverID: 9, SenderID: 2, Type: models.NotificationHeart},
	}
	notifRepo.On("GetByReceiverID", mock.Anything, uint(9)).Return(records, nil).Once()
	// Each distinct sender is resolved once.
	userRepo.On("GetUserByID", uint(1)).Return(&models.User{ID: 1, Username: "alice"}, nil).Once()
	userRepo.On("GetUserByID", uint(2)).Return(&models.User{ID: 2, Username: "bob"}, nil).Once()

	populated, err := svc.ListForUser(context.Background(), 9)

	assert.NoError(t, err)
	assert.Len(t, populated, 3)
	assert.Equal(t, "alice", populated[0].Sender.Username)
	assert.Equal(t, "alice", populated[1].Sender.Username)
	assert.Equal(t, "bob", populated[2].Sender.Username)
}

func TestDeleteOneRejectsMalformedID(t *testing.T) {
	svc, notifRepo, _, _, _ := newTestService(t)

	err := svc.DeleteOne(context.Background(), 1, "not-an-object-id")

	assert.ErrorIs(t, err, repositories.ErrNotFound)
	notifRepo.AssertNotCalled(t, "DeleteOne", mock.Anything, mock.Anything, mock.Anything)
}

func TestDeleteAllIsIdempotent(t *testing.T) {
	svc, notifRepo, _, _, _ := newTestService(t)
	defer notifRepo.AssertExpectations(t)

	notifRepo.On("DeleteAllForReceiver", mock.Anything, uint(5)).Return(nil).Twice()

	assert.NoError(t, svc.DeleteAll(context.Background(), 5))
	assert.NoError(t, svc.DeleteAll(context.Background(), 5), "second call with nothing left still succeeds")
}

func TestDispatchLoopProcessesEnqueuedEvents(t *testing.T) {
	svc, notifRepo, userRepo, _, pusher := newTestService(t)

	notifRepo.On("CreateNotification", mock.Anything, mock.Anything).Return(nil).Once()
	userRepo.On("GetUserByID", uint(1)).Return(&models.User{ID: 1, Username: "alice"}, nil).Once()

	go svc.Run()
	defer svc.Shutdown()

	svc.Enqueue(Event{
		SenderID:   1,
		ReceiverID: 2,
		Type:       models.NotificationWave,
		Message:    "alice waved at you",
	})

	assert.Eventually(t, func() bool {
		return len(pusher.all()) == 1
	}, time.Second, 10*time.Millisecond, "enqueued event is dispatched asynchronously")
}
