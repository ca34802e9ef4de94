package handlers

import (
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/campushub/backend/internal/models"
	"github.com/campushub/backend/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// notificationRecorder captures notifications as the dispatch loop persists
// them, so tests can assert on async delivery.
type notificationRecorder struct {
	mu      sync.Mutex
	records []models.Notification
}

func (r *notificationRecorder) capture(args mock.Arguments) {
	n := args.Get(1).(*models.Notification)
	n.ID = primitive.NewObjectID()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, *n)
}

func (r *notificationRecorder) all() []models.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Notification, len(r.records))
	copy(out, r.records)
	return out
}

func TestRequestToJoinNotifiesCreator(t *testing.T) {
	notifier, notifRepo, notifUserRepo, notifGroupRepo := newTestNotifier()
	groupRepo := &repositories.MockGroupRepository{}
	postRepo := &repositories.MockPostRepository{}
	userRepo := &repositories.MockUserRepository{}
	h := NewGroupHandler(groupRepo, postRepo, userRepo, notifier)

	group := &models.Group{ID: primitive.NewObjectID(), Name: "chess club", CreatorID: 1, Members: []uint{1}}
	groupRepo.On("GetGroupByID", mock.Anything, group.ID.Hex()).Return(group, nil)
	groupRepo.On("AddJoinRequest", mock.Anything, group.ID, uint(7)).Return(nil).Once()
	userRepo.On("GetUserByID", uint(7)).Return(&models.User{ID: 7, Username: "bob"}, nil)
	notifUserRepo.On("GetUserByID", mock.Anything).Return(&models.User{ID: 7, Username: "bob"}, nil)
	notifGroupRepo.On("GetGroupByID", mock.Anything, group.ID.Hex()).Return(group, nil)

	rec := &notificationRecorder{}
	notifRepo.On("CreateNotification", mock.Anything, mock.Anything).Run(rec.capture).Return(nil)
	go notifier.Run()
	defer notifier.Shutdown()

	c, res := newTestContext(http.MethodPost, "/api/groups/"+group.ID.Hex()+"/request", "", 7)
	c.SetParamNames("id")
	c.SetParamValues(group.ID.Hex())

	assert.NoError(t, h.RequestToJoin(c))
	assert.Equal(t, http.StatusOK, res.Code)

	assert.Eventually(t, func() bool { return len(rec.all()) == 1 }, time.Second, 10*time.Millisecond)
	n := rec.all()[0]
	assert.Equal(t, uint(1), n.ReceiverID, "the group creator receives the request")
	assert.Equal(t, uint(7), n.SenderID)
	assert.Equal(t, models.NotificationJoinRequest, n.Type)
	assert.Equal(t, "bob requested to join chess club", n.Message)
	assert.Equal(t, group.ID, *n.GroupID)
	groupRepo.AssertExpectations(t)
}

func TestRequestToJoinConflict(t *testing.T) {
	notifier, _, _, _ := newTestNotifier()
	groupRepo := &repositories.MockGroupRepository{}
	h := NewGroupHandler(groupRepo, &repositories.MockPostRepository{}, &repositories.MockUserRepository{}, notifier)

	group := &models.Group{ID: primitive.NewObjectID(), Name: "chess club", CreatorID: 1, Members: []uint{1, 7}}
	groupRepo.On("GetGroupByID", mock.Anything, group.ID.Hex()).Return(group, nil)
	groupRepo.On("AddJoinRequest", mock.Anything, group.ID, uint(7)).Return(repositories.ErrConflict)

	c, _ := newTestContext(http.MethodPost, "/api/groups/"+group.ID.Hex()+"/request", "", 7)
	c.SetParamNames("id")
	c.SetParamValues(group.ID.Hex())

	err := h.RequestToJoin(c)
	assert.Equal(t, http.StatusConflict, httpErrorCode(t, err))
}

func TestRequestToJoinGroupNotFound(t *testing.T) {
	notifier, _, _, _ := newTestNotifier()
	groupRepo := &repositories.MockGroupRepository{}
	h := NewGroupHandler(groupRepo, &repositories.MockPostRepository{}, &repositories.MockUserRepository{}, notifier)

	groupRepo.On("GetGroupByID", mock.Anything, "missing").Return(nil, repositories.ErrNotFound)

	c, _ := newTestContext(http.MethodPost, "/api/groups/missing/request", "", 7)
	c.SetParamNames("id")
	c.SetParamValues("missing")

	err := h.RequestToJoin(c)
	assert.Equal(t, http.StatusNotFound, httpErrorCode(t, err))
}

func TestAcceptJoinRequestForbiddenForNonModerator(t *testing.T) {
	notifier, _, _, _ := newTestNotifier()
	groupRepo := &repositories.MockGroupRepository{}
	h := NewGroupHandler(groupRepo, &repositories.MockPostRepository{}, &repositories.MockUserRepository{}, notifier)

	group := &models.Group{ID: primitive.NewObjectID(), Name: "chess club", CreatorID: 1, Members: []uint{1, 5}}
	groupRepo.On("GetGroupByID", mock.Anything, group.ID.Hex()).Return(group, nil)

	body := `{"userId": 7, "notificationId": "` + primitive.NewObjectID().Hex() + `"}`
	c, _ := newTestContext(http.MethodPost, "/api/groups/"+group.ID.Hex()+"/accept", body, 5)
	c.SetParamNames("id")
	c.SetParamValues(group.ID.Hex())

	err := h.AcceptJoinRequest(c)
	assert.Equal(t, http.StatusForbidden, httpErrorCode(t, err))
	groupRepo.AssertNotCalled(t, "AddMember", mock.Anything, mock.Anything, mock.Anything)
}

func TestAcceptJoinRequestApprovesAndNotifies(t *testing.T) {
	notifier, notifRepo, notifUserRepo, notifGroupRepo := newTestNotifier()
	groupRepo := &repositories.MockGroupRepository{}
	h := NewGroupHandler(groupRepo, &repositories.MockPostRepository{}, &repositories.MockUserRepository{}, notifier)

	group := &models.Group{ID: primitive.NewObjectID(), Name: "chess club", CreatorID: 1, Members: []uint{1}}
	notificationID := primitive.NewObjectID()
	groupRepo.On("GetGroupByID", mock.Anything, group.ID.Hex()).Return(group, nil)
	groupRepo.On("RemoveJoinRequest", mock.Anything, group.ID, uint(7)).Return(nil).Once()
	groupRepo.On("AddMember", mock.Anything, group.ID, uint(7)).Return(true, nil).Once()
	// The originating notification belongs to the creator's inbox.
	notifRepo.On("DeleteOne", mock.Anything, uint(1), notificationID).Return(nil).Once()
	notifUserRepo.On("GetUserByID", uint(1)).Return(&models.User{ID: 1, Username: "alice"}, nil)
	notifGroupRepo.On("GetGroupByID", mock.Anything, group.ID.Hex()).Return(group, nil)

	rec := &notificationRecorder{}
	notifRepo.On("CreateNotification", mock.Anything, mock.Anything).Run(rec.capture).Return(nil)
	go notifier.Run()
	defer notifier.Shutdown()

	body := `{"userId": 7, "notificationId": "` + notificationID.Hex() + `"}`
	c, res := newTestContext(http.MethodPost, "/api/groups/"+group.ID.Hex()+"/accept", body, 1)
	c.SetParamNames("id")
	c.SetParamValues(group.ID.Hex())

	assert.NoError(t, h.AcceptJoinRequest(c))
	assert.Equal(t, http.StatusOK, res.Code)

	assert.Eventually(t, func() bool { return len(rec.all()) == 1 }, time.Second, 10*time.Millisecond)
	n := rec.all()[0]
	assert.Equal(t, uint(7), n.ReceiverID, "the requester is told about the approval")
	assert.Equal(t, models.NotificationJoinApproved, n.Type)
	groupRepo.AssertExpectations(t)
	notifRepo.AssertExpectations(t)
}

func TestAcceptJoinRequestIsIdempotent(t *testing.T) {
	notifier, notifRepo, notifUserRepo, _ := newTestNotifier()
	groupRepo := &repositories.MockGroupRepository{}
	h := NewGroupHandler(groupRepo, &repositories.MockPostRepository{}, &repositories.MockUserRepository{}, notifier)

	group := &models.Group{ID: primitive.NewObjectID(), Name: "chess club", CreatorID: 1, Members: []uint{1, 7}}
	notificationID := primitive.NewObjectID()
	groupRepo.On("GetGroupByID", mock.Anything, group.ID.Hex()).Return(group, nil)
	// Pending entry already consumed and member already added by a first call.
	groupRepo.On("RemoveJoinRequest", mock.Anything, group.ID, uint(7)).Return(repositories.ErrNotFound)
	groupRepo.On("AddMember", mock.Anything, group.ID, uint(7)).Return(false, nil)
	notifRepo.On("DeleteOne", mock.Anything, uint(1), notificationID).Return(repositories.ErrNotFound)
	notifRepo.On("CreateNotification", mock.Anything, mock.Anything).Return(nil)
	notifUserRepo.On("GetUserByID", mock.Anything).Return(&models.User{ID: 1, Username: "alice"}, nil)

	body := `{"userId": 7, "notificationId": "` + notificationID.Hex() + `"}`
	c, res := newTestContext(http.MethodPost, "/api/groups/"+group.ID.Hex()+"/accept", body, 1)
	c.SetParamNames("id")
	c.SetParamValues(group.ID.Hex())

	assert.NoError(t, h.AcceptJoinRequest(c), "replayed approval still succeeds")
	assert.Equal(t, http.StatusOK, res.Code)
}

func TestLeaveGroupRejectsCreator(t *testing.T) {
	notifier, _, _, _ := newTestNotifier()
	groupRepo := &repositories.MockGroupRepository{}
	h := NewGroupHandler(groupRepo, &repositories.MockPostRepository{}, &repositories.MockUserRepository{}, notifier)

	group := &models.Group{ID: primitive.NewObjectID(), Name: "chess club", CreatorID: 1, Members: []uint{1}}
	groupRepo.On("GetGroupByID", mock.Anything, group.ID.Hex()).Return(group, nil)

	c, _ := newTestContext(http.MethodPost, "/api/groups/"+group.ID.Hex()+"/leave", "", 1)
	c.SetParamNames("id")
	c.SetParamValues(group.ID.Hex())

	err := h.LeaveGroup(c)
	assert.Equal(t, http.StatusBadRequest, httpErrorCode(t, err))
	groupRepo.AssertNotCalled(t, "RemoveMember", mock.Anything, mock.Anything, mock.Anything)
}

func TestLeaveGroupRemovesMember(t *testing.T) {
	notifier, _, _, _ := newTestNotifier()
	groupRepo := &repositories.MockGroupRepository{}
	h := NewGroupHandler(groupRepo, &repositories.MockPostRepository{}, &repositories.MockUserRepository{}, notifier)

	group := &models.Group{ID: primitive.NewObjectID(), Name: "chess club", CreatorID: 1, Members: []uint{1, 7}}
	groupRepo.On("GetGroupByID", mock.Anything, group.ID.Hex()).Return(group, nil)
	groupRepo.On("RemoveMember", mock.Anything, group.ID, uint(7)).Return(nil).Once()

	c, res := newTestContext(http.MethodPost, "/api/groups/"+group.ID.Hex()+"/leave", "", 7)
	c.SetParamNames("id")
	c.SetParamValues(group.ID.Hex())

	assert.NoError(t, h.LeaveGroup(c))
	assert.Equal(t, http.StatusOK, res.Code)
	groupRepo.AssertExpectations(t)
}

func TestDeleteGroupForbiddenForNonCreator(t *testing.T) {
	notifier, _, _, _ := newTestNotifier()
	groupRepo := &repositories.MockGroupRepository{}
	postRepo := &repositories.MockPostRepository{}
	h := NewGroupHandler(groupRepo, postRepo, &repositories.MockUserRepository{}, notifier)

	group := &models.Group{ID: primitive.NewObjectID(), Name: "chess club", CreatorID: 1}
	groupRepo.On("GetGroupByID", mock.Anything, group.ID.Hex()).Return(group, nil)

	c, _ := newTestContext(http.MethodDelete, "/api/groups/"+group.ID.Hex(), "", 7)
	c.SetParamNames("id")
	c.SetParamValues(group.ID.Hex())

	err := h.DeleteGroup(c)
	assert.Equal(t, http.StatusForbidden, httpErrorCode(t, err))
	postRepo.AssertNotCalled(t, "DeletePostsByGroupID", mock.Anything, mock.Anything)
}

func TestDeleteGroupCascadesToPosts(t *testing.T) {
	notifier, _, _, _ := newTestNotifier()
	groupRepo := &repositories.MockGroupRepository{}
	postRepo := &repositories.MockPostRepository{}
	h := NewGroupHandler(groupRepo, postRepo, &repositories.MockUserRepository{}, notifier)

	group := &models.Group{ID: primitive.NewObjectID(), Name: "chess club", CreatorID: 1}
	groupRepo.On("GetGroupByID", mock.Anything, group.ID.Hex()).Return(group, nil)
	postRepo.On("DeletePostsByGroupID", mock.Anything, group.ID).Return(nil).Once()
	groupRepo.On("DeleteGroup", mock.Anything, group.ID).Return(nil).Once()

	c, res := newTestContext(http.MethodDelete, "/api/groups/"+group.ID.Hex(), "", 1)
	c.SetParamNames("id")
	c.SetParamValues(group.ID.Hex())

	assert.NoError(t, h.DeleteGroup(c))
	assert.Equal(t, http.StatusOK, res.Code)
	groupRepo.AssertExpectations(t)
	postRepo.AssertExpectations(t)
}
