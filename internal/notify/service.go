package notify

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/campushub/backend/internal/models"
	"github.com/campushub/backend/internal/realtime"
	"github.com/campushub/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Pusher delivers realtime events to a user's active connections.
// Implemented by realtime.Hub.
type Pusher interface {
	SendToUser(userID uint, event string, payload interface{})
}

// Event describes a notification-worthy action. Handlers enqueue one event
// per triggering action after the primary mutation has persisted; the
// dispatcher owns persistence and delivery.
type Event struct {
	SenderID   uint
	ReceiverID uint
	Type       models.NotificationType
	Message    string
	PostID     *primitive.ObjectID
	GroupID    *primitive.ObjectID
	CommentID  *primitive.ObjectID
}

// PopulatedNotification is a notification with display fields resolved
type PopulatedNotification struct {
	models.Notification
	Sender    *models.UserCompact `json:"sender,omitempty"`
	GroupName string              `json:"group_name,omitempty"`
}

// Service creates durable notification records and pushes them to online
// receivers. Delivery is best effort; the persisted record is the source of
// truth and delivery failures never propagate to the triggering request.
type Service struct {
	log           *log.Logger
	notifications repositories.NotificationRepository
	users         repositories.UserRepository
	groups        repositories.GroupRepository
	pusher        Pusher

	events chan Event
	stop   chan struct{}
	done   chan struct{}
}

// NewService creates a notification service with a buffered dispatch queue
func NewService(logger *log.Logger, notifRepo repositories.NotificationRepository, userRepo repositories.UserRepository, groupRepo repositories.GroupRepository, pusher Pusher) *Service {
	return &Service{
		log:           logger,
		notifications: notifRepo,
		users:         userRepo,
		groups:        groupRepo,
		pusher:        pusher,
		events:        make(chan Event, 256),
		stop:          make(chan struct{}),
		done:          make(chan struct{}),
	}
}

// Run consumes the dispatch queue until Shutdown. Each event is persisted
// and pushed independently; a failed event is logged and dropped, never
// retried against the caller.
func (s *Service) Run() {
	for {
		select {
		case ev := <-s.events:
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			if _, err := s.Create(ctx, ev); err != nil {
				s.log.Printf("notify: dispatch %s to user %d failed: %v", ev.Type, ev.ReceiverID, err)
			}
			cancel()
		case <-s.stop:
			close(s.done)
			return
		}
	}
}

// Enqueue queues an event for asynchronous dispatch. A full queue drops the
// event with a log line rather than blocking the request handler.
func (s *Service) Enqueue(ev Event) {
	select {
	case s.events <- ev:
	default:
		s.log.Printf("notify: queue full, dropping %s for user %d", ev.Type, ev.ReceiverID)
	}
}

// Shutdown stops the dispatch loop
func (s *Service) Shutdown() {
	close(s.stop)
	<-s.done
}

// Create persists a notification, resolves its display fields and attempts
// realtime delivery. Self-notifications are suppressed as a silent no-op.
// Unknown notification types are rejected at this boundary.
func (s *Service) Create(ctx context.Context, ev Event) (*PopulatedNotification, error) {
	if ev.SenderID != 0 && ev.SenderID == ev.ReceiverID {
		return nil, nil
	}
	if !ev.Type.Valid() {
		return nil, fmt.Errorf("unknown notification type %q", ev.Type)
	}

	n := &models.Notification{
		ReceiverID: ev.ReceiverID,
		SenderID:   ev.SenderID,
		Type:       ev.Type,
		Message:    ev.Message,
		PostID:     ev.PostID,
		GroupID:    ev.GroupID,
		CommentID:  ev.CommentID,
	}
	if err := s.notifications.CreateNotification(ctx, n); err != nil {
		return nil, err
	}

	populated := s.populate(ctx, *n)

	// Best-effort push; offline receivers read the record from their inbox.
	s.pusher.SendToUser(ev.ReceiverID, realtime.EventNewNotification, populated)

	return populated, nil
}

// ListForUser returns the receiver's notifications newest first with sender
// and group display fields resolved
func (s *Service) ListForUser(ctx context.Context, receiverID uint) ([]*PopulatedNotification, error) {
	records, err := s.notifications.GetByReceiverID(ctx, receiverID)
	if err != nil {
		return nil, err
	}

	populated := make([]*PopulatedNotification, len(records))
	senderCache := make(map[uint]*models.UserCompact)
	for i, n := range records {
		populated[i] = s.populateCached(ctx, n, senderCache)
	}
	return populated, nil
}

// DeleteOne removes one notification owned by the receiver
func (s *Service) DeleteOne(ctx context.Context, receiverID uint, notificationID string) error {
	objID, err := primitive.ObjectIDFromHex(notificationID)
	if err != nil {
		return repositories.ErrNotFound
	}
	return s.notifications.DeleteOne(ctx, receiverID, objID)
}

// DeleteAll removes every notification owned by the receiver. Idempotent.
func (s *Service) DeleteAll(ctx context.Context, receiverID uint) error {
	return s.notifications.DeleteAllForReceiver(ctx, receiverID)
}

// MarkAsRead flags one notification owned by the receiver as read
func (s *Service) MarkAsRead(ctx context.Context, receiverID uint, notificationID string) error {
	objID, err := primitive.ObjectIDFromHex(notificationID)
	if err != nil {
		return repositories.ErrNotFound
	}
	return s.notifications.MarkAsRead(ctx, receiverID, objID)
}

// UnreadCount returns the receiver's unread notification count
func (s *Service) UnreadCount(ctx context.Context, receiverID uint) (int64, error) {
	return s.notifications.GetUnreadCount(ctx, receiverID)
}

func (s *Service) populate(ctx context.Context, n models.Notification) *PopulatedNotification {
	return s.populateCached(ctx, n, make(map[uint]*models.UserCompact))
}

func (s *Service) populateCached(ctx context.Context, n models.Notification, senderCache map[uint]*models.UserCompact) *PopulatedNotification {
	populated := &PopulatedNotification{Notification: n}

	if n.SenderID != 0 {
		if compact, ok := senderCache[n.SenderID]; ok {
			populated.Sender = compact
		} else if sender, err := s.users.GetUserByID(n.SenderID); err == nil {
			compact := sender.ToCompact()
			senderCache[n.SenderID] = &compact
			populated.Sender = &compact
		}
	}

	if n.GroupID != nil {
		if group, err := s.groups.GetGroupByID(ctx, n.GroupID.Hex()); err == nil {
			populated.GroupName = group.Name
		}
	}

	return populated
}
