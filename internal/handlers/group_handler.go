package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/campushub/backend/internal/models"
	"github.com/campushub/backend/internal/notify"
	"github.com/campushub/backend/internal/repositories"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// GroupHandler handles group and membership-workflow HTTP requests
type GroupHandler struct {
	groupRepository repositories.GroupRepository
	postRepository  repositories.PostRepository
	userRepository  repositories.UserRepository
	notifier        *notify.Service
}

// NewGroupHandler creates a new GroupHandler
func NewGroupHandler(groupRepo repositories.GroupRepository, postRepo repositories.PostRepository, userRepo repositories.UserRepository, notifier *notify.Service) *GroupHandler {
	return &GroupHandler{
		groupRepository: groupRepo,
		postRepository:  postRepo,
		userRepository:  userRepo,
		notifier:        notifier,
	}
}

// RegisterGroupRoutes registers group-related routes
func (h *GroupHandler) RegisterGroupRoutes(g *echo.Group) {
	g.POST("/groups", h.CreateGroup)
	g.GET("/groups", h.GetGroups)
	g.GET("/groups/:id", h.GetGroup)
	g.DELETE("/groups/:id", h.DeleteGroup)
	g.POST("/groups/:id/request", h.RequestToJoin)
	g.POST("/groups/:id/accept", h.AcceptJoinRequest)
	g.POST("/groups/:id/leave", h.LeaveGroup)
}

// CreateGroup creates a new group with the caller as creator, sole member
// and moderator
func (h *GroupHandler) CreateGroup(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.CreateGroupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	group := &models.Group{
		Name:        req.Name,
		Description: req.Description,
		AvatarURL:   req.AvatarURL,
		Private:     req.Private,
		CreatorID:   currentUserID,
	}

	if err := h.groupRepository.CreateGroup(c.Request().Context(), group); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, group)
}

// GetGroups lists groups with pagination
func (h *GroupHandler) GetGroups(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 20
	}

	skip := int64((page - 1) * limit)
	groups, err := h.groupRepository.GetGroups(c.Request().Context(), skip, int64(limit))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"groups": groups}})
}

// GetGroup retrieves a single group
func (h *GroupHandler) GetGroup(c echo.Context) error {
	group, err := h.groupRepository.GetGroupByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Group not found")
	}

	return c.JSON(http.StatusOK, group)
}

// DeleteGroup deletes a group and cascades to the group's posts. Creator only.
func (h *GroupHandler) DeleteGroup(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	group, err := h.groupRepository.GetGroupByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Group not found")
	}

	if group.CreatorID != currentUserID {
		return echo.NewHTTPError(http.StatusForbidden, "Only the group creator can delete the group")
	}

	if err := h.postRepository.DeletePostsByGroupID(c.Request().Context(), group.ID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if err := h.groupRepository.DeleteGroup(c.Request().Context(), group.ID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Group deleted"})
}

// RequestToJoin appends a pending join request and notifies the group creator
func (h *GroupHandler) RequestToJoin(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	group, err := h.groupRepository.GetGroupByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Group not found")
	}

	if err := h.groupRepository.AddJoinRequest(c.Request().Context(), group.ID, currentUserID); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			return echo.NewHTTPError(http.StatusConflict, "Already a member or request pending")
		}
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Group not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	requester, err := h.userRepository.GetUserByID(currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Authenticated user not found in database")
	}

	h.notifier.Enqueue(notify.Event{
		SenderID:   currentUserID,
		ReceiverID: group.CreatorID,
		Type:       models.NotificationJoinRequest,
		Message:    requester.Username + " requested to join " + group.Name,
		GroupID:    &group.ID,
	})

	return c.JSON(http.StatusOK, echo.Map{"message": "Join request sent"})
}

// AcceptJoinRequest approves a pending join request. Only the creator or a
// moderator may approve. Idempotent with respect to an already-removed
// pending entry and an already-added member.
func (h *GroupHandler) AcceptJoinRequest(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.AcceptJoinRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	group, err := h.groupRepository.GetGroupByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Group not found")
	}

	if !group.IsModerator(currentUserID) {
		return echo.NewHTTPError(http.StatusForbidden, "Only the creator or a moderator can approve join requests")
	}

	// Tolerates an already-removed pending entry.
	if err := h.groupRepository.RemoveJoinRequest(c.Request().Context(), group.ID, req.UserID); err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	// Duplicate-add guard: the member count moves exactly once per actual add.
	if _, err := h.groupRepository.AddMember(c.Request().Context(), group.ID, req.UserID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	// The originating notification has been acted upon; drop it. Join
	// requests notify the creator, so ownership sits with the creator.
	if err := h.notifier.DeleteOne(c.Request().Context(), group.CreatorID, req.NotificationID); err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.notifier.Enqueue(notify.Event{
		SenderID:   currentUserID,
		ReceiverID: req.UserID,
		Type:       models.NotificationJoinApproved,
		Message:    "Your request to join " + group.Name + " was approved",
		GroupID:    &group.ID,
	})

	return c.JSON(http.StatusOK, echo.Map{"message": "Join request approved"})
}

// LeaveGroup removes the caller from the group's members. The creator cannot
// leave.
func (h *GroupHandler) LeaveGroup(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	group, err := h.groupRepository.GetGroupByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Group not found")
	}

	if group.CreatorID == currentUserID {
		return echo.NewHTTPError(http.StatusBadRequest, "The creator cannot leave the group")
	}

	if err := h.groupRepository.RemoveMember(c.Request().Context(), group.ID, currentUserID); err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	updated, err := h.groupRepository.GetGroupByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, updated)
}
