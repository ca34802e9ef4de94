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

// commentPreviewLen caps the comment text carried in a notification message.
const commentPreviewLen = 40

// CommentHandler handles HTTP requests related to comments and replies
type CommentHandler struct {
	commentRepository repositories.CommentRepository
	postRepository    repositories.PostRepository
	userRepository    repositories.UserRepository
	notifier          *notify.Service
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(commentRepo repositories.CommentRepository, postRepo repositories.PostRepository, userRepo repositories.UserRepository, notifier *notify.Service) *CommentHandler {
	return &CommentHandler{
		commentRepository: commentRepo,
		postRepository:    postRepo,
		userRepository:    userRepo,
		notifier:          notifier,
	}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.POST("/comments/:postId", h.CreateComment)
	g.GET("/comments/:postId", h.GetCommentsByPostID)
	g.DELETE("/comments/:commentId", h.DeleteComment)
	g.POST("/comments/reply/:commentId", h.CreateReply)
	g.DELETE("/comments/reply/:commentId/:replyId", h.DeleteReply)
}

// EnrichedReply includes the reply author's display fields
type EnrichedReply struct {
	models.Reply
	Author models.UserCompact `json:"author"`
}

// EnrichedComment includes author display fields for the comment and its replies
type EnrichedComment struct {
	models.Comment
	Author  models.UserCompact `json:"author"`
	Replies []EnrichedReply    `json:"replies"`
}

func (h *CommentHandler) lookupAuthor(userID uint, cache map[uint]models.UserCompact) models.UserCompact {
	if author, ok := cache[userID]; ok {
		return author
	}
	user, err := h.userRepository.GetUserByID(userID)
	if err != nil {
		return models.UserCompact{ID: userID}
	}
	compact := user.ToCompact()
	cache[userID] = compact
	return compact
}

func (h *CommentHandler) enrichComment(comment *models.Comment, cache map[uint]models.UserCompact) EnrichedComment {
	enriched := EnrichedComment{
		Comment: *comment,
		Author:  h.lookupAuthor(comment.UserID, cache),
		Replies: make([]EnrichedReply, len(comment.Replies)),
	}
	for i, reply := range comment.Replies {
		enriched.Replies[i] = EnrichedReply{Reply: reply, Author: h.lookupAuthor(reply.UserID, cache)}
	}
	return enriched
}

// CreateComment creates a new comment on a post
func (h *CommentHandler) CreateComment(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	post, err := h.postRepository.GetPostByID(c.Request().Context(), c.Param("postId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	}

	comment := &models.Comment{
		PostID: post.ID,
		UserID: currentUserID,
		Text:   req.Text,
	}

	if err := h.commentRepository.CreateComment(c.Request().Context(), comment); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	// Append the comment id and bump the denormalized counter atomically.
	if err := h.postRepository.AddCommentRef(c.Request().Context(), post.ID, comment.ID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	// Notify the post owner unless they commented on their own post.
	if post.UserID != currentUserID {
		author := h.lookupAuthor(currentUserID, make(map[uint]models.UserCompact))
		h.notifier.Enqueue(notify.Event{
			SenderID:   currentUserID,
			ReceiverID: post.UserID,
			Type:       models.NotificationComment,
			Message:    author.Username + " commented: " + truncate(req.Text, commentPreviewLen),
			PostID:     &post.ID,
			CommentID:  &comment.ID,
		})
	}

	enriched := h.enrichComment(comment, make(map[uint]models.UserCompact))
	return c.JSON(http.StatusCreated, enriched)
}

// GetCommentsByPostID retrieves a page of comments for a post, newest first
func (h *CommentHandler) GetCommentsByPostID(c echo.Context) error {
	post, err := h.postRepository.GetPostByID(c.Request().Context(), c.Param("postId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 10
	}

	skip := int64((page - 1) * limit)
	comments, err := h.commentRepository.GetCommentsByPostID(c.Request().Context(), post.ID, skip, int64(limit))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	cache := make(map[uint]models.UserCompact)
	enriched := make([]EnrichedComment, len(comments))
	for i := range comments {
		enriched[i] = h.enrichComment(&comments[i], cache)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    echo.Map{"comments": enriched},
		"meta": echo.Map{
			"currentPage":  page,
			"itemsPerPage": limit,
			// The page is exhausted when it came back short.
			"hasNextPage": len(comments) == limit,
		},
	})
}

// DeleteComment deletes a comment. Only the comment's author may delete it.
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	comment, err := h.commentRepository.GetCommentByID(c.Request().Context(), c.Param("commentId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Comment not found")
	}

	if comment.UserID != currentUserID {
		return echo.NewHTTPError(http.StatusForbidden, "You are not authorized to delete this comment")
	}

	// Detach from the post and decrement the counter atomically, then drop
	// the comment record.
	if err := h.postRepository.RemoveCommentRef(c.Request().Context(), comment.PostID, comment.ID); err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if err := h.commentRepository.DeleteComment(c.Request().Context(), comment.ID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Comment deleted", "deletedId": comment.ID.Hex()})
}

// CreateReply appends a reply under an existing comment
func (h *CommentHandler) CreateReply(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.CreateReplyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	comment, err := h.commentRepository.GetCommentByID(c.Request().Context(), c.Param("commentId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Comment not found")
	}

	reply := &models.Reply{
		UserID:     currentUserID,
		Text:       req.Text,
		ReplyingTo: req.ReplyingTo,
	}

	if err := h.commentRepository.AddReply(c.Request().Context(), comment.ID, reply); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Comment not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	// Replies count toward the same denormalized total as top-level comments.
	if err := h.postRepository.IncrementCommentsCount(c.Request().Context(), comment.PostID, 1); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	// Notify the comment author unless they replied to themselves.
	if comment.UserID != currentUserID {
		author := h.lookupAuthor(currentUserID, make(map[uint]models.UserCompact))
		h.notifier.Enqueue(notify.Event{
			SenderID:   currentUserID,
			ReceiverID: comment.UserID,
			Type:       models.NotificationComment,
			Message:    author.Username + " replied: " + truncate(req.Text, commentPreviewLen),
			PostID:     &comment.PostID,
			CommentID:  &comment.ID,
		})
	}

	enriched := EnrichedReply{Reply: *reply, Author: h.lookupAuthor(currentUserID, make(map[uint]models.UserCompact))}
	return c.JSON(http.StatusOK, enriched)
}

// DeleteReply removes a single reply. Only the reply's author may delete it.
func (h *CommentHandler) DeleteReply(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	comment, err := h.commentRepository.GetCommentByID(c.Request().Context(), c.Param("commentId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Comment not found")
	}

	var reply *models.Reply
	for i := range comment.Replies {
		if comment.Replies[i].ID.Hex() == c.Param("replyId") {
			reply = &comment.Replies[i]
			break
		}
	}
	if reply == nil {
		return echo.NewHTTPError(http.StatusNotFound, "Reply not found")
	}

	if reply.UserID != currentUserID {
		return echo.NewHTTPError(http.StatusForbidden, "You are not authorized to delete this reply")
	}

	if err := h.commentRepository.RemoveReply(c.Request().Context(), comment.ID, reply.ID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Reply not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if err := h.postRepository.IncrementCommentsCount(c.Request().Context(), comment.PostID, -1); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Reply deleted", "deletedId": reply.ID.Hex()})
}
