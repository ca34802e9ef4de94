package handlers

import (
	"net/http"
	"strconv"

	"github.com/campushub/backend/internal/models"
	"github.com/campushub/backend/internal/notify"
	"github.com/campushub/backend/internal/repositories"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	postRepository  repositories.PostRepository
	groupRepository repositories.GroupRepository
	userRepository  repositories.UserRepository
	notifier        *notify.Service
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(postRepo repositories.PostRepository, groupRepo repositories.GroupRepository, userRepo repositories.UserRepository, notifier *notify.Service) *PostHandler {
	return &PostHandler{
		postRepository:  postRepo,
		groupRepository: groupRepo,
		userRepository:  userRepo,
		notifier:        notifier,
	}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.POST("/posts", h.CreatePost)
	g.GET("/posts", h.GetPosts)
	g.GET("/posts/:id", h.GetPost)
	g.DELETE("/posts/:id", h.DeletePost)
	g.POST("/posts/:id/reactions", h.ReactToPost)
}

// CreatePost creates a new post on the public feed or inside a group
func (h *PostHandler) CreatePost(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.CreatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	post := &models.Post{
		UserID:    currentUserID,
		Content:   req.Content,
		ImageURLs: req.ImageURLs,
		VideoURLs: req.VideoURLs,
	}

	if req.GroupID != "" {
		group, err := h.groupRepository.GetGroupByID(c.Request().Context(), req.GroupID)
		if err != nil {
			return echo.NewHTTPError(http.StatusNotFound, "Group not found")
		}
		if !group.IsMember(currentUserID) {
			return echo.NewHTTPError(http.StatusForbidden, "Only members can post in this group")
		}
		post.GroupID = &group.ID
	}

	if err := h.postRepository.CreatePost(c.Request().Context(), post); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	// Keep the group's post/video stats in step with its content.
	if post.GroupID != nil {
		h.groupRepository.IncrementPostCount(c.Request().Context(), *post.GroupID, 1)
		if len(post.VideoURLs) > 0 {
			h.groupRepository.IncrementVideoCount(c.Request().Context(), *post.GroupID, 1)
		}
	}

	return c.JSON(http.StatusCreated, post)
}

// GetPosts retrieves the public feed or a group's posts with pagination
func (h *PostHandler) GetPosts(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 20
	}
	skip := int64((page - 1) * limit)

	var (
		posts []models.Post
		err   error
	)
	if groupID := c.QueryParam("groupId"); groupID != "" {
		group, gerr := h.groupRepository.GetGroupByID(c.Request().Context(), groupID)
		if gerr != nil {
			return echo.NewHTTPError(http.StatusNotFound, "Group not found")
		}
		posts, err = h.postRepository.GetPostsByGroupID(c.Request().Context(), group.ID, skip, int64(limit))
	} else {
		posts, err = h.postRepository.GetAllPosts(c.Request().Context(), skip, int64(limit))
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    echo.Map{"posts": posts},
		"meta": echo.Map{
			"currentPage":  page,
			"itemsPerPage": limit,
			"hasNextPage":  len(posts) == limit,
		},
	})
}

// GetPost retrieves a single post
func (h *PostHandler) GetPost(c echo.Context) error {
	post, err := h.postRepository.GetPostByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	}

	return c.JSON(http.StatusOK, post)
}

// DeletePost deletes a post. Only the post's author may delete it.
func (h *PostHandler) DeletePost(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	post, err := h.postRepository.GetPostByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	}

	if post.UserID != currentUserID {
		return echo.NewHTTPError(http.StatusForbidden, "You are not authorized to delete this post")
	}

	if err := h.postRepository.DeletePost(c.Request().Context(), c.Param("id")); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if post.GroupID != nil {
		h.groupRepository.IncrementPostCount(c.Request().Context(), *post.GroupID, -1)
		if len(post.VideoURLs) > 0 {
			h.groupRepository.IncrementVideoCount(c.Request().Context(), *post.GroupID, -1)
		}
	}

	return c.NoContent(http.StatusNoContent)
}

// ReactToPost records a reaction of a known kind and notifies the post owner.
// Unknown kinds are rejected, never stored as new counter fields.
func (h *PostHandler) ReactToPost(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.ReactionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	kind := models.ReactionKind(req.Type)
	if !kind.Valid() {
		return echo.NewHTTPError(http.StatusBadRequest, "Unknown reaction type")
	}

	post, err := h.postRepository.GetPostByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	}

	if err := h.postRepository.IncrementReaction(c.Request().Context(), post.ID, kind); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if post.UserID != currentUserID {
		reactor, err := h.userRepository.GetUserByID(currentUserID)
		if err == nil {
			h.notifier.Enqueue(notify.Event{
				SenderID:   currentUserID,
				ReceiverID: post.UserID,
				Type:       models.NotificationType(kind),
				Message:    reactor.Username + " reacted to your post",
				PostID:     &post.ID,
			})
		}
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"reaction": kind}})
}
