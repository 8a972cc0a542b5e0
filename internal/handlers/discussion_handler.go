package handlers

import (
	"strconv"

	"github.com/amoralabs/amora-backend/internal/httpx"
	"github.com/amoralabs/amora-backend/internal/models"
	"github.com/amoralabs/amora-backend/internal/realtime"
	"github.com/amoralabs/amora-backend/internal/service"
	"github.com/amoralabs/amora-backend/internal/validation"
	"github.com/gofiber/fiber/v2"
)

type DiscussionHandler struct {
	discussionService *service.DiscussionService
	hub               *realtime.Hub
}

func NewDiscussionHandler(discussionService *service.DiscussionService, hub *realtime.Hub) *DiscussionHandler {
	return &DiscussionHandler{
		discussionService: discussionService,
		hub:               hub,
	}
}

type createDiscussionRequest struct {
	Title string `json:"title"`
}

func (h *DiscussionHandler) Create(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	var req createDiscussionRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}
	req.Title = validation.TrimAndLimit(req.Title, validation.MaxTitleLength())
	if req.Title == "" {
		return httpx.BadRequest(c, "missing_title", "Title is required")
	}

	discussion, err := h.discussionService.Create(userID, req.Title)
	if err != nil {
		return httpx.Internal(c, "create_discussion_failed")
	}

	h.hub.PublishEvent(realtime.NewEvent(realtime.EventDiscussionCreated, discussion.ToResponse()), userID)
	return c.Status(fiber.StatusCreated).JSON(discussion.ToResponse())
}

// List returns the viewer's discussions with unread counts, newest
// activity first.
func (h *DiscussionHandler) List(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	limit := 50
	if limitStr := c.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}

	discussions, err := h.discussionService.List(userID, limit)
	if err != nil {
		return httpx.Internal(c, "fetch_discussions_failed")
	}

	return c.JSON(fiber.Map{
		"discussions": discussions,
		"count":       len(discussions),
	})
}

type markReadRequest struct {
	LastReadMessageID *uint `json:"last_read_message_id"`
}

// MarkRead upserts the caller's read state at now and resets the unread
// counter.
func (h *DiscussionHandler) MarkRead(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	discussionID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || discussionID == 0 {
		return httpx.BadRequest(c, "invalid_discussion", "Invalid discussion id")
	}

	var req markReadRequest
	// Body is optional; an empty body marks read at now.
	_ = c.BodyParser(&req)

	if err := h.discussionService.MarkRead(uint(discussionID), userID, req.LastReadMessageID); err != nil {
		return httpx.Internal(c, "mark_read_failed")
	}

	return c.JSON(fiber.Map{"success": true, "unread": 0})
}

type setStatusRequest struct {
	Status string `json:"status"`
}

// SetStatus transitions a discussion between open, resolved, and
// archived, and notifies connected clients.
func (h *DiscussionHandler) SetStatus(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	discussionID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || discussionID == 0 {
		return httpx.BadRequest(c, "invalid_discussion", "Invalid discussion id")
	}

	var req setStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}
	if !validation.ValidDiscussionStatus(req.Status) {
		return httpx.BadRequest(c, "invalid_status", "Unknown discussion status")
	}

	discussion, err := h.discussionService.SetStatus(uint(discussionID), models.DiscussionStatus(req.Status))
	if err != nil {
		return httpx.Internal(c, "set_status_failed")
	}

	h.hub.PublishEvent(realtime.NewEvent(realtime.EventDiscussionUpdated, discussion.ToResponse()), userID)
	return c.JSON(discussion.ToResponse())
}

// Unread reports the caller's unread count for one discussion.
func (h *DiscussionHandler) Unread(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	discussionID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || discussionID == 0 {
		return httpx.BadRequest(c, "invalid_discussion", "Invalid discussion id")
	}

	count, err := h.discussionService.UnreadCount(uint(discussionID), userID)
	if err != nil {
		return httpx.Internal(c, "unread_count_failed")
	}
	return c.JSON(fiber.Map{"unread": count})
}
