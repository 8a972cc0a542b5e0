package handlers

import (
	"log"
	"strconv"

	"github.com/amoralabs/amora-backend/internal/httpx"
	"github.com/amoralabs/amora-backend/internal/models"
	"github.com/amoralabs/amora-backend/internal/notify"
	"github.com/amoralabs/amora-backend/internal/realtime"
	"github.com/amoralabs/amora-backend/internal/repository"
	"github.com/amoralabs/amora-backend/internal/service"
	"github.com/amoralabs/amora-backend/internal/validation"
	"github.com/gofiber/fiber/v2"
)

type MessageHandler struct {
	messageService    *service.MessageService
	discussionService *service.DiscussionService
	users             repository.UserRepositoryInterface
	aggregator        *notify.Aggregator
	hub               *realtime.Hub
}

func NewMessageHandler(
	messageService *service.MessageService,
	discussionService *service.DiscussionService,
	users repository.UserRepositoryInterface,
	aggregator *notify.Aggregator,
	hub *realtime.Hub,
) *MessageHandler {
	return &MessageHandler{
		messageService:    messageService,
		discussionService: discussionService,
		users:             users,
		aggregator:        aggregator,
		hub:               hub,
	}
}

// Send persists the message, then fans out: a realtime event to the
// connected partner and an activity event to the notification
// aggregator. The message commit alone decides the response; downstream
// failures are logged, never returned.
func (h *MessageHandler) Send(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	var input service.SendMessageInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}

	input.Content = validation.TrimAndLimit(input.Content, validation.MaxMessageLength())
	if input.Content == "" {
		return httpx.BadRequest(c, "missing_content", "Content is required")
	}
	if input.DiscussionID == 0 {
		return httpx.BadRequest(c, "missing_discussion", "discussion_id is required")
	}

	message, err := h.messageService.Send(userID, input)
	if err != nil {
		return httpx.Internal(c, "send_message_failed")
	}

	h.hub.PublishEvent(realtime.NewEvent(realtime.EventMessageCreated, message.ToResponse()), userID)
	h.notifyPartner(userID, message)

	return c.Status(fiber.StatusCreated).JSON(message.ToResponse())
}

// notifyPartner feeds the aggregator after the message committed.
func (h *MessageHandler) notifyPartner(senderID uint, message *models.Message) {
	partner, err := h.users.FindPartner(senderID)
	if err != nil {
		log.Printf("Skipping notification for message %d: no partner for user %d: %v", message.ID, senderID, err)
		return
	}

	title := ""
	if discussion, err := h.discussionService.Get(message.DiscussionID); err == nil {
		title = discussion.Title
	}

	senderName := message.Sender.FullName
	if senderName == "" {
		senderName = message.Sender.Username
	}

	typ := models.NotifNewMessage
	context := ""
	if message.ParentID != nil {
		typ = models.NotifThreadReply
		if parent, err := h.messageService.Get(*message.ParentID); err == nil {
			context = validation.TrimAndLimit(parent.Content, 80)
		}
	}

	if _, err := h.aggregator.HandleEvent(message.DiscussionID, partner.ID, senderID, typ, notify.EventMetadata{
		Title:   title,
		Sender:  senderName,
		Content: message.Content,
		Context: context,
	}); err != nil {
		log.Printf("Notification aggregation for message %d failed: %v", message.ID, err)
	}
}

// List fetches a page of a discussion's messages, newest first, with
// cursor pagination.
func (h *MessageHandler) List(c *fiber.Ctx) error {
	if _, err := httpx.LocalUint(c, "userID"); err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	discussionIDStr := c.Query("discussion_id")
	if discussionIDStr == "" {
		return httpx.BadRequest(c, "missing_discussion", "discussion_id is required")
	}
	discussionID, err := strconv.ParseUint(discussionIDStr, 10, 32)
	if err != nil || discussionID == 0 {
		return httpx.BadRequest(c, "invalid_discussion", "Invalid discussion_id")
	}

	limit := 50
	if limitStr := c.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}

	var cursor uint64
	if cursorStr := c.Query("cursor"); cursorStr != "" {
		cursor, err = strconv.ParseUint(cursorStr, 10, 32)
		if err != nil {
			return httpx.BadRequest(c, "invalid_cursor", "Invalid cursor")
		}
	}

	messages, err := h.messageService.List(uint(discussionID), uint(cursor), limit)
	if err != nil {
		return httpx.Internal(c, "fetch_messages_failed")
	}

	responses := make([]models.MessageResponse, len(messages))
	for i, msg := range messages {
		responses[i] = msg.ToResponse()
	}

	result := fiber.Map{
		"messages": responses,
		"count":    len(responses),
	}
	if len(messages) > 0 {
		// Newest-first pages: the oldest entry is the cursor for the
		// next page back.
		result["next_cursor"] = messages[len(messages)-1].ID
	}
	return c.JSON(result)
}

// ListPinned returns a discussion's pinned messages, oldest first.
func (h *MessageHandler) ListPinned(c *fiber.Ctx) error {
	if _, err := httpx.LocalUint(c, "userID"); err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	discussionID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || discussionID == 0 {
		return httpx.BadRequest(c, "invalid_discussion", "Invalid discussion id")
	}

	messages, err := h.messageService.ListPinned(uint(discussionID))
	if err != nil {
		return httpx.Internal(c, "fetch_pinned_failed")
	}

	responses := make([]models.MessageResponse, len(messages))
	for i, msg := range messages {
		responses[i] = msg.ToResponse()
	}
	return c.JSON(fiber.Map{"messages": responses, "count": len(responses)})
}

type setPinnedRequest struct {
	Pinned bool `json:"pinned"`
}

// SetPinned pins or unpins a message and notifies the partner when a new
// pin lands.
func (h *MessageHandler) SetPinned(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	messageID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || messageID == 0 {
		return httpx.BadRequest(c, "invalid_message", "Invalid message id")
	}

	var req setPinnedRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}

	message, err := h.messageService.SetPinned(uint(messageID), req.Pinned)
	if err != nil {
		return httpx.Internal(c, "set_pinned_failed")
	}

	h.hub.PublishEvent(realtime.NewEvent(realtime.EventMessageUpdated, message.ToResponse()), userID)

	if req.Pinned {
		if partner, err := h.users.FindPartner(userID); err == nil {
			title := ""
			if discussion, err := h.discussionService.Get(message.DiscussionID); err == nil {
				title = discussion.Title
			}
			if _, err := h.aggregator.HandleEvent(message.DiscussionID, partner.ID, userID, models.NotifPinnedArgument, notify.EventMetadata{
				Title:   title,
				Content: message.Content,
			}); err != nil {
				log.Printf("Pin notification for message %d failed: %v", message.ID, err)
			}
		}
	}

	return c.JSON(message.ToResponse())
}

type reactionRequest struct {
	Emoji string `json:"emoji"`
}

// React adds an emoji reaction. Repeating the same reaction is a no-op.
func (h *MessageHandler) React(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	messageID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || messageID == 0 {
		return httpx.BadRequest(c, "invalid_message", "Invalid message id")
	}

	var req reactionRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}
	if req.Emoji == "" {
		return httpx.BadRequest(c, "missing_emoji", "emoji is required")
	}

	message, err := h.messageService.React(uint(messageID), userID, req.Emoji)
	if err != nil {
		return httpx.Internal(c, "react_failed")
	}

	h.hub.PublishEvent(realtime.NewEvent(realtime.EventReactionAdded, models.Reaction{
		MessageID: message.ID,
		UserID:    userID,
		Emoji:     req.Emoji,
	}), userID)

	// Reacting to the partner's message pings them; reacting to your own
	// is suppressed by the aggregator anyway.
	title := ""
	if discussion, err := h.discussionService.Get(message.DiscussionID); err == nil {
		title = discussion.Title
	}
	if _, err := h.aggregator.HandleEvent(message.DiscussionID, message.SenderID, userID, models.NotifReaction, notify.EventMetadata{
		Title: title,
		Emoji: req.Emoji,
	}); err != nil {
		log.Printf("Reaction notification for message %d failed: %v", message.ID, err)
	}

	return c.JSON(message.ToResponse())
}

// Unreact removes an emoji reaction; removing a missing one still
// succeeds.
func (h *MessageHandler) Unreact(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	messageID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || messageID == 0 {
		return httpx.BadRequest(c, "invalid_message", "Invalid message id")
	}

	var req reactionRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}
	if req.Emoji == "" {
		return httpx.BadRequest(c, "missing_emoji", "emoji is required")
	}

	message, err := h.messageService.Unreact(uint(messageID), userID, req.Emoji)
	if err != nil {
		return httpx.Internal(c, "unreact_failed")
	}

	h.hub.PublishEvent(realtime.NewEvent(realtime.EventReactionRemoved, models.Reaction{
		MessageID: message.ID,
		UserID:    userID,
		Emoji:     req.Emoji,
	}), userID)

	return c.JSON(message.ToResponse())
}
