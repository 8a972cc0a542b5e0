package handlers

import (
	"github.com/amoralabs/amora-backend/internal/httpx"
	"github.com/amoralabs/amora-backend/internal/models"
	"github.com/amoralabs/amora-backend/internal/notify"
	"github.com/amoralabs/amora-backend/internal/validation"
	"github.com/gofiber/fiber/v2"
)

type NotificationHandler struct {
	aggregator *notify.Aggregator
}

func NewNotificationHandler(aggregator *notify.Aggregator) *NotificationHandler {
	return &NotificationHandler{aggregator: aggregator}
}

type notificationRequest struct {
	DiscussionID uint                 `json:"discussion_id"`
	RecipientID  uint                 `json:"recipient_id"`
	SenderID     uint                 `json:"sender_id"`
	Type         string               `json:"type"`
	Metadata     notify.EventMetadata `json:"metadata"`
}

// HandleEvent feeds one activity event into the aggregator. The response
// reflects the durable aggregation write; push delivery happens in the
// background and its failures are never surfaced here.
func (h *NotificationHandler) HandleEvent(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	var req notificationRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}

	if req.DiscussionID == 0 {
		return httpx.BadRequest(c, "missing_discussion", "discussion_id is required")
	}
	if req.RecipientID == 0 {
		return httpx.BadRequest(c, "missing_recipient", "recipient_id is required")
	}
	if req.Type == "" {
		return httpx.BadRequest(c, "missing_type", "type is required")
	}
	if !validation.ValidNotificationType(req.Type) {
		return httpx.BadRequest(c, "invalid_type", "Unknown notification type")
	}
	if req.SenderID == 0 {
		req.SenderID = userID
	}

	result, err := h.aggregator.HandleEvent(req.DiscussionID, req.RecipientID, req.SenderID, models.NotificationType(req.Type), req.Metadata)
	if err != nil {
		return httpx.Internal(c, "notification_failed")
	}

	response := fiber.Map{
		"success": true,
		"sent":    result.Sent,
		"grouped": result.Grouped,
	}
	if result.Count > 0 {
		response["count"] = result.Count
	}
	return c.JSON(response)
}
