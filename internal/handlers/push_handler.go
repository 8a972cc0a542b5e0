package handlers

import (
	"encoding/json"
	"time"

	"github.com/amoralabs/amora-backend/internal/analytics"
	"github.com/amoralabs/amora-backend/internal/httpx"
	"github.com/amoralabs/amora-backend/internal/models"
	"github.com/amoralabs/amora-backend/internal/push"
	"github.com/amoralabs/amora-backend/internal/repository"
	"github.com/amoralabs/amora-backend/internal/validation"
	"github.com/gofiber/fiber/v2"
)

const defaultAnalyticsWindow = 7 * 24 * time.Hour

// PushHandler is the single client surface for subscription management;
// debug pages go through these endpoints too instead of talking to the
// registry directly.
type PushHandler struct {
	subs       repository.PushSubscriptionRepositoryInterface
	pending    repository.PendingNotificationRepositoryInterface
	dispatcher *push.Dispatcher
	recorder   *analytics.Recorder
	vapid      push.VAPIDKeys
}

func NewPushHandler(
	subs repository.PushSubscriptionRepositoryInterface,
	pending repository.PendingNotificationRepositoryInterface,
	dispatcher *push.Dispatcher,
	recorder *analytics.Recorder,
	vapid push.VAPIDKeys,
) *PushHandler {
	return &PushHandler{
		subs:       subs,
		pending:    pending,
		dispatcher: dispatcher,
		recorder:   recorder,
		vapid:      vapid,
	}
}

type subscribeRequest struct {
	Subscription struct {
		Endpoint string `json:"endpoint"`
		Keys     struct {
			P256dh string `json:"p256dh"`
			Auth   string `json:"auth"`
		} `json:"keys"`
	} `json:"subscription"`
}

// Subscribe upserts a device registration. Browsers rotate endpoints;
// re-registering with a new endpoint stores it without assuming the old
// one still works; dead ones are pruned on their next failed delivery.
func (h *PushHandler) Subscribe(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	var req subscribeRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}
	if req.Subscription.Endpoint == "" {
		return httpx.BadRequest(c, "missing_endpoint", "subscription.endpoint is required")
	}
	if req.Subscription.Keys.P256dh == "" || req.Subscription.Keys.Auth == "" {
		return httpx.BadRequest(c, "missing_keys", "subscription.keys are required")
	}

	if err := h.subs.Upsert(userID, req.Subscription.Endpoint, req.Subscription.Keys.P256dh, req.Subscription.Keys.Auth); err != nil {
		return httpx.Internal(c, "subscribe_failed")
	}
	return c.JSON(fiber.Map{"success": true})
}

type unsubscribeRequest struct {
	Endpoint string `json:"endpoint"`
}

// Unsubscribe removes a registration. Removing one that never existed
// still succeeds.
func (h *PushHandler) Unsubscribe(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	var req unsubscribeRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}
	if req.Endpoint == "" {
		return httpx.BadRequest(c, "missing_endpoint", "endpoint is required")
	}

	if err := h.subs.Remove(userID, req.Endpoint); err != nil {
		return httpx.Internal(c, "unsubscribe_failed")
	}
	return c.JSON(fiber.Map{"success": true})
}

// SubscriptionStatus reports the server's view of the caller's
// registrations: the most recently written endpoint and the device
// count. A client compares the endpoint against the one its browser
// currently holds to detect rotation and re-subscribe.
func (h *PushHandler) SubscriptionStatus(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	endpoint, err := h.subs.LatestEndpoint(userID)
	if err != nil {
		return httpx.Internal(c, "subscription_status_failed")
	}
	count, err := h.subs.CountForUser(userID)
	if err != nil {
		return httpx.Internal(c, "subscription_status_failed")
	}

	return c.JSON(fiber.Map{
		"endpoint": endpoint,
		"count":    count,
	})
}

// VAPIDKey hands the public key to registering clients.
func (h *PushHandler) VAPIDKey(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"public_key": h.vapid.Public})
}

type sendRequest struct {
	RecipientUserID  uint            `json:"recipient_user_id"`
	Title            string          `json:"title"`
	Body             string          `json:"body"`
	URL              string          `json:"url"`
	NotificationType string          `json:"notification_type"`
	Data             json.RawMessage `json:"data"`
}

// Send pushes a payload straight to a recipient's devices, bypassing
// aggregation. The send is still logged so analytics and click tracking
// see it like any other notification.
func (h *PushHandler) Send(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	var req sendRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}
	if req.RecipientUserID == 0 {
		return httpx.BadRequest(c, "missing_recipient", "recipient_user_id is required")
	}
	if req.Title == "" && req.Body == "" {
		return httpx.BadRequest(c, "missing_content", "title or body is required")
	}

	typ := models.NotifNewMessage
	if req.NotificationType != "" {
		if !validation.ValidNotificationType(req.NotificationType) {
			return httpx.BadRequest(c, "invalid_type", "Unknown notification type")
		}
		typ = models.NotificationType(req.NotificationType)
	}

	// data takes precedence over the shorthand url field; both wire
	// forms (bare string or {url} object) are accepted.
	url := req.URL
	if len(req.Data) > 0 {
		target, ok := push.DecodeDataURL(req.Data)
		if !ok {
			return httpx.BadRequest(c, "invalid_data", "data must be a url string or a {url} object")
		}
		if target != "" {
			url = target
		}
	}
	if url == "" {
		url = "/"
	}

	row, err := h.pending.CreateSent(repository.GroupOrCreateInput{
		RecipientID: req.RecipientUserID,
		SenderID:    userID,
		Type:        typ,
		Content:     req.Body,
	})
	if err != nil {
		return httpx.Internal(c, "send_failed")
	}

	result, err := h.dispatcher.Dispatch(row.PushID, typ, req.RecipientUserID, push.Payload{
		Title: req.Title,
		Body:  req.Body,
		Icon:  "/icons/icon-192.png",
		Data:  push.DataURL{URL: url},
	})
	if err != nil {
		return httpx.Internal(c, "send_failed")
	}

	return c.JSON(fiber.Map{
		"sent":      result.Attempted,
		"delivered": result.Delivered,
		"failed":    result.Failed,
	})
}

// Analytics serves the trailing-window delivery rollup.
func (h *PushHandler) Analytics(c *fiber.Ctx) error {
	if _, err := httpx.LocalUint(c, "userID"); err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	window := defaultAnalyticsWindow
	if windowStr := c.Query("window"); windowStr != "" {
		parsed, err := time.ParseDuration(windowStr)
		if err != nil || parsed <= 0 {
			return httpx.BadRequest(c, "invalid_window", "window must be a positive duration like 24h")
		}
		window = parsed
	}

	summary, err := h.recorder.Summarize(window)
	if err != nil {
		return httpx.Internal(c, "analytics_failed")
	}
	return c.JSON(summary)
}

type clickedRequest struct {
	NotificationID string `json:"notification_id"`
}

// Clicked records a notification click reported by the receiving agent.
func (h *PushHandler) Clicked(c *fiber.Ctx) error {
	if _, err := httpx.LocalUint(c, "userID"); err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	var req clickedRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}
	if req.NotificationID == "" {
		return httpx.BadRequest(c, "missing_notification_id", "notification_id is required")
	}

	if err := h.recorder.RecordClick(req.NotificationID); err != nil {
		return httpx.Internal(c, "click_record_failed")
	}
	return c.JSON(fiber.Map{"success": true})
}
