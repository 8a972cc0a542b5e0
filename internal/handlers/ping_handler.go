package handlers

import (
	"errors"

	"github.com/amoralabs/amora-backend/internal/httpx"
	"github.com/amoralabs/amora-backend/internal/notify"
	"github.com/amoralabs/amora-backend/internal/realtime"
	"github.com/amoralabs/amora-backend/internal/repository"
	"github.com/gofiber/fiber/v2"
)

type PingHandler struct {
	pings *notify.PingService
	users repository.UserRepositoryInterface
	hub   *realtime.Hub
}

func NewPingHandler(pings *notify.PingService, users repository.UserRepositoryInterface, hub *realtime.Hub) *PingHandler {
	return &PingHandler{pings: pings, users: users, hub: hub}
}

// Send fires the ambient "thinking of you" ping at the partner. Rejected
// sends return 429 with a reason code so the UI can show the right
// countdown.
func (h *PingHandler) Send(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	partner, err := h.users.FindPartner(userID)
	if err != nil {
		return httpx.BadRequest(c, "no_partner", "No partner linked to this account")
	}

	sender, err := h.users.FindByID(userID)
	if err != nil {
		return httpx.Internal(c, "ping_failed")
	}
	senderName := sender.FullName
	if senderName == "" {
		senderName = sender.Username
	}

	status, err := h.pings.Send(userID, partner.ID, senderName)
	if err != nil {
		switch {
		case errors.Is(err, notify.ErrDailyLimitReached):
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"success":         false,
				"code":            "daily_limit_reached",
				"remaining_today": status.RemainingToday,
			})
		case errors.Is(err, notify.ErrCooldownActive):
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"success":          false,
				"code":             "cooldown_active",
				"cooldown_seconds": int(status.Cooldown.Seconds()),
			})
		}
		return httpx.Internal(c, "ping_failed")
	}

	return c.JSON(fiber.Map{
		"success":         true,
		"sent_today":      status.SentToday,
		"remaining_today": status.RemainingToday,
	})
}

// Status reports the caller's current quota and cooldown, plus whether
// the partner is connected right now (a ping to an online partner pops
// instantly; otherwise it rides web push).
func (h *PingHandler) Status(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	status, err := h.pings.Status(userID)
	if err != nil {
		return httpx.Internal(c, "ping_status_failed")
	}

	partnerOnline := false
	if partner, err := h.users.FindPartner(userID); err == nil {
		partnerOnline = h.hub.IsOnline(partner.ID)
	}

	return c.JSON(fiber.Map{
		"allowed":          status.Allowed,
		"sent_today":       status.SentToday,
		"remaining_today":  status.RemainingToday,
		"cooldown_seconds": int(status.Cooldown.Seconds()),
		"partner_online":   partnerOnline,
	})
}
