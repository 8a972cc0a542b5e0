package handlers

import (
	"github.com/amoralabs/amora-backend/internal/httpx"
	"github.com/amoralabs/amora-backend/internal/repository"
	"github.com/gofiber/fiber/v2"
)

// PreferenceHandler serves the persisted per-user flags ("don't show the
// install prompt again", mute the ping sound) that clients used to keep
// in local storage.
type PreferenceHandler struct {
	prefs repository.NotificationPreferenceRepositoryInterface
}

func NewPreferenceHandler(prefs repository.NotificationPreferenceRepositoryInterface) *PreferenceHandler {
	return &PreferenceHandler{prefs: prefs}
}

func (h *PreferenceHandler) List(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	prefs, err := h.prefs.ListForUser(userID)
	if err != nil {
		return httpx.Internal(c, "fetch_preferences_failed")
	}

	flags := make(map[string]bool, len(prefs))
	for _, p := range prefs {
		flags[p.Key] = p.Value
	}
	return c.JSON(fiber.Map{"preferences": flags})
}

type setPreferenceRequest struct {
	Key   string `json:"key"`
	Value bool   `json:"value"`
}

func (h *PreferenceHandler) Set(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	var req setPreferenceRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}
	if req.Key == "" {
		return httpx.BadRequest(c, "missing_key", "key is required")
	}

	if err := h.prefs.Upsert(userID, req.Key, req.Value); err != nil {
		return httpx.Internal(c, "set_preference_failed")
	}
	return c.JSON(fiber.Map{"success": true})
}
