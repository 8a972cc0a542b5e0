package handlers

import (
	"log"
	"os"

	"github.com/amoralabs/amora-backend/internal/realtime"
	"github.com/amoralabs/amora-backend/internal/repository"
	"github.com/amoralabs/amora-backend/internal/service"
	"github.com/gofiber/websocket/v2"
)

type WebSocketHandler struct {
	discussionService *service.DiscussionService
	users             repository.UserRepositoryInterface
	hub               *realtime.Hub
}

func NewWebSocketHandler(discussionService *service.DiscussionService, users repository.UserRepositoryInterface, hub *realtime.Hub) *WebSocketHandler {
	return &WebSocketHandler{
		discussionService: discussionService,
		users:             users,
		hub:               hub,
	}
}

func (h *WebSocketHandler) HandleWebSocket(c *websocket.Conn) {
	userID := c.Locals("userID").(uint)
	wsDebug := os.Getenv("WS_DEBUG") == "true"

	// Check if client supports gzip compression (via query param or header)
	supportsGzip := c.Query("gzip") == "1" || c.Headers("X-Supports-Gzip") == "1"

	h.hub.Register(userID, c, supportsGzip)

	go func() {
		if err := h.users.UpdateOnlineStatus(userID, true); err != nil {
			log.Printf("Failed to set user %d online: %v", userID, err)
		}
	}()

	defer func() {
		h.hub.Unregister(userID)
		go func() {
			if err := h.users.UpdateOnlineStatus(userID, false); err != nil {
				log.Printf("Failed to set user %d offline: %v", userID, err)
			}
		}()
	}()

	log.Printf("User %d connected via WebSocket", userID)

	ctx := &realtime.MessageContext{
		UserID:            userID,
		Hub:               h.hub,
		DiscussionService: h.discussionService,
	}

	// Handle incoming messages
	for {
		messageType, messageBytes, err := c.ReadMessage()
		if err != nil {
			log.Printf("Error reading message from user %d: %v", userID, err)
			break
		}

		if wsDebug {
			log.Printf("ws_recv user_id=%d frame_type=%d size=%d", userID, messageType, len(messageBytes))
		}

		// Decompress if binary message (gzip compressed)
		if messageType == websocket.BinaryMessage {
			decompressed, err := realtime.DecompressMessage(messageBytes)
			if err != nil {
				log.Printf("Error decompressing message from user %d: %v", userID, err)
				h.hub.SendError(userID, "decompression_failed", "Failed to decompress message", err.Error())
				continue
			}
			messageBytes = decompressed
		}

		msg, err := realtime.Deserialize(messageBytes)
		if err != nil {
			log.Printf("Error deserializing message from user %d: %v", userID, err)
			h.hub.SendError(userID, "invalid_message", "Invalid message format", err.Error())
			continue
		}

		if err := msg.Process(ctx); err != nil {
			log.Printf("Error processing message %s from user %d: %v", msg.GetType(), userID, err)
			h.hub.SendError(userID, "processing_failed", "Failed to process message", err.Error())
		}
	}

	log.Printf("User %d disconnected from WebSocket", userID)
}
