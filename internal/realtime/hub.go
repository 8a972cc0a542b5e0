package realtime

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"io"
	"log"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
)

// ClientConnection wraps a WebSocket connection with metadata. All data
// frames go through write so hub publishes and reader-side replies never
// interleave on the wire.
type ClientConnection struct {
	Conn         *websocket.Conn
	UserID       uint
	LastPong     time.Time
	SupportsGzip bool
	PingTicker   *time.Ticker
	CloseChan    chan struct{}

	writeMu    sync.Mutex
	writeFrame func(frameType int, data []byte) error
}

// Hub manages all active WebSocket connections. Delivery to connected
// clients is best-effort: a client that misses events reconciles with a
// full reload on reconnect, and offline users are reached by web push,
// not by a ws replay queue.
type Hub struct {
	clients      map[uint]*ClientConnection
	clientsMux   sync.RWMutex
	pingInterval time.Duration
	pongTimeout  time.Duration
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	hub := &Hub{
		clients:      make(map[uint]*ClientConnection),
		pingInterval: 30 * time.Second,
		pongTimeout:  90 * time.Second,
	}

	go hub.connectionHealthChecker()

	return hub
}

// Register adds a client connection with health monitoring
func (h *Hub) Register(userID uint, conn *websocket.Conn, supportsGzip bool) {
	clientConn := &ClientConnection{
		Conn:         conn,
		UserID:       userID,
		LastPong:     time.Now(),
		SupportsGzip: supportsGzip,
		PingTicker:   time.NewTicker(h.pingInterval),
		CloseChan:    make(chan struct{}),
		writeFrame:   conn.WriteMessage,
	}

	conn.SetPongHandler(func(appData string) error {
		h.clientsMux.Lock()
		if client, exists := h.clients[userID]; exists {
			client.LastPong = time.Now()
		}
		h.clientsMux.Unlock()
		return nil
	})

	conn.SetReadDeadline(time.Now().Add(h.pongTimeout))

	h.clientsMux.Lock()
	h.clients[userID] = clientConn
	h.clientsMux.Unlock()

	go h.pingRoutine(clientConn)

	log.Printf("User %d connected to hub (total: %d, gzip: %v)", userID, len(h.clients), supportsGzip)
}

// Unregister removes a client connection
func (h *Hub) Unregister(userID uint) {
	h.clientsMux.Lock()
	if client, exists := h.clients[userID]; exists {
		if client.PingTicker != nil {
			client.PingTicker.Stop()
		}
		close(client.CloseChan)
	}
	delete(h.clients, userID)
	count := len(h.clients)
	h.clientsMux.Unlock()
	log.Printf("User %d disconnected from hub (total: %d)", userID, count)
}

// IsOnline checks if a user is connected
func (h *Hub) IsOnline(userID uint) bool {
	h.clientsMux.RLock()
	defer h.clientsMux.RUnlock()
	_, exists := h.clients[userID]
	return exists
}

// SendToUser sends data to a specific user with optional compression.
// Sending to a user who is not connected is a silent no-op.
func (h *Hub) SendToUser(userID uint, data interface{}) error {
	h.clientsMux.RLock()
	clientConn, exists := h.clients[userID]
	h.clientsMux.RUnlock()

	if !exists {
		return nil
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		log.Printf("Error marshaling data for user %d: %v", userID, err)
		return err
	}

	return h.deliver(clientConn, jsonData)
}

// SendError sends an error reply to a connected user.
func (h *Hub) SendError(userID uint, code, message, details string) error {
	return h.SendToUser(userID, ErrorResponse{
		Type:    "error",
		Error:   message,
		Code:    code,
		Details: details,
	})
}

// PublishEvent sends a sync event to both partners except the users in
// skip (usually the actor, who already applied the change locally).
func (h *Hub) PublishEvent(event Event, skip ...uint) {
	h.clientsMux.RLock()
	targets := make([]*ClientConnection, 0, len(h.clients))
	for userID, conn := range h.clients {
		skipped := false
		for _, s := range skip {
			if userID == s {
				skipped = true
				break
			}
		}
		if !skipped {
			targets = append(targets, conn)
		}
	}
	h.clientsMux.RUnlock()

	jsonData, err := json.Marshal(event)
	if err != nil {
		log.Printf("Error marshaling event %s: %v", event.Type, err)
		return
	}

	for _, clientConn := range targets {
		if err := h.deliver(clientConn, jsonData); err != nil {
			log.Printf("Error publishing %s to user %d: %v", event.Type, clientConn.UserID, err)
		}
	}
}

// deliver writes one JSON frame to a client, compressed when the client
// negotiated gzip. A failed write drops the connection.
func (h *Hub) deliver(clientConn *ClientConnection, jsonData []byte) error {
	frameType, finalData := encodeFrame(jsonData, clientConn.SupportsGzip)
	if err := clientConn.write(frameType, finalData); err != nil {
		log.Printf("Error sending message to user %d: %v", clientConn.UserID, err)
		h.Unregister(clientConn.UserID)
		return err
	}
	return nil
}

// encodeFrame compresses a frame when the client supports gzip and the
// payload is big enough (> 512 bytes) for compression to pay off.
// Compressed frames go out as binary, plain JSON as text.
func encodeFrame(jsonData []byte, supportsGzip bool) (int, []byte) {
	if supportsGzip && len(jsonData) > 512 {
		compressed, err := compressData(jsonData)
		if err == nil && len(compressed) < len(jsonData) {
			return websocket.BinaryMessage, compressed
		}
	}
	return websocket.TextMessage, jsonData
}

// Count returns the number of connected clients
func (h *Hub) Count() int {
	h.clientsMux.RLock()
	defer h.clientsMux.RUnlock()
	return len(h.clients)
}

func (c *ClientConnection) write(frameType int, data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.writeFrame(frameType, data)
}

// pingRoutine sends periodic ping messages to keep connection alive
func (h *Hub) pingRoutine(client *ClientConnection) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Ping routine recovered from panic for user %d: %v", client.UserID, r)
		}
	}()

	for {
		select {
		case <-client.CloseChan:
			return
		case <-client.PingTicker.C:
			h.clientsMux.RLock()
			_, exists := h.clients[client.UserID]
			h.clientsMux.RUnlock()

			if !exists {
				return
			}

			if err := client.Conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(10*time.Second)); err != nil {
				log.Printf("Ping failed for user %d: %v", client.UserID, err)
				h.Unregister(client.UserID)
				return
			}
		}
	}
}

// connectionHealthChecker monitors connection health and removes dead connections
func (h *Hub) connectionHealthChecker() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		h.clientsMux.RLock()
		deadConnections := make([]uint, 0)
		now := time.Now()

		for userID, client := range h.clients {
			if now.Sub(client.LastPong) > h.pongTimeout {
				deadConnections = append(deadConnections, userID)
			}
		}
		h.clientsMux.RUnlock()

		for _, userID := range deadConnections {
			log.Printf("Removing dead connection for user %d (no pong received)", userID)
			h.Unregister(userID)
		}
	}
}

// compressData compresses data using gzip
func compressData(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	gzipWriter := gzip.NewWriter(&buf)

	if _, err := gzipWriter.Write(data); err != nil {
		return nil, err
	}

	if err := gzipWriter.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// DecompressMessage decompresses a gzip-compressed client frame.
func DecompressMessage(data []byte) ([]byte, error) {
	reader, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	return io.ReadAll(reader)
}
