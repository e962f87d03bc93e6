package sse

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

// 事件类型
const (
	EventFormUpdate = "form_update"
)

// 表单变更动作
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// Event represents a Server-Sent Event
type Event struct {
	EventType string `json:"event"`
	Data      string `json:"data"`
}

// Client represents a connected SSE client. Admin clients also receive
// every other user's form updates.
type Client struct {
	ID      string
	UserID  string
	IsAdmin bool
	Events  chan Event
}

// Hub manages all SSE client connections
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	logger  *zap.Logger
}

// NewHub creates a new SSE Hub
func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients: make(map[string]*Client),
		logger:  logger.Named("sse"),
	}
}

// Register adds a new client to the hub
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client.ID] = client
	h.logger.Debug("Client registered",
		zap.String("client_id", client.ID),
		zap.String("user_id", client.UserID),
		zap.Int("total", len(h.clients)))
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if client, ok := h.clients[clientID]; ok {
		close(client.Events)
		delete(h.clients, clientID)
		h.logger.Debug("Client unregistered", zap.String("client_id", clientID), zap.Int("total", len(h.clients)))
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// SendToUser 发给该用户的连接以及所有管理员连接
func (h *Hub) SendToUser(userID string, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		if client.UserID != userID && !client.IsAdmin {
			continue
		}
		select {
		case client.Events <- event:
		default:
			h.logger.Warn("Client buffer full, skipping event", zap.String("client_id", client.ID))
		}
	}
}

// FormUpdate form_update 事件负载
type FormUpdate struct {
	FormID     string `json:"form_id"`
	FormNumber int    `json:"form_number"`
	UserID     string `json:"user_id"`
	Action     string `json:"action"`
}

// PublishFormUpdate 表单保存或删除后通知
func (h *Hub) PublishFormUpdate(update FormUpdate) {
	data, err := json.Marshal(update)
	if err != nil {
		h.logger.Error("Marshal form_update failed", zap.Error(err))
		return
	}
	h.SendToUser(update.UserID, Event{EventType: EventFormUpdate, Data: string(data)})
	h.logger.Debug("Published form_update",
		zap.String("user_id", update.UserID),
		zap.String("form_id", update.FormID),
		zap.String("action", update.Action))
}
