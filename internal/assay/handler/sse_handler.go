package handler

import (
	"io"
	"time"

	"github.com/bitfantasy/goldassay/internal/assay/sse"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SSEHandler 表单变更实时推送
type SSEHandler struct {
	hub       *sse.Hub
	heartbeat time.Duration
	buffer    int
}

func NewSSEHandler(hub *sse.Hub) *SSEHandler {
	return &SSEHandler{hub: hub, heartbeat: 30 * time.Second, buffer: 64}
}

// Stream GET /api/v1/sse/events?token=xxx
// 管理员连接会收到所有用户的 form_update
func (h *SSEHandler) Stream(c *gin.Context) {
	client := &sse.Client{
		ID:      uuid.NewString(),
		UserID:  GetUserID(c),
		IsAdmin: c.GetBool("is_admin"),
		Events:  make(chan sse.Event, h.buffer),
	}
	h.hub.Register(client)
	defer h.hub.Unregister(client.ID)

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.SSEvent("connected", gin.H{"client_id": client.ID})

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	done := c.Request.Context().Done()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-done:
			return false
		case ev, ok := <-client.Events:
			if !ok {
				return false
			}
			c.SSEvent(ev.EventType, ev.Data)
		case <-ticker.C:
			io.WriteString(w, ": keepalive\n\n")
		}
		return true
	})
}
