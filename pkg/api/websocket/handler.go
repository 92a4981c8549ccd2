package websocket

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/aescanero/signup/pkg/domain"
	"github.com/aescanero/signup/pkg/ports"
)

const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// ActivityLookup resolves an activity by name
type ActivityLookup interface {
	GetActivity(ctx context.Context, name string) (*domain.Activity, error)
}

// Handler handles WebSocket connections
type Handler struct {
	activities ActivityLookup
	eventBus   ports.EventBus
	logger     *zap.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(activities ActivityLookup, eventBus ports.EventBus, logger *zap.Logger) *Handler {
	return &Handler{
		activities: activities,
		eventBus:   eventBus,
		logger:     logger,
	}
}

// HandleActivityStream streams roster events for the activity named in the path
func (h *Handler) HandleActivityStream(c *gin.Context) {
	name := c.Param("name")

	if _, err := h.activities.GetActivity(c.Request.Context(), name); err != nil {
		status, code, message := http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error"
		if errors.Is(err, domain.ErrActivityNotFound) {
			status, code, message = http.StatusNotFound, "ACTIVITY_NOT_FOUND", "Activity not found"
		} else {
			h.logger.Error("failed to look up activity", zap.String("activity", name), zap.Error(err))
		}
		c.JSON(status, gin.H{"error": gin.H{"code": code, "message": message}})
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Subscribe before upgrading so nothing published after the handshake is lost.
	events := make(chan domain.Event, 16)
	err := h.eventBus.Subscribe(ctx, domain.TopicRosterEvents, func(ctx context.Context, event domain.Event) error {
		if event.Activity != name {
			return nil
		}
		select {
		case events <- event:
		case <-ctx.Done():
			return ctx.Err()
		default:
			h.logger.Warn("event channel full, dropping event",
				zap.String("event_id", event.ID),
				zap.String("activity", name))
		}
		return nil
	})
	if err != nil {
		h.logger.Error("failed to subscribe to roster events", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": gin.H{"code": "EVENTS_UNAVAILABLE", "message": "Event stream unavailable"}})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("failed to upgrade connection", zap.Error(err))
		return
	}
	defer func() { _ = conn.Close() }()

	h.logger.Info("WebSocket connection established",
		zap.String("activity", name),
		zap.String("client", c.ClientIP()))

	// The read loop only detects the client going away.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			h.logger.Debug("WebSocket connection closed", zap.String("activity", name))
			return
		case event := <-events:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(event); err != nil {
				h.logger.Warn("failed to write message", zap.Error(err))
				return
			}
		}
	}
}
