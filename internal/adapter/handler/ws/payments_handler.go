// Package ws serves the realtime payments socket used by the checkout page.
package ws

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/niteshmahajan-63/thewell-checkout/internal/infrastructure/realtime"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096

	eventJoin = "join"
)

type joinRequest struct {
	RecordID string `json:"recordID"`
}

// PaymentsHandler upgrades GET /payments and lets the client join the room
// of its CRM record.
type PaymentsHandler struct {
	hub      *realtime.Hub
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewPaymentsHandler accepts connections from allowedOrigins; an empty list
// accepts any origin.
func NewPaymentsHandler(hub *realtime.Hub, allowedOrigins []string, logger *zap.Logger) *PaymentsHandler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[strings.TrimRight(origin, "/")] = true
	}

	return &PaymentsHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" || len(allowed) == 0 {
					return true
				}
				u, err := url.Parse(origin)
				if err != nil {
					return false
				}
				return allowed[u.Scheme+"://"+u.Host]
			},
		},
		logger: logger,
	}
}

// Handle handles GET /payments
func (h *PaymentsHandler) Handle(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Warn("Realtime upgrade rejected",
			zap.String("origin", c.Request().Header.Get("Origin")),
			zap.Error(err))
		return nil
	}

	session := h.hub.NewSession()
	h.logger.Info("Client connected to payments channel", zap.String("session_id", session.ID))

	go h.writePump(conn, session)
	h.readPump(conn, session)
	return nil
}

func (h *PaymentsHandler) readPump(conn *websocket.Conn, session *realtime.Session) {
	defer func() {
		h.hub.Leave(session)
		conn.Close()
		h.logger.Info("Client disconnected from payments channel", zap.String("session_id", session.ID))
	}()

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var frame realtime.Frame
		if err := conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("Realtime read failed", zap.String("session_id", session.ID), zap.Error(err))
			}
			return
		}

		switch frame.Event {
		case eventJoin:
			var req joinRequest
			if err := json.Unmarshal(frame.Data, &req); err != nil || req.RecordID == "" {
				h.logger.Debug("Ignoring join without record id", zap.String("session_id", session.ID))
				continue
			}
			h.hub.Join(session, req.RecordID)
		default:
			h.logger.Debug("Ignoring unknown realtime event",
				zap.String("session_id", session.ID),
				zap.String("event", frame.Event))
		}
	}
}

func (h *PaymentsHandler) writePump(conn *websocket.Conn, session *realtime.Session) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case frame, ok := <-session.Send():
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
