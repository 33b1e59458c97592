// Package realtime delivers payment events to checkout pages joined to a
// CRM record room.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Frame is the wire format of every realtime message.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Session is one connected client. Outbound frames are read from Send.
type Session struct {
	ID   string
	send chan []byte
}

// Send returns the outbound queue; it is closed when the session leaves the hub.
func (s *Session) Send() <-chan []byte {
	return s.send
}

// Hub tracks which sessions are joined to which room. A session is in at
// most one room at a time.
type Hub struct {
	mu         sync.RWMutex
	rooms      map[string]map[*Session]struct{}
	sessions   map[*Session]string
	bufferSize int
	logger     *zap.Logger
}

// NewHub creates a hub whose sessions buffer up to bufferSize frames.
func NewHub(bufferSize int, logger *zap.Logger) *Hub {
	if bufferSize <= 0 {
		bufferSize = 16
	}
	return &Hub{
		rooms:      make(map[string]map[*Session]struct{}),
		sessions:   make(map[*Session]string),
		bufferSize: bufferSize,
		logger:     logger,
	}
}

// NewSession registers a session that is not yet in any room.
func (h *Hub) NewSession() *Session {
	s := &Session{
		ID:   uuid.NewString(),
		send: make(chan []byte, h.bufferSize),
	}

	h.mu.Lock()
	h.sessions[s] = ""
	h.mu.Unlock()
	return s
}

// Join puts s in room, moving it out of any previous room.
func (h *Hub) Join(s *Session, room string) {
	if room == "" {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	previous, ok := h.sessions[s]
	if !ok {
		return
	}
	if previous == room {
		return
	}
	h.removeFromRoom(s, previous)

	members, ok := h.rooms[room]
	if !ok {
		members = make(map[*Session]struct{})
		h.rooms[room] = members
	}
	members[s] = struct{}{}
	h.sessions[s] = room

	h.logger.Info("Realtime session joined room",
		zap.String("session_id", s.ID),
		zap.String("room", room),
		zap.String("previous_room", previous),
	)
}

// Leave removes s from the hub and closes its send queue.
func (h *Hub) Leave(s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.sessions[s]
	if !ok {
		return
	}
	h.removeFromRoom(s, room)
	delete(h.sessions, s)
	close(s.send)
}

func (h *Hub) removeFromRoom(s *Session, room string) {
	if room == "" {
		return
	}
	members := h.rooms[room]
	delete(members, s)
	if len(members) == 0 {
		delete(h.rooms, room)
	}
}

// Emit sends event to every session in room. Sessions with a full queue
// miss the frame; an empty room is not an error.
func (h *Hub) Emit(ctx context.Context, room, event string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", event, err)
	}
	return h.emitRaw(ctx, room, event, data)
}

func (h *Hub) emitRaw(ctx context.Context, room, event string, data json.RawMessage) error {
	frame, err := json.Marshal(Frame{Event: event, Data: data})
	if err != nil {
		return fmt.Errorf("failed to marshal frame: %w", err)
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	members := h.rooms[room]
	if len(members) == 0 {
		h.logger.Debug("No realtime sessions in room",
			zap.String("room", room),
			zap.String("event", event))
		return nil
	}

	delivered := 0
	for s := range members {
		select {
		case s.send <- frame:
			delivered++
		default:
			h.logger.Warn("Realtime session queue full, dropping frame",
				zap.String("session_id", s.ID),
				zap.String("room", room),
				zap.String("event", event))
		}
	}

	h.logger.Debug("Realtime event emitted",
		zap.String("room", room),
		zap.String("event", event),
		zap.Int("delivered", delivered))
	return nil
}

// RoomSize returns the number of sessions joined to room.
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}
