// Package webchat serves the browser chat channel over WebSocket.
package webchat

import (
	"log/slog"
	"sync"

	"github.com/coder/websocket"
)

// Sessions tracks the open chat socket per (user, tab).
type Sessions struct {
	mu     sync.RWMutex
	active map[string]map[string]*websocket.Conn
}

// NewSessions creates an empty registry.
func NewSessions() *Sessions {
	return &Sessions{active: make(map[string]map[string]*websocket.Conn)}
}

// Get returns the socket for a user and tab, or nil.
func (s *Sessions) Get(userID, sessionID string) *websocket.Conn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active[userID][sessionID]
}

// Register stores conn, closing any socket it replaces.
func (s *Sessions) Register(userID, sessionID string, conn *websocket.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tabs, ok := s.active[userID]
	if !ok {
		tabs = make(map[string]*websocket.Conn)
		s.active[userID] = tabs
	}
	if existing, ok := tabs[sessionID]; ok && existing != conn {
		_ = existing.Close(websocket.StatusNormalClosure, "session replaced")
	}
	tabs[sessionID] = conn
	slog.Info("Chat session registered", "user_id", userID, "session_id", sessionID)
}

// Unregister removes conn unless a newer socket already replaced it.
func (s *Sessions) Unregister(userID, sessionID string, conn *websocket.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tabs, ok := s.active[userID]
	if !ok || tabs[sessionID] != conn {
		return
	}
	delete(tabs, sessionID)
	if len(tabs) == 0 {
		delete(s.active, userID)
	}
	slog.Info("Chat session unregistered", "user_id", userID, "session_id", sessionID)
}

// Count returns the number of open sockets.
func (s *Sessions) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, tabs := range s.active {
		n += len(tabs)
	}
	return n
}

// CloseAll closes every open socket, used on shutdown.
func (s *Sessions) CloseAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for userID, tabs := range s.active {
		for _, conn := range tabs {
			_ = conn.Close(websocket.StatusGoingAway, "server shutting down")
		}
		delete(s.active, userID)
	}
}
