package services

import (
	"sync"

	"github.com/gorilla/websocket"
)

// WSConnManager tracks the live WebSocket connections per user. A user may
// be connected from several devices at once.
type WSConnManager struct {
	mu    sync.RWMutex
	users map[int64]map[*websocket.Conn]struct{}
}

func NewWSConnManager() *WSConnManager {
	return &WSConnManager{
		users: make(map[int64]map[*websocket.Conn]struct{}),
	}
}

func (m *WSConnManager) Add(userID int64, conn *websocket.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	conns := m.users[userID]
	if conns == nil {
		conns = make(map[*websocket.Conn]struct{})
		m.users[userID] = conns
	}
	conns[conn] = struct{}{}
}

func (m *WSConnManager) Remove(userID int64, conn *websocket.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	conns := m.users[userID]
	delete(conns, conn)
	if len(conns) == 0 {
		delete(m.users, userID)
	}
}

// HasConnections reports whether the user is connected right now.
func (m *WSConnManager) HasConnections(userID int64) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.users[userID]) > 0
}

// Send writes the message to every live connection of the user.
func (m *WSConnManager) Send(userID int64, message []byte) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for conn := range m.users[userID] {
		_ = conn.WriteMessage(websocket.TextMessage, message)
	}
}

var GlobalWSConnManager = NewWSConnManager()
