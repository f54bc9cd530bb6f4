package network

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/thrylos-labs/stakeledger/amount"
	"github.com/thrylos-labs/stakeledger/crypto/address"
	"github.com/thrylos-labs/stakeledger/logging"
	"github.com/thrylos-labs/stakeledger/staking"
	"go.uber.org/zap"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512

	messageQueueSize = 100
)

const (
	EventSubscribed = "subscribed"
	EventReceipt    = "receipt"
	EventBalance    = "balance"
)

// Event is the JSON frame pushed to subscribers.
type Event struct {
	Type    string           `json:"type"`
	Address string           `json:"address"`
	Receipt *staking.Receipt `json:"receipt,omitempty"`
	Balance *amount.Amount   `json:"balance,omitempty"`
}

type WebSocketConnection struct {
	ws        *websocket.Conn
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func NewWebSocketConnection(ws *websocket.Conn) *WebSocketConnection {
	return &WebSocketConnection{
		ws:   ws,
		send: make(chan []byte, messageQueueSize),
		done: make(chan struct{}),
	}
}

func (conn *WebSocketConnection) close() {
	conn.closeOnce.Do(func() {
		close(conn.done)
		conn.ws.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(writeWait),
		)
		conn.ws.Close()
	})
}

// enqueueMessage never blocks; a subscriber that falls behind loses frames.
func (conn *WebSocketConnection) enqueueMessage(data []byte) bool {
	select {
	case <-conn.done:
		return false
	case conn.send <- data:
		return true
	default:
		return false
	}
}

// WebSocketManager fans staking receipts and balance changes out to
// websocket subscribers keyed by address. It satisfies both
// staking.Notifier and balance.Notifier.
type WebSocketManager struct {
	connections map[string]map[*WebSocketConnection]struct{}
	mutex       sync.RWMutex
	upgrader    websocket.Upgrader
	logger      *zap.Logger
}

func NewWebSocketManager(allowedOrigins []string) *WebSocketManager {
	allowAll := len(allowedOrigins) == 0
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		if o == "*" {
			allowAll = true
		}
		allowed[o] = struct{}{}
	}
	return &WebSocketManager{
		connections: make(map[string]map[*WebSocketConnection]struct{}),
		logger:      logging.Logger.Named("ws"),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if allowAll || origin == "" {
					return true
				}
				_, ok := allowed[origin]
				return ok
			},
		},
	}
}

func (m *WebSocketManager) WebSocketEventsHandler(w http.ResponseWriter, r *http.Request) {
	principal := r.URL.Query().Get("principal")
	if !address.Validate(principal) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_request", Message: "principal must be a valid address"})
		return
	}

	ws, err := m.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error
		m.logger.Warn("websocket upgrade failed", zap.String("principal", principal), zap.Error(err))
		return
	}

	conn := NewWebSocketConnection(ws)
	m.mutex.Lock()
	if m.connections[principal] == nil {
		m.connections[principal] = make(map[*WebSocketConnection]struct{})
	}
	m.connections[principal][conn] = struct{}{}
	m.mutex.Unlock()

	go m.writePump(conn, principal)
	go m.readPump(conn, principal)

	m.send(conn, Event{Type: EventSubscribed, Address: principal})
}

func (m *WebSocketManager) writePump(conn *WebSocketConnection, principal string) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		m.remove(conn, principal)
	}()

	for {
		select {
		case <-conn.done:
			return
		case message := <-conn.send:
			conn.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.ws.WriteMessage(websocket.TextMessage, message); err != nil {
				m.logger.Debug("write failed", zap.String("principal", principal), zap.Error(err))
				return
			}
		case <-ticker.C:
			if err := conn.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				m.logger.Debug("ping failed", zap.String("principal", principal), zap.Error(err))
				return
			}
		}
	}
}

func (m *WebSocketManager) readPump(conn *WebSocketConnection, principal string) {
	defer m.remove(conn, principal)

	conn.ws.SetReadLimit(maxMessageSize)
	conn.ws.SetReadDeadline(time.Now().Add(pongWait))
	conn.ws.SetPongHandler(func(string) error {
		return conn.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ws.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				m.logger.Debug("websocket closed", zap.String("principal", principal), zap.Error(err))
			}
			return
		}
	}
}

func (m *WebSocketManager) remove(conn *WebSocketConnection, principal string) {
	m.mutex.Lock()
	if set := m.connections[principal]; set != nil {
		delete(set, conn)
		if len(set) == 0 {
			delete(m.connections, principal)
		}
	}
	m.mutex.Unlock()
	conn.close()
}

func (m *WebSocketManager) send(conn *WebSocketConnection, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		m.logger.Error("encode event", zap.Error(err))
		return
	}
	conn.enqueueMessage(data)
}

func (m *WebSocketManager) broadcast(principal string, ev Event) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	set := m.connections[principal]
	if len(set) == 0 {
		return
	}
	data, err := json.Marshal(ev)
	if err != nil {
		m.logger.Error("encode event", zap.Error(err))
		return
	}
	for conn := range set {
		if !conn.enqueueMessage(data) {
			m.logger.Warn("subscriber queue full, event dropped",
				zap.String("principal", principal),
				zap.String("type", ev.Type))
		}
	}
}

// NotifyReceipt implements staking.Notifier.
func (m *WebSocketManager) NotifyReceipt(r staking.Receipt) {
	m.broadcast(r.Principal, Event{Type: EventReceipt, Address: r.Principal, Receipt: &r})
}

// NotifyBalanceUpdate implements balance.Notifier.
func (m *WebSocketManager) NotifyBalanceUpdate(addr string, bal amount.Amount) {
	m.broadcast(addr, Event{Type: EventBalance, Address: addr, Balance: &bal})
}

// Subscribers returns how many connections listen on principal.
func (m *WebSocketManager) Subscribers(principal string) int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.connections[principal])
}

// Close disconnects every subscriber.
func (m *WebSocketManager) Close() {
	m.mutex.Lock()
	conns := m.connections
	m.connections = make(map[string]map[*WebSocketConnection]struct{})
	m.mutex.Unlock()

	for _, set := range conns {
		for conn := range set {
			conn.close()
		}
	}
}
