package ws

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/aaronzipp/wargame-turns/internal/models"
	"github.com/aaronzipp/wargame-turns/internal/protocol"
)

// RequestHandler processes a request from a participant's connection and
// may return an event addressed only to that connection.
type RequestHandler func(mode models.Mode, req protocol.Request) protocol.Event

type peer struct {
	conn        *websocket.Conn
	participant string
	send        chan []byte
	once        sync.Once
}

func (p *peer) close() {
	p.once.Do(func() { close(p.send) })
}

// Hub tracks websocket peers per session code.
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]map[*peer]struct{}
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewHub creates an empty hub.
func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		sessions: make(map[string]map[*peer]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger: logger,
	}
}

// Serve upgrades the request and blocks until the peer disconnects.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, code, participantID string, onRequest RequestHandler) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	conn.SetReadLimit(maxMessageSize)

	p := &peer{conn: conn, participant: participantID, send: make(chan []byte, sendBuffer)}
	h.add(code, p)
	defer h.remove(code, p)

	go h.writePump(p)
	h.readPump(code, p, onRequest)
	return nil
}

func (h *Hub) add(code string, p *peer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	peers, ok := h.sessions[code]
	if !ok {
		peers = make(map[*peer]struct{})
		h.sessions[code] = peers
	}
	for other := range peers {
		if other.participant == p.participant {
			h.logger.Warn("participant opened another connection",
				zap.String("session", code), zap.String("participant", p.participant))
			break
		}
	}
	peers[p] = struct{}{}
	h.logger.Info("peer connected", zap.String("session", code), zap.String("participant", p.participant), zap.Int("peers", len(peers)))
}

func (h *Hub) remove(code string, p *peer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if peers, ok := h.sessions[code]; ok {
		delete(peers, p)
		if len(peers) == 0 {
			delete(h.sessions, code)
		}
	}
	p.close()
	h.logger.Info("peer disconnected", zap.String("session", code), zap.String("participant", p.participant))
}

func (h *Hub) readPump(code string, p *peer, onRequest RequestHandler) {
	_ = p.conn.SetReadDeadline(time.Now().Add(pongWait))
	p.conn.SetPongHandler(func(string) error {
		return p.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := p.conn.ReadMessage()
		if err != nil {
			return
		}
		mode, req, err := protocol.DecodeRequest(data)
		if err != nil {
			h.logger.Debug("ignoring undecodable request", zap.String("session", code), zap.Error(err))
			continue
		}
		if reply := onRequest(mode, req); reply != nil {
			h.deliver(code, p, mode, reply)
		}
	}
}

func (h *Hub) writePump(p *peer) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = p.conn.Close()
	}()

	for {
		select {
		case data, ok := <-p.send:
			_ = p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = p.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := p.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := p.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Broadcast sends ev to every peer of a session.
func (h *Hub) Broadcast(code string, mode models.Mode, ev protocol.Event) {
	data, err := protocol.EncodeEvent(mode, ev)
	if err != nil {
		h.logger.Error("encode event", zap.String("kind", ev.Kind()), zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for p := range h.sessions[code] {
		h.enqueue(code, p, data)
	}
}

// Send delivers ev to the connections of one participant.
func (h *Hub) Send(code, participantID string, mode models.Mode, ev protocol.Event) {
	data, err := protocol.EncodeEvent(mode, ev)
	if err != nil {
		h.logger.Error("encode event", zap.String("kind", ev.Kind()), zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for p := range h.sessions[code] {
		if p.participant == participantID {
			h.enqueue(code, p, data)
		}
	}
}

func (h *Hub) deliver(code string, p *peer, mode models.Mode, ev protocol.Event) {
	data, err := protocol.EncodeEvent(mode, ev)
	if err != nil {
		h.logger.Error("encode event", zap.String("kind", ev.Kind()), zap.Error(err))
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.sessions[code][p]; ok {
		h.enqueue(code, p, data)
	}
}

// enqueue never blocks. A peer whose queue is full is too slow to follow
// the session and is disconnected. Callers hold h.mu.
func (h *Hub) enqueue(code string, p *peer, data []byte) {
	select {
	case p.send <- data:
	default:
		h.logger.Warn("dropping slow peer", zap.String("session", code), zap.String("participant", p.participant))
		_ = p.conn.Close()
	}
}

// Count returns the number of peers connected to a session.
func (h *Hub) Count(code string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[code])
}

// CloseSession disconnects every peer of a session.
func (h *Hub) CloseSession(code string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for p := range h.sessions[code] {
		_ = p.conn.Close()
	}
}
