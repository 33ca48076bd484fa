package infra

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"signaldesk.com/internal/domain"
)

// WsConn is the part of a websocket connection the hub writes to.
// *websocket.Conn from gofiber/contrib satisfies it.
type WsConn interface {
	WriteJSON(v interface{}) error
	Close() error
}

// WsMessage is the envelope pushed to preview watchers.
type WsMessage struct {
	Type    string      `json:"Type"`
	DraftID string      `json:"DraftID"`
	Data    interface{} `json:"Data,omitempty"`
	Error   string      `json:"Error,omitempty"`
}

// hubRequest is handled by the hub loop. applied is closed once it has
// taken effect.
type hubRequest struct {
	conn    WsConn
	draftID string
	applied chan struct{}
}

// PreviewHub manages websocket clients and which drafts each one watches.
type PreviewHub struct {
	// sendChannels stores a buffered channel for each client so one slow
	// client cannot block pushes to the others.
	sendChannels map[WsConn]chan interface{}

	// map[draftID]map[conn]存在
	watchers map[string]map[WsConn]bool

	mu  sync.RWMutex
	log zerolog.Logger

	register   chan hubRequest
	unregister chan hubRequest
	watch      chan hubRequest
	unwatch    chan hubRequest
	done       chan struct{}
	stopOnce   sync.Once
}

func NewPreviewHub(log zerolog.Logger) *PreviewHub {
	return &PreviewHub{
		sendChannels: make(map[WsConn]chan interface{}),
		watchers:     make(map[string]map[WsConn]bool),
		log:          log.With().Str("component", "preview_hub").Logger(),
		register:     make(chan hubRequest),
		unregister:   make(chan hubRequest),
		watch:        make(chan hubRequest),
		unwatch:      make(chan hubRequest),
		done:         make(chan struct{}),
	}
}

// Register, Unregister, Watch and Unwatch return once the hub has applied
// them, so a Send or PushToDraft issued afterwards sees the change.
func (h *PreviewHub) Register(conn WsConn) {
	h.request(h.register, conn, "")
}

func (h *PreviewHub) Unregister(conn WsConn) {
	h.request(h.unregister, conn, "")
}

func (h *PreviewHub) Watch(conn WsConn, draftID string) {
	h.request(h.watch, conn, draftID)
}

func (h *PreviewHub) Unwatch(conn WsConn, draftID string) {
	h.request(h.unwatch, conn, draftID)
}

func (h *PreviewHub) request(ch chan hubRequest, conn WsConn, draftID string) {
	req := hubRequest{conn: conn, draftID: draftID, applied: make(chan struct{})}
	select {
	case ch <- req:
	case <-h.done:
		return
	}
	select {
	case <-req.applied:
	case <-h.done:
	}
}

// Start runs the hub loop until ctx is cancelled.
func (h *PreviewHub) Start(ctx context.Context) {
	h.log.Info().Msg("Starting preview hub")
	defer h.shutdown()

	for {
		select {
		case <-ctx.Done():
			return

		case req := <-h.register:
			h.mu.Lock()
			if _, exists := h.sendChannels[req.conn]; !exists {
				sendCh := make(chan interface{}, 256)
				h.sendChannels[req.conn] = sendCh
				go h.writeLoop(req.conn, sendCh)
			}
			h.mu.Unlock()
			close(req.applied)
			h.log.Debug().Msg("Websocket client connected")

		case req := <-h.unregister:
			h.mu.Lock()
			h.removeLocked(req.conn)
			h.mu.Unlock()
			close(req.applied)
			h.log.Debug().Msg("Websocket client disconnected")

		case req := <-h.watch:
			h.mu.Lock()
			if _, ok := h.sendChannels[req.conn]; ok {
				if h.watchers[req.draftID] == nil {
					h.watchers[req.draftID] = make(map[WsConn]bool)
				}
				h.watchers[req.draftID][req.conn] = true
			}
			h.mu.Unlock()
			close(req.applied)
			h.log.Debug().Str("draft_id", req.draftID).Msg("Client watching draft")

		case req := <-h.unwatch:
			h.mu.Lock()
			if conns, ok := h.watchers[req.draftID]; ok {
				delete(conns, req.conn)
				if len(conns) == 0 {
					delete(h.watchers, req.draftID)
				}
			}
			h.mu.Unlock()
			close(req.applied)
		}
	}
}

func (h *PreviewHub) writeLoop(conn WsConn, ch chan interface{}) {
	for msg := range ch {
		if err := conn.WriteJSON(msg); err != nil {
			// the read loop notices the closed connection and unregisters
			h.log.Warn().Err(err).Msg("Websocket write failed")
			_ = conn.Close()
			return
		}
	}
}

func (h *PreviewHub) removeLocked(conn WsConn) {
	ch, ok := h.sendChannels[conn]
	if !ok {
		return
	}
	close(ch)
	delete(h.sendChannels, conn)
	for draftID, conns := range h.watchers {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.watchers, draftID)
		}
	}
}

func (h *PreviewHub) shutdown() {
	h.stopOnce.Do(func() {
		close(h.done)
		h.mu.Lock()
		for conn := range h.sendChannels {
			h.removeLocked(conn)
		}
		h.mu.Unlock()
		h.log.Info().Msg("Preview hub stopped")
	})
}

// PushToDraft sends data to every client watching draftID. Clients with a
// full buffer miss the message.
func (h *PreviewHub) PushToDraft(draftID string, data interface{}) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for conn := range h.watchers[draftID] {
		if ch, exists := h.sendChannels[conn]; exists {
			select {
			case ch <- data:
			default:
				h.log.Warn().Str("draft_id", draftID).Msg("Client buffer full, dropping preview")
			}
		}
	}
}

// Send writes data to one client only.
func (h *PreviewHub) Send(conn WsConn, data interface{}) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if ch, exists := h.sendChannels[conn]; exists {
		select {
		case ch <- data:
		default:
		}
	}
}

// WatcherCount returns how many clients watch draftID.
func (h *PreviewHub) WatcherCount(draftID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.watchers[draftID])
}

var _ domain.Notifier = (*PreviewHub)(nil)
