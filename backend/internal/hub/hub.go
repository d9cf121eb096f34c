// Package hub fans render plans out to overlay clients over WebSocket and
// accepts game-context reports, setting changes and commands from them.
package hub

import (
	"sync"

	"github.com/lxzan/gws"

	"github.com/soar/padoverlay/backend/internal/logging"
	"github.com/soar/padoverlay/backend/internal/visibility"
)

var log = logging.For("hub")

// ContextSink receives game-context reports.
type ContextSink interface {
	Set(ctx visibility.Context)
}

// Controller applies setting changes and commands.
type Controller interface {
	Set(name string, value any) error
	Run(cmd string) (string, error)
}

// Hub tracks connected clients. It implements gws.Event.
type Hub struct {
	contexts ContextSink
	control  Controller

	mu      sync.RWMutex
	clients map[*gws.Conn]struct{}
	last    []byte // latest frame, sent to new clients
}

func NewHub(contexts ContextSink, control Controller) *Hub {
	return &Hub{
		contexts: contexts,
		control:  control,
		clients:  make(map[*gws.Conn]struct{}),
	}
}

// Broadcast sends a text message to every client.
func (h *Hub) Broadcast(msg []byte) {
	h.mu.Lock()
	h.last = msg
	clients := make([]*gws.Conn, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	if len(clients) == 0 {
		return
	}
	b := gws.NewBroadcaster(gws.OpcodeText, msg)
	defer b.Close()
	for _, c := range clients {
		if err := b.Broadcast(c); err != nil {
			log.Debugf("broadcast: %v", err)
		}
	}
}

func (h *Hub) OnOpen(c *gws.Conn) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	last := h.last
	h.mu.Unlock()
	log.Infof("client connected (total: %d)", n)

	if last != nil {
		c.WriteAsync(gws.OpcodeText, last, nil)
	}
}

func (h *Hub) OnClose(c *gws.Conn, err error) {
	h.mu.Lock()
	delete(h.clients, c)
	n := len(h.clients)
	h.mu.Unlock()
	log.WithField("err", err).Infof("client disconnected (total: %d)", n)
}

func (h *Hub) OnPing(c *gws.Conn, payload []byte) {
	_ = c.WritePong(payload)
}

func (h *Hub) OnPong(c *gws.Conn, payload []byte) {}

func (h *Hub) OnMessage(c *gws.Conn, message *gws.Message) {
	defer message.Close()

	m, err := DecodeClientMessage(message.Bytes())
	if err != nil {
		log.Warnf("bad client message: %v", err)
		c.WriteAsync(gws.OpcodeText, EncodeResult(false, err.Error()), nil)
		return
	}
	if reply := h.handle(m); reply != nil {
		c.WriteAsync(gws.OpcodeText, reply, nil)
	}
}

// handle applies one client message and returns the reply, if any.
func (h *Hub) handle(m ClientMessage) []byte {
	switch m.Type {
	case TypeContext:
		h.contexts.Set(m.Context)
		return nil

	case TypeSet:
		if err := h.control.Set(m.Name, m.Value); err != nil {
			return EncodeResult(false, err.Error())
		}
		log.Debugf("setting %s = %v", m.Name, m.Value)
		return EncodeResult(true, m.Name)

	case TypeCommand:
		out, err := h.control.Run(m.Name)
		if err != nil {
			return EncodeResult(false, err.Error())
		}
		log.Infof("command %s: %s", m.Name, out)
		return EncodeResult(true, out)
	}
	return nil
}
