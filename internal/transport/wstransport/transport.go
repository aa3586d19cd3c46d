// Package wstransport implements transport.Transport over
// github.com/gorilla/websocket, the way the teacher's internal/net/ws
// package upgrades and serves player connections. Every inbound frame is
// marshaled onto a channel by a per-connection read goroutine and only
// handed to the caller's dispatch function inside Poll, so that the
// lockstep engine's single-threaded scheduling model holds even though
// the websocket reads happen concurrently.
package wstransport

import (
	nethttp "net/http"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"

	"lockstepd/internal/transport"
)

type inboundFrame struct {
	from transport.PeerID
	data []byte
}

// Transport is a websocket-backed transport.Transport usable both as a
// room host (Handler accepts inbound connections) and as a joining peer
// (Dial connects out to a host).
type Transport struct {
	upgrader websocket.Upgrader

	mu      sync.Mutex
	conns   map[transport.PeerID]*websocket.Conn
	nextID  int64
	incoming chan inboundFrame
}

// New returns an empty Transport with no connections yet.
func New() *Transport {
	return &Transport{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*nethttp.Request) bool { return true },
		},
		conns:    make(map[transport.PeerID]*websocket.Conn),
		incoming: make(chan inboundFrame, 256),
	}
}

// Handler upgrades an incoming HTTP request to a websocket connection and
// registers it under a freshly allocated PeerID, starting a read loop that
// feeds Poll.
func (t *Transport) Handler(w nethttp.ResponseWriter, r *nethttp.Request) {
	conn, err := t.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	t.register(conn)
}

// Dial connects out to a host's Handler endpoint, registering the
// resulting connection the same way an inbound one would be.
func (t *Transport) Dial(url string) (transport.PeerID, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return "", err
	}
	return t.register(conn), nil
}

func (t *Transport) register(conn *websocket.Conn) transport.PeerID {
	id := atomic.AddInt64(&t.nextID, 1)
	peer := transport.PeerID(strconv.FormatInt(id, 10))

	t.mu.Lock()
	t.conns[peer] = conn
	t.mu.Unlock()

	go t.readLoop(peer, conn)
	return peer
}

func (t *Transport) readLoop(peer transport.PeerID, conn *websocket.Conn) {
	defer func() {
		t.mu.Lock()
		delete(t.conns, peer)
		t.mu.Unlock()
		conn.Close()
	}()
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return
		}
		t.incoming <- inboundFrame{from: peer, data: payload}
	}
}

// Send writes data to a single connected peer. Reliability is a no-op:
// every websocket frame is delivered reliably and in order by the
// underlying TCP stream, so Unreliable traffic (Ping/Pong) rides the same
// path as Reliable traffic.
func (t *Transport) Send(peer transport.PeerID, data []byte, _ transport.Reliability) error {
	t.mu.Lock()
	conn, ok := t.conns[peer]
	t.mu.Unlock()
	if !ok {
		return nil
	}
	return conn.WriteMessage(websocket.BinaryMessage, data)
}

// Broadcast writes data to every currently connected peer.
func (t *Transport) Broadcast(data []byte, _ transport.Reliability) error {
	t.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(t.conns))
	for _, conn := range t.conns {
		conns = append(conns, conn)
	}
	t.mu.Unlock()
	var firstErr error
	for _, conn := range conns {
		if err := conn.WriteMessage(websocket.BinaryMessage, data); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Poll drains every frame received since the last call and invokes
// dispatch for each, in arrival order, on the calling goroutine.
func (t *Transport) Poll(dispatch transport.Dispatch) {
	for {
		select {
		case frame := <-t.incoming:
			dispatch(frame.from, frame.data)
		default:
			return
		}
	}
}

var _ transport.Transport = (*Transport)(nil)
