package transport

import "sync"

// Mock is an in-memory Transport connecting any number of peers within the
// same process, used by network service tests and single-process demos.
// Messages sent through one Mock are queued for delivery to every other
// peer on the same Bus until Poll is called on that peer's Mock.
type Mock struct {
	bus  *Bus
	self PeerID

	mu     sync.Mutex
	inbox  []inboundMessage
}

type inboundMessage struct {
	from PeerID
	data []byte
}

// Bus is the shared medium a set of Mock transports register against. It
// has no buffering limits; it exists purely to route test traffic.
type Bus struct {
	mu    sync.Mutex
	peers map[PeerID]*Mock
}

// NewBus returns an empty Bus.
func NewBus() *Bus {
	return &Bus{peers: make(map[PeerID]*Mock)}
}

// Join registers a new Mock transport for peer id on the bus.
func (b *Bus) Join(peer PeerID) *Mock {
	m := &Mock{bus: b, self: peer}
	b.mu.Lock()
	b.peers[peer] = m
	b.mu.Unlock()
	return m
}

func (b *Bus) deliver(to, from PeerID, data []byte) {
	b.mu.Lock()
	target, ok := b.peers[to]
	b.mu.Unlock()
	if !ok {
		return
	}
	target.mu.Lock()
	target.inbox = append(target.inbox, inboundMessage{from: from, data: append([]byte(nil), data...)})
	target.mu.Unlock()
}

func (b *Bus) broadcastFrom(from PeerID, data []byte) {
	b.mu.Lock()
	targets := make([]PeerID, 0, len(b.peers))
	for id := range b.peers {
		if id != from {
			targets = append(targets, id)
		}
	}
	b.mu.Unlock()
	for _, id := range targets {
		b.deliver(id, from, data)
	}
}

// Send delivers data to a single named peer. Reliability is ignored; the
// mock bus never drops or reorders messages.
func (m *Mock) Send(peer PeerID, data []byte, _ Reliability) error {
	m.bus.deliver(peer, m.self, data)
	return nil
}

// Broadcast delivers data to every other peer on the bus.
func (m *Mock) Broadcast(data []byte, _ Reliability) error {
	m.bus.broadcastFrom(m.self, data)
	return nil
}

// Poll drains queued inbound messages, invoking dispatch once per message
// in arrival order.
func (m *Mock) Poll(dispatch Dispatch) {
	m.mu.Lock()
	pending := m.inbox
	m.inbox = nil
	m.mu.Unlock()
	for _, msg := range pending {
		dispatch(msg.from, msg.data)
	}
}

var _ Transport = (*Mock)(nil)
