// Package transport defines the opaque delivery capability the network
// service is built over, so that the lockstep core never depends on a
// specific wire technology.
package transport

// Reliability selects the delivery guarantee a message is sent with.
// Command and control-plane messages use Reliable; Ping/Pong use
// Unreliable.
type Reliability int

const (
	// Reliable delivers every message exactly once, in send order.
	Reliable Reliability = iota
	// Unreliable may drop or reorder messages; used for latency probes.
	Unreliable
)

// PeerID identifies a connected remote endpoint. Its representation is a
// transport-layer detail; callers treat it as an opaque token.
type PeerID string

// Dispatch receives one inbound message per call, along with the peer it
// arrived from.
type Dispatch func(peer PeerID, data []byte)

// Transport is the capability the network service is brokered over:
// send to one peer, broadcast to all, and poll for inbound messages.
// Implementations marshal any background I/O into Poll so that the
// network service's callbacks always run on the caller's goroutine.
type Transport interface {
	Send(peer PeerID, data []byte, reliability Reliability) error
	Broadcast(data []byte, reliability Reliability) error
	Poll(dispatch Dispatch)
}
