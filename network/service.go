// Package network is a thin broker between the lockstep engine and an
// opaque transport.Transport: room/player lifecycle, wire message framing
// via proto, and routing of decoded messages to the engine's
// OnCommandReceived / OnDesyncDetected callbacks.
package network

import (
	"context"
	"sort"
	"sync"

	"lockstepd/command"
	"lockstepd/internal/transport"
	"lockstepd/logging"
	llog "lockstepd/logging/lockstep"
	"lockstepd/proto"
)

// Player is one seat's public state in the room's player table.
type Player struct {
	PlayerID int32
	Name     string
	Ready    bool
	PingMs   int64
}

// EventHandler receives decoded inbound events. lockstep.Engine satisfies
// this interface structurally; Service never imports the lockstep
// package.
type EventHandler interface {
	OnCommandReceived(ctx context.Context, cmd command.Command) error
	OnDesyncDetected(ctx context.Context, peerID int32, tick int32, localHash, remoteHash uint64)
}

// OnGameStart is invoked once the session's simulation parameters are
// settled: on the host, the instant it broadcasts GameStart; on a joining
// peer, the moment GameStart arrives over the wire. Both sides bootstrap
// their engine from this single callback rather than from locally
// assumed values.
type OnGameStart func(seed, tickIntervalMs, inputDelayTicks int32, playerIDs []int32)

// syncHashKey indexes the desync-detection table by (tick, playerId) as a
// Go struct, never a packed integer, so there is no collision risk at any
// player count.
type syncHashKey struct {
	Tick     int64
	PlayerID int32
}

// Service implements lockstep.Broadcaster (BroadcastCommand,
// BroadcastSyncHash) over a transport.Transport, and feeds decoded
// inbound messages to an EventHandler.
type Service struct {
	mu sync.Mutex

	transport transport.Transport
	decoder   *command.Registry
	handler   EventHandler
	clock     logging.Clock
	publisher logging.Publisher

	localPlayerID int32
	maxPlayers    int
	inRoom        bool
	isHost        bool

	seed            int32
	tickIntervalMs  int32
	inputDelayTicks int32
	onGameStart     OnGameStart

	players map[int32]Player
	peerOf  map[int32]transport.PeerID

	syncHashes map[syncHashKey]int64
	pingSeq    int32
}

// New constructs a Service over transport t, decoding inbound commands
// with registry and routing decoded events to handler. clock times
// outbound pings and inbound pong RTT; a nil clock disables RTT tracking.
// publisher receives observability events (dropped commands); a nil
// publisher disables logging.
func New(t transport.Transport, registry *command.Registry, handler EventHandler, clock logging.Clock, publisher logging.Publisher) *Service {
	return &Service{
		transport:  t,
		decoder:    registry,
		handler:    handler,
		clock:      clock,
		publisher:  publisher,
		players:    make(map[int32]Player),
		peerOf:     make(map[int32]transport.PeerID),
		syncHashes: make(map[syncHashKey]int64),
	}
}

// SetOnGameStart installs the callback invoked once GameStart fires,
// whether because this peer is the host deciding to start or because a
// GameStart message arrived from the host. Mirrors the SetRecorder /
// SetNetwork post-construction wiring pattern used elsewhere in this
// module.
func (s *Service) SetOnGameStart(cb OnGameStart) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onGameStart = cb
}

// SetGameParams fixes the seed/tickIntervalMs/inputDelayTicks the host
// will announce in GameStart once every seat is ready. Host-only; a
// joining peer instead receives these values via OnGameStart.
func (s *Service) SetGameParams(seed, tickIntervalMs, inputDelayTicks int32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seed = seed
	s.tickIntervalMs = tickIntervalMs
	s.inputDelayTicks = inputDelayTicks
}

// CreateRoom establishes the local peer as host: localPlayerId = 0, self
// added to the player table.
func (s *Service) CreateRoom(name string, maxPlayers int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.localPlayerID = 0
	s.maxPlayers = maxPlayers
	s.inRoom = true
	s.isHost = true
	s.players[0] = Player{PlayerID: 0, Name: name}
}

// JoinRoom establishes the local peer as a joining participant, claiming
// playerID (assigned by the host out of band, e.g. via the signaling
// channel that preceded the transport connection).
func (s *Service) JoinRoom(playerID int32, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.maxPlayers > 0 && len(s.players) >= s.maxPlayers {
		return ErrRoomFull
	}
	s.localPlayerID = playerID
	s.inRoom = true
	s.isHost = false
	s.players[playerID] = Player{PlayerID: playerID, Name: name}
	s.transport.Broadcast(proto.JoinRoom{}.Encode(), transport.Reliable)
	return nil
}

// LeaveRoom announces departure and clears local room state.
func (s *Service) LeaveRoom() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.inRoom {
		return ErrNotInRoom
	}
	s.transport.Broadcast(proto.LeaveRoom{}.Encode(), transport.Reliable)
	s.inRoom = false
	s.players = make(map[int32]Player)
	return nil
}

// Players returns a snapshot of the current player table.
func (s *Service) Players() []Player {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Player, 0, len(s.players))
	for _, p := range s.players {
		out = append(out, p)
	}
	return out
}

// SendReady broadcasts the local player's ready state, updates the local
// player table the same way an inbound PlayerReady would, and (host only)
// starts the game once every seat has reported ready.
func (s *Service) SendReady(ready bool) error {
	s.mu.Lock()
	localID := s.localPlayerID
	p := s.players[localID]
	p.PlayerID = localID
	p.Ready = ready
	s.players[localID] = p
	s.mu.Unlock()

	msg := proto.PlayerReady{PlayerID: localID, Ready: ready}
	if err := s.transport.Broadcast(msg.Encode(), transport.Reliable); err != nil {
		return err
	}
	return s.maybeStartGame()
}

// SendGameStart broadcasts the simulation parameters a host has settled
// on once every seat is ready.
func (s *Service) SendGameStart(seed, tickIntervalMs, inputDelayTicks int32, playerIDs []int32) error {
	msg := proto.GameStart{Seed: seed, TickIntervalMs: tickIntervalMs, InputDelayTicks: inputDelayTicks, PlayerIDs: playerIDs}
	return s.transport.Broadcast(msg.Encode(), transport.Reliable)
}

// allReadyLocked reports whether the room is full and every seated player
// has reported ready. Callers must hold s.mu.
func (s *Service) allReadyLocked() bool {
	if s.maxPlayers <= 0 || len(s.players) < s.maxPlayers {
		return false
	}
	for _, p := range s.players {
		if !p.Ready {
			return false
		}
	}
	return true
}

// maybeStartGame implements §4.7's "On PlayerReady: ...; if host and all
// ready, send GameStart with seed/interval/delay/playerIds." It assembles
// playerIds in ascending order (the per-tick command ordering the engine
// relies on), broadcasts GameStart to every peer, and invokes the host's
// own onGameStart callback directly since a broadcast never loops back to
// its sender.
func (s *Service) maybeStartGame() error {
	s.mu.Lock()
	if !s.isHost || !s.allReadyLocked() {
		s.mu.Unlock()
		return nil
	}
	ids := make([]int32, 0, len(s.players))
	for id := range s.players {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	seed, interval, delay := s.seed, s.tickIntervalMs, s.inputDelayTicks
	cb := s.onGameStart
	s.mu.Unlock()

	if err := s.SendGameStart(seed, interval, delay, ids); err != nil {
		return err
	}
	if cb != nil {
		cb(seed, interval, delay, ids)
	}
	return nil
}

// BroadcastCommand reliably broadcasts a fully serialized command,
// satisfying lockstep.Broadcaster.
func (s *Service) BroadcastCommand(cmd command.Command) error {
	msg := proto.CommandMsg{Tick: cmd.Tick, PlayerID: cmd.PlayerID, CmdBytes: cmd.Serialize()}
	return s.transport.Broadcast(msg.Encode(), transport.Reliable)
}

// BroadcastSyncHash records the hash in the desync-detection table under
// (tick, playerID), so later remote hashes for tick are compared against
// it, then reliably broadcasts the checkpoint, satisfying
// lockstep.Broadcaster.
func (s *Service) BroadcastSyncHash(tick int32, hash uint64, playerID int32) error {
	s.mu.Lock()
	s.syncHashes[syncHashKey{Tick: int64(tick), PlayerID: playerID}] = int64(hash)
	s.mu.Unlock()
	msg := proto.SyncHash{Tick: tick, Hash: int64(hash), PlayerID: playerID}
	return s.transport.Broadcast(msg.Encode(), transport.Reliable)
}

// SendPing probes RTT to peer, unreliable, fire-and-forget.
func (s *Service) SendPing(peer transport.PeerID) error {
	s.mu.Lock()
	s.pingSeq++
	seq := s.pingSeq
	s.mu.Unlock()
	msg := proto.Ping{Ts: s.nowMs(), Seq: seq}
	return s.transport.Send(peer, msg.Encode(), transport.Unreliable)
}

func (s *Service) nowMs() int64 {
	if s.clock == nil {
		return 0
	}
	return s.clock.Now().UnixMilli()
}

// ClearOldData prunes sync-hash records older than tick. The input
// buffer itself is pruned by the engine (inputBuffer.clearBefore); this
// only clears the desync-detection table network owns.
func (s *Service) ClearOldData(tick int32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.syncHashes {
		if key.Tick < int64(tick) {
			delete(s.syncHashes, key)
		}
	}
}

// Poll drains the transport's inbound queue and dispatches each message
// by its type tag, mutating the player table, routing Command/SyncHash
// messages into the EventHandler, and replying to Ping with Pong.
func (s *Service) Poll(ctx context.Context) {
	s.transport.Poll(func(peer transport.PeerID, data []byte) {
		s.dispatch(ctx, peer, data)
	})
}

func (s *Service) dispatch(ctx context.Context, peer transport.PeerID, data []byte) {
	msg, err := proto.Decode(data)
	if err != nil {
		return
	}
	switch m := msg.(type) {
	case proto.PlayerReady:
		s.handlePlayerReady(peer, m)
	case proto.GameStart:
		s.handleGameStart(m)
	case proto.CommandMsg:
		s.handleCommand(ctx, m)
	case proto.SyncHash:
		s.handleSyncHash(ctx, peer, m)
	case proto.Ping:
		s.handlePing(peer, m)
	case proto.Pong:
		s.handlePong(peer, m)
	}
}

func (s *Service) handlePlayerReady(peer transport.PeerID, m proto.PlayerReady) {
	s.mu.Lock()
	p := s.players[m.PlayerID]
	p.PlayerID = m.PlayerID
	p.Ready = m.Ready
	s.players[m.PlayerID] = p
	s.peerOf[m.PlayerID] = peer
	s.mu.Unlock()

	s.maybeStartGame()
}

func (s *Service) handleGameStart(m proto.GameStart) {
	s.mu.Lock()
	cb := s.onGameStart
	s.mu.Unlock()
	if cb != nil {
		cb(m.Seed, m.TickIntervalMs, m.InputDelayTicks, m.PlayerIDs)
	}
}

func (s *Service) handleCommand(ctx context.Context, m proto.CommandMsg) {
	cmd, err := s.decoder.Deserialize(m.CmdBytes)
	if err != nil {
		llog.CommandRejected(ctx, s.publisher, uint64(m.Tick), llog.CommandRejectedPayload{PlayerID: m.PlayerID, Reason: err.Error()})
		return
	}
	if s.handler != nil {
		s.handler.OnCommandReceived(ctx, cmd)
	}
}

func (s *Service) handleSyncHash(ctx context.Context, peer transport.PeerID, m proto.SyncHash) {
	s.mu.Lock()
	key := syncHashKey{Tick: int64(m.Tick), PlayerID: m.PlayerID}
	s.syncHashes[key] = m.Hash

	localKey := syncHashKey{Tick: int64(m.Tick), PlayerID: s.localPlayerID}
	localHash, haveLocal := s.syncHashes[localKey]
	s.mu.Unlock()

	if haveLocal && m.PlayerID != s.localPlayerID && localHash != m.Hash {
		if s.handler != nil {
			s.handler.OnDesyncDetected(ctx, m.PlayerID, m.Tick, uint64(localHash), uint64(m.Hash))
		}
	}
}

func (s *Service) handlePing(peer transport.PeerID, m proto.Ping) {
	s.transport.Send(peer, proto.Pong{Ts: m.Ts, Seq: m.Seq}.Encode(), transport.Unreliable)
}

func (s *Service) handlePong(peer transport.PeerID, m proto.Pong) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rtt := s.nowMs() - m.Ts
	for id, p := range s.peerOf {
		if p == peer {
			player := s.players[id]
			player.PingMs = rtt
			s.players[id] = player
		}
	}
}
