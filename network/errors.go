package network

import "errors"

// ErrRoomFull is returned by joinRoom when the host's maxPlayers has
// already been reached.
var ErrRoomFull = errors.New("network: room is full")

// ErrNotInRoom is returned by LeaveRoom when no room has been created or
// joined yet. BroadcastCommand and BroadcastSyncHash do not check room
// membership.
var ErrNotInRoom = errors.New("network: not currently in a room")

// ErrUnknownPlayer identifies a playerId not present in the player table.
// No Service method returns it.
var ErrUnknownPlayer = errors.New("network: unknown player id")
