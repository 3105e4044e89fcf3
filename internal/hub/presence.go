package hub

import "collaborative-whiteboard/internal/domain"

// Presence is the in-memory table of which connections are currently in
// which room, with each connection's live cursor state. It holds no durable
// data and is rebuilt from scratch on process restart.
//
// Presence is not safe for concurrent use: the Hub mutates it only from the
// synchronous portion of its event loop, which is the invariant that makes
// broadcasts reflect current membership without locks.
type Presence struct {
	rooms map[string]map[string]*domain.Participant
}

// NewPresence creates an empty presence table.
func NewPresence() *Presence {
	return &Presence{rooms: make(map[string]map[string]*domain.Participant)}
}

// Join inserts (or overwrites) the participant entry for a connection in a
// room, with the cursor at the origin.
func (p *Presence) Join(roomCode, connID, name, color string) {
	if p.rooms[roomCode] == nil {
		p.rooms[roomCode] = make(map[string]*domain.Participant)
	}
	p.rooms[roomCode][connID] = &domain.Participant{
		X:     0,
		Y:     0,
		Color: color,
		Name:  name,
	}
}

// MoveCursor updates a connection's cursor position in place. It reports
// whether the connection is actually present in the room; a stale move for a
// departed connection is ignored.
func (p *Presence) MoveCursor(roomCode, connID string, x, y float64) bool {
	participant, ok := p.rooms[roomCode][connID]
	if !ok {
		return false
	}
	participant.X = x
	participant.Y = y
	return true
}

// Remove deletes a connection's participant entry. A room whose last
// participant leaves is dropped from the table entirely; empty rooms are
// never retained.
func (p *Presence) Remove(roomCode, connID string) {
	participants, ok := p.rooms[roomCode]
	if !ok {
		return
	}
	delete(participants, connID)
	if len(participants) == 0 {
		delete(p.rooms, roomCode)
	}
}

// Count returns the number of participants currently in a room.
func (p *Presence) Count(roomCode string) int {
	return len(p.rooms[roomCode])
}

// Snapshot returns a copy of a room's participant map, keyed by connection
// ID. For an unknown (or just-pruned) room it returns an empty map, which is
// exactly what the departure broadcast needs.
func (p *Presence) Snapshot(roomCode string) map[string]domain.Participant {
	snapshot := make(map[string]domain.Participant, len(p.rooms[roomCode]))
	for connID, participant := range p.rooms[roomCode] {
		snapshot[connID] = *participant
	}
	return snapshot
}

// HasRoom reports whether the table currently holds any participants for the
// room.
func (p *Presence) HasRoom(roomCode string) bool {
	_, ok := p.rooms[roomCode]
	return ok
}
