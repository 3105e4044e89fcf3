package hub

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPresenceJoinStartsCursorAtOrigin(t *testing.T) {
	p := NewPresence()

	p.Join("ROOM", "conn-1", "User-abcd", "#112233")

	snapshot := p.Snapshot("ROOM")
	assert.Len(t, snapshot, 1)
	assert.Equal(t, 0.0, snapshot["conn-1"].X)
	assert.Equal(t, 0.0, snapshot["conn-1"].Y)
	assert.Equal(t, "User-abcd", snapshot["conn-1"].Name)
	assert.Equal(t, "#112233", snapshot["conn-1"].Color)
}

func TestPresenceMoveCursor(t *testing.T) {
	p := NewPresence()
	p.Join("ROOM", "conn-1", "User-abcd", "#000000")

	assert.True(t, p.MoveCursor("ROOM", "conn-1", 10, 20))
	snapshot := p.Snapshot("ROOM")
	assert.Equal(t, 10.0, snapshot["conn-1"].X)
	assert.Equal(t, 20.0, snapshot["conn-1"].Y)

	// Moves for departed or unknown connections are ignored.
	assert.False(t, p.MoveCursor("ROOM", "conn-2", 1, 1))
	assert.False(t, p.MoveCursor("OTHER", "conn-1", 1, 1))
}

func TestPresenceRemovePrunesEmptyRoom(t *testing.T) {
	p := NewPresence()
	p.Join("ROOM", "conn-1", "a", "#000000")
	p.Join("ROOM", "conn-2", "b", "#000000")

	p.Remove("ROOM", "conn-1")
	assert.True(t, p.HasRoom("ROOM"))
	assert.Equal(t, 1, p.Count("ROOM"))

	p.Remove("ROOM", "conn-2")
	assert.False(t, p.HasRoom("ROOM"))
	assert.Equal(t, 0, p.Count("ROOM"))

	// Removing from a pruned room is a no-op.
	p.Remove("ROOM", "conn-2")
	assert.False(t, p.HasRoom("ROOM"))
}

func TestPresenceSnapshotIsACopy(t *testing.T) {
	p := NewPresence()
	p.Join("ROOM", "conn-1", "a", "#000000")

	snapshot := p.Snapshot("ROOM")
	entry := snapshot["conn-1"]
	entry.X = 99
	snapshot["conn-1"] = entry

	assert.Equal(t, 0.0, p.Snapshot("ROOM")["conn-1"].X)
}

func TestPresenceSnapshotUnknownRoomIsEmpty(t *testing.T) {
	p := NewPresence()
	snapshot := p.Snapshot("NOPE")
	assert.NotNil(t, snapshot)
	assert.Empty(t, snapshot)
}
