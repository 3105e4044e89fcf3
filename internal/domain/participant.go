package domain

// Participant is a connection's ephemeral presence record inside a room:
// last reported cursor position, display name and color hint. It lives only
// in the in-memory presence table, keyed by connection ID, and dies with the
// connection.
type Participant struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Color string  `json:"color"`
	Name  string  `json:"name"`
}
