package models

import "time"

// ConnectionStatus is the lifecycle state of a ChatConnection.
type ConnectionStatus string

const (
	ConnectionInitial  ConnectionStatus = "INITIAL"
	ConnectionPending  ConnectionStatus = "PENDING"
	ConnectionAccepted ConnectionStatus = "ACCEPTED"
)

// Valid reports whether s is a known status.
func (s ConnectionStatus) Valid() bool {
	switch s {
	case ConnectionInitial, ConnectionPending, ConnectionAccepted:
		return true
	}
	return false
}

// ChatConnection is an undirected friendship edge between two users.
type ChatConnection struct {
	ID                string           `json:"id"`
	User1ID           string           `json:"user1_id"`
	User2ID           string           `json:"user2_id"`
	InitiatorID       string           `json:"initiator_id"`
	Status            ConnectionStatus `json:"status"`
	CreatedAt         time.Time        `json:"created_at"`
	LastInteractionAt time.Time        `json:"last_interaction_at"`
}

// Involves reports whether userID is one of the two endpoints.
func (c ChatConnection) Involves(userID string) bool {
	return c.User1ID == userID || c.User2ID == userID
}

// OtherUser returns the endpoint that is not userID.
func (c ChatConnection) OtherUser(userID string) string {
	if c.User1ID == userID {
		return c.User2ID
	}
	return c.User1ID
}

// Active reports whether messages may flow over the connection.
func (c ChatConnection) Active() bool {
	return c.Status == ConnectionAccepted
}

// OrderedPair returns a and b in a stable order so that {a,b} and {b,a}
// address the same connection.
func OrderedPair(a, b string) (string, string) {
	if b < a {
		return b, a
	}
	return a, b
}
