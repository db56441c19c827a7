package domain

import "github.com/google/uuid"

// NewID returns a new UUIDv7 string. UUIDv7 is time-ordered, which keeps
// primary key indexes append-mostly.
func NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}
