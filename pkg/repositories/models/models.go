package models

import (
	"time"

	"github.com/google/uuid"
)

// Replay describes a stored replay without its frames.
type Replay struct {
	ID        uuid.UUID `json:"id"`
	Strategy  string    `json:"strategy"`
	Message   string    `json:"message"`
	Frames    int       `json:"frames"`
	CreatedAt time.Time `json:"created_at"`
}
