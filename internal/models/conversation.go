package models

import (
	"time"

	"github.com/google/uuid"
)

// Conversation is keyed by the canonical pair so creating one for (x,y) and
// (y,x) resolves to the same row.
type Conversation struct {
	ID        uuid.UUID `json:"id"`
	UserA     uuid.UUID `json:"user_a"`
	UserB     uuid.UUID `json:"user_b"`
	CreatedAt time.Time `json:"created_at"`
}
