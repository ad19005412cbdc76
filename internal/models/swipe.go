package models

import (
	"time"

	"github.com/google/uuid"
)

// Swipe is one directional like/pass record. There is at most one row per
// (UserID, TargetID); a newer swipe on the same target overwrites Liked.
type Swipe struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	TargetID  uuid.UUID `json:"target_id"`
	Liked     bool      `json:"liked"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MutualMatch is the derived condition that both directional liked rows
// exist. It is never stored.
type MutualMatch struct {
	UserID    uuid.UUID  `json:"user_id"`
	ChatID    *uuid.UUID `json:"chat_id,omitempty"`
	MatchedAt time.Time  `json:"matched_at"`
}

type SwipeResult struct {
	Swipe  Swipe      `json:"swipe"`
	Mutual bool       `json:"mutual"`
	ChatID *uuid.UUID `json:"chat_id,omitempty"`
}
