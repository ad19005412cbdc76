package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// PairChatService implements ChatService over the conversations table. The
// unique constraint on the canonical pair makes GetOrCreate idempotent:
// concurrent calls for the same pair resolve to one row, and the loser of
// the insert race reads the winner's id.
type PairChatService struct {
	db DB
}

func NewPairChatService(db DB) *PairChatService {
	return &PairChatService{db: db}
}

func (s *PairChatService) GetOrCreate(ctx context.Context, userA, userB uuid.UUID) (uuid.UUID, error) {
	a, b := canonicalPair(userA, userB)

	var id uuid.UUID
	err := s.db.QueryRow(ctx,
		`INSERT INTO conversations (user_a, user_b) VALUES ($1, $2)
		 ON CONFLICT (user_a, user_b) DO NOTHING
		 RETURNING id`,
		a, b,
	).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, fmt.Errorf("creating conversation: %w", err)
	}

	// Conflict: the row already exists, fetch it.
	err = s.db.QueryRow(ctx,
		"SELECT id FROM conversations WHERE user_a = $1 AND user_b = $2",
		a, b,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("loading conversation: %w", err)
	}
	return id, nil
}
