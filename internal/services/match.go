package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/roomloop/roomloop/internal/logging"
	"github.com/roomloop/roomloop/internal/models"
)

var (
	ErrCannotSwipeSelf = errors.New("cannot swipe on yourself")
)

// MatchService records directional swipes and derives mutual matches from
// them. There is no stored "match" row: the mutual predicate is computed
// from the two directional rows on every read, so it cannot drift.
type MatchService struct {
	db   DB
	chat ChatService
}

func NewMatchService(db DB, chat ChatService) *MatchService {
	return &MatchService{db: db, chat: chat}
}

// RecordSwipe upserts the (userID, targetID) row; the latest swipe always
// wins. On a liked swipe it checks the reverse row and, if both like each
// other, asks the chat collaborator for the pair's conversation. Two users
// swiping each other at the same instant may both observe the new mutual
// match and both call the collaborator; GetOrCreate is idempotent on the
// canonical pair, so the duplicate trigger is harmless.
func (s *MatchService) RecordSwipe(ctx context.Context, userID, targetID uuid.UUID, liked bool) (*models.SwipeResult, error) {
	if userID == targetID {
		return nil, ErrCannotSwipeSelf
	}

	result := &models.SwipeResult{}
	err := s.db.QueryRow(ctx,
		`INSERT INTO swipes (user_id, target_id, liked)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_id, target_id)
		 DO UPDATE SET liked = EXCLUDED.liked, updated_at = NOW()
		 RETURNING id, user_id, target_id, liked, created_at, updated_at`,
		userID, targetID, liked,
	).Scan(&result.Swipe.ID, &result.Swipe.UserID, &result.Swipe.TargetID, &result.Swipe.Liked, &result.Swipe.CreatedAt, &result.Swipe.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("recording swipe: %w", err)
	}

	if !liked {
		return result, nil
	}

	var reciprocal bool
	err = s.db.QueryRow(ctx,
		`SELECT EXISTS(
			SELECT 1 FROM swipes
			WHERE user_id = $1 AND target_id = $2 AND liked = true
		)`,
		targetID, userID,
	).Scan(&reciprocal)
	if err != nil {
		return nil, fmt.Errorf("checking reciprocal swipe: %w", err)
	}
	if !reciprocal {
		return result, nil
	}

	result.Mutual = true

	// Conversation creation is best-effort: a failure here never fails the
	// swipe, and the conversation is retried on the next swipe or read.
	chatID, err := s.chat.GetOrCreate(ctx, userID, targetID)
	if err != nil {
		logging.Error("Failed to create conversation for match", map[string]interface{}{
			"error":  err.Error(),
			"user":   userID.String(),
			"target": targetID.String(),
		})
		return result, nil
	}
	result.ChatID = &chatID

	return result, nil
}

// RemoveSwipe deletes only the caller's directional row. The reverse row is
// preserved on purpose: if the target still likes the caller, a later
// re-like restores the mutual match without the target acting again.
// Removing an absent swipe is a no-op success.
func (s *MatchService) RemoveSwipe(ctx context.Context, userID, targetID uuid.UUID) error {
	_, err := s.db.Exec(ctx,
		"DELETE FROM swipes WHERE user_id = $1 AND target_id = $2",
		userID, targetID,
	)
	if err != nil {
		return fmt.Errorf("removing swipe: %w", err)
	}
	return nil
}

// ListMutualMatches returns every user with whom both directional liked
// rows exist, plus the pair's conversation when one has been created.
func (s *MatchService) ListMutualMatches(ctx context.Context, userID uuid.UUID) ([]models.MutualMatch, error) {
	rows, err := s.db.Query(ctx,
		`SELECT s1.target_id, c.id, GREATEST(s1.updated_at, s2.updated_at)
		 FROM swipes s1
		 JOIN swipes s2 ON s2.user_id = s1.target_id AND s2.target_id = s1.user_id
		 LEFT JOIN conversations c
		   ON c.user_a = LEAST(s1.user_id, s1.target_id)
		  AND c.user_b = GREATEST(s1.user_id, s1.target_id)
		 WHERE s1.user_id = $1 AND s1.liked = true AND s2.liked = true
		 ORDER BY GREATEST(s1.updated_at, s2.updated_at) DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing mutual matches: %w", err)
	}
	defer rows.Close()

	var matches []models.MutualMatch
	for rows.Next() {
		var m models.MutualMatch
		if err := rows.Scan(&m.UserID, &m.ChatID, &m.MatchedAt); err != nil {
			return nil, fmt.Errorf("scanning mutual match: %w", err)
		}
		matches = append(matches, m)
	}

	if matches == nil {
		matches = []models.MutualMatch{}
	}
	return matches, nil
}
