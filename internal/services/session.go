package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"

	"github.com/roomloop/roomloop/internal/models"
)

var ErrSessionInvalid = errors.New("session is invalid or expired")

// SessionService resolves session tokens issued by the identity service.
// Sessions live in Redis under the SHA-256 hash of the token, holding the
// user id; the user record itself comes from Postgres.
type SessionService struct {
	redis *redis.Client
	db    DB
}

func NewSessionService(redisClient *redis.Client, db DB) *SessionService {
	return &SessionService{redis: redisClient, db: db}
}

func sessionKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "session:" + hex.EncodeToString(sum[:])
}

func (s *SessionService) ValidateSession(ctx context.Context, token string) (*models.User, error) {
	raw, err := s.redis.Get(ctx, sessionKey(token)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionInvalid
	}
	if err != nil {
		return nil, fmt.Errorf("looking up session: %w", err)
	}

	userID, err := uuid.Parse(raw)
	if err != nil {
		return nil, ErrSessionInvalid
	}

	user := &models.User{}
	err = s.db.QueryRow(ctx,
		"SELECT id, display_name, email, created_at FROM users WHERE id = $1",
		userID,
	).Scan(&user.ID, &user.DisplayName, &user.Email, &user.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSessionInvalid
	}
	if err != nil {
		return nil, fmt.Errorf("loading session user: %w", err)
	}

	return user, nil
}
