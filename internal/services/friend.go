package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/roomloop/roomloop/internal/models"
)

var (
	ErrCannotFriendSelf   = errors.New("cannot send a friend request to yourself")
	ErrRequestExists      = errors.New("a pending friend request already exists for this pair")
	ErrFriendshipExists   = errors.New("friendship already exists")
	ErrRequestNotFound    = errors.New("friend request not found")
	ErrRequestNotPending  = errors.New("friend request is not pending")
	ErrNotRequestReceiver = errors.New("only the receiver can accept or decline")
	ErrFriendshipNotFound = errors.New("friendship not found")
	ErrNotFriendshipParty = errors.New("you are not part of this friendship")
)

// canonicalPair orders two ids by byte comparison so an unordered pair maps
// to exactly one (user_a, user_b) key. Postgres compares UUID columns the
// same way, so the CHECK (user_a < user_b) constraint agrees with this.
func canonicalPair(a, b uuid.UUID) (uuid.UUID, uuid.UUID) {
	if bytes.Compare(a[:], b[:]) < 0 {
		return a, b
	}
	return b, a
}

type FriendService struct {
	db DB
}

func NewFriendService(db DB) *FriendService {
	return &FriendService{db: db}
}

func (s *FriendService) SendRequest(ctx context.Context, senderID, receiverID uuid.UUID) (*models.FriendRequest, error) {
	if senderID == receiverID {
		return nil, ErrCannotFriendSelf
	}

	userA, userB := canonicalPair(senderID, receiverID)
	var friends bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS(
			SELECT 1 FROM friendships WHERE user_a = $1 AND user_b = $2
		)`,
		userA, userB,
	).Scan(&friends)
	if err != nil {
		return nil, fmt.Errorf("checking friendship existence: %w", err)
	}
	if friends {
		return nil, ErrFriendshipExists
	}

	// A pending request in either direction blocks a new one.
	var pending bool
	err = s.db.QueryRow(ctx,
		`SELECT EXISTS(
			SELECT 1 FROM friend_requests
			WHERE ((sender_id = $1 AND receiver_id = $2)
			    OR (sender_id = $2 AND receiver_id = $1))
			  AND status = 'pending'
		)`,
		senderID, receiverID,
	).Scan(&pending)
	if err != nil {
		return nil, fmt.Errorf("checking pending request: %w", err)
	}
	if pending {
		return nil, ErrRequestExists
	}

	request := &models.FriendRequest{}
	err = s.db.QueryRow(ctx,
		`INSERT INTO friend_requests (sender_id, receiver_id, status)
		 VALUES ($1, $2, 'pending')
		 RETURNING id, sender_id, receiver_id, status, created_at, updated_at`,
		senderID, receiverID,
	).Scan(&request.ID, &request.SenderID, &request.ReceiverID, &request.Status, &request.CreatedAt, &request.UpdatedAt)
	if isUniqueViolation(err) {
		// Lost a race against an identical concurrent send.
		return nil, ErrRequestExists
	}
	if err != nil {
		return nil, fmt.Errorf("creating friend request: %w", err)
	}

	return request, nil
}

// AcceptRequest resolves a pending request into a friendship. The friendship
// insert is insert-or-ignore on the canonical pair key, so a replayed accept
// or two concurrent accepts both succeed and leave exactly one row.
// Accepting an already-accepted request is an idempotent success; accepting
// a declined one fails with ErrRequestNotPending.
func (s *FriendService) AcceptRequest(ctx context.Context, actingUserID, requestID uuid.UUID) (*models.Friendship, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin accept transaction: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback(ctx)
		}
	}()

	request := &models.FriendRequest{}
	err = tx.QueryRow(ctx,
		`SELECT id, sender_id, receiver_id, status, created_at, updated_at
		 FROM friend_requests WHERE id = $1`,
		requestID,
	).Scan(&request.ID, &request.SenderID, &request.ReceiverID, &request.Status, &request.CreatedAt, &request.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrRequestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading friend request: %w", err)
	}

	if request.ReceiverID != actingUserID {
		return nil, ErrNotRequestReceiver
	}
	if request.Status == models.FriendRequestStatusDeclined {
		return nil, ErrRequestNotPending
	}

	_, err = tx.Exec(ctx,
		`UPDATE friend_requests SET status = 'accepted', updated_at = NOW()
		 WHERE id = $1 AND status <> 'declined'`,
		requestID,
	)
	if err != nil {
		return nil, fmt.Errorf("accepting friend request: %w", err)
	}

	userA, userB := canonicalPair(request.SenderID, request.ReceiverID)
	_, err = tx.Exec(ctx,
		`INSERT INTO friendships (user_a, user_b) VALUES ($1, $2)
		 ON CONFLICT (user_a, user_b) DO NOTHING`,
		userA, userB,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting friendship: %w", err)
	}

	friendship := &models.Friendship{}
	err = tx.QueryRow(ctx,
		`SELECT id, user_a, user_b, created_at
		 FROM friendships WHERE user_a = $1 AND user_b = $2`,
		userA, userB,
	).Scan(&friendship.ID, &friendship.UserA, &friendship.UserB, &friendship.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("loading friendship: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit accept: %w", err)
	}
	committed = true

	return friendship, nil
}

// DeclineRequest is idempotent: declining a request that is no longer
// pending is a no-op success, so client retries do not surface errors.
func (s *FriendService) DeclineRequest(ctx context.Context, actingUserID, requestID uuid.UUID) error {
	request, err := s.getRequest(ctx, requestID)
	if err != nil {
		return err
	}
	if request.ReceiverID != actingUserID {
		return ErrNotRequestReceiver
	}
	if request.Status != models.FriendRequestStatusPending {
		return nil
	}

	_, err = s.db.Exec(ctx,
		`UPDATE friend_requests SET status = 'declined', updated_at = NOW()
		 WHERE id = $1 AND status = 'pending'`,
		requestID,
	)
	if err != nil {
		return fmt.Errorf("declining friend request: %w", err)
	}
	return nil
}

// RemoveFriendship deletes the pair row. Removal does not resurrect the
// original request; a fresh sendRequest is needed to reconnect.
func (s *FriendService) RemoveFriendship(ctx context.Context, actingUserID, friendshipID uuid.UUID) error {
	friendship := &models.Friendship{}
	err := s.db.QueryRow(ctx,
		`SELECT id, user_a, user_b, created_at FROM friendships WHERE id = $1`,
		friendshipID,
	).Scan(&friendship.ID, &friendship.UserA, &friendship.UserB, &friendship.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrFriendshipNotFound
	}
	if err != nil {
		return fmt.Errorf("loading friendship: %w", err)
	}

	if friendship.UserA != actingUserID && friendship.UserB != actingUserID {
		return ErrNotFriendshipParty
	}

	_, err = s.db.Exec(ctx, "DELETE FROM friendships WHERE id = $1", friendshipID)
	if err != nil {
		return fmt.Errorf("removing friendship: %w", err)
	}
	return nil
}

func (s *FriendService) ListFriends(ctx context.Context, userID uuid.UUID) ([]models.FriendWithUser, error) {
	rows, err := s.db.Query(ctx,
		`SELECT f.id, f.user_a, f.user_b, f.created_at,
		        CASE WHEN f.user_a = $1 THEN f.user_b ELSE f.user_a END,
		        CASE WHEN f.user_a = $1 THEN ub.display_name ELSE ua.display_name END
		 FROM friendships f
		 JOIN users ua ON f.user_a = ua.id
		 JOIN users ub ON f.user_b = ub.id
		 WHERE f.user_a = $1 OR f.user_b = $1
		 ORDER BY CASE WHEN f.user_a = $1 THEN ub.display_name ELSE ua.display_name END`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing friends: %w", err)
	}
	defer rows.Close()

	var friends []models.FriendWithUser
	for rows.Next() {
		var f models.FriendWithUser
		if err := rows.Scan(&f.ID, &f.UserA, &f.UserB, &f.CreatedAt, &f.FriendID, &f.FriendName); err != nil {
			return nil, fmt.Errorf("scanning friend: %w", err)
		}
		friends = append(friends, f)
	}

	if friends == nil {
		friends = []models.FriendWithUser{}
	}
	return friends, nil
}

func (s *FriendService) ListIncomingRequests(ctx context.Context, userID uuid.UUID) ([]models.FriendRequestWithUser, error) {
	return s.listRequests(ctx,
		`SELECT r.id, r.sender_id, r.receiver_id, r.status, r.created_at, r.updated_at, u.display_name
		 FROM friend_requests r
		 JOIN users u ON r.sender_id = u.id
		 WHERE r.receiver_id = $1 AND r.status = 'pending'
		 ORDER BY r.created_at DESC`,
		userID, true)
}

func (s *FriendService) ListSentRequests(ctx context.Context, userID uuid.UUID) ([]models.FriendRequestWithUser, error) {
	return s.listRequests(ctx,
		`SELECT r.id, r.sender_id, r.receiver_id, r.status, r.created_at, r.updated_at, u.display_name
		 FROM friend_requests r
		 JOIN users u ON r.receiver_id = u.id
		 WHERE r.sender_id = $1 AND r.status = 'pending'
		 ORDER BY r.created_at DESC`,
		userID, false)
}

func (s *FriendService) AreFriends(ctx context.Context, userID, otherUserID uuid.UUID) (bool, error) {
	userA, userB := canonicalPair(userID, otherUserID)
	var friends bool
	err := s.db.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM friendships WHERE user_a = $1 AND user_b = $2)",
		userA, userB,
	).Scan(&friends)
	if err != nil {
		return false, fmt.Errorf("checking friendship: %w", err)
	}
	return friends, nil
}

func (s *FriendService) listRequests(ctx context.Context, query string, userID uuid.UUID, incoming bool) ([]models.FriendRequestWithUser, error) {
	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("listing friend requests: %w", err)
	}
	defer rows.Close()

	var requests []models.FriendRequestWithUser
	for rows.Next() {
		var r models.FriendRequestWithUser
		var name string
		if err := rows.Scan(&r.ID, &r.SenderID, &r.ReceiverID, &r.Status, &r.CreatedAt, &r.UpdatedAt, &name); err != nil {
			return nil, fmt.Errorf("scanning friend request: %w", err)
		}
		if incoming {
			r.SenderName = name
		} else {
			r.ReceiverName = name
		}
		requests = append(requests, r)
	}

	if requests == nil {
		requests = []models.FriendRequestWithUser{}
	}
	return requests, nil
}

func (s *FriendService) getRequest(ctx context.Context, requestID uuid.UUID) (*models.FriendRequest, error) {
	request := &models.FriendRequest{}
	err := s.db.QueryRow(ctx,
		`SELECT id, sender_id, receiver_id, status, created_at, updated_at
		 FROM friend_requests WHERE id = $1`,
		requestID,
	).Scan(&request.ID, &request.SenderID, &request.ReceiverID, &request.Status, &request.CreatedAt, &request.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrRequestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading friend request: %w", err)
	}
	return request, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
