package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/roomloop/roomloop/internal/logging"
	"github.com/roomloop/roomloop/internal/models"
)

var (
	ErrNotGroupMember        = errors.New("only group members can invite")
	ErrInviteRateLimited     = errors.New("invite rate limit reached")
	ErrInviteNotFound        = errors.New("invite not found")
	ErrInviteExpired         = errors.New("invite has expired")
	ErrInviteAlreadyAccepted = errors.New("invite has already been accepted")
	ErrAuthRequired          = errors.New("authentication required")
)

type CreateInviteParams struct {
	GroupID   uuid.UUID
	Channel   models.InviteChannel
	Recipient string
	Message   string
}

// InviteService issues and redeems single-use, expiring group invites.
// Invite status only ever moves pending->accepted or pending->expired;
// expiry is fixed at creation and acceptance is never reversed.
type InviteService struct {
	db         DB
	groups     GroupServiceInterface
	limiter    RateLimiter
	dispatcher NotificationDispatcher
	baseURL    string
	expiry     time.Duration
	async      func(fn func())
	asyncCtx   context.Context
}

func NewInviteService(db DB, groups GroupServiceInterface, limiter RateLimiter, dispatcher NotificationDispatcher, baseURL string, expiryDays int) *InviteService {
	return &InviteService{
		db:         db,
		groups:     groups,
		limiter:    limiter,
		dispatcher: dispatcher,
		baseURL:    strings.TrimRight(baseURL, "/"),
		expiry:     time.Duration(expiryDays) * 24 * time.Hour,
		async: func(fn func()) {
			go fn()
		},
		asyncCtx: context.Background(),
	}
}

// SetAsync overrides how notification dispatch is scheduled, for tests.
func (s *InviteService) SetAsync(fn func(fn func())) {
	s.async = fn
}

// SetAsyncContext sets the base context for dispatch goroutines so they can
// be stopped on shutdown.
func (s *InviteService) SetAsyncContext(ctx context.Context) {
	if ctx == nil {
		s.asyncCtx = context.Background()
		return
	}
	s.asyncCtx = ctx
}

// CreateInvite persists a pending invite and returns it with the shareable
// URL. Notification delivery happens after the write, off the request path;
// a delivery failure is logged and the link stays valid and copyable.
func (s *InviteService) CreateInvite(ctx context.Context, inviterID uuid.UUID, params CreateInviteParams) (*models.Invite, string, error) {
	member, err := s.groups.IsMember(ctx, params.GroupID, inviterID)
	if err != nil {
		return nil, "", err
	}
	if !member {
		return nil, "", ErrNotGroupMember
	}

	allowed, err := s.limiter.Allow(ctx, inviterID.String())
	if err != nil {
		// Fail open: a limiter backend outage should not block invites.
		logging.Warn("Invite rate limiter unavailable", map[string]interface{}{"error": err.Error()})
		allowed = true
	}
	if !allowed {
		return nil, "", ErrInviteRateLimited
	}

	token, tokenHash, err := GenerateInviteToken()
	if err != nil {
		return nil, "", err
	}

	channel := params.Channel
	if channel == "" {
		channel = models.InviteChannelLink
	}
	expiresAt := time.Now().Add(s.expiry)

	invite := &models.Invite{}
	err = s.db.QueryRow(ctx,
		`INSERT INTO invites (token_hash, group_id, inviter_id, recipient, channel, message, expires_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, group_id, inviter_id, recipient, channel, message, status, created_at, expires_at, accepted_by, accepted_at`,
		tokenHash, params.GroupID, inviterID, params.Recipient, channel, params.Message, expiresAt,
	).Scan(&invite.ID, &invite.GroupID, &invite.InviterID, &invite.Recipient, &invite.Channel, &invite.Message,
		&invite.Status, &invite.CreatedAt, &invite.ExpiresAt, &invite.AcceptedBy, &invite.AcceptedAt)
	if err != nil {
		return nil, "", fmt.Errorf("inserting invite: %w", err)
	}

	inviteURL := fmt.Sprintf("%s/invite?t=%s", s.baseURL, token)

	if channel != models.InviteChannelLink && params.Recipient != "" {
		s.dispatchNotification(ctx, invite, inviteURL)
	}

	return invite, inviteURL, nil
}

// ValidateToken resolves a token for the pre-accept screen. An invite past
// its expiry is transitioned to expired here, lazily, on first read.
func (s *InviteService) ValidateToken(ctx context.Context, token string) (*models.InvitePreview, error) {
	tokenHash := HashInviteToken(token)

	var (
		inviteID uuid.UUID
		status   models.InviteStatus
		preview  models.InvitePreview
	)
	err := s.db.QueryRow(ctx,
		`SELECT i.id, i.status, i.expires_at, i.group_id, g.name, i.inviter_id, u.display_name
		 FROM invites i
		 JOIN groups g ON i.group_id = g.id
		 JOIN users u ON i.inviter_id = u.id
		 WHERE i.token_hash = $1`,
		tokenHash,
	).Scan(&inviteID, &status, &preview.ExpiresAt, &preview.GroupID, &preview.GroupName, &preview.InviterID, &preview.InviterName)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrInviteNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading invite: %w", err)
	}

	switch status {
	case models.InviteStatusAccepted:
		return nil, ErrInviteAlreadyAccepted
	case models.InviteStatusExpired:
		return nil, ErrInviteExpired
	}

	if time.Now().After(preview.ExpiresAt) {
		if err := s.expire(ctx, s.db, inviteID); err != nil {
			return nil, err
		}
		return nil, ErrInviteExpired
	}

	return &preview, nil
}

// AcceptInvite admits userID into the invite's group. The membership insert
// is the source of truth and is insert-or-ignore on its primary key, so a
// replayed accept (page reload, double tap, retried call) reports
// AlreadyMember instead of erroring or duplicating the row. Re-acceptance
// by the user who already redeemed the token is an idempotent success;
// anyone else hitting a redeemed token gets ErrInviteAlreadyAccepted.
func (s *InviteService) AcceptInvite(ctx context.Context, userID uuid.UUID, token string) (*models.InviteAcceptResult, error) {
	if userID == uuid.Nil {
		return nil, ErrAuthRequired
	}
	tokenHash := HashInviteToken(token)

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin invite accept: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback(ctx)
		}
	}()

	var (
		inviteID   uuid.UUID
		groupID    uuid.UUID
		status     models.InviteStatus
		expiresAt  time.Time
		acceptedBy *uuid.UUID
	)
	err = tx.QueryRow(ctx,
		`SELECT id, group_id, status, expires_at, accepted_by
		 FROM invites WHERE token_hash = $1
		 FOR UPDATE`,
		tokenHash,
	).Scan(&inviteID, &groupID, &status, &expiresAt, &acceptedBy)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrInviteNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading invite: %w", err)
	}

	switch status {
	case models.InviteStatusExpired:
		return nil, ErrInviteExpired
	case models.InviteStatusAccepted:
		if acceptedBy == nil || *acceptedBy != userID {
			return nil, ErrInviteAlreadyAccepted
		}
		// The same user redeeming the same token again: idempotent.
		result, err := s.acceptResult(ctx, tx, groupID, true)
		if err != nil {
			return nil, err
		}
		if err := tx.Commit(ctx); err != nil {
			return nil, fmt.Errorf("commit invite accept: %w", err)
		}
		committed = true
		return result, nil
	}

	if time.Now().After(expiresAt) {
		if err := s.expire(ctx, tx, inviteID); err != nil {
			return nil, err
		}
		if err := tx.Commit(ctx); err != nil {
			return nil, fmt.Errorf("commit invite expiry: %w", err)
		}
		committed = true
		return nil, ErrInviteExpired
	}

	// Membership first: it is the source of truth for admission.
	tag, err := tx.Exec(ctx,
		`INSERT INTO group_members (group_id, user_id) VALUES ($1, $2)
		 ON CONFLICT (group_id, user_id) DO NOTHING`,
		groupID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting membership: %w", err)
	}
	alreadyMember := tag.RowsAffected() == 0

	_, err = tx.Exec(ctx,
		`UPDATE invites
		 SET status = 'accepted', accepted_by = $1, accepted_at = NOW()
		 WHERE id = $2 AND status = 'pending'`,
		userID, inviteID,
	)
	if err != nil {
		return nil, fmt.Errorf("accepting invite: %w", err)
	}

	result, err := s.acceptResult(ctx, tx, groupID, alreadyMember)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit invite accept: %w", err)
	}
	committed = true

	return result, nil
}

func (s *InviteService) acceptResult(ctx context.Context, conn DBConn, groupID uuid.UUID, alreadyMember bool) (*models.InviteAcceptResult, error) {
	result := &models.InviteAcceptResult{GroupID: groupID, AlreadyMember: alreadyMember}
	err := conn.QueryRow(ctx, "SELECT name FROM groups WHERE id = $1", groupID).Scan(&result.GroupName)
	if err != nil {
		return nil, fmt.Errorf("loading group name: %w", err)
	}
	return result, nil
}

func (s *InviteService) expire(ctx context.Context, conn DBConn, inviteID uuid.UUID) error {
	_, err := conn.Exec(ctx,
		"UPDATE invites SET status = 'expired' WHERE id = $1 AND status = 'pending'",
		inviteID,
	)
	if err != nil {
		return fmt.Errorf("expiring invite: %w", err)
	}
	return nil
}

// dispatchNotification loads display metadata and hands the invite to the
// dispatcher off the request path. Failures are logged, never returned:
// notification is a side effect, not part of the invite's correctness.
func (s *InviteService) dispatchNotification(ctx context.Context, invite *models.Invite, inviteURL string) {
	if s.dispatcher == nil || s.async == nil {
		return
	}

	var groupName, inviterName string
	err := s.db.QueryRow(ctx,
		`SELECT g.name, u.display_name
		 FROM groups g, users u
		 WHERE g.id = $1 AND u.id = $2`,
		invite.GroupID, invite.InviterID,
	).Scan(&groupName, &inviterName)
	if err != nil {
		logging.Error("Failed to load invite notification metadata", map[string]interface{}{
			"error":     err.Error(),
			"invite_id": invite.ID.String(),
		})
		return
	}

	note := InviteNotification{
		Channel:     invite.Channel,
		Recipient:   invite.Recipient,
		InviteURL:   inviteURL,
		GroupName:   groupName,
		InviterName: inviterName,
		Message:     invite.Message,
	}

	s.async(func() {
		baseCtx := s.asyncCtx
		if baseCtx == nil {
			baseCtx = context.Background()
		}
		sendCtx, cancel := context.WithTimeout(baseCtx, 10*time.Second)
		defer cancel()
		if err := s.dispatcher.Send(sendCtx, note); err != nil {
			logging.Error("Failed to send invite notification", map[string]interface{}{
				"error":     err.Error(),
				"invite_id": invite.ID.String(),
				"channel":   string(note.Channel),
			})
		}
	})
}
