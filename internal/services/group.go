package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/roomloop/roomloop/internal/models"
)

var (
	ErrGroupNotFound    = errors.New("group not found")
	ErrGroupNameMissing = errors.New("group name is required")
)

type GroupService struct {
	db DB
}

func NewGroupService(db DB) *GroupService {
	return &GroupService{db: db}
}

// Create makes a group and adds the creator as its first member.
func (s *GroupService) Create(ctx context.Context, creatorID uuid.UUID, name string) (*models.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrGroupNameMissing
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin group create: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback(ctx)
		}
	}()

	group := &models.Group{}
	err = tx.QueryRow(ctx,
		`INSERT INTO groups (name, created_by) VALUES ($1, $2)
		 RETURNING id, name, created_by, created_at`,
		name, creatorID,
	).Scan(&group.ID, &group.Name, &group.CreatedBy, &group.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("creating group: %w", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO group_members (group_id, user_id) VALUES ($1, $2)
		 ON CONFLICT (group_id, user_id) DO NOTHING`,
		group.ID, creatorID,
	)
	if err != nil {
		return nil, fmt.Errorf("adding creator membership: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit group create: %w", err)
	}
	committed = true

	return group, nil
}

func (s *GroupService) GetByID(ctx context.Context, groupID uuid.UUID) (*models.Group, error) {
	group := &models.Group{}
	err := s.db.QueryRow(ctx,
		"SELECT id, name, created_by, created_at FROM groups WHERE id = $1",
		groupID,
	).Scan(&group.ID, &group.Name, &group.CreatedBy, &group.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrGroupNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading group: %w", err)
	}
	return group, nil
}

func (s *GroupService) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Group, error) {
	rows, err := s.db.Query(ctx,
		`SELECT g.id, g.name, g.created_by, g.created_at
		 FROM groups g
		 JOIN group_members m ON m.group_id = g.id
		 WHERE m.user_id = $1
		 ORDER BY g.created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing groups: %w", err)
	}
	defer rows.Close()

	var groups []models.Group
	for rows.Next() {
		var g models.Group
		if err := rows.Scan(&g.ID, &g.Name, &g.CreatedBy, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning group: %w", err)
		}
		groups = append(groups, g)
	}

	if groups == nil {
		groups = []models.Group{}
	}
	return groups, nil
}

func (s *GroupService) ListMembers(ctx context.Context, groupID uuid.UUID) ([]models.GroupMemberWithUser, error) {
	rows, err := s.db.Query(ctx,
		`SELECT m.group_id, m.user_id, m.joined_at, u.display_name
		 FROM group_members m
		 JOIN users u ON m.user_id = u.id
		 WHERE m.group_id = $1
		 ORDER BY m.joined_at`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing members: %w", err)
	}
	defer rows.Close()

	var members []models.GroupMemberWithUser
	for rows.Next() {
		var m models.GroupMemberWithUser
		if err := rows.Scan(&m.GroupID, &m.UserID, &m.JoinedAt, &m.DisplayName); err != nil {
			return nil, fmt.Errorf("scanning member: %w", err)
		}
		members = append(members, m)
	}

	if members == nil {
		members = []models.GroupMemberWithUser{}
	}
	return members, nil
}

// AddMember is insert-or-ignore on the membership primary key. It reports
// whether a row was actually inserted, so callers can distinguish a fresh
// join from a repeat without treating the repeat as an error.
func (s *GroupService) AddMember(ctx context.Context, groupID, userID uuid.UUID) (bool, error) {
	tag, err := s.db.Exec(ctx,
		`INSERT INTO group_members (group_id, user_id) VALUES ($1, $2)
		 ON CONFLICT (group_id, user_id) DO NOTHING`,
		groupID, userID,
	)
	if err != nil {
		return false, fmt.Errorf("adding member: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *GroupService) IsMember(ctx context.Context, groupID, userID uuid.UUID) (bool, error) {
	var member bool
	err := s.db.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM group_members WHERE group_id = $1 AND user_id = $2)",
		groupID, userID,
	).Scan(&member)
	if err != nil {
		return false, fmt.Errorf("checking membership: %w", err)
	}
	return member, nil
}
