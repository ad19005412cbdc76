package models

import (
	"time"

	"github.com/google/uuid"
)

type InviteStatus string

const (
	InviteStatusPending  InviteStatus = "pending"
	InviteStatusAccepted InviteStatus = "accepted"
	InviteStatusExpired  InviteStatus = "expired"
)

type InviteChannel string

const (
	InviteChannelEmail    InviteChannel = "email"
	InviteChannelWhatsApp InviteChannel = "whatsapp"
	InviteChannelLink     InviteChannel = "link"
)

// Invite is a single-use, expiring admission token for a group. Only the
// SHA-256 hash of the token is stored; the plaintext exists once, in the
// URL returned at creation.
type Invite struct {
	ID         uuid.UUID     `json:"id"`
	GroupID    uuid.UUID     `json:"group_id"`
	InviterID  uuid.UUID     `json:"inviter_id"`
	Recipient  string        `json:"recipient,omitempty"`
	Channel    InviteChannel `json:"channel"`
	Message    string        `json:"message,omitempty"`
	Status     InviteStatus  `json:"status"`
	CreatedAt  time.Time     `json:"created_at"`
	ExpiresAt  time.Time     `json:"expires_at"`
	AcceptedBy *uuid.UUID    `json:"accepted_by,omitempty"`
	AcceptedAt *time.Time    `json:"accepted_at,omitempty"`
}

// InvitePreview is what validateToken exposes before the user commits.
type InvitePreview struct {
	GroupID     uuid.UUID `json:"group_id"`
	GroupName   string    `json:"group_name"`
	InviterID   uuid.UUID `json:"inviter_id"`
	InviterName string    `json:"inviter_name"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type InviteAcceptResult struct {
	GroupID       uuid.UUID `json:"group_id"`
	GroupName     string    `json:"group_name"`
	AlreadyMember bool      `json:"already_member"`
}
