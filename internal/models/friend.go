package models

import (
	"time"

	"github.com/google/uuid"
)

type FriendRequestStatus string

const (
	FriendRequestStatusPending  FriendRequestStatus = "pending"
	FriendRequestStatusAccepted FriendRequestStatus = "accepted"
	FriendRequestStatusDeclined FriendRequestStatus = "declined"
)

type FriendRequest struct {
	ID         uuid.UUID           `json:"id"`
	SenderID   uuid.UUID           `json:"sender_id"`
	ReceiverID uuid.UUID           `json:"receiver_id"`
	Status     FriendRequestStatus `json:"status"`
	CreatedAt  time.Time           `json:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at"`
}

// Friendship stores the pair in canonical order: UserA is always the
// smaller of the two ids by byte comparison, so an unordered pair maps to
// exactly one row.
type Friendship struct {
	ID        uuid.UUID `json:"id"`
	UserA     uuid.UUID `json:"user_a"`
	UserB     uuid.UUID `json:"user_b"`
	CreatedAt time.Time `json:"created_at"`
}

// Other returns the friend of userID within the pair.
func (f *Friendship) Other(userID uuid.UUID) uuid.UUID {
	if f.UserA == userID {
		return f.UserB
	}
	return f.UserA
}

type FriendRequestWithUser struct {
	FriendRequest
	SenderName   string `json:"sender_name,omitempty"`
	ReceiverName string `json:"receiver_name,omitempty"`
}

type FriendWithUser struct {
	Friendship
	FriendID   uuid.UUID `json:"friend_id"`
	FriendName string    `json:"friend_name"`
}
