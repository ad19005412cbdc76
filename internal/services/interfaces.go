package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/roomloop/roomloop/internal/models"
)

// FriendServiceInterface defines the contract for the friend request
// handshake and resulting friendships.
type FriendServiceInterface interface {
	SendRequest(ctx context.Context, senderID, receiverID uuid.UUID) (*models.FriendRequest, error)
	AcceptRequest(ctx context.Context, actingUserID, requestID uuid.UUID) (*models.Friendship, error)
	DeclineRequest(ctx context.Context, actingUserID, requestID uuid.UUID) error
	RemoveFriendship(ctx context.Context, actingUserID, friendshipID uuid.UUID) error
	ListFriends(ctx context.Context, userID uuid.UUID) ([]models.FriendWithUser, error)
	ListIncomingRequests(ctx context.Context, userID uuid.UUID) ([]models.FriendRequestWithUser, error)
	ListSentRequests(ctx context.Context, userID uuid.UUID) ([]models.FriendRequestWithUser, error)
	AreFriends(ctx context.Context, userID, otherUserID uuid.UUID) (bool, error)
}

// MatchServiceInterface defines the contract for swipe recording and
// mutual-match detection.
type MatchServiceInterface interface {
	RecordSwipe(ctx context.Context, userID, targetID uuid.UUID, liked bool) (*models.SwipeResult, error)
	RemoveSwipe(ctx context.Context, userID, targetID uuid.UUID) error
	ListMutualMatches(ctx context.Context, userID uuid.UUID) ([]models.MutualMatch, error)
}

// InviteServiceInterface defines the contract for group invite issuance and
// acceptance.
type InviteServiceInterface interface {
	CreateInvite(ctx context.Context, inviterID uuid.UUID, params CreateInviteParams) (*models.Invite, string, error)
	ValidateToken(ctx context.Context, token string) (*models.InvitePreview, error)
	AcceptInvite(ctx context.Context, userID uuid.UUID, token string) (*models.InviteAcceptResult, error)
}

// GroupServiceInterface defines the contract for groups and memberships.
type GroupServiceInterface interface {
	Create(ctx context.Context, creatorID uuid.UUID, name string) (*models.Group, error)
	GetByID(ctx context.Context, groupID uuid.UUID) (*models.Group, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Group, error)
	ListMembers(ctx context.Context, groupID uuid.UUID) ([]models.GroupMemberWithUser, error)
	AddMember(ctx context.Context, groupID, userID uuid.UUID) (added bool, err error)
	IsMember(ctx context.Context, groupID, userID uuid.UUID) (bool, error)
}

// ChatService creates or fetches the conversation for a pair of users.
// GetOrCreate must be idempotent: called twice for the same pair, in either
// order, it returns the same conversation id.
type ChatService interface {
	GetOrCreate(ctx context.Context, userA, userB uuid.UUID) (uuid.UUID, error)
}

// RateLimiter answers whether a key may perform one more action in the
// current window. Implementations must be safe for concurrent callers on
// the same key.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// NotificationDispatcher delivers invite notifications. Send is best-effort:
// callers log failures and never propagate them.
type NotificationDispatcher interface {
	Send(ctx context.Context, n InviteNotification) error
}

// InviteNotification carries everything a channel needs to render an invite
// message.
type InviteNotification struct {
	Channel     models.InviteChannel
	Recipient   string
	InviteURL   string
	GroupName   string
	InviterName string
	Message     string
}
