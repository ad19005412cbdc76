package handlers

import (
	"context"

	"github.com/google/uuid"

	"github.com/roomloop/roomloop/internal/models"
	"github.com/roomloop/roomloop/internal/services"
)

type mockFriendService struct {
	SendRequestFunc          func(ctx context.Context, senderID, receiverID uuid.UUID) (*models.FriendRequest, error)
	AcceptRequestFunc        func(ctx context.Context, actingUserID, requestID uuid.UUID) (*models.Friendship, error)
	DeclineRequestFunc       func(ctx context.Context, actingUserID, requestID uuid.UUID) error
	RemoveFriendshipFunc     func(ctx context.Context, actingUserID, friendshipID uuid.UUID) error
	ListFriendsFunc          func(ctx context.Context, userID uuid.UUID) ([]models.FriendWithUser, error)
	ListIncomingRequestsFunc func(ctx context.Context, userID uuid.UUID) ([]models.FriendRequestWithUser, error)
	ListSentRequestsFunc     func(ctx context.Context, userID uuid.UUID) ([]models.FriendRequestWithUser, error)
	AreFriendsFunc           func(ctx context.Context, userID, otherUserID uuid.UUID) (bool, error)
}

func (m *mockFriendService) SendRequest(ctx context.Context, senderID, receiverID uuid.UUID) (*models.FriendRequest, error) {
	if m.SendRequestFunc != nil {
		return m.SendRequestFunc(ctx, senderID, receiverID)
	}
	return nil, nil
}

func (m *mockFriendService) AcceptRequest(ctx context.Context, actingUserID, requestID uuid.UUID) (*models.Friendship, error) {
	if m.AcceptRequestFunc != nil {
		return m.AcceptRequestFunc(ctx, actingUserID, requestID)
	}
	return nil, nil
}

func (m *mockFriendService) DeclineRequest(ctx context.Context, actingUserID, requestID uuid.UUID) error {
	if m.DeclineRequestFunc != nil {
		return m.DeclineRequestFunc(ctx, actingUserID, requestID)
	}
	return nil
}

func (m *mockFriendService) RemoveFriendship(ctx context.Context, actingUserID, friendshipID uuid.UUID) error {
	if m.RemoveFriendshipFunc != nil {
		return m.RemoveFriendshipFunc(ctx, actingUserID, friendshipID)
	}
	return nil
}

func (m *mockFriendService) ListFriends(ctx context.Context, userID uuid.UUID) ([]models.FriendWithUser, error) {
	if m.ListFriendsFunc != nil {
		return m.ListFriendsFunc(ctx, userID)
	}
	return []models.FriendWithUser{}, nil
}

func (m *mockFriendService) ListIncomingRequests(ctx context.Context, userID uuid.UUID) ([]models.FriendRequestWithUser, error) {
	if m.ListIncomingRequestsFunc != nil {
		return m.ListIncomingRequestsFunc(ctx, userID)
	}
	return []models.FriendRequestWithUser{}, nil
}

func (m *mockFriendService) ListSentRequests(ctx context.Context, userID uuid.UUID) ([]models.FriendRequestWithUser, error) {
	if m.ListSentRequestsFunc != nil {
		return m.ListSentRequestsFunc(ctx, userID)
	}
	return []models.FriendRequestWithUser{}, nil
}

func (m *mockFriendService) AreFriends(ctx context.Context, userID, otherUserID uuid.UUID) (bool, error) {
	if m.AreFriendsFunc != nil {
		return m.AreFriendsFunc(ctx, userID, otherUserID)
	}
	return false, nil
}

type mockMatchService struct {
	RecordSwipeFunc       func(ctx context.Context, userID, targetID uuid.UUID, liked bool) (*models.SwipeResult, error)
	RemoveSwipeFunc       func(ctx context.Context, userID, targetID uuid.UUID) error
	ListMutualMatchesFunc func(ctx context.Context, userID uuid.UUID) ([]models.MutualMatch, error)
}

func (m *mockMatchService) RecordSwipe(ctx context.Context, userID, targetID uuid.UUID, liked bool) (*models.SwipeResult, error) {
	if m.RecordSwipeFunc != nil {
		return m.RecordSwipeFunc(ctx, userID, targetID, liked)
	}
	return &models.SwipeResult{}, nil
}

func (m *mockMatchService) RemoveSwipe(ctx context.Context, userID, targetID uuid.UUID) error {
	if m.RemoveSwipeFunc != nil {
		return m.RemoveSwipeFunc(ctx, userID, targetID)
	}
	return nil
}

func (m *mockMatchService) ListMutualMatches(ctx context.Context, userID uuid.UUID) ([]models.MutualMatch, error) {
	if m.ListMutualMatchesFunc != nil {
		return m.ListMutualMatchesFunc(ctx, userID)
	}
	return []models.MutualMatch{}, nil
}

type mockInviteService struct {
	CreateInviteFunc  func(ctx context.Context, inviterID uuid.UUID, params services.CreateInviteParams) (*models.Invite, string, error)
	ValidateTokenFunc func(ctx context.Context, token string) (*models.InvitePreview, error)
	AcceptInviteFunc  func(ctx context.Context, userID uuid.UUID, token string) (*models.InviteAcceptResult, error)
}

func (m *mockInviteService) CreateInvite(ctx context.Context, inviterID uuid.UUID, params services.CreateInviteParams) (*models.Invite, string, error) {
	if m.CreateInviteFunc != nil {
		return m.CreateInviteFunc(ctx, inviterID, params)
	}
	return &models.Invite{}, "", nil
}

func (m *mockInviteService) ValidateToken(ctx context.Context, token string) (*models.InvitePreview, error) {
	if m.ValidateTokenFunc != nil {
		return m.ValidateTokenFunc(ctx, token)
	}
	return &models.InvitePreview{}, nil
}

func (m *mockInviteService) AcceptInvite(ctx context.Context, userID uuid.UUID, token string) (*models.InviteAcceptResult, error) {
	if m.AcceptInviteFunc != nil {
		return m.AcceptInviteFunc(ctx, userID, token)
	}
	return &models.InviteAcceptResult{}, nil
}

type mockGroupService struct {
	CreateFunc      func(ctx context.Context, creatorID uuid.UUID, name string) (*models.Group, error)
	GetByIDFunc     func(ctx context.Context, groupID uuid.UUID) (*models.Group, error)
	ListForUserFunc func(ctx context.Context, userID uuid.UUID) ([]models.Group, error)
	ListMembersFunc func(ctx context.Context, groupID uuid.UUID) ([]models.GroupMemberWithUser, error)
	AddMemberFunc   func(ctx context.Context, groupID, userID uuid.UUID) (bool, error)
	IsMemberFunc    func(ctx context.Context, groupID, userID uuid.UUID) (bool, error)
}

func (m *mockGroupService) Create(ctx context.Context, creatorID uuid.UUID, name string) (*models.Group, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, creatorID, name)
	}
	return &models.Group{}, nil
}

func (m *mockGroupService) GetByID(ctx context.Context, groupID uuid.UUID) (*models.Group, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, groupID)
	}
	return &models.Group{}, nil
}

func (m *mockGroupService) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Group, error) {
	if m.ListForUserFunc != nil {
		return m.ListForUserFunc(ctx, userID)
	}
	return []models.Group{}, nil
}

func (m *mockGroupService) ListMembers(ctx context.Context, groupID uuid.UUID) ([]models.GroupMemberWithUser, error) {
	if m.ListMembersFunc != nil {
		return m.ListMembersFunc(ctx, groupID)
	}
	return []models.GroupMemberWithUser{}, nil
}

func (m *mockGroupService) AddMember(ctx context.Context, groupID, userID uuid.UUID) (bool, error) {
	if m.AddMemberFunc != nil {
		return m.AddMemberFunc(ctx, groupID, userID)
	}
	return true, nil
}

func (m *mockGroupService) IsMember(ctx context.Context, groupID, userID uuid.UUID) (bool, error) {
	if m.IsMemberFunc != nil {
		return m.IsMemberFunc(ctx, groupID, userID)
	}
	return true, nil
}
