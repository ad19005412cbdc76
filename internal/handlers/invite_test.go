package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/roomloop/roomloop/internal/models"
	"github.com/roomloop/roomloop/internal/services"
)

func TestInviteHandler_Create_ErrorMapping(t *testing.T) {
	user := &models.User{ID: uuid.New()}

	tests := []struct {
		name       string
		serviceErr error
		wantStatus int
		wantCode   string
	}{
		{"not a member", services.ErrNotGroupMember, http.StatusForbidden, CodeForbidden},
		{"rate limited", services.ErrInviteRateLimited, http.StatusTooManyRequests, CodeRateLimited},
		{"internal error", errors.New("boom"), http.StatusInternalServerError, CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockInvite := &mockInviteService{
				CreateInviteFunc: func(ctx context.Context, inviterID uuid.UUID, params services.CreateInviteParams) (*models.Invite, string, error) {
					return nil, "", tt.serviceErr
				},
			}
			handler := NewInviteHandler(mockInvite)

			body, _ := json.Marshal(CreateInviteRequest{GroupID: uuid.New().String(), Channel: "link"})
			rr := httptest.NewRecorder()
			handler.Create(rr, authedRequest(http.MethodPost, "/api/invites", body, user))

			assertErrorCode(t, rr, tt.wantStatus, tt.wantCode)
		})
	}
}

func TestInviteHandler_Create_UnknownChannel(t *testing.T) {
	handler := NewInviteHandler(&mockInviteService{})
	user := &models.User{ID: uuid.New()}

	body, _ := json.Marshal(CreateInviteRequest{GroupID: uuid.New().String(), Channel: "carrier-pigeon"})
	rr := httptest.NewRecorder()
	handler.Create(rr, authedRequest(http.MethodPost, "/api/invites", body, user))

	assertErrorCode(t, rr, http.StatusBadRequest, CodeInvalidArgument)
}

func TestInviteHandler_Create_EmailNeedsRecipient(t *testing.T) {
	handler := NewInviteHandler(&mockInviteService{})
	user := &models.User{ID: uuid.New()}

	body, _ := json.Marshal(CreateInviteRequest{GroupID: uuid.New().String(), Channel: "email"})
	rr := httptest.NewRecorder()
	handler.Create(rr, authedRequest(http.MethodPost, "/api/invites", body, user))

	assertErrorCode(t, rr, http.StatusBadRequest, CodeInvalidArgument)
}

func TestInviteHandler_Create_Success(t *testing.T) {
	user := &models.User{ID: uuid.New()}
	groupID := uuid.New()

	mockInvite := &mockInviteService{
		CreateInviteFunc: func(ctx context.Context, inviterID uuid.UUID, params services.CreateInviteParams) (*models.Invite, string, error) {
			if params.GroupID != groupID {
				t.Errorf("unexpected group id %s", params.GroupID)
			}
			return &models.Invite{ID: uuid.New(), GroupID: groupID, Status: models.InviteStatusPending},
				"https://roomloop.app/invite?t=abc", nil
		},
	}
	handler := NewInviteHandler(mockInvite)

	body, _ := json.Marshal(CreateInviteRequest{GroupID: groupID.String(), Channel: "link"})
	rr := httptest.NewRecorder()
	handler.Create(rr, authedRequest(http.MethodPost, "/api/invites", body, user))

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp CreateInviteResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp.InviteURL != "https://roomloop.app/invite?t=abc" {
		t.Fatalf("unexpected invite URL %q", resp.InviteURL)
	}
}

func TestInviteHandler_Validate_TokenErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		serviceErr error
		wantStatus int
		wantCode   string
	}{
		{"not found", services.ErrInviteNotFound, http.StatusNotFound, CodeTokenNotFound},
		{"expired", services.ErrInviteExpired, http.StatusGone, CodeExpired},
		{"already accepted", services.ErrInviteAlreadyAccepted, http.StatusConflict, CodeAlreadyAccepted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockInvite := &mockInviteService{
				ValidateTokenFunc: func(ctx context.Context, token string) (*models.InvitePreview, error) {
					return nil, tt.serviceErr
				},
			}
			handler := NewInviteHandler(mockInvite)

			rr := httptest.NewRecorder()
			handler.Validate(rr, httptest.NewRequest(http.MethodGet, "/api/invites/validate?t=abc", nil))

			assertErrorCode(t, rr, tt.wantStatus, tt.wantCode)
		})
	}
}

func TestInviteHandler_Validate_MissingToken(t *testing.T) {
	handler := NewInviteHandler(&mockInviteService{})

	rr := httptest.NewRecorder()
	handler.Validate(rr, httptest.NewRequest(http.MethodGet, "/api/invites/validate", nil))

	assertErrorCode(t, rr, http.StatusBadRequest, CodeTokenInvalid)
}

func TestInviteHandler_Validate_NoAuthRequired(t *testing.T) {
	expiresAt := time.Now().Add(time.Hour)
	mockInvite := &mockInviteService{
		ValidateTokenFunc: func(ctx context.Context, token string) (*models.InvitePreview, error) {
			return &models.InvitePreview{GroupName: "Maple St House", InviterName: "Jordan", ExpiresAt: expiresAt}, nil
		},
	}
	handler := NewInviteHandler(mockInvite)

	// No user in context: the invitee may not have an account yet.
	rr := httptest.NewRecorder()
	handler.Validate(rr, httptest.NewRequest(http.MethodGet, "/api/invites/validate?t=abc", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	var resp InvitePreviewResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp.Preview.GroupName != "Maple St House" {
		t.Fatalf("unexpected preview: %+v", resp.Preview)
	}
}

func TestInviteHandler_Accept_Unauthenticated(t *testing.T) {
	handler := NewInviteHandler(&mockInviteService{})

	body, _ := json.Marshal(AcceptInviteRequest{Token: "abc"})
	rr := httptest.NewRecorder()
	handler.Accept(rr, authedRequest(http.MethodPost, "/api/invites/accept", body, nil))

	assertErrorCode(t, rr, http.StatusUnauthorized, CodeAuthRequired)
}

func TestInviteHandler_Accept_Success(t *testing.T) {
	user := &models.User{ID: uuid.New()}
	groupID := uuid.New()

	mockInvite := &mockInviteService{
		AcceptInviteFunc: func(ctx context.Context, userID uuid.UUID, token string) (*models.InviteAcceptResult, error) {
			if userID != user.ID || token != "abc" {
				t.Errorf("unexpected accept call: user=%s token=%q", userID, token)
			}
			return &models.InviteAcceptResult{GroupID: groupID, GroupName: "Maple St House"}, nil
		},
	}
	handler := NewInviteHandler(mockInvite)

	body, _ := json.Marshal(AcceptInviteRequest{Token: "abc"})
	rr := httptest.NewRecorder()
	handler.Accept(rr, authedRequest(http.MethodPost, "/api/invites/accept", body, user))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp AcceptInviteResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp.GroupID != groupID || resp.AlreadyMember {
		t.Fatalf("unexpected accept response: %+v", resp)
	}
}

func TestInviteHandler_Accept_AlreadyMember(t *testing.T) {
	user := &models.User{ID: uuid.New()}
	mockInvite := &mockInviteService{
		AcceptInviteFunc: func(ctx context.Context, userID uuid.UUID, token string) (*models.InviteAcceptResult, error) {
			return &models.InviteAcceptResult{GroupID: uuid.New(), GroupName: "Maple St House", AlreadyMember: true}, nil
		},
	}
	handler := NewInviteHandler(mockInvite)

	body, _ := json.Marshal(AcceptInviteRequest{Token: "abc"})
	rr := httptest.NewRecorder()
	handler.Accept(rr, authedRequest(http.MethodPost, "/api/invites/accept", body, user))

	if rr.Code != http.StatusOK {
		t.Fatalf("a repeat accept should still be a 200, got %d", rr.Code)
	}

	var resp AcceptInviteResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if !resp.AlreadyMember {
		t.Fatal("expected already_member to be true")
	}
}

func TestInviteHandler_Accept_TokenErrorMapping(t *testing.T) {
	user := &models.User{ID: uuid.New()}

	tests := []struct {
		name       string
		serviceErr error
		wantStatus int
		wantCode   string
	}{
		{"not found", services.ErrInviteNotFound, http.StatusNotFound, CodeTokenNotFound},
		{"expired", services.ErrInviteExpired, http.StatusGone, CodeExpired},
		{"redeemed by other", services.ErrInviteAlreadyAccepted, http.StatusConflict, CodeAlreadyAccepted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockInvite := &mockInviteService{
				AcceptInviteFunc: func(ctx context.Context, userID uuid.UUID, token string) (*models.InviteAcceptResult, error) {
					return nil, tt.serviceErr
				},
			}
			handler := NewInviteHandler(mockInvite)

			body, _ := json.Marshal(AcceptInviteRequest{Token: "abc"})
			rr := httptest.NewRecorder()
			handler.Accept(rr, authedRequest(http.MethodPost, "/api/invites/accept", body, user))

			assertErrorCode(t, rr, tt.wantStatus, tt.wantCode)
		})
	}
}
