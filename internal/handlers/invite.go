package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/roomloop/roomloop/internal/logging"
	"github.com/roomloop/roomloop/internal/models"
	"github.com/roomloop/roomloop/internal/services"
)

type InviteHandler struct {
	inviteService services.InviteServiceInterface
}

func NewInviteHandler(inviteService services.InviteServiceInterface) *InviteHandler {
	return &InviteHandler{inviteService: inviteService}
}

type CreateInviteRequest struct {
	GroupID   string `json:"group_id"`
	Channel   string `json:"channel"`
	Recipient string `json:"recipient"`
	Message   string `json:"message"`
}

type CreateInviteResponse struct {
	Invite    *models.Invite `json:"invite"`
	InviteURL string         `json:"invite_url"`
}

type InvitePreviewResponse struct {
	Preview *models.InvitePreview `json:"preview"`
}

type AcceptInviteRequest struct {
	Token string `json:"token"`
}

type AcceptInviteResponse struct {
	GroupID       uuid.UUID `json:"group_id"`
	GroupName     string    `json:"group_name"`
	AlreadyMember bool      `json:"already_member"`
}

func (h *InviteHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, CodeAuthRequired, "Authentication required")
		return
	}

	var req CreateInviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeInvalidArgument, "Invalid request body")
		return
	}

	groupID, err := uuid.Parse(req.GroupID)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeInvalidArgument, "Invalid group ID")
		return
	}

	channel := models.InviteChannel(req.Channel)
	switch channel {
	case "", models.InviteChannelLink, models.InviteChannelEmail, models.InviteChannelWhatsApp:
	default:
		writeError(w, http.StatusBadRequest, CodeInvalidArgument, "Unknown invite channel")
		return
	}
	if channel == models.InviteChannelEmail && strings.TrimSpace(req.Recipient) == "" {
		writeError(w, http.StatusBadRequest, CodeInvalidArgument, "Email invites need a recipient")
		return
	}

	invite, inviteURL, err := h.inviteService.CreateInvite(r.Context(), user.ID, services.CreateInviteParams{
		GroupID:   groupID,
		Channel:   channel,
		Recipient: strings.TrimSpace(req.Recipient),
		Message:   req.Message,
	})
	if errors.Is(err, services.ErrNotGroupMember) {
		writeError(w, http.StatusForbidden, CodeForbidden, "Only group members can invite")
		return
	}
	if errors.Is(err, services.ErrInviteRateLimited) {
		writeError(w, http.StatusTooManyRequests, CodeRateLimited, "Invite limit reached, try again later")
		return
	}
	if err != nil {
		logging.Error("Failed to create invite", map[string]interface{}{"error": err.Error()})
		writeInternalError(w)
		return
	}

	writeJSON(w, http.StatusCreated, CreateInviteResponse{Invite: invite, InviteURL: inviteURL})
}

// Validate resolves an invite token for the pre-accept screen. It requires
// no authentication: the invitee usually has no account yet.
func (h *InviteHandler) Validate(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("t")
	if token == "" {
		writeError(w, http.StatusBadRequest, CodeTokenInvalid, "Missing invite token")
		return
	}

	preview, err := h.inviteService.ValidateToken(r.Context(), token)
	if writeInviteTokenError(w, err) {
		return
	}
	if err != nil {
		logging.Error("Failed to validate invite token", map[string]interface{}{"error": err.Error()})
		writeInternalError(w)
		return
	}

	writeJSON(w, http.StatusOK, InvitePreviewResponse{Preview: preview})
}

func (h *InviteHandler) Accept(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, CodeAuthRequired, "Authentication required")
		return
	}

	var req AcceptInviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeInvalidArgument, "Invalid request body")
		return
	}
	if req.Token == "" {
		writeError(w, http.StatusBadRequest, CodeTokenInvalid, "Missing invite token")
		return
	}

	result, err := h.inviteService.AcceptInvite(r.Context(), user.ID, req.Token)
	if errors.Is(err, services.ErrAuthRequired) {
		writeError(w, http.StatusUnauthorized, CodeAuthRequired, "Authentication required")
		return
	}
	if writeInviteTokenError(w, err) {
		return
	}
	if err != nil {
		logging.Error("Failed to accept invite", map[string]interface{}{"error": err.Error()})
		writeInternalError(w)
		return
	}

	writeJSON(w, http.StatusOK, AcceptInviteResponse{
		GroupID:       result.GroupID,
		GroupName:     result.GroupName,
		AlreadyMember: result.AlreadyMember,
	})
}

// writeInviteTokenError maps the shared token failure modes of validate and
// accept. It reports whether it handled the error.
func writeInviteTokenError(w http.ResponseWriter, err error) bool {
	switch {
	case errors.Is(err, services.ErrInviteNotFound):
		writeError(w, http.StatusNotFound, CodeTokenNotFound, "Invite not found")
		return true
	case errors.Is(err, services.ErrInviteExpired):
		writeError(w, http.StatusGone, CodeExpired, "Invite has expired")
		return true
	case errors.Is(err, services.ErrInviteAlreadyAccepted):
		writeError(w, http.StatusConflict, CodeAlreadyAccepted, "Invite has already been used")
		return true
	}
	return false
}
