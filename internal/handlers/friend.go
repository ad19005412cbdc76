package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/roomloop/roomloop/internal/logging"
	"github.com/roomloop/roomloop/internal/models"
	"github.com/roomloop/roomloop/internal/services"
)

type FriendHandler struct {
	friendService services.FriendServiceInterface
}

func NewFriendHandler(friendService services.FriendServiceInterface) *FriendHandler {
	return &FriendHandler{friendService: friendService}
}

type SendFriendRequestRequest struct {
	ReceiverID string `json:"receiver_id"`
}

type FriendRequestResponse struct {
	Request *models.FriendRequest `json:"request,omitempty"`
	Message string                `json:"message,omitempty"`
}

type FriendshipResponse struct {
	Friendship *models.Friendship `json:"friendship,omitempty"`
	Message    string             `json:"message,omitempty"`
}

type FriendListResponse struct {
	Friends  []models.FriendWithUser        `json:"friends"`
	Incoming []models.FriendRequestWithUser `json:"incoming"`
	Sent     []models.FriendRequestWithUser `json:"sent"`
}

func (h *FriendHandler) SendRequest(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, CodeAuthRequired, "Authentication required")
		return
	}

	var req SendFriendRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeInvalidArgument, "Invalid request body")
		return
	}

	receiverID, err := uuid.Parse(req.ReceiverID)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeInvalidArgument, "Invalid receiver ID")
		return
	}

	request, err := h.friendService.SendRequest(r.Context(), user.ID, receiverID)
	if errors.Is(err, services.ErrCannotFriendSelf) {
		writeError(w, http.StatusBadRequest, CodeInvalidArgument, "Cannot send a friend request to yourself")
		return
	}
	if errors.Is(err, services.ErrRequestExists) {
		writeError(w, http.StatusConflict, CodeConflict, "A pending friend request already exists")
		return
	}
	if errors.Is(err, services.ErrFriendshipExists) {
		writeError(w, http.StatusConflict, CodeConflict, "You are already friends")
		return
	}
	if err != nil {
		logging.Error("Failed to send friend request", map[string]interface{}{"error": err.Error()})
		writeInternalError(w)
		return
	}

	writeJSON(w, http.StatusCreated, FriendRequestResponse{Request: request, Message: "Friend request sent"})
}

func (h *FriendHandler) AcceptRequest(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, CodeAuthRequired, "Authentication required")
		return
	}

	requestID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeInvalidArgument, "Invalid request ID")
		return
	}

	friendship, err := h.friendService.AcceptRequest(r.Context(), user.ID, requestID)
	if errors.Is(err, services.ErrRequestNotFound) {
		writeError(w, http.StatusNotFound, CodeNotFound, "Friend request not found")
		return
	}
	if errors.Is(err, services.ErrNotRequestReceiver) {
		writeError(w, http.StatusForbidden, CodeForbidden, "Only the receiver can accept this request")
		return
	}
	if errors.Is(err, services.ErrRequestNotPending) {
		writeError(w, http.StatusConflict, CodeConflict, "Request has been declined")
		return
	}
	if err != nil {
		logging.Error("Failed to accept friend request", map[string]interface{}{"error": err.Error()})
		writeInternalError(w)
		return
	}

	writeJSON(w, http.StatusOK, FriendshipResponse{Friendship: friendship, Message: "Friend request accepted"})
}

func (h *FriendHandler) DeclineRequest(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, CodeAuthRequired, "Authentication required")
		return
	}

	requestID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeInvalidArgument, "Invalid request ID")
		return
	}

	err = h.friendService.DeclineRequest(r.Context(), user.ID, requestID)
	if errors.Is(err, services.ErrRequestNotFound) {
		writeError(w, http.StatusNotFound, CodeNotFound, "Friend request not found")
		return
	}
	if errors.Is(err, services.ErrNotRequestReceiver) {
		writeError(w, http.StatusForbidden, CodeForbidden, "Only the receiver can decline this request")
		return
	}
	if err != nil {
		logging.Error("Failed to decline friend request", map[string]interface{}{"error": err.Error()})
		writeInternalError(w)
		return
	}

	writeJSON(w, http.StatusOK, FriendRequestResponse{Message: "Friend request declined"})
}

func (h *FriendHandler) Remove(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, CodeAuthRequired, "Authentication required")
		return
	}

	friendshipID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeInvalidArgument, "Invalid friendship ID")
		return
	}

	err = h.friendService.RemoveFriendship(r.Context(), user.ID, friendshipID)
	if errors.Is(err, services.ErrFriendshipNotFound) {
		writeError(w, http.StatusNotFound, CodeNotFound, "Friendship not found")
		return
	}
	if errors.Is(err, services.ErrNotFriendshipParty) {
		writeError(w, http.StatusForbidden, CodeForbidden, "You are not part of this friendship")
		return
	}
	if err != nil {
		logging.Error("Failed to remove friendship", map[string]interface{}{"error": err.Error()})
		writeInternalError(w)
		return
	}

	writeJSON(w, http.StatusOK, FriendshipResponse{Message: "Friend removed"})
}

func (h *FriendHandler) List(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, CodeAuthRequired, "Authentication required")
		return
	}

	friends, err := h.friendService.ListFriends(r.Context(), user.ID)
	if err != nil {
		logging.Error("Failed to list friends", map[string]interface{}{"error": err.Error()})
		writeInternalError(w)
		return
	}

	incoming, err := h.friendService.ListIncomingRequests(r.Context(), user.ID)
	if err != nil {
		logging.Error("Failed to list incoming requests", map[string]interface{}{"error": err.Error()})
		writeInternalError(w)
		return
	}

	sent, err := h.friendService.ListSentRequests(r.Context(), user.ID)
	if err != nil {
		logging.Error("Failed to list sent requests", map[string]interface{}{"error": err.Error()})
		writeInternalError(w)
		return
	}

	writeJSON(w, http.StatusOK, FriendListResponse{
		Friends:  friends,
		Incoming: incoming,
		Sent:     sent,
	})
}
