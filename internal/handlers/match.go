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

type MatchHandler struct {
	matchService services.MatchServiceInterface
}

func NewMatchHandler(matchService services.MatchServiceInterface) *MatchHandler {
	return &MatchHandler{matchService: matchService}
}

type SwipeRequest struct {
	TargetID string `json:"target_id"`
	Liked    bool   `json:"liked"`
}

type SwipeResponse struct {
	Mutual bool       `json:"mutual"`
	ChatID *uuid.UUID `json:"chat_id,omitempty"`
}

type MatchListResponse struct {
	Matches []models.MutualMatch `json:"matches"`
}

func (h *MatchHandler) Swipe(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, CodeAuthRequired, "Authentication required")
		return
	}

	var req SwipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeInvalidArgument, "Invalid request body")
		return
	}

	targetID, err := uuid.Parse(req.TargetID)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeInvalidArgument, "Invalid target ID")
		return
	}

	result, err := h.matchService.RecordSwipe(r.Context(), user.ID, targetID, req.Liked)
	if errors.Is(err, services.ErrCannotSwipeSelf) {
		writeError(w, http.StatusBadRequest, CodeInvalidArgument, "Cannot swipe on yourself")
		return
	}
	if err != nil {
		logging.Error("Failed to record swipe", map[string]interface{}{"error": err.Error()})
		writeInternalError(w)
		return
	}

	writeJSON(w, http.StatusOK, SwipeResponse{Mutual: result.Mutual, ChatID: result.ChatID})
}

func (h *MatchHandler) RemoveSwipe(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, CodeAuthRequired, "Authentication required")
		return
	}

	targetID, err := uuid.Parse(r.PathValue("targetID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeInvalidArgument, "Invalid target ID")
		return
	}

	if err := h.matchService.RemoveSwipe(r.Context(), user.ID, targetID); err != nil {
		logging.Error("Failed to remove swipe", map[string]interface{}{"error": err.Error()})
		writeInternalError(w)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *MatchHandler) ListMatches(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, CodeAuthRequired, "Authentication required")
		return
	}

	matches, err := h.matchService.ListMutualMatches(r.Context(), user.ID)
	if err != nil {
		logging.Error("Failed to list matches", map[string]interface{}{"error": err.Error()})
		writeInternalError(w)
		return
	}

	writeJSON(w, http.StatusOK, MatchListResponse{Matches: matches})
}
