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

type GroupHandler struct {
	groupService services.GroupServiceInterface
}

func NewGroupHandler(groupService services.GroupServiceInterface) *GroupHandler {
	return &GroupHandler{groupService: groupService}
}

type CreateGroupRequest struct {
	Name string `json:"name"`
}

type GroupResponse struct {
	Group *models.Group `json:"group"`
}

type GroupListResponse struct {
	Groups []models.Group `json:"groups"`
}

type GroupMembersResponse struct {
	Members []models.GroupMemberWithUser `json:"members"`
}

func (h *GroupHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, CodeAuthRequired, "Authentication required")
		return
	}

	var req CreateGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeInvalidArgument, "Invalid request body")
		return
	}

	group, err := h.groupService.Create(r.Context(), user.ID, req.Name)
	if errors.Is(err, services.ErrGroupNameMissing) {
		writeError(w, http.StatusBadRequest, CodeInvalidArgument, "Group name is required")
		return
	}
	if err != nil {
		logging.Error("Failed to create group", map[string]interface{}{"error": err.Error()})
		writeInternalError(w)
		return
	}

	writeJSON(w, http.StatusCreated, GroupResponse{Group: group})
}

func (h *GroupHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, CodeAuthRequired, "Authentication required")
		return
	}

	groupID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeInvalidArgument, "Invalid group ID")
		return
	}

	member, err := h.groupService.IsMember(r.Context(), groupID, user.ID)
	if err != nil {
		logging.Error("Failed to check membership", map[string]interface{}{"error": err.Error()})
		writeInternalError(w)
		return
	}
	if !member {
		writeError(w, http.StatusForbidden, CodeForbidden, "You are not a member of this group")
		return
	}

	group, err := h.groupService.GetByID(r.Context(), groupID)
	if errors.Is(err, services.ErrGroupNotFound) {
		writeError(w, http.StatusNotFound, CodeNotFound, "Group not found")
		return
	}
	if err != nil {
		logging.Error("Failed to load group", map[string]interface{}{"error": err.Error()})
		writeInternalError(w)
		return
	}

	writeJSON(w, http.StatusOK, GroupResponse{Group: group})
}

func (h *GroupHandler) List(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, CodeAuthRequired, "Authentication required")
		return
	}

	groups, err := h.groupService.ListForUser(r.Context(), user.ID)
	if err != nil {
		logging.Error("Failed to list groups", map[string]interface{}{"error": err.Error()})
		writeInternalError(w)
		return
	}

	writeJSON(w, http.StatusOK, GroupListResponse{Groups: groups})
}

func (h *GroupHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, CodeAuthRequired, "Authentication required")
		return
	}

	groupID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeInvalidArgument, "Invalid group ID")
		return
	}

	member, err := h.groupService.IsMember(r.Context(), groupID, user.ID)
	if err != nil {
		logging.Error("Failed to check membership", map[string]interface{}{"error": err.Error()})
		writeInternalError(w)
		return
	}
	if !member {
		writeError(w, http.StatusForbidden, CodeForbidden, "You are not a member of this group")
		return
	}

	members, err := h.groupService.ListMembers(r.Context(), groupID)
	if err != nil {
		logging.Error("Failed to list members", map[string]interface{}{"error": err.Error()})
		writeInternalError(w)
		return
	}

	writeJSON(w, http.StatusOK, GroupMembersResponse{Members: members})
}
