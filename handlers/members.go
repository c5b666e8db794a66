package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/campuslib/backend/logger"
	"github.com/campuslib/backend/models"
	"github.com/campuslib/backend/store"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MembersHandler struct {
	DB  *store.DB
	Log *logger.Logger
}

type MemberResponse struct {
	models.Profile
	Roles []string `json:"roles"`
}

// List returns all member profiles with their role grants, for the admin
// member/staff screens.
func (h *MembersHandler) List(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.DB.ListProfiles(r.Context())
	if err != nil {
		http.Error(w, `{"error":"failed to list members"}`, http.StatusInternalServerError)
		return
	}
	members := make([]MemberResponse, 0, len(profiles))
	for _, p := range profiles {
		roles, err := h.DB.RolesForUser(r.Context(), p.UserID)
		if err != nil {
			h.Log.Warn("list members: roles fetch", "userId", p.UserID.Hex(), "error", err)
			roles = nil
		}
		if roles == nil {
			roles = []string{}
		}
		members = append(members, MemberResponse{Profile: p, Roles: roles})
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(members)
}

type RoleRequest struct {
	UserID string `json:"userId" validate:"required"`
	Role   string `json:"role" validate:"required"`
}

func (h *MembersHandler) GrantRole(w http.ResponseWriter, r *http.Request) {
	userID, role, ok := h.decodeRoleRequest(w, r)
	if !ok {
		return
	}
	if err := h.DB.GrantRole(r.Context(), userID, role); err != nil {
		http.Error(w, `{"error":"failed to grant role"}`, http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *MembersHandler) RevokeRole(w http.ResponseWriter, r *http.Request) {
	userID, role, ok := h.decodeRoleRequest(w, r)
	if !ok {
		return
	}
	if err := h.DB.RevokeRole(r.Context(), userID, role); err != nil {
		http.Error(w, `{"error":"failed to revoke role"}`, http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *MembersHandler) decodeRoleRequest(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, string, bool) {
	var req RoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return primitive.NilObjectID, "", false
	}
	if err := validate.Struct(&req); err != nil {
		http.Error(w, `{"error":"userId and role are required"}`, http.StatusBadRequest)
		return primitive.NilObjectID, "", false
	}
	if !models.IsValidRole(req.Role) {
		http.Error(w, `{"error":"role must be one of admin, staff, user"}`, http.StatusBadRequest)
		return primitive.NilObjectID, "", false
	}
	userID, err := primitive.ObjectIDFromHex(req.UserID)
	if err != nil {
		http.Error(w, `{"error":"invalid user id"}`, http.StatusBadRequest)
		return primitive.NilObjectID, "", false
	}
	return userID, req.Role, true
}
