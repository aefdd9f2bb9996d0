package group

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/finledger/groupledger/pkg/middleware"
	"github.com/finledger/groupledger/pkg/response"
)

// Handler handles HTTP requests for group operations
type Handler struct {
	service *Service
}

// NewHandler creates a new group handler with service dependency injected
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for group endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Get("/", h.ListForUser)
	r.Get("/{id}", h.GetByID)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	r.Get("/{id}/members", h.ListMembers)
	r.Post("/{id}/members", h.AddMember)
	r.Delete("/{id}/members/{userID}", h.RemoveMember)

	return r
}

// Create handles POST /groups
// @Summary      Create a new group
// @Description  Create a group; the caller becomes its admin member
// @Tags         groups
// @Accept       json
// @Produce      json
// @Param        request body CreateGroupRequest true "Group creation request"
// @Success      201 {object} response.APIResponse{data=GroupResponse}
// @Failure      400 {object} response.APIResponse
// @Router       /groups [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Missing authentication")
		return
	}

	var req CreateGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	g, err := h.service.Create(r.Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmptyName):
			response.BadRequest(w, err.Error())
		case errors.Is(err, ErrUserNotFound):
			response.NotFound(w, err.Error())
		default:
			response.InternalError(w, "Failed to create group")
		}
		return
	}

	response.JSON(w, http.StatusCreated, g.ToResponse())
}

// ListForUser handles GET /groups
// @Summary      List the caller's groups
// @Tags         groups
// @Produce      json
// @Success      200 {object} response.APIResponse{data=[]GroupResponse}
// @Router       /groups [get]
func (h *Handler) ListForUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Missing authentication")
		return
	}

	groups, err := h.service.ListForUser(r.Context(), userID)
	if err != nil {
		response.InternalError(w, "Failed to list groups")
		return
	}

	resp := make([]*GroupResponse, len(groups))
	for i, g := range groups {
		resp[i] = g.ToResponse()
	}
	response.JSON(w, http.StatusOK, resp)
}

// GetByID handles GET /groups/{id}
// @Summary      Get group by ID
// @Tags         groups
// @Produce      json
// @Param        id path int true "Group ID"
// @Success      200 {object} response.APIResponse{data=GroupResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /groups/{id} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid group ID")
		return
	}

	g, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrGroupNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to get group")
		return
	}

	response.JSON(w, http.StatusOK, g.ToResponse())
}

// Update handles PUT /groups/{id}
// @Summary      Update a group
// @Tags         groups
// @Accept       json
// @Produce      json
// @Param        id path int true "Group ID"
// @Param        request body UpdateGroupRequest true "Group update request"
// @Success      200 {object} response.APIResponse{data=GroupResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /groups/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid group ID")
		return
	}

	var req UpdateGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	g, err := h.service.Update(r.Context(), id, &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmptyName):
			response.BadRequest(w, err.Error())
		case errors.Is(err, ErrGroupNotFound):
			response.NotFound(w, err.Error())
		default:
			response.InternalError(w, "Failed to update group")
		}
		return
	}

	response.JSON(w, http.StatusOK, g.ToResponse())
}

// Delete handles DELETE /groups/{id}
// @Summary      Delete a group
// @Tags         groups
// @Param        id path int true "Group ID"
// @Success      204 "No Content"
// @Failure      404 {object} response.APIResponse
// @Router       /groups/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid group ID")
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrGroupNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to delete group")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListMembers handles GET /groups/{id}/members
// @Summary      List group members
// @Tags         groups
// @Produce      json
// @Param        id path int true "Group ID"
// @Success      200 {object} response.APIResponse{data=[]MemberResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /groups/{id}/members [get]
func (h *Handler) ListMembers(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid group ID")
		return
	}

	members, err := h.service.Roster(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrGroupHasNoMember) {
			response.NotFound(w, "Group has no members")
			return
		}
		response.InternalError(w, "Failed to list members")
		return
	}

	resp := make([]*MemberResponse, len(members))
	for i, m := range members {
		resp[i] = m.ToResponse()
	}
	response.JSON(w, http.StatusOK, resp)
}

// AddMember handles POST /groups/{id}/members
// @Summary      Add a member to a group
// @Tags         groups
// @Accept       json
// @Produce      json
// @Param        id path int true "Group ID"
// @Param        request body AddMemberRequest true "Member addition request"
// @Success      201 {object} response.APIResponse{data=MemberResponse}
// @Failure      404 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /groups/{id}/members [post]
func (h *Handler) AddMember(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid group ID")
		return
	}

	var req AddMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	m, err := h.service.AddMember(r.Context(), id, &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrGroupNotFound), errors.Is(err, ErrUserNotFound):
			response.NotFound(w, err.Error())
		case errors.Is(err, ErrAlreadyAMember):
			response.Conflict(w, err.Error())
		default:
			response.InternalError(w, "Failed to add member")
		}
		return
	}

	response.JSON(w, http.StatusCreated, m.ToResponse())
}

// RemoveMember handles DELETE /groups/{id}/members/{userID}
// @Summary      Remove a member from a group
// @Tags         groups
// @Param        id path int true "Group ID"
// @Param        userID path int true "User ID"
// @Success      204 "No Content"
// @Failure      404 {object} response.APIResponse
// @Router       /groups/{id}/members/{userID} [delete]
func (h *Handler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid group ID")
		return
	}
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid user ID")
		return
	}

	if err := h.service.RemoveMember(r.Context(), id, userID); err != nil {
		if errors.Is(err, ErrNotAMember) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to remove member")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
