package balance

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/finledger/groupledger/internal/group"
	"github.com/finledger/groupledger/pkg/middleware"
	"github.com/finledger/groupledger/pkg/response"
)

// Handler handles HTTP requests for balance queries
type Handler struct {
	service *Service
}

// NewHandler creates a new balance handler with service dependency injected
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for balance endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.Summary)
	r.Get("/group/{groupID}", h.SummaryByGroupID)

	return r
}

// Summary handles GET /balances?group={name}
// @Summary      Group balance summary by group name
// @Description  Resolve the caller's group by name and return every member's balance
// @Tags         balances
// @Produce      json
// @Param        group query string true "Group name"
// @Success      200 {object} response.APIResponse{data=GroupSummary}
// @Failure      404 {object} response.APIResponse
// @Router       /balances [get]
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Missing authentication")
		return
	}
	groupName := r.URL.Query().Get("group")
	if groupName == "" {
		response.BadRequest(w, "group query parameter is required")
		return
	}

	summary, err := h.service.Summary(r.Context(), userID, groupName)
	if err != nil {
		writeBalanceError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, summary)
}

// SummaryByGroupID handles GET /balances/group/{groupID}
// @Summary      Group balance summary by group ID
// @Tags         balances
// @Produce      json
// @Param        groupID path int true "Group ID"
// @Success      200 {object} response.APIResponse{data=GroupSummary}
// @Failure      404 {object} response.APIResponse
// @Router       /balances/group/{groupID} [get]
func (h *Handler) SummaryByGroupID(w http.ResponseWriter, r *http.Request) {
	groupID, err := strconv.ParseInt(chi.URLParam(r, "groupID"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid group ID")
		return
	}

	summary, err := h.service.SummaryByGroupID(r.Context(), groupID)
	if err != nil {
		writeBalanceError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, summary)
}

func writeBalanceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, group.ErrUserNotFound), errors.Is(err, group.ErrGroupNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, group.ErrGroupHasNoMember):
		response.UnprocessableEntity(w, response.CodeNoMembers, err.Error())
	default:
		response.InternalError(w, "Failed to compute balances")
	}
}
