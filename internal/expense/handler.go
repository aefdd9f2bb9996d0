package expense

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/finledger/groupledger/internal/expense/split"
	"github.com/finledger/groupledger/internal/group"
	"github.com/finledger/groupledger/pkg/middleware"
	"github.com/finledger/groupledger/pkg/response"
)

// Handler handles HTTP requests for expense operations
type Handler struct {
	service *Service
}

// NewHandler creates a new expense handler with service dependency injected
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for expense endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/split/equal", h.SplitEqual)
	r.Post("/split/percentage", h.SplitPercentage)
	r.Post("/split/custom", h.SplitCustomAmounts)
	r.Post("/split/itemized", h.SplitItemized)
	r.Get("/{id}", h.GetByID)
	r.Get("/group/{groupID}", h.ListByGroup)

	return r
}

// SplitEqual handles POST /expenses/split/equal
// @Summary      Split an expense equally
// @Description  Record an expense divided evenly across the group
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Param        request body EqualSplitRequest true "Equal split request"
// @Success      201 {object} response.APIResponse{data=SplitOutcome}
// @Failure      404 {object} response.APIResponse
// @Failure      422 {object} response.APIResponse
// @Router       /expenses/split/equal [post]
func (h *Handler) SplitEqual(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Missing authentication")
		return
	}

	var req EqualSplitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	outcome, err := h.service.SplitEqual(r.Context(), userID, &req)
	if err != nil {
		writeSplitError(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, outcome)
}

// SplitPercentage handles POST /expenses/split/percentage
// @Summary      Split an expense by percentages
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Param        request body PercentageSplitRequest true "Percentage split request"
// @Success      201 {object} response.APIResponse{data=SplitOutcome}
// @Failure      404 {object} response.APIResponse
// @Failure      422 {object} response.APIResponse
// @Router       /expenses/split/percentage [post]
func (h *Handler) SplitPercentage(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Missing authentication")
		return
	}

	var req PercentageSplitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	outcome, err := h.service.SplitPercentage(r.Context(), userID, &req)
	if err != nil {
		writeSplitError(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, outcome)
}

// SplitCustomAmounts handles POST /expenses/split/custom
// @Summary      Split an expense by custom amounts
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Param        request body CustomSplitRequest true "Custom amount split request"
// @Success      201 {object} response.APIResponse{data=SplitOutcome}
// @Failure      404 {object} response.APIResponse
// @Failure      422 {object} response.APIResponse
// @Router       /expenses/split/custom [post]
func (h *Handler) SplitCustomAmounts(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Missing authentication")
		return
	}

	var req CustomSplitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	outcome, err := h.service.SplitCustomAmounts(r.Context(), userID, &req)
	if err != nil {
		writeSplitError(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, outcome)
}

// SplitItemized handles POST /expenses/split/itemized
// @Summary      Split a receipt item by item
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Param        request body ItemizedSplitRequest true "Itemized split request"
// @Success      201 {object} response.APIResponse{data=SplitOutcome}
// @Failure      404 {object} response.APIResponse
// @Failure      422 {object} response.APIResponse
// @Router       /expenses/split/itemized [post]
func (h *Handler) SplitItemized(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Missing authentication")
		return
	}

	var req ItemizedSplitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	outcome, err := h.service.SplitItemized(r.Context(), userID, &req)
	if err != nil {
		writeSplitError(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, outcome)
}

// GetByID handles GET /expenses/{id}
// @Summary      Get an expense with its shares
// @Tags         expenses
// @Produce      json
// @Param        id path int true "Expense ID"
// @Success      200 {object} response.APIResponse{data=ExpenseResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /expenses/{id} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid expense ID")
		return
	}

	e, shares, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrExpenseNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to get expense")
		return
	}

	response.JSON(w, http.StatusOK, e.ToResponse(shares))
}

// ListByGroup handles GET /expenses/group/{groupID}
// @Summary      List a group's expenses
// @Tags         expenses
// @Produce      json
// @Param        groupID path int true "Group ID"
// @Param        page query int false "Page number"
// @Param        per_page query int false "Items per page"
// @Success      200 {object} response.APIResponse{data=[]ExpenseResponse}
// @Router       /expenses/group/{groupID} [get]
func (h *Handler) ListByGroup(w http.ResponseWriter, r *http.Request) {
	groupID, err := strconv.ParseInt(chi.URLParam(r, "groupID"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid group ID")
		return
	}
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))

	expenses, total, err := h.service.ListByGroup(r.Context(), groupID, page, perPage)
	if err != nil {
		response.InternalError(w, "Failed to list expenses")
		return
	}

	resp := make([]*ExpenseResponse, len(expenses))
	for i, e := range expenses {
		resp[i] = e.ToResponse(nil)
	}
	response.JSONWithMeta(w, http.StatusOK, resp, &response.Meta{
		Page:    page,
		PerPage: perPage,
		Total:   total,
	})
}

// writeSplitError maps domain errors from split operations onto the
// response envelope with specific error codes.
func writeSplitError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, group.ErrUserNotFound), errors.Is(err, group.ErrGroupNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, ErrMemberNotFound):
		response.Error(w, http.StatusNotFound, response.CodeMemberNotFound, err.Error())
	case errors.Is(err, group.ErrGroupHasNoMember), errors.Is(err, split.ErrNoMembers):
		response.UnprocessableEntity(w, response.CodeNoMembers, err.Error())
	case errors.Is(err, split.ErrInvalidPercentageSum), errors.Is(err, split.ErrPercentageOutOfRange):
		response.UnprocessableEntity(w, response.CodeInvalidPercentage, err.Error())
	case errors.Is(err, split.ErrAmountMismatch):
		response.UnprocessableEntity(w, response.CodeAmountMismatch, err.Error())
	case errors.Is(err, split.ErrNoItems):
		response.UnprocessableEntity(w, response.CodeNoItems, err.Error())
	case errors.Is(err, split.ErrUnsupportedDefaultSplit):
		response.UnprocessableEntity(w, response.CodeUnsupportedSplit, err.Error())
	case errors.Is(err, split.ErrNoShares), errors.Is(err, split.ErrNegativeAmount):
		response.BadRequest(w, err.Error())
	case errors.Is(err, ErrPersistenceFailed):
		response.Error(w, http.StatusInternalServerError, response.CodePersistenceFailed, "Failed to record expense")
	default:
		response.InternalError(w, "Failed to record expense")
	}
}
