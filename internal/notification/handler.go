package notification

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/finledger/groupledger/internal/group"
	"github.com/finledger/groupledger/pkg/middleware"
	"github.com/finledger/groupledger/pkg/response"
)

// Handler handles HTTP requests for wallet pass operations
type Handler struct {
	service *Service
}

// NewHandler creates a new notification handler with service dependency injected
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for notification endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/passes/group/{groupID}", h.IssuePasses)
	r.Get("/passes/group/{groupID}", h.ListByGroup)
	r.Post("/passes/receipt", h.IssueReceiptPass)

	return r
}

// ReceiptPassRequest is the body for one-off receipt passes
type ReceiptPassRequest struct {
	Title    string  `json:"title" binding:"required" example:"Corner Grocery 2025-06-01"`
	Summary  string  `json:"summary" binding:"required" example:"Weekly groceries"`
	Amount   float64 `json:"amount" binding:"required" example:"54.20"`
	Currency string  `json:"currency,omitempty" example:"USD"`
}

// IssuePasses handles POST /notifications/passes/group/{groupID}
// @Summary      Issue wallet passes for a group
// @Description  Build or refresh one balance pass per group member
// @Tags         notifications
// @Produce      json
// @Param        groupID path int true "Group ID"
// @Success      200 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Failure      502 {object} response.APIResponse
// @Router       /notifications/passes/group/{groupID} [post]
func (h *Handler) IssuePasses(w http.ResponseWriter, r *http.Request) {
	groupID, err := strconv.ParseInt(chi.URLParam(r, "groupID"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid group ID")
		return
	}

	urls, err := h.service.IssuePasses(r.Context(), groupID)
	if err != nil {
		switch {
		case errors.Is(err, group.ErrGroupNotFound), errors.Is(err, group.ErrGroupHasNoMember):
			response.NotFound(w, err.Error())
		default:
			// Partial issuance is still queued for retry.
			response.Error(w, http.StatusBadGateway, response.CodeNotificationFailed,
				"Pass issuance failed for one or more members")
		}
		return
	}

	response.JSON(w, http.StatusOK, urls)
}

// IssueReceiptPass handles POST /notifications/passes/receipt
// @Summary      Issue a one-off receipt pass
// @Tags         notifications
// @Accept       json
// @Produce      json
// @Param        request body ReceiptPassRequest true "Receipt pass request"
// @Success      201 {object} response.APIResponse
// @Failure      502 {object} response.APIResponse
// @Router       /notifications/passes/receipt [post]
func (h *Handler) IssueReceiptPass(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Missing authentication")
		return
	}

	var req ReceiptPassRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if req.Title == "" || req.Summary == "" {
		response.BadRequest(w, "title and summary are required")
		return
	}

	url, err := h.service.IssueReceiptPass(r.Context(), ReceiptData{
		UserID:   userID,
		Title:    req.Title,
		Summary:  req.Summary,
		Amount:   req.Amount,
		Currency: req.Currency,
	})
	if err != nil {
		response.Error(w, http.StatusBadGateway, response.CodeNotificationFailed, "Receipt pass issuance failed")
		return
	}
	response.JSON(w, http.StatusCreated, map[string]string{"save_url": url})
}

// ListByGroup handles GET /notifications/passes/group/{groupID}
// @Summary      List recorded passes for a group
// @Tags         notifications
// @Produce      json
// @Param        groupID path int true "Group ID"
// @Success      200 {object} response.APIResponse{data=[]WalletPass}
// @Router       /notifications/passes/group/{groupID} [get]
func (h *Handler) ListByGroup(w http.ResponseWriter, r *http.Request) {
	groupID, err := strconv.ParseInt(chi.URLParam(r, "groupID"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid group ID")
		return
	}

	passes, err := h.service.ListByGroup(r.Context(), groupID)
	if err != nil {
		response.InternalError(w, "Failed to list passes")
		return
	}
	response.JSON(w, http.StatusOK, passes)
}
