package compose

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"

	"github.com/warung-io/backend-warung/internal/common"
)

// Handler exposes the composition endpoints.
type Handler struct {
	Svc      *Service
	Validate *validator.Validate
}

type queryRequest struct {
	Text string `json:"text" validate:"required,min=1,max=2000"`
}

type repeatRequest struct {
	OrderID string `json:"orderId" validate:"required,max=64"`
}

// FromQuery handles POST /catalogs/{catalogID}/compose/query.
func (h *Handler) FromQuery(w http.ResponseWriter, r *http.Request) {
	catalogID := strings.TrimSpace(chi.URLParam(r, "catalogID"))
	if catalogID == "" {
		common.JSONError(w, http.StatusBadRequest, common.CodeBadRequest, "catalog id is required", nil)
		return
	}
	var payload queryRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, common.CodeBadRequest, "invalid payload", nil)
		return
	}
	payload.Text = strings.TrimSpace(payload.Text)
	if err := h.validate(payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, common.CodeBadRequest, "text is required and must be at most 2000 characters", nil)
		return
	}

	result, err := h.Svc.ComposeFromQuery(r.Context(), catalogID, payload.Text)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": result})
}

// FromOrder handles POST /catalogs/{catalogID}/compose/repeat. The route is
// expected to sit behind authentication; orders are user-scoped.
func (h *Handler) FromOrder(w http.ResponseWriter, r *http.Request) {
	catalogID := strings.TrimSpace(chi.URLParam(r, "catalogID"))
	if catalogID == "" {
		common.JSONError(w, http.StatusBadRequest, common.CodeBadRequest, "catalog id is required", nil)
		return
	}
	var payload repeatRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, common.CodeBadRequest, "invalid payload", nil)
		return
	}
	payload.OrderID = strings.TrimSpace(payload.OrderID)
	if err := h.validate(payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, common.CodeBadRequest, "orderId is required", nil)
		return
	}

	result, err := h.Svc.ComposeFromOrder(r.Context(), catalogID, payload.OrderID)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": result})
}

func (h *Handler) validate(payload any) error {
	if h.Validate == nil {
		return nil
	}
	return h.Validate.Struct(payload)
}
