package catalog

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/warung-io/backend-warung/internal/common"
)

// Handler exposes read-only catalog endpoints.
type Handler struct {
	Svc *Service
}

// GetSnapshot handles GET /catalogs/{catalogID}/snapshot. It serves the same
// compact view the interpretation delegate receives, which makes delegate
// behaviour reproducible from the outside.
func (h *Handler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	catalogID := strings.TrimSpace(chi.URLParam(r, "catalogID"))
	if catalogID == "" {
		common.JSONError(w, http.StatusBadRequest, common.CodeBadRequest, "catalog id is required", nil)
		return
	}
	snap, err := h.Svc.Snapshot(r.Context(), catalogID)
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "failed to load catalog", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": snap})
}
