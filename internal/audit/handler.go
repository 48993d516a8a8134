package audit

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	auditDatamodel "github.com/nandasafiq/hospital-management/internal/core/datamodel/audit"
	"github.com/nandasafiq/hospital-management/internal/transport"
	"github.com/nandasafiq/hospital-management/pkg/logger"
)

type LogReader interface {
	ListRecent(ctx context.Context, limit int) ([]auditDatamodel.ActivityLog, error)
}

// Handler serves the activity-log view behind the can_view_logs permission.
type Handler struct {
	*transport.BaseHandler
	reader LogReader
}

func NewHandler(reader LogReader) *Handler {
	lg := logger.L()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		reader:      reader,
	}
}

func (h *Handler) ListLogs(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}

	rows, err := h.reader.ListRecent(r.Context(), limit)
	if err != nil {
		h.Logger.Error("list activity logs failed", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.WriteJSON(w, http.StatusOK, rows)
}
