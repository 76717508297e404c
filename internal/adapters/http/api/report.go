package api

import (
	"fmt"
	"net/http"

	"github.com/okian/growthlens/internal/domain/types"
	"github.com/okian/growthlens/pkg/logger"
)

// ReportHandler serves the full report and single groups.
type ReportHandler struct {
	provider ReportProvider
	logger   logger.Logger
}

// NewReportHandler creates a new report handler.
func NewReportHandler(provider ReportProvider, l logger.Logger) *ReportHandler {
	return &ReportHandler{provider: provider, logger: l}
}

// HandleReport handles GET /report?top=N requests.
func (h *ReportHandler) HandleReport(w http.ResponseWriter, r *http.Request) {
	top, err := parseTop(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	rep, err := h.provider.Report(r.Context())
	if err != nil {
		h.fail(w, r, fmt.Errorf("%w: %w", ErrUnavailable, err))
		return
	}
	groups := make([]types.GroupReport, len(rep.Groups))
	for i, g := range rep.Groups {
		groups[i] = limitTags(g, top)
	}
	rep.Groups = groups
	writeJSON(w, http.StatusOK, rep)
}

// HandleGroup handles GET /report/{group}?top=N requests. The group name is
// matched after URL decoding, so "<2000" is requested as "%3C2000".
func (h *ReportHandler) HandleGroup(w http.ResponseWriter, r *http.Request) {
	top, err := parseTop(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	rep, err := h.provider.Report(r.Context())
	if err != nil {
		h.fail(w, r, fmt.Errorf("%w: %w", ErrUnavailable, err))
		return
	}
	name := r.PathValue("group")
	g, ok := rep.Group(name)
	if !ok {
		h.fail(w, r, fmt.Errorf("%w: %q", ErrGroupNotFound, name))
		return
	}
	writeJSON(w, http.StatusOK, limitTags(g, top))
}

func (h *ReportHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error(r.Context(), "report request failed",
			logger.String("path", r.URL.Path),
			logger.Error(err),
		)
	}
	writeError(w, status, code, err)
}
