package ui

import (
	"net/http"
)

func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Coverage.Stats(r.Context())
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}
	renderHTML(w, http.StatusOK, overviewPage(principalFromContext(r.Context()), overviewData{
		GleanMetrics:     stats.TotalGleanMetrics,
		LegacyMetrics:    stats.TotalLegacyMetrics,
		GleanCoveredTCs:  stats.GleanCoveredTCs,
		LegacyCoveredTCs: stats.LegacyCoveredTCs,
	}))
}
