// Package handlers serves rendered result charts.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/youn2G/markovitch-optimal-portfolio-gothamstyle/internal/modules/charts"
	"github.com/youn2G/markovitch-optimal-portfolio-gothamstyle/internal/modules/optimization"
)

// Handler handles chart API requests.
type Handler struct {
	optimizer *optimization.OptimizerService
	charts    *charts.Service
	log       zerolog.Logger
}

// NewHandler creates a new charts handler.
func NewHandler(optimizer *optimization.OptimizerService, chartService *charts.Service, log zerolog.Logger) *Handler {
	return &Handler{
		optimizer: optimizer,
		charts:    chartService,
		log:       log.With().Str("handler", "charts").Logger(),
	}
}

// RegisterRoutes registers chart routes on the router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/charts", func(r chi.Router) {
		r.Get("/frontier.png", h.Frontier)
		r.Get("/allocation.png", h.Allocation)
	})
}

// Frontier serves the efficient-frontier chart for the latest run.
func (h *Handler) Frontier(w http.ResponseWriter, r *http.Request) {
	result := h.optimizer.Latest()
	if result == nil {
		writeError(w, http.StatusNotFound, "no optimization run yet")
		return
	}

	img, err := h.charts.FrontierPNG(result)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to render frontier chart")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writePNG(w, img)
}

// Allocation serves the allocation chart for one of the selected optima.
// Query parameter "portfolio" selects max_sharpe (default) or min_variance.
func (h *Handler) Allocation(w http.ResponseWriter, r *http.Request) {
	result := h.optimizer.Latest()
	if result == nil {
		writeError(w, http.StatusNotFound, "no optimization run yet")
		return
	}

	which := r.URL.Query().Get("portfolio")
	if which == "" {
		which = "max_sharpe"
	}

	img, err := h.charts.AllocationPNG(result, which)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writePNG(w, img)
}

func writePNG(w http.ResponseWriter, img []byte) {
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(img)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
