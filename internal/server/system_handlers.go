package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/youn2G/markovitch-optimal-portfolio-gothamstyle/internal/database"
)

// SystemHandlers handles system monitoring endpoints
type SystemHandlers struct {
	log         zerolog.Logger
	startupTime time.Time
	historyDB   *database.DB
	cacheDB     *database.DB
}

// NewSystemHandlers creates a new system handlers instance
func NewSystemHandlers(log zerolog.Logger, historyDB, cacheDB *database.DB) *SystemHandlers {
	return &SystemHandlers{
		log:         log.With().Str("component", "system_handlers").Logger(),
		startupTime: time.Now(),
		historyDB:   historyDB,
		cacheDB:     cacheDB,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status      string             `json:"status"` // "healthy" or "unhealthy"
	UptimeHours float64            `json:"uptime_hours"`
	CPUPercent  float64            `json:"cpu_percent"`
	RAMPercent  float64            `json:"ram_percent"`
	Databases   map[string]string  `json:"databases"`
}

// Health returns service health: database quick checks plus host stats
func (h *SystemHandlers) Health(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	databases := make(map[string]string, 2)

	check := func(name string, db *database.DB) {
		if db == nil {
			databases[name] = "not configured"
			return
		}
		if err := db.QuickCheck(r.Context()); err != nil {
			h.log.Error().Err(err).Str("db", name).Msg("Database quick check failed")
			databases[name] = "unhealthy: " + err.Error()
			status = "unhealthy"
			return
		}
		databases[name] = "ok"
	}
	check("history", h.historyDB)
	check("cache", h.cacheDB)

	cpuPercent, ramPercent := h.hostStats()

	response := HealthResponse{
		Status:      status,
		UptimeHours: time.Since(h.startupTime).Hours(),
		CPUPercent:  cpuPercent,
		RAMPercent:  ramPercent,
		Databases:   databases,
	}

	code := http.StatusOK
	if status != "healthy" {
		code = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(response)
}

// hostStats returns CPU and RAM usage percentages. A 100ms sampling window
// keeps the endpoint responsive for pollers.
func (h *SystemHandlers) hostStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}

	return cpuAvg, memStat.UsedPercent
}
