package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ukydev/smart-intersection/internal/models"
	"github.com/ukydev/smart-intersection/internal/sim"
	"github.com/ukydev/smart-intersection/internal/spawn"
)

// Simulation is the part of sim.World the control API drives.
type Simulation interface {
	Spawn(cmd spawn.Command, now time.Time) (models.Vehicle, error)
	StartAutoSpawn(now time.Time)
	Frame() models.Frame
	Summary(now time.Time) models.RunSummary
}

// SpawnRequest is the body of POST /api/spawn.
type SpawnRequest struct {
	Command string `json:"command"`
}

// SimHandler exposes spawning and live state of the running simulation.
type SimHandler struct {
	sim Simulation
	now func() time.Time
}

// NewSimHandler creates a handler over s.
func NewSimHandler(s Simulation) *SimHandler {
	return &SimHandler{sim: s, now: time.Now}
}

// Spawn handles POST /api/spawn.
func (h *SimHandler) Spawn(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req SpawnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	cmd, err := spawn.ParseCommand(req.Command)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	v, err := h.sim.Spawn(cmd, h.now())
	switch {
	case errors.Is(err, sim.ErrCooldown):
		http.Error(w, "Spawn cooldown active", http.StatusTooManyRequests)
		return
	case err != nil:
		log.WithError(err).WithField("command", cmd).Error("Failed to spawn vehicle")
		http.Error(w, "Failed to spawn vehicle", http.StatusInternalServerError)
		return
	}

	log.WithFields(log.Fields{"vehicle_id": v.ID, "command": cmd, "lane": v.Lane}).Info("Spawned vehicle")
	writeJSON(w, http.StatusCreated, v)
}

// AutoSpawn handles POST /api/autospawn.
func (h *SimHandler) AutoSpawn(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h.sim.StartAutoSpawn(h.now())
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "auto spawn started"})
}

// Vehicles handles GET /api/vehicles with the last rendered frame.
func (h *SimHandler) Vehicles(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, h.sim.Frame())
}

// Stats handles GET /api/stats with the live run summary.
func (h *SimHandler) Stats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, h.sim.Summary(h.now()))
}
