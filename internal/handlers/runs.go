package handlers

import (
	"net/http"
	"strconv"

	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ukydev/smart-intersection/internal/db"
	"github.com/ukydev/smart-intersection/internal/models"
)

const maxRunsLimit = 100

// RunsHandler lists persisted run summaries.
type RunsHandler struct {
	runs db.RunCollection
}

// NewRunsHandler creates a handler; runs may be nil when persistence is off.
func NewRunsHandler(runs db.RunCollection) *RunsHandler {
	return &RunsHandler{runs: runs}
}

// List handles GET /api/runs?limit=N, newest first.
func (h *RunsHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if h.runs == nil {
		http.Error(w, "Run persistence is disabled", http.StatusServiceUnavailable)
		return
	}

	limit := int64(20)
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 1 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = lo.Clamp(n, 1, maxRunsLimit)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "started_at", Value: -1}}).
		SetLimit(limit)
	cursor, err := h.runs.FindRuns(r.Context(), bson.M{}, opts)
	if err != nil {
		log.WithError(err).Error("Failed to query runs")
		http.Error(w, "Failed to query runs", http.StatusInternalServerError)
		return
	}
	defer cursor.Close(r.Context())

	var runs []models.RunSummary
	if err := cursor.All(r.Context(), &runs); err != nil {
		log.WithError(err).Error("Failed to decode runs")
		http.Error(w, "Failed to decode runs", http.StatusInternalServerError)
		return
	}
	if runs == nil {
		runs = []models.RunSummary{}
	}
	writeJSON(w, http.StatusOK, runs)
}
