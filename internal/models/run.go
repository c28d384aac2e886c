package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RunSummary holds the end-of-run statistics of one simulation session.
type RunSummary struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	RunID        string             `json:"run_id" bson:"run_id"`
	StartedAt    time.Time          `json:"started_at" bson:"started_at"`
	EndedAt      time.Time          `json:"ended_at" bson:"ended_at"`
	Ticks        uint64             `json:"ticks" bson:"ticks"`
	TotalSpawned uint64             `json:"total_spawned" bson:"total_spawned"`
	Finished     int                `json:"finished" bson:"finished"`
	Active       int                `json:"active" bson:"active"`
	MaxTravel    time.Duration      `json:"max_travel" bson:"max_travel"` // spawn to finish
	MinTravel    time.Duration      `json:"min_travel" bson:"min_travel"`
	MaxSpeed     float64            `json:"max_speed" bson:"max_speed"` // units per tick
	MinSpeed     float64            `json:"min_speed" bson:"min_speed"`
	CloseCalls   int64              `json:"close_calls" bson:"close_calls"`
	CreatedAt    time.Time          `json:"created_at" bson:"created_at"`
}
