package models

import (
	"time"

	"github.com/ukydev/smart-intersection/internal/geometry"
)

// VehicleFrame is the render-facing view of a vehicle for one tick.
type VehicleFrame struct {
	ID       uint64         `json:"id"`
	Position geometry.Point `json:"position"`
	Angle    float64        `json:"angle"`
	Lane     Lane           `json:"lane"`
	Size     *Size          `json:"size,omitempty"`
	Asset    int            `json:"asset"`
	Waiting  bool           `json:"waiting"`
}

// Frame is everything a renderer needs to draw one tick.
type Frame struct {
	RunID      string         `json:"run_id"`
	Tick       uint64         `json:"tick"`
	Timestamp  time.Time      `json:"timestamp"`
	CloseCalls int64          `json:"close_calls"`
	Vehicles   []VehicleFrame `json:"vehicles"`
}

// FrameOf projects a vehicle onto its render-facing fields.
func FrameOf(v Vehicle) VehicleFrame {
	return VehicleFrame{
		ID:       v.ID,
		Position: v.Position,
		Angle:    v.Angle,
		Lane:     v.Lane,
		Size:     v.Size,
		Asset:    v.Asset,
		Waiting:  v.Waiting,
	}
}
