package models

import (
	"github.com/ukydev/smart-intersection/internal/geometry"
)

// Lane is the intended turning behaviour of a vehicle.
type Lane string

const (
	LaneStraight Lane = "straight"
	LaneRight    Lane = "right"
	LaneLeft     Lane = "left"
	LaneAir      Lane = "air"
)

// IsValid reports whether l is one of the known lanes.
func (l Lane) IsValid() bool {
	switch l {
	case LaneStraight, LaneRight, LaneLeft, LaneAir:
		return true
	default:
		return false
	}
}

// Exempt reports whether vehicles in this lane never yield, neither to a
// leader nor at the intersection box.
func (l Lane) Exempt() bool {
	return l == LaneRight || l == LaneAir
}

// Direction is the compass side a vehicle approaches from.
type Direction string

const (
	North Direction = "north"
	South Direction = "south"
	East  Direction = "east"
	West  Direction = "west"
)

// IsValid reports whether d is one of the four approaches.
func (d Direction) IsValid() bool {
	switch d {
	case North, South, East, West:
		return true
	default:
		return false
	}
}

// Waypoint is a path target with an optional heading applied on arrival.
type Waypoint struct {
	Target  geometry.Point `bson:"target" json:"target"`
	Heading *float64       `bson:"heading,omitempty" json:"heading,omitempty"`
}

// Size is the rendered footprint of a vehicle. It has no effect on motion.
type Size struct {
	W uint32 `bson:"w" json:"w"`
	H uint32 `bson:"h" json:"h"`
}

// Vehicle is one agent crossing the intersection.
type Vehicle struct {
	ID                 uint64         `bson:"id" json:"id"`
	Position           geometry.Point `bson:"position" json:"position"`
	Speed              float64        `bson:"speed" json:"speed"` // units per tick
	Angle              float64        `bson:"angle" json:"angle"` // degrees
	Lane               Lane           `bson:"lane" json:"lane"`
	Direction          Direction      `bson:"direction" json:"direction"`
	Waypoints          []Waypoint     `bson:"waypoints" json:"waypoints"`
	Waiting            bool           `bson:"waiting" json:"waiting"`
	CloseCallTriggered bool           `bson:"close_call_triggered" json:"close_call_triggered"`
	Size               *Size          `bson:"size,omitempty" json:"size,omitempty"`
	Asset              int            `bson:"asset" json:"asset"` // index into the renderer's asset table
}

// InitialHeading is the angle a freshly spawned vehicle faces.
func InitialHeading(d Direction, l Lane) float64 {
	if l == LaneAir {
		return 310
	}
	switch d {
	case South:
		return 360
	case North:
		return 180
	case East:
		return 270
	case West:
		return 90
	default:
		return 0
	}
}

// Finished reports whether the vehicle has consumed its whole path.
func (v *Vehicle) Finished() bool {
	return len(v.Waypoints) == 0
}

// Heading returns a pointer to a copy of deg, for building waypoints.
func Heading(deg float64) *float64 {
	return &deg
}
