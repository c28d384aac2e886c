// Package intersection implements per-vehicle motion and conflict avoidance
// at an unsignaled four-way crossing.
//
// A tick driver calls Policy.Advance once per vehicle per tick with a snapshot
// of every vehicle taken before the tick began. Advance mutates only the
// vehicle it is given; the close-call counter is the only shared write.
package intersection

import (
	"sync/atomic"

	"github.com/ukydev/smart-intersection/internal/geometry"
)

// Defaults match the 1600x1200 canvas the spawn templates are laid out on.
const (
	DefaultFollowingDistance = 60.0
	DefaultApproachSpeed     = 5.0
	DefaultBoxSpeed          = 8.0
	DefaultAirSpeed          = 10.5
)

// DefaultBox is the shared conflict zone in the middle of the canvas.
var DefaultBox = geometry.Rect{MinX: 600, MinY: 400, MaxX: 1000, MaxY: 800}

// Policy holds the tuning parameters of the crossing.
type Policy struct {
	Box               geometry.Rect
	FollowingDistance float64
	ApproachSpeed     float64 // ground speed outside the box
	BoxSpeed          float64 // ground speed inside the box
	AirSpeed          float64
}

// DefaultPolicy returns a policy with the stock tuning.
func DefaultPolicy() *Policy {
	return &Policy{
		Box:               DefaultBox,
		FollowingDistance: DefaultFollowingDistance,
		ApproachSpeed:     DefaultApproachSpeed,
		BoxSpeed:          DefaultBoxSpeed,
		AirSpeed:          DefaultAirSpeed,
	}
}

// CloseCalls counts following-distance episodes. Safe for concurrent use.
type CloseCalls struct {
	n atomic.Int64
}

func (c *CloseCalls) inc() {
	c.n.Add(1)
}

// Load returns the current count.
func (c *CloseCalls) Load() int64 {
	return c.n.Load()
}
