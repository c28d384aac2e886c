package intersection

import "github.com/ukydev/smart-intersection/internal/models"

// Advance moves v forward by one tick.
//
// peers is the tick-start snapshot of every vehicle, v included; it is only
// read. v is the vehicle's live state and is the only thing written apart from
// calls, which is bumped once at the start of each following-distance episode.
// Advancing a finished vehicle does nothing.
func (p *Policy) Advance(v *models.Vehicle, peers []models.Vehicle, calls *CloseCalls) {
	if v.Finished() {
		return
	}

	if v.Lane.Exempt() {
		v.Waiting = false
	} else if p.carInFront(v, peers) {
		v.Speed = 0
		v.Waiting = true
		if !v.CloseCallTriggered {
			v.CloseCallTriggered = true
			calls.inc()
		}
		return
	} else {
		v.CloseCallTriggered = false
	}

	inBox := p.InBox(v)
	switch {
	case v.Lane == models.LaneAir:
		v.Speed = p.AirSpeed
	case inBox:
		v.Speed = p.BoxSpeed
	default:
		v.Speed = p.ApproachSpeed
	}

	if !v.Lane.Exempt() {
		if inBox {
			if !p.admitInside(v, peers) {
				v.Speed = 0
				v.Waiting = true
				return
			}
			v.Waiting = false
		} else if v.Waiting {
			if !p.admitQueued(v, peers) {
				v.Speed = 0
				return
			}
			v.Waiting = false
		}
	}

	followPath(v)
}

// followPath moves v towards its next waypoint, snapping onto it when it is
// within one step so the vehicle never overshoots.
func followPath(v *models.Vehicle) {
	target := v.Waypoints[0]
	d := target.Target.Sub(v.Position)
	dist := d.Len()

	if dist < v.Speed || dist == 0 {
		v.Position = target.Target
		if target.Heading != nil {
			v.Angle = *target.Heading
		}
		v.Waypoints = v.Waypoints[1:]
		return
	}

	v.Position = v.Position.Add(d.Scale(v.Speed / dist))
}

// Snapshot copies vehicles for use as the peer view of one tick. The copy
// shares waypoint backing arrays with the originals; Advance only ever
// reslices them, so the snapshot never observes a consumed waypoint.
func Snapshot(vehicles []models.Vehicle) []models.Vehicle {
	out := make([]models.Vehicle, len(vehicles))
	copy(out, vehicles)
	return out
}
