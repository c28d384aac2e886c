package intersection

import (
	"github.com/ukydev/smart-intersection/internal/geometry"
	"github.com/ukydev/smart-intersection/internal/models"
)

// InBox reports whether v is inside the conflict zone.
func (p *Policy) InBox(v *models.Vehicle) bool {
	return p.Box.Contains(v.Position)
}

// carInFront reports whether a peer in the same direction and lane is ahead of
// v and closer than the following distance.
func (p *Policy) carInFront(v *models.Vehicle, peers []models.Vehicle) bool {
	for i := range peers {
		other := &peers[i]
		if other.ID == v.ID || other.Direction != v.Direction || other.Lane != v.Lane {
			continue
		}
		if geometry.Distance(v.Position, other.Position) < p.FollowingDistance &&
			ahead(v.Direction, other.Position.Sub(v.Position)) {
			return true
		}
	}
	return false
}

// ahead applies the direction-signed displacement test. Directions name the
// side of the canvas a vehicle comes from, so a north-bound arrival travels
// towards larger y.
func ahead(dir models.Direction, d geometry.Point) bool {
	switch dir {
	case models.North:
		return d.Y > 0
	case models.South:
		return d.Y < 0
	case models.East:
		return d.X < 0
	case models.West:
		return d.X > 0
	}
	return false
}

// admitInside decides whether a vehicle already in the box keeps moving. Only
// lower ids inside the box take precedence.
func (p *Policy) admitInside(v *models.Vehicle, peers []models.Vehicle) bool {
	for i := range peers {
		other := &peers[i]
		if other.ID != v.ID && other.ID < v.ID && p.InBox(other) && conflictsWith(v, other) {
			return false
		}
	}
	return true
}

// admitQueued decides whether a vehicle held outside the box may resume. It
// needs an empty box as far as lower ids are concerned and a clear gap to its
// leader. The last scan then looks at every vehicle in the box, whatever its id.
func (p *Policy) admitQueued(v *models.Vehicle, peers []models.Vehicle) bool {
	for i := range peers {
		other := &peers[i]
		if other.ID != v.ID && other.ID < v.ID && p.InBox(other) {
			return false
		}
	}
	if p.carInFront(v, peers) {
		return false
	}
	for i := range peers {
		other := &peers[i]
		if other.ID != v.ID && p.InBox(other) && conflictsWith(v, other) {
			return false
		}
	}
	return true
}
