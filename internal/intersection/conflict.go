package intersection

import "github.com/ukydev/smart-intersection/internal/models"

// Conflicts reports whether two (direction, lane) pairs may not occupy the box
// at the same time. Same-direction pairs never conflict: they are separated by
// the following-distance check instead. Opposing straight-through pairs are the
// only cross-direction exceptions. Unknown values conflict.
func Conflicts(dirA models.Direction, laneA models.Lane, dirB models.Direction, laneB models.Lane) bool {
	if !dirA.IsValid() || !dirB.IsValid() || !laneA.IsValid() || !laneB.IsValid() {
		return true
	}
	if dirA == dirB {
		return false
	}
	if laneA == models.LaneStraight && laneB == models.LaneStraight && opposing(dirA, dirB) {
		return false
	}
	return true
}

func opposing(a, b models.Direction) bool {
	switch a {
	case models.North:
		return b == models.South
	case models.South:
		return b == models.North
	case models.East:
		return b == models.West
	case models.West:
		return b == models.East
	}
	return false
}

func conflictsWith(a, b *models.Vehicle) bool {
	if a.ID == b.ID {
		return false
	}
	return Conflicts(a.Direction, a.Lane, b.Direction, b.Lane)
}
