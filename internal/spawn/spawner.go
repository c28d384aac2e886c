package spawn

import (
	"math/rand"
	"sync"
	"time"

	"github.com/ukydev/smart-intersection/internal/models"
)

// Assets lists the sprite names a renderer can draw. Vehicles only carry an
// index into the matching list.
type Assets struct {
	Cars   []string `json:"cars"`
	Planes []string `json:"planes"`
}

// DefaultAssets mirrors the sprites shipped with the desktop renderer.
var DefaultAssets = Assets{
	Cars:   []string{"Car.png", "Black_viper.png", "Police.png"},
	Planes: []string{"Blemheim.png", "Hawker.png"},
}

// Name returns the sprite for a vehicle, or "" if the index is out of range.
func (a Assets) Name(v models.Vehicle) string {
	pool := a.Cars
	if v.Lane == models.LaneAir {
		pool = a.Planes
	}
	if v.Asset < 0 || v.Asset >= len(pool) {
		return ""
	}
	return pool[v.Asset]
}

var groundLanes = []models.Lane{models.LaneStraight, models.LaneRight, models.LaneLeft}

// Spawner hands out vehicles with strictly increasing ids.
type Spawner struct {
	mu     sync.Mutex
	nextID uint64
	rng    *rand.Rand
	assets Assets
}

// NewSpawner creates a spawner drawing lanes and skins from rng. A nil rng
// is replaced by a time-seeded one.
func NewSpawner(rng *rand.Rand, assets Assets) *Spawner {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Spawner{rng: rng, assets: assets}
}

// Spawn builds the next vehicle for cmd. Ground commands take a uniformly
// random lane. Ids are only consumed on success.
func (s *Spawner) Spawn(cmd Command) (models.Vehicle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lane := models.LaneAir
	if cmd != CommandAir {
		lane = groundLanes[s.rng.Intn(len(groundLanes))]
	}
	return s.spawnLocked(cmd, lane)
}

// SpawnLane builds the next vehicle for cmd in a fixed lane.
func (s *Spawner) SpawnLane(cmd Command, lane models.Lane) (models.Vehicle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.spawnLocked(cmd, lane)
}

// RandomGround picks one of the four ground commands.
func (s *Spawner) RandomGround() Command {
	s.mu.Lock()
	defer s.mu.Unlock()
	return GroundCommands[s.rng.Intn(len(GroundCommands))]
}

// Spawned returns how many ids have been handed out.
func (s *Spawner) Spawned() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextID
}

func (s *Spawner) spawnLocked(cmd Command, lane models.Lane) (models.Vehicle, error) {
	t, err := Resolve(cmd, lane)
	if err != nil {
		return models.Vehicle{}, err
	}

	pool := s.assets.Cars
	if lane == models.LaneAir {
		pool = s.assets.Planes
	}
	asset := 0
	if len(pool) > 0 {
		asset = s.rng.Intn(len(pool))
	}

	v := models.Vehicle{
		ID:        s.nextID,
		Position:  t.Start,
		Speed:     t.Speed,
		Angle:     models.InitialHeading(t.Direction, lane),
		Lane:      lane,
		Direction: t.Direction,
		Waypoints: t.Waypoints,
		Size:      t.Size,
		Asset:     asset,
	}
	s.nextID++
	return v, nil
}
