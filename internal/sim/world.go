// Package sim drives the intersection: it owns the vehicle collection,
// advances every vehicle once per tick against a tick-start snapshot, retires
// finished vehicles and keeps the run statistics.
package sim

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/ukydev/smart-intersection/internal/intersection"
	"github.com/ukydev/smart-intersection/internal/models"
	"github.com/ukydev/smart-intersection/internal/spawn"
)

var ErrCooldown = errors.New("spawn cooldown active")

const (
	DefaultSpawnCooldown     = 250 * time.Millisecond
	DefaultAutoSpawnDuration = 60 * time.Second
)

// Options configures a World. Zero values fall back to defaults, except
// SpawnCooldown where zero disables the cooldown.
type Options struct {
	RunID             string
	Policy            *intersection.Policy
	Spawner           *spawn.Spawner
	Workers           int
	SpawnCooldown     time.Duration
	AutoSpawnDuration time.Duration
}

// TickResult describes what happened during one tick.
type TickResult struct {
	Tick     uint64
	Finished []uint64
	Spawned  []uint64
	Active   int
}

// World is the tick driver. All methods are safe for concurrent use; time is
// always passed in by the caller.
type World struct {
	mu sync.Mutex

	runID   string
	policy  *intersection.Policy
	spawner *spawn.Spawner
	workers int

	vehicles []models.Vehicle
	calls    intersection.CloseCalls
	tick     uint64

	startedAt  time.Time
	lastTickAt time.Time
	spawnedAt  map[uint64]time.Time
	travel     []time.Duration
	finished   int

	cooldown   time.Duration
	lastSpawn  time.Time
	hasSpawned bool

	autoActive   bool
	autoStart    time.Time
	autoDuration time.Duration
}

// NewWorld creates an empty world whose run starts at now.
func NewWorld(opts Options, now time.Time) *World {
	if opts.RunID == "" {
		opts.RunID = uuid.NewString()
	}
	if opts.Policy == nil {
		opts.Policy = intersection.DefaultPolicy()
	}
	if opts.Spawner == nil {
		opts.Spawner = spawn.NewSpawner(nil, spawn.DefaultAssets)
	}
	if opts.AutoSpawnDuration <= 0 {
		opts.AutoSpawnDuration = DefaultAutoSpawnDuration
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}

	return &World{
		runID:        opts.RunID,
		policy:       opts.Policy,
		spawner:      opts.Spawner,
		workers:      opts.Workers,
		startedAt:    now,
		lastTickAt:   now,
		spawnedAt:    make(map[uint64]time.Time),
		cooldown:     opts.SpawnCooldown,
		autoDuration: opts.AutoSpawnDuration,
	}
}

// RunID identifies this run in frames and persisted summaries.
func (w *World) RunID() string {
	return w.runID
}

// Spawn adds a vehicle for cmd. Ground spawns are rate limited by the
// cooldown; aerial spawns are not and do not reset it.
func (w *World) Spawn(cmd spawn.Command, now time.Time) (models.Vehicle, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if cmd != spawn.CommandAir && w.coolingDown(now, w.cooldown) {
		return models.Vehicle{}, ErrCooldown
	}
	return w.spawnLocked(cmd, now)
}

// StartAutoSpawn starts spawning a random ground vehicle every two cooldowns
// for the configured duration. Restarting extends the window from now.
func (w *World) StartAutoSpawn(now time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.autoActive = true
	w.autoStart = now
	log.WithFields(log.Fields{"run_id": w.runID, "duration": w.autoDuration}).Info("Auto spawn started")
}

// Tick advances every vehicle once, retires finished ones and runs the
// auto-spawn program.
func (w *World) Tick(now time.Time) TickResult {
	w.mu.Lock()
	defer w.mu.Unlock()

	snap := intersection.Snapshot(w.vehicles)
	w.advance(snap)

	res := TickResult{Tick: w.tick}
	done := lo.Filter(w.vehicles, func(v models.Vehicle, _ int) bool { return v.Finished() })
	for _, v := range done {
		res.Finished = append(res.Finished, v.ID)
		w.finished++
		if start, ok := w.spawnedAt[v.ID]; ok {
			w.travel = append(w.travel, now.Sub(start))
			delete(w.spawnedAt, v.ID)
		}
		log.WithFields(log.Fields{"vehicle_id": v.ID, "lane": v.Lane, "direction": v.Direction}).Debug("Vehicle finished")
	}
	if len(done) > 0 {
		w.vehicles = lo.Reject(w.vehicles, func(v models.Vehicle, _ int) bool { return v.Finished() })
	}

	if w.autoActive {
		if now.Sub(w.autoStart) < w.autoDuration {
			if !w.coolingDown(now, 2*w.cooldown) {
				if v, err := w.spawnLocked(w.spawner.RandomGround(), now); err == nil {
					res.Spawned = append(res.Spawned, v.ID)
				}
			}
		} else {
			w.autoActive = false
			log.WithField("run_id", w.runID).Info("Auto spawn finished")
		}
	}

	w.tick++
	w.lastTickAt = now
	res.Active = len(w.vehicles)
	return res
}

// advance runs the per-vehicle step. With several workers the vehicles are
// processed in parallel; each goroutine writes only its own slot.
func (w *World) advance(snap []models.Vehicle) {
	if w.workers <= 1 || len(w.vehicles) < 2 {
		for i := range w.vehicles {
			w.policy.Advance(&w.vehicles[i], snap, &w.calls)
		}
		return
	}

	var g errgroup.Group
	g.SetLimit(w.workers)
	for i := range w.vehicles {
		v := &w.vehicles[i]
		g.Go(func() error {
			w.policy.Advance(v, snap, &w.calls)
			return nil
		})
	}
	_ = g.Wait()
}

func (w *World) coolingDown(now time.Time, gap time.Duration) bool {
	return w.hasSpawned && now.Sub(w.lastSpawn) < gap
}

func (w *World) spawnLocked(cmd spawn.Command, now time.Time) (models.Vehicle, error) {
	v, err := w.spawner.Spawn(cmd)
	if err != nil {
		return models.Vehicle{}, err
	}
	w.vehicles = append(w.vehicles, v)
	w.spawnedAt[v.ID] = now
	if cmd != spawn.CommandAir {
		w.lastSpawn = now
		w.hasSpawned = true
	}

	log.WithFields(log.Fields{
		"vehicle_id": v.ID,
		"lane":       v.Lane,
		"direction":  v.Direction,
	}).Debug("Spawned vehicle")

	// Hand out a copy so callers never alias the live waypoint queue.
	out := v
	out.Waypoints = append([]models.Waypoint(nil), v.Waypoints...)
	return out, nil
}

// Vehicles returns a copy of the live vehicles in id order.
func (w *World) Vehicles() []models.Vehicle {
	w.mu.Lock()
	defer w.mu.Unlock()
	return intersection.Snapshot(w.vehicles)
}

// Len is the number of live vehicles.
func (w *World) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.vehicles)
}

// CloseCalls is the number of following-distance episodes so far.
func (w *World) CloseCalls() int64 {
	return w.calls.Load()
}

// Frame returns the render view of the last completed tick.
func (w *World) Frame() models.Frame {
	w.mu.Lock()
	defer w.mu.Unlock()

	return models.Frame{
		RunID:      w.runID,
		Tick:       w.tick,
		Timestamp:  w.lastTickAt,
		CloseCalls: w.calls.Load(),
		Vehicles:   lo.Map(w.vehicles, func(v models.Vehicle, _ int) models.VehicleFrame { return models.FrameOf(v) }),
	}
}

// Summary returns the run statistics as of now.
func (w *World) Summary(now time.Time) models.RunSummary {
	w.mu.Lock()
	defer w.mu.Unlock()

	return models.RunSummary{
		RunID:        w.runID,
		StartedAt:    w.startedAt,
		EndedAt:      now,
		Ticks:        w.tick,
		TotalSpawned: w.spawner.Spawned(),
		Finished:     w.finished,
		Active:       len(w.vehicles),
		MaxTravel:    lo.Max(w.travel),
		MinTravel:    lo.Min(w.travel),
		MaxSpeed:     w.policy.BoxSpeed,
		MinSpeed:     w.policy.ApproachSpeed,
		CloseCalls:   w.calls.Load(),
	}
}
