// Package spawn turns coarse spawn commands into initial vehicle states.
package spawn

import (
	"errors"
	"fmt"

	"github.com/ukydev/smart-intersection/internal/geometry"
	"github.com/ukydev/smart-intersection/internal/models"
)

var (
	ErrUnknownCommand = errors.New("unknown spawn command")
	ErrNoTemplate     = errors.New("no template for lane")
)

// Command names the on-screen travel direction of a spawn request. A vehicle
// spawned with CommandLeft enters from the east edge and drives left.
type Command string

const (
	CommandLeft  Command = "left"
	CommandRight Command = "right"
	CommandUp    Command = "up"
	CommandDown  Command = "down"
	CommandAir   Command = "air"
)

// GroundCommands are the commands that take a random ground lane.
var GroundCommands = []Command{CommandLeft, CommandRight, CommandUp, CommandDown}

// ParseCommand validates a command received from outside.
func ParseCommand(s string) (Command, error) {
	c := Command(s)
	switch c {
	case CommandLeft, CommandRight, CommandUp, CommandDown, CommandAir:
		return c, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCommand, s)
}

// Template is the initial placement and path for one (command, lane) pair.
type Template struct {
	Direction models.Direction
	Lane      models.Lane
	Start     geometry.Point
	Waypoints []models.Waypoint
	Speed     float64
	Size      *models.Size
}

type key struct {
	cmd  Command
	lane models.Lane
}

func wp(x, y float64) models.Waypoint {
	return models.Waypoint{Target: geometry.Point{X: x, Y: y}}
}

func turn(x, y, heading float64) models.Waypoint {
	return models.Waypoint{Target: geometry.Point{X: x, Y: y}, Heading: models.Heading(heading)}
}

func pt(x, y float64) geometry.Point {
	return geometry.Point{X: x, Y: y}
}

// Every path ends on an off-screen point without a heading override.
var templates = map[key]Template{
	{CommandLeft, models.LaneStraight}: {Direction: models.East, Start: pt(1600, 510), Waypoints: []models.Waypoint{wp(-20, 510)}},
	{CommandLeft, models.LaneLeft}:     {Direction: models.East, Start: pt(1603, 570), Waypoints: []models.Waypoint{turn(773, 570, 180), wp(773, 1240)}},
	{CommandLeft, models.LaneRight}:    {Direction: models.East, Start: pt(1600, 450), Waypoints: []models.Waypoint{turn(950, 450, 360), wp(950, -40)}},

	{CommandRight, models.LaneStraight}: {Direction: models.West, Start: pt(0, 690), Waypoints: []models.Waypoint{wp(1620, 690)}},
	{CommandRight, models.LaneLeft}:     {Direction: models.West, Start: pt(0, 630), Waypoints: []models.Waypoint{turn(830, 630, 360), wp(830, -40)}},
	{CommandRight, models.LaneRight}:    {Direction: models.West, Start: pt(0, 750), Waypoints: []models.Waypoint{turn(650, 750, 180), wp(650, 1240)}},

	{CommandUp, models.LaneStraight}: {Direction: models.South, Start: pt(890, 1200), Waypoints: []models.Waypoint{wp(890, -20)}},
	{CommandUp, models.LaneLeft}:     {Direction: models.South, Start: pt(830, 1200), Waypoints: []models.Waypoint{turn(830, 570, 270), wp(-40, 570)}},
	{CommandUp, models.LaneRight}:    {Direction: models.South, Start: pt(950, 1200), Waypoints: []models.Waypoint{turn(950, 750, 90), wp(1640, 750)}},

	{CommandDown, models.LaneStraight}: {Direction: models.North, Start: pt(710, 0), Waypoints: []models.Waypoint{wp(710, 1220)}},
	{CommandDown, models.LaneLeft}:     {Direction: models.North, Start: pt(773, 0), Waypoints: []models.Waypoint{turn(773, 630, 90), wp(1640, 630)}},
	{CommandDown, models.LaneRight}:    {Direction: models.North, Start: pt(650, 0), Waypoints: []models.Waypoint{turn(650, 450, 270), wp(-40, 450)}},

	{CommandAir, models.LaneAir}: {Direction: models.East, Start: pt(1620, 1000), Waypoints: []models.Waypoint{wp(-20, 170)}, Speed: 4, Size: &models.Size{W: 120, H: 80}},
}

const groundSpeed = 5.0

// Resolve looks up the template for a command and lane. The returned
// waypoints are a fresh copy the caller may own.
func Resolve(cmd Command, lane models.Lane) (Template, error) {
	if _, err := ParseCommand(string(cmd)); err != nil {
		return Template{}, err
	}
	t, ok := templates[key{cmd, lane}]
	if !ok {
		return Template{}, fmt.Errorf("%w: %s/%s", ErrNoTemplate, cmd, lane)
	}
	t.Lane = lane
	if t.Speed == 0 {
		t.Speed = groundSpeed
	}
	t.Waypoints = append([]models.Waypoint(nil), t.Waypoints...)
	if t.Size != nil {
		size := *t.Size
		t.Size = &size
	}
	return t, nil
}
