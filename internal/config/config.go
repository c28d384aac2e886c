// Package config reads the server settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/ukydev/smart-intersection/internal/intersection"
	"github.com/ukydev/smart-intersection/internal/sim"
)

// Config holds every tunable of the server and the simulation.
type Config struct {
	Port      string
	LogLevel  string
	LogFormat string

	TickInterval      time.Duration
	Workers           int
	FollowingDistance float64
	ApproachSpeed     float64
	BoxSpeed          float64
	AirSpeed          float64
	SpawnCooldown     time.Duration
	AutoSpawnDuration time.Duration

	MongoURI string
	MongoDB  string

	MQTTBroker   string
	MQTTTopic    string
	MQTTClientID string

	JWTSecret            string
	JWTExpiry            time.Duration
	OperatorUsername     string
	OperatorPasswordHash string
	RateLimit            int
}

// Load reads the given .env files (".env" when none are named) and then the
// environment. A missing file is not an error.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}
	return FromEnv(), nil
}

// FromEnv builds a Config from the current environment only.
func FromEnv() *Config {
	return &Config{
		Port:      str("PORT", "8080"),
		LogLevel:  str("LOG_LEVEL", "info"),
		LogFormat: str("LOG_FORMAT", "text"),

		TickInterval:      duration("TICK_INTERVAL", sim.DefaultTickInterval),
		Workers:           integer("WORKERS", 1),
		FollowingDistance: float("FOLLOWING_DISTANCE", intersection.DefaultFollowingDistance),
		ApproachSpeed:     float("APPROACH_SPEED", intersection.DefaultApproachSpeed),
		BoxSpeed:          float("BOX_SPEED", intersection.DefaultBoxSpeed),
		AirSpeed:          float("AIR_SPEED", intersection.DefaultAirSpeed),
		SpawnCooldown:     duration("SPAWN_COOLDOWN", sim.DefaultSpawnCooldown),
		AutoSpawnDuration: duration("AUTO_SPAWN_DURATION", sim.DefaultAutoSpawnDuration),

		MongoURI: os.Getenv("MONGO_URI"),
		MongoDB:  str("MONGO_DB", "intersection"),

		MQTTBroker:   os.Getenv("MQTT_BROKER"),
		MQTTTopic:    str("MQTT_TOPIC", "intersection"),
		MQTTClientID: str("MQTT_CLIENT_ID", "intersection-server"),

		JWTSecret:            str("JWT_SECRET", "default-secret-key-change-in-production"),
		JWTExpiry:            duration("JWT_EXPIRY", 24*time.Hour),
		OperatorUsername:     str("OPERATOR_USERNAME", "operator"),
		OperatorPasswordHash: os.Getenv("OPERATOR_PASSWORD_HASH"),
		RateLimit:            integer("RATE_LIMIT", 100),
	}
}

// Policy builds the intersection policy from the configured constants.
func (c *Config) Policy() *intersection.Policy {
	p := intersection.DefaultPolicy()
	p.FollowingDistance = c.FollowingDistance
	p.ApproachSpeed = c.ApproachSpeed
	p.BoxSpeed = c.BoxSpeed
	p.AirSpeed = c.AirSpeed
	return p
}

// SetupLogging configures the standard logrus logger.
func (c *Config) SetupLogging() {
	if c.LogFormat == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		log.WithField("value", c.LogLevel).Warn("Invalid LOG_LEVEL, using info")
		level = log.InfoLevel
	}
	log.SetLevel(level)
}

func str(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func integer(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		log.WithFields(log.Fields{"key": key, "value": v}).Warn("Invalid integer setting, using default")
		return def
	}
	return n
}

func float(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 {
		log.WithFields(log.Fields{"key": key, "value": v}).Warn("Invalid number setting, using default")
		return def
	}
	return f
}

// duration accepts Go durations ("250ms") and bare integers as milliseconds.
func duration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil && d >= 0 {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil && n >= 0 {
		return time.Duration(n) * time.Millisecond
	}
	log.WithFields(log.Fields{"key": key, "value": v}).Warn("Invalid duration setting, using default")
	return def
}
