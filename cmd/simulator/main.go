package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ukydev/smart-intersection/internal/models"
	"github.com/ukydev/smart-intersection/internal/spawn"
)

var errCooldown = errors.New("server spawn cooldown active")

var authToken string

var httpClient = &http.Client{Timeout: 10 * time.Second}

func authorizedRequest(method, url string, body *bytes.Buffer) (*http.Response, error) {
	if body == nil {
		body = &bytes.Buffer{}
	}
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if authToken != "" {
		req.Header.Set("Authorization", "Bearer "+authToken)
	}
	return httpClient.Do(req)
}

func login(apiURL, username, password string) (string, error) {
	data, err := json.Marshal(models.LoginRequest{Username: username, Password: password})
	if err != nil {
		return "", fmt.Errorf("failed to marshal login: %w", err)
	}
	resp, err := httpClient.Post(apiURL+"/auth/login", "application/json", bytes.NewBuffer(data))
	if err != nil {
		return "", fmt.Errorf("failed to log in: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("login failed with status: %d", resp.StatusCode)
	}
	var result models.LoginResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode login response: %w", err)
	}
	return result.Token, nil
}

func spawnVehicle(apiURL string, cmd spawn.Command) (models.Vehicle, error) {
	data, err := json.Marshal(map[string]string{"command": string(cmd)})
	if err != nil {
		return models.Vehicle{}, fmt.Errorf("failed to marshal spawn request: %w", err)
	}
	resp, err := authorizedRequest(http.MethodPost, apiURL+"/spawn", bytes.NewBuffer(data))
	if err != nil {
		return models.Vehicle{}, fmt.Errorf("failed to spawn vehicle: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusCreated:
	case http.StatusTooManyRequests:
		return models.Vehicle{}, errCooldown
	default:
		return models.Vehicle{}, fmt.Errorf("spawn failed with status: %d", resp.StatusCode)
	}

	var v models.Vehicle
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		return models.Vehicle{}, fmt.Errorf("failed to decode vehicle: %w", err)
	}
	return v, nil
}

func startAutoSpawn(apiURL string) error {
	resp, err := authorizedRequest(http.MethodPost, apiURL+"/autospawn", nil)
	if err != nil {
		return fmt.Errorf("failed to start auto spawn: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("auto spawn failed with status: %d", resp.StatusCode)
	}
	return nil
}

func fetchStats(apiURL string) (models.RunSummary, error) {
	req, err := http.NewRequest(http.MethodGet, apiURL+"/stats", nil)
	if err != nil {
		return models.RunSummary{}, err
	}
	if authToken != "" {
		req.Header.Set("Authorization", "Bearer "+authToken)
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return models.RunSummary{}, fmt.Errorf("failed to fetch stats: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return models.RunSummary{}, fmt.Errorf("stats failed with status: %d", resp.StatusCode)
	}

	var s models.RunSummary
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		return models.RunSummary{}, fmt.Errorf("failed to decode stats: %w", err)
	}
	return s, nil
}

// pickCommand returns a plane for every planeEvery-th spawn and a random
// ground command otherwise. planeEvery <= 0 disables planes.
func pickCommand(rng *rand.Rand, n, planeEvery int) spawn.Command {
	if planeEvery > 0 && n > 0 && n%planeEvery == 0 {
		return spawn.CommandAir
	}
	return spawn.GroundCommands[rng.Intn(len(spawn.GroundCommands))]
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
		log.WithFields(log.Fields{"key": key, "value": v}).Warn("Invalid duration, using default")
	}
	return def
}

func main() {
	apiURL := os.Getenv("API_BASE_URL")
	if apiURL == "" {
		apiURL = "http://localhost:8080/api"
	}

	authToken = os.Getenv("SIM_AUTH_TOKEN")
	if authToken == "" {
		token, err := login(apiURL, os.Getenv("SIM_USERNAME"), os.Getenv("SIM_PASSWORD"))
		if err != nil {
			log.WithError(err).Fatal("No SIM_AUTH_TOKEN and login failed")
		}
		authToken = token
	}

	interval := envDuration("SPAWN_INTERVAL", 400*time.Millisecond)
	duration := envDuration("SPAWN_DURATION", time.Minute)
	planeEvery := 0
	if v := os.Getenv("PLANE_EVERY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			planeEvery = n
		}
	}

	log.WithFields(log.Fields{
		"api_url":     apiURL,
		"interval":    interval,
		"duration":    duration,
		"plane_every": planeEvery,
	}).Info("Starting traffic generator")

	if os.Getenv("AUTO_SPAWN") == "true" {
		if err := startAutoSpawn(apiURL); err != nil {
			log.WithError(err).Error("Failed to start server-side auto spawn")
		}
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	tick := time.NewTicker(interval)
	defer tick.Stop()
	deadline := time.After(duration)

	sent, rejected := 0, 0
loop:
	for {
		select {
		case <-deadline:
			break loop
		case <-tick.C:
			cmd := pickCommand(rng, sent+rejected+1, planeEvery)
			v, err := spawnVehicle(apiURL, cmd)
			switch {
			case errors.Is(err, errCooldown):
				rejected++
				log.WithField("command", cmd).Debug("Spawn rejected by cooldown")
			case err != nil:
				log.WithError(err).Error("Failed to spawn vehicle")
			default:
				sent++
				log.WithFields(log.Fields{"vehicle_id": v.ID, "command": cmd, "lane": v.Lane}).Info("Spawned vehicle")
			}
		}
	}

	stats, err := fetchStats(apiURL)
	if err != nil {
		log.WithError(err).Error("Failed to fetch stats")
		return
	}
	log.WithFields(log.Fields{
		"sent":          sent,
		"rejected":      rejected,
		"total_spawned": stats.TotalSpawned,
		"finished":      stats.Finished,
		"max_travel":    stats.MaxTravel,
		"min_travel":    stats.MinTravel,
		"close_calls":   stats.CloseCalls,
	}).Info("Traffic generation completed")
}
