package main

import (
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ukydev/smart-intersection/internal/models"
	"github.com/ukydev/smart-intersection/internal/spawn"
)

func withToken(t *testing.T, token string) {
	t.Helper()
	prev := authToken
	authToken = token
	t.Cleanup(func() { authToken = prev })
}

func TestLogin(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/login", r.URL.Path)
		var req models.LoginRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.Password != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(models.LoginResponse{Token: "tok", Role: models.RoleOperator})
	}))
	defer server.Close()

	token, err := login(server.URL+"/api", "operator", "secret")
	require.NoError(t, err)
	assert.Equal(t, "tok", token)

	_, err = login(server.URL+"/api", "operator", "wrong")
	assert.Error(t, err)
}

func TestSpawnVehicle(t *testing.T) {
	withToken(t, "tok")
	status := http.StatusCreated
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/spawn", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.WriteHeader(status)
		if status == http.StatusCreated {
			json.NewEncoder(w).Encode(models.Vehicle{ID: 9, Lane: models.LaneRight, Direction: models.South})
		}
	}))
	defer server.Close()

	v, err := spawnVehicle(server.URL+"/api", spawn.CommandUp)
	require.NoError(t, err)
	assert.Equal(t, uint64(9), v.ID)

	status = http.StatusTooManyRequests
	_, err = spawnVehicle(server.URL+"/api", spawn.CommandUp)
	assert.ErrorIs(t, err, errCooldown)

	status = http.StatusForbidden
	_, err = spawnVehicle(server.URL+"/api", spawn.CommandUp)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, errCooldown)
}

func TestStartAutoSpawn(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/autospawn", r.URL.Path)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	assert.NoError(t, startAutoSpawn(server.URL+"/api"))
}

func TestFetchStats(t *testing.T) {
	withToken(t, "tok")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(models.RunSummary{TotalSpawned: 30, Finished: 27, MaxTravel: 9 * time.Second})
	}))
	defer server.Close()

	s, err := fetchStats(server.URL + "/api")
	require.NoError(t, err)
	assert.Equal(t, uint64(30), s.TotalSpawned)
	assert.Equal(t, 9*time.Second, s.MaxTravel)
}

func TestPickCommand(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	assert.Equal(t, spawn.CommandAir, pickCommand(rng, 5, 5))
	assert.Equal(t, spawn.CommandAir, pickCommand(rng, 10, 5))
	assert.NotEqual(t, spawn.CommandAir, pickCommand(rng, 6, 5))

	for n := 1; n <= 50; n++ {
		assert.Contains(t, spawn.GroundCommands, pickCommand(rng, n, 0))
	}
}

func TestEnvDuration(t *testing.T) {
	t.Setenv("SPAWN_INTERVAL", "150ms")
	assert.Equal(t, 150*time.Millisecond, envDuration("SPAWN_INTERVAL", time.Second))

	t.Setenv("SPAWN_INTERVAL", "fast")
	assert.Equal(t, time.Second, envDuration("SPAWN_INTERVAL", time.Second))
}
