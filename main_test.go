package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/mcp-training/checkers/api"
	"github.com/wricardo/mcp-training/checkers/game/engine"
	"github.com/wricardo/mcp-training/checkers/game/session"
	"github.com/wricardo/mcp-training/checkers/transport/mcp"
)

func TestConstants(t *testing.T) {
	assert.Equal(t, "1.0.0", Version)
	assert.Equal(t, "Checkers Server", AppName)
}

func writeClassic(t *testing.T, dir string) {
	t.Helper()
	data, err := json.Marshal(engine.DefaultConfig())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "classic.json"), data, 0644))
}

func TestInitializeServices(t *testing.T) {
	dir := t.TempDir()
	writeClassic(t, dir)

	gameService, sessions, err := initializeServices(dir, zerolog.Nop())
	require.NoError(t, err)
	require.NotNil(t, gameService)
	require.NotNil(t, sessions)

	info, err := gameService.CreateSession(context.Background(), "classic")
	require.NoError(t, err)
	assert.Equal(t, 1, sessions.Count())
	assert.Equal(t, engine.White, info.GameState.Turn)
}

func TestInitializeServices_InvalidConfigDir(t *testing.T) {
	_, _, err := initializeServices("/non/existent/path", zerolog.Nop())
	assert.Error(t, err)
}

func TestInitializeServices_RepositoryConfigs(t *testing.T) {
	if _, err := os.Stat("configs"); os.IsNotExist(err) {
		t.Skip("Skipping test - configs directory not found")
	}

	gameService, _, err := initializeServices("configs", zerolog.Nop())
	require.NoError(t, err)

	configs, err := gameService.ListConfigs(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, configs)
}

func TestLoadSettings(t *testing.T) {
	t.Setenv("NGROK_ENABLED", "true")
	t.Setenv("NGROK_AUTHTOKEN", "")
	t.Setenv("NGROK_AUTH_TOKEN", "fallback-token")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("CLEANUP_INTERVAL", "")

	s, err := loadSettings()
	require.NoError(t, err)
	assert.True(t, s.NgrokEnabled)
	assert.Equal(t, "fallback-token", s.NgrokAuthToken)
	assert.Equal(t, 30*time.Minute, s.SessionTTL)
	assert.Equal(t, time.Hour, s.CleanupInterval)
}

func TestLoadSettings_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"malformed duration", "SESSION_TTL", "soon"},
		{"zero ttl", "SESSION_TTL", "0s"},
		{"negative interval", "CLEANUP_INTERVAL", "-1m"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			_, err := loadSettings()
			assert.Error(t, err)
		})
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer

	logger := newLogger(&buf, false)
	logger.Debug().Msg("hidden")
	logger.Info().Msg("visible")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "visible")

	buf.Reset()
	logger = newLogger(&buf, true)
	logger.Debug().Msg("detail")
	assert.Contains(t, buf.String(), "detail")
}

func TestFlagDefaults(t *testing.T) {
	app := newApp()

	flags := map[string]bool{}
	for _, f := range app.Flags {
		for _, name := range f.Names() {
			flags[name] = true
		}
	}
	for _, name := range []string{"port", "host", "config-dir", "debug", "ngrok", "ngrok-auth", "ngrok-domain"} {
		assert.True(t, flags[name], "missing flag %s", name)
	}

	var names []string
	for _, c := range app.Commands {
		names = append(names, c.Name)
	}
	assert.ElementsMatch(t, []string{"server", "stdio-mcp"}, names)
}

func TestSessionCleanupRoutine(t *testing.T) {
	manager := session.NewManager()
	_, err := manager.Create("old", engine.DefaultConfig())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sessionCleanupRoutine(ctx, manager, 10*time.Millisecond, time.Nanosecond)
		close(done)
	}()

	require.Eventually(t, func() bool { return manager.Count() == 0 }, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cleanup routine did not stop")
	}
}

func TestExternalAPIAvailable(t *testing.T) {
	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer healthy.Close()

	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer broken.Close()

	ctx := context.Background()
	assert.True(t, externalAPIAvailable(ctx, healthy.URL))
	assert.False(t, externalAPIAvailable(ctx, broken.URL))
	assert.False(t, externalAPIAvailable(ctx, "http://127.0.0.1:1"))
}

func TestMCPEndpoint(t *testing.T) {
	dir := t.TempDir()
	writeClassic(t, dir)

	gameService, _, err := initializeServices(dir, zerolog.Nop())
	require.NoError(t, err)

	apiServer := api.NewServer(gameService, nil, zerolog.Nop())
	router := newRouter(apiServer, mcp.NewClient("http://unused"))

	srv := httptest.NewServer(router)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/mcp")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

	body := `{"jsonrpc":"2.0","id":1,"method":"tools/list"}`
	resp, err = http.Post(srv.URL+"/mcp", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var reply struct {
		Result struct {
			Tools []struct {
				Name string `json:"name"`
			} `json:"tools"`
		} `json:"result"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&reply))

	var tools []string
	for _, tool := range reply.Result.Tools {
		tools = append(tools, tool.Name)
	}
	assert.Contains(t, tools, "click")
	assert.Contains(t, tools, "game_state")

	resp, err = http.Get(srv.URL + "/api/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
