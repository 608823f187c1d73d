package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/wricardo/mcp-training/checkers/game/engine"
)

func createValidConfig(name string) *engine.GameConfig {
	return &engine.GameConfig{
		Name:        name,
		Description: "Test configuration",
		FirstTurn:   engine.Black,
		Locale:      "ru",
		Layout: []string{
			"........",
			"........",
			".b......",
			"........",
			"...w....",
			"........",
			"........",
			"........",
		},
	}
}

func writeJSON(t *testing.T, dir, filename string, config *engine.GameConfig) {
	t.Helper()
	data, err := json.Marshal(config)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, filename), data, 0644))
}

func writeYAML(t *testing.T, dir, filename string, config *engine.GameConfig) {
	t.Helper()
	data, err := yaml.Marshal(config)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, filename), data, 0644))
}

func TestNewManager(t *testing.T) {
	t.Run("missing directory", func(t *testing.T) {
		_, err := NewManager(filepath.Join(t.TempDir(), "nope"))
		assert.Error(t, err)
	})

	t.Run("empty directory falls back to the standard game", func(t *testing.T) {
		m, err := NewManager(t.TempDir())
		require.NoError(t, err)
		assert.Equal(t, engine.DefaultConfig(), m.GetDefault())
	})

	t.Run("classic is preferred", func(t *testing.T) {
		dir := t.TempDir()
		writeJSON(t, dir, "a_first.json", createValidConfig("first"))
		writeYAML(t, dir, "classic.yaml", createValidConfig("classic"))

		m, err := NewManager(dir)
		require.NoError(t, err)
		assert.Equal(t, "classic", m.GetDefault().Name)
	})

	t.Run("first valid config otherwise", func(t *testing.T) {
		dir := t.TempDir()
		writeJSON(t, dir, "drill.json", createValidConfig("drill"))

		m, err := NewManager(dir)
		require.NoError(t, err)
		assert.Equal(t, "drill", m.GetDefault().Name)
	})
}

func TestManager_LoadConfig(t *testing.T) {
	dir := t.TempDir()
	writeJSON(t, dir, "json_one.json", createValidConfig("json one"))
	writeYAML(t, dir, "yaml_one.yaml", createValidConfig("yaml one"))
	writeYAML(t, dir, "yml_one.yml", createValidConfig("yml one"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{"), 0644))
	invalid := createValidConfig("invalid")
	invalid.Layout = []string{"w"}
	writeJSON(t, dir, "invalid.json", invalid)

	m, err := NewManager(dir)
	require.NoError(t, err)

	tests := []struct {
		name     string
		load     string
		wantName string
		wantErr  error
	}{
		{name: "json by id", load: "json_one", wantName: "json one"},
		{name: "json by filename", load: "json_one.json", wantName: "json one"},
		{name: "yaml by id", load: "yaml_one", wantName: "yaml one"},
		{name: "yml by id", load: "yml_one", wantName: "yml one"},
		{name: "missing", load: "missing", wantErr: ErrConfigNotFound},
		{name: "path traversal", load: "../etc/passwd", wantErr: ErrConfigNotFound},
		{name: "unparseable", load: "broken", wantErr: ErrInvalidConfig},
		{name: "fails validation", load: "invalid", wantErr: ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config, err := m.LoadConfig(tt.load)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, config.Name)
			assert.Equal(t, engine.Black, config.FirstTurn)
			assert.Equal(t, "ru", config.Locale)
		})
	}
}

func TestManager_ListConfigs(t *testing.T) {
	dir := t.TempDir()
	writeJSON(t, dir, "zeta.json", createValidConfig("zeta"))
	writeYAML(t, dir, "alpha.yaml", createValidConfig("alpha"))
	writeJSON(t, dir, "standard.json", &engine.GameConfig{Name: "standard", Description: "start"})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.json"), 0755))

	m, err := NewManager(dir)
	require.NoError(t, err)

	configs, err := m.ListConfigs()
	require.NoError(t, err)
	require.Len(t, configs, 3)

	assert.Equal(t, "alpha", configs[0].ConfigID)
	assert.Equal(t, "alpha.yaml", configs[0].Filename)
	assert.True(t, configs[0].Custom)
	assert.Equal(t, engine.Black, configs[0].FirstTurn)

	assert.Equal(t, "standard", configs[1].ConfigID)
	assert.False(t, configs[1].Custom)
	assert.Equal(t, engine.White, configs[1].FirstTurn)

	assert.Equal(t, "zeta", configs[2].ConfigID)
}

func TestManager_SaveConfig(t *testing.T) {
	dir := t.TempDir()
	m, err := NewManager(dir)
	require.NoError(t, err)

	t.Run("json by default", func(t *testing.T) {
		require.NoError(t, m.SaveConfig("saved", createValidConfig("saved")))
		assert.FileExists(t, filepath.Join(dir, "saved.json"))

		require.NoError(t, m.RefreshCache())
		loaded, err := m.LoadConfig("saved")
		require.NoError(t, err)
		assert.Equal(t, createValidConfig("saved"), loaded)
	})

	t.Run("yaml by extension", func(t *testing.T) {
		require.NoError(t, m.SaveConfig("drill.yaml", createValidConfig("drill")))

		data, err := os.ReadFile(filepath.Join(dir, "drill.yaml"))
		require.NoError(t, err)
		assert.Contains(t, string(data), "first_turn: black")

		require.NoError(t, m.RefreshCache())
		loaded, err := m.LoadConfig("drill")
		require.NoError(t, err)
		assert.Equal(t, "drill", loaded.Name)
	})

	t.Run("invalid config is refused", func(t *testing.T) {
		bad := createValidConfig("bad")
		bad.Description = ""
		err := m.SaveConfig("bad", bad)
		assert.ErrorIs(t, err, ErrInvalidConfig)
		assert.NoFileExists(t, filepath.Join(dir, "bad.json"))
	})

	t.Run("names cannot escape the directory", func(t *testing.T) {
		err := m.SaveConfig("../escape", createValidConfig("escape"))
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})
}

func TestManager_SetDefault(t *testing.T) {
	dir := t.TempDir()
	writeJSON(t, dir, "drill.json", createValidConfig("drill"))
	writeJSON(t, dir, "other.json", createValidConfig("other"))

	m, err := NewManager(dir)
	require.NoError(t, err)

	require.NoError(t, m.SetDefault("other"))
	assert.Equal(t, "other", m.GetDefault().Name)
	assert.ErrorIs(t, m.SetDefault("missing"), ErrConfigNotFound)
}

func TestManager_CachingBehavior(t *testing.T) {
	dir := t.TempDir()
	writeJSON(t, dir, "cached.json", createValidConfig("before"))

	m, err := NewManager(dir)
	require.NoError(t, err)

	first, err := m.LoadConfig("cached")
	require.NoError(t, err)

	writeJSON(t, dir, "cached.json", createValidConfig("after"))

	second, err := m.LoadConfig("cached")
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, "before", second.Name)

	require.NoError(t, m.RefreshCache())
	third, err := m.LoadConfig("cached")
	require.NoError(t, err)
	assert.Equal(t, "after", third.Name)
}

func TestManager_ConcurrentAccess(t *testing.T) {
	dir := t.TempDir()
	writeJSON(t, dir, "classic.json", createValidConfig("classic"))

	m, err := NewManager(dir)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.LoadConfig("classic")
			assert.NoError(t, err)
			_, err = m.ListConfigs()
			assert.NoError(t, err)
			assert.NotNil(t, m.GetDefault())
		}()
	}
	wg.Wait()
}
