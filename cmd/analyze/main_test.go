package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/mcp-training/checkers/game/engine"
)

const skirmishYAML = `name: skirmish
description: One white man facing one black man
first_turn: white
locale: ru
layout:
  - "........"
  - "........"
  - "........"
  - "........"
  - "...b...."
  - "..w....."
  - "........"
  - "........"
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func writeConfig(t *testing.T, dir, name string, config *engine.GameConfig) string {
	t.Helper()
	data, err := json.Marshal(config)
	require.NoError(t, err)
	return writeFile(t, dir, name, string(data))
}

func pos(row, col int) engine.Position {
	return engine.Position{Row: row, Col: col}
}

func TestAnalyzeConfig_Standard(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "classic.json", engine.DefaultConfig())

	a, err := analyzeConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "classic.json", a.File)
	assert.Equal(t, "classic", a.Name)
	assert.Equal(t, engine.White, a.Turn)
	assert.Equal(t, 12, a.White)
	assert.Equal(t, 12, a.Black)
	assert.Len(t, a.Movable, 4)
	assert.Empty(t, a.Captures)
	assert.Empty(t, a.Endangered)
	assert.Equal(t, engine.NoColor, a.Winner)
	assert.False(t, a.Stuck())
	assert.NotEmpty(t, a.Board)
}

func TestAnalyzeConfig_Skirmish(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "skirmish.yaml", skirmishYAML)

	a, err := analyzeConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "ru", a.Locale)
	assert.Equal(t, 1, a.White)
	assert.Equal(t, 1, a.Black)
	assert.Equal(t, []engine.Position{pos(5, 2)}, a.Movable)

	require.Len(t, a.Captures, 1)
	assert.Equal(t, pos(5, 2), a.Captures[0].From)
	assert.Equal(t, pos(3, 4), a.Captures[0].To)
	assert.Equal(t, pos(4, 3), *a.Captures[0].Captured)

	assert.Equal(t, []engine.Position{pos(5, 2)}, a.Endangered)
}

func TestAnalyzeConfig_Stuck(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "stuck.json", &engine.GameConfig{
		Name:        "stuck",
		Description: "White has reached the far edge",
		FirstTurn:   engine.White,
		Layout: []string{
			".w......",
			"........",
			"........",
			"........",
			"........",
			"........",
			"........",
			"b.......",
		},
	})

	a, err := analyzeConfig(path)
	require.NoError(t, err)
	assert.Empty(t, a.Movable)
	assert.True(t, a.Stuck())
	assert.Equal(t, "en", a.Locale)
}

func TestAnalyzeConfig_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := analyzeConfig(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	bad := writeFile(t, dir, "bad.json", `{"name": "bad"`)
	_, err = analyzeConfig(bad)
	assert.Error(t, err)

	light := writeConfig(t, dir, "light.json", &engine.GameConfig{
		Name:        "light",
		Description: "Piece on a light cell",
		Layout: []string{
			"w.......",
			"........",
			"........",
			"........",
			"........",
			"........",
			"........",
			"b.......",
		},
	})
	_, err = analyzeConfig(light)
	assert.Error(t, err)
}

func TestConfigFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.yaml", skirmishYAML)
	writeConfig(t, dir, "a.json", engine.DefaultConfig())
	writeFile(t, dir, "notes.txt", "ignored")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.json"), 0755))

	files, err := configFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.json"),
		filepath.Join(dir, "b.yaml"),
	}, files)

	_, err = configFiles(filepath.Join(dir, "absent"))
	assert.Error(t, err)
}

func TestCommand_Text(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "skirmish.yaml", skirmishYAML)
	writeFile(t, dir, "broken.json", `{`)

	var buf bytes.Buffer
	err := newCommand(&buf).Run(context.Background(), []string{"analyze", "--dir", dir})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "=== Analyzing skirmish.yaml ===")
	assert.Contains(t, out, "Material: white 1, black 1")
	assert.Contains(t, out, "(5,2) -> (3,4) takes (4,3)")
	assert.Contains(t, out, "En prise: (5,2)")
	assert.Contains(t, out, "broken.json")
	assert.Contains(t, out, "Error:")
}

func TestCommand_JSON(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "classic.json", engine.DefaultConfig())

	var buf bytes.Buffer
	err := newCommand(&buf).Run(context.Background(), []string{"analyze", "--json", path})
	require.NoError(t, err)

	var reports []Analysis
	require.NoError(t, json.Unmarshal(buf.Bytes(), &reports))
	require.Len(t, reports, 1)
	assert.Equal(t, "classic", reports[0].Name)
	assert.Equal(t, 12, reports[0].White)
}

func TestCommand_MissingDir(t *testing.T) {
	var buf bytes.Buffer
	err := newCommand(&buf).Run(context.Background(), []string{"analyze", "--dir", filepath.Join(t.TempDir(), "nope")})
	assert.Error(t, err)
}
