// Command analyze prints quick, human-readable heuristics about checkers
// configuration files. For each starting position it summarizes material,
// which pieces of the side to move can go, which captures are available and
// which pieces are already en prise.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/mcp-training/checkers/game/engine"
)

// Analysis is the report for one configuration file
type Analysis struct {
	File        string            `json:"file"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Locale      string            `json:"locale"`
	Turn        engine.Color      `json:"turn"`
	White       int               `json:"white"`
	Black       int               `json:"black"`
	Movable     []engine.Position `json:"movable"`
	Captures    []engine.Move     `json:"captures"`
	Endangered  []engine.Position `json:"endangered"`
	Winner      engine.Color      `json:"winner"`
	Board       string            `json:"board"`
}

// Stuck reports a side to move with pieces but no legal move
func (a *Analysis) Stuck() bool {
	return a.Winner == engine.NoColor && len(a.Movable) == 0
}

func main() {
	if err := newCommand(os.Stdout).Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "analyze: %v\n", err)
		os.Exit(1)
	}
}

func newCommand(w io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Usage:     "Summarize checkers starting positions",
		ArgsUsage: "[config files...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "dir",
				Aliases: []string{"d"},
				Value:   "configs",
				Usage:   "Directory scanned when no files are given",
				Sources: cli.EnvVars("CONFIG_DIR"),
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print the analysis as JSON",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			files := cmd.Args().Slice()
			if len(files) == 0 {
				var err error
				files, err = configFiles(cmd.String("dir"))
				if err != nil {
					return err
				}
			}

			var reports []*Analysis
			for _, file := range files {
				a, err := analyzeConfig(file)
				if err != nil {
					fmt.Fprintf(w, "\n=== %s ===\nError: %v\n", file, err)
					continue
				}
				reports = append(reports, a)
			}

			if cmd.Bool("json") {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(reports)
			}
			for _, a := range reports {
				printAnalysis(w, a)
			}
			return nil
		},
	}
}

// configFiles lists supported config files in dir, sorted by name
func configFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read config directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !engine.IsConfigFile(entry.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}

func analyzeConfig(path string) (*Analysis, error) {
	config, err := engine.LoadGameConfig(path)
	if err != nil {
		return nil, err
	}

	eng, err := engine.NewEngine(config)
	if err != nil {
		return nil, err
	}

	white, black := eng.Counts()
	a := &Analysis{
		File:        filepath.Base(path),
		Name:        config.Name,
		Description: config.Description,
		Locale:      config.Locale,
		Turn:        eng.Turn(),
		White:       white,
		Black:       black,
		Movable:     eng.MovablePieces(),
		Winner:      eng.Winner(),
		Board:       engine.RenderASCII(eng.GetState()),
	}
	if a.Locale == "" {
		a.Locale = "en"
	}

	for _, pos := range a.Movable {
		for _, m := range eng.LegalMovesFor(pos) {
			if m.Kind == engine.CaptureMove {
				a.Captures = append(a.Captures, m)
			}
		}
	}
	a.Endangered = endangered(eng.CloneBoard())

	return a, nil
}

// endangered lists pieces of the side to move that the opponent could jump
// if it were its turn
func endangered(b *engine.Board) []engine.Position {
	opponent := b.Turn().Opponent()
	if !opponent.Valid() {
		return nil
	}

	seen := map[engine.Position]bool{}
	var result []engine.Position
	for _, p := range b.Pieces(opponent) {
		for _, m := range engine.LegalMoves(b, p.Position, false) {
			if m.Captured == nil || seen[*m.Captured] {
				continue
			}
			seen[*m.Captured] = true
			result = append(result, *m.Captured)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Row != result[j].Row {
			return result[i].Row < result[j].Row
		}
		return result[i].Col < result[j].Col
	})
	return result
}

func printAnalysis(w io.Writer, a *Analysis) {
	fmt.Fprintf(w, "\n=== Analyzing %s ===\n", a.File)
	fmt.Fprintf(w, "Name: %s\n", a.Name)
	fmt.Fprintf(w, "Locale: %s\n", a.Locale)
	fmt.Fprintf(w, "Material: white %d, black %d\n", a.White, a.Black)
	fmt.Fprintf(w, "To move: %s\n", a.Turn)
	fmt.Fprintln(w, a.Board)

	if a.Winner != engine.NoColor {
		fmt.Fprintf(w, "Position is already decided: %s wins\n", a.Winner)
		return
	}

	fmt.Fprintf(w, "Movable pieces (%d): %s\n", len(a.Movable), joinPositions(a.Movable))
	if a.Stuck() {
		fmt.Fprintf(w, "WARNING: %s has no legal move\n", a.Turn)
	}

	if len(a.Captures) > 0 {
		fmt.Fprintf(w, "Capture options (%d):\n", len(a.Captures))
		for _, m := range a.Captures {
			fmt.Fprintf(w, "  %s -> %s takes %s\n", m.From, m.To, *m.Captured)
		}
	} else {
		fmt.Fprintln(w, "Capture options: none")
	}

	if len(a.Endangered) > 0 {
		fmt.Fprintf(w, "En prise: %s\n", joinPositions(a.Endangered))
	}
}

func joinPositions(positions []engine.Position) string {
	if len(positions) == 0 {
		return "-"
	}
	parts := make([]string, len(positions))
	for i, p := range positions {
		parts[i] = p.String()
	}
	return strings.Join(parts, " ")
}
