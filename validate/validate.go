// Command validate provides a small CLI that validates checkers configuration
// files (JSON or YAML). It checks:
//   - File structure and required fields
//   - Layout dimensions, allowed characters (. w b) and dark-cell parity
//   - Material: between 1 and 12 men per side
//   - first_turn and locale values
//   - Playability: the side to move has at least one legal move
//   - Unique configuration names across the directory
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/mcp-training/checkers/game/engine"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Name   string
	Valid  bool
	Errors []string
}

func (r *ValidationResult) fail(msg string) {
	r.Valid = false
	r.Errors = append(r.Errors, msg)
}

// validationErrors flattens an aggregated validation error into messages
func validationErrors(err error) []string {
	var merr *multierror.Error
	if errors.As(err, &merr) {
		msgs := make([]string, 0, len(merr.Errors))
		for _, e := range merr.Errors {
			msgs = append(msgs, validationErrors(e)...)
		}
		return msgs
	}
	return []string{err.Error()}
}

// validateConfig loads and validates a single configuration file.
// It performs structural checks through the engine's validation, then a
// playability check on the starting position.
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.fail(fmt.Sprintf("Failed to read file: %v", err))
		return result
	}

	config, err := engine.DecodeGameConfig(filePath, data)
	if err != nil {
		result.fail(fmt.Sprintf("Invalid file: %v", err))
		return result
	}
	result.Name = config.Name

	if err := engine.ValidateGameConfig(config); err != nil {
		for _, msg := range validationErrors(err) {
			result.fail(msg)
		}
		return result
	}

	board, err := engine.NewBoardFromConfig(config)
	if err != nil {
		result.fail(fmt.Sprintf("Cannot build starting position: %v", err))
		return result
	}

	playability := validatePlayability(board)
	if !playability.Valid {
		result.Valid = false
	}
	result.Errors = append(result.Errors, playability.Errors...)

	// Add informational data
	if result.Valid {
		layout := "standard"
		if len(config.Layout) > 0 {
			layout = "custom"
		}
		locale := config.Locale
		if locale == "" {
			locale = "en"
		}
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Name: %s", config.Name))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Layout: %s", layout))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Material: white %d, black %d", board.WhiteCount(), board.BlackCount()))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ First turn: %s", board.Turn()))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Locale: %s", locale))
	}

	return result
}

// validatePlayability ensures the side to move can make a move from the
// starting position. Men stranded on their far edge can never move again
// and are reported as warnings.
func validatePlayability(board *engine.Board) ValidationResult {
	result := ValidationResult{
		Valid:  true,
		Errors: []string{},
	}

	turn := board.Turn()
	movable, captures := 0, 0
	for _, p := range board.Pieces(turn) {
		moves := engine.LegalMoves(board, p.Position, false)
		if len(moves) > 0 {
			movable++
		}
		if engine.HasCapture(moves) {
			captures++
		}
	}

	if movable == 0 {
		result.fail(fmt.Sprintf("Playability failure: %s moves first but has no legal move", turn))
		return result
	}

	for _, color := range []engine.Color{engine.White, engine.Black} {
		farEdge := 0
		if color == engine.Black {
			farEdge = engine.BoardSize - 1
		}
		for _, p := range board.Pieces(color) {
			if p.Position.Row == farEdge {
				result.Errors = append(result.Errors, fmt.Sprintf("⚠ Stranded: %s man at %s can never move", color, p.Position))
			}
		}
	}

	result.Errors = append(result.Errors, fmt.Sprintf("✓ Playability: %d %s pieces can move, %d can capture", movable, turn, captures))
	return result
}

// validateDir validates every config file in dir and also rejects
// duplicate configuration names. The returned error aggregates one entry per
// invalid file.
func validateDir(dir string) ([]ValidationResult, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("error finding config files: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && engine.IsConfigFile(entry.Name()) {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(files)

	return validateFiles(files)
}

func validateFiles(files []string) ([]ValidationResult, error) {
	var merr *multierror.Error
	results := make([]ValidationResult, 0, len(files))
	names := map[string]string{}

	for _, file := range files {
		result := validateConfig(file)

		if result.Name != "" {
			key := strings.ToLower(result.Name)
			if other, dup := names[key]; dup {
				result.fail(fmt.Sprintf("Duplicate name %q (also used by %s)", result.Name, other))
			} else {
				names[key] = result.File
			}
		}

		if !result.Valid {
			merr = multierror.Append(merr, fmt.Errorf("%s: %d problem(s)", result.File, countProblems(result)))
		}
		results = append(results, result)
	}

	return results, merr.ErrorOrNil()
}

func countProblems(r ValidationResult) int {
	n := 0
	for _, e := range r.Errors {
		if !strings.HasPrefix(e, "✓") && !strings.HasPrefix(e, "⚠") {
			n++
		}
	}
	return n
}

func printResult(w io.Writer, result ValidationResult) {
	fmt.Fprintf(w, "\n%s %s\n", strings.Repeat("=", 20), result.File)

	if result.Valid {
		fmt.Fprintln(w, "✅ VALID")
		for _, info := range result.Errors {
			fmt.Fprintln(w, "  "+info)
		}
		return
	}

	fmt.Fprintln(w, "❌ INVALID")
	for _, err := range result.Errors {
		if !strings.HasPrefix(err, "✓") {
			fmt.Fprintln(w, "  ❌ "+err)
		}
	}
}

func newCommand(w io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "Validate checkers configuration files",
		ArgsUsage: "[config files...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "dir",
				Aliases: []string{"d"},
				Value:   "configs",
				Usage:   "Directory validated when no files are given",
				Sources: cli.EnvVars("CONFIG_DIR"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			var (
				results []ValidationResult
				err     error
			)
			if cmd.Args().Len() > 0 {
				results, err = validateFiles(cmd.Args().Slice())
			} else {
				results, err = validateDir(cmd.String("dir"))
			}

			for _, result := range results {
				printResult(w, result)
			}

			fmt.Fprintf(w, "\n%s\n", strings.Repeat("=", 40))
			if err != nil {
				fmt.Fprintln(w, "❌ Some configurations have errors")
				return err
			}
			fmt.Fprintln(w, "✅ All configurations are valid!")
			return nil
		},
	}
}

// main validates the configs directory (or the files given as arguments),
// printing a concise report and exiting with non-zero status if any are
// invalid.
func main() {
	if err := newCommand(os.Stdout).Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
