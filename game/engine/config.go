package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"
)

// Supported notice locales
var SupportedLocales = []string{"en", "ru"}

// GameConfig describes a starting position and presentation preferences.
// An empty Layout means the standard starting position.
type GameConfig struct {
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description" yaml:"description"`
	Layout      []string `json:"layout,omitempty" yaml:"layout,omitempty"`
	FirstTurn   Color    `json:"first_turn,omitempty" yaml:"first_turn,omitempty"`
	Locale      string   `json:"locale,omitempty" yaml:"locale,omitempty"`
}

// DefaultConfig returns the standard game configuration
func DefaultConfig() *GameConfig {
	return &GameConfig{
		Name:        "classic",
		Description: "Standard 8x8 checkers starting position, white moves first",
		FirstTurn:   White,
		Locale:      "en",
	}
}

// StandardLayout renders the standard starting position as layout rows
func StandardLayout() []string {
	return LayoutOf(NewStandardBoard())
}

// LayoutOf renders the pieces of a board as layout rows
func LayoutOf(b *Board) []string {
	rows := make([]string, BoardSize)
	for row := 0; row < BoardSize; row++ {
		var sb strings.Builder
		for col := 0; col < BoardSize; col++ {
			switch p := b.PieceAt(Position{Row: row, Col: col}); {
			case p == nil:
				sb.WriteByte('.')
			case p.Color == White:
				sb.WriteByte('w')
			default:
				sb.WriteByte('b')
			}
		}
		rows[row] = sb.String()
	}
	return rows
}

// ValidateLayout checks layout dimensions, characters, parity and material.
// All problems are reported together.
func ValidateLayout(layout []string) error {
	var result *multierror.Error

	if len(layout) != BoardSize {
		return multierror.Append(result,
			fmt.Errorf("layout must have %d rows, got %d", BoardSize, len(layout))).ErrorOrNil()
	}

	white, black := 0, 0
	for row, line := range layout {
		if len(line) != BoardSize {
			result = multierror.Append(result,
				fmt.Errorf("row %d must have %d characters, got %d", row, BoardSize, len(line)))
			continue
		}
		for col, ch := range line {
			pos := Position{Row: row, Col: col}
			switch ch {
			case '.':
				continue
			case 'w':
				white++
			case 'b':
				black++
			default:
				result = multierror.Append(result,
					fmt.Errorf("invalid character '%c' at row %d, col %d", ch, row, col))
				continue
			}
			if !pos.Playable() {
				result = multierror.Append(result,
					fmt.Errorf("piece at %s is on a light cell", pos))
			}
		}
	}

	if white < 1 || white > StartingPieces {
		result = multierror.Append(result,
			fmt.Errorf("white must have between 1 and %d pieces, got %d", StartingPieces, white))
	}
	if black < 1 || black > StartingPieces {
		result = multierror.Append(result,
			fmt.Errorf("black must have between 1 and %d pieces, got %d", StartingPieces, black))
	}

	return result.ErrorOrNil()
}

// ValidateGameConfig validates a game configuration
func ValidateGameConfig(config *GameConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is nil")
	}

	var result *multierror.Error

	if config.Name == "" {
		result = multierror.Append(result, fmt.Errorf("name is required"))
	}
	if config.Description == "" {
		result = multierror.Append(result, fmt.Errorf("description is required"))
	}
	if config.FirstTurn != "" && config.FirstTurn != NoColor && !config.FirstTurn.Valid() {
		result = multierror.Append(result,
			fmt.Errorf("first_turn must be white or black, got %q", config.FirstTurn))
	}
	if config.Locale != "" && !supportedLocale(config.Locale) {
		result = multierror.Append(result,
			fmt.Errorf("locale must be one of %v, got %q", SupportedLocales, config.Locale))
	}
	if len(config.Layout) > 0 {
		if err := ValidateLayout(config.Layout); err != nil {
			result = multierror.Append(result, err)
		}
	}

	if err := result.ErrorOrNil(); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}
	return nil
}

func supportedLocale(locale string) bool {
	for _, l := range SupportedLocales {
		if l == locale {
			return true
		}
	}
	return false
}

// NewBoardFromConfig creates the starting board described by config
func NewBoardFromConfig(config *GameConfig) (*Board, error) {
	if config == nil || len(config.Layout) == 0 {
		b := NewStandardBoard()
		if config != nil {
			b.SetTurn(config.FirstTurn)
		}
		return b, nil
	}
	return NewBoardFromLayout(config.Layout, config.FirstTurn)
}

// IsConfigFile reports whether name has a supported config extension
func IsConfigFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}

// DecodeGameConfig parses config data, choosing the format by extension
func DecodeGameConfig(filename string, data []byte) (*GameConfig, error) {
	var config GameConfig
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse yaml config: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse json config: %w", err)
		}
	}
	return &config, nil
}

// LoadGameConfig loads and validates a game configuration file
func LoadGameConfig(filename string) (*GameConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	config, err := DecodeGameConfig(filename, data)
	if err != nil {
		return nil, err
	}

	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}
