package notice

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
	"gopkg.in/yaml.v3"

	"github.com/wricardo/mcp-training/checkers/game/engine"
)

// Code identifies a user-facing notice. Codes are stable and double as
// catalog keys.
type Code string

const (
	IllegalDestination Code = "illegal_destination"
	OutOfBounds        Code = "out_of_bounds"
	WrongTurn          Code = "wrong_turn"
	EmptyCell          Code = "empty_cell"
	SelectionPinned    Code = "selection_pinned"
	NoSelection        Code = "no_selection"
	GameOver           Code = "game_over"
	SelectionCleared   Code = "selection_cleared"
	ChainContinues     Code = "chain_continues"
	WhiteToMove        Code = "white_to_move"
	BlackToMove        Code = "black_to_move"
	WhiteWins          Code = "white_wins"
	BlackWins          Code = "black_wins"
)

// AllCodes lists every code a locale file must translate
var AllCodes = []Code{
	IllegalDestination, OutOfBounds, WrongTurn, EmptyCell, SelectionPinned,
	NoSelection, GameOver, SelectionCleared, ChainContinues,
	WhiteToMove, BlackToMove, WhiteWins, BlackWins,
}

// DefaultLocale is used when a requested locale has no catalogue
const DefaultLocale = "en"

type localeFile struct {
	Locale   string            `yaml:"locale"`
	Messages map[string]string `yaml:"messages"`
}

//go:embed locales/*.yaml
var embeddedLocales embed.FS

var defaultTranslator = mustLoadEmbedded()

// Translator renders notice codes in the locales it was loaded with
type Translator struct {
	builder *catalog.Builder
	tags    []language.Tag
	matcher language.Matcher
}

// Default returns the translator built from the embedded catalogues
func Default() *Translator {
	return defaultTranslator
}

func mustLoadEmbedded() *Translator {
	t, err := LoadFromFS(embeddedLocales)
	if err != nil {
		panic(fmt.Sprintf("load embedded notice catalogues: %v", err))
	}
	return t
}

// LoadFromFS reads every locales/*.yaml file from fsys. Each file must
// translate every code in AllCodes.
func LoadFromFS(fsys fs.FS) (*Translator, error) {
	paths, err := fs.Glob(fsys, "locales/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("glob locale catalogues: %w", err)
	}
	if len(paths) == 0 {
		return nil, errors.New("no locale catalogues found")
	}
	sort.Strings(paths)

	t := &Translator{builder: catalog.NewBuilder(catalog.Fallback(language.English))}

	for _, p := range paths {
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("read catalogue %s: %w", p, err)
		}

		var file localeFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("parse catalogue %s: %w", p, err)
		}

		want := strings.TrimSuffix(path.Base(p), path.Ext(p))
		if file.Locale != want {
			return nil, fmt.Errorf("catalogue %s: locale %q must match file name %q", p, file.Locale, want)
		}

		tag, err := language.Parse(file.Locale)
		if err != nil {
			return nil, fmt.Errorf("catalogue %s: %w", p, err)
		}

		for _, code := range AllCodes {
			msg, ok := file.Messages[string(code)]
			if !ok || msg == "" {
				return nil, fmt.Errorf("catalogue %s: missing message %q", p, code)
			}
			if err := t.builder.SetString(tag, string(code), msg); err != nil {
				return nil, fmt.Errorf("catalogue %s: %w", p, err)
			}
		}

		t.tags = append(t.tags, tag)
	}

	// the default locale goes first so the matcher falls back to it
	sort.SliceStable(t.tags, func(i, j int) bool {
		return t.tags[i].String() == DefaultLocale && t.tags[j].String() != DefaultLocale
	})
	t.matcher = language.NewMatcher(t.tags)

	return t, nil
}

// Locales returns the locales this translator can render
func (t *Translator) Locales() []string {
	out := make([]string, 0, len(t.tags))
	for _, tag := range t.tags {
		out = append(out, tag.String())
	}
	return out
}

// Message renders code in the closest supported locale
func (t *Translator) Message(locale string, code Code) string {
	tag := t.match(locale)
	return message.NewPrinter(tag, message.Catalog(t.builder)).Sprintf(string(code))
}

func (t *Translator) match(locale string) language.Tag {
	if locale == "" {
		locale = DefaultLocale
	}
	_, idx, _ := t.matcher.Match(language.Make(locale))
	return t.tags[idx]
}

// ForError maps an engine rejection to its notice code. Unknown errors map
// to the empty code.
func ForError(err error) Code {
	switch {
	case errors.Is(err, engine.ErrGameOver):
		return GameOver
	case errors.Is(err, engine.ErrOutOfBounds):
		return OutOfBounds
	case errors.Is(err, engine.ErrSelectionPinned):
		return SelectionPinned
	case errors.Is(err, engine.ErrEmptyCell):
		return EmptyCell
	case errors.Is(err, engine.ErrWrongTurn):
		return WrongTurn
	case errors.Is(err, engine.ErrNoSelection):
		return NoSelection
	default:
		return ""
	}
}

// ForStep picks the notice to show after a destination pick. A winner
// takes precedence over the step outcome.
func ForStep(result *engine.StepResult, turn engine.Color) Code {
	if result == nil {
		return ""
	}
	if code := ForWinner(result.Winner); code != "" {
		return code
	}
	switch result.Outcome {
	case engine.OutcomeIllegal:
		return IllegalDestination
	case engine.OutcomeChainContinues:
		return ChainContinues
	case engine.OutcomeAborted:
		if !result.TurnEnded {
			return SelectionCleared
		}
	}
	return ForTurn(turn)
}

// ForWinner returns the win announcement for color, or the empty code
func ForWinner(color engine.Color) Code {
	switch color {
	case engine.White:
		return WhiteWins
	case engine.Black:
		return BlackWins
	default:
		return ""
	}
}

// ForTurn returns the side-to-move notice
func ForTurn(color engine.Color) Code {
	if color == engine.Black {
		return BlackToMove
	}
	return WhiteToMove
}
