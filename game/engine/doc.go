// Package engine provides the checkers rule engine.
//
// The engine package implements:
//   - Board state: the 8x8 grid, side to move, piece counts, selection
//     and the classification map the renderer paints from
//   - Move generation for simple forward steps and two-step captures
//   - Multi-capture chains: after a capture the same piece must keep
//     capturing while further captures exist from its landing cell
//   - Turn alternation and win detection
//   - Starting positions and configuration loading (JSON or YAML)
//
// Core Types:
//
// Board owns all game facts and is only mutated through its methods.
// LegalMoves, EnumerateMoves, ClassifyDestination, ApplyMove and CheckWin
// are functions over a Board. The Engine interface, implemented by
// GameEngine, wraps a Board with the two-call protocol used by renderers.
//
// Usage:
//
//	eng := engine.NewEngineWithDefaults()
//
//	moves, err := eng.SelectPiece(engine.Position{Row: 5, Col: 0})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := eng.ChooseDestination(moves[0].To)
//	if err != nil {
//		log.Fatal(err)
//	}
//	if result.Outcome == engine.OutcomeChainContinues {
//		// the same side picks the next capture from result.Next
//	}
//
// Rules:
//
// Men move one cell diagonally forward (white toward row 0, black toward
// row 7) and capture by jumping an adjacent opposing piece in any of the
// four diagonal directions. There are no kings. Capturing is optional for
// the first jump of a turn but a started chain must be continued or ended
// by re-picking the moving piece. A side with no pieces left loses.
//
// The engine never blocks and has no internal synchronisation: exactly one
// caller drives a Board at a time.
package engine
