package engine

// captureOffsets are the four two-step diagonal jumps, in evaluation order
var captureOffsets = [4]Position{
	{Row: -2, Col: -2},
	{Row: -2, Col: 2},
	{Row: 2, Col: -2},
	{Row: 2, Col: 2},
}

// LegalMoves lists the legal destinations of the piece on pos without
// touching the board. Simple moves are omitted while a chain is in progress.
// An empty or off-grid cell yields no moves.
func LegalMoves(b *Board, pos Position, chainInProgress bool) []Move {
	piece := b.PieceAt(pos)
	if piece == nil {
		return nil
	}

	var moves []Move

	if !chainInProgress {
		forward := piece.Color.Forward()
		for _, dCol := range []int{-1, 1} {
			to := pos.Offset(forward, dCol)
			if to.InBounds() && b.PieceAt(to) == nil {
				moves = append(moves, Move{Kind: SimpleMove, From: pos, To: to})
			}
		}
	}

	for _, off := range captureOffsets {
		to := pos.Offset(off.Row, off.Col)
		if !to.InBounds() || b.PieceAt(to) != nil {
			continue
		}
		mid := pos.Offset(off.Row/2, off.Col/2)
		victim := b.PieceAt(mid)
		if victim == nil || victim.Color == piece.Color {
			continue
		}
		captured := mid
		moves = append(moves, Move{Kind: CaptureMove, From: pos, To: to, Captured: &captured})
	}

	return moves
}

// HasCapture reports whether any move in the list is a capture
func HasCapture(moves []Move) bool {
	for _, m := range moves {
		if m.Kind == CaptureMove {
			return true
		}
	}
	return false
}

// EnumerateMoves computes the legal destinations of the piece on pos and
// tags the board for the renderer: the origin as selected, destinations as
// reachable-simple or reachable-capture, and jumped cells as endangered.
// The board is left awaiting a destination.
func EnumerateMoves(b *Board, pos Position, chainInProgress bool) []Move {
	if b.PieceAt(pos) == nil {
		return nil
	}

	moves := LegalMoves(b, pos, chainInProgress)

	b.SetSelection(pos)
	for _, m := range moves {
		switch m.Kind {
		case SimpleMove:
			b.Tag(m.To, TagSimple)
		case CaptureMove:
			b.Tag(m.To, TagCapture)
			b.Tag(*m.Captured, TagEndangered)
		}
	}
	b.SetAwaitingDestination(true)

	return moves
}

// ClassifyDestination decides what picking pos would mean for the pending move
func ClassifyDestination(b *Board, pos Position) Classification {
	switch {
	case b.HasTag(pos, TagSimple):
		return ClassSimple
	case b.HasTag(pos, TagCapture):
		return ClassCapture
	case b.HasTag(pos, TagSelected):
		return ClassAbort
	default:
		return ClassIllegal
	}
}

// CheckWin returns the winning side, or NoColor while both sides have pieces
func CheckWin(b *Board) Color {
	if b.WhiteCount() == 0 {
		return Black
	}
	if b.BlackCount() == 0 {
		return White
	}
	return NoColor
}

// ApplyMove resolves a destination pick for the piece selected on from.
//
// Simple moves relocate the piece and end the turn. Captures remove the
// jumped piece, relocate the mover and check for a win; if the landing cell
// offers further captures the chain continues with the same side to move,
// otherwise the turn ends. Picking the origin aborts: mid-chain that ends the
// turn, otherwise it only drops the selection. Anything else is illegal and
// leaves the game facts untouched.
//
// A finished game or a from that is not the current selection is rejected as
// illegal without any mutation.
func ApplyMove(b *Board, from, to Position) StepResult {
	sel, ok := b.Selection()
	if !ok || sel != from || CheckWin(b) != NoColor {
		return StepResult{Outcome: OutcomeIllegal, Winner: CheckWin(b)}
	}

	switch ClassifyDestination(b, to) {
	case ClassSimple:
		return applySimple(b, from, to)
	case ClassCapture:
		return applyCapture(b, from, to)
	case ClassAbort:
		return applyAbort(b)
	default:
		if !b.ChainInProgress() {
			b.ClearTags()
		}
		return StepResult{Outcome: OutcomeIllegal, Winner: NoColor}
	}
}

func applySimple(b *Board, from, to Position) StepResult {
	if _, err := b.MovePiece(from, to); err != nil {
		return StepResult{Outcome: OutcomeIllegal, Winner: NoColor}
	}
	b.ClearTags()
	endTurn(b)
	return StepResult{
		Outcome:   OutcomeMoved,
		Move:      &Move{Kind: SimpleMove, From: from, To: to},
		Winner:    NoColor,
		TurnEnded: true,
	}
}

func applyCapture(b *Board, from, to Position) StepResult {
	mid := Position{Row: (from.Row + to.Row) / 2, Col: (from.Col + to.Col) / 2}

	victim, err := b.Remove(mid)
	if err != nil {
		return StepResult{Outcome: OutcomeIllegal, Winner: NoColor}
	}
	if _, err := b.MovePiece(from, to); err != nil {
		return StepResult{Outcome: OutcomeIllegal, Winner: NoColor}
	}
	b.ClearTags()

	result := StepResult{
		Move:          &Move{Kind: CaptureMove, From: from, To: to, Captured: &mid},
		CapturedPiece: victim,
		Winner:        CheckWin(b),
	}

	if result.Winner == NoColor {
		next := EnumerateMoves(b, to, true)
		if HasCapture(next) {
			b.SetChainInProgress(true)
			result.Outcome = OutcomeChainContinues
			result.Next = next
			return result
		}
		b.ClearTags()
	}

	endTurn(b)
	result.Outcome = OutcomeTurnEnds
	result.TurnEnded = true
	return result
}

func applyAbort(b *Board) StepResult {
	chain := b.ChainInProgress()
	b.ClearTags()
	if chain {
		endTurn(b)
	}
	return StepResult{Outcome: OutcomeAborted, Winner: NoColor, TurnEnded: chain}
}

// endTurn closes the current move sequence and hands the move over
func endTurn(b *Board) {
	b.SetChainInProgress(false)
	b.SwitchTurn()
}
