package engine

import "testing"

func TestPawnsToPlaceForFirstTurnIsAlwaysOne(t *testing.T) {
	if got := pawnsToPlaceFor(1, 10); got != 1 {
		t.Fatalf("turn 1 should always place exactly one pawn, got %d", got)
	}
}

func TestPawnsToPlaceForLaterTurns(t *testing.T) {
	if got := pawnsToPlaceFor(2, 5); got != 2 {
		t.Fatalf("with >=2 available singles on a later turn, expected 2 pawns, got %d", got)
	}
	if got := pawnsToPlaceFor(2, 1); got != 1 {
		t.Fatalf("with exactly 1 available single, expected 1 pawn, got %d", got)
	}
	if got := pawnsToPlaceFor(2, 0); got != 0 {
		t.Fatalf("with no available singles, expected 0 pawns, got %d", got)
	}
}

func TestOrderedMovesEmptyBoardSafetyClampOnFirstTurn(t *testing.T) {
	cfg := DefaultConfig()
	b := NewBoard(11)
	moves := OrderedMoves(b, 1, ColorA, cfg)
	if len(moves) == 0 {
		t.Fatal("turn 1 on an empty 11x11 board should have legal interior singles available")
	}
	for _, m := range moves {
		if m.Len() != 1 {
			t.Fatalf("turn 1 should only ever produce single-placement moves, got %v", m)
		}
	}
}

func TestOrderedMovesThreeByThreeEmptyBoardHasNoMoves(t *testing.T) {
	cfg := DefaultConfig()
	b := NewBoard(3)
	moves := OrderedMoves(b, 1, ColorA, cfg)
	if len(moves) != 0 {
		t.Fatalf("a 3x3 board has no interior cells, so the empty-board safety clamp should leave no legal moves, got %v", moves)
	}
}

func TestOrderedDoublesExcludesNearPairs(t *testing.T) {
	cfg := DefaultConfig()
	singles := []Move{
		{Placements: []Placement{{Row: 5, Col: 5}}, Score: 10},
		{Placements: []Placement{{Row: 5, Col: 6}}, Score: 9}, // near the first
		{Placements: []Placement{{Row: 5, Col: 9}}, Score: 8}, // not near the first
	}
	doubles := orderedDoubles(singles, cfg)
	for _, m := range doubles {
		if m.Len() != 2 {
			continue
		}
		if Near(m.Placements[0].Row, m.Placements[0].Col, m.Placements[1].Row, m.Placements[1].Col) {
			t.Fatalf("a double move must never pair two near placements, got %v", m)
		}
	}
	if len(doubles) == 0 {
		t.Fatal("expected at least one legal non-near pairing")
	}
}

func TestOrderedDoublesFallsBackWhenNoPairInCandidateSlice(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CandidateSinglesLimit = 1
	singles := []Move{
		{Placements: []Placement{{Row: 5, Col: 5}}, Score: 10},
		{Placements: []Placement{{Row: 5, Col: 9}}, Score: 9},
	}
	doubles := orderedDoubles(singles, cfg)
	if len(doubles) != 1 {
		t.Fatalf("expected exactly one fallback pairing from outside the 1-candidate slice, got %v", doubles)
	}
	if doubles[0].Len() != 2 {
		t.Fatalf("fallback pairing should still be a double move, got %v", doubles[0])
	}
}

func TestOrderedDoublesFinalFallbackSingleton(t *testing.T) {
	cfg := DefaultConfig()
	singles := []Move{
		{Placements: []Placement{{Row: 5, Col: 5}}, Score: 10},
		{Placements: []Placement{{Row: 5, Col: 6}}, Score: 9}, // near the only other single
	}
	doubles := orderedDoubles(singles, cfg)
	if len(doubles) != 1 || doubles[0].Len() != 1 {
		t.Fatalf("with no legal pair anywhere, expected a single-placement fallback, got %v", doubles)
	}
}

func TestCountConversionsMatchesApplyMoveCaptureCount(t *testing.T) {
	b := NewBoard(11)
	b.Set(5, 7, Piece{Color: ColorB, Posture: PostureOld})
	b.Set(5, 8, Piece{Color: ColorB, Posture: PostureOld})
	b.Set(5, 9, Piece{Color: ColorA, Posture: PostureOld})

	move := NewMove(Placement{Row: 5, Col: 6})
	got := countConversions(b, move, ColorA)
	if got != 2 {
		t.Fatalf("countConversions = %d, want 2", got)
	}

	applied := ApplyMove(b, move, ColorA)
	captured := 0
	for _, rc := range []Placement{{Row: 5, Col: 7}, {Row: 5, Col: 8}} {
		if p, occ := applied.At(rc.Row, rc.Col); occ && p.Color == ColorA {
			captured++
		}
	}
	if captured != got {
		t.Fatalf("countConversions reported %d but ApplyMove actually converted %d", got, captured)
	}
}

func TestConversionMovesOnlyIncludesCapturingMoves(t *testing.T) {
	cfg := DefaultConfig()
	b := NewBoard(11)
	b.Set(5, 7, Piece{Color: ColorB, Posture: PostureOld})
	b.Set(5, 9, Piece{Color: ColorA, Posture: PostureOld})
	// An extra A piece away from the B line.
	b.Set(2, 2, Piece{Color: ColorA, Posture: PostureOld})

	moves := ConversionMoves(b, 5, ColorA, cfg)
	for _, m := range moves {
		if countConversions(b, m, ColorA) == 0 {
			t.Fatalf("ConversionMoves returned a non-capturing move: %v", m)
		}
	}

	for i := 1; i < len(moves); i++ {
		if moves[i].Score > moves[i-1].Score {
			t.Fatalf("ConversionMoves should be sorted by capture count descending: %v", moves)
		}
	}
}
