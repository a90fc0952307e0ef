package engine

import (
	"context"
	"testing"
)

// buildNearWinBoard returns a 5x5 board where color A has four of the five
// cells in column 2 already placed (border row 0 through preborder row 3),
// leaving (4,2) as a single placement that completes a top-to-bottom win.
func buildNearWinBoard() Board {
	b := NewBoard(5)
	for r := 0; r < 4; r++ {
		b.Set(r, 2, Piece{Color: ColorA, Posture: PostureOld})
	}
	return b
}

func TestSearchFindsAnImmediateWin(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BoardSize = 5
	w := NewWorker(cfg)
	b := buildNearWinBoard()

	value := w.Search(context.Background(), b, 1, -1e9, 1e9, 0, 1)
	if value != float64(cfg.WinScore) {
		t.Fatalf("Search should find the immediate winning move, got %v want %v", value, cfg.WinScore)
	}
}

func TestSearchIsDeterministicForTheSameInputs(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BoardSize = 5
	b := buildNearWinBoard()

	w1 := NewWorker(cfg)
	v1 := w1.Search(context.Background(), b, 2, -1e9, 1e9, 0, 1)

	w2 := NewWorker(cfg)
	v2 := w2.Search(context.Background(), b, 2, -1e9, 1e9, 0, 1)

	if v1 != v2 {
		t.Fatalf("two fresh workers searching the same position to the same depth should agree: %v vs %v", v1, v2)
	}
}

func TestSearchDoesNotPanicOnAnEmptyBoard(t *testing.T) {
	cfg := DefaultConfig()
	w := NewWorker(cfg)
	b := NewBoard(cfg.BoardSize)
	// turnCount=1 and a fully empty board: only interior squares are legal
	// and every root move is a single placement; Search must handle this
	// opening position without panicking.
	_ = w.Search(context.Background(), b, 3, -1e9, 1e9, 0, 1)
}

func TestQuiescenceStandPatBeatsBetaCutoff(t *testing.T) {
	cfg := DefaultConfig()
	w := NewWorker(cfg)
	b := NewBoard(11)
	b.Set(5, 5, Piece{Color: ColorA, Posture: PostureOld})
	b.Set(5, 6, Piece{Color: ColorA, Posture: PostureOld})

	// beta set below the stand-pat value for A's perspective forces an
	// immediate cutoff without expanding any conversion moves.
	got := w.Quiescence(context.Background(), b, 2, -1e9, 0, 0, 5)
	if got != 0 {
		t.Fatalf("stand-pat should fail high against a beta of 0, returning beta itself; got %v", got)
	}
}

func TestQuiescenceReturnsWinScoreOnAnAlreadyWonPosition(t *testing.T) {
	cfg := DefaultConfig()
	w := NewWorker(cfg)
	b := NewBoard(5)
	for r := 0; r < 5; r++ {
		b.Set(r, 2, Piece{Color: ColorA, Posture: PostureOld})
	}
	got := w.Quiescence(context.Background(), b, 2, -1e9, 1e9, 0, 5)
	if got != float64(cfg.WinScore) {
		t.Fatalf("Quiescence from A's own perspective on an A win should return +WinScore, got %v", got)
	}
}

func TestWorkerInitResetsStateForANewSearch(t *testing.T) {
	cfg := DefaultConfig()
	w := NewWorker(cfg)
	w.Stats.Nodes = 1000
	w.Hist.Bump(Placement{Row: 0, Col: 0}, 5)

	w.Init(cfg)
	if w.Stats.Nodes != 0 {
		t.Fatal("Init should reset search statistics")
	}
	if got := w.Hist.Score(NewMove(Placement{Row: 0, Col: 0})); got != 0 {
		t.Fatal("Init should reset the history table")
	}
}

func TestWorkerInitAlwaysClearsTTRegardlessOfFingerprint(t *testing.T) {
	cfg := DefaultConfig()
	w := NewWorker(cfg)
	w.TT.Store(123, 456, 4, 77, TTExact, NewMove(Placement{Row: 1, Col: 1}))

	// Same config: Init should keep using ConfigFingerprint to skip the
	// reallocation, but the entry must still be gone.
	w.Init(cfg)
	if _, ok := w.TT.Probe(123, 456); ok {
		t.Fatal("Init must clear stale TT entries even when the config fingerprint is unchanged")
	}

	w.TT.Store(123, 456, 4, 77, TTExact, NewMove(Placement{Row: 1, Col: 1}))
	cfg.PieceValue += 1 // changes ConfigFingerprint: old entries scored under the old weights are now wrong
	w.Init(cfg)
	if _, ok := w.TT.Probe(123, 456); ok {
		t.Fatal("Init must drop TT entries scored under a since-changed config")
	}
}
