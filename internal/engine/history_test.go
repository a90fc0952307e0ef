package engine

import "testing"

func TestHistoryBumpAndScore(t *testing.T) {
	h := NewHistoryTable(11)
	p := Placement{Row: 3, Col: 4}
	h.Bump(p, 5)
	if got := h.Score(NewMove(p)); got != 25 {
		t.Fatalf("Score after one bump at depth 5 = %d, want 25 (5^2)", got)
	}
	h.Bump(p, 3)
	if got := h.Score(NewMove(p)); got != 34 {
		t.Fatalf("Score after a second bump at depth 3 = %d, want 34 (25+9)", got)
	}
}

func TestHistoryScoreSumsAcrossPlacements(t *testing.T) {
	h := NewHistoryTable(11)
	p1, p2 := Placement{Row: 0, Col: 0}, Placement{Row: 5, Col: 5}
	h.Bump(p1, 2)
	h.Bump(p2, 2)
	move := NewMove(p1, p2)
	if got := h.Score(move); got != 8 {
		t.Fatalf("Score over two placements = %d, want 8 (4+4)", got)
	}
}

func TestHistoryResetClearsWeightsAtSameSize(t *testing.T) {
	h := NewHistoryTable(11)
	p := Placement{Row: 1, Col: 1}
	h.Bump(p, 4)
	h.Reset(11)
	if got := h.Score(NewMove(p)); got != 0 {
		t.Fatalf("Score after Reset at the same size = %d, want 0", got)
	}
}

func TestHistoryResetReallocatesOnSizeChange(t *testing.T) {
	h := NewHistoryTable(5)
	h.Reset(11)
	if h.size != 11 || len(h.weights) != 11*11 {
		t.Fatalf("Reset with a new size should reallocate, got size=%d len=%d", h.size, len(h.weights))
	}
}
