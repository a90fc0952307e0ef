package engine

// HistoryTable is the per-worker move-ordering heuristic of §4.5: an N×N
// table of nonnegative counters, bumped by depth² on a cutoff move and
// consulted to re-sort the move list before searching it. Cleared at init
// or when board size changes, per §5's per-worker private state.
//
// Grounded on the teacher's history-boost knobs (config.go's
// AiHistoryBoost, ai_scoring.go's recordHistory), simplified to the base
// spec's exact additive rule — the teacher's tunable multiplier and
// accompanying killer-move table are gomoku-specific move-ordering
// extensions the base spec keeps out of the required contract (§9 Open
// Question 3).
type HistoryTable struct {
	size    int
	weights []int
}

func NewHistoryTable(size int) *HistoryTable {
	return &HistoryTable{size: size, weights: make([]int, size*size)}
}

func (h *HistoryTable) Reset(size int) {
	if h.size != size {
		h.size = size
		h.weights = make([]int, size*size)
		return
	}
	for i := range h.weights {
		h.weights[i] = 0
	}
}

// Bump records a cutoff at the given search depth for a single placement.
func (h *HistoryTable) Bump(p Placement, depth int) {
	h.weights[p.Row*h.size+p.Col] += depth * depth
}

// Score returns a move's total history weight, summed across its
// placements, for use as a move-ordering tiebreaker (§4.5 step 4).
func (h *HistoryTable) Score(m Move) int {
	total := 0
	for _, p := range m.Placements {
		total += h.weights[p.Row*h.size+p.Col]
	}
	return total
}
