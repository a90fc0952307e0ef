package engine

import "sort"

// OrderedMoves implements §4.3: enumerate and score legal 1- or 2-placement
// moves for colorK, best-first.
//
// Grounded on ai_scoring.go's collectCandidateMoves (enumerate all empty
// cells, score, cap to a limit) and orderCandidateMoves (sort descending);
// generalized from gomoku's threat scoring to the base spec's corner-
// penalty/contact-bonus scoring.
func OrderedMoves(b Board, turnCount int, colorK Color, cfg Config) []Move {
	singles := legalSingles(b, colorK, cfg)
	pawnsToPlace := pawnsToPlaceFor(turnCount, len(singles))
	if pawnsToPlace == 0 {
		return nil
	}
	if pawnsToPlace == 1 {
		sortMovesByScoreDesc(singles)
		return singles
	}
	return orderedDoubles(singles, cfg)
}

func pawnsToPlaceFor(turnCount, availableSingles int) int {
	if turnCount == 1 {
		return 1
	}
	if availableSingles >= 2 {
		return 2
	}
	return availableSingles
}

// legalSingles enumerates every empty-cell legal placement and scores it.
func legalSingles(b Board, colorK Color, cfg Config) []Move {
	n := b.Size()
	singles := make([]Move, 0, n*n/4)
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			if !IsLegalPlacement(b, r, c, nil) {
				continue
			}
			p := Placement{Row: r, Col: c}
			score := scorePlacement(b, p, colorK, cfg)
			singles = append(singles, Move{Placements: []Placement{p}, Score: score})
		}
	}
	return singles
}

func scorePlacement(b Board, p Placement, colorK Color, cfg Config) int {
	score := 0
	if b.Region(p.Row, p.Col) == RegionCorner {
		score -= cfg.CornerPlacementPenalty
	}
	for _, d := range compass8 {
		nr, nc := p.Row+d[0], p.Col+d[1]
		if !b.InBounds(nr, nc) {
			continue
		}
		neighbor, occ := b.At(nr, nc)
		if !occ {
			continue
		}
		if !colorK.IsAllyOrSelf(neighbor.Color) {
			score += cfg.ContactBonus
		}
	}
	return score
}

func sortMovesByScoreDesc(moves []Move) {
	sort.SliceStable(moves, func(i, j int) bool {
		return moves[i].Score > moves[j].Score
	})
}

func orderedDoubles(singles []Move, cfg Config) []Move {
	sortMovesByScoreDesc(singles)
	limit := cfg.CandidateSinglesLimit
	if limit > len(singles) {
		limit = len(singles)
	}
	candidates := singles[:limit]

	var doubles []Move
	for i := 0; i < len(candidates); i++ {
		for j := i + 1; j < len(candidates); j++ {
			p1 := candidates[i].Placements[0]
			p2 := candidates[j].Placements[0]
			m := Move{Placements: []Placement{p1, p2}, Score: candidates[i].Score + candidates[j].Score}
			if m.IsPairwiseNear() {
				continue
			}
			doubles = append(doubles, m)
		}
	}
	if len(doubles) > 0 {
		sortMovesByScoreDesc(doubles)
		return doubles
	}

	// Fallback (§4.3 step 6d): no non-near pair within the candidate slice,
	// but a non-near pair may exist elsewhere in the full singleton set.
	for i := 0; i < len(singles); i++ {
		for j := i + 1; j < len(singles); j++ {
			p1 := singles[i].Placements[0]
			p2 := singles[j].Placements[0]
			m := Move{Placements: []Placement{p1, p2}, Score: singles[i].Score + singles[j].Score}
			if m.IsPairwiseNear() {
				continue
			}
			return []Move{m}
		}
	}

	// Final fallback (§4.3 step 6e): no pair at all.
	if len(singles) > 0 {
		return []Move{singles[0]}
	}
	return nil
}

// countConversions mirrors ApplyMove's placement step (place every new
// piece first, then scan conversions placement-by-placement against the
// resulting board) without materializing the recolor, so quiescence can
// score a move's capture count before deciding to apply it.
func countConversions(b Board, m Move, colorK Color) int {
	scratch := b.Clone()
	for _, p := range m.Placements {
		scratch.Set(p.Row, p.Col, Piece{Color: colorK, Posture: PostureNew})
	}
	total := 0
	for _, p := range m.Placements {
		total += len(Convert(scratch, p.Row, p.Col, colorK))
	}
	return total
}

// ConversionMoves implements §4.3's "Conversion-only moves": the same
// enumeration restricted to moves that capture at least one enemy piece
// once fully applied, annotated with the capture count and sorted
// descending. Used by quiescence search (§4.5).
//
// Grounded on rules.go's FindCaptures-driven capture detection, generalized
// to the base spec's Convert scan.
func ConversionMoves(b Board, turnCount int, colorK Color, cfg Config) []Move {
	all := OrderedMoves(b, turnCount, colorK, cfg)
	out := make([]Move, 0, len(all))
	for _, m := range all {
		captures := countConversions(b, m, colorK)
		if captures == 0 {
			continue
		}
		m.Score = captures
		out = append(out, m)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}
