package engine

// Evaluate implements §4.2: a signed evaluation of a position from team 1's
// perspective. Win detection short-circuits everything else.
//
// Grounded on ai_eval.go's per-team threat accumulation style, generalized
// from gomoku line-pattern matching (open three/four) to the territorial
// flood-fill extent this game actually scores.
func Evaluate(b Board, cfg Config) int {
	if win := CheckWin(b); win.Found {
		if win.Winner.Team() == 1 {
			return cfg.WinScore
		}
		return -cfg.WinScore
	}

	var pieces1, pieces2 int
	var cornerPenalty1, cornerPenalty2 int
	n := b.Size()
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			p, occ := b.At(r, c)
			if !occ {
				continue
			}
			if p.Color.Team() == 1 {
				pieces1++
			} else {
				pieces2++
			}
			if b.Region(r, c) == RegionCorner {
				if p.Color.Team() == 1 {
					cornerPenalty1 += cfg.StaticCornerPenalty
				} else {
					cornerPenalty2 += cfg.StaticCornerPenalty
				}
			}
		}
	}

	extent1, extent2 := teamExtentBonus(b, cfg)

	score := (pieces1-pieces2)*cfg.PieceValue + (extent1 - extent2) - cornerPenalty1 + cornerPenalty2
	return score
}

// teamExtentBonus flood-fills 8-connected same-team components (A/C joined,
// B/D joined, corners included this time — extent is a territorial measure,
// not the connectivity win path) and sums extent² · multiplier per team.
func teamExtentBonus(b Board, cfg Config) (team1, team2 int) {
	n := b.Size()
	visited := make([]bool, n*n)
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			idx := r*n + c
			if visited[idx] {
				continue
			}
			p, occ := b.At(r, c)
			if !occ {
				continue
			}
			team := p.Color.Team()
			minR, maxR, minC, maxC := floodTeamComponent(b, team, r, c, visited)
			extent := maxInt(maxR-minR, maxC-minC)
			bonus := extent * extent * cfg.ExtentBonusMultiplier
			if team == 1 {
				team1 += bonus
			} else {
				team2 += bonus
			}
		}
	}
	return team1, team2
}

func floodTeamComponent(b Board, team, startR, startC int, visited []bool) (minR, maxR, minC, maxC int) {
	n := b.size
	minR, maxR, minC, maxC = startR, startR, startC, startC
	stack := []Placement{{Row: startR, Col: startC}}
	visited[startR*n+startC] = true
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur.Row < minR {
			minR = cur.Row
		}
		if cur.Row > maxR {
			maxR = cur.Row
		}
		if cur.Col < minC {
			minC = cur.Col
		}
		if cur.Col > maxC {
			maxC = cur.Col
		}
		for _, d := range compass8 {
			nr, nc := cur.Row+d[0], cur.Col+d[1]
			if !b.InBounds(nr, nc) {
				continue
			}
			idx := nr*n + nc
			if visited[idx] {
				continue
			}
			p, occ := b.At(nr, nc)
			if !occ || p.Color.Team() != team {
				continue
			}
			visited[idx] = true
			stack = append(stack, Placement{Row: nr, Col: nc})
		}
	}
	return
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
