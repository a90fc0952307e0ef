package engine

// direction tables, grounded on rules.go's fixed [n][2]int direction arrays
// used for gomoku's alignment/capture scans.
var compass8 = [8][2]int{
	{-1, 0}, {1, 0}, {0, -1}, {0, 1},
	{-1, -1}, {-1, 1}, {1, -1}, {1, 1},
}

var diag4 = [4][2]int{{-1, -1}, {-1, 1}, {1, -1}, {1, 1}}

// IsLegalPlacement implements §4.1 placement legality for a single cell,
// given the placements already chosen earlier this turn.
func IsLegalPlacement(b Board, r, c int, chosen []Placement) bool {
	if !b.InBounds(r, c) {
		return false
	}
	if !b.IsEmpty(r, c) {
		return false
	}
	for _, p := range chosen {
		if Near(r, c, p.Row, p.Col) {
			return false
		}
	}
	switch b.Region(r, c) {
	case RegionInterior:
		return true
	}
	if b.IsGloballyEmpty() && len(chosen) == 0 {
		return false
	}
	switch b.Region(r, c) {
	case RegionPreborder:
		return hasOccupiedNeighborOfRegion(b, r, c, compass8[:], RegionInterior)
	case RegionBorder:
		return hasOccupiedNeighborOfRegion(b, r, c, compass8[:], RegionPreborder)
	case RegionCorner:
		return hasOccupiedNeighborOfRegion(b, r, c, diag4[:], RegionPreborder)
	}
	return false
}

func hasOccupiedNeighborOfRegion(b Board, r, c int, dirs [][2]int, want Region) bool {
	for _, d := range dirs {
		nr, nc := r+d[0], c+d[1]
		if !b.InBounds(nr, nc) {
			continue
		}
		if b.Region(nr, nc) != want {
			continue
		}
		if _, occ := b.At(nr, nc); occ {
			return true
		}
	}
	return false
}

// Convert resolves §4.1 conversion from anchor (r,c) of color k against
// board b, returning the union of captured cells across all 8 directions.
// Grounded on rules.go's FindCaptures: walk outward per direction,
// classifying the first enemy-old piece as the line color, extending while
// old-and-lineColor, and committing when a closer own piece is found.
func Convert(b Board, r, c int, k Color) []Placement {
	var captured []Placement
	for _, d := range compass8 {
		captured = append(captured, convertDirection(b, r, c, k, d[0], d[1])...)
	}
	return captured
}

func convertDirection(b Board, r, c int, k Color, dr, dc int) []Placement {
	var candidates []Placement
	var lineColor Color
	haveLine := false
	for i := 1; ; i++ {
		nr, nc := r+i*dr, c+i*dc
		if !b.InBounds(nr, nc) {
			return nil
		}
		p, occ := b.At(nr, nc)
		if !occ {
			return nil
		}
		if i == 1 {
			if p.Posture == PostureNew || k.IsAllyOrSelf(p.Color) {
				return nil
			}
			lineColor = p.Color
			haveLine = true
			candidates = append(candidates, Placement{Row: nr, Col: nc})
			continue
		}
		if p.Posture == PostureOld && haveLine && p.Color == lineColor {
			candidates = append(candidates, Placement{Row: nr, Col: nc})
			continue
		}
		if p.Color == k {
			return candidates
		}
		return nil
	}
}

// ApplyMove implements §4.1 step-by-step: copy, age, place, convert. It
// never mutates b (boards are immutable snapshots inside the search).
func ApplyMove(b Board, m Move, k Color) Board {
	out := b.Clone()
	ageColor(&out, k)
	for _, p := range m.Placements {
		out.Set(p.Row, p.Col, Piece{Color: k, Posture: PostureNew})
	}
	for _, p := range m.Placements {
		for _, cap := range Convert(out, p.Row, p.Col, k) {
			piece, _ := out.At(cap.Row, cap.Col)
			piece.Color = k
			out.Set(cap.Row, cap.Col, piece)
		}
	}
	return out
}

// ageColor sets every new piece of color k to old. Idempotent: calling it
// twice in a row is equivalent to calling it once (§8 round-trip law).
func ageColor(b *Board, k Color) {
	for r := 0; r < b.size; r++ {
		for c := 0; c < b.size; c++ {
			p, occ := b.At(r, c)
			if !occ || p.Color != k || p.Posture != PostureNew {
				continue
			}
			p.Posture = PostureOld
			b.Set(r, c, p)
		}
	}
}

// WinResult describes a discovered connectivity win, or the absence of one.
type WinResult struct {
	Winner Color
	Path   []Placement
	Found  bool
}

// winCheckOrder is the stable color test order required by §4.1's "first
// winner found wins" rule.
var winCheckOrder = [4]Color{ColorA, ColorB, ColorC, ColorD}

// CheckWin implements §4.1: a connected (8-connected, corners excluded) path
// of one color touching top+bottom rows, or left+right columns.
func CheckWin(b Board) WinResult {
	for _, k := range winCheckOrder {
		if path, ok := findWinningPath(b, k); ok {
			return WinResult{Winner: k, Path: path, Found: true}
		}
	}
	return WinResult{}
}

func findWinningPath(b Board, k Color) ([]Placement, bool) {
	n := b.size
	visited := make([]bool, n*n)
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			if b.Region(r, c) == RegionCorner {
				continue
			}
			idx := r*n + c
			if visited[idx] {
				continue
			}
			p, occ := b.At(r, c)
			if !occ || p.Color != k {
				continue
			}
			component := floodComponent(b, k, r, c, visited)
			if path, ok := pathAcrossBoard(component, n); ok {
				return path, true
			}
		}
	}
	return nil, false
}

// floodComponent 8-connects cells of color k, excluding corner squares
// entirely from the walk, and marks them visited in place.
func floodComponent(b Board, k Color, startR, startC int, visited []bool) []Placement {
	n := b.size
	stack := []Placement{{Row: startR, Col: startC}}
	visited[startR*n+startC] = true
	var component []Placement
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		component = append(component, cur)
		for _, d := range compass8 {
			nr, nc := cur.Row+d[0], cur.Col+d[1]
			if !b.InBounds(nr, nc) {
				continue
			}
			if b.Region(nr, nc) == RegionCorner {
				continue
			}
			idx := nr*n + nc
			if visited[idx] {
				continue
			}
			p, occ := b.At(nr, nc)
			if !occ || p.Color != k {
				continue
			}
			visited[idx] = true
			stack = append(stack, Placement{Row: nr, Col: nc})
		}
	}
	return component
}

// pathAcrossBoard reports whether the component touches top+bottom rows or
// left+right columns, and if so returns the component as the path.
func pathAcrossBoard(component []Placement, n int) ([]Placement, bool) {
	touchesTop, touchesBottom, touchesLeft, touchesRight := false, false, false, false
	for _, p := range component {
		if p.Row == 0 {
			touchesTop = true
		}
		if p.Row == n-1 {
			touchesBottom = true
		}
		if p.Col == 0 {
			touchesLeft = true
		}
		if p.Col == n-1 {
			touchesRight = true
		}
	}
	if (touchesTop && touchesBottom) || (touchesLeft && touchesRight) {
		return component, true
	}
	return nil, false
}
