package engine

import (
	"encoding/binary"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// ZobristTable holds per-(cell,pieceIndex) and per-player random words for a
// given board size. Grounded on the teacher's zobrist.go: a size-keyed
// singleton table seeded by a splitmix64 generator.
type ZobristTable struct {
	size   int
	cells  []uint64 // [r][c][pieceIndex], pieceIndex in [0,8)
	player [4]uint64
}

type zobristStore struct {
	mu     sync.Mutex
	tables map[int]*ZobristTable
}

var zobristTables = &zobristStore{tables: make(map[int]*ZobristTable)}

// GetZobrist returns (creating if needed) the Zobrist table for the given
// board size.
func GetZobrist(size int) *ZobristTable {
	zobristTables.mu.Lock()
	defer zobristTables.mu.Unlock()
	if t, ok := zobristTables.tables[size]; ok {
		return t
	}
	rng := splitmix64{state: 0x9e3779b97f4a7c15 ^ uint64(size)}
	t := &ZobristTable{size: size, cells: make([]uint64, size*size*8)}
	for i := range t.cells {
		t.cells[i] = rng.next()
	}
	for i := range t.player {
		t.player[i] = rng.next()
	}
	zobristTables.tables[size] = t
	return t
}

// pieceIndex packs a piece into [0,8): colorIndex + (old ? 4 : 0).
func pieceIndex(p Piece) int {
	idx := int(p.Color)
	if p.Posture == PostureOld {
		idx += 4
	}
	return idx
}

func (z *ZobristTable) cellWord(r, c, idx int) uint64 {
	return z.cells[(r*z.size+c)*8+idx]
}

// Hash implements §4.4: XOR over all occupied cells of Z[r][c][pieceIndex],
// XOR T[playerIndex].
func (z *ZobristTable) Hash(b Board, playerIndex int) uint64 {
	var h uint64
	n := b.Size()
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			p, occ := b.At(r, c)
			if !occ {
				continue
			}
			h ^= z.cellWord(r, c, pieceIndex(p))
		}
	}
	h ^= z.player[playerIndex]
	return h
}

// VerifyHash is a secondary, independently-derived check value stored
// alongside the primary Zobrist key in each TT entry, so a colliding 32/64
// bit primary key doesn't cause a wrong-position hit to be trusted (the
// base spec tolerates primary collisions — §4.4 — but a cheap second check
// catches most of them in practice). Grounded on the teacher's
// heuristic_hash.go HeuristicHash field, re-derived with an ecosystem hash
// (github.com/cespare/xxhash/v2, pulled into the corpus via
// hailam-chessplay's badger dependency) instead of a hand-rolled FNV mixer.
func VerifyHash(b Board, playerIndex int) uint64 {
	n := b.Size()
	buf := make([]byte, 0, n*n*2+1)
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			p, occ := b.At(r, c)
			if !occ {
				buf = append(buf, 0xff)
				continue
			}
			buf = append(buf, byte(p.Color), byte(p.Posture))
		}
	}
	buf = append(buf, byte(playerIndex))
	return xxhash.Sum64(buf)
}

// ConfigFingerprint hashes the subset of Config that affects search/eval
// behavior, so a worker can tell whether its TT needs to be dropped after a
// config update (a reused TT entry computed under different heuristic
// weights is not just stale, it is actively wrong).
func ConfigFingerprint(cfg Config) uint64 {
	var buf [11 * 8]byte
	ints := []int{
		cfg.BoardSize, cfg.AIMaxDepth, cfg.CandidateSinglesLimit, cfg.PieceValue,
		cfg.ContactBonus, cfg.ExtentBonusMultiplier, cfg.CornerPlacementPenalty,
		cfg.StaticCornerPenalty, cfg.WinScore, cfg.QSearchMaxDepth, cfg.TTBuckets,
	}
	for i, v := range ints {
		binary.LittleEndian.PutUint64(buf[i*8:], uint64(int64(v)))
	}
	return xxhash.Sum64(buf[:])
}

type splitmix64 struct {
	state uint64
}

func (s *splitmix64) next() uint64 {
	s.state += 0x9e3779b97f4a7c15
	z := s.state
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}
