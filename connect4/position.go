// Package connect4 implements a bitboard-backed Connect Four position and
// a negamax solver that scores it under optimal play.
package connect4

import "fmt"

// Board geometry. Connect Four is fixed at 7 columns by 6 rows; nothing in
// this package is parameterized beyond these two constants because the
// score domain, the move-ordering table, and the transposition key layout
// are all derived from them at compile time.
const (
	Width  = 7
	Height = 6

	// boardSize is the number of playable cells.
	boardSize = Width * Height

	// MinScore and MaxScore bound the score domain: a positive score means
	// the player to move wins, a negative score means they lose, and the
	// magnitude encodes how many stones short of a full board the forced
	// win/loss lands on.
	MinScore = -(boardSize) / 2
	MaxScore = (boardSize + 1) / 2
)

// Position is a value object: two bitboards plus a move counter, cheap to
// copy for child-state exploration during search.
//
// Cells are packed one column at a time into a uint64. Column c occupies
// bits c*(Height+1) (row 0, bottom) through c*(Height+1)+Height-1 (the top
// playable row). Bit c*(Height+1)+Height is an unused sentinel row that
// must always read 0 — without it, a horizontal or diagonal alignment
// check implemented as a bit shift would bleed across the column boundary
// and report a false alignment.
//
//	.  .  .  .  .  .  .   <- sentinel row (bit 6, 13, 20, ...), always 0
//	5 12 19 26 33 40 47
//	4 11 18 25 32 39 46
//	3 10 17 24 31 38 45
//	2  9 16 23 30 37 44
//	1  8 15 22 29 36 43
//	0  7 14 21 28 35 42
type Position struct {
	currentPosition uint64 // stones of the player to move
	mask            uint64 // all occupied cells, either player
	moves           int    // number of stones placed so far
}

// NewPosition returns the empty starting position.
func NewPosition() Position {
	return Position{}
}

// NbMoves returns the number of stones placed so far.
func (p Position) NbMoves() int {
	return p.moves
}

// Key returns the scalar used to index the transposition table. current +
// mask is injective over legal positions: at every occupied cell it
// encodes which player owns it, and at the first empty cell of each
// column it contributes a 1 bit that pins down column fill height.
func (p Position) Key() uint64 {
	return p.currentPosition + p.mask
}

// CanWinNext reports whether the player to move has an immediately
// winning move available.
func (p Position) CanWinNext() bool {
	return p.winningPositions()&p.possible() != 0
}

// Play applies the move identified by a single-bit mask. The caller must
// ensure the bit names a legal move; Play does not validate it.
func (p *Position) Play(move uint64) {
	p.currentPosition ^= p.mask
	p.mask |= move
	p.moves++
}

// PlaySequence applies a sequence of moves given as 1-indexed column
// digits ('1' names column 0, and so on up to Width) and returns the
// number of leading characters that were successfully applied. It stops
// at the first character that names an out-of-range or full column, or
// that would complete a win before the sequence is fully consumed — a
// position that has already been won is not a legal starting point for
// the solver, so such a sequence is rejected at that character.
func (p *Position) PlaySequence(seq string) int {
	for i, c := range seq {
		col := int(c) - '1'
		if col < 0 || col >= Width || !p.canPlay(col) || p.isWinningMove(col) {
			return i
		}
		p.playColumn(col)
	}
	return len(seq)
}

// MoveScore returns the number of distinct 4-in-a-row alignments that
// would become available to the player to move if they occupied the
// given cell. Used only to order candidate moves before search explores
// them — a higher score means the cell participates in more potential
// winning lines.
func (p Position) MoveScore(move uint64) int {
	return popcount(computeWinningPositions(p.currentPosition|move, p.mask))
}

// PossibleNonLosingMoves returns the set of legal move cells that do not
// hand the opponent an immediate winning reply on their next turn.
//
// If the opponent already threatens more than one winning cell on this
// move, there is no way to block both and the position is lost: this
// returns 0. If they threaten exactly one, the only non-losing move is to
// play there. Otherwise, any legal cell is fine except one sitting
// directly beneath a cell that would let the opponent win — playing there
// would hand them that winning cell on the very next move.
func (p Position) PossibleNonLosingMoves() uint64 {
	possible := p.possible()
	opponentWin := p.opponentWinningPositions()
	forced := possible & opponentWin
	if forced != 0 {
		if forced&(forced-1) != 0 {
			return 0
		}
		possible = forced
	}
	return possible &^ (opponentWin >> 1)
}

// ColumnMask returns the bitmask of all Height playable cells in column c.
func ColumnMask(c int) uint64 {
	return ((uint64(1) << Height) - 1) << uint(c*(Height+1))
}

// canPlay reports whether column c has room for another stone.
func (p Position) canPlay(col int) bool {
	return p.mask&topMaskCol(col) == 0
}

// isWinningMove reports whether playing column col would complete an
// alignment for the player to move.
func (p Position) isWinningMove(col int) bool {
	return p.winningPositions()&p.possible()&ColumnMask(col) != 0
}

// playColumn plays the lowest empty cell of col. The caller must have
// already verified canPlay(col).
func (p *Position) playColumn(col int) {
	move := (p.mask + bottomMaskCol(col)) & ColumnMask(col)
	p.Play(move)
}

// possible returns the set of all legal next-move cells: the lowest empty
// cell of every non-full column.
func (p Position) possible() uint64 {
	return (p.mask + bottomMask()) & boardMask()
}

// winningPositions returns the cells that would complete an alignment for
// the player to move.
func (p Position) winningPositions() uint64 {
	return computeWinningPositions(p.currentPosition, p.mask)
}

// opponentWinningPositions returns the cells that would complete an
// alignment for the opponent if it were their move.
func (p Position) opponentWinningPositions() uint64 {
	return computeWinningPositions(p.currentPosition^p.mask, p.mask)
}

// computeWinningPositions returns, for a player occupying the cells in
// position (a subset of mask), every empty cell that would complete a
// 4-in-a-row for them. It checks all four alignment directions at once
// using shifted-AND chains; the sentinel row guarantees a shift never
// wraps a winning pattern into the neighboring column.
func computeWinningPositions(position, mask uint64) uint64 {
	// Vertical: three stacked stones complete upward.
	r := (position << 1) & (position << 2) & (position << 3)

	// Horizontal.
	p := (position << (Height + 1)) & (position << (2 * (Height + 1)))
	r |= p & (position << (3 * (Height + 1)))
	r |= p & (position >> (Height + 1))
	p = (position >> (Height + 1)) & (position >> (2 * (Height + 1)))
	r |= p & (position << (Height + 1))
	r |= p & (position >> (3 * (Height + 1)))

	// Diagonal (bottom-left to top-right).
	p = (position << Height) & (position << (2 * Height))
	r |= p & (position << (3 * Height))
	r |= p & (position >> Height)
	p = (position >> Height) & (position >> (2 * Height))
	r |= p & (position << Height)
	r |= p & (position >> (3 * Height))

	// Diagonal (top-left to bottom-right).
	p = (position << (Height + 2)) & (position << (2 * (Height + 2)))
	r |= p & (position << (3 * (Height + 2)))
	r |= p & (position >> (Height + 2))
	p = (position >> (Height + 2)) & (position >> (2 * (Height + 2)))
	r |= p & (position << (Height + 2))
	r |= p & (position >> (3 * (Height + 2)))

	return r & (boardMask() ^ mask)
}

func bottomMaskCol(col int) uint64 {
	return uint64(1) << uint(col*(Height+1))
}

func topMaskCol(col int) uint64 {
	return uint64(1) << uint(Height-1+col*(Height+1))
}

func bottomMask() uint64 {
	var m uint64
	for c := 0; c < Width; c++ {
		m |= bottomMaskCol(c)
	}
	return m
}

func boardMask() uint64 {
	return bottomMask() * ((uint64(1) << Height) - 1)
}

func popcount(m uint64) int {
	n := 0
	for m != 0 {
		m &= m - 1
		n++
	}
	return n
}

func (p Position) String() string {
	return fmt.Sprintf("Position{moves=%d, key=0x%013x}", p.moves, p.Key())
}
