package connect4

import "testing"

func TestNewPositionIsEmpty(t *testing.T) {
	p := NewPosition()
	if p.NbMoves() != 0 {
		t.Fatalf("expected 0 moves, got %d", p.NbMoves())
	}
	if p.CanWinNext() {
		t.Fatalf("expected empty position to have no immediate win")
	}
}

func TestPlayColumnFillsBottomUp(t *testing.T) {
	p := NewPosition()
	n := p.PlaySequence("11")
	if n != 2 {
		t.Fatalf("expected both moves applied, got prefix %d", n)
	}
	if p.NbMoves() != 2 {
		t.Fatalf("expected 2 moves, got %d", p.NbMoves())
	}
	if p.mask != 0x3 {
		t.Fatalf("expected the bottom two cells of column 1 to be filled, got mask %#x", p.mask)
	}
}

func TestPlaySequenceStopsOnOutOfRangeColumn(t *testing.T) {
	p := NewPosition()
	n := p.PlaySequence("8")
	if n != 0 {
		t.Fatalf("expected prefix 0 for out-of-range column, got %d", n)
	}
}

func TestPlaySequenceStopsOnFullColumn(t *testing.T) {
	p := NewPosition()
	n := p.PlaySequence("1111111")
	if n != Height {
		t.Fatalf("expected prefix %d after column overflow, got %d", Height, n)
	}
}

func TestPlaySequenceStopsOnWinningMove(t *testing.T) {
	p := NewPosition()
	// 1,2,1,2,1,2,1 gives the first player four vertically in column 1
	// (index 0) on their fourth move, so the sequence must stop there.
	n := p.PlaySequence("1212121")
	if n != 6 {
		t.Fatalf("expected sequence to stop before completing the win, got prefix %d", n)
	}
}

func TestCanWinNextDetectsVerticalThreat(t *testing.T) {
	p := NewPosition()
	n := p.PlaySequence("121212")
	if n != 6 {
		t.Fatalf("setup sequence rejected at %d", n)
	}
	if !p.CanWinNext() {
		t.Fatalf("expected column-1 stack of three to threaten an immediate win")
	}
}

func TestKeyIsInjectiveOverShallowReachableStates(t *testing.T) {
	seqs := []string{
		"", "1", "2", "3", "12", "21", "13", "31", "123", "132", "112233",
	}
	seen := map[uint64]string{}
	for _, seq := range seqs {
		p := NewPosition()
		n := p.PlaySequence(seq)
		if n != len(seq) {
			continue // sequence became invalid partway; not a reachable distinct final state
		}
		key := p.Key()
		if prior, ok := seen[key]; ok {
			t.Fatalf("key collision between sequences %q and %q", prior, seq)
		}
		seen[key] = seq
	}
}

func TestInvariantsHoldAfterPlay(t *testing.T) {
	p := NewPosition()
	for _, seq := range []string{"4", "3", "5", "2", "6", "7", "1"} {
		n := p.PlaySequence(seq)
		if n != len(seq) {
			t.Fatalf("unexpected invalid move at %d in %q", n, seq)
		}
		// current XOR mask isolates the opponent; sanity check it is
		// disjoint from current.
		if p.currentPosition&(p.currentPosition^p.mask) != 0 {
			t.Fatalf("opponent stones must be disjoint from current-player stones")
		}
		if p.currentPosition&p.mask != p.currentPosition {
			t.Fatalf("current-player stones must be a subset of mask")
		}
		if popcount(p.mask) != p.NbMoves() {
			t.Fatalf("popcount(mask)=%d != moves=%d", popcount(p.mask), p.NbMoves())
		}
		for c := 0; c < Width; c++ {
			sentinel := uint64(1) << uint(Height+c*(Height+1))
			if p.mask&sentinel != 0 {
				t.Fatalf("sentinel row bit set for column %d", c)
			}
		}
	}
}

func TestPossibleNonLosingMovesEmptyWhenDoubleThreat(t *testing.T) {
	// Build a position where the opponent threatens two distinct winning
	// columns; the player to move should have no non-losing reply.
	p := NewPosition()
	// . . . . . . .
	// . . . . . . .
	// . . . . . . .
	// . . . . . . .
	// x . . . . . .
	// x . o o o . x   <- opponent open three, playable at both ends
	seq := "137415"
	n := p.PlaySequence(seq)
	if n != len(seq) {
		t.Fatalf("setup sequence rejected at %d", n)
	}
	non := p.PossibleNonLosingMoves()
	if non&^p.possible() != 0 {
		t.Fatalf("non-losing moves must be a subset of legal moves")
	}
	if non != 0 {
		t.Fatalf("expected no non-losing move against a double threat, got %#x", non)
	}
}

func TestColumnMaskCoversExactlyHeightBits(t *testing.T) {
	for c := 0; c < Width; c++ {
		m := ColumnMask(c)
		if popcount(m) != Height {
			t.Fatalf("column %d mask has %d bits, want %d", c, popcount(m), Height)
		}
	}
}

func TestMoveScoreCountsAlignments(t *testing.T) {
	p := NewPosition()
	n := p.PlaySequence("4141")
	if n != 4 {
		t.Fatalf("setup rejected at %d", n)
	}
	// The player to move holds the bottom two cells of column 4; playing
	// the third cell builds a vertical run of three.
	move := (p.mask + bottomMaskCol(3)) & ColumnMask(3)
	if p.MoveScore(move) == 0 {
		t.Fatalf("expected nonzero move score after building a vertical run of three")
	}
}
