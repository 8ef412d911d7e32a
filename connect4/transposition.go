package connect4

// ttCapacity is a prime near 2^23 so that key % ttCapacity distributes
// well across the table. At one byte of value plus four bytes of partial
// key per slot this sizes the table to roughly 40MB, allocated once per
// Solver and reused across solves via Reset.
const ttCapacity = 8388593

// transpositionTable is a fixed-capacity, lossy key->value cache. Each
// slot stores only the low 32 bits of the key that produced it rather
// than the full key, so a probe can be wrong about a collision (and
// return a stale value for an unrelated position) with probability on
// the order of 2^-32. negamax only ever uses a hit to tighten an upper
// bound on beta, so a false hit can cost a missed cutoff or an
// unnecessary re-search but can never make the returned score wrong —
// see Solver.negamax.
type transpositionTable struct {
	partialKey []uint32
	value      []uint8
}

func newTranspositionTable() *transpositionTable {
	return &transpositionTable{
		partialKey: make([]uint32, ttCapacity),
		value:      make([]uint8, ttCapacity),
	}
}

// put stores value (already encoded as upper_bound - MinScore + 1) for
// key, unconditionally overwriting whatever previously lived in that
// slot. There is no collision chain and no replacement policy: last
// writer wins.
func (t *transpositionTable) put(key uint64, value uint8) {
	i := key % ttCapacity
	t.partialKey[i] = uint32(key)
	t.value[i] = value
}

// get returns the stored value for key, or 0 ("absent") if the slot is
// empty or currently holds a different key's entry.
func (t *transpositionTable) get(key uint64) uint8 {
	i := key % ttCapacity
	if t.partialKey[i] == uint32(key) {
		return t.value[i]
	}
	return 0
}

// reset clears every slot.
func (t *transpositionTable) reset() {
	for i := range t.partialKey {
		t.partialKey[i] = 0
	}
	for i := range t.value {
		t.value[i] = 0
	}
}

// TTStats is a read-only snapshot of transposition table occupancy, used
// only by the analytics layer — never consulted by the solve path.
type TTStats struct {
	Capacity int
	Used     int
}

// FillRatio returns Used/Capacity, or 0 if the table has not been built.
func (s TTStats) FillRatio() float64 {
	if s.Capacity == 0 {
		return 0
	}
	return float64(s.Used) / float64(s.Capacity)
}

// stats reports slot occupancy for introspection. It never reads value
// semantics, only whether a slot has been written since the last reset,
// so it cannot be used to reconstruct or influence stored bounds.
func (t *transpositionTable) stats() TTStats {
	used := 0
	for _, v := range t.value {
		if v != 0 {
			used++
		}
	}
	return TTStats{Capacity: len(t.value), Used: used}
}
