package merkle

import (
	"fmt"

	"github.com/klauspost/reedsolomon"
)

// ParitySet is a Reed–Solomon parity sidecar for a Tree. The tree's
// real pieces are already equal-width byte blocks, so they serve as
// the data shards directly; the sidecar holds only the computed
// parity shards plus the leaf digests needed to check recovered
// pieces.
//
// Like the Tree it is built once and read-only afterwards; any
// pieceCount surviving shards (data or parity) are enough to rebuild
// the rest.
type ParitySet struct {
	dataShards   int
	parityShards int

	parity [][]byte
	leaves []Digest
}

// BuildParity computes parityShards parity blocks over the tree's
// pieces. Total shard count (pieceCount + parityShards) is capped at
// 255 by the reedsolomon implementation.
func BuildParity(t *Tree, parityShards int) (*ParitySet, error) {
	if t == nil {
		return nil, fmt.Errorf("BuildParity: tree is nil")
	}
	if parityShards <= 0 {
		return nil, fmt.Errorf("BuildParity: parityShards must be > 0")
	}
	dataShards := t.PieceCount()
	if dataShards+parityShards > 255 {
		return nil, fmt.Errorf("BuildParity: total shards %d exceeds 255", dataShards+parityShards)
	}

	enc, err := reedsolomon.New(dataShards, parityShards)
	if err != nil {
		return nil, fmt.Errorf("BuildParity: create encoder: %w", err)
	}

	// Data shards are copies of the pieces so encoding can never
	// touch the tree's own buffers.
	shards := make([][]byte, dataShards+parityShards)
	leaves := make([]Digest, dataShards)
	for i := 0; i < dataShards; i++ {
		shard := make([]byte, PieceSize)
		copy(shard, t.pieces[i])
		shards[i] = shard
		leaves[i] = t.nodes[t.leafWidth+i]
	}
	for i := dataShards; i < len(shards); i++ {
		shards[i] = make([]byte, PieceSize)
	}

	if err := enc.Encode(shards); err != nil {
		return nil, fmt.Errorf("BuildParity: encode: %w", err)
	}

	return &ParitySet{
		dataShards:   dataShards,
		parityShards: parityShards,
		parity:       shards[dataShards:],
		leaves:       leaves,
	}, nil
}

// DataShards returns the number of data shards (the tree's piece count).
func (p *ParitySet) DataShards() int { return p.dataShards }

// ParityShards returns the number of parity shards held.
func (p *ParitySet) ParityShards() int { return p.parityShards }

// Reconstruct rebuilds the pieces missing from available, which maps
// piece index -> piece bytes for the pieces the caller still holds.
// Each recovered piece is checked against the tree's leaf digest
// before being returned; a mismatch means the surviving shards were
// corrupted and is reported as an error rather than handing back bad
// bytes.
func (p *ParitySet) Reconstruct(available map[int][]byte) (map[int][]byte, error) {
	enc, err := reedsolomon.New(p.dataShards, p.parityShards)
	if err != nil {
		return nil, fmt.Errorf("Reconstruct: create encoder: %w", err)
	}

	// Missing shards must be nil: the reedsolomon library fills nil
	// slots in place.
	shards := make([][]byte, p.dataShards+p.parityShards)
	for i := 0; i < p.dataShards; i++ {
		piece, ok := available[i]
		if !ok {
			continue
		}
		if len(piece) != PieceSize {
			return nil, fmt.Errorf("Reconstruct: piece %d has %d bytes, want %d", i, len(piece), PieceSize)
		}
		shard := make([]byte, PieceSize)
		copy(shard, piece)
		shards[i] = shard
	}
	for i, par := range p.parity {
		shard := make([]byte, PieceSize)
		copy(shard, par)
		shards[p.dataShards+i] = shard
	}

	if err := enc.Reconstruct(shards); err != nil {
		return nil, fmt.Errorf("Reconstruct: %w", err)
	}

	recovered := make(map[int][]byte)
	for i := 0; i < p.dataShards; i++ {
		if _, ok := available[i]; ok {
			continue
		}
		if got := NewDigest(shards[i]); !got.Equal(p.leaves[i]) {
			return nil, fmt.Errorf("Reconstruct: recovered piece %d fails leaf digest check", i)
		}
		recovered[i] = shards[i]
	}

	return recovered, nil
}
