package merkle

import (
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
)

// ErrPieceNotFound is returned when a piece index outside
// [0, PieceCount) is requested from content lookup or proof
// generation. Padding leaves are not addressable.
var ErrPieceNotFound = errors.New("merkle: piece not found")

// Tree is a content-addressed index over a file's pieces.
//
// The nodes live in a flat, 1-indexed slice backing a complete binary
// tree: index 0 is reserved (zero-valued), index 1 is the root, node i
// has children 2i and 2i+1, and the leaves occupy [L, 2L) in piece
// order, where L is the leaf width (pieceCount rounded up to a power
// of two). Leaves past the real pieces hold the ZeroDigest padding
// sentinel.
//
// A Tree is built exactly once and never mutated afterwards, so it is
// safe to share across goroutines for concurrent reads without
// locking.
type Tree struct {
	nodes      []Digest
	leafWidth  int
	pieceCount int

	// pieces maps real piece index -> padded piece bytes. Padding
	// leaves have no entry.
	pieces map[int][]byte
}

// BuildFromBytes constructs a Tree over the given file bytes.
// Zero-length input returns ErrEmptyInput.
func BuildFromBytes(data []byte) (*Tree, error) {
	pieces, err := SplitIntoPieces(data)
	if err != nil {
		return nil, fmt.Errorf("BuildFromBytes: %w", err)
	}
	return buildFromPieces(pieces), nil
}

// BuildFromFile reads the whole file at path and constructs a Tree
// over its contents.
func BuildFromFile(path string) (*Tree, error) {
	pieces, err := ReadPieces(path)
	if err != nil {
		return nil, fmt.Errorf("BuildFromFile: %w", err)
	}
	return buildFromPieces(pieces), nil
}

// buildFromPieces does the actual construction: leaf placement,
// padding, and the bottom-up hash sweep. pieces must be non-empty and
// every piece exactly PieceSize bytes (SplitIntoPieces guarantees
// both).
func buildFromPieces(pieces [][]byte) *Tree {
	pieceCount := len(pieces)
	leafWidth := NextPowerOfTwo(pieceCount)

	t := &Tree{
		nodes:      make([]Digest, 2*leafWidth),
		leafWidth:  leafWidth,
		pieceCount: pieceCount,
		pieces:     make(map[int][]byte, pieceCount),
	}

	// Leaves at [L, 2L): real pieces hashed in order, then padding.
	// The node slice is zero-valued, so padding leaves already hold
	// the sentinel and need no writes.
	for i, piece := range pieces {
		t.nodes[leafWidth+i] = NewDigest(piece)
		t.pieces[i] = piece
	}

	// Bottom-up sweep from L-1 down to 1. Walking indices in
	// descending order guarantees both children exist before their
	// parent is hashed.
	buf := make([]byte, 0, 64)
	for i := leafWidth - 1; i >= 1; i-- {
		buf = buf[:0]
		buf = append(buf, t.nodes[2*i][:]...)
		buf = append(buf, t.nodes[2*i+1][:]...)
		t.nodes[i] = Digest(sha256.Sum256(buf))
	}

	return t
}

// RootHash returns the tree's content identifier: the digest at
// index 1. For a single-piece tree the root is the leaf itself.
func (t *Tree) RootHash() Digest {
	return t.nodes[1]
}

// PieceCount returns the number of real (non-padding) pieces.
func (t *Tree) PieceCount() int {
	return t.pieceCount
}

// LeafWidth returns L, the padded leaf count (a power of two).
func (t *Tree) LeafWidth() int {
	return t.leafWidth
}

// TotalNodes returns the number of nodes in the tree, 2L - 1.
// The backing slice has one extra reserved slot at index 0.
func (t *Tree) TotalNodes() int {
	return 2*t.leafWidth - 1
}

// LeafDigest returns the leaf digest for the given piece index.
func (t *Tree) LeafDigest(index int) (Digest, error) {
	if index < 0 || index >= t.pieceCount {
		return Digest{}, fmt.Errorf("LeafDigest: index %d: %w", index, ErrPieceNotFound)
	}
	return t.nodes[t.leafWidth+index], nil
}

// PieceContent returns the padded bytes of the given real piece,
// base64-encoded for transport. Padding leaves have no content.
func (t *Tree) PieceContent(index int) (string, error) {
	piece, ok := t.pieces[index]
	if !ok {
		return "", fmt.Errorf("PieceContent: index %d: %w", index, ErrPieceNotFound)
	}
	return base64.StdEncoding.EncodeToString(piece), nil
}
