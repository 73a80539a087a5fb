package merkle

import (
	"errors"
	"fmt"
	"os"
)

// PieceSize is the fixed width of every piece in bytes. The last
// piece of a file is zero-padded up to this width, so every leaf of
// the tree hashes exactly PieceSize bytes. The value is part of the
// hash contract: a verifier chunking the same file with a different
// width computes a different root.
const PieceSize = 1024

// ErrEmptyInput is returned when a tree is built over zero bytes.
// A zero-length file yields zero pieces, which leaves nothing to
// prove and would send 0 through the power-of-two rounding; we
// reject it up front instead.
var ErrEmptyInput = errors.New("merkle: empty input, nothing to chunk")

// SplitIntoPieces splits data into consecutive PieceSize-byte pieces.
// The final piece, if shorter, is zero-padded to exactly PieceSize.
// Every returned piece is a fresh allocation; the input slice is not
// retained.
func SplitIntoPieces(data []byte) ([][]byte, error) {
	if len(data) == 0 {
		return nil, ErrEmptyInput
	}

	count := (len(data) + PieceSize - 1) / PieceSize
	pieces := make([][]byte, 0, count)

	for start := 0; start < len(data); start += PieceSize {
		end := start + PieceSize
		if end > len(data) {
			end = len(data)
		}

		// Allocate full width; the tail beyond the copied bytes
		// stays zero, which is the padding.
		piece := make([]byte, PieceSize)
		copy(piece, data[start:end])
		pieces = append(pieces, piece)
	}

	return pieces, nil
}

// ReadPieces reads the whole file at path into memory and splits it
// into pieces. This is the only I/O the core performs.
func ReadPieces(path string) ([][]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ReadPieces: read %s: %w", path, err)
	}

	pieces, err := SplitIntoPieces(data)
	if err != nil {
		return nil, fmt.Errorf("ReadPieces: %s: %w", path, err)
	}
	return pieces, nil
}

// NextPowerOfTwo returns the smallest power of two >= n, with the
// convention that any n <= 1 maps to 1. The bit trick below is
// undefined for n == 0 (the decrement underflows), hence the
// explicit special case.
func NextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}

	v := n - 1
	v |= v >> 1
	v |= v >> 2
	v |= v >> 4
	v |= v >> 8
	v |= v >> 16
	v |= v >> 32
	return v + 1
}
