package merkle

import "crypto/sha256"

// VerifyPiece replays a proof against a known root hash. It is the
// receiving side of Proof: given the piece bytes (padded or not), the
// total piece count advertised for the file, and the proof chain, it
// recomputes the leaf digest and folds the proof upwards, deciding
// left/right placement from the parity of the climbing node index.
// It reports whether the recomputed root equals root.
//
// The caller does not need the tree itself; pieceCount is enough to
// recover the leaf width.
func VerifyPiece(root Digest, pieceCount, pieceIndex int, piece []byte, proof []Digest) bool {
	if pieceIndex < 0 || pieceIndex >= pieceCount || len(proof) == 0 {
		return false
	}
	if len(piece) == 0 || len(piece) > PieceSize {
		return false
	}

	padded := piece
	if len(piece) < PieceSize {
		padded = make([]byte, PieceSize)
		copy(padded, piece)
	}
	leaf := NewDigest(padded)

	width := NextPowerOfTwo(pieceCount)
	if width == 1 {
		// Single-leaf tree: the leaf is the root and the sole proof
		// element is the trivial zero sibling.
		return len(proof) == 1 && proof[0].IsZero() && root.Equal(leaf)
	}

	current := leaf
	node := width + pieceIndex
	buf := make([]byte, 0, 64)

	for _, p := range proof {
		buf = buf[:0]
		if node%2 == 0 {
			// current is a left child, proof element sits to its right.
			buf = append(buf, current[:]...)
			buf = append(buf, p[:]...)
		} else {
			buf = append(buf, p[:]...)
			buf = append(buf, current[:]...)
		}
		current = Digest(sha256.Sum256(buf))
		node /= 2
	}

	// A complete chain must land exactly on the root slot.
	return node == 1 && current.Equal(root)
}
