package merkle

import "fmt"

// siblingIndex returns the index of the node sharing i's parent.
// In the heap layout a left child is even and a right child is odd,
// so the sibling is found by flipping the last bit.
func siblingIndex(i int) int {
	if i%2 == 0 {
		return i + 1
	}
	return i - 1
}

// uncleIndex returns the sibling of i's parent and true, or false
// when the chain terminates: once the parent is the root or one of
// the root's own children there is no higher branch to take.
func uncleIndex(i int) (int, bool) {
	parent := i / 2
	grandparent := parent / 2
	if parent == 0 || grandparent == 0 {
		return 0, false
	}
	if parent%2 == 0 {
		return grandparent*2 + 1, true
	}
	return grandparent * 2, true
}

// Proof returns the ordered chain of digests needed to recompute the
// root from the given piece's leaf digest: the leaf's sibling first,
// then each successive uncle up the tree. Only real pieces are
// provable; any index outside [0, PieceCount) returns
// ErrPieceNotFound.
//
// For a single-piece tree the proof is the zero digest alone: the
// leaf is the root and its "sibling" is the reserved slot 0.
func (t *Tree) Proof(index int) ([]Digest, error) {
	if index < 0 || index >= t.pieceCount {
		return nil, fmt.Errorf("Proof: index %d: %w", index, ErrPieceNotFound)
	}

	node := t.leafWidth + index
	proof := []Digest{t.nodes[siblingIndex(node)]}

	for {
		uncle, ok := uncleIndex(node)
		if !ok {
			break
		}
		proof = append(proof, t.nodes[uncle])
		node = uncle
	}

	return proof, nil
}
