package merkle

import (
	"crypto/sha256"
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildFromBytes_Shape17Pieces(t *testing.T) {
	// 17 pieces pads to a 32-wide leaf layer: 63 nodes plus the
	// reserved slot 0.
	data := testData(16*PieceSize + 100)

	tree, err := BuildFromBytes(data)
	require.NoError(t, err)

	assert.Equal(t, 17, tree.PieceCount())
	assert.Equal(t, 32, tree.LeafWidth())
	assert.Equal(t, 63, tree.TotalNodes())
	require.Len(t, tree.nodes, 64)
	assert.True(t, tree.nodes[0].IsZero(), "slot 0 is reserved and stays zero")
}

func TestBuildFromBytes_TwoPieceRoot(t *testing.T) {
	data := testData(2 * PieceSize)

	tree, err := BuildFromBytes(data)
	require.NoError(t, err)
	require.Equal(t, 2, tree.LeafWidth())

	// Expected root = SHA256(H(p0) || H(p1)).
	h0 := NewDigest(data[:PieceSize])
	h1 := NewDigest(data[PieceSize:])
	buf := append(h0.Bytes(), h1.Bytes()...)
	expected := Digest(sha256.Sum256(buf))

	assert.True(t, tree.RootHash().Equal(expected), "root for two pieces should match manual hash")
}

func TestBuildFromBytes_PaddingLeaves(t *testing.T) {
	// 3 pieces pad to 4 leaves; the fourth leaf is the sentinel.
	data := testData(3 * PieceSize)

	tree, err := BuildFromBytes(data)
	require.NoError(t, err)
	require.Equal(t, 4, tree.LeafWidth())

	assert.True(t, tree.nodes[7].IsZero(), "padding leaf must hold the zero sentinel")
	assert.False(t, tree.nodes[6].IsZero(), "real leaves must be hashed")

	// The padded subtree still participates in the root:
	// root = H(H(l4||l5) || H(l6||l7)).
	left := Digest(sha256.Sum256(append(tree.nodes[4].Bytes(), tree.nodes[5].Bytes()...)))
	right := Digest(sha256.Sum256(append(tree.nodes[6].Bytes(), tree.nodes[7].Bytes()...)))
	expected := Digest(sha256.Sum256(append(left.Bytes(), right.Bytes()...)))
	assert.True(t, tree.RootHash().Equal(expected))
}

func TestBuildFromBytes_Deterministic(t *testing.T) {
	data := testData(5 * PieceSize)

	tree1, err := BuildFromBytes(data)
	require.NoError(t, err)
	tree2, err := BuildFromBytes(data)
	require.NoError(t, err)

	assert.True(t, tree1.RootHash().Equal(tree2.RootHash()), "identical bytes must yield an identical root")

	// Flip one byte anywhere and the root moves.
	data[3*PieceSize+7] ^= 0x01
	tree3, err := BuildFromBytes(data)
	require.NoError(t, err)
	assert.False(t, tree1.RootHash().Equal(tree3.RootHash()), "root must depend on every byte")
}

func TestBuildFromBytes_SinglePiece(t *testing.T) {
	data := []byte("short file")

	tree, err := BuildFromBytes(data)
	require.NoError(t, err)

	assert.Equal(t, 1, tree.PieceCount())
	assert.Equal(t, 1, tree.LeafWidth())
	assert.Equal(t, 1, tree.TotalNodes())
	require.Len(t, tree.nodes, 2)

	// The single leaf is the root: no internal structure above it.
	padded := make([]byte, PieceSize)
	copy(padded, data)
	assert.True(t, tree.RootHash().Equal(NewDigest(padded)))

	leaf, err := tree.LeafDigest(0)
	require.NoError(t, err)
	assert.True(t, leaf.Equal(tree.RootHash()))
}

func TestBuildFromBytes_Empty(t *testing.T) {
	_, err := BuildFromBytes(nil)
	assert.ErrorIs(t, err, ErrEmptyInput, "zero-length input must surface a typed error, not crash")
}

func TestBuildFromFile(t *testing.T) {
	data := testData(3*PieceSize + 50)
	path := filepath.Join(t.TempDir(), "payload.bin")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	fromFile, err := BuildFromFile(path)
	require.NoError(t, err)

	fromBytes, err := BuildFromBytes(data)
	require.NoError(t, err)

	assert.True(t, fromFile.RootHash().Equal(fromBytes.RootHash()), "file and in-memory construction must agree")
	assert.Equal(t, fromBytes.PieceCount(), fromFile.PieceCount())
}

func TestBuildFromFile_Missing(t *testing.T) {
	_, err := BuildFromFile(filepath.Join(t.TempDir(), "nope.bin"))
	assert.Error(t, err, "unreadable file should fail construction")
}

func TestPieceContent(t *testing.T) {
	data := testData(2*PieceSize + 10)
	tree, err := BuildFromBytes(data)
	require.NoError(t, err)

	content, err := tree.PieceContent(2)
	require.NoError(t, err)

	decoded, err := base64.StdEncoding.DecodeString(content)
	require.NoError(t, err)
	require.Len(t, decoded, PieceSize, "content is the padded piece")
	assert.Equal(t, data[2*PieceSize:], decoded[:10])
}

func TestPieceContent_OutOfRange(t *testing.T) {
	data := testData(3 * PieceSize) // pads to 4 leaves
	tree, err := BuildFromBytes(data)
	require.NoError(t, err)

	// Padding-only index: inside the leaf layer, outside the pieces.
	_, err = tree.PieceContent(3)
	assert.ErrorIs(t, err, ErrPieceNotFound)

	_, err = tree.PieceContent(-1)
	assert.ErrorIs(t, err, ErrPieceNotFound)

	_, err = tree.PieceContent(100)
	assert.ErrorIs(t, err, ErrPieceNotFound)
}

func TestLeafDigest_Bounds(t *testing.T) {
	tree, err := BuildFromBytes(testData(2 * PieceSize))
	require.NoError(t, err)

	_, err = tree.LeafDigest(2)
	assert.ErrorIs(t, err, ErrPieceNotFound)
	_, err = tree.LeafDigest(-1)
	assert.ErrorIs(t, err, ErrPieceNotFound)
}
