package objimport

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// twoTriangleSquare is a unit square made of two OBJ triangles sharing the
// (1,1)-(0,0) diagonal.
const twoTriangleSquare = `
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
f 1 2 3
f 1 3 4
`

func TestDecodeBuildsDedupedVertexSet(t *testing.T) {
	pslg, err := Decode(strings.NewReader(twoTriangleSquare))
	require.NoError(t, err)
	assert.Len(t, pslg.Vertices, 4)
}

func TestDecodeInfersBoundaryFromSingleFaceEdges(t *testing.T) {
	pslg, err := Decode(strings.NewReader(twoTriangleSquare))
	require.NoError(t, err)

	// The square has 4 boundary edges and one shared interior diagonal,
	// which must NOT appear as a segment.
	assert.Len(t, pslg.Segments, 4)
}

func TestDecodeDedupesNearlyCoincidentVertices(t *testing.T) {
	src := `
v 0 0 0
v 1 0 0
v 1.0000001 1 0
v 0 1 0
v 1 1 0
f 1 2 3
f 1 3 4
f 2 5 3
`
	pslg, err := Decode(strings.NewReader(src))
	require.NoError(t, err)
	// Vertex 3 (1.0000001, 1) and vertex 5 (1, 1) are within epsilon and
	// should collapse to the same PSLG vertex.
	assert.Len(t, pslg.Vertices, 4)
}

func TestDecodeRejectsMalformedInput(t *testing.T) {
	_, err := Decode(strings.NewReader("v not-a-number 0 0\n"))
	assert.Error(t, err)
}
