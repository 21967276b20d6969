package meshio

import (
	"bytes"
	"strings"
	"testing"

	"github.com/arl/meshquality/mesh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const squareNode = `4 2 0 1
0 0 0 1
1 1 0 1
2 1 1 1
3 0 1 1
`

const squarePoly = `0 2 0 0
4 0
0 0 1 0
1 1 2 0
2 2 3 0
3 3 0 0
0
`

func TestReadNodeParsesVerticesAndMarks(t *testing.T) {
	n, err := ReadNode(strings.NewReader(squareNode))
	require.NoError(t, err)
	require.Len(t, n.Points, 4)
	assert.Equal(t, 0.0, n.Points[0].X)
	assert.Equal(t, 1.0, n.Points[2].X)
	assert.True(t, n.HasMarks)
	assert.Equal(t, 1, n.Marks[0])
}

func TestReadNodeIgnoresCommentsAndBlankLines(t *testing.T) {
	src := "# a node file\n4 2 0 1\n0 0 0 1 # corner\n\n1 1 0 1\n2 1 1 1\n3 0 1 1\n"
	n, err := ReadNode(strings.NewReader(src))
	require.NoError(t, err)
	assert.Len(t, n.Points, 4)
}

func TestReadNodeRejectsTruncatedFile(t *testing.T) {
	_, err := ReadNode(strings.NewReader("4 2 0 1\n0 0 0 1\n"))
	assert.Error(t, err)
}

func TestReadPolyParsesSegmentsAndHoles(t *testing.T) {
	p, err := ReadPoly(strings.NewReader(squarePoly))
	require.NoError(t, err)
	assert.Nil(t, p.Points)
	require.Len(t, p.Segments, 4)
	assert.Equal(t, [2]int{0, 1}, p.Segments[0])
	assert.Empty(t, p.Holes)
}

func TestReadPolyWithHoles(t *testing.T) {
	src := "0 2 0 0\n1 0\n0 0 1 0\n1\n0 0.5 0.5\n"
	p, err := ReadPoly(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, p.Holes, 1)
	assert.Equal(t, 0.5, p.Holes[0].X)
}

func TestWriteNodeThenReadNodeRoundTrips(t *testing.T) {
	verts := []*mesh.Vertex{
		{X: 0, Y: 0, Mark: 1},
		{X: 1, Y: 0, Mark: 1},
		{X: 0.5, Y: 0.5, Mark: 0, Attrs: []float64{3.5}},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteNode(&buf, verts))

	n, err := ReadNode(&buf)
	require.NoError(t, err)
	require.Len(t, n.Points, 3)
	assert.Equal(t, 0.5, n.Points[2].X)
	assert.Equal(t, 3.5, n.Attrs[2][0])
	assert.Equal(t, 1, n.Marks[0])
}

func TestWritePolyProducesParseableOutput(t *testing.T) {
	pslg := mesh.PSLG{
		Segments:     [][2]int{{0, 1}, {1, 2}, {2, 0}},
		SegmentMarks: []int{1, 1, 1},
	}
	var buf bytes.Buffer
	require.NoError(t, WritePoly(&buf, pslg))

	p, err := ReadPoly(&buf)
	require.NoError(t, err)
	require.Len(t, p.Segments, 3)
	assert.Equal(t, 1, p.SegmentMarks[0])
}

func TestReadEleParsesTriangleConnectivity(t *testing.T) {
	src := "2 3 0\n0 0 1 2\n1 0 2 3\n"
	e, err := ReadEle(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, e.Triangles, 2)
	assert.Equal(t, [3]int{0, 1, 2}, e.Triangles[0])
}

func TestWriteEleMatchesLiveTriangleCount(t *testing.T) {
	v := []*mesh.Vertex{
		{X: 0, Y: 0, Kind: mesh.Input},
		{X: 1, Y: 0, Kind: mesh.Input},
		{X: 1, Y: 1, Kind: mesh.Input},
		{X: 0, Y: 1, Kind: mesh.Input},
	}
	m, err := mesh.NewFromPSLG(mesh.PSLG{
		Vertices: v,
		Segments: [][2]int{{0, 1}, {1, 2}, {2, 3}, {3, 0}},
	})
	require.NoError(t, err)

	index := make(map[*mesh.Vertex]int)
	for i, vv := range m.Vertices() {
		index[vv] = i
	}

	var buf bytes.Buffer
	require.NoError(t, WriteEle(&buf, m, index))

	e, err := ReadEle(&buf)
	require.NoError(t, err)
	assert.Len(t, e.Triangles, m.NumTriangles())
}
