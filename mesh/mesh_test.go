package mesh

import (
	"testing"

	"github.com/arl/meshquality/predicates"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func square() PSLG {
	v := []*Vertex{
		{X: 0, Y: 0, Kind: Input},
		{X: 1, Y: 0, Kind: Input},
		{X: 1, Y: 1, Kind: Input},
		{X: 0, Y: 1, Kind: Input},
	}
	return PSLG{
		Vertices: v,
		Segments: [][2]int{{0, 1}, {1, 2}, {2, 3}, {3, 0}},
	}
}

func TestNewFromPSLGSquareProducesTwoTriangles(t *testing.T) {
	m, err := NewFromPSLG(square())
	require.NoError(t, err)
	assert.Equal(t, 2, m.NumTriangles())
	assert.Len(t, m.Subsegs(), 4)
}

func TestNewFromPSLGEveryTriangleIsCCW(t *testing.T) {
	m, err := NewFromPSLG(square())
	require.NoError(t, err)
	for _, tri := range m.Triangles() {
		assert.Greater(t, predicates.Orient2D(tri.Org().Point(), tri.Dest().Point(), tri.Apex().Point()), 0.0)
	}
}

func TestNewFromPSLGBoundaryEdgesCarrySubsegments(t *testing.T) {
	m, err := NewFromPSLG(square())
	require.NoError(t, err)
	for _, s := range m.Subsegs() {
		tri1 := s.TriPivot()
		tri2 := s.Sym().TriPivot()
		assert.True(t, !tri1.IsDummy() || !tri2.IsDummy())
	}
	for _, tri := range m.Triangles() {
		for o := 0; o < 3; o++ {
			e := Otri{tri.T, o}
			if e.Sym().IsDummy() {
				assert.False(t, e.SegPivot().IsDummy())
			}
		}
	}
}

func TestInsertVertexSuccessfulSplitsContainingTriangle(t *testing.T) {
	m, err := NewFromPSLG(square())
	require.NoError(t, err)
	before := m.NumTriangles()

	start := m.Triangles()[0]
	v := &Vertex{X: 0.5, Y: 0.5, Kind: FreeVertex}
	res, encroached, err := m.InsertVertex(v, start, DummySubseg(), false, false, nil)
	require.NoError(t, err)
	assert.Equal(t, Successful, res)
	assert.Empty(t, encroached)
	assert.Greater(t, m.NumTriangles(), before)
}

func TestInsertVertexDuplicateIsRejected(t *testing.T) {
	m, err := NewFromPSLG(square())
	require.NoError(t, err)

	start := m.Triangles()[0]
	res, _, err := m.InsertVertex(&Vertex{X: 0, Y: 0}, start, DummySubseg(), false, false, nil)
	require.NoError(t, err)
	assert.Equal(t, Duplicate, res)
}

func TestUndoVertexRestoresPriorTriangleCount(t *testing.T) {
	m, err := NewFromPSLG(square())
	require.NoError(t, err)
	before := m.NumTriangles()
	beforeVerts := m.NumVertices()

	start := m.Triangles()[0]
	res, _, err := m.InsertVertex(&Vertex{X: 0.5, Y: 0.5, Kind: FreeVertex}, start, DummySubseg(), false, false, nil)
	require.NoError(t, err)
	require.Equal(t, Successful, res)

	require.NoError(t, m.UndoVertex())
	assert.Equal(t, before, m.NumTriangles())
	assert.Equal(t, beforeVerts, m.NumVertices())
}

func TestInsertVertexEncroachingWhenSegFlawsSet(t *testing.T) {
	m, err := NewFromPSLG(square())
	require.NoError(t, err)

	alwaysEncroaches := func(segOrg, segDest, apex *Vertex) bool { return true }

	start := m.Triangles()[0]
	res, encroached, err := m.InsertVertex(&Vertex{X: 0.5, Y: 0.5, Kind: FreeVertex}, start, DummySubseg(), true, false, alwaysEncroaches)
	require.NoError(t, err)
	assert.Equal(t, Encroaching, res)
	assert.NotEmpty(t, encroached)
}

func TestInsertVertexViolatingRejectsInsertion(t *testing.T) {
	m, err := NewFromPSLG(square())
	require.NoError(t, err)
	before := m.NumTriangles()

	alwaysEncroaches := func(segOrg, segDest, apex *Vertex) bool { return true }

	start := m.Triangles()[0]
	res, encroached, err := m.InsertVertex(&Vertex{X: 0.5, Y: 0.5, Kind: FreeVertex}, start, DummySubseg(), true, true, alwaysEncroaches)
	require.NoError(t, err)
	assert.Equal(t, Violating, res)
	assert.NotEmpty(t, encroached)
	assert.Equal(t, before, m.NumTriangles())
}

func TestSplitSubsegmentReplacesOldWithTwoHalves(t *testing.T) {
	m, err := NewFromPSLG(square())
	require.NoError(t, err)

	var bottom Osub
	for _, s := range m.Subsegs() {
		if (s.Org().X == 0 && s.Org().Y == 0 && s.Dest().X == 1 && s.Dest().Y == 0) ||
			(s.Dest().X == 0 && s.Dest().Y == 0 && s.Org().X == 1 && s.Org().Y == 0) {
			bottom = s
		}
	}
	require.NotNil(t, bottom.S)

	v := &Vertex{X: 0.5, Y: 0, Kind: SegmentVertex}
	res, half1, half2, _, err := m.SplitSubsegment(bottom, v, false, nil)
	require.NoError(t, err)
	assert.Equal(t, Successful, res)
	assert.True(t, bottom.IsDead())
	assert.False(t, half1.IsDead())
	assert.False(t, half2.IsDead())
	assert.Len(t, m.Subsegs(), 5)
}

// twoSquares is a 2x1 rectangle split down the middle by an interior
// subsegment, giving that subsegment a real triangle on both sides -- the
// case TestSplitSubsegmentReplacesOldWithTwoHalves above does not exercise,
// since its bottom edge is on the mesh boundary and only has one side.
func twoSquares() PSLG {
	v := []*Vertex{
		{X: 0, Y: 0, Kind: Input},
		{X: 1, Y: 0, Kind: Input},
		{X: 2, Y: 0, Kind: Input},
		{X: 2, Y: 1, Kind: Input},
		{X: 1, Y: 1, Kind: Input},
		{X: 0, Y: 1, Kind: Input},
	}
	return PSLG{
		Vertices: v,
		Segments: [][2]int{
			{0, 1}, {1, 2}, {2, 3}, {3, 4}, {4, 5}, {5, 0},
			{1, 4},
		},
	}
}

func TestSplitSubsegmentOnInteriorSegmentRetriangulatesBothSides(t *testing.T) {
	m, err := NewFromPSLG(twoSquares())
	require.NoError(t, err)
	before := m.NumTriangles()

	var mid Osub
	for _, s := range m.Subsegs() {
		if (s.Org().X == 1 && s.Org().Y == 0 && s.Dest().X == 1 && s.Dest().Y == 1) ||
			(s.Dest().X == 1 && s.Dest().Y == 0 && s.Org().X == 1 && s.Org().Y == 1) {
			mid = s
		}
	}
	require.NotNil(t, mid.S)
	require.False(t, mid.TriPivot().IsDummy())
	require.False(t, mid.Sym().TriPivot().IsDummy())

	v := &Vertex{X: 1, Y: 0.5, Kind: SegmentVertex}
	res, half1, half2, _, err := m.SplitSubsegment(mid, v, false, nil)
	require.NoError(t, err)
	assert.Equal(t, Successful, res)

	// The cavity around v spans both sides of the interior segment, and
	// its fan holds two more triangles than the cavity removed, for a net
	// gain of two live triangles.
	assert.Equal(t, before+2, m.NumTriangles())

	// Both halves must end up with a real (non-dummy) triangle on each
	// side -- a regression guard against the cavity stopping at one side
	// of the segment and leaving the opposite triangle's full org-dest
	// edge untouched.
	assert.False(t, half1.TriPivot().IsDummy())
	assert.False(t, half1.Sym().TriPivot().IsDummy())
	assert.False(t, half2.TriPivot().IsDummy())
	assert.False(t, half2.Sym().TriPivot().IsDummy())

	// The original segment's full edge must no longer exist in the mesh.
	_, stillWhole := m.findIncidentEdge(mid.Org(), mid.Dest())
	assert.False(t, stillWhole)
}

func TestNewFromTriangulationBondsSharedEdges(t *testing.T) {
	verts := []*Vertex{
		{X: 0, Y: 0, Kind: Input},
		{X: 1, Y: 0, Kind: Input},
		{X: 1, Y: 1, Kind: Input},
		{X: 0, Y: 1, Kind: Input},
	}
	m, err := NewFromTriangulation(verts, [][3]int{{0, 1, 2}, {0, 2, 3}})
	require.NoError(t, err)
	assert.Equal(t, 2, m.NumTriangles())

	tris := m.Triangles()
	foundBond := false
	for _, t0 := range tris {
		for o := 0; o < 3; o++ {
			e := Otri{t0.T, o}
			if !e.Sym().IsDummy() {
				foundBond = true
			}
		}
	}
	assert.True(t, foundBond)
}

func TestNewFromTriangulationAcceptsClockwiseInput(t *testing.T) {
	verts := []*Vertex{
		{X: 0, Y: 0, Kind: Input},
		{X: 1, Y: 0, Kind: Input},
		{X: 1, Y: 1, Kind: Input},
	}
	// Clockwise winding should be corrected rather than rejected.
	m, err := NewFromTriangulation(verts, [][3]int{{0, 2, 1}})
	require.NoError(t, err)
	tri := m.Triangles()[0]
	assert.Greater(t, predicates.Orient2D(tri.Org().Point(), tri.Dest().Point(), tri.Apex().Point()), 0.0)
}

func TestNewFromTriangulationRejectsNonManifoldEdge(t *testing.T) {
	verts := []*Vertex{
		{X: 0, Y: 0, Kind: Input},
		{X: 1, Y: 0, Kind: Input},
		{X: 0.5, Y: 1, Kind: Input},
		{X: 0.5, Y: -1, Kind: Input},
		{X: 0.5, Y: 2, Kind: Input},
	}
	_, err := NewFromTriangulation(verts, [][3]int{{0, 1, 2}, {1, 0, 3}, {0, 1, 4}})
	assert.Error(t, err)
}

func TestDeleteVertexRemovesFreeVertexAndRetriangulates(t *testing.T) {
	m, err := NewFromPSLG(square())
	require.NoError(t, err)

	start := m.Triangles()[0]
	center := &Vertex{X: 0.5, Y: 0.5, Kind: FreeVertex}
	res, _, err := m.InsertVertex(center, start, DummySubseg(), false, false, nil)
	require.NoError(t, err)
	require.Equal(t, Successful, res)

	before := m.NumTriangles()
	at, ok := m.EdgeAt(center)
	require.True(t, ok)
	require.NoError(t, m.DeleteVertex(at))
	assert.Less(t, m.NumTriangles(), before)
}
