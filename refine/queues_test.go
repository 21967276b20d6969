package refine

import (
	"testing"

	"github.com/arl/meshquality/mesh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func squareMesh(t *testing.T) *mesh.Mesh {
	t.Helper()
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
	return m
}

func TestBadSubsegQueueFIFOOrder(t *testing.T) {
	m := squareMesh(t)
	subs := m.Subsegs()
	require.Len(t, subs, 4)

	q := NewBadSubsegQueue()
	var entries []*BadSubseg
	for _, s := range subs {
		entries = append(entries, &BadSubseg{Handle: s, Org: s.Org(), Dest: s.Dest()})
	}
	for _, e := range entries {
		q.Enqueue(e)
	}

	for _, want := range entries {
		got, ok := q.Dequeue()
		require.True(t, ok)
		assert.Same(t, want, got)
	}
	_, ok := q.Dequeue()
	assert.False(t, ok)
}

func TestBadSubsegQueueSkipsStaleEntries(t *testing.T) {
	m := squareMesh(t)
	sub := m.Subsegs()[0]

	q := NewBadSubsegQueue()
	stale := &BadSubseg{Handle: sub, Org: sub.Org(), Dest: &mesh.Vertex{X: 99, Y: 99}}
	q.Enqueue(stale)

	_, ok := q.Dequeue()
	assert.False(t, ok)
}

func TestBadTriangleQueueOrdersByKeyAscending(t *testing.T) {
	m := squareMesh(t)
	tris := m.Triangles()
	require.Len(t, tris, 2)

	mk := func(key float64, h mesh.Otri) *BadTriangle {
		return &BadTriangle{Handle: h, Key: key, Org: h.Org(), Dest: h.Dest(), Apex: h.Apex()}
	}

	q := NewBadTriangleQueue()
	hi := mk(30, tris[0])
	lo := mk(1, tris[1])
	mid := mk(10, tris[0].Lnext())
	q.Enqueue(hi)
	q.Enqueue(lo)
	q.Enqueue(mid)

	got, ok := q.Dequeue()
	require.True(t, ok)
	assert.Same(t, lo, got)

	got, ok = q.Dequeue()
	require.True(t, ok)
	assert.Same(t, mid, got)

	got, ok = q.Dequeue()
	require.True(t, ok)
	assert.Same(t, hi, got)
}

func TestBadTriangleQueueTiesBreakByInsertionOrder(t *testing.T) {
	m := squareMesh(t)
	tris := m.Triangles()
	require.NotEmpty(t, tris)

	mk := func(h mesh.Otri) *BadTriangle {
		return &BadTriangle{Handle: h, Key: 5, Org: h.Org(), Dest: h.Dest(), Apex: h.Apex()}
	}
	first := mk(tris[0])
	second := mk(tris[0].Lnext())

	q := NewBadTriangleQueue()
	q.Enqueue(first)
	q.Enqueue(second)

	got, _ := q.Dequeue()
	assert.Same(t, first, got)
	got, _ = q.Dequeue()
	assert.Same(t, second, got)
}

func TestBadTriangleQueueSkipsStaleEntries(t *testing.T) {
	m := squareMesh(t)
	tri := m.Triangles()[0]

	q := NewBadTriangleQueue()
	stale := &BadTriangle{Handle: tri, Key: 1, Org: tri.Org(), Dest: tri.Dest(), Apex: &mesh.Vertex{X: 42, Y: 42}}
	q.Enqueue(stale)

	_, ok := q.Dequeue()
	assert.False(t, ok)
}
