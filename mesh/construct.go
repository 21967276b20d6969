package mesh

import (
	"fmt"
	"math"

	"github.com/arl/meshquality/predicates"
)

// PSLG is the planar straight-line graph NewFromPSLG triangulates: vertices
// plus the constrained edges among them, plus an optional list of interior
// points marking holes to be carved out once the triangulation is built.
type PSLG struct {
	Vertices []*Vertex
	// Segments are pairs of indices into Vertices.
	Segments [][2]int
	// SegmentMarks, if non-nil, must be the same length as Segments and
	// supplies each subsegment's boundary marker (0 otherwise).
	SegmentMarks []int
	// Holes are interior points; every triangle reachable from a hole
	// point without crossing a subsegment is stripped from the mesh.
	Holes []predicates.Point
}

// NewFromPSLG builds a constrained Delaunay triangulation of pslg: an
// enclosing super-triangle bootstraps incremental Bowyer-Watson insertion
// of every vertex, Sloan's diagonal-flip procedure recovers every segment
// not already present as a triangulation edge, and a flood fill from the
// hole points (and from the super-triangle's three synthetic corners)
// strips exterior and hole triangles, leaving their boundary rebonded to
// the dummy sentinel.
func NewFromPSLG(pslg PSLG) (*Mesh, error) {
	if len(pslg.Vertices) < 3 {
		return nil, fmt.Errorf("mesh: need at least 3 vertices, got %d", len(pslg.Vertices))
	}
	m := New(0)

	inf1, inf2, inf3 := superTriangleCorners(pslg.Vertices)
	m.Inf1, m.Inf2, m.Inf3 = inf1, inf2, inf3
	m.registerVertex(inf1)
	m.registerVertex(inf2)
	m.registerVertex(inf3)
	root := m.addTriangle(inf1, inf2, inf3)
	start := Otri{root, 0}

	for _, v := range pslg.Vertices {
		res, _, err := m.InsertVertex(v, start, DummySubseg(), false, false, nil)
		if err != nil {
			return nil, err
		}
		if res == Duplicate {
			continue
		}
		start = Otri{m.triangles[len(m.triangles)-1], 0}
	}

	for i, seg := range pslg.Segments {
		a, b := pslg.Vertices[seg[0]], pslg.Vertices[seg[1]]
		mark := 0
		if pslg.SegmentMarks != nil {
			mark = pslg.SegmentMarks[i]
		}
		if err := m.recoverSegment(a, b, mark); err != nil {
			return nil, err
		}
	}

	m.stripExterior(pslg.Holes)

	return m, nil
}

// superTriangleCorners returns three synthetic vertices, tagged Undead,
// forming a triangle comfortably enclosing every input point. Code that
// needs to recognize them compares against Inf1..Inf3 (IsSuperVertex).
func superTriangleCorners(verts []*Vertex) (*Vertex, *Vertex, *Vertex) {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, v := range verts {
		minX = math.Min(minX, v.X)
		minY = math.Min(minY, v.Y)
		maxX = math.Max(maxX, v.X)
		maxY = math.Max(maxY, v.Y)
	}
	dx, dy := maxX-minX, maxY-minY
	if dx == 0 && dy == 0 {
		dx, dy = 1, 1
	}
	d := math.Max(dx, dy) * 8
	cx, cy := (minX+maxX)/2, (minY+maxY)/2
	return &Vertex{X: cx - d, Y: cy - d, Kind: Undead},
		&Vertex{X: cx + d, Y: cy - d, Kind: Undead},
		&Vertex{X: cx, Y: cy + d, Kind: Undead}
}

// NewFromTriangulation rebuilds a Mesh directly from an existing
// triangulation's vertices and triangle index triples, bonding shared edges
// to each other without enclosing anything in a super-triangle -- there is
// no incremental insertion left to bootstrap, only existing connectivity to
// re-derive. No subsegments are created; every edge is treated as
// unconstrained, which is all CheckMesh and CheckDelaunay need.
func NewFromTriangulation(verts []*Vertex, tris [][3]int) (*Mesh, error) {
	m := New(0)
	for _, v := range verts {
		m.registerVertex(v)
	}

	type undirEdge struct{ lo, hi int }
	mk := func(a, b int) undirEdge {
		if a > b {
			a, b = b, a
		}
		return undirEdge{a, b}
	}

	ccwIdx := make([][3]int, len(tris))
	edgeCount := map[undirEdge]int{}
	for ti, tri := range tris {
		for _, idx := range tri {
			if idx < 0 || idx >= len(verts) {
				return nil, fmt.Errorf("mesh: triangle %d references out-of-range vertex %d", ti, idx)
			}
		}
		a, b, c := tri[0], tri[1], tri[2]
		if predicates.Orient2D(verts[a].Point(), verts[b].Point(), verts[c].Point()) < 0 {
			b, c = c, b
		}
		ccwIdx[ti] = [3]int{a, b, c}
		for o := 0; o < 3; o++ {
			edgeCount[mk(ccwIdx[ti][o], ccwIdx[ti][(o+1)%3])]++
		}
	}
	for e, n := range edgeCount {
		if n > 2 {
			return nil, fmt.Errorf("mesh: edge (%d,%d) shared by %d triangles, want at most 2", e.lo, e.hi, n)
		}
	}

	type dirEdge struct{ org, dest int }
	pending := map[dirEdge]Otri{}
	for _, idx := range ccwIdx {
		t := m.addTriangle(verts[idx[0]], verts[idx[1]], verts[idx[2]])
		for o := 0; o < 3; o++ {
			e := Otri{t, o}
			org, dest := idx[o], idx[(o+1)%3]
			if other, ok := pending[dirEdge{dest, org}]; ok {
				bond(e, other)
				delete(pending, dirEdge{dest, org})
				continue
			}
			pending[dirEdge{org, dest}] = e
		}
	}

	return m, nil
}

// IsSuperVertex reports whether v is one of the three synthetic corners
// introduced by NewFromPSLG; refine's iteration skips triangles with such a
// vertex until stripExterior has removed them (it generally has, by the
// time refinement starts, but defensive callers can still ask).
func (m *Mesh) IsSuperVertex(v *Vertex) bool {
	return v == m.Inf1 || v == m.Inf2 || v == m.Inf3
}

// recoverSegment ensures the directed edge (a,b) exists in the
// triangulation, flipping the diagonal of whichever triangle pair the
// segment currently crosses (Sloan's algorithm) until it does, then marks
// it as a subsegment.
func (m *Mesh) recoverSegment(a, b *Vertex, mark int) error {
	if e, ok := m.findIncidentEdge(a, b); ok {
		m.markSubsegment(e, mark)
		return nil
	}
	if e, ok := m.findIncidentEdge(b, a); ok {
		m.markSubsegment(e.Sym(), mark)
		return nil
	}

	for i := 0; i < maxFanSize; i++ {
		crossing, ok := m.findCrossingEdge(a, b)
		if !ok {
			return ErrSegmentRecoveryFailed
		}
		if crossing.SegPivot().IsDummy() {
			flip(crossing)
		} else {
			return ErrSegmentRecoveryFailed
		}
		if e, ok := m.findIncidentEdge(a, b); ok {
			m.markSubsegment(e, mark)
			return nil
		}
	}
	return ErrSegmentRecoveryFailed
}

// findCrossingEdge scans live triangles for an interior edge whose segment
// properly intersects (a,b); such an edge is a candidate diagonal flip
// that brings the triangulation a step closer to containing (a,b).
func (m *Mesh) findCrossingEdge(a, b *Vertex) (Otri, bool) {
	pa, pb := a.Point(), b.Point()
	for _, t := range m.triangles {
		if t.dead {
			continue
		}
		for o := 0; o < 3; o++ {
			e := Otri{t, o}
			if e.Sym().IsDummy() {
				continue
			}
			p1, p2 := e.Org().Point(), e.Dest().Point()
			if segmentsProperlyIntersect(pa, pb, p1, p2) {
				return e, true
			}
		}
	}
	return Otri{}, false
}

func segmentsProperlyIntersect(a, b, c, d predicates.Point) bool {
	d1 := predicates.Orient2D(c, d, a)
	d2 := predicates.Orient2D(c, d, b)
	d3 := predicates.Orient2D(a, b, c)
	d4 := predicates.Orient2D(a, b, d)
	return ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0))
}

// stripExterior removes every triangle reachable, without crossing a
// subsegment, from a super-triangle corner or from one of the supplied
// hole points, rebonding the triangles left behind to the dummy sentinel
// along the boundary this exposes.
func (m *Mesh) stripExterior(holes []predicates.Point) {
	seedTris := map[*Triangle]bool{}
	for _, t := range m.triangles {
		if t.dead {
			continue
		}
		if m.IsSuperVertex(t.vert[0]) || m.IsSuperVertex(t.vert[1]) || m.IsSuperVertex(t.vert[2]) {
			seedTris[t] = true
		}
	}
	for _, h := range holes {
		start := m.anyLiveTriangle()
		if loc, kind, err := m.locate(start, h); err == nil && kind != locateOutside {
			seedTris[loc.T] = true
		}
	}

	exterior := map[*Triangle]bool{}
	var stack []*Triangle
	for t := range seedTris {
		exterior[t] = true
		stack = append(stack, t)
	}
	for len(stack) > 0 {
		t := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for o := 0; o < 3; o++ {
			e := Otri{t, o}
			if !e.SegPivot().IsDummy() {
				continue
			}
			n := e.Sym()
			if n.IsDummy() || exterior[n.T] {
				continue
			}
			exterior[n.T] = true
			stack = append(stack, n.T)
		}
	}

	for t := range exterior {
		for o := 0; o < 3; o++ {
			e := Otri{t, o}
			sym := e.Sym()
			if !sym.IsDummy() && !exterior[sym.T] {
				dissolve(sym)
			}
			if s := t.subseg[o]; s.s != dummySub && s.s.tri[s.o].t == t {
				s.s.tri[s.o] = triNeighbor{dummyTri, 0}
			}
		}
		t.dead = true
	}
}
