// Package mesh is the triangulation collaborator the refinement engine
// (package refine) consumes: arena-backed vertices, triangles and
// subsegments, exposed through the orientation-handle API
// (Otri, Osub), plus the mutation primitives InsertVertex, DeleteVertex and
// UndoVertex. It owns incremental Delaunay maintenance (Bowyer-Watson
// cavity retriangulation with Lawson-flip legalization) and constrained
// segment recovery; it knows nothing about angle or area quality targets,
// encroachment policy, or Steiner budgets -- that policy lives entirely in
// package refine and is threaded through as a caller-supplied predicate
// where the mesh needs one (see EncroachTest).
package mesh

import (
	"fmt"

	"github.com/aurelien-rainone/assertgo"

	"github.com/arl/meshquality/predicates"
)

const maxFanSize = 4096

// InsertResult is the outcome of InsertVertex.
type InsertResult int

const (
	Successful InsertResult = iota
	Encroaching
	Violating
	Duplicate
)

func (r InsertResult) String() string {
	switch r {
	case Successful:
		return "successful"
	case Encroaching:
		return "encroaching"
	case Violating:
		return "violating"
	case Duplicate:
		return "duplicate"
	default:
		return "unknown"
	}
}

// EncroachTest decides whether apex encroaches upon the subsegment
// (segOrg, segDest). The mesh package has no opinion on Ruppert vs Chew
// encroachment, area targets or min_angle: refine.Engine supplies this
// predicate (its component A) so InsertVertex can refuse an insertion that
// would leave an encroached subsegment next to a newly split triangle
// (invariant I3).
type EncroachTest func(segOrg, segDest, apex *Vertex) bool

// Mesh is the arena: every Triangle and Subsegment ever allocated lives
// here for the lifetime of the mesh, tombstoned (dead=true) rather than
// freed, so outstanding handles never dangle.
type Mesh struct {
	triangles []*Triangle
	subsegs   []*Subsegment
	vertices  []*Vertex

	Nextras int // attribute count carried by every Vertex

	// Inf1, Inf2, Inf3 are the synthetic super-triangle corners NewFromPSLG
	// introduces to bootstrap incremental insertion; nil on a Mesh built by
	// hand (tests) rather than through NewFromPSLG.
	Inf1, Inf2, Inf3 *Vertex

	nextTriID, nextSubID, nextVertID int

	pending *undoRecord
}

// New returns an empty mesh ready for NewFromPSLG or manual construction in
// tests.
func New(nextras int) *Mesh {
	return &Mesh{Nextras: nextras}
}

// Triangles returns a handle (orientation 0) onto every live triangle.
func (m *Mesh) Triangles() []Otri {
	out := make([]Otri, 0, len(m.triangles))
	for _, t := range m.triangles {
		if !t.dead {
			out = append(out, Otri{t, 0})
		}
	}
	return out
}

// Subsegs returns a handle (orientation 0) onto every live subsegment.
func (m *Mesh) Subsegs() []Osub {
	out := make([]Osub, 0, len(m.subsegs))
	for _, s := range m.subsegs {
		if !s.dead {
			out = append(out, Osub{s, 0})
		}
	}
	return out
}

// Vertices returns every vertex registered with the mesh, input and Steiner
// alike, including the super-triangle corners and any vertex since removed
// by DeleteVertex.
func (m *Mesh) Vertices() []*Vertex { return m.vertices }

// NumTriangles reports the number of live triangles and NumVertices the
// length of Vertices(); the CLI and tests use them to report refinement
// progress.
func (m *Mesh) NumTriangles() int {
	n := 0
	for _, t := range m.triangles {
		if !t.dead {
			n++
		}
	}
	return n
}

func (m *Mesh) NumVertices() int { return len(m.vertices) }

func (m *Mesh) addTriangle(a, b, c *Vertex) *Triangle {
	t := &Triangle{vert: [3]*Vertex{a, b, c}, id: m.nextTriID}
	m.nextTriID++
	for i := 0; i < 3; i++ {
		t.neigh[i] = triNeighbor{dummyTri, 0}
		t.subseg[i] = subNeighbor{dummySub, 0}
	}
	m.triangles = append(m.triangles, t)
	return t
}

func (m *Mesh) registerVertex(v *Vertex) {
	v.id = m.nextVertID
	m.nextVertID++
	m.vertices = append(m.vertices, v)
}

func (m *Mesh) markSubsegment(a Otri, mrk int) Osub {
	s := &Subsegment{vert: [2]*Vertex{a.Org(), a.Dest()}, Mark: mrk, id: m.nextSubID}
	m.nextSubID++
	m.subsegs = append(m.subsegs, s)
	osub := Osub{s, 0}
	segBond(a, osub)
	sym := a.Sym()
	if !sym.IsDummy() {
		segBond(sym, osub.Sym())
	}
	return osub
}

// ---- point location -------------------------------------------------

// locateResult distinguishes an interior hit from an on-edge hit; the
// latter matters for segment splitting, which inserts directly on a
// subsegment.
type locateResult int

const (
	locateInside locateResult = iota
	locateOnEdge
	locateOutside
)

// locate walks from start toward p using the standard CCW-orientation
// straight walk, falling back to a linear scan if the walk does not
// converge within a bounded number of steps (defends against orientation
// ties on degenerate input without looping forever).
func (m *Mesh) locate(start Otri, p predicates.Point) (Otri, locateResult, error) {
	t := start
	if t.IsDead() || t.IsDummy() {
		t = m.anyLiveTriangle()
		if t.IsDummy() {
			return Otri{}, locateOutside, ErrNoContainingTriangle
		}
	}
	for i := 0; i < maxFanSize; i++ {
		oOD := predicates.Orient2D(t.Org().Point(), t.Dest().Point(), p)
		if oOD < 0 {
			t.SymSelf()
			if t.IsDummy() {
				return m.locateLinear(p)
			}
			continue
		}
		tl := t.Lnext()
		oDA := predicates.Orient2D(tl.Org().Point(), tl.Dest().Point(), p)
		if oDA < 0 {
			t = tl.Sym()
			if t.IsDummy() {
				return m.locateLinear(p)
			}
			continue
		}
		tp := t.Lprev()
		oAO := predicates.Orient2D(tp.Org().Point(), tp.Dest().Point(), p)
		if oAO < 0 {
			t = tp.Sym()
			if t.IsDummy() {
				return m.locateLinear(p)
			}
			continue
		}
		switch {
		case oOD == 0:
			return t, locateOnEdge, nil
		case oDA == 0:
			return tl, locateOnEdge, nil
		case oAO == 0:
			return tp, locateOnEdge, nil
		default:
			return t, locateInside, nil
		}
	}
	return m.locateLinear(p)
}

// EdgeAt returns some live triangle handle whose origin is v, or false if
// v has no live incident triangle (dead or never inserted). Used by the
// refinement engine's free-vertex clearance step, which needs a fresh
// handle after each deletion changes the local topology.
func (m *Mesh) EdgeAt(v *Vertex) (Otri, bool) {
	for _, t := range m.triangles {
		if t.dead {
			continue
		}
		for o := 0; o < 3; o++ {
			e := Otri{t, o}
			if e.Org() == v {
				return e, true
			}
		}
	}
	return Otri{}, false
}

func (m *Mesh) anyLiveTriangle() Otri {
	for _, t := range m.triangles {
		if !t.dead {
			return Otri{t, 0}
		}
	}
	return DummyTriangle()
}

func (m *Mesh) locateLinear(p predicates.Point) (Otri, locateResult, error) {
	for _, t := range m.triangles {
		if t.dead {
			continue
		}
		e := Otri{t, 0}
		oOD := predicates.Orient2D(e.Org().Point(), e.Dest().Point(), p)
		if oOD < 0 {
			continue
		}
		tl := e.Lnext()
		oDA := predicates.Orient2D(tl.Org().Point(), tl.Dest().Point(), p)
		if oDA < 0 {
			continue
		}
		tp := e.Lprev()
		oAO := predicates.Orient2D(tp.Org().Point(), tp.Dest().Point(), p)
		if oAO < 0 {
			continue
		}
		switch {
		case oOD == 0:
			return e, locateOnEdge, nil
		case oDA == 0:
			return tl, locateOnEdge, nil
		case oAO == 0:
			return tp, locateOnEdge, nil
		default:
			return e, locateInside, nil
		}
	}
	return Otri{}, locateOutside, ErrNoContainingTriangle
}

// ---- insertion --------------------------------------------------------

type undoRecord struct {
	created     []*Triangle
	removed     []*Triangle
	createdSubs []*Subsegment
	addedVertex *Vertex
}

func sameVertex(a, b *Vertex) bool { return a == b }

func coincident(a *Vertex, p predicates.Point) bool {
	return a.X == p.X && a.Y == p.Y
}

// InsertVertex locates v, builds its Bowyer-Watson cavity, and -- unless
// triFlaws forbids an insertion that would leave a subsegment encroached
// (I3) -- retriangulates the cavity as a fan around v. onSeg is the
// subsegment v lies exactly on (a dummy Osub when v is a free or off-center
// point not constrained to any segment); expandCavity treats onSeg's own
// edge as crossable so both of its adjoining triangles join the same
// cavity, while every other subsegment still blocks expansion. The
// InsertResult and accompanying newly-encroached subsegment list follow a
// fixed contract: Successful/Encroaching always insert; Violating never
// does; Duplicate never does.
func (m *Mesh) InsertVertex(v *Vertex, start Otri, onSeg Osub, segFlaws, triFlaws bool, encroaches EncroachTest) (InsertResult, []Osub, error) {
	loc, kind, err := m.locate(start, v.Point())
	if err != nil {
		return Duplicate, nil, err
	}
	if coincident(loc.Org(), v.Point()) || coincident(loc.Dest(), v.Point()) || coincident(loc.Apex(), v.Point()) {
		return Duplicate, nil, nil
	}

	var seeds []Otri
	if kind == locateOnEdge {
		seeds = append(seeds, loc)
		if sym := loc.Sym(); !sym.IsDummy() {
			seeds = append(seeds, sym)
		}
	} else {
		seeds = append(seeds, loc)
	}

	cavity, frontier := m.expandCavity(seeds, v.Point(), onSeg)

	var encroached []Osub
	if segFlaws {
		for _, f := range frontier {
			sub := f.SegPivot()
			if sub.IsDummy() {
				continue
			}
			if encroaches != nil && encroaches(sub.Org(), sub.Dest(), v) {
				encroached = append(encroached, sub)
			}
		}
	}

	if triFlaws && len(encroached) > 0 {
		return Violating, encroached, nil
	}

	created := m.retriangulateCavity(cavity, frontier, v)
	m.registerVertex(v)

	removed := make([]*Triangle, 0, len(cavity))
	for t := range cavity {
		removed = append(removed, t)
	}
	m.pending = &undoRecord{created: created, removed: removed, addedVertex: v}

	if len(encroached) > 0 {
		return Encroaching, encroached, nil
	}
	return Successful, nil, nil
}

// expandCavity grows the Bowyer-Watson cavity outward from seeds: a
// neighbor triangle joins the cavity iff the shared edge carries either no
// subsegment or onSeg itself, and p lies strictly inside the neighbor's
// circumcircle. onSeg being crossable (rather than a permanent frontier
// wall like every other subsegment) is what lets a vertex inserted exactly
// on a segment pull in the triangles on both sides of it; the edge is
// still never added to frontier once both its triangles are in the
// cavity, since it disappears entirely once v splits it. frontier collects
// the boundary edges (subsegment-blocked, incircle-failed or
// mesh-boundary) in discovery order; orderFrontier below stitches them
// into the cyclic ring the fan retriangulation needs.
func (m *Mesh) expandCavity(seeds []Otri, p predicates.Point, onSeg Osub) (map[*Triangle]bool, []Otri) {
	cavity := map[*Triangle]bool{}
	var stack []*Triangle
	for _, s := range seeds {
		if !cavity[s.T] {
			cavity[s.T] = true
			stack = append(stack, s.T)
		}
	}
	var frontier []Otri
	for len(stack) > 0 {
		t := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for o := 0; o < 3; o++ {
			e := Otri{t, o}
			sub := e.SegPivot()
			crossable := sub.IsDummy() || (!onSeg.IsDummy() && sub.S == onSeg.S)
			if !crossable {
				frontier = append(frontier, e)
				continue
			}
			n := e.Sym()
			if n.IsDummy() || cavity[n.T] {
				if n.IsDummy() {
					frontier = append(frontier, e)
				}
				continue
			}
			if predicates.InCircle(n.Org().Point(), n.Dest().Point(), n.Apex().Point(), p) > 0 {
				cavity[n.T] = true
				stack = append(stack, n.T)
			} else {
				frontier = append(frontier, e)
			}
		}
	}
	return cavity, orderFrontier(frontier)
}

// orderFrontier chains the frontier edges, found in arbitrary discovery
// order, into a single cycle ring[i].Dest() == ring[i+1].Org().
func orderFrontier(frontier []Otri) []Otri {
	byOrg := make(map[*Vertex]Otri, len(frontier))
	for _, e := range frontier {
		byOrg[e.Org()] = e
	}
	if len(frontier) == 0 {
		return nil
	}
	ring := make([]Otri, 0, len(frontier))
	cur := frontier[0]
	for i := 0; i < len(frontier); i++ {
		ring = append(ring, cur)
		next, ok := byOrg[cur.Dest()]
		if !ok {
			break
		}
		cur = next
	}
	return ring
}

// retriangulateCavity removes the cavity triangles and builds a fan of new
// triangles around v, one per frontier edge, bonding each to its saved
// external neighbor and restoring any subsegment constraint.
func (m *Mesh) retriangulateCavity(cavity map[*Triangle]bool, frontier []Otri, v *Vertex) []*Triangle {
	for t := range cavity {
		t.dead = true
	}

	n := len(frontier)
	spokes := make([]Otri, n)
	created := make([]*Triangle, n)
	for i, f := range frontier {
		org, dest := f.Org(), f.Dest()
		ext := f.Sym()
		sub := f.SegPivot()
		nt := m.addTriangle(org, dest, v)
		created[i] = nt
		e0 := Otri{nt, 0}
		bond(e0, ext)
		if !sub.IsDummy() {
			segBond(e0, sub)
		}
		spokes[i] = e0
	}
	for i := 0; i < n; i++ {
		cur := spokes[i]
		next := spokes[(i+1)%n]
		bond(Otri{cur.T, 1}, Otri{next.T, 2})
	}
	return created
}

// findIncidentEdge scans every live triangle for an edge running from v to
// other. Its callers (SplitSubsegment, and recoverSegment during
// construction) accept the linear cost in exchange for not threading an
// anchor handle back out of InsertVertex or flip.
func (m *Mesh) findIncidentEdge(v, other *Vertex) (Otri, bool) {
	for _, t := range m.triangles {
		if t.dead {
			continue
		}
		for o := 0; o < 3; o++ {
			e := Otri{t, o}
			if e.Org() == v && e.Dest() == other {
				return e, true
			}
		}
	}
	return Otri{}, false
}

// SplitSubsegment inserts v exactly on old (which must be collinear with,
// and strictly between, old's endpoints), passing old itself through to
// InsertVertex as the crossable subsegment so the cavity spans both of
// old's adjoining triangles instead of stopping at one, and replaces old
// with two new subsegments carrying its mark. first is the half adjacent
// to old.Org(), second the half adjacent to old.Dest().
func (m *Mesh) SplitSubsegment(old Osub, v *Vertex, triFlaws bool, encroaches EncroachTest) (res InsertResult, first, second Osub, encroached []Osub, err error) {
	orgV, destV := old.Org(), old.Dest()
	mark := old.S.Mark

	start := old.TriPivot()
	if start.IsDummy() {
		start = old.Sym().TriPivot()
	}

	res, encroached, err = m.InsertVertex(v, start, old, true, triFlaws, encroaches)
	if err != nil || res == Violating || res == Duplicate {
		return res, Osub{}, Osub{}, encroached, err
	}

	eOrg, ok1 := m.findIncidentEdge(v, orgV)
	eDest, ok2 := m.findIncidentEdge(v, destV)
	if !ok1 || !ok2 {
		return res, Osub{}, Osub{}, encroached, fmt.Errorf("mesh: could not locate split halves of segment")
	}

	old.S.dead = true
	if m.pending != nil {
		m.pending.createdSubs = nil
	}
	first = m.markSubsegment(eOrg, mark)
	second = m.markSubsegment(eDest, mark)
	return res, first, second, encroached, nil
}

// ---- deletion -----------------------------------------------------------

// vertexRing walks the triangle fan around at.Org() via Oprev, returning
// the handles in cyclic order. It returns false if the vertex sits on the
// mesh boundary (fan hits the dummy sentinel) -- DeleteVertex only
// supports interior free vertices, which is all the Chew-mode clearance
// step ever needs.
func (m *Mesh) vertexRing(at Otri) ([]Otri, bool) {
	v := at.Org()
	ring := make([]Otri, 0, 8)
	cur := at
	for i := 0; i < maxFanSize; i++ {
		if cur.Org() != v {
			return nil, false
		}
		ring = append(ring, cur)
		cur = cur.Oprev()
		if cur.T == at.T && cur.O == at.O {
			return ring, true
		}
		if cur.IsDummy() {
			return nil, false
		}
	}
	return nil, false
}

// DeleteVertex removes the free vertex at.Org() and retriangulates the
// resulting star, fanning from the first ring vertex and legalizing the
// new internal diagonals. It assumes the star is visible from that vertex
// (true whenever the deleted point was itself inserted into a Delaunay
// mesh and has not since made its neighborhood non-convex).
func (m *Mesh) DeleteVertex(at Otri) error {
	ring, ok := m.vertexRing(at)
	if !ok || len(ring) < 3 {
		return fmt.Errorf("mesh: cannot delete vertex: degenerate or boundary fan")
	}
	n := len(ring)
	poly := make([]*Vertex, n)
	type outerInfo struct {
		sym Otri
		sub Osub
	}
	outers := make([]outerInfo, n)
	for i, e := range ring {
		poly[i] = e.Dest()
		oe := e.Lnext()
		outers[i] = outerInfo{sym: oe.Sym(), sub: oe.SegPivot()}
	}
	for _, e := range ring {
		e.T.dead = true
	}

	tris := make([]*Triangle, n-2)
	for i := 1; i < n-1; i++ {
		tris[i-1] = m.addTriangle(poly[0], poly[i], poly[i+1])
	}
	for i := 1; i < n-1; i++ {
		t := tris[i-1]
		e1 := Otri{t, 1}
		bond(e1, outers[i].sym)
		if !outers[i].sub.IsDummy() {
			segBond(e1, outers[i].sub)
		}
		if i == 1 {
			e0 := Otri{t, 0}
			bond(e0, outers[0].sym)
			if !outers[0].sub.IsDummy() {
				segBond(e0, outers[0].sub)
			}
		} else {
			bond(Otri{t, 0}, Otri{tris[i-2], 2})
		}
		if i == n-2 {
			e2 := Otri{t, 2}
			bond(e2, outers[n-1].sym)
			if !outers[n-1].sub.IsDummy() {
				segBond(e2, outers[n-1].sub)
			}
		}
	}
	for i := 1; i < n-2; i++ {
		m.legalize(Otri{tris[i-1], 2})
	}
	return nil
}

// ---- undo -----------------------------------------------------------

// UndoVertex reverses the most recent InsertVertex (or SplitSubsegment),
// used by the triangle splitter when insertion turned out Encroaching.
func (m *Mesh) UndoVertex() error {
	if m.pending == nil {
		return ErrNothingToUndo
	}
	u := m.pending
	for _, t := range u.created {
		t.dead = true
	}
	for _, t := range u.removed {
		t.dead = false
	}
	// The fan took over the cavity's outer edges; point the surviving
	// neighbors and subsegments back at the revived triangles.
	for _, t := range u.removed {
		for o := 0; o < 3; o++ {
			if n := t.neigh[o]; n.t != dummyTri && !n.t.dead {
				n.t.neigh[n.o] = triNeighbor{t, o}
			}
			if s := t.subseg[o]; s.s != dummySub {
				s.s.tri[s.o] = triNeighbor{t, o}
			}
		}
	}
	for _, s := range u.createdSubs {
		s.dead = true
	}
	if u.addedVertex != nil && len(m.vertices) > 0 && m.vertices[len(m.vertices)-1] == u.addedVertex {
		m.vertices = m.vertices[:len(m.vertices)-1]
	}
	m.pending = nil
	return nil
}

// ---- flips --------------------------------------------------------------

// flip performs the 2-2 diagonal flip of edge e, reusing e's and e.Sym()'s
// triangle objects in place (no arena growth). It returns the handle onto
// the new diagonal, oriented apex2->apex1 (see the derivation in
// DESIGN.md).
func flip(e Otri) Otri {
	org := e.Org()
	dest := e.Dest()
	apex1 := e.Apex()
	f := e.Sym()
	apex2 := f.Apex()

	extOrgApex2 := f.Lnext().Sym()
	subOrgApex2 := f.Lnext().SegPivot()
	extApex2Dest := f.Lprev().Sym()
	subApex2Dest := f.Lprev().SegPivot()
	extDestApex1 := e.Lnext().Sym()
	subDestApex1 := e.Lnext().SegPivot()
	extApex1Org := e.Lprev().Sym()
	subApex1Org := e.Lprev().SegPivot()

	t1, t2 := e.T, f.T
	t1.vert = [3]*Vertex{org, apex2, apex1}
	t2.vert = [3]*Vertex{apex2, dest, apex1}

	n1 := Otri{t1, 0} // org -> apex2
	n2 := Otri{t1, 2} // apex1 -> org
	n3 := Otri{t2, 0} // apex2 -> dest
	n4 := Otri{t2, 1} // dest -> apex1

	bond(n1, extOrgApex2)
	segSet(n1, subOrgApex2)
	bond(n2, extApex1Org)
	segSet(n2, subApex1Org)
	bond(n3, extApex2Dest)
	segSet(n3, subApex2Dest)
	bond(n4, extDestApex1)
	segSet(n4, subDestApex1)

	bond(Otri{t1, 1}, Otri{t2, 2})
	segDissolve(Otri{t1, 1})
	segDissolve(Otri{t2, 2})
	return Otri{t1, 1}
}

func segSet(e Otri, s Osub) {
	if s.IsDummy() {
		segDissolve(e)
	} else {
		segBond(e, s)
	}
}

// legalize restores the local Delaunay property around e by flipping it
// (and any edge that flip destabilizes, iteratively) whenever it is
// unconstrained and its opposite apex violates the in-circle test.
func (m *Mesh) legalize(e Otri) {
	stack := []Otri{e}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur.IsDead() || !cur.SegPivot().IsDummy() {
			continue
		}
		f := cur.Sym()
		if f.IsDummy() || f.IsDead() {
			continue
		}
		assert.True(cur.Org() == f.Dest() && cur.Dest() == f.Org(),
			"legalize: cur and its Sym must share the flip edge's endpoints")
		if predicates.InCircle(cur.Org().Point(), cur.Dest().Point(), cur.Apex().Point(), f.Apex().Point()) > 0 {
			diag := flip(cur)
			sym := diag.Sym()
			stack = append(stack,
				Otri{diag.T, 0}, Otri{diag.T, 2},
				Otri{sym.T, 0}, Otri{sym.T, 1})
		}
	}
}
