package mesh

import "github.com/aurelien-rainone/assertgo"

// This file implements the handle-pair device the rest of the engine is
// built on: a Triangle (or Subsegment) plus a small orientation selects one
// directed edge. Orientation 0, 1, 2 on a triangle select the edge running
// from vert[o] to vert[(o+1)%3]; the third vertex is that edge's apex.
// Orientation 0 or 1 on a subsegment selects one of its two directions.
//
// Neighbors are stored as (pointer, orientation) pairs rather than plain
// pointers so that Sym, Lnext, Lprev and friends never need to search for
// which edge of the neighbor matches: the bond is recorded once, when the
// two triangles (or a triangle and a subsegment) are first glued together.

type triNeighbor struct {
	t *Triangle
	o int
}

type subNeighbor struct {
	s *Subsegment
	o int
}

// Triangle is one face of the mesh. AreaTarget is the user-assignable
// per-triangle area constraint referenced by the quality tester (<=0 means
// unconstrained).
type Triangle struct {
	vert   [3]*Vertex
	neigh  [3]triNeighbor
	subseg [3]subNeighbor

	AreaTarget float64

	dead bool
	id   int
}

// Subsegment is a constrained edge of the PSLG.
type Subsegment struct {
	vert [2]*Vertex
	tri  [2]triNeighbor

	Mark int

	dead bool
	id   int
}

// dummyTri and dummySub are the sentinels for "no neighbor here" described
// here: every boundary edge bonds to dummyTri instead of needing a nil
// check, and every triangle edge with no constraint bonds to dummySub.
var dummyTri = &Triangle{dead: true}
var dummySub = &Subsegment{dead: true}

func init() {
	for i := 0; i < 3; i++ {
		dummyTri.neigh[i] = triNeighbor{dummyTri, i}
		dummyTri.subseg[i] = subNeighbor{dummySub, 0}
	}
	dummySub.tri[0] = triNeighbor{dummyTri, 0}
	dummySub.tri[1] = triNeighbor{dummyTri, 0}
}

// Otri is a handle onto one directed edge of a triangle.
type Otri struct {
	T *Triangle
	O int
}

// DummyTriangle returns the handle every "no neighbor" edge resolves to.
func DummyTriangle() Otri { return Otri{dummyTri, 0} }

// IsDead reports whether the underlying triangle has been removed from the
// mesh (by a cavity retriangulation, a delete, or an undo).
func (t Otri) IsDead() bool { return t.T == nil || t.T.dead }

// IsDummy reports whether this handle is the outside-of-mesh sentinel.
func (t Otri) IsDummy() bool { return t.T == dummyTri }

func (t Otri) Org() *Vertex  { return t.T.vert[t.O] }
func (t Otri) Dest() *Vertex { return t.T.vert[(t.O+1)%3] }
func (t Otri) Apex() *Vertex { return t.T.vert[(t.O+2)%3] }

func (t Otri) Lnext() Otri { return Otri{t.T, (t.O + 1) % 3} }
func (t Otri) Lprev() Otri { return Otri{t.T, (t.O + 2) % 3} }

func (t *Otri) LnextSelf() { *t = t.Lnext() }
func (t *Otri) LprevSelf() { *t = t.Lprev() }

// Sym crosses to the neighboring triangle sharing this edge, preserving
// orientation so the new handle's org/dest are this handle's dest/org.
func (t Otri) Sym() Otri {
	n := t.T.neigh[t.O]
	if n.t == nil {
		return DummyTriangle()
	}
	return Otri{n.t, n.o}
}

func (t *Otri) SymSelf() { *t = t.Sym() }

// Oprev rotates around the origin vertex to the previous triangle in the
// fan: sym then lnext.
func (t Otri) Oprev() Otri {
	s := t.Sym()
	return s.Lnext()
}

func (t *Otri) OprevSelf() { *t = t.Oprev() }

// Dnext rotates around the destination vertex to the next triangle in the
// fan: sym then lprev.
func (t Otri) Dnext() Otri {
	s := t.Sym()
	return s.Lprev()
}

func (t *Otri) DnextSelf() { *t = t.Dnext() }

// SegPivot returns the subsegment bonded to this edge, or a dead Osub over
// dummySub if the edge carries no constraint.
func (t Otri) SegPivot() Osub {
	n := t.T.subseg[t.O]
	return Osub{n.s, n.o}
}

// Copy returns t; handles are plain values, copying is just assignment, but
// this mirrors the orientation-handle contract for readability at call
// sites that are translating the pseudocode directly.
func (t Otri) Copy() Otri { return t }

// bond glues two triangle edges together as mutual Sym neighbors.
func bond(a, b Otri) {
	assert.True(a.T != nil && b.T != nil, "bond: cannot bond a nil triangle")
	a.T.neigh[a.O] = triNeighbor{b.T, b.O}
	b.T.neigh[b.O] = triNeighbor{a.T, a.O}
}

// dissolve unbonds an edge, pointing it at the dummy sentinel.
func dissolve(a Otri) {
	a.T.neigh[a.O] = triNeighbor{dummyTri, 0}
}

// segBond glues a triangle edge to a subsegment, matching their
// orientations so SegPivot(a) == s and TriPivot(s) == a.
func segBond(a Otri, s Osub) {
	a.T.subseg[a.O] = subNeighbor{s.S, s.O}
	s.S.tri[s.O] = triNeighbor{a.T, a.O}
}

// segDissolve removes the constraint from a triangle edge without touching
// the subsegment itself (used when a triangle is being discarded).
func segDissolve(a Otri) {
	a.T.subseg[a.O] = subNeighbor{dummySub, 0}
}

// Osub is a handle onto one directed subsegment.
type Osub struct {
	S *Subsegment
	O int
}

// DummySubseg returns the handle every unconstrained edge resolves to.
func DummySubseg() Osub { return Osub{dummySub, 0} }

func (s Osub) IsDead() bool  { return s.S == nil || s.S.dead }
func (s Osub) IsDummy() bool { return s.S == dummySub }

func (s Osub) Org() *Vertex {
	if s.O == 0 {
		return s.S.vert[0]
	}
	return s.S.vert[1]
}

func (s Osub) Dest() *Vertex {
	if s.O == 0 {
		return s.S.vert[1]
	}
	return s.S.vert[0]
}

func (s Osub) Sym() Osub { return Osub{s.S, 1 - s.O} }

func (s *Osub) SymSelf() { *s = s.Sym() }

// TriPivot returns the triangle bonded to this subsegment on this
// orientation's side.
func (s Osub) TriPivot() Otri {
	n := s.S.tri[s.O]
	if n.t == nil {
		return DummyTriangle()
	}
	return Otri{n.t, n.o}
}

func (s Osub) Copy() Osub { return s }

func (s Osub) Mark() int { return s.S.Mark }
