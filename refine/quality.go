package refine

import (
	"math"

	"github.com/arl/meshquality/mesh"
)

func edgeSquared(a, b *mesh.Vertex) float64 {
	dx, dy := a.X-b.X, a.Y-b.Y
	return dx*dx + dy*dy
}

type triEdge struct {
	sq float64
	h  mesh.Otri
}

// testTriangleQuality reports whether t fails
// any configured quality test, the key (square of its shortest edge, used
// for queue ordering) and a handle aligned on that shortest edge.
func (e *Engine) testTriangleQuality(t mesh.Otri) (bad bool, key float64, handle mesh.Otri) {
	org, dest, apex := t.Org(), t.Dest(), t.Apex()
	edges := [3]triEdge{
		{edgeSquared(org, dest), t},
		{edgeSquared(dest, apex), t.Lnext()},
		{edgeSquared(apex, org), t.Lprev()},
	}

	shortI, longI := 0, 0
	for i := 1; i < 3; i++ {
		if edges[i].sq < edges[shortI].sq {
			shortI = i
		}
		if edges[i].sq > edges[longI].sq {
			longI = i
		}
	}
	tri1 := edges[shortI].h
	key = edges[shortI].sq

	if e.Behavior.FixedArea || e.Behavior.VarArea || e.Behavior.UserTest != nil {
		signedArea2 := (dest.X-org.X)*(apex.Y-org.Y) - (dest.Y-org.Y)*(apex.X-org.X)
		area := math.Abs(signedArea2) / 2
		switch {
		case e.Behavior.FixedArea && area > e.Behavior.MaxArea:
			return true, key, tri1
		case e.Behavior.VarArea && t.T.AreaTarget > 0 && area > t.T.AreaTarget:
			return true, key, tri1
		case e.Behavior.UserTest != nil &&
			e.Behavior.UserTest([2]float64{org.X, org.Y}, [2]float64{dest.X, dest.Y}, [2]float64{apex.X, apex.Y}, area):
			return true, key, tri1
		}
	}

	if e.Behavior.MinAngle <= 0 && e.Behavior.MaxAngle == 0 {
		return false, key, tri1
	}

	adjProduct := func(skip int) float64 {
		p := 1.0
		for j, edge := range edges {
			if j != skip {
				p *= edge.sq
			}
		}
		return p
	}
	dotAt := func(h mesh.Otri) float64 {
		o, d, a := h.Org(), h.Dest(), h.Apex()
		ux, uy := o.X-a.X, o.Y-a.Y
		vx, vy := d.X-a.X, d.Y-a.Y
		return ux*vx + uy*vy
	}

	if e.Behavior.MinAngle > 0 {
		dotShort := dotAt(edges[shortI].h)
		cosSqShort := dotShort * dotShort / adjProduct(shortI)
		if cosSqShort > e.Behavior.GoodAngle {
			if e.exemptByMPW(tri1) {
				return false, key, tri1
			}
			return true, key, tri1
		}
	}
	if e.Behavior.MaxAngle != 0 {
		dotLong := dotAt(edges[longI].h)
		cosLong := dotLong / math.Sqrt(adjProduct(longI))
		if cosLong < e.Behavior.MaxGoodAngle {
			return true, key, tri1
		}
	}
	return false, key, tri1
}

// exemptByMPW implements the Miller-Pav-Walkington exemption: a
// triangle that would only be flagged for its minimum angle is spared when
// both endpoints of its shortest edge sit on subsegments that converge, at
// a shared endpoint J, to within 0.1% of the same distance from J -- the
// signature of a triangle sitting harmlessly on a concentric shell about a
// small input angle.
func (e *Engine) exemptByMPW(shortEdge mesh.Otri) bool {
	base1, base2 := shortEdge.Org(), shortEdge.Dest()
	if base1.Kind != mesh.SegmentVertex || base2.Kind != mesh.SegmentVertex {
		return false
	}
	seg1, ok1 := e.incidentSubseg(base1)
	seg2, ok2 := e.incidentSubseg(base2)
	if !ok1 || !ok2 {
		return false
	}
	j1 := otherEndpoint(seg1, base1)
	j2 := otherEndpoint(seg2, base2)
	if j1 != j2 {
		return false
	}
	d1 := math.Sqrt(edgeSquared(base1, j1))
	d2 := math.Sqrt(edgeSquared(base2, j2))
	if d1 == 0 || d2 == 0 {
		return false
	}
	rel := math.Abs(d1-d2) / math.Max(d1, d2)
	return rel <= 0.001
}

// incidentSubseg scans the live subsegments for one touching v. Used only
// by the MPW exemption, which runs at most once per candidate bad
// triangle, so the linear scan is not a hot path.
func (e *Engine) incidentSubseg(v *mesh.Vertex) (mesh.Osub, bool) {
	for _, s := range e.Mesh.Subsegs() {
		if s.Org() == v {
			return s, true
		}
		if s.Dest() == v {
			return s.Sym(), true
		}
	}
	return mesh.Osub{}, false
}

func otherEndpoint(s mesh.Osub, v *mesh.Vertex) *mesh.Vertex {
	if s.Org() == v {
		return s.Dest()
	}
	return s.Org()
}

// tallyFaces seeds the bad-triangle queue from every live triangle (the
// second step of EnforceQuality).
func (e *Engine) tallyFaces() {
	for _, t := range e.Mesh.Triangles() {
		if e.Mesh.IsSuperVertex(t.Org()) || e.Mesh.IsSuperVertex(t.Dest()) || e.Mesh.IsSuperVertex(t.Apex()) {
			continue
		}
		if bad, key, handle := e.testTriangleQuality(t); bad {
			e.badTriangles.Enqueue(&BadTriangle{
				Handle: handle,
				Key:    key,
				Org:    handle.Org(),
				Dest:   handle.Dest(),
				Apex:   handle.Apex(),
			})
		}
	}
}
