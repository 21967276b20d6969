package refine

import (
	"fmt"

	"github.com/arl/meshquality/mesh"
	"github.com/arl/meshquality/predicates"
)

// CheckMesh is the topological consistency checker (component H): for
// every triangle, it verifies the orientation-0 handle is counterclockwise
// and that each of the triangle's three edges agrees with its neighbor
// about the shared vertices and the neighbor relationship is mutual. Both
// checkers force exact arithmetic on for their duration, restoring the
// prior setting on every exit path.
func (e *Engine) CheckMesh() (violations int, summary string) {
	prior := predicates.SetExact(true)
	defer predicates.SetExact(prior)

	for _, t := range e.Mesh.Triangles() {
		if predicates.Orient2D(t.Org().Point(), t.Dest().Point(), t.Apex().Point()) <= 0 {
			violations++
		}
		for o := 0; o < 3; o++ {
			edge := mesh.Otri{T: t.T, O: o}
			sym := edge.Sym()
			if sym.IsDummy() {
				continue
			}
			if back := sym.Sym(); back.T != edge.T || back.O != edge.O {
				violations++
				continue
			}
			if edge.Org() != sym.Dest() || edge.Dest() != sym.Org() {
				violations++
			}
		}
	}

	summary = meshCheckSummary(violations, "topological violation")
	return violations, summary
}

// CheckDelaunay is the local Delaunay-ness checker (component H): for
// every unconstrained interior edge not bounded by one of the
// super-triangle's synthetic corners, it verifies the opposite apex does
// not violate the in-circle test against the edge's own triangle. Each
// interior edge is reachable from both of its triangles, so a violation
// there is counted twice; that is a diagnostic overcount, not a defect.
func (e *Engine) CheckDelaunay() (violations int, summary string) {
	prior := predicates.SetExact(true)
	defer predicates.SetExact(prior)

	for _, t := range e.Mesh.Triangles() {
		for o := 0; o < 3; o++ {
			edge := mesh.Otri{T: t.T, O: o}
			if !edge.SegPivot().IsDummy() {
				continue
			}
			sym := edge.Sym()
			if sym.IsDummy() {
				continue
			}
			if e.Mesh.IsSuperVertex(edge.Org()) || e.Mesh.IsSuperVertex(edge.Dest()) ||
				e.Mesh.IsSuperVertex(edge.Apex()) || e.Mesh.IsSuperVertex(sym.Apex()) {
				continue
			}
			if predicates.NonRegular(edge.Org().Point(), edge.Dest().Point(), edge.Apex().Point(), sym.Apex().Point()) > 0 {
				violations++
			}
		}
	}

	summary = meshCheckSummary(violations, "Delaunay violation")
	return violations, summary
}

func meshCheckSummary(count int, noun string) string {
	switch count {
	case 0:
		return fmt.Sprintf("mesh has no %s", noun)
	case 1:
		return fmt.Sprintf("mesh has 1 %s", noun)
	default:
		return fmt.Sprintf("mesh has %d %ss", count, noun)
	}
}
