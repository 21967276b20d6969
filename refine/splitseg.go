package refine

import (
	"fmt"
	"math"

	"github.com/arl/meshquality/mesh"
	"github.com/arl/meshquality/predicates"
)

// endpointAcute tests whether the endpoint of sub selected by atOrg (true
// for sub.Org(), false for sub.Dest()) is acute -- another subsegment
// meets sub there. It is detected by pivoting around both adjoining
// triangles: from whichever triangle handle is aligned so its Org (resp.
// Dest) is the endpoint in question, lprev (resp. lnext) reaches the edge
// incident to that endpoint other than sub itself, and seg_pivot tests
// whether that edge is itself constrained.
func (e *Engine) endpointAcute(sub mesh.Osub, atOrg bool) bool {
	t1 := sub.TriPivot()   // t1.Org() == sub.Org(), t1.Dest() == sub.Dest()
	t2 := sub.Sym().TriPivot() // t2.Org() == sub.Dest(), t2.Dest() == sub.Org()

	var p1, p2 mesh.Otri
	if atOrg {
		p1 = t1.Lprev()
		p2 = t2.Lnext()
	} else {
		p1 = t1.Lnext()
		p2 = t2.Lprev()
	}
	if !t1.IsDummy() && !p1.SegPivot().IsDummy() {
		return true
	}
	if !t2.IsDummy() && !p2.SegPivot().IsDummy() {
		return true
	}
	return false
}

// clearFreeVertices is the Chew-only free-vertex clearance step: while
// neither endpoint is acute, any free-vertex apex strictly
// inside the diametral circle on either side is deleted and the
// neighborhood re-checked, since such an apex would otherwise block the
// upcoming midpoint split from landing in a legal position.
func (e *Engine) clearFreeVertices(sub mesh.Osub) {
	for side := 0; side < 2; side++ {
		for {
			var t mesh.Otri
			if side == 0 {
				t = sub.TriPivot()
			} else {
				t = sub.Sym().TriPivot()
			}
			if t.IsDummy() {
				break
			}
			apex := t.Apex()
			if apex.Kind != mesh.FreeVertex {
				break
			}
			v0x, v0y := sub.Org().X-apex.X, sub.Org().Y-apex.Y
			v1x, v1y := sub.Dest().X-apex.X, sub.Dest().Y-apex.Y
			if v0x*v1x+v0y*v1y >= 0 {
				break
			}
			at, ok := e.Mesh.EdgeAt(apex)
			if !ok {
				break
			}
			if err := e.Mesh.DeleteVertex(at); err != nil {
				break
			}
		}
	}
}

// nearestPowerOfTwo returns the power of two closest to target on a log
// scale, used by the concentric-shell split rule.
func nearestPowerOfTwo(target float64) float64 {
	if target <= 0 {
		return 1
	}
	return math.Pow(2, math.Round(math.Log2(target)))
}

func coincident(a, b *mesh.Vertex) bool { return a.X == b.X && a.Y == b.Y }

// splitSubseg is component E: it chooses a split parameter, builds and
// inserts the new vertex, and re-tests the two resulting half-subsegments
// for encroachment. A subsegment split is never vetoed -- unlike a
// triangle's circumcenter insertion, an already-encroached subsegment must
// always be split, since deferring it would leave invariant I3 violated
// indefinitely -- so it always calls SplitSubsegment with its veto flag
// off; the newly-encroached neighbors it still reports are queued for
// their own follow-up split rather than used to refuse this one.
func (e *Engine) splitSubseg(bad *BadSubseg) error {
	sub := bad.Handle

	orgAcute := e.endpointAcute(sub, true)
	destAcute := e.endpointAcute(sub, false)

	if !e.Behavior.ConformDel && !orgAcute && !destAcute {
		e.clearFreeVertices(sub)
	}

	e0, e1 := sub.Org(), sub.Dest()
	var t float64
	if !orgAcute && !destAcute {
		t = 0.5
	} else {
		length := math.Sqrt(edgeSquared(e0, e1))
		p := nearestPowerOfTwo(length / 2)
		t = p / length
		if destAcute && !orgAcute {
			t = 1 - t
		}
	}

	vx := e0.X + t*(e1.X-e0.X)
	vy := e0.Y + t*(e1.Y-e0.Y)

	nattrs := len(e0.Attrs)
	if len(e1.Attrs) > nattrs {
		nattrs = len(e1.Attrs)
	}
	attrs := make([]float64, nattrs)
	for i := range attrs {
		var a0, a1 float64
		if i < len(e0.Attrs) {
			a0 = e0.Attrs[i]
		}
		if i < len(e1.Attrs) {
			a1 = e1.Attrs[i]
		}
		attrs[i] = a0 + t*(a1-a0)
	}

	if !e.Behavior.NoExact {
		ccw := predicates.Orient2D(e0.Point(), e1.Point(), predicates.Point{X: vx, Y: vy})
		denom := edgeSquared(e0, e1)
		if denom != 0 {
			m := ccw / denom
			if !math.IsInf(m, 0) && !math.IsNaN(m) && m != 0 {
				vx += m * (e1.Y - e0.Y)
				vy += m * (e0.X - e1.X)
			}
		}
	}

	v := &mesh.Vertex{X: vx, Y: vy, Attrs: attrs, Mark: sub.Mark(), Kind: mesh.SegmentVertex}
	if coincident(v, e0) || coincident(v, e1) {
		return &PrecisionExhausted{Reason: "segment split point coincides with an existing endpoint"}
	}

	res, half1, half2, encroached, err := e.Mesh.SplitSubsegment(sub, v, false, e.apexEncroaches)
	if err != nil {
		return err
	}
	if res != mesh.Successful && res != mesh.Encroaching {
		return &PrecisionExhausted{Reason: fmt.Sprintf("unexpected insertion result %s splitting a subsegment", res)}
	}

	if e.Behavior.SteinerLeft > 0 {
		e.Behavior.SteinerLeft--
	}

	for _, enc := range encroached {
		e.badSubsegs.Enqueue(&BadSubseg{Handle: enc, Org: enc.Org(), Dest: enc.Dest()})
	}

	e.testAndEnqueueSegment(half1)
	e.testAndEnqueueSegment(half2)
	return nil
}

// splitEncSegs drains the bad-subsegment queue (component C) through the
// segment splitter until empty or the Steiner budget runs out.
func (e *Engine) splitEncSegs() error {
	for {
		if e.Behavior.SteinerLeft == 0 {
			return nil
		}
		bad, ok := e.badSubsegs.Dequeue()
		if !ok {
			return nil
		}
		if err := e.splitSubseg(bad); err != nil {
			return err
		}
	}
}
