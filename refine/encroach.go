package refine

import "github.com/arl/meshquality/mesh"

// apexEncroaches is the per-side encroachment test: given a
// subsegment's endpoints and the apex of one adjoining triangle, decides
// whether that apex encroaches. Its signature matches mesh.EncroachTest
// exactly, so the engine hands it straight to mesh.InsertVertex and
// mesh.SplitSubsegment as the policy callback the mesh package itself
// stays agnostic to.
func (e *Engine) apexEncroaches(segOrg, segDest, apex *mesh.Vertex) bool {
	v0x, v0y := segOrg.X-apex.X, segOrg.Y-apex.Y
	v1x, v1y := segDest.X-apex.X, segDest.Y-apex.Y
	d := v0x*v1x + v0y*v1y
	if d >= 0 {
		return false
	}
	if e.Behavior.ConformDel {
		return true
	}
	g := 2*e.Behavior.GoodAngle - 1
	lhs := d * d
	rhs := g * g * (v0x*v0x + v0y*v0y) * (v1x*v1x + v1y*v1y)
	return lhs >= rhs
}

// checkSegmentEncroachment runs component A over both sides of sub,
// reporting the bitmask (bit 0 = first side, bit 1 = opposite side), the
// handle to enqueue (oriented so its Org/Dest match the first encroaching
// side), and whether the no_bisect boundary policy allows enqueuing at
// all.
func (e *Engine) checkSegmentEncroachment(sub mesh.Osub) (bitmask int, handle mesh.Osub, enqueue bool) {
	t1 := sub.TriPivot()
	t2 := sub.Sym().TriPivot()

	var side1, side2 bool
	if !t1.IsDummy() {
		side1 = e.apexEncroaches(sub.Org(), sub.Dest(), t1.Apex())
	}
	if !t2.IsDummy() {
		side2 = e.apexEncroaches(sub.Org(), sub.Dest(), t2.Apex())
	}
	if side1 {
		bitmask |= 1
	}
	if side2 {
		bitmask |= 2
	}
	if bitmask == 0 {
		return 0, mesh.Osub{}, false
	}

	if e.Behavior.NoBisect >= 2 {
		return bitmask, mesh.Osub{}, false
	}
	if e.Behavior.NoBisect == 1 && (t1.IsDummy() || t2.IsDummy()) {
		return bitmask, mesh.Osub{}, false
	}

	if side1 {
		return bitmask, sub, true
	}
	return bitmask, sub.Sym(), true
}

// tallyEncs seeds the bad-subsegment queue from every live subsegment in
// the mesh (the first step of EnforceQuality).
func (e *Engine) tallyEncs() {
	for _, sub := range e.Mesh.Subsegs() {
		e.testAndEnqueueSegment(sub)
	}
}

// testAndEnqueueSegment runs the encroachment test on sub and enqueues a
// BadSubseg if warranted; used both by tallyEncs and by the segment
// splitter when re-testing the two halves of a freshly split subsegment.
func (e *Engine) testAndEnqueueSegment(sub mesh.Osub) {
	_, handle, enqueue := e.checkSegmentEncroachment(sub)
	if !enqueue {
		return
	}
	e.badSubsegs.Enqueue(&BadSubseg{Handle: handle, Org: handle.Org(), Dest: handle.Dest()})
}
