package refine

import (
	"github.com/arl/meshquality/mesh"
	"github.com/arl/meshquality/predicates"
)

// splitTriangle is component F: it computes the Steiner point (circumcenter
// when an area constraint is active, the off-center relocation otherwise --
// the fallback the design notes insist on preserving exactly, never
// unified into one code path), inserts it, and handles the three possible
// non-Successful outcomes.
func (e *Engine) splitTriangle(bad *BadTriangle) error {
	t := bad.Handle
	org, dest, apex := t.Org(), t.Dest(), t.Apex()

	var vx, vy, xi, eta float64
	if e.Behavior.FixedArea || e.Behavior.VarArea {
		c, cxi, ceta := predicates.CircumCenter(org.Point(), dest.Point(), apex.Point())
		vx, vy, xi, eta = c.X, c.Y, cxi, ceta
	} else {
		c, cxi, ceta := predicates.OffCenter(org.Point(), dest.Point(), apex.Point())
		vx, vy, xi, eta = c.X, c.Y, cxi, ceta
	}

	if (vx == org.X && vy == org.Y) || (vx == dest.X && vy == dest.Y) || (vx == apex.X && vy == apex.Y) {
		e.Log.Errorf("triangle splitter: steiner point coincides with an existing vertex")
		return &PrecisionExhausted{Reason: "circumcenter/off-center coincides with an existing triangle vertex"}
	}

	nattrs := len(org.Attrs)
	attrs := make([]float64, nattrs)
	for i := range attrs {
		var d, a float64
		if i < len(dest.Attrs) {
			d = dest.Attrs[i]
		}
		if i < len(apex.Attrs) {
			a = apex.Attrs[i]
		}
		o := org.Attrs[i]
		attrs[i] = o + xi*(d-o) + eta*(a-o)
	}
	v := &mesh.Vertex{X: vx, Y: vy, Attrs: attrs, Kind: mesh.FreeVertex}

	start := t
	if eta < xi {
		start = t.Lprev()
	}

	res, encroached, err := e.Mesh.InsertVertex(v, start, mesh.DummySubseg(), true, true, e.apexEncroaches)
	if err != nil {
		return err
	}
	switch res {
	case mesh.Successful:
		if e.Behavior.SteinerLeft > 0 {
			e.Behavior.SteinerLeft--
		}
	case mesh.Encroaching:
		if err := e.Mesh.UndoVertex(); err != nil {
			return err
		}
		for _, enc := range encroached {
			e.badSubsegs.Enqueue(&BadSubseg{Handle: enc, Org: enc.Org(), Dest: enc.Dest()})
		}
	case mesh.Violating:
		for _, enc := range encroached {
			e.badSubsegs.Enqueue(&BadSubseg{Handle: enc, Org: enc.Org(), Dest: enc.Dest()})
		}
	case mesh.Duplicate:
		e.Log.Errorf("triangle splitter: steiner point duplicates an existing vertex")
		return &PrecisionExhausted{Reason: "circumcenter insertion produced a duplicate vertex"}
	}
	return nil
}
