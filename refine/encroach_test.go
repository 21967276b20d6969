package refine

import (
	"testing"

	"github.com/arl/meshquality/mesh"
	"github.com/stretchr/testify/assert"
)

func TestApexEncroachesRightAngleIsBorderlineUnderConformDel(t *testing.T) {
	e := &Engine{Behavior: DefaultBehavior()}
	e.Behavior.ConformDel = true

	segOrg := &mesh.Vertex{X: 0, Y: 0}
	segDest := &mesh.Vertex{X: 2, Y: 0}

	// Apex directly above the segment's midpoint, inside the diametral
	// circle: encroaches.
	inside := &mesh.Vertex{X: 1, Y: 0.1}
	assert.True(t, e.apexEncroaches(segOrg, segDest, inside))

	// Apex far outside the diametral circle: does not encroach.
	outside := &mesh.Vertex{X: 1, Y: 5}
	assert.False(t, e.apexEncroaches(segOrg, segDest, outside))

	// Apex forming a right angle at itself sits exactly on the diametral
	// circle's boundary (dot product zero): not encroaching under the
	// strict "< 0" test.
	onCircle := &mesh.Vertex{X: 1, Y: 1}
	assert.False(t, e.apexEncroaches(segOrg, segDest, onCircle))
}

func TestApexEncroachesChewLensIsNarrowerThanRuppertCircle(t *testing.T) {
	e := &Engine{Behavior: DefaultBehavior()}
	e.Behavior.ConformDel = false
	e.Behavior.MinAngle = 20
	e.Behavior.Resolve()

	segOrg := &mesh.Vertex{X: 0, Y: 0}
	segDest := &mesh.Vertex{X: 2, Y: 0}

	// An apex just inside the diametral circle but far from the segment
	// midline fails Chew's narrower lens test even though it encroaches
	// under Ruppert's plain circle test.
	apex := &mesh.Vertex{X: 0.05, Y: 0.2}
	assert.False(t, e.apexEncroaches(segOrg, segDest, apex))

	ruppert := &Engine{Behavior: DefaultBehavior()}
	ruppert.Behavior.ConformDel = true
	assert.True(t, ruppert.apexEncroaches(segOrg, segDest, apex))
}

func TestCheckSegmentEncroachmentNoBisectPolicy(t *testing.T) {
	m, _ := thinTriangleMesh(t)
	var sub mesh.Osub
	for _, s := range m.Subsegs() {
		if s.Org().Y == 0 && s.Dest().Y == 0 {
			sub = s
		}
	}

	e := &Engine{Mesh: m, Behavior: DefaultBehavior()}
	e.Behavior.ConformDel = true
	e.Behavior.NoBisect = 2

	// The apex (5, 0.2) sees the base (0,0)-(10,0) at an obtuse angle, so
	// the base is encroached; NoBisect >= 2 still suppresses enqueuing.
	bitmask, _, enqueue := e.checkSegmentEncroachment(sub)
	assert.NotZero(t, bitmask)
	assert.False(t, enqueue)
}

func TestTestAndEnqueueSegmentPopulatesQueueOnEncroachment(t *testing.T) {
	m := squareMesh(t)

	start := m.Triangles()[0]
	// Insert a point just above the bottom edge's midpoint to create an
	// encroaching configuration on one of the boundary subsegments.
	v := &mesh.Vertex{X: 0.5, Y: 0.01, Kind: mesh.FreeVertex}
	res, _, err := m.InsertVertex(v, start, mesh.DummySubseg(), false, false, nil)
	if err != nil || res != mesh.Successful {
		t.Skip("insertion did not land as expected for this fixture")
	}

	e := &Engine{Mesh: m, Behavior: DefaultBehavior(), badSubsegs: NewBadSubsegQueue(), badTriangles: NewBadTriangleQueue()}
	e.Behavior.ConformDel = true
	for _, s := range m.Subsegs() {
		e.testAndEnqueueSegment(s)
	}
	assert.False(t, e.badSubsegs.Empty())
}
