package predicates

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrient2DSign(t *testing.T) {
	ccw := Orient2D(Point{0, 0}, Point{1, 0}, Point{0, 1})
	assert.Greater(t, ccw, 0.0, "expected counterclockwise orientation")

	cw := Orient2D(Point{0, 0}, Point{0, 1}, Point{1, 0})
	assert.Less(t, cw, 0.0, "expected clockwise orientation")

	collinear := Orient2D(Point{0, 0}, Point{1, 1}, Point{2, 2})
	assert.Equal(t, 0.0, collinear)
}

func TestOrient2DNearDegenerate(t *testing.T) {
	// Points that are collinear to within float64 roundoff must still fall
	// back to the exact path and report exactly zero.
	a := Point{0, 0}
	b := Point{1e8, 1}
	c := Point{2e8, 2}
	assert.Equal(t, 0.0, Orient2D(a, b, c))
}

func TestInCircleUnitSquare(t *testing.T) {
	// Circumcircle of (0,0),(1,0),(1,1) passes through (0,1) too: cocircular.
	a, b, c := Point{0, 0}, Point{1, 0}, Point{1, 1}
	onCircle := InCircle(a, b, c, Point{0, 1})
	assert.InDelta(t, 0.0, onCircle, 1e-9)

	inside := InCircle(a, b, c, Point{0.5, 0.5})
	assert.Greater(t, inside, 0.0)

	outside := InCircle(a, b, c, Point{10, 10})
	assert.Less(t, outside, 0.0)
}

func TestCircumCenterUnitRightTriangle(t *testing.T) {
	a, b, c := Point{0, 0}, Point{2, 0}, Point{0, 2}
	center, xi, eta := CircumCenter(a, b, c)
	assert.InDelta(t, 1.0, center.X, 1e-9)
	assert.InDelta(t, 1.0, center.Y, 1e-9)

	reconstructed := Point{X: a.X + xi*(b.X-a.X), Y: a.Y + xi*(b.Y-a.Y)}
	reconstructed.X += eta * (c.X - a.X)
	reconstructed.Y += eta * (c.Y - a.Y)
	assert.InDelta(t, center.X, reconstructed.X, 1e-9)
	assert.InDelta(t, center.Y, reconstructed.Y, 1e-9)
}

func TestOffCenterFallsBackToCircumcenterForWellShapedTriangle(t *testing.T) {
	a, b, c := Point{0, 0}, Point{1, 0}, Point{0.5, math.Sqrt(3) / 2}
	cc, _, _ := CircumCenter(a, b, c)
	oc, _, _ := OffCenter(a, b, c)
	assert.InDelta(t, cc.X, oc.X, 1e-9)
	assert.InDelta(t, cc.Y, oc.Y, 1e-9)
}

func TestOffCenterPullsInForNeedle(t *testing.T) {
	a, b, c := Point{0, 0}, Point{1, 0}, Point{0.5, 0.001}
	cc, _, _ := CircumCenter(a, b, c)
	oc, _, _ := OffCenter(a, b, c)
	distCC := math.Hypot(cc.X-0.5, cc.Y)
	distOC := math.Hypot(oc.X-0.5, oc.Y)
	assert.Less(t, distOC, distCC, "off-center should sit closer to the needle's short edge than the circumcenter")
}

func TestSetExactRestoresPriorSetting(t *testing.T) {
	prior := SetExact(true)
	assert.False(t, prior)
	assert.True(t, Exact())
	SetExact(prior)
	assert.False(t, Exact())
}
