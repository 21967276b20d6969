// Package predicates implements the robust arithmetic primitives the
// refinement engine is built on: orientation, in-circle, circumcenter and
// off-center.
//
// Each test first evaluates its determinant in plain float64. If the
// magnitude of every term is small relative to the inputs, roundoff could
// flip the sign, so the determinant is re-evaluated with math/big.Float at
// high precision. This mirrors the adaptive-then-exact strategy used by
// Shewchuk's robust predicates, scaled down to the two tests this engine
// actually needs.
package predicates

import (
	"math"
	"math/big"
)

// Point is a bare 2D coordinate. The engine's mesh.Vertex embeds one; the
// predicates never need anything else from a vertex.
type Point struct {
	X, Y float64
}

const bigPrec = 256

// exact forces every predicate down the big.Float path regardless of the
// float64 filter. The consistency checkers toggle this for the duration of
// a pass (see refine.CheckMesh / CheckDelaunay) and always restore it.
var exact bool

// SetExact enables or disables forced exact arithmetic and returns the prior
// setting, so callers can restore it on every exit path.
func SetExact(on bool) bool {
	prior := exact
	exact = on
	return prior
}

// Exact reports the current forced-exact setting.
func Exact() bool { return exact }

// Orient2D returns twice the signed area of triangle (a, b, c): positive if
// a, b, c are in counterclockwise order, negative if clockwise, zero if
// collinear. This is the engine's CCW predicate.
func Orient2D(a, b, c Point) float64 {
	adx := b.X - a.X
	ady := b.Y - a.Y
	bdx := c.X - a.X
	bdy := c.Y - a.Y
	det := adx*bdy - ady*bdx

	if exact {
		return orient2DExact(a, b, c)
	}

	maxMag := maxAbs(adx, ady, bdx, bdy)
	errBound := maxMag * maxMag * 1e-14
	if det > errBound || det < -errBound {
		return det
	}
	return orient2DExact(a, b, c)
}

func orient2DExact(a, b, c Point) float64 {
	adx := bigFloat(b.X - a.X)
	ady := bigFloat(b.Y - a.Y)
	bdx := bigFloat(c.X - a.X)
	bdy := bigFloat(c.Y - a.Y)

	det := det2(adx, ady, bdx, bdy)
	f, _ := det.Float64()
	return f
}

// InCircle returns a value whose sign matches NonRegular: positive when d
// lies strictly inside the circumcircle of the counterclockwise triangle
// (a, b, c), negative when strictly outside, zero when cocircular.
func InCircle(a, b, c, d Point) float64 {
	adx := a.X - d.X
	ady := a.Y - d.Y
	bdx := b.X - d.X
	bdy := b.Y - d.Y
	cdx := c.X - d.X
	cdy := c.Y - d.Y

	ad2 := adx*adx + ady*ady
	bd2 := bdx*bdx + bdy*bdy
	cd2 := cdx*cdx + cdy*cdy

	det := ad2*(bdx*cdy-bdy*cdx) -
		bd2*(adx*cdy-ady*cdx) +
		cd2*(adx*bdy-ady*bdx)

	if exact {
		return inCircleExact(a, b, c, d)
	}

	maxMag := maxAbs(adx, ady, bdx, bdy, cdx, cdy)
	errBound := maxMag * maxMag * maxMag * 1e-13
	if det > errBound || det < -errBound {
		return det
	}
	return inCircleExact(a, b, c, d)
}

// NonRegular is the name the engine's consistency checker uses for
// the in-circle test; it is InCircle under the same sign convention.
func NonRegular(a, b, c, d Point) float64 {
	return InCircle(a, b, c, d)
}

func inCircleExact(a, b, c, d Point) float64 {
	adx := bigFloat(a.X - d.X)
	ady := bigFloat(a.Y - d.Y)
	bdx := bigFloat(b.X - d.X)
	bdy := bigFloat(b.Y - d.Y)
	cdx := bigFloat(c.X - d.X)
	cdy := bigFloat(c.Y - d.Y)

	ad2 := new(big.Float).SetPrec(bigPrec).Mul(adx, adx)
	ad2.Add(ad2, new(big.Float).SetPrec(bigPrec).Mul(ady, ady))

	bd2 := new(big.Float).SetPrec(bigPrec).Mul(bdx, bdx)
	bd2.Add(bd2, new(big.Float).SetPrec(bigPrec).Mul(bdy, bdy))

	cd2 := new(big.Float).SetPrec(bigPrec).Mul(cdx, cdx)
	cd2.Add(cd2, new(big.Float).SetPrec(bigPrec).Mul(cdy, cdy))

	term1 := new(big.Float).SetPrec(bigPrec).Mul(ad2, det2(bdx, bdy, cdx, cdy))
	term2 := new(big.Float).SetPrec(bigPrec).Mul(bd2, det2(adx, ady, cdx, cdy))
	term3 := new(big.Float).SetPrec(bigPrec).Mul(cd2, det2(adx, ady, bdx, bdy))

	det := new(big.Float).SetPrec(bigPrec).Add(term1, term3)
	det.Sub(det, term2)
	f, _ := det.Float64()
	return f
}

// CircumCenter returns the circumcenter of (a, b, c) along with the
// barycentric-style parameters (xi, eta) such that
// center == a + xi*(b-a) + eta*(c-a). These are exactly the parameters the
// triangle splitter (refine package) uses for attribute interpolation.
func CircumCenter(a, b, c Point) (center Point, xi, eta float64) {
	xba := b.X - a.X
	yba := b.Y - a.Y
	xca := c.X - a.X
	yca := c.Y - a.Y

	balength := xba*xba + yba*yba
	calength := xca*xca + yca*yca

	denominator := 0.5 / (xba*yca - yba*xca)

	xcirca := (yca*balength - yba*calength) * denominator
	ycirca := (xba*calength - xca*balength) * denominator

	center = Point{X: a.X + xcirca, Y: a.Y + ycirca}
	xi, eta = baryParams(a, b, c, center)
	return center, xi, eta
}

// OffCenter returns a relocated Steiner point for triangle (a, b, c): the
// circumcenter, pulled in toward the midpoint of the triangle's shortest
// edge whenever the circumradius-to-shortest-edge ratio is large. This
// keeps the new point away from the runaway chain of ever-smaller
// triangles that plain circumcenter insertion produces near small input
// angles (Ungor's "off-center" relaxation). The caller (refine's triangle
// splitter) only reaches for this when no area constraint is active; with
// an area constraint, the plain CircumCenter is used instead.
func OffCenter(a, b, c Point) (center Point, xi, eta float64) {
	cc, _, _ := CircumCenter(a, b, c)

	type edge struct {
		p, q Point
	}
	edges := [3]edge{{a, b}, {b, c}, {c, a}}
	shortest := 0
	shortestLen2 := sqDist(a, b)
	if l := sqDist(b, c); l < shortestLen2 {
		shortest, shortestLen2 = 1, l
	}
	if l := sqDist(c, a); l < shortestLen2 {
		shortest, shortestLen2 = 2, l
	}
	p, q := edges[shortest].p, edges[shortest].q
	mid := Point{X: (p.X + q.X) / 2, Y: (p.Y + q.Y) / 2}

	const beta = 1.0
	shortestLen := math.Sqrt(shortestLen2)
	distToMid := math.Hypot(cc.X-mid.X, cc.Y-mid.Y)

	if distToMid <= beta*shortestLen || shortestLen == 0 {
		center = cc
	} else {
		// Pull the point in along the perpendicular bisector of the
		// shortest edge, capped at beta times that edge's length from
		// its midpoint.
		nx := (cc.X - mid.X) / distToMid
		ny := (cc.Y - mid.Y) / distToMid
		center = Point{X: mid.X + beta*shortestLen*nx, Y: mid.Y + beta*shortestLen*ny}
	}
	xi, eta = baryParams(a, b, c, center)
	return center, xi, eta
}

// baryParams solves p = a + xi*(b-a) + eta*(c-a) for (xi, eta).
func baryParams(a, b, c, p Point) (xi, eta float64) {
	xba := b.X - a.X
	yba := b.Y - a.Y
	xca := c.X - a.X
	yca := c.Y - a.Y
	xpa := p.X - a.X
	ypa := p.Y - a.Y

	det := xba*yca - yba*xca
	if det == 0 {
		return 0, 0
	}
	xi = (xpa*yca - ypa*xca) / det
	eta = (xba*ypa - yba*xpa) / det
	return xi, eta
}

func sqDist(a, b Point) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return dx*dx + dy*dy
}

func det2(ax, ay, bx, by *big.Float) *big.Float {
	out := new(big.Float).SetPrec(bigPrec).Mul(ax, by)
	tmp := new(big.Float).SetPrec(bigPrec).Mul(ay, bx)
	return out.Sub(out, tmp)
}

func maxAbs(values ...float64) float64 {
	m := 0.0
	for _, v := range values {
		if a := math.Abs(v); a > m {
			m = a
		}
	}
	return m
}

func bigFloat(v float64) *big.Float {
	return new(big.Float).SetPrec(bigPrec).SetFloat64(v)
}
