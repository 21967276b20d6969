package mesh

import "github.com/arl/meshquality/predicates"

// VertexKind classifies how a vertex entered the triangulation. The
// refinement engine consults it when deciding whether a triangle is exempt
// from splitting (the Miller-Pav-Walkington rule only looks at
// SegmentVertex endpoints) and when stamping newly inserted points.
type VertexKind int

const (
	// Input is a vertex that was present in the original PSLG.
	Input VertexKind = iota
	// SegmentVertex is a Steiner point inserted by splitting a subsegment.
	SegmentVertex
	// FreeVertex is a Steiner point inserted at a triangle circumcenter (or
	// relocated off-center).
	FreeVertex
	// Undead marks the synthetic super-triangle corners NewFromPSLG creates
	// to enclose the input; no real vertex carries it.
	Undead
)

func (k VertexKind) String() string {
	switch k {
	case Input:
		return "input"
	case SegmentVertex:
		return "segment"
	case FreeVertex:
		return "free"
	case Undead:
		return "undead"
	default:
		return "unknown"
	}
}

// Vertex is a point of the triangulation. Vertices are compared by identity
// (pointer equality), never by coordinate: two coincident points are
// distinct vertices unless one is literally the other.
type Vertex struct {
	X, Y  float64
	Attrs []float64
	Mark  int
	Kind  VertexKind

	id int
}

// Point returns the bare coordinate pair the predicates package operates on.
func (v *Vertex) Point() predicates.Point {
	return predicates.Point{X: v.X, Y: v.Y}
}

// ID returns a stable, mesh-local identifier, useful only for diagnostics
// (log messages, test fixtures); it plays no role in equality.
func (v *Vertex) ID() int { return v.id }
