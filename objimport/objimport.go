// Package objimport builds a PSLG from a plain triangle-soup Wavefront .obj
// file: the faces' vertices become the PSLG's vertices, and any edge used
// by exactly one face is inferred to be a boundary constraint. The faces
// themselves are not kept; mesh.NewFromPSLG triangulates the result
// afresh. This gives a
// second, lower-friction input path next to meshio's .poly/.node format,
// for refining an arbitrary pre-triangulated surface mesh without
// hand-writing a PSLG.
package objimport

import (
	"fmt"
	"io"

	"github.com/aurelien-rainone/gobj"
	"github.com/aurelien-rainone/gogeo/f32/d3"
	"github.com/aurelien-rainone/math32"

	"github.com/arl/meshquality/mesh"
)

// edgeKey is an unordered pair of vertex indices, used to count how many
// faces share an edge.
type edgeKey struct{ a, b int }

func makeEdgeKey(a, b int) edgeKey {
	if a > b {
		a, b = b, a
	}
	return edgeKey{a, b}
}

// dedup accumulates distinct XY positions (ignoring Z, since this importer
// treats the OBJ geometry as a flattened 2D triangle soup) within epsilon of
// one another, returning a stable index for repeated coordinates across
// faces.
type dedup struct {
	positions []d3.Vec3
}

const dedupEpsilon = 1e-5

func (d *dedup) indexOf(v gobj.Vertex) int {
	candidate := d3.NewVec3XYZ(float32(v.X()), float32(v.Y()), 0)
	for i, p := range d.positions {
		if math32.ApproxEpsilon(p[0], candidate[0], dedupEpsilon) &&
			math32.ApproxEpsilon(p[1], candidate[1], dedupEpsilon) {
			return i
		}
	}
	d.positions = append(d.positions, candidate)
	return len(d.positions) - 1
}

// Load reads path as a Wavefront .obj file and returns a PSLG whose
// vertices are the deduplicated XY projections of the OBJ's vertices and
// whose segments are every edge touched by exactly one imported face.
func Load(path string) (mesh.PSLG, error) {
	obj, err := gobj.Load(path)
	if err != nil {
		return mesh.PSLG{}, fmt.Errorf("objimport: %w", err)
	}
	return fromOBJFile(obj)
}

// Decode is Load's io.Reader-based counterpart.
func Decode(r io.Reader) (mesh.PSLG, error) {
	obj, err := gobj.Decode(r)
	if err != nil {
		return mesh.PSLG{}, fmt.Errorf("objimport: %w", err)
	}
	return fromOBJFile(obj)
}

func fromOBJFile(obj *gobj.OBJFile) (mesh.PSLG, error) {
	var d dedup
	edgeCount := map[edgeKey]int{}
	var triangles [][3]int

	for _, poly := range obj.Polys() {
		if len(poly) < 3 {
			continue
		}
		idx := make([]int, len(poly))
		for i, v := range poly {
			idx[i] = d.indexOf(v)
		}
		// Fan-triangulate faces with more than 3 vertices; plain triangle
		// soups (the expected input) leave this loop running once.
		for i := 1; i+1 < len(idx); i++ {
			tri := [3]int{idx[0], idx[i], idx[i+1]}
			triangles = append(triangles, tri)
			for e := 0; e < 3; e++ {
				a, b := tri[e], tri[(e+1)%3]
				edgeCount[makeEdgeKey(a, b)]++
			}
		}
	}

	verts := make([]*mesh.Vertex, len(d.positions))
	for i, p := range d.positions {
		verts[i] = &mesh.Vertex{X: float64(p[0]), Y: float64(p[1]), Kind: mesh.Input}
	}

	var segments [][2]int
	for k, count := range edgeCount {
		if count == 1 {
			segments = append(segments, [2]int{k.a, k.b})
		}
	}

	return mesh.PSLG{Vertices: verts, Segments: segments}, nil
}
