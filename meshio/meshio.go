// Package meshio reads and writes the .node/.poly/.ele file triple used by
// Shewchuk's triangle, the reference mesher this engine's algorithms are
// drawn from. There is no third-party parser for this domain-specific text
// format anywhere in the corpus this module was built from, so the reader
// and writer below are built directly on bufio.Scanner (see DESIGN.md for
// the standard-library justification).
package meshio

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/arl/meshquality/mesh"
	"github.com/arl/meshquality/predicates"
)

// Node is the parsed contents of a .node file: one point per line plus any
// attributes and a boundary marker column.
type Node struct {
	Points   []predicates.Point
	Attrs    [][]float64
	Marks    []int
	HasMarks bool
	NAttrs   int
}

// Poly is the parsed contents of a .poly file. Points is nil when the file
// declares zero vertices, meaning the vertex list lives in a companion
// .node file instead (triangle's own convention).
type Poly struct {
	Points       []predicates.Point
	Attrs        [][]float64
	Marks        []int
	Segments     [][2]int
	SegmentMarks []int
	Holes        []predicates.Point
}

// Ele is the parsed contents of an .ele file: an existing triangulation's
// connectivity. The CLI's check command reads it to rebuild a mesh for
// inspection; refinement always starts from a PSLG.
type Ele struct {
	Triangles [][3]int
	Attrs     [][]float64
}

type lineScanner struct {
	sc  *bufio.Scanner
	err error
}

func newLineScanner(r io.Reader) *lineScanner {
	return &lineScanner{sc: bufio.NewScanner(r)}
}

// next returns the fields of the next non-comment, non-blank line.
func (s *lineScanner) next() ([]string, bool) {
	for s.sc.Scan() {
		line := s.sc.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		return fields, true
	}
	if err := s.sc.Err(); err != nil {
		s.err = err
	}
	return nil, false
}

func parseInt(s string) (int, error) {
	return strconv.Atoi(s)
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(s, 64)
}

// ReadNode parses a .node file from r.
func ReadNode(r io.Reader) (*Node, error) {
	ls := newLineScanner(r)
	header, ok := ls.next()
	if !ok {
		return nil, fmt.Errorf("meshio: empty .node file")
	}
	if len(header) < 4 {
		return nil, fmt.Errorf("meshio: .node header wants 4 fields, got %d", len(header))
	}
	n, err := parseInt(header[0])
	if err != nil {
		return nil, fmt.Errorf("meshio: .node vertex count: %w", err)
	}
	nattrs, err := parseInt(header[2])
	if err != nil {
		return nil, fmt.Errorf("meshio: .node attribute count: %w", err)
	}
	nmarks, err := parseInt(header[3])
	if err != nil {
		return nil, fmt.Errorf("meshio: .node boundary marker count: %w", err)
	}

	out := &Node{
		Points:   make([]predicates.Point, 0, n),
		Attrs:    make([][]float64, 0, n),
		Marks:    make([]int, 0, n),
		HasMarks: nmarks > 0,
		NAttrs:   nattrs,
	}
	for i := 0; i < n; i++ {
		fields, ok := ls.next()
		if !ok {
			return nil, fmt.Errorf("meshio: .node expected %d vertices, found %d", n, i)
		}
		wantLen := 3 + nattrs
		if nmarks > 0 {
			wantLen++
		}
		if len(fields) < wantLen {
			return nil, fmt.Errorf("meshio: .node vertex %d has %d fields, want %d", i, len(fields), wantLen)
		}
		x, err := parseFloat(fields[1])
		if err != nil {
			return nil, fmt.Errorf("meshio: .node vertex %d x: %w", i, err)
		}
		y, err := parseFloat(fields[2])
		if err != nil {
			return nil, fmt.Errorf("meshio: .node vertex %d y: %w", i, err)
		}
		attrs := make([]float64, nattrs)
		for j := 0; j < nattrs; j++ {
			a, err := parseFloat(fields[3+j])
			if err != nil {
				return nil, fmt.Errorf("meshio: .node vertex %d attr %d: %w", i, j, err)
			}
			attrs[j] = a
		}
		mark := 0
		if nmarks > 0 {
			mark, err = parseInt(fields[3+nattrs])
			if err != nil {
				return nil, fmt.Errorf("meshio: .node vertex %d marker: %w", i, err)
			}
		}
		out.Points = append(out.Points, predicates.Point{X: x, Y: y})
		out.Attrs = append(out.Attrs, attrs)
		out.Marks = append(out.Marks, mark)
	}
	if ls.err != nil {
		return nil, ls.err
	}
	return out, nil
}

// WriteNode writes nodes (together with each vertex's attributes and mark,
// taken from verts) in triangle's .node format.
func WriteNode(w io.Writer, verts []*mesh.Vertex) error {
	nattrs := 0
	for _, v := range verts {
		if len(v.Attrs) > nattrs {
			nattrs = len(v.Attrs)
		}
	}
	if _, err := fmt.Fprintf(w, "%d 2 %d 1\n", len(verts), nattrs); err != nil {
		return err
	}
	for i, v := range verts {
		if _, err := fmt.Fprintf(w, "%d %.17g %.17g", i, v.X, v.Y); err != nil {
			return err
		}
		for j := 0; j < nattrs; j++ {
			var a float64
			if j < len(v.Attrs) {
				a = v.Attrs[j]
			}
			if _, err := fmt.Fprintf(w, " %.17g", a); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, " %d\n", v.Mark); err != nil {
			return err
		}
	}
	return nil
}

// ReadPoly parses a .poly file from r. A zero vertex count in the header
// means the caller must supply vertices from a companion .node file;
// Points, Attrs and Marks are left nil in that case.
func ReadPoly(r io.Reader) (*Poly, error) {
	ls := newLineScanner(r)
	header, ok := ls.next()
	if !ok {
		return nil, fmt.Errorf("meshio: empty .poly file")
	}
	if len(header) < 4 {
		return nil, fmt.Errorf("meshio: .poly vertex header wants 4 fields, got %d", len(header))
	}
	nverts, err := parseInt(header[0])
	if err != nil {
		return nil, fmt.Errorf("meshio: .poly vertex count: %w", err)
	}
	nattrs, err := parseInt(header[2])
	if err != nil {
		return nil, fmt.Errorf("meshio: .poly attribute count: %w", err)
	}
	nmarks, err := parseInt(header[3])
	if err != nil {
		return nil, fmt.Errorf("meshio: .poly boundary marker count: %w", err)
	}

	out := &Poly{}
	for i := 0; i < nverts; i++ {
		fields, ok := ls.next()
		if !ok {
			return nil, fmt.Errorf("meshio: .poly expected %d vertices, found %d", nverts, i)
		}
		x, err := parseFloat(fields[1])
		if err != nil {
			return nil, fmt.Errorf("meshio: .poly vertex %d x: %w", i, err)
		}
		y, err := parseFloat(fields[2])
		if err != nil {
			return nil, fmt.Errorf("meshio: .poly vertex %d y: %w", i, err)
		}
		attrs := make([]float64, nattrs)
		for j := 0; j < nattrs; j++ {
			a, err := parseFloat(fields[3+j])
			if err != nil {
				return nil, fmt.Errorf("meshio: .poly vertex %d attr %d: %w", i, j, err)
			}
			attrs[j] = a
		}
		mark := 0
		if nmarks > 0 {
			mark, err = parseInt(fields[3+nattrs])
			if err != nil {
				return nil, fmt.Errorf("meshio: .poly vertex %d marker: %w", i, err)
			}
		}
		out.Points = append(out.Points, predicates.Point{X: x, Y: y})
		out.Attrs = append(out.Attrs, attrs)
		out.Marks = append(out.Marks, mark)
	}

	segHeader, ok := ls.next()
	if !ok {
		return nil, fmt.Errorf("meshio: .poly missing segment header")
	}
	nsegs, err := parseInt(segHeader[0])
	if err != nil {
		return nil, fmt.Errorf("meshio: .poly segment count: %w", err)
	}
	segMarks := 0
	if len(segHeader) > 1 {
		segMarks, err = parseInt(segHeader[1])
		if err != nil {
			return nil, fmt.Errorf("meshio: .poly segment marker count: %w", err)
		}
	}
	for i := 0; i < nsegs; i++ {
		fields, ok := ls.next()
		if !ok {
			return nil, fmt.Errorf("meshio: .poly expected %d segments, found %d", nsegs, i)
		}
		a, err := parseInt(fields[1])
		if err != nil {
			return nil, fmt.Errorf("meshio: .poly segment %d endpoint: %w", i, err)
		}
		b, err := parseInt(fields[2])
		if err != nil {
			return nil, fmt.Errorf("meshio: .poly segment %d endpoint: %w", i, err)
		}
		mark := 0
		if segMarks > 0 {
			mark, err = parseInt(fields[3])
			if err != nil {
				return nil, fmt.Errorf("meshio: .poly segment %d marker: %w", i, err)
			}
		}
		out.Segments = append(out.Segments, [2]int{a, b})
		out.SegmentMarks = append(out.SegmentMarks, mark)
	}

	if holeHeader, ok := ls.next(); ok {
		nholes, err := parseInt(holeHeader[0])
		if err != nil {
			return nil, fmt.Errorf("meshio: .poly hole count: %w", err)
		}
		for i := 0; i < nholes; i++ {
			fields, ok := ls.next()
			if !ok {
				return nil, fmt.Errorf("meshio: .poly expected %d holes, found %d", nholes, i)
			}
			x, err := parseFloat(fields[1])
			if err != nil {
				return nil, fmt.Errorf("meshio: .poly hole %d x: %w", i, err)
			}
			y, err := parseFloat(fields[2])
			if err != nil {
				return nil, fmt.Errorf("meshio: .poly hole %d y: %w", i, err)
			}
			out.Holes = append(out.Holes, predicates.Point{X: x, Y: y})
		}
	}

	if ls.err != nil {
		return nil, ls.err
	}
	return out, nil
}

// WritePoly writes a PSLG's segments and holes in triangle's .poly format,
// using the zero-vertex-count convention (vertices are assumed to live in a
// companion .node file written separately by WriteNode).
func WritePoly(w io.Writer, pslg mesh.PSLG) error {
	if _, err := fmt.Fprintf(w, "0 2 0 0\n"); err != nil {
		return err
	}
	hasMarks := pslg.SegmentMarks != nil
	marker := 0
	if hasMarks {
		marker = 1
	}
	if _, err := fmt.Fprintf(w, "%d %d\n", len(pslg.Segments), marker); err != nil {
		return err
	}
	for i, seg := range pslg.Segments {
		mark := 0
		if hasMarks {
			mark = pslg.SegmentMarks[i]
		}
		if _, err := fmt.Fprintf(w, "%d %d %d %d\n", i, seg[0], seg[1], mark); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "%d\n", len(pslg.Holes)); err != nil {
		return err
	}
	for i, h := range pslg.Holes {
		if _, err := fmt.Fprintf(w, "%d %.17g %.17g\n", i, h.X, h.Y); err != nil {
			return err
		}
	}
	return nil
}

// ReadEle parses an .ele file from r.
func ReadEle(r io.Reader) (*Ele, error) {
	ls := newLineScanner(r)
	header, ok := ls.next()
	if !ok {
		return nil, fmt.Errorf("meshio: empty .ele file")
	}
	if len(header) < 3 {
		return nil, fmt.Errorf("meshio: .ele header wants 3 fields, got %d", len(header))
	}
	ntris, err := parseInt(header[0])
	if err != nil {
		return nil, fmt.Errorf("meshio: .ele triangle count: %w", err)
	}
	nodesPerTri, err := parseInt(header[1])
	if err != nil {
		return nil, fmt.Errorf("meshio: .ele nodes-per-triangle: %w", err)
	}
	if nodesPerTri < 3 {
		return nil, fmt.Errorf("meshio: .ele nodes-per-triangle must be >= 3, got %d", nodesPerTri)
	}
	nattrs, err := parseInt(header[2])
	if err != nil {
		return nil, fmt.Errorf("meshio: .ele attribute count: %w", err)
	}

	out := &Ele{}
	for i := 0; i < ntris; i++ {
		fields, ok := ls.next()
		if !ok {
			return nil, fmt.Errorf("meshio: .ele expected %d triangles, found %d", ntris, i)
		}
		var tri [3]int
		for j := 0; j < 3; j++ {
			v, err := parseInt(fields[1+j])
			if err != nil {
				return nil, fmt.Errorf("meshio: .ele triangle %d vertex %d: %w", i, j, err)
			}
			tri[j] = v
		}
		attrs := make([]float64, nattrs)
		for j := 0; j < nattrs; j++ {
			a, err := parseFloat(fields[1+nodesPerTri+j])
			if err != nil {
				return nil, fmt.Errorf("meshio: .ele triangle %d attr %d: %w", i, j, err)
			}
			attrs[j] = a
		}
		out.Triangles = append(out.Triangles, tri)
		out.Attrs = append(out.Attrs, attrs)
	}
	if ls.err != nil {
		return nil, ls.err
	}
	return out, nil
}

// WriteEle writes every live triangle of m in triangle's .ele format. index
// maps a *mesh.Vertex to the row number it was written at by WriteNode.
func WriteEle(w io.Writer, m *mesh.Mesh, index map[*mesh.Vertex]int) error {
	tris := m.Triangles()
	if _, err := fmt.Fprintf(w, "%d 3 0\n", len(tris)); err != nil {
		return err
	}
	for i, t := range tris {
		a, b, c := index[t.Org()], index[t.Dest()], index[t.Apex()]
		if _, err := fmt.Fprintf(w, "%d %d %d %d\n", i, a, b, c); err != nil {
			return err
		}
	}
	return nil
}

// LoadPSLG reads a .node/.poly pair from disk and assembles a mesh.PSLG
// ready for mesh.NewFromPSLG. Both files must exist: the vertices always
// come from the .node file, and a vertex block inside the .poly file is
// not used.
func LoadPSLG(nodePath, polyPath string) (mesh.PSLG, error) {
	nodeFile, err := os.Open(nodePath)
	if err != nil {
		return mesh.PSLG{}, err
	}
	defer nodeFile.Close()
	node, err := ReadNode(nodeFile)
	if err != nil {
		return mesh.PSLG{}, fmt.Errorf("meshio: reading %s: %w", nodePath, err)
	}

	polyFile, err := os.Open(polyPath)
	if err != nil {
		return mesh.PSLG{}, err
	}
	defer polyFile.Close()
	poly, err := ReadPoly(polyFile)
	if err != nil {
		return mesh.PSLG{}, fmt.Errorf("meshio: reading %s: %w", polyPath, err)
	}

	verts := make([]*mesh.Vertex, len(node.Points))
	for i, p := range node.Points {
		kind := mesh.Input
		verts[i] = &mesh.Vertex{X: p.X, Y: p.Y, Attrs: node.Attrs[i], Mark: node.Marks[i], Kind: kind}
	}

	return mesh.PSLG{
		Vertices:     verts,
		Segments:     poly.Segments,
		SegmentMarks: poly.SegmentMarks,
		Holes:        poly.Holes,
	}, nil
}

// SavePSLG writes m's current vertex set and live triangulation to
// nodePath/elePath in triangle's format, assigning each vertex a stable row
// index in insertion order.
func SavePSLG(m *mesh.Mesh, nodePath, elePath string) error {
	verts := m.Vertices()
	index := make(map[*mesh.Vertex]int, len(verts))
	for i, v := range verts {
		index[v] = i
	}

	nodeFile, err := os.Create(nodePath)
	if err != nil {
		return err
	}
	defer nodeFile.Close()
	if err := WriteNode(nodeFile, verts); err != nil {
		return err
	}

	eleFile, err := os.Create(elePath)
	if err != nil {
		return err
	}
	defer eleFile.Close()
	return WriteEle(eleFile, m, index)
}
