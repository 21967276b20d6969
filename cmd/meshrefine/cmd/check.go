package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arl/meshquality/mesh"
	"github.com/arl/meshquality/meshio"
	"github.com/arl/meshquality/refine"
)

// checkCmd represents the check command.
var checkCmd = &cobra.Command{
	Use:   "check MESH",
	Short: "check a mesh's topological and Delaunay consistency",
	Long: `Read MESH.node/MESH.ele, rebuild the handle topology in memory and
report the results of CheckMesh (orientation and neighbor-bond
consistency) and CheckDelaunay (local in-circle consistency).`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		stem := strings.TrimSuffix(args[0], filepath.Ext(args[0]))
		m, err := loadTriangulation(stem + ".node", stem + ".ele")
		check(err)

		engine := refine.NewEngine(m, refine.DefaultBehavior(), nil)

		meshViolations, meshSummary := engine.CheckMesh()
		fmt.Println(meshSummary)
		delaunayViolations, delaunaySummary := engine.CheckDelaunay()
		fmt.Println(delaunaySummary)

		if meshViolations > 0 || delaunayViolations > 0 {
			os.Exit(1)
		}
	},
}

// loadTriangulation rebuilds a mesh.Mesh from a .node/.ele pair that
// already describes a triangulation, rather than triangulating a bare PSLG
// from scratch; it does not (re)enclose the mesh in a super-triangle since
// one isn't needed just to walk and check existing connectivity.
func loadTriangulation(nodePath, elePath string) (*mesh.Mesh, error) {
	nodeFile, err := os.Open(nodePath)
	if err != nil {
		return nil, err
	}
	defer nodeFile.Close()
	node, err := meshio.ReadNode(nodeFile)
	if err != nil {
		return nil, err
	}

	eleFile, err := os.Open(elePath)
	if err != nil {
		return nil, err
	}
	defer eleFile.Close()
	ele, err := meshio.ReadEle(eleFile)
	if err != nil {
		return nil, err
	}

	verts := make([]*mesh.Vertex, len(node.Points))
	for i, p := range node.Points {
		verts[i] = &mesh.Vertex{X: p.X, Y: p.Y, Attrs: node.Attrs[i], Mark: node.Marks[i], Kind: mesh.Input}
	}
	return mesh.NewFromTriangulation(verts, ele.Triangles)
}

func init() {
	RootCmd.AddCommand(checkCmd)
}
