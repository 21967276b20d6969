package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arl/meshquality/logctx"
	"github.com/arl/meshquality/mesh"
	"github.com/arl/meshquality/meshio"
	"github.com/arl/meshquality/objimport"
	"github.com/arl/meshquality/refine"
)

var (
	formatVal     string
	cfgVal        string
	outVal        string
	stdoutVal     bool
	minAngleVal   float64
	maxAngleVal   float64
	maxAreaVal    float64
	conformDelVal bool
	steinerVal    int
	verboseVal    bool
)

// refineCmd represents the refine command.
var refineCmd = &cobra.Command{
	Use:   "refine INPUT",
	Short: "triangulate and refine a PSLG to a quality bound",
	Long: `Load a PSLG (an INPUT.node/INPUT.poly pair, or an INPUT.obj triangle
soup with --format=obj), triangulate it, apply a refinement behavior built
from --config and/or the flags below, run quality enforcement, and write
the refined mesh out as INPUT-refined.node/.ele (or to stdout with
--stdout).

If INPUT.ele is also present next to a .poly/.node pair, it is currently
ignored and the mesh is re-triangulated from the PSLG (see DESIGN.md).`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		input := args[0]

		behavior := refine.DefaultBehavior()
		if cfgVal != "" {
			b, err := refine.LoadBehaviorFile(cfgVal)
			check(err)
			behavior = b
		}
		applyFlagOverrides(cmd, &behavior)

		pslg, err := loadPSLG(input)
		check(err)

		m, err := mesh.NewFromPSLG(pslg)
		check(err)

		log := logctx.New(behavior.Verbose)
		engine := refine.NewEngine(m, behavior, log)
		check(engine.EnforceQuality())

		if behavior.Verbose {
			for _, line := range log.Messages() {
				fmt.Fprintln(os.Stderr, line)
			}
		}

		check(writeResult(m, input))
	},
}

func applyFlagOverrides(cmd *cobra.Command, b *refine.Behavior) {
	if cmd.Flags().Changed("min-angle") {
		b.MinAngle = minAngleVal
	}
	if cmd.Flags().Changed("max-angle") {
		b.MaxAngle = maxAngleVal
	}
	if cmd.Flags().Changed("max-area") {
		b.FixedArea = true
		b.MaxArea = maxAreaVal
	}
	if cmd.Flags().Changed("conform-del") {
		b.ConformDel = conformDelVal
	}
	if cmd.Flags().Changed("steiner-left") {
		b.SteinerLeft = steinerVal
	}
	if cmd.Flags().Changed("verbose") {
		b.Verbose = verboseVal
	}
	b.Resolve()
}

func loadPSLG(input string) (mesh.PSLG, error) {
	if formatVal == "obj" {
		return objimport.Load(input)
	}
	stem := strings.TrimSuffix(input, filepath.Ext(input))
	return meshio.LoadPSLG(stem+".node", stem+".poly")
}

func writeResult(m *mesh.Mesh, input string) error {
	if stdoutVal {
		index := make(map[*mesh.Vertex]int)
		for i, v := range m.Vertices() {
			index[v] = i
		}
		if err := meshio.WriteNode(os.Stdout, m.Vertices()); err != nil {
			return err
		}
		return meshio.WriteEle(os.Stdout, m, index)
	}

	stem := outVal
	if stem == "" {
		base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
		stem = base + "-refined"
	}
	if err := meshio.SavePSLG(m, stem+".node", stem+".ele"); err != nil {
		return err
	}
	fmt.Printf("refined mesh written to '%s.node' and '%s.ele'\n", stem, stem)
	return nil
}

func init() {
	RootCmd.AddCommand(refineCmd)

	refineCmd.Flags().StringVar(&formatVal, "format", "poly", "input format, 'poly' or 'obj'")
	refineCmd.Flags().StringVar(&cfgVal, "config", "", "refinement settings YAML file")
	refineCmd.Flags().StringVar(&outVal, "out", "", "output file stem (default: INPUT-refined)")
	refineCmd.Flags().BoolVar(&stdoutVal, "stdout", false, "write the refined mesh to stdout instead of a file")
	refineCmd.Flags().Float64Var(&minAngleVal, "min-angle", 20, "minimum triangle angle, in degrees")
	refineCmd.Flags().Float64Var(&maxAngleVal, "max-angle", 0, "maximum triangle angle, in degrees (0 disables)")
	refineCmd.Flags().Float64Var(&maxAreaVal, "max-area", 0, "maximum triangle area (0 disables)")
	refineCmd.Flags().BoolVar(&conformDelVal, "conform-del", false, "use Ruppert's diametral-circle encroachment test instead of Chew's lens")
	refineCmd.Flags().IntVar(&steinerVal, "steiner-left", -1, "maximum Steiner points to insert (-1 for unlimited)")
	refineCmd.Flags().BoolVar(&verboseVal, "verbose", false, "log refinement progress to stderr")
}
