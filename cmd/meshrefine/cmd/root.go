package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// RootCmd represents the base command when called without any subcommands.
var RootCmd = &cobra.Command{
	Use:   "meshrefine",
	Short: "refine a 2D constrained triangulation to a quality bound",
	Long: `meshrefine is the command-line application accompanying meshquality:
	- triangulate and refine a PSLG (.poly/.node, or a triangle-soup .obj)
	  to a minimum-angle and/or maximum-area quality bound,
	- write the refined mesh back out as a .node/.ele pair,
	- scaffold or tweak refinement settings (YAML files),
	- check an existing mesh's topological and Delaunay consistency.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. It is called by main.main and only needs to run once.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(-1)
	}
}
