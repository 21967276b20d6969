package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arl/meshquality/refine"
)

// configCmd represents the config command.
var configCmd = &cobra.Command{
	Use:   "config FILE",
	Short: "scaffold a refinement settings file",
	Long: `Write a refinement settings file in YAML format, prefilled with
refine.DefaultBehavior()'s values.

If FILE is not provided, 'meshrefine.yml' is used.`,
	Run: func(cmd *cobra.Command, args []string) {
		path := "meshrefine.yml"
		if len(args) >= 1 {
			path = args[0]
		}
		ok, err := confirmIfExists(path, fmt.Sprintf("file %s already exists, overwrite? [y/N]", path))
		if err != nil {
			check(err)
		}
		if !ok {
			fmt.Println("aborted by user")
			return
		}
		check(refine.SaveBehaviorFile(path, refine.DefaultBehavior()))
		fmt.Printf("refinement settings written to '%s'\n", path)
	},
}

func init() {
	RootCmd.AddCommand(configCmd)
}
