package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the voxrag version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("voxrag %s\n", Version)
	},
}
