package cmd

import (
	"fmt"
	"runtime"

	"github.com/common-nighthawk/go-figure"
	"github.com/spf13/cobra"

	"github.com/PolarWolf314/scrub/internal/ui"
)

// Version is set at build time with -ldflags "-X github.com/PolarWolf314/scrub/cmd.Version=...".
var Version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		figure.NewColorFigure("scrub", "alligator2", "green", true).Print()
		fmt.Println()
		fmt.Printf("%s %s\n", ui.Highlight.Sprint(Version), ui.Muted.Sprintf("%s %s/%s", runtime.Version(), runtime.GOOS, runtime.GOARCH))
	},
}
