package app

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(a.out, "hostreport\n")
			fmt.Fprintf(a.out, "  Version:    %s\n", versionString())
			fmt.Fprintf(a.out, "  Commit:     %s\n", orUnknown(commit))
			fmt.Fprintf(a.out, "  Built:      %s\n", orUnknown(buildDate))
			fmt.Fprintf(a.out, "  Go version: %s\n", runtime.Version())
			fmt.Fprintf(a.out, "  OS/Arch:    %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}
