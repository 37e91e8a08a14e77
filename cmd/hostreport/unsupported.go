//go:build !linux

package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Fprintln(
		os.Stderr,
		"hostreport is only supported on Linux.\n\nIf you are seeing this message, you are attempting to build or run hostreport on an unsupported platform.\n\nThe collectors read /proc, /sys and the systemd journal, so please build and run hostreport on Linux.",
	)
	os.Exit(1)
}
