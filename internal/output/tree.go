package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/pranshuparmar/hostreport/pkg/model"
)

var (
	colorResetTree   = "\033[0m"
	colorMagentaTree = "\033[35m"
	colorGreenTree   = "\033[32m"
	colorBoldTree    = "\033[2m"
)

const treeProcessLimit = 10

// PrintListenerTree draws listener groups as container, process, address.
func PrintListenerTree(w io.Writer, groups []model.ListenerContainerGroup, colorEnabled bool) {
	colorReset := ""
	colorMagenta := ""
	colorGreen := ""
	colorBold := ""
	if colorEnabled {
		colorReset = colorResetTree
		colorMagenta = colorMagentaTree
		colorGreen = colorGreenTree
		colorBold = colorBoldTree
	}

	for _, g := range groups {
		name := "host"
		if g.Container != nil {
			name = "container " + shortContainer(*g.Container)
		}
		fmt.Fprintf(w, "%s%s%s (%s%d sockets, %d processes%s)\n",
			colorGreen, name, colorReset, colorBold, g.SocketCount, g.ProcessCount, colorReset)

		count := len(g.Processes)
		for i, p := range g.Processes {
			if i >= treeProcessLimit {
				fmt.Fprintf(w, "  %s└─ %s... and %d more\n", colorMagenta, colorReset, count-treeProcessLimit)
				break
			}
			connector := "├─ "
			if i == count-1 || (i == treeProcessLimit-1 && count <= treeProcessLimit) {
				connector = "└─ "
			}
			fmt.Fprintf(w, "  %s%s%s%s (%spid %d%s) %s\n",
				colorMagenta, connector, colorReset, p.DisplayCommand(),
				colorBold, p.PID, colorReset, strings.Join(p.LocalAddresses, ", "))
		}
	}
}

func shortContainer(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
