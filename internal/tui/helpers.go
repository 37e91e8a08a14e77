package tui

import "github.com/charmbracelet/x/ansi"

// stripAnsi removes terminal escapes from collected text such as journal
// lines before it is wrapped into a viewport.
func stripAnsi(str string) string {
	return ansi.Strip(str)
}
