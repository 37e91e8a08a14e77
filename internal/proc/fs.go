// Package proc reads Linux kernel state from procfs and sysfs.
//
// Every reader takes an FS so tests can point it at a fabricated tree.
package proc

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// FS locates the procfs and sysfs mount points.
type FS struct {
	Proc string
	Sys  string
}

// DefaultFS is the live host.
func DefaultFS() FS {
	return FS{Proc: "/proc", Sys: "/sys"}
}

func (fs FS) procPath(elem ...string) string {
	return filepath.Join(append([]string{fs.Proc}, elem...)...)
}

func (fs FS) sysPath(elem ...string) string {
	return filepath.Join(append([]string{fs.Sys}, elem...)...)
}

func (fs FS) pidPath(pid int, elem ...string) string {
	return fs.procPath(append([]string{strconv.Itoa(pid)}, elem...)...)
}

func readTrimmed(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
