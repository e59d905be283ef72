//go:build linux

package cmd

import (
	"gosplit/process"
	"gosplit/process_linux"
)

func newAttacher() process.Attacher {
	return process_linux.NewAttacher()
}
