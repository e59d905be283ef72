//go:build windows

package cmd

import (
	"gosplit/process"
	"gosplit/process_windows"
)

func newAttacher() process.Attacher {
	return process_windows.NewAttacher()
}
