//go:build !linux && !windows

package cmd

import (
	"fmt"
	"runtime"

	"gosplit/process"
)

// unsupportedAttacher lets dump analysis (resolve --from) work where no live backend exists
type unsupportedAttacher struct{}

func (unsupportedAttacher) Attach(name string) (process.Process, error) {
	return nil, fmt.Errorf("%s: attaching is not supported on %s: %w", name, runtime.GOOS, process.ErrProcessNotFound)
}

func newAttacher() process.Attacher {
	return unsupportedAttacher{}
}
