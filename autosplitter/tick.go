package autosplitter

import (
	"gosplit/timer"
)

// Tick is the polling entry point. It runs one full attach, sample and decide
// cycle under the Autosplitter lock and issues the resulting timer commands.
func (a *Autosplitter) Tick() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.Init() {
		return
	}

	a.Update()

	switch a.timer.State() {
	case timer.Running, timer.Paused:
		a.applyLoading()

		if gt, ok := a.GameTime(); ok {
			a.timer.SetGameTime(gt)
		}

		// Reset wins over split within one tick
		if a.Reset() {
			a.timer.Reset()
		} else if a.Split() {
			a.timer.Split()
		}

	case timer.NotRunning:
		if a.Start() {
			a.timer.Start()
			a.applyLoading()
		}
	}
}

func (a *Autosplitter) applyLoading() {
	loading, ok := a.IsLoading()
	if !ok {
		return
	}
	if loading {
		a.timer.PauseGameTime()
	} else {
		a.timer.ResumeGameTime()
	}
}
