package timer

import (
	"sync"
	"time"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
)

// Local is an in-process timer for running without LiveSplit.
// It keeps real time and game time and logs every action.
type Local struct {
	mu  sync.Mutex
	log *logger.Logger
	now func() time.Time

	phase     TimerState
	startedAt time.Time
	splits    []time.Duration

	// game time is gameBase plus the time since gameMark while not paused
	gameBase   time.Duration
	gameMark   time.Time
	gamePaused bool
}

var _ Timer = (*Local)(nil)

// NewLocal creates a stopped local timer
func NewLocal() *Local {
	return &Local{
		log:   logger.NewLogger(coloransi.Color(coloransi.Green, coloransi.ColorOrange, "timer")),
		now:   time.Now,
		phase: NotRunning,
	}
}

func (t *Local) State() TimerState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.phase
}

func (t *Local) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.phase != NotRunning {
		return
	}
	now := t.now()
	t.phase = Running
	t.startedAt = now
	t.splits = nil
	t.gameBase = 0
	t.gameMark = now
	t.gamePaused = false
	t.log.Infoln("Timer started")
}

func (t *Local) Split() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.phase != Running {
		return
	}
	gt := t.gameTimeLocked()
	t.splits = append(t.splits, gt)
	t.log.Infoln("Split", len(t.splits), "at", FormatDuration(gt))
}

func (t *Local) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.phase == NotRunning {
		return
	}
	t.log.Infoln("Timer reset at", FormatDuration(t.gameTimeLocked()))
	t.phase = NotRunning
	t.splits = nil
	t.gameBase = 0
	t.gamePaused = false
}

func (t *Local) PauseGameTime() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.phase == NotRunning || t.gamePaused {
		return
	}
	now := t.now()
	t.gameBase += now.Sub(t.gameMark)
	t.gameMark = now
	t.gamePaused = true
	t.log.Infoln("Game time paused at", FormatDuration(t.gameBase))
}

func (t *Local) ResumeGameTime() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.phase == NotRunning || !t.gamePaused {
		return
	}
	t.gameMark = t.now()
	t.gamePaused = false
	t.log.Infoln("Game time resumed at", FormatDuration(t.gameBase))
}

func (t *Local) SetGameTime(d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.phase == NotRunning {
		return
	}
	t.gameBase = d
	t.gameMark = t.now()
}

// GameTime is the loadless time of the current run
func (t *Local) GameTime() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.gameTimeLocked()
}

// RealTime is the wall clock time of the current run
func (t *Local) RealTime() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.phase == NotRunning {
		return 0
	}
	return t.now().Sub(t.startedAt)
}

// Splits returns the game time of every split so far
func (t *Local) Splits() []time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]time.Duration(nil), t.splits...)
}

func (t *Local) gameTimeLocked() time.Duration {
	if t.phase == NotRunning {
		return 0
	}
	if t.gamePaused {
		return t.gameBase
	}
	return t.gameBase + t.now().Sub(t.gameMark)
}
