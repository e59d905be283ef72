package autosplitter

import (
	"encoding/binary"
	"testing"
	"time"

	"gosplit/process"
	"gosplit/process_blob"
	"gosplit/timer"

	"github.com/Moonlight-Companies/gologger/logger"
	"github.com/stretchr/testify/require"
)

const (
	gameName  = "MugenEngine-Win64-Shipping.exe"
	gameBase  = process.ProcessMemoryAddress(0x140000000)
	imageSize = 0x4000
)

// gameImage builds a module image with the loading signature at sigOffset
// whose displacement points at flagOffset
func gameImage(t *testing.T, sigOffset, flagOffset int) []byte {
	t.Helper()
	image := make([]byte, imageSize)
	copy(image[sigOffset:], []byte{0x89, 0x43, 0x60, 0x8B, 0x05})
	disp := int32(flagOffset - (sigOffset + 5 + 4))
	binary.LittleEndian.PutUint32(image[sigOffset+5:], uint32(disp))
	require.Equal(t, byte(0), image[flagOffset])
	return image
}

// newGame registers a running game with the attacher and returns it with its flag address
func newGame(t *testing.T, attacher *process_blob.BlobAttacher, pid process.ProcessID, base process.ProcessMemoryAddress) (*process_blob.ProcessBlob, process.ProcessMemoryAddress) {
	t.Helper()
	const sigOffset, flagOffset = 0x1234, 0x2800
	blob := process_blob.NewModuleBlob(pid, gameName, base, gameImage(t, sigOffset, flagOffset))
	attacher.Set(gameName, blob)
	return blob, base + flagOffset
}

type fakeTimer struct {
	state timer.TimerState
	calls []string
}

func (f *fakeTimer) State() timer.TimerState { return f.state }

func (f *fakeTimer) Start() {
	f.calls = append(f.calls, "start")
	f.state = timer.Running
}

func (f *fakeTimer) Split() { f.calls = append(f.calls, "split") }

func (f *fakeTimer) Reset() {
	f.calls = append(f.calls, "reset")
	f.state = timer.NotRunning
}

func (f *fakeTimer) PauseGameTime()  { f.calls = append(f.calls, "pause") }
func (f *fakeTimer) ResumeGameTime() { f.calls = append(f.calls, "resume") }

func (f *fakeTimer) SetGameTime(d time.Duration) {
	f.calls = append(f.calls, "setgametime "+timer.FormatDuration(d))
}

// scriptedRules answers every decision with a fixed value
type scriptedRules struct {
	start, split, reset bool
	gameTime            time.Duration
	hasGameTime         bool
	seen                []Snapshot
}

func (r *scriptedRules) Start(s Snapshot) bool {
	r.seen = append(r.seen, s)
	return r.start
}

func (r *scriptedRules) Split(s Snapshot) bool { return r.split }
func (r *scriptedRules) Reset(s Snapshot) bool { return r.reset }

func (r *scriptedRules) GameTime(Snapshot) (time.Duration, bool) {
	return r.gameTime, r.hasGameTime
}

func newTestAutosplitter(attacher process.Attacher, t timer.Timer, options ...Option) *Autosplitter {
	options = append([]Option{WithLogger(logger.NewLogger("test"))}, options...)
	return New(attacher, t, options...)
}
