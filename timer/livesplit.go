package timer

import (
	"bufio"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
)

// DefaultLiveSplitAddress is where the LiveSplit Server component listens by default
const DefaultLiveSplitAddress = "127.0.0.1:16834"

// LiveSplit drives a LiveSplit Server over its line based TCP protocol.
// Every call is bounded by IOTimeout; a broken connection is dropped and
// redialled on a later call, at most once per RedialInterval.
type LiveSplit struct {
	Address        string
	DialTimeout    time.Duration
	IOTimeout      time.Duration
	RedialInterval time.Duration

	mu       sync.Mutex
	log      *logger.Logger
	conn     net.Conn
	reader   *bufio.Reader
	lastDial time.Time
	now      func() time.Time
	dial     func(network, address string, timeout time.Duration) (net.Conn, error)

	// last observed phase; a change invalidates the pause cache
	phase TimerState

	// last game time pause state sent, valid when pausedKnown is set
	pausedKnown bool
	paused      bool
}

var _ Timer = (*LiveSplit)(nil)

// NewLiveSplit creates a client for the server at address. No connection is made until first use.
func NewLiveSplit(address string) *LiveSplit {
	return &LiveSplit{
		Address:        address,
		DialTimeout:    time.Second,
		IOTimeout:      250 * time.Millisecond,
		RedialInterval: time.Second,
		log:            logger.NewLogger(coloransi.Color(coloransi.Cyan, coloransi.ColorOrange, "livesplit")),
		now:            time.Now,
		dial:           net.DialTimeout,
	}
}

// Close drops the connection
func (l *LiveSplit) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.dropLocked()
}

func (l *LiveSplit) State() TimerState {
	l.mu.Lock()
	defer l.mu.Unlock()

	resp, err := l.requestLocked("getcurrenttimerphase")
	if err != nil {
		return Unknown
	}

	phase := ParseTimerState(resp)
	if phase != l.phase {
		l.pausedKnown = false
		if phase == Running || phase == Paused {
			// Load removal needs game time; starting the run by hand leaves it uninitialised
			l.sendLocked("initgametime")
		}
		l.phase = phase
	}
	return phase
}

func (l *LiveSplit) Start() {
	l.command("starttimer")
}

func (l *LiveSplit) Split() {
	l.command("split")
}

func (l *LiveSplit) Reset() {
	l.command("reset")
}

func (l *LiveSplit) PauseGameTime() {
	l.setPaused(true)
}

func (l *LiveSplit) ResumeGameTime() {
	l.setPaused(false)
}

func (l *LiveSplit) SetGameTime(d time.Duration) {
	l.command("setgametime " + FormatDuration(d))
}

func (l *LiveSplit) setPaused(paused bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.pausedKnown && l.paused == paused {
		return
	}

	cmd := "unpausegametime"
	if paused {
		cmd = "pausegametime"
	}
	if err := l.sendLocked(cmd); err != nil {
		return
	}
	l.pausedKnown = true
	l.paused = paused
}

func (l *LiveSplit) command(cmd string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.pausedKnown = false
	l.sendLocked(cmd)
}

func (l *LiveSplit) connectLocked() error {
	if l.conn != nil {
		return nil
	}

	now := l.now()
	if !l.lastDial.IsZero() && now.Sub(l.lastDial) < l.RedialInterval {
		return fmt.Errorf("livesplit: waiting to redial %s", l.Address)
	}
	l.lastDial = now

	conn, err := l.dial("tcp", l.Address, l.DialTimeout)
	if err != nil {
		l.log.Debugln("Failed to connect to", l.Address, err)
		return fmt.Errorf("livesplit: dial %s: %w", l.Address, err)
	}

	l.conn = conn
	l.reader = bufio.NewReader(conn)
	l.phase = Unknown
	l.pausedKnown = false
	l.log.Infoln("Connected to", l.Address)
	return nil
}

func (l *LiveSplit) dropLocked() error {
	if l.conn == nil {
		return nil
	}
	err := l.conn.Close()
	l.conn = nil
	l.reader = nil
	l.pausedKnown = false
	l.phase = Unknown
	return err
}

func (l *LiveSplit) sendLocked(cmd string) error {
	if err := l.connectLocked(); err != nil {
		return err
	}

	l.conn.SetWriteDeadline(time.Now().Add(l.IOTimeout))
	if _, err := l.conn.Write([]byte(cmd + "\r\n")); err != nil {
		l.log.Warn("Connection lost while sending ", cmd, ": ", err)
		l.dropLocked()
		return fmt.Errorf("livesplit: send %s: %w", cmd, err)
	}
	return nil
}

func (l *LiveSplit) requestLocked(cmd string) (string, error) {
	if err := l.sendLocked(cmd); err != nil {
		return "", err
	}

	l.conn.SetReadDeadline(time.Now().Add(l.IOTimeout))
	line, err := l.reader.ReadString('\n')
	if err != nil {
		l.log.Warn("Connection lost while waiting for ", cmd, ": ", err)
		l.dropLocked()
		return "", fmt.Errorf("livesplit: read reply to %s: %w", cmd, err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
