// Package autosplitter attaches to the game, tracks its loading flag and drives a timer.
//
// An Autosplitter is created by whatever hosts it and ticked at the host's cadence.
// Tick is safe for concurrent use. Init, Update and the decision predicates are the
// building blocks of Tick and are not synchronised; callers using them directly must
// not run them concurrently with Tick.
package autosplitter

import (
	"fmt"
	"sync"
	"time"

	"gosplit/process"
	"gosplit/timer"
	"gosplit/watcher"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
)

// Phase is the attachment lifecycle
type Phase int

const (
	// Unattached: no process, nothing resolved
	Unattached Phase = iota
	// Attached: process and module found, addresses not yet resolved
	Attached
	// Ready: addresses resolved, sampling runs every tick
	Ready
)

func (p Phase) String() string {
	switch p {
	case Attached:
		return "Attached"
	case Ready:
		return "Ready"
	default:
		return "Unattached"
	}
}

// Game is one attachment. Addresses belong to it and die with it.
type Game struct {
	Process   process.Process
	Module    Module
	Addresses *Addresses
}

// Snapshot is the sampled state handed to Rules
type Snapshot struct {
	IsLoading watcher.Pair[bool]
	// Sampled is false until the first successful Update
	Sampled bool
}

// Rules holds the game-specific start, split and reset logic
type Rules interface {
	Start(s Snapshot) bool
	Split(s Snapshot) bool
	Reset(s Snapshot) bool
	GameTime(s Snapshot) (time.Duration, bool)
}

// LoadRemovalOnly never starts, splits or resets and leaves game time to the host
type LoadRemovalOnly struct{}

func (LoadRemovalOnly) Start(Snapshot) bool                     { return false }
func (LoadRemovalOnly) Split(Snapshot) bool                     { return false }
func (LoadRemovalOnly) Reset(Snapshot) bool                     { return false }
func (LoadRemovalOnly) GameTime(Snapshot) (time.Duration, bool) { return 0, false }

// Autosplitter is the root state: at most one Game plus the watchers
type Autosplitter struct {
	mu sync.Mutex

	attacher process.Attacher
	timer    timer.Timer
	resolver Resolver
	rules    Rules
	names    []string
	log      *logger.Logger
	observer func(Phase)

	game      *Game
	phase     Phase
	isLoading watcher.Watcher[bool]
}

// Option configures an Autosplitter
type Option func(*Autosplitter)

// WithResolver replaces the address resolution strategy
func WithResolver(r Resolver) Option {
	return func(a *Autosplitter) {
		a.resolver = r
	}
}

// WithRules replaces the start/split/reset policy
func WithRules(r Rules) Option {
	return func(a *Autosplitter) {
		a.rules = r
	}
}

// WithProcessNames replaces the candidate executable names
func WithProcessNames(names ...string) Option {
	return func(a *Autosplitter) {
		a.names = append([]string(nil), names...)
	}
}

// WithLogger replaces the default logger
func WithLogger(l *logger.Logger) Option {
	return func(a *Autosplitter) {
		a.log = l
	}
}

// OnPhaseChange registers fn to be called, inside Tick, whenever the phase changes
func OnPhaseChange(fn func(Phase)) Option {
	return func(a *Autosplitter) {
		a.observer = fn
	}
}

// New creates an unattached Autosplitter
func New(attacher process.Attacher, t timer.Timer, options ...Option) *Autosplitter {
	a := &Autosplitter{
		attacher: attacher,
		timer:    t,
		resolver: DefaultResolver(),
		rules:    LoadRemovalOnly{},
		names:    ProcessNames,
		log:      logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, "autosplitter")),
	}

	for _, opt := range options {
		opt(a)
	}

	return a
}

// Phase returns the current lifecycle phase
func (a *Autosplitter) Phase() Phase {
	switch {
	case a.game == nil:
		return Unattached
	case a.game.Addresses == nil:
		return Attached
	default:
		return Ready
	}
}

// Game returns the current attachment, or nil
func (a *Autosplitter) Game() *Game {
	return a.game
}

// Init makes sure a live process is attached and its addresses are resolved.
// It returns true only when Ready; every failure is retried on the next call.
func (a *Autosplitter) Init() bool {
	defer a.notify()

	if a.game == nil {
		a.game = a.attach()
	}

	if a.game == nil {
		return false
	}

	if !a.game.Process.IsOpen() {
		a.log.Infoln("Lost process", a.game.Process.GetPID())
		a.game.Process.Close()
		a.game = nil
		a.isLoading.Reset()
		return false
	}

	if a.game.Addresses == nil {
		addrs, err := a.resolver.Resolve(a.game.Process, a.game.Module)
		if err != nil {
			a.log.Debugln("Address resolution failed:", err)
			return false
		}
		a.game.Addresses = &addrs
		a.log.Infoln("Loading flag at", addrs.IsLoading.ToString())
	}

	return true
}

func (a *Autosplitter) attach() *Game {
	for _, name := range a.names {
		proc, err := a.attacher.Attach(name)
		if err != nil {
			continue
		}

		module, err := lookupModule(proc, name)
		if err != nil {
			// Same as not finding the process: drop it and retry next tick
			a.log.Debugln("Module lookup failed:", err)
			proc.Close()
			return nil
		}

		a.log.Infoln("Attached to", name, "pid", proc.GetPID(), "module", module.Base.ToString(), module.Size.ToString())
		return &Game{Process: proc, Module: module}
	}
	return nil
}

func lookupModule(proc process.Process, name string) (Module, error) {
	base, err := proc.GetModuleAddress(name)
	if err != nil {
		return Module{}, fmt.Errorf("module %s base: %w", name, err)
	}
	size, err := proc.GetModuleSize(name)
	if err != nil {
		return Module{}, fmt.Errorf("module %s size: %w", name, err)
	}
	return Module{Name: name, Base: base, Size: size}, nil
}

func (a *Autosplitter) notify() {
	phase := a.Phase()
	if phase == a.phase {
		return
	}
	a.phase = phase
	if a.observer != nil {
		a.observer(phase)
	}
}

// Update samples the loading flag. It does nothing unless Ready.
// A failed read counts as not loading.
func (a *Autosplitter) Update() {
	if a.game == nil || a.game.Addresses == nil {
		return
	}

	v, err := process.ReadUINT8(a.game.Process, a.game.Addresses.IsLoading)
	a.isLoading.Update(err == nil && v != 0, true)
}

func (a *Autosplitter) snapshot() Snapshot {
	pair, ok := a.isLoading.Pair()
	return Snapshot{IsLoading: pair, Sampled: ok}
}

// IsLoading returns the latest loading sample, false before the first one.
// The second result is always true: the flag is always reported to the host.
func (a *Autosplitter) IsLoading() (bool, bool) {
	loading, _ := a.isLoading.Current()
	return loading, true
}

// LoadingPair exposes the loading watcher for edge detection
func (a *Autosplitter) LoadingPair() (watcher.Pair[bool], bool) {
	return a.isLoading.Pair()
}

func (a *Autosplitter) Start() bool {
	return a.rules.Start(a.snapshot())
}

func (a *Autosplitter) Split() bool {
	return a.rules.Split(a.snapshot())
}

func (a *Autosplitter) Reset() bool {
	return a.rules.Reset(a.snapshot())
}

// GameTime returns a game time to hand to the host, or false to leave the host's own
func (a *Autosplitter) GameTime() (time.Duration, bool) {
	return a.rules.GameTime(a.snapshot())
}
