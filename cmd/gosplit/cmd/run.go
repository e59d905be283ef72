package cmd

import (
	"fmt"
	"time"

	"gosplit/autosplitter"
	"gosplit/timer"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// DefaultTickRate matches the usual autosplitter runtime cadence
const DefaultTickRate = 120

type timerOptions struct {
	livesplit string
	local     bool
	startNow  bool
	status    time.Duration
}

type runOptions struct {
	timer    timerOptions
	interval time.Duration
}

var runOpts = runOptions{}

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "tick the autosplitter until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		if runOpts.interval <= 0 {
			return fmt.Errorf("--interval must be positive")
		}

		log := logger.NewLogger(coloransi.Color(coloransi.White, coloransi.ColorOrange, "gosplit"))

		t, local, closeTimer := newTimer(runOpts.timer)
		defer closeTimer()

		as := autosplitter.New(newAttacher(), t,
			autosplitter.OnPhaseChange(func(p autosplitter.Phase) {
				log.Infoln("Autosplitter", p)
			}),
		)

		ticker := time.NewTicker(runOpts.interval)
		defer ticker.Stop()

		var status <-chan time.Time
		if local != nil && runOpts.timer.status > 0 {
			st := time.NewTicker(runOpts.timer.status)
			defer st.Stop()
			status = st.C
		}

		log.Infoln("Ticking every", runOpts.interval)
		ctx := cmd.Context()
		for {
			select {
			case <-ctx.Done():
				log.Infoln("Stopping")
				return nil
			case <-ticker.C:
				as.Tick()
			case <-status:
				log.Infoln("Real time", timer.FormatDuration(local.RealTime()), "game time", timer.FormatDuration(local.GameTime()))
			}
		}
	},
}

func newTimer(opts timerOptions) (timer.Timer, *timer.Local, func()) {
	if opts.local {
		t := timer.NewLocal()
		if opts.startNow {
			t.Start()
		}
		return t, t, func() {}
	}

	ls := timer.NewLiveSplit(opts.livesplit)
	return ls, nil, func() { ls.Close() }
}

func addTimerFlags(fs *pflag.FlagSet, opts *timerOptions) {
	fs.StringVar(&opts.livesplit, "livesplit", timer.DefaultLiveSplitAddress, "LiveSplit Server address")
	fs.BoolVar(&opts.local, "local", false, "use an in-process timer instead of LiveSplit")
	fs.BoolVar(&opts.startNow, "start", false, "start the local timer immediately")
	fs.DurationVar(&opts.status, "status", 10*time.Second, "how often to log local timer times, 0 to disable")
}

func init() {
	rootCmd.AddCommand(runCmd)

	addTimerFlags(runCmd.Flags(), &runOpts.timer)
	runCmd.Flags().DurationVarP(&runOpts.interval, "interval", "i",
		time.Second/DefaultTickRate, "time between ticks")
}
