// Package cmd holds the gosplit command line
package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "gosplit",
	Short: "load remover for MugenEngine-Win64-Shipping.exe",
	Long: `gosplit attaches to the running game, finds its loading flag and pauses
game time on a LiveSplit Server (or a local timer) while the game is loading.

Attaching to a live process is supported on Linux (including Wine/Proton) and
Windows. Elsewhere only 'resolve --from' on a saved dump works.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
