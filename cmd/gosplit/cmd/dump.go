package cmd

import (
	"fmt"

	"gosplit/process_blob"

	"github.com/spf13/cobra"
)

var dumpOutput string

// dumpCmd saves the running game's main module so the signature can be checked offline
var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "save the game's main module to a directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		if dumpOutput == "" {
			return fmt.Errorf("--output is required")
		}

		proc, name, err := openTarget("")
		if err != nil {
			return err
		}
		defer proc.Close()

		if err := process_blob.SaveModule(proc, dumpOutput, name); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved %s to %s\n", name, dumpOutput)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dumpCmd)

	dumpCmd.Flags().StringVarP(&dumpOutput, "output", "o", "", "output directory for the dump")
}
