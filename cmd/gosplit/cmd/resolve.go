package cmd

import (
	"encoding/hex"
	"errors"
	"fmt"

	"gosplit/autosplitter"
	"gosplit/process"
	"gosplit/process_blob"

	"github.com/spf13/cobra"
)

var resolveFrom string

// resolveCmd checks that the loading flag can still be found, live or in a saved dump
var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "locate the loading flag and print it",
	RunE: func(cmd *cobra.Command, args []string) error {
		proc, name, err := openTarget(resolveFrom)
		if err != nil {
			return err
		}
		defer proc.Close()

		base, err := proc.GetModuleAddress(name)
		if err != nil {
			return err
		}
		size, err := proc.GetModuleSize(name)
		if err != nil {
			return err
		}
		module := autosplitter.Module{Name: name, Base: base, Size: size}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Module %s at %s, %s\n", name, base.ToString(), size.ToString())

		sig := autosplitter.LoadingSignature
		fmt.Fprintf(out, "Scanning for pattern: %s\n", sig)

		if match, ok := sig.ScanRange(proc, base, size); ok {
			fmt.Fprintf(out, "Match at %s (module +0x%x):\n", match.ToString(), uint64(match-base))
			if data, err := proc.ReadMemory(match, process.ProcessMemorySize(sig.Len()+4)); err == nil {
				fmt.Fprint(out, hex.Dump(data))
			}
		}

		addrs, err := autosplitter.DefaultResolver().Resolve(proc, module)
		if err != nil {
			return err
		}

		flag, err := process.ReadUINT8(proc, addrs.IsLoading)
		if err != nil {
			return fmt.Errorf("loading flag at %s unreadable: %w", addrs.IsLoading.ToString(), err)
		}
		fmt.Fprintf(out, "Loading flag at %s (module +0x%x) = %d\n", addrs.IsLoading.ToString(), uint64(addrs.IsLoading-base), flag)
		return nil
	},
}

// openTarget opens a saved dump when from is set, otherwise the first running candidate
func openTarget(from string) (process.Process, string, error) {
	if from != "" {
		dump, meta, err := process_blob.LoadDump(from)
		if err != nil {
			return nil, "", err
		}
		return dump, meta.Module.Name, nil
	}

	attacher := newAttacher()
	var errs []error
	for _, name := range autosplitter.ProcessNames {
		proc, err := attacher.Attach(name)
		if err == nil {
			return proc, name, nil
		}
		errs = append(errs, err)
	}
	return nil, "", errors.Join(errs...)
}

func init() {
	rootCmd.AddCommand(resolveCmd)

	resolveCmd.Flags().StringVarP(&resolveFrom, "from", "f", "", "directory of a dump written by 'gosplit dump'")
}
