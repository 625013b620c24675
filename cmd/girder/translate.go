package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"girder/internal/bridge"
	"girder/internal/driver"
	"girder/internal/observ"
)

var (
	translateEmit    string
	translateOutput  string
	translateJobs    int
	translateNoCache bool
	translateUI      string
)

func init() {
	translateCmd.Flags().StringVar(&translateEmit, "emit", "none", "what to emit per translated module (none|text)")
	translateCmd.Flags().StringVarP(&translateOutput, "output", "o", "", "write emitted output to a file instead of stdout")
	translateCmd.Flags().IntVarP(&translateJobs, "jobs", "j", 0, "parallel workers (0 = number of CPUs)")
	translateCmd.Flags().BoolVar(&translateNoCache, "no-cache", false, "bypass the translation verdict cache")
	translateCmd.Flags().StringVar(&translateUI, "ui", "auto", "interactive progress (auto|on|off)")
}

var translateCmd = &cobra.Command{
	Use:   "translate [files...]",
	Short: "Translate exported LLVM modules into bridge form",
	Long: `Translate loads exported module files, checks them against the supported
LLVM subset and lowers them into the typed bridge representation. Without
arguments the inputs come from the nearest girder.toml.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		files, manifest, err := collectInputs(args)
		if err != nil {
			return err
		}
		mode, err := parseProgressMode(translateUI)
		if err != nil {
			return err
		}
		logger, err := loggerFromFlags(cmd)
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		jobs := translateJobs
		if !cmd.Flags().Changed("jobs") && manifest != nil {
			jobs = manifest.Config.Translate.Jobs
		}
		opts := driver.Options{Jobs: jobs, Logger: logger}
		if !translateNoCache && !manifestDisablesCache(manifest) {
			cache, err := driver.OpenDiskCache("girder")
			if err != nil {
				logger.Warn("cache unavailable, translating without it")
			} else {
				opts.Cache = cache
			}
		}

		tm := observ.NewTimer()
		phase := tm.Begin("translate")

		var results []driver.Result
		if mode.interactive(os.Stdout) && translateEmit == "none" {
			results, err = runBatchWithUI(cmd.Context(), "translating", files, opts)
		} else {
			results, err = driver.TranslateAll(cmd.Context(), files, opts)
		}
		tm.End(phase, fmt.Sprintf("%d files", len(files)))
		if err != nil {
			return err
		}

		if timings, _ := cmd.Flags().GetBool("timings"); timings {
			fmt.Fprint(os.Stderr, tm.Summary())
		}

		return reportTranslation(cmd, results)
	},
}

// reportTranslation prints failures, emits requested output and sets the
// exit status. Cache hits carry no unit, so --emit forces a re-translation
// for them.
func reportTranslation(cmd *cobra.Command, results []driver.Result) error {
	out := cmd.OutOrStdout()
	if translateOutput != "" {
		f, err := os.Create(translateOutput)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", res.Path, res.Err)
			continue
		}
		if translateEmit != "text" {
			continue
		}
		unit := res.Unit
		if unit == nil {
			fresh, err := driver.TranslateFile(res.Path, nil)
			if err != nil {
				failed++
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", res.Path, err)
				continue
			}
			unit = fresh
		}
		if err := bridge.DumpFunctions(out, unit.Typing, unit.Module, unit.Functions); err != nil {
			return err
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d modules failed to translate", failed, len(results))
	}
	return nil
}
