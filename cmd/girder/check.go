package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"girder/internal/driver"
	"girder/internal/fault"
)

var (
	checkJobs    int
	checkNoCache bool
)

func init() {
	checkCmd.Flags().IntVarP(&checkJobs, "jobs", "j", 0, "parallel workers (0 = number of CPUs)")
	checkCmd.Flags().BoolVar(&checkNoCache, "no-cache", false, "bypass the translation verdict cache")
}

var checkCmd = &cobra.Command{
	Use:   "check [files...]",
	Short: "Report per-file translation verdicts",
	Long: `Check translates every input and prints one verdict line per file
without emitting any bridge output. Exits non-zero when any file fails.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		files, manifest, err := collectInputs(args)
		if err != nil {
			return err
		}
		logger, err := loggerFromFlags(cmd)
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		applyColorMode(cmd)

		jobs := checkJobs
		if !cmd.Flags().Changed("jobs") && manifest != nil {
			jobs = manifest.Config.Translate.Jobs
		}
		opts := driver.Options{Jobs: jobs, Logger: logger}
		if !checkNoCache && !manifestDisablesCache(manifest) {
			if cache, err := driver.OpenDiskCache("girder"); err == nil {
				opts.Cache = cache
			}
		}

		results, err := driver.TranslateAll(cmd.Context(), files, opts)
		if err != nil {
			return err
		}

		okMark := color.New(color.FgGreen, color.Bold).Sprint("ok")
		failMark := color.New(color.FgRed, color.Bold).Sprint("fail")
		kindColor := color.New(color.FgYellow)

		out := cmd.OutOrStdout()
		failed := 0
		for _, res := range results {
			if res.Err == nil {
				note := fmt.Sprintf("%d functions", res.FuncCount)
				if res.Cached {
					note += ", cached"
				}
				fmt.Fprintf(out, "%4s  %s (%s)\n", okMark, res.Path, note)
				continue
			}
			failed++
			if kind, ok := fault.KindOf(res.Err); ok {
				fmt.Fprintf(out, "%4s  %s %s\n", failMark, res.Path, kindColor.Sprintf("[%s]", kind))
			} else {
				fmt.Fprintf(out, "%4s  %s\n", failMark, res.Path)
			}
			fmt.Fprintf(out, "      %v\n", res.Err)
		}

		fmt.Fprintf(out, "\n%d ok, %d failed, %d total\n", len(results)-failed, failed, len(results))
		if failed > 0 {
			return fmt.Errorf("%d of %d modules failed to translate", failed, len(results))
		}
		return nil
	},
}

// applyColorMode maps the persistent --color flag onto the global color
// toggle used by every verdict printer.
func applyColorMode(cmd *cobra.Command) {
	mode, _ := cmd.Flags().GetString("color")
	switch mode {
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	}
	// auto keeps the library's terminal detection
}
