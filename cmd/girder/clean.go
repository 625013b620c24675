package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"girder/internal/driver"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Drop the translation verdict cache",
	RunE: func(cmd *cobra.Command, args []string) error {
		cache, err := driver.OpenDiskCache("girder")
		if err != nil {
			return err
		}
		if err := cache.DropAll(); err != nil {
			return err
		}
		if quiet, _ := cmd.Flags().GetBool("quiet"); !quiet {
			fmt.Fprintln(cmd.OutOrStdout(), "translation cache dropped")
		}
		return nil
	},
}
