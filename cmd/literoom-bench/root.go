package main

import (
	"github.com/spf13/cobra"
)

type globalOptions struct {
	configPath string
	software   bool
}

func newRootCommand() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:           "literoom-bench",
		Short:         "Measure the literoom photo edit pipeline",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Scenario configuration file (TOML)")
	rootCmd.PersistentFlags().BoolVar(&opts.software, "software", false, "Use the CPU engine even when a GPU is available")

	rootCmd.AddCommand(newRunCommand(opts))
	rootCmd.AddCommand(newInfoCommand(opts))
	rootCmd.AddCommand(newSampleConfigCommand())

	return rootCmd
}
