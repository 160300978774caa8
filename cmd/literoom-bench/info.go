package main

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	literoom "github.com/tesla3327/literoom-sub019"
	"github.com/tesla3327/literoom-sub019/bench"
)

func newInfoCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show the host environment and GPU capability",
		RunE: func(cmd *cobra.Command, args []string) error {
			env := bench.DetectEnvironment(cmd.Context())

			rows := []table.Row{
				{"OS", env.OS + "/" + env.Arch},
				{"Go", env.GoVersion},
				{"CPUs", env.NumCPU},
			}
			if env.CPUModel != "" {
				rows = append(rows, table.Row{"CPU model", env.CPUModel})
			}
			if env.Platform != "" {
				rows = append(rows, table.Row{"Platform", env.Platform})
			}
			if env.TotalMemMB > 0 {
				rows = append(rows, table.Row{"Memory", fmt.Sprintf("%d MB", env.TotalMemMB)})
			}

			if opts.software {
				rows = append(rows, table.Row{"GPU", "disabled (--software)"})
			} else {
				capability := literoom.Default()
				if capability.Initialize(cmd.Context()) {
					rows = append(rows, table.Row{"GPU", capability.AdapterName()})
				} else if err := cmd.Context().Err(); err != nil {
					return err
				} else {
					rows = append(rows, table.Row{"GPU", fmt.Sprintf("unavailable: %v", capability.InitError())})
				}
			}

			renderKeyValues(cmd.OutOrStdout(), "literoom "+literoom.Version, rows)
			return nil
		},
	}
}
