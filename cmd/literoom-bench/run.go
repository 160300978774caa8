package main

import (
	"fmt"

	"github.com/spf13/cobra"

	literoom "github.com/tesla3327/literoom-sub019"
	"github.com/tesla3327/literoom-sub019/bench"
)

func newRunCommand(opts *globalOptions) *cobra.Command {
	var (
		runs    int
		warmup  int
		input   string
		compare bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the benchmark scenarios and print stage timings",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			cfg, err := loadBenchConfig(opts.configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("runs") {
				cfg.Measure.Runs = runs
			}
			if cmd.Flags().Changed("warmup") {
				cfg.Measure.Warmup = warmup
			}

			frame, err := loadFrame(cfg, input)
			if err != nil {
				return err
			}
			scenarios, err := cfg.scenarios(frame.Width, frame.Height)
			if err != nil {
				return err
			}

			pipeline, err := openPipeline(cmd, opts.software)
			if err != nil {
				return err
			}
			defer pipeline.Close()

			env := bench.DetectEnvironment(ctx)
			if pipeline.Accelerated() {
				env.AdapterName = literoom.Default().AdapterName()
			}
			fmt.Fprintln(out, env)
			fmt.Fprintln(out)

			var cpu *literoom.Pipeline
			if compare {
				if !pipeline.Accelerated() {
					return fmt.Errorf("--compare needs the GPU engine, but only the CPU engine is available")
				}
				cpu = literoom.NewSoftware()
				defer cpu.Close()
			}

			runner := cfg.runner()
			for _, sc := range scenarios {
				m, err := bench.MeasurePipeline(ctx, pipeline, sc.Name, frame, sc.Params, runner)
				if err != nil {
					return fmt.Errorf("scenario %q: %w", sc.Name, err)
				}
				renderMeasurement(out, *m)

				if cpu != nil {
					cm, err := bench.MeasurePipeline(ctx, cpu, sc.Name+" (cpu)", frame, sc.Params, runner)
					if err != nil {
						return fmt.Errorf("scenario %q (cpu): %w", sc.Name, err)
					}
					renderMeasurement(out, *cm)
					fmt.Fprintf(out, "gpu vs cpu: %s\n", bench.Compare(cm.Total, m.Total))
				}
				fmt.Fprintln(out)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&runs, "runs", 0, "Measured runs per scenario (overrides config)")
	cmd.Flags().IntVar(&warmup, "warmup", 0, "Warmup runs per scenario (overrides config)")
	cmd.Flags().StringVar(&input, "input", "", "Photo to process instead of the gradient fixture")
	cmd.Flags().BoolVar(&compare, "compare", false, "Measure both engines and report the speedup")
	return cmd
}

// loadFrame builds the frame every scenario processes: the user's photo
// when --input is set, otherwise the configured gradient fixture.
func loadFrame(cfg *benchConfig, input string) (*literoom.PixelBuffer, error) {
	if input != "" {
		return loadInputImage(input)
	}
	format, err := cfg.frameFormat()
	if err != nil {
		return nil, err
	}
	return bench.GradientImage(cfg.Frame.Width, cfg.Frame.Height, format)
}

// openPipeline prefers the GPU engine and falls back to the CPU engine,
// noting why, when no adapter is available.
func openPipeline(cmd *cobra.Command, software bool) (*literoom.Pipeline, error) {
	if software {
		return literoom.NewSoftware(), nil
	}
	capability := literoom.Default()
	if !capability.Initialize(cmd.Context()) {
		if err := cmd.Context().Err(); err != nil {
			return nil, err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "GPU unavailable (%v), using CPU engine\n", capability.InitError())
		return literoom.NewSoftware(), nil
	}
	return literoom.New(capability), nil
}
