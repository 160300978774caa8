package bench

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"

	literoom "github.com/tesla3327/literoom-sub019"
)

// StageSummary pairs one pipeline stage with its cross-run statistics.
type StageSummary struct {
	Stage string
	Summary
}

// PipelineMeasurement breaks a scenario's cost down by stage. Stages the
// scenario never exercised are omitted.
type PipelineMeasurement struct {
	Name   string
	Width  int
	Height int
	Stages []StageSummary // in execution order
	Total  Summary
}

// MeasurePipeline times p.Process over one scenario, discarding warmup
// runs, and aggregates the per-stage timing breakdowns.
func MeasurePipeline(ctx context.Context, p *literoom.Pipeline, name string, input *literoom.PixelBuffer, params *literoom.AdjustmentParameters, r Runner) (*PipelineMeasurement, error) {
	r = r.normalized()

	for i := 0; i < r.Warmup; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if _, err := p.Process(ctx, input, params); err != nil {
			return nil, fmt.Errorf("warmup run %d: %w", i+1, err)
		}
	}

	breakdowns := make([]literoom.TimingBreakdown, 0, r.Runs)
	for i := 0; i < r.Runs; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res, err := p.Process(ctx, input, params)
		if err != nil {
			return nil, fmt.Errorf("run %d: %w", i+1, err)
		}
		breakdowns = append(breakdowns, res.Timing)
	}

	m := &PipelineMeasurement{
		Name:   name,
		Width:  input.Width,
		Height: input.Height,
	}
	stages := []struct {
		name string
		get  func(*literoom.TimingBreakdown) float64
	}{
		{"rgb to rgba", func(t *literoom.TimingBreakdown) float64 { return t.RGBToRGBA }},
		{"upload", func(t *literoom.TimingBreakdown) float64 { return t.Upload }},
		{"rotation", func(t *literoom.TimingBreakdown) float64 { return t.Rotation }},
		{"adjustments", func(t *literoom.TimingBreakdown) float64 { return t.Adjustments }},
		{"tone curve", func(t *literoom.TimingBreakdown) float64 { return t.ToneCurve }},
		{"uber pipeline", func(t *literoom.TimingBreakdown) float64 { return t.UberPipeline }},
		{"masks", func(t *literoom.TimingBreakdown) float64 { return t.Masks }},
		{"downsample", func(t *literoom.TimingBreakdown) float64 { return t.Downsample }},
		{"readback", func(t *literoom.TimingBreakdown) float64 { return t.Readback }},
		{"rgba to rgb", func(t *literoom.TimingBreakdown) float64 { return t.RGBAToRGB }},
	}
	for _, st := range stages {
		samples := make([]float64, len(breakdowns))
		ran := false
		for i := range breakdowns {
			samples[i] = st.get(&breakdowns[i])
			if samples[i] > 0 {
				ran = true
			}
		}
		if !ran {
			continue
		}
		m.Stages = append(m.Stages, StageSummary{Stage: st.name, Summary: Summarize(samples)})
	}

	totals := make([]float64, len(breakdowns))
	for i := range breakdowns {
		totals[i] = breakdowns[i].Total
	}
	m.Total = Summarize(totals)
	return m, nil
}

// Environment describes the machine a measurement ran on. Fields beyond
// what the Go runtime knows are best-effort; collection failures leave
// them empty.
type Environment struct {
	OS          string
	Arch        string
	GoVersion   string
	NumCPU      int
	CPUModel    string
	Platform    string
	TotalMemMB  uint64
	AdapterName string // GPU adapter, filled in by the caller when known
}

// DetectEnvironment collects the runtime environment for report headers.
func DetectEnvironment(ctx context.Context) Environment {
	env := Environment{
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
		GoVersion: runtime.Version(),
		NumCPU:    runtime.NumCPU(),
	}
	if infos, err := cpu.InfoWithContext(ctx); err == nil && len(infos) > 0 {
		env.CPUModel = strings.TrimSpace(infos[0].ModelName)
	}
	if hi, err := host.InfoWithContext(ctx); err == nil {
		env.Platform = strings.TrimSpace(hi.Platform + " " + hi.PlatformVersion)
	}
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		env.TotalMemMB = vm.Total / (1 << 20)
	}
	return env
}

// String renders the environment on one line.
func (e Environment) String() string {
	s := fmt.Sprintf("%s/%s %s, %d cpus", e.OS, e.Arch, e.GoVersion, e.NumCPU)
	if e.CPUModel != "" {
		s += ", " + e.CPUModel
	}
	if e.TotalMemMB > 0 {
		s += fmt.Sprintf(", %d MB ram", e.TotalMemMB)
	}
	if e.AdapterName != "" {
		s += ", gpu " + e.AdapterName
	}
	return s
}
