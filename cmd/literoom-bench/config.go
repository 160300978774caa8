package main

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	literoom "github.com/tesla3327/literoom-sub019"
	"github.com/tesla3327/literoom-sub019/bench"
)

//go:embed sample_config.toml
var sampleConfig string

// benchConfig is the TOML scenario file. Every section is optional;
// missing values fall back to defaults.
type benchConfig struct {
	Frame     frameConfig      `toml:"frame"`
	Measure   measureConfig    `toml:"measure"`
	Scenarios []scenarioConfig `toml:"scenario"`
}

type frameConfig struct {
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	Format string `toml:"format"`
}

type measureConfig struct {
	Warmup int `toml:"warmup"`
	Runs   int `toml:"runs"`
}

type sliderConfig struct {
	Temperature float64 `toml:"temperature"`
	Tint        float64 `toml:"tint"`
	Exposure    float64 `toml:"exposure"`
	Contrast    float64 `toml:"contrast"`
	Highlights  float64 `toml:"highlights"`
	Shadows     float64 `toml:"shadows"`
	Whites      float64 `toml:"whites"`
	Blacks      float64 `toml:"blacks"`
	Vibrance    float64 `toml:"vibrance"`
	Saturation  float64 `toml:"saturation"`
}

type maskConfig struct {
	Type    string       `toml:"type"`
	StartX  float64      `toml:"start_x"`
	StartY  float64      `toml:"start_y"`
	EndX    float64      `toml:"end_x"`
	EndY    float64      `toml:"end_y"`
	CenterX float64      `toml:"center_x"`
	CenterY float64      `toml:"center_y"`
	RadiusX float64      `toml:"radius_x"`
	RadiusY float64      `toml:"radius_y"`
	Feather float64      `toml:"feather"`
	Invert  bool         `toml:"invert"`
	Adjust  sliderConfig `toml:"adjust"`
}

type scenarioConfig struct {
	Name      string       `toml:"name"`
	Sliders   sliderConfig `toml:"sliders"`
	Curve     [][]float64  `toml:"curve"`
	Masks     []maskConfig `toml:"mask"`
	Turns     int          `toml:"turns"`
	Angle     float64      `toml:"angle"`
	OutWidth  int          `toml:"out_width"`
	OutHeight int          `toml:"out_height"`
}

func defaultBenchConfig() benchConfig {
	return benchConfig{
		Frame:   frameConfig{Width: 2560, Height: 1707, Format: "rgba8"},
		Measure: measureConfig{Warmup: 3, Runs: 20},
	}
}

func loadBenchConfig(path string) (*benchConfig, error) {
	cfg := defaultBenchConfig()

	if path != "" {
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *benchConfig) validate() error {
	if c.Frame.Width <= 0 || c.Frame.Height <= 0 {
		return fmt.Errorf("frame size %dx%d is not positive", c.Frame.Width, c.Frame.Height)
	}
	if _, err := c.frameFormat(); err != nil {
		return err
	}
	seen := map[string]bool{}
	for i, sc := range c.Scenarios {
		if sc.Name == "" {
			return fmt.Errorf("scenario %d has no name", i+1)
		}
		if seen[sc.Name] {
			return fmt.Errorf("duplicate scenario name %q", sc.Name)
		}
		seen[sc.Name] = true
		if _, err := sc.params(); err != nil {
			return fmt.Errorf("scenario %q: %w", sc.Name, err)
		}
	}
	return nil
}

func (c *benchConfig) frameFormat() (literoom.PixelFormat, error) {
	switch strings.ToLower(c.Frame.Format) {
	case "", "rgba8":
		return literoom.FormatRGBA8, nil
	case "rgb8":
		return literoom.FormatRGB8, nil
	default:
		return 0, fmt.Errorf("unknown frame format %q", c.Frame.Format)
	}
}

func (c *benchConfig) runner() bench.Runner {
	return bench.Runner{Warmup: c.Measure.Warmup, Runs: c.Measure.Runs}
}

// scenarios returns the configured scenario list, or the built-in set
// sized for the given frame when the file defines none.
func (c *benchConfig) scenarios(width, height int) ([]bench.Scenario, error) {
	if len(c.Scenarios) == 0 {
		return bench.DefaultScenarios(width, height), nil
	}
	out := make([]bench.Scenario, 0, len(c.Scenarios))
	for _, sc := range c.Scenarios {
		params, err := sc.params()
		if err != nil {
			return nil, fmt.Errorf("scenario %q: %w", sc.Name, err)
		}
		out = append(out, bench.Scenario{Name: sc.Name, Params: params})
	}
	return out, nil
}

func (s sliderConfig) sliders() literoom.AdjustmentSliders {
	return literoom.AdjustmentSliders{
		Temperature: s.Temperature,
		Tint:        s.Tint,
		Exposure:    s.Exposure,
		Contrast:    s.Contrast,
		Highlights:  s.Highlights,
		Shadows:     s.Shadows,
		Whites:      s.Whites,
		Blacks:      s.Blacks,
		Vibrance:    s.Vibrance,
		Saturation:  s.Saturation,
	}
}

func (sc scenarioConfig) params() (*literoom.AdjustmentParameters, error) {
	p := &literoom.AdjustmentParameters{
		AdjustmentSliders: sc.Sliders.sliders(),
		Rotation:          literoom.Rotation{Turns: sc.Turns, Angle: sc.Angle},
		Output:            literoom.OutputOptions{Width: sc.OutWidth, Height: sc.OutHeight},
	}
	for i, pt := range sc.Curve {
		if len(pt) != 2 {
			return nil, fmt.Errorf("curve point %d has %d values, want [x, y]", i+1, len(pt))
		}
		p.ToneCurve = append(p.ToneCurve, literoom.ToneCurvePoint{X: pt[0], Y: pt[1]})
	}
	for i, m := range sc.Masks {
		mask, err := m.mask()
		if err != nil {
			return nil, fmt.Errorf("mask %d: %w", i+1, err)
		}
		p.Masks = append(p.Masks, mask)
	}
	return p, nil
}

func (m maskConfig) mask() (literoom.Mask, error) {
	var kind literoom.MaskType
	switch strings.ToLower(m.Type) {
	case "linear":
		kind = literoom.MaskLinear
	case "radial":
		kind = literoom.MaskRadial
	default:
		return literoom.Mask{}, fmt.Errorf("unknown mask type %q", m.Type)
	}
	return literoom.Mask{
		Type:    kind,
		StartX:  m.StartX,
		StartY:  m.StartY,
		EndX:    m.EndX,
		EndY:    m.EndY,
		CenterX: m.CenterX,
		CenterY: m.CenterY,
		RadiusX: m.RadiusX,
		RadiusY: m.RadiusY,
		Feather: m.Feather,
		Invert:  m.Invert,
		Adjust:  m.Adjust.sliders(),
	}, nil
}

func newSampleConfigCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sample-config",
		Short: "Print a commented scenario configuration to stdout",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprint(cmd.OutOrStdout(), sampleConfig)
			return err
		},
	}
}
