// Package config loads the YAML configuration and watches it for edits to
// the runtime tunables.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Window struct {
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Title      string `yaml:"title"`
	VSync      bool   `yaml:"vsync"`
	Fullscreen bool   `yaml:"fullscreen"`
}

type FloorAssets struct {
	BaseColor string `yaml:"basecolor"`
	Normal    string `yaml:"normal"`
	ORM       string `yaml:"orm"`
}

type Assets struct {
	Floor    FloorAssets `yaml:"floor"`
	Triangle string      `yaml:"triangle"` // SVG file path or data: URI
	Model    string      `yaml:"model,omitempty"`
}

// Tunables are the values the debug panel edits. They can change while the
// program runs.
type Tunables struct {
	Iterations          int     `yaml:"iterations"`
	DensityDissipation  float32 `yaml:"density_dissipation"`
	VelocityDissipation float32 `yaml:"velocity_dissipation"`
	PressureDissipation float32 `yaml:"pressure_dissipation"`
	CurlStrength        float32 `yaml:"curl_strength"`
	Radius              float32 `yaml:"radius"`

	LuminosityThreshold float32 `yaml:"luminosity_threshold"`
	LuminositySmoothing float32 `yaml:"luminosity_smoothing"`
	BloomStrength       float32 `yaml:"bloom_strength"`
	BloomRadius         float32 `yaml:"bloom_radius"`
	BloomDistortion     float32 `yaml:"bloom_distortion"`

	PostProcessing bool `yaml:"post_processing"`
}

type Panel struct {
	Remote bool   `yaml:"remote"`
	Addr   string `yaml:"addr"`
}

type Log struct {
	Level string `yaml:"level"`
}

type Config struct {
	Window   Window   `yaml:"window"`
	Assets   Assets   `yaml:"assets"`
	Tunables Tunables `yaml:"tunables"`
	Panel    Panel    `yaml:"panel"`
	Log      Log      `yaml:"log"`
}

const TriangleSVG = `data:image/svg+xml;utf8,<svg><path d="M 3 0 L 0 5 H 6 Z" stroke-width="0.25"/></svg>`

func Default() *Config {
	return &Config{
		Window: Window{
			Width:  1280,
			Height: 720,
			Title:  "Fluid Glow",
			VSync:  true,
		},
		Assets: Assets{
			Floor: FloorAssets{
				BaseColor: "assets/textures/pbr/polished_concrete_basecolor.jpg",
				Normal:    "assets/textures/pbr/polished_concrete_normal.jpg",
				ORM:       "assets/textures/pbr/polished_concrete_orm.jpg",
			},
			Triangle: TriangleSVG,
		},
		Tunables: DefaultTunables(),
		Panel: Panel{
			Addr: "127.0.0.1:8080",
		},
		Log: Log{Level: "info"},
	}
}

func DefaultTunables() Tunables {
	return Tunables{
		Iterations:          3,
		DensityDissipation:  0.97,
		VelocityDissipation: 0.98,
		PressureDissipation: 0.8,
		CurlStrength:        0,
		Radius:              0.2,
		LuminosityThreshold: 0.1,
		LuminositySmoothing: 1,
		BloomStrength:       0.3,
		BloomRadius:         0.2,
		BloomDistortion:     1.5,
		PostProcessing:      true,
	}
}

// Load reads path over the defaults, so a file only needs the keys it
// changes.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

func (c *Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window size %dx%d", c.Window.Width, c.Window.Height)
	}
	return c.Tunables.Validate()
}

func (t Tunables) Validate() error {
	if t.Iterations < 0 {
		return fmt.Errorf("iterations %d < 0", t.Iterations)
	}
	for name, v := range map[string]float32{
		"density_dissipation":  t.DensityDissipation,
		"velocity_dissipation": t.VelocityDissipation,
		"pressure_dissipation": t.PressureDissipation,
		"radius":               t.Radius,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("%s %v outside [0, 1]", name, v)
		}
	}
	return nil
}
