package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"holoquilt/internal/calibration"
	"holoquilt/internal/frames"
	"holoquilt/internal/quilt"
)

// Config holds all configurable paths, display and quilt settings.
type Config struct {
	// Paths
	InputDir  string `json:"input_dir"`
	OutputDir string `json:"output_dir"`

	// Displays lists calibration files. When empty, one display of Device
	// is emulated.
	Displays []calibration.Display `json:"displays"`
	Device   string                `json:"device"`
	// Display selects the calibration by index or name.
	Display string `json:"display"`

	// Quilt layout: a preset name, or "custom" with Quilt set.
	Preset string          `json:"preset"`
	Quilt  *quilt.Settings `json:"quilt,omitempty"`

	// Render size override for the lightfield; zero uses the display's.
	RenderWidth  int `json:"render_width"`
	RenderHeight int `json:"render_height"`

	Lightfield   bool   `json:"lightfield"`
	PreviewWidth int    `json:"preview_width"`
	Format       string `json:"format"`
	Workers      int    `json:"workers"`
	Debug        bool   `json:"debug"`
}

// Load reads a JSON config file and returns Config.
// Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	// Calibration paths are relative to the config file.
	base := filepath.Dir(path)
	for i, d := range cfg.Displays {
		if d.Path != "" && !filepath.IsAbs(d.Path) {
			cfg.Displays[i].Path = filepath.Join(base, d.Path)
		}
	}
	return cfg, nil
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	InputDir   string
	OutputDir  string
	Preset     string
	Device     string
	Display    string
	Format     string
	Workers    int
	Lightfield bool
	Debug      bool
}

// Resolve applies CLI flags and fills in defaults.
// CLI flags take priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	// CLI flags override config file
	if flags.InputDir != "" {
		c.InputDir = flags.InputDir
	}
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.Preset != "" {
		c.Preset = flags.Preset
	}
	if flags.Device != "" {
		c.Device = flags.Device
	}
	if flags.Display != "" {
		c.Display = flags.Display
	}
	if flags.Format != "" {
		c.Format = flags.Format
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	c.Lightfield = c.Lightfield || flags.Lightfield
	c.Debug = c.Debug || flags.Debug

	if c.OutputDir == "" && c.InputDir != "" {
		c.OutputDir = filepath.Join(c.InputDir, "quilts")
	}

	// Defaults
	if c.Preset == "" {
		c.Preset = quilt.Automatic.String()
	}
	if c.Device == "" {
		c.Device = quilt.DevicePortrait.String()
	}
	if c.Format == "" {
		c.Format = string(frames.FormatWebP)
	}
	if c.PreviewWidth <= 0 {
		c.PreviewWidth = 1024
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
}

// Validate reports every invalid setting.
func (c Config) Validate() error {
	var err error
	preset, perr := quilt.ParsePreset(c.Preset)
	err = multierr.Append(err, perr)
	if len(c.Displays) == 0 {
		_, derr := quilt.ParseDeviceType(c.Device)
		err = multierr.Append(err, derr)
	}
	_, ferr := frames.ParseFormat(c.Format)
	err = multierr.Append(err, ferr)

	if perr == nil && preset == quilt.Custom {
		if c.Quilt == nil {
			err = multierr.Append(err, fmt.Errorf("config: preset custom needs quilt settings"))
		} else {
			err = multierr.Append(err, c.Quilt.Validate())
		}
	}
	for i, d := range c.Displays {
		if d.Path == "" {
			err = multierr.Append(err, fmt.Errorf("config: display %d has no calibration file", i))
		}
	}
	if c.RenderWidth < 0 || c.RenderHeight < 0 || (c.RenderWidth == 0) != (c.RenderHeight == 0) {
		err = multierr.Append(err, fmt.Errorf("config: render size %dx%d must be both set and positive, or both zero", c.RenderWidth, c.RenderHeight))
	}
	return err
}

// OutputFormat returns the parsed output format. Call Validate first.
func (c Config) OutputFormat() frames.Format {
	f, _ := frames.ParseFormat(c.Format)
	return f
}

// Source returns where calibrations come from: the listed calibration
// files, or a single emulated display.
func (c Config) Source() calibration.Source {
	if len(c.Displays) > 0 {
		return calibration.VisualSource{Displays: c.Displays}
	}
	t, err := quilt.ParseDeviceType(c.Device)
	if err != nil {
		t = quilt.DevicePortrait
	}
	return calibration.EmulatedSource{Devices: []quilt.DeviceType{t}}
}

// SelectDisplay picks the configured display from the manager. An empty
// selector picks the first display.
func (c Config) SelectDisplay(m *calibration.Manager) (calibration.Calibration, error) {
	sel := strings.TrimSpace(c.Display)
	if sel == "" {
		sel = "0"
	}
	if i, err := strconv.Atoi(sel); err == nil {
		if !m.IsIndexValid(i) {
			return calibration.Calibration{}, fmt.Errorf("config: display index %d out of range (%d displays)", i, m.Count())
		}
		return m.GetByIndex(i), nil
	}
	cal, found := m.FindByName(sel)
	if !found {
		return calibration.Calibration{}, fmt.Errorf("config: no display named %q", sel)
	}
	return cal, nil
}

// QuiltSettings resolves the quilt layout for a display. screen must carry
// the display's native resolution.
func (c Config) QuiltSettings(screen quilt.Screen, logger *zap.SugaredLogger) (quilt.Settings, error) {
	p, err := quilt.ParsePreset(c.Preset)
	if err != nil {
		return quilt.Settings{}, err
	}
	if p == quilt.Custom {
		if c.Quilt == nil {
			return quilt.Settings{}, fmt.Errorf("config: preset custom needs quilt settings")
		}
		s := *c.Quilt
		return s, s.Validate()
	}
	return quilt.FromPreset(p, screen, logger), nil
}

// RenderSize returns the lightfield output size for cal.
func (c Config) RenderSize(cal calibration.Calibration) (int, int) {
	if c.RenderWidth > 0 && c.RenderHeight > 0 {
		return c.RenderWidth, c.RenderHeight
	}
	return cal.ScreenWidth, cal.ScreenHeight
}

// RenderCalibration returns cal adjusted to the lightfield render size. At
// the native size cal is returned as is.
func (c Config) RenderCalibration(cal calibration.Calibration) calibration.Calibration {
	w, h := c.RenderSize(cal)
	if w == cal.ScreenWidth && h == cal.ScreenHeight {
		return cal
	}
	return cal.CopyWithCustomResolution(cal.XPos, cal.YPos, w, h)
}
