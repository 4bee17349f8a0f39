package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"holoquilt/internal/calibration"
	"holoquilt/internal/config"
	"holoquilt/internal/lightfield"
	"holoquilt/internal/logging"
	"holoquilt/internal/quilt"
)

func main() {
	configFile := flag.String("config", "", "Path to config.json file")
	device := flag.String("device", "", "Emulated device when no calibration files are given")
	width := flag.Int("width", 0, "Show calibration resized to this render width")
	height := flag.Int("height", 0, "Show calibration resized to this render height")
	asJSON := flag.Bool("json", false, "Print calibrations as JSON")
	debug := flag.Bool("debug", false, "Debug logging")
	flag.Parse()

	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	}
	// Remaining arguments are visual.json files.
	for _, path := range flag.Args() {
		cfg.Displays = append(cfg.Displays, calibration.Display{Path: path})
	}
	cfg.Resolve(config.Flags{Device: *device, Debug: *debug})
	cfg.RenderWidth, cfg.RenderHeight = *width, *height
	if err := cfg.Validate(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New("lkginfo", cfg.Debug)
	defer logger.Sync()

	m := calibration.NewManager(cfg.Source(), logger)
	if err := m.Refresh(context.Background()); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	cals := m.Snapshot().All()

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(cals); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	fmt.Printf("Displays: %d\n", len(cals))
	for _, cal := range cals {
		fmt.Printf("  Display[%d]: %q serial=%q device=%s portrait=%v valid=%v\n",
			cal.Index, cal.Name, cal.Serial, quilt.DeviceName(cal), cal.IsPortrait(), cal.IsValid())
		fmt.Printf("    Screen: %dx%d at (%d, %d), aspect %.4f\n", cal.ScreenWidth, cal.ScreenHeight, cal.XPos, cal.YPos, cal.GetAspect())
		printOptics("    ", cal)

		p := quilt.AutomaticPreset(cal, logger)
		s := quilt.FromPreset(p, cal, logger)
		l := s.Setup()
		fmt.Printf("    Quilt: %s preset, %s\n", p, s)
		fmt.Printf("      View: %dx%d, padding %dx%d, portion %.4f x %.4f\n",
			l.ViewWidth, l.ViewHeight, l.PaddingHorizontal, l.PaddingVertical, l.ViewPortionHorizontal, l.ViewPortionVertical)
		fmt.Printf("      Suffix: %s\n", quilt.Suffix(s.ViewColumns, s.ViewRows, cal.GetAspect()))

		if resized := cfg.RenderCalibration(cal); resized != cal {
			fmt.Printf("    Resized to %dx%d:\n", resized.ScreenWidth, resized.ScreenHeight)
			printOptics("      ", resized)
			fmt.Printf("      Uniforms: %s\n", lightfield.NewUniforms(resized, s))
		}
	}
}

func printOptics(indent string, cal calibration.Calibration) {
	fmt.Printf("%sPitch: %.5f (raw %.4f), Slope: %.5f (raw %.4f)\n", indent, cal.Pitch, cal.RawPitch, cal.Slope, cal.RawSlope)
	fmt.Printf("%sCenter: %.4f, Subp: %.8f, ViewCone: %.1f, DPI: %.1f, Flip: %.0f\n",
		indent, cal.Center, cal.Subp, cal.ViewCone, cal.DPI, calibration.FlipMultiplier(cal.FlipImageX))
}
