package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"holoquilt/internal/batch"
	"holoquilt/internal/calibration"
	"holoquilt/internal/compose"
	"holoquilt/internal/config"
	"holoquilt/internal/frames"
	"holoquilt/internal/lightfield"
	"holoquilt/internal/logging"
	"holoquilt/internal/quilt"
)

func main() {
	// CLI flags
	configFile := flag.String("config", "", "Path to config.json file")
	testN := flag.Int("test", 0, "Compose only the first N frames for testing")
	workers := flag.Int("workers", 0, "Number of worker goroutines (default: NumCPU)")
	inputDir := flag.String("input", "", "Directory of view images, or of one subdirectory per frame")
	outputDir := flag.String("output", "", "Output directory (default: <input>/quilts)")
	preset := flag.String("preset", "", "Quilt preset: automatic, portrait, hires-portrait, 4k, 8k, custom")
	device := flag.String("device", "", "Emulated device when no calibration files are configured")
	display := flag.String("display", "", "Display index or name (default: 0)")
	format := flag.String("format", "", "Output format: webp or png (default: webp)")
	lf := flag.Bool("lightfield", false, "Also write the interleaved lightfield preview")
	split := flag.String("split", "", "Split this quilt image into views instead of composing")
	debug := flag.Bool("debug", false, "Debug logging")

	flag.Parse()

	// Load config
	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	// CLI flags override config file
	cfg.Resolve(config.Flags{
		InputDir:   *inputDir,
		OutputDir:  *outputDir,
		Preset:     *preset,
		Device:     *device,
		Display:    *display,
		Format:     *format,
		Workers:    *workers,
		Lightfield: *lf,
		Debug:      *debug,
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New("quilt", cfg.Debug)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Resolve the display and its quilt
	manager := calibration.NewManager(cfg.Source(), logger)
	if err := manager.Refresh(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading calibrations: %v\n", err)
		os.Exit(1)
	}
	cal, err := cfg.SelectDisplay(manager)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	settings, err := cfg.QuiltSettings(cal, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: quilt settings: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Display: %s (%s, %dx%d)\n", cal.Name, quilt.DeviceName(cal), cal.ScreenWidth, cal.ScreenHeight)
	fmt.Printf("Quilt: %s\n", settings)

	if *split != "" {
		if err := splitQuilt(*split, settings, cfg, logger); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if cfg.InputDir == "" {
		fmt.Fprintln(os.Stderr, "Error: no input directory. Use -input flag or config.json.")
		os.Exit(1)
	}

	items, err := frames.Scan(cfg.InputDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Limit for testing
	if *testN > 0 && *testN < len(items) {
		items = items[:*testN]
	}

	batchCfg := batch.Config{
		OutputDir:    cfg.OutputDir,
		Settings:     settings,
		SuffixAspect: cal.GetAspect(),
		Format:       cfg.OutputFormat(),
		Workers:      cfg.Workers,
		Progress:     os.Stdout,
		Logger:       logger,
	}
	if cfg.Lightfield {
		rendered := cfg.RenderCalibration(cal)
		batchCfg.Lightfield = &batch.LightfieldOptions{
			Uniforms:     lightfield.NewUniforms(rendered, settings),
			Width:        rendered.ScreenWidth,
			Height:       rendered.ScreenHeight,
			PreviewWidth: cfg.PreviewWidth,
		}
		logger.Debugw("lightfield uniforms", "uniforms", batchCfg.Lightfield.Uniforms.String())
	}

	// Print summary
	mode := ""
	if *testN > 0 {
		mode = fmt.Sprintf(" (TEST: first %d)", *testN)
	}

	fmt.Printf("Views → %s quilts%s\n", strings.ToUpper(string(batchCfg.Format)), mode)
	fmt.Printf("Frames: %d, Workers: %d\n", len(items), cfg.Workers)
	fmt.Printf("Output: %s\n", cfg.OutputDir)
	fmt.Println("------------------------------------------------------------")

	start := time.Now()
	results := batch.Run(ctx, batchCfg, items)

	elapsed := time.Since(start)
	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Done in %.1fs\n", elapsed.Seconds())

	// Count results
	success, failed := 0, 0
	var errors []batch.Result
	for _, r := range results {
		if r.Success {
			success++
		} else {
			failed++
			errors = append(errors, r)
		}
	}

	fmt.Printf("Composed: %d/%d\n", success, len(items))

	if len(errors) > 0 {
		fmt.Printf("\nFailed (%d):\n", failed)
		limit := min(20, len(errors))
		for _, e := range errors[:limit] {
			fmt.Printf("  %s: %s\n", e.Frame, e.Error)
		}
	}

	// Write manifest
	manifestPath := filepath.Join(cfg.OutputDir, "manifest.json")
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	if err := batch.WriteManifest(manifestPath, batch.NewRunID(), settings, results); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: manifest write failed: %v\n", err)
	} else {
		fmt.Printf("Manifest: %s\n", manifestPath)
	}

	if failed > 0 {
		os.Exit(1)
	}
}

// splitQuilt writes each view of a quilt image to <output>/<name>/view_NN.
// The layout comes from the file name's quilt suffix when it has one.
func splitQuilt(path string, settings quilt.Settings, cfg config.Config, logger *zap.SugaredLogger) error {
	img, err := frames.LoadImage(path)
	if err != nil {
		return err
	}
	b := img.Bounds()
	if fromName, ok := quilt.SettingsFromSuffix(path, b.Dx(), b.Dy()); ok {
		settings = fromName
	} else {
		logger.Infow("no quilt suffix in file name, using configured layout", "path", path, "quilt", settings.String())
	}

	views, err := compose.Split(settings, img)
	if err != nil {
		return err
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if i := strings.LastIndex(name, "_qs"); i > 0 {
		name = name[:i]
	}
	outDir := filepath.Join(cfg.OutputDir, name)
	if cfg.OutputDir == "" {
		outDir = filepath.Join(filepath.Dir(path), name)
	}
	format := cfg.OutputFormat()
	for i, v := range views {
		out := filepath.Join(outDir, fmt.Sprintf("view_%02d%s", i, format.Ext()))
		if err := frames.SaveImage(out, v, format); err != nil {
			return err
		}
	}
	fmt.Printf("Split %s into %d views: %s\n", filepath.Base(path), len(views), outDir)
	return nil
}
