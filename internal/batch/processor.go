package batch

import (
	"context"
	"fmt"
	"image"
	"io"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"holoquilt/internal/compose"
	"holoquilt/internal/frames"
	"holoquilt/internal/lightfield"
	"holoquilt/internal/logging"
	"holoquilt/internal/quilt"
)

// Config holds all shared settings for a batch run.
type Config struct {
	OutputDir string
	Settings  quilt.Settings
	// SuffixAspect is the aspect written into output names; the quilt's
	// own aspect is used when it is positive.
	SuffixAspect float64
	Format       frames.Format
	Workers      int

	// Lightfield, when set, also writes the interleaved display image.
	Lightfield *LightfieldOptions

	// Progress receives a line every ProgressInterval; nil disables it.
	Progress         io.Writer
	ProgressInterval time.Duration
	Logger           *zap.SugaredLogger
}

// LightfieldOptions configures the optional interleaved output.
type LightfieldOptions struct {
	Uniforms     lightfield.Uniforms
	Width        int
	Height       int
	PreviewWidth int
}

// Result holds the outcome of processing one frame.
type Result struct {
	Frame      string
	Views      int
	Output     string
	Lightfield string
	Success    bool
	Error      string
}

// Run processes all frames using a worker pool. Frames not started before
// ctx is cancelled are reported as failed.
func Run(ctx context.Context, cfg Config, items []frames.Frame) []Result {
	logger := logging.OrNop(cfg.Logger)
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.Format == "" {
		cfg.Format = frames.FormatWebP
	}
	if cfg.ProgressInterval <= 0 {
		cfg.ProgressInterval = 2 * time.Second
	}

	total := len(items)
	results := make([]Result, total)
	var processed atomic.Int64

	start := time.Now()

	// Progress reporter
	done := make(chan struct{})
	if cfg.Progress != nil {
		go func() {
			ticker := time.NewTicker(cfg.ProgressInterval)
			defer ticker.Stop()
			for {
				select {
				case <-done:
					return
				case <-ticker.C:
					p := processed.Load()
					if p > 0 {
						elapsed := time.Since(start).Seconds()
						rate := float64(p) / elapsed
						fmt.Fprintf(cfg.Progress, "  [%d/%d] %.1f frames/sec\n", p, total, rate)
					}
				}
			}
		}()
	}

	// Worker pool
	itemChan := make(chan int, cfg.Workers*2)
	var wg sync.WaitGroup

	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range itemChan {
				if err := ctx.Err(); err != nil {
					results[idx] = failed(items[idx], err)
				} else {
					results[idx] = processFrame(ctx, cfg, items[idx])
				}
				if !results[idx].Success {
					logger.Warnw("frame failed", "frame", items[idx].Name, "error", results[idx].Error)
				}
				processed.Add(1)
			}
		}()
	}

	// Send work
	for i := range items {
		itemChan <- i
	}
	close(itemChan)

	wg.Wait()
	close(done)

	logger.Debugw("batch finished", "frames", total, "elapsed", time.Since(start))
	return results
}

func failed(f frames.Frame, err error) Result {
	return Result{Frame: f.Name, Views: len(f.Views), Error: err.Error()}
}

// OutputName returns the quilt file name for a frame, carrying the layout
// suffix players use to detect the tiling. Frame names have no extension,
// so dots in them are kept.
func OutputName(cfg Config, frameName string) string {
	aspect := cfg.Settings.Aspect
	if aspect <= 0 {
		aspect = cfg.SuffixAspect
	}
	return frameName + quilt.Suffix(cfg.Settings.ViewColumns, cfg.Settings.ViewRows, aspect) + cfg.Format.Ext()
}

func processFrame(ctx context.Context, cfg Config, f frames.Frame) Result {
	if len(f.Views) > cfg.Settings.NumViews {
		return failed(f, fmt.Errorf("%d views for a %d view quilt", len(f.Views), cfg.Settings.NumViews))
	}

	views := make([]image.Image, len(f.Views))
	for i, path := range f.Views {
		img, err := frames.LoadImage(path)
		if err != nil {
			return failed(f, err)
		}
		views[i] = img
	}

	q, err := compose.Compose(cfg.Settings, views)
	if err != nil {
		return failed(f, err)
	}

	res := Result{Frame: f.Name, Views: len(f.Views)}
	res.Output = filepath.Join(cfg.OutputDir, OutputName(cfg, f.Name))
	if err := frames.SaveImage(res.Output, q, cfg.Format); err != nil {
		return failed(f, err)
	}

	if lf := cfg.Lightfield; lf != nil {
		img, err := lightfield.Render(ctx, q, lf.Uniforms, lf.Width, lf.Height, 1)
		if err != nil {
			return failed(f, err)
		}
		res.Lightfield = filepath.Join(cfg.OutputDir, f.Name+"_lightfield"+cfg.Format.Ext())
		if err := frames.SaveImage(res.Lightfield, lightfield.Preview(img, lf.PreviewWidth), cfg.Format); err != nil {
			return failed(f, err)
		}
	}

	res.Success = true
	return res
}
