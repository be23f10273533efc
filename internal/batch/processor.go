// Package batch evaluates many deformers concurrently and writes each result
// as an OBJ file, optionally with a preview image.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"mapped-wrap/internal/logging"
	"mapped-wrap/internal/objfile"
	"mapped-wrap/internal/preview"
	"mapped-wrap/internal/rig"
)

// Config holds the shared settings of a batch run.
type Config struct {
	OutputDir string
	Workers   int

	// Preview, when non-empty, is the image extension ("webp", "tga", "png")
	// of a preview rendered next to each OBJ.
	Preview        string
	PreviewOptions preview.Options

	Logger *slog.Logger
}

// Result holds the outcome of evaluating one deformer.
type Result struct {
	Deformer string
	Base     string
	File     string
	Image    string
	Vertices int
	Written  int
	Success  bool
	Error    string
}

// Run evaluates the named deformers using a worker pool. Results keep the
// order of names. Deformers not yet started when ctx is cancelled report the
// context error.
func Run(ctx context.Context, cfg Config, r *rig.Rig, names []string) []Result {
	log := cfg.Logger
	if log == nil {
		log = logging.NewNop()
	}
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}

	total := len(names)
	results := make([]Result, total)
	var processed atomic.Int64

	start := time.Now()

	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if p := processed.Load(); p > 0 {
					rate := float64(p) / time.Since(start).Seconds()
					log.Info("batch progress", "done", p, "total", total, "per_sec", fmt.Sprintf("%.1f", rate))
				}
			}
		}
	}()

	jobs := make(chan int, workers*2)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx] = process(cfg, r, names[idx])
				if !results[idx].Success {
					log.Warn("deformer failed", "deformer", names[idx], "err", results[idx].Error)
				}
				processed.Add(1)
			}
		}()
	}

	sent := 0
send:
	for ; sent < total; sent++ {
		select {
		case jobs <- sent:
		case <-ctx.Done():
			break send
		}
	}
	close(jobs)
	wg.Wait()
	close(done)

	for i := sent; i < total; i++ {
		results[i] = Result{Deformer: names[i], Error: ctx.Err().Error()}
	}

	log.Info("batch finished", "total", total, "elapsed", time.Since(start).Round(time.Millisecond))
	return results
}

func process(cfg Config, r *rig.Rig, name string) Result {
	res := Result{Deformer: name}

	base, err := r.Base(name)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	res.Base = base.Name

	points, st, err := r.Evaluate(name)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	res.Vertices = len(points)
	res.Written = st.Written

	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		res.Error = err.Error()
		return res
	}
	res.File = name + ".obj"
	if err := objfile.Write(filepath.Join(cfg.OutputDir, res.File), base, points); err != nil {
		res.Error = err.Error()
		return res
	}

	if cfg.Preview != "" {
		opt := cfg.PreviewOptions
		opt.Rest = base.Points
		res.Image = name + "." + cfg.Preview
		img := preview.Render(base, points, opt)
		if err := preview.Save(filepath.Join(cfg.OutputDir, res.Image), img); err != nil {
			res.Error = err.Error()
			return res
		}
	}

	res.Success = true
	return res
}
