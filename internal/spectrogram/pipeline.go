package spectrogram

import (
	"context"
	"io"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"github.com/himanishpuri/spectrodft/internal/audio"
)

// Summary describes a finished run.
type Summary struct {
	Layout   Layout
	Window   WindowType
	Frames   int
	Bins     int
	PeakBins []int // loudest bin of each frame, in frame order
	Workers  int
	Elapsed  time.Duration
}

type runOptions struct {
	workers int
}

// RunOption tunes Run.
type RunOption func(*runOptions)

// WithWorkers sets the size of the frame worker pool. Values below 1 mean 1.
func WithWorkers(n int) RunOption {
	return func(o *runOptions) {
		o.workers = n
	}
}

type frameResult struct {
	index int
	row   MagnitudeRow
}

// Run computes the spectrogram of store under cfg and streams it to w.
//
// Frames are independent, so a fixed pool of workers computes them in any
// order while a single writer emits rows strictly by frame index. At most
// 2×workers frames are in flight, which bounds the reorder buffer. All
// validation happens before the first byte is written.
func Run(ctx context.Context, store *audio.SampleStore, cfg Config, w io.Writer, opts ...RunOption) (*Summary, error) {
	started := time.Now()

	o := runOptions{workers: runtime.NumCPU()}
	for _, opt := range opts {
		opt(&o)
	}

	engine, err := NewEngine(store, cfg)
	if err != nil {
		return nil, err
	}
	layout := engine.Layout()
	frames := layout.FrameCount()
	workers := max(1, min(o.workers, frames))

	jobs := make(chan int)
	results := make(chan frameResult, workers)
	slots := make(chan struct{}, 2*workers)
	peaks := make([]int, frames)
	mw := NewMatrixWriter(w)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(jobs)
		for k := 0; k < frames; k++ {
			select {
			case slots <- struct{}{}:
			case <-gctx.Done():
				return gctx.Err()
			}
			select {
			case jobs <- k:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	var wg sync.WaitGroup
	wg.Add(workers)
	for range workers {
		g.Go(func() error {
			defer wg.Done()
			scratch := engine.NewScratch()
			for k := range jobs {
				row := engine.Frame(k, scratch)
				select {
				case results <- frameResult{index: k, row: row}:
				case <-gctx.Done():
					return gctx.Err()
				}
			}
			return nil
		})
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	g.Go(func() error {
		pending := make(map[int]MagnitudeRow, 2*workers)
		next := 0
		for res := range results {
			pending[res.index] = res.row
			for {
				row, ok := pending[next]
				if !ok {
					break
				}
				delete(pending, next)
				if err := mw.WriteRow(row); err != nil {
					return err
				}
				peaks[next] = floats.MaxIdx(row)
				next++
				<-slots
			}
		}
		if err := gctx.Err(); err != nil {
			return err
		}
		return mw.Flush()
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Summary{
		Layout:   layout,
		Window:   cfg.Window,
		Frames:   frames,
		Bins:     layout.Bins(),
		PeakBins: peaks,
		Workers:  workers,
		Elapsed:  time.Since(started),
	}, nil
}

// Compute returns the whole spectrogram in memory, frame-major. It runs on
// the calling goroutine and suits short signals and tests.
func Compute(store *audio.SampleStore, cfg Config) ([]MagnitudeRow, error) {
	engine, err := NewEngine(store, cfg)
	if err != nil {
		return nil, err
	}
	frames := engine.Layout().FrameCount()
	scratch := engine.NewScratch()

	out := make([]MagnitudeRow, frames)
	for k := range out {
		out[k] = engine.Frame(k, scratch)
	}
	return out, nil
}
