package spectrodft

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"gonum.org/v1/gonum/floats"

	"github.com/himanishpuri/spectrodft/internal/audio"
	"github.com/himanishpuri/spectrodft/internal/cascade"
	"github.com/himanishpuri/spectrodft/internal/model"
	"github.com/himanishpuri/spectrodft/internal/spectrogram"
	"github.com/himanishpuri/spectrodft/internal/synth"
	"github.com/himanishpuri/spectrodft/pkg/logger"
	"github.com/himanishpuri/spectrodft/pkg/utils"
)

// spectroService is the default implementation of the Service interface.
type spectroService struct {
	storage Storage
	log     Logger
	config  *Config
}

func NewService(opts ...Option) (Service, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.Logger == nil {
		cfg.Logger = logger.GetLogger()
	}

	var stor Storage
	var err error
	switch {
	case cfg.Storage != nil:
		stor = cfg.Storage
	case cfg.Catalog:
		stor, err = NewSQLiteStorage(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage: %w", err)
		}
	}

	return &spectroService{
		storage: stor,
		log:     cfg.Logger,
		config:  cfg,
	}, nil
}

func (s *spectroService) runOptions() []spectrogram.RunOption {
	return []spectrogram.RunOption{spectrogram.WithWorkers(s.config.Workers)}
}

func newRun(inputPath, outputPath string, store *audio.SampleStore, params Params, sum *spectrogram.Summary) *Run {
	return &Run{
		InputPath:      inputPath,
		OutputPath:     outputPath,
		SampleRate:     store.SampleRate,
		SampleCount:    sum.Layout.SampleCount,
		AnalysisWindow: params.AnalysisWindow,
		DFTWindow:      params.DFTWindow,
		FrameInterval:  params.FrameInterval,
		WindowType:     sum.Window.String(),
		TransformSize:  sum.Layout.TransformSize,
		HopSamples:     sum.Layout.HopSamples,
		Frames:         sum.Frames,
		Bins:           sum.Bins,
		PeakBins:       sum.PeakBins,
		Elapsed:        sum.Elapsed,
	}
}

// Generate reads a WAV file, computes its spectrogram and catalogs the run.
func (s *spectroService) Generate(ctx context.Context, inputPath, outputPath string, params Params) (*Run, error) {
	store, err := audio.ReadWAV(inputPath)
	if err != nil {
		return nil, err
	}
	return s.generate(ctx, inputPath, outputPath, store, params)
}

func (s *spectroService) generate(ctx context.Context, inputPath, outputPath string, store *audio.SampleStore, params Params) (*Run, error) {
	s.log.Infof("Computing %s -> %s (%v/%v/%v %s)", inputPath, outputPath,
		params.AnalysisWindow, params.DFTWindow, params.FrameInterval, params.Window)

	tmp, err := utils.CreateTemp(outputPath)
	if err != nil {
		return nil, fmt.Errorf("%s: %v: %w", outputPath, err, model.ErrIO)
	}
	tmpPath := tmp.Name()

	sum, err := spectrogram.Run(ctx, store, params, tmp, s.runOptions()...)
	if cerr := tmp.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("closing %s: %v: %w", tmpPath, cerr, model.ErrIO)
	}
	if err != nil {
		utils.DeleteFile(tmpPath)
		return nil, fmt.Errorf("%s: %w", inputPath, err)
	}
	if err := utils.MoveFile(tmpPath, outputPath); err != nil {
		utils.DeleteFile(tmpPath)
		return nil, fmt.Errorf("%v: %w", err, model.ErrIO)
	}

	run := newRun(inputPath, outputPath, store, params, sum)
	s.log.Debugf("Wrote %d frames × %d bins in %v", run.Frames, run.Bins, run.Elapsed)

	if s.storage != nil {
		if _, err := s.storage.SaveRun(run); err != nil {
			return run, fmt.Errorf("cataloguing run for %s: %w", outputPath, err)
		}
		s.log.Infof("Recorded run %s", run.ID)
	}
	return run, nil
}

// Stream computes a spectrogram from an in-memory WAV without touching the
// catalog.
func (s *spectroService) Stream(ctx context.Context, r io.Reader, params Params, w io.Writer) (*Run, error) {
	store, err := audio.DecodeWAV(r)
	if err != nil {
		return nil, err
	}
	sum, err := spectrogram.Run(ctx, store, params, w, s.runOptions()...)
	if err != nil {
		return nil, err
	}
	return newRun("", "", store, params, sum), nil
}

// Batch runs every set of plan against every input. A failing run is
// logged and reported in the result; the remaining runs continue. Only
// cancellation of ctx stops the batch early.
func (s *spectroService) Batch(ctx context.Context, plan *Plan) (*BatchResult, error) {
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	started := time.Now()
	outDir := plan.OutputDir
	if outDir == "" {
		outDir = s.config.OutputDir
	}

	res := &BatchResult{}
	fail := func(input, set string, err error) {
		s.log.Errorf("Run %s [%s] failed: %v", input, set, err)
		res.Failures = append(res.Failures, BatchFailure{Input: input, Set: set, Err: err})
	}

	for _, input := range plan.Inputs {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		store, err := audio.ReadWAV(input)
		if err != nil {
			for _, set := range plan.Sets {
				fail(input, set.Name, err)
			}
			continue
		}
		for _, set := range plan.Sets {
			out := filepath.Join(outDir, OutputName(input, set))
			run, err := s.generate(ctx, input, out, store, set.Params)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return res, err
				}
				fail(input, set.Name, err)
				if run == nil {
					continue
				}
			}
			res.Runs = append(res.Runs, *run)
		}
	}

	res.Elapsed = time.Since(started)
	s.log.Infof("Batch finished: %d runs, %d failures in %v", len(res.Runs), len(res.Failures), res.Elapsed)
	return res, nil
}

// Prepare converts inputPath with ffmpeg into the service's temp dir.
func (s *spectroService) Prepare(ctx context.Context, inputPath string, sampleRate int) (string, error) {
	wavPath, err := audio.ConvertToMonoWAV(ctx, inputPath, s.config.TempDir, audio.ConvertWAVConfig{
		SampleRate: sampleRate,
	})
	if err != nil {
		return "", fmt.Errorf("audio conversion failed: %w", err)
	}
	s.log.Debugf("Converted %s -> %s", inputPath, wavPath)
	return wavPath, nil
}

// Inspect parses a matrix file and reports its shape, value range and the
// loudest bin of every frame.
func (s *spectroService) Inspect(matrixPath string) (*MatrixInfo, error) {
	f, err := os.Open(matrixPath)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %v: %w", matrixPath, err, model.ErrIO)
	}
	defer f.Close()

	rows, err := spectrogram.ReadMatrix(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %v: %w", matrixPath, err, model.ErrInvalidArgument)
	}

	info := &MatrixInfo{Path: matrixPath, Frames: len(rows)}
	if st, err := f.Stat(); err == nil {
		info.Bytes = st.Size()
	}
	if len(rows) == 0 {
		return info, nil
	}

	info.Bins = len(rows[0])
	info.PeakBins = make([]int, len(rows))
	for k, row := range rows {
		if len(row) != info.Bins {
			return nil, fmt.Errorf("%s: frame %d has %d bins, frame 0 has %d: %w",
				matrixPath, k, len(row), info.Bins, model.ErrInvalidArgument)
		}
		if len(row) == 0 {
			continue
		}
		lo, hi := floats.Min(row), floats.Max(row)
		if k == 0 || lo < info.Min {
			info.Min = lo
		}
		if k == 0 || hi > info.Max {
			info.Max = hi
		}
		info.PeakBins[k] = floats.MaxIdx(row)
	}
	return info, nil
}

func (s *spectroService) GenerateTones(ctx context.Context, dir string, set ToneSet) ([]ManifestEntry, error) {
	return synth.GenerateSet(ctx, dir, set)
}

func (s *spectroService) Concat(ctx context.Context, manifestPath, outputPath string, sampleRate uint32) (*ConcatResult, error) {
	return cascade.ConcatManifest(ctx, manifestPath, outputPath, sampleRate)
}

var errNoCatalog = fmt.Errorf("run catalog disabled: %w", model.ErrInvalidArgument)

// GetRun returns a catalogued run including its per-frame peaks.
func (s *spectroService) GetRun(id string) (*Run, error) {
	if s.storage == nil {
		return nil, errNoCatalog
	}
	return s.storage.GetRun(id, true)
}

// ListRuns returns catalogued runs, newest first.
func (s *spectroService) ListRuns(limit int) ([]Run, error) {
	if s.storage == nil {
		return nil, errNoCatalog
	}
	return s.storage.ListRuns(limit)
}

// DeleteRun removes a run from the catalog and, if asked, its matrix file.
func (s *spectroService) DeleteRun(id string, removeOutput bool) (*Run, error) {
	if s.storage == nil {
		return nil, errNoCatalog
	}
	run, err := s.storage.GetRun(id, false)
	if err != nil {
		return nil, err
	}
	if err := s.storage.DeleteRun(id); err != nil {
		return nil, err
	}
	if removeOutput && run.OutputPath != "" {
		if err := utils.DeleteFile(run.OutputPath); err != nil {
			s.log.Warnf("Failed to remove %s: %v", run.OutputPath, err)
		}
	}
	s.log.Infof("Deleted run %s", id)
	return run, nil
}

// Close releases all resources held by the service.
func (s *spectroService) Close() error {
	if s.storage == nil {
		return nil
	}
	return s.storage.Close()
}
