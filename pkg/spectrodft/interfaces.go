package spectrodft

import (
	"context"
	"io"
)

type Service interface {
	// Generate computes the spectrogram of the WAV at inputPath and writes it
	// to outputPath. The output appears only if the whole run succeeds.
	Generate(ctx context.Context, inputPath, outputPath string, params Params) (*Run, error)
	// Stream decodes a WAV from r and writes the matrix to w. Nothing is
	// written to w when the input or params are rejected.
	Stream(ctx context.Context, r io.Reader, params Params, w io.Writer) (*Run, error)
	Batch(ctx context.Context, plan *Plan) (*BatchResult, error)
	// Prepare converts any ffmpeg-readable file into a mono 16-bit WAV.
	Prepare(ctx context.Context, inputPath string, sampleRate int) (string, error)
	Inspect(matrixPath string) (*MatrixInfo, error)
	GenerateTones(ctx context.Context, dir string, set ToneSet) ([]ManifestEntry, error)
	Concat(ctx context.Context, manifestPath, outputPath string, sampleRate uint32) (*ConcatResult, error)
	GetRun(id string) (*Run, error)
	ListRuns(limit int) ([]Run, error)
	DeleteRun(id string, removeOutput bool) (*Run, error)
	Close() error
}

type Storage interface {
	SaveRun(run *Run) (string, error)
	GetRun(id string, withPeaks bool) (*Run, error)
	ListRuns(limit int) ([]Run, error)
	DeleteRun(id string) error
	Close() error
}

type Logger interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
	Debugf(format string, args ...any)
}
