// Package cascade joins mono 16-bit WAV files end to end into one file.
package cascade

import (
	"context"
	"fmt"
	"os"
	"time"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/himanishpuri/spectrodft/internal/audio"
	"github.com/himanishpuri/spectrodft/internal/model"
	"github.com/himanishpuri/spectrodft/pkg/logger"
	"github.com/himanishpuri/spectrodft/pkg/utils"
)

// FileStat reports what happened to one input.
type FileStat struct {
	Path       string
	SampleRate uint32
	Samples    int
	Skipped    bool
	Reason     string // why the file was skipped
}

// Duration is the length of the appended audio.
func (f FileStat) Duration() time.Duration {
	if f.SampleRate == 0 {
		return 0
	}
	return time.Duration(f.Samples) * time.Second / time.Duration(f.SampleRate)
}

// Result summarizes a finished concatenation.
type Result struct {
	Output       string
	SampleRate   uint32
	TotalSamples int
	Files        []FileStat
}

func (r *Result) Duration() time.Duration {
	if r.SampleRate == 0 {
		return 0
	}
	return time.Duration(r.TotalSamples) * time.Second / time.Duration(r.SampleRate)
}

// Appended returns how many inputs made it into the output.
func (r *Result) Appended() int {
	n := 0
	for _, f := range r.Files {
		if !f.Skipped {
			n++
		}
	}
	return n
}

// ConcatManifest joins the files listed in the manifest at manifestPath.
func ConcatManifest(ctx context.Context, manifestPath, output string, sampleRate uint32) (*Result, error) {
	entries, err := audio.ReadManifest(manifestPath)
	if err != nil {
		return nil, err
	}
	paths := make([]string, len(entries))
	for i, e := range entries {
		paths[i] = e.Path
	}
	return Concat(ctx, paths, output, sampleRate)
}

// Concat appends every input whose sample rate equals sampleRate, in order,
// and writes the result to output as mono 16-bit PCM. Inputs that cannot be
// read, have another rate, or are not mono 16-bit are skipped and reported
// in the result. The output file only appears once it is complete.
func Concat(ctx context.Context, inputs []string, output string, sampleRate uint32) (*Result, error) {
	if sampleRate == 0 {
		return nil, fmt.Errorf("target sample rate is 0: %w", model.ErrInvalidArgument)
	}
	log := logger.GetLogger()

	tmp, err := utils.CreateTemp(output)
	if err != nil {
		return nil, fmt.Errorf("%s: %v: %w", output, err, model.ErrIO)
	}
	tmpPath := tmp.Name()
	fail := func(err error) (*Result, error) {
		tmp.Close()
		utils.DeleteFile(tmpPath)
		return nil, err
	}

	enc := wav.NewEncoder(tmp, int(sampleRate), 16, 1, 1)
	// start the data chunk even if nothing gets appended
	empty := &goaudio.IntBuffer{Format: &goaudio.Format{NumChannels: 1, SampleRate: int(sampleRate)}}
	if err := enc.Write(empty); err != nil {
		return fail(fmt.Errorf("writing header: %v: %w", err, model.ErrIO))
	}

	res := &Result{Output: output, SampleRate: sampleRate}
	for _, path := range inputs {
		if err := ctx.Err(); err != nil {
			return fail(err)
		}

		stat, buf := readInput(path, sampleRate)
		if stat.Skipped {
			log.Warnf("Skipping %s: %s", path, stat.Reason)
			res.Files = append(res.Files, stat)
			continue
		}
		if err := enc.Write(buf); err != nil {
			return fail(fmt.Errorf("appending %s: %v: %w", path, err, model.ErrIO))
		}
		res.TotalSamples += stat.Samples
		res.Files = append(res.Files, stat)
		log.Infof("File: %s, Samples: %d, Duration: %.2f seconds", path, stat.Samples, stat.Duration().Seconds())
	}

	if err := enc.Close(); err != nil {
		return fail(fmt.Errorf("finalizing %s: %v: %w", output, err, model.ErrIO))
	}
	if err := tmp.Close(); err != nil {
		utils.DeleteFile(tmpPath)
		return nil, fmt.Errorf("closing %s: %v: %w", tmpPath, err, model.ErrIO)
	}
	if err := utils.MoveFile(tmpPath, output); err != nil {
		utils.DeleteFile(tmpPath)
		return nil, fmt.Errorf("%v: %w", err, model.ErrIO)
	}

	log.Infof("Total samples: %d, Total duration: %.2f seconds", res.TotalSamples, res.Duration().Seconds())
	return res, nil
}

// readInput decodes one input file. Problems are reported through the
// returned stat rather than as errors so one bad file does not stop a run.
func readInput(path string, sampleRate uint32) (FileStat, *goaudio.IntBuffer) {
	stat := FileStat{Path: path}
	skip := func(format string, args ...any) (FileStat, *goaudio.IntBuffer) {
		stat.Skipped = true
		stat.Reason = fmt.Sprintf(format, args...)
		return stat, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return skip("cannot open: %v", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	dec.ReadInfo()
	if err := dec.Err(); err != nil {
		return skip("invalid wav header: %v", err)
	}
	if dec.NumChans == 0 {
		return skip("invalid wav header")
	}
	stat.SampleRate = dec.SampleRate

	if dec.SampleRate != sampleRate {
		return skip("sample rate mismatch: %d != %d", dec.SampleRate, sampleRate)
	}
	if dec.NumChans != 1 || dec.BitDepth != 16 {
		return skip("need mono 16-bit PCM, got %d channel(s) at %d bits", dec.NumChans, dec.BitDepth)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return skip("reading samples: %v", err)
	}
	stat.Samples = len(buf.Data)
	return stat, buf
}
