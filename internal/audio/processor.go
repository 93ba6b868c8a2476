package audio

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/himanishpuri/spectrodft/pkg/utils"
)

// DefaultConvertRate is used when ConvertWAVConfig.SampleRate is zero.
const DefaultConvertRate = 16000

const convertTimeout = 30 * time.Second

type ConvertWAVConfig struct {
	SampleRate int // e.g. 8000, 16000
}

// ConvertToMonoWAV decodes inputPath with ffmpeg into outputDir/<name>.wav:
// mono pcm_s16le at cfg.SampleRate, with no metadata chunks so the samples
// start at byte 44 as ReadWAV expects.
func ConvertToMonoWAV(ctx context.Context, inputPath, outputDir string, cfg ConvertWAVConfig) (string, error) {
	rate := cfg.SampleRate
	if rate == 0 {
		rate = DefaultConvertRate
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, convertTimeout)
		defer cancel()
	}

	if err := utils.MakeDir(outputDir); err != nil {
		return "", err
	}
	stem := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	dst := filepath.Join(outputDir, stem+".wav")

	tmp, err := utils.CreateTemp(dst)
	if err != nil {
		return "", err
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer utils.DeleteFile(tmpPath)

	out, err := exec.CommandContext(ctx, "ffmpeg", ffmpegArgs(inputPath, tmpPath, rate)...).CombinedOutput()
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("ffmpeg %s: %v (%s)", inputPath, err, strings.TrimSpace(string(out)))
	}

	if err := utils.MoveFile(tmpPath, dst); err != nil {
		return "", err
	}
	return dst, nil
}

func ffmpegArgs(in, out string, rate int) []string {
	return []string{
		"-y", "-v", "error",
		"-i", in,
		// a LIST chunk would push the data past offset 44
		"-map_metadata", "-1",
		"-fflags", "+bitexact", "-flags:a", "+bitexact",
		"-ac", "1",
		"-ar", strconv.Itoa(rate),
		"-c:a", "pcm_s16le",
		"-f", "wav",
		out,
	}
}
