package audio

import (
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/himanishpuri/spectrodft/internal/model"
	"github.com/himanishpuri/spectrodft/pkg/utils"
)

const (
	bitDepth  = 16
	pcmFormat = 1
)

// IntBuffer wraps the samples in a go-audio buffer, mono 16-bit.
func (s *SampleStore) IntBuffer() *goaudio.IntBuffer {
	data := make([]int, len(s.Samples))
	for i, v := range s.Samples {
		data[i] = int(v)
	}
	return &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: int(s.SampleRate)},
		Data:           data,
		SourceBitDepth: bitDepth,
	}
}

// EncodeWAV writes store to ws as mono 16-bit PCM. The output has a
// plain 44-byte header, so DecodeWAV reads it back unchanged.
func EncodeWAV(ws io.WriteSeeker, store *SampleStore) error {
	enc := wav.NewEncoder(ws, int(store.SampleRate), bitDepth, 1, pcmFormat)
	// Write also emits the data chunk header, so it runs for empty stores too
	if err := enc.Write(store.IntBuffer()); err != nil {
		return fmt.Errorf("encoding samples: %v: %w", err, model.ErrIO)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("finalizing wav header: %v: %w", err, model.ErrIO)
	}
	return nil
}

// WriteWAV encodes store into path. The file appears only once it is
// complete.
func WriteWAV(path string, store *SampleStore) error {
	tmp, err := utils.CreateTemp(path)
	if err != nil {
		return fmt.Errorf("%s: %v: %w", path, err, model.ErrIO)
	}
	tmpPath := tmp.Name()

	if err := EncodeWAV(tmp, store); err != nil {
		tmp.Close()
		utils.DeleteFile(tmpPath)
		return fmt.Errorf("%s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		utils.DeleteFile(tmpPath)
		return fmt.Errorf("closing %s: %v: %w", tmpPath, err, model.ErrIO)
	}
	if err := utils.MoveFile(tmpPath, path); err != nil {
		utils.DeleteFile(tmpPath)
		return fmt.Errorf("%v: %w", err, model.ErrIO)
	}
	return nil
}
