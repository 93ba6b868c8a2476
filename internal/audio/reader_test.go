package audio

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/himanishpuri/spectrodft/internal/model"
)

// canonicalWAV builds a 44-byte-header mono 16-bit PCM file by hand.
func canonicalWAV(sampleRate uint32, data []byte) []byte {
	var buf bytes.Buffer
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+len(data)))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1))
	binary.Write(&buf, binary.LittleEndian, uint16(1))
	binary.Write(&buf, binary.LittleEndian, sampleRate)
	binary.Write(&buf, binary.LittleEndian, sampleRate*2)
	binary.Write(&buf, binary.LittleEndian, uint16(2))
	binary.Write(&buf, binary.LittleEndian, uint16(16))
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(len(data)))
	buf.Write(data)
	return buf.Bytes()
}

// writeEncodedWAV writes samples through go-audio's encoder, an independent
// little-endian PCM writer.
func writeEncodedWAV(t *testing.T, path string, sampleRate int, samples []int16) {
	t.Helper()

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create %s: %v", path, err)
	}
	defer f.Close()

	data := make([]int, len(samples))
	for i, s := range samples {
		data[i] = int(s)
	}

	enc := wav.NewEncoder(f, sampleRate, 16, 1, 1)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("Failed to encode samples: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("Failed to close encoder: %v", err)
	}
}

func TestDecodePCM16(t *testing.T) {
	// Second byte of each pair is the high byte: 256, 32767, -2, then a dangling byte
	data := []byte{0x00, 0x01, 0xFF, 0x7F, 0xFE, 0xFF, 0x42}

	samples := decodePCM16(data)

	expected := []int16{256, 32767, -2}
	if len(samples) != len(expected) {
		t.Fatalf("Expected %d samples, got %d", len(expected), len(samples))
	}
	for i := range expected {
		if samples[i] != expected[i] {
			t.Errorf("Sample %d: expected %d, got %d", i, expected[i], samples[i])
		}
	}
}

func TestDecodeWAV(t *testing.T) {
	raw := canonicalWAV(8000, []byte{0x01, 0x00, 0x00, 0x80, 0xFF, 0xFF})

	store, err := DecodeWAV(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("DecodeWAV failed: %v", err)
	}

	if store.SampleRate != 8000 {
		t.Errorf("Expected sample rate 8000, got %d", store.SampleRate)
	}

	expected := []int16{1, -32768, -1}
	if store.Len() != len(expected) {
		t.Fatalf("Expected %d samples, got %d", len(expected), store.Len())
	}
	for i := range expected {
		if store.Samples[i] != expected[i] {
			t.Errorf("Sample %d: expected %d, got %d", i, expected[i], store.Samples[i])
		}
	}
}

func TestDecodeWAVHeaderOnly(t *testing.T) {
	store, err := DecodeWAV(bytes.NewReader(canonicalWAV(16000, nil)))
	if err != nil {
		t.Fatalf("DecodeWAV failed: %v", err)
	}
	if store.Len() != 0 {
		t.Errorf("Expected no samples, got %d", store.Len())
	}
	if store.SampleRate != 16000 {
		t.Errorf("Expected sample rate 16000, got %d", store.SampleRate)
	}
}

func TestDecodeWAVTruncated(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{name: "Empty stream", data: nil},
		{name: "Partial header", data: []byte("RIFF\x00\x00\x00\x00WAVEfmt ")},
		{name: "One byte short", data: make([]byte, HeaderSize-1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeWAV(bytes.NewReader(tt.data))
			if err == nil {
				t.Fatal("Expected error for truncated stream")
			}
			if !errors.Is(err, model.ErrIO) {
				t.Errorf("Expected ErrIO, got %v", err)
			}
		})
	}
}

func TestReadWAVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roundtrip.wav")
	samples := []int16{0, 1, -1, 255, 256, -256, 12345, -12345, 32767, -32768}

	writeEncodedWAV(t, path, 16000, samples)

	store, err := ReadWAV(path)
	if err != nil {
		t.Fatalf("ReadWAV failed: %v", err)
	}

	if store.SampleRate != 16000 {
		t.Errorf("Expected sample rate 16000, got %d", store.SampleRate)
	}
	if store.Len() != len(samples) {
		t.Fatalf("Expected %d samples, got %d", len(samples), store.Len())
	}
	for i := range samples {
		if store.Samples[i] != samples[i] {
			t.Errorf("Sample %d: expected %d, got %d", i, samples[i], store.Samples[i])
		}
	}
}

func TestReadWAVNonExistent(t *testing.T) {
	_, err := ReadWAV("nonexistent-file.wav")
	if err == nil {
		t.Fatal("Expected error when reading non-existent file")
	}
	if !errors.Is(err, model.ErrIO) {
		t.Errorf("Expected ErrIO, got %v", err)
	}
}

func TestSampleStoreHelpers(t *testing.T) {
	store := &SampleStore{Samples: make([]int16, 800), SampleRate: 8000}
	store.Samples[3] = -7

	if d := store.Duration(); d != 100*time.Millisecond {
		t.Errorf("Expected 100ms duration, got %v", d)
	}

	f := store.Float64()
	if len(f) != 800 || f[3] != -7 {
		t.Errorf("Float64 conversion mismatch: len=%d f[3]=%f", len(f), f[3])
	}

	empty := &SampleStore{}
	if empty.Duration() != 0 {
		t.Error("Expected zero duration for zero sample rate")
	}
}

func TestSamplesIn(t *testing.T) {
	tests := []struct {
		d    time.Duration
		rate uint32
		want int
	}{
		{32 * time.Millisecond, 8000, 256},
		{30 * time.Millisecond, 8000, 240},
		{10 * time.Millisecond, 44100, 441},
		{100 * time.Microsecond, 8000, 0},
		{3 * time.Second, math.MaxUint32, 12884901885},
	}
	for _, tt := range tests {
		got, err := SamplesIn(tt.d, tt.rate)
		if err != nil || got != tt.want {
			t.Errorf("SamplesIn(%v, %d) = %d, %v; want %d", tt.d, tt.rate, got, err, tt.want)
		}
	}

	if _, err := SamplesIn(math.MaxInt64, math.MaxUint32); !errors.Is(err, model.ErrAllocation) {
		t.Errorf("Expected ErrAllocation on overflow, got %v", err)
	}
	if _, err := SamplesIn(-time.Second, 8000); !errors.Is(err, model.ErrInvalidArgument) {
		t.Errorf("Expected ErrInvalidArgument for negative duration, got %v", err)
	}
}

func TestFFmpegArgs(t *testing.T) {
	args := strings.Join(ffmpegArgs("in.mp3", "out.tmp", 8000), " ")
	for _, want := range []string{"-i in.mp3", "-map_metadata -1", "-ac 1", "-ar 8000", "-c:a pcm_s16le", "-f wav out.tmp"} {
		if !strings.Contains(args, want) {
			t.Errorf("ffmpeg args %q missing %q", args, want)
		}
	}
}

func TestConvertToMonoWAV(t *testing.T) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not installed")
	}

	dir := t.TempDir()
	input := filepath.Join(dir, "input.wav")
	writeEncodedWAV(t, input, 16000, make([]int16, 16000))

	out, err := ConvertToMonoWAV(context.Background(), input, filepath.Join(dir, "out"), ConvertWAVConfig{SampleRate: 8000})
	if err != nil {
		t.Fatalf("ConvertToMonoWAV failed: %v", err)
	}

	store, err := ReadWAV(out)
	if err != nil {
		t.Fatalf("ReadWAV on converted file failed: %v", err)
	}
	if store.SampleRate != 8000 {
		t.Errorf("Expected sample rate 8000, got %d", store.SampleRate)
	}
	if store.Len() == 0 {
		t.Error("Converted file has no samples")
	}
}
