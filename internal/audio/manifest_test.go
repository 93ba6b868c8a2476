package audio

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/himanishpuri/spectrodft/internal/model"
)

func TestParseManifest(t *testing.T) {
	src := strings.Join([]string{
		"waveform_sine_freq_0_8k.wav label_waveType0_freq0_sr8000",
		"",
		"# comment",
		"/abs/tone.wav\tlabel with spaces",
		"bare.wav",
	}, "\n")

	entries, err := ParseManifest(strings.NewReader(src), "/data")
	if err != nil {
		t.Fatalf("ParseManifest failed: %v", err)
	}

	want := []ManifestEntry{
		{Path: "/data/waveform_sine_freq_0_8k.wav", Label: "label_waveType0_freq0_sr8000"},
		{Path: "/abs/tone.wav", Label: "label with spaces"},
		{Path: "/data/bare.wav"},
	}
	if len(entries) != len(want) {
		t.Fatalf("Expected %d entries, got %d: %+v", len(want), len(entries), entries)
	}
	for i := range want {
		if entries[i] != want[i] {
			t.Errorf("entry %d = %+v, want %+v", i, entries[i], want[i])
		}
	}
}

func TestManifestRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "waveforms.scp")
	entries := []ManifestEntry{
		{Path: filepath.Join(dir, "a.wav"), Label: "label_a"},
		{Path: filepath.Join(dir, "sub", "b.wav")},
	}

	if err := WriteManifest(path, entries); err != nil {
		t.Fatalf("WriteManifest failed: %v", err)
	}

	raw, _ := os.ReadFile(path)
	if !strings.HasPrefix(string(raw), "a.wav label_a\n") {
		t.Errorf("paths should be stored relative to the manifest, got:\n%s", raw)
	}

	got, err := ReadManifest(path)
	if err != nil {
		t.Fatalf("ReadManifest failed: %v", err)
	}
	for i := range entries {
		if got[i] != entries[i] {
			t.Errorf("entry %d = %+v, want %+v", i, got[i], entries[i])
		}
	}
}

func TestReadManifestMissing(t *testing.T) {
	_, err := ReadManifest(filepath.Join(t.TempDir(), "missing.scp"))
	if !errors.Is(err, model.ErrIO) {
		t.Errorf("Expected ErrIO, got %v", err)
	}
}
