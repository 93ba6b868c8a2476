package spectrodft

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/himanishpuri/spectrodft/internal/audio"
	"github.com/himanishpuri/spectrodft/internal/model"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestDefaultParamSets(t *testing.T) {
	sets := DefaultParamSets()
	if len(sets) != 4 {
		t.Fatalf("Expected 4 sets, got %d", len(sets))
	}

	tests := []struct {
		name     string
		analysis time.Duration
		window   WindowType
	}{
		{"Set1", 32 * time.Millisecond, Rectangular},
		{"Set2", 32 * time.Millisecond, Hamming},
		{"Set3", 30 * time.Millisecond, Rectangular},
		{"Set4", 30 * time.Millisecond, Hamming},
	}
	for i, tt := range tests {
		s := sets[i]
		if s.Name != tt.name || s.AnalysisWindow != tt.analysis || s.Window != tt.window {
			t.Errorf("set %d: expected %s %v %v, got %s %v %v",
				i, tt.name, tt.analysis, tt.window, s.Name, s.AnalysisWindow, s.Window)
		}
		if s.DFTWindow != 32*time.Millisecond || s.FrameInterval != 10*time.Millisecond {
			t.Errorf("%s: unexpected DFT window %v or hop %v", s.Name, s.DFTWindow, s.FrameInterval)
		}
	}
}

func TestLoadPlan(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "plan.yaml"), `
output_dir: out
inputs:
  - s-8k.wav
  - /abs/s-16k.wav
sets:
  - name: Short
    analysis_window: 20ms
    dft_window: 32ms
    frame_interval: 5ms
    window: hamming
    sample_rate: 8000
`)

	plan, err := LoadPlan(filepath.Join(dir, "plan.yaml"))
	if err != nil {
		t.Fatalf("LoadPlan failed: %v", err)
	}

	if plan.OutputDir != filepath.Join(dir, "out") {
		t.Errorf("Expected output dir relative to the plan, got %s", plan.OutputDir)
	}
	if len(plan.Inputs) != 2 || plan.Inputs[0] != filepath.Join(dir, "s-8k.wav") || plan.Inputs[1] != "/abs/s-16k.wav" {
		t.Errorf("Unexpected inputs: %v", plan.Inputs)
	}
	if len(plan.Sets) != 1 {
		t.Fatalf("Expected 1 set, got %d", len(plan.Sets))
	}
	s := plan.Sets[0]
	if s.Name != "Short" || s.AnalysisWindow != 20*time.Millisecond || s.FrameInterval != 5*time.Millisecond ||
		s.Window != Hamming || s.SampleRate != 8000 {
		t.Errorf("Unexpected set: %+v", s)
	}
}

func TestLoadPlanDefaultsAndManifest(t *testing.T) {
	dir := t.TempDir()
	tones := filepath.Join(dir, "tones")
	if err := os.MkdirAll(tones, 0755); err != nil {
		t.Fatal(err)
	}
	entries := []audio.ManifestEntry{
		{Path: filepath.Join(tones, "a.wav"), Label: "label_a"},
		{Path: filepath.Join(tones, "b.wav"), Label: "label_b"},
	}
	if err := audio.WriteManifest(filepath.Join(tones, "waveforms.scp"), entries); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(dir, "plan.yaml"), "manifest: tones/waveforms.scp\n")

	plan, err := LoadPlan(filepath.Join(dir, "plan.yaml"))
	if err != nil {
		t.Fatalf("LoadPlan failed: %v", err)
	}
	if len(plan.Inputs) != 2 || plan.Inputs[1] != entries[1].Path {
		t.Errorf("Expected manifest inputs, got %v", plan.Inputs)
	}
	if len(plan.Sets) != 4 {
		t.Errorf("Expected default sets, got %d", len(plan.Sets))
	}
}

func TestLoadPlanErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    error
	}{
		{"unknown field", "inputs: [a.wav]\nworkers: 4\n", model.ErrInvalidArgument},
		{"no inputs", "output_dir: out\n", model.ErrInvalidArgument},
		{"bad duration", "inputs: [a.wav]\nsets:\n  - name: X\n    analysis_window: soon\n", model.ErrInvalidArgument},
		{"bad window", "inputs: [a.wav]\nsets:\n  - name: X\n    analysis_window: 32ms\n    dft_window: 32ms\n    frame_interval: 10ms\n    window: hann\n", model.ErrInvalidArgument},
		{"dft shorter", "inputs: [a.wav]\nsets:\n  - name: X\n    analysis_window: 32ms\n    dft_window: 16ms\n    frame_interval: 10ms\n", model.ErrInvalidArgument},
		{"missing manifest", "manifest: nope.scp\n", model.ErrIO},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "plan.yaml")
			writeFile(t, path, tt.content)
			if _, err := LoadPlan(path); !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}

	if _, err := LoadPlan(filepath.Join(t.TempDir(), "absent.yaml")); !errors.Is(err, model.ErrIO) {
		t.Errorf("Expected ErrIO for missing plan, got %v", err)
	}
}

func TestPlanValidateSetNames(t *testing.T) {
	tests := []struct {
		name  string
		names []string
		ok    bool
	}{
		{"defaults", []string{"Set1", "Set2"}, true},
		{"empty", []string{""}, false},
		{"separator", []string{"a/b"}, false},
		{"duplicate", []string{"X", "X"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := &Plan{Inputs: []string{"a.wav"}}
			for _, n := range tt.names {
				plan.Sets = append(plan.Sets, ParamSet{Name: n, Params: DefaultParams()})
			}
			err := plan.Validate()
			if tt.ok && err != nil {
				t.Errorf("Expected valid plan, got %v", err)
			}
			if !tt.ok && !errors.Is(err, model.ErrInvalidArgument) {
				t.Errorf("Expected ErrInvalidArgument, got %v", err)
			}
		})
	}
}

func TestOutputName(t *testing.T) {
	set := ParamSet{Name: "Set3"}
	tests := map[string]string{
		"s-8k.wav":            "s-8k.Set3.txt",
		"/data/tones/a.b.wav": "a.b.Set3.txt",
		"noext":               "noext.Set3.txt",
	}
	for in, want := range tests {
		if got := OutputName(in, set); got != want {
			t.Errorf("OutputName(%q): expected %q, got %q", in, want, got)
		}
	}
	if strings.Contains(OutputName("dir/x.wav", set), "dir") {
		t.Error("OutputName should drop the directory")
	}
}
