package spectrodft

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/himanishpuri/spectrodft/internal/audio"
	"github.com/himanishpuri/spectrodft/internal/model"
	"github.com/himanishpuri/spectrodft/internal/spectrogram"
)

// ParamSet is a named parameter set of a batch plan.
type ParamSet struct {
	Name   string `yaml:"name"`
	Params `yaml:",inline"`
}

// Plan runs every parameter set against every input.
//
//	output_dir: out
//	manifest: tones/waveforms.scp
//	inputs: [s-8k.wav, s-16k.wav]
//	sets:
//	  - name: Set1
//	    analysis_window: 32ms
//	    dft_window: 32ms
//	    frame_interval: 10ms
//	    window: rectangular
type Plan struct {
	OutputDir string     `yaml:"output_dir"`
	Manifest  string     `yaml:"manifest,omitempty"`
	Inputs    []string   `yaml:"inputs"`
	Sets      []ParamSet `yaml:"sets"`
}

// DefaultParamSets are the four reference configurations: 32 ms or 30 ms
// analysis windows in a 32 ms DFT, rectangular or Hamming, 10 ms hop.
func DefaultParamSets() []ParamSet {
	set := func(name string, analysis time.Duration, w WindowType) ParamSet {
		return ParamSet{Name: name, Params: Params{
			AnalysisWindow: analysis,
			DFTWindow:      spectrogram.DefaultDFTWindow,
			FrameInterval:  spectrogram.DefaultFrameInterval,
			Window:         w,
		}}
	}
	return []ParamSet{
		set("Set1", 32*time.Millisecond, Rectangular),
		set("Set2", 32*time.Millisecond, Hamming),
		set("Set3", 30*time.Millisecond, Rectangular),
		set("Set4", 30*time.Millisecond, Hamming),
	}
}

// NewPlan builds a plan over inputs using DefaultParamSets.
func NewPlan(outputDir string, inputs ...string) *Plan {
	return &Plan{OutputDir: outputDir, Inputs: inputs, Sets: DefaultParamSets()}
}

// LoadPlan reads a YAML plan. Relative paths are taken relative to the plan
// file. A plan without sets gets DefaultParamSets; inputs listed in the
// manifest are appended to inputs.
func LoadPlan(path string) (*Plan, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading plan %s: %v: %w", path, err, model.ErrIO)
	}

	var plan Plan
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&plan); err != nil {
		return nil, fmt.Errorf("parsing plan %s: %v: %w", path, err, model.ErrInvalidArgument)
	}

	base := filepath.Dir(path)
	resolve := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(base, p)
	}
	for i, in := range plan.Inputs {
		plan.Inputs[i] = resolve(in)
	}
	plan.OutputDir = resolve(plan.OutputDir)

	if plan.Manifest != "" {
		entries, err := audio.ReadManifest(resolve(plan.Manifest))
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			plan.Inputs = append(plan.Inputs, e.Path)
		}
	}
	if len(plan.Sets) == 0 {
		plan.Sets = DefaultParamSets()
	}

	if err := plan.Validate(); err != nil {
		return nil, fmt.Errorf("plan %s: %w", path, err)
	}
	return &plan, nil
}

// Validate checks set names and the signal-independent parameters.
func (p *Plan) Validate() error {
	if len(p.Inputs) == 0 {
		return fmt.Errorf("plan has no inputs: %w", model.ErrInvalidArgument)
	}
	seen := make(map[string]bool, len(p.Sets))
	for i, set := range p.Sets {
		if set.Name == "" {
			return fmt.Errorf("set %d has no name: %w", i+1, model.ErrInvalidArgument)
		}
		if strings.ContainsAny(set.Name, `/\`) {
			return fmt.Errorf("set name %q contains a path separator: %w", set.Name, model.ErrInvalidArgument)
		}
		if seen[set.Name] {
			return fmt.Errorf("duplicate set name %q: %w", set.Name, model.ErrInvalidArgument)
		}
		seen[set.Name] = true
		if err := set.Params.Validate(); err != nil {
			return fmt.Errorf("set %s: %w", set.Name, err)
		}
	}
	return nil
}

// OutputName is the matrix file name for input under set, e.g.
// s-8k.Set1.txt for s-8k.wav.
func OutputName(input string, set ParamSet) string {
	base := filepath.Base(input)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return stem + "." + set.Name + ".txt"
}
