package synth

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/himanishpuri/spectrodft/internal/audio"
	"github.com/himanishpuri/spectrodft/pkg/logger"
)

// ManifestName is the file list GenerateSet writes next to the tones.
const ManifestName = "waveforms.scp"

// Component is one frequency/amplitude pair of a tone set.
type Component struct {
	Frequency float64 `yaml:"frequency"`
	Amplitude float64 `yaml:"amplitude"`
}

// ToneSet is the cross product SampleRates × Waveforms × Components.
type ToneSet struct {
	SampleRates []uint32      `yaml:"sample_rates"`
	Waveforms   []Waveform    `yaml:"waveforms"`
	Components  []Component   `yaml:"components"`
	Duration    time.Duration `yaml:"duration"`
}

// DefaultToneSet is the reference test material: ten tones in four shapes
// at 8 and 16 kHz, 100 ms each.
func DefaultToneSet() ToneSet {
	return ToneSet{
		SampleRates: []uint32{8000, 16000},
		Waveforms:   []Waveform{Sine, Sawtooth, Square, Triangle},
		Components: []Component{
			{Frequency: 0, Amplitude: 100},
			{Frequency: 31.25, Amplitude: 2000},
			{Frequency: 500, Amplitude: 1000},
			{Frequency: 2000, Amplitude: 500},
			{Frequency: 4000, Amplitude: 250},
			{Frequency: 44, Amplitude: 100},
			{Frequency: 220, Amplitude: 2000},
			{Frequency: 440, Amplitude: 1000},
			{Frequency: 1760, Amplitude: 500},
			{Frequency: 3960, Amplitude: 250},
		},
		Duration: DefaultGate,
	}
}

// Tones expands the set in manifest order: rate, then waveform, then
// component.
func (s ToneSet) Tones() []Tone {
	tones := make([]Tone, 0, len(s.SampleRates)*len(s.Waveforms)*len(s.Components))
	for _, rate := range s.SampleRates {
		for _, wf := range s.Waveforms {
			for _, c := range s.Components {
				tones = append(tones, Tone{
					Waveform:   wf,
					Frequency:  c.Frequency,
					Amplitude:  c.Amplitude,
					SampleRate: rate,
					Duration:   s.Duration,
				})
			}
		}
	}
	return tones
}

// GenerateSet writes every tone of set into dir plus a manifest listing
// them with their labels. It returns the manifest entries in order.
func GenerateSet(ctx context.Context, dir string, set ToneSet) ([]audio.ManifestEntry, error) {
	log := logger.GetLogger()
	tones := set.Tones()
	entries := make([]audio.ManifestEntry, len(tones))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, tone := range tones {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			store, err := Generate(tone)
			if err != nil {
				return fmt.Errorf("%s: %w", tone.Label(), err)
			}
			path := filepath.Join(dir, tone.FileName())
			if err := audio.WriteWAV(path, store); err != nil {
				return err
			}
			log.Debugf("Wrote %s (%d samples)", path, store.Len())
			entries[i] = audio.ManifestEntry{Path: path, Label: tone.Label()}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	manifest := filepath.Join(dir, ManifestName)
	if err := audio.WriteManifest(manifest, entries); err != nil {
		return nil, err
	}
	log.Infof("Generated %d tones in %s", len(entries), dir)
	return entries, nil
}
