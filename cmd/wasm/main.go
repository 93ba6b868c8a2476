//go:build js && wasm
// +build js,wasm

package main

import (
	"fmt"
	"math"
	"syscall/js"
	"time"

	"github.com/himanishpuri/spectrodft/internal/audio"
	"github.com/himanishpuri/spectrodft/internal/spectrogram"
)

// Error codes returned to JavaScript
const (
	ErrorNone = iota
	ErrorInvalidArgs
	ErrorInvalidParams
	ErrorProcessing
)

// computeSpectrogram(samples, sampleRate, channels, options?) turns 16-bit
// sample values into dB rows. options may carry analysisMs, dftMs, hopMs
// and window ("rectangular" or "hamming").
// Returns: {error: number, data: {frames, bins, rows, peakBins} | string}
func computeSpectrogram(this js.Value, args []js.Value) any {
	if len(args) < 3 {
		return makeErrorResponse(ErrorInvalidArgs, "Expected at least 3 arguments: samples, sampleRate, channels")
	}

	samplesJS := args[0]
	sampleRateJS := args[1]
	channelsJS := args[2]

	if samplesJS.Type() != js.TypeObject {
		return makeErrorResponse(ErrorInvalidArgs, "samples must be an Array or typed array")
	}
	if sampleRateJS.Type() != js.TypeNumber {
		return makeErrorResponse(ErrorInvalidArgs, "sampleRate must be a number")
	}
	if channelsJS.Type() != js.TypeNumber {
		return makeErrorResponse(ErrorInvalidArgs, "channels must be a number")
	}

	sampleRate := sampleRateJS.Int()
	channels := channelsJS.Int()
	if sampleRate <= 0 {
		return makeErrorResponse(ErrorInvalidArgs, fmt.Sprintf("Invalid sample rate: %d", sampleRate))
	}
	if channels < 1 || channels > 2 {
		return makeErrorResponse(ErrorInvalidArgs, fmt.Sprintf("Channels must be 1 (mono) or 2 (stereo), got: %d", channels))
	}

	length := samplesJS.Length()
	values := make([]float64, length)
	for i := 0; i < length; i++ {
		val := samplesJS.Index(i)
		if val.Type() != js.TypeNumber {
			return makeErrorResponse(ErrorInvalidArgs, fmt.Sprintf("samples element %d is not a number", i))
		}
		values[i] = val.Float()
	}
	if channels == 2 {
		values = stereoToMono(values)
	}

	cfg, err := paramsFromJS(args)
	if err != nil {
		return makeErrorResponse(ErrorInvalidParams, err.Error())
	}

	store := &audio.SampleStore{Samples: toInt16(values), SampleRate: uint32(sampleRate)}
	rows, err := spectrogram.Compute(store, cfg)
	if err != nil {
		return makeErrorResponse(ErrorProcessing, fmt.Sprintf("Failed to compute spectrogram: %v", err))
	}

	rowArray := js.Global().Get("Array").New(len(rows))
	peakArray := js.Global().Get("Array").New(len(rows))
	bins := 0
	for k, row := range rows {
		bins = len(row)
		arr := js.Global().Get("Float64Array").New(len(row))
		peak := 0
		for i, v := range row {
			arr.SetIndex(i, v)
			if v > row[peak] {
				peak = i
			}
		}
		rowArray.SetIndex(k, arr)
		peakArray.SetIndex(k, peak)
	}

	data := js.Global().Get("Object").New()
	data.Set("frames", len(rows))
	data.Set("bins", bins)
	data.Set("rows", rowArray)
	data.Set("peakBins", peakArray)

	result := js.Global().Get("Object").New()
	result.Set("error", ErrorNone)
	result.Set("data", data)
	return result
}

// paramsFromJS reads the optional fourth argument over the defaults.
func paramsFromJS(args []js.Value) (spectrogram.Config, error) {
	cfg := spectrogram.DefaultConfig()
	if len(args) < 4 || args[3].IsUndefined() || args[3].IsNull() {
		return cfg, nil
	}
	opts := args[3]

	ms := func(name string, dst *time.Duration) {
		if v := opts.Get(name); v.Type() == js.TypeNumber {
			*dst = time.Duration(v.Float() * float64(time.Millisecond))
		}
	}
	ms("analysisMs", &cfg.AnalysisWindow)
	ms("dftMs", &cfg.DFTWindow)
	ms("hopMs", &cfg.FrameInterval)

	if v := opts.Get("window"); v.Type() == js.TypeString {
		wt, err := spectrogram.ParseWindowType(v.String())
		if err != nil {
			return cfg, err
		}
		cfg.Window = wt
	}
	return cfg, cfg.Validate()
}

// toInt16 truncates toward zero and saturates at the int16 range.
func toInt16(values []float64) []int16 {
	out := make([]int16, len(values))
	for i, v := range values {
		out[i] = int16(math.Max(math.MinInt16, math.Min(math.MaxInt16, v)))
	}
	return out
}

func stereoToMono(stereo []float64) []float64 {
	mono := make([]float64, len(stereo)/2)
	for i := range mono {
		mono[i] = (stereo[2*i] + stereo[2*i+1]) / 2
	}
	return mono
}

func makeErrorResponse(errorCode int, message string) js.Value {
	result := js.Global().Get("Object").New()
	result.Set("error", errorCode)
	result.Set("data", message)
	return result
}

func main() {
	console := js.Global().Get("console")
	logf := func(method, format string, args ...any) {
		if !console.IsUndefined() {
			console.Call(method, fmt.Sprintf(format, args...))
		}
	}

	js.Global().Set("computeSpectrogram", js.FuncOf(computeSpectrogram))
	logf("log", "📝 computeSpectrogram registered")

	window := js.Global().Get("window")
	if window.IsUndefined() {
		logf("error", "❌ window object is undefined!")
	} else {
		event := js.Global().Get("CustomEvent").New("wasmReady", js.Global().Get("Object").New())
		window.Call("dispatchEvent", event)
		logf("log", "✅ spectrodft WASM module ready")
	}

	select {}
}
