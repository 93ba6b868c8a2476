package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/himanishpuri/spectrodft/pkg/logger"
	"github.com/himanishpuri/spectrodft/pkg/spectrodft"
)

// Global flags
var (
	dbPath    string
	outputDir string
	tempDir   string
	workers   int
	noCatalog bool
)

func init() {
	// Global flags go before the command
	flag.StringVar(&dbPath, "db", getEnvOrDefault("SPECTRO_DB_PATH", "spectrodft.sqlite3"), "Path to the SQLite run catalog")
	flag.StringVar(&outputDir, "out", getEnvOrDefault("SPECTRO_OUTPUT_DIR", "."), "Default directory for batch outputs")
	flag.StringVar(&tempDir, "temp", getEnvOrDefault("SPECTRO_TEMP_DIR", os.TempDir()), "Directory for ffmpeg conversions")
	flag.IntVar(&workers, "workers", 0, "Frame workers per run (0 = number of CPUs)")
	flag.BoolVar(&noCatalog, "no-db", false, "Do not record runs in the catalog")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// createService creates a spectrogram service from the global flags
func createService() (spectrodft.Service, error) {
	opts := []spectrodft.Option{
		spectrodft.WithDBPath(dbPath),
		spectrodft.WithOutputDir(outputDir),
		spectrodft.WithTempDir(tempDir),
		spectrodft.WithCatalog(!noCatalog),
	}
	if workers > 0 {
		opts = append(opts, spectrodft.WithWorkers(workers))
	}
	return spectrodft.NewService(opts...)
}

func mustService() spectrodft.Service {
	svc, err := createService()
	if err != nil {
		fail("Failed to create service", err)
	}
	return svc
}

func fail(what string, err error) {
	fmt.Printf("❌ %s: %v\n", what, err)
	logger.GetLogger().Errorf("%s: %v", what, err)
	os.Exit(1)
}

// splitArgs separates leading positional arguments from trailing flags, so
// both "run in.wav -o x" and "run -o x in.wav" work.
func splitArgs(fs *flag.FlagSet, args []string) []string {
	var positional []string
	for len(args) > 0 {
		if !strings.HasPrefix(args[0], "-") {
			positional = append(positional, args[0])
			args = args[1:]
			continue
		}
		fs.Parse(args)
		args = fs.Args()
	}
	return positional
}

func main() {
	flag.Usage = printUsage
	flag.Parse()

	log := logger.GetLogger()

	if flag.NArg() < 1 {
		printUsage()
		os.Exit(1)
	}

	command := flag.Arg(0)
	args := flag.Args()[1:]
	log.Debugf("Executing command: %s", command)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	switch command {
	case "run":
		handleRun(ctx, args)
	case "batch":
		handleBatch(ctx, args)
	case "tone":
		handleTone(ctx, args)
	case "concat":
		handleConcat(ctx, args)
	case "inspect":
		handleInspect(args)
	case "list":
		handleList(args)
	case "delete":
		handleDelete(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func paramFlags(fs *flag.FlagSet) func() (spectrodft.Params, error) {
	def := spectrodft.DefaultParams()
	analysis := fs.Duration("analysis", def.AnalysisWindow, "Analysis window length")
	dft := fs.Duration("dft", def.DFTWindow, "DFT window length (>= analysis)")
	hop := fs.Duration("hop", def.FrameInterval, "Frame interval")
	window := fs.String("window", def.Window.String(), "Window: rectangular or hamming")
	rate := fs.Uint("rate", 0, "Expected sample rate (0 = take the file's)")
	samples := fs.Int("samples", 0, "Analyze only the first N samples (0 = all)")

	return func() (spectrodft.Params, error) {
		wt, err := spectrodft.ParseWindowType(*window)
		if err != nil {
			return spectrodft.Params{}, err
		}
		return spectrodft.Params{
			SampleRate:     uint32(*rate),
			AnalysisWindow: *analysis,
			DFTWindow:      *dft,
			FrameInterval:  *hop,
			Window:         wt,
			SampleCount:    *samples,
		}, nil
	}
}

func handleRun(ctx context.Context, args []string) {
	log := logger.GetLogger()

	fs := flag.NewFlagSet("run", flag.ExitOnError)
	out := fs.String("o", "", "Output matrix path (default <input stem>.txt)")
	convert := fs.Int("convert", 0, "Convert the input with ffmpeg to this sample rate first")
	params := paramFlags(fs)
	positional := splitArgs(fs, args)

	if len(positional) != 1 {
		fmt.Println("Usage: spectrodft run <wav_file> [-o out.txt] [-analysis 32ms] [-dft 32ms] [-hop 10ms] [-window rect|hamming]")
		os.Exit(1)
	}
	input := positional[0]

	p, err := params()
	if err != nil {
		fail("Invalid parameters", err)
	}
	if *out == "" {
		*out = strings.TrimSuffix(input, filepath.Ext(input)) + ".txt"
	}

	svc := mustService()
	defer svc.Close()

	if *convert > 0 {
		fmt.Printf("🔧 Converting %s to %d Hz mono...\n", input, *convert)
		input, err = svc.Prepare(ctx, input, *convert)
		if err != nil {
			fail("Conversion failed", err)
		}
	}

	fmt.Printf("🎵 Computing spectrogram of %s\n", input)
	run, err := svc.Generate(ctx, input, *out, p)
	if err != nil {
		fail("Run failed", err)
	}

	printRun(run)
	log.Infof("Run complete: %s", run.OutputPath)
}

func handleBatch(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("batch", flag.ExitOnError)
	inputs := fs.Bool("inputs", false, "Treat the arguments as WAV inputs and use the four default parameter sets")
	positional := splitArgs(fs, args)

	if len(positional) == 0 {
		fmt.Println("Usage: spectrodft batch <plan.yaml>")
		fmt.Println("   OR: spectrodft batch -inputs <wav_file>...")
		os.Exit(1)
	}

	var plan *spectrodft.Plan
	if *inputs {
		plan = spectrodft.NewPlan(outputDir, positional...)
	} else {
		var err error
		plan, err = spectrodft.LoadPlan(positional[0])
		if err != nil {
			fail("Failed to load plan", err)
		}
	}

	svc := mustService()
	defer svc.Close()

	fmt.Printf("🎵 Running %d set(s) over %d input(s)\n", len(plan.Sets), len(plan.Inputs))
	res, err := svc.Batch(ctx, plan)
	if err != nil {
		fail("Batch aborted", err)
	}

	fmt.Printf("\n✅ %s run(s) in %v\n", humanize.Comma(int64(len(res.Runs))), res.Elapsed.Round(time.Millisecond))
	for _, run := range res.Runs {
		fmt.Printf("   %s  %dx%d\n", run.OutputPath, run.Frames, run.Bins)
	}
	if len(res.Failures) > 0 {
		fmt.Printf("\n❌ %d failure(s):\n", len(res.Failures))
		for _, f := range res.Failures {
			fmt.Printf("   %s [%s]: %v\n", f.Input, f.Set, f.Err)
		}
		os.Exit(1)
	}
}

func handleTone(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("tone", flag.ExitOnError)
	dir := fs.String("dir", "tones", "Directory for the generated WAVs and manifest")
	duration := fs.Duration("duration", spectrodft.DefaultToneSet().Duration, "Length of each file")
	fs.Parse(args)

	set := spectrodft.DefaultToneSet()
	set.Duration = *duration

	svc := mustService()
	defer svc.Close()

	entries, err := svc.GenerateTones(ctx, *dir, set)
	if err != nil {
		fail("Tone generation failed", err)
	}
	fmt.Printf("✅ Wrote %d tone(s) and %s to %s\n", len(entries), "waveforms.scp", *dir)
}

func handleConcat(ctx context.Context, args []string) {
	if len(args) != 3 {
		fmt.Println("Usage: spectrodft concat <manifest> <output.wav> <sample_rate>")
		os.Exit(1)
	}
	rate, err := strconv.ParseUint(args[2], 10, 32)
	if err != nil {
		fail("Invalid sample rate", err)
	}

	svc := mustService()
	defer svc.Close()

	res, err := svc.Concat(ctx, args[0], args[1], uint32(rate))
	if err != nil {
		fail("Concatenation failed", err)
	}

	for _, f := range res.Files {
		if f.Skipped {
			fmt.Printf("   skipped %s: %s\n", f.Path, f.Reason)
		}
	}
	fmt.Printf("✅ %s: %d file(s), %s samples, %.2f seconds\n",
		res.Output, res.Appended(), humanize.Comma(int64(res.TotalSamples)), res.Duration().Seconds())
}

func handleInspect(args []string) {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	frames := fs.Int("frames", 10, "Peak bins to print (0 = all)")
	positional := splitArgs(fs, args)

	if len(positional) != 1 {
		fmt.Println("Usage: spectrodft inspect <matrix.txt> [-frames N]")
		os.Exit(1)
	}

	svc := mustService()
	defer svc.Close()

	info, err := svc.Inspect(positional[0])
	if err != nil {
		fail("Inspect failed", err)
	}

	fmt.Printf("%s (%s)\n", info.Path, humanize.Bytes(uint64(info.Bytes)))
	fmt.Printf("   Shape:  %d frames × %d bins\n", info.Frames, info.Bins)
	if info.Frames == 0 {
		return
	}
	fmt.Printf("   Range:  %.4f dB .. %.4f dB\n", info.Min, info.Max)

	n := len(info.PeakBins)
	if *frames > 0 && *frames < n {
		n = *frames
	}
	fmt.Println("   Peak bin per frame:")
	for k := 0; k < n; k++ {
		fmt.Printf("   %5d  %d\n", k, info.PeakBins[k])
	}
	if n < len(info.PeakBins) {
		fmt.Printf("   ... and %d more frames\n", len(info.PeakBins)-n)
	}
}

func handleList(args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	limit := fs.Int("limit", 20, "Maximum runs to show (0 = all)")
	fs.Parse(args)

	svc := mustService()
	defer svc.Close()

	runs, err := svc.ListRuns(*limit)
	if err != nil {
		fail("Failed to list runs", err)
	}

	if len(runs) == 0 {
		fmt.Println("\n📭 No runs in catalog")
		return
	}

	fmt.Printf("\n📚 Found %d run(s):\n\n", len(runs))
	for i, run := range runs {
		fmt.Printf("%d. %s (ID: %s)\n", i+1, run.OutputPath, run.ID)
		fmt.Printf("   Input:  %s @ %d Hz\n", run.InputPath, run.SampleRate)
		fmt.Printf("   Params: %v / %v / %v %s\n", run.AnalysisWindow, run.DFTWindow, run.FrameInterval, run.WindowType)
		fmt.Printf("   Shape:  %d × %d, %s\n", run.Frames, run.Bins, humanize.Time(run.CreatedAt))
		fmt.Println()
	}
}

func handleDelete(args []string) {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	rm := fs.Bool("rm", false, "Also remove the matrix file")
	positional := splitArgs(fs, args)

	if len(positional) != 1 {
		fmt.Println("Usage: spectrodft delete <run_id> [-rm]")
		os.Exit(1)
	}

	svc := mustService()
	defer svc.Close()

	run, err := svc.DeleteRun(positional[0], *rm)
	if err != nil {
		fail("Failed to delete run", err)
	}

	fmt.Printf("\n✅ Deleted run %s\n", run.ID)
	fmt.Printf("   Output: %s\n", run.OutputPath)
	if *rm {
		fmt.Println("   Matrix file removed")
	}
}

func printRun(run *spectrodft.Run) {
	fmt.Println("\n✅ Spectrogram written")
	fmt.Printf("   Output:   %s\n", run.OutputPath)
	fmt.Printf("   Input:    %s samples @ %d Hz\n", humanize.Comma(int64(run.SampleCount)), run.SampleRate)
	fmt.Printf("   Geometry: N=%d hop=%d window=%s\n", run.TransformSize, run.HopSamples, run.WindowType)
	fmt.Printf("   Shape:    %d frames × %d bins in %v\n", run.Frames, run.Bins, run.Elapsed.Round(time.Microsecond))
	if len(run.PeakBins) > 0 {
		bin := run.PeakBins[0]
		fmt.Printf("   Frame 0:  peak bin %d (%.1f Hz)\n", bin, run.PeakFrequency(bin))
	}
	if run.ID != "" {
		fmt.Printf("   Run ID:   %s\n", run.ID)
	}
}

func printUsage() {
	fmt.Println("spectrodft - DFT spectrogram CLI")
	fmt.Println("\nGlobal Options:")
	fmt.Println("  -db <path>       Run catalog (env: SPECTRO_DB_PATH, default: spectrodft.sqlite3)")
	fmt.Println("  -out <dir>       Default batch output directory (env: SPECTRO_OUTPUT_DIR, default: .)")
	fmt.Println("  -temp <dir>      Directory for ffmpeg conversions (env: SPECTRO_TEMP_DIR)")
	fmt.Println("  -workers <n>     Frame workers per run (default: number of CPUs)")
	fmt.Println("  -no-db           Do not record runs")
	fmt.Println("\nUsage:")
	fmt.Println("  spectrodft [global-options] run <wav_file> [-o out.txt] [-analysis 32ms] [-dft 32ms] [-hop 10ms] [-window rect|hamming] [-rate hz] [-samples n] [-convert hz]")
	fmt.Println("  spectrodft [global-options] batch <plan.yaml>")
	fmt.Println("  spectrodft [global-options] batch -inputs <wav_file>...")
	fmt.Println("  spectrodft [global-options] tone [-dir tones] [-duration 100ms]")
	fmt.Println("  spectrodft [global-options] concat <manifest> <output.wav> <sample_rate>")
	fmt.Println("  spectrodft [global-options] inspect <matrix.txt> [-frames n]")
	fmt.Println("  spectrodft [global-options] list [-limit n]")
	fmt.Println("  spectrodft [global-options] delete <run_id> [-rm]")
	fmt.Println("\nExamples:")
	fmt.Println("  # 30 ms Hamming window zero-padded to a 32 ms DFT")
	fmt.Println("  spectrodft run s-16k.wav -o s-16k.Set4.txt -analysis 30ms -window hamming")
	fmt.Println()
	fmt.Println("  # Four reference parameter sets for two inputs")
	fmt.Println("  spectrodft -out results batch -inputs s-8k.wav s-16k.wav")
	fmt.Println()
	fmt.Println("  # Test tones, then join the 8 kHz ones")
	fmt.Println("  spectrodft tone -dir tones && spectrodft concat tones/waveforms.scp tones-8k.wav 8000")
}
