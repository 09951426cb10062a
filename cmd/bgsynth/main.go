// Command bgsynth fills masked pixels of an astronomical image with
// statistically matched synthetic noise. It reads flat raw frames (see the
// synth package's frame format), runs the synthesis engine across an
// in-process worker group, and writes the background-only image. Per-stamp
// diagnostics can be persisted to sqlite and rendered as plots.
package main

import (
	"flag"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/okomestudio/tsastro/internal/db"
	"github.com/okomestudio/tsastro/internal/synth"
	"github.com/okomestudio/tsastro/internal/synth/monitor"
	storage "github.com/okomestudio/tsastro/internal/synth/storage/sqlite"
	"github.com/okomestudio/tsastro/internal/version"
)

var (
	imagePath  = flag.String("image", "", "input image frame (required)")
	objPath    = flag.String("objmask", "", "object mask frame (required)")
	weightPath = flag.String("weight", "", "inverse-variance weight frame (required)")
	bgPath     = flag.String("background", "", "background model frame (optional, defaults to zero)")
	badPath    = flag.String("badpix", "", "bad pixel mask frame (optional, defaults to zero)")
	outPath    = flag.String("out", "", "output frame path (required)")

	workers   = flag.Int("workers", 1, "worker count for the in-process group")
	halfWidth = flag.Int("halfwidth", 0, "stamp fill half-width; 0 derives it from -minpixel")
	growInc   = flag.Int("grow", 2, "sampling-window growth increment in pixels")
	minPixel  = flag.Int("minpixel", 50, "valid-pixel target for the sampling window")
	maxGrow   = flag.Int("maxgrow", 0, "growth iteration cap; 0 means uncapped")
	gaussX    = flag.Float64("gauss-x", 0, "Gaussian smoothing sigma along x")
	gaussY    = flag.Float64("gauss-y", 0, "Gaussian smoothing sigma along y")
	boxX      = flag.Float64("box-x", 0, "boxcar smoothing width along x")
	boxY      = flag.Float64("box-y", 0, "boxcar smoothing width along y")
	zoom      = flag.Int("zoom", 0, "noise zoom factor; 0 or 1 disables")
	reject    = flag.String("reject", "default", `rejection preset: "default" or "none"`)
	seed      = flag.Uint64("seed", 1, "base RNG seed; worker r draws from seed+r")

	tuningPath    = flag.String("tuning", "", "JSON tuning file overlaying the flag defaults")
	dbPath        = flag.String("db", "", "sqlite database for per-stamp diagnostics (optional)")
	migrationsDir = flag.String("migrations", "migrations", "schema migrations directory")
	plotDir       = flag.String("plots", "", "directory for per-run diagnostic plots (optional)")
	notes         = flag.String("notes", "", "free-form note stored with the run record")
	quiet         = flag.Bool("quiet", false, "suppress per-stamp log lines")
	showVersion   = flag.Bool("version", false, "print version information and exit")
)

func buildParams() (synth.Params, error) {
	p := synth.Params{
		FillHalfWidth:     *halfWidth,
		GrowIncrement:     *growInc,
		MinPixel:          *minPixel,
		MaxGrowIterations: *maxGrow,
		Zoom:              *zoom,
		Seed:              *seed,
	}

	gauss := *gaussX > 0 || *gaussY > 0
	boxcar := *boxX > 0 || *boxY > 0
	if gauss && boxcar {
		return p, fmt.Errorf("-gauss-* and -box-* are mutually exclusive")
	}
	if gauss {
		p.Smoothing = synth.GaussianSmoothing(*gaussX, *gaussY)
	}
	if boxcar {
		p.Smoothing = synth.BoxcarSmoothing(*boxX, *boxY)
	}

	spec, ok := synth.RejectionByName(*reject)
	if !ok {
		return p, fmt.Errorf("unknown rejection preset %q", *reject)
	}
	p.Rejection = spec

	if *tuningPath != "" {
		tn, err := synth.LoadTuning(*tuningPath)
		if err != nil {
			return p, err
		}
		return tn.Apply(p)
	}
	return p, nil
}

func loadInputs() (synth.Inputs, error) {
	var in synth.Inputs
	var err error
	if in.Image, err = synth.LoadFrame(*imagePath); err != nil {
		return in, fmt.Errorf("load image: %w", err)
	}
	if in.ObjectMask, err = synth.LoadFrame(*objPath); err != nil {
		return in, fmt.Errorf("load object mask: %w", err)
	}
	if in.Weight, err = synth.LoadFrame(*weightPath); err != nil {
		return in, fmt.Errorf("load weight map: %w", err)
	}
	if *bgPath != "" {
		if in.Background, err = synth.LoadFrame(*bgPath); err != nil {
			return in, fmt.Errorf("load background model: %w", err)
		}
	}
	if *badPath != "" {
		if in.BadPixel, err = synth.LoadFrame(*badPath); err != nil {
			return in, fmt.Errorf("load bad pixel mask: %w", err)
		}
	}
	return in, nil
}

func main() {
	flag.Parse()
	if *showVersion {
		fmt.Printf("bgsynth %s (%s, built %s)\n", version.Version, version.GitSHA, version.BuildTime)
		return
	}
	if *imagePath == "" || *objPath == "" || *weightPath == "" || *outPath == "" {
		log.Fatal("bgsynth: -image, -objmask, -weight and -out are required")
	}
	if *workers < 1 {
		log.Fatal("bgsynth: -workers must be at least 1")
	}

	params, err := buildParams()
	if err != nil {
		log.Fatalf("bgsynth: %v", err)
	}
	in, err := loadInputs()
	if err != nil {
		log.Fatalf("bgsynth: %v", err)
	}

	sink := &synth.CollectSink{}
	params.Sink = sink
	if !*quiet {
		params.Sink = teeSink{sink, synth.LogSink{}}
	}

	start := time.Now()
	comms := synth.NewLocalGroup(*workers)
	results := make([]*synth.Frame, *workers)
	errs := make([]error, *workers)
	var wg sync.WaitGroup
	for r := 0; r < *workers; r++ {
		wg.Add(1)
		go func(r int) {
			defer wg.Done()
			results[r], errs[r] = synth.Run(comms[r], in, params)
		}(r)
	}
	wg.Wait()
	for r, err := range errs {
		if err != nil {
			log.Fatalf("bgsynth: worker %d: %v", r, err)
		}
	}
	out := results[0]

	if err := synth.SaveFrame(*outPath, out); err != nil {
		log.Fatalf("bgsynth: write output: %v", err)
	}

	diags := sink.Snapshot()
	filled, skipped, fallbacks := 0, 0, 0
	for _, d := range diags {
		switch d.Outcome {
		case synth.OutcomeFilled:
			filled++
			if d.Match.Fallback {
				fallbacks++
			}
		case synth.OutcomeClean:
		default:
			skipped++
		}
	}
	log.Printf("bgsynth: %dx%d image, %d stamps (%d filled, %d skipped, %d fallbacks), %d workers, %.2fs",
		out.Width, out.Height, len(diags), filled, skipped, fallbacks, *workers, time.Since(start).Seconds())

	runID := ""
	if *dbPath != "" {
		runID, err = recordRun(in, params, diags)
		if err != nil {
			log.Fatalf("bgsynth: record run: %v", err)
		}
		log.Printf("bgsynth: recorded run %s in %s", runID, *dbPath)
	}

	if *plotDir != "" {
		rp, err := monitor.NewRunPlotter(*plotDir)
		if err != nil {
			log.Fatalf("bgsynth: %v", err)
		}
		if runID == "" {
			runID = "unrecorded"
		}
		if err := rp.Plot(runID, diags); err != nil {
			log.Fatalf("bgsynth: plot run: %v", err)
		}
	}
}

// recordRun persists the run record and its stamp diagnostics.
func recordRun(in synth.Inputs, params synth.Params, diags []synth.StampDiag) (string, error) {
	d, err := db.NewDB(*dbPath)
	if err != nil {
		return "", err
	}
	defer d.Close()
	if err := d.MigrateUp(*migrationsDir); err != nil {
		return "", err
	}

	store := storage.NewStampStore(d.DB)
	run := &storage.RunRecord{
		ImageWidth:    in.Image.Width,
		ImageHeight:   in.Image.Height,
		WorkerCount:   *workers,
		FillHalfWidth: params.FillHalfWidth,
		MinPixel:      params.MinPixel,
		Seed:          params.Seed,
		Notes:         *notes,
	}
	if err := store.InsertRun(run); err != nil {
		return "", err
	}
	if err := store.InsertStamps(run.RunID, diags); err != nil {
		return "", err
	}
	return run.RunID, nil
}

// teeSink fans each record out to both sinks.
type teeSink struct {
	a, b synth.DiagSink
}

func (t teeSink) Record(d synth.StampDiag) {
	t.a.Record(d)
	t.b.Record(d)
}
