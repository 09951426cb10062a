package synth

import (
	"errors"
	"fmt"
	"math"

	"golang.org/x/exp/rand"
)

// Params configures a synthesis run.
type Params struct {
	FillHalfWidth     int           // stamp fill half-width h; <=0 derives it from MinPixel
	GrowIncrement     int           // sampling-window growth step in pixels, e.g. 2
	MinPixel          int           // valid-pixel target for the sampling window
	MaxGrowIterations int           // growth iteration cap; <=0 means uncapped
	Smoothing         Smoothing     // optional noise smoothing, exactly one kind
	Zoom              int           // noise zoom factor; <=1 disables
	Rejection         RejectionSpec // sigma-rejection policy for variance matching
	Seed              uint64        // base RNG seed; worker r draws from Seed+r
	Sink              DiagSink      // per-stamp diagnostic sink; nil logs via monitoring
}

// DefaultParams returns the standard configuration: half-width derived from
// a 50-pixel target, growth step 2, uncapped growth, no smoothing or zoom,
// the default rejection policy and log-line diagnostics.
func DefaultParams() Params {
	return Params{
		GrowIncrement: 2,
		MinPixel:      50,
		Rejection:     DefaultRejection(),
	}
}

// withDefaults fills derived and optional fields.
func (p Params) withDefaults() Params {
	if p.MinPixel < 1 {
		p.MinPixel = 50
	}
	if p.FillHalfWidth <= 0 {
		// smallest h with (2h+1)^2 >= MinPixel
		p.FillHalfWidth = int(math.Ceil((math.Sqrt(float64(p.MinPixel)) - 1) / 2))
		if p.FillHalfWidth < 1 {
			p.FillHalfWidth = 1
		}
	}
	if p.GrowIncrement < 1 {
		p.GrowIncrement = 1
	}
	if p.Sink == nil {
		p.Sink = LogSink{}
	}
	return p
}

// Inputs are the image planes for a run. Image, ObjectMask and Weight are
// required; Background and BadPixel default to all-zero planes of the same
// shape. All planes are owned by the caller and are only read by the engine;
// the result is a new frame.
type Inputs struct {
	Image      *Frame // pixel values
	ObjectMask *Frame // nonzero marks object pixels to fill
	Weight     *Frame // inverse-variance weights
	Background *Frame // model background added under synthesized noise; optional
	BadPixel   *Frame // nonzero marks instrumentally bad pixels; optional
}

func (in Inputs) withDefaults() (Inputs, error) {
	if in.Image == nil || in.ObjectMask == nil || in.Weight == nil {
		return in, errors.New("synth: image, object mask and weight map are required")
	}
	if !in.Image.SameShape(in.ObjectMask) || !in.Image.SameShape(in.Weight) {
		return in, ErrShapeMismatch
	}
	if in.Background == nil {
		in.Background = NewFrame(in.Image.Width, in.Image.Height)
	} else if !in.Image.SameShape(in.Background) {
		return in, ErrShapeMismatch
	}
	if in.BadPixel == nil {
		in.BadPixel = NewFrame(in.Image.Width, in.Image.Height)
	} else if !in.Image.SameShape(in.BadPixel) {
		return in, ErrShapeMismatch
	}
	return in, nil
}

// Run executes the synthesis for one worker of the group. Every worker of
// the SPMD group calls Run with the same inputs and params and its own Comm;
// grid rows are distributed round-robin across ranks. Only the coordinator
// (rank 0) receives the assembled full-size image; all other ranks return
// (nil, nil). Configuration and shape errors abort before any processing.
func Run(comm Comm, in Inputs, p Params) (*Frame, error) {
	in, err := in.withDefaults()
	if err != nil {
		return nil, err
	}
	p = p.withDefaults()

	width, height := in.Image.Width, in.Image.Height

	// Sync point 1: the coordinator computes the stamp grid once and
	// broadcasts it, so every worker sees identical centers.
	var enc []int
	if comm.Rank() == 0 {
		enc = NewStampGrid(width, height, p.FillHalfWidth).encode()
	}
	grid := decodeGrid(comm.BroadcastInts(0, enc))

	ns := NewNoiseSynthesizer(p.Smoothing, p.Zoom, rand.NewSource(p.Seed+uint64(comm.Rank())))

	rows := assignedRows(comm.Rank(), comm.Size(), len(grid.RowCenters))
	var local []float64
	for _, i := range rows {
		y0, y1 := grid.RowBand(i, height)
		band := make([]float64, (y1-y0)*width)
		copy(band, in.Image.Pix[y0*width:y1*width])
		for j := range grid.ColCenters {
			processStamp(in, grid, p, ns, comm.Rank(), i, j, band, y0)
		}
		local = append(local, band...)
	}

	// Sync point 2: row counts size the variable-length receives.
	counts := comm.GatherInts(0, []int{len(rows)})
	// Sync point 3: row-index lists and pixel buffers.
	idxLists := comm.GatherInts(0, rows)
	bufs := comm.GatherFloat64s(0, local)

	if comm.Rank() != 0 {
		return nil, nil
	}

	// Reassemble by explicit row index; arrival order across workers is
	// irrelevant because placement is keyed by the gathered indices.
	out := NewFrame(width, height)
	for r := range idxLists {
		if len(idxLists[r]) != counts[r][0] {
			return nil, fmt.Errorf("synth: worker %d reported %d rows but sent %d", r, counts[r][0], len(idxLists[r]))
		}
		offset := 0
		for _, i := range idxLists[r] {
			y0, y1 := grid.RowBand(i, height)
			n := (y1 - y0) * width
			copy(out.Pix[y0*width:y1*width], bufs[r][offset:offset+n])
			offset += n
		}
		if offset != len(bufs[r]) {
			return nil, fmt.Errorf("synth: worker %d sent %d pixels, expected %d", r, len(bufs[r]), offset)
		}
	}
	return out, nil
}

// processStamp handles one stamp: masked-pixel check, window growth, noise
// synthesis, variance matching and the fill-window overwrite into band.
func processStamp(in Inputs, grid *StampGrid, p Params, ns *NoiseSynthesizer, rank, gridRow, gridCol int, band []float64, bandY0 int) {
	width, height := in.Image.Width, in.Image.Height
	cy := grid.RowCenters[gridRow]
	cx := grid.ColCenters[gridCol]
	fill := grid.FillWindow(cx, cy, width, height)

	diag := StampDiag{
		WorkerRank: rank,
		GridRow:    gridRow,
		GridCol:    gridCol,
		Fill:       fill,
		Sampling:   fill,
	}

	masked, good := 0, 0
	for y := fill.Y0; y < fill.Y1; y++ {
		row := y * width
		for x := fill.X0; x < fill.X1; x++ {
			if in.ObjectMask.Pix[row+x] != 0 || in.BadPixel.Pix[row+x] != 0 {
				masked++
			}
			if in.BadPixel.Pix[row+x] == 0 {
				good++
			}
		}
	}
	diag.MaskedIn = masked
	if masked == 0 {
		diag.Outcome = OutcomeClean
		p.Sink.Record(diag)
		return
	}
	if good == 0 {
		diag.Outcome = OutcomeAllBad
		p.Sink.Record(diag)
		return
	}

	sampling := GrowWindow(in.ObjectMask, in.BadPixel, fill, p.GrowIncrement, p.MinPixel, p.MaxGrowIterations)
	diag.Sampling = sampling

	// Copy the weight sub-array: the inputs may be lazily backed and must
	// not be written through.
	noise, err := ns.Synthesize(in.Weight.SubFrame(sampling))
	if err != nil {
		diag.Outcome = OutcomeNoWeight
		p.Sink.Record(diag)
		return
	}

	m := MatchVariance(in.Image, in.Background, in.ObjectMask, in.BadPixel, sampling, noise, p.Rejection)
	diag.Outcome = OutcomeFilled
	diag.Match = m

	for y := fill.Y0; y < fill.Y1; y++ {
		row := y * width
		for x := fill.X0; x < fill.X1; x++ {
			if in.ObjectMask.Pix[row+x] == 0 && in.BadPixel.Pix[row+x] == 0 {
				continue
			}
			nv := noise.At(x-sampling.X0, y-sampling.Y0)
			band[(y-bandY0)*width+x] = m.Factor*nv + in.Background.Pix[row+x]
		}
	}
	p.Sink.Record(diag)
}
