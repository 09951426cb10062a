package synth

import (
	"errors"
	"math"
	"sort"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// ErrNoUsableWeight is returned when no pixel in the sampling window carries
// a finite positive weight, so there is no sigma to draw noise from. The
// stamp must be skipped and its pixels left untouched.
var ErrNoUsableWeight = errors.New("synth: sampling window has no usable weight")

// NoiseSynthesizer draws per-pixel Gaussian noise matched to a weight map.
// The random source is owned by the caller (one per worker) so stamp results
// are reproducible and parallel-safe.
type NoiseSynthesizer struct {
	kernel *Kernel
	zoom   int
	unit   distuv.Normal
}

// NewNoiseSynthesizer builds a synthesizer with the given smoothing mode,
// zoom factor (<=1 disables zooming) and random source.
func NewNoiseSynthesizer(smoothing Smoothing, zoom int, src rand.Source) *NoiseSynthesizer {
	return &NoiseSynthesizer{
		kernel: smoothing.BuildKernel(),
		zoom:   zoom,
		unit:   distuv.Normal{Mu: 0, Sigma: 1, Src: src},
	}
}

// Synthesize draws a noise field shaped like the weight sub-frame. Per-pixel
// sigma is sqrt(1/weight); pixels with non-positive or non-finite sigma use
// the median of the finite positive sigmas in the window. When none exists
// ErrNoUsableWeight is returned. With a zoom factor the unit noise is drawn
// on a ceil(dim/zoom) coarse grid and bilinearly resampled (deterministic)
// before the sigma scaling; smoothing, when configured, is applied last.
func (ns *NoiseSynthesizer) Synthesize(weights *Frame) (*Frame, error) {
	sigma, err := sigmaField(weights)
	if err != nil {
		return nil, err
	}

	var noise *Frame
	if ns.zoom > 1 {
		cw := (weights.Width + ns.zoom - 1) / ns.zoom
		ch := (weights.Height + ns.zoom - 1) / ns.zoom
		coarse := NewFrame(cw, ch)
		for i := range coarse.Pix {
			coarse.Pix[i] = ns.unit.Rand()
		}
		noise = resampleBilinear(coarse, weights.Width, weights.Height)
	} else {
		noise = NewFrame(weights.Width, weights.Height)
		for i := range noise.Pix {
			noise.Pix[i] = ns.unit.Rand()
		}
	}

	for i := range noise.Pix {
		noise.Pix[i] *= sigma.Pix[i]
	}

	if ns.kernel != nil {
		noise = ns.kernel.Convolve(noise)
	}
	return noise, nil
}

// sigmaField converts weights to per-pixel sigmas with median substitution
// for unusable entries.
func sigmaField(weights *Frame) (*Frame, error) {
	sigma := NewFrame(weights.Width, weights.Height)
	finite := make([]float64, 0, len(weights.Pix))
	for i, w := range weights.Pix {
		s := math.NaN()
		if w > 0 && !math.IsInf(w, 1) {
			s = math.Sqrt(1 / w)
		}
		sigma.Pix[i] = s
		if !math.IsNaN(s) && s > 0 && !math.IsInf(s, 1) {
			finite = append(finite, s)
		}
	}
	if len(finite) == 0 {
		return nil, ErrNoUsableWeight
	}
	med := median(finite)
	for i, s := range sigma.Pix {
		if math.IsNaN(s) || s <= 0 || math.IsInf(s, 1) {
			sigma.Pix[i] = med
		}
	}
	return sigma, nil
}

// median returns the middle value of the sample, averaging the two central
// values for even lengths. The input slice is sorted in place.
func median(v []float64) float64 {
	sort.Float64s(v)
	n := len(v)
	if n%2 == 1 {
		return v[n/2]
	}
	return (v[n/2-1] + v[n/2]) / 2
}

// resampleBilinear stretches src to width×height by bilinear interpolation.
func resampleBilinear(src *Frame, width, height int) *Frame {
	out := NewFrame(width, height)
	sx := float64(src.Width) / float64(width)
	sy := float64(src.Height) / float64(height)
	for y := 0; y < height; y++ {
		fy := (float64(y)+0.5)*sy - 0.5
		y0 := int(math.Floor(fy))
		ty := fy - float64(y0)
		y1 := y0 + 1
		if y0 < 0 {
			y0 = 0
		}
		if y1 > src.Height-1 {
			y1 = src.Height - 1
		}
		for x := 0; x < width; x++ {
			fx := (float64(x)+0.5)*sx - 0.5
			x0 := int(math.Floor(fx))
			tx := fx - float64(x0)
			x1 := x0 + 1
			if x0 < 0 {
				x0 = 0
			}
			if x1 > src.Width-1 {
				x1 = src.Width - 1
			}
			v00 := src.At(x0, y0)
			v10 := src.At(x1, y0)
			v01 := src.At(x0, y1)
			v11 := src.At(x1, y1)
			top := v00 + tx*(v10-v00)
			bot := v01 + tx*(v11-v01)
			out.Set(x, y, top+ty*(bot-top))
		}
	}
	return out
}
