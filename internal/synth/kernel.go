package synth

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// SmoothingKind selects the optional noise-smoothing mode.
type SmoothingKind int

const (
	SmoothingNone SmoothingKind = iota
	SmoothingGaussian
	SmoothingBoxcar
)

// Smoothing is a tagged smoothing configuration. Exactly one kind is active;
// construct values through GaussianSmoothing or BoxcarSmoothing so the
// "both modes configured" error cannot be expressed.
type Smoothing struct {
	Kind SmoothingKind
	X    float64 // sigma (Gaussian) or full width (boxcar) along x
	Y    float64 // sigma (Gaussian) or full width (boxcar) along y
}

// NoSmoothing disables noise smoothing.
func NoSmoothing() Smoothing { return Smoothing{Kind: SmoothingNone} }

// GaussianSmoothing smooths the noise field with a 2-D Gaussian of the given
// per-axis sigmas.
func GaussianSmoothing(sigmaX, sigmaY float64) Smoothing {
	return Smoothing{Kind: SmoothingGaussian, X: sigmaX, Y: sigmaY}
}

// BoxcarSmoothing smooths the noise field with a flat kernel of the given
// per-axis full widths.
func BoxcarSmoothing(widthX, widthY float64) Smoothing {
	return Smoothing{Kind: SmoothingBoxcar, X: widthX, Y: widthY}
}

// Kernel is a 2-D convolution kernel normalized to unit sum.
type Kernel struct {
	Width  int
	Height int
	W      []float64 // row-major weights
}

// BuildKernel materializes the smoothing configuration as a normalized
// kernel. Gaussian kernels cover ±3 sigma per axis (ceil-rounded); boxcar
// kernels cover exactly the requested widths (ceil-rounded). SmoothingNone
// yields nil.
func (s Smoothing) BuildKernel() *Kernel {
	switch s.Kind {
	case SmoothingGaussian:
		return gaussianKernel(s.X, s.Y)
	case SmoothingBoxcar:
		return boxcarKernel(s.X, s.Y)
	}
	return nil
}

func gaussianKernel(sigmaX, sigmaY float64) *Kernel {
	hx := int(math.Ceil(3 * sigmaX))
	hy := int(math.Ceil(3 * sigmaY))
	k := &Kernel{Width: 2*hx + 1, Height: 2*hy + 1}
	k.W = make([]float64, k.Width*k.Height)
	for y := -hy; y <= hy; y++ {
		for x := -hx; x <= hx; x++ {
			ex := 0.0
			if sigmaX > 0 {
				ex += float64(x*x) / (2 * sigmaX * sigmaX)
			}
			if sigmaY > 0 {
				ex += float64(y*y) / (2 * sigmaY * sigmaY)
			}
			k.W[(y+hy)*k.Width+(x+hx)] = math.Exp(-ex)
		}
	}
	k.normalize()
	return k
}

func boxcarKernel(widthX, widthY float64) *Kernel {
	wx := int(math.Ceil(widthX))
	if wx < 1 {
		wx = 1
	}
	wy := int(math.Ceil(widthY))
	if wy < 1 {
		wy = 1
	}
	k := &Kernel{Width: wx, Height: wy}
	k.W = make([]float64, wx*wy)
	for i := range k.W {
		k.W[i] = 1
	}
	k.normalize()
	return k
}

func (k *Kernel) normalize() {
	sum := floats.Sum(k.W)
	if sum != 0 {
		floats.Scale(1/sum, k.W)
	}
}

// Convolve applies the kernel to src as a "same"-size convolution. Near the
// image edge the kernel is renormalized over its in-bounds support so that
// local noise power is preserved up to boundary truncation.
func (k *Kernel) Convolve(src *Frame) *Frame {
	out := NewFrame(src.Width, src.Height)
	cx := k.Width / 2
	cy := k.Height / 2
	for y := 0; y < src.Height; y++ {
		for x := 0; x < src.Width; x++ {
			acc := 0.0
			wsum := 0.0
			for ky := 0; ky < k.Height; ky++ {
				sy := y + ky - cy
				if sy < 0 || sy >= src.Height {
					continue
				}
				for kx := 0; kx < k.Width; kx++ {
					sx := x + kx - cx
					if sx < 0 || sx >= src.Width {
						continue
					}
					w := k.W[ky*k.Width+kx]
					acc += w * src.Pix[sy*src.Width+sx]
					wsum += w
				}
			}
			if wsum > 0 {
				acc /= wsum
			}
			out.Pix[y*out.Width+x] = acc
		}
	}
	return out
}
