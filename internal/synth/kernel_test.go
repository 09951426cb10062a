package synth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
)

func TestGaussianKernel(t *testing.T) {
	k := GaussianSmoothing(1.5, 1).BuildKernel()
	require.NotNil(t, k)

	// ±3 sigma support, ceil-rounded: 2*ceil(4.5)+1 = 11, 2*3+1 = 7
	assert.Equal(t, 11, k.Width)
	assert.Equal(t, 7, k.Height)
	assert.InDelta(t, 1.0, floats.Sum(k.W), 1e-12, "kernel must sum to 1")

	// peak at the center, symmetric about it
	center := (k.Height/2)*k.Width + k.Width/2
	for i, w := range k.W {
		if i != center {
			assert.Less(t, w, k.W[center])
		}
		mirror := len(k.W) - 1 - i
		assert.InDelta(t, k.W[mirror], w, 1e-12)
	}
}

func TestBoxcarKernel(t *testing.T) {
	k := BoxcarSmoothing(3, 2.5).BuildKernel()
	require.NotNil(t, k)
	assert.Equal(t, 3, k.Width)
	assert.Equal(t, 3, k.Height, "fractional width rounds up")
	for _, w := range k.W {
		assert.InDelta(t, 1.0/9.0, w, 1e-12)
	}
}

func TestNoSmoothingKernel(t *testing.T) {
	assert.Nil(t, NoSmoothing().BuildKernel())
}

// Edge renormalization must keep a constant field constant, including at the
// borders where the kernel support is truncated.
func TestConvolvePreservesConstant(t *testing.T) {
	k := GaussianSmoothing(1, 1).BuildKernel()
	src := NewFrame(9, 9)
	for i := range src.Pix {
		src.Pix[i] = 5.0
	}
	out := k.Convolve(src)
	require.Equal(t, 9, out.Width)
	require.Equal(t, 9, out.Height)
	for i, v := range out.Pix {
		assert.InDelta(t, 5.0, v, 1e-12, "pixel %d", i)
	}
}

func TestConvolveSmooths(t *testing.T) {
	// a delta function spreads but keeps unit mass away from edges
	k := BoxcarSmoothing(3, 3).BuildKernel()
	src := NewFrame(9, 9)
	src.Set(4, 4, 9.0)
	out := k.Convolve(src)
	for y := 3; y <= 5; y++ {
		for x := 3; x <= 5; x++ {
			assert.InDelta(t, 1.0, out.At(x, y), 1e-12)
		}
	}
	assert.InDelta(t, 0, out.At(0, 0), 1e-12)
}
