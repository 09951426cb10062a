package synth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// alternating +a/-a residuals give an exactly known stddev ratio.
func TestMatchVarianceKnownRatio(t *testing.T) {
	img := NewFrame(10, 10)
	bg := NewFrame(10, 10)
	obj, bad := maskPair(10, 10)
	for i := range img.Pix {
		if i%2 == 0 {
			img.Pix[i] = 1
		} else {
			img.Pix[i] = -1
		}
	}
	noise := NewFrame(10, 10)
	for i := range noise.Pix {
		if i%2 == 0 {
			noise.Pix[i] = 2
		} else {
			noise.Pix[i] = -2
		}
	}

	win := Window{X0: 0, Y0: 0, X1: 10, Y1: 10}
	m := MatchVariance(img, bg, obj, bad, win, noise, NoRejection())
	require.False(t, m.Fallback)
	assert.Equal(t, 100, m.ValidCount)
	assert.Equal(t, 0, m.RejectedCount)
	assert.InDelta(t, 0.5, m.Factor, 1e-12)
}

func TestMatchVarianceRejectsOutlier(t *testing.T) {
	img := NewFrame(10, 10)
	bg := NewFrame(10, 10)
	obj, bad := maskPair(10, 10)
	for i := range img.Pix {
		if i%2 == 0 {
			img.Pix[i] = 1
		} else {
			img.Pix[i] = -1
		}
	}
	img.Pix[37] = 1000 // cosmic-ray style outlier
	noise := NewFrame(10, 10)
	for i := range noise.Pix {
		if i%2 == 0 {
			noise.Pix[i] = 2
		} else {
			noise.Pix[i] = -2
		}
	}

	win := Window{X0: 0, Y0: 0, X1: 10, Y1: 10}
	m := MatchVariance(img, bg, obj, bad, win, noise, DefaultRejection())
	require.False(t, m.Fallback)
	assert.Equal(t, 1, m.RejectedCount)
	assert.InDelta(t, 0.5, m.Factor, 0.01)
}

func TestMatchVarianceExcludesMaskedPixels(t *testing.T) {
	img := NewFrame(6, 6)
	bg := NewFrame(6, 6)
	obj, bad := maskPair(6, 6)
	for i := range img.Pix {
		img.Pix[i] = float64(i % 3)
	}
	obj.Pix[0] = 1
	bad.Pix[1] = 1
	noise := NewFrame(6, 6)
	noise.Pix[0] = 1 // keep synthetic stddev nonzero

	win := Window{X0: 0, Y0: 0, X1: 6, Y1: 6}
	m := MatchVariance(img, bg, obj, bad, win, noise, NoRejection())
	assert.Equal(t, 34, m.ValidCount)
}

func TestMatchVarianceFallback(t *testing.T) {
	img := NewFrame(4, 4) // constant zero residuals
	bg := NewFrame(4, 4)
	obj, bad := maskPair(4, 4)
	noise := NewFrame(4, 4) // constant noise: 0/0 is NaN

	win := Window{X0: 0, Y0: 0, X1: 4, Y1: 4}
	m := MatchVariance(img, bg, obj, bad, win, noise, NoRejection())
	assert.True(t, m.Fallback)
	assert.Equal(t, 1.0, m.Factor)
}

func TestMatchVarianceInfFallback(t *testing.T) {
	img := NewFrame(4, 4)
	for i := range img.Pix {
		img.Pix[i] = float64(i)
	}
	bg := NewFrame(4, 4)
	obj, bad := maskPair(4, 4)
	noise := NewFrame(4, 4) // zero synthetic stddev, nonzero empirical

	win := Window{X0: 0, Y0: 0, X1: 4, Y1: 4}
	m := MatchVariance(img, bg, obj, bad, win, noise, NoRejection())
	assert.True(t, m.Fallback)
	assert.Equal(t, 1.0, m.Factor)
}
