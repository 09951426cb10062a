package synth

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat"
)

func constWeight(width, height int, w float64) *Frame {
	f := NewFrame(width, height)
	for i := range f.Pix {
		f.Pix[i] = w
	}
	return f
}

func TestSynthesizeShape(t *testing.T) {
	ns := NewNoiseSynthesizer(NoSmoothing(), 0, rand.NewSource(1))
	noise, err := ns.Synthesize(constWeight(13, 7, 1))
	require.NoError(t, err)
	assert.Equal(t, 13, noise.Width)
	assert.Equal(t, 7, noise.Height)
}

func TestSynthesizeDeterministic(t *testing.T) {
	w := constWeight(16, 16, 2)
	a, err := NewNoiseSynthesizer(NoSmoothing(), 0, rand.NewSource(42)).Synthesize(w)
	require.NoError(t, err)
	b, err := NewNoiseSynthesizer(NoSmoothing(), 0, rand.NewSource(42)).Synthesize(w)
	require.NoError(t, err)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("same seed must reproduce the noise field (-a +b):\n%s", diff)
	}
}

func TestSynthesizeAmplitudeTracksWeight(t *testing.T) {
	// weight 4 means sigma 0.5; the sample stddev over a large field
	// should land close to it
	noise, err := NewNoiseSynthesizer(NoSmoothing(), 0, rand.NewSource(7)).Synthesize(constWeight(128, 128, 4))
	require.NoError(t, err)
	assert.InDelta(t, 0.5, stat.StdDev(noise.Pix, nil), 0.02)
}

func TestSynthesizeNoUsableWeight(t *testing.T) {
	w := NewFrame(8, 8) // all zero
	_, err := NewNoiseSynthesizer(NoSmoothing(), 0, rand.NewSource(1)).Synthesize(w)
	assert.ErrorIs(t, err, ErrNoUsableWeight)

	for i := range w.Pix {
		w.Pix[i] = math.Inf(1)
	}
	_, err = NewNoiseSynthesizer(NoSmoothing(), 0, rand.NewSource(1)).Synthesize(w)
	assert.ErrorIs(t, err, ErrNoUsableWeight)
}

func TestSigmaFieldMedianSubstitution(t *testing.T) {
	w := constWeight(4, 4, 4) // sigma 0.5 everywhere
	w.Pix[0] = 0              // unusable
	w.Pix[5] = math.NaN()     // unusable
	w.Pix[10] = -3            // unusable

	sigma, err := sigmaField(w)
	require.NoError(t, err)
	for i, s := range sigma.Pix {
		assert.InDelta(t, 0.5, s, 1e-12, "pixel %d", i)
	}
}

func TestSynthesizeZoomShape(t *testing.T) {
	noise, err := NewNoiseSynthesizer(NoSmoothing(), 3, rand.NewSource(5)).Synthesize(constWeight(10, 7, 1))
	require.NoError(t, err)
	assert.Equal(t, 10, noise.Width)
	assert.Equal(t, 7, noise.Height)
}

func TestSynthesizeSmoothingReducesVariance(t *testing.T) {
	w := constWeight(96, 96, 1)
	raw, err := NewNoiseSynthesizer(NoSmoothing(), 0, rand.NewSource(11)).Synthesize(w)
	require.NoError(t, err)
	smoothed, err := NewNoiseSynthesizer(BoxcarSmoothing(5, 5), 0, rand.NewSource(11)).Synthesize(w)
	require.NoError(t, err)
	assert.Equal(t, raw.Width, smoothed.Width)
	assert.Equal(t, raw.Height, smoothed.Height)
	// averaging 25 independent draws shrinks the stddev by about 5x
	assert.Less(t, stat.StdDev(smoothed.Pix, nil), 0.5*stat.StdDev(raw.Pix, nil))
}

func TestMedian(t *testing.T) {
	assert.Equal(t, 3.0, median([]float64{5, 1, 3}))
	assert.Equal(t, 2.5, median([]float64{4, 1, 2, 3}))
	assert.Equal(t, 7.0, median([]float64{7}))
}

func TestResampleBilinearConstant(t *testing.T) {
	src := constWeight(3, 3, 4.25)
	out := resampleBilinear(src, 9, 10)
	require.Equal(t, 9, out.Width)
	require.Equal(t, 10, out.Height)
	for i, v := range out.Pix {
		assert.InDelta(t, 4.25, v, 1e-12, "pixel %d", i)
	}
}
