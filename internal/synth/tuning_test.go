package synth

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTuningFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tuning.json")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadTuningPartial(t *testing.T) {
	path := writeTuningFile(t, `{"min_pixel": 200, "rejection": "none"}`)
	tn, err := LoadTuning(path)
	require.NoError(t, err)

	p, err := tn.Apply(DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, 200, p.MinPixel)
	assert.Empty(t, p.Rejection)
	// untouched fields keep their defaults
	assert.Equal(t, 2, p.GrowIncrement)
}

func TestLoadTuningRequiresJSONExtension(t *testing.T) {
	_, err := LoadTuning("tuning.yaml")
	assert.ErrorContains(t, err, ".json")
}

func TestTuningSmoothingModes(t *testing.T) {
	t.Run("gaussian", func(t *testing.T) {
		path := writeTuningFile(t, `{"gaussian_sigma_x": 1.5, "gaussian_sigma_y": 2}`)
		tn, err := LoadTuning(path)
		require.NoError(t, err)
		p, err := tn.Apply(DefaultParams())
		require.NoError(t, err)
		assert.Equal(t, GaussianSmoothing(1.5, 2), p.Smoothing)
	})

	t.Run("boxcar", func(t *testing.T) {
		path := writeTuningFile(t, `{"boxcar_width_x": 3, "boxcar_width_y": 3}`)
		tn, err := LoadTuning(path)
		require.NoError(t, err)
		p, err := tn.Apply(DefaultParams())
		require.NoError(t, err)
		assert.Equal(t, BoxcarSmoothing(3, 3), p.Smoothing)
	})

	t.Run("both is an error", func(t *testing.T) {
		path := writeTuningFile(t, `{"gaussian_sigma_x": 1, "boxcar_width_x": 3}`)
		tn, err := LoadTuning(path)
		require.NoError(t, err)
		_, err = tn.Apply(DefaultParams())
		assert.Error(t, err)
	})
}

func TestTuningUnknownRejection(t *testing.T) {
	path := writeTuningFile(t, `{"rejection": "everything"}`)
	tn, err := LoadTuning(path)
	require.NoError(t, err)
	_, err = tn.Apply(DefaultParams())
	assert.ErrorContains(t, err, "unknown rejection preset")
}

func TestNilTuningApply(t *testing.T) {
	var tn *Tuning
	p, err := tn.Apply(DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, DefaultParams().MinPixel, p.MinPixel)
}
