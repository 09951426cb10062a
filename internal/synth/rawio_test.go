package synth

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameRoundTrip(t *testing.T) {
	f := NewFrame(7, 5)
	for i := range f.Pix {
		f.Pix[i] = float64(i) * 0.25
	}
	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, f))
	got, err := ReadFrame(&buf)
	require.NoError(t, err)
	if diff := cmp.Diff(f, got); diff != "" {
		t.Errorf("frame roundtrip (-want +got):\n%s", diff)
	}
}

func TestReadFrameBadMagic(t *testing.T) {
	_, err := ReadFrame(bytes.NewReader([]byte("NOPExxxxxxxxxxxx")))
	assert.ErrorContains(t, err, "bad magic")
}

func TestReadFrameTruncated(t *testing.T) {
	f := NewFrame(4, 4)
	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, f))
	_, err := ReadFrame(bytes.NewReader(buf.Bytes()[:20]))
	assert.Error(t, err)
}

func TestLoadSaveFrame(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frame.tsfr")
	f := NewFrame(3, 2)
	f.Set(2, 1, 42)
	require.NoError(t, SaveFrame(path, f))
	got, err := LoadFrame(path)
	require.NoError(t, err)
	if diff := cmp.Diff(f, got); diff != "" {
		t.Errorf("file roundtrip (-want +got):\n%s", diff)
	}
}
