package synth

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestFrameAccessors(t *testing.T) {
	f := NewFrame(5, 3)
	f.Set(4, 2, 7.5)
	assert.Equal(t, 7.5, f.At(4, 2))
	assert.Equal(t, 14, f.Idx(4, 2))
	assert.Equal(t, 15, len(f.Pix))
}

func TestFrameSameShape(t *testing.T) {
	f := NewFrame(5, 3)
	assert.True(t, f.SameShape(NewFrame(5, 3)))
	assert.False(t, f.SameShape(NewFrame(3, 5)))
	assert.False(t, f.SameShape(nil))
}

func TestFrameCloneIsDeep(t *testing.T) {
	f := NewFrame(2, 2)
	f.Set(0, 0, 1)
	c := f.Clone()
	c.Set(0, 0, 9)
	assert.Equal(t, 1.0, f.At(0, 0))
}

func TestSubFrameCopies(t *testing.T) {
	f := NewFrame(4, 4)
	for i := range f.Pix {
		f.Pix[i] = float64(i)
	}
	sub := f.SubFrame(Window{X0: 1, Y0: 2, X1: 3, Y1: 4})
	want := &Frame{Width: 2, Height: 2, Pix: []float64{9, 10, 13, 14}}
	if diff := cmp.Diff(want, sub); diff != "" {
		t.Errorf("sub-frame (-want +got):\n%s", diff)
	}
	// writes to the copy must not reach the source
	sub.Set(0, 0, -1)
	assert.Equal(t, 9.0, f.At(1, 2))
}

func TestWindowGeometry(t *testing.T) {
	w := Window{X0: 2, Y0: 3, X1: 7, Y1: 5}
	assert.Equal(t, 5, w.Dx())
	assert.Equal(t, 2, w.Dy())
	assert.Equal(t, 10, w.Area())
	assert.True(t, w.Contains(2, 3))
	assert.False(t, w.Contains(7, 3))

	clamped := Window{X0: -3, Y0: -1, X1: 12, Y1: 9}.Clamp(10, 8)
	assert.Equal(t, Window{X0: 0, Y0: 0, X1: 10, Y1: 8}, clamped)
}
