// Package synth fills masked pixels of an astronomical image with
// statistically matched synthetic noise. The image is partitioned into a
// regular grid of stamps; each stamp's sampling region is grown until it
// holds enough unmasked pixels, correlated noise is drawn from the local
// weight map, rescaled to match the sigma-clipped residual variance of the
// real background, and written back over the masked pixels only.
package synth

import (
	"errors"
	"fmt"
)

// ErrShapeMismatch is returned when the input planes do not share one shape.
var ErrShapeMismatch = errors.New("synth: input planes differ in shape")

// Frame is a 2-D image plane stored row-major as a flat float64 slice.
type Frame struct {
	Width  int
	Height int
	Pix    []float64
}

// NewFrame allocates a zero-filled frame of the given dimensions.
func NewFrame(width, height int) *Frame {
	return &Frame{Width: width, Height: height, Pix: make([]float64, width*height)}
}

// Idx returns the flat index of pixel (x, y).
func (f *Frame) Idx(x, y int) int { return y*f.Width + x }

// At returns the pixel value at (x, y).
func (f *Frame) At(x, y int) float64 { return f.Pix[y*f.Width+x] }

// Set writes the pixel value at (x, y).
func (f *Frame) Set(x, y int, v float64) { f.Pix[y*f.Width+x] = v }

// SameShape reports whether two frames have identical dimensions.
func (f *Frame) SameShape(other *Frame) bool {
	return other != nil && f.Width == other.Width && f.Height == other.Height
}

// Clone returns a deep copy of the frame.
func (f *Frame) Clone() *Frame {
	out := NewFrame(f.Width, f.Height)
	copy(out.Pix, f.Pix)
	return out
}

// Window is a rectangular pixel region, half-open: x in [X0,X1), y in [Y0,Y1).
type Window struct {
	X0, Y0 int
	X1, Y1 int
}

// Dx returns the window width in pixels.
func (w Window) Dx() int { return w.X1 - w.X0 }

// Dy returns the window height in pixels.
func (w Window) Dy() int { return w.Y1 - w.Y0 }

// Area returns the pixel count of the window.
func (w Window) Area() int { return w.Dx() * w.Dy() }

// Contains reports whether pixel (x, y) lies inside the window.
func (w Window) Contains(x, y int) bool {
	return x >= w.X0 && x < w.X1 && y >= w.Y0 && y < w.Y1
}

// Clamp restricts the window to the bounds of an width×height image.
func (w Window) Clamp(width, height int) Window {
	if w.X0 < 0 {
		w.X0 = 0
	}
	if w.Y0 < 0 {
		w.Y0 = 0
	}
	if w.X1 > width {
		w.X1 = width
	}
	if w.Y1 > height {
		w.Y1 = height
	}
	return w
}

func (w Window) String() string {
	return fmt.Sprintf("[%d:%d,%d:%d]", w.X0, w.X1, w.Y0, w.Y1)
}

// SubFrame copies the window region out of the frame. The copy is always
// taken so callers can mutate or hand the data to writing functions without
// touching the shared backing store.
func (f *Frame) SubFrame(w Window) *Frame {
	out := NewFrame(w.Dx(), w.Dy())
	for y := w.Y0; y < w.Y1; y++ {
		src := f.Pix[y*f.Width+w.X0 : y*f.Width+w.X1]
		copy(out.Pix[(y-w.Y0)*out.Width:], src)
	}
	return out
}
