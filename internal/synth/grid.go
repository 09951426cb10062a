package synth

// StampGrid holds the stamp center coordinates for an image. Centers are
// spaced 2h+1 apart starting at offset h so that the fill windows tile the
// image exactly; the trailing row/column is clamped at the image edge.
type StampGrid struct {
	HalfWidth  int
	RowCenters []int // y coordinate per grid row
	ColCenters []int // x coordinate per grid column
}

// NewStampGrid partitions a width×height image into stamp centers for the
// given fill half-width. The grid is computed once by the coordinator and
// broadcast to all workers, never recomputed per worker.
func NewStampGrid(width, height, halfWidth int) *StampGrid {
	return &StampGrid{
		HalfWidth:  halfWidth,
		RowCenters: stampCenters(height, halfWidth),
		ColCenters: stampCenters(width, halfWidth),
	}
}

// stampCenters spaces centers step=2h+1 apart starting at h, covering the
// full extent by ceiling division.
func stampCenters(extent, halfWidth int) []int {
	step := 2*halfWidth + 1
	n := (extent + step - 1) / step
	centers := make([]int, n)
	for i := range centers {
		centers[i] = halfWidth + i*step
	}
	return centers
}

// FillWindow returns the fixed fill window of the stamp centered at
// (cx, cy), clamped to the image bounds.
func (g *StampGrid) FillWindow(cx, cy, width, height int) Window {
	h := g.HalfWidth
	return Window{X0: cx - h, Y0: cy - h, X1: cx + h + 1, Y1: cy + h + 1}.Clamp(width, height)
}

// RowBand returns the image-row span [Y0, Y1) covered by the fill windows of
// grid row i. Bands of successive grid rows are disjoint and tile the image.
func (g *StampGrid) RowBand(i, height int) (y0, y1 int) {
	step := 2*g.HalfWidth + 1
	y0 = i * step
	y1 = y0 + step
	if y1 > height {
		y1 = height
	}
	return y0, y1
}

// encode flattens the grid for the coordinator broadcast.
func (g *StampGrid) encode() []int {
	out := make([]int, 0, 2+len(g.RowCenters)+len(g.ColCenters))
	out = append(out, g.HalfWidth, len(g.RowCenters))
	out = append(out, g.RowCenters...)
	out = append(out, g.ColCenters...)
	return out
}

// decodeGrid reverses encode.
func decodeGrid(data []int) *StampGrid {
	halfWidth := data[0]
	nRows := data[1]
	rows := append([]int(nil), data[2:2+nRows]...)
	cols := append([]int(nil), data[2+nRows:]...)
	return &StampGrid{HalfWidth: halfWidth, RowCenters: rows, ColCenters: cols}
}
