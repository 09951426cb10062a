package synth

// countValid counts pixels in w that are neither object-masked nor bad.
func countValid(objMask, badMask *Frame, w Window) int {
	n := 0
	for y := w.Y0; y < w.Y1; y++ {
		row := y * objMask.Width
		for x := w.X0; x < w.X1; x++ {
			if objMask.Pix[row+x] == 0 && badMask.Pix[row+x] == 0 {
				n++
			}
		}
	}
	return n
}

// GrowWindow expands the fill window symmetrically by increment grow until
// it contains at least minPixel valid (unmasked, not bad) pixels. Each
// iteration checks, in order: the iteration cap, growth stalled against the
// image edges, and the pixel target. maxIter <= 0 means uncapped; the stall
// check still bounds the loop by the image extent. The common case on a
// well-exposed frame is that the fill window already meets the target and is
// returned unchanged.
func GrowWindow(objMask, badMask *Frame, fill Window, grow, minPixel, maxIter int) Window {
	if grow < 1 {
		grow = 1
	}
	width, height := objMask.Width, objMask.Height
	cur := fill
	for iter := 0; ; iter++ {
		if maxIter > 0 && iter >= maxIter {
			return cur
		}
		if countValid(objMask, badMask, cur) >= minPixel {
			return cur
		}
		next := Window{
			X0: cur.X0 - grow, Y0: cur.Y0 - grow,
			X1: cur.X1 + grow, Y1: cur.Y1 + grow,
		}.Clamp(width, height)
		if next == cur {
			// clamped against every edge; no more pixels to gain
			return cur
		}
		cur = next
	}
}
