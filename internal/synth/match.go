package synth

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// MatchResult carries the variance-matching statistics for one stamp.
type MatchResult struct {
	ValidCount    int     // valid pixels in the sampling window
	RejectedCount int     // pixels removed by sigma rejection
	StdEmpirical  float64 // stddev of clipped image-minus-background residuals
	StdSynthetic  float64 // stddev of the synthesized noise field
	Factor        float64 // StdEmpirical / StdSynthetic, 1.0 on degeneracy
	Fallback      bool    // true when the 1.0 substitution was applied
}

// MatchVariance computes the scale factor that brings the synthetic noise
// field to the empirical residual amplitude of the sampling window. The
// residuals image-minus-background are taken over valid (unmasked, not bad)
// pixels only and clipped with spec before the stddev. A NaN factor (empty
// surviving sample, zero variance or synthesis degeneracy) is substituted
// with 1.0 and flagged; the substitution leaves the noise at its raw
// synthesized amplitude, which is reported rather than hidden.
func MatchVariance(img, bg, objMask, badMask *Frame, sampling Window, noise *Frame, spec RejectionSpec) MatchResult {
	diffs := make([]float64, 0, sampling.Area())
	for y := sampling.Y0; y < sampling.Y1; y++ {
		row := y * img.Width
		for x := sampling.X0; x < sampling.X1; x++ {
			if objMask.Pix[row+x] == 0 && badMask.Pix[row+x] == 0 {
				diffs = append(diffs, img.Pix[row+x]-bg.Pix[row+x])
			}
		}
	}

	res := MatchResult{ValidCount: len(diffs)}
	survived := SigmaReject(diffs, spec)
	res.RejectedCount = len(diffs) - len(survived)
	res.StdEmpirical = stat.StdDev(survived, nil)
	res.StdSynthetic = stat.StdDev(noise.Pix, nil)

	res.Factor = res.StdEmpirical / res.StdSynthetic
	if math.IsNaN(res.Factor) || math.IsInf(res.Factor, 0) {
		res.Factor = 1.0
		res.Fallback = true
	}
	return res
}
