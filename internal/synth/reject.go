package synth

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// RejectionStage is one sigma-clipping pass. A NaN bound is treated as
// absent, so one-sided clips are expressed by leaving the other side NaN.
type RejectionStage struct {
	Low  float64 // reject values below mean - Low*stddev; NaN disables
	High float64 // reject values above mean + High*stddev; NaN disables
}

// RejectionSpec is an ordered sequence of clipping stages applied in turn,
// each recomputing mean and stddev from the sample surviving so far.
type RejectionSpec []RejectionStage

// DefaultRejection returns the standard policy: three successive one-sided
// clips at +4 sigma.
func DefaultRejection() RejectionSpec {
	s := RejectionStage{Low: math.NaN(), High: 4}
	return RejectionSpec{s, s, s}
}

// NoRejection returns an empty spec; SigmaReject then returns its input.
func NoRejection() RejectionSpec { return nil }

// RejectionByName resolves a named preset. Known names are "default" and
// "none"; anything else reports false.
func RejectionByName(name string) (RejectionSpec, bool) {
	switch name {
	case "default":
		return DefaultRejection(), true
	case "none", "":
		return NoRejection(), true
	}
	return nil, false
}

// SigmaReject iteratively trims outliers from sample according to spec and
// returns the surviving values. The input slice is not modified. A stage
// that removes nothing stops the iteration early. If the running sample
// becomes empty the empty slice is returned; statistics over it are NaN and
// the caller must handle that.
func SigmaReject(sample []float64, spec RejectionSpec) []float64 {
	cur := append([]float64(nil), sample...)
	for _, stage := range spec {
		// stddev needs at least two survivors
		if len(cur) < 2 {
			break
		}
		mean, std := stat.MeanStdDev(cur, nil)
		lo := math.Inf(-1)
		hi := math.Inf(1)
		if !math.IsNaN(stage.Low) {
			lo = mean - stage.Low*std
		}
		if !math.IsNaN(stage.High) {
			hi = mean + stage.High*std
		}
		kept := cur[:0]
		for _, v := range cur {
			if v >= lo && v <= hi {
				kept = append(kept, v)
			}
		}
		if len(kept) == len(cur) {
			break
		}
		cur = kept
	}
	return cur
}
