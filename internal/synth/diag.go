package synth

import (
	"sync"

	"github.com/okomestudio/tsastro/internal/monitoring"
)

// StampOutcome classifies what happened to a stamp.
type StampOutcome string

const (
	// OutcomeFilled: noise was synthesized and masked pixels overwritten.
	OutcomeFilled StampOutcome = "filled"
	// OutcomeClean: no masked pixels in the fill window, nothing to do.
	OutcomeClean StampOutcome = "clean"
	// OutcomeAllBad: every pixel in the fill window is bad, no reference
	// image value to offset from.
	OutcomeAllBad StampOutcome = "all-bad"
	// OutcomeNoWeight: no usable weight anywhere in the sampling window.
	OutcomeNoWeight StampOutcome = "no-weight"
)

// StampDiag is the per-stamp diagnostic record: one is emitted for every
// stamp a worker processes, successful or skipped.
type StampDiag struct {
	WorkerRank int
	GridRow    int
	GridCol    int
	Fill       Window
	Sampling   Window
	MaskedIn   int // masked pixels inside the fill window
	Outcome    StampOutcome
	Match      MatchResult // zero value unless Outcome == OutcomeFilled
}

// DiagSink receives one record per processed stamp. When the same sink
// value is shared across the workers of a group it must be safe for
// concurrent use.
type DiagSink interface {
	Record(d StampDiag)
}

// LogSink writes one diagnostic line per stamp through the package logger.
type LogSink struct{}

// Record logs the stamp record, flagging skips and fallback substitutions.
func (LogSink) Record(d StampDiag) {
	switch d.Outcome {
	case OutcomeFilled:
		if d.Match.Fallback {
			monitoring.Logf("synth: worker %d stamp (%d,%d) fill=%s sample=%s masked=%d stdEmp=%g stdSyn=%g factor degenerate, substituting 1.0",
				d.WorkerRank, d.GridRow, d.GridCol, d.Fill, d.Sampling, d.MaskedIn, d.Match.StdEmpirical, d.Match.StdSynthetic)
			return
		}
		monitoring.Logf("synth: worker %d stamp (%d,%d) fill=%s sample=%s masked=%d valid=%d rejected=%d stdEmp=%g stdSyn=%g factor=%g",
			d.WorkerRank, d.GridRow, d.GridCol, d.Fill, d.Sampling, d.MaskedIn,
			d.Match.ValidCount, d.Match.RejectedCount, d.Match.StdEmpirical, d.Match.StdSynthetic, d.Match.Factor)
	default:
		monitoring.Logf("synth: worker %d stamp (%d,%d) fill=%s skipped (%s)",
			d.WorkerRank, d.GridRow, d.GridCol, d.Fill, d.Outcome)
	}
}

// CollectSink appends records to a slice, for tests and for the run
// recorder. Safe for concurrent workers.
type CollectSink struct {
	mu      sync.Mutex
	Records []StampDiag
}

func (s *CollectSink) Record(d StampDiag) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Records = append(s.Records, d)
}

// Snapshot returns a copy of the collected records.
func (s *CollectSink) Snapshot() []StampDiag {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]StampDiag(nil), s.Records...)
}
