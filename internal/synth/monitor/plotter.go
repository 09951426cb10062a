// Package monitor renders post-run views of stamp diagnostics.
package monitor

import (
	"fmt"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/okomestudio/tsastro/internal/synth"
)

// RunPlotter writes per-run diagnostic plots as PNG files. Plots are built
// from the collected stamp records after a run completes.
type RunPlotter struct {
	outputDir string
}

// NewRunPlotter creates a plotter writing into outputDir (created if
// missing).
func NewRunPlotter(outputDir string) (*RunPlotter, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create plot output dir: %w", err)
	}
	return &RunPlotter{outputDir: outputDir}, nil
}

// Plot renders the factor and window-growth plots for one run. Skipped
// stamps are excluded from the factor plot but counted in the growth plot.
func (rp *RunPlotter) Plot(runID string, diags []synth.StampDiag) error {
	factorPts := make(plotter.XYs, 0, len(diags))
	growthPts := make(plotter.XYs, 0, len(diags))
	for i, d := range diags {
		if d.Outcome == synth.OutcomeFilled {
			factorPts = append(factorPts, plotter.XY{X: float64(i), Y: d.Match.Factor})
		}
		if d.Fill.Area() > 0 {
			growthPts = append(growthPts, plotter.XY{
				X: float64(i),
				Y: float64(d.Sampling.Area()) / float64(d.Fill.Area()),
			})
		}
	}

	pFactor := plot.New()
	pFactor.Title.Text = fmt.Sprintf("Variance-matching factor (run %s)", runID)
	pFactor.X.Label.Text = "stamp index"
	pFactor.Y.Label.Text = "factor"
	if len(factorPts) > 0 {
		sc, err := plotter.NewScatter(factorPts)
		if err != nil {
			return fmt.Errorf("build factor scatter: %w", err)
		}
		sc.Radius = vg.Points(2)
		pFactor.Add(sc)
	}
	factorFile := filepath.Join(rp.outputDir, fmt.Sprintf("run_%s_factor.png", runID))
	if err := pFactor.Save(10*vg.Inch, 5*vg.Inch, factorFile); err != nil {
		return fmt.Errorf("save factor plot: %w", err)
	}

	pGrowth := plot.New()
	pGrowth.Title.Text = fmt.Sprintf("Sampling-window growth (run %s)", runID)
	pGrowth.X.Label.Text = "stamp index"
	pGrowth.Y.Label.Text = "sampling area / fill area"
	if len(growthPts) > 0 {
		sc, err := plotter.NewScatter(growthPts)
		if err != nil {
			return fmt.Errorf("build growth scatter: %w", err)
		}
		sc.Radius = vg.Points(2)
		pGrowth.Add(sc)
	}
	growthFile := filepath.Join(rp.outputDir, fmt.Sprintf("run_%s_growth.png", runID))
	if err := pGrowth.Save(10*vg.Inch, 5*vg.Inch, growthFile); err != nil {
		return fmt.Errorf("save growth plot: %w", err)
	}
	return nil
}
