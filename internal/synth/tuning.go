package synth

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Tuning is the JSON form of Params for file-based configuration. Fields
// are pointers so a partial file overrides only what it names; everything
// else keeps its default. The Gaussian/boxcar pair mirrors the CLI flags:
// naming both is a configuration error surfaced by Apply.
type Tuning struct {
	FillHalfWidth     *int     `json:"fill_half_width,omitempty"`
	GrowIncrement     *int     `json:"grow_increment,omitempty"`
	MinPixel          *int     `json:"min_pixel,omitempty"`
	MaxGrowIterations *int     `json:"max_grow_iterations,omitempty"`
	GaussianSigmaX    *float64 `json:"gaussian_sigma_x,omitempty"`
	GaussianSigmaY    *float64 `json:"gaussian_sigma_y,omitempty"`
	BoxcarWidthX      *float64 `json:"boxcar_width_x,omitempty"`
	BoxcarWidthY      *float64 `json:"boxcar_width_y,omitempty"`
	Zoom              *int     `json:"zoom,omitempty"`
	Rejection         *string  `json:"rejection,omitempty"` // preset name: "default" or "none"
	Seed              *uint64  `json:"seed,omitempty"`
}

// LoadTuning reads a Tuning from a JSON file. Omitted fields stay nil, so
// partial configs are safe.
func LoadTuning(path string) (*Tuning, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("tuning file must have .json extension, got %q", ext)
	}
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read tuning file: %w", err)
	}
	t := &Tuning{}
	if err := json.Unmarshal(data, t); err != nil {
		return nil, fmt.Errorf("failed to parse tuning file: %w", err)
	}
	return t, nil
}

// Apply overlays the tuning onto p and returns the result.
func (t *Tuning) Apply(p Params) (Params, error) {
	if t == nil {
		return p, nil
	}
	if t.FillHalfWidth != nil {
		p.FillHalfWidth = *t.FillHalfWidth
	}
	if t.GrowIncrement != nil {
		p.GrowIncrement = *t.GrowIncrement
	}
	if t.MinPixel != nil {
		p.MinPixel = *t.MinPixel
	}
	if t.MaxGrowIterations != nil {
		p.MaxGrowIterations = *t.MaxGrowIterations
	}
	if t.Zoom != nil {
		p.Zoom = *t.Zoom
	}
	if t.Seed != nil {
		p.Seed = *t.Seed
	}
	gauss := t.GaussianSigmaX != nil || t.GaussianSigmaY != nil
	boxcar := t.BoxcarWidthX != nil || t.BoxcarWidthY != nil
	if gauss && boxcar {
		return p, fmt.Errorf("tuning names both gaussian and boxcar smoothing; pick one")
	}
	if gauss {
		sx, sy := 0.0, 0.0
		if t.GaussianSigmaX != nil {
			sx = *t.GaussianSigmaX
		}
		if t.GaussianSigmaY != nil {
			sy = *t.GaussianSigmaY
		}
		p.Smoothing = GaussianSmoothing(sx, sy)
	}
	if boxcar {
		wx, wy := 0.0, 0.0
		if t.BoxcarWidthX != nil {
			wx = *t.BoxcarWidthX
		}
		if t.BoxcarWidthY != nil {
			wy = *t.BoxcarWidthY
		}
		p.Smoothing = BoxcarSmoothing(wx, wy)
	}
	if t.Rejection != nil {
		spec, ok := RejectionByName(*t.Rejection)
		if !ok {
			return p, fmt.Errorf("unknown rejection preset %q", *t.Rejection)
		}
		p.Rejection = spec
	}
	return p, nil
}
