package rdw

import (
	"fmt"
	"math"
)

// Gains bounds the three redirection channels.
type Gains struct {
	MaxTrans float64 `yaml:"max_trans" mapstructure:"max_trans"`
	MinTrans float64 `yaml:"min_trans" mapstructure:"min_trans"`
	MaxRot   float64 `yaml:"max_rot" mapstructure:"max_rot"`
	MinRot   float64 `yaml:"min_rot" mapstructure:"min_rot"`
	// CurvatureRadius is in metres. +Inf disables curvature.
	CurvatureRadius float64 `yaml:"curvature_radius" mapstructure:"curvature_radius"`
}

func DefaultGains() Gains {
	return Gains{
		MaxTrans:        0.26,
		MinTrans:        -0.14,
		MaxRot:          0.49,
		MinRot:          -0.2,
		CurvatureRadius: 7.5,
	}
}

func (g Gains) Validate() error {
	if g.MinTrans > g.MaxTrans {
		return fmt.Errorf("%w: min_trans %g exceeds max_trans %g", ErrInvalidConfig, g.MinTrans, g.MaxTrans)
	}
	if g.MinRot > g.MaxRot {
		return fmt.Errorf("%w: min_rot %g exceeds max_rot %g", ErrInvalidConfig, g.MinRot, g.MaxRot)
	}
	if g.CurvatureRadius <= 0 || math.IsNaN(g.CurvatureRadius) {
		return fmt.Errorf("%w: curvature_radius must be positive", ErrInvalidConfig)
	}
	return nil
}

// GainScale multiplies each channel. A zero curvature scale switches
// curvature off.
type GainScale struct {
	Translation float64
	Rotation    float64
	Curvature   float64
}

// UnitScale leaves gains untouched.
var UnitScale = GainScale{1, 1, 1}

func (s GainScale) String() string {
	return fmt.Sprintf("(%g, %g, %g)", s.Translation, s.Rotation, s.Curvature)
}

// Scaled returns g with every bound multiplied by its channel scale.
func (g Gains) Scaled(s GainScale) Gains {
	out := Gains{
		MaxTrans: g.MaxTrans * s.Translation,
		MinTrans: g.MinTrans * s.Translation,
		MaxRot:   g.MaxRot * s.Rotation,
		MinRot:   g.MinRot * s.Rotation,
	}
	if s.Curvature <= 0 {
		out.CurvatureRadius = math.Inf(1)
	} else {
		out.CurvatureRadius = g.CurvatureRadius / s.Curvature
	}
	return out
}
