package denoise

import "github.com/cwbudde/algo-denoise/dsp/core"

// Profile selects the listening profile, which drives both the static
// equalizer curve and the voice-gate timing/floor set.
type Profile int

const (
	// ProfilePlain favors a warm, full rendition with a gentle gate.
	ProfilePlain Profile = iota
	// ProfileClarity boosts the speech band and gates more aggressively.
	ProfileClarity
)

// String returns the profile name.
func (p Profile) String() string {
	switch p {
	case ProfilePlain:
		return "plain"
	case ProfileClarity:
		return "clarity"
	default:
		return "unknown"
	}
}

func (p Profile) valid() bool {
	return p == ProfilePlain || p == ProfileClarity
}

// EstimatorMethod selects the noise-power estimation strategy.
type EstimatorMethod int

const (
	// EstimatorLegacy tracks a slowly creeping per-bin running minimum.
	EstimatorLegacy EstimatorMethod = iota
	// EstimatorAdvanced tracks subwindow minima (minimum statistics).
	EstimatorAdvanced
)

// String returns the estimator method name.
func (m EstimatorMethod) String() string {
	switch m {
	case EstimatorLegacy:
		return "legacy"
	case EstimatorAdvanced:
		return "advanced"
	default:
		return "unknown"
	}
}

func (m EstimatorMethod) valid() bool {
	return m == EstimatorLegacy || m == EstimatorAdvanced
}

// GainLaw selects the per-bin suppression-gain formula.
type GainLaw int

const (
	// GainLawLinear uses magnitude-domain spectral subtraction.
	GainLawLinear GainLaw = iota
	// GainLawLogarithmic is gentler at low SNR and preserves weak signals.
	GainLawLogarithmic
	// GainLawPower is the Wiener-style power subtraction rule.
	GainLawPower
)

// String returns the gain-law name.
func (l GainLaw) String() string {
	switch l {
	case GainLawLinear:
		return "linear"
	case GainLawLogarithmic:
		return "logarithmic"
	case GainLawPower:
		return "power"
	default:
		return "unknown"
	}
}

func (l GainLaw) valid() bool {
	return l == GainLawLinear || l == GainLawLogarithmic || l == GainLawPower
}

// Config is the engine configuration snapshot. It is read-only during a
// block; mutations happen only by draining control messages between blocks.
type Config struct {
	// Enabled switches between the denoised path and delayed bypass.
	Enabled bool
	// Strength is the internal effect amount in [0, 1].
	Strength float64
	// Profile selects equalizer curve and gate character.
	Profile Profile
	// Estimator selects the noise-power estimation strategy.
	Estimator EstimatorMethod
	// GainLaw selects the suppression-gain formula.
	GainLaw GainLaw
	// SmootherEnabled toggles the inter-bin artifact smoother.
	SmootherEnabled bool
	// SmoothingShape in [-2, 2] maps to the advanced estimator's
	// smoothing coefficient.
	SmoothingShape float64
	// BiasShape in [0, 1] maps to the advanced estimator's
	// bias-compensation factor.
	BiasShape float64
	// GateDepth in [0, 1] scales the voice gate's closed-state floor.
	// Zero disables gating entirely.
	GateDepth float64
}

// DefaultConfig returns the configuration active at construction.
func DefaultConfig() Config {
	return Config{
		Enabled:         true,
		Strength:        0.5,
		Profile:         ProfilePlain,
		Estimator:       EstimatorLegacy,
		GainLaw:         GainLawLogarithmic,
		SmootherEnabled: true,
		SmoothingShape:  0,
		BiasShape:       0.5,
		GateDepth:       1,
	}
}

// Message is a single fire-and-forget control update. Nil fields leave the
// corresponding configuration value unchanged; invalid enum values are
// ignored field-wise so the previously active value stays in effect.
//
// Strength carries the control-surface range 0..2 and is halved into the
// internal effect amount.
type Message struct {
	Enabled         *bool
	Strength        *float64
	Reset           bool
	Profile         *Profile
	Estimator       *EstimatorMethod
	GainLaw         *GainLaw
	SmootherEnabled *bool
	SmoothingShape  *float64
	BiasShape       *float64
	GateDepth       *float64
}

// apply folds one message into the snapshot. It reports whether a state
// reset was requested. Within a batch of drained messages the last writer
// for any field wins, which apply provides naturally per call.
func (c *Config) apply(m Message) bool {
	if m.Enabled != nil {
		c.Enabled = *m.Enabled
	}
	if m.Strength != nil {
		c.Strength = core.Clamp(*m.Strength, 0, 2) / 2
	}
	if m.Profile != nil && m.Profile.valid() {
		c.Profile = *m.Profile
	}
	if m.Estimator != nil && m.Estimator.valid() {
		c.Estimator = *m.Estimator
	}
	if m.GainLaw != nil && m.GainLaw.valid() {
		c.GainLaw = *m.GainLaw
	}
	if m.SmootherEnabled != nil {
		c.SmootherEnabled = *m.SmootherEnabled
	}
	if m.SmoothingShape != nil {
		c.SmoothingShape = core.Clamp(*m.SmoothingShape, -2, 2)
	}
	if m.BiasShape != nil {
		c.BiasShape = core.Clamp(*m.BiasShape, 0, 1)
	}
	if m.GateDepth != nil {
		c.GateDepth = core.Clamp(*m.GateDepth, 0, 1)
	}

	return m.Reset
}
