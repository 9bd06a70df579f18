package denoise

// Gate transition threshold on the smoothed flatness score. The effective
// threshold is lowered slightly as effect strength grows so the gate is
// harder to hold open at high suppression settings.
const (
	gateBaseThreshold   = 0.45
	gateThresholdOffset = 0.1

	gateAttackCoeff = 0.02
)

// gateCharacter is the per-profile gate tuning set.
type gateCharacter struct {
	holdMs       float64
	releaseCoeff float64
	floorMin     float64
}

// The gentle profile holds longer, releases slower, and keeps more
// background residual than the aggressive one.
var gateCharacters = [2]gateCharacter{
	ProfilePlain:   {holdMs: 400, releaseCoeff: 5e-4, floorMin: 0.15},
	ProfileClarity: {holdMs: 250, releaseCoeff: 1.2e-3, floorMin: 0.05},
}

// GateMetrics reports the gate's externally visible state for metering.
type GateMetrics struct {
	// Open reports whether voice activity currently holds the gate open.
	Open bool
	// Multiplier is the current smoothed output-gain scalar in [0, 1].
	Multiplier float64
}

// voiceGate is the hysteretic soft gate: a per-frame state machine driving
// a per-sample one-pole gain multiplier. Opening is immediate with a fast
// attack; closing waits out a hold interval and then fades at the profile's
// release rate, so the transition is audible as a fade rather than a click.
type voiceGate struct {
	sampleRate float64

	threshold    float64
	holdSamples  int
	releaseCoeff float64
	minGain      float64

	open   bool
	hold   int
	mult   float64
	target float64
}

func newVoiceGate(sampleRate float64) *voiceGate {
	g := &voiceGate{sampleRate: sampleRate}
	g.configure(ProfilePlain, 1, 0.5)
	g.reset()

	return g
}

// configure derives the threshold, hold duration, release rate, and closed
// floor from profile, gate depth, and effect strength. The effective closed
// gain is 1 - depth*(1 - profileFloor): depth 0 pins the multiplier at 1.
func (g *voiceGate) configure(p Profile, depth, strength float64) {
	if !p.valid() {
		p = ProfilePlain
	}
	ch := gateCharacters[p]

	g.threshold = gateBaseThreshold - gateThresholdOffset*strength
	g.holdSamples = int(ch.holdMs / 1000 * g.sampleRate)
	g.releaseCoeff = ch.releaseCoeff
	g.minGain = 1 - depth*(1-ch.floorMin)

	if g.open {
		g.target = 1
	} else {
		g.target = g.minGain
	}
}

// observe advances the state machine for one analysis frame. elapsed is the
// number of samples processed since the previous frame.
func (g *voiceGate) observe(flatness float64, elapsed int) {
	if flatness < g.threshold {
		g.open = true
		g.hold = g.holdSamples
		g.target = 1
		return
	}

	if g.hold > 0 {
		g.hold -= elapsed
		if g.hold > 0 {
			return
		}
		g.hold = 0
	}

	g.open = false
	g.target = g.minGain
}

// step advances the multiplier one exponential step toward its target and
// returns the new value. Attack applies when rising, release when falling.
func (g *voiceGate) step() float64 {
	coeff := g.releaseCoeff
	if g.target > g.mult {
		coeff = gateAttackCoeff
	}

	g.mult += (g.target - g.mult) * coeff

	return g.mult
}

// metrics returns the current metering snapshot.
func (g *voiceGate) metrics() GateMetrics {
	return GateMetrics{Open: g.open, Multiplier: g.mult}
}

func (g *voiceGate) reset() {
	g.open = true
	g.hold = g.holdSamples
	g.mult = 1
	g.target = 1
}
