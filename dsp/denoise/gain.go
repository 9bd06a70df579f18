package denoise

import "math"

const (
	// Over-subtraction grows from 1 to 3 across the strength range.
	overSubtractSpan = 2.0

	// Gain floor shrinks from 0.08 to 0.01 across the strength range.
	gainFloorMax  = 0.08
	gainFloorSpan = 0.07

	// Temporal smoothing weight of the previous frame's gain grows from
	// 0.5 to 0.8 across the strength range.
	gainSmoothBase = 0.5
	gainSmoothSpan = 0.3
)

// gainCalculator derives a per-bin suppression gain from the signal/noise
// ratio using the selected gain law, with a strength-dependent floor,
// temporal smoothing against the previous frame, and a dry/wet blend.
type gainCalculator struct {
	law      GainLaw
	strength float64

	overSubtract float64
	floor        float64
	smoothWeight float64

	prev []float64
}

func newGainCalculator(numBins int) *gainCalculator {
	g := &gainCalculator{prev: make([]float64, numBins)}
	g.configure(GainLawLogarithmic, 0.5)
	g.reset()

	return g
}

// configure rebinds the law and recomputes strength-derived parameters.
func (g *gainCalculator) configure(law GainLaw, strength float64) {
	g.law = law
	g.strength = strength
	g.overSubtract = 1 + overSubtractSpan*strength
	g.floor = gainFloorMax - gainFloorSpan*strength
	g.smoothWeight = gainSmoothBase + gainSmoothSpan*strength
}

// compute fills dst with the final per-bin gain for one frame.
func (g *gainCalculator) compute(dst, power, noise []float64) {
	for k, p := range power {
		n := noise[k]*g.overSubtract + epsilon
		invSNR := n / (p + epsilon)

		var gain float64
		switch g.law {
		case GainLawLinear:
			gain = 1 - math.Sqrt(invSNR)
		case GainLawLogarithmic:
			gain = 1 - math.Log1p(invSNR)/math.Ln2
		case GainLawPower:
			gain = math.Sqrt(math.Max(1-invSNR, 0))
		default:
			gain = 1
		}

		if gain < g.floor {
			gain = g.floor
		}
		if gain > 1 {
			gain = 1
		}

		gain = g.smoothWeight*g.prev[k] + (1-g.smoothWeight)*gain
		g.prev[k] = gain

		dst[k] = (1 - g.strength) + g.strength*gain
	}
}

func (g *gainCalculator) reset() {
	for k := range g.prev {
		g.prev[k] = 1
	}
}
