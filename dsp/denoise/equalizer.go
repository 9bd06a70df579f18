package denoise

import "github.com/cwbudde/algo-denoise/dsp/core"

// Equalizer band edges in Hz. Bin indices are derived once at construction
// from the operating sample rate and frame size.
const (
	eqPlainBassGainDB = 3.0
	eqPlainBassBins   = 2 // lowest two bins above DC

	eqPlainLowMidLowHz  = 300.0
	eqPlainLowMidHighHz = 800.0
	eqPlainLowMidGainDB = 1.2

	eqPlainHarshLowHz  = 1500.0
	eqPlainHarshHighHz = 2500.0
	eqPlainHarshGainDB = -2.0

	eqClarityLowHz  = 300.0
	eqClarityHighHz = 2000.0
	eqClarityGainDB = 6.0
)

// equalizer holds one precomputed per-bin linear gain curve per listening
// profile. Curves are applied as spectrum multipliers together with the
// suppression gains; Hermitian mirroring afterwards keeps the boost
// symmetric, so the time-domain output stays real.
type equalizer struct {
	curves [2][]float64
}

func newEqualizer(sampleRate float64, frameSize int) *equalizer {
	numBins := frameSize/2 + 1
	binOf := func(hz float64) int {
		b := int(hz * float64(frameSize) / sampleRate)
		return min(max(b, 0), numBins-1)
	}

	plain := flatCurve(numBins)
	for k := 1; k <= min(eqPlainBassBins, numBins-1); k++ {
		plain[k] = core.DBToLinear(eqPlainBassGainDB)
	}
	setBand(plain, binOf(eqPlainLowMidLowHz), binOf(eqPlainLowMidHighHz), core.DBToLinear(eqPlainLowMidGainDB))
	setBand(plain, binOf(eqPlainHarshLowHz), binOf(eqPlainHarshHighHz), core.DBToLinear(eqPlainHarshGainDB))

	clarity := flatCurve(numBins)
	setBand(clarity, binOf(eqClarityLowHz), binOf(eqClarityHighHz), core.DBToLinear(eqClarityGainDB))

	eq := &equalizer{}
	eq.curves[ProfilePlain] = plain
	eq.curves[ProfileClarity] = clarity

	return eq
}

// curve returns the per-bin linear gain curve for the profile.
func (e *equalizer) curve(p Profile) []float64 {
	if !p.valid() {
		p = ProfilePlain
	}
	return e.curves[p]
}

func flatCurve(numBins int) []float64 {
	c := make([]float64, numBins)
	for k := range c {
		c[k] = 1
	}
	return c
}

func setBand(curve []float64, lo, hi int, gain float64) {
	for k := lo; k <= hi && k < len(curve); k++ {
		curve[k] = gain
	}
}
