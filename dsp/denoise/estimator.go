package denoise

import "github.com/cwbudde/algo-denoise/dsp/core"

const (
	// Shared initial value for all adaptive power state after a reset.
	initialNoisePower = 1e-4

	// Legacy minimum-tracking estimator.
	legacyPowerSmooth = 0.98
	legacyMinRetain   = 0.9999
	legacyBiasFactor  = 2.0
	legacyNoiseSmooth = 0.995
	legacyResetFrames = 500

	// Advanced subwindow-minimum estimator.
	subwindowCount  = 8
	subwindowFrames = 15

	// SmoothingShape in [-2, 2] maps linearly onto this alpha range.
	subwindowAlphaMin = 0.80
	subwindowAlphaMax = 0.99

	// BiasShape in [0, 1] maps linearly onto this compensation range.
	subwindowBiasMin = 1.5
	subwindowBiasMax = 3.5
)

// noiseEstimator produces a per-bin noise-power estimate from one frame's
// power spectrum. Implementations own all adaptive state and are rebound
// whenever the configuration selects a different method, so the frame loop
// carries no per-method branching.
type noiseEstimator interface {
	estimate(dst, power []float64)
	reset()
}

// guardPower replaces non-finite intermediate state with a small positive
// floor instead of letting NaN/Inf propagate into subsequent frames.
func guardPower(p float64) float64 {
	if !core.IsFinite(p) || p < powerFloor {
		return powerFloor
	}
	return p
}

// legacyEstimator exponentially smooths each bin's power and tracks a
// running minimum that snaps down immediately but creeps up slowly. The
// estimate is twice the tracked minimum, smoothed once more. The tracker is
// hard-reset to the current smoothed power periodically so a stale minimum
// cannot outlive a rising noise floor indefinitely.
type legacyEstimator struct {
	smoothed []float64
	minTrack []float64
	noise    []float64

	frames int
}

func newLegacyEstimator(numBins int) *legacyEstimator {
	e := &legacyEstimator{
		smoothed: make([]float64, numBins),
		minTrack: make([]float64, numBins),
		noise:    make([]float64, numBins),
	}
	e.reset()

	return e
}

func (e *legacyEstimator) estimate(dst, power []float64) {
	for k, p := range power {
		s := legacyPowerSmooth*e.smoothed[k] + (1-legacyPowerSmooth)*p
		s = guardPower(s)
		e.smoothed[k] = s

		if s < e.minTrack[k] {
			e.minTrack[k] = s
		} else {
			e.minTrack[k] = legacyMinRetain*e.minTrack[k] + (1-legacyMinRetain)*s
		}

		n := legacyNoiseSmooth*e.noise[k] + (1-legacyNoiseSmooth)*legacyBiasFactor*e.minTrack[k]
		n = guardPower(n)
		e.noise[k] = n
		dst[k] = n
	}

	e.frames++
	if e.frames%legacyResetFrames == 0 {
		copy(e.minTrack, e.smoothed)
	}
}

func (e *legacyEstimator) reset() {
	for k := range e.smoothed {
		e.smoothed[k] = initialNoisePower
		e.minTrack[k] = initialNoisePower
		e.noise[k] = initialNoisePower
	}
	e.frames = 0
}

// subwindowEstimator implements Martin-style minimum statistics: time is
// partitioned into subwindowCount subwindows of subwindowFrames frames, each
// holding a per-bin minimum of the smoothed power. The estimate is the
// minimum across all subwindows times a bias-compensation factor. A rising
// noise floor is picked up within one full cycle, while transient voice
// energy cannot corrupt more than one subwindow.
type subwindowEstimator struct {
	alpha float64
	bias  float64

	smoothed []float64
	minima   []float64 // bin-major: minima[k*subwindowCount+d]

	active int // current subwindow
	frame  int // frames into the current subwindow
}

func newSubwindowEstimator(numBins int) *subwindowEstimator {
	e := &subwindowEstimator{
		smoothed: make([]float64, numBins),
		minima:   make([]float64, numBins*subwindowCount),
	}
	e.setShape(0, 0.5)
	e.reset()

	return e
}

// setShape maps the control-surface shaping parameters onto the smoothing
// coefficient and bias-compensation factor.
func (e *subwindowEstimator) setShape(smoothingShape, biasShape float64) {
	t := (smoothingShape + 2) / 4
	e.alpha = subwindowAlphaMin + t*(subwindowAlphaMax-subwindowAlphaMin)
	e.bias = subwindowBiasMin + biasShape*(subwindowBiasMax-subwindowBiasMin)
}

func (e *subwindowEstimator) estimate(dst, power []float64) {
	for k, p := range power {
		s := e.alpha*e.smoothed[k] + (1-e.alpha)*p
		s = guardPower(s)
		e.smoothed[k] = s

		base := k * subwindowCount
		if s < e.minima[base+e.active] {
			e.minima[base+e.active] = s
		}

		floor := e.minima[base]
		for d := 1; d < subwindowCount; d++ {
			if e.minima[base+d] < floor {
				floor = e.minima[base+d]
			}
		}

		dst[k] = guardPower(floor * e.bias)
	}

	e.frame++
	if e.frame >= subwindowFrames {
		e.frame = 0
		e.active = (e.active + 1) % subwindowCount
		for k := range e.smoothed {
			e.minima[k*subwindowCount+e.active] = e.smoothed[k]
		}
	}
}

func (e *subwindowEstimator) reset() {
	for k := range e.smoothed {
		e.smoothed[k] = initialNoisePower
	}
	for i := range e.minima {
		e.minima[i] = initialNoisePower
	}
	e.active = 0
	e.frame = 0
}
