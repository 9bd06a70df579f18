package denoise

import (
	"math"

	"github.com/cwbudde/algo-denoise/dsp/core"
)

const (
	// Voice-activity band, skipping DC and the lowest bins.
	flatnessBandLow  = 3
	flatnessBandHigh = 79

	flatnessCrestScale = 1.5

	// Asymmetric score smoothing: fast toward voice, slow toward noise.
	// Falling scores indicate tonal content and must be picked up quickly
	// so the gate opens before the first syllable is clipped.
	flatnessFallWeight = 0.3
	flatnessRiseWeight = 0.02
)

// flatnessTracker derives a spectral-flatness score per frame from the
// crest factor of a low/mid-frequency sub-band. Scores near 0 mean tonal,
// voice-like content; scores near 1 mean flat, noise-like content.
type flatnessTracker struct {
	lo, hi int // inclusive band bounds

	raw      float64
	smoothed float64
}

func newFlatnessTracker(numBins int) *flatnessTracker {
	hi := flatnessBandHigh
	if hi > numBins-1 {
		hi = numBins - 1
	}

	return &flatnessTracker{lo: flatnessBandLow, hi: hi}
}

// update scores one frame's power spectrum and returns the smoothed score.
func (f *flatnessTracker) update(power []float64) float64 {
	peak := 0.0
	sum := 0.0

	for k := f.lo; k <= f.hi; k++ {
		p := power[k]
		sum += p
		if p > peak {
			peak = p
		}
	}

	mean := sum / float64(f.hi-f.lo+1)
	crest := math.Sqrt(peak) / math.Sqrt(mean+epsilon)
	f.raw = core.Clamp(flatnessCrestScale/(crest+epsilon), 0, 1)

	if f.raw < f.smoothed {
		f.smoothed = flatnessFallWeight*f.raw + (1-flatnessFallWeight)*f.smoothed
	} else {
		f.smoothed = flatnessRiseWeight*f.raw + (1-flatnessRiseWeight)*f.smoothed
	}

	return f.smoothed
}

func (f *flatnessTracker) reset() {
	f.raw = 0
	f.smoothed = 0
}
