package denoise

import (
	"math"
	"testing"
)

func flatSpectrum(numBins int, level float64) []float64 {
	p := make([]float64, numBins)
	for k := range p {
		p[k] = level
	}
	return p
}

func tonalSpectrum(numBins, peakBin int, level float64) []float64 {
	p := make([]float64, numBins)
	for k := range p {
		p[k] = level * 1e-6
	}
	p[peakBin] = level
	return p
}

func TestFlatnessScoresFlatNoiseHigh(t *testing.T) {
	f := newFlatnessTracker(257)

	f.update(flatSpectrum(257, 0.5))

	// Equal power in every band bin: crest = 1, raw score saturates at 1.
	if f.raw < 0.99 {
		t.Errorf("raw score for flat spectrum = %v, want ~1", f.raw)
	}
}

func TestFlatnessScoresTonalLow(t *testing.T) {
	f := newFlatnessTracker(257)

	f.update(tonalSpectrum(257, 40, 1.0))

	// One dominant bin across the 77-bin band: crest ~ sqrt(77).
	if f.raw > 0.25 {
		t.Errorf("raw score for tonal spectrum = %v, want < 0.25", f.raw)
	}
}

func TestFlatnessAsymmetricSmoothing(t *testing.T) {
	f := newFlatnessTracker(257)

	// Rising toward noise is slow: one flat frame moves the smoothed
	// score by only the rise weight.
	f.update(flatSpectrum(257, 0.5))
	afterRise := f.smoothed
	if math.Abs(afterRise-flatnessRiseWeight*f.raw) > 1e-12 {
		t.Fatalf("smoothed after one rising frame = %v, want %v", afterRise, flatnessRiseWeight*f.raw)
	}

	// Push the smoothed score up, then verify falling is much faster.
	for range 200 {
		f.update(flatSpectrum(257, 0.5))
	}
	high := f.smoothed

	f.update(tonalSpectrum(257, 40, 1.0))
	drop := high - f.smoothed
	if drop < 0.2*high {
		t.Errorf("one voice frame dropped score by %v from %v, want fast fall", drop, high)
	}
}

func TestFlatnessReset(t *testing.T) {
	f := newFlatnessTracker(257)
	f.update(flatSpectrum(257, 0.5))
	f.reset()

	if f.raw != 0 || f.smoothed != 0 {
		t.Errorf("after reset raw=%v smoothed=%v, want 0, 0", f.raw, f.smoothed)
	}
}

func TestFlatnessBandClampedToSpectrum(t *testing.T) {
	// numBins smaller than the nominal band end must not panic.
	f := newFlatnessTracker(33)
	f.update(flatSpectrum(33, 0.5))

	if f.hi != 32 {
		t.Errorf("band high = %d, want 32", f.hi)
	}
}
