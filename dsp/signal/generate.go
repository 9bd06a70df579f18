// Package signal provides deterministic test and measurement signals.
package signal

import (
	"fmt"
	"math"
	"math/rand"
)

// Sine generates a sine wave at the given frequency and amplitude.
func Sine(freqHz, sampleRate, amplitude float64, samples int) ([]float64, error) {
	if samples <= 0 {
		return nil, fmt.Errorf("sine samples must be > 0: %d", samples)
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sine sample rate must be > 0: %f", sampleRate)
	}

	out := make([]float64, samples)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}

	return out, nil
}

// WhiteNoise generates seeded uniform white noise in [-amplitude, amplitude].
func WhiteNoise(seed int64, amplitude float64, samples int) ([]float64, error) {
	if samples <= 0 {
		return nil, fmt.Errorf("noise samples must be > 0: %d", samples)
	}
	if amplitude < 0 {
		return nil, fmt.Errorf("noise amplitude must be >= 0: %f", amplitude)
	}

	out := make([]float64, samples)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}

	return out, nil
}

// Silence generates a zero-valued signal.
func Silence(samples int) []float64 {
	if samples <= 0 {
		return nil
	}
	return make([]float64, samples)
}

// ToneInNoise generates a sine wave buried in seeded white noise. It is the
// canonical probe for narrowband denoisers: tonal content the reducer should
// keep, broadband content it should remove.
func ToneInNoise(freqHz, sampleRate, toneAmp, noiseAmp float64, seed int64, samples int) ([]float64, error) {
	tone, err := Sine(freqHz, sampleRate, toneAmp, samples)
	if err != nil {
		return nil, err
	}

	noise, err := WhiteNoise(seed, noiseAmp, samples)
	if err != nil {
		return nil, err
	}

	for i := range tone {
		tone[i] += noise[i]
	}

	return tone, nil
}

// Normalize scales data to the target peak amplitude and returns a new slice.
func Normalize(data []float64, targetPeak float64) ([]float64, error) {
	if targetPeak < 0 {
		return nil, fmt.Errorf("normalize target peak must be >= 0: %f", targetPeak)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("normalize input must not be empty")
	}

	maxAbs := 0.0
	for _, v := range data {
		av := math.Abs(v)
		if av > maxAbs {
			maxAbs = av
		}
	}

	out := make([]float64, len(data))
	if maxAbs == 0 || targetPeak == 0 {
		return out, nil
	}

	scale := targetPeak / maxAbs
	for i, v := range data {
		out[i] = v * scale
	}

	return out, nil
}
