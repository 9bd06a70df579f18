package denoise

import (
	"fmt"

	algofft "github.com/MeKo-Christian/algo-fft"

	"github.com/cwbudde/algo-denoise/dsp/window"
)

// transform owns the fixed-size forward/inverse FFT, the periodic Hann
// analysis window, and the scratch spectrum shared by one engine.
type transform struct {
	size    int
	numBins int

	plan   *algofft.Plan[complex128]
	coeffs []float64

	freq []complex128
	time []complex128
}

func newTransform(size int) (*transform, error) {
	plan, err := algofft.NewPlan64(size)
	if err != nil {
		return nil, fmt.Errorf("denoise: FFT plan for size %d: %w", size, err)
	}

	return &transform{
		size:    size,
		numBins: size/2 + 1,
		plan:    plan,
		coeffs:  window.Generate(window.TypeHann, size, window.WithPeriodic()),
		freq:    make([]complex128, size),
		time:    make([]complex128, size),
	}, nil
}

// analyze windows the frame and runs the forward transform in place.
// The resulting spectrum is available through freq.
func (t *transform) analyze(frame []float64) error {
	for i := range t.size {
		t.freq[i] = complex(frame[i]*t.coeffs[i], 0)
	}

	err := t.plan.Forward(t.freq, t.freq)
	if err != nil {
		return fmt.Errorf("denoise: forward FFT failed: %w", err)
	}

	return nil
}

// scaleBins multiplies bins 0..N/2 by the per-bin factors and rebuilds
// Hermitian symmetry so the inverse transform yields a real signal.
func (t *transform) scaleBins(factors []float64) {
	half := t.size / 2

	for k := 0; k <= half; k++ {
		g := complex(factors[k], 0)
		t.freq[k] *= g
	}

	t.freq[0] = complex(real(t.freq[0]), 0)
	t.freq[half] = complex(real(t.freq[half]), 0)
	for k := 1; k < half; k++ {
		v := t.freq[k]
		t.freq[t.size-k] = complex(real(v), -imag(v))
	}
}

// synthesize runs the inverse transform (normalized by 1/N) and writes the
// real time-domain frame into dst.
func (t *transform) synthesize(dst []float64) error {
	err := t.plan.Inverse(t.time, t.freq)
	if err != nil {
		return fmt.Errorf("denoise: inverse FFT failed: %w", err)
	}

	for i := range t.size {
		dst[i] = real(t.time[i])
	}

	return nil
}
