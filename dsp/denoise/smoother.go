package denoise

const (
	// 3-tap frequency-neighbor kernel.
	smootherKernelSide   = 0.25
	smootherKernelCenter = 0.5

	// Anti-hole protection: a gain falling more than 30% below the bin's
	// running frequency-smoothed gain is clamped to 85% of that value,
	// which suppresses isolated spectral holes (musical noise).
	smootherHoleRatio = 0.7
	smootherHoleClamp = 0.85
	smootherRunRetain = 0.6
)

// artifactSmoother spreads each bin's gain across its frequency neighbors
// and blocks sudden per-bin drops relative to a slow running average.
type artifactSmoother struct {
	running []float64
	scratch []float64
}

func newArtifactSmoother(numBins int) *artifactSmoother {
	s := &artifactSmoother{
		running: make([]float64, numBins),
		scratch: make([]float64, numBins),
	}
	s.reset()

	return s
}

// apply rewrites gains in place. Edge bins reuse their own value for the
// missing neighbor so the kernel weights always sum to one.
func (s *artifactSmoother) apply(gains []float64) {
	n := len(gains)

	for k := range gains {
		left := gains[max(k-1, 0)]
		right := gains[min(k+1, n-1)]
		s.scratch[k] = smootherKernelSide*left + smootherKernelCenter*gains[k] + smootherKernelSide*right
	}

	for k := range gains {
		v := s.scratch[k]
		if v < smootherHoleRatio*s.running[k] {
			v = smootherHoleClamp * s.running[k]
		}

		s.running[k] = smootherRunRetain*s.running[k] + (1-smootherRunRetain)*v

		if v > 1 {
			v = 1
		}
		gains[k] = v
	}
}

func (s *artifactSmoother) reset() {
	for k := range s.running {
		s.running[k] = 1
	}
}
