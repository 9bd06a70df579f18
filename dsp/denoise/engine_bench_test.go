package denoise

import (
	"fmt"
	"testing"

	"github.com/cwbudde/algo-denoise/dsp/signal"
)

// Benchmark full-pipeline streaming throughput at typical callback sizes.
func BenchmarkProcess(b *testing.B) {
	blockSizes := []int{64, 256, 1024}

	for _, block := range blockSizes {
		in, err := signal.WhiteNoise(1, 0.5, block)
		if err != nil {
			b.Fatalf("WhiteNoise() error = %v", err)
		}
		out := make([]float64, block)

		b.Run(fmt.Sprintf("block=%d", block), func(b *testing.B) {
			e, err := New()
			if err != nil {
				b.Fatalf("New() error = %v", err)
			}

			b.ReportAllocs()
			b.SetBytes(int64(block * 8))
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_ = e.Process(in, out)
			}
		})
	}
}

// Benchmark the two estimator strategies against each other.
func BenchmarkProcessEstimator(b *testing.B) {
	methods := []EstimatorMethod{EstimatorLegacy, EstimatorAdvanced}

	const block = 512
	in, err := signal.WhiteNoise(1, 0.5, block)
	if err != nil {
		b.Fatalf("WhiteNoise() error = %v", err)
	}
	out := make([]float64, block)

	for _, method := range methods {
		b.Run(method.String(), func(b *testing.B) {
			cfg := DefaultConfig()
			cfg.Estimator = method

			e, err := New(WithConfig(cfg))
			if err != nil {
				b.Fatalf("New() error = %v", err)
			}

			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_ = e.Process(in, out)
			}
		})
	}
}

// Benchmark the spectral frame path in isolation from the sample scheduler.
func BenchmarkProcessFrame(b *testing.B) {
	e, err := New()
	if err != nil {
		b.Fatalf("New() error = %v", err)
	}

	in, err := signal.WhiteNoise(2, 0.5, e.FrameSize())
	if err != nil {
		b.Fatalf("WhiteNoise() error = %v", err)
	}
	out := make([]float64, len(in))
	if err := e.Process(in, out); err != nil {
		b.Fatalf("Process() error = %v", err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = e.processFrame()
	}
}
