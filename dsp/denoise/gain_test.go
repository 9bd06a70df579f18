package denoise

import (
	"testing"

	"github.com/cwbudde/algo-denoise/dsp/signal"
	"github.com/cwbudde/algo-denoise/internal/testutil"
)

func TestGainFloorRange(t *testing.T) {
	g := newGainCalculator(8)

	for _, strength := range []float64{0, 0.25, 0.5, 0.75, 1} {
		g.configure(GainLawLinear, strength)
		if g.floor < 0.01-1e-12 || g.floor > 0.08+1e-12 {
			t.Errorf("strength %v: floor = %v, want within [0.01, 0.08]", strength, g.floor)
		}
	}
}

func TestGainBoundsAllLaws(t *testing.T) {
	power, err := signal.WhiteNoise(3, 1, 64)
	if err != nil {
		t.Fatalf("WhiteNoise() error = %v", err)
	}
	for i := range power {
		power[i] = power[i]*power[i] + 1e-6
	}

	noise := make([]float64, 64)
	for i := range noise {
		noise[i] = 0.1
	}

	laws := []GainLaw{GainLawLinear, GainLawLogarithmic, GainLawPower}
	for _, law := range laws {
		t.Run(law.String(), func(t *testing.T) {
			for _, strength := range []float64{0, 0.5, 1} {
				g := newGainCalculator(64)
				g.configure(law, strength)

				dst := make([]float64, 64)
				for range 20 {
					g.compute(dst, power, noise)
				}

				lower := (1 - strength) + strength*g.floor
				for k, v := range dst {
					if v < lower-1e-9 || v > 1+1e-9 {
						t.Fatalf("strength %v bin %d: gain %v outside [%v, 1]", strength, k, v, lower)
					}
				}
			}
		})
	}
}

func TestGainHighSNRStaysNearUnity(t *testing.T) {
	g := newGainCalculator(1)
	g.configure(GainLawPower, 1)

	dst := make([]float64, 1)
	for range 50 {
		g.compute(dst, []float64{100}, []float64{1e-4})
	}

	if dst[0] < 0.99 {
		t.Errorf("gain at high SNR = %v, want near 1", dst[0])
	}
}

func TestGainLowSNRFallsToFloor(t *testing.T) {
	for _, law := range []GainLaw{GainLawLinear, GainLawLogarithmic, GainLawPower} {
		t.Run(law.String(), func(t *testing.T) {
			g := newGainCalculator(1)
			g.configure(law, 1)

			dst := make([]float64, 1)
			for range 200 {
				g.compute(dst, []float64{1e-6}, []float64{1})
			}

			// At full strength the blend passes the floored gain through.
			testutil.RequireNearlyEqual(t, dst[0], g.floor, 1e-6)
		})
	}
}

func TestGainLogarithmicGentlerThanLinear(t *testing.T) {
	// Moderate SNR: the logarithmic law suppresses less than the linear
	// one, preserving weak signals.
	const power, noise = 0.6, 0.1

	lin := newGainCalculator(1)
	lin.configure(GainLawLinear, 1)
	log := newGainCalculator(1)
	log.configure(GainLawLogarithmic, 1)

	dstLin := make([]float64, 1)
	dstLog := make([]float64, 1)
	for range 100 {
		lin.compute(dstLin, []float64{power}, []float64{noise})
		log.compute(dstLog, []float64{power}, []float64{noise})
	}

	if dstLog[0] <= dstLin[0] {
		t.Errorf("logarithmic gain %v should exceed linear gain %v at moderate SNR", dstLog[0], dstLin[0])
	}
}

func TestGainZeroStrengthIsTransparent(t *testing.T) {
	g := newGainCalculator(4)
	g.configure(GainLawLinear, 0)

	dst := make([]float64, 4)
	g.compute(dst, []float64{1e-9, 0.1, 1, 10}, []float64{1, 1, 1, 1})

	for k, v := range dst {
		if v != 1 {
			t.Errorf("bin %d: gain = %v, want exactly 1 at zero strength", k, v)
		}
	}
}

func TestGainReset(t *testing.T) {
	g := newGainCalculator(2)
	g.configure(GainLawLinear, 1)

	dst := make([]float64, 2)
	g.compute(dst, []float64{1e-6, 1e-6}, []float64{1, 1})

	g.reset()
	for k, v := range g.prev {
		if v != 1 {
			t.Errorf("prev[%d] = %v, want 1 after reset", k, v)
		}
	}
}
