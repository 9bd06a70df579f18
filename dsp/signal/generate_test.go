package signal

import (
	"math"
	"testing"
)

func TestSineValidation(t *testing.T) {
	tests := []struct {
		name       string
		sampleRate float64
		samples    int
		wantErr    bool
	}{
		{"valid", 12000, 100, false},
		{"zero samples", 12000, 0, true},
		{"negative samples", 12000, -1, true},
		{"zero rate", 0, 100, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Sine(1000, tt.sampleRate, 1, tt.samples)
			if (err != nil) != tt.wantErr {
				t.Errorf("Sine() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSinePeriod(t *testing.T) {
	// 1 kHz at 12 kHz: one full period every 12 samples.
	out, err := Sine(1000, 12000, 1, 24)
	if err != nil {
		t.Fatalf("Sine() error = %v", err)
	}

	for i := range 12 {
		if math.Abs(out[i]-out[i+12]) > 1e-12 {
			t.Fatalf("sample %d not periodic: %v vs %v", i, out[i], out[i+12])
		}
	}
}

func TestWhiteNoiseDeterministic(t *testing.T) {
	a, err := WhiteNoise(42, 0.5, 256)
	if err != nil {
		t.Fatalf("WhiteNoise() error = %v", err)
	}
	b, _ := WhiteNoise(42, 0.5, 256)

	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("sample %d differs between identical seeds", i)
		}
		if math.Abs(a[i]) > 0.5 {
			t.Fatalf("sample %d exceeds amplitude: %v", i, a[i])
		}
	}
}

func TestToneInNoise(t *testing.T) {
	out, err := ToneInNoise(1000, 12000, 0.5, 0.1, 1, 1024)
	if err != nil {
		t.Fatalf("ToneInNoise() error = %v", err)
	}
	if len(out) != 1024 {
		t.Fatalf("length = %d, want 1024", len(out))
	}

	peak := 0.0
	for _, v := range out {
		if math.Abs(v) > peak {
			peak = math.Abs(v)
		}
	}
	if peak > 0.6 || peak < 0.3 {
		t.Errorf("peak = %v, expected near tone amplitude", peak)
	}
}

func TestNormalize(t *testing.T) {
	out, err := Normalize([]float64{0.1, -0.4, 0.2}, 1.0)
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if math.Abs(out[1]+1.0) > 1e-12 {
		t.Errorf("peak sample = %v, want -1.0", out[1])
	}

	if _, err := Normalize(nil, 1.0); err == nil {
		t.Error("Normalize(nil) should fail")
	}
}
