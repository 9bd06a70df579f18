package window

import (
	"math"
	"testing"
)

func TestGenerateLength(t *testing.T) {
	tests := []struct {
		name   string
		length int
		want   int
	}{
		{"zero", 0, 0},
		{"negative", -4, 0},
		{"one", 1, 1},
		{"typical", 512, 512},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Generate(TypeHann, tt.length)
			if len(got) != tt.want {
				t.Errorf("Generate length = %d, want %d", len(got), tt.want)
			}
		})
	}
}

func TestHannEndpoints(t *testing.T) {
	w := Generate(TypeHann, 64)
	if math.Abs(w[0]) > 1e-15 {
		t.Errorf("symmetric Hann should start at 0, got %v", w[0])
	}
	if math.Abs(w[63]) > 1e-15 {
		t.Errorf("symmetric Hann should end at 0, got %v", w[63])
	}
}

// Periodic Hann windows must satisfy constant overlap-add at 75% overlap:
// the sum of window values across all hop offsets is constant.
func TestPeriodicHannOverlapAdd(t *testing.T) {
	const (
		size = 512
		hop  = 128
	)

	w := Generate(TypeHann, size, WithPeriodic())

	for offset := range hop {
		sum := 0.0
		for i := offset; i < size; i += hop {
			sum += w[i]
		}
		if math.Abs(sum-2.0) > 1e-12 {
			t.Fatalf("offset %d: overlap sum = %v, want 2.0", offset, sum)
		}
	}
}

func TestRectangular(t *testing.T) {
	for _, v := range Generate(TypeRectangular, 16) {
		if v != 1 {
			t.Fatalf("rectangular coefficient = %v, want 1", v)
		}
	}
}

func TestApply(t *testing.T) {
	buf := []float64{1, 1, 1, 1}
	Apply(TypeHann, buf, WithPeriodic())

	want := Generate(TypeHann, 4, WithPeriodic())
	for i := range buf {
		if buf[i] != want[i] {
			t.Fatalf("index %d: got %v, want %v", i, buf[i], want[i])
		}
	}
}

func TestTypeString(t *testing.T) {
	if TypeHann.String() != "hann" {
		t.Errorf("TypeHann.String() = %q", TypeHann.String())
	}
	if Type(99).String() != "unknown" {
		t.Errorf("unknown type String() = %q", Type(99).String())
	}
}
