package similarity

import (
	"errors"
	"math"
	"testing"

	"github.com/kailas-cloud/candidex/internal/domain"
)

func almost(a, b, eps float64) bool {
	return math.Abs(a-b) < eps
}

func TestCosine_Identical(t *testing.T) {
	v := []float32{0.3, -0.2, 0.9}
	got, err := Cosine(v, v)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almost(got, 1, 1e-9) {
		t.Errorf("want 1, got %v", got)
	}
}

func TestCosine_Opposite(t *testing.T) {
	got, err := Cosine([]float32{1, 2}, []float32{-1, -2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almost(got, 0, 1e-9) {
		t.Errorf("want 0, got %v", got)
	}
}

func TestCosine_Orthogonal(t *testing.T) {
	got, _ := Cosine([]float32{1, 0}, []float32{0, 1})
	if !almost(got, 0.5, 1e-9) {
		t.Errorf("want 0.5, got %v", got)
	}
}

func TestCosine_ZeroVector(t *testing.T) {
	for _, dim := range []int{1, 3, 1536} {
		zero := make([]float32, dim)
		other := make([]float32, dim)
		for i := range other {
			other[i] = float32(i + 1)
		}

		got, err := Cosine(zero, other)
		if err != nil || got != 0 {
			t.Errorf("dim %d: expected exactly 0, got %v (err %v)", dim, got, err)
		}
		got, err = Cosine(other, zero)
		if err != nil || got != 0 {
			t.Errorf("dim %d reversed: expected exactly 0, got %v (err %v)", dim, got, err)
		}
		got, err = Cosine(zero, zero)
		if err != nil || got != 0 {
			t.Errorf("dim %d both zero: expected exactly 0, got %v (err %v)", dim, got, err)
		}
	}
}

func TestCosine_DimensionMismatch(t *testing.T) {
	_, err := Cosine([]float32{1, 2, 3}, []float32{1, 2})
	if !errors.Is(err, domain.ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestCosine_MagnitudeInvariant(t *testing.T) {
	a := []float32{1, 2, 3}
	b := []float32{10, 20, 30}
	got, _ := Cosine(a, b)
	if !almost(got, 1, 1e-9) {
		t.Errorf("want 1 for scaled vector, got %v", got)
	}
}

func TestCosine_Range(t *testing.T) {
	vecs := [][]float32{
		{0.1, 0.2, 0.3},
		{-5, 4, 0},
		{1e-20, 1e-20, 1e-20},
		{3e30, -3e30, 1},
	}
	for i := range vecs {
		for j := range vecs {
			got, err := Cosine(vecs[i], vecs[j])
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got < 0 || got > 1 || math.IsNaN(got) {
				t.Errorf("(%d,%d): %v out of [0,1]", i, j, got)
			}
		}
	}
}
