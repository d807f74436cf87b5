package audio

import (
	"math"
	"testing"
)

func expectEqual(t *testing.T, actual, expected interface{}) {
	if actual != expected {
		t.Errorf("expected %v, but got: %v", expected, actual)
	}
}

func expectNearlyEqual(t *testing.T, actual, expected float64) {
	if math.Abs(actual-expected) > 0.0001 {
		t.Errorf("expected %v, but got: %v", expected, actual)
	}
}

func TestBitreverse(t *testing.T) {
	expectEqual(t, bitReverse(0, 8), 0)
	expectEqual(t, bitReverse(1, 8), 4)
	expectEqual(t, bitReverse(2, 8), 2)
	expectEqual(t, bitReverse(3, 8), 6)
	expectEqual(t, bitReverse(4, 8), 1)
	expectEqual(t, bitReverse(5, 8), 5)
	expectEqual(t, bitReverse(6, 8), 3)
	expectEqual(t, bitReverse(7, 8), 7)
}

func TestFFT(t *testing.T) {
	fft := NewFFT(8)
	x := []float64{0, 0.25, 0.5, 0.75, 1, 0.75, 0.5, 0.25}
	expectNoError(t, fft.CalcAbs(x))
	expectNearlyEqual(t, x[0], 4)
	expectNearlyEqual(t, x[1], 1+math.Sqrt(2)/2)
	expectNearlyEqual(t, x[2], 0)
	expectNearlyEqual(t, x[3], 1-math.Sqrt(2)/2)
	expectNearlyEqual(t, x[4], 0)
	expectNearlyEqual(t, x[5], 1-math.Sqrt(2)/2)
	expectNearlyEqual(t, x[6], 0)
	expectNearlyEqual(t, x[7], 1+math.Sqrt(2)/2)
}

func TestFFTComplex(t *testing.T) {
	fft := NewFFT(4)
	// e^(2πik/4) puts all energy into bin 1
	x := []complex128{1, 1i, -1, -1i}
	expectNoError(t, fft.Calc(x))
	expectNearlyEqual(t, real(x[0]), 0)
	expectNearlyEqual(t, real(x[1]), 4)
	expectNearlyEqual(t, imag(x[1]), 0)
	expectNearlyEqual(t, real(x[2]), 0)
	expectNearlyEqual(t, real(x[3]), 0)
}

func TestFFTLengthMismatch(t *testing.T) {
	fft := NewFFT(8)
	if err := fft.CalcAbs(make([]float64, 4)); err == nil {
		t.Errorf("expected error for wrong length")
	}
}

func TestHanEdges(t *testing.T) {
	data := []float64{1, 1, 1, 1}
	Han(data)
	expectNearlyEqual(t, data[0], 0)
	expectNearlyEqual(t, data[1], 0.5)
	expectNearlyEqual(t, data[2], 1)
	expectNearlyEqual(t, data[3], 0.5)
}
