package analysis

import (
	"errors"
	"math"
	"testing"
)

func sine(freq, dt float64, n int) []float64 {
	data := make([]float64, n)
	for i := range data {
		data[i] = math.Sin(2 * math.Pi * freq * float64(i) * dt)
	}
	return data
}

func TestDominantFrequency(t *testing.T) {
	tests := []struct {
		name string
		freq float64
		dt   float64
		n    int
	}{
		{"slow", 0.5, 0.01, 1024},
		{"fast", 4.0, 0.01, 1024},
		{"non_power_of_two", 2.0, 0.01, 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _, err := DominantFrequency(sine(tt.freq, tt.dt, tt.n), tt.dt)
			if err != nil {
				t.Fatalf("DominantFrequency: %v", err)
			}
			// Resolution is 1/(n*dt); allow one bin of error.
			tol := 1.5 / (float64(tt.n) * tt.dt)
			if math.Abs(got-tt.freq) > tol {
				t.Errorf("dominant frequency = %v, want %v (tol %v)", got, tt.freq, tol)
			}
		})
	}
}

func TestSpectrumOffsetInvariant(t *testing.T) {
	dt := 0.01
	data := sine(2.0, dt, 512)
	shifted := make([]float64, len(data))
	for i, v := range data {
		shifted[i] = v + 100
	}

	f1, _, err := DominantFrequency(data, dt)
	if err != nil {
		t.Fatal(err)
	}
	f2, _, err := DominantFrequency(shifted, dt)
	if err != nil {
		t.Fatal(err)
	}
	if f1 != f2 {
		t.Errorf("constant offset changed dominant frequency: %v vs %v", f1, f2)
	}
}

func TestSpectrumErrors(t *testing.T) {
	if _, _, err := Spectrum([]float64{1, 2}, 0.1); !errors.Is(err, ErrTooShort) {
		t.Errorf("short series: got %v, want ErrTooShort", err)
	}
	if _, _, err := Spectrum(sine(1, 0.01, 64), 0); err == nil {
		t.Error("expected error for zero dt")
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize([]float64{3, -1, 2, 0})
	if s.Min != -1 || s.Max != 3 {
		t.Errorf("range = [%v, %v], want [-1, 3]", s.Min, s.Max)
	}
	if s.Mean != 1 {
		t.Errorf("mean = %v, want 1", s.Mean)
	}
	want := math.Sqrt((9.0 + 1 + 4 + 0) / 4)
	if math.Abs(s.RMS-want) > 1e-12 {
		t.Errorf("rms = %v, want %v", s.RMS, want)
	}

	if s := Summarize(nil); s != (Summary{}) {
		t.Errorf("empty series should summarize to zero, got %+v", s)
	}
}
