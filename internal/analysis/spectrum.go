package analysis

import (
	"errors"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

var ErrTooShort = errors.New("analysis: series too short")

// Spectrum computes the one-sided power spectrum of a uniformly sampled
// series. dt is the sample interval; the returned frequency axis runs
// from DC to the Nyquist frequency.
func Spectrum(data []float64, dt float64) (freqs, power []float64, err error) {
	if len(data) < 4 {
		return nil, nil, ErrTooShort
	}
	if dt <= 0 {
		return nil, nil, errors.New("analysis: non-positive sample interval")
	}

	detrended := detrend(data)
	coeffs := fft.FFTReal(detrended)

	n := len(coeffs) / 2
	freqs = make([]float64, n)
	power = make([]float64, n)
	for i := 0; i < n; i++ {
		freqs[i] = float64(i) / (dt * float64(len(data)))
		power[i] = cmplx.Abs(coeffs[i])
	}
	return freqs, power, nil
}

// DominantFrequency returns the strongest non-DC spectral line.
func DominantFrequency(data []float64, dt float64) (freq, magnitude float64, err error) {
	freqs, power, err := Spectrum(data, dt)
	if err != nil {
		return 0, 0, err
	}

	best := 1
	for i := 2; i < len(power); i++ {
		if power[i] > power[best] {
			best = i
		}
	}
	return freqs[best], power[best], nil
}

// detrend removes the mean so the DC bin does not swamp the spectrum.
func detrend(data []float64) []float64 {
	mean := 0.0
	for _, v := range data {
		mean += v
	}
	mean /= float64(len(data))

	out := make([]float64, len(data))
	for i, v := range data {
		out[i] = v - mean
	}
	return out
}

// Summary holds basic statistics of one trace series.
type Summary struct {
	Min  float64
	Max  float64
	Mean float64
	RMS  float64
}

// Summarize computes min, max, mean and root-mean-square of a series.
func Summarize(data []float64) Summary {
	if len(data) == 0 {
		return Summary{}
	}

	s := Summary{Min: data[0], Max: data[0]}
	sumSq := 0.0
	for _, v := range data {
		if v < s.Min {
			s.Min = v
		}
		if v > s.Max {
			s.Max = v
		}
		s.Mean += v
		sumSq += v * v
	}
	n := float64(len(data))
	s.Mean /= n
	s.RMS = math.Sqrt(sumSq / n)
	return s
}
