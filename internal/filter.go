// {{{ Copyright (c) Paul R. Tagliamonte <paul@k3xec.com>, 2026
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE. }}}

package internal

import (
	"fmt"
	"math"

	"hz.tools/rf"
	"hz.tools/sdr/fft"
)

// LowPass will compute the coefficients of a Hamming windowed-sinc low-pass
// FIR filter with numTaps taps. The cutoff is expressed as a fraction of the
// Nyquist frequency, so a cutoff of 1 passes everything. The taps are scaled
// to have unity gain at DC.
func LowPass(numTaps int, cutoff float64) ([]float32, error) {
	if numTaps < 1 {
		return nil, fmt.Errorf("internal: filter must have at least one tap")
	}
	if cutoff <= 0 || cutoff > 1 {
		return nil, fmt.Errorf("internal: cutoff %f is outside of (0, 1]", cutoff)
	}

	var (
		alpha = float64(numTaps-1) / 2
		h     = make([]float64, numTaps)
		sum   float64
	)

	for n := range h {
		m := float64(n) - alpha
		v := cutoff * sinc(cutoff*m)
		if numTaps > 1 {
			v *= 0.54 - 0.46*math.Cos(2*math.Pi*float64(n)/float64(numTaps-1))
		}
		h[n] = v
		sum += v
	}

	taps := make([]float32, numTaps)
	for n := range h {
		taps[n] = float32(h[n] / sum)
	}
	return taps, nil
}

func sinc(x float64) float64 {
	if x == 0 {
		return 1
	}
	return math.Sin(math.Pi*x) / (math.Pi * x)
}

// Passband will write a frequency-domain mask into filter that keeps the
// bins inside band and zeroes the rest. The bins are laid out according to
// order, which must match the layout the fft.Planner produces.
func Passband(filter []complex64, sampleRate uint, order fft.Order, band rf.Range) error {
	bins, err := fft.BinsByRange(len(filter), sampleRate, order, band)
	if err != nil {
		return err
	}

	clear(filter)
	for _, bin := range bins {
		filter[bin] = 1
	}
	return nil
}

// vim: foldmethod=marker
