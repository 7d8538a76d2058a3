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

package radio

import (
	"hz.tools/radio/internal"
)

// DecimatorTaps is the length of the anti-aliasing filter applied before
// samples are dropped.
const DecimatorTaps = 31

// RealBlock is a block of real-valued samples, such as demodulated audio
// or a signal envelope.
type RealBlock []float32

// Decimator will low-pass filter a stream of real samples and keep every
// Nth one. The filter history and the position of the next kept sample are
// carried from one call to the next, so a stream cut into arbitrary blocks
// produces the same output as the unbroken stream.
type Decimator struct {
	factor  int
	taps    []float32
	history []float32
	offset  int
	scratch []float32
}

// NewDecimator will create a Decimator that reduces the sample rate by
// factor. A factor of 1 passes samples through unchanged.
func NewDecimator(factor uint) (*Decimator, error) {
	if factor < 1 {
		return nil, &ConfigError{Field: "decimation", Err: ErrInvalidDecimation}
	}

	taps := []float32{1}
	if factor > 1 {
		var err error
		taps, err = internal.LowPass(DecimatorTaps, 1/float64(factor))
		if err != nil {
			return nil, err
		}
	}

	return &Decimator{
		factor:  int(factor),
		taps:    taps,
		history: make([]float32, len(taps)-1),
	}, nil
}

// Factor returns the decimation factor.
func (d *Decimator) Factor() uint {
	return uint(d.factor)
}

// Taps returns a copy of the filter coefficients.
func (d *Decimator) Taps() []float32 {
	return append([]float32(nil), d.taps...)
}

// Reset clears the carried filter state.
func (d *Decimator) Reset() {
	clear(d.history)
	d.offset = 0
}

// Decimate filters in and returns the kept samples. The returned block is
// newly allocated.
func (d *Decimator) Decimate(in RealBlock) RealBlock {
	n := len(d.history)
	d.scratch = append(append(d.scratch[:0], d.history...), in...)
	buf := d.scratch

	out := make(RealBlock, 0, len(in)/d.factor+1)
	p := d.offset
	for ; p < len(in); p += d.factor {
		var (
			acc float64
			at  = n + p
		)
		for k, tap := range d.taps {
			acc += float64(tap) * float64(buf[at-k])
		}
		out = append(out, float32(acc))
	}

	d.offset = p - len(in)
	copy(d.history, buf[len(buf)-n:])
	return out
}

// vim: foldmethod=marker
