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
	"math"

	"hz.tools/sdr"
)

// magnitudeFloor replaces sample magnitudes that would otherwise divide
// the discriminator output by zero.
const magnitudeFloor = 1e-6

// FMDemodulator will recover audio from a frequency modulated IQ stream.
//
// Each output sample is the wrapped phase change between two adjacent IQ
// samples, divided by the magnitude of the earlier sample. The last phase
// and magnitude are carried across blocks, so the discriminator emits one
// sample per input sample. The very first sample ever seen is compared to
// itself and demodulates to zero.
type FMDemodulator struct {
	decimator *Decimator

	primed    bool
	lastPhase float64
	lastMag   float64
}

// NewFMDemodulator will create an FMDemodulator that decimates the
// discriminator output by factor.
func NewFMDemodulator(factor uint) (*FMDemodulator, error) {
	decimator, err := NewDecimator(factor)
	if err != nil {
		return nil, err
	}
	return &FMDemodulator{decimator: decimator}, nil
}

// Discriminate returns the normalized phase difference for each sample in
// block, without decimation.
func (d *FMDemodulator) Discriminate(block sdr.SamplesC64) RealBlock {
	out := make(RealBlock, len(block))
	for i, s := range block {
		var (
			re    = float64(real(s))
			im    = float64(imag(s))
			phase = math.Atan2(im, re)
			mag   = math.Hypot(re, im)
		)

		if !d.primed {
			d.lastPhase, d.lastMag, d.primed = phase, mag, true
		}

		delta := phase - d.lastPhase
		switch {
		case delta > math.Pi:
			delta -= 2 * math.Pi
		case delta < -math.Pi:
			delta += 2 * math.Pi
		}

		out[i] = float32(delta / math.Max(d.lastMag, magnitudeFloor))
		d.lastPhase, d.lastMag = phase, mag
	}
	return out
}

// Demodulate turns one block of IQ samples into audio at the output rate.
func (d *FMDemodulator) Demodulate(block sdr.SamplesC64) RealBlock {
	return d.decimator.Decimate(d.Discriminate(block))
}

// vim: foldmethod=marker
