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
	"math/cmplx"

	"hz.tools/sdr"
)

// Envelope returns the magnitude of every sample in block.
func Envelope(block sdr.SamplesC64) RealBlock {
	out := make(RealBlock, len(block))
	for i, s := range block {
		out[i] = float32(cmplx.Abs(complex128(s)))
	}
	return out
}

// RemoveDC subtracts the mean of block from every sample, in place.
func RemoveDC(block RealBlock) {
	if len(block) == 0 {
		return
	}
	var sum float64
	for _, v := range block {
		sum += float64(v)
	}
	mean := float32(sum / float64(len(block)))
	for i := range block {
		block[i] -= mean
	}
}

// AMDemodulator will recover audio from an amplitude modulated IQ stream
// by taking the envelope, decimating it, and removing the carrier's DC
// offset.
type AMDemodulator struct {
	decimator *Decimator
}

// NewAMDemodulator will create an AMDemodulator that decimates the envelope
// by factor.
func NewAMDemodulator(factor uint) (*AMDemodulator, error) {
	decimator, err := NewDecimator(factor)
	if err != nil {
		return nil, err
	}
	return &AMDemodulator{decimator: decimator}, nil
}

// Demodulate turns one block of IQ samples into audio at the output rate.
func (d *AMDemodulator) Demodulate(block sdr.SamplesC64) RealBlock {
	audio := d.decimator.Decimate(Envelope(block))
	RemoveDC(audio)
	return audio
}

// vim: foldmethod=marker
