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

	"github.com/ik5/audpbx/utils"
	"hz.tools/sdr"
)

// PCMBlock is a block of signed 16-bit mono audio.
type PCMBlock []int16

// Normalize scales block so its largest magnitude sample maps to full
// scale. A silent block has nothing to scale and returns nil with no
// error. A block holding a NaN or infinity returns ErrMalformedBlock.
func Normalize(block RealBlock) (PCMBlock, error) {
	var peak float32
	for _, v := range block {
		if math.IsNaN(float64(v)) {
			return nil, ErrMalformedBlock
		}
		if a := float32(math.Abs(float64(v))); a > peak {
			peak = a
		}
	}

	switch {
	case peak == 0:
		return nil, nil
	case math.IsInf(float64(peak), 0):
		return nil, ErrMalformedBlock
	}

	out := make(PCMBlock, len(block))
	for i, v := range block {
		out[i] = utils.Float32ToInt16(v / peak)
	}
	return out, nil
}

// ValidateBlock returns ErrMalformedBlock if any sample in block is NaN or
// infinite.
func ValidateBlock(block sdr.SamplesC64) error {
	for _, s := range block {
		re, im := float64(real(s)), float64(imag(s))
		if math.IsNaN(re) || math.IsNaN(im) || math.IsInf(re, 0) || math.IsInf(im, 0) {
			return ErrMalformedBlock
		}
	}
	return nil
}

// vim: foldmethod=marker
