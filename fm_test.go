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

package radio_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"hz.tools/radio"
	"hz.tools/rf"
	"hz.tools/sdr"
	"hz.tools/sdr/testutils"
)

const testSampleRate = 1_024_000

func tone(n int, freq rf.Hz) sdr.SamplesC64 {
	buf := make(sdr.SamplesC64, n)
	testutils.CW(buf, freq, testSampleRate, 0)
	return buf
}

func TestDiscriminateTone(t *testing.T) {
	for _, freq := range []rf.Hz{10 * rf.KHz, -10 * rf.KHz, 300 * rf.KHz, -450 * rf.KHz} {
		t.Run(freq.String(), func(t *testing.T) {
			demod, err := radio.NewFMDemodulator(21)
			assert.NoError(t, err)

			step := 2 * math.Pi * float64(freq) / testSampleRate
			out := demod.Discriminate(tone(4096, freq))
			assert.Len(t, out, 4096)
			assert.Equal(t, float32(0), out[0])
			for _, v := range out[1:] {
				assert.InDelta(t, step, v, 1e-4)
			}
		})
	}
}

func TestDiscriminateAcrossBlocks(t *testing.T) {
	samples := tone(16384*2, 10*rf.KHz)

	whole, err := radio.NewFMDemodulator(21)
	assert.NoError(t, err)
	expected := whole.Discriminate(samples)

	split, err := radio.NewFMDemodulator(21)
	assert.NoError(t, err)
	got := append(split.Discriminate(samples[:16384]), split.Discriminate(samples[16384:])...)

	assert.Equal(t, expected, got)
	// There is no gap at the block edge.
	assert.InDelta(t, got[16383], got[16384], 1e-4)
}

func TestDiscriminateAmplitude(t *testing.T) {
	demod, err := radio.NewFMDemodulator(21)
	assert.NoError(t, err)

	samples := tone(64, 10*rf.KHz)
	for i := range samples {
		samples[i] *= 0.5
	}
	step := 2 * math.Pi * 10e3 / testSampleRate

	out := demod.Discriminate(samples)
	for _, v := range out[1:] {
		assert.InDelta(t, step/0.5, v, 1e-3)
	}
}

func TestDiscriminateSilence(t *testing.T) {
	demod, err := radio.NewFMDemodulator(21)
	assert.NoError(t, err)

	out := demod.Discriminate(make(sdr.SamplesC64, 128))
	for _, v := range out {
		assert.False(t, math.IsNaN(float64(v)))
		assert.Equal(t, float32(0), v)
	}
}

func TestFMDemodulate(t *testing.T) {
	demod, err := radio.NewFMDemodulator(21)
	assert.NoError(t, err)

	step := 2 * math.Pi * 10e3 / testSampleRate
	samples := tone(16384*2, 10*rf.KHz)

	demod.Demodulate(samples[:16384])
	audio := demod.Demodulate(samples[16384:])
	assert.InDelta(t, 16384.0/21, len(audio), 1)
	for _, v := range audio {
		assert.InDelta(t, step, v, 1e-4)
	}
}

// vim: foldmethod=marker
