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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"hz.tools/radio"
	"hz.tools/rf"
	"hz.tools/sdr"
)

func newReceiver(t *testing.T, mode radio.Mode) *radio.Receiver {
	t.Helper()
	rcv, err := radio.NewReceiver(radio.NewConfig(mode, 100*rf.MHz))
	assert.NoError(t, err)
	return rcv
}

func TestReceiverInvalid(t *testing.T) {
	_, err := radio.NewReceiver(radio.NewConfig(radio.ModeFM, 0))
	assert.ErrorIs(t, err, radio.ErrInvalidFrequency)
}

func TestReceiverFMTone(t *testing.T) {
	rcv := newReceiver(t, radio.ModeFM)
	samples := tone(16384*5, 10*rf.KHz)

	for i := 0; i < 5; i++ {
		result, err := rcv.Process(samples[i*16384 : (i+1)*16384])
		assert.NoError(t, err)
		assert.Nil(t, result.Message)
		assert.InDelta(t, 16384.0/21, len(result.Audio), 1)

		var peak int16
		for _, v := range result.Audio {
			assert.GreaterOrEqual(t, v, int16(0))
			if v > peak {
				peak = v
			}
			if i > 0 {
				// Past the first block the filter has settled.
				assert.Greater(t, v, int16(32000))
			}
		}
		assert.Equal(t, int16(32767), peak)
	}
}

func TestReceiverAMCarrier(t *testing.T) {
	rcv := newReceiver(t, radio.ModeAM)

	carrier := make(sdr.SamplesC64, 16384)
	for i := range carrier {
		carrier[i] = 0.7
	}

	// The filter settling on the first block is audible.
	result, err := rcv.Process(carrier)
	assert.NoError(t, err)
	assert.NotNil(t, result.Audio)

	// An unmodulated carrier is silence once the DC is removed.
	result, err = rcv.Process(carrier)
	assert.NoError(t, err)
	assert.Nil(t, result.Audio)
}

func TestReceiverMalformed(t *testing.T) {
	samples := tone(16384, 10*rf.KHz)
	bad := append(sdr.SamplesC64(nil), samples...)
	bad[100] = complex(float32(math.NaN()), 0)

	clean := newReceiver(t, radio.ModeFM)
	expected, err := clean.Process(samples)
	assert.NoError(t, err)

	rcv := newReceiver(t, radio.ModeFM)
	_, err = rcv.Process(bad)
	assert.ErrorIs(t, err, radio.ErrMalformedBlock)

	got, err := rcv.Process(samples)
	assert.NoError(t, err)
	assert.Equal(t, expected.Audio, got.Audio)
}

func TestReceiverDigital(t *testing.T) {
	rcv := newReceiver(t, radio.ModeDigital)

	level := float32('A'+0.5) / 127
	block := make(sdr.SamplesC64, 16384)
	for i := range block {
		block[i] = complex(level, 0)
	}

	result, err := rcv.Process(block)
	assert.NoError(t, err)
	assert.Nil(t, result.Audio)
	assert.True(t, result.Active)
	assert.InDelta(t, float64(level)*float64(level), result.Energy, 0.01)

	if assert.NotNil(t, result.Message) {
		assert.Contains(t, result.Message.Text, strings.Repeat("A", 700))
		assert.Equal(t, 100*rf.MHz, result.Message.Frequency)
		assert.InDelta(t, 10*math.Log10(result.Energy), result.Message.Level, 1e-9)
		assert.True(t, strings.HasPrefix(result.Message.String(), radio.MessagePrefix))
	}
}

func TestReceiverDigitalQuiet(t *testing.T) {
	rcv := newReceiver(t, radio.ModeDigital)

	block := make(sdr.SamplesC64, 16384)
	for i := range block {
		block[i] = 0.05
	}

	result, err := rcv.Process(block)
	assert.NoError(t, err)
	assert.False(t, result.Active)
	assert.Nil(t, result.Message)
	assert.Nil(t, result.Audio)
}

// vim: foldmethod=marker
