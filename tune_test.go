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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"hz.tools/fftw"

	"hz.tools/radio"
	"hz.tools/rf"
	"hz.tools/sdr"
	"hz.tools/sdr/mock"
)

type testGainStage struct{}

func (testGainStage) Range() [2]float32 { return [2]float32{0, 50} }
func (testGainStage) Type() sdr.GainStageType { return sdr.GainStageTypeRecieve }
func (testGainStage) String() string { return "LNA" }

type countingReceiver struct {
	sdr.Receiver
	closes int
}

func (c *countingReceiver) Close() error {
	c.closes++
	return c.Receiver.Close()
}

type brokenTuner struct {
	*countingReceiver
}

func (brokenTuner) SetCenterFrequency(rf.Hz) error {
	return errors.New("pll not locked")
}

func newMock(cfg mock.Config) (*countingReceiver, sdr.PipeWriter) {
	reader, writer := sdr.Pipe(testSampleRate, sdr.SampleFormatC64)
	cfg.SampleFormat = sdr.SampleFormatC64
	cfg.Rx = mock.ThisRx(reader)
	return &countingReceiver{Receiver: mock.New(cfg)}, writer
}

func TestTune(t *testing.T) {
	dev, writer := newMock(mock.Config{
		GainStages: sdr.GainStages{testGainStage{}},
	})
	defer writer.Close()

	rx, err := radio.Tune(dev, radio.TunerConfig{
		CenterFrequency: rf.Hz(131_550_000),
		SampleRate:      testSampleRate,
		Gain:            20,
	})
	assert.NoError(t, err)
	assert.Equal(t, sdr.SampleFormatC64, rx.SampleFormat())

	freq, err := dev.GetCenterFrequency()
	assert.NoError(t, err)
	assert.Equal(t, rf.Hz(131_550_000), freq)

	rate, err := dev.GetSampleRate()
	assert.NoError(t, err)
	assert.Equal(t, uint(testSampleRate), rate)

	gain, err := dev.GetGain(testGainStage{})
	assert.NoError(t, err)
	assert.Equal(t, float32(20), gain)

	assert.NoError(t, rx.Close())
	assert.NoError(t, rx.Close())
	assert.Equal(t, 1, dev.closes)

	_, err = rx.Read(make(sdr.SamplesC64, 1))
	assert.ErrorIs(t, err, sdr.ErrPipeClosed)
}

func TestTuneUnsupportedSettings(t *testing.T) {
	// The mock has neither AGC nor gain stages.
	for _, agc := range []bool{true, false} {
		dev, writer := newMock(mock.Config{})
		rx, err := radio.Tune(dev, radio.TunerConfig{
			CenterFrequency: 100 * rf.MHz,
			SampleRate:      testSampleRate,
			AutomaticGain:   agc,
			Gain:            10,
		})
		assert.NoError(t, err)
		assert.NoError(t, rx.Close())
		writer.Close()
	}
}

func TestTuneStartRxFails(t *testing.T) {
	dev := &countingReceiver{Receiver: mock.New(mock.Config{})}
	_, err := radio.Tune(dev, radio.TunerConfig{
		CenterFrequency: 100 * rf.MHz,
		SampleRate:      testSampleRate,
	})
	assert.ErrorIs(t, err, sdr.ErrNotSupported)
	assert.Equal(t, 1, dev.closes)
}

func TestTuneFails(t *testing.T) {
	dev, writer := newMock(mock.Config{})
	defer writer.Close()

	_, err := radio.Tune(brokenTuner{dev}, radio.TunerConfig{
		CenterFrequency: 100 * rf.MHz,
		SampleRate:      testSampleRate,
	})
	assert.ErrorContains(t, err, "pll not locked")
	assert.Equal(t, 1, dev.closes)
}

func TestChannelWidth(t *testing.T) {
	assert.Equal(t, radio.FMChannelWidth, radio.ChannelWidth(radio.ModeFM))
	assert.Equal(t, radio.AMChannelWidth, radio.ChannelWidth(radio.ModeAM))
	assert.Equal(t, radio.AirbandChannelWidth, radio.ChannelWidth(radio.ModeDigital))
}

func filteredPower(t *testing.T, freq rf.Hz, cfg radio.ChannelConfig) float64 {
	t.Helper()
	cfg.Planner = fftw.Plan
	reader, err := radio.FilterChannel(feed(tone(1<<16, freq)), cfg)
	require.NoError(t, err)
	assert.Equal(t, sdr.SampleFormatC64, reader.SampleFormat())

	out := make(sdr.SamplesC64, 1<<15)
	_, err = sdr.ReadFull(reader, out)
	require.NoError(t, err)

	var power float64
	for _, s := range out {
		power += float64(real(s)*real(s) + imag(s)*imag(s))
	}
	return power / float64(len(out))
}

func TestFilterChannelMode(t *testing.T) {
	cfg := radio.ChannelConfig{Mode: radio.ModeDigital}
	assert.InDelta(t, 1, filteredPower(t, 5*rf.KHz, cfg), 1e-3)
	assert.InDelta(t, 0, filteredPower(t, 300*rf.KHz, cfg), 1e-3)

	// Broadcast FM keeps 100 kHz either side.
	cfg = radio.ChannelConfig{Mode: radio.ModeFM}
	assert.InDelta(t, 1, filteredPower(t, -62500*rf.Hz, cfg), 1e-3)
}

func TestFilterChannelOffset(t *testing.T) {
	cfg := radio.ChannelConfig{Bandwidth: 20 * rf.KHz, Offset: 200 * rf.KHz}
	assert.InDelta(t, 1, filteredPower(t, 200*rf.KHz, cfg), 1e-3)
	assert.InDelta(t, 0, filteredPower(t, 5*rf.KHz, cfg), 1e-3)
}

func TestFilterChannelConverts(t *testing.T) {
	reader, err := radio.FilterChannel(feed(make(sdr.SamplesU8, 1<<16)), radio.ChannelConfig{
		Mode:    radio.ModeAM,
		Planner: fftw.Plan,
	})
	require.NoError(t, err)
	assert.Equal(t, sdr.SampleFormatC64, reader.SampleFormat())
	assert.Equal(t, uint(testSampleRate), reader.SampleRate())
}

func TestFilterChannelWidth(t *testing.T) {
	var cfgErr *radio.ConfigError

	_, err := radio.FilterChannel(feed(make(sdr.SamplesC64, 0)), radio.ChannelConfig{
		Bandwidth: -5 * rf.KHz,
		Planner:   fftw.Plan,
	})
	assert.True(t, errors.As(err, &cfgErr))

	_, err = radio.FilterChannel(feed(make(sdr.SamplesC64, 0)), radio.ChannelConfig{
		Bandwidth: 2 * rf.MHz,
		Planner:   fftw.Plan,
	})
	assert.True(t, errors.As(err, &cfgErr))
}

// vim: foldmethod=marker
