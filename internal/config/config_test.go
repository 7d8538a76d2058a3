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

package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"hz.tools/radio/internal/config"
	"hz.tools/rf"
)

func TestLoadEmpty(t *testing.T) {
	cfg, err := config.LoadFromReader(strings.NewReader(""))
	assert.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
	assert.True(t, cfg.Device.AutomaticGain())

	assert.False(t, cfg.Channel.Enabled())
	bw, err := cfg.Channel.BandwidthHz()
	assert.NoError(t, err)
	assert.Equal(t, rf.Hz(0), bw)
}

func TestChannelAuto(t *testing.T) {
	cfg, err := config.LoadFromReader(strings.NewReader("channel: {bandwidth: auto}\n"))
	assert.NoError(t, err)
	assert.True(t, cfg.Channel.Enabled())

	bw, err := cfg.Channel.BandwidthHz()
	assert.NoError(t, err)
	assert.Equal(t, rf.Hz(0), bw)
}

func TestLoadFull(t *testing.T) {
	cfg, err := config.LoadFromReader(strings.NewReader(`
device:
  driver: rtltcp
  address: 192.168.1.20:1234
  gain: 28.6
  ppm: -3
audio:
  sink: alsa_output.usb
channel:
  bandwidth: 25kHz
log:
  level: debug
metrics:
  addr: ":9090"
`))
	assert.NoError(t, err)

	assert.Equal(t, config.DriverRTLTCP, cfg.Device.Driver)
	assert.Equal(t, "192.168.1.20:1234", cfg.Device.Address)
	assert.Equal(t, -3, cfg.Device.PPM)
	assert.False(t, cfg.Device.AutomaticGain())
	gain, err := cfg.Device.GainDB()
	assert.NoError(t, err)
	assert.InDelta(t, 28.6, gain, 1e-5)

	assert.Equal(t, "alsa_output.usb", cfg.Audio.Sink)
	bw, err := cfg.Channel.BandwidthHz()
	assert.NoError(t, err)
	assert.Equal(t, 25*rf.KHz, bw)

	assert.Equal(t, slog.LevelDebug, cfg.Log.Level.Level())
	assert.Equal(t, ":9090", cfg.Metrics.Addr)
}

func TestLoadUnknownField(t *testing.T) {
	_, err := config.LoadFromReader(strings.NewReader(`
device:
  drvier: rtlsdr
`))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	for name, tc := range map[string]struct {
		yaml string
		want string
	}{
		"driver":    {"device: {driver: hackrf}", "device.driver"},
		"address":   {"device: {driver: rtltcp}", "device.address"},
		"path":      {"device: {driver: rfcap}", "device.path"},
		"gain":      {"device: {gain: loud}", "device.gain"},
		"bandwidth": {"channel: {bandwidth: wide}", "channel.bandwidth"},
		"negative":  {"channel: {bandwidth: -5kHz}", "channel.bandwidth"},
		"log level": {"log: {level: chatty}", "log.level"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := config.LoadFromReader(strings.NewReader(tc.yaml))
			assert.ErrorContains(t, err, tc.want)
		})
	}
}

func TestValidateJoinsErrors(t *testing.T) {
	_, err := config.LoadFromReader(strings.NewReader(`
device: {driver: rfcap, gain: loud}
log: {level: chatty}
`))
	assert.ErrorContains(t, err, "device.path")
	assert.ErrorContains(t, err, "device.gain")
	assert.ErrorContains(t, err, "log.level")
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "radio.yaml")
	assert.NoError(t, os.WriteFile(path, []byte("device: {driver: rfcap, path: '-'}\n"), 0o644))

	cfg, err := config.Load(path)
	assert.NoError(t, err)
	assert.Equal(t, config.DriverRFCap, cfg.Device.Driver)
	assert.Equal(t, "-", cfg.Device.Path)

	_, err = config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseFrequency(t *testing.T) {
	for in, want := range map[string]rf.Hz{
		"131550000": rf.Hz(131_550_000),
		"118.5MHz":  118.5 * rf.MHz,
		"25kHz":     25 * rf.KHz,
		" 1e6 ":     1 * rf.MHz,
	} {
		got, err := config.ParseFrequency(in)
		assert.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := config.ParseFrequency("fast")
	assert.Error(t, err)
}

func TestGainDB(t *testing.T) {
	gain, err := config.Device{Gain: "12.5dB"}.GainDB()
	assert.NoError(t, err)
	assert.Equal(t, float32(12.5), gain)

	_, err = config.Device{Gain: "AUTO"}.GainDB()
	assert.Error(t, err)
}

// vim: foldmethod=marker
