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
	"strings"

	"hz.tools/rf"
)

// Mode selects which demodulator the Receiver is built around. It is fixed
// for the lifetime of a run.
type Mode uint8

const (
	// ModeFM demodulates frequency modulated audio.
	ModeFM Mode = iota + 1

	// ModeAM demodulates amplitude modulated audio.
	ModeAM

	// ModeDigital takes the envelope of the signal and dumps any printable
	// text found in it. This is not an ACARS decoder.
	ModeDigital
)

// String returns the name of the Mode as used on the command line.
func (m Mode) String() string {
	switch m {
	case ModeFM:
		return "fm"
	case ModeAM:
		return "am"
	case ModeDigital:
		return "acars"
	default:
		return "unknown"
	}
}

// ParseMode will parse a mode name as returned by Mode.String.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fm":
		return ModeFM, nil
	case "am":
		return ModeAM, nil
	case "acars", "digital":
		return ModeDigital, nil
	default:
		return 0, &ConfigError{Field: "mode", Err: ErrInvalidMode}
	}
}

const (
	// DefaultSourceSampleRate is the rate the tuner is configured to
	// deliver IQ samples at.
	DefaultSourceSampleRate uint = 1_024_000

	// DefaultAudioSampleRate is the rate of the audio sink.
	DefaultAudioSampleRate uint = 48_000

	// DefaultBlockSize is the number of IQ samples in each SampleBlock.
	DefaultBlockSize = 16384
)

// Config is the immutable configuration of a single run.
type Config struct {
	// Mode of operation.
	Mode Mode

	// CenterFrequency the tuner is set to.
	CenterFrequency rf.Hz

	// SourceSampleRate is the IQ sample rate delivered by the tuner.
	SourceSampleRate uint

	// AudioSampleRate is the target rate of the demodulated output.
	AudioSampleRate uint

	// BlockSize is the number of IQ samples read from the source at once.
	BlockSize int
}

// NewConfig will return a Config for the provided mode and frequency, using
// the default rates and block size.
func NewConfig(mode Mode, freq rf.Hz) Config {
	return Config{
		Mode:             mode,
		CenterFrequency:  freq,
		SourceSampleRate: DefaultSourceSampleRate,
		AudioSampleRate:  DefaultAudioSampleRate,
		BlockSize:        DefaultBlockSize,
	}
}

// Validate will check the Config, returning a *ConfigError describing the
// first problem found.
func (c Config) Validate() error {
	switch c.Mode {
	case ModeFM, ModeAM, ModeDigital:
	default:
		return &ConfigError{Field: "mode", Err: ErrInvalidMode}
	}

	freq := float64(c.CenterFrequency)
	if freq <= 0 || math.IsNaN(freq) || math.IsInf(freq, 0) {
		return &ConfigError{Field: "frequency", Err: ErrInvalidFrequency}
	}

	if c.BlockSize <= 0 {
		return &ConfigError{Field: "block size", Err: ErrInvalidBlockSize}
	}

	_, err := c.DecimationFactor()
	return err
}

// DecimationFactor will return the integer ratio between the source rate and
// the rate the selected Mode decimates to. Non-integral ratios are truncated
// toward zero.
//
// AM decimates to half the audio rate, FM and the digital mode decimate to
// the audio rate.
func (c Config) DecimationFactor() (uint, error) {
	target := float64(c.AudioSampleRate)
	if c.Mode == ModeAM {
		target /= 2
	}
	if target <= 0 {
		return 0, &ConfigError{Field: "decimation", Err: ErrInvalidDecimation}
	}

	factor := math.Trunc(float64(c.SourceSampleRate) / target)
	if factor < 1 {
		return 0, &ConfigError{Field: "decimation", Err: ErrInvalidDecimation}
	}
	return uint(factor), nil
}

// OutputSampleRate is the rate of the demodulated signal after decimation,
// which only equals the audio rate when the decimation ratio is integral.
func (c Config) OutputSampleRate() (rf.Hz, error) {
	factor, err := c.DecimationFactor()
	if err != nil {
		return 0, err
	}
	return rf.Hz(float64(c.SourceSampleRate) / float64(factor)), nil
}

// vim: foldmethod=marker
