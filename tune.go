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
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"hz.tools/radio/internal"
	"hz.tools/rf"
	"hz.tools/sdr"
	"hz.tools/sdr/fft"
	"hz.tools/sdr/stream"
)

// TunerConfig defines how a receiver should be set up before streaming.
type TunerConfig struct {
	// CenterFrequency to tune to.
	CenterFrequency rf.Hz

	// SampleRate to request from the hardware.
	SampleRate uint

	// AutomaticGain will turn on the device AGC. When unset, Gain is applied
	// to the first receive gain stage.
	AutomaticGain bool

	// Gain in dB.
	Gain float32

	// Logger, or slog.Default if nil.
	Logger *slog.Logger
}

// Tune will configure dev according to cfg and start receiving. Settings
// the device can't change, such as the frequency of a recording, are
// logged and skipped.
//
// Tune takes ownership of dev. Closing the returned ReadCloser stops the
// stream and then closes dev, exactly once. If Tune fails, dev has already
// been closed.
func Tune(dev sdr.Receiver, cfg TunerConfig) (sdr.ReadCloser, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	rx, err := tune(dev, cfg, logger)
	if err != nil {
		return nil, errors.Join(err, dev.Close())
	}

	var (
		once     sync.Once
		closeErr error
	)
	return sdr.ReaderWithCloser(rx, func() error {
		once.Do(func() {
			closeErr = errors.Join(rx.Close(), dev.Close())
		})
		return closeErr
	}), nil
}

func tune(dev sdr.Receiver, cfg TunerConfig, logger *slog.Logger) (sdr.ReadCloser, error) {
	if err := unsupported(logger, "center frequency", dev.SetCenterFrequency(cfg.CenterFrequency)); err != nil {
		return nil, err
	}
	if err := unsupported(logger, "sample rate", dev.SetSampleRate(cfg.SampleRate)); err != nil {
		return nil, err
	}

	if cfg.AutomaticGain {
		if err := unsupported(logger, "automatic gain", dev.SetAutomaticGain(true)); err != nil {
			return nil, err
		}
	} else if err := setGain(dev, cfg.Gain, logger); err != nil {
		return nil, err
	}

	freq, err := dev.GetCenterFrequency()
	if err != nil {
		return nil, fmt.Errorf("radio: reading back center frequency: %w", err)
	}
	rate, err := dev.GetSampleRate()
	if err != nil {
		return nil, fmt.Errorf("radio: reading back sample rate: %w", err)
	}
	logger.Info("tuned", "frequency", freq, "sample_rate", rate)

	return dev.StartRx()
}

func setGain(dev sdr.Receiver, gain float32, logger *slog.Logger) error {
	if err := unsupported(logger, "automatic gain", dev.SetAutomaticGain(false)); err != nil {
		return err
	}

	stages, err := dev.GetGainStages()
	if err != nil {
		return unsupported(logger, "gain", err)
	}
	stage := stages.First(sdr.GainStageTypeRecieve)
	if stage == nil {
		logger.Warn("no receive gain stage, leaving gain alone")
		return nil
	}
	return unsupported(logger, "gain", dev.SetGain(stage, gain))
}

func unsupported(logger *slog.Logger, setting string, err error) error {
	if errors.Is(err, sdr.ErrNotSupported) {
		logger.Debug("device does not support setting", "setting", setting)
		return nil
	}
	if err != nil {
		return fmt.Errorf("radio: setting %s: %w", setting, err)
	}
	return nil
}

// Channel widths kept by FilterChannel when no bandwidth is given.
var (
	// AMChannelWidth is a 10 kHz broadcast AM channel.
	AMChannelWidth rf.Hz = 10 * rf.KHz

	// FMChannelWidth is a 200 kHz broadcast FM channel.
	FMChannelWidth rf.Hz = 200 * rf.KHz

	// AirbandChannelWidth is a 25 kHz VHF airband channel, which is where
	// the digital mode listens.
	AirbandChannelWidth rf.Hz = 25 * rf.KHz
)

// ChannelWidth returns the bandwidth of a typical channel for mode.
func ChannelWidth(mode Mode) rf.Hz {
	switch mode {
	case ModeAM:
		return AMChannelWidth
	case ModeDigital:
		return AirbandChannelWidth
	default:
		return FMChannelWidth
	}
}

// ChannelConfig selects the slice of the IQ stream FilterChannel keeps.
type ChannelConfig struct {
	// Mode picks the channel width when Bandwidth is zero.
	Mode Mode

	// Bandwidth is the total width kept, centred on Offset.
	Bandwidth rf.Hz

	// Offset of the channel from the tuned frequency.
	Offset rf.Hz

	// Planner runs the FFTs behind the convolution.
	Planner fft.Planner
}

// channelBins is the FFT size of the channel filter.
const channelBins = 1 << 15

// FilterChannel will band-pass reader down to a single channel. Readers
// that are not complex64 are converted first.
func FilterChannel(reader sdr.Reader, cfg ChannelConfig) (sdr.Reader, error) {
	width := cfg.Bandwidth
	if width == 0 {
		width = ChannelWidth(cfg.Mode)
	}
	if !(width > 0) || width > rf.Hz(reader.SampleRate()) {
		return nil, &ConfigError{
			Field: "channel bandwidth",
			Err:   fmt.Errorf("%s does not fit in %d samples per second", width, reader.SampleRate()),
		}
	}

	if reader.SampleFormat() != sdr.SampleFormatC64 {
		converted, err := stream.ConvertReader(reader, sdr.SampleFormatC64)
		if err != nil {
			return nil, err
		}
		reader = converted
	}

	mask := make([]complex64, channelBins)
	band := rf.Range{cfg.Offset - width/2, cfg.Offset + width/2}
	if err := internal.Passband(mask, reader.SampleRate(), fft.ZeroFirst, band); err != nil {
		return nil, &ConfigError{Field: "channel bandwidth", Err: err}
	}
	return stream.ConvolutionReader(reader, cfg.Planner, mask)
}

// vim: foldmethod=marker
