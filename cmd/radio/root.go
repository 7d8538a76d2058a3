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

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"hz.tools/fftw"
	"hz.tools/sdr"

	"hz.tools/radio"
	"hz.tools/radio/internal/config"
	"hz.tools/radio/internal/device"
	"hz.tools/radio/internal/observe"
)

const (
	exitOK     = 0
	exitDevice = 1
	exitConfig = 2
)

func exitCode(err error) int {
	var cfgErr *radio.ConfigError
	switch {
	case err == nil:
		return exitOK
	case errors.As(err, &cfgErr):
		return exitConfig
	default:
		return exitDevice
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "radio",
		Short: "listen to fm or am radio, or dump text from a digital channel",
		Long: `Tune an SDR to a single frequency and demodulate it. The fm and am
modes play audio through pulseaudio, the acars mode prints any printable
text found in the signal envelope.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return &radio.ConfigError{Field: "arguments", Err: fmt.Errorf("unexpected %q", args)}
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runRadio,
	}

	flags := cmd.Flags()
	flags.String("mode", "", "demodulation mode [fm|am|acars]")
	flags.String("freq", "", "center frequency, in Hz or with a unit such as 118.5MHz")
	flags.String("config", "", "path to a YAML file with device, audio and logging settings")
	cmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &radio.ConfigError{Field: "flags", Err: err}
	})

	return cmd
}

func runRadio(cmd *cobra.Command, args []string) error {
	rc, fileCfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: fileCfg.Log.Level.Level(),
	}))
	slog.SetDefault(logger)

	ctx := cmd.Context()
	metrics, shutdown, err := setupMetrics(ctx, fileCfg.Metrics.Addr, logger)
	if err != nil {
		return fmt.Errorf("radio: setting up metrics: %w", err)
	}
	defer shutdown()

	var channel *radio.ChannelConfig
	if fileCfg.Channel.Enabled() {
		bandwidth, err := fileCfg.Channel.BandwidthHz()
		if err != nil {
			return &radio.ConfigError{Field: "channel bandwidth", Err: err}
		}
		channel = &radio.ChannelConfig{
			Mode:      rc.Mode,
			Bandwidth: bandwidth,
			Planner:   fftw.Plan,
		}
	}

	driverCfg := radio.DriverConfig{
		Config:     rc,
		OpenSource: sourceOpener(fileCfg.Device, channel, logger),
		Console:    cmd.OutOrStdout(),
		Logger:     logger,
		Metrics:    metrics,
	}
	if rc.Mode != radio.ModeDigital {
		driverCfg.OpenSink = sinkOpener(fileCfg.Audio)
	}

	driver, err := radio.NewDriver(driverCfg)
	if err != nil {
		return err
	}

	logger.Info("starting",
		"mode", rc.Mode,
		"frequency", rc.CenterFrequency,
		"sample_rate", rc.SourceSampleRate,
		"driver", fileCfg.Device.Driver,
	)
	err = driver.Run(ctx)
	logger.Info("released resources", "state", driver.State())
	return err
}

func loadConfig(cmd *cobra.Command) (radio.Config, *config.Config, error) {
	flags := cmd.Flags()

	modeName, err := flags.GetString("mode")
	if err != nil {
		return radio.Config{}, nil, err
	}
	freqString, err := flags.GetString("freq")
	if err != nil {
		return radio.Config{}, nil, err
	}
	path, err := flags.GetString("config")
	if err != nil {
		return radio.Config{}, nil, err
	}

	mode, err := radio.ParseMode(modeName)
	if err != nil {
		return radio.Config{}, nil, err
	}
	freq, err := config.ParseFrequency(freqString)
	if err != nil {
		return radio.Config{}, nil, &radio.ConfigError{Field: "frequency", Err: err}
	}

	rc := radio.NewConfig(mode, freq)
	if err := rc.Validate(); err != nil {
		return radio.Config{}, nil, err
	}

	fileCfg := config.Default()
	if path != "" {
		if fileCfg, err = config.Load(path); err != nil {
			return radio.Config{}, nil, &radio.ConfigError{Field: "config file", Err: err}
		}
	}
	return rc, fileCfg, nil
}

func sourceOpener(cfg config.Device, channel *radio.ChannelConfig, logger *slog.Logger) radio.SourceOpener {
	return func(ctx context.Context, rc radio.Config) (sdr.ReadCloser, error) {
		dev, err := device.Open(cfg)
		if err != nil {
			return nil, err
		}

		tuner := radio.TunerConfig{
			CenterFrequency: rc.CenterFrequency,
			SampleRate:      rc.SourceSampleRate,
			AutomaticGain:   cfg.AutomaticGain(),
			Logger:          logger,
		}
		if !tuner.AutomaticGain {
			if tuner.Gain, err = cfg.GainDB(); err != nil {
				return nil, errors.Join(err, dev.Close())
			}
		}

		rx, err := radio.Tune(dev, tuner)
		if err != nil || channel == nil {
			return rx, err
		}

		reader, err := radio.FilterChannel(rx, *channel)
		if err != nil {
			return nil, errors.Join(err, rx.Close())
		}
		logger.Info("channel filter", "bandwidth", channel.Bandwidth, "mode", channel.Mode)
		return sdr.ReaderWithCloser(reader, rx.Close), nil
	}
}

func sinkOpener(cfg config.Audio) radio.SinkOpener {
	return func(ctx context.Context, rc radio.Config) (radio.AudioSink, error) {
		if cfg.WAV != "" {
			return device.CreateWAV(cfg.WAV, rc.AudioSampleRate)
		}
		return device.OpenPulse(rc.AudioSampleRate, cfg.Sink, rc.Mode.String())
	}
}

func setupMetrics(ctx context.Context, addr string, logger *slog.Logger) (*observe.Metrics, func(), error) {
	if addr == "" {
		return nil, func() {}, nil
	}

	provider, err := observe.InitProvider(ctx, observe.ProviderConfig{})
	if err != nil {
		return nil, nil, err
	}
	metrics, err := provider.Metrics()
	if err != nil {
		return nil, nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", provider.Handler())
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("metrics server failed", "addr", addr, "err", err)
		}
	}()
	logger.Info("serving metrics", "addr", addr)

	return metrics, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("metrics server shutdown", "err", err)
		}
		if err := provider.Shutdown(shutdownCtx); err != nil {
			logger.Warn("metrics provider shutdown", "err", err)
		}
	}, nil
}

// vim: foldmethod=marker
