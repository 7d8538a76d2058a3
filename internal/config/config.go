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

// Package config loads the optional YAML file describing where samples come
// from and where audio goes. Signal processing constants are not
// configurable here.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
	"hz.tools/rf"
)

// Driver names a sample source backend.
type Driver string

const (
	// DriverRTLSDR is a locally attached RTL-SDR dongle.
	DriverRTLSDR Driver = "rtlsdr"

	// DriverRTLTCP is an rtl_tcp server on the network.
	DriverRTLTCP Driver = "rtltcp"

	// DriverRFCap replays an rfcap capture file.
	DriverRFCap Driver = "rfcap"
)

// IsValid reports whether d is a known driver.
func (d Driver) IsValid() bool {
	switch d {
	case DriverRTLSDR, DriverRTLTCP, DriverRFCap:
		return true
	}
	return false
}

// LogLevel controls log verbosity.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Level returns the slog.Level for l, defaulting to info.
func (l LogLevel) Level() slog.Level {
	switch l {
	case LogDebug:
		return slog.LevelDebug
	case LogWarn:
		return slog.LevelWarn
	case LogError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// GainAuto selects the tuner AGC.
const GainAuto = "auto"

// BandwidthAuto sizes the channel filter to the mode.
const BandwidthAuto = "auto"

// Config is the top level of the YAML file.
type Config struct {
	Device  Device  `yaml:"device"`
	Audio   Audio   `yaml:"audio"`
	Channel Channel `yaml:"channel"`
	Log     Log     `yaml:"log"`
	Metrics Metrics `yaml:"metrics"`
}

// Device selects and sets up the sample source.
type Device struct {
	// Driver is one of rtlsdr, rtltcp or rfcap. Default: rtlsdr.
	Driver Driver `yaml:"driver"`

	// Index of the rtlsdr dongle.
	Index uint `yaml:"index"`

	// Address of the rtl_tcp server, as host:port.
	Address string `yaml:"address"`

	// Path to the rfcap file, or "-" for stdin.
	Path string `yaml:"path"`

	// Gain is "auto" or a gain in dB. Default: auto.
	Gain string `yaml:"gain"`

	// PPM is the rtlsdr frequency correction.
	PPM int `yaml:"ppm"`
}

// AutomaticGain reports whether the tuner AGC should be used.
func (d Device) AutomaticGain() bool {
	return d.Gain == "" || strings.EqualFold(d.Gain, GainAuto)
}

// GainDB returns the fixed gain. It is an error to call this when
// AutomaticGain is set.
func (d Device) GainDB() (float32, error) {
	if d.AutomaticGain() {
		return 0, fmt.Errorf("config: device.gain is automatic")
	}
	gain, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(d.Gain), "dB"), 32)
	if err != nil || math.IsNaN(gain) || math.IsInf(gain, 0) {
		return 0, fmt.Errorf("config: device.gain %q is neither %q nor a number of dB", d.Gain, GainAuto)
	}
	return float32(gain), nil
}

// Audio selects the sound output.
type Audio struct {
	// Sink is the PulseAudio sink name. Empty uses the server default.
	Sink string `yaml:"sink"`

	// WAV is a file to record 16 bit mono audio to instead of playing it
	// through PulseAudio.
	WAV string `yaml:"wav"`
}

// Channel configures the optional band-pass filter ahead of demodulation.
type Channel struct {
	// Bandwidth of the channel to keep, such as "25kHz", or "auto" for the
	// usual width of a channel in the selected mode. Empty turns the filter
	// off.
	Bandwidth string `yaml:"bandwidth"`
}

// Enabled reports whether the channel filter is on.
func (c Channel) Enabled() bool {
	return c.Bandwidth != ""
}

// BandwidthHz returns the parsed bandwidth. It is 0 when the filter is off
// or the width follows the mode.
func (c Channel) BandwidthHz() (rf.Hz, error) {
	if !c.Enabled() || strings.EqualFold(c.Bandwidth, BandwidthAuto) {
		return 0, nil
	}
	bw, err := ParseFrequency(c.Bandwidth)
	if err != nil {
		return 0, fmt.Errorf("config: channel.bandwidth: %w", err)
	}
	if !(bw > 0) || math.IsInf(float64(bw), 0) {
		return 0, fmt.Errorf("config: channel.bandwidth %q must be positive", c.Bandwidth)
	}
	return bw, nil
}

// Log configures logging.
type Log struct {
	Level LogLevel `yaml:"level"`
}

// Metrics configures the Prometheus endpoint.
type Metrics struct {
	// Addr to serve /metrics on, such as ":9090". Empty turns it off.
	Addr string `yaml:"addr"`
}

// Default returns the Config used when no file is given.
func Default() *Config {
	return &Config{
		Device: Device{
			Driver: DriverRTLSDR,
			Gain:   GainAuto,
		},
		Log: Log{Level: LogInfo},
	}
}

// ParseFrequency parses either a plain number of Hz or a value with a unit
// suffix, such as "118.5MHz".
func ParseFrequency(s string) (rf.Hz, error) {
	s = strings.TrimSpace(s)
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return rf.Hz(f), nil
	}
	return rf.ParseHz(s)
}

// Load reads the YAML configuration file at path and returns a validated
// Config.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r on top of the defaults and
// validates the result. An empty document yields the defaults.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values. It returns
// a joined error listing every problem found.
func Validate(cfg *Config) error {
	var errs []error

	if !cfg.Device.Driver.IsValid() {
		errs = append(errs, fmt.Errorf("device.driver %q is invalid; valid values: rtlsdr, rtltcp, rfcap", cfg.Device.Driver))
	}
	switch cfg.Device.Driver {
	case DriverRTLTCP:
		if cfg.Device.Address == "" {
			errs = append(errs, fmt.Errorf("device.address is required for the rtltcp driver"))
		}
	case DriverRFCap:
		if cfg.Device.Path == "" {
			errs = append(errs, fmt.Errorf("device.path is required for the rfcap driver"))
		}
	}
	if !cfg.Device.AutomaticGain() {
		if _, err := cfg.Device.GainDB(); err != nil {
			errs = append(errs, err)
		}
	}

	if _, err := cfg.Channel.BandwidthHz(); err != nil {
		errs = append(errs, err)
	}

	if cfg.Log.Level != "" && !cfg.Log.Level.IsValid() {
		errs = append(errs, fmt.Errorf("log.level %q is invalid; valid values: debug, info, warn, error", cfg.Log.Level))
	}

	return errors.Join(errs...)
}

// vim: foldmethod=marker
