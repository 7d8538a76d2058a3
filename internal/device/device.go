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

// Package device opens the hardware behind a run: the tuner (or a capture
// standing in for one) and the PulseAudio sink.
package device

import (
	"errors"
	"fmt"
	"io"
	"os"

	"hz.tools/rfcap"
	"hz.tools/sdr"
	"hz.tools/sdr/rtl"
	"hz.tools/sdr/rtltcp"
	"hz.tools/sdr/stream"

	"hz.tools/radio/internal/config"
)

// Open will open the receiver described by cfg. The receiver is not tuned
// and not streaming yet.
func Open(cfg config.Device) (sdr.Receiver, error) {
	switch cfg.Driver {
	case config.DriverRTLSDR, "":
		return openRTL(cfg)
	case config.DriverRTLTCP:
		client, err := rtltcp.Dial("tcp", cfg.Address)
		if err != nil {
			return nil, fmt.Errorf("device: dialing rtl_tcp at %s: %w", cfg.Address, err)
		}
		return client, nil
	case config.DriverRFCap:
		return OpenCapture(cfg.Path)
	default:
		return nil, fmt.Errorf("device: unknown driver %q", cfg.Driver)
	}
}

func openRTL(cfg config.Device) (sdr.Receiver, error) {
	dev, err := rtl.New(cfg.Index, 0)
	if err != nil {
		return nil, fmt.Errorf("device: opening rtlsdr %d: %w", cfg.Index, err)
	}
	if cfg.PPM != 0 {
		if err := dev.SetPPM(cfg.PPM); err != nil {
			return nil, errors.Join(
				fmt.Errorf("device: setting ppm to %d: %w", cfg.PPM, err),
				dev.Close(),
			)
		}
	}
	return dev, nil
}

// OpenCapture will open an rfcap capture at path, or read one from stdin if
// path is "-". Samples are released at the rate they were recorded at.
func OpenCapture(path string) (sdr.Receiver, error) {
	var file io.ReadCloser = io.NopCloser(os.Stdin)
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("device: opening capture: %w", err)
		}
		file = f
	}

	dev, err := rfcap.ReaderSdr(file)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("device: reading capture header: %w", err), file.Close())
	}
	return capture{Receiver: dev, file: file}, nil
}

type capture struct {
	sdr.Receiver
	file io.Closer
}

func (c capture) StartRx() (sdr.ReadCloser, error) {
	rx, err := c.Receiver.StartRx()
	if err != nil {
		return nil, err
	}
	throttled, err := stream.Throttle(rx)
	if err != nil {
		return nil, err
	}
	return sdr.ReaderWithCloser(throttled, rx.Close), nil
}

func (c capture) Close() error {
	return errors.Join(c.Receiver.Close(), c.file.Close())
}

// vim: foldmethod=marker
