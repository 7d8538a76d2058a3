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
	"fmt"
)

var (
	// ErrInvalidMode will be returned when the requested Mode is not one of
	// the known demodulation modes.
	ErrInvalidMode = fmt.Errorf("radio: invalid mode")

	// ErrInvalidFrequency will be returned when the center frequency is not
	// a positive, finite number of Hz.
	ErrInvalidFrequency = fmt.Errorf("radio: invalid center frequency")

	// ErrInvalidDecimation will be returned when the source and audio rates
	// do not allow for an integer decimation factor of at least 1.
	ErrInvalidDecimation = fmt.Errorf("radio: decimation factor must be at least 1")

	// ErrInvalidBlockSize will be returned when the block size is not
	// a positive number of samples.
	ErrInvalidBlockSize = fmt.Errorf("radio: block size must be positive")

	// ErrMalformedBlock is returned for sample blocks containing NaN or
	// infinite values. These blocks are skipped, not fatal.
	ErrMalformedBlock = fmt.Errorf("radio: malformed sample block")

	// ErrShortBlock is returned when the source ended partway through
	// a block.
	ErrShortBlock = fmt.Errorf("radio: short sample block")
)

// ConfigError is returned for invalid run configuration. It is always
// reported before any device is opened.
type ConfigError struct {
	Field string
	Err   error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("radio: invalid %s: %v", e.Field, e.Err)
}

// Unwrap returns the underlying error.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// DeviceError is returned when the sample source or the audio sink fails to
// open, or fails mid-stream. It ends the run.
type DeviceError struct {
	// Op is a short description of what was being done, such as
	// "open source" or "write audio".
	Op  string
	Err error
}

// Error implements the error interface.
func (e *DeviceError) Error() string {
	return fmt.Sprintf("radio: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *DeviceError) Unwrap() error {
	return e.Err
}

// vim: foldmethod=marker
