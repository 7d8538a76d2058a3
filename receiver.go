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
	"math"
	"time"

	"hz.tools/sdr"
)

// Result is the outcome of processing one block of IQ samples.
type Result struct {
	// Audio is the normalized audio for the block. It is nil when the
	// block was silent, and always nil in the digital mode.
	Audio PCMBlock

	// Energy is the mean squared envelope of the block. It is only set in
	// the digital mode.
	Energy float64

	// Active is set when the digital mode found enough energy in the
	// block to search it for text.
	Active bool

	// Message is the text found in the block, if any.
	Message *Message
}

// Receiver turns blocks of IQ samples into audio or text, according to the
// Mode it was created with. Only the demodulator for that Mode is built.
//
// A Receiver carries state from one block to the next and must not be used
// from more than one goroutine at a time.
type Receiver struct {
	config Config
	now    func() time.Time

	fm       *FMDemodulator
	am       *AMDemodulator
	envelope *EnvelopeDemodulator
	text     TextExtractor
}

// NewReceiver will validate cfg and create a Receiver for it.
func NewReceiver(cfg Config) (*Receiver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	factor, err := cfg.DecimationFactor()
	if err != nil {
		return nil, err
	}

	r := &Receiver{
		config: cfg,
		now:    time.Now,
		text:   DefaultTextExtractor(),
	}

	switch cfg.Mode {
	case ModeFM:
		r.fm, err = NewFMDemodulator(factor)
	case ModeAM:
		r.am, err = NewAMDemodulator(factor)
	case ModeDigital:
		r.envelope, err = NewEnvelopeDemodulator(factor)
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Config returns the configuration the Receiver was created with.
func (r *Receiver) Config() Config {
	return r.config
}

// Process will demodulate one block. Blocks containing NaN or infinite
// samples are rejected with ErrMalformedBlock before any state is touched.
func (r *Receiver) Process(block sdr.SamplesC64) (Result, error) {
	if err := ValidateBlock(block); err != nil {
		return Result{}, err
	}

	switch r.config.Mode {
	case ModeFM:
		audio, err := Normalize(r.fm.Demodulate(block))
		return Result{Audio: audio}, err
	case ModeAM:
		audio, err := Normalize(r.am.Demodulate(block))
		return Result{Audio: audio}, err
	case ModeDigital:
		return r.processDigital(block), nil
	default:
		return Result{}, fmt.Errorf("radio: receiver has no demodulator for %s", r.config.Mode)
	}
}

func (r *Receiver) processDigital(block sdr.SamplesC64) Result {
	envelope := r.envelope.Demodulate(block)
	result := Result{Energy: Energy(envelope)}
	if !r.text.Active(result.Energy) {
		return result
	}
	result.Active = true

	text, ok := r.text.Extract(envelope)
	if !ok {
		return result
	}
	result.Message = &Message{
		Time:      r.now(),
		Frequency: r.config.CenterFrequency,
		Level:     10 * math.Log10(result.Energy),
		Text:      text,
	}
	return result
}

// vim: foldmethod=marker
