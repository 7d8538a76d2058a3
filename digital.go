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
	"strings"
	"time"

	"hz.tools/rf"
	"hz.tools/sdr"
)

const (
	// DefaultEnergyThreshold is the mean squared envelope level a block
	// must exceed before it is searched for text.
	DefaultEnergyThreshold = 0.01

	// DefaultMinMessageLength is the number of characters a stripped
	// message must exceed to be reported.
	DefaultMinMessageLength = 10

	// MessagePrefix is written ahead of every message on the console.
	MessagePrefix = "[ACARS Raw Data]: "
)

// EnvelopeDemodulator produces the decimated envelope that the digital
// mode searches for text.
type EnvelopeDemodulator struct {
	decimator *Decimator
}

// NewEnvelopeDemodulator will create an EnvelopeDemodulator that decimates
// the envelope by factor.
func NewEnvelopeDemodulator(factor uint) (*EnvelopeDemodulator, error) {
	decimator, err := NewDecimator(factor)
	if err != nil {
		return nil, err
	}
	return &EnvelopeDemodulator{decimator: decimator}, nil
}

// Demodulate returns the decimated envelope of block.
func (d *EnvelopeDemodulator) Demodulate(block sdr.SamplesC64) RealBlock {
	return d.decimator.Decimate(Envelope(block))
}

// Energy returns the mean of the squared samples in block, or zero for an
// empty block.
func Energy(block RealBlock) float64 {
	if len(block) == 0 {
		return 0
	}
	var sum float64
	for _, v := range block {
		sum += float64(v) * float64(v)
	}
	return sum / float64(len(block))
}

// TextExtractor will pull printable ASCII out of an envelope by reading each
// sample as a signed byte.
type TextExtractor struct {
	// Threshold is the Energy a block must exceed to be searched at all.
	Threshold float64

	// MinLength is the number of characters the stripped text must exceed.
	MinLength int
}

// DefaultTextExtractor returns a TextExtractor with the default threshold
// and minimum length.
func DefaultTextExtractor() TextExtractor {
	return TextExtractor{
		Threshold: DefaultEnergyThreshold,
		MinLength: DefaultMinMessageLength,
	}
}

// Active reports whether a block with the given energy carries a signal.
func (t TextExtractor) Active(energy float64) bool {
	return energy > t.Threshold
}

// Extract converts every envelope sample to a byte, drops anything that is
// not printable ASCII, and trims surrounding whitespace. The text is only
// returned when it is longer than MinLength.
func (t TextExtractor) Extract(envelope RealBlock) (string, bool) {
	var sb strings.Builder
	for _, v := range envelope {
		b := byte(saturateInt8(v * 127))
		if isPrintable(b) {
			sb.WriteByte(b)
		}
	}

	text := strings.TrimSpace(sb.String())
	if len(text) <= t.MinLength {
		return "", false
	}
	return text, true
}

// saturateInt8 truncates v toward zero and clamps it to the int8 range.
func saturateInt8(v float32) int8 {
	switch {
	case math.IsNaN(float64(v)):
		return 0
	case v >= math.MaxInt8:
		return math.MaxInt8
	case v <= math.MinInt8:
		return math.MinInt8
	}
	return int8(v)
}

func isPrintable(b byte) bool {
	switch b {
	case '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return b >= 0x20 && b <= 0x7e
}

// Message is a chunk of text recovered from the digital mode.
type Message struct {
	Time      time.Time
	Frequency rf.Hz

	// Level is the block Energy in dB.
	Level float64

	Text string
}

var lineBreaks = strings.NewReplacer("\n", " ", "\r", " ", "\v", " ", "\f", " ")

// String renders the message as a single console line.
func (m Message) String() string {
	return MessagePrefix + lineBreaks.Replace(m.Text)
}

// Describe renders the message with its metadata, for logging.
func (m Message) Describe() string {
	return fmt.Sprintf(
		"%s %s %.1f dB %q",
		m.Time.UTC().Format(time.RFC3339), m.Frequency, m.Level, m.Text,
	)
}

// vim: foldmethod=marker
