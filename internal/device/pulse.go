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

package device

import (
	"fmt"
	"math"
	"sync"

	"hz.tools/pulseaudio"

	"hz.tools/radio"
)

// PulseSink plays mono PCM audio through PulseAudio.
type PulseSink struct {
	writer *pulseaudio.Writer
	buf    []float32
	once   sync.Once
}

// OpenPulse will open a mono playback stream at rate on the named sink, or
// on the server default when sink is empty.
func OpenPulse(rate uint, sink, streamName string) (*PulseSink, error) {
	writer, err := pulseaudio.NewWriter(pulseaudio.Config{
		Format:     pulseaudio.SampleFormatFloat32NE,
		Rate:       rate,
		AppName:    "rf",
		StreamName: streamName,
		SinkName:   sink,
		Channels:   1,
	})
	if err != nil {
		return nil, fmt.Errorf("device: opening pulseaudio stream: %w", err)
	}
	return &PulseSink{writer: writer}, nil
}

// Write implements the radio.AudioSink interface. It blocks until the
// server has room for the block.
func (p *PulseSink) Write(block radio.PCMBlock) error {
	if len(block) == 0 {
		return nil
	}
	p.buf = PCMToFloat(p.buf[:0], block)
	return p.writer.Write(p.buf)
}

// Close implements the radio.AudioSink interface.
func (p *PulseSink) Close() error {
	p.once.Do(p.writer.Close)
	return nil
}

// PCMToFloat appends block to dst as float32 samples in [-1, 1).
func PCMToFloat(dst []float32, block radio.PCMBlock) []float32 {
	for _, s := range block {
		dst = append(dst, float32(s)/-math.MinInt16)
	}
	return dst
}

// vim: foldmethod=marker
