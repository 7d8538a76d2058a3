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
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"hz.tools/radio"
)

const (
	wavBitDepth = 16
	wavPCM      = 1
)

// WAVSink records mono PCM audio to a WAV file. The header is only complete
// once the sink has been closed.
type WAVSink struct {
	file *os.File
	enc  *wav.Encoder
	buf  *audio.IntBuffer

	once     sync.Once
	closeErr error
}

// CreateWAV will create (or truncate) the WAV file at path, to be written
// at rate.
func CreateWAV(path string, rate uint) (*WAVSink, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("device: creating wav file: %w", err)
	}
	return &WAVSink{
		file: file,
		enc:  wav.NewEncoder(file, int(rate), wavBitDepth, 1, wavPCM),
		buf: &audio.IntBuffer{
			Format:         &audio.Format{NumChannels: 1, SampleRate: int(rate)},
			SourceBitDepth: wavBitDepth,
		},
	}, nil
}

// Write implements the radio.AudioSink interface.
func (w *WAVSink) Write(block radio.PCMBlock) error {
	if len(block) == 0 {
		return nil
	}
	data := w.buf.Data[:0]
	for _, s := range block {
		data = append(data, int(s))
	}
	w.buf.Data = data
	return w.enc.Write(w.buf)
}

// Close implements the radio.AudioSink interface. It finishes the WAV
// header and closes the file.
func (w *WAVSink) Close() error {
	w.once.Do(func() {
		w.closeErr = errors.Join(w.enc.Close(), w.file.Close())
	})
	return w.closeErr
}

// vim: foldmethod=marker
