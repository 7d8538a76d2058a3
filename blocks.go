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
	"io"
	"iter"

	"hz.tools/sdr"
)

// BlockReader will read fixed-size blocks of complex64 IQ samples from an
// sdr.Reader. Readers in other sample formats are read in their own format
// and converted one block at a time.
type BlockReader struct {
	reader sdr.Reader
	size   int

	// raw is the native buffer for sources not delivering complex64.
	raw sdr.Samples
}

// NewBlockReader will create a BlockReader returning blocks of size samples.
func NewBlockReader(reader sdr.Reader, size int) (*BlockReader, error) {
	if size <= 0 {
		return nil, &ConfigError{Field: "block size", Err: ErrInvalidBlockSize}
	}

	br := &BlockReader{reader: reader, size: size}
	if format := reader.SampleFormat(); format != sdr.SampleFormatC64 {
		raw, err := sdr.MakeSamples(format, size)
		if err != nil {
			return nil, err
		}
		br.raw = raw
	}
	return br, nil
}

// SampleRate returns the rate of the underlying reader.
func (br *BlockReader) SampleRate() uint {
	return br.reader.SampleRate()
}

// Next will block until a whole block has been read. Every call returns
// a newly allocated block which belongs to the caller.
//
// io.EOF is returned once the source is exhausted on a block boundary. If
// the source ends partway through a block, the partial block is discarded
// and ErrShortBlock is returned.
func (br *BlockReader) Next() (sdr.SamplesC64, error) {
	block := make(sdr.SamplesC64, br.size)
	var buf sdr.Samples = block
	if br.raw != nil {
		buf = br.raw
	}

	n, err := sdr.ReadFull(br.reader, buf)
	switch {
	case n == br.size:
		if br.raw != nil {
			if _, err := sdr.ConvertBuffer(block, br.raw); err != nil {
				return nil, err
			}
		}
		return block, nil
	case errors.Is(err, sdr.ErrUnexpectedEOF), n > 0 && (err == nil || errors.Is(err, io.EOF)):
		return nil, fmt.Errorf("%w: read %d of %d samples", ErrShortBlock, n, br.size)
	default:
		return nil, err
	}
}

// All returns an iterator over the remaining blocks. Iteration stops after
// the first error, which is yielded with a nil block. A clean end of stream
// ends the iteration without an error.
func (br *BlockReader) All() iter.Seq2[sdr.SamplesC64, error] {
	return func(yield func(sdr.SamplesC64, error) bool) {
		for {
			block, err := br.Next()
			if errors.Is(err, io.EOF) {
				return
			}
			if !yield(block, err) || err != nil {
				return
			}
		}
	}
}

// vim: foldmethod=marker
