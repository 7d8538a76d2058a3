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

// Package observe holds the OpenTelemetry instruments recorded while
// streaming, and the provider that exports them to Prometheus.
package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const meterName = "hz.tools/radio"

// Metrics holds the instruments updated by the streaming pipeline. All of
// them are safe for concurrent use.
type Metrics struct {
	// BlocksRead counts IQ blocks taken from the source.
	BlocksRead metric.Int64Counter

	// BlocksWritten counts audio blocks handed to the sink.
	BlocksWritten metric.Int64Counter

	// BlocksSilent counts audio blocks dropped for having no signal.
	BlocksSilent metric.Int64Counter

	// BlocksMalformed counts IQ blocks skipped for holding NaN or
	// infinite samples.
	BlocksMalformed metric.Int64Counter

	// BlocksInactive counts digital blocks below the energy threshold.
	BlocksInactive metric.Int64Counter

	// Messages counts text messages written to the console.
	Messages metric.Int64Counter

	// BlockDuration tracks how long one block takes to process.
	BlockDuration metric.Float64Histogram
}

// blockBuckets are in seconds. A 16384 sample block at 1.024 MHz spans
// 16 ms, so anything past that is falling behind.
var blockBuckets = []float64{
	0.0005, 0.001, 0.002, 0.004, 0.008, 0.016, 0.032, 0.064,
}

// NewMetrics will create all instruments from mp.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	counters := []struct {
		dst  *metric.Int64Counter
		name string
		desc string
	}{
		{&met.BlocksRead, "radio.blocks.read", "IQ blocks read from the source."},
		{&met.BlocksWritten, "radio.blocks.written", "Audio blocks written to the sink."},
		{&met.BlocksSilent, "radio.blocks.silent", "Audio blocks dropped as silent."},
		{&met.BlocksMalformed, "radio.blocks.malformed", "IQ blocks skipped for non-finite samples."},
		{&met.BlocksInactive, "radio.blocks.inactive", "Digital blocks below the energy threshold."},
		{&met.Messages, "radio.messages", "Text messages extracted."},
	}
	for _, c := range counters {
		if *c.dst, err = m.Int64Counter(c.name,
			metric.WithDescription(c.desc),
			metric.WithUnit("{block}"),
		); err != nil {
			return nil, err
		}
	}

	if met.BlockDuration, err = m.Float64Histogram("radio.block.duration",
		metric.WithDescription("Time taken to demodulate one block."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(blockBuckets...),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// Discard returns Metrics backed by a no-op provider.
func Discard() *Metrics {
	met, err := NewMetrics(noop.NewMeterProvider())
	if err != nil {
		panic(err)
	}
	return met
}

// Mode returns the attribute option used to tag every measurement with the
// demodulation mode.
func Mode(mode string) metric.MeasurementOption {
	return metric.WithAttributes(attribute.String("mode", mode))
}

// Observe records the time spent on one block.
func (m *Metrics) Observe(ctx context.Context, seconds float64, opts ...metric.RecordOption) {
	m.BlockDuration.Record(ctx, seconds, opts...)
}

// vim: foldmethod=marker
