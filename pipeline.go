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
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/errgroup"
	"hz.tools/sdr"

	"hz.tools/radio/internal/observe"
)

// AudioSink will play back PCM audio at the configured audio rate.
type AudioSink interface {
	Write(PCMBlock) error
	Close() error
}

// SourceOpener will open and start the IQ sample source for a run.
type SourceOpener func(context.Context, Config) (sdr.ReadCloser, error)

// SinkOpener will open the audio sink for a run.
type SinkOpener func(context.Context, Config) (AudioSink, error)

// State is where a Driver is in its lifecycle.
type State uint32

const (
	// StateIdle is a Driver that has not started yet.
	StateIdle State = iota

	// StateStreaming is a Driver moving blocks from source to sink.
	StateStreaming

	// StateDraining is a Driver that has been asked to stop and is
	// releasing its devices.
	StateDraining

	// StateClosed is a Driver that has released everything. It can't be
	// restarted.
	StateClosed
)

// String returns the name of the State.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStreaming:
		return "streaming"
	case StateDraining:
		return "draining"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("State(%d)", uint32(s))
	}
}

// DefaultQueueDepth is the number of blocks that may be waiting between the
// source and the demodulator.
const DefaultQueueDepth = 4

// malformedLogInterval is how many consecutive malformed blocks pass
// between warnings.
const malformedLogInterval = 100

// DriverConfig defines a single run of the Driver.
type DriverConfig struct {
	Config Config

	// OpenSource is required.
	OpenSource SourceOpener

	// OpenSink is required in the audio modes and unused in the digital
	// mode.
	OpenSink SinkOpener

	// Console receives extracted messages, one per line. Default: os.Stdout.
	Console io.Writer

	// QueueDepth is the number of blocks buffered between the reader and
	// the demodulator. Default: DefaultQueueDepth.
	QueueDepth int

	// Logger, or slog.Default if nil.
	Logger *slog.Logger

	// Metrics, or no-op instruments if nil.
	Metrics *observe.Metrics
}

// Driver owns the source, the Receiver and the sink for one run, and moves
// blocks between them until the context is cancelled, the source runs dry,
// or a device fails.
type Driver struct {
	config   DriverConfig
	receiver *Receiver
	logger   *slog.Logger
	metrics  *observe.Metrics
	attrs    metric.MeasurementOption

	started atomic.Bool
	state   atomic.Uint32

	malformed int
}

// NewDriver will validate cfg and build the Receiver. No device is opened
// until Run.
func NewDriver(cfg DriverConfig) (*Driver, error) {
	receiver, err := NewReceiver(cfg.Config)
	if err != nil {
		return nil, err
	}
	if cfg.OpenSource == nil {
		return nil, &ConfigError{Field: "source", Err: fmt.Errorf("no source opener")}
	}
	if cfg.Config.Mode != ModeDigital && cfg.OpenSink == nil {
		return nil, &ConfigError{Field: "sink", Err: fmt.Errorf("no audio sink opener for %s", cfg.Config.Mode)}
	}
	if cfg.Console == nil {
		cfg.Console = os.Stdout
	}
	if cfg.QueueDepth <= 0 {
		cfg.QueueDepth = DefaultQueueDepth
	}

	d := &Driver{
		config:   cfg,
		receiver: receiver,
		logger:   cfg.Logger,
		metrics:  cfg.Metrics,
		attrs:    observe.Mode(cfg.Config.Mode.String()),
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	d.logger = d.logger.With("mode", cfg.Config.Mode.String())
	if d.metrics == nil {
		d.metrics = observe.Discard()
	}
	return d, nil
}

// State returns the current State of the Driver.
func (d *Driver) State() State {
	return State(d.state.Load())
}

func (d *Driver) setState(s State) {
	if prev := State(d.state.Swap(uint32(s))); prev != s {
		d.logger.Debug("state change", "from", prev, "to", s)
	}
}

// Run will open the source and sink, then stream until ctx is cancelled,
// the source runs dry, or a device fails. Cancellation is a clean stop and
// returns nil, unless a device had already failed. Every device that was opened is closed exactly once before
// Run returns. A Driver can only be run once.
func (d *Driver) Run(ctx context.Context) error {
	if !d.started.CompareAndSwap(false, true) {
		return fmt.Errorf("radio: driver has already been run")
	}
	defer d.setState(StateClosed)

	cfg := d.config.Config
	source, err := d.config.OpenSource(ctx, cfg)
	if err != nil {
		return &DeviceError{Op: "open source", Err: err}
	}
	closeSource := sync.OnceValue(source.Close)
	defer func() {
		if err := closeSource(); err != nil {
			d.logger.Warn("failed to close source", "error", err)
		}
	}()

	var sink AudioSink
	if cfg.Mode != ModeDigital {
		if sink, err = d.config.OpenSink(ctx, cfg); err != nil {
			return &DeviceError{Op: "open audio sink", Err: err}
		}
		defer func() {
			if err := sink.Close(); err != nil {
				d.logger.Warn("failed to close audio sink", "error", err)
			}
		}()
	}

	blocks, err := NewBlockReader(source, cfg.BlockSize)
	if err != nil {
		return &DeviceError{Op: "open source", Err: err}
	}
	if rate := blocks.SampleRate(); rate != 0 && rate != cfg.SourceSampleRate {
		return &DeviceError{
			Op:  "open source",
			Err: fmt.Errorf("source delivers %d samples per second, expected %d", rate, cfg.SourceSampleRate),
		}
	}

	d.setState(StateStreaming)
	d.logger.Info("streaming",
		"frequency", cfg.CenterFrequency,
		"sample_rate", cfg.SourceSampleRate,
		"block_size", cfg.BlockSize,
	)

	g, gctx := errgroup.WithContext(ctx)
	queue := make(chan sdr.SamplesC64, d.config.QueueDepth)

	// A reader blocked inside the source only returns once the source is
	// closed.
	stop := context.AfterFunc(gctx, func() {
		d.state.CompareAndSwap(uint32(StateStreaming), uint32(StateDraining))
		closeSource()
	})
	defer stop()

	g.Go(func() error {
		defer close(queue)
		for block, err := range blocks.All() {
			if errors.Is(err, ErrShortBlock) {
				d.logger.Warn("source ended partway through a block", "error", err)
				return nil
			}
			if err != nil {
				if gctx.Err() != nil {
					// The source was closed to stop this read.
					return nil
				}
				return &DeviceError{Op: "read samples", Err: err}
			}
			select {
			case queue <- block:
			case <-gctx.Done():
				return nil
			}
		}
		d.logger.Info("source exhausted")
		return nil
	})

	g.Go(func() error {
		return d.process(gctx, queue, sink)
	})

	err = g.Wait()
	d.setState(StateDraining)
	if err != nil {
		return err
	}
	if ctx.Err() != nil {
		d.logger.Info("stopping", "reason", context.Cause(ctx))
	}
	return nil
}

func (d *Driver) process(ctx context.Context, queue <-chan sdr.SamplesC64, sink AudioSink) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case block, ok := <-queue:
			if !ok {
				return nil
			}
			if err := d.handle(ctx, block, sink); err != nil {
				return err
			}
		}
	}
}

func (d *Driver) handle(ctx context.Context, block sdr.SamplesC64, sink AudioSink) error {
	start := time.Now()
	d.metrics.BlocksRead.Add(ctx, 1, d.attrs)

	result, err := d.receiver.Process(block)
	if errors.Is(err, ErrMalformedBlock) {
		d.skipMalformed(ctx)
		return nil
	}
	if err != nil {
		return err
	}
	d.malformed = 0

	switch {
	case result.Audio != nil:
		if err := sink.Write(result.Audio); err != nil {
			return &DeviceError{Op: "write audio", Err: err}
		}
		d.metrics.BlocksWritten.Add(ctx, 1, d.attrs)
	case result.Message != nil:
		d.logger.Debug("message", "detail", result.Message.Describe())
		if _, err := fmt.Fprintln(d.config.Console, result.Message); err != nil {
			return &DeviceError{Op: "write message", Err: err}
		}
		d.metrics.Messages.Add(ctx, 1, d.attrs)
	case d.config.Config.Mode == ModeDigital:
		if !result.Active {
			d.metrics.BlocksInactive.Add(ctx, 1, d.attrs)
		}
	default:
		d.metrics.BlocksSilent.Add(ctx, 1, d.attrs)
	}

	d.metrics.Observe(ctx, time.Since(start).Seconds(), d.attrs)
	return nil
}

func (d *Driver) skipMalformed(ctx context.Context) {
	d.metrics.BlocksMalformed.Add(ctx, 1, d.attrs)
	if d.malformed%malformedLogInterval == 0 {
		d.logger.Warn("skipping block with non-finite samples", "consecutive", d.malformed+1)
	}
	d.malformed++
}

// vim: foldmethod=marker
