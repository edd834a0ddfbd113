/*
DESCRIPTION
  device.go provides SampleSource, an interface that describes a configurable
  video digitiser that can be started and stopped from which voltage samples
  may be obtained.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package device provides an interface and implementations for input devices
// that can be started and stopped from which composite-video voltage samples
// can be obtained.
package device

import (
	"errors"
	"fmt"

	"github.com/ausocean/tv/codec/pal"
	"github.com/ausocean/tv/viewer/config"
)

// ErrClosed is returned by ReadChunk once a stopped source has no further
// samples to give.
var ErrClosed = errors.New("device: source closed")

// SampleSource describes a configurable digitiser from which composite-video
// voltage samples can be obtained.
type SampleSource interface {
	// Name returns the name of the SampleSource.
	Name() string

	// Set allows for configuration of the SampleSource using a Config struct.
	// All, some or none of the fields of the Config struct may be used for
	// configuration by an implementation. An implementation should specify
	// what fields are considered.
	Set(c config.Config) error

	// Start will start the SampleSource capturing samples; after which
	// ReadChunk may be called to obtain them.
	Start() error

	// Stop will stop the SampleSource from capturing samples. From this point
	// ReadChunks will no longer be successful.
	Stop() error

	// IsRunning is used to determine if the source is running.
	IsRunning() bool

	// ReadChunk returns the next run of captured samples, in millivolts, up
	// to max samples long, along with the count of samples the device lost
	// before this run. Lost samples advance the capture offset and therefore
	// surface downstream as a stream discontinuity. ReadChunk blocks until
	// samples are available, and returns ErrClosed once a stopped source is
	// drained.
	ReadChunk(max int) (samples []pal.Sample, dropped uint64, err error)
}

// MultiError implements the built in error interface. MultiError is used here
// to collect multi errors during validation of configuration parameters for
// SampleSources.
type MultiError []error

func (me MultiError) Error() string {
	if len(me) == 0 {
		panic("device: invalid use of MultiError")
	}
	return fmt.Sprintf("%v", []error(me))
}

// ManualSource is an implementation of the SampleSource interface that
// represents a manual input mechanism, i.e. samples are written to this input
// manually through software (ManualSource also has a Write method, unlike
// other implementations). Writes pass whole chunks to ReadChunk via an
// unbuffered channel, so every write must be matched by a read or blocking
// will occur (and vice versa).
type ManualSource struct {
	isRunning bool
	ch        chan []pal.Sample
	done      chan struct{}
}

// NewManualSource provides a new ManualSource.
func NewManualSource() *ManualSource { return &ManualSource{} }

// Write passes one chunk of samples to the source's reader, blocking until
// it is collected or the source is stopped.
func (m *ManualSource) Write(s []pal.Sample) (int, error) {
	if !m.isRunning {
		return 0, errors.New("manual source has not been started, can't write")
	}
	select {
	case m.ch <- s:
		return len(s), nil
	case <-m.done:
		return 0, ErrClosed
	}
}

// ReadChunk returns the next written chunk whole, whatever its length
// relative to max. Manual sources never drop samples.
func (m *ManualSource) ReadChunk(max int) ([]pal.Sample, uint64, error) {
	if m.ch == nil {
		return nil, 0, errors.New("manual source has not been started, can't read")
	}
	select {
	case s := <-m.ch:
		return s, 0, nil
	case <-m.done:
		return nil, 0, ErrClosed
	}
}

// Name returns the name of ManualSource i.e. "ManualSource".
func (m *ManualSource) Name() string { return "ManualSource" }

// Set is a stub to satisfy the SampleSource interface; no configuration
// fields are required by ManualSource.
func (m *ManualSource) Set(c config.Config) error { return nil }

// Start readies the source for writes and reads.
func (m *ManualSource) Start() error {
	m.ch = make(chan []pal.Sample)
	m.done = make(chan struct{})
	m.isRunning = true
	return nil
}

// Stop unblocks any pending writes and reads and marks the source stopped.
func (m *ManualSource) Stop() error {
	if m.isRunning {
		close(m.done)
		m.isRunning = false
	}
	return nil
}

// IsRunning reports whether the source has been started and not yet stopped.
func (m *ManualSource) IsRunning() bool { return m.isRunning }
