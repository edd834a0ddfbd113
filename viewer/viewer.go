/*
NAME
  viewer.go

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package viewer provides an API for capturing composite-video voltage
// samples, decoding them into grayscale frames, and writing encoded images
// to configured outputs.
package viewer

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ausocean/tv/codec/pal"
	"github.com/ausocean/tv/device"
	"github.com/ausocean/tv/filter"
	"github.com/ausocean/tv/viewer/config"
	"github.com/ausocean/utils/bitrate"
)

// Misc consts.
const (
	bytesPerSample      = 2
	captureRetryBackoff = 100 * time.Millisecond
)

// Viewer provides methods to control a viewer session; providing methods
// to start, stop and change the state of an instance using the Config struct.
type Viewer struct {
	// cfg holds the viewer configuration.
	cfg config.Config

	// input is the sample source from which composite video is captured.
	input device.SampleSource

	// decoder converts buffered samples into frames. It is owned by the
	// decode routine once the pipeline is running.
	decoder *pal.Decoder

	// chroma optionally conditions captured samples before decode.
	chroma pal.SampleFilter

	// filters will hold the filter chain that frames pass through on the way
	// to the encoder queue.
	filters []filter.Filter

	// queue hands frames from the decode routine to the encode routine.
	queue *frameQueue

	// encoders holds the JPEG encoder that writes encoded frames to the
	// configured senders.
	encoders *jpegEncoder

	// mu guards errs, frameCount and lastFrames.
	mu         sync.Mutex
	errs       pal.Errors
	frameCount uint64
	lastFrames uint64

	// throughput is used for sample-rate throughput calculations.
	throughput bitrate.Calculator

	// running is used to keep track of viewer's running state between methods.
	running bool

	// wg will be used to wait for any processing routines to finish.
	wg sync.WaitGroup

	// err will channel errors from viewer routines to the handle errors routine.
	err chan error

	// stop is used to signal stopping of the pipeline routines.
	stop chan struct{}
}

// New returns a pointer to a new Viewer with the desired configuration, and/or
// an error if construction of the new instance was not successful.
func New(c config.Config) (*Viewer, error) {
	v := Viewer{err: make(chan error)}
	err := v.setConfig(c)
	if err != nil {
		return nil, fmt.Errorf("could not set config, failed with error: %w", err)
	}
	go v.handleErrors()
	return &v, nil
}

// TODO(Saxon): put more thought into error severity and how to handle these.
func (v *Viewer) handleErrors() {
	for {
		err := <-v.err
		if err != nil {
			v.cfg.Logger.Error("async error", "error", err.Error())
		}
	}
}

// setConfig takes a config, checks its validity and then replaces the current
// viewer config.
func (v *Viewer) setConfig(c config.Config) error {
	v.cfg.Logger = c.Logger
	v.cfg.Logger.Debug("validating config")
	err := c.Validate()
	if err != nil {
		return errors.New("Config struct is bad: " + err.Error())
	}
	v.cfg.Logger.Info("config validated")
	v.cfg = c
	v.cfg.Logger.SetLevel(c.LogLevel)
	return nil
}

// Config returns a copy of viewer's current config.
func (v *Viewer) Config() config.Config {
	return v.cfg
}

// Bitrate returns the result of the most recent sample throughput check, in
// bits per second.
func (v *Viewer) Bitrate() int {
	return v.throughput.Bitrate()
}

// Frames returns the number of frames emitted since start.
func (v *Viewer) Frames() uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.frameCount
}

// Errors returns the accumulated decoder error counters.
func (v *Viewer) Errors() pal.Errors {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.errs
}

// Write writes a chunk of samples to a manual input, if one is configured.
func (v *Viewer) Write(s []pal.Sample) (int, error) {
	mi, ok := v.input.(*device.ManualSource)
	if !ok {
		return 0, errors.New("cannot write to anything but ManualSource")
	}
	return mi.Write(s)
}

// Start invokes a Viewer to start processing samples from a defined input
// and decoding and encoding to a defined output.
func (v *Viewer) Start() error {
	if v.running {
		v.cfg.Logger.Warning("start called, but viewer already running")
		return nil
	}

	v.stop = make(chan struct{})

	v.cfg.Logger.Debug("resetting viewer")
	err := v.reset(v.cfg)
	if err != nil {
		v.Stop()
		return err
	}
	v.cfg.Logger.Info("viewer reset")

	chunks := make(chan *pal.Buffer)
	v.wg.Add(3)
	go v.capture(chunks)
	go v.decode(chunks)
	go v.report()

	v.running = true
	return nil
}

// Stop closes down the pipeline. This closes the filters, encoder queue,
// senders and/or files.
func (v *Viewer) Stop() {
	if !v.running {
		v.cfg.Logger.Warning("stop called but viewer isn't running")
		return
	}

	close(v.stop)

	v.cfg.Logger.Debug("stopping input")
	err := v.input.Stop()
	if err != nil {
		v.cfg.Logger.Error("could not stop input", "error", err.Error())
	} else {
		v.cfg.Logger.Info("input stopped")
	}

	v.cfg.Logger.Debug("waiting for routines to finish")
	v.wg.Wait()
	v.cfg.Logger.Info("routines finished")

	for _, f := range v.filters {
		err = f.Close()
		if err != nil {
			v.cfg.Logger.Error("failed to close filters", "error", err.Error())
		}
	}

	v.cfg.Logger.Debug("closing frame queue and encoders")
	err = v.queue.Close()
	if err != nil {
		v.cfg.Logger.Error("failed to close frame queue", "error", err.Error())
	} else {
		v.cfg.Logger.Info("pipeline closed")
	}

	v.running = false
}

// Burst starts viewer, waits for the time specified, and then stops it.
func (v *Viewer) Burst(d time.Duration) error {
	v.cfg.Logger.Debug("starting viewer")
	err := v.Start()
	if err != nil {
		return fmt.Errorf("could not start viewer: %w", err)
	}
	v.cfg.Logger.Info("viewer started")

	time.Sleep(d)

	v.cfg.Logger.Debug("stopping viewer")
	v.Stop()
	v.cfg.Logger.Info("viewer stopped")

	return nil
}

func (v *Viewer) Running() bool {
	return v.running
}

// Update takes a map of variables and their values and edits the current config
// if the variables are recognised as valid parameters.
func (v *Viewer) Update(vars map[string]string) error {
	if v.running {
		v.cfg.Logger.Debug("viewer running; stopping for re-config")
		v.Stop()
		v.cfg.Logger.Info("viewer was running; stopped for re-config")
	}

	v.cfg.Logger.Debug("checking vars", "vars", vars)
	v.cfg.Update(vars)
	err := v.cfg.Validate()
	if err != nil {
		return fmt.Errorf("config invalid after update: %w", err)
	}
	v.cfg.Logger.Info("finished reconfig")
	return nil
}

// report logs frame-rate, throughput and decoder error metrics on the
// configured period until stopped.
func (v *Viewer) report() {
	defer v.wg.Done()
	ticker := time.NewTicker(v.cfg.MetricsPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-v.stop:
			return
		case <-ticker.C:
		}
		v.mu.Lock()
		frames := v.frameCount
		fps := float64(frames-v.lastFrames) / v.cfg.MetricsPeriod.Seconds()
		v.lastFrames = frames
		errs := v.errs
		v.mu.Unlock()
		v.cfg.Logger.Info("frames emitted so far", "frames", frames, "fps", fps, "sampleBitrate", v.throughput.Bitrate())
		if errs.NoSignalOrOverrun != 0 {
			v.cfg.Logger.Info("decoder errors since start", "noSignalOrOverrun", errs.NoSignalOrOverrun)
		}
		if errs.UnrecognisedPulseType != 0 {
			v.cfg.Logger.Info("decoder errors since start", "unrecognisedPulseType", errs.UnrecognisedPulseType)
		}
		if errs.LongSyncPattern != 0 {
			v.cfg.Logger.Info("decoder errors since start", "longSyncPattern", errs.LongSyncPattern)
		}
		if errs.UnrecognisedSyncPattern != 0 {
			v.cfg.Logger.Info("decoder errors since start", "unrecognisedSyncPattern", errs.UnrecognisedSyncPattern)
		}
	}
}
