/*
DESCRIPTION
  pipeline.go provides functionality for set up of the viewer processing
  pipeline: capture from a sample source, decode to frames, filter, and
  encode to the configured senders.

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

package viewer

import (
	"fmt"
	"io"
	"time"

	"github.com/ausocean/tv/codec/pal"
	"github.com/ausocean/tv/device"
	"github.com/ausocean/tv/device/file"
	"github.com/ausocean/tv/device/sigen"
	"github.com/ausocean/tv/filter"
	"github.com/ausocean/tv/viewer/config"
	"github.com/ausocean/utils/ioext"
	"github.com/ausocean/utils/pool"
)

// reset swaps the current config of a Viewer with the passed configuration;
// checking validity and returning errors if not valid. It then sets up the
// data pipeline accordingly to this configuration.
func (v *Viewer) reset(c config.Config) error {
	v.cfg.Logger.Debug("setting config")
	err := v.setConfig(c)
	if err != nil {
		return fmt.Errorf("could not set config: %w", err)
	}
	v.cfg.Logger.Info("config set")

	v.cfg.Logger.Debug("setting up viewer pipeline")
	err = v.setupPipeline()
	if err != nil {
		return fmt.Errorf("could not set up pipeline: %w", err)
	}
	v.cfg.Logger.Info("finished setting pipeline")

	return nil
}

// setupPipeline constructs the viewer data pipeline. The sample source,
// decoder, filters, encoder and senders are created and linked based on the
// current viewer config.
func (v *Viewer) setupPipeline() error {
	// We will go through our outputs and create the corresponding senders to
	// which the JPEG encoder will write.
	var senders []io.WriteCloser
	for _, out := range v.cfg.Outputs {
		switch out {
		case config.OutputFile:
			v.cfg.Logger.Debug("using File output")
			senders = append(senders, newFileSender(v.cfg.Logger, v.cfg.OutputPath, false))
		case config.OutputFiles:
			v.cfg.Logger.Debug("using Files output")
			senders = append(senders, newFileSender(v.cfg.Logger, v.cfg.OutputPath, true))
		case config.OutputStdout:
			v.cfg.Logger.Debug("using Stdout output")
			senders = append(senders, newStdoutSender())
		default:
			return fmt.Errorf("unrecognised output type: %v", out)
		}
	}

	v.encoders = newJPEGEncoder(
		ioext.MultiWriteCloser(senders...),
		int(v.cfg.FrameWidth),
		int(v.cfg.FrameHeight),
		v.cfg.JPEGQuality,
		v.cfg.Progressive,
	)

	// Calculate no. of pool buffer elements based on starting element size
	// const and config directed max pool buffer size, then create the frame
	// queue joining the decode and encode routines.
	nElements := v.cfg.PoolCapacity / v.cfg.PoolStartElementSize
	writeTimeout := time.Duration(v.cfg.PoolWriteTimeout) * time.Second
	pb := pool.NewBuffer(int(v.cfg.PoolStartElementSize), int(nElements), writeTimeout)
	v.queue = newFrameQueue(v.encoders, v.cfg.Logger, pb)

	// Set up the filter chain in front of the frame queue, the last
	// configured filter writing to the queue.
	l := len(v.cfg.Filters)
	v.filters = []filter.Filter{filter.NewNoOp(v.queue)}
	if l != 0 {
		v.cfg.Logger.Debug("setting up filters", "filters", v.cfg.Filters)
		v.filters = make([]filter.Filter, l)
		var dst io.WriteCloser = v.queue

		for i := l - 1; i >= 0; i-- {
			switch v.cfg.Filters[i] {
			case config.FilterNoOp:
				v.cfg.Logger.Debug("using NoOp filter")
				v.filters[i] = filter.NewNoOp(dst)
			case config.FilterBasic:
				v.cfg.Logger.Debug("using go difference filter")
				v.filters[i] = filter.NewBasic(dst, v.cfg)
			case config.FilterDiff:
				v.cfg.Logger.Debug("using gocv difference filter")
				v.filters[i] = filter.NewDiff(dst, v.cfg)
			case config.FilterKNN:
				v.cfg.Logger.Debug("using KNN filter")
				v.filters[i] = filter.NewKNN(dst, v.cfg)
			case config.FilterMOG:
				v.cfg.Logger.Debug("using MOG filter")
				v.filters[i] = filter.NewMOG(dst, v.cfg)
			default:
				panic("unknown filter")
			}
			dst = v.filters[i]
		}
		v.cfg.Logger.Info("filters set up")
	}

	// The decoder that the decode routine will pump.
	dec, err := pal.NewDecoder(v.cfg.Logger, pal.Config{
		SamplePeriodPS:      v.cfg.SamplePeriodPS,
		Interlaced:          v.cfg.Interlaced,
		FrameWidth:          int(v.cfg.FrameWidth),
		FrameHeight:         int(v.cfg.FrameHeight),
		SyncThreshold:       pal.Sample(v.cfg.SyncThreshold),
		BlackLevel:          pal.Sample(v.cfg.BlackLevel),
		WhiteLevel:          pal.Sample(v.cfg.WhiteLevel),
		MaxBacklogSamples:   v.cfg.MaxBacklogSamples,
		SyncDurationNs:      v.cfg.SyncDurationNs,
		LineDurationNs:      v.cfg.LineDurationNs,
		EqualiserLowNs:      v.cfg.EqualiserLowNs,
		VerticalSyncLowNs:   v.cfg.VerticalSyncLowNs,
		HorizontalSyncLowNs: v.cfg.HorizontalSyncLowNs,
		FrontPorchNs:        v.cfg.FrontPorchNs,
		BackPorchNs:         v.cfg.BackPorchNs,
		ToleranceNs:         v.cfg.ToleranceNs,
	})
	if err != nil {
		return fmt.Errorf("could not create decoder: %w", err)
	}
	v.decoder = dec

	// Optional chroma suppression ahead of sync detection.
	v.chroma = nil
	if v.cfg.ChromaFilter {
		v.cfg.Logger.Debug("using chroma low-pass", "taps", v.cfg.ChromaFilterTaps)
		v.chroma, err = pal.NewChromaLowPass(v.cfg.SamplePeriodPS, v.cfg.ChromaFilterTaps)
		if err != nil {
			return fmt.Errorf("could not create chroma low-pass: %w", err)
		}
	}

	switch v.cfg.Input {
	case config.InputFile:
		v.cfg.Logger.Debug("using file input")
		v.input = file.New(v.cfg.Logger)
	case config.InputSigen:
		v.cfg.Logger.Debug("using signal generator input")
		v.input = sigen.New(v.cfg.Logger)
	case config.InputManual:
		v.cfg.Logger.Debug("using manual input")
		v.input = device.NewManualSource()
	default:
		return fmt.Errorf("unrecognised input type: %v", v.cfg.Input)
	}

	// Configure the input device. We know that defaults are set, so no need
	// to return error, but we should log.
	v.cfg.Logger.Debug("configuring input device")
	err = v.input.Set(v.cfg)
	if err != nil {
		v.cfg.Logger.Warning("errors from configuring input device", "errors", err)
	}
	v.cfg.Logger.Info("input device configured")

	return nil
}

// capture is run as a routine to read sample chunks from the input source,
// tag them with stream offsets, and pass ownership to the decode routine.
// Samples the device reports dropped advance the offset, surfacing to the
// decoder as a stream discontinuity.
func (v *Viewer) capture(chunks chan<- *pal.Buffer) {
	defer v.wg.Done()
	defer close(chunks)

	err := v.input.Start()
	if err != nil {
		v.err <- fmt.Errorf("could not start input device: %w", err)
		return
	}

	var offset pal.Offset
	for {
		select {
		case <-v.stop:
			return
		default:
		}

		samples, dropped, err := v.input.ReadChunk(v.cfg.ChunkSamples)
		switch {
		case err == nil:
		case err == io.EOF, err == device.ErrClosed:
			v.cfg.Logger.Info("input drained, capture stopping")
			return
		default:
			v.err <- fmt.Errorf("could not read from input: %w", err)
			time.Sleep(captureRetryBackoff)
			continue
		}
		if len(samples) == 0 {
			continue
		}

		if v.chroma != nil {
			samples, err = v.chroma.Apply(samples)
			if err != nil {
				v.err <- fmt.Errorf("could not filter samples: %w", err)
				continue
			}
		}

		if dropped != 0 {
			v.cfg.Logger.Warning("digitiser dropped samples", "dropped", dropped)
		}
		offset += pal.Offset(dropped)

		var b pal.Buffer
		c := b.Append(len(samples))
		c.Offset = offset
		copy(c.Data, samples)
		offset += pal.Offset(len(samples))
		v.throughput.Report(len(samples) * bytesPerSample)

		select {
		case chunks <- &b:
		case <-v.stop:
			return
		}
	}
}

// decode is run as a routine to pump the decoder: ingest captured chunks,
// read back decoded frames and write them into the filter chain.
func (v *Viewer) decode(chunks <-chan *pal.Buffer) {
	defer v.wg.Done()

	for b := range chunks {
		v.decoder.Ingest(b)

		v.mu.Lock()
		v.decoder.TakeErrors(&v.errs)
		v.mu.Unlock()

		for {
			ok, err := v.decoder.ReadFrame()
			if err != nil {
				v.err <- fmt.Errorf("decoder contract violation: %w", err)
				return
			}
			if !ok {
				break
			}
			// Each frame gets its own copy; filters are free to hold on to
			// frames for padding.
			f := make([]byte, len(v.decoder.Frame()))
			copy(f, v.decoder.Frame())
			_, err = v.filters[0].Write(f)
			if err != nil {
				v.err <- fmt.Errorf("could not write frame to filters: %w", err)
			}
			v.mu.Lock()
			v.frameCount++
			v.mu.Unlock()
		}
	}
}
