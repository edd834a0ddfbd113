/*
DESCRIPTION
  file.go provides an implementation of the SampleSource interface for
  captured sample files, either raw little-endian 16-bit millivolt values or
  WAV recordings produced by digitiser utilities.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package file provides an implementation of SampleSource for files.
package file

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/ausocean/tv/codec/pal"
	"github.com/ausocean/tv/device"
	"github.com/ausocean/tv/viewer/config"
	"github.com/ausocean/utils/logging"
)

// SampleFile is an implementation of the SampleSource interface for a file
// containing captured composite-video samples. Files with a .wav extension
// are read through the WAV decoder; anything else is treated as raw
// little-endian int16 millivolts.
type SampleFile struct {
	f         *os.File
	dec       *wav.Decoder
	path      string
	loop      bool
	isRunning bool
	log       logging.Logger
	set       bool
	mu        sync.Mutex
}

// New returns a new SampleFile.
func New(l logging.Logger) *SampleFile { return &SampleFile{log: l} }

// NewWith returns a new SampleFile with required params provided i.e. the Set
// method does not need to be called.
func NewWith(l logging.Logger, path string, loop bool) *SampleFile {
	return &SampleFile{log: l, path: path, loop: loop, set: true}
}

// Name returns the name of the device.
func (s *SampleFile) Name() string { return "File" }

// Set simply sets the SampleFile's config to the passed config.
func (s *SampleFile) Set(c config.Config) error {
	s.path = c.InputPath
	s.loop = c.Loop
	s.set = true
	return nil
}

// Start will open the file at the location of the InputPath field of the
// config struct.
func (s *SampleFile) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.set {
		return errors.New("SampleFile has not been set with config")
	}
	err := s.open()
	if err != nil {
		return err
	}
	s.isRunning = true
	return nil
}

func (s *SampleFile) open() error {
	var err error
	s.f, err = os.Open(s.path)
	if err != nil {
		return fmt.Errorf("could not open sample file: %w", err)
	}
	if filepath.Ext(s.path) == ".wav" {
		s.dec = wav.NewDecoder(s.f)
		if !s.dec.IsValidFile() {
			s.f.Close()
			return fmt.Errorf("not a valid WAV capture: %s", s.path)
		}
		s.log.Debug("opened WAV capture", "rate", s.dec.SampleRate, "bitDepth", s.dec.BitDepth)
	}
	return nil
}

// Stop will close the file such that any further reads will fail.
func (s *SampleFile) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.f.Close()
	if err == nil {
		s.isRunning = false
		s.dec = nil
		return nil
	}
	return err
}

// IsRunning is used to determine if the source is running.
func (s *SampleFile) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

// ReadChunk returns the next run of samples from the file. File playback
// never drops samples; at the end of the file the read restarts from the
// beginning when looping, otherwise io.EOF is returned.
func (s *SampleFile) ReadChunk(max int) ([]pal.Sample, uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.f == nil {
		return nil, 0, errors.New("sample file not started, can't read")
	}
	if !s.isRunning {
		return nil, 0, device.ErrClosed
	}
	for {
		var (
			samples []pal.Sample
			err     error
		)
		if s.dec != nil {
			samples, err = s.readWAV(max)
		} else {
			samples, err = s.readRaw(max)
		}
		if err == io.EOF && s.loop {
			s.log.Debug("end of capture, looping")
			s.f.Close()
			err = s.open()
			if err != nil {
				return nil, 0, err
			}
			continue
		}
		return samples, 0, err
	}
}

func (s *SampleFile) readRaw(max int) ([]pal.Sample, error) {
	buf := make([]byte, 2*max)
	n, err := io.ReadFull(s.f, buf)
	if err == io.ErrUnexpectedEOF {
		err = nil
	}
	if n < 2 {
		if err != nil {
			return nil, err
		}
		return nil, io.EOF
	}
	samples := make([]pal.Sample, n/2)
	for i := range samples {
		samples[i] = pal.Sample(int16(binary.LittleEndian.Uint16(buf[2*i:])))
	}
	return samples, err
}

func (s *SampleFile) readWAV(max int) ([]pal.Sample, error) {
	buf := &audio.IntBuffer{Data: make([]int, max)}
	n, err := s.dec.PCMBuffer(buf)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, io.EOF
	}
	samples := make([]pal.Sample, n)
	for i := range samples {
		samples[i] = pal.Sample(buf.Data[i])
	}
	return samples, nil
}
