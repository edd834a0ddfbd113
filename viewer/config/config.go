/*
NAME
  Config.go

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

// Package config contains the configuration settings for viewer.
package config

import (
	"time"

	"github.com/ausocean/utils/logging"
	"github.com/pkg/errors"
)

// Enums to define inputs and outputs.
const (
	// Indicates no option has been set.
	NothingDefined = iota

	// Inputs.
	InputFile
	InputSigen
	InputManual

	// Outputs.
	OutputFile
	OutputFiles
	OutputStdout
)

// The different frame filters.
const (
	FilterNoOp = iota
	FilterBasic
	FilterDiff
	FilterKNN
	FilterMOG
)

// Config provides parameters relevant to a viewer instance. A new config
// must be passed to the constructor. Default values for these fields are
// defined as consts in variables.go.
type Config struct {
	// BackPorchNs and FrontPorchNs are the idle margins, in nanoseconds,
	// excluded from the active region after the horizontal sync pulse and
	// before the next one.
	BackPorchNs  uint
	FrontPorchNs uint

	// BlackLevel and WhiteLevel are the signal levels, in millivolts, mapped
	// to full black and full white in decoded frames.
	BlackLevel int
	WhiteLevel int

	// ChromaFilter enables a low-pass FIR over captured samples to suppress
	// the colour subcarrier before sync detection. ChromaFilterTaps sets the
	// filter length.
	ChromaFilter     bool
	ChromaFilterTaps int

	// ChunkSamples is the number of samples per chunk read from the input
	// device by the capture stage.
	ChunkSamples int

	// EqualiserLowNs, HorizontalSyncLowNs and VerticalSyncLowNs are the
	// reference low-portion durations of the recognised pulse types, in
	// nanoseconds.
	EqualiserLowNs      uint
	HorizontalSyncLowNs uint
	VerticalSyncLowNs   uint

	// Filters defines the methods of filtering to be used between decoding
	// and encoding.
	Filters []uint

	// FrameWidth and FrameHeight define the decoded raster dimensions.
	FrameWidth  uint
	FrameHeight uint

	// Input defines the input sample source.
	//
	// Valid values are defined by enums:
	// InputFile:
	//		Read raw or WAV captured samples from a file.
	//		Location must be specified in the InputPath field.
	// InputSigen:
	//		Synthesise a composite test signal.
	// InputManual:
	//		Samples are written to the input manually through software.
	Input uint8

	// InputPath defines the input file location for File input. This must be
	// defined if File input is to be used.
	InputPath string

	// Interlaced selects decoding of two interleaved fields per frame.
	Interlaced bool

	// JPEGQuality is a value 1-100 inclusive, controlling JPEG compression
	// of emitted frames. 100 represents minimal compression. Zero or an out
	// of range value is replaced by the default on validation.
	JPEGQuality int

	// LineDurationNs and SyncDurationNs are the reference full-line and
	// half-line pulse durations in nanoseconds.
	LineDurationNs uint
	SyncDurationNs uint

	// Logger holds an implementation of the logging.Logger interface. This
	// must be set for viewer to work correctly.
	Logger logging.Logger

	// LogLevel is the viewer logging verbosity level.
	// Valid values are defined by enums from the logger package: logging.Debug,
	// logging.Info, logging.Warning, logging.Error, logging.Fatal.
	LogLevel int8

	Loop bool // If true will restart reading of input after an io.EOF.

	// MaxBacklogSamples is the number of buffered samples above which the
	// decoder drops its oldest data. Must exceed two frame durations.
	MaxBacklogSamples int

	// MetricsPeriod is the interval at which frame-rate and decoder error
	// metrics are reported.
	MetricsPeriod time.Duration

	MotionDownscaling uint    // Downscaling factor of frames used for motion detection.
	MotionHistory     uint    // Length of filter's history (KNN & MOG only).
	MotionInterval    uint    // Sets the number of frames that are held before the filter is used (on the nth frame).
	MotionKernel      uint    // Size of kernel used for filling holes and removing noise (KNN only).
	MotionMinArea     float64 // Used to ignore small areas of motion detection (KNN & MOG only).
	MotionPadding     uint    // Number of frames to keep before and after motion detected.
	MotionPixels      uint    // Number of pixels with motion that is needed for a whole frame to be considered as moving (Basic only).
	MotionThreshold   float64 // Intensity value that is considered motion.

	// OutputPath defines the output destination for File and Files output.
	OutputPath string

	// Outputs define the outputs we wish to output frames to.
	//
	// Valid outputs are defined by enums:
	// OutputFile:
	//		All frames are appended to the one file at OutputPath.
	// OutputFiles:
	//		One numbered JPEG per frame under the OutputPath directory.
	// OutputStdout:
	//		JPEG frames are written to standard output.
	Outputs []uint8

	PoolCapacity         uint // The number of bytes the pool buffer will occupy.
	PoolStartElementSize uint // The starting element size of the pool buffer from which element size will increase to accommodate frames.
	PoolWriteTimeout     uint // The pool buffer write timeout in seconds.

	// Progressive selects progressive JPEG encoding of emitted frames.
	Progressive bool

	// SamplePeriodPS is the digitiser sample period in picoseconds.
	SamplePeriodPS uint

	Suppress bool // Holds logger suppression state.

	// SyncThreshold is the comparator level, in millivolts, below which a
	// sample reads as sync.
	SyncThreshold int

	// ToleranceNs is the symmetric tolerance applied to all pulse duration
	// comparisons.
	ToleranceNs uint
}

// Validate checks for any errors in the config fields and defaults settings
// if particular parameters have not been defined. Cross-field consistency of
// the decoder timing parameters is also checked; a config whose pulse
// tolerance windows overlap is rejected rather than decoded with an
// order-dependent tie-break.
func (c *Config) Validate() error {
	for _, v := range Variables {
		if v.Validate != nil {
			v.Validate(c)
		}
	}

	if c.WhiteLevel <= c.BlackLevel {
		return errors.Errorf("WhiteLevel %d not above BlackLevel %d", c.WhiteLevel, c.BlackLevel)
	}

	// The classification table must never depend on row order, so every pair
	// of references compared against the same duration class must sit more
	// than two tolerances apart.
	for _, pair := range [][2]uint{
		{c.LineDurationNs, c.SyncDurationNs},
		{c.HorizontalSyncLowNs, c.EqualiserLowNs},
		{c.HorizontalSyncLowNs, c.VerticalSyncLowNs},
		{c.VerticalSyncLowNs, c.EqualiserLowNs},
	} {
		a, b := pair[0], pair[1]
		if a < b {
			a, b = b, a
		}
		if a-b <= 2*c.ToleranceNs {
			return errors.Errorf("pulse references %dns and %dns overlap within tolerance %dns", pair[0], pair[1], c.ToleranceNs)
		}
	}

	// The backlog must comfortably hold two frames or the decoder trims
	// mid-frame on a healthy signal.
	frameSamples := uint64(c.LineDurationNs) * 1000 * uint64(c.FrameHeight) / uint64(c.SamplePeriodPS)
	if uint64(c.MaxBacklogSamples) <= 2*frameSamples {
		return errors.Errorf("MaxBacklogSamples %d does not exceed two frame durations (%d samples)", c.MaxBacklogSamples, 2*frameSamples)
	}

	return nil
}

// Update takes a map of configuration variable names and their corresponding
// values, parses the string values and converting into correct type, and then
// sets the config struct fields as appropriate.
func (c *Config) Update(vars map[string]string) {
	for _, value := range Variables {
		if v, ok := vars[value.Name]; ok && value.Update != nil {
			value.Update(c, v)
		}
	}
}

func (c *Config) LogInvalidField(name string, def interface{}) {
	c.Logger.Info(name+" bad or unset, defaulting", name, def)
}
