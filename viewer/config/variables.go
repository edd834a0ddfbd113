/*
DESCRIPTION
  variables.go contains a list of structs that provide a variable Name, type in
  a string format, a function for updating the variable in the Config struct
  from a string, and finally, a validation function to check the validity of the
  corresponding field value in the Config.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ausocean/tv/codec/pal"
	"github.com/ausocean/utils/logging"
)

// Config map Keys.
const (
	KeyBackPorch           = "BackPorch"
	KeyBlackLevel          = "BlackLevel"
	KeyChromaFilter        = "ChromaFilter"
	KeyChromaFilterTaps    = "ChromaFilterTaps"
	KeyChunkSamples        = "ChunkSamples"
	KeyEqualiserLow        = "EqualiserLow"
	KeyFilters             = "Filters"
	KeyFrameHeight         = "FrameHeight"
	KeyFrameWidth          = "FrameWidth"
	KeyFrontPorch          = "FrontPorch"
	KeyHorizontalSyncLow   = "HorizontalSyncLow"
	KeyInput               = "Input"
	KeyInputPath           = "InputPath"
	KeyInterlaced          = "Interlaced"
	KeyJPEGQuality         = "JPEGQuality"
	KeyLineDuration        = "LineDuration"
	KeyLogging             = "logging"
	KeyLoop                = "Loop"
	KeyMaxBacklogSamples   = "MaxBacklogSamples"
	KeyMetricsPeriod       = "MetricsPeriod"
	KeyMotionDownscaling   = "MotionDownscaling"
	KeyMotionHistory       = "MotionHistory"
	KeyMotionInterval      = "MotionInterval"
	KeyMotionKernel        = "MotionKernel"
	KeyMotionMinArea       = "MotionMinArea"
	KeyMotionPadding       = "MotionPadding"
	KeyMotionPixels        = "MotionPixels"
	KeyMotionThreshold     = "MotionThreshold"
	KeyOutputPath          = "OutputPath"
	KeyOutputs             = "Outputs"
	KeyPoolCapacity        = "PoolCapacity"
	KeyPoolStartElementSize = "PoolStartElementSize"
	KeyPoolWriteTimeout    = "PoolWriteTimeout"
	KeyProgressive         = "Progressive"
	KeySamplePeriodPS      = "SamplePeriodPS"
	KeySuppress            = "Suppress"
	KeySyncDuration        = "SyncDuration"
	KeySyncThreshold       = "SyncThreshold"
	KeyTolerance           = "Tolerance"
	KeyVerticalSyncLow     = "VerticalSyncLow"
	KeyWhiteLevel          = "WhiteLevel"
)

// Config map parameter types.
const (
	typeString = "string"
	typeInt    = "int"
	typeUint   = "uint"
	typeBool   = "bool"
	typeFloat  = "float"
)

// Default variable values.
const (
	// General viewer defaults.
	defaultInput       = InputFile
	defaultOutput      = OutputFiles
	defaultVerbosity   = logging.Error
	defaultJPEGQuality = 85

	// Digitiser defaults: the sample period that spreads the active region
	// of a line across the full raster width, and a 5ms capture chunk.
	defaultSamplePeriodPS = 1000 * pal.LineDataNs / pal.FrameWidth
	defaultChunkDivisor   = 200

	// Signal level defaults in millivolts, for a standard 1Vpp composite
	// signal digitised above sync tip level.
	defaultSyncThreshold = 200
	defaultBlackLevel    = 300
	defaultWhiteLevel    = 1000

	defaultMetricsPeriod = 5 * time.Second

	// Pool buffer defaults.
	defaultPoolCapacity         = 50000000 // => 50MB
	defaultPoolStartElementSize = 500000   // bytes
	defaultPoolWriteTimeout     = 5        // Seconds.
)

// Variables describes the variables that can be used for viewer control.
// These structs provide the name and type of variable, a function for updating
// this variable in a Config, and a function for validating the value of the variable.
var Variables = []struct {
	Name     string
	Type     string
	Update   func(*Config, string)
	Validate func(*Config)
}{
	{
		Name:   KeyBackPorch,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.BackPorchNs = parseUint(KeyBackPorch, v, c) },
		Validate: func(c *Config) {
			if c.BackPorchNs == 0 {
				c.LogInvalidField(KeyBackPorch, pal.BackPorchNs)
				c.BackPorchNs = pal.BackPorchNs
			}
		},
	},
	{
		Name:   KeyBlackLevel,
		Type:   typeInt,
		Update: func(c *Config, v string) { c.BlackLevel = parseInt(KeyBlackLevel, v, c) },
		Validate: func(c *Config) {
			if c.BlackLevel == 0 {
				c.LogInvalidField(KeyBlackLevel, defaultBlackLevel)
				c.BlackLevel = defaultBlackLevel
			}
		},
	},
	{
		Name:   KeyChromaFilter,
		Type:   typeBool,
		Update: func(c *Config, v string) { c.ChromaFilter = parseBool(KeyChromaFilter, v, c) },
	},
	{
		Name:   KeyChromaFilterTaps,
		Type:   typeInt,
		Update: func(c *Config, v string) { c.ChromaFilterTaps = parseInt(KeyChromaFilterTaps, v, c) },
		Validate: func(c *Config) {
			if c.ChromaFilterTaps <= 0 || c.ChromaFilterTaps%2 != 0 {
				c.LogInvalidField(KeyChromaFilterTaps, 64)
				c.ChromaFilterTaps = 64
			}
		},
	},
	{
		Name:   KeyChunkSamples,
		Type:   typeInt,
		Update: func(c *Config, v string) { c.ChunkSamples = parseInt(KeyChunkSamples, v, c) },
		Validate: func(c *Config) {
			if c.ChunkSamples <= 0 {
				period := c.SamplePeriodPS
				if period == 0 {
					period = defaultSamplePeriodPS
				}
				def := int(1e12 / uint64(period) / defaultChunkDivisor)
				c.LogInvalidField(KeyChunkSamples, def)
				c.ChunkSamples = def
			}
		},
	},
	{
		Name:   KeyEqualiserLow,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.EqualiserLowNs = parseUint(KeyEqualiserLow, v, c) },
		Validate: func(c *Config) {
			if c.EqualiserLowNs == 0 {
				c.LogInvalidField(KeyEqualiserLow, pal.EqualiserLowNs)
				c.EqualiserLowNs = pal.EqualiserLowNs
			}
		},
	},
	{
		Name: KeyFilters,
		Type: "enums:NoOp,Basic,Diff,KNN,MOG",
		Update: func(c *Config, v string) {
			filters := map[string]uint{"NoOp": FilterNoOp, "Basic": FilterBasic, "Diff": FilterDiff, "KNN": FilterKNN, "MOG": FilterMOG}
			c.Filters = []uint{}
			for _, f := range strings.Split(v, ",") {
				idx, ok := filters[f]
				if !ok {
					c.Logger.Warning("invalid Filters param", "value", v)
				}
				c.Filters = append(c.Filters, idx)
			}
		},
	},
	{
		Name:   KeyFrameHeight,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.FrameHeight = parseUint(KeyFrameHeight, v, c) },
		Validate: func(c *Config) {
			if c.FrameHeight == 0 {
				c.LogInvalidField(KeyFrameHeight, pal.FrameHeight)
				c.FrameHeight = pal.FrameHeight
			}
		},
	},
	{
		Name:   KeyFrameWidth,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.FrameWidth = parseUint(KeyFrameWidth, v, c) },
		Validate: func(c *Config) {
			if c.FrameWidth == 0 {
				c.LogInvalidField(KeyFrameWidth, pal.FrameWidth)
				c.FrameWidth = pal.FrameWidth
			}
		},
	},
	{
		Name:   KeyFrontPorch,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.FrontPorchNs = parseUint(KeyFrontPorch, v, c) },
		Validate: func(c *Config) {
			if c.FrontPorchNs == 0 {
				c.LogInvalidField(KeyFrontPorch, pal.FrontPorchNs)
				c.FrontPorchNs = pal.FrontPorchNs
			}
		},
	},
	{
		Name:   KeyHorizontalSyncLow,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.HorizontalSyncLowNs = parseUint(KeyHorizontalSyncLow, v, c) },
		Validate: func(c *Config) {
			if c.HorizontalSyncLowNs == 0 {
				c.LogInvalidField(KeyHorizontalSyncLow, pal.HorizontalSyncLowNs)
				c.HorizontalSyncLowNs = pal.HorizontalSyncLowNs
			}
		},
	},
	{
		Name: KeyInput,
		Type: "enum:File,Sigen,Manual",
		Update: func(c *Config, v string) {
			c.Input = parseEnum(
				KeyInput,
				v,
				map[string]uint8{"file": InputFile, "sigen": InputSigen, "manual": InputManual},
				c,
			)
		},
		Validate: func(c *Config) {
			switch c.Input {
			case InputFile, InputSigen, InputManual:
			default:
				c.LogInvalidField(KeyInput, defaultInput)
				c.Input = defaultInput
			}
		},
	},
	{
		Name:   KeyInputPath,
		Type:   typeString,
		Update: func(c *Config, v string) { c.InputPath = v },
	},
	{
		Name:   KeyInterlaced,
		Type:   typeBool,
		Update: func(c *Config, v string) { c.Interlaced = parseBool(KeyInterlaced, v, c) },
	},
	{
		Name:   KeyJPEGQuality,
		Type:   typeInt,
		Update: func(c *Config, v string) { c.JPEGQuality = parseInt(KeyJPEGQuality, v, c) },
		Validate: func(c *Config) {
			if c.JPEGQuality <= 0 || c.JPEGQuality > 100 {
				c.LogInvalidField(KeyJPEGQuality, defaultJPEGQuality)
				c.JPEGQuality = defaultJPEGQuality
			}
		},
	},
	{
		Name:   KeyLineDuration,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.LineDurationNs = parseUint(KeyLineDuration, v, c) },
		Validate: func(c *Config) {
			if c.LineDurationNs == 0 {
				c.LogInvalidField(KeyLineDuration, pal.LineNs)
				c.LineDurationNs = pal.LineNs
			}
		},
	},
	{
		Name: KeyLogging,
		Type: "enum:Debug,Info,Warning,Error,Fatal",
		Update: func(c *Config, v string) {
			switch strings.ToLower(v) {
			case "debug":
				c.LogLevel = logging.Debug
			case "info":
				c.LogLevel = logging.Info
			case "warning":
				c.LogLevel = logging.Warning
			case "error":
				c.LogLevel = logging.Error
			case "fatal":
				c.LogLevel = logging.Fatal
			default:
				c.Logger.Warning("invalid logging param", "value", v)
			}
		},
		Validate: func(c *Config) {
			switch c.LogLevel {
			case logging.Debug, logging.Info, logging.Warning, logging.Error, logging.Fatal:
			default:
				c.LogInvalidField(KeyLogging, defaultVerbosity)
				c.LogLevel = defaultVerbosity
			}
		},
	},
	{
		Name:   KeyLoop,
		Type:   typeBool,
		Update: func(c *Config, v string) { c.Loop = parseBool(KeyLoop, v, c) },
	},
	{
		Name:   KeyMaxBacklogSamples,
		Type:   typeInt,
		Update: func(c *Config, v string) { c.MaxBacklogSamples = parseInt(KeyMaxBacklogSamples, v, c) },
		Validate: func(c *Config) {
			if c.MaxBacklogSamples <= 0 {
				// One tenth of a second of samples.
				period := c.SamplePeriodPS
				if period == 0 {
					period = defaultSamplePeriodPS
				}
				def := int(1e12 / uint64(period) / 10)
				c.LogInvalidField(KeyMaxBacklogSamples, def)
				c.MaxBacklogSamples = def
			}
		},
	},
	{
		Name: KeyMetricsPeriod,
		Type: typeUint,
		Update: func(c *Config, v string) {
			_v, err := strconv.Atoi(v)
			if err != nil {
				c.Logger.Warning("invalid MetricsPeriod param", "value", v)
			}
			c.MetricsPeriod = time.Duration(_v) * time.Second
		},
		Validate: func(c *Config) {
			if c.MetricsPeriod <= 0 {
				c.LogInvalidField(KeyMetricsPeriod, defaultMetricsPeriod)
				c.MetricsPeriod = defaultMetricsPeriod
			}
		},
	},
	{
		Name:   KeyMotionDownscaling,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.MotionDownscaling = parseUint(KeyMotionDownscaling, v, c) },
	},
	{
		Name:   KeyMotionHistory,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.MotionHistory = parseUint(KeyMotionHistory, v, c) },
	},
	{
		Name:   KeyMotionInterval,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.MotionInterval = parseUint(KeyMotionInterval, v, c) },
	},
	{
		Name:   KeyMotionKernel,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.MotionKernel = parseUint(KeyMotionKernel, v, c) },
	},
	{
		Name: KeyMotionMinArea,
		Type: typeFloat,
		Update: func(c *Config, v string) {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				c.Logger.Warning("invalid MotionMinArea var", "value", v)
			}
			c.MotionMinArea = f
		},
	},
	{
		Name:   KeyMotionPadding,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.MotionPadding = parseUint(KeyMotionPadding, v, c) },
	},
	{
		Name:   KeyMotionPixels,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.MotionPixels = parseUint(KeyMotionPixels, v, c) },
	},
	{
		Name: KeyMotionThreshold,
		Type: typeFloat,
		Update: func(c *Config, v string) {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				c.Logger.Warning("invalid MotionThreshold var", "value", v)
			}
			c.MotionThreshold = f
		},
	},
	{
		Name:   KeyOutputPath,
		Type:   typeString,
		Update: func(c *Config, v string) { c.OutputPath = v },
	},
	{
		Name: KeyOutputs,
		Type: "enums:File,Files,Stdout",
		Update: func(c *Config, v string) {
			outputs := strings.Split(v, ",")
			c.Outputs = make([]uint8, len(outputs))
			for i, output := range outputs {
				switch strings.ToLower(output) {
				case "file":
					c.Outputs[i] = OutputFile
				case "files":
					c.Outputs[i] = OutputFiles
				case "stdout":
					c.Outputs[i] = OutputStdout
				default:
					c.Logger.Warning("invalid Outputs param", "value", v)
				}
			}
		},
		Validate: func(c *Config) {
			if len(c.Outputs) == 0 {
				c.LogInvalidField(KeyOutputs, "Files")
				c.Outputs = []uint8{defaultOutput}
			}
		},
	},
	{
		Name:   KeyPoolCapacity,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.PoolCapacity = parseUint(KeyPoolCapacity, v, c) },
		Validate: func(c *Config) {
			if c.PoolCapacity == 0 {
				c.LogInvalidField(KeyPoolCapacity, defaultPoolCapacity)
				c.PoolCapacity = defaultPoolCapacity
			}
		},
	},
	{
		Name:   KeyPoolStartElementSize,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.PoolStartElementSize = parseUint(KeyPoolStartElementSize, v, c) },
		Validate: func(c *Config) {
			if c.PoolStartElementSize == 0 {
				c.LogInvalidField(KeyPoolStartElementSize, defaultPoolStartElementSize)
				c.PoolStartElementSize = defaultPoolStartElementSize
			}
		},
	},
	{
		Name:   KeyPoolWriteTimeout,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.PoolWriteTimeout = parseUint(KeyPoolWriteTimeout, v, c) },
		Validate: func(c *Config) {
			if c.PoolWriteTimeout == 0 {
				c.LogInvalidField(KeyPoolWriteTimeout, defaultPoolWriteTimeout)
				c.PoolWriteTimeout = defaultPoolWriteTimeout
			}
		},
	},
	{
		Name:   KeyProgressive,
		Type:   typeBool,
		Update: func(c *Config, v string) { c.Progressive = parseBool(KeyProgressive, v, c) },
	},
	{
		Name:   KeySamplePeriodPS,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.SamplePeriodPS = parseUint(KeySamplePeriodPS, v, c) },
		Validate: func(c *Config) {
			if c.SamplePeriodPS == 0 {
				c.LogInvalidField(KeySamplePeriodPS, defaultSamplePeriodPS)
				c.SamplePeriodPS = defaultSamplePeriodPS
			}
		},
	},
	{
		Name:   KeySuppress,
		Type:   typeBool,
		Update: func(c *Config, v string) { c.Suppress = parseBool(KeySuppress, v, c) },
	},
	{
		Name:   KeySyncDuration,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.SyncDurationNs = parseUint(KeySyncDuration, v, c) },
		Validate: func(c *Config) {
			if c.SyncDurationNs == 0 {
				def := c.LineDurationNs / 2
				if def == 0 {
					def = pal.SyncNs
				}
				c.LogInvalidField(KeySyncDuration, def)
				c.SyncDurationNs = def
			}
		},
	},
	{
		Name:   KeySyncThreshold,
		Type:   typeInt,
		Update: func(c *Config, v string) { c.SyncThreshold = parseInt(KeySyncThreshold, v, c) },
		Validate: func(c *Config) {
			if c.SyncThreshold == 0 {
				c.LogInvalidField(KeySyncThreshold, defaultSyncThreshold)
				c.SyncThreshold = defaultSyncThreshold
			}
		},
	},
	{
		Name:   KeyTolerance,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.ToleranceNs = parseUint(KeyTolerance, v, c) },
		Validate: func(c *Config) {
			if c.ToleranceNs == 0 {
				c.LogInvalidField(KeyTolerance, pal.ToleranceNs)
				c.ToleranceNs = pal.ToleranceNs
			}
		},
	},
	{
		Name:   KeyVerticalSyncLow,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.VerticalSyncLowNs = parseUint(KeyVerticalSyncLow, v, c) },
		Validate: func(c *Config) {
			if c.VerticalSyncLowNs == 0 {
				c.LogInvalidField(KeyVerticalSyncLow, pal.VerticalSyncLowNs)
				c.VerticalSyncLowNs = pal.VerticalSyncLowNs
			}
		},
	},
	{
		Name:   KeyWhiteLevel,
		Type:   typeInt,
		Update: func(c *Config, v string) { c.WhiteLevel = parseInt(KeyWhiteLevel, v, c) },
		Validate: func(c *Config) {
			if c.WhiteLevel == 0 {
				c.LogInvalidField(KeyWhiteLevel, defaultWhiteLevel)
				c.WhiteLevel = defaultWhiteLevel
			}
		},
	},
}

func parseUint(n, v string, c *Config) uint {
	_v, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		c.Logger.Warning(fmt.Sprintf("expected unsigned int for param %s", n), "value", v)
	}
	return uint(_v)
}

func parseInt(n, v string, c *Config) int {
	_v, err := strconv.Atoi(v)
	if err != nil {
		c.Logger.Warning(fmt.Sprintf("expected integer for param %s", n), "value", v)
	}
	return _v
}

func parseBool(n, v string, c *Config) (b bool) {
	switch strings.ToLower(v) {
	case "true":
		b = true
	case "false":
		b = false
	default:
		c.Logger.Warning(fmt.Sprintf("expect bool for param %s", n), "value", v)
	}
	return
}

func parseEnum(n, v string, enums map[string]uint8, c *Config) uint8 {
	_v, ok := enums[strings.ToLower(v)]
	if !ok {
		c.Logger.Warning(fmt.Sprintf("invalid value for %s param", n), "value", v)
	}
	return _v
}
