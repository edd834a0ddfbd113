/*
DESCRIPTION
  config_test.go contains tests for config validation and updating.

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
	"testing"
	"time"

	"github.com/ausocean/tv/codec/pal"
	"github.com/ausocean/utils/logging"
	"github.com/google/go-cmp/cmp"
)

type dumbLogger struct{}

func (dl *dumbLogger) Log(l int8, m string, a ...interface{})  {}
func (dl *dumbLogger) SetLevel(l int8)                         {}
func (dl *dumbLogger) Debug(msg string, args ...interface{})   {}
func (dl *dumbLogger) Info(msg string, args ...interface{})    {}
func (dl *dumbLogger) Warning(msg string, args ...interface{}) {}
func (dl *dumbLogger) Error(msg string, args ...interface{})   {}
func (dl *dumbLogger) Fatal(msg string, args ...interface{})   {}

func TestValidate(t *testing.T) {
	dl := &dumbLogger{}

	want := Config{
		Logger:               dl,
		Input:                defaultInput,
		Outputs:              []uint8{defaultOutput},
		LogLevel:             defaultVerbosity,
		FrameWidth:           pal.FrameWidth,
		FrameHeight:          pal.FrameHeight,
		SamplePeriodPS:       defaultSamplePeriodPS,
		ChunkSamples:         int(1e12 / uint64(defaultSamplePeriodPS) / defaultChunkDivisor),
		MaxBacklogSamples:    int(1e12 / uint64(defaultSamplePeriodPS) / 10),
		SyncThreshold:        defaultSyncThreshold,
		BlackLevel:           defaultBlackLevel,
		WhiteLevel:           defaultWhiteLevel,
		LineDurationNs:       pal.LineNs,
		SyncDurationNs:       pal.SyncNs,
		EqualiserLowNs:       pal.EqualiserLowNs,
		VerticalSyncLowNs:    pal.VerticalSyncLowNs,
		HorizontalSyncLowNs:  pal.HorizontalSyncLowNs,
		FrontPorchNs:         pal.FrontPorchNs,
		BackPorchNs:          pal.BackPorchNs,
		ToleranceNs:          pal.ToleranceNs,
		ChromaFilterTaps:     64,
		JPEGQuality:          defaultJPEGQuality,
		MetricsPeriod:        defaultMetricsPeriod,
		PoolCapacity:         defaultPoolCapacity,
		PoolStartElementSize: defaultPoolStartElementSize,
		PoolWriteTimeout:     defaultPoolWriteTimeout,
	}

	got := Config{Logger: dl}
	err := (&got).Validate()
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}

	if !cmp.Equal(got, want) {
		t.Errorf("configs not equal\n%v", cmp.Diff(want, got))
	}
}

func TestValidateOverlappingWindows(t *testing.T) {
	c := Config{Logger: &dumbLogger{}, ToleranceNs: 2000}
	if err := (&c).Validate(); err == nil {
		t.Error("no error for tolerance windows wider than reference spacing")
	}
}

func TestValidateBacklogTooSmall(t *testing.T) {
	c := Config{Logger: &dumbLogger{}, MaxBacklogSamples: 100}
	if err := (&c).Validate(); err == nil {
		t.Error("no error for backlog below two frame durations")
	}
}

func TestValidateLevelsInverted(t *testing.T) {
	c := Config{Logger: &dumbLogger{}, BlackLevel: 800, WhiteLevel: 700}
	if err := (&c).Validate(); err == nil {
		t.Error("no error for white level below black level")
	}
}

func TestUpdate(t *testing.T) {
	updateMap := map[string]string{
		"BackPorch":         "5700",
		"BlackLevel":        "250",
		"ChromaFilter":      "true",
		"ChromaFilterTaps":  "128",
		"ChunkSamples":      "50000",
		"EqualiserLow":      "2350",
		"Filters":           "MOG",
		"FrameHeight":       "625",
		"FrameWidth":        "720",
		"FrontPorch":        "1650",
		"HorizontalSyncLow": "4700",
		"Input":             "sigen",
		"InputPath":         "/inputpath",
		"Interlaced":        "true",
		"JPEGQuality":       "75",
		"LineDuration":      "64000",
		"logging":           "Error",
		"Loop":              "true",
		"MaxBacklogSamples": "2000000",
		"MetricsPeriod":     "10",
		"MotionDownscaling": "3",
		"MotionHistory":     "4",
		"MotionInterval":    "6",
		"MotionKernel":      "2",
		"MotionMinArea":     "9",
		"MotionPadding":     "8",
		"MotionPixels":      "100",
		"MotionThreshold":   "34",
		"OutputPath":        "/outputpath",
		"Outputs":           "Files,Stdout",
		"PoolCapacity":      "100000",
		"PoolWriteTimeout":  "50",
		"Progressive":       "true",
		"SamplePeriodPS":    "50000",
		"SyncDuration":      "32000",
		"SyncThreshold":     "150",
		"Tolerance":         "250",
		"VerticalSyncLow":   "27300",
		"WhiteLevel":        "950",
	}

	want := Config{
		Logger:              &dumbLogger{},
		BackPorchNs:         5700,
		BlackLevel:          250,
		ChromaFilter:        true,
		ChromaFilterTaps:    128,
		ChunkSamples:        50000,
		EqualiserLowNs:      2350,
		Filters:             []uint{FilterMOG},
		FrameHeight:         625,
		FrameWidth:          720,
		FrontPorchNs:        1650,
		HorizontalSyncLowNs: 4700,
		Input:               InputSigen,
		InputPath:           "/inputpath",
		Interlaced:          true,
		JPEGQuality:         75,
		LineDurationNs:      64000,
		LogLevel:            logging.Error,
		Loop:                true,
		MaxBacklogSamples:   2000000,
		MetricsPeriod:       10 * time.Second,
		MotionDownscaling:   3,
		MotionHistory:       4,
		MotionInterval:      6,
		MotionKernel:        2,
		MotionMinArea:       9,
		MotionPadding:       8,
		MotionPixels:        100,
		MotionThreshold:     34,
		OutputPath:          "/outputpath",
		Outputs:             []uint8{OutputFiles, OutputStdout},
		PoolCapacity:        100000,
		PoolWriteTimeout:    50,
		Progressive:         true,
		SamplePeriodPS:      50000,
		SyncDurationNs:      32000,
		SyncThreshold:       150,
		ToleranceNs:         250,
		VerticalSyncLowNs:   27300,
		WhiteLevel:          950,
	}

	got := Config{Logger: &dumbLogger{}}
	got.Update(updateMap)
	if !cmp.Equal(got, want) {
		t.Errorf("configs not equal\n%v", cmp.Diff(want, got))
	}
}
