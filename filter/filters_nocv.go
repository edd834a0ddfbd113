//go:build !withcv
// +build !withcv

/*
DESCRIPTION
  Replaces filters that use the gocv package when OpenCV is not installed
  on the build machine.

AUTHORS
  Scott Barnard <scott@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package filter

import (
	"io"

	"github.com/ausocean/tv/viewer/config"
)

// NewMOG returns a pointer to a new NoOp struct for testing purposes only.
func NewMOG(dst io.WriteCloser, c config.Config) *NoOp {
	return &NoOp{dst: dst}
}

// NewKNN returns a pointer to a new NoOp struct for testing purposes only.
func NewKNN(dst io.WriteCloser, c config.Config) *NoOp {
	return &NoOp{dst: dst}
}

// NewDiff returns a pointer to a new NoOp struct for testing purposes only.
func NewDiff(dst io.WriteCloser, c config.Config) *NoOp {
	return &NoOp{dst: dst}
}
