/*
DESCRIPTION
  tvd is a command-line client using the viewer package to capture, decode
  and encode PAL composite video, with runtime control through a watched
  variables file.

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

// Package main is a command-line shell for the viewer package.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ausocean/tv/codec/pal"
	"github.com/ausocean/tv/viewer"
	"github.com/ausocean/tv/viewer/config"
	"github.com/ausocean/utils/logging"
)

// Current software version.
const version = "v1.0.0"

// Logging configuration.
const (
	logPath      = "/var/log/tvd/tvd.log"
	logMaxSize   = 500 // MB
	logMaxBackup = 10
	logMaxAge    = 28 // days
	logVerbosity = logging.Info
	logSuppress  = true
)

// Misc constants.
const pkg = "tvd: "

func main() {
	showVersion := flag.Bool("version", false, "show version")
	varsPath := flag.String("vars", "", "path to a variables file of Key=Value lines, watched for changes")
	calibratePath := flag.String("calibrate", "", "estimate signal levels from a raw capture file and exit")
	logToStderr := flag.Bool("stderr", true, "log to standard error as well as the log file")
	flag.Parse()
	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	// Create lumberjack logger to handle logging to file.
	fileLog := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    logMaxSize,
		MaxBackups: logMaxBackup,
		MaxAge:     logMaxAge,
	}

	var sink io.Writer = fileLog
	if *logToStderr {
		sink = io.MultiWriter(fileLog, os.Stderr)
	}
	log := logging.New(logVerbosity, sink, logSuppress)

	log.Info("starting tvd", "version", version)

	if *calibratePath != "" {
		err := calibrate(*calibratePath)
		if err != nil {
			log.Fatal(pkg+"could not calibrate", "error", err.Error())
		}
		return
	}

	log.Debug("initialising viewer")
	vw, err := viewer.New(config.Config{Logger: log})
	if err != nil {
		log.Fatal(pkg+"could not initialise viewer", "error", err.Error())
	}

	if *varsPath != "" {
		vars, err := readVars(*varsPath)
		if err != nil {
			log.Fatal(pkg+"could not read vars file", "error", err.Error())
		}
		err = vw.Update(vars)
		if err != nil {
			log.Fatal(pkg+"could not apply vars", "error", err.Error())
		}
	}

	err = vw.Start()
	if err != nil {
		log.Fatal(pkg+"could not start viewer", "error", err.Error())
	}
	log.Info("viewer started")

	// Watch the vars file for runtime reconfiguration.
	watch := make(chan struct{})
	if *varsPath != "" {
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			log.Fatal(pkg+"could not create watcher", "error", err.Error())
		}
		defer watcher.Close()
		err = watcher.Add(*varsPath)
		if err != nil {
			log.Fatal(pkg+"could not watch vars file", "error", err.Error())
		}
		go func() {
			for {
				select {
				case ev, ok := <-watcher.Events:
					if !ok {
						return
					}
					if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
						continue
					}
					watch <- struct{}{}
				case err, ok := <-watcher.Errors:
					if !ok {
						return
					}
					log.Warning("vars watcher error", "error", err.Error())
				}
			}
		}()
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	for {
		select {
		case <-watch:
			log.Info("vars file changed, reconfiguring")
			vars, err := readVars(*varsPath)
			if err != nil {
				log.Warning("could not read vars file", "error", err.Error())
				continue
			}
			err = vw.Update(vars)
			if err != nil {
				log.Warning("could not apply vars", "error", err.Error())
				continue
			}
			err = vw.Start()
			if err != nil {
				log.Fatal(pkg+"could not restart viewer", "error", err.Error())
			}
		case sig := <-sigs:
			log.Info("exiting on signal", "signal", sig.String())
			vw.Stop()
			return
		}
	}
}

// readVars loads a variables file of Key=Value lines, ignoring blank lines
// and lines starting with '#'.
func readVars(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open vars file: %w", err)
	}
	defer f.Close()

	vars := make(map[string]string)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		k, v, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("malformed vars line: %q", line)
		}
		vars[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return vars, scanner.Err()
}

// calibrate estimates signal levels from a raw little-endian int16 capture
// and prints suggested configuration values.
func calibrate(path string) error {
	d, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("could not read capture: %w", err)
	}
	samples := make([]pal.Sample, len(d)/2)
	for i := range samples {
		samples[i] = pal.Sample(int16(uint16(d[2*i]) | uint16(d[2*i+1])<<8))
	}
	l, err := pal.EstimateLevels(samples)
	if err != nil {
		return fmt.Errorf("could not estimate levels: %w", err)
	}
	fmt.Printf("SyncThreshold=%d\nBlackLevel=%d\nWhiteLevel=%d\n", l.SyncThreshold, l.Black, l.White)
	return nil
}
