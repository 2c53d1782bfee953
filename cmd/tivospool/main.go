/*
NAME
  tivospool - decrypt recordings as they arrive in a spool directory.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// tivospool watches a spool directory and decrypts each recording
// dropped into it, writing a standard MPEG file alongside. It is
// intended to run as a systemd service and signals readiness once the
// watch is established.
package main

import (
	"bufio"
	"flag"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ausocean/utils/logging"
	"github.com/coreos/go-systemd/daemon"
	"github.com/fsnotify/fsnotify"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ausocean/tivo/decode"
)

const progName = "tivospool"

// Logging configuration.
const (
	logPath      = "/var/log/tivospool/tivospool.log"
	logMaxSize   = 50 // MB
	logMaxBackup = 5
	logMaxAge    = 28 // days
	logVerbosity = logging.Info
	logSuppress  = true
)

const recordingExt = ".TiVo"

// A newly spooled recording is converted once its size has stopped
// changing for this long.
const settlePeriod = 2 * time.Second

func main() {
	var (
		dir    = flag.String("dir", ".", "Spool directory to watch")
		mak    = flag.String("m", "", "Media access key")
		compat = flag.Bool("compat-mode", false, "Don't fix problems in recordings; produces output binary compatible with the recorder's own playback")
	)
	flag.Parse()

	fileLog := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    logMaxSize,
		MaxBackups: logMaxBackup,
		MaxAge:     logMaxAge,
	}
	log := logging.New(logVerbosity, io.MultiWriter(fileLog, os.Stderr), logSuppress)

	if *mak == "" {
		log.Fatal("no media access key; provide one with -m")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Fatal("could not create watcher", "error", err)
	}
	defer watcher.Close()
	if err := watcher.Add(*dir); err != nil {
		log.Fatal("could not watch spool directory", "dir", *dir, "error", err)
	}

	// Convert anything already spooled before handling new arrivals;
	// arrivals during this pass are queued by the watcher.
	entries, err := os.ReadDir(*dir)
	if err != nil {
		log.Fatal("could not read spool directory", "dir", *dir, "error", err)
	}
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), recordingExt) {
			convert(log, filepath.Join(*dir, e.Name()), *mak, *compat)
		}
	}

	if _, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
		log.Warning("could not notify systemd", "error", err)
	}
	log.Info("watching spool directory", "dir", *dir, "version", decode.Version)

	for {
		select {
		case ev, ok := <-watcher.Events:
			if !ok {
				return
			}
			if ev.Op&fsnotify.Create == 0 || !strings.HasSuffix(ev.Name, recordingExt) {
				continue
			}
			settle(ev.Name)
			convert(log, ev.Name, *mak, *compat)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Error("watcher error", "error", err)
		}
	}
}

// settle waits until the size of the file at path has stopped
// changing, so a recording still being copied in is not converted
// half-written.
func settle(path string) {
	last := int64(-1)
	for {
		fi, err := os.Stat(path)
		if err != nil {
			return
		}
		if fi.Size() == last {
			return
		}
		last = fi.Size()
		time.Sleep(settlePeriod)
	}
}

// convert decrypts the recording at path to an .mpg file alongside
// it. An existing output file is left alone.
func convert(log logging.Logger, path, mak string, compat bool) {
	outPath := strings.TrimSuffix(path, recordingExt) + ".mpg"
	if _, err := os.Stat(outPath); err == nil {
		log.Debug("output already exists", "path", outPath)
		return
	}

	in, err := os.Open(path)
	if err != nil {
		log.Error("could not open recording", "path", path, "error", err)
		return
	}
	defer in.Close()

	out, err := os.Create(outPath)
	if err != nil {
		log.Error("could not create output", "path", outPath, "error", err)
		return
	}
	defer out.Close()

	bw := bufio.NewWriter(out)
	cfg := decode.Config{Logger: log, CompatibilityMode: compat}
	err = decode.NewDecoder(in, bw, mak, cfg).Decode()
	if err == nil {
		err = bw.Flush()
	}
	if err != nil {
		log.Error("could not decode recording", "path", path, "error", err)
		os.Remove(outPath)
		return
	}
	log.Info("decoded recording", "path", path, "output", outPath)
}
