/*
NAME
  tivodecode - decrypt a DVR recording to a standard MPEG file.

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

// tivodecode decrypts a recording read from a file or standard input,
// writing a standard MPEG program or transport stream. The media
// access key may be given once with -m; it is saved under the user's
// config directory for later runs.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ausocean/utils/logging"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ausocean/tivo/container/mpegts"
	"github.com/ausocean/tivo/container/tivo"
	"github.com/ausocean/tivo/container/tivo/meta"
	"github.com/ausocean/tivo/decode"
)

const progName = "tivodecode"

// Logging configuration.
const (
	logMaxSize   = 50 // MB
	logMaxBackup = 5
	logMaxAge    = 28 // days
	logSuppress  = true
)

// Number of leading output packets inspected by the debug probe.
const probePackets = 64

func main() {
	var (
		inPath      = flag.String("i", "", "File to decode (defaults to standard input)")
		outPath     = flag.String("o", "", "Output file (defaults to standard output)")
		mak         = flag.String("m", "", "Media access key (saved between program executions)")
		dumpMeta    = flag.Bool("metadata", false, "Dump recording metadata to chunk-NN.xml files")
		metaTxt     = flag.String("metadata-txt", "", "Write pyTivo metadata text to `FILE`")
		noVideo     = flag.Bool("x", false, "Exit after processing metadata; doesn't decode the video")
		compat      = flag.Bool("compat-mode", false, "Don't fix problems in the recording; produces output binary compatible with the recorder's own playback")
		showVersion = flag.Bool("version", false, "Show version and exit")
		debug       = flag.Bool("d", false, "Show debugging information while decoding")
	)
	flag.Parse()

	if *showVersion {
		fmt.Println(decode.Version)
		os.Exit(0)
	}

	verbosity := logging.Info
	if *debug {
		verbosity = logging.Debug
	}
	fileLog := &lumberjack.Logger{
		Filename:   filepath.Join(configDir(), progName+".log"),
		MaxSize:    logMaxSize,
		MaxBackups: logMaxBackup,
		MaxAge:     logMaxAge,
	}
	log := logging.New(verbosity, io.MultiWriter(fileLog, os.Stderr), logSuppress)

	key, err := resolveMak(*mak)
	if key == "" {
		log.Fatal("no media access key; provide one with -m")
	}
	if err != nil {
		log.Warning("could not persist media access key", "error", err)
	}

	in := io.Reader(os.Stdin)
	if *inPath != "" {
		f, err := os.Open(*inPath)
		if err != nil {
			log.Fatal("could not open input", "error", err)
		}
		defer f.Close()
		in = f
	}

	out := io.Writer(os.Stdout)
	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			log.Fatal("could not create output", "error", err)
		}
		defer f.Close()
		out = f
		fmt.Println(decode.QualcommMsg)
	}

	bw := bufio.NewWriter(out)
	cfg := decode.Config{
		Logger:            log,
		CompatibilityMode: *compat,
		UsePrefetch:       *inPath == "",
	}
	d := decode.NewDecoder(in, bw, key, cfg)

	if *noVideo {
		if _, err := d.DecodeMetadata(); err != nil {
			log.Fatal("could not decode metadata", "error", err)
		}
	} else {
		if err := d.Decode(); err != nil {
			log.Fatal("could not decode recording", "error", err)
		}
	}
	if err := bw.Flush(); err != nil {
		log.Fatal("could not flush output", "error", err)
	}

	if *dumpMeta {
		dumpMetadata(log, d.Metadata())
	}
	if *metaTxt != "" {
		writeMetaText(log, d.Metadata(), *metaTxt)
	}
	if *debug && !*noVideo && *outPath != "" && d.Format() == tivo.FormatTransportStream {
		probe(log, *outPath)
	}
}

// dumpMetadata writes each metadata chunk to chunk-NN.xml in the
// working directory.
func dumpMetadata(log logging.Logger, chunks [][]byte) {
	for i, c := range chunks {
		name := fmt.Sprintf("chunk-%02d.xml", i)
		log.Debug("saving metadata chunk", "file", name)
		if err := os.WriteFile(name, c, 0644); err != nil {
			log.Error("could not save metadata chunk", "file", name, "error", err)
		}
	}
}

// writeMetaText renders the first metadata chunk in the pyTivo text
// format.
func writeMetaText(log logging.Logger, chunks [][]byte, path string) {
	if len(chunks) == 0 {
		log.Error("no metadata chunks to render")
		return
	}
	r, err := meta.Parse(chunks[0])
	if err != nil {
		log.Error("could not parse metadata", "error", err)
		return
	}
	f, err := os.Create(path)
	if err != nil {
		log.Error("could not create metadata text file", "path", path, "error", err)
		return
	}
	defer f.Close()
	if err := r.WriteText(f); err != nil {
		log.Error("could not write metadata text", "path", path, "error", err)
	}
}

// probe logs the program layout of the decrypted transport stream.
func probe(log logging.Logger, path string) {
	f, err := os.Open(path)
	if err != nil {
		log.Error("could not reopen output for probing", "error", err)
		return
	}
	defer f.Close()

	head := make([]byte, probePackets*mpegts.PacketSize)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF {
		log.Error("could not read output head", "error", err)
		return
	}
	streams, err := mpegts.Probe(head[:n])
	if err != nil {
		log.Warning("could not probe output", "error", err)
		return
	}
	for pid, typ := range streams {
		log.Debug("output stream", "pid", int(pid), "type", int(typ))
	}
}

// configDir returns the per-user configuration directory, creating it
// if need be.
func configDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	dir := filepath.Join(home, ".config", progName)
	os.MkdirAll(dir, 0700)
	return dir
}

// resolveMak returns the media access key, preferring the flag value
// and saving it for later runs; with no flag the saved key is used.
func resolveMak(flagMak string) (string, error) {
	path := filepath.Join(configDir(), "mak")
	if flagMak != "" {
		if err := os.WriteFile(path, []byte(flagMak), 0600); err != nil {
			return flagMak, err
		}
		return flagMak, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}
