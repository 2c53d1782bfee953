/*
NAME
  decode.go - the recording decryption pipeline.

DESCRIPTION
  See Readme.md

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

// Package decode drives the full recording decryption pipeline: the
// envelope is parsed, cipher keys are derived from the media access
// key, and the MPEG payload is decrypted by the program stream or
// transport stream decoder the envelope header selects.
package decode

import (
	"io"

	"github.com/ausocean/utils/logging"
	"github.com/pkg/errors"

	"github.com/ausocean/tivo/cipher/turing"
	"github.com/ausocean/tivo/container/mpegps"
	"github.com/ausocean/tivo/container/mpegts"
	"github.com/ausocean/tivo/container/tivo"
)

// Version is the current software version.
const Version = "v0.5.0"

// QualcommMsg is the attribution notice carried by every encrypted
// recording.
const QualcommMsg = "Encryption by QUALCOMM"

// Config holds the options of a Decoder.
type Config struct {
	// Logger receives pipeline diagnostics. A nil Logger discards
	// them.
	Logger logging.Logger

	// CompatibilityMode reproduces the recorder's own playback
	// output byte for byte, including its corruption-masking
	// quirks, instead of producing a clean stream.
	CompatibilityMode bool

	// UsePrefetch reads the input through an asynchronous
	// prefetcher so a pipe feeding the decoder is drained even
	// while the pipeline is busy.
	UsePrefetch bool
}

// Decoder decrypts one recording from an input stream to an output
// stream.
type Decoder struct {
	r   io.Reader
	w   io.Writer
	mak string
	cfg Config
	log logging.Logger
	env *tivo.Envelope
}

// NewDecoder returns a Decoder reading a recording from r, writing the
// decrypted MPEG stream to w, and deriving keys from the media access
// key mak.
func NewDecoder(r io.Reader, w io.Writer, mak string, cfg Config) *Decoder {
	log := cfg.Logger
	if log == nil {
		log = logging.New(logging.Error, io.Discard, true)
	}
	return &Decoder{r: r, w: w, mak: mak, cfg: cfg, log: log}
}

// Decode runs the full pipeline: parse the envelope, skip to the MPEG
// payload, and decrypt it in the format the envelope declares. The
// decrypted metadata chunks remain available from Metadata.
func (d *Decoder) Decode() error {
	r := d.r
	if d.cfg.UsePrefetch {
		r = newPrefetcher(r)
	}

	env, err := tivo.Parse(r, d.mak)
	if err != nil {
		return errors.Wrap(err, "could not parse envelope")
	}
	d.env = env
	d.log.Debug("envelope parsed", "format", env.Header.Format().String(), "chunks", len(env.Chunks), "mpegOffset", int(env.Header.MpegOffset))

	if env.MediaKey() == nil {
		return errors.Wrap(tivo.ErrMalformed, "no plaintext chunk to derive media key from")
	}

	skip := int64(env.Header.MpegOffset) - env.Size()
	if skip < 0 {
		return errors.Wrapf(tivo.ErrMalformed, "mpeg offset %d inside envelope of %d bytes", env.Header.MpegOffset, env.Size())
	}
	if _, err := io.CopyN(io.Discard, r, skip); err != nil {
		return errors.Wrap(tivo.ErrMalformed, "short read before mpeg payload")
	}

	td, err := turing.NewDecoder(env.MediaKey())
	if err != nil {
		return errors.Wrap(err, "could not key payload decoder")
	}

	switch env.Header.Format() {
	case tivo.FormatTransportStream:
		return mpegts.NewDecoder(r, d.w, td, d.cfg.CompatibilityMode, d.log).Decode()
	default:
		return mpegps.NewDecoder(r, d.w, td, d.log).Decode()
	}
}

// DecodeMetadata parses the envelope only and returns the decrypted
// metadata chunk payloads in order. The MPEG payload is not touched.
func (d *Decoder) DecodeMetadata() ([][]byte, error) {
	env, err := tivo.Parse(d.r, d.mak)
	if err != nil {
		return nil, errors.Wrap(err, "could not parse envelope")
	}
	d.env = env
	return d.Metadata(), nil
}

// Format returns the MPEG stream format declared by the last parsed
// envelope. It is meaningful only after Decode or DecodeMetadata has
// run.
func (d *Decoder) Format() tivo.Format {
	if d.env == nil {
		return tivo.FormatProgramStream
	}
	return d.env.Header.Format()
}

// Metadata returns the decrypted metadata chunk payloads of the last
// Decode or DecodeMetadata call, or nil before either has run.
func (d *Decoder) Metadata() [][]byte {
	if d.env == nil {
		return nil
	}
	chunks := make([][]byte, len(d.env.Chunks))
	for i, c := range d.env.Chunks {
		chunks[i] = c.Data
	}
	return chunks
}
