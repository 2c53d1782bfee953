/*
NAME
  envelope.go - parsing of the outer envelope wrapped around a DVR
  recording's MPEG payload.

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

// Package tivo provides parsing of the TiVo recording envelope: the
// fixed header, the metadata chunk table, and derivation of the cipher
// keys that unlock the MPEG payload that follows.
package tivo

import (
	"io"

	"github.com/pkg/errors"

	"github.com/ausocean/tivo/cipher/turing"
)

// Envelope parse errors.
var (
	ErrBadMagic  = errors.New("tivo: envelope magic not \"TiVo\"")
	ErrMalformed = errors.New("tivo: malformed envelope")
)

// Envelope is a parsed recording envelope. Encrypted metadata chunks
// have been decrypted in place.
type Envelope struct {
	Header Header
	Chunks []Chunk

	mediaKey []byte
	size     int64
}

// MediaKey returns the 20-byte cipher key for the MPEG payload.
func (e *Envelope) MediaKey() []byte { return e.mediaKey }

// Size returns the number of envelope bytes consumed from the input.
func (e *Envelope) Size() int64 { return e.size }

// Parse reads the envelope from r, decrypting any encrypted metadata
// chunks with the metadata key derived from mak. The reader is left
// positioned at the first byte after the chunk table; the MPEG payload
// begins at Header.MpegOffset, which may be further on.
func Parse(r io.Reader, mak string) (*Envelope, error) {
	cr := &countReader{r: r}

	h, err := ReadHeader(cr)
	if err != nil {
		return nil, err
	}

	env := &Envelope{Header: h, Chunks: make([]Chunk, 0, h.ChunkCount)}

	var (
		metaDecoder *turing.Decoder
		metaCursor  int64
	)

	for i := 0; i < int(h.ChunkCount); i++ {
		chunkDataPos := cr.pos + chunkHeaderSize
		c, err := ReadChunk(cr)
		if err != nil {
			return nil, errors.Wrapf(err, "reading chunk %d", i)
		}

		switch c.Kind {
		case ChunkPlaintext:
			env.mediaKey = c.Key(mak)
			metaDecoder, err = turing.NewDecoder(c.MetadataKey(mak))
			if err != nil {
				return nil, errors.Wrapf(err, "keying metadata decoder from chunk %d", i)
			}
			metaCursor = chunkDataPos + int64(len(c.Data))
		case ChunkEncrypted:
			if metaDecoder == nil {
				return nil, errors.Wrapf(ErrMalformed, "chunk %d encrypted before any plaintext chunk", i)
			}
			s, err := metaDecoder.PrepareFrame(0, 0)
			if err != nil {
				return nil, errors.Wrapf(err, "preparing metadata frame for chunk %d", i)
			}
			metaDecoder.SkipBytes(s, int(chunkDataPos-metaCursor))
			metaDecoder.DecryptBytes(s, c.Data)
			metaCursor = chunkDataPos + int64(len(c.Data))
		}

		env.Chunks = append(env.Chunks, c)
	}

	env.size = cr.pos
	return env, nil
}

// countReader wraps an io.Reader, tracking the byte position so chunk
// payload offsets can be computed against the keystream origin.
type countReader struct {
	r   io.Reader
	pos int64
}

func (c *countReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.pos += int64(n)
	return n, err
}
