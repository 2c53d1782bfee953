/*
NAME
  chunk.go - metadata chunk records and cipher key derivation.

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

package tivo

import (
	"crypto/md5"
	"crypto/sha1"
	"encoding/binary"
	"encoding/hex"
	"io"

	"github.com/pkg/errors"
)

// Metadata chunk kinds.
const (
	ChunkPlaintext = 0
	ChunkEncrypted = 1
)

const chunkHeaderSize = 12

// The string prefixed to the media access key when deriving the
// metadata cipher key.
const metaKeyPrefix = "tivo:TiVo DVR:"

// Chunk is one metadata chunk record. Data holds the payload; for
// encrypted chunks Parse replaces it with the decrypted bytes.
type Chunk struct {
	Size     uint32
	DataSize uint32
	ID       uint16
	Kind     uint16
	Data     []byte
}

// ReadChunk reads one chunk record, including its padding, from r.
func ReadChunk(r io.Reader) (Chunk, error) {
	var buf [chunkHeaderSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return Chunk{}, errors.Wrap(ErrMalformed, "short read in chunk header")
	}

	c := Chunk{
		Size:     binary.BigEndian.Uint32(buf[0:4]),
		DataSize: binary.BigEndian.Uint32(buf[4:8]),
		ID:       binary.BigEndian.Uint16(buf[8:10]),
		Kind:     binary.BigEndian.Uint16(buf[10:12]),
	}

	if c.Kind != ChunkPlaintext && c.Kind != ChunkEncrypted {
		return Chunk{}, errors.Wrapf(ErrMalformed, "chunk kind %d", c.Kind)
	}
	if c.Size < c.DataSize+chunkHeaderSize {
		return Chunk{}, errors.Wrapf(ErrMalformed, "chunk size %d too small for data size %d", c.Size, c.DataSize)
	}

	c.Data = make([]byte, c.DataSize)
	if _, err := io.ReadFull(r, c.Data); err != nil {
		return Chunk{}, errors.Wrap(ErrMalformed, "short read in chunk data")
	}

	pad := int64(c.Size) - int64(c.DataSize) - chunkHeaderSize
	if pad > 0 {
		if _, err := io.CopyN(io.Discard, r, pad); err != nil {
			return Chunk{}, errors.Wrap(ErrMalformed, "short read in chunk padding")
		}
	}

	return c, nil
}

// Key derives the 20-byte media cipher key from the media access key
// and the chunk payload.
func (c *Chunk) Key(mak string) []byte {
	h := sha1.New()
	h.Write([]byte(mak))
	h.Write(c.Data)
	return h.Sum(nil)
}

// MetadataKey derives the metadata cipher key. The media access key is
// first folded through an MD5 digest whose lowercase hex form then
// takes the MAK's place in the media key derivation.
func (c *Chunk) MetadataKey(mak string) []byte {
	sum := md5.Sum([]byte(metaKeyPrefix + mak))
	return c.Key(hex.EncodeToString(sum[:]))
}
