/*
NAME
  decoder.go - pool of per-stream Turing keystreams derived from a
  single recording key.

DESCRIPTION
  See Readme.md

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>
  Dan Kortschak <dan@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package turing

import (
	"crypto/sha1"

	"github.com/pkg/errors"
)

// The Turing round key hashes only the first 17 bytes of the working
// key; the trailing three block bytes reach the cipher through the IV
// alone. This asymmetry is part of the keying scheme and must not be
// "fixed".
const shortKeyLen = 17

// KeyLen is the size of the working key a Decoder operates on.
const KeyLen = sha1.Size

// StreamKeyLen is the size of the per-stream key material carried in a
// recording's private data fields.
const StreamKeyLen = 16

// ErrKeyNotReady reports that a stream key's required marker bits are
// not all set, so the key cannot yet drive decryption.
var ErrKeyNotReady = errors.New("turing: stream key marker bits unset")

// Decoder manages the keystream for every elementary stream encrypted
// under one recording key. Streams are created on first use and rekeyed
// whenever their block number changes. A Decoder is not safe for
// concurrent use.
type Decoder struct {
	key     [KeyLen]byte
	streams map[byte]*Stream
}

// NewDecoder returns a Decoder operating on the given recording key.
// The key must be KeyLen bytes.
func NewDecoder(key []byte) (*Decoder, error) {
	if len(key) != KeyLen {
		return nil, errors.Errorf("key size %d, expect %d", len(key), KeyLen)
	}
	d := &Decoder{streams: make(map[byte]*Stream)}
	copy(d.key[:], key)
	return d, nil
}

// PrepareFrame returns the Stream for streamID keyed for blockID,
// rekeying if the stream is new or its block number has changed.
func (d *Decoder) PrepareFrame(streamID byte, blockID uint32) (*Stream, error) {
	s, ok := d.streams[streamID]
	if !ok {
		s = &Stream{}
		if err := d.rekey(s, streamID, blockID); err != nil {
			return nil, err
		}
		d.streams[streamID] = s
		return s, nil
	}
	if s.blockID != blockID {
		if err := d.rekey(s, streamID, blockID); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (d *Decoder) rekey(s *Stream, streamID byte, blockID uint32) error {
	d.key[16] = streamID
	d.key[17] = byte(blockID >> 16)
	d.key[18] = byte(blockID >> 8)
	d.key[19] = byte(blockID)

	turkey := sha1.Sum(d.key[:shortKeyLen])
	turiv := sha1.Sum(d.key[:])

	return errors.Wrap(s.reset(streamID, blockID, turkey[:], turiv[:]), "rekeying stream")
}

// SkipBytes advances the stream's keystream cursor by n bytes,
// generating new frames as required.
func (d *Decoder) SkipBytes(s *Stream, n int) {
	if s.pos+n < s.n {
		s.pos += n
		return
	}
	for {
		n -= s.n - s.pos
		s.generate()
		if n < s.n {
			break
		}
	}
	s.pos = n
}

// DecryptBytes XORs b in place with the stream's keystream.
func (d *Decoder) DecryptBytes(s *Stream, b []byte) {
	for i := range b {
		if s.pos >= s.n {
			s.generate()
		}
		b[i] ^= s.buf[s.pos]
		s.pos++
	}
}

// ParseStreamKey recovers the cipher block number and the crypted
// sentinel scattered through a 16-byte stream key carried in a
// recording, validating the key's fixed marker bits. ErrKeyNotReady is
// returned while any marker bit is still clear.
func ParseStreamKey(key []byte) (blockID, crypted uint32, err error) {
	if key[0]&0x80 == 0 || key[1]&0x40 == 0 || key[3]&0x20 == 0 ||
		key[4]&0x10 == 0 || key[13]&0x02 == 0 || key[15]&0x01 == 0 {
		return 0, 0, ErrKeyNotReady
	}

	blockID = uint32(key[1]&0x3f)<<18 |
		uint32(key[2])<<10 |
		uint32(key[3]&0xc0)<<2 |
		uint32(key[3]&0x1f)<<3 |
		uint32(key[4]&0xe0)>>5

	crypted = uint32(key[11]&0x03)<<30 |
		uint32(key[12])<<22 |
		uint32(key[13]&0xfc)<<14 |
		uint32(key[13]&0x01)<<15 |
		uint32(key[14])<<7 |
		uint32(key[15]&0xfe)>>1

	return blockID, crypted, nil
}
