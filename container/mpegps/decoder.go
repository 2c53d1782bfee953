/*
NAME
  decoder.go - decryption of a TiVo MPEG program stream.

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

// Package mpegps decrypts the MPEG program stream payload of a TiVo
// recording. The stream is scanned byte by byte for PES start codes;
// scrambled PES packets carry their own Turing key material in a
// private header extension, which keys the cipher used to decrypt the
// packet body.
package mpegps

import (
	"bufio"
	"encoding/binary"
	"io"

	"github.com/ausocean/utils/logging"
	"github.com/pkg/errors"

	"github.com/ausocean/tivo/cipher/turing"
)

// Program stream decode errors.
var (
	ErrUnknownStartCode = errors.New("mpegps: unknown start code")
	ErrMalformed        = errors.New("mpegps: malformed program stream")
)

// PES packet kinds by start-code selector.
type packetKind int

const (
	kindSpecial packetKind = iota
	kindSimple
	kindComplex
	kindNone
)

func kindOf(code byte) packetKind {
	switch {
	case code <= 0xba:
		return kindSpecial
	case code == 0xbb || code == 0xbc || code == 0xbe || code == 0xbf,
		code >= 0xf0 && code <= 0xf2, code == 0xf8, code >= 0xfa:
		return kindSimple
	case code == 0xbd, code >= 0xc0 && code <= 0xef,
		code >= 0xf3 && code <= 0xf7, code == 0xf9:
		return kindComplex
	}
	return kindNone
}

// The PES header of a scrambled packet may carry at most this many
// extension bytes.
const maxHeaderLen = 27

// Decoder decrypts a program stream read from an input, writing the
// clear stream to an output.
type Decoder struct {
	r      *bufio.Reader
	w      io.Writer
	turing *turing.Decoder
	log    logging.Logger
	stream *turing.Stream
}

// NewDecoder returns a Decoder reading the program stream from r,
// positioned at the first pack, and writing the decrypted stream to w.
// The Turing decoder must be keyed with the recording's media key.
func NewDecoder(r io.Reader, w io.Writer, td *turing.Decoder, log logging.Logger) *Decoder {
	return &Decoder{r: bufio.NewReader(r), w: w, turing: td, log: log}
}

// Decode copies the program stream to the output, decrypting scrambled
// PES packets along the way. It returns nil once the input is
// exhausted.
func (d *Decoder) Decode() error {
	marker := uint32(0xffffffff)
	first := true
	var code byte

	for {
		if marker&0xffffff00 == 0x100 {
			emitted, err := d.processFrame(code)
			if err != nil {
				return err
			}
			if emitted {
				marker = 0xffffffff
			} else if err := d.writeByte(code); err != nil {
				return err
			}
		} else if !first {
			if err := d.writeByte(code); err != nil {
				return err
			}
		}

		b, err := d.r.ReadByte()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.Wrap(err, "reading program stream")
		}
		marker = marker<<8 | uint32(b)
		code = b
		first = false
	}
}

// processFrame handles the packet introduced by the given start code.
// It reports whether a whole packet was consumed and emitted, in which
// case the caller restarts its start-code scan.
func (d *Decoder) processFrame(code byte) (bool, error) {
	var header [32]byte
	pos := 0
	scramble := 0
	headerLen := 0

	switch kindOf(code) {
	case kindSpecial:
		return false, nil
	case kindNone:
		return false, errors.Wrapf(ErrUnknownStartCode, "code %#02x", code)
	case kindComplex:
		if _, err := io.ReadFull(d.r, header[:5]); err != nil {
			return false, errors.Wrap(ErrMalformed, "short read in PES header")
		}
		pos = 5
		if header[2]>>6 != 0x2 {
			d.log.Warning("PES header mark not 0b10", "code", code, "mark", header[2]>>6)
		}
		scramble = int(header[2]>>4) & 0x3
		headerLen = int(header[4])
		if scramble == 3 {
			var err error
			pos, err = d.scrambledHeader(code, header[:], headerLen, pos)
			if err != nil {
				return false, err
			}
		}
	case kindSimple:
		if _, err := io.ReadFull(d.r, header[:2]); err != nil {
			return false, errors.Wrap(ErrMalformed, "short read in PES header")
		}
		pos = 2
	}

	length := int(binary.BigEndian.Uint16(header[0:2]))
	packet := make([]byte, length+2)
	copy(packet, header[:pos])
	n, err := io.ReadFull(d.r, packet[pos:])
	if err == io.ErrUnexpectedEOF || err == io.EOF {
		packet = packet[:pos+n]
	} else if err != nil {
		return false, errors.Wrap(err, "reading PES packet body")
	}

	if scramble == 3 {
		if d.stream == nil {
			return false, errors.Wrap(ErrMalformed, "scrambled packet before any stream key")
		}
		d.turing.DecryptBytes(d.stream, packet[pos:])
		packet[2] &^= 0x30
	} else if code == 0xbc {
		packet[2] &^= 0x20
	}

	if err := d.writeByte(code); err != nil {
		return false, err
	}
	if _, err := d.w.Write(packet); err != nil {
		return false, errors.Wrap(err, "writing PES packet")
	}
	return true, nil
}

// scrambledHeader reads the extension bytes of a scrambled PES header
// and walks its flag chain for private data carrying a Turing stream
// key. It returns the updated header length consumed so far.
func (d *Decoder) scrambledHeader(code byte, header []byte, headerLen, pos int) (int, error) {
	if header[3]&0x01 == 0 {
		return pos, nil
	}
	if headerLen > maxHeaderLen {
		return pos, errors.Wrapf(ErrMalformed, "PES header length %d too large", headerLen)
	}

	if _, err := io.ReadFull(d.r, header[pos:pos+headerLen]); err != nil {
		return pos, errors.Wrap(ErrMalformed, "short read in PES header extension")
	}
	pos += headerLen

	keyOffset, extByte := 6, 5
	for {
		again := false
		if extByte >= len(header) {
			return pos, errors.Wrap(ErrMalformed, "PES extension flags out of range")
		}

		if header[extByte]&0x20 != 0 {
			keyOffset += 4
		}
		if header[extByte]&0x80 != 0 {
			if keyOffset+turing.StreamKeyLen > len(header) {
				return pos, errors.Wrap(ErrMalformed, "stream key out of range")
			}
			if err := d.privateData(code, header[keyOffset:keyOffset+turing.StreamKeyLen]); err != nil {
				return pos, err
			}
		}
		if header[extByte]&0x10 != 0 {
			keyOffset += 2
		}
		if header[extByte]&0x01 != 0 {
			extByte = keyOffset
			keyOffset++
			again = true
		}
		if !again {
			return pos, nil
		}
	}
}

// privateData installs the 16-byte stream key found in a PES private
// data field, preparing the Turing stream for this packet and burning
// the key's crypted sentinel through the keystream.
func (d *Decoder) privateData(code byte, key []byte) error {
	block, crypted, err := turing.ParseStreamKey(key)
	if err != nil {
		return errors.Wrapf(err, "parsing stream key for code %#02x", code)
	}

	s, err := d.turing.PrepareFrame(code, block)
	if err != nil {
		return errors.Wrapf(err, "preparing frame for code %#02x", code)
	}
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], crypted)
	d.turing.DecryptBytes(s, buf[:])
	d.stream = s
	return nil
}

func (d *Decoder) writeByte(b byte) error {
	if _, err := d.w.Write([]byte{b}); err != nil {
		return errors.Wrap(err, "writing program stream")
	}
	return nil
}
