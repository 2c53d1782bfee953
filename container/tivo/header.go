/*
NAME
  header.go - the fixed envelope header of a DVR recording.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package tivo

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// Format is the MPEG stream format declared by an envelope.
type Format int

const (
	FormatProgramStream Format = iota
	FormatTransportStream
)

func (f Format) String() string {
	switch f {
	case FormatProgramStream:
		return "Program Stream"
	case FormatTransportStream:
		return "Transport Stream"
	}
	return "unknown"
}

const (
	headerSize = 16
	magic      = "TiVo"

	// Flag bit distinguishing a Transport Stream payload from a
	// Program Stream payload.
	flagTransportStream = 0x20
)

// Header is the fixed-size record at the start of an envelope.
type Header struct {
	Flags      uint16
	MpegOffset uint32
	ChunkCount uint16
}

// Format returns the MPEG stream format selected by the header flags.
func (h Header) Format() Format {
	if h.Flags&flagTransportStream != 0 {
		return FormatTransportStream
	}
	return FormatProgramStream
}

// ReadHeader reads and validates the envelope header from r.
func ReadHeader(r io.Reader) (Header, error) {
	var buf [headerSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return Header{}, errors.Wrap(ErrMalformed, "short read in header")
	}
	if string(buf[0:4]) != magic {
		return Header{}, ErrBadMagic
	}
	return Header{
		Flags:      binary.BigEndian.Uint16(buf[6:8]),
		MpegOffset: binary.BigEndian.Uint32(buf[10:14]),
		ChunkCount: binary.BigEndian.Uint16(buf[14:16]),
	}, nil
}
