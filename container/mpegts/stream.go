/*
NAME
  stream.go - per-PID elementary stream state.

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

package mpegts

import (
	"github.com/ausocean/utils/logging"

	"github.com/ausocean/tivo/cipher/turing"
	"github.com/ausocean/tivo/codec/mpeg2"
)

// streamType classifies an elementary stream declared by the PMT.
type streamType int

const (
	streamNone streamType = iota
	streamVideo
	streamAudio
	streamPrivateData
	streamOther
	streamNotInPMT
)

var streamTypes = map[byte]streamType{
	0x01: streamVideo,
	0x02: streamVideo,
	0x10: streamVideo,
	0x1b: streamVideo,
	0x80: streamVideo,
	0xea: streamVideo,

	0x03: streamAudio,
	0x04: streamAudio,
	0x0f: streamAudio,
	0x11: streamAudio,
	0x81: streamAudio,
	0x8a: streamAudio,

	0x05: streamOther,
	0x06: streamOther,
	0x07: streamOther,
	0x08: streamOther,
	0x09: streamOther,
	0x0a: streamOther,
	0x0b: streamOther,
	0x0c: streamOther,
	0x0d: streamOther,
	0x0e: streamOther,
	0x12: streamOther,
	0x13: streamOther,
	0x14: streamOther,
	0x15: streamOther,
	0x16: streamOther,
	0x17: streamOther,
	0x18: streamOther,
	0x19: streamOther,
	0x1a: streamOther,
	0x7f: streamOther,

	0x97: streamPrivateData,

	0x00: streamNone,
}

// streamTypeOf maps a PMT stream type id to its classification. An
// unrecognised id is treated as private data.
func streamTypeOf(id byte) streamType {
	if t, ok := streamTypes[id]; ok {
		return t
	}
	return streamPrivateData
}

// stream holds the decryption state of a single PID: the Turing key
// material installed by TiVo private data packets, and the running
// count of unencrypted PES header bytes that straddle into the next
// packet.
type stream struct {
	typ      streamType
	streamID byte
	key      [turing.StreamKeyLen]byte
	hasKey   bool
	paused   bool
	carry    int
	parser   *mpeg2.Parser
}

func newStream(typ streamType, log logging.Logger) *stream {
	return &stream{typ: typ, parser: mpeg2.NewParser(log)}
}

// setKey installs fresh key material from a private data packet. A
// paused stream resumes decrypting once it has been rekeyed.
func (s *stream) setKey(streamID byte, key []byte) {
	s.streamID = streamID
	copy(s.key[:], key)
	s.hasKey = true
	s.paused = false
}

// pesOffset returns the byte offset within payload at which encrypted
// data begins. A PES header longer than one packet carries its
// remainder into the following packets of the stream.
func (s *stream) pesOffset(payload []byte, payloadStart bool) int {
	n := len(payload)
	if s.carry > n {
		s.carry -= n
		return n
	}
	if !payloadStart && s.carry == 0 {
		return 0
	}
	off := s.carry
	s.carry = 0
	hl, scrambled := s.parser.HeaderLength(payload[off:])
	if scrambled {
		return off
	}
	if off+hl <= n {
		return off + hl
	}
	s.carry = off + hl - n
	return n
}
