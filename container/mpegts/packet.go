/*
NAME
  packet.go - transport stream packet header parsing.

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
	"encoding/binary"

	"github.com/pkg/errors"
)

// PacketSize is the fixed size of a transport stream packet.
const PacketSize = 188

const syncByte = 0x47

// header is the parsed fixed header of a transport stream packet. The
// length includes the adaptation field when one is present.
type header struct {
	sync         byte
	transportErr bool
	payloadStart bool
	priority     bool
	pid          uint16
	scrambled    bool
	adaptation   bool
	payload      bool
	counter      byte
	length       int
}

// headerBits parses the four fixed header bytes of b.
func headerBits(b []byte) header {
	bits := binary.BigEndian.Uint32(b)
	return header{
		sync:         byte(bits >> 24),
		transportErr: bits&0x800000 != 0,
		payloadStart: bits&0x400000 != 0,
		priority:     bits&0x200000 != 0,
		pid:          uint16(bits>>8) & 0x1fff,
		scrambled:    bits&0xc0 != 0,
		adaptation:   bits&0x20 != 0,
		payload:      bits&0x10 != 0,
		counter:      byte(bits & 0x0f),
	}
}

// parseHeader parses the header of a 188-byte packet, consuming the
// adaptation field when present. ErrSyncLost is returned when the sync
// byte is wrong or the transport error flag is set; the caller
// recovers by resynchronising. A private adaptation field is fatal.
func parseHeader(pkt []byte) (header, error) {
	h := headerBits(pkt)
	if h.sync != syncByte {
		return h, errors.Wrapf(ErrSyncLost, "sync byte %#02x", h.sync)
	}
	if h.transportErr {
		return h, errors.Wrap(ErrSyncLost, "transport error flag set")
	}
	h.length = 4
	if h.adaptation {
		n := int(pkt[4])
		if n > 0 {
			if pkt[5]&0x02 != 0 {
				return h, ErrPrivateAdaptation
			}
			h.length += n + 1
		} else {
			h.length++
		}
		if h.length > PacketSize {
			h.length = PacketSize
		}
	}
	return h, nil
}
