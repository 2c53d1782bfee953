/*
NAME
  probe.go - program layout inspection for decrypted transport streams.

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
	gotspacket "github.com/Comcast/gots/packet"
	gotspsi "github.com/Comcast/gots/psi"
	"github.com/pkg/errors"
)

// Errors returned by Probe.
var (
	ErrNoPrograms       = errors.New("no programs in PAT")
	ErrMultiplePrograms = errors.New("more than one program in PAT")
	ErrNoStreams        = errors.New("no PAT and PMT found")
)

// programPID returns the PMT PID of the single program announced by a
// PAT packet. A recording multiplexes exactly one program, so an empty
// or multi-program PAT is an error.
func programPID(p []byte) (uint16, error) {
	pat, err := gotspsi.NewPAT(p)
	if err != nil {
		return 0, err
	}
	progs := pat.ProgramMap()
	if len(progs) == 0 {
		return 0, ErrNoPrograms
	}
	if len(progs) > 1 {
		return 0, ErrMultiplePrograms
	}
	var pid uint16
	for _, v := range progs {
		pid = uint16(v)
	}
	return pid, nil
}

// Streams returns a map of elementary stream PIDs to stream types for
// a given PMT packet.
func Streams(p []byte) (map[uint16]uint8, error) {
	var pkt gotspacket.Packet
	copy(pkt[:], p)
	payload, err := pkt.Payload()
	if err != nil {
		return nil, errors.Wrap(err, "could not get PMT payload")
	}
	pmt, err := gotspsi.NewPMT(payload)
	if err != nil {
		return nil, err
	}
	m := make(map[uint16]uint8)
	for _, s := range pmt.ElementaryStreams() {
		m[uint16(s.ElementaryPid())] = s.StreamType()
	}
	return m, nil
}

// Probe reports the elementary stream layout of a decrypted transport
// stream by finding the PAT and the PMT of its single program among
// the leading packets of p. Decryption rewrites stream sections in
// place, so the layout reported here is the layout a player will see.
func Probe(p []byte) (map[uint16]uint8, error) {
	var (
		pkt     gotspacket.Packet
		pmtPID  uint16
		havePAT bool
	)
	for i := 0; i+PacketSize <= len(p); i += PacketSize {
		copy(pkt[:], p[i:i+PacketSize])
		if !havePAT {
			if pkt.PID() != pidPAT {
				continue
			}
			pid, err := programPID(pkt[:])
			if err != nil {
				return nil, errors.Wrap(err, "could not parse PAT")
			}
			pmtPID = pid
			havePAT = true
			continue
		}
		if uint16(pkt.PID()) == pmtPID {
			return Streams(pkt[:])
		}
	}
	return nil, ErrNoStreams
}
