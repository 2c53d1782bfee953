/*
NAME
  decoder_test.go - tests for transport stream decryption.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package mpegts

import (
	"bytes"
	"crypto/sha1"
	"testing"

	"github.com/ausocean/utils/logging"
	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"

	"github.com/ausocean/tivo/cipher/turing"
)

func mediaKey() []byte {
	sum := sha1.Sum([]byte("media key"))
	return sum[:]
}

// streamKey returns a 16-byte stream key with only the required marker
// bits set, so the block number is zero.
func streamKey() []byte {
	k := make([]byte, turing.StreamKeyLen)
	k[0] = 0x80
	k[1] = 0x40
	k[3] = 0x20
	k[4] = 0x10
	k[13] = 0x02
	k[15] = 0x01
	return k
}

func newTestDecoder(t *testing.T, in []byte, out *bytes.Buffer, compat bool) *Decoder {
	td, err := turing.NewDecoder(mediaKey())
	if err != nil {
		t.Fatalf("unexpected error from turing.NewDecoder: %v", err)
	}
	return NewDecoder(bytes.NewReader(in), out, td, compat, (*logging.TestLogger)(t))
}

// tsPacket pads b to a whole 188-byte packet with stuffing bytes.
func tsPacket(b ...byte) []byte {
	p := make([]byte, PacketSize)
	n := copy(p, b)
	for i := n; i < PacketSize; i++ {
		p[i] = 0xff
	}
	return p
}

func patPacket() []byte {
	return tsPacket(
		0x47, 0x40, 0x00, 0x10,
		0x00,       // pointer
		0x00,       // table id
		0x80, 0x0d, // section length 13
		0x00, 0x01, // transport stream id
		0xc1, 0x00, 0x00, // version, section, last section
		0x00, 0x01, // program number
		0xe0, 0x20, // program map PID 0x0020
		0x2a, 0xb1, 0x04, 0xb2, // CRC
	)
}

func pmtPacket() []byte {
	return tsPacket(
		0x47, 0x40, 0x20, 0x10,
		0x00,       // pointer
		0x02,       // table id
		0x80, 0x17, // section length 23
		0x00, 0x01, // program number
		0xc1, 0x00, 0x00, // version, section, last section
		0xe0, 0x40, // PCR PID
		0xf0, 0x00, // program info length
		0x02, 0xe0, 0x40, 0xf0, 0x00, // MPEG-2 video on PID 0x0040
		0x97, 0xe0, 0x50, 0xf0, 0x00, // TiVo private data on PID 0x0050
		0x1e, 0x47, 0x5d, 0x09, // CRC
	)
}

func tivoPacket(key []byte) []byte {
	b := []byte{
		0x47, 0x40, 0x50, 0x10,
		0x54, 0x69, 0x56, 0x6f, // "TiVo"
		0x81, 0x03, // validator
		0x00, 0x00, 0x00, // reserved
		0x14,       // stream length: one entry
		0x00, 0x40, // target PID
		0xe0, // stream id
		0x00, // reserved
	}
	return tsPacket(append(b, key...)...)
}

func clearVideoPacket() []byte {
	return tsPacket(
		0x47, 0x40, 0x40, 0x10,
		0x00, 0x00, 0x01, 0xe0, // video PES
		0x00, 0x00, // packet length
		0x80, 0x00, // marker
		0x00, // no header data
		0xde, 0xad, 0xbe, 0xef,
	)
}

// keystream decrypts b against a fresh Turing stream for streamID at
// block zero, as an independent reference.
func keystream(t *testing.T, streamID byte, b []byte) []byte {
	td, err := turing.NewDecoder(mediaKey())
	if err != nil {
		t.Fatalf("unexpected error from turing.NewDecoder: %v", err)
	}
	s, err := td.PrepareFrame(streamID, 0)
	if err != nil {
		t.Fatalf("unexpected error from PrepareFrame: %v", err)
	}
	out := append([]byte(nil), b...)
	td.DecryptBytes(s, out)
	return out
}

func TestDecodeClearPassThrough(t *testing.T) {
	var in []byte
	in = append(in, patPacket()...)
	in = append(in, pmtPacket()...)
	in = append(in, clearVideoPacket()...)

	var out bytes.Buffer
	if err := newTestDecoder(t, in, &out, false).Decode(); err != nil {
		t.Fatalf("unexpected error from Decode: %v", err)
	}
	if diff := cmp.Diff(in, out.Bytes()); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeScrambled(t *testing.T) {
	head := []byte{
		0x47, 0x40, 0x40, 0xb0, // scrambled, adaptation field
		0x07,                               // adaptation field length
		0x40,                               // random access indicator
		0xff, 0xff, 0xff, 0xff, 0xff, 0xff, // stuffing
		0x00, 0x00, 0x01, 0xe0, // video PES
		0x00, 0x00, // packet length
		0x80, 0x00, // marker
		0x00, // no header data
	}
	scrambled := make([]byte, PacketSize)
	copy(scrambled, head)
	for i := len(head); i < PacketSize; i++ {
		scrambled[i] = byte(7 + 3*i)
	}

	var in []byte
	in = append(in, patPacket()...)
	in = append(in, pmtPacket()...)
	in = append(in, tivoPacket(streamKey())...)
	in = append(in, scrambled...)

	var out bytes.Buffer
	if err := newTestDecoder(t, in, &out, false).Decode(); err != nil {
		t.Fatalf("unexpected error from Decode: %v", err)
	}

	want := append([]byte(nil), in...)
	pkt := want[len(want)-PacketSize:]
	pkt[3] = 0x30 // scramble control cleared
	copy(pkt[len(head):], keystream(t, 0xe0, scrambled[len(head):]))

	if diff := cmp.Diff(want, out.Bytes()); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodePESHeaderStraddle(t *testing.T) {
	// The PES header of packet A declares 200 bytes of header data, so
	// 25 header bytes spill into packet B; decryption of B must start
	// beyond them.
	a := make([]byte, PacketSize)
	copy(a, []byte{
		0x47, 0x40, 0x40, 0x10,
		0x00, 0x00, 0x01, 0xe0, // video PES
		0x00, 0x00, // packet length
		0x80, 0x80, // marker, PTS flag
		0xc8, // 200 bytes of header data
	})
	for i := 13; i < PacketSize; i++ {
		a[i] = 0xaa
	}

	b := make([]byte, PacketSize)
	copy(b, []byte{0x47, 0x00, 0x40, 0x90}) // scrambled continuation
	for i := 4; i < 29; i++ {
		b[i] = 0xbb // remaining header bytes
	}
	for i := 29; i < PacketSize; i++ {
		b[i] = byte(5 + 7*i)
	}

	var in []byte
	in = append(in, patPacket()...)
	in = append(in, pmtPacket()...)
	in = append(in, tivoPacket(streamKey())...)
	in = append(in, a...)
	in = append(in, b...)

	var out bytes.Buffer
	if err := newTestDecoder(t, in, &out, false).Decode(); err != nil {
		t.Fatalf("unexpected error from Decode: %v", err)
	}

	want := append([]byte(nil), in...)
	pkt := want[len(want)-PacketSize:]
	pkt[3] = 0x10
	copy(pkt[29:], keystream(t, 0xe0, b[29:]))

	if diff := cmp.Diff(want, out.Bytes()); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeScrambledBeforeKey(t *testing.T) {
	// A scrambled packet with no key installed passes through as-is.
	scrambled := tsPacket(
		0x47, 0x40, 0x40, 0x90,
		0x00, 0x00, 0x01, 0xe0,
		0x00, 0x00,
		0x80, 0x00,
		0x00,
		0xde, 0xad, 0xbe, 0xef,
	)

	var in []byte
	in = append(in, patPacket()...)
	in = append(in, pmtPacket()...)
	in = append(in, scrambled...)

	var out bytes.Buffer
	if err := newTestDecoder(t, in, &out, false).Decode(); err != nil {
		t.Fatalf("unexpected error from Decode: %v", err)
	}
	if diff := cmp.Diff(in, out.Bytes()); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeNullPacketOmitted(t *testing.T) {
	null := tsPacket(0x47, 0x1f, 0xff, 0x10)

	var in []byte
	in = append(in, patPacket()...)
	in = append(in, null...)

	var out bytes.Buffer
	if err := newTestDecoder(t, in, &out, false).Decode(); err != nil {
		t.Fatalf("unexpected error from Decode: %v", err)
	}
	if diff := cmp.Diff(patPacket(), out.Bytes()); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeResync(t *testing.T) {
	garbage := bytes.Repeat([]byte{0xee}, 10)

	var in []byte
	in = append(in, patPacket()...)
	in = append(in, garbage...)
	for i := 0; i < resyncPackets+1; i++ {
		in = append(in, clearVideoPacket()...)
	}

	// Outside compatibility mode the skipped bytes are dropped and
	// output stays suppressed until the resume threshold, which this
	// input never reaches.
	var out bytes.Buffer
	if err := newTestDecoder(t, in, &out, false).Decode(); err != nil {
		t.Fatalf("unexpected error from Decode: %v", err)
	}
	if diff := cmp.Diff(patPacket(), out.Bytes()); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeResyncCompat(t *testing.T) {
	garbage := bytes.Repeat([]byte{0xee}, 10)

	var in []byte
	in = append(in, patPacket()...)
	in = append(in, garbage...)
	for i := 0; i < resyncPackets+1; i++ {
		in = append(in, clearVideoPacket()...)
	}

	var out bytes.Buffer
	if err := newTestDecoder(t, in, &out, true).Decode(); err != nil {
		t.Fatalf("unexpected error from Decode: %v", err)
	}

	// Compatibility mode passes the skipped bytes through with byte 3
	// masked, then the resynchronised packets unchanged.
	want := append([]byte(nil), in...)
	want[PacketSize+3] = 0xee & 0x3f

	if diff := cmp.Diff(want, out.Bytes()); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodePrivateAdaptation(t *testing.T) {
	in := tsPacket(
		0x47, 0x40, 0x40, 0x30,
		0x01, // adaptation field length
		0x02, // private data flag
	)

	var out bytes.Buffer
	err := newTestDecoder(t, in, &out, false).Decode()
	if errors.Cause(err) != ErrPrivateAdaptation {
		t.Errorf("got error %v, want %v", err, ErrPrivateAdaptation)
	}
}
