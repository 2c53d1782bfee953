/*
NAME
  parser_test.go - tests for the MPEG-2 header length scanner.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package mpeg2

import (
	"testing"
)

func TestHeaderLength(t *testing.T) {
	tests := []struct {
		name          string
		buf           []byte
		want          int
		wantScrambled bool
	}{
		{
			name: "pes header then slice",
			buf: []byte{
				0x00, 0x00, 0x01, 0xe0, // video PES start code
				0x12, 0x34, // packet length
				0x80, 0x80, // marker, scramble clear, PTS flag
				0x05,                         // header data length
				0x21, 0x00, 0x01, 0x00, 0x01, // PTS
				0x00, 0x00, 0x01, 0x01, // slice: encrypted payload
				0xaa,
			},
			want: 14,
		},
		{
			name: "scrambled pes",
			buf: []byte{
				0x00, 0x00, 0x01, 0xe0,
				0x00, 0x00,
				0x90, 0x00, 0x00, // scramble control set
			},
			want:          0,
			wantScrambled: true,
		},
		{
			name: "sequence header and gop",
			buf: []byte{
				0x00, 0x00, 0x01, 0xb3, // sequence header
				0x12, 0x34, 0x56, 0x78, 0x9a, 0xbc, 0xde, 0xf0, // no Q matrices
				0x00, 0x00, 0x01, 0xb8, // group of pictures
				0x48, 0x00, 0x10, 0x00,
				0x00, 0x00, 0x01, 0x2a, // slice
				0xff,
			},
			want: 20,
		},
		{
			name: "extension sequence subtype",
			buf: []byte{
				0x00, 0x00, 0x01, 0xb5, // extension
				0x10, 0x00, 0x00, 0x00, 0x00, 0x00, // subtype 1
				0x00, 0x00, 0x01, 0x05, // slice
			},
			want: 10,
		},
		{
			name: "pes data length past buffer end",
			buf: []byte{
				0x00, 0x00, 0x01, 0xe0,
				0x00, 0x00,
				0x80, 0x00,
				0x14, // 20 data bytes, only 4 present
				0xde, 0xad, 0xbe, 0xef,
			},
			want: 29,
		},
		{
			name: "unknown start code",
			buf: []byte{
				0x00, 0x00, 0x01, 0xb9,
				0x01, 0x02, 0x03,
			},
			want: 0,
		},
		{
			name: "slice immediately",
			buf:  []byte{0x00, 0x00, 0x01, 0x01, 0xff, 0xff},
			want: 0,
		},
	}

	for _, test := range tests {
		got, scrambled := NewParser(nil).HeaderLength(test.buf)
		if got != test.want {
			t.Errorf("%s: got length %d, want %d", test.name, got, test.want)
		}
		if scrambled != test.wantScrambled {
			t.Errorf("%s: got scrambled %v, want %v", test.name, scrambled, test.wantScrambled)
		}
	}
}

func TestHeaderLengthStraddle(t *testing.T) {
	// A start-code prefix split across two buffers must still match,
	// using the trailing zero bytes remembered from the first.
	first := []byte{
		0x00, 0x00, 0x01, 0xe0,
		0x00, 0x00,
		0x80, 0x00,
		0x00, // no header data
		0x00, 0x00, // start of the next code's prefix
	}
	second := []byte{
		0x01, 0xe0, // remainder of the split start code
		0x00, 0x00,
		0x80, 0x00,
		0x00,
	}

	p := NewParser(nil)
	got, scrambled := p.HeaderLength(first)
	if got != 10 || scrambled {
		t.Fatalf("first buffer: got (%d, %v), want (10, false)", got, scrambled)
	}
	got, scrambled = p.HeaderLength(second)
	if got != 7 || scrambled {
		t.Errorf("second buffer: got (%d, %v), want (7, false)", got, scrambled)
	}
}

func TestHeaderLengthFreshParser(t *testing.T) {
	// Without the carry from a previous buffer, a bare split remainder
	// must not be mistaken for a start code.
	buf := []byte{0x01, 0xe0, 0x00, 0x00, 0x80, 0x00, 0x00}
	got, scrambled := NewParser(nil).HeaderLength(buf)
	if got != 0 || scrambled {
		t.Errorf("got (%d, %v), want (0, false)", got, scrambled)
	}
}
