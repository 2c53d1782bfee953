/*
NAME
  envelope_test.go - tests for envelope parsing and key derivation.

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
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"

	"github.com/ausocean/tivo/cipher/turing"
)

const testMak = "0123456789"

// appendHeader appends a 16-byte envelope header.
func appendHeader(b []byte, flags uint16, mpegOffset uint32, chunks uint16) []byte {
	b = append(b, "TiVo"...)
	b = append(b, 0, 0)
	b = binary.BigEndian.AppendUint16(b, flags)
	b = append(b, 0, 0)
	b = binary.BigEndian.AppendUint32(b, mpegOffset)
	return binary.BigEndian.AppendUint16(b, chunks)
}

// appendChunk appends a chunk record with the given padding.
func appendChunk(b []byte, id, kind uint16, data []byte, pad int) []byte {
	b = binary.BigEndian.AppendUint32(b, uint32(12+len(data)+pad))
	b = binary.BigEndian.AppendUint32(b, uint32(len(data)))
	b = binary.BigEndian.AppendUint16(b, id)
	b = binary.BigEndian.AppendUint16(b, kind)
	b = append(b, data...)
	return append(b, make([]byte, pad)...)
}

func TestParse(t *testing.T) {
	meta := bytes.Repeat([]byte("<xml/>"), 10)
	var env []byte
	env = appendHeader(env, flagTransportStream, 0x60, 1)
	env = appendChunk(env, 1, ChunkPlaintext, meta, 4)

	got, err := Parse(bytes.NewReader(env), testMak)
	if err != nil {
		t.Fatalf("unexpected error from Parse: %v", err)
	}

	if got.Header.Format() != FormatTransportStream {
		t.Errorf("got format %v, want %v", got.Header.Format(), FormatTransportStream)
	}
	if got.Header.MpegOffset != 0x60 {
		t.Errorf("got mpeg offset %#x, want 0x60", got.Header.MpegOffset)
	}
	if got.Size() != int64(len(env)) {
		t.Errorf("got size %d, want %d", got.Size(), len(env))
	}
	if len(got.Chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(got.Chunks))
	}
	if diff := cmp.Diff(meta, got.Chunks[0].Data); diff != "" {
		t.Errorf("chunk data mismatch (-want +got):\n%s", diff)
	}
	if len(got.MediaKey()) != turing.KeyLen {
		t.Errorf("got media key length %d, want %d", len(got.MediaKey()), turing.KeyLen)
	}
}

func TestParseBadMagic(t *testing.T) {
	env := appendHeader(nil, 0, 0, 0)
	env[0] = 'X'
	_, err := Parse(bytes.NewReader(env), testMak)
	if errors.Cause(err) != ErrBadMagic {
		t.Errorf("got error %v, want %v", err, ErrBadMagic)
	}
}

func TestParseBadChunkKind(t *testing.T) {
	var env []byte
	env = appendHeader(env, 0, 0x60, 1)
	env = appendChunk(env, 1, 7, []byte("data"), 0)
	_, err := Parse(bytes.NewReader(env), testMak)
	if errors.Cause(err) != ErrMalformed {
		t.Errorf("got error %v, want %v", err, ErrMalformed)
	}
}

func TestParseEncryptedFirst(t *testing.T) {
	var env []byte
	env = appendHeader(env, 0, 0x60, 1)
	env = appendChunk(env, 1, ChunkEncrypted, []byte("data"), 0)
	_, err := Parse(bytes.NewReader(env), testMak)
	if errors.Cause(err) != ErrMalformed {
		t.Errorf("got error %v, want %v", err, ErrMalformed)
	}
}

func TestParseEncryptedChunk(t *testing.T) {
	plain := bytes.Repeat([]byte{0xaa}, 64)
	encrypted := bytes.Repeat([]byte{0x55}, 128)

	var env []byte
	env = appendHeader(env, 0, 0x200, 2)
	env = appendChunk(env, 1, ChunkPlaintext, plain, 0)
	chunk2DataPos := int64(len(env) + 12)
	env = appendChunk(env, 2, ChunkEncrypted, encrypted, 0)

	got, err := Parse(bytes.NewReader(env), testMak)
	if err != nil {
		t.Fatalf("unexpected error from Parse: %v", err)
	}

	// The second chunk must decrypt with the keystream offset by the
	// gap between the end of the first chunk's payload and the start
	// of the second's.
	first := Chunk{Data: plain}
	d, err := turing.NewDecoder(first.MetadataKey(testMak))
	if err != nil {
		t.Fatalf("unexpected error from NewDecoder: %v", err)
	}
	s, err := d.PrepareFrame(0, 0)
	if err != nil {
		t.Fatalf("unexpected error from PrepareFrame: %v", err)
	}
	chunk1DataEnd := int64(16 + 12 + len(plain))
	d.SkipBytes(s, int(chunk2DataPos-chunk1DataEnd))
	want := append([]byte(nil), encrypted...)
	d.DecryptBytes(s, want)

	if diff := cmp.Diff(want, got.Chunks[1].Data); diff != "" {
		t.Errorf("decrypted chunk mismatch (-want +got):\n%s", diff)
	}
}

func TestParseShortRead(t *testing.T) {
	var env []byte
	env = appendHeader(env, 0, 0x60, 1)
	env = appendChunk(env, 1, ChunkPlaintext, []byte("data"), 0)
	_, err := Parse(bytes.NewReader(env[:len(env)-2]), testMak)
	if errors.Cause(err) != ErrMalformed {
		t.Errorf("got error %v, want %v", err, ErrMalformed)
	}
}
