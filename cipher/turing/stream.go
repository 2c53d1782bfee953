/*
NAME
  stream.go - per elementary stream Turing keystream state.

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

// Stream holds the keystream state for one elementary stream. The
// cipher is rekeyed whenever the stream's block number changes, and the
// buffered frame is consumed byte by byte between rekeys.
type Stream struct {
	streamID byte
	blockID  uint32
	cipher   *Cipher
	buf      [MaxFrame + 8]byte
	pos      int
	n        int
}

// BlockID returns the block number the stream is currently keyed for.
func (s *Stream) BlockID() uint32 { return s.blockID }

// reset rekeys the stream for a new (streamID, blockID) pair and
// buffers the first keystream frame.
func (s *Stream) reset(streamID byte, blockID uint32, key, iv []byte) error {
	c, err := NewCipher(key, iv)
	if err != nil {
		return err
	}
	s.streamID = streamID
	s.blockID = blockID
	s.cipher = c
	for i := range s.buf {
		s.buf[i] = 0
	}
	s.n = s.cipher.Generate(s.buf[:])
	s.pos = 0
	return nil
}

// generate refills the stream's frame buffer and rewinds the cursor.
func (s *Stream) generate() {
	s.n = s.cipher.Generate(s.buf[:])
	s.pos = 0
}
