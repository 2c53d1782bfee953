/*
NAME
  bits.go - a bit cursor over a payload buffer.

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

// cursor walks a payload buffer bit by bit. Reads past the end of the
// buffer yield zero bits and set eof, so a header field that runs off
// the end still contributes its full length to the count; the caller
// carries the overshoot into the next buffer. lead prepends virtual
// zero bytes so a start-code prefix split across buffers can still be
// matched.
type cursor struct {
	buf  []byte
	lead int
	pos  int
	n    int
	eof  bool
}

func (c *cursor) byteAt(i int) byte {
	if i < c.lead {
		return 0
	}
	i -= c.lead
	if i >= len(c.buf) {
		c.eof = true
		return 0
	}
	return c.buf[i]
}

// peek returns the next bits without advancing the cursor.
func (c *cursor) peek(bits int) uint32 {
	var v uint32
	for i := 0; i < bits; i++ {
		p := c.pos + i
		b := c.byteAt(p / 8)
		v = v<<1 | uint32(b>>(7-uint(p%8))&1)
	}
	return v
}

func (c *cursor) advance(bits int) {
	c.pos += bits
	c.n += bits
	if c.pos >= (c.lead+len(c.buf))*8 {
		c.eof = true
	}
}

func (c *cursor) rewind(bits int) {
	c.pos -= bits
	c.n -= bits
}

func (c *cursor) read(bits int) uint32 {
	v := c.peek(bits)
	c.advance(bits)
	return v
}

func (c *cursor) byteAlign() {
	if d := c.pos % 8; d != 0 {
		c.advance(8 - d)
	}
}

// nextStartCode byte-aligns then scans for a 0x000001 prefix,
// tolerating any run of leading zero bytes. A nonzero byte that is not
// part of a prefix means no further start code can exist here.
func (c *cursor) nextStartCode() bool {
	c.byteAlign()
	for !c.eof {
		switch c.peek(24) {
		case startCodePrefix:
			return true
		case 0:
			c.advance(8)
		default:
			return false
		}
	}
	return false
}

// size returns the whole bytes of header material consumed from the
// buffer proper, excluding the virtual lead. The count may exceed
// len(buf) when a field ran past the end.
func (c *cursor) size() int {
	n := (c.n+7)/8 - c.lead
	if n < 0 {
		n = 0
	}
	return n
}
