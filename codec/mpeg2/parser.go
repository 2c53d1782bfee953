/*
NAME
  parser.go - measuring the unencrypted header length of an MPEG-2
  payload.

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

// Package mpeg2 provides a start-code scanner that measures the byte
// length of the unencrypted MPEG-2 header material at the front of a
// payload buffer, so a caller knows where encrypted payload begins.
package mpeg2

import (
	"github.com/ausocean/utils/logging"
)

const startCodePrefix = 0x000001

// Parser measures header lengths across successive payload buffers.
// It remembers the count of trailing zero bytes from the previous
// buffer so a start-code prefix split across two buffers still
// matches.
type Parser struct {
	log   logging.Logger
	zeros int
}

// NewParser returns a Parser. The logger may be nil.
func NewParser(l logging.Logger) *Parser {
	return &Parser{log: l}
}

// HeaderLength scans buf from the start and returns the byte length of
// the MPEG header material it holds, rounding a final partial byte up.
// The returned length exceeds len(buf) when a header field runs past
// the end of the buffer; the caller carries the overshoot into the
// next buffer. The second return is true when the PES scramble control
// bits are set, in which case the length is 0 and decryption must
// start at the very beginning of the payload.
func (p *Parser) HeaderLength(buf []byte) (int, bool) {
	c := &cursor{buf: buf, lead: p.zeros}
	p.zeros = 0

	if !c.nextStartCode() {
		if c.eof {
			p.zeros = trailingZeros(buf)
		}
		return c.size(), false
	}

	for {
		c.advance(24)
		code := c.read(8)
		stop := false

		switch {
		case code == 0x00:
			p.picture(c)
		case code <= 0xaf:
			// A slice begins the encrypted payload proper.
			c.rewind(32)
			stop = true
		case code == 0xb2:
			p.userData(c)
		case code == 0xb3:
			p.sequenceHeader(c)
		case code == 0xb5:
			stop = !p.extension(c)
		case code == 0xb7:
			// Sequence end has no body.
		case code == 0xb8:
			// Group of pictures has a fixed-width body.
			c.advance(27)
		case code == 0xbd || (code >= 0xc0 && code <= 0xef):
			if p.pesHeader(c) {
				return 0, true
			}
		case code == 0xf9:
			// Ancillary data has no body.
		default:
			p.warn("unknown start code", "code", code)
			c.rewind(32)
			stop = true
		}

		if stop || c.eof || !c.nextStartCode() {
			break
		}
	}

	if c.eof {
		p.zeros = trailingZeros(buf)
	}
	return c.size(), false
}

func (p *Parser) picture(c *cursor) {
	c.advance(10)
	typ := c.read(3)
	c.advance(16)
	if typ == 2 || typ == 3 {
		c.advance(4)
	}
	if typ == 3 {
		c.advance(4)
	}
	for !c.eof && c.read(1) == 1 {
		c.advance(8)
	}
}

func (p *Parser) userData(c *cursor) {
	for !c.eof && c.peek(24) != startCodePrefix {
		c.advance(8)
	}
}

func (p *Parser) sequenceHeader(c *cursor) {
	c.advance(62)
	if c.read(1) == 1 {
		c.advance(8 * 64)
	}
	if c.read(1) == 1 {
		c.advance(8 * 64)
	}
}

// extension parses an extension header body, reporting false for an
// unknown subtype after rewinding to the start code.
func (p *Parser) extension(c *cursor) bool {
	switch c.peek(4) {
	case 1:
		c.advance(4 + 44)
	case 2:
		c.advance(4 + 3)
		skip := 29
		if c.read(1) == 1 {
			skip += 24
		}
		c.advance(skip)
	case 8:
		c.advance(4 + 29)
		if c.read(1) == 1 {
			c.advance(20)
		}
	default:
		p.warn("unknown extension subtype", "subtype", c.peek(4))
		c.rewind(32)
		return false
	}
	return true
}

// pesHeader parses a PES header body, reporting true when the scramble
// control bits are set.
func (p *Parser) pesHeader(c *cursor) bool {
	c.advance(16)
	c.advance(2)
	if c.read(2) != 0 {
		return true
	}
	c.advance(12)
	n := int(c.read(8))
	c.advance(8 * n)
	return false
}

func (p *Parser) warn(msg string, args ...interface{}) {
	if p.log != nil {
		p.log.Warning(msg, args...)
	}
}

// trailingZeros counts zero bytes at the tail of b, capped at the two
// that can matter to a split start-code prefix.
func trailingZeros(b []byte) int {
	n := 0
	for i := len(b) - 1; i >= 0 && b[i] == 0 && n < 2; i-- {
		n++
	}
	return n
}
