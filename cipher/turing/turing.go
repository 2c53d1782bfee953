/*
NAME
  turing.go - implementation of the QUALCOMM Turing stream cipher used to
  scramble DVR recording payloads.

DESCRIPTION
  See Readme.md

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

// Package turing implements the Turing stream cipher, as defined in
// Gregory G. Rose and Philip Hawkes "Turing: a Fast Stream Cipher",
// along with the per-stream keystream management used to decrypt DVR
// recordings.
package turing

import "github.com/pkg/errors"

const (
	regLen     = 17
	minKey     = 8
	maxKey     = 32
	maxKeyIV   = 48
	confounder = 0x1020300
)

// A full keystream frame is one register period of rounds, each round
// emitting 20 bytes. Frame buffers carry 8 spare bytes so whole words
// can be written at the tail.
const (
	roundBytes = 20
	MaxFrame   = regLen * roundBytes
)

// Cipher is an instance of the Turing cipher keyed with a particular
// key and IV pair.
type Cipher struct {
	key    []uint32
	keybox [4][256]uint32
	reg    [regLen]uint32
}

// NewCipher returns a Cipher keyed with key and iv. The key size must be
// a multiple of 4 bytes between 8 and 32 bytes. The IV size must be a
// multiple of 4 bytes, and the combined key and IV sizes must not exceed
// 48 bytes. These restrictions come from the cipher's definition.
func NewCipher(key, iv []byte) (*Cipher, error) {
	switch {
	case len(key)%4 != 0:
		return nil, errors.Errorf("key size %d not a multiple of 4", len(key))
	case len(iv)%4 != 0:
		return nil, errors.Errorf("iv size %d not a multiple of 4", len(iv))
	case len(key) < minKey:
		return nil, errors.Errorf("key size %d less than minimum %d", len(key), minKey)
	case len(key) > maxKey:
		return nil, errors.Errorf("key size %d greater than maximum %d", len(key), maxKey)
	case len(key)+len(iv) > maxKeyIV:
		return nil, errors.Errorf("combined key and iv size %d greater than maximum %d", len(key)+len(iv), maxKeyIV)
	}

	c := &Cipher{}
	c.initKey(key)
	c.initIV(iv)
	return c, nil
}

// Generate fills buf with keystream, 20 bytes per cipher round, stopping
// at the last whole round that fits. The number of keystream bytes
// written is returned. A buffer of MaxFrame bytes or more receives one
// full frame.
func (c *Cipher) Generate(buf []byte) int {
	n := 0
	for n+roundBytes <= len(buf) && n < MaxFrame {
		c.round(buf[n : n+roundBytes])
		n += roundBytes
	}
	return n
}

// round produces the next 20 bytes of keystream into out.
func (c *Cipher) round(out []byte) {
	c.clock()
	a, b, d, e, f := c.reg[16], c.reg[13], c.reg[6], c.reg[1], c.reg[0]

	// Non-linear filter.
	f += a + b + d + e
	a, b, d, e = a+f, b+f, d+f, e+f
	a, b, d, e, f = c.keyedS(a, 0), c.keyedS(b, 8), c.keyedS(d, 16), c.keyedS(e, 24), c.keyedS(f, 0)
	f += a + b + d + e
	a, b, d, e = a+f, b+f, d+f, e+f

	c.clock()
	c.clock()
	c.clock()

	a, b, d, e, f = a+c.reg[14], b+c.reg[12], d+c.reg[8], e+c.reg[1], f+c.reg[0]
	putWord(out[0:4], a)
	putWord(out[4:8], b)
	putWord(out[8:12], d)
	putWord(out[12:16], e)
	putWord(out[16:20], f)

	c.clock()
}

// clock steps the linear feedback shift register once.
func (c *Cipher) clock() {
	word := c.reg[15] ^ c.reg[4] ^ (c.reg[0] << 8) ^ mtab[c.reg[0]>>24]
	copy(c.reg[:regLen-1], c.reg[1:])
	c.reg[regLen-1] = word
}

// keyedS applies the key-dependent S-box to word, pre-rotated by rotate
// bits. The pre-calculated keybox approach from the cipher's paper is
// used rather than walking the key per byte.
func (c *Cipher) keyedS(word uint32, rotate uint) uint32 {
	w := rotl(word, rotate)
	return c.keybox[0][w>>24] ^ c.keybox[1][w>>16&0xff] ^ c.keybox[2][w>>8&0xff] ^ c.keybox[3][w&0xff]
}

func (c *Cipher) initKey(key []byte) {
	c.key = make([]uint32, len(key)/4)
	for i := range c.key {
		c.key[i] = fixedS(getWord(key[i*4:]))
	}
	hadamard(c.key)

	// Pre-calculate the keyed S-boxes.
	for box := range c.keybox {
		for i := 0; i < 256; i++ {
			var (
				shift = uint(box * 8)
				octet = byte(i)
				word  uint32
			)
			for pos, k := range c.key {
				octet = sbox[getOctet(k, uint(box))^octet]
				word ^= rotl(qbox[octet], uint(pos)+shift)
			}
			c.keybox[box][i] = (word & rotr(0x00ffffff, shift)) | (uint32(octet) << (24 - shift))
		}
	}
}

func (c *Cipher) initIV(iv []byte) {
	r := 0
	for i := 0; i < len(iv)/4; i++ {
		c.reg[r] = fixedS(getWord(iv[i*4:]))
		r++
	}

	for _, k := range c.key {
		c.reg[r] = k
		r++
	}

	c.reg[r] = uint32(confounder | (len(c.key) << 4) | len(iv)/4)
	r++

	for i := 0; r < regLen; i++ {
		c.reg[r] = c.keyedS(c.reg[i]+c.reg[r-1], 0)
		r++
	}

	hadamard(c.reg[:])
}

// fixedS is the fixed S-box and word mixing used during keying.
func fixedS(word uint32) uint32 {
	for i := uint(0); i < 4; i++ {
		shift := i * 8
		octet := sbox[getOctet(word, i)]
		word = ((word ^ rotl(qbox[octet], shift)) & rotr(0x00ffffff, shift)) | (uint32(octet) << (24 - shift))
	}
	return word
}

// hadamard applies the pseudo-Hadamard transform across words.
func hadamard(words []uint32) {
	var sum uint32
	for _, w := range words {
		sum += w
	}
	words[len(words)-1] = 0
	for i := range words {
		words[i] += sum
	}
}

func rotl(w uint32, n uint) uint32 { return w<<n | w>>(32-n) }
func rotr(w uint32, n uint) uint32 { return w>>n | w<<(32-n) }

// getOctet returns byte i of w, counting from the most significant.
func getOctet(w uint32, i uint) byte { return byte(w >> (24 - 8*i)) }

func getWord(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

func putWord(b []byte, w uint32) {
	b[0] = byte(w >> 24)
	b[1] = byte(w >> 16)
	b[2] = byte(w >> 8)
	b[3] = byte(w)
}
