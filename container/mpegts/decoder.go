/*
NAME
  decoder.go - decryption of a TiVo MPEG transport stream.

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

// Package mpegts decrypts the MPEG transport stream payload of a TiVo
// recording. The stream is framed into 188-byte packets; the program
// tables identify the private data packets carrying per-PID Turing
// keys, which decrypt the scrambled portion of each elementary stream
// packet past its PES headers.
package mpegts

import (
	"bufio"
	"encoding/binary"
	"io"

	"github.com/ausocean/utils/logging"
	"github.com/pkg/errors"

	"github.com/ausocean/tivo/cipher/turing"
)

// Transport stream decode errors. Sync loss is recovered internally by
// resynchronisation and never returned from Decode.
var (
	ErrSyncLost          = errors.New("mpegts: sync lost")
	ErrPrivateAdaptation = errors.New("mpegts: private adaptation field data")
	ErrMalformed         = errors.New("mpegts: malformed transport stream")
)

const (
	pidPAT  = 0x0000
	pidNull = 0x1fff
)

const (
	// Aligned sync bytes required beyond the first to declare
	// resynchronisation.
	resyncPackets = 4

	// Interval of the reference filter's post-resync byte masking,
	// and the granularity at which decryption resumes.
	maskInterval = 0x100000
)

// tivoFileType and tivoValidator introduce the key material entries of
// a TiVo private data packet.
const (
	tivoFileType  = 0x5469566f
	tivoValidator = 0x8103
)

// Decoder decrypts a transport stream read from an input, writing the
// clear stream to an output.
type Decoder struct {
	r      *bufio.Reader
	w      io.Writer
	turing *turing.Decoder
	log    logging.Logger
	compat bool

	streams map[uint16]*stream
	pmtPID  uint16
	pending []byte

	written     int64
	paused      bool
	resumeAt    int64
	maskAt      int64
	chainMaskAt int64
}

// NewDecoder returns a Decoder reading the transport stream from r,
// positioned at the first packet, and writing the decrypted stream to
// w. The Turing decoder must be keyed with the recording's media key.
// In compatibility mode the output is byte-exact with the reference
// DirectShow filter: bytes skipped during resynchronisation and NULL
// packets pass through, and the filter's interval masking is applied.
func NewDecoder(r io.Reader, w io.Writer, td *turing.Decoder, compat bool, log logging.Logger) *Decoder {
	return &Decoder{
		r:       bufio.NewReader(r),
		w:       w,
		turing:  td,
		log:     log,
		compat:  compat,
		streams: make(map[uint16]*stream),
	}
}

// Decode copies the transport stream to the output, decrypting
// scrambled packets along the way. It returns nil once the input is
// exhausted.
func (d *Decoder) Decode() error {
	var pkt [PacketSize]byte
	for {
		if err := d.readPacket(pkt[:]); err == io.EOF {
			return nil
		} else if err != nil {
			return err
		}

		hdr, err := parseHeader(pkt[:])
		for errors.Cause(err) == ErrSyncLost {
			d.log.Warning("transport stream sync lost", "error", err.Error())
			hdr, err = d.resync(pkt[:])
			if err == io.EOF {
				return nil
			}
		}
		if err != nil {
			return err
		}

		switch {
		case hdr.pid == pidPAT:
			if err := d.processPAT(pkt[:], hdr); err != nil {
				return err
			}
		case hdr.pid == d.pmtPID && d.pmtPID != 0:
			if err := d.processPMT(pkt[:], hdr); err != nil {
				return err
			}
		case hdr.pid == pidNull:
			// Constant bit-rate padding.
			if !d.compat {
				d.written += PacketSize
				continue
			}
		default:
			if s, ok := d.streams[hdr.pid]; ok && s.typ == streamPrivateData {
				if err := d.processTivo(pkt[:], hdr); err != nil {
					return err
				}
			}
		}

		if err := d.writePacket(pkt[:], hdr); err != nil {
			return err
		}
	}
}

// readPacket fills pkt with the next 188 bytes, consuming bytes
// recovered during resynchronisation before reading the input. io.EOF
// reports a clean end of input; a truncated final packet is dropped.
func (d *Decoder) readPacket(pkt []byte) error {
	n := copy(pkt, d.pending)
	d.pending = d.pending[n:]
	if n == len(pkt) {
		return nil
	}
	m, err := io.ReadFull(d.r, pkt[n:])
	switch {
	case err == nil:
		return nil
	case err == io.EOF && n == 0:
		return io.EOF
	case err == io.EOF || err == io.ErrUnexpectedEOF:
		d.log.Warning("dropping short packet at end of stream", "length", n+m)
		return io.EOF
	}
	return errors.Wrap(err, "reading transport stream")
}

// resync searches the input for resyncPackets+1 packet-aligned sync
// bytes following the failed packet left in pkt. The skipped bytes are
// emitted or dropped by writeUnsynced, decryption pauses, and the
// header of the first resynchronised packet, left in pkt, is returned.
// io.EOF is returned when the input ends before sync is found.
func (d *Decoder) resync(pkt []byte) (header, error) {
	window := append([]byte(nil), pkt...)
	window = append(window, d.pending...)
	d.pending = nil

	for p := 1; ; p++ {
		need := p + (resyncPackets+1)*PacketSize
		for len(window) < need {
			var buf [PacketSize]byte
			n, err := d.r.Read(buf[:])
			window = append(window, buf[:n]...)
			if err == io.EOF && len(window) < need {
				d.log.Warning("input ended before resynchronisation", "dropped", len(window))
				return header{}, io.EOF
			}
			if err != nil && err != io.EOF {
				return header{}, errors.Wrap(err, "reading transport stream")
			}
		}

		if window[p] != syncByte {
			continue
		}
		synced := true
		for i := 1; i <= resyncPackets; i++ {
			if window[p+i*PacketSize] != syncByte {
				synced = false
				break
			}
		}
		if !synced {
			continue
		}

		if err := d.writeUnsynced(window[:p]); err != nil {
			return header{}, err
		}
		d.pause()
		d.log.Debug("resynchronised", "skipped", p, "written", d.written)
		copy(pkt, window[p:p+PacketSize])
		d.pending = window[p+PacketSize:]
		return parseHeader(pkt)
	}
}

// writeUnsynced handles bytes skipped during resynchronisation. In
// compatibility mode they are masked and passed through; otherwise
// they are dropped. Either way they count toward the written total
// that schedules the decryption resume.
func (d *Decoder) writeUnsynced(b []byte) error {
	skipped := int64(len(b))
	delta := maskInterval - d.written&(maskInterval-1)
	d.resumeAt = (d.written + skipped + maskInterval - 1) / maskInterval * maskInterval
	maskFirst := d.maskAt == 0
	d.maskAt = d.written + delta
	if d.compat {
		if maskFirst && len(b) >= 4 {
			b[3] &= 0x3f
		}
		for d.maskAt <= d.written+skipped {
			if off := d.maskAt - d.written + 3; off < skipped {
				b[off] &= 0x3f
			}
			d.maskAt += maskInterval
		}
		if _, err := d.w.Write(b); err != nil {
			return errors.Wrap(err, "writing unsynchronised bytes")
		}
	}
	d.written += skipped
	return nil
}

// pause stops decryption on every stream. Output is suppressed outside
// compatibility mode while paused.
func (d *Decoder) pause() {
	d.paused = true
	for _, s := range d.streams {
		s.paused = true
	}
}

func (d *Decoder) resume() {
	d.log.Warning("resuming decryption", "written", d.written)
	d.paused = false
	d.resumeAt = 0
	d.maskAt = 0
	d.chainMaskAt = 0
	for _, s := range d.streams {
		s.paused = false
	}
}

// writePacket decrypts a packet's scrambled portion in place and
// emits it, resuming decryption once the written total passes the
// threshold set at resynchronisation.
func (d *Decoder) writePacket(pkt []byte, hdr header) error {
	if err := d.decryptPacket(pkt, hdr, d.streamFor(hdr.pid)); err != nil {
		return err
	}
	if d.compat && d.paused {
		d.mask(pkt)
	}
	if !d.paused || d.compat {
		if _, err := d.w.Write(pkt); err != nil {
			return errors.Wrap(err, "writing transport stream")
		}
	}
	d.written += PacketSize
	if d.resumeAt > 0 && d.resumeAt <= d.written {
		d.resume()
	}
	return nil
}

// decryptPacket decrypts the scrambled bytes past the PES header in
// place and clears the scramble control bits. The PES header offset is
// tracked for every packet of the stream, scrambled or not, so a
// header straddling a packet boundary keeps the count aligned.
func (d *Decoder) decryptPacket(pkt []byte, hdr header, s *stream) error {
	payload := pkt[hdr.length:]
	off := s.pesOffset(payload, hdr.payloadStart)
	if !hdr.scrambled || off >= len(payload) {
		return nil
	}
	if s.paused {
		return nil
	}
	if !s.hasKey {
		d.log.Warning("scrambled packet before key", "pid", hdr.pid)
		return nil
	}

	block, _, err := turing.ParseStreamKey(s.key[:])
	if err != nil {
		return errors.Wrapf(err, "stream key for PID %#04x", hdr.pid)
	}
	ts, err := d.turing.PrepareFrame(s.streamID, block)
	if err != nil {
		return errors.Wrapf(err, "preparing frame for PID %#04x", hdr.pid)
	}
	pkt[3] &^= 0xc0
	d.turing.DecryptBytes(ts, payload[off:])
	return nil
}

func (d *Decoder) streamFor(pid uint16) *stream {
	s, ok := d.streams[pid]
	if !ok {
		d.log.Warning("no stream for PID, creating placeholder", "pid", pid)
		s = newStream(streamNotInPMT, d.log)
		d.streams[pid] = s
	}
	return s
}

// mask reproduces the reference filter's byte masking at maskInterval
// offsets of the output while decryption is paused. A masked position
// that still resembles a packet header chains the mask onto the next
// frame.
func (d *Decoder) mask(pkt []byte) {
	if d.maskAt >= d.written && d.written+PacketSize > d.maskAt+3 {
		off := int(d.maskAt - d.written)
		h := headerBits(pkt[off : off+4])
		if h.sync == syncByte && !h.priority {
			d.chainMaskAt = d.maskAt + PacketSize
		}
		d.maskAt += maskInterval
		pkt[off+3] &= 0x3f
	}
	if d.chainMaskAt >= d.written && d.chainMaskAt > 0 && d.written+PacketSize > d.chainMaskAt+3 {
		off := int(d.chainMaskAt - d.written)
		pkt[off+3] &= 0x3f
		if pkt[off] == syncByte {
			d.chainMaskAt += PacketSize
		} else {
			d.chainMaskAt = 0
		}
	}
}

// processPAT records the program map PID declared by a program
// association table packet.
func (d *Decoder) processPAT(pkt []byte, hdr header) error {
	data := pkt[hdr.length:]
	if hdr.payloadStart {
		data = data[1:]
	}
	if len(data) < 12 {
		return errors.Wrap(ErrMalformed, "short PAT packet")
	}
	if data[0] != 0x00 {
		return errors.Wrapf(ErrMalformed, "PAT table id %#02x", data[0])
	}
	field := binary.BigEndian.Uint16(data[1:3])
	if field&0xc000 != 0x8000 || field&0x0c00 != 0 {
		return errors.Wrapf(ErrMalformed, "PAT section field %#04x", field)
	}
	length := int(field & 0x0fff)
	pos := 3

	pos += 2 // transport stream id
	length -= 2
	pos += 3 // version and section numbers
	length -= 3
	length -= 4 // CRC

	for length > 0 {
		if pos+4 > len(data) {
			return errors.Wrap(ErrMalformed, "PAT entry out of range")
		}
		pos += 2 // program number
		pid := binary.BigEndian.Uint16(data[pos:pos+2]) & 0x1fff
		pos += 2
		length -= 4

		d.pmtPID = pid
		if _, ok := d.streams[pid]; !ok {
			d.log.Debug("creating stream for PMT", "pid", pid)
			d.streams[pid] = newStream(streamNone, d.log)
		}
	}
	if length < 0 {
		return errors.Wrap(ErrMalformed, "PAT section length overrun")
	}
	return nil
}

// processPMT creates a stream for each elementary stream declared by
// the program map table.
func (d *Decoder) processPMT(pkt []byte, hdr header) error {
	data := pkt[hdr.length:]
	if hdr.payloadStart {
		data = data[1:]
	}
	if len(data) < 16 {
		return errors.Wrap(ErrMalformed, "short PMT packet")
	}
	if data[0] != 0x02 {
		return errors.Wrapf(ErrMalformed, "PMT table id %#02x", data[0])
	}
	field := binary.BigEndian.Uint16(data[1:3])
	if field&0x8000 == 0 {
		return errors.Wrap(ErrMalformed, "PMT without long section syntax")
	}
	length := int(field & 0x0fff)
	pos := 3

	pos += 2 // program number
	length -= 2
	pos += 3 // version and section numbers
	length -= 3
	pos += 2 // PCR PID
	length -= 2
	infoLen := int(binary.BigEndian.Uint16(data[pos:pos+2]) & 0x0fff)
	pos += 2
	length -= 2
	pos += infoLen // program descriptors
	length -= infoLen
	length -= 4 // CRC

	for length > 0 {
		if pos+5 > len(data) {
			return errors.Wrap(ErrMalformed, "PMT entry out of range")
		}
		typ := streamTypeOf(data[pos])
		pid := binary.BigEndian.Uint16(data[pos+1:pos+3]) & 0x1fff
		esLen := int(binary.BigEndian.Uint16(data[pos+3:pos+5]) & 0x0fff)
		pos += 5 + esLen
		length -= 5 + esLen

		if _, ok := d.streams[pid]; !ok {
			d.log.Debug("creating stream", "pid", pid, "type", int(typ))
			d.streams[pid] = newStream(typ, d.log)
		}
	}
	if length < 0 {
		return errors.Wrap(ErrMalformed, "PMT section length overrun")
	}
	return nil
}

// processTivo installs per-stream key material from a TiVo private
// data packet. Key updates are ignored while decryption is paused
// after a loss of sync.
func (d *Decoder) processTivo(pkt []byte, hdr header) error {
	data := pkt[hdr.length:]
	if len(data) < 10 {
		return errors.Wrap(ErrMalformed, "short private data packet")
	}
	if typ := binary.BigEndian.Uint32(data[0:4]); typ != tivoFileType {
		return errors.Wrapf(ErrMalformed, "private data file type %#08x", typ)
	}
	if v := binary.BigEndian.Uint16(data[4:6]); v != tivoValidator {
		return errors.Wrapf(ErrMalformed, "private data validator %#04x", v)
	}
	length := int(data[9])
	pos := 10

	for length > 0 {
		if pos+4+turing.StreamKeyLen > len(data) {
			return errors.Wrap(ErrMalformed, "private data entry out of range")
		}
		pid := binary.BigEndian.Uint16(data[pos : pos+2])
		id := data[pos+2]
		key := data[pos+4 : pos+4+turing.StreamKeyLen]
		pos += 4 + turing.StreamKeyLen
		length -= 4 + turing.StreamKeyLen

		if d.paused {
			continue
		}
		d.log.Debug("installing stream key", "pid", pid, "streamID", id)
		d.streamFor(pid).setKey(id, key)
	}
	return nil
}
