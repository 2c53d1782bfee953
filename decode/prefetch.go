/*
NAME
  prefetch.go - asynchronous input prefetching.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package decode

import (
	"io"
	"sync"
)

const (
	prefetchInitialSize = 16 << 20
	prefetchMaxSize     = 256 << 20
	prefetchMaxRead     = 64 << 10

	// Unread bytes shift down to index 0 once the read cursor
	// crosses this fraction of the buffer.
	prefetchShiftRatio = 0.9
)

// prefetcher drains a reader from a background goroutine into a
// bounded buffer so a pipe feeding the decoder never blocks on the
// pipeline. The buffer grows by doubling while the source outpaces
// the consumer, up to prefetchMaxSize, after which the source blocks
// until the consumer frees space.
type prefetcher struct {
	mu   sync.Mutex
	cond *sync.Cond
	buf  []byte
	r, w int
	err  error
}

func newPrefetcher(src io.Reader) *prefetcher {
	p := &prefetcher{buf: make([]byte, prefetchInitialSize)}
	p.cond = sync.NewCond(&p.mu)
	go p.fill(src)
	return p
}

// Read blocks only while the buffer is empty and the source is still
// open. Once the buffer drains and the source has failed or ended,
// the source's error is returned.
func (p *prefetcher) Read(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for p.r == p.w && p.err == nil {
		p.cond.Wait()
	}
	if p.r == p.w {
		return 0, p.err
	}
	n := copy(b, p.buf[p.r:p.w])
	p.r += n
	p.cond.Broadcast()
	return n, nil
}

// fill reads the source until it fails or ends, appending to the
// buffer under the lock.
func (p *prefetcher) fill(src io.Reader) {
	scratch := make([]byte, prefetchMaxRead)
	for {
		n, err := src.Read(scratch)
		p.mu.Lock()
		if n > 0 {
			p.reserve(n)
			p.w += copy(p.buf[p.w:], scratch[:n])
		}
		if err != nil {
			p.err = err
			p.cond.Broadcast()
			p.mu.Unlock()
			return
		}
		p.cond.Broadcast()
		p.mu.Unlock()
	}
}

// reserve makes room for n more bytes, shifting unread bytes down
// once the read cursor crosses the high-water mark, doubling the
// buffer up to its limit, and finally waiting for the consumer.
// Called with the lock held.
func (p *prefetcher) reserve(n int) {
	for p.w+n > len(p.buf) {
		if p.r >= int(float64(len(p.buf))*prefetchShiftRatio) {
			p.shift()
			continue
		}
		if len(p.buf) < prefetchMaxSize {
			size := 2 * len(p.buf)
			if size > prefetchMaxSize {
				size = prefetchMaxSize
			}
			buf := make([]byte, size)
			p.w = copy(buf, p.buf[p.r:p.w])
			p.r = 0
			p.buf = buf
			continue
		}
		if p.r > 0 {
			p.shift()
			continue
		}
		p.cond.Wait()
	}
}

func (p *prefetcher) shift() {
	p.w = copy(p.buf, p.buf[p.r:p.w])
	p.r = 0
}
