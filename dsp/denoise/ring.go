package denoise

// sampleRing is a fixed circular staging buffer for raw input samples.
// Indexing follows the same modular arithmetic as a plain delay line:
// a read at delay d returns the sample written d steps ago.
type sampleRing struct {
	buf []float64
	pos int // next write index
}

func newSampleRing(size int) *sampleRing {
	return &sampleRing{buf: make([]float64, size)}
}

func (r *sampleRing) write(sample float64) {
	r.buf[r.pos] = sample
	r.pos++
	if r.pos >= len(r.buf) {
		r.pos = 0
	}
}

// read returns the sample written delay steps ago. Unwritten cells read as
// zero, which makes the cold-start delayed path silent by construction.
func (r *sampleRing) read(delay int) float64 {
	size := len(r.buf)
	return r.buf[(r.pos-delay+size)%size]
}

// copyLast copies the most recent len(dst) samples into dst, oldest first.
// The extraction start is (pos - len(dst) + size) mod size.
func (r *sampleRing) copyLast(dst []float64) {
	size := len(r.buf)
	start := (r.pos - len(dst) + size) % size

	n := copy(dst, r.buf[start:])
	if n < len(dst) {
		copy(dst[n:], r.buf[:len(dst)-n])
	}
}

func (r *sampleRing) reset() {
	for i := range r.buf {
		r.buf[i] = 0
	}
	r.pos = 0
}

// overlapRing is the circular overlap-add accumulator for synthesis frames.
// Frames sum their contribution in; the output stage drains one cell at a
// time and zeroes it immediately so the cell is clean for the next cycle.
type overlapRing struct {
	buf []float64
}

func newOverlapRing(size int) *overlapRing {
	return &overlapRing{buf: make([]float64, size)}
}

// addFrame accumulates scale*src into the ring starting at index start,
// wrapping modulo the ring length.
func (o *overlapRing) addFrame(start int, src []float64, scale float64) {
	size := len(o.buf)
	idx := start % size

	for _, v := range src {
		o.buf[idx] += v * scale
		idx++
		if idx >= size {
			idx = 0
		}
	}
}

// drain reads and zeroes the cell at idx.
func (o *overlapRing) drain(idx int) float64 {
	v := o.buf[idx]
	o.buf[idx] = 0
	return v
}

func (o *overlapRing) reset() {
	for i := range o.buf {
		o.buf[i] = 0
	}
}
