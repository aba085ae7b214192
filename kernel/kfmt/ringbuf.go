package kfmt

import "io"

// ringBufferSize defines the capacity of the early print buffer. It must be a
// power of 2.
const ringBufferSize = 4096

// ringBuffer buffers Printf output generated before an output sink has been
// registered. Once the buffer fills up, the oldest buffered bytes are
// overwritten.
type ringBuffer struct {
	data  [ringBufferSize]byte
	head  int // index of the oldest buffered byte
	count int // number of buffered bytes
}

// Write appends len(p) bytes from p to the ring buffer.
func (rb *ringBuffer) Write(p []byte) (int, error) {
	for _, b := range p {
		rb.data[(rb.head+rb.count)&(ringBufferSize-1)] = b
		if rb.count == ringBufferSize {
			rb.head = (rb.head + 1) & (ringBufferSize - 1)
		} else {
			rb.count++
		}
	}

	return len(p), nil
}

// Read reads up to len(p) buffered bytes into p. It returns io.EOF when the
// buffer is empty.
func (rb *ringBuffer) Read(p []byte) (int, error) {
	if rb.count == 0 {
		return 0, io.EOF
	}

	n := 0
	for ; n < len(p) && rb.count > 0; n++ {
		p[n] = rb.data[rb.head]
		rb.head = (rb.head + 1) & (ringBufferSize - 1)
		rb.count--
	}

	return n, nil
}
