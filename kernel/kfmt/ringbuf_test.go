package kfmt

import (
	"io"
	"testing"
)

func TestRingBufferRoundTrip(t *testing.T) {
	var rb ringBuffer

	payload := []byte("the quick brown fox jumps over the lazy dog")
	if n, err := rb.Write(payload); n != len(payload) || err != nil {
		t.Fatalf("expected write of %d bytes to succeed; got n=%d, err=%v", len(payload), n, err)
	}

	got := make([]byte, len(payload))
	if n, err := rb.Read(got); n != len(payload) || err != nil {
		t.Fatalf("expected read of %d bytes to succeed; got n=%d, err=%v", len(payload), n, err)
	}
	if string(got) != string(payload) {
		t.Fatalf("expected to read back %q; got %q", payload, got)
	}

	if _, err := rb.Read(got); err != io.EOF {
		t.Fatalf("expected io.EOF on empty buffer; got %v", err)
	}
}

func TestRingBufferOverwritesOldestData(t *testing.T) {
	var rb ringBuffer

	for i := 0; i < ringBufferSize; i++ {
		rb.Write([]byte{'a'})
	}
	rb.Write([]byte("bcd"))

	data := make([]byte, ringBufferSize)
	n, err := rb.Read(data)
	if err != nil || n != ringBufferSize {
		t.Fatalf("expected to read a full buffer; got n=%d, err=%v", n, err)
	}

	if got := string(data[ringBufferSize-3:]); got != "bcd" {
		t.Fatalf("expected the newest bytes to survive; got %q", got)
	}
	for i := 0; i < ringBufferSize-3; i++ {
		if data[i] != 'a' {
			t.Fatalf("expected byte %d to be 'a'; got %q", i, data[i])
		}
	}
}

func TestRingBufferPartialReads(t *testing.T) {
	var rb ringBuffer

	rb.Write([]byte("0123456789"))

	chunk := make([]byte, 4)
	var assembled []byte
	for {
		n, err := rb.Read(chunk)
		if err == io.EOF {
			break
		}
		assembled = append(assembled, chunk[:n]...)
	}

	if string(assembled) != "0123456789" {
		t.Fatalf("expected chunked reads to assemble the original data; got %q", assembled)
	}
}
