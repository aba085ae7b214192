package kfmt

import (
	"bytes"
	"testing"
)

func TestFprintf(t *testing.T) {
	// mute vet warnings about malformed printf formatting strings
	fprintfn := Fprintf

	specs := []struct {
		fn        func(*bytes.Buffer)
		expOutput string
	}{
		{
			func(buf *bytes.Buffer) { fprintfn(buf, "no verbs") },
			"no verbs",
		},
		{
			func(buf *bytes.Buffer) { fprintfn(buf, "%t and %t", true, false) },
			"true and false",
		},
		{
			func(buf *bytes.Buffer) { fprintfn(buf, "%s arg", "STRING") },
			"STRING arg",
		},
		{
			func(buf *bytes.Buffer) { fprintfn(buf, "%s arg", []byte("BYTE SLICE")) },
			"BYTE SLICE arg",
		},
		{
			func(buf *bytes.Buffer) { fprintfn(buf, "'%4s'", "ABC") },
			"' ABC'",
		},
		{
			func(buf *bytes.Buffer) { fprintfn(buf, "'%4s'", "ABCDE") },
			"'ABCDE'",
		},
		{
			func(buf *bytes.Buffer) { fprintfn(buf, "%d", 42) },
			"42",
		},
		{
			func(buf *bytes.Buffer) { fprintfn(buf, "%d", -42) },
			"-42",
		},
		{
			func(buf *bytes.Buffer) { fprintfn(buf, "'%5d'", int16(-42)) },
			"'  -42'",
		},
		{
			func(buf *bytes.Buffer) { fprintfn(buf, "0x%x", uint64(0xbadf00d)) },
			"0xbadf00d",
		},
		{
			func(buf *bytes.Buffer) { fprintfn(buf, "0x%10x", uintptr(0xa0000)) },
			"0x00000a0000",
		},
		{
			func(buf *bytes.Buffer) { fprintfn(buf, "%o", uint8(8)) },
			"10",
		},
		{
			func(buf *bytes.Buffer) { fprintfn(buf, "100%% done") },
			"100% done",
		},
		{
			func(buf *bytes.Buffer) { fprintfn(buf, "%d %d", 1) },
			"1 (MISSING)",
		},
		{
			func(buf *bytes.Buffer) { fprintfn(buf, "%d", 1, 2) },
			"1%!(EXTRA)",
		},
		{
			func(buf *bytes.Buffer) { fprintfn(buf, "%d", "not a number") },
			"%!(WRONGTYPE)",
		},
		{
			func(buf *bytes.Buffer) { fprintfn(buf, "%t", 123) },
			"%!(WRONGTYPE)",
		},
		{
			func(buf *bytes.Buffer) { fprintfn(buf, "%s", 123) },
			"%!(WRONGTYPE)",
		},
		{
			func(buf *bytes.Buffer) { fprintfn(buf, "%q", "verb") },
			"%!(NOVERB)%!(EXTRA)",
		},
		{
			func(buf *bytes.Buffer) { fprintfn(buf, "dangling %") },
			"dangling %!(NOVERB)",
		},
	}

	for specIndex, spec := range specs {
		var buf bytes.Buffer
		spec.fn(&buf)
		if got := buf.String(); got != spec.expOutput {
			t.Errorf("[spec %d] expected output %q; got %q", specIndex, spec.expOutput, got)
		}
	}
}

func TestPrintfBuffersUntilSinkRegistered(t *testing.T) {
	defer func() {
		SetOutputSink(nil)
		earlyPrintBuffer.head, earlyPrintBuffer.count = 0, 0
	}()

	// mute vet warnings about malformed printf formatting strings
	printfn := Printf

	SetOutputSink(nil)
	printfn("early %s output %d", "boot", 1)

	var buf bytes.Buffer
	SetOutputSink(&buf)

	if exp, got := "early boot output 1", buf.String(); got != exp {
		t.Fatalf("expected buffered output %q to be drained into the sink; got %q", exp, got)
	}

	printfn(" and more")
	if exp, got := "early boot output 1 and more", buf.String(); got != exp {
		t.Fatalf("expected direct output after sink registration; got %q", got)
	}
}
