package kfmt

import "io"

var (
	errMissingArg   = []byte("(MISSING)")
	errWrongArgType = []byte("%!(WRONGTYPE)")
	errNoVerb       = []byte("%!(NOVERB)")
	errExtraArg     = []byte("%!(EXTRA)")
	trueValue       = []byte("true")
	falseValue      = []byte("false")

	// earlyPrintBuffer captures Printf output generated before an output
	// sink has been registered.
	earlyPrintBuffer ringBuffer

	// outputSink is the io.Writer that receives Printf output. While it is
	// nil, output is redirected to the earlyPrintBuffer.
	outputSink io.Writer
)

// SetOutputSink sets the target for calls to Printf to w and drains any
// output accumulated in the early print buffer into it. Passing nil resets
// kfmt to buffering mode.
func SetOutputSink(w io.Writer) {
	outputSink = w
	if w != nil {
		io.Copy(w, &earlyPrintBuffer)
	}
}

// Printf writes a formatted string to the registered output sink. Until a
// sink is registered, output accumulates in a fixed-size ring buffer.
//
// Printf supports a subset of the fmt.Printf verbs:
//
//	%s  the uninterpreted bytes of a string or byte slice
//	%o  integer in base 8
//	%d  integer in base 10
//	%x  integer in base 16, lower-case, without a 0x prefix
//	%t  "true" or "false"
//
// An optional decimal width may precede the verb. Strings and base-10
// integers shorter than the width are left-padded with spaces; base-8 and
// base-16 integers are left-padded with zeroes.
func Printf(format string, args ...interface{}) {
	Fprintf(outputSink, format, args...)
}

// Fprintf behaves exactly like Printf but writes the formatted output to the
// supplied io.Writer. A nil writer targets the early print buffer.
func Fprintf(w io.Writer, format string, args ...interface{}) {
	if w == nil {
		w = &earlyPrintBuffer
	}

	var blockStart, argIndex, i int

	for i < len(format) {
		if format[i] != '%' {
			i++
			continue
		}

		if blockStart < i {
			io.WriteString(w, format[blockStart:i])
		}

		// Scan the optional width immediately following the '%'
		i++
		padLen := 0
		for i < len(format) && format[i] >= '0' && format[i] <= '9' {
			padLen = padLen*10 + int(format[i]-'0')
			i++
		}

		if i == len(format) {
			w.Write(errNoVerb)
			blockStart = i
			break
		}

		verb := format[i]
		i++
		blockStart = i

		switch verb {
		case '%':
			io.WriteString(w, "%")
		case 'o', 'd', 'x', 's', 't':
			if argIndex >= len(args) {
				w.Write(errMissingArg)
				continue
			}

			arg := args[argIndex]
			argIndex++

			switch verb {
			case 'o':
				fmtInt(w, arg, 8, padLen)
			case 'd':
				fmtInt(w, arg, 10, padLen)
			case 'x':
				fmtInt(w, arg, 16, padLen)
			case 's':
				fmtString(w, arg, padLen)
			case 't':
				fmtBool(w, arg)
			}
		default:
			w.Write(errNoVerb)
		}
	}

	if blockStart < len(format) {
		io.WriteString(w, format[blockStart:])
	}

	for ; argIndex < len(args); argIndex++ {
		w.Write(errExtraArg)
	}
}

// fmtBool writes a formatted version of a boolean value to w.
func fmtBool(w io.Writer, v interface{}) {
	bVal, ok := v.(bool)
	if !ok {
		w.Write(errWrongArgType)
		return
	}

	if bVal {
		w.Write(trueValue)
	} else {
		w.Write(falseValue)
	}
}

// fmtString writes a formatted version of a string or byte slice to w,
// left-padding with spaces up to padLen.
func fmtString(w io.Writer, v interface{}, padLen int) {
	switch sVal := v.(type) {
	case string:
		fmtRepeat(w, ' ', padLen-len(sVal))
		io.WriteString(w, sVal)
	case []byte:
		fmtRepeat(w, ' ', padLen-len(sVal))
		w.Write(sVal)
	default:
		w.Write(errWrongArgType)
	}
}

// fmtRepeat writes count bytes with value ch to w.
func fmtRepeat(w io.Writer, ch byte, count int) {
	buf := [1]byte{ch}
	for i := 0; i < count; i++ {
		w.Write(buf[:])
	}
}

// fmtInt writes a formatted version of an integer value in the requested base
// to w. All built-in signed and unsigned integer types are supported, as are
// bases 8, 10 and 16.
func fmtInt(w io.Writer, v interface{}, base, padLen int) {
	var (
		uval  uint64
		sval  int64
		buf   [32]byte
		padCh byte = ' '
	)

	if base != 10 {
		padCh = '0'
	}

	switch t := v.(type) {
	case uint8:
		uval = uint64(t)
	case uint16:
		uval = uint64(t)
	case uint32:
		uval = uint64(t)
	case uint64:
		uval = t
	case uint:
		uval = uint64(t)
	case uintptr:
		uval = uint64(t)
	case int8:
		sval = int64(t)
	case int16:
		sval = int64(t)
	case int32:
		sval = int64(t)
	case int64:
		sval = t
	case int:
		sval = int64(t)
	default:
		w.Write(errWrongArgType)
		return
	}

	neg := sval < 0
	if neg {
		uval = uint64(-sval)
	} else if sval > 0 {
		uval = uint64(sval)
	}

	idx := len(buf)
	for {
		idx--
		rem := uval % uint64(base)
		if rem < 10 {
			buf[idx] = '0' + byte(rem)
		} else {
			buf[idx] = 'a' + byte(rem-10)
		}

		uval /= uint64(base)
		if uval == 0 {
			break
		}
	}

	if neg && idx > 0 {
		idx--
		buf[idx] = '-'
	}

	for len(buf)-idx < padLen && idx > 0 {
		idx--
		buf[idx] = padCh
	}

	w.Write(buf[idx:])
}
