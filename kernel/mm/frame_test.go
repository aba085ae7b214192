package mm

import "testing"

func TestFrameConversions(t *testing.T) {
	specs := []struct {
		physAddr uintptr
		expFrame Frame
	}{
		{0, 0},
		{4095, 0},
		{4096, 1},
		{4097, 1},
		{0xa0000, 0xa0},
	}

	for specIndex, spec := range specs {
		if got := FrameFromAddress(spec.physAddr); got != spec.expFrame {
			t.Errorf("[spec %d] expected frame %d; got %d", specIndex, spec.expFrame, got)
		}
	}

	if got := Frame(0xa0).Address(); got != 0xa0000 {
		t.Errorf("expected frame address 0xa0000; got 0x%x", got)
	}

	if InvalidFrame.Valid() {
		t.Error("expected InvalidFrame.Valid() to return false")
	}
	if !Frame(42).Valid() {
		t.Error("expected Frame(42).Valid() to return true")
	}
}

func TestPageConversions(t *testing.T) {
	if got := PageFromAddress(8193); got != 2 {
		t.Errorf("expected page 2; got %d", got)
	}
	if got := Page(2).Address(); got != 8192 {
		t.Errorf("expected page address 8192; got 0x%x", got)
	}
}
