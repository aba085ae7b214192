package mm

import (
	"testing"
	"unsafe"
)

// simMapper backs a fake physical address space with a plain byte slice.
type simMapper struct {
	mem []byte
}

func (m *simMapper) Ptr(physAddr uintptr) unsafe.Pointer {
	return unsafe.Pointer(&m.mem[physAddr])
}

func TestPhysAccessThroughMapper(t *testing.T) {
	sim := &simMapper{mem: make([]byte, 2*int(PageSize))}
	defer SetMapper(SetMapper(sim))

	for i := range sim.mem {
		sim.mem[i] = 0xaa
	}

	PhysZero(PageSize, Size(PageSize))

	for i := uintptr(0); i < PageSize; i++ {
		if sim.mem[i] != 0xaa {
			t.Fatalf("expected byte 0x%x outside the cleared page to be untouched", i)
		}
		if sim.mem[PageSize+i] != 0x00 {
			t.Fatalf("expected byte 0x%x of the cleared page to be zero", PageSize+i)
		}
	}

	*(*byte)(PhysPtr(PageSize + 42)) = 0x42
	if sim.mem[PageSize+42] != 0x42 {
		t.Fatal("expected writes through PhysPtr to land in the simulated memory")
	}
}

func TestKernelLogicalTranslation(t *testing.T) {
	phys := uintptr(0x00300000)
	virt := KernelLogical(phys)

	if virt != phys+KernelLogicalBase {
		t.Fatalf("expected kernel logical address 0x%x; got 0x%x", phys+KernelLogicalBase, virt)
	}
	if got := KernelLogicalToPhys(virt); got != phys {
		t.Fatalf("expected the inverse translation to return 0x%x; got 0x%x", phys, got)
	}
}
