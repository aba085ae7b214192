package mm

import "unsafe"

// Mapper translates physical addresses into pointers the kernel can
// dereference. The running kernel resolves them through its 1:1 logical
// mapping of physical memory; tests substitute a simulated physical address
// space so the memory subsystem can be exercised inside a hosted process.
type Mapper interface {
	// Ptr returns a pointer to the byte at the supplied physical address.
	Ptr(physAddr uintptr) unsafe.Pointer
}

// logicalMapper resolves physical addresses through the kernel's fixed-offset
// 1:1 mapping.
type logicalMapper struct{}

func (logicalMapper) Ptr(physAddr uintptr) unsafe.Pointer {
	return unsafe.Pointer(KernelLogical(physAddr))
}

// phys is the active physical memory mapper.
var phys Mapper = logicalMapper{}

// SetMapper replaces the active physical memory mapper and returns the
// previously active one.
func SetMapper(m Mapper) Mapper {
	prev := phys
	phys = m
	return prev
}

// PhysPtr returns a pointer to the byte at the supplied physical address.
func PhysPtr(physAddr uintptr) unsafe.Pointer {
	return phys.Ptr(physAddr)
}

// PhysZero clears size bytes of physical memory starting at physAddr.
func PhysZero(physAddr uintptr, size Size) {
	Memset(uintptr(PhysPtr(physAddr)), 0, size)
}
