package mm

// Physical memory layout constants inherited from the boot loader. These are
// build-time configuration values, not quantities discovered at runtime.
const (
	// KernelPageTableBase and KernelPageTableEnd delimit the low-memory
	// scratch window set aside for the pages of the kernel page table.
	// The kernel address space uses it as its virtual growth window.
	KernelPageTableBase = uintptr(0x00020000)
	KernelPageTableEnd  = uintptr(0x00070000)

	// BIOSMemoryTable is the physical address where the boot loader
	// deposits the firmware-reported memory map.
	BIOSMemoryTable = uintptr(0x00070000)

	// VideoRAMBase and VideoRAMSize delimit the VGA memory-mapped I/O
	// window. Accesses to it must bypass the cache.
	VideoRAMBase = uintptr(0x000a0000)
	VideoRAMSize = Size(0x00020000)

	// KernelImageEnd is the first byte beyond the kernel image and its
	// boot-time data structures.
	KernelImageEnd = uintptr(0x00a00000)

	// KernelLogicalBase is the fixed offset at which the kernel maps all
	// physical memory 1:1. The boot loader's identity mapping pins it at
	// zero.
	KernelLogicalBase = uintptr(0)
)

// KernelLogical returns the kernel logical address for a physical address: a
// constant-offset translation that performs no page table walk. It is only
// valid for physical memory covered by the kernel's 1:1 mapping.
func KernelLogical(physAddr uintptr) uintptr {
	return physAddr + KernelLogicalBase
}

// KernelLogicalToPhys is the inverse of KernelLogical.
func KernelLogicalToPhys(virtAddr uintptr) uintptr {
	return virtAddr - KernelLogicalBase
}
