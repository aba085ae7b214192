package vmm

// pageTableEntry describes an entry at any level of the amd64 page table
// hierarchy.
type pageTableEntry uint64

const (
	// flagPresent marks the entry as backed by a physical page.
	flagPresent pageTableEntry = 1 << iota

	// flagRW allows writes through this entry.
	flagRW

	// flagUserAccessible allows CPL 3 code to access the page.
	flagUserAccessible

	// flagWriteThrough enables write-through caching for the page.
	flagWriteThrough

	// flagCacheDisable bypasses the cache for accesses through this entry.
	flagCacheDisable

	// flagAccessed is set by the CPU when the page is referenced.
	flagAccessed

	// flagDirty is set by the CPU when the page is written.
	flagDirty

	// flagHugePage marks a level 2 or 3 entry as a large or huge page leaf.
	flagHugePage

	// flagGlobal keeps the TLB entry across page table switches.
	flagGlobal

	// flagSystem marks an entry owned by the kernel. System entries are
	// never modified or reclaimed on behalf of other address spaces.
	flagSystem
)

// pteAddrMask extracts the physical address bits of an entry; the low bits
// hold the entry flags.
const pteAddrMask = ^pageTableEntry(0x3ff)

// Address returns the physical address stored in the entry.
func (pte pageTableEntry) Address() uintptr {
	return uintptr(pte & pteAddrMask)
}

// HasFlags returns true if the entry has all the supplied flags set.
func (pte pageTableEntry) HasFlags(flags pageTableEntry) bool {
	return pte&flags == flags
}

// Virtual address bit fields for the four levels of the paging hierarchy.
const (
	pageLevelShiftL4 = 39
	pageLevelShiftL3 = 30
	pageLevelShiftL2 = 21
	pageLevelShiftL1 = 12
	pageLevelMask    = 0x1ff
)

func tableIndex(virtAddr uintptr, levelShift uintptr) uint {
	return uint((virtAddr >> levelShift) & pageLevelMask)
}
