package cpu

// FlushTLBEntry invalidates the cached translation for a particular virtual
// address.
func FlushTLBEntry(virtAddr uintptr)

// SwitchPageTable points the MMU at the page table hierarchy whose root table
// lives at the supplied physical address and flushes the non-global TLB
// entries.
func SwitchPageTable(rootPhysAddr uintptr)

// ActivePageTable returns the physical address of the root table of the
// currently active page table hierarchy.
func ActivePageTable() uintptr

// Halt stops instruction execution.
func Halt()
