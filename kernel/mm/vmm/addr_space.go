package vmm

import (
	"unsafe"

	"github.com/confucianzuoyuan/zyos/kernel/mm"
)

// pageTable is a single 4 KiB page interpreted as 512 table entries.
type pageTable [mm.TableEntryCount]pageTableEntry

// tableAt returns the page table page stored at the supplied physical
// address.
func tableAt(physAddr uintptr) *pageTable {
	return (*pageTable)(unsafe.Pointer(mm.PhysPtr(physAddr)))
}

// AddressSpace is a handle to one page table hierarchy. Every address space
// shares the kernel mappings through its top level entries; the remaining
// entries describe mappings private to the space.
//
// The pages holding the table itself are mapped into the space at
// consecutive virtual addresses starting at vroot. vnext is the next unused
// address in that window and vterm its exclusive upper bound; the window
// size fixed at creation time caps how large the table can grow.
type AddressSpace struct {
	root  uintptr
	vroot uintptr
	vnext uintptr
	vterm uintptr
}

// Root returns the physical address of the top level table page, suitable
// for loading into the CPU's page table base register.
func (s *AddressSpace) Root() uintptr {
	return s.root
}
