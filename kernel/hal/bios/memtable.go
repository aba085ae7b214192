// Package bios provides access to the data structures the boot loader
// deposits in low physical memory before handing control to the kernel.
package bios

import (
	"unsafe"

	"github.com/confucianzuoyuan/zyos/kernel/mm"
	"github.com/confucianzuoyuan/zyos/kernel/mm/pmap"
)

// tableHeader mirrors the layout of the memory table header the boot loader
// builds from the firmware memory probe.
type tableHeader struct {
	count      uint64
	lastUsable uint64
}

// regionRecord mirrors one 24 byte record following the header.
type regionRecord struct {
	addr    uint64
	size    uint64
	memType int32
	flags   uint32
}

// MemTable reads the boot loader's memory table out of physical memory.
type MemTable struct {
	tableAddr uintptr
}

// BootMemTable returns the memory table at its standard location.
func BootMemTable() *MemTable {
	return &MemTable{tableAddr: mm.BIOSMemoryTable}
}

// VisitMemRegions invokes visitor for every memory region record in the
// table until the visitor returns false or the records are exhausted.
// Records with types outside the known range are reported as reserved.
func (t *MemTable) VisitMemRegions(visitor func(addr, size uint64, memType pmap.MemType) bool) {
	header := (*tableHeader)(mm.PhysPtr(t.tableAddr))
	if header.count == 0 {
		return
	}

	recordsAddr := t.tableAddr + uintptr(unsafe.Sizeof(tableHeader{}))
	records := unsafe.Slice((*regionRecord)(mm.PhysPtr(recordsAddr)), header.count)

	for i := range records {
		memType := pmap.MemType(records[i].memType)
		if memType < pmap.MemUsable || memType > pmap.MemUnmapped {
			memType = pmap.MemReserved
		}
		if !visitor(records[i].addr, records[i].size, memType) {
			return
		}
	}
}
