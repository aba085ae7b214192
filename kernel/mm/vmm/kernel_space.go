package vmm

import (
	"github.com/confucianzuoyuan/zyos/kernel"
	"github.com/confucianzuoyuan/zyos/kernel/mm"
	"github.com/confucianzuoyuan/zyos/kernel/mm/pmap"
)

// pdFlags returns the leaf entry flags for large and huge pages backing the
// supplied memory class.
func pdFlags(memType pmap.MemType) pageTableEntry {
	switch memType {
	case pmap.MemACPINonVolatile, pmap.MemUncached:
		return flagPresent | flagGlobal | flagSystem | flagRW |
			flagHugePage | flagWriteThrough | flagCacheDisable
	case pmap.MemBad, pmap.MemUnmapped:
		return 0
	default:
		return flagPresent | flagGlobal | flagSystem | flagRW | flagHugePage
	}
}

// ptFlags returns the leaf entry flags for 4 KiB pages backing the supplied
// memory class.
func ptFlags(memType pmap.MemType) pageTableEntry {
	switch memType {
	case pmap.MemACPINonVolatile, pmap.MemUncached:
		return flagPresent | flagGlobal | flagSystem | flagRW |
			flagWriteThrough | flagCacheDisable
	case pmap.MemBad, pmap.MemUnmapped:
		return 0
	default:
		return flagPresent | flagGlobal | flagSystem | flagRW
	}
}

// kernelTablePage allocates a zeroed frame for a kernel table page and
// returns the entry that installs it. The entry carries the system flag so
// derived address spaces never modify or reclaim kernel tables. Triggers a
// kernel fault once the table window is exhausted.
func (m *Manager) kernelTablePage() pageTableEntry {
	if m.kernel.vnext >= m.kernel.vterm {
		kernel.Fatal("vmm", kernel.VirtualSpaceExhausted)
	}
	m.kernel.vnext += mm.PageSize

	return pageTableEntry(m.frames.AllocPage().Address()) | flagPresent | flagRW | flagSystem
}

// mapRegion installs identity mappings for one memory map region into the
// kernel page table, covering it with the largest page sizes its alignment
// and length allow.
func (m *Manager) mapRegion(r *pmap.Region) {
	if r.Type == pmap.MemUnmapped || r.Type == pmap.MemBad {
		return
	}
	// Reserved memory beyond the last usable address stays unmapped.
	if r.Type == pmap.MemReserved && r.Addr >= m.pmap.LastUsable() {
		return
	}

	addr := uintptr(r.Addr)
	term := uintptr(r.Addr + r.Size)
	for addr < term {
		remain := term - addr
		switch {
		case addr&(mm.PageSizeHuge-1) == 0 && remain >= mm.PageSizeHuge:
			m.createHugePage(addr, r.Type)
			addr += mm.PageSizeHuge
		case addr&(mm.PageSizeLarge-1) == 0 && remain >= mm.PageSizeLarge:
			m.createLargePage(addr, r.Type)
			addr += mm.PageSizeLarge
		default:
			m.createSmallPage(addr, r.Type)
			addr += mm.PageSize
		}
	}
}

// createHugePage installs a 1 GiB identity mapping for addr in the kernel
// page table.
func (m *Manager) createHugePage(addr uintptr, memType pmap.MemType) {
	pml4 := tableAt(m.kernel.root)
	l4 := tableIndex(addr, pageLevelShiftL4)
	if pml4[l4] == 0 {
		pml4[l4] = m.kernelTablePage()
	}

	pdp := tableAt(pml4[l4].Address())
	pdp[tableIndex(addr, pageLevelShiftL3)] = pageTableEntry(addr) | pdFlags(memType)
}

// createLargePage installs a 2 MiB identity mapping for addr in the kernel
// page table.
func (m *Manager) createLargePage(addr uintptr, memType pmap.MemType) {
	pml4 := tableAt(m.kernel.root)
	l4 := tableIndex(addr, pageLevelShiftL4)
	if pml4[l4] == 0 {
		pml4[l4] = m.kernelTablePage()
	}

	pdp := tableAt(pml4[l4].Address())
	l3 := tableIndex(addr, pageLevelShiftL3)
	if pdp[l3] == 0 {
		pdp[l3] = m.kernelTablePage()
	}

	pd := tableAt(pdp[l3].Address())
	pd[tableIndex(addr, pageLevelShiftL2)] = pageTableEntry(addr) | pdFlags(memType)
}

// createSmallPage installs a 4 KiB identity mapping for addr in the kernel
// page table.
func (m *Manager) createSmallPage(addr uintptr, memType pmap.MemType) {
	pml4 := tableAt(m.kernel.root)
	l4 := tableIndex(addr, pageLevelShiftL4)
	if pml4[l4] == 0 {
		pml4[l4] = m.kernelTablePage()
	}

	pdp := tableAt(pml4[l4].Address())
	l3 := tableIndex(addr, pageLevelShiftL3)
	if pdp[l3] == 0 {
		pdp[l3] = m.kernelTablePage()
	}

	pd := tableAt(pdp[l3].Address())
	l2 := tableIndex(addr, pageLevelShiftL2)
	if pd[l2] == 0 {
		pd[l2] = m.kernelTablePage()
	}

	pt := tableAt(pd[l2].Address())
	pt[tableIndex(addr, pageLevelShiftL1)] = pageTableEntry(addr) | ptFlags(memType)
}
