// Package vmm manages virtual address spaces: it builds the kernel's page
// table covering all mapped physical memory and carves out private address
// spaces that share the kernel mappings.
package vmm

import (
	"github.com/confucianzuoyuan/zyos/kernel"
	"github.com/confucianzuoyuan/zyos/kernel/cpu"
	"github.com/confucianzuoyuan/zyos/kernel/mm"
	"github.com/confucianzuoyuan/zyos/kernel/mm/pmap"
	"github.com/confucianzuoyuan/zyos/kernel/mm/pmm"
)

var (
	flushTLBEntryFn = cpu.FlushTLBEntry
	switchTableFn   = cpu.SwitchPageTable
)

// Manager owns the kernel address space and tracks which address space the
// CPU is currently using.
type Manager struct {
	pmap   *pmap.Map
	frames *pmm.Allocator
	kernel AddressSpace
	active *AddressSpace
}

// Init builds the kernel page table off the supplied memory map, mapping
// every usable, reserved and device region with the largest page sizes their
// alignment allows, and activates it. Frames for the table pages come from
// the frame allocator; the virtual window reserved for them bounds how many
// the kernel table may consume.
func (m *Manager) Init(memMap *pmap.Map, frames *pmm.Allocator) {
	m.pmap = memMap
	m.frames = frames
	m.kernel = AddressSpace{
		root:  frames.AllocPage().Address(),
		vroot: mm.KernelPageTableBase,
		vnext: mm.KernelPageTableBase + mm.PageSize,
		vterm: mm.KernelPageTableEnd,
	}

	memMap.Visit(func(r *pmap.Region) bool {
		m.mapRegion(r)
		return true
	})

	switchTableFn(m.kernel.root)
	m.active = &m.kernel
}

// KernelSpace returns the kernel address space.
func (m *Manager) KernelSpace() *AddressSpace {
	return &m.kernel
}

// Active returns the address space the CPU is currently using.
func (m *Manager) Active() *AddressSpace {
	return m.active
}

// Create allocates a new address space that maps its page table pages at
// virtAddr and shares the kernel mappings. The table may grow up to size
// bytes of table pages; size must be a multiple of the page size. Triggers a
// kernel fault otherwise.
func (m *Manager) Create(virtAddr uintptr, size mm.Size) *AddressSpace {
	if size%mm.Size(mm.PageSize) != 0 {
		kernel.Fatal("vmm", kernel.MisalignedSize)
	}

	space := &AddressSpace{
		root:  m.frames.AllocPage().Address(),
		vroot: virtAddr,
		vnext: virtAddr + mm.PageSize,
		vterm: virtAddr + uintptr(size),
	}

	// Share the kernel mappings by copying the kernel's top level entries.
	*tableAt(space.root) = *tableAt(m.kernel.root)

	return space
}

// Destroy releases every frame an address space holds: the pages mapped into
// it and the pages of the table itself, which reach the sweep through their
// window mappings at vroot. Kernel entries are skipped. The root table page
// stays allocated because no entry references it. Destroying a space with no
// root triggers a kernel fault.
func (m *Manager) Destroy(space *AddressSpace) {
	if space.root == 0 {
		kernel.Fatal("vmm", kernel.InvalidSpace)
	}

	m.freeTableFrames(tableAt(space.root), 4)

	if space == m.active {
		for virtAddr := space.vroot; virtAddr < space.vterm; virtAddr += mm.PageSize {
			flushTLBEntryFn(virtAddr)
		}
	}

	*space = AddressSpace{}
}

// Activate switches the CPU to the supplied address space. Passing nil
// activates the kernel address space. Activating a destroyed space triggers
// a kernel fault.
func (m *Manager) Activate(space *AddressSpace) {
	if space == nil {
		space = &m.kernel
	}
	if space.root == 0 {
		kernel.Fatal("vmm", kernel.InvalidSpace)
	}

	switchTableFn(space.root)
	m.active = space
}

// PageAlloc maps count zeroed frames at consecutive virtual addresses
// starting at virtAddr and returns virtAddr.
func (m *Manager) PageAlloc(space *AddressSpace, virtAddr uintptr, count int) uintptr {
	for vaddr := virtAddr; count > 0; count, vaddr = count-1, vaddr+mm.PageSize {
		frame := m.frames.AllocPage()
		m.addPTE(space, vaddr, frame.Address(), flagPresent|flagRW, false)
	}
	return virtAddr
}

// PageFree unmaps count pages starting at virtAddr and returns their frames
// to the allocator.
func (m *Manager) PageFree(space *AddressSpace, virtAddr uintptr, count int) {
	for vaddr := virtAddr; count > 0; count, vaddr = count-1, vaddr+mm.PageSize {
		physAddr := m.removePTE(space, vaddr)
		m.frames.FreeFrame(mm.FrameFromAddress(physAddr))
	}
}

// addPTE maps virtAddr to physAddr in the supplied address space, allocating
// any missing intermediate tables. Each allocated table page is in turn
// mapped into the space's table window so the space can reach and later
// reclaim it; tablePage marks those recursive additions, which trigger a
// kernel fault once the window is exhausted. Mapping through a kernel-owned
// top level entry also triggers a kernel fault.
func (m *Manager) addPTE(space *AddressSpace, virtAddr, physAddr uintptr, flags pageTableEntry, tablePage bool) {
	if tablePage && virtAddr >= space.vterm {
		kernel.Fatal("vmm", kernel.VirtualSpaceExhausted)
	}

	var added [3]uintptr
	addedCount := 0

	pml4 := tableAt(space.root)
	l4 := tableIndex(virtAddr, pageLevelShiftL4)
	if pml4[l4] == 0 {
		tableAddr := m.frames.AllocPage().Address()
		added[addedCount] = tableAddr
		addedCount++
		pml4[l4] = pageTableEntry(tableAddr) | flagPresent | flagRW
	} else if pml4[l4].HasFlags(flagSystem) {
		// Only the top level needs the check; kernel subtrees are only
		// reachable through kernel-owned top level entries.
		kernel.Fatal("vmm", kernel.ImmutableSystemEntry)
	}

	pdp := tableAt(pml4[l4].Address())
	l3 := tableIndex(virtAddr, pageLevelShiftL3)
	if pdp[l3] == 0 {
		tableAddr := m.frames.AllocPage().Address()
		added[addedCount] = tableAddr
		addedCount++
		pdp[l3] = pageTableEntry(tableAddr) | flagPresent | flagRW
	}

	pd := tableAt(pdp[l3].Address())
	l2 := tableIndex(virtAddr, pageLevelShiftL2)
	if pd[l2] == 0 {
		tableAddr := m.frames.AllocPage().Address()
		added[addedCount] = tableAddr
		addedCount++
		pd[l2] = pageTableEntry(tableAddr) | flagPresent | flagRW
	}

	pt := tableAt(pd[l2].Address())
	pt[tableIndex(virtAddr, pageLevelShiftL1)] = pageTableEntry(physAddr) | flags

	for i := 0; i < addedCount; i++ {
		m.addPTE(space, space.vnext, added[i], flagPresent|flagRW, true)
		space.vnext += mm.PageSize
	}
}

// removePTE unmaps virtAddr from the supplied address space and returns the
// physical address it was mapped to. The caller must ensure the address is
// mapped with a 4 KiB entry. If the space is active the stale TLB entry is
// flushed.
func (m *Manager) removePTE(space *AddressSpace, virtAddr uintptr) uintptr {
	pml4 := tableAt(space.root)
	pdp := tableAt(pml4[tableIndex(virtAddr, pageLevelShiftL4)].Address())
	pd := tableAt(pdp[tableIndex(virtAddr, pageLevelShiftL3)].Address())
	pt := tableAt(pd[tableIndex(virtAddr, pageLevelShiftL2)].Address())

	l1 := tableIndex(virtAddr, pageLevelShiftL1)
	physAddr := pt[l1].Address()
	pt[l1] = 0

	if space == m.active {
		flushTLBEntryFn(virtAddr)
	}

	return physAddr
}

// freeTableFrames walks a table hierarchy returning allocated frames to the
// allocator. Only leaf entries release frames; table pages are reclaimed
// through their own leaf mappings in the space's table window.
func (m *Manager) freeTableFrames(table *pageTable, level int) {
	if level == 1 {
		for _, pte := range table {
			physAddr := pte.Address()
			if physAddr == 0 {
				continue
			}
			if m.frames.Allocated(physAddr) {
				m.frames.FreeFrame(mm.FrameFromAddress(physAddr))
			}
		}
		return
	}

	for _, pte := range table {
		if pte.HasFlags(flagSystem) {
			continue
		}
		physAddr := pte.Address()
		if physAddr == 0 {
			continue
		}
		m.freeTableFrames(tableAt(physAddr), level-1)
	}
}
