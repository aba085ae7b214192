// Package pmm implements the physical frame allocator. It tracks every frame
// below the memory map's last usable address through a frame database: an
// array of fixed-size descriptors carved out of the first usable region large
// enough to hold it.
package pmm

import (
	"unsafe"

	"github.com/confucianzuoyuan/zyos/kernel"
	"github.com/confucianzuoyuan/zyos/kernel/mm"
	"github.com/confucianzuoyuan/zyos/kernel/mm/pmap"
)

// Frame states. The zero value is reserved so a zeroed database record never
// reads as available.
const (
	frameStateReserved uint8 = iota
	frameStateAvailable
	frameStateAllocated
)

// invalidIndex marks the ends of the free list.
const invalidIndex = ^uint32(0)

// frameDesc is the per-frame bookkeeping record. Its size is fixed at 32
// bytes so the database size and the descriptor offsets stay stable across
// compiler versions.
type frameDesc struct {
	prev       uint32
	next       uint32
	refcount   uint16
	sharecount uint16
	flags      uint16
	state      uint8
	_          uint8
	_          [16]byte
}

// Allocator hands out physical page frames in constant time using an
// intrusive doubly-linked free list threaded through the frame database.
type Allocator struct {
	frames []frameDesc

	head  uint32
	tail  uint32
	avail uint32
	total uint32
}

// Init sizes the frame database off the supplied memory map, reserves
// physical memory for it and threads the free list through every usable
// frame. The database reservation is recorded back into the map so later
// readers see it as reserved memory.
//
// Init triggers a kernel fault if the map contains no usable memory or no
// usable region can hold the database.
func (a *Allocator) Init(m *pmap.Map) {
	lastUsable := m.LastUsable()
	if lastUsable == 0 {
		kernel.Fatal("pmm", kernel.NoUsableMemory)
	}

	frameCount := uint64(lastUsable) >> mm.PageShift
	dbSize := alignUp(frameCount*uint64(unsafe.Sizeof(frameDesc{})), uint64(mm.PageSizeLarge))

	var dbAddr uint64
	found := false
	m.Visit(func(r *pmap.Region) bool {
		if r.Type != pmap.MemUsable {
			return true
		}
		addr := alignUp(r.Addr, uint64(mm.PageSizeLarge))
		if addr+dbSize <= r.Addr+r.Size {
			dbAddr, found = addr, true
			return false
		}
		return true
	})
	if !found {
		kernel.Fatal("pmm", kernel.NoUsableMemory)
	}

	m.Add(dbAddr, dbSize, pmap.MemReserved)

	a.frames = unsafe.Slice((*frameDesc)(mm.PhysPtr(uintptr(dbAddr))), frameCount)
	a.head = invalidIndex
	a.tail = invalidIndex
	a.avail = 0
	a.total = 0

	for i := range a.frames {
		a.frames[i] = frameDesc{prev: invalidIndex, next: invalidIndex, state: frameStateReserved}
	}

	m.Visit(func(r *pmap.Region) bool {
		if r.Type != pmap.MemUsable {
			return true
		}
		for addr := r.Addr; addr < r.Addr+r.Size; addr += uint64(mm.PageSize) {
			a.pushTail(uint32(addr >> mm.PageShift))
		}
		return true
	})
	a.total = a.avail
}

// AllocFrame reserves the frame at the head of the free list and returns it
// with its contents unchanged. It triggers a kernel fault if no free frames
// remain.
func (a *Allocator) AllocFrame() mm.Frame {
	if a.head == invalidIndex {
		kernel.Fatal("pmm", kernel.FrameExhausted)
	}

	index := a.head
	a.unlink(index)

	a.frames[index] = frameDesc{prev: invalidIndex, next: invalidIndex}
	a.frames[index].state = frameStateAllocated
	a.frames[index].refcount = 1
	a.avail--

	return mm.Frame(index)
}

// AllocPage reserves a frame and zeroes its contents.
func (a *Allocator) AllocPage() mm.Frame {
	frame := a.AllocFrame()
	mm.PhysZero(frame.Address(), mm.Size(mm.PageSize))
	return frame
}

// FreeFrame drops one reference to an allocated frame. The frame returns to
// the head of the free list once its last reference is gone. Freeing a frame
// that is not allocated triggers a kernel fault.
func (a *Allocator) FreeFrame(frame mm.Frame) {
	index := uint32(frame)
	if uint64(frame) >= uint64(len(a.frames)) || a.frames[index].state != frameStateAllocated {
		kernel.Fatal("pmm", kernel.InvalidFrameState)
	}

	a.frames[index].refcount--
	if a.frames[index].refcount > 0 {
		return
	}

	a.frames[index].state = frameStateAvailable
	a.pushHead(index)
}

// FreePage is an alias for FreeFrame kept for symmetry with AllocPage.
func (a *Allocator) FreePage(frame mm.Frame) {
	a.FreeFrame(frame)
}

// Retain adds a reference to an allocated frame. Retaining a frame that is
// not allocated triggers a kernel fault.
func (a *Allocator) Retain(frame mm.Frame) {
	index := uint32(frame)
	if uint64(frame) >= uint64(len(a.frames)) || a.frames[index].state != frameStateAllocated {
		kernel.Fatal("pmm", kernel.InvalidFrameState)
	}
	a.frames[index].refcount++
}

// Allocated returns true if the frame containing physAddr is tracked by the
// database and currently allocated.
func (a *Allocator) Allocated(physAddr uintptr) bool {
	index := uint64(physAddr) >> mm.PageShift
	return index < uint64(len(a.frames)) && a.frames[index].state == frameStateAllocated
}

// Available returns the number of frames on the free list.
func (a *Allocator) Available() uint32 {
	return a.avail
}

// TotalUsable returns the number of frames threaded into the free list when
// the allocator was initialized.
func (a *Allocator) TotalUsable() uint32 {
	return a.total
}

func (a *Allocator) pushHead(index uint32) {
	a.frames[index].prev = invalidIndex
	a.frames[index].next = a.head
	if a.head != invalidIndex {
		a.frames[a.head].prev = index
	} else {
		a.tail = index
	}
	a.head = index
	a.avail++
}

func (a *Allocator) pushTail(index uint32) {
	a.frames[index].prev = a.tail
	a.frames[index].next = invalidIndex
	a.frames[index].state = frameStateAvailable
	if a.tail != invalidIndex {
		a.frames[a.tail].next = index
	} else {
		a.head = index
	}
	a.tail = index
	a.avail++
}

func (a *Allocator) unlink(index uint32) {
	prev, next := a.frames[index].prev, a.frames[index].next
	if prev != invalidIndex {
		a.frames[prev].next = next
	} else {
		a.head = next
	}
	if next != invalidIndex {
		a.frames[next].prev = prev
	} else {
		a.tail = prev
	}
}

func alignUp(value, align uint64) uint64 {
	return (value + align - 1) &^ (align - 1)
}
