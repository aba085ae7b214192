// Package pmap maintains the physical memory map: the kernel's merged view of
// every physical address range reported by the firmware and the boot loader
// together with the type of memory that backs it.
package pmap

import (
	"sort"

	"github.com/confucianzuoyuan/zyos/kernel/mm"
)

// MemType describes the class of memory that backs a physical region. The
// numeric values double as a priority: when two reports overlap, the region
// with the higher value describes the overlapping range.
type MemType uint32

const (
	// MemUsable memory is available to the frame allocator.
	MemUsable MemType = 1 + iota

	// MemReserved memory belongs to the firmware or the kernel image and
	// must never be handed out.
	MemReserved

	// MemACPI memory holds ACPI tables. It is reclaimable once the tables
	// have been parsed but is treated as off limits by the allocator.
	MemACPI

	// MemACPINonVolatile memory must be preserved across sleep states and
	// mapped with caching disabled.
	MemACPINonVolatile

	// MemBad memory failed the firmware's integrity checks.
	MemBad

	// MemUncached memory is backed by memory-mapped device registers and
	// must bypass the cache.
	MemUncached

	// MemUnmapped ranges receive no page table entries at all.
	MemUnmapped
)

var memTypeNames = []string{
	"usable",
	"reserved",
	"ACPI",
	"ACPI non-volatile",
	"bad",
	"uncached",
	"unmapped",
}

// String returns the human-readable name for a memory type.
func (t MemType) String() string {
	if t < MemUsable || t > MemUnmapped {
		return "unknown"
	}
	return memTypeNames[t-MemUsable]
}

// Region describes a contiguous range of physical memory sharing a single
// memory type.
type Region struct {
	Addr uint64
	Size uint64
	Type MemType
}

// Map is an ordered, non-overlapping list of physical memory regions. Maps
// start out as a pile of possibly conflicting firmware reports; every Add
// re-normalizes the contents so readers always observe a gap-free, sorted and
// consolidated view.
type Map struct {
	regions    []Region
	lastUsable uint64
}

// New returns an empty physical memory map.
func New() *Map {
	return &Map{}
}

// Boot returns a physical memory map pre-seeded with the regions every boot
// of this kernel claims regardless of what the firmware reports: the kernel
// image and boot loader data, the video RAM window and the null page.
func Boot() *Map {
	m := New()
	m.Add(0, uint64(mm.KernelImageEnd), MemReserved)
	m.Add(uint64(mm.VideoRAMBase), uint64(mm.VideoRAMSize), MemUncached)
	m.Add(0, uint64(mm.PageSize), MemUnmapped)
	return m
}

// Add records a physical memory region report and re-normalizes the map.
// Zero-sized reports are ignored. Where the new region overlaps existing
// entries the memory type with the higher value wins.
func (m *Map) Add(addr, size uint64, memType MemType) {
	if size == 0 {
		return
	}
	m.regions = append(m.regions, Region{Addr: addr, Size: size, Type: memType})
	m.normalize()
}

// Count returns the number of regions in the map.
func (m *Map) Count() int {
	return len(m.regions)
}

// Regions returns the normalized region list. Callers must treat the returned
// slice as read-only.
func (m *Map) Regions() []Region {
	return m.regions
}

// Visit invokes visitor for each region in ascending address order until the
// visitor returns false or the regions are exhausted.
func (m *Map) Visit(visitor func(*Region) bool) {
	for i := range m.regions {
		if !visitor(&m.regions[i]) {
			return
		}
	}
}

// LastUsable returns the first physical address beyond the highest usable
// region, or 0 if the map contains no usable memory. Physical memory above
// this address never enters the frame allocator.
func (m *Map) LastUsable() uint64 {
	return m.lastUsable
}

// normalize rebuilds the region list as a sorted, non-overlapping and
// gap-free sequence. Each address is assigned the highest memory type among
// the raw reports that cover it, holes between reports become reserved
// regions and adjacent regions of the same type are merged.
func (m *Map) normalize() {
	raw := m.regions[:0:0]
	for _, r := range m.regions {
		if r.Size != 0 {
			raw = append(raw, r)
		}
	}
	if len(raw) == 0 {
		m.regions = m.regions[:0]
		m.lastUsable = 0
		return
	}

	// Sweep the region boundaries in address order resolving each
	// elementary interval to the winning type.
	bounds := make([]uint64, 0, 2*len(raw))
	for _, r := range raw {
		bounds = append(bounds, r.Addr, r.Addr+r.Size)
	}
	bounds = append(bounds, 0)
	sort.Slice(bounds, func(i, j int) bool { return bounds[i] < bounds[j] })

	out := m.regions[:0]
	for i := 0; i < len(bounds)-1; i++ {
		start, end := bounds[i], bounds[i+1]
		if start == end {
			continue
		}

		var winner MemType
		for _, r := range raw {
			if r.Addr <= start && end <= r.Addr+r.Size && r.Type > winner {
				winner = r.Type
			}
		}
		// Holes not covered by any report default to reserved.
		if winner == 0 {
			winner = MemReserved
		}

		if last := len(out) - 1; last >= 0 && out[last].Type == winner {
			out[last].Size += end - start
			continue
		}
		out = append(out, Region{Addr: start, Size: end - start, Type: winner})
	}

	m.regions = out
	m.lastUsable = 0
	for _, r := range out {
		if r.Type == MemUsable {
			m.lastUsable = r.Addr + r.Size
		}
	}
}
