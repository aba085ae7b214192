// Package kmain drives early kernel boot: it assembles the physical memory
// map from the firmware reports and brings up the frame allocator and the
// kernel address space on top of it.
package kmain

import (
	"github.com/confucianzuoyuan/zyos/kernel"
	"github.com/confucianzuoyuan/zyos/kernel/kfmt"
	"github.com/confucianzuoyuan/zyos/kernel/mm/pmap"
	"github.com/confucianzuoyuan/zyos/kernel/mm/pmm"
	"github.com/confucianzuoyuan/zyos/kernel/mm/vmm"
)

// Firmware describes the physical memory layout the boot environment
// reports.
type Firmware interface {
	// VisitMemRegions invokes visitor for every physical memory range
	// the firmware reports until the visitor returns false.
	VisitMemRegions(visitor func(addr, size uint64, memType pmap.MemType) bool)
}

// MMIOReporter is implemented by firmware that also discovered device
// register windows (interrupt controllers, PCIe configuration space) during
// early boot. Reported windows are mapped with caching disabled.
type MMIOReporter interface {
	VisitMMIORegions(visitor func(addr, size uint64) bool)
}

// Memory bundles the initialized memory management subsystems.
type Memory struct {
	Map    *pmap.Map
	Frames *pmm.Allocator
	Spaces *vmm.Manager
}

// buildMemoryMap merges the kernel's own claims, the firmware memory
// reports and any discovered device windows into a normalized physical
// memory map and logs the result.
func buildMemoryMap(fw Firmware) *pmap.Map {
	memMap := pmap.Boot()

	fw.VisitMemRegions(func(addr, size uint64, memType pmap.MemType) bool {
		memMap.Add(addr, size, memType)
		return true
	})
	if mmio, ok := fw.(MMIOReporter); ok {
		mmio.VisitMMIORegions(func(addr, size uint64) bool {
			memMap.Add(addr, size, pmap.MemUncached)
			return true
		})
	}

	kfmt.Printf("[kmain] physical memory map:\n")
	memMap.Visit(func(r *pmap.Region) bool {
		kfmt.Printf("  0x%16x - 0x%16x  %s\n", r.Addr, r.Addr+r.Size-1, r.Type.String())
		return true
	})

	return memMap
}

// InitMemory builds the physical memory map from the firmware reports and
// the kernel's own claims, then initializes the frame allocator and the
// kernel address space in that order.
func InitMemory(fw Firmware) *Memory {
	mem := &Memory{
		Map:    buildMemoryMap(fw),
		Frames: &pmm.Allocator{},
		Spaces: &vmm.Manager{},
	}
	mem.Frames.Init(mem.Map)
	kfmt.Printf("[kmain] frame allocator ready: %d of %d frames free\n",
		mem.Frames.Available(), mem.Frames.TotalUsable())

	mem.Spaces.Init(mem.Map, mem.Frames)
	kfmt.Printf("[kmain] kernel address space active, root at 0x%x\n",
		mem.Spaces.KernelSpace().Root())

	return mem
}

// Kmain is the kernel entry point invoked once the boot loader has set up
// the identity mappings and deposited its tables in low memory. Any fault
// raised while the memory subsystem comes up halts the machine. Kmain never
// returns.
func Kmain(fw Firmware) {
	defer func() {
		if err := recover(); err != nil {
			kernel.Halt(err)
		}
	}()

	InitMemory(fw)

	kernel.Halt("boot sequence complete")
}
