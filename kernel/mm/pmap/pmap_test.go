package pmap

import (
	"reflect"
	"testing"

	"github.com/confucianzuoyuan/zyos/kernel/mm"
)

const mb = uint64(1 << 20)

func TestAddResolvesOverlapsByType(t *testing.T) {
	specs := []struct {
		descr      string
		regions    []Region
		expRegions []Region
	}{
		{
			"higher type trims the tail of a lower region",
			[]Region{
				{0, 8 * mb, MemUsable},
				{4 * mb, 8 * mb, MemReserved},
			},
			[]Region{
				{0, 4 * mb, MemUsable},
				{4 * mb, 8 * mb, MemReserved},
			},
		},
		{
			"higher type trims the head of a lower region",
			[]Region{
				{4 * mb, 8 * mb, MemUsable},
				{0, 8 * mb, MemBad},
			},
			[]Region{
				{0, 8 * mb, MemBad},
				{8 * mb, 4 * mb, MemUsable},
			},
		},
		{
			"higher type splits a lower region in two",
			[]Region{
				{0, 12 * mb, MemUsable},
				{4 * mb, 4 * mb, MemACPI},
			},
			[]Region{
				{0, 4 * mb, MemUsable},
				{4 * mb, 4 * mb, MemACPI},
				{8 * mb, 4 * mb, MemUsable},
			},
		},
		{
			"higher type swallows a contained lower region",
			[]Region{
				{4 * mb, 4 * mb, MemUsable},
				{0, 12 * mb, MemUncached},
			},
			[]Region{
				{0, 12 * mb, MemUncached},
			},
		},
		{
			"lower type never displaces a higher one",
			[]Region{
				{0, 8 * mb, MemReserved},
				{0, 8 * mb, MemUsable},
			},
			[]Region{
				{0, 8 * mb, MemReserved},
			},
		},
		{
			"adjacent regions of the same type consolidate",
			[]Region{
				{0, 4 * mb, MemUsable},
				{4 * mb, 4 * mb, MemUsable},
			},
			[]Region{
				{0, 8 * mb, MemUsable},
			},
		},
	}

	for specIndex, spec := range specs {
		m := New()
		for _, r := range spec.regions {
			m.Add(r.Addr, r.Size, r.Type)
		}
		if got := m.Regions(); !reflect.DeepEqual(got, spec.expRegions) {
			t.Errorf("[spec %d] %s:\nexpected regions:\n%v\ngot:\n%v", specIndex, spec.descr, spec.expRegions, got)
		}
	}
}

func TestAddKeepsUncontestedUsableRegion(t *testing.T) {
	m := New()
	m.Add(4*mb, 4*mb, MemUsable)

	expRegions := []Region{
		{0, 4 * mb, MemReserved},
		{4 * mb, 4 * mb, MemUsable},
	}
	if got := m.Regions(); !reflect.DeepEqual(got, expRegions) {
		t.Fatalf("expected a lone usable report to keep its type:\nexpected:\n%v\ngot:\n%v", expRegions, got)
	}
	if got := m.LastUsable(); got != 8*mb {
		t.Fatalf("expected the last usable address to be 0x%x; got 0x%x", 8*mb, got)
	}
}

func TestAddFillsGapsWithReservedRegions(t *testing.T) {
	m := New()
	m.Add(4*mb, 4*mb, MemUsable)
	m.Add(16*mb, 4*mb, MemUsable)

	expRegions := []Region{
		{0, 4 * mb, MemReserved},
		{4 * mb, 4 * mb, MemUsable},
		{8 * mb, 8 * mb, MemReserved},
		{16 * mb, 4 * mb, MemUsable},
	}
	if got := m.Regions(); !reflect.DeepEqual(got, expRegions) {
		t.Fatalf("expected regions:\n%v\ngot:\n%v", expRegions, got)
	}
	if got := m.LastUsable(); got != 20*mb {
		t.Fatalf("expected the last usable address to be 0x%x; got 0x%x", 20*mb, got)
	}
}

func TestAddIsIdempotent(t *testing.T) {
	m := New()
	m.Add(0, 4*mb, MemReserved)
	m.Add(4*mb, 12*mb, MemUsable)

	exp := append([]Region(nil), m.Regions()...)
	m.Add(4*mb, 12*mb, MemUsable)

	if got := m.Regions(); !reflect.DeepEqual(got, exp) {
		t.Fatalf("expected a repeated report to leave the map unchanged:\nexpected:\n%v\ngot:\n%v", exp, got)
	}
}

func TestAddIgnoresEmptyRegions(t *testing.T) {
	m := New()
	m.Add(4*mb, 0, MemUsable)
	if got := m.Count(); got != 0 {
		t.Fatalf("expected an empty report to be dropped; got %d regions", got)
	}
}

func TestBootSeeds(t *testing.T) {
	m := Boot()

	videoEnd := uint64(mm.VideoRAMBase) + uint64(mm.VideoRAMSize)
	expRegions := []Region{
		{0, uint64(mm.PageSize), MemUnmapped},
		{uint64(mm.PageSize), uint64(mm.VideoRAMBase) - uint64(mm.PageSize), MemReserved},
		{uint64(mm.VideoRAMBase), uint64(mm.VideoRAMSize), MemUncached},
		{videoEnd, uint64(mm.KernelImageEnd) - videoEnd, MemReserved},
	}
	if got := m.Regions(); !reflect.DeepEqual(got, expRegions) {
		t.Fatalf("expected boot regions:\n%v\ngot:\n%v", expRegions, got)
	}
	if got := m.LastUsable(); got != 0 {
		t.Fatalf("expected no usable memory before the firmware reports any; got 0x%x", got)
	}
}

func TestBootWithFirmwareReports(t *testing.T) {
	m := Boot()
	m.Add(0, 64*mb, MemUsable)
	m.Add(32*mb, 4*mb, MemACPINonVolatile)

	if got := m.LastUsable(); got != 64*mb {
		t.Fatalf("expected the last usable address to be 0x%x; got 0x%x", 64*mb, got)
	}

	// The usable report must not displace any of the boot seeds.
	var unmapped, uncached bool
	m.Visit(func(r *Region) bool {
		switch {
		case r.Addr == 0 && r.Type == MemUnmapped:
			unmapped = true
		case r.Addr == uint64(mm.VideoRAMBase) && r.Type == MemUncached:
			uncached = true
		case r.Type == MemUsable && r.Addr < uint64(mm.KernelImageEnd):
			t.Fatalf("expected no usable region below the kernel image end; got one at 0x%x", r.Addr)
		}
		return true
	})
	if !unmapped || !uncached {
		t.Fatal("expected the null page and video RAM seeds to survive the firmware reports")
	}
}

func TestVisitEarlyExit(t *testing.T) {
	m := New()
	m.Add(0, 4*mb, MemReserved)
	m.Add(4*mb, 4*mb, MemUsable)

	var visited int
	m.Visit(func(*Region) bool {
		visited++
		return false
	})
	if visited != 1 {
		t.Fatalf("expected the visitor to run once; ran %d times", visited)
	}
}

func TestMemTypeStrings(t *testing.T) {
	seen := make(map[string]bool)
	for memType := MemUsable; memType <= MemUnmapped; memType++ {
		name := memType.String()
		if name == "unknown" || seen[name] {
			t.Errorf("expected a unique name for memory type %d; got %q", memType, name)
		}
		seen[name] = true
	}
	if got := MemType(0).String(); got != "unknown" {
		t.Errorf("expected \"unknown\"; got %q", got)
	}
	if got := MemType(42).String(); got != "unknown" {
		t.Errorf("expected \"unknown\"; got %q", got)
	}
}
