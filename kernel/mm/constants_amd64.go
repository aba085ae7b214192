package mm

const (
	// PointerShift is equal to log2(unsafe.Sizeof(uintptr)). The pointer
	// size for this architecture is defined as (1 << PointerShift).
	PointerShift = uintptr(3)

	// PageShift is equal to log2(PageSize). This constant is used when we
	// need to convert a physical address to a page number (shift right by
	// PageShift) and vice-versa.
	PageShift = uintptr(12)

	// PageSize defines the system's page size in bytes.
	PageSize = uintptr(1 << PageShift)

	// PageShiftLarge is equal to log2(PageSizeLarge).
	PageShiftLarge = uintptr(21)

	// PageSizeLarge defines the size of a large (2 MiB) page.
	PageSizeLarge = uintptr(1 << PageShiftLarge)

	// PageShiftHuge is equal to log2(PageSizeHuge).
	PageShiftHuge = uintptr(30)

	// PageSizeHuge defines the size of a huge (1 GiB) page.
	PageSizeHuge = uintptr(1 << PageShiftHuge)

	// TableEntryCount is the number of entries in a page table page at
	// every level of the paging hierarchy.
	TableEntryCount = 512
)
