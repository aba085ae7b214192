package kernel

// FatalKind enumerates the unrecoverable invariant violations that the memory
// subsystem can detect. These are programmer or environment errors, not
// expected runtime conditions; none of them is ever surfaced as a return
// value.
type FatalKind uint8

const (
	// FrameExhausted indicates that the frame allocator has no available
	// physical frame left to satisfy an allocation.
	FrameExhausted FatalKind = iota

	// NoUsableMemory indicates that the region map reports no usable
	// memory, or that no usable region is large enough to host the frame
	// database during allocator initialization.
	NoUsableMemory

	// MisalignedSize indicates that an address space was created with a
	// size that is not a multiple of the page size.
	MisalignedSize

	// InvalidSpace indicates that destroy or activate was called on an
	// address space with no root table (never created or already
	// destroyed).
	InvalidSpace

	// InvalidFrameState indicates an attempt to free a frame that is not
	// currently allocated.
	InvalidFrameState

	// ImmutableSystemEntry indicates an attempt to modify a top-level page
	// table entry that belongs to the shared kernel sub-tree.
	ImmutableSystemEntry

	// VirtualSpaceExhausted indicates that growing a page table would
	// advance its allocation cursor past the configured limit of the
	// address space.
	VirtualSpaceExhausted
)

var fatalKindNames = [...]string{
	"frame allocator exhausted",
	"no usable memory",
	"size is not a multiple of the page size",
	"address space has no root table",
	"frame is not allocated",
	"system page table entries are immutable",
	"virtual address space exhausted",
}

// String returns a human readable description for a fatal kind.
func (k FatalKind) String() string {
	if int(k) >= len(fatalKindNames) {
		return "unknown"
	}
	return fatalKindNames[k]
}

// FatalError is the panic value produced by Fatal. A hosted test harness can
// recover a *FatalError and assert on its Kind; the bare-metal boot path
// routes it into Halt instead.
type FatalError struct {
	// Kind identifies the violated invariant.
	Kind FatalKind

	// Module is the subsystem that detected the violation.
	Module string
}

// Error implements the error interface.
func (e *FatalError) Error() string {
	return e.Kind.String()
}

// Fatal reports an unrecoverable invariant violation. It never returns: the
// kernel is defined to stop immediately with no unwind, retry or partial
// state cleanup.
func Fatal(module string, kind FatalKind) {
	panic(&FatalError{Kind: kind, Module: module})
}
