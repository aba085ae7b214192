package kernel

import (
	"github.com/confucianzuoyuan/zyos/kernel/cpu"
	"github.com/confucianzuoyuan/zyos/kernel/kfmt"
)

var (
	// cpuHaltFn is mocked by tests and is automatically inlined by the compiler.
	cpuHaltFn = cpu.Halt
)

// Halt outputs the supplied error to the active output sink and halts the
// CPU. Calls to Halt never return. The boot path installs it as a deferred
// recover target so that a Fatal raised anywhere in the memory subsystem
// stops the machine:
//
//	defer func() {
//		if err := recover(); err != nil {
//			kernel.Halt(err)
//		}
//	}()
func Halt(e interface{}) {
	kfmt.Printf("\n-----------------------------------\n")
	switch t := e.(type) {
	case *FatalError:
		kfmt.Printf("[%s] unrecoverable error: %s\n", t.Module, t.Kind.String())
	case *Error:
		kfmt.Printf("[%s] unrecoverable error: %s\n", t.Module, t.Message)
	case error:
		kfmt.Printf("unrecoverable error: %s\n", t.Error())
	case string:
		kfmt.Printf("unrecoverable error: %s\n", t)
	}
	kfmt.Printf("*** kernel halted ***\n")

	cpuHaltFn()
}
