// File: interpose.go
// Brief: The single platform-specific seam a real interposer needs,
// kept behind a narrow interface so that non-interposer builds
// (library-native API only) link without it. This implementation has no
// dynamic loader to interpose on, so this package exists to name and
// test the seam rather than to implement a real one — locklib never
// calls through an interpose.Resolver, it calls its own primitives
// (channel semaphore, CAS spin loop, sync.RWMutex) directly.

package interpose

import (
	"fmt"
	"unsafe"
)

// Resolver looks up the host thread library's real entry point for name.
// A true interposer would implement this against the platform loader
// (dlsym/cgo); nothing in this module calls through a Resolver.
type Resolver interface {
	Resolve(name string) (unsafe.Pointer, error)
}

// StaticResolver is a Resolver that always fails, standing in for "no
// dynamic loader seam is available" builds. It satisfies the interface so
// code written against Resolver compiles and runs without a real
// interposer present.
type StaticResolver struct{}

// Resolve always returns a loader-failure error.
func (StaticResolver) Resolve(name string) (unsafe.Pointer, error) {
	return nil, fmt.Errorf("interpose: no dynamic loader seam available to resolve %q", name)
}
