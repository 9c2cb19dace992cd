// File: addr.go
// Brief: The address-as-identity helper shared by every wrapper type in
// this package: each lock's opaque id is the address of a dedicated byte
// field embedded in its struct.

package locklib

import "unsafe"

// unsafePointerOf returns b's address. b is a struct field that exists
// solely to be addressed, never read or written, so its address is
// unique and stable for the lifetime of the enclosing wrapper value.
func unsafePointerOf(b *byte) unsafe.Pointer {
	return unsafe.Pointer(b)
}
