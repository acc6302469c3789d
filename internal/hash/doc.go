// Package hash provides the CRC32-Castagnoli checksum that guards encoded
// mesh frames against bit rot and truncation. The standard library uses the
// SSE4.2 and ARM CRC instructions for this polynomial when they exist.
//
//	sum := hash.CRC32C(body)
//	ok := hash.Verify(body, sum)
package hash
