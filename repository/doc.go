// Package repository keeps content-addressed mesh snapshots in a blob store.
//
// Save encodes a mesh into a compressed codec frame and stores it under the
// blake2b hash of the frame, so identical snapshots are stored once. Tags
// give snapshots stable names. Decoded documents are kept in an ARC cache;
// every Load still returns a freshly built, exclusively owned mesh.
//
// Layout inside the store:
//
//	objects/<ref>   encoded frames
//	refs/<tag>      the ref a tag points to
package repository
