// Package bitset provides a fixed-size atomic bitset used as a node mask.
//
// Words are updated with atomic operations, so concurrent Set calls from
// worker goroutines are safe. Size never changes after New.
package bitset
