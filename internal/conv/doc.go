// Package conv provides checked integer conversions.
//
// Element and node indices are Go ints; roaring bitmaps and the wire format
// use fixed-width unsigned integers. These helpers reject values that do not
// fit instead of wrapping.
package conv
