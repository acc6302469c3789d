// Package spatial provides R-tree backed point and box indexes and an
// element locator built on them.
package spatial
