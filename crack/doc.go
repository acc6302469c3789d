// Package crack disconnects elements across a set of interior faces by
// duplicating the nodes on them. It is the inverse of merge.MergeNodes.
package crack
