// Package fs abstracts the file operations used by the local blob store so
// that tests can inject I/O failures.
//
// LocalFS forwards to package os. FaultyFS wraps any FileSystem and fails
// writes, syncs, closes or renames on paths that contain a registered
// pattern:
//
//	ffs := fs.NewFaultyFS(nil)
//	ffs.AddRule("objects/", fs.Fault{FailAfterBytes: -1, FailOnSync: true})
package fs
