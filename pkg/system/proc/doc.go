// Package proc provides read-only access to the Linux proc pseudo-filesystem
// for the sampler: the kernel-wide statistics file and each process's raw
// scheduler statistics line.
//
// Overview
//
//   - Source interface:
//     OpenSnapshot(path string) (io.ReadCloser, error)
//     ListEntries(root string) ([]string, error)
//     ReadStat(root, id string) (string, error)
//
//     The sampler depends only on Source, so tests can feed fixtures without
//     touching /proc. FS is the implementation backed by the OS.
//
//   - PID filtering:
//     IsPID accepts names made of decimal digits only. /proc also contains
//     "self", "thread-self", "sys", "irq" and friends; those are skipped by
//     the caller, not by ListEntries.
//
//   - Errors (errs.go):
//     ErrRootOpen : the proc root cannot be listed
//     ErrStatOpen : <root>/<pid>/stat cannot be opened (process gone)
//     ErrStatRead : <root>/<pid>/stat opened but the read failed
//
// Ordering
//
// ListEntries returns entries in directory order as the kernel produced them.
// For /proc this is ascending PID order in practice, but nothing guarantees
// it; callers that need determinism sort numerically.
//
// Lines are returned verbatim. Nothing in this package parses the stat
// record: the second field (comm) can contain spaces and parentheses, and
// downstream tooling is expected to deal with that.
//
// Example
//
//	/*
//	src := proc.NewFS()
//	names, err := src.ListEntries(proc.DefaultRoot)
//	if err != nil { log.Fatal(err) }
//	for _, n := range names {
//	    if !proc.IsPID(n) { continue }
//	    line, err := src.ReadStat(proc.DefaultRoot, n)
//	    if errors.Is(err, proc.ErrStatOpen) { continue }
//	    fmt.Println(n, line)
//	}
//	*/
//
// Package import path: github.com/ja7ad/mibtop/pkg/system/proc
package proc
