// Package substrate provides the parallel substrate diapasom trains over:
// rank identity, collective operations (broadcast, all-sum, all-max), and
// symmetric memory that collectives can read from or write into.
//
// The concrete transport is chosen at compile time via build tags, not at
// runtime:
//
//   - no tag (default): serial, single rank.
//   - "mp": an in-process message-passing group, ranks are goroutines that
//     exchange copies of data across a shared barrier.
//   - "shm": an in-process one-sided group, ranks are goroutines that share
//     a single anonymous mmap arena and write into it directly.
//
// Every collective is blocking and must be called by every rank in the
// group, in the same order, with arguments of the same shape. Skipping a
// call on any rank deadlocks the group; this package does not attempt to
// detect that case.
package substrate
