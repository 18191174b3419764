// Package realtime maps fixed-size audio blocks onto synthesis calls.
//
// Two reconcilers are provided. Crossfader converts each block together
// with the tail of the previous one and blends the overlap. ChunkStore
// accumulates input, converts only completed speech segments and emits
// output by compressing silence so that it keeps pace with the input.
//
// A reconciler belongs to exactly one stream. Process must not be called
// concurrently, and every call returns a block of the same length as its
// input.
package realtime
