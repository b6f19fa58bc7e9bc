// Package graph provides the variation graph: segments of DNA sequence
// connected by links, each traversed by a subset of named genomes.
//
// # Overview
//
// A [Graph] is an arena of [Segment] values indexed by positive integer id.
// Adjacency is stored as id lists on both endpoints, and every [Link] carries
// the set of genome indices that traverse it. Sequences are not held in
// memory: the graph keeps a [store.Store] handle and reads sequence data
// through it on demand.
//
// # Roots
//
// The graph maintains its root set incrementally. A segment is a root iff
// none of its recorded parents is present in the graph. Every mutation
// ([Graph.AddNode], [Graph.AddLink]) rechecks only the segments whose status
// could have changed, so the invariant holds after each call and not just at
// the end of a parse.
//
// # Genomes
//
// Genome names are registered once and assigned monotonic indices by the
// store. Membership is kept in [bitset.BitSet] values on segments and links.
// After the graph is complete, [Graph.BuildGenomeIndex] walks each genome's
// path and builds a coordinate index so that [Genome.SegmentAt] answers
// "which segment holds base-pair X" in O(log n).
//
// # Concurrency
//
// A Graph is written by a single goroutine (the parser). Once built it is
// read-mostly and may be queried from many goroutines, as long as nothing
// mutates it concurrently.
//
// [bitset.BitSet]: https://pkg.go.dev/github.com/bits-and-blooms/bitset#BitSet
package graph
