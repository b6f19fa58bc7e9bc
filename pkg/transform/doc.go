// Package transform orders and simplifies subgraphs for display.
//
// # Ordering
//
// [Sort] produces a deterministic topological order of a subgraph: every
// member's in-subgraph parents come before it. [AssignLayers] groups that
// order into depth-indexed layers where each node sits one layer below its
// deepest parent. [Layers] runs both.
//
// The format is assumed acyclic. A cycle is not repaired: Sort fails with
// code CYCLE_DETECTED and the caller decides what to do.
//
// # SNP bubbles
//
// A SNP bubble is a set of parallel single-segment paths between one entry
// and one exit segment whose sequences have equal length but differ in
// content. [DetectSNP] checks one candidate set; [FindBubbles] scans a whole
// subgraph. Bubbles are view-level values and never change the graph.
package transform
