// Package pkg provides the core libraries for seqtower, a browser for genome
// variation graphs.
//
// # Overview
//
// A variation graph stores the segments shared by a set of genomes once and
// links them in the order each genome walks through them. seqtower parses
// such graphs from GFA files, keeps the segment sequences in an on-disk store
// so that re-opening a large graph is cheap, and lays out the neighbourhood of
// a segment as horizontal layers, folding SNP bubbles into single nodes.
//
// # Architecture
//
// The typical data flow:
//
//	GFA file
//	   ↓
//	[gfa] package (parse segments and links)        → [store] (sequences)
//	   ↓
//	[graph] package (segments, links, roots, genomes)
//	   ↓
//	[subgraph] package (bounded neighbourhood of a center)
//	   ↓
//	[transform] package (topological order, layers, SNP bubbles)
//	   ↓
//	[view] package (layered view)
//	   ↓
//	[io] JSON, [render] DOT/SVG, [server] HTTP
//
// [session] ties a graph file to its store and owns the open/commit/rollback
// lifecycle; the CLI and the HTTP server both start from a session.
//
// # Quick Start
//
//	sess, err := session.Open(ctx, "chr1.gfa", session.Options{})
//	if err != nil {
//	    return err
//	}
//	defer sess.Close()
//
//	v, err := sess.View(1200, 5, true)
//	if err != nil {
//	    return err
//	}
//	svg, err := render.RenderSVG(ctx, render.ToDOT(v, render.Options{}))
//
// # Testing
//
//	go test ./pkg/...
//	go test -run Example ./pkg/transform
package pkg
