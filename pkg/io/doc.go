// Package io provides JSON import and export for subgraph views.
//
// # Overview
//
// A [view.View] is the boundary between seqtower and the tools that draw or
// bookmark a neighborhood. This package writes it as plain JSON so those
// tools need no Go code, and reads it back for re-rendering.
//
// # JSON Format
//
//	{
//	  "center": 1,
//	  "radius": 5,
//	  "genomes": ["ref", "alt"],
//	  "layers": [
//	    {"depth": 0, "nodes": [{"id": 1, "length": 4, "genomes": [0, 1]}]},
//	    {"depth": 1, "nodes": [{"id": -1, "kind": "snp", "length": 1, "genomes": [0, 1],
//	                            "entry": 1, "exit": 4, "members": [2, 3]}]},
//	    {"depth": 2, "nodes": [{"id": 4, "length": 4, "genomes": [0, 1]}]}
//	  ],
//	  "edges": [{"from": 1, "to": -1}, {"from": -1, "to": 4}]
//	}
//
// Segment nodes omit "kind". Bubble nodes have kind "snp", a negative id,
// and list the segments they replace.
//
// # Import
//
// [ReadJSON] and [ImportJSON] validate the structure: node ids are unique,
// edges reference known nodes, and bubble nodes name at least two members.
// Violations are reported with code INVALID_INPUT.
package io
