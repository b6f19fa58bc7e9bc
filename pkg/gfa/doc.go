// Package gfa parses the line-oriented graph exchange format into a
// [graph.Graph], writing sequence data into a [store.Store] as it goes.
//
// # Format
//
// One record per line, fields separated by tabs or runs of whitespace:
//
//	H	<free text>                               header, logged only
//	S	<id>	<sequence>	[tags...]          segment
//	L	<from>	<orient>	<to>	[orient overlap tags...]  link
//
// Ids are positive integers. A sequence of "*" is stored as empty. The
// optional ORI:Z:name1;name2 tag lists the genomes traversing a segment or
// link; on a header it pre-registers genome names in file order.
//
// Links may reference segments that are defined later in the file. Such
// endpoints are created as placeholders and filled in when their S record
// arrives. Placeholders that are never defined end up with an empty sequence.
//
// Empty lines are skipped. Any other record type, a missing field, a
// non-numeric id, or a second S record for the same id is fatal: [Parse]
// stops at that line and returns a [*ParseError] naming it.
//
// # Cached stores
//
// When the store already holds the sequences of this file (a previous parse
// was committed), set [Options.SkipSequences]. The topology is still rebuilt
// from the file; only the sequence copy is skipped.
package gfa
