// Package graph provides the serialization format of a flowpen graph.
//
// A [Manifest] is the unit that is restored into and exported from an
// engine store: graph metadata (id, name, author), the element map, the
// opaque solution payload produced by the external solver, and references
// to derived files.
//
// # Manifest Serialization
//
//	{
//	  "id": "0f8fad5b-...",
//	  "name": "twisty tower",
//	  "author": {"name": "ada", "id": "u-1"},
//	  "graph": {
//	    "elements": {"<id>": {"id": "<id>", "template": {...}, "current": {...}}},
//	    "solution": {}
//	  },
//	  "files": {}
//	}
//
// Common operations:
//
//	m, _ := graph.ReadManifestFile("graph.json")  // File → Manifest
//	graph.WriteManifestFile(m, "out.json")        // Manifest → File
//	data, _ := graph.MarshalManifest(m)           // Manifest → []byte
//	bin, _ := graph.MarshalSnapshot(m)            // Manifest → BSON
//
// The binary snapshot is a BSON document with the same field layout as the
// JSON form. The persistence job stores it next to the JSON so consumers that
// speak BSON natively (the revision database, the solver) need not re-parse.
package graph
