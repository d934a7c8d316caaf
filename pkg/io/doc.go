// Package io reads and writes number-line datasets.
//
// # Formats
//
// A dataset is an ordered list of items. Four encodings are supported and
// selected by file extension (see [FormatFromPath]):
//
// JSON (.json):
//
//	{
//	  "items": [
//	    {"id": "a", "label": "Boiling point", "value": 100},
//	    {"id": "b", "label": "Body temperature", "value": 37}
//	  ]
//	}
//
// A bare JSON array of items is accepted on input as well.
//
// YAML (.yaml, .yml):
//
//	items:
//	  - id: a
//	    label: Boiling point
//	    value: 100
//
// TOML (.toml):
//
//	[[items]]
//	id = "a"
//	label = "Boiling point"
//	value = 100
//
// CSV (.csv) with a header row naming the id, label and value columns in any
// order:
//
//	id,label,value
//	a,Boiling point,100
//
// # Import
//
// Use [Read] to decode from any io.Reader, or [Import] to read a file from an
// afero filesystem:
//
//	items, err := io.Import(afero.NewOsFs(), "points.yaml")
//
// Decoding failures return INVALID_FORMAT errors. Item contents (empty labels,
// duplicate IDs) are not checked here; the item builder and the repositories
// validate them.
//
// # Export
//
// [Write] and [Export] are the inverses. Item order is preserved in every
// format, so a dataset survives an import/export round trip unchanged.
package io
