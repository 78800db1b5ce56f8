// Package treemap computes squarified treemap layouts.
//
// A treemap assigns each weighted item a rectangle whose area is proportional
// to the item's share of the total weight. The squarified variant (Bruls,
// Huizing and van Wijk) packs items into strips along the short side of the
// remaining space and closes a strip as soon as adding another item would make
// its most elongated cell worse, keeping cells close to square.
//
// # Usage
//
//	items := []treemap.Item[string]{
//	    {Weight: 3, Data: "AAPL"},
//	    {Weight: 1, Data: "MSFT"},
//	}
//	cells := treemap.Squarify(items, 400, 200)
//	// cells[0]: {X:0 Y:0 W:300 H:200} AAPL
//	// cells[1]: {X:300 Y:0 W:100 H:200} MSFT
//
// For loosely typed input (decoded JSON objects) use [SquarifyRecords], which
// echoes every field of each record and adds "x", "y", "w" and "h".
//
// # Ordering
//
// Cells are returned largest first, not in input order. Ties keep their input
// order. Each [Cell] carries the position of its item in the input slice as
// Index, which is the key to use when results must be matched back to the
// caller's data.
//
// When the total weight is not positive every item receives a zero rectangle
// and the input order is kept.
//
// # Degenerate Input
//
// Squarify never fails. Negative weights are treated as zero, a non-positive
// total produces zero rectangles, and a container with zero or negative extent
// produces degenerate geometry through the same arithmetic. Callers that want
// to reject such input validate it before calling (see pkg/errors).
//
// The package holds no state; concurrent calls are safe.
package treemap
