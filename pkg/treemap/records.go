package treemap

import (
	"encoding/json"
	"maps"
	"strconv"
)

// Record is a loosely typed item, typically a decoded JSON object.
type Record map[string]any

// Keys added to every record returned by [SquarifyRecords].
const (
	KeyX = "x"
	KeyY = "y"
	KeyW = "w"
	KeyH = "h"
)

// SquarifyRecords lays out records weighted by the numeric field weightKey.
//
// Every returned record is a copy of an input record with "x", "y", "w" and
// "h" set; existing fields with those names are overwritten. The input records
// are not modified. Records whose weight field is missing or not numeric weigh
// zero. Ordering follows [Squarify].
func SquarifyRecords(records []Record, weightKey string, width, height float64) []Record {
	items := make([]Item[Record], len(records))
	for i, r := range records {
		w, _ := Number(r[weightKey])
		items[i] = Item[Record]{Weight: w, Data: r}
	}

	cells := Squarify(items, width, height)
	out := make([]Record, len(cells))
	for i, c := range cells {
		rec := make(Record, len(c.Data)+4)
		maps.Copy(rec, c.Data)
		rec[KeyX] = c.X
		rec[KeyY] = c.Y
		rec[KeyW] = c.W
		rec[KeyH] = c.H
		out[i] = rec
	}
	return out
}

// Number converts the numeric representations produced by encoding/json,
// TOML and spreadsheet decoders to float64. Numeric strings are accepted.
func Number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		return 0, false
	}
}
