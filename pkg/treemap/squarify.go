package treemap

import (
	"cmp"
	"math"
	"slices"
)

// sized pairs a normalized area with the input position it came from.
type sized struct {
	area  float64
	index int
}

// Squarify lays out items inside a width × height container and returns one
// cell per item, largest area first.
//
// Each cell's area is weight/total × width × height. Output order is not input
// order: use Cell.Index to re-associate results. If the total weight is not
// positive, every cell is the zero rectangle and input order is preserved.
// Otherwise negative weights are laid out as zero. The returned slice is
// never nil.
func Squarify[T any](items []Item[T], width, height float64) []Cell[T] {
	cells := make([]Cell[T], 0, len(items))
	if len(items) == 0 {
		return cells
	}

	var sum, total float64
	for _, it := range items {
		if !math.IsNaN(it.Weight) {
			sum += it.Weight
		}
		total += clampWeight(it.Weight)
	}
	if !(sum > 0) {
		for i, it := range items {
			cells = append(cells, Cell[T]{Item: it, Index: i})
		}
		return cells
	}

	totalArea := width * height
	order := make([]sized, len(items))
	for i, it := range items {
		order[i] = sized{area: clampWeight(it.Weight) / total * totalArea, index: i}
	}
	slices.SortStableFunc(order, func(a, b sized) int {
		return cmp.Compare(b.area, a.area)
	})

	areas := make([]float64, len(order))
	for i, s := range order {
		areas[i] = s.area
	}

	rects := pack(areas, Rect{W: width, H: height})
	for i, s := range order {
		cells = append(cells, Cell[T]{Rect: rects[i], Item: items[s.index], Index: s.index})
	}
	return cells
}

func clampWeight(w float64) float64 {
	if !(w > 0) {
		return 0
	}
	return w
}

// pack places areas (sorted descending) into bounds, one strip per iteration,
// and returns one rectangle per area in the same order.
func pack(areas []float64, bounds Rect) []Rect {
	rects := make([]Rect, 0, len(areas))
	free := bounds

	for start := 0; start < len(areas); {
		if len(areas)-start == 1 {
			rects = append(rects, free)
			break
		}

		side := math.Min(free.W, free.H)
		end := start + 1
		sum := areas[start]
		for end < len(areas) {
			grown := sum + areas[end]
			if worstRatio(areas[start:end+1], grown, side) > worstRatio(areas[start:end], sum, side) {
				break
			}
			sum = grown
			end++
		}

		var row []Rect
		row, free = layoutRow(areas[start:end], sum, free)
		rects = append(rects, row...)
		start = end
	}
	return rects
}

// worstRatio scores a candidate strip against the side it is laid along:
// the largest max(side²·r/s², s²/(side²·r)) over its areas r with sum s.
// A strip with no area never wins.
func worstRatio(row []float64, sum, side float64) float64 {
	if sum == 0 {
		return math.Inf(1)
	}
	s2 := sum * sum
	w2 := side * side
	worst := math.Inf(-1)
	for _, r := range row {
		worst = math.Max(worst, math.Max(w2*r/s2, s2/(w2*r)))
	}
	return worst
}

// layoutRow cuts a strip of total area sum off the short side of free and
// splits it among row. It returns the row's rectangles and what is left of free.
//
// When free is at least as wide as it is tall the strip runs down the left
// edge and its cells stack top to bottom; otherwise it runs along the top edge
// and its cells go left to right.
func layoutRow(row []float64, sum float64, free Rect) ([]Rect, Rect) {
	side := math.Min(free.W, free.H)
	var thickness float64
	if side != 0 {
		thickness = sum / side
	}

	rects := make([]Rect, 0, len(row))
	var offset float64
	vertical := free.H <= free.W
	for _, a := range row {
		var span float64
		if thickness != 0 {
			span = a / thickness
		}
		if vertical {
			rects = append(rects, Rect{X: free.X, Y: free.Y + offset, W: thickness, H: span})
		} else {
			rects = append(rects, Rect{X: free.X + offset, Y: free.Y, W: span, H: thickness})
		}
		offset += span
	}

	if vertical {
		return rects, Rect{X: free.X + thickness, Y: free.Y, W: free.W - thickness, H: free.H}
	}
	return rects, Rect{X: free.X, Y: free.Y + thickness, W: free.W, H: free.H - thickness}
}
