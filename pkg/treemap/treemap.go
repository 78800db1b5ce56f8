package treemap

import "math"

// Rect is an axis-aligned rectangle. X and Y locate the top-left corner.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Area returns W × H.
func (r Rect) Area() float64 { return r.W * r.H }

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.W }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.H }

// CenterX returns the horizontal center.
func (r Rect) CenterX() float64 { return r.X + r.W/2 }

// CenterY returns the vertical center.
func (r Rect) CenterY() float64 { return r.Y + r.H/2 }

// AspectRatio returns max(W/H, H/W), which is 1 for a square.
// Rectangles without area report +Inf.
func (r Rect) AspectRatio() float64 {
	if r.W <= 0 || r.H <= 0 {
		return math.Inf(1)
	}
	return math.Max(r.W/r.H, r.H/r.W)
}

// Item is a weighted input to [Squarify]. Data is carried through unchanged.
type Item[T any] struct {
	Weight float64 `json:"weight"`
	Data   T       `json:"data"`
}

// Cell is a laid-out item: its rectangle, the original item, and the item's
// position in the input slice.
type Cell[T any] struct {
	Rect
	Item[T]
	Index int `json:"index"`
}
