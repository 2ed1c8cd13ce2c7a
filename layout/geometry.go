// ABOUTME: Plain 2D geometry types for the decision map: points, rectangles, and the canvas viewport.
// ABOUTME: Rectangles are in screen space; ToCanvas converts them using the canvas origin and scroll offset.
package layout

// Point is a 2D coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is an element's bounding box.
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (r Rect) Right() float64   { return r.Left + r.Width }
func (r Rect) Bottom() float64  { return r.Top + r.Height }
func (r Rect) CenterY() float64 { return r.Top + r.Height/2 }

// Offset returns r moved by (dx, dy).
func (r Rect) Offset(dx, dy float64) Rect {
	r.Left += dx
	r.Top += dy
	return r
}

// Viewport describes the canvas element: its on-screen bounding box and how
// far its content is scrolled.
type Viewport struct {
	Origin     Rect    `json:"origin"`
	ScrollLeft float64 `json:"scrollLeft"`
	ScrollTop  float64 `json:"scrollTop"`
}

// ToCanvas converts a screen-space point into canvas content coordinates.
func (v Viewport) ToCanvas(p Point) Point {
	return Point{
		X: p.X - v.Origin.Left + v.ScrollLeft,
		Y: p.Y - v.Origin.Top + v.ScrollTop,
	}
}
