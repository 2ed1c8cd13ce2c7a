// ABOUTME: NodeDrag tracks a decision node being dragged across the canvas.
// ABOUTME: Positions are pointer minus grab offset, in canvas space, clamped to non-negative integers.
package layout

import "math"

// NodeDrag is one in-flight drag of a decision node.
type NodeDrag struct {
	ID      string
	Offset  Point
	X, Y    int
	started bool
}

// BeginNodeDrag records where inside the node the pointer grabbed it.
// node is the node's current on-screen rect; until the first Move the
// position stays where the node already is.
func BeginNodeDrag(id string, pointer Point, node Rect, vp Viewport) *NodeDrag {
	d := &NodeDrag{
		ID:      id,
		Offset:  Point{X: pointer.X - node.Left, Y: pointer.Y - node.Top},
		started: true,
	}
	d.X, d.Y = clampPoint(vp.ToCanvas(Point{X: node.Left, Y: node.Top}))
	return d
}

// Active reports whether the drag has begun and not ended.
func (d *NodeDrag) Active() bool {
	return d != nil && d.started
}

// Move repositions the node under the pointer and returns its new canvas
// position.
func (d *NodeDrag) Move(pointer Point, vp Viewport) (x, y int) {
	d.X, d.Y = clampPoint(vp.ToCanvas(Point{X: pointer.X - d.Offset.X, Y: pointer.Y - d.Offset.Y}))
	return d.X, d.Y
}

// End finishes the drag and returns the final position.
func (d *NodeDrag) End() (x, y int) {
	d.started = false
	return d.X, d.Y
}

func clampPoint(p Point) (int, int) {
	return int(math.Max(0, math.Trunc(p.X))), int(math.Max(0, math.Trunc(p.Y)))
}
