package geometry

import "fmt"

// RectForm selects how the last two rectangle components are interpreted.
type RectForm string

const (
	// RectFormExtent reads A and B as width and height.
	RectFormExtent RectForm = "extent"
	// RectFormCorners reads A and B as the right and bottom edges.
	RectFormCorners RectForm = "corners"
)

// Rect is a crop rectangle in points. Left and Top are always the origin;
// A and B depend on Form.
type Rect struct {
	Left int
	Top  int
	A    int
	B    int
	Form RectForm
}

// Size returns the width and height covered by the rectangle.
func (r Rect) Size() (width, height int) {
	if r.Form == RectFormCorners {
		return r.A - r.Left, r.B - r.Top
	}
	return r.A, r.B
}

func (r Rect) String() string {
	return fmt.Sprintf("%s(%d,%d,%d,%d)", r.Form, r.Left, r.Top, r.A, r.B)
}

// Geometry is the resolved crop for a single page.
type Geometry struct {
	Width   int
	Height  int
	OffsetX int
	OffsetY int
}

// PageOffset renders the PostScript page-device directive shifting content so
// that the rectangle origin lands on the media origin.
func (g Geometry) PageOffset() string {
	return fmt.Sprintf("<</PageOffset [%d %d]>> setpagedevice", g.OffsetX, g.OffsetY)
}
