package slider

import "strconv"

// View is the render geometry of a slider, all widths in percent
type View struct {
	Before      string
	After       string
	LabelBefore string
	LabelAfter  string
	Position    float64
	ClipWidth   float64
	InnerWidth  float64
}

// NewView lays out a slider at position. Empty labels default to BEFORE/AFTER.
func NewView(before, after, labelBefore, labelAfter string, position float64) View {
	if labelBefore == "" {
		labelBefore = "BEFORE"
	}
	if labelAfter == "" {
		labelAfter = "AFTER"
	}
	return View{
		Before:      before,
		After:       after,
		LabelBefore: labelBefore,
		LabelAfter:  labelAfter,
		Position:    position,
		ClipWidth:   position,
		InnerWidth:  ClipScale(position),
	}
}

// View lays out s with the given images
func (s *Slider) View(before, after, labelBefore, labelAfter string) View {
	return NewView(before, after, labelBefore, labelAfter, s.position)
}

// ClipStyle is the inline style of the clipping box
func (v View) ClipStyle() string {
	return "width: " + percent(v.ClipWidth)
}

// InnerStyle is the inline style of the clipped image
func (v View) InnerStyle() string {
	return "width: " + percent(v.InnerWidth)
}

// HandleStyle is the inline style of the drag handle
func (v View) HandleStyle() string {
	return "left: " + percent(v.Position)
}

func percent(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64) + "%"
}
