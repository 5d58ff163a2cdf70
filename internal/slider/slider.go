package slider

import (
	"math"

	"github.com/looplab/fsm"
)

const (
	// DefaultPosition is the split shown before the first drag
	DefaultPosition = 50.0
	// Epsilon bounds the clip rescale when the position reaches 0
	Epsilon = 0.01
)

const (
	stateIdle     = "idle"
	stateDragging = "dragging"

	eventDown = "pointer_down"
	eventUp   = "pointer_up"
)

// EventKind names a global input event the slider listens for while dragging
type EventKind string

const (
	MouseMove EventKind = "mousemove"
	MouseUp   EventKind = "mouseup"
	TouchMove EventKind = "touchmove"
	TouchEnd  EventKind = "touchend"
)

// InputEvent is a pointer or touch event delivered by a Surface
type InputEvent struct {
	Kind    EventKind
	ClientX float64
}

// Surface is the global input surface (the browser window). AddListener
// returns a function that unregisters the listener.
type Surface interface {
	AddListener(kind EventKind, fn func(InputEvent)) (remove func())
}

// Rect is the horizontal extent of the slider container in client coordinates
type Rect struct {
	Left  float64
	Width float64
}

// Slider holds the drag state of one comparison slider
type Slider struct {
	machine  *fsm.FSM
	position float64
	surface  Surface
	bounds   func() Rect
	release  []func()
}

// New creates an idle slider at DefaultPosition. bounds reports the current
// container rectangle and is read on every move.
func New(surface Surface, bounds func() Rect) *Slider {
	s := &Slider{
		position: DefaultPosition,
		surface:  surface,
		bounds:   bounds,
	}
	s.machine = fsm.NewFSM(
		stateIdle,
		fsm.Events{
			{Name: eventDown, Src: []string{stateIdle}, Dst: stateDragging},
			{Name: eventUp, Src: []string{stateDragging}, Dst: stateIdle},
		},
		fsm.Callbacks{
			"enter_" + stateDragging: func(e *fsm.Event) { s.acquire() },
			"leave_" + stateDragging: func(e *fsm.Event) { s.releaseAll() },
		},
	)
	return s
}

// PointerDown starts a drag. It is ignored while a drag is already active.
func (s *Slider) PointerDown() {
	_ = s.machine.Event(eventDown)
}

// PointerUp ends the drag, keeping the last position
func (s *Slider) PointerUp() {
	_ = s.machine.Event(eventUp)
}

// Move updates the position from a pointer x coordinate. Moves outside a
// drag, or against a container without width, do nothing.
func (s *Slider) Move(clientX float64) {
	if !s.Dragging() {
		return
	}
	if p, ok := PositionAt(clientX, s.bounds()); ok {
		s.position = p
	}
}

// Close ends any active drag so no global listener outlives the slider
func (s *Slider) Close() {
	s.PointerUp()
}

// Dragging reports whether a drag is active
func (s *Slider) Dragging() bool {
	return s.machine.Is(stateDragging)
}

// Position returns the split percentage in [0,100]
func (s *Slider) Position() float64 {
	return s.position
}

// ClipScale returns the width of the clipped "before" image as a percentage of
// its clipping box
func (s *Slider) ClipScale() float64 {
	return ClipScale(s.position)
}

func (s *Slider) acquire() {
	s.release = append(s.release,
		s.surface.AddListener(MouseMove, s.handle),
		s.surface.AddListener(TouchMove, s.handle),
		s.surface.AddListener(MouseUp, s.handle),
		s.surface.AddListener(TouchEnd, s.handle),
	)
}

func (s *Slider) releaseAll() {
	for _, remove := range s.release {
		remove()
	}
	s.release = nil
}

func (s *Slider) handle(ev InputEvent) {
	switch ev.Kind {
	case MouseMove, TouchMove:
		s.Move(ev.ClientX)
	case MouseUp, TouchEnd:
		s.PointerUp()
	}
}

// PositionAt converts a pointer x coordinate to a clamped split percentage
func PositionAt(clientX float64, r Rect) (float64, bool) {
	if r.Width <= 0 {
		return 0, false
	}
	p := 100 * (clientX - r.Left) / r.Width
	return math.Min(math.Max(p, 0), 100), true
}

// ClipScale keeps the clipped image pixel-aligned with the full-width image
// underneath: a box position% wide must hold an image 100/position times its
// own width.
func ClipScale(position float64) float64 {
	return 100 * 100 / math.Max(position, Epsilon)
}
