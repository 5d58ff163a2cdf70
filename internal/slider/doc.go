// Package slider implements the before/after comparison slider: the "after"
// image fills the container, the "before" image is clipped to the slider
// position and a handle marks the boundary.
//
// Dragging is a two-state machine. A pointer-down anywhere in the container
// enters dragging and registers move and release listeners on the global
// input surface, so the drag keeps tracking and ends correctly when the
// pointer leaves the container. Leaving the dragging state, by release or by
// Close, always removes those listeners.
//
// A Slider is driven from a single event loop and is not safe for concurrent
// use.
package slider
