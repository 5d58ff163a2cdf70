//go:build js && wasm

// Command sliderwasm drives the before/after comparison sliders of the web
// application. Build with GOOS=js GOARCH=wasm into ASSETS_DIR/slider.wasm and
// copy wasm_exec.js from the Go distribution next to it.
package main

import (
	"strconv"
	"syscall/js"

	"github.com/basel-ax/archaeo/internal/slider"
)

// window implements slider.Surface over window.addEventListener
type window struct {
	target   js.Value
	onChange func()
}

func (w window) AddListener(kind slider.EventKind, fn func(slider.InputEvent)) func() {
	cb := js.FuncOf(func(this js.Value, args []js.Value) any {
		fn(slider.InputEvent{Kind: kind, ClientX: clientX(args[0])})
		w.onChange()
		return nil
	})
	w.target.Call("addEventListener", string(kind), cb)
	return func() {
		w.target.Call("removeEventListener", string(kind), cb)
		cb.Release()
	}
}

// clientX reads the horizontal pointer coordinate of a mouse or touch event
func clientX(ev js.Value) float64 {
	if touches := ev.Get("touches"); !touches.IsUndefined() {
		if touches.Length() == 0 {
			return 0
		}
		return touches.Index(0).Get("clientX").Float()
	}
	return ev.Get("clientX").Float()
}

func bind(el js.Value) {
	clip := el.Call("querySelector", ".clip")
	inner := el.Call("querySelector", ".clip img")
	handle := el.Call("querySelector", ".handle")

	var s *slider.Slider
	render := func() {
		v := slider.NewView("", "", "", "", s.Position())
		clip.Get("style").Set("width", percent(v.ClipWidth))
		inner.Get("style").Set("width", percent(v.InnerWidth))
		handle.Get("style").Set("left", percent(v.Position))
	}
	s = slider.New(window{target: js.Global(), onChange: render}, func() slider.Rect {
		r := el.Call("getBoundingClientRect")
		return slider.Rect{Left: r.Get("left").Float(), Width: r.Get("width").Float()}
	})

	down := js.FuncOf(func(this js.Value, args []js.Value) any {
		args[0].Call("preventDefault")
		s.PointerDown()
		s.Move(clientX(args[0]))
		render()
		return nil
	})
	el.Call("addEventListener", "mousedown", down)
	el.Call("addEventListener", "touchstart", down)

	js.Global().Call("addEventListener", "pagehide", js.FuncOf(func(this js.Value, args []js.Value) any {
		s.Close()
		return nil
	}))
}

func percent(f float64) string {
	return strconv.FormatFloat(f, 'f', 3, 64) + "%"
}

func main() {
	nodes := js.Global().Get("document").Call("querySelectorAll", "[data-slider]")
	for i := 0; i < nodes.Length(); i++ {
		bind(nodes.Index(i))
	}
	select {}
}
