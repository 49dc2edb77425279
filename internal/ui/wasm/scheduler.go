//go:build js && wasm

package wasm

import (
	"syscall/js"
	"time"
)

// browserScheduler defers work with requestAnimationFrame and setTimeout.
// Each js.Func is released once it has fired or been cancelled.
type browserScheduler struct {
	window js.Value
}

func (s browserScheduler) NextFrame(fn func()) {
	var cb js.Func
	cb = js.FuncOf(func(js.Value, []js.Value) any {
		fn()
		cb.Release()
		return nil
	})
	if s.window.Get("requestAnimationFrame").Type() != js.TypeFunction {
		s.window.Call("setTimeout", cb, 0)
		return
	}
	s.window.Call("requestAnimationFrame", cb)
}

func (s browserScheduler) After(d time.Duration, fn func()) func() {
	var cb js.Func
	done := false
	cb = js.FuncOf(func(js.Value, []js.Value) any {
		if done {
			return nil
		}
		done = true
		fn()
		cb.Release()
		return nil
	})
	id := s.window.Call("setTimeout", cb, d.Milliseconds())
	return func() {
		if done {
			return
		}
		done = true
		s.window.Call("clearTimeout", id)
		cb.Release()
	}
}
