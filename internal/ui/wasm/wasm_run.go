//go:build js && wasm

package wasm

import (
	"syscall/js"

	"github.com/Its-donkey/hawkeye/internal/ui/model"
	"github.com/Its-donkey/hawkeye/internal/ui/scanform"
)

// RunApp wires the upload form controller once the document is parsed and
// blocks forever.
func RunApp() {
	done := make(chan struct{})
	window := js.Global()
	Document = window.Get("document")

	if Document.Get("readyState").String() == "loading" {
		var ready js.Func
		ready = js.FuncOf(func(js.Value, []js.Value) any {
			start(window)
			ready.Release()
			return nil
		})
		Document.Call("addEventListener", "DOMContentLoaded", ready)
	} else {
		start(window)
	}
	<-done
}

// start runs even without the form: the mode switch, status row and slider
// do not depend on it, and the controller treats a nil Form as absent.
func start(window js.Value) {
	if !lookup(model.IDForm).Truthy() {
		js.Global().Get("console").Call("error", "scan form missing, submit sequence disabled")
	}
	controller = scanform.New(resolveElements(), browserScheduler{window: window}, readOptions())
	controller.Init()
	bindFormEvents(window)
}
