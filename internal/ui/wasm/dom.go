//go:build js && wasm

package wasm

import (
	"syscall/js"

	"github.com/Its-donkey/hawkeye/internal/ui/scanform"
)

// jsElement adapts a DOM node to scanform.Element.
type jsElement struct {
	node js.Value
}

func classArgs(names []string) []any {
	args := make([]any, 0, len(names))
	for _, name := range names {
		// classList rejects empty tokens
		if name != "" {
			args = append(args, name)
		}
	}
	return args
}

func (e jsElement) AddClass(names ...string) {
	if args := classArgs(names); len(args) > 0 {
		e.node.Get("classList").Call("add", args...)
	}
}

func (e jsElement) RemoveClass(names ...string) {
	if args := classArgs(names); len(args) > 0 {
		e.node.Get("classList").Call("remove", args...)
	}
}

func (e jsElement) HasClass(name string) bool {
	return e.node.Get("classList").Call("contains", name).Bool()
}

func (e jsElement) SetText(text string) {
	e.node.Set("textContent", text)
}

func (e jsElement) SetRequired(required bool) {
	e.node.Set("required", required)
}

func (e jsElement) SetValue(value string) {
	e.node.Set("value", value)
}

func (e jsElement) Value() string {
	value := e.node.Get("value")
	if value.Type() != js.TypeString {
		return ""
	}
	return value.String()
}

func (e jsElement) ForceLayout() {
	_ = e.node.Get("offsetHeight").Int()
}

// jsForm submits through the prototype so a control named "submit" cannot
// shadow the method.
type jsForm struct {
	node js.Value
}

func (f jsForm) Submit() {
	proto := js.Global().Get("HTMLFormElement").Get("prototype")
	if proto.Truthy() {
		proto.Get("submit").Call("call", f.node)
		return
	}
	f.node.Call("submit")
}

type jsEvent struct {
	event js.Value
}

func (e jsEvent) PreventDefault() {
	if e.event.Truthy() {
		e.event.Call("preventDefault")
	}
}

func lookup(id string) js.Value {
	return Document.Call("getElementById", id)
}

// element returns nil rather than a wrapped null so the controller sees the
// node as absent.
func element(id string) scanform.Element {
	node := lookup(id)
	if !node.Truthy() {
		return nil
	}
	return jsElement{node: node}
}

func form(id string) scanform.Form {
	node := lookup(id)
	if !node.Truthy() {
		return nil
	}
	return jsForm{node: node}
}
