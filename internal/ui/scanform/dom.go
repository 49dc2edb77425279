package scanform

import "time"

// Element is the slice of DOM behaviour the upload form needs from a node.
// The wasm package adapts js.Value to it; tests use in-memory fakes.
type Element interface {
	AddClass(names ...string)
	RemoveClass(names ...string)
	HasClass(name string) bool
	SetText(text string)
	SetRequired(required bool)
	SetValue(value string)
	Value() string
	// ForceLayout reads a layout property so pending style changes are
	// flushed before the caller continues.
	ForceLayout()
}

// Form is the submission target. Submit performs the native submission
// without firing submit handlers again.
type Form interface {
	Submit()
}

// SubmitEvent is the intercepted submit event.
type SubmitEvent interface {
	PreventDefault()
}

// Scheduler defers work on the UI event loop.
type Scheduler interface {
	// NextFrame runs fn before the next repaint.
	NextFrame(fn func())
	// After runs fn once d has elapsed. The returned func cancels it if it
	// has not fired yet.
	After(d time.Duration, fn func()) (cancel func())
}

// Elements holds every node the controller touches. A nil field means the
// node is absent from the page; behaviour that depends on it is skipped.
type Elements struct {
	FilePanel  Element
	VideoPanel Element
	FileTab    Element
	VideoTab   Element
	FileInput  Element
	VideoURL   Element

	StatusIcon    Element
	StatusText    Element
	StatusHint    Element
	StatusCheck   Element
	ScannerBorder Element

	Overlay Element
	Form    Form

	Slider      Element
	SliderValue Element
}

const (
	ClassHidden  = "hidden"
	ClassActive  = "active"
	ClassOpaque  = "opacity-100"
	ClassClear   = "opacity-0"
	ClassPulsing = "animate-pulse"
)

func addClass(el Element, names ...string) {
	if el != nil {
		el.AddClass(names...)
	}
}

func removeClass(el Element, names ...string) {
	if el != nil {
		el.RemoveClass(names...)
	}
}

func setText(el Element, text string) {
	if el != nil {
		el.SetText(text)
	}
}

func setRequired(el Element, required bool) {
	if el != nil {
		el.SetRequired(required)
	}
}

func setValue(el Element, value string) {
	if el != nil {
		el.SetValue(value)
	}
}

// immediateScheduler runs deferred work synchronously. It stands in when no
// scheduler is supplied.
type immediateScheduler struct{}

func (immediateScheduler) NextFrame(fn func()) { fn() }

func (immediateScheduler) After(_ time.Duration, fn func()) func() {
	fn()
	return func() {}
}
